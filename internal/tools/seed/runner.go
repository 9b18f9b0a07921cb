package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	authsqlite "github.com/PedroJIzGar/timelogic/internal/services/auth/storage/sqlite"
	workforcesqlite "github.com/PedroJIzGar/timelogic/internal/services/workforce/storage/sqlite"
)

// Run opens both databases and applies the demo data set.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	for _, path := range []string{cfg.AuthDBPath, cfg.WorkforceDBPath} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create storage dir: %w", err)
			}
		}
	}

	authStore, err := authsqlite.Open(cfg.AuthDBPath)
	if err != nil {
		return fmt.Errorf("open auth sqlite store: %w", err)
	}
	defer authStore.Close()

	workforceStore, err := workforcesqlite.Open(cfg.WorkforceDBPath)
	if err != nil {
		return fmt.Errorf("open workforce sqlite store: %w", err)
	}
	defer workforceStore.Close()

	result, err := NewSeeder(authStore, workforceStore, nil).Apply(ctx, cfg.Password)
	if err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}
	result.Fprint(out)
	return nil
}
