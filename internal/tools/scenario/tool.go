package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	workforcesqlite "github.com/PedroJIzGar/timelogic/internal/services/workforce/storage/sqlite"
)

// ToolConfig holds settings for the scenario command.
type ToolConfig struct {
	// Paths are the Lua scenario files to run, in order.
	Paths []string
	// DBPath is the workforce database to run against. Empty means a
	// throwaway database in a temporary directory.
	DBPath  string
	Warn    bool
	Verbose bool
}

// ParseConfig parses flags and positional scenario paths.
func ParseConfig(fs *flag.FlagSet, args []string) (ToolConfig, error) {
	var cfg ToolConfig
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "workforce database path (default throwaway)")
	fs.BoolVar(&cfg.Warn, "warn", cfg.Warn, "log failed expectations instead of stopping")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log each step as it runs")
	if err := fs.Parse(args); err != nil {
		return ToolConfig{}, err
	}
	cfg.Paths = fs.Args()
	if len(cfg.Paths) == 0 {
		return ToolConfig{}, errors.New("nothing to do: pass one or more scenario files")
	}
	return cfg, nil
}

// Run loads and replays each scenario file. A failed expectation in
// warn mode does not stop the run but still fails the command.
func Run(ctx context.Context, cfg ToolConfig, out io.Writer) error {
	dbPath := cfg.DBPath
	if dbPath == "" {
		dir, err := os.MkdirTemp("", "timelogic-scenario-*")
		if err != nil {
			return fmt.Errorf("create scratch dir: %w", err)
		}
		defer os.RemoveAll(dir)
		dbPath = filepath.Join(dir, "workforce.db")
	}

	store, err := workforcesqlite.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open workforce store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close workforce store: %v", err)
		}
	}()

	runnerCfg := DefaultConfig()
	runnerCfg.Verbose = cfg.Verbose
	if cfg.Warn {
		runnerCfg.Assertions = AssertionWarn
	}

	var failures int
	for _, path := range cfg.Paths {
		scenario, err := LoadScenarioFromFile(path)
		if err != nil {
			return err
		}
		runner := NewRunner(runnerCfg, Stores{
			Employees: store,
			Timeclock: store,
			Requests:  store,
		})
		result, err := runner.Run(ctx, scenario)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		failures += result.Failures
		fmt.Fprintf(out, "%s: %d steps, %d failed expectations\n", result.Scenario, result.Steps, result.Failures)
	}
	if failures > 0 {
		return fmt.Errorf("%d failed expectations", failures)
	}
	return nil
}
