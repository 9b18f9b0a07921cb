package maintenance

import (
	"context"
	"time"
)

// pruneStore is the auth store surface the prune pass needs.
type pruneStore interface {
	DeleteExpiredWebSessions(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteStalePasswordResets(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteExpiredPasskeySessions(ctx context.Context, now time.Time) error
	DeleteDispatchedOutboxEvents(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}
