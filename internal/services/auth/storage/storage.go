package storage

import (
	"context"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/user"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// UserStore persists auth user records.
type UserStore interface {
	PutUser(ctx context.Context, u user.User) error
	GetUser(ctx context.Context, userID string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) error
	ListUsers(ctx context.Context, pageSize int, pageToken string) (UserPage, error)
}

// UserPage describes a page of user records.
type UserPage struct {
	Users         []user.User
	NextPageToken string
}

// WebSession stores a durable authenticated browser session.
type WebSession struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// WebSessionStore persists durable web sessions.
type WebSessionStore interface {
	PutWebSession(ctx context.Context, session WebSession) error
	GetWebSession(ctx context.Context, sessionID string) (WebSession, error)
	RevokeWebSession(ctx context.Context, sessionID string, revokedAt time.Time) error
	DeleteExpiredWebSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// PasswordReset represents a single-use password reset token.
type PasswordReset struct {
	TokenID   string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// PasswordResetStore persists password reset tokens.
type PasswordResetStore interface {
	PutPasswordReset(ctx context.Context, reset PasswordReset) error
	GetPasswordReset(ctx context.Context, tokenID string) (PasswordReset, error)
	MarkPasswordResetUsed(ctx context.Context, tokenID string, usedAt time.Time) error
	DeleteStalePasswordResets(ctx context.Context, cutoff time.Time) (int64, error)
}

// PasskeyCredential stores a WebAuthn credential for a user.
type PasskeyCredential struct {
	CredentialID   string
	UserID         string
	Name           string
	CredentialJSON string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastUsedAt     *time.Time
}

// PasskeySession stores a WebAuthn registration or login ceremony session.
type PasskeySession struct {
	ID          string
	Kind        string
	UserID      string
	SessionJSON string
	ExpiresAt   time.Time
}

// PasskeyStore persists WebAuthn credential and ceremony data.
type PasskeyStore interface {
	PutPasskeyCredential(ctx context.Context, credential PasskeyCredential) error
	GetPasskeyCredential(ctx context.Context, credentialID string) (PasskeyCredential, error)
	ListPasskeyCredentials(ctx context.Context, userID string) ([]PasskeyCredential, error)
	DeletePasskeyCredential(ctx context.Context, credentialID string) error
	PutPasskeySession(ctx context.Context, session PasskeySession) error
	GetPasskeySession(ctx context.Context, id string) (PasskeySession, error)
	DeletePasskeySession(ctx context.Context, id string) error
	DeleteExpiredPasskeySessions(ctx context.Context, now time.Time) error
}

// Outbox event lifecycle states.
const (
	OutboxStatusPending    = "pending"
	OutboxStatusLeased     = "leased"
	OutboxStatusDispatched = "dispatched"
	OutboxStatusFailed     = "failed"
)

// Well-known outbox event types emitted by the auth service.
const (
	EventPasswordResetRequested = "auth.password_reset.requested"
	EventSignupCompleted        = "auth.signup.completed"
)

// OutboxEvent is an integration event staged for asynchronous dispatch.
type OutboxEvent struct {
	ID             string
	EventType      string
	PayloadJSON    string
	DedupeKey      string
	Status         string
	AttemptCount   int
	NextAttemptAt  time.Time
	LeaseOwner     string
	LeaseExpiresAt *time.Time
	LastError      string
	ProcessedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OutboxStore persists and leases integration outbox events.
type OutboxStore interface {
	EnqueueOutboxEvent(ctx context.Context, event OutboxEvent) error
	LeaseOutboxEvents(ctx context.Context, owner string, limit int, leaseTTL time.Duration, now time.Time) ([]OutboxEvent, error)
	MarkOutboxEventDispatched(ctx context.Context, eventID string, processedAt time.Time) error
	MarkOutboxEventFailed(ctx context.Context, eventID string, lastError string, nextAttemptAt time.Time, permanent bool) error
	DeleteDispatchedOutboxEvents(ctx context.Context, cutoff time.Time) (int64, error)
}

// TransactionalStore runs a user write and an outbox enqueue atomically.
// Invariant: the triggering write and its integration event commit together
// or not at all.
type TransactionalStore interface {
	PutUserWithOutboxEvent(ctx context.Context, u user.User, event OutboxEvent) error
	PutPasswordResetWithOutboxEvent(ctx context.Context, reset PasswordReset, event OutboxEvent) error
}
