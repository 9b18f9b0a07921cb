package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/services/auth/storage"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/user"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestStoreDBNilSafe(t *testing.T) {
	var store *Store
	if store.DB() != nil {
		t.Fatal("expected nil DB for nil store")
	}
}

func TestPutGetUserRoundTrip(t *testing.T) {
	store := openTempStore(t)

	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	input := user.User{
		ID:           "user-1",
		Email:        "pat@example.com",
		PasswordHash: "bcrypt-hash",
		DisplayName:  "Pat",
		Role:         user.RoleManager,
		Locale:       "es-ES",
		CreatedAt:    created,
		UpdatedAt:    created,
	}

	if err := store.PutUser(context.Background(), input); err != nil {
		t.Fatalf("put user: %v", err)
	}

	got, err := store.GetUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Email != input.Email || got.Role != input.Role || got.Locale != input.Locale {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.PasswordHash != input.PasswordHash {
		t.Fatal("expected password hash round trip")
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created at = %v, want %v", got.CreatedAt, created)
	}

	byEmail, err := store.GetUserByEmail(context.Background(), " PAT@example.com ")
	if err != nil {
		t.Fatalf("get user by email: %v", err)
	}
	if byEmail.ID != "user-1" {
		t.Fatalf("expected user-1 by email, got %q", byEmail.ID)
	}
}

func TestGetUserNotFound(t *testing.T) {
	store := openTempStore(t)
	if _, err := store.GetUser(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetUserByEmail(context.Background(), "missing@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutUserRejectsDuplicateEmail(t *testing.T) {
	store := openTempStore(t)
	now := time.Now().UTC()
	base := user.User{Email: "dup@example.com", CreatedAt: now, UpdatedAt: now}
	base.ID = "user-1"
	if err := store.PutUser(context.Background(), base); err != nil {
		t.Fatalf("put first user: %v", err)
	}
	base.ID = "user-2"
	if err := store.PutUser(context.Background(), base); err == nil {
		t.Fatal("expected unique email violation")
	}
}

func TestUpdateUser(t *testing.T) {
	store := openTempStore(t)
	now := time.Now().UTC()
	u := user.User{ID: "user-1", Email: "pat@example.com", Role: user.RoleEmployee, CreatedAt: now, UpdatedAt: now}
	if err := store.PutUser(context.Background(), u); err != nil {
		t.Fatalf("put user: %v", err)
	}

	u.DisplayName = "Pat Q."
	u.Role = user.RoleManager
	u.Disabled = true
	u.UpdatedAt = now.Add(time.Minute)
	if err := store.UpdateUser(context.Background(), u); err != nil {
		t.Fatalf("update user: %v", err)
	}

	got, err := store.GetUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.DisplayName != "Pat Q." || got.Role != user.RoleManager || !got.Disabled {
		t.Fatalf("unexpected updated user: %+v", got)
	}

	missing := u
	missing.ID = "absent"
	if err := store.UpdateUser(context.Background(), missing); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListUsersPaginates(t *testing.T) {
	store := openTempStore(t)
	now := time.Now().UTC()
	for _, id := range []string{"a", "b", "c"} {
		u := user.User{ID: id, Email: id + "@example.com", CreatedAt: now, UpdatedAt: now}
		if err := store.PutUser(context.Background(), u); err != nil {
			t.Fatalf("put user %s: %v", id, err)
		}
	}

	page, err := store.ListUsers(context.Background(), 2, "")
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(page.Users) != 2 || page.NextPageToken == "" {
		t.Fatalf("expected 2 users and next token, got %d %q", len(page.Users), page.NextPageToken)
	}

	rest, err := store.ListUsers(context.Background(), 2, page.NextPageToken)
	if err != nil {
		t.Fatalf("list rest: %v", err)
	}
	if len(rest.Users) != 1 || rest.NextPageToken != "" {
		t.Fatalf("expected final page of 1, got %d %q", len(rest.Users), rest.NextPageToken)
	}
	if rest.Users[0].ID != "c" {
		t.Fatalf("expected user c, got %q", rest.Users[0].ID)
	}
}

func TestWebSessionLifecycle(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	u := user.User{ID: "user-1", Email: "pat@example.com", CreatedAt: now, UpdatedAt: now}
	if err := store.PutUser(context.Background(), u); err != nil {
		t.Fatalf("put user: %v", err)
	}

	session := storage.WebSession{ID: "sess-1", UserID: "user-1", CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour)}
	if err := store.PutWebSession(context.Background(), session); err != nil {
		t.Fatalf("put web session: %v", err)
	}

	got, err := store.GetWebSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("get web session: %v", err)
	}
	if got.UserID != "user-1" || got.RevokedAt != nil {
		t.Fatalf("unexpected session: %+v", got)
	}

	revokedAt := now.Add(time.Hour)
	if err := store.RevokeWebSession(context.Background(), "sess-1", revokedAt); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	got, err = store.GetWebSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("get revoked session: %v", err)
	}
	if got.RevokedAt == nil || !got.RevokedAt.Equal(revokedAt) {
		t.Fatalf("expected revoked at %v, got %+v", revokedAt, got.RevokedAt)
	}

	// Revoking again keeps the original revocation time.
	if err := store.RevokeWebSession(context.Background(), "sess-1", revokedAt.Add(time.Hour)); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
	got, _ = store.GetWebSession(context.Background(), "sess-1")
	if !got.RevokedAt.Equal(revokedAt) {
		t.Fatalf("revocation must be monotonic, got %v", got.RevokedAt)
	}

	if err := store.RevokeWebSession(context.Background(), "missing", revokedAt); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing session, got %v", err)
	}
}

func TestDeleteExpiredWebSessions(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	u := user.User{ID: "user-1", Email: "pat@example.com", CreatedAt: now, UpdatedAt: now}
	if err := store.PutUser(context.Background(), u); err != nil {
		t.Fatalf("put user: %v", err)
	}
	old := storage.WebSession{ID: "old", UserID: "user-1", CreatedAt: now.Add(-48 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	live := storage.WebSession{ID: "live", UserID: "user-1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	for _, session := range []storage.WebSession{old, live} {
		if err := store.PutWebSession(context.Background(), session); err != nil {
			t.Fatalf("put session %s: %v", session.ID, err)
		}
	}

	deleted, err := store.DeleteExpiredWebSessions(context.Background(), now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}
	if _, err := store.GetWebSession(context.Background(), "live"); err != nil {
		t.Fatalf("live session should remain: %v", err)
	}
}

func TestPasswordResetLifecycle(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	u := user.User{ID: "user-1", Email: "pat@example.com", CreatedAt: now, UpdatedAt: now}
	if err := store.PutUser(context.Background(), u); err != nil {
		t.Fatalf("put user: %v", err)
	}

	reset := storage.PasswordReset{TokenID: "token-1", UserID: "user-1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	if err := store.PutPasswordReset(context.Background(), reset); err != nil {
		t.Fatalf("put reset: %v", err)
	}

	got, err := store.GetPasswordReset(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("get reset: %v", err)
	}
	if got.UsedAt != nil {
		t.Fatalf("fresh token should be unused: %+v", got)
	}

	usedAt := now.Add(10 * time.Minute)
	if err := store.MarkPasswordResetUsed(context.Background(), "token-1", usedAt); err != nil {
		t.Fatalf("mark used: %v", err)
	}
	// A used token can never be consumed again.
	if err := store.MarkPasswordResetUsed(context.Background(), "token-1", usedAt.Add(time.Minute)); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double use, got %v", err)
	}

	deleted, err := store.DeleteStalePasswordResets(context.Background(), now)
	if err != nil {
		t.Fatalf("delete stale: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected used token pruned, got %d", deleted)
	}
}

func TestOutboxEnqueueDedupe(t *testing.T) {
	store := openTempStore(t)
	event := storage.OutboxEvent{
		ID:        "event-1",
		EventType: storage.EventSignupCompleted,
		DedupeKey: "signup:user:user-1:v1",
	}
	if err := store.EnqueueOutboxEvent(context.Background(), event); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	duplicate := event
	duplicate.ID = "event-2"
	if err := store.EnqueueOutboxEvent(context.Background(), duplicate); err != nil {
		t.Fatalf("enqueue duplicate: %v", err)
	}
	if _, err := store.GetOutboxEvent(context.Background(), "event-2"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected dedupe to suppress second event, got %v", err)
	}
}

func TestOutboxLeaseAndResolve(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	event := storage.OutboxEvent{
		ID:            "event-1",
		EventType:     storage.EventPasswordResetRequested,
		PayloadJSON:   `{"user_id":"user-1"}`,
		NextAttemptAt: now,
		CreatedAt:     now,
	}
	if err := store.EnqueueOutboxEvent(context.Background(), event); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	leased, err := store.LeaseOutboxEvents(context.Background(), "worker-1", 10, 30*time.Second, now)
	if err != nil {
		t.Fatalf("lease: %v", err)
	}
	if len(leased) != 1 || leased[0].Status != storage.OutboxStatusLeased {
		t.Fatalf("expected one leased event, got %+v", leased)
	}

	// A live lease hides the event from other workers.
	other, err := store.LeaseOutboxEvents(context.Background(), "worker-2", 10, 30*time.Second, now.Add(time.Second))
	if err != nil {
		t.Fatalf("second lease: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no events under live lease, got %d", len(other))
	}

	// An expired lease frees the event again.
	reclaimed, err := store.LeaseOutboxEvents(context.Background(), "worker-2", 10, 30*time.Second, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("reclaim lease: %v", err)
	}
	if len(reclaimed) != 1 {
		t.Fatalf("expected expired lease reclaim, got %d", len(reclaimed))
	}

	if err := store.MarkOutboxEventDispatched(context.Background(), "event-1", now.Add(2*time.Minute)); err != nil {
		t.Fatalf("mark dispatched: %v", err)
	}
	got, err := store.GetOutboxEvent(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.Status != storage.OutboxStatusDispatched || got.ProcessedAt == nil {
		t.Fatalf("unexpected resolved event: %+v", got)
	}

	deleted, err := store.DeleteDispatchedOutboxEvents(context.Background(), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("prune dispatched: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 pruned event, got %d", deleted)
	}
}

func TestOutboxMarkFailed(t *testing.T) {
	store := openTempStore(t)
	now := time.Now().UTC()
	event := storage.OutboxEvent{ID: "event-1", EventType: storage.EventSignupCompleted, NextAttemptAt: now, CreatedAt: now}
	if err := store.EnqueueOutboxEvent(context.Background(), event); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := store.MarkOutboxEventFailed(context.Background(), "event-1", "smtp down", now.Add(time.Second), false); err != nil {
		t.Fatalf("mark failed transient: %v", err)
	}
	got, _ := store.GetOutboxEvent(context.Background(), "event-1")
	if got.Status != storage.OutboxStatusPending || got.AttemptCount != 1 || got.LastError != "smtp down" {
		t.Fatalf("unexpected transient failure state: %+v", got)
	}

	if err := store.MarkOutboxEventFailed(context.Background(), "event-1", "bad payload", now.Add(time.Second), true); err != nil {
		t.Fatalf("mark failed permanent: %v", err)
	}
	got, _ = store.GetOutboxEvent(context.Background(), "event-1")
	if got.Status != storage.OutboxStatusFailed || got.AttemptCount != 2 {
		t.Fatalf("unexpected permanent failure state: %+v", got)
	}
}

func TestPutUserWithOutboxEventAtomic(t *testing.T) {
	store := openTempStore(t)
	now := time.Now().UTC()
	u := user.User{ID: "user-1", Email: "pat@example.com", CreatedAt: now, UpdatedAt: now}
	event := storage.OutboxEvent{ID: "event-1", EventType: storage.EventSignupCompleted, DedupeKey: "signup:user:user-1:v1"}

	if err := store.PutUserWithOutboxEvent(context.Background(), u, event); err != nil {
		t.Fatalf("put user with event: %v", err)
	}
	if _, err := store.GetUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("user should exist: %v", err)
	}
	if _, err := store.GetOutboxEvent(context.Background(), "event-1"); err != nil {
		t.Fatalf("event should exist: %v", err)
	}

	// Duplicate email rolls back the whole transaction including the event.
	dup := user.User{ID: "user-2", Email: "pat@example.com", CreatedAt: now, UpdatedAt: now}
	dupEvent := storage.OutboxEvent{ID: "event-2", EventType: storage.EventSignupCompleted}
	if err := store.PutUserWithOutboxEvent(context.Background(), dup, dupEvent); err == nil {
		t.Fatal("expected duplicate email error")
	}
	if _, err := store.GetOutboxEvent(context.Background(), "event-2"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("event from failed transaction must not exist, got %v", err)
	}
}

func TestPasskeyCredentialRoundTrip(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	u := user.User{ID: "user-1", Email: "pat@example.com", CreatedAt: now, UpdatedAt: now}
	if err := store.PutUser(context.Background(), u); err != nil {
		t.Fatalf("put user: %v", err)
	}

	credential := storage.PasskeyCredential{
		CredentialID:   "cred-1",
		UserID:         "user-1",
		Name:           "Work laptop",
		CredentialJSON: `{"id":"cred-1"}`,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := store.PutPasskeyCredential(context.Background(), credential); err != nil {
		t.Fatalf("put credential: %v", err)
	}

	listed, err := store.ListPasskeyCredentials(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list credentials: %v", err)
	}
	if len(listed) != 1 || listed[0].Name != "Work laptop" {
		t.Fatalf("unexpected credentials: %+v", listed)
	}

	if err := store.DeletePasskeyCredential(context.Background(), "cred-1"); err != nil {
		t.Fatalf("delete credential: %v", err)
	}
	if err := store.DeletePasskeyCredential(context.Background(), "cred-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPasskeySessionExpiry(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	session := storage.PasskeySession{
		ID:          "ceremony-1",
		Kind:        "registration",
		UserID:      "user-1",
		SessionJSON: `{"challenge":"abc"}`,
		ExpiresAt:   now.Add(-time.Minute),
	}
	if err := store.PutPasskeySession(context.Background(), session); err != nil {
		t.Fatalf("put session: %v", err)
	}
	if err := store.DeleteExpiredPasskeySessions(context.Background(), now); err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if _, err := store.GetPasskeySession(context.Background(), "ceremony-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected session pruned, got %v", err)
	}
}
