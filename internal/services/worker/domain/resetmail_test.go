package domain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	authstorage "github.com/PedroJIzGar/timelogic/internal/services/auth/storage"
)

func TestPasswordResetMailer_SpoolsLocalizedMail(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	spool := t.TempDir()
	writer := &fakeNotificationWriter{}
	mailer := NewPasswordResetMailer(spool, "http://localhost:8080/", writer, func() time.Time { return now })

	err := mailer.Handle(t.Context(), authstorage.OutboxEvent{
		ID:          "evt-1",
		EventType:   authstorage.EventPasswordResetRequested,
		PayloadJSON: `{"user_id":"user-1","email":"ana@example.com","locale":"es-ES","token_id":"tok-1","expires_at":1772000000000}`,
	})
	if err != nil {
		t.Fatalf("handle password reset: %v", err)
	}

	entries, err := os.ReadDir(spool)
	if err != nil {
		t.Fatalf("read spool dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("spooled files = %d, want 1", len(entries))
	}
	mail, err := os.ReadFile(filepath.Join(spool, entries[0].Name()))
	if err != nil {
		t.Fatalf("read mail: %v", err)
	}
	body := string(mail)
	if !strings.Contains(body, "To: ana@example.com") {
		t.Fatalf("mail missing recipient:\n%s", body)
	}
	if !strings.Contains(body, "http://localhost:8080/auth/reset/tok-1") {
		t.Fatalf("mail missing reset link:\n%s", body)
	}
	if !strings.Contains(body, "Restablece") {
		t.Fatalf("mail is not localized:\n%s", body)
	}

	if len(writer.stored) != 1 {
		t.Fatalf("stored notifications = %d, want 1", len(writer.stored))
	}
	if writer.stored[0].DedupeKey != "password-reset:tok-1" {
		t.Fatalf("dedupe key = %q, want %q", writer.stored[0].DedupeKey, "password-reset:tok-1")
	}
	if writer.stored[0].Kind != PasswordResetKind {
		t.Fatalf("kind = %q, want %q", writer.stored[0].Kind, PasswordResetKind)
	}
}

func TestPasswordResetMailer_MissingTokenPermanent(t *testing.T) {
	mailer := NewPasswordResetMailer(t.TempDir(), "http://localhost:8080", nil, nil)

	err := mailer.Handle(t.Context(), authstorage.OutboxEvent{
		ID:          "evt-1",
		EventType:   authstorage.EventPasswordResetRequested,
		PayloadJSON: `{"email":"ana@example.com"}`,
	})
	if !IsPermanent(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestPasswordResetMailer_UnknownUserSkipsNotification(t *testing.T) {
	spool := t.TempDir()
	writer := &fakeNotificationWriter{}
	mailer := NewPasswordResetMailer(spool, "http://localhost:8080", writer, nil)

	err := mailer.Handle(t.Context(), authstorage.OutboxEvent{
		ID:          "evt-1",
		EventType:   authstorage.EventPasswordResetRequested,
		PayloadJSON: `{"email":"ana@example.com","locale":"en-US","token_id":"tok-2","expires_at":1772000000000}`,
	})
	if err != nil {
		t.Fatalf("handle password reset: %v", err)
	}
	if len(writer.stored) != 0 {
		t.Fatalf("stored notifications = %d, want 0", len(writer.stored))
	}
	entries, err := os.ReadDir(spool)
	if err != nil {
		t.Fatalf("read spool dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("spooled files = %d, want 1", len(entries))
	}
}

func TestPasswordResetMailer_MalformedPayloadPermanent(t *testing.T) {
	mailer := NewPasswordResetMailer(t.TempDir(), "http://localhost:8080", nil, nil)

	err := mailer.Handle(t.Context(), authstorage.OutboxEvent{
		ID:          "evt-1",
		EventType:   authstorage.EventPasswordResetRequested,
		PayloadJSON: `not json`,
	})
	if !IsPermanent(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}
