package domain

import (
	"context"
	"strings"
	"testing"
	"time"

	authstorage "github.com/PedroJIzGar/timelogic/internal/services/auth/storage"
	workforce "github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
)

type fakeNotificationWriter struct {
	stored []workforce.Notification
	err    error
}

func (f *fakeNotificationWriter) PutNotification(_ context.Context, n workforce.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, n)
	return nil
}

func TestSignupWelcomeHandler_HandleSuccess(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	writer := &fakeNotificationWriter{}
	handler := NewSignupWelcomeHandler(writer, func() time.Time { return now })

	err := handler.Handle(t.Context(), authstorage.OutboxEvent{
		ID:          "evt-1",
		EventType:   authstorage.EventSignupCompleted,
		PayloadJSON: `{"user_id":"user-1","email":"ana@example.com","display_name":"Ana","locale":"en-US"}`,
	})
	if err != nil {
		t.Fatalf("handle signup welcome: %v", err)
	}
	if len(writer.stored) != 1 {
		t.Fatalf("stored notifications = %d, want 1", len(writer.stored))
	}
	n := writer.stored[0]
	if n.UserID != "user-1" {
		t.Fatalf("user id = %q, want %q", n.UserID, "user-1")
	}
	if n.Kind != WelcomeKind {
		t.Fatalf("kind = %q, want %q", n.Kind, WelcomeKind)
	}
	if n.DedupeKey != "welcome:user:user-1:v1" {
		t.Fatalf("dedupe key = %q, want %q", n.DedupeKey, "welcome:user:user-1:v1")
	}
	if !strings.Contains(n.Title, "Ana") {
		t.Fatalf("title %q does not greet the user", n.Title)
	}
	if !n.CreatedAt.Equal(now) {
		t.Fatalf("created at = %v, want %v", n.CreatedAt, now)
	}
}

func TestSignupWelcomeHandler_SpanishLocale(t *testing.T) {
	writer := &fakeNotificationWriter{}
	handler := NewSignupWelcomeHandler(writer, nil)

	err := handler.Handle(t.Context(), authstorage.OutboxEvent{
		ID:          "evt-1",
		EventType:   authstorage.EventSignupCompleted,
		PayloadJSON: `{"user_id":"user-2","email":"luis@example.com","display_name":"Luis","locale":"es-ES"}`,
	})
	if err != nil {
		t.Fatalf("handle signup welcome: %v", err)
	}
	if !strings.Contains(writer.stored[0].Title, "Bienvenido") {
		t.Fatalf("title %q is not localized", writer.stored[0].Title)
	}
}

func TestSignupWelcomeHandler_MissingUserIDPermanent(t *testing.T) {
	handler := NewSignupWelcomeHandler(&fakeNotificationWriter{}, nil)

	err := handler.Handle(t.Context(), authstorage.OutboxEvent{
		ID:          "evt-1",
		EventType:   authstorage.EventSignupCompleted,
		PayloadJSON: `{}`,
	})
	if err == nil {
		t.Fatal("expected error for missing user id")
	}
	if !IsPermanent(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestSignupWelcomeHandler_MalformedPayloadPermanent(t *testing.T) {
	handler := NewSignupWelcomeHandler(&fakeNotificationWriter{}, nil)

	err := handler.Handle(t.Context(), authstorage.OutboxEvent{
		ID:          "evt-1",
		EventType:   authstorage.EventSignupCompleted,
		PayloadJSON: `{not json`,
	})
	if !IsPermanent(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestSignupWelcomeHandler_StoreErrorRetries(t *testing.T) {
	writer := &fakeNotificationWriter{err: context.DeadlineExceeded}
	handler := NewSignupWelcomeHandler(writer, nil)

	err := handler.Handle(t.Context(), authstorage.OutboxEvent{
		ID:          "evt-1",
		EventType:   authstorage.EventSignupCompleted,
		PayloadJSON: `{"user_id":"user-1"}`,
	})
	if err == nil {
		t.Fatal("expected error from store")
	}
	if IsPermanent(err) {
		t.Fatalf("store errors should be retryable, got permanent %v", err)
	}
}
