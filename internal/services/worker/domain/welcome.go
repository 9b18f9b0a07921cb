package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/platform/id"
	authstorage "github.com/PedroJIzGar/timelogic/internal/services/auth/storage"
	workforce "github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
)

// WelcomeKind is the notification kind written for completed signups.
const WelcomeKind = "welcome"

// NotificationWriter is the workforce store surface the worker writes to.
type NotificationWriter interface {
	PutNotification(ctx context.Context, n workforce.Notification) error
}

type signupCompletedPayload struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Locale      string `json:"locale"`
}

// SignupWelcomeHandler turns signup completed events into in-app welcome
// notifications. The dedupe key keeps redelivered events idempotent.
type SignupWelcomeHandler struct {
	notifications NotificationWriter
	clock         func() time.Time
}

// NewSignupWelcomeHandler creates a signup welcome event handler.
func NewSignupWelcomeHandler(notifications NotificationWriter, clock func() time.Time) *SignupWelcomeHandler {
	if clock == nil {
		clock = time.Now
	}
	return &SignupWelcomeHandler{notifications: notifications, clock: clock}
}

// Handle stores a welcome notification for the new user.
func (h *SignupWelcomeHandler) Handle(ctx context.Context, event authstorage.OutboxEvent) error {
	if h == nil || h.notifications == nil {
		return Permanent(fmt.Errorf("notification store is not configured"))
	}
	var payload signupCompletedPayload
	if err := json.Unmarshal([]byte(event.PayloadJSON), &payload); err != nil {
		return Permanent(fmt.Errorf("decode signup payload: %w", err))
	}
	payload.UserID = strings.TrimSpace(payload.UserID)
	if payload.UserID == "" {
		return Permanent(fmt.Errorf("signup payload is missing user_id"))
	}

	notificationID, err := id.NewID()
	if err != nil {
		return fmt.Errorf("generate notification id: %w", err)
	}
	title, body := welcomeCopy(payload.Locale, payload.DisplayName)
	return h.notifications.PutNotification(ctx, workforce.Notification{
		ID:        notificationID,
		UserID:    payload.UserID,
		Kind:      WelcomeKind,
		Title:     title,
		Body:      body,
		DedupeKey: welcomeDedupeKey(payload.UserID),
		CreatedAt: h.clock().UTC(),
	})
}

func welcomeDedupeKey(userID string) string {
	return "welcome:user:" + userID + ":v1"
}

func welcomeCopy(locale, displayName string) (title, body string) {
	name := strings.TrimSpace(displayName)
	if isSpanish(locale) {
		if name == "" {
			return "Bienvenido a TimeLogic", "Tu cuenta está lista. Pide a un gestor que te asigne a la plantilla."
		}
		return "Bienvenido a TimeLogic, " + name, "Tu cuenta está lista. Pide a un gestor que te asigne a la plantilla."
	}
	if name == "" {
		return "Welcome to TimeLogic", "Your account is ready. Ask a manager to link you to the roster."
	}
	return "Welcome to TimeLogic, " + name, "Your account is ready. Ask a manager to link you to the roster."
}

func isSpanish(locale string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(locale)), "es")
}
