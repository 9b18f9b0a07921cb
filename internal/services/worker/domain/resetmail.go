package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/platform/id"
	authstorage "github.com/PedroJIzGar/timelogic/internal/services/auth/storage"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
	workforce "github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
)

// PasswordResetKind is the notification kind written for reset requests.
const PasswordResetKind = "password_reset"

var resetMailEnglish = template.Must(template.New("reset").Parse(
	`To: {{.Email}}
Subject: Reset your TimeLogic password

Hello,

A password reset was requested for your account. Open the link below to
choose a new password:

  {{.Link}}

The link expires at {{.ExpiresAt}}. If you did not ask for a reset you
can ignore this message.
`))

var resetMailSpanish = template.Must(template.New("reset").Parse(
	`To: {{.Email}}
Subject: Restablece tu contraseña de TimeLogic

Hola,

Se ha solicitado restablecer la contraseña de tu cuenta. Abre el enlace
para elegir una nueva contraseña:

  {{.Link}}

El enlace caduca el {{.ExpiresAt}}. Si no pediste el cambio puedes
ignorar este mensaje.
`))

type passwordResetPayload struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Locale    string `json:"locale"`
	TokenID   string `json:"token_id"`
	ExpiresAt int64  `json:"expires_at"`
}

// PasswordResetMailer writes reset emails into a local mail spool and
// records an in-app notification for the requesting user.
type PasswordResetMailer struct {
	spoolDir      string
	webBaseURL    string
	notifications NotificationWriter
	clock         func() time.Time
}

// NewPasswordResetMailer creates a password reset event handler. Mail files
// land under spoolDir, one file per message.
func NewPasswordResetMailer(spoolDir, webBaseURL string, notifications NotificationWriter, clock func() time.Time) *PasswordResetMailer {
	if clock == nil {
		clock = time.Now
	}
	return &PasswordResetMailer{
		spoolDir:      spoolDir,
		webBaseURL:    strings.TrimRight(webBaseURL, "/"),
		notifications: notifications,
		clock:         clock,
	}
}

// Handle renders the localized reset email and spools it to disk.
func (m *PasswordResetMailer) Handle(ctx context.Context, event authstorage.OutboxEvent) error {
	if m == nil || m.spoolDir == "" {
		return Permanent(fmt.Errorf("mail spool dir is not configured"))
	}
	var payload passwordResetPayload
	if err := json.Unmarshal([]byte(event.PayloadJSON), &payload); err != nil {
		return Permanent(fmt.Errorf("decode password reset payload: %w", err))
	}
	payload.Email = strings.TrimSpace(payload.Email)
	payload.TokenID = strings.TrimSpace(payload.TokenID)
	if payload.Email == "" || payload.TokenID == "" {
		return Permanent(fmt.Errorf("password reset payload is missing email or token_id"))
	}

	expiresAt := time.UnixMilli(payload.ExpiresAt).UTC()
	link := m.webBaseURL + routepath.ResetComplete(payload.TokenID)

	tmpl := resetMailEnglish
	if isSpanish(payload.Locale) {
		tmpl = resetMailSpanish
	}
	var mail bytes.Buffer
	err := tmpl.Execute(&mail, map[string]string{
		"Email":     payload.Email,
		"Link":      link,
		"ExpiresAt": expiresAt.Format(time.RFC1123),
	})
	if err != nil {
		return Permanent(fmt.Errorf("render reset mail: %w", err))
	}

	if err := os.MkdirAll(m.spoolDir, 0o755); err != nil {
		return fmt.Errorf("create mail spool dir: %w", err)
	}
	name := fmt.Sprintf("%d-reset-%s.eml", m.clock().UTC().UnixMilli(), payload.TokenID)
	if err := os.WriteFile(filepath.Join(m.spoolDir, name), mail.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write reset mail: %w", err)
	}

	return m.notifyRequested(ctx, payload)
}

// notifyRequested is skipped when the payload has no user record to target.
func (m *PasswordResetMailer) notifyRequested(ctx context.Context, payload passwordResetPayload) error {
	if m.notifications == nil || strings.TrimSpace(payload.UserID) == "" {
		return nil
	}
	notificationID, err := id.NewID()
	if err != nil {
		return fmt.Errorf("generate notification id: %w", err)
	}
	title := "Password reset requested"
	body := "A reset link was sent to " + payload.Email + "."
	if isSpanish(payload.Locale) {
		title = "Restablecimiento de contraseña solicitado"
		body = "Se envió un enlace de restablecimiento a " + payload.Email + "."
	}
	return m.notifications.PutNotification(ctx, workforce.Notification{
		ID:        notificationID,
		UserID:    payload.UserID,
		Kind:      PasswordResetKind,
		Title:     title,
		Body:      body,
		DedupeKey: "password-reset:" + payload.TokenID,
		CreatedAt: m.clock().UTC(),
	})
}
