package resthttp

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/storage"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/user"
)

type requestPasswordResetRequest struct {
	Email string `json:"email"`
}

// acceptedBody is the fixed response for every reset request. It must
// stay byte-identical whether or not the email maps to an account.
var acceptedBody = struct {
	Status string `json:"status"`
}{Status: "accepted"}

func (s *Service) handleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var in requestPasswordResetRequest
	if err := decodeJSON(r, &in); err != nil {
		writeInvalidArgument(w, "request body is not valid JSON")
		return
	}
	email, err := user.NormalizeEmail(in.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	if s.resetStore == nil || s.txStore == nil {
		writeError(w, apperrors.New(apperrors.CodeUnknown, "password reset store is not configured"))
		return
	}

	found, err := s.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		if err == storage.ErrNotFound {
			writeJSON(w, http.StatusAccepted, acceptedBody)
			return
		}
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "get user", err))
		return
	}

	tokenID, err := s.idGenerator()
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "generate reset token", err))
		return
	}
	now := s.clock().UTC()
	reset := storage.PasswordReset{
		TokenID:   tokenID,
		UserID:    found.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(ResetTokenTTL),
	}
	event, err := s.resetEvent(found, reset)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.txStore.PutPasswordResetWithOutboxEvent(r.Context(), reset, event); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "put password reset", err))
		return
	}
	writeJSON(w, http.StatusAccepted, acceptedBody)
}

func (s *Service) resetEvent(u user.User, reset storage.PasswordReset) (storage.OutboxEvent, error) {
	eventID, err := s.idGenerator()
	if err != nil {
		return storage.OutboxEvent{}, apperrors.Wrap(apperrors.CodeUnknown, "generate event id", err)
	}
	payload, err := json.Marshal(struct {
		UserID    string `json:"user_id"`
		Email     string `json:"email"`
		Locale    string `json:"locale"`
		TokenID   string `json:"token_id"`
		ExpiresAt int64  `json:"expires_at"`
	}{UserID: u.ID, Email: u.Email, Locale: u.Locale, TokenID: reset.TokenID, ExpiresAt: reset.ExpiresAt.UnixMilli()})
	if err != nil {
		return storage.OutboxEvent{}, apperrors.Wrap(apperrors.CodeUnknown, "encode event payload", err)
	}
	now := s.clock().UTC()
	return storage.OutboxEvent{
		ID:            eventID,
		EventType:     storage.EventPasswordResetRequested,
		PayloadJSON:   string(payload),
		DedupeKey:     "password_reset:" + reset.TokenID,
		Status:        storage.OutboxStatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

type completePasswordResetRequest struct {
	Password string `json:"password"`
}

func (s *Service) handleCompletePasswordReset(w http.ResponseWriter, r *http.Request) {
	tokenID := strings.TrimSpace(r.PathValue("tokenID"))
	if tokenID == "" {
		writeError(w, apperrors.New(apperrors.CodeAuthResetTokenInvalid, "reset token is not valid"))
		return
	}
	var in completePasswordResetRequest
	if err := decodeJSON(r, &in); err != nil {
		writeInvalidArgument(w, "request body is not valid JSON")
		return
	}
	if s.resetStore == nil {
		writeError(w, apperrors.New(apperrors.CodeUnknown, "password reset store is not configured"))
		return
	}

	reset, err := s.resetStore.GetPasswordReset(r.Context(), tokenID)
	if err != nil {
		if err == storage.ErrNotFound {
			writeError(w, apperrors.New(apperrors.CodeAuthResetTokenInvalid, "reset token is not valid"))
			return
		}
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "get password reset", err))
		return
	}
	now := s.clock().UTC()
	if reset.UsedAt != nil {
		writeError(w, apperrors.New(apperrors.CodeAuthResetTokenUsed, "reset token was already used"))
		return
	}
	if !reset.ExpiresAt.After(now) {
		writeError(w, apperrors.New(apperrors.CodeAuthResetTokenExpired, "reset token has expired"))
		return
	}
	if err := user.ValidatePassword(in.Password); err != nil {
		writeError(w, err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), BcryptCost)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "hash password", err))
		return
	}

	// Consume the token before touching the password so a concurrent
	// completion with the same token loses here instead of double-setting.
	if err := s.resetStore.MarkPasswordResetUsed(r.Context(), tokenID, now); err != nil {
		if err == storage.ErrNotFound {
			writeError(w, apperrors.New(apperrors.CodeAuthResetTokenUsed, "reset token was already used"))
			return
		}
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "mark reset used", err))
		return
	}
	found, err := s.store.GetUser(r.Context(), reset.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	found.PasswordHash = string(hash)
	found.UpdatedAt = now
	if err := s.store.UpdateUser(r.Context(), found); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
