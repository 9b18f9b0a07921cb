package resthttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/storage"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/user"
)

var errEmailTaken = apperrors.New(apperrors.CodeAuthEmailTaken, "email is already registered")

type createUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Locale      string `json:"locale"`
}

func (s *Service) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in createUserRequest
	if err := decodeJSON(r, &in); err != nil {
		writeInvalidArgument(w, "request body is not valid JSON")
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
	created, err := user.CreateUser(user.CreateUserInput{
		Email:        in.Email,
		PasswordHash: string(hash),
		DisplayName:  in.DisplayName,
		Role:         user.Role(in.Role),
		Locale:       in.Locale,
	}, s.clock, s.idGenerator)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := s.store.GetUserByEmail(r.Context(), created.Email); err == nil {
		writeError(w, errEmailTaken)
		return
	} else if err != storage.ErrNotFound {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "check email", err))
		return
	}

	event, err := s.signupEvent(created)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.putUserWithEvent(r.Context(), created, event); err != nil {
		if isUniqueViolation(err) {
			writeError(w, errEmailTaken)
			return
		}
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "put user", err))
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		User userPayload `json:"user"`
	}{User: userToPayload(created)})
}

// signupEvent stages the integration event announcing a completed signup.
func (s *Service) signupEvent(u user.User) (storage.OutboxEvent, error) {
	eventID, err := s.idGenerator()
	if err != nil {
		return storage.OutboxEvent{}, apperrors.Wrap(apperrors.CodeUnknown, "generate event id", err)
	}
	payload, err := json.Marshal(struct {
		UserID      string `json:"user_id"`
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		Locale      string `json:"locale"`
	}{UserID: u.ID, Email: u.Email, DisplayName: u.DisplayName, Locale: u.Locale})
	if err != nil {
		return storage.OutboxEvent{}, apperrors.Wrap(apperrors.CodeUnknown, "encode event payload", err)
	}
	now := s.clock().UTC()
	return storage.OutboxEvent{
		ID:            eventID,
		EventType:     storage.EventSignupCompleted,
		PayloadJSON:   string(payload),
		DedupeKey:     fmt.Sprintf("signup:user:%s:v1", u.ID),
		Status:        storage.OutboxStatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// putUserWithEvent commits the user and its signup event atomically when
// the store supports transactions, falling back to a bare write otherwise.
func (s *Service) putUserWithEvent(ctx context.Context, u user.User, event storage.OutboxEvent) error {
	if s.txStore != nil {
		return s.txStore.PutUserWithOutboxEvent(ctx, u, event)
	}
	return s.store.PutUser(ctx, u)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Service) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.PathValue("userID"))
	if userID == "" {
		writeInvalidArgument(w, "user id is required")
		return
	}
	var in changePasswordRequest
	if err := decodeJSON(r, &in); err != nil {
		writeInvalidArgument(w, "request body is not valid JSON")
		return
	}
	found, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		writeError(w, apperrors.New(apperrors.CodeAuthPasswordMismatch, "current password is incorrect"))
		return
	}
	if err := user.ValidatePassword(in.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), BcryptCost)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "hash password", err))
		return
	}
	found.PasswordHash = string(hash)
	found.UpdatedAt = s.clock().UTC()
	if err := s.store.UpdateUser(r.Context(), found); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateUserRequest struct {
	DisplayName *string `json:"display_name"`
	Locale      *string `json:"locale"`
}

func (s *Service) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.PathValue("userID"))
	if userID == "" {
		writeInvalidArgument(w, "user id is required")
		return
	}
	var in updateUserRequest
	if err := decodeJSON(r, &in); err != nil {
		writeInvalidArgument(w, "request body is not valid JSON")
		return
	}
	found, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	changed := false
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if name == "" {
			writeInvalidArgument(w, "display name cannot be empty")
			return
		}
		found.DisplayName = name
		changed = true
	}
	if in.Locale != nil {
		found.Locale = strings.TrimSpace(*in.Locale)
		changed = true
	}
	if changed {
		found.UpdatedAt = s.clock().UTC()
		if err := s.store.UpdateUser(r.Context(), found); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, struct {
		User userPayload `json:"user"`
	}{User: userToPayload(found)})
}
