// Package user provides identity user management.
package user

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/platform/id"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

var (
	// ErrInvalidEmail indicates a missing or malformed email address.
	ErrInvalidEmail = apperrors.New(apperrors.CodeAuthEmailInvalid, "email address is not valid")
	// ErrPasswordTooShort indicates a password under the minimum length.
	ErrPasswordTooShort = apperrors.WithMetadata(
		apperrors.CodeAuthPasswordTooShort,
		"password is too short",
		map[string]string{"MinLength": "8"},
	)
)

// Role identifies the coarse authorization level carried in ID tokens.
type Role string

const (
	// RoleAdmin can manage every resource including other users.
	RoleAdmin Role = "admin"
	// RoleManager can manage employees, schedules, and approvals.
	RoleManager Role = "manager"
	// RoleEmployee can view schedules and operate their own punch clock.
	RoleEmployee Role = "employee"
)

// ValidRole reports whether the role is one of the known values.
func ValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	default:
		return false
	}
}

// User represents an authenticated identity record.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	Role         Role
	Locale       string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUserInput describes the metadata needed to create a user.
type CreateUserInput struct {
	Email        string
	PasswordHash string
	DisplayName  string
	Role         Role
	Locale       string
}

// NormalizeEmail lowercases and trims an email address, validating syntax.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// ValidatePassword enforces the minimum password policy on raw passwords.
// Hashing happens at the service layer; the domain only sees length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// CreateUser creates a durable user identity from validated input.
//
// The service layer treats this as the canonical point where untrusted signup
// data becomes a stable identity used by auth, web, and worker paths.
func CreateUser(input CreateUserInput, now func() time.Time, idGenerator func() (string, error)) (User, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateUserInput(input)
	if err != nil {
		return User{}, err
	}

	userID, err := idGenerator()
	if err != nil {
		return User{}, fmt.Errorf("generate user id: %w", err)
	}

	createdAt := now().UTC()
	return User{
		ID:           userID,
		Email:        normalized.Email,
		PasswordHash: normalized.PasswordHash,
		DisplayName:  normalized.DisplayName,
		Role:         normalized.Role,
		Locale:       normalized.Locale,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}, nil
}

// NormalizeCreateUserInput trims and normalizes input before validation.
func NormalizeCreateUserInput(input CreateUserInput) (CreateUserInput, error) {
	email, err := NormalizeEmail(input.Email)
	if err != nil {
		return CreateUserInput{}, err
	}
	input.Email = email
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if input.DisplayName == "" {
		input.DisplayName = displayNameFromEmail(email)
	}
	if input.Role == "" || !ValidRole(input.Role) {
		input.Role = RoleEmployee
	}
	input.Locale = strings.TrimSpace(input.Locale)
	if input.Locale == "" {
		input.Locale = "en-US"
	}
	return input, nil
}

func displayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
