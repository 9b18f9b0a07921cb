package employee

import (
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/platform/id"
)

var (
	// ErrNameEmpty indicates a missing first or last name.
	ErrNameEmpty = apperrors.New(apperrors.CodeEmployeeNameEmpty, "employee name is required")
	// ErrInvalidEmail indicates a syntactically invalid email address.
	ErrInvalidEmail = apperrors.New(apperrors.CodeEmployeeEmailInvalid, "employee email is not valid")
	// ErrNegativeRate indicates an hourly rate below zero.
	ErrNegativeRate = apperrors.New(apperrors.CodeEmployeeRateNegative, "hourly rate cannot be negative")
	// ErrInactive indicates an operation on a deactivated employee.
	ErrInactive = apperrors.New(apperrors.CodeEmployeeInactive, "employee is not active")
)

// Employee is one roster member.
type Employee struct {
	ID         string
	UserID     string
	FirstName  string
	LastName   string
	Email      string
	Position   string
	Department string
	HourlyRate decimal.Decimal
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateEmployeeInput describes the fields needed to add an employee.
type CreateEmployeeInput struct {
	UserID     string
	FirstName  string
	LastName   string
	Email      string
	Position   string
	Department string
	HourlyRate decimal.Decimal
}

// New validates input and builds an active employee.
func New(input CreateEmployeeInput, now time.Time, idGenerator func() (string, error)) (Employee, error) {
	normalized, err := Normalize(input)
	if err != nil {
		return Employee{}, err
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	employeeID, err := idGenerator()
	if err != nil {
		return Employee{}, apperrors.Wrap(apperrors.CodeUnknown, "generate employee id", err)
	}
	instant := now.UTC()
	return Employee{
		ID:         employeeID,
		UserID:     normalized.UserID,
		FirstName:  normalized.FirstName,
		LastName:   normalized.LastName,
		Email:      normalized.Email,
		Position:   normalized.Position,
		Department: normalized.Department,
		HourlyRate: normalized.HourlyRate,
		Active:     true,
		CreatedAt:  instant,
		UpdatedAt:  instant,
	}, nil
}

// Normalize trims and validates employee input.
func Normalize(input CreateEmployeeInput) (CreateEmployeeInput, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if input.FirstName == "" || input.LastName == "" {
		return CreateEmployeeInput{}, ErrNameEmpty
	}
	email, err := NormalizeEmail(input.Email)
	if err != nil {
		return CreateEmployeeInput{}, err
	}
	input.Email = email
	if input.HourlyRate.IsNegative() {
		return CreateEmployeeInput{}, ErrNegativeRate
	}
	input.UserID = strings.TrimSpace(input.UserID)
	input.Position = strings.TrimSpace(input.Position)
	input.Department = strings.TrimSpace(input.Department)
	return input, nil
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

// FullName renders the display name for lists and boards.
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// LaborCost prices worked time at an hourly rate, rounded to cents.
func LaborCost(worked time.Duration, rate decimal.Decimal) decimal.Decimal {
	if worked <= 0 {
		return decimal.Zero.Round(2)
	}
	seconds := decimal.NewFromInt(int64(worked / time.Second))
	hours := seconds.Div(decimal.NewFromInt(3600))
	return hours.Mul(rate).Round(2)
}
