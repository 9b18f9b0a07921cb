package employee

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateEmployeeInput
		want  error
	}{
		{
			name:  "missing first name",
			input: CreateEmployeeInput{LastName: "Torres", Email: "ana@example.com"},
			want:  ErrNameEmpty,
		},
		{
			name:  "missing last name",
			input: CreateEmployeeInput{FirstName: "Ana", Email: "ana@example.com"},
			want:  ErrNameEmpty,
		},
		{
			name:  "invalid email",
			input: CreateEmployeeInput{FirstName: "Ana", LastName: "Torres", Email: "not-an-email"},
			want:  ErrInvalidEmail,
		},
		{
			name: "negative rate",
			input: CreateEmployeeInput{
				FirstName:  "Ana",
				LastName:   "Torres",
				Email:      "ana@example.com",
				HourlyRate: decimal.NewFromInt(-1),
			},
			want: ErrNegativeRate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.input, base, nil); err != tt.want {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewNormalizes(t *testing.T) {
	created, err := New(CreateEmployeeInput{
		FirstName:  "  Ana ",
		LastName:   " Torres ",
		Email:      " ANA@Example.COM ",
		Position:   " Cook ",
		Department: " Kitchen ",
		HourlyRate: decimal.RequireFromString("14.50"),
	}, base, nil)
	if err != nil {
		t.Fatalf("new employee: %v", err)
	}
	if created.Email != "ana@example.com" {
		t.Fatalf("email = %q", created.Email)
	}
	if created.FullName() != "Ana Torres" {
		t.Fatalf("full name = %q", created.FullName())
	}
	if !created.Active {
		t.Fatal("expected active employee")
	}
	if created.Department != "Kitchen" {
		t.Fatalf("department = %q", created.Department)
	}
}

func TestLaborCost(t *testing.T) {
	tests := []struct {
		name   string
		worked time.Duration
		rate   string
		want   string
	}{
		{"whole hours", 8 * time.Hour, "15", "120"},
		{"half hour", 30 * time.Minute, "14.50", "7.25"},
		{"rounds to cents", 100 * time.Minute, "13.33", "22.22"},
		{"zero worked", 0, "20", "0"},
		{"negative clamps", -time.Hour, "20", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate := decimal.RequireFromString(tt.rate)
			want := decimal.RequireFromString(tt.want)
			if got := LaborCost(tt.worked, rate); !got.Equal(want) {
				t.Fatalf("LaborCost = %s, want %s", got, want)
			}
		})
	}
}
