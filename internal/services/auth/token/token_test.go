package token

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/services/auth/user"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	_, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	signer, err := NewSigner(private)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	return signer
}

func testUser() user.User {
	return user.User{ID: "user-1", Email: "pat@example.com", Role: user.RoleManager}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	signer := newTestSigner(t)
	signed, err := signer.Issue(testUser())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	claims, err := signer.Verify(signed)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject = %q, want user-1", claims.Subject)
	}
	if claims.Email != "pat@example.com" {
		t.Fatalf("email claim = %q", claims.Email)
	}
	if claims.Role != "manager" {
		t.Fatalf("role claim = %q, want manager", claims.Role)
	}
	if claims.Issuer != Issuer {
		t.Fatalf("issuer = %q, want %q", claims.Issuer, Issuer)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	signer := newTestSigner(t).WithClock(func() time.Time { return issuedAt })
	signed, err := signer.Issue(testUser())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	later := issuedAt.Add(TTL + time.Minute)
	signer.WithClock(func() time.Time { return later })
	if _, err := signer.Verify(signed); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	signed, err := newTestSigner(t).Issue(testUser())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	other := newTestSigner(t)
	if _, err := other.Verify(signed); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for foreign key, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	signer := newTestSigner(t)
	for _, input := range []string{"", "  ", "not.a.token"} {
		if _, err := signer.Verify(input); !errors.Is(err, ErrInvalid) {
			t.Fatalf("Verify(%q): expected ErrInvalid, got %v", input, err)
		}
	}
}

func TestNewSignerFromEncodedSeed(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}

	for name, encoded := range map[string]string{
		"raw base64": base64.RawStdEncoding.EncodeToString(seed),
		"std base64": base64.StdEncoding.EncodeToString(seed),
	} {
		signer, err := NewSignerFromEncoded(encoded)
		if err != nil {
			t.Fatalf("%s: new signer: %v", name, err)
		}
		signed, err := signer.Issue(testUser())
		if err != nil {
			t.Fatalf("%s: issue: %v", name, err)
		}
		if _, err := signer.Verify(signed); err != nil {
			t.Fatalf("%s: verify: %v", name, err)
		}
	}
}

func TestNewSignerFromEncodedRejectsBadInput(t *testing.T) {
	for _, input := range []string{"", "!!!", base64.StdEncoding.EncodeToString([]byte("short"))} {
		if _, err := NewSignerFromEncoded(input); err == nil {
			t.Fatalf("expected error for input %q", input)
		}
	}
}

func TestClaimsStale(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	signer := newTestSigner(t).WithClock(func() time.Time { return issuedAt })
	signed, err := signer.Issue(testUser())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	claims, err := signer.Verify(signed)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}

	if claims.Stale(issuedAt) {
		t.Fatal("fresh token should not be stale")
	}
	nearExpiry := issuedAt.Add(TTL - RefreshLeeway + time.Second)
	if !claims.Stale(nearExpiry) {
		t.Fatal("token within refresh leeway of expiry should be stale")
	}
	if !(Claims{}).Stale(issuedAt) {
		t.Fatal("claims without expiry should be stale")
	}
}
