// Package token issues and verifies ed25519-signed ID tokens.
package token

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/user"
)

// Issuer is the iss claim stamped on every TimeLogic ID token.
const Issuer = "timelogic-auth"

// TTL is the lifetime of an issued ID token. Sessions outlive tokens;
// holders mint fresh tokens from the durable session as these expire.
const TTL = 15 * time.Minute

// RefreshLeeway is how close to expiry a token is treated as stale by
// holders deciding whether to refresh.
const RefreshLeeway = 30 * time.Second

// ErrExpired indicates a token past its expiry.
var ErrExpired = apperrors.New(apperrors.CodeAuthSessionExpired, "id token is expired")

// ErrInvalid indicates a token that fails signature or claim checks.
var ErrInvalid = apperrors.New(apperrors.CodeAuthSessionExpired, "id token is not valid")

// Claims carries the identity claims embedded in an ID token.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Signer issues and verifies ID tokens with a fixed ed25519 keypair.
type Signer struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
	clock   func() time.Time
}

// NewSigner builds a Signer from an ed25519 private key.
func NewSigner(private ed25519.PrivateKey) (*Signer, error) {
	if len(private) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("ed25519 private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(private))
	}
	public, ok := private.Public().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("derive ed25519 public key")
	}
	return &Signer{private: private, public: public, clock: time.Now}, nil
}

// NewSignerFromEncoded builds a Signer from an encoded signing key as
// produced by the signing-key tool: a base64 ed25519 seed (raw or
// standard alphabet) or a PEM-encoded PKCS#8 block.
func NewSignerFromEncoded(encoded string) (*Signer, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("signing key is required")
	}
	if strings.HasPrefix(encoded, "-----BEGIN") {
		block, _ := pem.Decode([]byte(encoded))
		if block == nil {
			return nil, fmt.Errorf("decode signing key PEM")
		}
		return NewSignerFromEncoded(base64.StdEncoding.EncodeToString(block.Bytes))
	}
	raw, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		raw, err = base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode signing key: %w", err)
		}
	}
	switch len(raw) {
	case ed25519.SeedSize:
		return NewSigner(ed25519.NewKeyFromSeed(raw))
	case ed25519.PrivateKeySize:
		return NewSigner(ed25519.PrivateKey(raw))
	default:
		return nil, fmt.Errorf("signing key must be a %d-byte seed or %d-byte private key, got %d bytes",
			ed25519.SeedSize, ed25519.PrivateKeySize, len(raw))
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *Signer) WithClock(clock func() time.Time) *Signer {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// PublicKey exposes the verification key for out-of-process verifiers.
func (s *Signer) PublicKey() ed25519.PublicKey {
	if s == nil {
		return nil
	}
	return s.public
}

// Issue signs a fresh ID token for the user.
func (s *Signer) Issue(u user.User) (string, error) {
	if s == nil || s.private == nil {
		return "", fmt.Errorf("signer is not configured")
	}
	now := s.clock().UTC()
	claims := Claims{
		Email: u.Email,
		Role:  string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(s.private)
	if err != nil {
		return "", fmt.Errorf("sign id token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, returning its claims.
func (s *Signer) Verify(tokenString string) (Claims, error) {
	if s == nil || s.public == nil {
		return Claims{}, fmt.Errorf("signer is not configured")
	}
	return VerifyWithKey(tokenString, s.public, s.clock)
}

// VerifyWithKey validates a token against a public key. Verification is
// split out so holders without the private key can check tokens locally.
func VerifyWithKey(tokenString string, public ed25519.PublicKey, clock func() time.Time) (Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return Claims{}, ErrInvalid
	}
	if clock == nil {
		clock = time.Now
	}
	var claims Claims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return public, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(clock),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrInvalid
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalid
	}
	return claims, nil
}

// ParseUnverified extracts claims without checking the signature. Only
// for holders that received the token straight from the issuer and need
// a staleness or role read; trust decisions require VerifyWithKey.
func ParseUnverified(tokenString string) (Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return Claims{}, ErrInvalid
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return Claims{}, ErrInvalid
	}
	return claims, nil
}

// Stale reports whether claims expire within RefreshLeeway of now.
func (c Claims) Stale(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return !c.ExpiresAt.Time.After(now.Add(RefreshLeeway))
}
