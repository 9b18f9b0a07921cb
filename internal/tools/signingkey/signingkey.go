// Package signingkey generates ed25519 token signing keys for the
// identity service.
package signingkey

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"io"
)

// Config holds configuration for signing key generation.
type Config struct {
	PEM bool
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	fs.BoolVar(&cfg.PEM, "pem", cfg.PEM, "also print the seed as a PEM block")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run generates an ed25519 seed and writes it to out in the formats the
// identity service accepts.
func Run(cfg Config, out io.Writer, reader io.Reader) error {
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}

	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(reader, seed); err != nil {
		return fmt.Errorf("generate random seed: %w", err)
	}

	if _, err := fmt.Fprintf(out, "TIMELOGIC_TOKEN_SIGNING_KEY=%s\n", base64.StdEncoding.EncodeToString(seed)); err != nil {
		return err
	}
	if cfg.PEM {
		block := &pem.Block{Type: "PRIVATE KEY", Bytes: seed}
		if err := pem.Encode(out, block); err != nil {
			return fmt.Errorf("encode seed PEM: %w", err)
		}
	}
	return nil
}
