package web

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr == "" {
		t.Fatal("HTTPAddr is empty")
	}
	if cfg.AuthBaseURL == "" {
		t.Fatal("AuthBaseURL is empty")
	}
	if cfg.DBPath == "" {
		t.Fatal("DBPath is empty")
	}
}

func TestParseConfigFlagOverrides(t *testing.T) {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{
		"-http-addr", "localhost:9999",
		"-auth-base-url", "http://auth.internal:8081",
		"-db-path", "/tmp/workforce-test.db",
		"-trust-forwarded-proto",
	})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "localhost:9999" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.AuthBaseURL != "http://auth.internal:8081" {
		t.Fatalf("AuthBaseURL = %q", cfg.AuthBaseURL)
	}
	if cfg.DBPath != "/tmp/workforce-test.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if !cfg.TrustForwardedProto {
		t.Fatal("TrustForwardedProto = false")
	}
}
