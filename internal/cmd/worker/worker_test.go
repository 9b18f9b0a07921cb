package worker

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port == 0 {
		t.Fatal("expected a default port")
	}
	if cfg.AuthDBPath == "" || cfg.WorkforceDBPath == "" || cfg.WorkerDBPath == "" {
		t.Fatalf("expected default database paths, got %+v", cfg)
	}
	if cfg.PollInterval <= 0 {
		t.Fatalf("poll interval = %v, want positive", cfg.PollInterval)
	}
}

func TestParseConfigFlagOverrides(t *testing.T) {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{
		"-port", "9099",
		"-auth-db-path", "/tmp/auth.db",
		"-consumer", "worker-blue",
		"-poll-interval", "250ms",
	})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9099 {
		t.Fatalf("port = %d, want 9099", cfg.Port)
	}
	if cfg.AuthDBPath != "/tmp/auth.db" {
		t.Fatalf("auth db path = %q, want %q", cfg.AuthDBPath, "/tmp/auth.db")
	}
	if cfg.Consumer != "worker-blue" {
		t.Fatalf("consumer = %q, want %q", cfg.Consumer, "worker-blue")
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Fatalf("poll interval = %v, want 250ms", cfg.PollInterval)
	}
}
