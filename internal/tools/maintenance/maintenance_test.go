package maintenance

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"strings"
	"testing"
	"time"
)

type fakePruneStore struct {
	sessionCutoff time.Time
	resetCutoff   time.Time
	outboxCutoff  time.Time
	passkeyCalled bool
	closed        bool
	err           error
}

func (f *fakePruneStore) DeleteExpiredWebSessions(_ context.Context, cutoff time.Time) (int64, error) {
	f.sessionCutoff = cutoff
	return 3, f.err
}

func (f *fakePruneStore) DeleteStalePasswordResets(_ context.Context, cutoff time.Time) (int64, error) {
	f.resetCutoff = cutoff
	return 2, f.err
}

func (f *fakePruneStore) DeleteExpiredPasskeySessions(_ context.Context, _ time.Time) error {
	f.passkeyCalled = true
	return f.err
}

func (f *fakePruneStore) DeleteDispatchedOutboxEvents(_ context.Context, cutoff time.Time) (int64, error) {
	f.outboxCutoff = cutoff
	return 5, f.err
}

func (f *fakePruneStore) Close() error {
	f.closed = true
	return nil
}

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("maintenance", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.AuthDBPath == "" {
		t.Fatal("expected a default auth database path")
	}
	if cfg.AuthAddr == "" || cfg.WorkerAddr == "" {
		t.Fatalf("expected default health addresses, got %+v", cfg)
	}
	if cfg.OutboxRetention != 168*time.Hour {
		t.Fatalf("outbox retention = %v, want 168h", cfg.OutboxRetention)
	}
	if cfg.Prune || cfg.Health {
		t.Fatal("expected no action selected by default")
	}
}

func TestParseConfigSelectsActions(t *testing.T) {
	fs := flag.NewFlagSet("maintenance", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"-prune", "-outbox-retention", "24h"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !cfg.Prune {
		t.Fatal("expected prune selected")
	}
	if cfg.OutboxRetention != 24*time.Hour {
		t.Fatalf("outbox retention = %v, want 24h", cfg.OutboxRetention)
	}
}

func TestRunWithoutActionFails(t *testing.T) {
	err := Run(t.Context(), Config{}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error when no action is selected")
	}
}

func TestPruneUsesRetentionCutoffs(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	store := &fakePruneStore{}
	out := &bytes.Buffer{}

	err := prune(t.Context(), Config{OutboxRetention: 7 * 24 * time.Hour}, store, out, func() time.Time { return now })
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if !store.sessionCutoff.Equal(now) {
		t.Fatalf("session cutoff = %v, want %v", store.sessionCutoff, now)
	}
	if !store.outboxCutoff.Equal(now.Add(-7 * 24 * time.Hour)) {
		t.Fatalf("outbox cutoff = %v, want now-7d", store.outboxCutoff)
	}
	if !store.passkeyCalled {
		t.Fatal("expected passkey session prune")
	}
	if !strings.Contains(out.String(), "pruned 3 web sessions, 2 password resets, 5 outbox events") {
		t.Fatalf("unexpected summary: %q", out.String())
	}
}

func TestPruneSurfacesStoreError(t *testing.T) {
	store := &fakePruneStore{err: errors.New("disk is sad")}

	err := prune(t.Context(), Config{}, store, &bytes.Buffer{}, time.Now)
	if err == nil || !strings.Contains(err.Error(), "disk is sad") {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
