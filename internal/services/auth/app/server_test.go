package server

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"
)

func setSigningKey(t *testing.T) {
	t.Helper()
	_, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	t.Setenv("TIMELOGIC_TOKEN_SIGNING_KEY", base64.RawStdEncoding.EncodeToString(private.Seed()))
}

func TestNewRequiresSigningKey(t *testing.T) {
	t.Setenv("TIMELOGIC_TOKEN_SIGNING_KEY", "")
	t.Setenv("TIMELOGIC_AUTH_DB_PATH", filepath.Join(t.TempDir(), "auth.db"))

	if _, err := New(0, ""); err == nil {
		t.Fatal("expected error without signing key")
	}
}

func TestServeStopsOnContextCancel(t *testing.T) {
	setSigningKey(t)
	t.Setenv("TIMELOGIC_AUTH_DB_PATH", filepath.Join(t.TempDir(), "auth.db"))

	authServer, err := New(0, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if authServer.Addr() == "" || authServer.HTTPAddr() == "" {
		t.Fatal("expected listener addresses")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- authServer.Serve(ctx)
	}()

	resp, err := http.Get(fmt.Sprintf("http://%s/up", authServer.HTTPAddr()))
	if err != nil {
		t.Fatalf("probe http: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("probe status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}
