package app

import (
	"context"
	"errors"
	"testing"
	"time"

	authstorage "github.com/PedroJIzGar/timelogic/internal/services/auth/storage"
	"github.com/PedroJIzGar/timelogic/internal/services/worker/domain"
)

type fakeSource struct {
	events []authstorage.OutboxEvent

	leasedOwner   string
	dispatchedIDs []string
	failed        []fakeFailure
}

type fakeFailure struct {
	eventID   string
	lastError string
	nextAt    time.Time
	permanent bool
}

func (f *fakeSource) LeaseOutboxEvents(_ context.Context, owner string, _ int, _ time.Duration, _ time.Time) ([]authstorage.OutboxEvent, error) {
	f.leasedOwner = owner
	leased := f.events
	f.events = nil
	return leased, nil
}

func (f *fakeSource) MarkOutboxEventDispatched(_ context.Context, eventID string, _ time.Time) error {
	f.dispatchedIDs = append(f.dispatchedIDs, eventID)
	return nil
}

func (f *fakeSource) MarkOutboxEventFailed(_ context.Context, eventID string, lastError string, nextAttemptAt time.Time, permanent bool) error {
	f.failed = append(f.failed, fakeFailure{eventID: eventID, lastError: lastError, nextAt: nextAttemptAt, permanent: permanent})
	return nil
}

type fakeRecorder struct {
	attempts []Attempt
}

func (f *fakeRecorder) RecordAttempt(_ context.Context, attempt Attempt) error {
	f.attempts = append(f.attempts, attempt)
	return nil
}

type funcHandler func(ctx context.Context, event authstorage.OutboxEvent) error

func (f funcHandler) Handle(ctx context.Context, event authstorage.OutboxEvent) error {
	return f(ctx, event)
}

func testClock() func() time.Time {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func TestLoopDispatchesAndRecordsSuccess(t *testing.T) {
	source := &fakeSource{events: []authstorage.OutboxEvent{{
		ID:        "evt-1",
		EventType: "auth.signup.completed",
	}}}
	recorder := &fakeRecorder{}
	handled := 0
	loop := New(source, recorder, map[string]EventHandler{
		"auth.signup.completed": funcHandler(func(context.Context, authstorage.OutboxEvent) error {
			handled++
			return nil
		}),
	}, Config{Consumer: "worker-test"}, testClock())

	if err := loop.processBatch(t.Context()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if handled != 1 {
		t.Fatalf("handled = %d, want 1", handled)
	}
	if source.leasedOwner != "worker-test" {
		t.Fatalf("lease owner = %q, want %q", source.leasedOwner, "worker-test")
	}
	if len(source.dispatchedIDs) != 1 || source.dispatchedIDs[0] != "evt-1" {
		t.Fatalf("dispatched = %v, want [evt-1]", source.dispatchedIDs)
	}
	if len(recorder.attempts) != 1 || recorder.attempts[0].Outcome != OutcomeSucceeded {
		t.Fatalf("attempts = %+v, want one succeeded", recorder.attempts)
	}
	if recorder.attempts[0].AttemptCount != 1 {
		t.Fatalf("attempt count = %d, want 1", recorder.attempts[0].AttemptCount)
	}
}

func TestLoopRetriesWithExponentialBackoff(t *testing.T) {
	source := &fakeSource{events: []authstorage.OutboxEvent{{
		ID:           "evt-1",
		EventType:    "auth.signup.completed",
		AttemptCount: 2,
	}}}
	recorder := &fakeRecorder{}
	clock := testClock()
	loop := New(source, recorder, map[string]EventHandler{
		"auth.signup.completed": funcHandler(func(context.Context, authstorage.OutboxEvent) error {
			return errors.New("downstream flake")
		}),
	}, Config{RetryBackoff: 500 * time.Millisecond, RetryMaxDelay: 10 * time.Second}, clock)

	if err := loop.processBatch(t.Context()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(source.failed) != 1 {
		t.Fatalf("failures = %d, want 1", len(source.failed))
	}
	failure := source.failed[0]
	if failure.permanent {
		t.Fatal("transient error marked permanent")
	}
	wantNext := clock().Add(2 * time.Second)
	if !failure.nextAt.Equal(wantNext) {
		t.Fatalf("next attempt = %v, want %v", failure.nextAt, wantNext)
	}
	if recorder.attempts[0].Outcome != OutcomeRetry {
		t.Fatalf("outcome = %q, want %q", recorder.attempts[0].Outcome, OutcomeRetry)
	}
}

func TestLoopCapsRetryDelay(t *testing.T) {
	loop := New(&fakeSource{}, nil, nil, Config{RetryBackoff: 500 * time.Millisecond, RetryMaxDelay: 10 * time.Second}, testClock())

	if got := loop.retryDelay(20); got != 10*time.Second {
		t.Fatalf("delay = %v, want %v", got, 10*time.Second)
	}
}

func TestLoopPermanentErrorShortCircuitsRetries(t *testing.T) {
	source := &fakeSource{events: []authstorage.OutboxEvent{{
		ID:        "evt-1",
		EventType: "auth.password_reset.requested",
	}}}
	recorder := &fakeRecorder{}
	loop := New(source, recorder, map[string]EventHandler{
		"auth.password_reset.requested": funcHandler(func(context.Context, authstorage.OutboxEvent) error {
			return domain.Permanent(errors.New("payload is garbage"))
		}),
	}, Config{}, testClock())

	if err := loop.processBatch(t.Context()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(source.failed) != 1 || !source.failed[0].permanent {
		t.Fatalf("failures = %+v, want one permanent", source.failed)
	}
	if recorder.attempts[0].Outcome != OutcomeDead {
		t.Fatalf("outcome = %q, want %q", recorder.attempts[0].Outcome, OutcomeDead)
	}
}

func TestLoopExhaustedAttemptsGoDead(t *testing.T) {
	source := &fakeSource{events: []authstorage.OutboxEvent{{
		ID:           "evt-1",
		EventType:    "auth.signup.completed",
		AttemptCount: 7,
	}}}
	loop := New(source, nil, map[string]EventHandler{
		"auth.signup.completed": funcHandler(func(context.Context, authstorage.OutboxEvent) error {
			return errors.New("still failing")
		}),
	}, Config{MaxAttempts: 8}, testClock())

	if err := loop.processBatch(t.Context()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(source.failed) != 1 || !source.failed[0].permanent {
		t.Fatalf("failures = %+v, want one permanent", source.failed)
	}
}

func TestLoopUnknownEventTypeGoesDead(t *testing.T) {
	source := &fakeSource{events: []authstorage.OutboxEvent{{
		ID:        "evt-1",
		EventType: "auth.never_registered",
	}}}
	recorder := &fakeRecorder{}
	loop := New(source, recorder, nil, Config{}, testClock())

	if err := loop.processBatch(t.Context()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(source.failed) != 1 || !source.failed[0].permanent {
		t.Fatalf("failures = %+v, want one permanent", source.failed)
	}
	if recorder.attempts[0].Outcome != OutcomeDead {
		t.Fatalf("outcome = %q, want %q", recorder.attempts[0].Outcome, OutcomeDead)
	}
}
