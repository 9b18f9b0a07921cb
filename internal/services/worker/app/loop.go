// Package app runs the outbox dispatch loop for the worker service.
package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	authstorage "github.com/PedroJIzGar/timelogic/internal/services/auth/storage"
	"github.com/PedroJIzGar/timelogic/internal/services/worker/domain"
)

const (
	defaultConsumer      = "worker"
	defaultPollInterval  = time.Second
	defaultLeaseTTL      = 30 * time.Second
	defaultBatchSize     = 25
	defaultMaxAttempts   = 8
	defaultRetryBackoff  = 500 * time.Millisecond
	defaultRetryMaxDelay = 10 * time.Second
)

// Attempt outcome values recorded for each processed event.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeRetry     = "retry"
	OutcomeDead      = "dead"
)

// Config controls outbox polling and retry behavior.
type Config struct {
	Consumer      string
	PollInterval  time.Duration
	LeaseTTL      time.Duration
	BatchSize     int
	MaxAttempts   int
	RetryBackoff  time.Duration
	RetryMaxDelay time.Duration
}

func (c Config) normalized() Config {
	if strings.TrimSpace(c.Consumer) == "" {
		c.Consumer = defaultConsumer
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.LeaseTTL <= 0 {
		c.LeaseTTL = defaultLeaseTTL
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaultRetryBackoff
	}
	if c.RetryMaxDelay < c.RetryBackoff {
		c.RetryMaxDelay = defaultRetryMaxDelay
	}
	return c
}

// OutboxSource leases staged events and records their dispatch outcome.
type OutboxSource interface {
	LeaseOutboxEvents(ctx context.Context, owner string, limit int, leaseTTL time.Duration, now time.Time) ([]authstorage.OutboxEvent, error)
	MarkOutboxEventDispatched(ctx context.Context, eventID string, processedAt time.Time) error
	MarkOutboxEventFailed(ctx context.Context, eventID string, lastError string, nextAttemptAt time.Time, permanent bool) error
}

// EventHandler processes one leased outbox event.
type EventHandler interface {
	Handle(ctx context.Context, event authstorage.OutboxEvent) error
}

// Attempt is one processing outcome handed to the attempt recorder.
type Attempt struct {
	EventID      string
	EventType    string
	Outcome      string
	AttemptCount int32
	Error        string
	CreatedAt    time.Time
}

// AttemptRecorder persists processing attempts for operator inspection.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, attempt Attempt) error
}

// Loop leases outbox events in batches and dispatches them to handlers.
type Loop struct {
	source   OutboxSource
	recorder AttemptRecorder
	handlers map[string]EventHandler
	cfg      Config
	clock    func() time.Time
}

// New builds a dispatch loop. A nil clock falls back to time.Now.
func New(source OutboxSource, recorder AttemptRecorder, handlers map[string]EventHandler, cfg Config, clock func() time.Time) *Loop {
	if clock == nil {
		clock = time.Now
	}
	return &Loop{
		source:   source,
		recorder: recorder,
		handlers: handlers,
		cfg:      cfg.normalized(),
		clock:    clock,
	}
}

// Run polls the outbox until ctx is canceled. Each tick drains one batch.
func (l *Loop) Run(ctx context.Context) error {
	if l.source == nil {
		return fmt.Errorf("outbox source is required")
	}
	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()
	for {
		if err := l.processBatch(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("worker batch: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (l *Loop) processBatch(ctx context.Context) error {
	now := l.clock()
	events, err := l.source.LeaseOutboxEvents(ctx, l.cfg.Consumer, l.cfg.BatchSize, l.cfg.LeaseTTL, now)
	if err != nil {
		return fmt.Errorf("lease outbox events: %w", err)
	}
	for _, event := range events {
		if ctx.Err() != nil {
			return nil
		}
		l.processEvent(ctx, event)
	}
	return nil
}

func (l *Loop) processEvent(ctx context.Context, event authstorage.OutboxEvent) {
	handler, ok := l.handlers[event.EventType]
	if !ok {
		l.finishFailed(ctx, event, fmt.Errorf("no handler registered for %q", event.EventType), true)
		return
	}
	if err := handler.Handle(ctx, event); err != nil {
		permanent := domain.IsPermanent(err) || event.AttemptCount+1 >= l.cfg.MaxAttempts
		l.finishFailed(ctx, event, err, permanent)
		return
	}
	now := l.clock()
	if err := l.source.MarkOutboxEventDispatched(ctx, event.ID, now); err != nil {
		log.Printf("mark event %s dispatched: %v", event.ID, err)
		return
	}
	l.record(ctx, event, OutcomeSucceeded, "")
}

func (l *Loop) finishFailed(ctx context.Context, event authstorage.OutboxEvent, cause error, permanent bool) {
	now := l.clock()
	nextAttempt := now.Add(l.retryDelay(event.AttemptCount))
	if err := l.source.MarkOutboxEventFailed(ctx, event.ID, cause.Error(), nextAttempt, permanent); err != nil {
		log.Printf("mark event %s failed: %v", event.ID, err)
	}
	outcome := OutcomeRetry
	if permanent {
		outcome = OutcomeDead
	}
	l.record(ctx, event, outcome, cause.Error())
}

// retryDelay doubles the base backoff per prior attempt, capped at the max.
func (l *Loop) retryDelay(attempts int) time.Duration {
	delay := l.cfg.RetryBackoff
	for i := 0; i < attempts; i++ {
		delay *= 2
		if delay >= l.cfg.RetryMaxDelay {
			return l.cfg.RetryMaxDelay
		}
	}
	return delay
}

func (l *Loop) record(ctx context.Context, event authstorage.OutboxEvent, outcome, lastError string) {
	if l.recorder == nil {
		return
	}
	attempt := Attempt{
		EventID:      event.ID,
		EventType:    event.EventType,
		Outcome:      outcome,
		AttemptCount: int32(event.AttemptCount + 1),
		Error:        lastError,
		CreatedAt:    l.clock(),
	}
	if err := l.recorder.RecordAttempt(ctx, attempt); err != nil {
		log.Printf("record attempt for event %s: %v", event.ID, err)
	}
}
