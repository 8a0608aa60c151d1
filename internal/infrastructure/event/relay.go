package event

import (
	"context"
	"sync"
	"time"

	"github.com/shopsphere/backend/internal/domain/shared"
	"github.com/shopsphere/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// OutboxRelayConfig holds configuration for the outbox relay
type OutboxRelayConfig struct {
	BatchSize    int
	PollInterval time.Duration
}

// DefaultOutboxRelayConfig returns default configuration
func DefaultOutboxRelayConfig() OutboxRelayConfig {
	return OutboxRelayConfig{
		BatchSize:    50,
		PollInterval: 5 * time.Second,
	}
}

// OutboxRelay drains pending outbox rows and publishes them to the broker.
// Delivery is at-least-once: a crash between publish and the batch commit
// re-delivers, and consumers deduplicate through the inbox.
type OutboxRelay struct {
	repo      shared.OutboxRepository
	registry  *DispatchRegistry
	publisher shared.EventPublisher
	config    OutboxRelayConfig
	metrics   *telemetry.PipelineMetrics
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOutboxRelay creates a new outbox relay
func NewOutboxRelay(
	repo shared.OutboxRepository,
	registry *DispatchRegistry,
	publisher shared.EventPublisher,
	config OutboxRelayConfig,
	metrics *telemetry.PipelineMetrics,
	logger *zap.Logger,
) *OutboxRelay {
	return &OutboxRelay{
		repo:      repo,
		registry:  registry,
		publisher: publisher,
		config:    config,
		metrics:   metrics,
		logger:    logger,
	}
}

// Start starts the background polling loop
func (r *OutboxRelay) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.pollLoop(ctx)

	r.logger.Info("outbox relay started",
		zap.Int("batch_size", r.config.BatchSize),
		zap.Duration("poll_interval", r.config.PollInterval),
	)
	return nil
}

// Stop gracefully stops the relay, waiting for an in-flight batch to finish
func (r *OutboxRelay) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("outbox relay stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pollLoop drains batches back to back while rows are pending and waits one
// PollInterval only after an empty fetch or a failed cycle. A failed cycle is
// logged and the loop keeps running; only context cancellation stops it.
func (r *OutboxRelay) pollLoop(ctx context.Context) {
	defer r.wg.Done()

	for {
		processed, err := r.ProcessBatch(ctx)
		if err != nil {
			r.logger.Error("outbox batch failed", zap.Error(err))
		}
		if err == nil && processed > 0 {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.config.PollInterval):
		}
	}
}

// ProcessBatch publishes one batch of pending rows and persists every row
// mutation in a single commit. It returns the number of rows fetched so the
// caller knows whether a backlog remains. Exported so tests and manual drains
// can run a cycle without the polling loop.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	pending, err := r.repo.FindPending(ctx, r.config.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	for _, msg := range pending {
		r.processMessage(ctx, msg)
	}

	if err := r.repo.UpdateBatch(ctx, pending); err != nil {
		return 0, err
	}
	return len(pending), nil
}

// processMessage attempts one publish of one row. Decode failures and broker
// failures consume a retry attempt the same way; the row itself records the
// outcome and is persisted later with the rest of the batch.
func (r *OutboxRelay) processMessage(ctx context.Context, msg *shared.OutboxMessage) {
	event, err := r.registry.Decode(msg.EventType, msg.Payload)
	if err != nil {
		r.recordFailure(ctx, msg, err)
		return
	}

	if err := r.publisher.Publish(ctx, event); err != nil {
		r.recordFailure(ctx, msg, err)
		return
	}

	msg.MarkPublished()
	r.metrics.RecordPublished(ctx, msg.EventType)
	r.logger.Debug("event published",
		zap.String("event_id", msg.EventID.String()),
		zap.String("event_type", msg.EventType),
	)
}

func (r *OutboxRelay) recordFailure(ctx context.Context, msg *shared.OutboxMessage, err error) {
	msg.MarkFailed(err.Error())
	r.metrics.RecordPublishFailure(ctx, msg.EventType)

	r.logger.Error("failed to publish event",
		zap.String("event_id", msg.EventID.String()),
		zap.String("event_type", msg.EventType),
		zap.Int("retry_count", msg.RetryCount),
		zap.Error(err),
	)

	if msg.IsDead() {
		r.metrics.RecordDead(ctx, msg.EventType)
		r.logger.Warn("event exhausted its retry budget",
			zap.String("event_id", msg.EventID.String()),
			zap.String("event_type", msg.EventType),
			zap.Int("retry_count", msg.RetryCount),
		)
	}
}
