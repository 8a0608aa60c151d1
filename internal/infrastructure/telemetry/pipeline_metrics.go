package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a metrics constructor is given a nil meter.
var ErrMeterNil = errors.New("meter cannot be nil")

// PipelineMetrics provides metrics for the event delivery pipeline.
// It tracks outbox publish outcomes and consumer-side inbox deduplication.
type PipelineMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	eventsPublishedTotal *Counter
	eventsFailedTotal    *Counter
	eventsDeadTotal      *Counter
	inboxProcessedTotal  *Counter
	inboxDuplicateTotal  *Counter
	inboxFailedTotal     *Counter
}

// NewPipelineMetrics creates a new PipelineMetrics instance.
func NewPipelineMetrics(meter metric.Meter, logger *zap.Logger) (*PipelineMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &PipelineMetrics{
		meter:  meter,
		logger: logger,
	}

	var err error

	pm.eventsPublishedTotal, err = NewCounter(meter,
		"outbox.events.published.total",
		"Total number of outbox events published to the broker",
		"{event}")
	if err != nil {
		return nil, err
	}

	pm.eventsFailedTotal, err = NewCounter(meter,
		"outbox.events.failed.total",
		"Total number of outbox publish attempts that failed",
		"{event}")
	if err != nil {
		return nil, err
	}

	pm.eventsDeadTotal, err = NewCounter(meter,
		"outbox.events.dead.total",
		"Total number of outbox events that exhausted their retry budget",
		"{event}")
	if err != nil {
		return nil, err
	}

	pm.inboxProcessedTotal, err = NewCounter(meter,
		"inbox.events.processed.total",
		"Total number of events processed by consumers",
		"{event}")
	if err != nil {
		return nil, err
	}

	pm.inboxDuplicateTotal, err = NewCounter(meter,
		"inbox.events.duplicate.total",
		"Total number of duplicate deliveries absorbed by the inbox",
		"{event}")
	if err != nil {
		return nil, err
	}

	pm.inboxFailedTotal, err = NewCounter(meter,
		"inbox.events.failed.total",
		"Total number of consumer processing failures",
		"{event}")
	if err != nil {
		return nil, err
	}

	return pm, nil
}

// RecordPublished records a successful outbox publish.
func (pm *PipelineMetrics) RecordPublished(ctx context.Context, eventType string) {
	pm.eventsPublishedTotal.Inc(ctx, attribute.String("event.type", eventType))
}

// RecordPublishFailure records a failed outbox publish attempt.
func (pm *PipelineMetrics) RecordPublishFailure(ctx context.Context, eventType string) {
	pm.eventsFailedTotal.Inc(ctx, attribute.String("event.type", eventType))
}

// RecordDead records an outbox event whose retry budget is exhausted.
func (pm *PipelineMetrics) RecordDead(ctx context.Context, eventType string) {
	pm.eventsDeadTotal.Inc(ctx, attribute.String("event.type", eventType))
}

// RecordInboxProcessed records an event processed by a consumer.
func (pm *PipelineMetrics) RecordInboxProcessed(ctx context.Context, consumer string) {
	pm.inboxProcessedTotal.Inc(ctx, attribute.String("consumer.name", consumer))
}

// RecordInboxDuplicate records a duplicate delivery skipped by the inbox.
func (pm *PipelineMetrics) RecordInboxDuplicate(ctx context.Context, consumer string) {
	pm.inboxDuplicateTotal.Inc(ctx, attribute.String("consumer.name", consumer))
}

// RecordInboxFailure records a consumer processing failure.
func (pm *PipelineMetrics) RecordInboxFailure(ctx context.Context, consumer string) {
	pm.inboxFailedTotal.Inc(ctx, attribute.String("consumer.name", consumer))
}
