package event

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopsphere/backend/internal/domain/shared"
	"github.com/shopsphere/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

// newTestPipelineMetrics returns pipeline metrics backed by a manual reader
// plus a helper that sums a named counter across its data points.
func newTestPipelineMetrics(t *testing.T) (*telemetry.PipelineMetrics, func(name string) int64) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := telemetry.NewPipelineMetrics(provider.Meter("test"), zap.NewNop())
	require.NoError(t, err)

	read := func(name string) int64 {
		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))
		var total int64
		for _, scope := range rm.ScopeMetrics {
			for _, m := range scope.Metrics {
				if m.Name != name {
					continue
				}
				if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
					for _, dp := range sum.DataPoints {
						total += dp.Value
					}
				}
			}
		}
		return total
	}
	return metrics, read
}

// testEvent is a minimal integration event for relay tests
type testEvent struct {
	shared.BaseEvent
	Value string `json:"value"`
}

const testEventType = "test-event"

func newTestEvent(value string) *testEvent {
	return &testEvent{
		BaseEvent: shared.NewBaseEvent(testEventType),
		Value:     value,
	}
}

func newTestRegistry() *DispatchRegistry {
	registry := NewDispatchRegistry()
	registry.Register(testEventType, func(payload []byte) (shared.IntegrationEvent, error) {
		var event testEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		return &event, nil
	})
	return registry
}

func newTestMessage(t *testing.T, value string) *shared.OutboxMessage {
	t.Helper()
	event := newTestEvent(value)
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return shared.NewOutboxMessage(event, payload)
}

// mockOutboxRepository is an in-memory OutboxRepository for relay tests
type mockOutboxRepository struct {
	mu            sync.Mutex
	messages      []*shared.OutboxMessage
	updateBatches [][]*shared.OutboxMessage
	findPendingFn func(ctx context.Context, limit int) ([]*shared.OutboxMessage, error)
	updateBatchFn func(ctx context.Context, messages []*shared.OutboxMessage) error
}

func newMockOutboxRepository() *mockOutboxRepository {
	return &mockOutboxRepository{}
}

func (r *mockOutboxRepository) Save(ctx context.Context, messages ...*shared.OutboxMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, messages...)
	return nil
}

func (r *mockOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxMessage, error) {
	if r.findPendingFn != nil {
		return r.findPendingFn(ctx, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*shared.OutboxMessage
	for _, m := range r.messages {
		if m.IsPending() {
			result = append(result, m)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (r *mockOutboxRepository) UpdateBatch(ctx context.Context, messages []*shared.OutboxMessage) error {
	if r.updateBatchFn != nil {
		return r.updateBatchFn(ctx, messages)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	batch := make([]*shared.OutboxMessage, len(messages))
	copy(batch, messages)
	r.updateBatches = append(r.updateBatches, batch)
	return nil
}

func (r *mockOutboxRepository) CountDead(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, m := range r.messages {
		if m.IsDead() {
			count++
		}
	}
	return count, nil
}

// mockPublisher records published events and fails on demand
type mockPublisher struct {
	mu        sync.Mutex
	published []shared.IntegrationEvent
	failWith  error
}

func (p *mockPublisher) Publish(ctx context.Context, events ...shared.IntegrationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return p.failWith
	}
	p.published = append(p.published, events...)
	return nil
}

func (p *mockPublisher) publishedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func newTestRelay(t *testing.T, repo shared.OutboxRepository, publisher shared.EventPublisher) *OutboxRelay {
	t.Helper()
	metrics, _ := newTestPipelineMetrics(t)
	return NewOutboxRelay(repo, newTestRegistry(), publisher, OutboxRelayConfig{
		BatchSize:    50,
		PollInterval: 10 * time.Millisecond,
	}, metrics, zap.NewNop())
}

func TestOutboxRelay_ProcessBatch_Success(t *testing.T) {
	repo := newMockOutboxRepository()
	publisher := &mockPublisher{}
	relay := newTestRelay(t, repo, publisher)

	msg1 := newTestMessage(t, "first")
	msg2 := newTestMessage(t, "second")
	require.NoError(t, repo.Save(context.Background(), msg1, msg2))

	processed, err := relay.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	assert.Equal(t, 2, publisher.publishedCount())
	assert.NotNil(t, msg1.ProcessedOnUTC)
	assert.NotNil(t, msg2.ProcessedOnUTC)
	assert.Nil(t, msg1.LastError)
	require.Len(t, repo.updateBatches, 1)
	assert.Len(t, repo.updateBatches[0], 2)
}

func TestOutboxRelay_CountsPublishOutcomes(t *testing.T) {
	repo := newMockOutboxRepository()
	publisher := &mockPublisher{failWith: errors.New("broker unavailable")}
	metrics, readCounter := newTestPipelineMetrics(t)
	relay := NewOutboxRelay(repo, newTestRegistry(), publisher, OutboxRelayConfig{
		BatchSize:    50,
		PollInterval: 10 * time.Millisecond,
	}, metrics, zap.NewNop())

	msg := newTestMessage(t, "counted")
	require.NoError(t, repo.Save(context.Background(), msg))

	for i := 0; i < shared.MaxRetryCount; i++ {
		_, err := relay.ProcessBatch(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, int64(shared.MaxRetryCount), readCounter("outbox.events.failed.total"))
	assert.Equal(t, int64(1), readCounter("outbox.events.dead.total"))

	publisher.mu.Lock()
	publisher.failWith = nil
	publisher.mu.Unlock()

	other := newTestMessage(t, "late")
	require.NoError(t, repo.Save(context.Background(), other))
	_, err := relay.ProcessBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), readCounter("outbox.events.published.total"))
}

func TestOutboxRelay_ProcessBatch_EmptyOutbox(t *testing.T) {
	repo := newMockOutboxRepository()
	publisher := &mockPublisher{}
	relay := newTestRelay(t, repo, publisher)

	processed, err := relay.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Zero(t, publisher.publishedCount())
	assert.Empty(t, repo.updateBatches, "no batch commit when nothing is pending")
}

func TestOutboxRelay_ProcessBatch_UnknownEventType(t *testing.T) {
	repo := newMockOutboxRepository()
	publisher := &mockPublisher{}
	relay := newTestRelay(t, repo, publisher)

	msg := newTestMessage(t, "orphan")
	msg.EventType = "never-registered"
	require.NoError(t, repo.Save(context.Background(), msg))

	processed, err := relay.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, processed, "a failed row still counts as fetched work")
	assert.Zero(t, publisher.publishedCount())
	assert.Nil(t, msg.ProcessedOnUTC)
	assert.Equal(t, 1, msg.RetryCount)
	require.NotNil(t, msg.LastError)
	assert.Contains(t, *msg.LastError, "unknown event type")
	require.Len(t, repo.updateBatches, 1, "failed rows are still committed")
}

func TestOutboxRelay_ProcessBatch_PublishFailure(t *testing.T) {
	repo := newMockOutboxRepository()
	publisher := &mockPublisher{failWith: errors.New("broker unavailable")}
	relay := newTestRelay(t, repo, publisher)

	msg := newTestMessage(t, "retried")
	require.NoError(t, repo.Save(context.Background(), msg))

	_, err := relay.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Nil(t, msg.ProcessedOnUTC)
	assert.Equal(t, 1, msg.RetryCount)
	require.NotNil(t, msg.LastError)
	assert.Equal(t, "broker unavailable", *msg.LastError)
}

func TestOutboxRelay_ProcessBatch_ErrorTruncated(t *testing.T) {
	repo := newMockOutboxRepository()
	publisher := &mockPublisher{failWith: errors.New(strings.Repeat("x", 5000))}
	relay := newTestRelay(t, repo, publisher)

	msg := newTestMessage(t, "noisy")
	require.NoError(t, repo.Save(context.Background(), msg))

	_, err := relay.ProcessBatch(context.Background())

	require.NoError(t, err)
	require.NotNil(t, msg.LastError)
	assert.Len(t, *msg.LastError, shared.LastErrorMaxLen)
}

func TestOutboxRelay_ProcessBatch_RetryExhaustion(t *testing.T) {
	repo := newMockOutboxRepository()
	publisher := &mockPublisher{failWith: errors.New("broker unavailable")}
	relay := newTestRelay(t, repo, publisher)

	msg := newTestMessage(t, "doomed")
	require.NoError(t, repo.Save(context.Background(), msg))

	for i := 0; i < shared.MaxRetryCount; i++ {
		_, err := relay.ProcessBatch(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, shared.MaxRetryCount, msg.RetryCount)
	assert.True(t, msg.IsDead())

	dead, err := repo.CountDead(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), dead)

	// Dead rows leave the polling set; further cycles never touch them.
	processed, err := relay.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Equal(t, shared.MaxRetryCount, msg.RetryCount)
}

func TestOutboxRelay_ProcessBatch_BrokerRecovers(t *testing.T) {
	repo := newMockOutboxRepository()
	publisher := &mockPublisher{failWith: errors.New("broker unavailable")}
	relay := newTestRelay(t, repo, publisher)

	msg := newTestMessage(t, "delayed")
	require.NoError(t, repo.Save(context.Background(), msg))

	for i := 0; i < 3; i++ {
		_, err := relay.ProcessBatch(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, msg.RetryCount)

	publisher.mu.Lock()
	publisher.failWith = nil
	publisher.mu.Unlock()

	_, err := relay.ProcessBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, publisher.publishedCount())
	assert.NotNil(t, msg.ProcessedOnUTC)
	assert.Nil(t, msg.LastError, "a successful publish clears the stored error")
}

func TestOutboxRelay_ProcessBatch_FindPendingError(t *testing.T) {
	repo := newMockOutboxRepository()
	repo.findPendingFn = func(ctx context.Context, limit int) ([]*shared.OutboxMessage, error) {
		return nil, errors.New("connection refused")
	}
	relay := newTestRelay(t, repo, &mockPublisher{})

	_, err := relay.ProcessBatch(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestOutboxRelay_DrainsBacklogWithoutWaiting(t *testing.T) {
	repo := newMockOutboxRepository()
	publisher := &mockPublisher{}
	metrics, _ := newTestPipelineMetrics(t)
	relay := NewOutboxRelay(repo, newTestRegistry(), publisher, OutboxRelayConfig{
		BatchSize:    50,
		PollInterval: time.Minute,
	}, metrics, zap.NewNop())

	const backlog = 150
	for i := 0; i < backlog; i++ {
		require.NoError(t, repo.Save(context.Background(), newTestMessage(t, "queued")))
	}

	require.NoError(t, relay.Start(context.Background()))
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, relay.Stop(stopCtx))
	}()

	// Three full batches must drain back to back, far inside one PollInterval.
	assert.Eventually(t, func() bool {
		return publisher.publishedCount() == backlog
	}, 2*time.Second, 5*time.Millisecond)
}

func TestOutboxRelay_StartStop(t *testing.T) {
	repo := newMockOutboxRepository()
	publisher := &mockPublisher{}
	relay := newTestRelay(t, repo, publisher)

	msg := newTestMessage(t, "polled")
	require.NoError(t, repo.Save(context.Background(), msg))

	require.NoError(t, relay.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return publisher.publishedCount() == 1
	}, time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, relay.Stop(stopCtx))
}
