package shared

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvent struct {
	BaseEvent
}

func TestNewOutboxMessage(t *testing.T) {
	event := &fakeEvent{BaseEvent: NewBaseEvent("test-event")}
	payload := []byte(`{"value":"x"}`)

	msg := NewOutboxMessage(event, payload)

	assert.Equal(t, event.EventID(), msg.EventID)
	assert.Equal(t, "test-event", msg.EventType)
	assert.Equal(t, payload, msg.Payload)
	assert.Nil(t, msg.ProcessedOnUTC)
	assert.Zero(t, msg.RetryCount)
	assert.True(t, msg.IsPending())
}

func TestOutboxMessage_MarkPublished(t *testing.T) {
	msg := NewOutboxMessage(&fakeEvent{BaseEvent: NewBaseEvent("test-event")}, []byte(`{}`))
	stale := "earlier failure"
	msg.LastError = &stale

	msg.MarkPublished()

	require.NotNil(t, msg.ProcessedOnUTC)
	assert.WithinDuration(t, time.Now().UTC(), *msg.ProcessedOnUTC, time.Second)
	assert.Nil(t, msg.LastError)
	assert.False(t, msg.IsPending())
	assert.False(t, msg.IsDead())
}

func TestOutboxMessage_MarkFailed(t *testing.T) {
	msg := NewOutboxMessage(&fakeEvent{BaseEvent: NewBaseEvent("test-event")}, []byte(`{}`))

	msg.MarkFailed("broker unavailable")

	assert.Equal(t, 1, msg.RetryCount)
	require.NotNil(t, msg.LastError)
	assert.Equal(t, "broker unavailable", *msg.LastError)
	assert.True(t, msg.IsPending())
}

func TestOutboxMessage_MarkFailed_Truncates(t *testing.T) {
	msg := NewOutboxMessage(&fakeEvent{BaseEvent: NewBaseEvent("test-event")}, []byte(`{}`))

	msg.MarkFailed(strings.Repeat("e", LastErrorMaxLen+500))

	require.NotNil(t, msg.LastError)
	assert.Len(t, *msg.LastError, LastErrorMaxLen)
}

func TestOutboxMessage_MarkFailed_TruncatesOnRuneBoundary(t *testing.T) {
	msg := NewOutboxMessage(&fakeEvent{BaseEvent: NewBaseEvent("test-event")}, []byte(`{}`))

	// 3-byte runes that do not divide LastErrorMaxLen evenly, so a byte slice
	// at the limit would land mid-rune.
	msg.MarkFailed(strings.Repeat("日", LastErrorMaxLen))

	require.NotNil(t, msg.LastError)
	assert.LessOrEqual(t, len(*msg.LastError), LastErrorMaxLen)
	assert.True(t, utf8.ValidString(*msg.LastError))
}

func TestOutboxMessage_RetryBudget(t *testing.T) {
	msg := NewOutboxMessage(&fakeEvent{BaseEvent: NewBaseEvent("test-event")}, []byte(`{}`))

	for i := 0; i < MaxRetryCount-1; i++ {
		msg.MarkFailed("broker unavailable")
	}
	assert.True(t, msg.IsPending(), "one attempt left")
	assert.False(t, msg.IsDead())

	msg.MarkFailed("broker unavailable")
	assert.False(t, msg.IsPending())
	assert.True(t, msg.IsDead())
}
