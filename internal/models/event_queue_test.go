package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueueOrdersByTime(t *testing.T) {
	eq := NewEventQueue()
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	eq.Enqueue(&Event{Time: base.Add(3 * time.Minute), Type: EventLogStatus})
	eq.Enqueue(&Event{Time: base.Add(1 * time.Minute), Type: EventGenerateOrder})
	eq.Enqueue(&Event{Time: base.Add(2 * time.Minute), Type: EventUpdateAssets})

	assert.Equal(t, EventGenerateOrder, eq.Dequeue().Type)
	assert.Equal(t, EventUpdateAssets, eq.Dequeue().Type)
	assert.Equal(t, EventLogStatus, eq.Dequeue().Type)
	assert.True(t, eq.IsEmpty())
}

func TestEventQueueStableAtSameTimestamp(t *testing.T) {
	eq := NewEventQueue()
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 20; i++ {
		eq.Enqueue(&Event{Time: at, Type: EventGenerateOrder, Data: i})
	}
	for i := 0; i < 20; i++ {
		got := eq.Dequeue()
		require.NotNil(t, got)
		assert.Equal(t, i, got.Data)
	}
}

func TestEventQueuePeekDoesNotRemove(t *testing.T) {
	eq := NewEventQueue()
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	eq.Enqueue(&Event{Time: at, Type: EventLogStatus})

	assert.Equal(t, EventLogStatus, eq.Peek().Type)
	assert.Equal(t, 1, eq.Len())
	assert.NotNil(t, eq.Dequeue())
	assert.Nil(t, eq.Peek())
	assert.Nil(t, eq.Dequeue())
}

func TestEventQueuePanicsOnTimeRegression(t *testing.T) {
	eq := NewEventQueue()
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	eq.Enqueue(&Event{Time: base.Add(time.Hour), Type: EventLogStatus})
	require.NotNil(t, eq.Dequeue())

	// scheduling into the past corrupts the virtual clock
	eq.Enqueue(&Event{Time: base, Type: EventGenerateOrder})
	assert.Panics(t, func() { eq.Dequeue() })
}
