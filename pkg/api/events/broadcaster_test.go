package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed")
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBroadcaster_Delivers(t *testing.T) {
	b := NewBroadcaster()
	first := b.Subscribe(2)
	second := b.Subscribe(2)

	b.Notify("memory.stored", map[string]any{"id": "m-1"})
	b.Notify("memory.deleted", map[string]any{"id": "m-1"})

	for _, ch := range []<-chan Event{first, second} {
		stored := receive(t, ch)
		assert.Equal(t, "memory.stored", stored.Type)
		assert.False(t, stored.Timestamp.IsZero())
		deleted := receive(t, ch)
		assert.Equal(t, "memory.deleted", deleted.Type)
		assert.Equal(t, stored.Seq+1, deleted.Seq)
	}
}

func TestBroadcaster_KeepsTimestamp(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe(1)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	b.Broadcast(Event{Type: "state.reset", Timestamp: at})

	assert.Equal(t, at, receive(t, ch).Timestamp)
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe(1)
	require.Equal(t, 1, b.Subscribers())

	b.Unsubscribe(ch)
	b.Unsubscribe(ch)

	assert.Zero(t, b.Subscribers())
	_, ok := <-ch
	assert.False(t, ok)
}

func TestBroadcaster_DropsWhenFull(t *testing.T) {
	b := NewBroadcaster()
	slow := b.Subscribe(1)
	fast := b.Subscribe(4)

	b.Notify("memory.stored", nil)
	b.Notify("memory.stored", nil)

	assert.Equal(t, uint64(1), b.Dropped())
	assert.Len(t, slow, 1)
	assert.Len(t, fast, 2)

	// The gap is visible to the slow subscriber on the next delivery.
	first := receive(t, slow)
	b.Notify("search.completed", nil)
	assert.Equal(t, first.Seq+2, receive(t, slow).Seq)
}

func TestBroadcaster_Close(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe(1)

	b.Close()
	b.Close()

	_, ok := <-ch
	assert.False(t, ok)
	assert.NotPanics(t, func() { b.Notify("state.reset", nil) })

	late := b.Subscribe(1)
	_, ok = <-late
	assert.False(t, ok, "subscribing after close yields a closed channel")
	assert.Zero(t, b.Subscribers())
}

func TestBroadcaster_ConcurrentPublishers(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				b.Notify("memory.stored", nil)
			}
		}()
	}
	wg.Wait()

	seen := make(map[uint64]bool)
	for len(ch) > 0 {
		seen[(<-ch).Seq] = true
	}
	assert.Len(t, seen, 100)
	assert.Zero(t, b.Dropped())
}
