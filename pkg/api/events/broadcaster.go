// Package events fans session changes out to in-process listeners such as
// the websocket stream.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

const defaultBuffer = 16

// Event is one session change. Seq increases by one per broadcast, so a
// listener can tell when it missed events.
type Event struct {
	Seq       uint64    `json:"seq"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// Broadcaster delivers events to every subscriber without blocking the
// publisher. A subscriber whose buffer is full misses the event.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[<-chan Event]chan Event
	closed bool

	seq     atomic.Uint64
	dropped atomic.Uint64
}

// NewBroadcaster returns an open broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[<-chan Event]chan Event)}
}

// Subscribe registers a listener with the given buffer size. After Close it
// returns an already closed channel.
func (b *Broadcaster) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = ch
	return ch
}

// Unsubscribe removes a listener and closes its channel. Unknown channels
// are ignored.
func (b *Broadcaster) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if send, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(send)
	}
}

// Broadcast stamps and delivers event.
func (b *Broadcaster) Broadcast(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	event.Seq = b.seq.Add(1)
	for _, send := range b.subs {
		select {
		case send <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// Notify broadcasts a session change. It satisfies controller.Notifier.
func (b *Broadcaster) Notify(eventType string, payload any) {
	b.Broadcast(Event{Type: eventType, Payload: payload})
}

// Subscribers returns the number of listeners.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped on full buffers.
func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes every subscriber channel. Later broadcasts are discarded.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for key, send := range b.subs {
		close(send)
		delete(b.subs, key)
	}
}
