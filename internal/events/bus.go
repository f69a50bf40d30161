package events

import (
	"log"
	"sync"
)

// Handler consumes a domain event. Handlers run on the bus goroutine and
// must not block for long; failures are theirs to log.
type Handler func(Event)

// Bus is an in-process, fire-and-forget event dispatcher. Publish never
// blocks the caller: when the buffer is full the event is dropped and
// logged, because event delivery must never fail a domain write.
type Bus struct {
	ch chan Event

	mu       sync.RWMutex
	handlers []Handler
	closed   bool

	done chan struct{}
	once sync.Once
}

// NewBus creates a bus with the given buffer and starts its dispatch loop.
func NewBus(buffer int) *Bus {
	b := &Bus{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
	go b.run()
	return b
}

// Subscribe registers a handler for all subsequent events.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish enqueues an event without blocking. Events published after Close
// are dropped.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	select {
	case b.ch <- e:
	default:
		log.Printf("event bus full, dropping event %s for workspace %d", e.Action, e.WorkspaceID)
	}
}

// Close stops the dispatch loop after draining buffered events.
func (b *Bus) Close() {
	b.once.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()
		close(b.ch)
		<-b.done
	})
}

func (b *Bus) run() {
	defer close(b.done)
	for e := range b.ch {
		b.mu.RLock()
		handlers := b.handlers
		b.mu.RUnlock()

		for _, h := range handlers {
			h(e)
		}
	}
}
