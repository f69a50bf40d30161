package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/teamspace/collab-api/internal/models"
)

func TestBus_DeliversToSubscribers(t *testing.T) {
	bus := NewBus(16)

	var mu sync.Mutex
	var got []Event
	bus.Subscribe(func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})

	bus.Publish(Event{
		Action:      ActionMessageSent,
		WorkspaceID: 1,
		Subject:     models.Subject{Kind: models.SubjectMessage, ID: 42},
		OccurredAt:  time.Now(),
	})
	bus.Publish(Event{
		Action:      ActionChannelCreated,
		WorkspaceID: 1,
		Subject:     models.Subject{Kind: models.SubjectChannel, ID: 7},
		OccurredAt:  time.Now(),
	})

	// Close drains the buffer before returning
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	require.Equal(t, ActionMessageSent, got[0].Action)
	require.Equal(t, ActionChannelCreated, got[1].Action)
}

func TestBus_PublishNeverBlocks(t *testing.T) {
	bus := NewBus(1)
	defer bus.Close()

	block := make(chan struct{})
	bus.Subscribe(func(Event) {
		<-block
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			bus.Publish(Event{Action: ActionMessageSent, WorkspaceID: 1})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}
	close(block)
}

func TestBus_CloseIsIdempotent(t *testing.T) {
	bus := NewBus(4)
	bus.Close()
	bus.Close()
}

func TestBus_PublishAfterCloseIsDropped(t *testing.T) {
	bus := NewBus(4)

	var mu sync.Mutex
	var got []Event
	bus.Subscribe(func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})

	bus.Close()

	require.NotPanics(t, func() {
		bus.Publish(Event{Action: ActionMessageSent, WorkspaceID: 1})
	})

	mu.Lock()
	defer mu.Unlock()
	require.Empty(t, got)
}
