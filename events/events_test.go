package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_EmitReachesAllSubscribers(t *testing.T) {
	t.Parallel()

	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(2)
	var mu sync.Mutex
	var received []int64

	for i := 0; i < 2; i++ {
		bus.Subscribe(EventTypePointsChanged, func(ctx context.Context, event Event) {
			defer wg.Done()
			mu.Lock()
			received = append(received, event.(PointsChangedEvent).UserID)
			mu.Unlock()
		})
	}

	bus.Emit(context.Background(), PointsChangedEvent{GuildID: 1, UserID: 42, Amount: 5})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers did not run")
	}

	assert.Equal(t, []int64{42, 42}, received)
}

func TestBus_HandlerPanicDoesNotAffectOthers(t *testing.T) {
	t.Parallel()

	bus := NewBus()

	bus.Subscribe(EventTypeTiersChanged, func(ctx context.Context, event Event) {
		panic("boom")
	})

	survived := make(chan struct{})
	bus.Subscribe(EventTypeTiersChanged, func(ctx context.Context, event Event) {
		close(survived)
	})

	bus.Emit(context.Background(), TiersChangedEvent{GuildID: 1})

	select {
	case <-survived:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler never ran")
	}
}

func TestBus_EventsOnlyReachMatchingType(t *testing.T) {
	t.Parallel()

	bus := NewBus()

	received := make(chan Event, 1)
	bus.Subscribe(EventTypeTiersChanged, func(ctx context.Context, event Event) {
		received <- event
	})

	bus.Emit(context.Background(), PointsChangedEvent{GuildID: 1, UserID: 42})
	bus.Emit(context.Background(), TiersChangedEvent{GuildID: 7})

	select {
	case event := <-received:
		tiersEvent, ok := event.(TiersChangedEvent)
		require.True(t, ok)
		assert.Equal(t, int64(7), tiersEvent.GuildID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}
