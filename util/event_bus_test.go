package util

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesEverySubscriber(t *testing.T) {
	bus := NewEventBus()
	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		bus.Subscribe(EventDecisionRecorded, func(ctx context.Context, e Event) error {
			assert.Equal(t, EventDecisionRecorded, e.Type)
			calls.Add(1)
			return nil
		})
	}

	bus.Publish(context.Background(), EventDecisionRecorded, DecisionEvent{})
	require.NoError(t, bus.Drain(context.Background()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewEventBus()
	bus.Publish(context.Background(), "nobody.listens", nil)
	assert.NoError(t, bus.Drain(context.Background()))
}

func TestHandlerErrorsDoNotBlockPublish(t *testing.T) {
	bus := NewEventBus()
	bus.Subscribe("e", func(ctx context.Context, e Event) error { return errors.New("boom") })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus.Start(ctx)

	for i := 0; i < 200; i++ {
		bus.Publish(context.Background(), "e", i)
	}
	assert.NoError(t, bus.Drain(context.Background()))
}

func TestDrainHonoursDeadline(t *testing.T) {
	bus := NewEventBus()
	release := make(chan struct{})
	bus.Subscribe("slow", func(ctx context.Context, e Event) error {
		<-release
		return nil
	})
	bus.Publish(context.Background(), "slow", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Drain(ctx), context.DeadlineExceeded)

	close(release)
	assert.NoError(t, bus.Drain(context.Background()))
}
