package outbox

import (
	"context"
	"testing"
	"time"

	domoutbox "github.com/martingallagher/warehouse/internal/domain/outbox"
	"github.com/stretchr/testify/require"
)

type testEvent struct{ ID int64 }

func (testEvent) EventName() string { return "test.event" }

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus(nil)
	received := make(chan domoutbox.Event, 1)

	bus.Subscribe(testEvent{}.EventName(), func(_ context.Context, e domoutbox.Event) error {
		received <- e
		return nil
	})

	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	require.NoError(t, bus.Publish(context.Background(), testEvent{ID: 7}))

	select {
	case e := <-received:
		evt, ok := e.(testEvent)
		require.True(t, ok)
		require.Equal(t, int64(7), evt.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestPublishWithoutSubscriberIsDropped(t *testing.T) {
	bus := NewBus(nil)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	require.NoError(t, bus.Publish(context.Background(), testEvent{ID: 1}))
}

func TestPublishNilEvent(t *testing.T) {
	bus := NewBus(nil)
	require.NoError(t, bus.Publish(context.Background(), nil))
}

func TestFanoutSurvivesPanickingHandler(t *testing.T) {
	bus := NewBus(nil)
	received := make(chan struct{}, 1)

	bus.Subscribe(testEvent{}.EventName(), func(context.Context, domoutbox.Event) error {
		panic("handler boom")
	})
	bus.Subscribe(testEvent{}.EventName(), func(context.Context, domoutbox.Event) error {
		received <- struct{}{}
		return nil
	})

	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	require.NoError(t, bus.Publish(context.Background(), testEvent{ID: 2}))

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler not invoked")
	}
}
