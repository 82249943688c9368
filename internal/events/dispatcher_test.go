package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	var received []Event
	dispatcher.Subscribe(EventTicketAssigned, func(_ context.Context, event Event) error {
		received = append(received, event)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{ID: "e1", Type: EventTicketAssigned, TicketID: 7})

	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, int64(7), received[0].TicketID)
}

func TestDispatcherFailingHandlerDoesNotBlockOthers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	dispatcher.Subscribe(EventTicketSlaChanged, func(context.Context, Event) error {
		return errors.New("boom")
	})
	delivered := false
	dispatcher.Subscribe(EventTicketSlaChanged, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{ID: "e2", Type: EventTicketSlaChanged})

	require.NoError(t, err)
	assert.True(t, delivered)
}

func TestDispatcherRecoversPanickingHandler(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	dispatcher.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		panic("handler exploded")
	})
	delivered := false
	dispatcher.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{ID: "e3", Type: EventTicketAssigned})

	require.NoError(t, err)
	assert.True(t, delivered)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	err := dispatcher.Publish(context.Background(), Event{ID: "e4", Type: EventAgentPerformanceUpdated})

	assert.NoError(t, err)
}
