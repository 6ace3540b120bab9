package events_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/events"
)

func TestPublishInvokesAllSubscribers(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()

	var calls []string
	dispatcher.Subscribe(events.EventComplaintCreated, func(_ context.Context, e events.Event) error {
		calls = append(calls, "first:"+e.ComplaintID)
		return nil
	})
	dispatcher.Subscribe(events.EventComplaintCreated, func(_ context.Context, e events.Event) error {
		calls = append(calls, "second:"+e.ComplaintID)
		return nil
	})
	dispatcher.Subscribe(events.EventComplaintResolved, func(_ context.Context, _ events.Event) error {
		calls = append(calls, "wrong-type")
		return nil
	})

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: "c-1",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first:c-1", "second:c-1"}, calls)
}

func TestHandlerErrorDoesNotStopDelivery(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()

	delivered := false
	dispatcher.Subscribe(events.EventComplaintEscalated, func(_ context.Context, _ events.Event) error {
		return fmt.Errorf("handler failed")
	})
	dispatcher.Subscribe(events.EventComplaintEscalated, func(_ context.Context, _ events.Event) error {
		delivered = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventComplaintEscalated})
	assert.NoError(t, err)
	assert.True(t, delivered)
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	assert.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventComplaintVerified}))
}
