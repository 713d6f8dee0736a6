package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var created, assigned []Event
	d.Subscribe(EventCaseCreated, func(_ context.Context, e Event) error {
		created = append(created, e)
		return nil
	})
	d.Subscribe(EventCaseAssigned, func(_ context.Context, e Event) error {
		assigned = append(assigned, e)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventCaseCreated, CaseID: "case-1"}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventCaseCreated, CaseID: "case-2"}))

	require.Len(t, created, 2)
	require.Empty(t, assigned)
	require.Equal(t, "case-1", created[0].CaseID)
}

func TestDispatcherHandlerErrorDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var reached bool
	d.Subscribe(EventCaseDeleted, func(context.Context, Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventCaseDeleted, func(context.Context, Event) error {
		reached = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventCaseDeleted}))
	require.True(t, reached)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	d := NewInMemoryDispatcher()
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventCaseEscalated}))
}
