package eventhandler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enumverse/lrs-hub/internal/domain/shared"
)

type fakeNotifier struct {
	notified []shared.StatementCreatedEvent
	err      error
}

func (n *fakeNotifier) NotifyStatementCreated(_ context.Context, event shared.StatementCreatedEvent) error {
	n.notified = append(n.notified, event)
	return n.err
}

func TestHandle_Notifies(t *testing.T) {
	notifier := &fakeNotifier{}
	h := NewStatementCreatedHandler(notifier, nil)

	event := shared.NewStatementCreatedEvent("s1", "u1", "Ama", "v/completed", "a1")
	require.NoError(t, h.Handle(event))

	require.Len(t, notifier.notified, 1)
	assert.Equal(t, "s1", notifier.notified[0].StatementID)
	assert.Equal(t, "Ama", notifier.notified[0].ActorName)
}

func TestHandle_NotifierFailureIsSwallowed(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("broker down")}
	h := NewStatementCreatedHandler(notifier, nil)

	assert.NoError(t, h.Handle(shared.NewStatementCreatedEvent("s1", "u1", "Ama", "v", "a")))
}

func TestHandle_NilNotifierOnlyLogs(t *testing.T) {
	h := NewStatementCreatedHandler(nil, nil)
	assert.NoError(t, h.Handle(shared.NewStatementCreatedEvent("s1", "u1", "Ama", "v", "a")))
}

func TestHandle_UnexpectedPayloadIgnored(t *testing.T) {
	notifier := &fakeNotifier{}
	h := NewStatementCreatedHandler(notifier, nil)

	assert.NoError(t, h.Handle(shared.NewStatementDeletedEvent("s1")))
	assert.Empty(t, notifier.notified)
}
