// Package eventhandler contains subscribers that react to domain events.
package eventhandler

import (
	"context"

	"github.com/enumverse/lrs-hub/internal/domain/shared"
	"github.com/enumverse/lrs-hub/pkg/logger"
)

// Notifier delivers statement-creation notifications to an external
// channel. The Redis pub/sub implementation lives in the infrastructure
// layer; a nil notifier means the hook only logs.
type Notifier interface {
	NotifyStatementCreated(ctx context.Context, event shared.StatementCreatedEvent) error
}

// StatementCreatedHandler is the post-creation notification hook. It runs
// asynchronously on the event bus; failures here are logged and never
// reach the write path.
type StatementCreatedHandler struct {
	notifier Notifier
	log      *logger.Logger
}

// NewStatementCreatedHandler creates the handler.
func NewStatementCreatedHandler(notifier Notifier, log *logger.Logger) *StatementCreatedHandler {
	if log == nil {
		log = logger.Default()
	}
	return &StatementCreatedHandler{
		notifier: notifier,
		log:      log.With(logger.Component("on_statement_created")),
	}
}

// Handle processes a statement.created event.
func (h *StatementCreatedHandler) Handle(event shared.Event) error {
	created, ok := event.(shared.StatementCreatedEvent)
	if !ok {
		h.log.Warn("unexpected event payload", logger.String("event_type", string(event.EventType())))
		return nil
	}

	h.log.Info("statement recorded",
		logger.StatementID(created.StatementID),
		logger.ActorName(created.ActorName),
		logger.VerbID(created.VerbID),
		logger.ActivityID(created.ActivityID),
	)

	if h.notifier == nil {
		return nil
	}

	if err := h.notifier.NotifyStatementCreated(context.Background(), created); err != nil {
		h.log.Warn("statement notification failed",
			logger.StatementID(created.StatementID), logger.Err(err))
	}
	return nil
}

// Register subscribes the handler on the bus.
func (h *StatementCreatedHandler) Register(bus shared.EventSubscriber) error {
	return bus.Subscribe(shared.EventStatementCreated, h.Handle)
}
