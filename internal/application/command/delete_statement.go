package command

import (
	"context"

	"github.com/enumverse/lrs-hub/internal/domain/shared"
	"github.com/enumverse/lrs-hub/internal/domain/statement"
	"github.com/enumverse/lrs-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE STATEMENT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// DeleteStatementCommand identifies the statement to remove.
type DeleteStatementCommand struct {
	ID string
}

// Validate checks the command.
func (c DeleteStatementCommand) Validate() error {
	if c.ID == "" {
		return shared.NewDomainError("statement", "Delete", shared.ErrInvalidID, "statement id is required")
	}
	return nil
}

// DeleteStatementHandler handles the DeleteStatementCommand.
type DeleteStatementHandler struct {
	statements statement.Repository
	events     shared.EventPublisher
	log        *logger.Logger
}

// NewDeleteStatementHandler creates the handler.
func NewDeleteStatementHandler(statements statement.Repository, events shared.EventPublisher, log *logger.Logger) *DeleteStatementHandler {
	if log == nil {
		log = logger.Default()
	}
	if events == nil {
		events = shared.NopPublisher{}
	}
	return &DeleteStatementHandler{
		statements: statements,
		events:     events,
		log:        log.With(logger.Component("delete_statement")),
	}
}

// Handle executes the command. Deleting an id that does not exist is a
// reported failure (shared.ErrNotFound), not a silent no-op.
func (h *DeleteStatementHandler) Handle(ctx context.Context, cmd DeleteStatementCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := h.statements.DeleteByID(ctx, cmd.ID); err != nil {
		return err
	}

	h.log.Debug("statement deleted", logger.StatementID(cmd.ID))

	if err := h.events.Publish(shared.NewStatementDeletedEvent(cmd.ID)); err != nil {
		h.log.Warn("statement deleted event not published",
			logger.StatementID(cmd.ID), logger.Err(err))
	}

	return nil
}
