// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"time"

	"github.com/enumverse/lrs-hub/internal/domain/shared"
	"github.com/enumverse/lrs-hub/internal/domain/statement"
	"github.com/enumverse/lrs-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE STATEMENT COMMAND
// Promotes a statement draft to a stored canonical statement: assigns the
// server-generated id and storage timestamp, enforces the statement
// invariant, persists, and fires the post-creation notification hook.
// ══════════════════════════════════════════════════════════════════════════════

// CreateStatementCommand contains the draft to persist.
type CreateStatementCommand struct {
	// Draft is the transient statement produced by interpretation or
	// decoded from a create request.
	Draft statement.Draft

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate checks the command before it reaches the store.
func (c CreateStatementCommand) Validate() error {
	if c.Draft.Actor.IsZero() {
		return shared.ErrStatementIncomplete
	}
	if c.Draft.Verb.ID == "" || c.Draft.Object.ID == "" {
		return shared.ErrStatementIncomplete
	}
	return nil
}

// CreateStatementResult contains the stored statement.
type CreateStatementResult struct {
	Statement *statement.Statement
	CreatedAt time.Time
}

// CreateStatementHandler handles the CreateStatementCommand.
type CreateStatementHandler struct {
	statements statement.Repository
	events     shared.EventPublisher
	log        *logger.Logger

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewCreateStatementHandler creates the handler.
func NewCreateStatementHandler(statements statement.Repository, events shared.EventPublisher, log *logger.Logger) *CreateStatementHandler {
	if log == nil {
		log = logger.Default()
	}
	if events == nil {
		events = shared.NopPublisher{}
	}
	return &CreateStatementHandler{
		statements: statements,
		events:     events,
		log:        log.With(logger.Component("create_statement")),
		now:        time.Now,
	}
}

// Handle executes the command.
func (h *CreateStatementHandler) Handle(ctx context.Context, cmd CreateStatementCommand) (*CreateStatementResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.now()
	stmt, err := statement.New(cmd.Draft, now)
	if err != nil {
		return nil, err
	}

	saved, err := h.statements.Save(ctx, stmt)
	if err != nil {
		return nil, shared.WrapError("statement", "Create", shared.ErrExternalService, "failed to save statement", err)
	}

	h.log.Debug("statement created",
		logger.StatementID(saved.ID),
		logger.ActorID(saved.Actor.ID),
		logger.VerbID(saved.Verb.ID),
	)

	// Fire-and-forget notification hook. Publish failures are observed
	// and swallowed; the write never rolls back or retries because of
	// them.
	event := shared.NewStatementCreatedEvent(
		saved.ID,
		saved.Actor.ID,
		saved.Actor.Name,
		saved.Verb.ID,
		saved.Object.ID,
	)
	event.BaseEvent = event.WithCorrelationID(cmd.CorrelationID)
	if err := h.events.Publish(event); err != nil {
		h.log.Warn("statement created event not published",
			logger.StatementID(saved.ID), logger.Err(err))
	}

	return &CreateStatementResult{Statement: saved, CreatedAt: now}, nil
}
