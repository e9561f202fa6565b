// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"time"

	"github.com/enumverse/lrs-hub/internal/domain/shared"
	"github.com/enumverse/lrs-hub/internal/domain/statement"
	"github.com/enumverse/lrs-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATEMENT QUERIES
// Read paths over the statement store. All list queries return a slice in
// store order; an empty result is a valid answer, not an error.
// ══════════════════════════════════════════════════════════════════════════════

// GetStatementQuery identifies a single statement.
type GetStatementQuery struct {
	ID string
}

// Validate checks the query.
func (q GetStatementQuery) Validate() error {
	if q.ID == "" {
		return shared.NewDomainError("statement", "Get", shared.ErrInvalidID, "statement id is required")
	}
	return nil
}

// StatementRangeQuery selects statements by event timestamp.
type StatementRangeQuery struct {
	Start time.Time
	End   time.Time
}

// Validate checks the range bounds.
func (q StatementRangeQuery) Validate() error {
	if q.Start.IsZero() || q.End.IsZero() {
		return shared.NewDomainError("statement", "FindByRange", shared.ErrInvalidInput, "start and end dates are required")
	}
	if q.End.Before(q.Start) {
		return shared.ErrInvalidDateRange
	}
	return nil
}

// StatementQueryHandler handles statement reads.
type StatementQueryHandler struct {
	statements statement.Repository
	log        *logger.Logger
}

// NewStatementQueryHandler creates the handler.
func NewStatementQueryHandler(statements statement.Repository, log *logger.Logger) *StatementQueryHandler {
	if log == nil {
		log = logger.Default()
	}
	return &StatementQueryHandler{
		statements: statements,
		log:        log.With(logger.Component("statement_query")),
	}
}

// GetByID returns one statement or shared.ErrNotFound.
func (h *StatementQueryHandler) GetByID(ctx context.Context, q GetStatementQuery) (*statement.Statement, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return h.statements.FindByID(ctx, q.ID)
}

// ListAll returns every stored statement.
func (h *StatementQueryHandler) ListAll(ctx context.Context) ([]*statement.Statement, error) {
	return h.statements.FindAll(ctx)
}

// ListByActorName returns statements whose actor display name matches
// exactly.
func (h *StatementQueryHandler) ListByActorName(ctx context.Context, name string) ([]*statement.Statement, error) {
	if name == "" {
		return nil, shared.NewDomainError("statement", "FindByActorName", shared.ErrEmptyValue, "actor name is required")
	}
	return h.statements.FindByActorName(ctx, name)
}

// ListByVerbID returns statements whose verb id matches exactly.
func (h *StatementQueryHandler) ListByVerbID(ctx context.Context, verbID string) ([]*statement.Statement, error) {
	if verbID == "" {
		return nil, shared.NewDomainError("statement", "FindByVerbID", shared.ErrEmptyValue, "verb id is required")
	}
	return h.statements.FindByVerbID(ctx, verbID)
}

// ListByTimestampRange returns statements whose event timestamp falls
// within [start, end].
func (h *StatementQueryHandler) ListByTimestampRange(ctx context.Context, q StatementRangeQuery) ([]*statement.Statement, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return h.statements.FindByTimestampRange(ctx, q.Start, q.End)
}
