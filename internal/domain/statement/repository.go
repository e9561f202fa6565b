// Package statement contains the canonical statement model and the
// persistence contract for statement storage.
package statement

import (
	"context"
	"time"
)

// Repository defines the interface for statement persistence.
// Implemented by the infrastructure layer; the domain has no knowledge of
// the actual storage mechanism. Statements are immutable once saved, so
// there is no update operation.
type Repository interface {
	// Save persists a statement. The statement must already carry an id
	// and stored timestamp (see New); Save does not assign them.
	Save(ctx context.Context, s *Statement) (*Statement, error)

	// FindByID returns the statement with the given id, or
	// shared.ErrNotFound.
	FindByID(ctx context.Context, id string) (*Statement, error)

	// FindAll returns every stored statement.
	FindAll(ctx context.Context) ([]*Statement, error)

	// FindByActorName returns statements whose actor display name matches
	// exactly.
	FindByActorName(ctx context.Context, name string) ([]*Statement, error)

	// FindByVerbID returns statements whose verb id matches exactly.
	FindByVerbID(ctx context.Context, verbID string) ([]*Statement, error)

	// FindByTimestampRange returns statements whose event timestamp falls
	// within [start, end].
	FindByTimestampRange(ctx context.Context, start, end time.Time) ([]*Statement, error)

	// DeleteByID removes a statement. Returns shared.ErrNotFound when no
	// statement has the given id.
	DeleteByID(ctx context.Context, id string) error
}
