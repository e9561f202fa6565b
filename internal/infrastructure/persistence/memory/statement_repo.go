// Package memory provides in-memory repository implementations. They back
// the dev store mode and the test suites; ordering is insertion order so
// results are deterministic.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/enumverse/lrs-hub/internal/domain/shared"
	"github.com/enumverse/lrs-hub/internal/domain/statement"
)

// StatementRepository implements statement.Repository in memory.
type StatementRepository struct {
	mu         sync.RWMutex
	statements map[string]*statement.Statement
	order      []string
}

// NewStatementRepository creates an empty in-memory statement store.
func NewStatementRepository() *StatementRepository {
	return &StatementRepository{
		statements: make(map[string]*statement.Statement),
		order:      make([]string, 0),
	}
}

// Save persists a statement. Statements are immutable; saving an existing
// id fails.
func (r *StatementRepository) Save(_ context.Context, s *statement.Statement) (*statement.Statement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.statements[s.ID]; exists {
		return nil, shared.ErrImmutable
	}

	copied := *s
	r.statements[s.ID] = &copied
	r.order = append(r.order, s.ID)
	return s, nil
}

// FindByID returns the statement with the given id.
func (r *StatementRepository) FindByID(_ context.Context, id string) (*statement.Statement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.statements[id]
	if !ok {
		return nil, shared.ErrStatementNotFound
	}

	copied := *s
	return &copied, nil
}

// FindAll returns every stored statement in insertion order.
func (r *StatementRepository) FindAll(_ context.Context) ([]*statement.Statement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(*statement.Statement) bool { return true }), nil
}

// FindByActorName returns statements whose actor display name matches
// exactly.
func (r *StatementRepository) FindByActorName(_ context.Context, name string) ([]*statement.Statement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(s *statement.Statement) bool {
		return s.Actor.Name == name
	}), nil
}

// FindByVerbID returns statements whose verb id matches exactly.
func (r *StatementRepository) FindByVerbID(_ context.Context, verbID string) ([]*statement.Statement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(s *statement.Statement) bool {
		return s.Verb.ID == verbID
	}), nil
}

// FindByTimestampRange returns statements whose event timestamp falls
// within [start, end].
func (r *StatementRepository) FindByTimestampRange(_ context.Context, start, end time.Time) ([]*statement.Statement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(s *statement.Statement) bool {
		if s.Timestamp.IsZero() {
			return false
		}
		return !s.Timestamp.Before(start) && !s.Timestamp.After(end)
	}), nil
}

// DeleteByID removes a statement.
func (r *StatementRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.statements[id]; !ok {
		return shared.ErrStatementNotFound
	}

	delete(r.statements, id)
	for i, stored := range r.order {
		if stored == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of stored statements.
func (r *StatementRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.statements)), nil
}

// collect returns copies of all statements passing the filter, in
// insertion order. Caller must hold the lock.
func (r *StatementRepository) collect(keep func(*statement.Statement) bool) []*statement.Statement {
	result := make([]*statement.Statement, 0)
	for _, id := range r.order {
		s := r.statements[id]
		if keep(s) {
			copied := *s
			result = append(result, &copied)
		}
	}
	return result
}
