package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/enumverse/lrs-hub/internal/domain/shared"
	"github.com/enumverse/lrs-hub/internal/domain/statement"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATEMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const statementColumns = "document"

// StatementRepository implements statement.Repository for PostgreSQL.
type StatementRepository struct {
	conn *Connection
}

// NewStatementRepository creates a new StatementRepository.
func NewStatementRepository(conn *Connection) *StatementRepository {
	return &StatementRepository{conn: conn}
}

// Save persists a statement. Statements are immutable, so a duplicate id
// is an error rather than an update.
func (r *StatementRepository) Save(ctx context.Context, s *statement.Statement) (*statement.Statement, error) {
	document, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal statement: %w", err)
	}

	query := `
		INSERT INTO statements (
			id, actor_id, actor_name, verb_id, activity_id,
			event_timestamp, stored_at, document
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.conn.Exec(ctx, query,
		s.ID,
		s.Actor.ID,
		s.Actor.Name,
		s.Verb.ID,
		s.Object.ID,
		s.Timestamp,
		s.Stored,
		document,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, fmt.Errorf("statement %s already exists: %w", s.ID, shared.ErrImmutable)
		}
		return nil, fmt.Errorf("failed to save statement: %w", err)
	}

	return s, nil
}

// FindByID returns the statement with the given id.
func (r *StatementRepository) FindByID(ctx context.Context, id string) (*statement.Statement, error) {
	query := `SELECT ` + statementColumns + ` FROM statements WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	s, err := r.scanStatement(row)
	if IsNoRows(err) {
		return nil, shared.ErrStatementNotFound
	}
	return s, err
}

// FindAll returns every stored statement, newest stored first.
func (r *StatementRepository) FindAll(ctx context.Context) ([]*statement.Statement, error) {
	query := `SELECT ` + statementColumns + ` FROM statements ORDER BY stored_at DESC`
	return r.queryStatements(ctx, query)
}

// FindByActorName returns statements whose actor display name matches
// exactly.
func (r *StatementRepository) FindByActorName(ctx context.Context, name string) ([]*statement.Statement, error) {
	query := `
		SELECT ` + statementColumns + ` FROM statements
		WHERE actor_name = $1
		ORDER BY stored_at DESC
	`
	return r.queryStatements(ctx, query, name)
}

// FindByVerbID returns statements whose verb id matches exactly.
func (r *StatementRepository) FindByVerbID(ctx context.Context, verbID string) ([]*statement.Statement, error) {
	query := `
		SELECT ` + statementColumns + ` FROM statements
		WHERE verb_id = $1
		ORDER BY stored_at DESC
	`
	return r.queryStatements(ctx, query, verbID)
}

// FindByTimestampRange returns statements whose event timestamp falls
// within [start, end].
func (r *StatementRepository) FindByTimestampRange(ctx context.Context, start, end time.Time) ([]*statement.Statement, error) {
	query := `
		SELECT ` + statementColumns + ` FROM statements
		WHERE event_timestamp >= $1 AND event_timestamp <= $2
		ORDER BY event_timestamp ASC
	`
	return r.queryStatements(ctx, query, start, end)
}

// DeleteByID removes a statement.
func (r *StatementRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM statements WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete statement: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrStatementNotFound
	}

	return nil
}

// Count returns the total number of statements.
func (r *StatementRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM statements").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count statements: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *StatementRepository) queryStatements(ctx context.Context, query string, args ...interface{}) ([]*statement.Statement, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query statements: %w", err)
	}
	defer rows.Close()

	return r.scanStatements(rows)
}

func (r *StatementRepository) scanStatement(row pgx.Row) (*statement.Statement, error) {
	var document []byte
	if err := row.Scan(&document); err != nil {
		return nil, err
	}

	var s statement.Statement
	if err := json.Unmarshal(document, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statement: %w", err)
	}

	return &s, nil
}

func (r *StatementRepository) scanStatements(rows pgx.Rows) ([]*statement.Statement, error) {
	statements := make([]*statement.Statement, 0)

	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}

		var s statement.Statement
		if err := json.Unmarshal(document, &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal statement: %w", err)
		}

		statements = append(statements, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return statements, nil
}
