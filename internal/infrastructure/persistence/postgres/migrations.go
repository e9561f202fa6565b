// Package postgres implements the PostgreSQL persistence layer for the
// learning record store.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE STATEMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create statements table
-- Version: 001

-- Statements are immutable documents. The full statement lives in the
-- JSONB column; the extracted columns exist only for the supported
-- lookups (actor name, verb id, timestamp range).
CREATE TABLE IF NOT EXISTS statements (
    id UUID PRIMARY KEY,
    actor_id VARCHAR(255) NOT NULL DEFAULT '',
    actor_name VARCHAR(255) NOT NULL DEFAULT '',
    verb_id VARCHAR(512) NOT NULL,
    activity_id VARCHAR(512) NOT NULL,
    event_timestamp TIMESTAMP WITH TIME ZONE NOT NULL,
    stored_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    document JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_statements_actor_id ON statements(actor_id);
CREATE INDEX IF NOT EXISTS idx_statements_actor_name ON statements(actor_name);
CREATE INDEX IF NOT EXISTS idx_statements_verb_id ON statements(verb_id);
CREATE INDEX IF NOT EXISTS idx_statements_activity_id ON statements(activity_id);
CREATE INDEX IF NOT EXISTS idx_statements_event_timestamp ON statements(event_timestamp);
CREATE INDEX IF NOT EXISTS idx_statements_stored_at ON statements(stored_at DESC);
`

const migration001Down = `
DROP TABLE IF EXISTS statements;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE LEARNING RECORDS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create learning_records table
-- Version: 002

CREATE TABLE IF NOT EXISTS learning_records (
    id UUID PRIMARY KEY,
    user_id VARCHAR(255) NOT NULL,
    course_id VARCHAR(255) NOT NULL,
    activity_type VARCHAR(100),
    activity_name VARCHAR(255),
    score INTEGER,
    completed BOOLEAN,
    start_time TIMESTAMP WITH TIME ZONE,
    end_time TIMESTAMP WITH TIME ZONE,
    duration_minutes INTEGER,
    status VARCHAR(50),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE
);

CREATE INDEX IF NOT EXISTS idx_learning_records_user ON learning_records(user_id);
CREATE INDEX IF NOT EXISTS idx_learning_records_course ON learning_records(course_id);
CREATE INDEX IF NOT EXISTS idx_learning_records_user_course ON learning_records(user_id, course_id);
CREATE INDEX IF NOT EXISTS idx_learning_records_completed ON learning_records(completed) WHERE completed IS NOT NULL;
`

const migration002Down = `
DROP TABLE IF EXISTS learning_records;
`

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_statements",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_learning_records",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}
