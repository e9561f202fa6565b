package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/enumverse/lrs-hub/internal/domain/record"
	"github.com/enumverse/lrs-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEARNING RECORD REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const recordColumns = `
	id, user_id, course_id, activity_type, activity_name,
	score, completed, start_time, end_time, duration_minutes,
	status, created_at, updated_at
`

// RecordRepository implements record.Repository for PostgreSQL.
type RecordRepository struct {
	conn *Connection
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(conn *Connection) *RecordRepository {
	return &RecordRepository{conn: conn}
}

// Save persists a record, inserting or overwriting by id.
func (r *RecordRepository) Save(ctx context.Context, rec *record.LearningRecord) (*record.LearningRecord, error) {
	query := `
		INSERT INTO learning_records (
			id, user_id, course_id, activity_type, activity_name,
			score, completed, start_time, end_time, duration_minutes,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			course_id = EXCLUDED.course_id,
			activity_type = EXCLUDED.activity_type,
			activity_name = EXCLUDED.activity_name,
			score = EXCLUDED.score,
			completed = EXCLUDED.completed,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			duration_minutes = EXCLUDED.duration_minutes,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.conn.Exec(ctx, query,
		rec.ID,
		rec.UserID,
		rec.CourseID,
		nullableString(rec.ActivityType),
		nullableString(rec.ActivityName),
		rec.Score,
		rec.Completed,
		rec.StartTime,
		rec.EndTime,
		rec.DurationMinutes,
		nullableString(rec.Status),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save learning record: %w", err)
	}

	return rec, nil
}

// FindByID returns the record with the given id.
func (r *RecordRepository) FindByID(ctx context.Context, id string) (*record.LearningRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM learning_records WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	rec, err := r.scanRecord(row)
	if IsNoRows(err) {
		return nil, shared.ErrRecordNotFound
	}
	return rec, err
}

// FindAll returns every stored record, newest first.
func (r *RecordRepository) FindAll(ctx context.Context) ([]*record.LearningRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM learning_records ORDER BY created_at DESC`
	return r.queryRecords(ctx, query)
}

// FindByUserID returns records belonging to a user.
func (r *RecordRepository) FindByUserID(ctx context.Context, userID string) ([]*record.LearningRecord, error) {
	query := `
		SELECT ` + recordColumns + ` FROM learning_records
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.queryRecords(ctx, query, userID)
}

// FindByCourseID returns records belonging to a course.
func (r *RecordRepository) FindByCourseID(ctx context.Context, courseID string) ([]*record.LearningRecord, error) {
	query := `
		SELECT ` + recordColumns + ` FROM learning_records
		WHERE course_id = $1
		ORDER BY created_at DESC
	`
	return r.queryRecords(ctx, query, courseID)
}

// FindByUserAndCourse returns records for a user on a course.
func (r *RecordRepository) FindByUserAndCourse(ctx context.Context, userID, courseID string) ([]*record.LearningRecord, error) {
	query := `
		SELECT ` + recordColumns + ` FROM learning_records
		WHERE user_id = $1 AND course_id = $2
		ORDER BY created_at DESC
	`
	return r.queryRecords(ctx, query, userID, courseID)
}

// FindByCompleted returns records filtered by the completed flag.
func (r *RecordRepository) FindByCompleted(ctx context.Context, completed bool) ([]*record.LearningRecord, error) {
	query := `
		SELECT ` + recordColumns + ` FROM learning_records
		WHERE completed = $1
		ORDER BY created_at DESC
	`
	return r.queryRecords(ctx, query, completed)
}

// DeleteByID removes a record.
func (r *RecordRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM learning_records WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete learning record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrRecordNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *RecordRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]*record.LearningRecord, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query learning records: %w", err)
	}
	defer rows.Close()

	records := make([]*record.LearningRecord, 0)
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

func (r *RecordRepository) scanRecord(row pgx.Row) (*record.LearningRecord, error) {
	var rec record.LearningRecord
	var activityType, activityName, status *string

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.CourseID,
		&activityType,
		&activityName,
		&rec.Score,
		&rec.Completed,
		&rec.StartTime,
		&rec.EndTime,
		&rec.DurationMinutes,
		&status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan learning record: %w", err)
	}

	if activityType != nil {
		rec.ActivityType = *activityType
	}
	if activityName != nil {
		rec.ActivityName = *activityName
	}
	if status != nil {
		rec.Status = *status
	}

	return &rec, nil
}

// nullableString converts an empty string to NULL.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
