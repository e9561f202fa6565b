package record

import (
	"context"
)

// Repository defines the interface for learning-record persistence.
type Repository interface {
	// Save persists a record (create or update).
	Save(ctx context.Context, r *LearningRecord) (*LearningRecord, error)

	// FindByID returns the record with the given id, or shared.ErrNotFound.
	FindByID(ctx context.Context, id string) (*LearningRecord, error)

	// FindAll returns every stored record.
	FindAll(ctx context.Context) ([]*LearningRecord, error)

	// FindByUserID returns records belonging to a user.
	FindByUserID(ctx context.Context, userID string) ([]*LearningRecord, error)

	// FindByCourseID returns records belonging to a course.
	FindByCourseID(ctx context.Context, courseID string) ([]*LearningRecord, error)

	// FindByUserAndCourse returns records for a user on a course.
	FindByUserAndCourse(ctx context.Context, userID, courseID string) ([]*LearningRecord, error)

	// FindByCompleted returns records filtered by the completed flag.
	FindByCompleted(ctx context.Context, completed bool) ([]*LearningRecord, error)

	// DeleteByID removes a record. Returns shared.ErrNotFound when no
	// record has the given id.
	DeleteByID(ctx context.Context, id string) error
}
