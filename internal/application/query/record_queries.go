package query

import (
	"context"

	"github.com/enumverse/lrs-hub/internal/domain/record"
	"github.com/enumverse/lrs-hub/internal/domain/shared"
	"github.com/enumverse/lrs-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEARNING RECORD QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// RecordQueryHandler handles learning-record reads.
type RecordQueryHandler struct {
	records record.Repository
	log     *logger.Logger
}

// NewRecordQueryHandler creates the handler.
func NewRecordQueryHandler(records record.Repository, log *logger.Logger) *RecordQueryHandler {
	if log == nil {
		log = logger.Default()
	}
	return &RecordQueryHandler{
		records: records,
		log:     log.With(logger.Component("record_query")),
	}
}

// GetByID returns one record or shared.ErrNotFound.
func (h *RecordQueryHandler) GetByID(ctx context.Context, id string) (*record.LearningRecord, error) {
	if id == "" {
		return nil, shared.NewDomainError("record", "Get", shared.ErrInvalidID, "record id is required")
	}
	return h.records.FindByID(ctx, id)
}

// ListAll returns every stored record.
func (h *RecordQueryHandler) ListAll(ctx context.Context) ([]*record.LearningRecord, error) {
	return h.records.FindAll(ctx)
}

// ListByUserID returns records belonging to a user.
func (h *RecordQueryHandler) ListByUserID(ctx context.Context, userID string) ([]*record.LearningRecord, error) {
	if userID == "" {
		return nil, shared.NewDomainError("record", "FindByUserID", shared.ErrEmptyValue, "user id is required")
	}
	return h.records.FindByUserID(ctx, userID)
}

// ListByCourseID returns records belonging to a course.
func (h *RecordQueryHandler) ListByCourseID(ctx context.Context, courseID string) ([]*record.LearningRecord, error) {
	if courseID == "" {
		return nil, shared.NewDomainError("record", "FindByCourseID", shared.ErrEmptyValue, "course id is required")
	}
	return h.records.FindByCourseID(ctx, courseID)
}

// ListByUserAndCourse returns records for a user on a course.
func (h *RecordQueryHandler) ListByUserAndCourse(ctx context.Context, userID, courseID string) ([]*record.LearningRecord, error) {
	if userID == "" || courseID == "" {
		return nil, shared.NewDomainError("record", "FindByUserAndCourse", shared.ErrEmptyValue, "user id and course id are required")
	}
	return h.records.FindByUserAndCourse(ctx, userID, courseID)
}

// ListByCompleted returns records filtered by the completed flag.
func (h *RecordQueryHandler) ListByCompleted(ctx context.Context, completed bool) ([]*record.LearningRecord, error) {
	return h.records.FindByCompleted(ctx, completed)
}
