package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/enumverse/lrs-hub/internal/domain/record"
	"github.com/enumverse/lrs-hub/internal/domain/shared"
	"github.com/enumverse/lrs-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEARNING RECORD COMMANDS
// Plain pass-through persistence: create, update, delete. No derived
// computation happens on learning records.
// ══════════════════════════════════════════════════════════════════════════════

// LearningRecordInput carries the writable fields of a learning record.
type LearningRecordInput struct {
	UserID          string
	CourseID        string
	ActivityType    string
	ActivityName    string
	Score           *int
	Completed       *bool
	StartTime       *time.Time
	EndTime         *time.Time
	DurationMinutes *int
	Status          string
}

// LearningRecordHandler handles learning-record writes.
type LearningRecordHandler struct {
	records record.Repository
	log     *logger.Logger
	now     func() time.Time
}

// NewLearningRecordHandler creates the handler.
func NewLearningRecordHandler(records record.Repository, log *logger.Logger) *LearningRecordHandler {
	if log == nil {
		log = logger.Default()
	}
	return &LearningRecordHandler{
		records: records,
		log:     log.With(logger.Component("learning_record")),
		now:     time.Now,
	}
}

// Create persists a new learning record.
func (h *LearningRecordHandler) Create(ctx context.Context, in LearningRecordInput) (*record.LearningRecord, error) {
	rec := &record.LearningRecord{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		CourseID:        in.CourseID,
		ActivityType:    in.ActivityType,
		ActivityName:    in.ActivityName,
		Score:           in.Score,
		Completed:       in.Completed,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		DurationMinutes: in.DurationMinutes,
		Status:          in.Status,
		CreatedAt:       h.now(),
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	saved, err := h.records.Save(ctx, rec)
	if err != nil {
		return nil, shared.WrapError("record", "Create", shared.ErrExternalService, "failed to save learning record", err)
	}

	h.log.Debug("learning record created",
		logger.RecordID(saved.ID),
		logger.String("user_id", saved.UserID),
		logger.String("course_id", saved.CourseID),
	)
	return saved, nil
}

// Update overwrites an existing learning record. Updating a missing id is
// a reported failure.
func (h *LearningRecordHandler) Update(ctx context.Context, id string, in LearningRecordInput) (*record.LearningRecord, error) {
	rec, err := h.records.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rec.UserID = in.UserID
	rec.CourseID = in.CourseID
	rec.ActivityType = in.ActivityType
	rec.ActivityName = in.ActivityName
	rec.Score = in.Score
	rec.Completed = in.Completed
	rec.StartTime = in.StartTime
	rec.EndTime = in.EndTime
	rec.DurationMinutes = in.DurationMinutes
	rec.Status = in.Status
	rec.Touch(h.now())

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	saved, err := h.records.Save(ctx, rec)
	if err != nil {
		return nil, shared.WrapError("record", "Update", shared.ErrExternalService, "failed to update learning record", err)
	}

	h.log.Debug("learning record updated", logger.RecordID(saved.ID))
	return saved, nil
}

// Delete removes a learning record. Deleting a missing id is a reported
// failure.
func (h *LearningRecordHandler) Delete(ctx context.Context, id string) error {
	if _, err := h.records.FindByID(ctx, id); err != nil {
		return err
	}
	if err := h.records.DeleteByID(ctx, id); err != nil {
		return err
	}
	h.log.Debug("learning record deleted", logger.RecordID(id))
	return nil
}
