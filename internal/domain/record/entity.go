// Package record contains the simple learning-record entity: a flat,
// mutable progress row with no derived computation. It exists alongside
// the canonical statement model for callers that want plain CRUD without
// the xAPI vocabulary.
package record

import (
	"strings"
	"time"

	"github.com/enumverse/lrs-hub/internal/domain/shared"
)

// LearningRecord is a flat progress row for one user on one course.
type LearningRecord struct {
	ID string `json:"id"`

	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`

	ActivityType string `json:"activity_type,omitempty"`
	ActivityName string `json:"activity_name,omitempty"`

	Score     *int  `json:"score,omitempty"`
	Completed *bool `json:"completed,omitempty"`

	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`

	Status string `json:"status,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Validate checks the minimal record invariant.
func (r *LearningRecord) Validate() error {
	if strings.TrimSpace(r.UserID) == "" || strings.TrimSpace(r.CourseID) == "" {
		return shared.ErrRecordInvalid
	}
	return nil
}

// Touch stamps the update timestamp.
func (r *LearningRecord) Touch(now time.Time) {
	r.UpdatedAt = &now
}
