package memory

import (
	"context"
	"sync"

	"github.com/enumverse/lrs-hub/internal/domain/record"
	"github.com/enumverse/lrs-hub/internal/domain/shared"
)

// RecordRepository implements record.Repository in memory.
type RecordRepository struct {
	mu      sync.RWMutex
	records map[string]*record.LearningRecord
	order   []string
}

// NewRecordRepository creates an empty in-memory record store.
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{
		records: make(map[string]*record.LearningRecord),
		order:   make([]string, 0),
	}
}

// Save persists a record, inserting or overwriting by id.
func (r *RecordRepository) Save(_ context.Context, rec *record.LearningRecord) (*record.LearningRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[rec.ID]; !exists {
		r.order = append(r.order, rec.ID)
	}

	copied := *rec
	r.records[rec.ID] = &copied
	return rec, nil
}

// FindByID returns the record with the given id.
func (r *RecordRepository) FindByID(_ context.Context, id string) (*record.LearningRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, shared.ErrRecordNotFound
	}

	copied := *rec
	return &copied, nil
}

// FindAll returns every stored record in insertion order.
func (r *RecordRepository) FindAll(_ context.Context) ([]*record.LearningRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(*record.LearningRecord) bool { return true }), nil
}

// FindByUserID returns records belonging to a user.
func (r *RecordRepository) FindByUserID(_ context.Context, userID string) ([]*record.LearningRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(rec *record.LearningRecord) bool {
		return rec.UserID == userID
	}), nil
}

// FindByCourseID returns records belonging to a course.
func (r *RecordRepository) FindByCourseID(_ context.Context, courseID string) ([]*record.LearningRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(rec *record.LearningRecord) bool {
		return rec.CourseID == courseID
	}), nil
}

// FindByUserAndCourse returns records for a user on a course.
func (r *RecordRepository) FindByUserAndCourse(_ context.Context, userID, courseID string) ([]*record.LearningRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(rec *record.LearningRecord) bool {
		return rec.UserID == userID && rec.CourseID == courseID
	}), nil
}

// FindByCompleted returns records filtered by the completed flag.
func (r *RecordRepository) FindByCompleted(_ context.Context, completed bool) ([]*record.LearningRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(rec *record.LearningRecord) bool {
		return rec.Completed != nil && *rec.Completed == completed
	}), nil
}

// DeleteByID removes a record.
func (r *RecordRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return shared.ErrRecordNotFound
	}

	delete(r.records, id)
	for i, stored := range r.order {
		if stored == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// collect returns copies of all records passing the filter, in insertion
// order. Caller must hold the lock.
func (r *RecordRepository) collect(keep func(*record.LearningRecord) bool) []*record.LearningRecord {
	result := make([]*record.LearningRecord, 0)
	for _, id := range r.order {
		rec := r.records[id]
		if keep(rec) {
			copied := *rec
			result = append(result, &copied)
		}
	}
	return result
}
