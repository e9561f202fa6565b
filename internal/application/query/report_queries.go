package query

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/enumverse/lrs-hub/internal/domain/reporting"
	"github.com/enumverse/lrs-hub/internal/domain/shared"
	"github.com/enumverse/lrs-hub/internal/domain/statement"
	"github.com/enumverse/lrs-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPORT QUERIES
// Thin orchestration over the reporting package: fetch the relevant
// statement set from the store, hand it to the pure aggregation functions,
// optionally cache the result. All report math lives in domain/reporting.
// ══════════════════════════════════════════════════════════════════════════════

const (
	// defaultRankingLimit applies when a ranking query does not specify one.
	defaultRankingLimit = 10

	// maxRankingLimit caps caller-provided limits.
	maxRankingLimit = 100
)

// Cache is the read-through cache used for expensive reports. A nil-safe
// implementation backed by Redis lives in the infrastructure layer.
type Cache interface {
	// Get returns the cached value, or (nil, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with a TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ReportRangeQuery selects the statement set for range-scoped reports.
type ReportRangeQuery struct {
	Start time.Time
	End   time.Time
}

// Validate checks the range bounds.
func (q ReportRangeQuery) Validate() error {
	if q.Start.IsZero() || q.End.IsZero() {
		return shared.NewDomainError("reporting", "Range", shared.ErrInvalidInput, "start and end dates are required")
	}
	if q.End.Before(q.Start) {
		return shared.ErrInvalidDateRange
	}
	return nil
}

// RankingQuery carries the depth of a ranking report.
type RankingQuery struct {
	Limit int
}

// Validate checks the limit; zero means "use the default".
func (q RankingQuery) Validate() error {
	if q.Limit < 0 || q.Limit > maxRankingLimit {
		return shared.ErrInvalidLimit
	}
	return nil
}

func (q RankingQuery) limitOrDefault() int {
	if q.Limit == 0 {
		return defaultRankingLimit
	}
	return q.Limit
}

// ReportQueryHandler handles report reads.
type ReportQueryHandler struct {
	statements statement.Repository
	cache      Cache
	cacheTTL   time.Duration
	loc        *time.Location
	log        *logger.Logger

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewReportQueryHandler creates the handler. cache may be nil, in which
// case every report is computed fresh. loc nil means UTC trend buckets.
func NewReportQueryHandler(statements statement.Repository, cache Cache, cacheTTL time.Duration, loc *time.Location, log *logger.Logger) *ReportQueryHandler {
	if log == nil {
		log = logger.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReportQueryHandler{
		statements: statements,
		cache:      cache,
		cacheTTL:   cacheTTL,
		loc:        loc,
		log:        log.With(logger.Component("report_query")),
		now:        time.Now,
	}
}

// Comprehensive computes the full report over one timestamp range.
// The result is served from cache when a fresh copy exists for the same
// range; cache failures degrade to a fresh computation.
func (h *ReportQueryHandler) Comprehensive(ctx context.Context, q ReportRangeQuery) (*reporting.ComprehensiveReport, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("report:comprehensive:%d:%d", q.Start.Unix(), q.End.Unix())
	if cached := h.cachedReport(ctx, key); cached != nil {
		return cached, nil
	}

	stmts, err := h.statements.FindByTimestampRange(ctx, q.Start, q.End)
	if err != nil {
		return nil, err
	}

	report := reporting.Comprehensive(stmts, q.Start, q.End, h.now(), h.loc)
	h.storeReport(ctx, key, &report)
	return &report, nil
}

// ActorReport summarizes one actor's statements across the whole store.
func (h *ReportQueryHandler) ActorReport(ctx context.Context, actorID string) (*reporting.ActorReport, error) {
	if actorID == "" {
		return nil, shared.NewDomainError("reporting", "ActorReport", shared.ErrEmptyValue, "actor id is required")
	}

	stmts, err := h.statements.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	own := make([]*statement.Statement, 0)
	for _, s := range stmts {
		if s.Actor.ID == actorID {
			own = append(own, s)
		}
	}

	report := reporting.ActorReportFor(actorID, own)
	return &report, nil
}

// ActivityReport summarizes one activity's statements across the whole
// store.
func (h *ReportQueryHandler) ActivityReport(ctx context.Context, activityID string) (*reporting.ActivityReport, error) {
	if activityID == "" {
		return nil, shared.NewDomainError("reporting", "ActivityReport", shared.ErrEmptyValue, "activity id is required")
	}

	stmts, err := h.statements.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	own := make([]*statement.Statement, 0)
	for _, s := range stmts {
		if s.Object.ID == activityID {
			own = append(own, s)
		}
	}

	report := reporting.ActivityReportFor(activityID, own)
	return &report, nil
}

// VerbBreakdown computes verb usage over one timestamp range.
func (h *ReportQueryHandler) VerbBreakdown(ctx context.Context, q ReportRangeQuery) ([]reporting.VerbReport, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	stmts, err := h.statements.FindByTimestampRange(ctx, q.Start, q.End)
	if err != nil {
		return nil, err
	}
	return reporting.VerbBreakdown(stmts), nil
}

// DailyTrends computes per-day aggregates over one timestamp range.
func (h *ReportQueryHandler) DailyTrends(ctx context.Context, q ReportRangeQuery) ([]reporting.DailyActivityReport, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	stmts, err := h.statements.FindByTimestampRange(ctx, q.Start, q.End)
	if err != nil {
		return nil, err
	}
	return reporting.DailyTrends(stmts, h.loc), nil
}

// TopPerformers ranks actors by average score over the whole store.
func (h *ReportQueryHandler) TopPerformers(ctx context.Context, q RankingQuery) ([]reporting.ActorReport, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	stmts, err := h.statements.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return reporting.TopPerformers(stmts, q.limitOrDefault()), nil
}

// MostPopularActivities ranks activities by statement count over the whole
// store.
func (h *ReportQueryHandler) MostPopularActivities(ctx context.Context, q RankingQuery) ([]reporting.ActivityReport, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	stmts, err := h.statements.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return reporting.MostPopularActivities(stmts, q.limitOrDefault()), nil
}

// cachedReport fetches and decodes a cached comprehensive report, or nil.
func (h *ReportQueryHandler) cachedReport(ctx context.Context, key string) *reporting.ComprehensiveReport {
	if h.cache == nil {
		return nil
	}
	raw, err := h.cache.Get(ctx, key)
	if err != nil {
		h.log.Warn("report cache read failed", logger.String("key", key), logger.Err(err))
		return nil
	}
	if raw == nil {
		return nil
	}
	var report reporting.ComprehensiveReport
	if err := json.Unmarshal(raw, &report); err != nil {
		h.log.Warn("report cache entry corrupt", logger.String("key", key), logger.Err(err))
		return nil
	}
	return &report
}

// storeReport writes a comprehensive report to the cache, best effort.
func (h *ReportQueryHandler) storeReport(ctx context.Context, key string, report *reporting.ComprehensiveReport) {
	if h.cache == nil || h.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, key, raw, h.cacheTTL); err != nil {
		h.log.Warn("report cache write failed", logger.String("key", key), logger.Err(err))
	}
}
