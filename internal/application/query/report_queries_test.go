package query

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enumverse/lrs-hub/internal/domain/shared"
	"github.com/enumverse/lrs-hub/internal/domain/statement"
	"github.com/enumverse/lrs-hub/internal/infrastructure/persistence/memory"
)

// fakeCache is an in-memory query.Cache for tests.
type fakeCache struct {
	entries map[string][]byte
	sets    int
	fail    bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.fail {
		return nil, errors.New("cache down")
	}
	return c.entries[key], nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if c.fail {
		return errors.New("cache down")
	}
	c.sets++
	c.entries[key] = value
	return nil
}

var reportDay = time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

func seedStatements(t *testing.T, repo *memory.StatementRepository, n int) {
	t.Helper()
	// Offset ids by the current statement count so repeated seeding adds
	// new statements instead of colliding with immutable existing ids.
	existing, err := repo.Count(context.Background())
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		scaled := float64(i%10) / 10.0
		_, err := repo.Save(context.Background(), &statement.Statement{
			ID:        fmt.Sprintf("s%03d", int(existing)+i),
			Actor:     statement.Actor{ID: fmt.Sprintf("u%03d", i), Name: fmt.Sprintf("User %03d", i)},
			Verb:      statement.Verb{ID: "http://adlnet.gov/expapi/verbs/completed"},
			Object:    statement.Object{ID: fmt.Sprintf("a%03d", i%4)},
			Timestamp: reportDay.Add(time.Duration(i) * time.Minute),
			Result:    &statement.Result{Score: &statement.Score{Scaled: &scaled}},
		})
		require.NoError(t, err)
	}
}

func TestReportRangeQuery_Validate(t *testing.T) {
	assert.ErrorIs(t, ReportRangeQuery{}.Validate(), shared.ErrInvalidInput)
	assert.ErrorIs(t, ReportRangeQuery{Start: reportDay}.Validate(), shared.ErrInvalidInput)
	assert.ErrorIs(t, ReportRangeQuery{Start: reportDay, End: reportDay.Add(-time.Hour)}.Validate(), shared.ErrInvalidDateRange)
	assert.NoError(t, ReportRangeQuery{Start: reportDay, End: reportDay}.Validate())
}

func TestRankingQuery_Validate(t *testing.T) {
	assert.ErrorIs(t, RankingQuery{Limit: -1}.Validate(), shared.ErrInvalidLimit)
	assert.ErrorIs(t, RankingQuery{Limit: 101}.Validate(), shared.ErrInvalidLimit)
	assert.NoError(t, RankingQuery{}.Validate())
	assert.NoError(t, RankingQuery{Limit: 100}.Validate())
}

func TestComprehensive_CachesResult(t *testing.T) {
	repo := memory.NewStatementRepository()
	seedStatements(t, repo, 5)
	cache := newFakeCache()

	h := NewReportQueryHandler(repo, cache, time.Minute, time.UTC, nil)
	ctx := context.Background()
	q := ReportRangeQuery{Start: reportDay.Add(-time.Hour), End: reportDay.Add(time.Hour)}

	first, err := h.Comprehensive(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int64(5), first.TotalStatements)
	assert.Equal(t, 1, cache.sets)

	// New writes are invisible until the cached entry expires.
	seedStatements(t, repo, 5)
	second, err := h.Comprehensive(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int64(5), second.TotalStatements)
	assert.Equal(t, 1, cache.sets)
}

func TestComprehensive_DegradesWhenCacheFails(t *testing.T) {
	repo := memory.NewStatementRepository()
	seedStatements(t, repo, 3)
	cache := newFakeCache()
	cache.fail = true

	h := NewReportQueryHandler(repo, cache, time.Minute, time.UTC, nil)

	report, err := h.Comprehensive(context.Background(), ReportRangeQuery{
		Start: reportDay.Add(-time.Hour),
		End:   reportDay.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.TotalStatements)
}

func TestComprehensive_NoCacheConfigured(t *testing.T) {
	repo := memory.NewStatementRepository()
	seedStatements(t, repo, 2)

	h := NewReportQueryHandler(repo, nil, 0, nil, nil)

	report, err := h.Comprehensive(context.Background(), ReportRangeQuery{
		Start: reportDay.Add(-time.Hour),
		End:   reportDay.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.TotalStatements)
}

func TestTopPerformers_DefaultLimit(t *testing.T) {
	repo := memory.NewStatementRepository()
	seedStatements(t, repo, 15)

	h := NewReportQueryHandler(repo, nil, 0, nil, nil)

	performers, err := h.TopPerformers(context.Background(), RankingQuery{})
	require.NoError(t, err)
	assert.Len(t, performers, 10)

	three, err := h.TopPerformers(context.Background(), RankingQuery{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, three, 3)
}

func TestMostPopularActivities(t *testing.T) {
	repo := memory.NewStatementRepository()
	seedStatements(t, repo, 8)

	h := NewReportQueryHandler(repo, nil, 0, nil, nil)

	activities, err := h.MostPopularActivities(context.Background(), RankingQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, "a000", activities[0].ActivityID)
	assert.Equal(t, int64(2), activities[0].TotalStatements)
}

func TestActorReport_RequiresID(t *testing.T) {
	h := NewReportQueryHandler(memory.NewStatementRepository(), nil, 0, nil, nil)

	_, err := h.ActorReport(context.Background(), "")
	assert.ErrorIs(t, err, shared.ErrEmptyValue)

	_, err = h.ActivityReport(context.Background(), "")
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}

func TestActorReport_FiltersToOneActor(t *testing.T) {
	repo := memory.NewStatementRepository()
	seedStatements(t, repo, 6)

	h := NewReportQueryHandler(repo, nil, 0, nil, nil)

	report, err := h.ActorReport(context.Background(), "u002")
	require.NoError(t, err)
	assert.Equal(t, "u002", report.ActorID)
	assert.Equal(t, int64(1), report.TotalStatements)
}

func TestDailyTrends_Range(t *testing.T) {
	repo := memory.NewStatementRepository()
	seedStatements(t, repo, 4)

	h := NewReportQueryHandler(repo, nil, 0, time.UTC, nil)

	trends, err := h.DailyTrends(context.Background(), ReportRangeQuery{
		Start: reportDay.Add(-time.Hour),
		End:   reportDay.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, trends, 1)
	assert.Equal(t, "2026-08-28", trends[0].Date)
	assert.Equal(t, int64(4), trends[0].TotalStatements)
}
