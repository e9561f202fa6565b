package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enumverse/lrs-hub/internal/domain/statement"
)

type stmtSpec struct {
	actorID    string
	actorName  string
	verbID     string
	activityID string
	timestamp  time.Time
	scaled     *float64
	completed  *bool
	success    *bool
}

func buildStatement(spec stmtSpec) *statement.Statement {
	s := &statement.Statement{
		ID:        spec.actorID + "/" + spec.verbID + "/" + spec.activityID,
		Actor:     statement.Actor{ID: spec.actorID, Name: spec.actorName},
		Verb:      statement.Verb{ID: spec.verbID},
		Object:    statement.Object{ID: spec.activityID},
		Timestamp: spec.timestamp,
	}
	if spec.scaled != nil || spec.completed != nil || spec.success != nil {
		s.Result = &statement.Result{
			Completion: spec.completed,
			Success:    spec.success,
		}
		if spec.scaled != nil {
			s.Result.Score = &statement.Score{Scaled: spec.scaled}
		}
	}
	return s
}

func scaled(v float64) *float64 { return &v }
func flag(v bool) *bool         { return &v }

var day = time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

func TestUniqueCounts(t *testing.T) {
	stmts := []*statement.Statement{
		buildStatement(stmtSpec{actorID: "u1", verbID: "v1", activityID: "a1"}),
		buildStatement(stmtSpec{actorID: "u1", verbID: "v2", activityID: "a2"}),
		buildStatement(stmtSpec{actorID: "u2", verbID: "v1", activityID: "a1"}),
		buildStatement(stmtSpec{verbID: "v1", activityID: "a1"}), // empty actor id not counted
	}

	assert.Equal(t, int64(2), UniqueActors(stmts))
	assert.Equal(t, int64(2), UniqueActivities(stmts))
	assert.Equal(t, int64(2), UniqueVerbs(stmts))
}

func TestAverageScore(t *testing.T) {
	assert.Equal(t, 0.0, AverageScore(nil))

	stmts := []*statement.Statement{
		buildStatement(stmtSpec{actorID: "u1", verbID: "v", activityID: "a", scaled: scaled(0.8)}),
		buildStatement(stmtSpec{actorID: "u2", verbID: "v", activityID: "a", scaled: scaled(0.6)}),
		buildStatement(stmtSpec{actorID: "u3", verbID: "v", activityID: "a"}), // unscored, excluded
	}

	assert.InDelta(t, 0.7, AverageScore(stmts), 1e-9)
}

func TestCompletionAndSuccessRates(t *testing.T) {
	assert.Equal(t, 0.0, CompletionRate(nil))
	assert.Equal(t, 0.0, SuccessRate(nil))

	stmts := []*statement.Statement{
		buildStatement(stmtSpec{actorID: "u1", verbID: "v", activityID: "a", completed: flag(true), success: flag(true)}),
		buildStatement(stmtSpec{actorID: "u2", verbID: "v", activityID: "a", completed: flag(false)}),
		buildStatement(stmtSpec{actorID: "u3", verbID: "v", activityID: "a"}),
		buildStatement(stmtSpec{actorID: "u4", verbID: "v", activityID: "a", completed: flag(true)}),
	}

	assert.Equal(t, 50.0, CompletionRate(stmts))
	assert.Equal(t, 25.0, SuccessRate(stmts))
}

func TestVerbBreakdown(t *testing.T) {
	assert.Empty(t, VerbBreakdown(nil))

	stmts := []*statement.Statement{
		buildStatement(stmtSpec{actorID: "u1", verbID: "v/completed", activityID: "a"}),
		buildStatement(stmtSpec{actorID: "u1", verbID: "v/completed", activityID: "a"}),
		buildStatement(stmtSpec{actorID: "u1", verbID: "v/viewed", activityID: "a"}),
		buildStatement(stmtSpec{actorID: "u1", verbID: "v/attempted", activityID: "a"}),
	}

	reports := VerbBreakdown(stmts)
	require.Len(t, reports, 3)

	assert.Equal(t, "v/completed", reports[0].VerbID)
	assert.Equal(t, int64(2), reports[0].Count)
	assert.Equal(t, 50.0, reports[0].Percentage)

	// Equal counts break ties by verb id ascending.
	assert.Equal(t, "v/attempted", reports[1].VerbID)
	assert.Equal(t, "v/viewed", reports[2].VerbID)
}

func TestActorReportFor(t *testing.T) {
	empty := ActorReportFor("u1", nil)
	assert.Equal(t, "u1", empty.ActorID)
	assert.Equal(t, int64(0), empty.TotalStatements)
	assert.Equal(t, 0.0, empty.AverageScore)

	stmts := []*statement.Statement{
		buildStatement(stmtSpec{actorID: "u1", actorName: "Ama", verbID: "v", activityID: "a1", timestamp: day, completed: flag(true), scaled: scaled(0.9)}),
		buildStatement(stmtSpec{actorID: "u1", actorName: "Ama", verbID: "v", activityID: "a2", timestamp: day.Add(time.Hour), scaled: scaled(0.7)}),
		buildStatement(stmtSpec{actorID: "u1", actorName: "Ama", verbID: "v", activityID: "a1", timestamp: day.Add(2 * time.Hour)}),
	}

	report := ActorReportFor("u1", stmts)
	assert.Equal(t, "Ama", report.ActorName)
	assert.Equal(t, int64(3), report.TotalStatements)
	assert.Equal(t, int64(2), report.ActivitiesAttempted)
	assert.Equal(t, int64(1), report.ActivitiesCompleted)
	assert.InDelta(t, 0.8, report.AverageScore, 1e-9)

	// Completion measured against distinct activities, not statements.
	assert.Equal(t, 50.0, report.CompletionRate)

	require.NotNil(t, report.FirstActivity)
	require.NotNil(t, report.LastActivity)
	assert.Equal(t, day, *report.FirstActivity)
	assert.Equal(t, day.Add(2*time.Hour), *report.LastActivity)
}

func TestActivityReportFor(t *testing.T) {
	empty := ActivityReportFor("a1", nil)
	assert.Equal(t, "a1", empty.ActivityID)
	assert.Equal(t, int64(0), empty.TotalStatements)

	stmts := []*statement.Statement{
		buildStatement(stmtSpec{actorID: "u1", verbID: "v", activityID: "a1", completed: flag(true), success: flag(true), scaled: scaled(1.0)}),
		buildStatement(stmtSpec{actorID: "u2", verbID: "v", activityID: "a1", completed: flag(true), scaled: scaled(0.5)}),
		buildStatement(stmtSpec{actorID: "u3", verbID: "v", activityID: "a1"}),
		buildStatement(stmtSpec{actorID: "u4", verbID: "v", activityID: "a1"}),
	}
	stmts[0].Object.Definition = &statement.Definition{
		Name: map[string]string{statement.DefaultLanguage: "Intro to Algebra"},
	}

	report := ActivityReportFor("a1", stmts)
	assert.Equal(t, "Intro to Algebra", report.ActivityName)
	assert.Equal(t, int64(4), report.TotalStatements)
	assert.Equal(t, int64(2), report.CompletedCount)
	assert.Equal(t, int64(1), report.SuccessCount)
	assert.InDelta(t, 0.75, report.AverageScore, 1e-9)
	assert.Equal(t, 50.0, report.CompletionRate)
	assert.Equal(t, 25.0, report.SuccessRate)
}

func TestTopPerformers(t *testing.T) {
	assert.Empty(t, TopPerformers(nil, 10))
	assert.Empty(t, TopPerformers(nil, 0))

	stmts := []*statement.Statement{
		buildStatement(stmtSpec{actorID: "u-b", verbID: "v", activityID: "a", scaled: scaled(0.9)}),
		buildStatement(stmtSpec{actorID: "u-a", verbID: "v", activityID: "a", scaled: scaled(0.9)}),
		buildStatement(stmtSpec{actorID: "u-c", verbID: "v", activityID: "a", scaled: scaled(0.5)}),
	}

	reports := TopPerformers(stmts, 10)
	require.Len(t, reports, 3)

	// Equal averages break ties by actor id ascending.
	assert.Equal(t, "u-a", reports[0].ActorID)
	assert.Equal(t, "u-b", reports[1].ActorID)
	assert.Equal(t, "u-c", reports[2].ActorID)

	truncated := TopPerformers(stmts, 2)
	require.Len(t, truncated, 2)
	assert.Equal(t, "u-a", truncated[0].ActorID)
}

func TestMostPopularActivities(t *testing.T) {
	stmts := []*statement.Statement{
		buildStatement(stmtSpec{actorID: "u1", verbID: "v", activityID: "a-z"}),
		buildStatement(stmtSpec{actorID: "u2", verbID: "v", activityID: "a-z"}),
		buildStatement(stmtSpec{actorID: "u1", verbID: "v", activityID: "a-m"}),
		buildStatement(stmtSpec{actorID: "u1", verbID: "v", activityID: "a-a"}),
	}

	reports := MostPopularActivities(stmts, 10)
	require.Len(t, reports, 3)

	assert.Equal(t, "a-z", reports[0].ActivityID)
	assert.Equal(t, int64(2), reports[0].TotalStatements)

	// Equal counts break ties by activity id ascending.
	assert.Equal(t, "a-a", reports[1].ActivityID)
	assert.Equal(t, "a-m", reports[2].ActivityID)

	assert.Len(t, MostPopularActivities(stmts, 1), 1)
	assert.Empty(t, MostPopularActivities(stmts, -1))
}

func TestDailyTrends(t *testing.T) {
	dayTwo := day.AddDate(0, 0, 1)

	stmts := []*statement.Statement{
		buildStatement(stmtSpec{actorID: "u1", verbID: "v", activityID: "a1", timestamp: day, completed: flag(true), scaled: scaled(0.8)}),
		buildStatement(stmtSpec{actorID: "u2", verbID: "v", activityID: "a1", timestamp: day.Add(3 * time.Hour)}),
		buildStatement(stmtSpec{actorID: "u1", verbID: "v", activityID: "a2", timestamp: dayTwo}),
		buildStatement(stmtSpec{actorID: "u1", verbID: "v", activityID: "a2"}), // zero timestamp excluded
	}

	trends := DailyTrends(stmts, time.UTC)
	require.Len(t, trends, 2)

	assert.Equal(t, "2026-08-28", trends[0].Date)
	assert.Equal(t, int64(2), trends[0].TotalStatements)
	assert.Equal(t, int64(2), trends[0].UniqueActors)
	assert.Equal(t, int64(1), trends[0].UniqueActivities)
	assert.Equal(t, int64(1), trends[0].Completions)
	assert.InDelta(t, 0.8, trends[0].AverageScore, 1e-9)

	assert.Equal(t, "2026-08-29", trends[1].Date)
	assert.Equal(t, int64(1), trends[1].TotalStatements)
}

func TestDailyTrends_LocationBuckets(t *testing.T) {
	// 23:30 UTC on the 28th falls on the 29th in a UTC+2 location.
	loc := time.FixedZone("UTC+2", 2*3600)
	late := time.Date(2026, 8, 28, 23, 30, 0, 0, time.UTC)

	trends := DailyTrends([]*statement.Statement{
		buildStatement(stmtSpec{actorID: "u1", verbID: "v", activityID: "a", timestamp: late}),
	}, loc)

	require.Len(t, trends, 1)
	assert.Equal(t, "2026-08-29", trends[0].Date)
}

func TestComprehensive(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	start := day.AddDate(0, 0, -7)
	end := day

	empty := Comprehensive(nil, start, end, now, time.UTC)
	assert.Equal(t, now, empty.GeneratedAt)
	assert.Equal(t, start, empty.StartDate)
	assert.Equal(t, end, empty.EndDate)
	assert.Equal(t, int64(0), empty.TotalStatements)
	assert.Equal(t, 0.0, empty.OverallAverageScore)
	assert.NotNil(t, empty.VerbBreakdown)
	assert.Empty(t, empty.VerbBreakdown)
	assert.NotNil(t, empty.DailyTrends)

	stmts := []*statement.Statement{
		buildStatement(stmtSpec{actorID: "u1", verbID: "v1", activityID: "a1", timestamp: day, completed: flag(true), success: flag(true), scaled: scaled(0.9)}),
		buildStatement(stmtSpec{actorID: "u2", verbID: "v2", activityID: "a2", timestamp: day, scaled: scaled(0.5)}),
	}

	report := Comprehensive(stmts, start, end, now, time.UTC)
	assert.Equal(t, int64(2), report.TotalStatements)
	assert.Equal(t, int64(2), report.TotalActors)
	assert.Equal(t, int64(2), report.TotalActivities)
	assert.Equal(t, int64(2), report.TotalVerbs)
	assert.InDelta(t, 0.7, report.OverallAverageScore, 1e-9)
	assert.Equal(t, 50.0, report.OverallCompletionRate)
	assert.Equal(t, 50.0, report.OverallSuccessRate)
	assert.Len(t, report.VerbBreakdown, 2)
	assert.Len(t, report.TopPerformers, 2)
	assert.Len(t, report.MostPopularActivities, 2)
	assert.Len(t, report.DailyTrends, 1)
}
