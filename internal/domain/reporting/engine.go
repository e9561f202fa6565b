// Package reporting computes statistical reports over sets of canonical
// statements. Every function here is pure and total: it reads a finite,
// fully materialized statement set and resolves empty or partially
// populated input to defined zero values, never an error.
//
// Ordering is deterministic throughout. Rankings sort descending by their
// metric with the group key ascending as tie-break; trend buckets sort
// ascending by date.
package reporting

import (
	"sort"
	"time"

	"github.com/enumverse/lrs-hub/internal/domain/statement"
	"github.com/enumverse/lrs-hub/pkg/timeutil"
)

// topListSize is the ranking depth used by the comprehensive report.
const topListSize = 10

// UniqueActors counts distinct non-empty actor ids in the set.
func UniqueActors(stmts []*statement.Statement) int64 {
	seen := make(map[string]struct{})
	for _, s := range stmts {
		if s.Actor.ID != "" {
			seen[s.Actor.ID] = struct{}{}
		}
	}
	return int64(len(seen))
}

// UniqueActivities counts distinct non-empty object ids in the set.
func UniqueActivities(stmts []*statement.Statement) int64 {
	seen := make(map[string]struct{})
	for _, s := range stmts {
		if s.Object.ID != "" {
			seen[s.Object.ID] = struct{}{}
		}
	}
	return int64(len(seen))
}

// UniqueVerbs counts distinct non-empty verb ids in the set.
func UniqueVerbs(stmts []*statement.Statement) int64 {
	seen := make(map[string]struct{})
	for _, s := range stmts {
		if s.Verb.ID != "" {
			seen[s.Verb.ID] = struct{}{}
		}
	}
	return int64(len(seen))
}

// AverageScore returns the mean of result.score.scaled over statements
// where that path is populated, or 0.0 when none qualify.
func AverageScore(stmts []*statement.Statement) float64 {
	var sum float64
	var n int
	for _, s := range stmts {
		if s.HasScaledScore() {
			sum += s.ScaledScore()
			n++
		}
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}

// CompletionRate returns the percentage of statements whose
// result.completion is true, or 0.0 for an empty set.
func CompletionRate(stmts []*statement.Statement) float64 {
	if len(stmts) == 0 {
		return 0.0
	}
	var completed int64
	for _, s := range stmts {
		if s.IsCompleted() {
			completed++
		}
	}
	return float64(completed) * 100.0 / float64(len(stmts))
}

// SuccessRate returns the percentage of statements whose result.success
// is true, or 0.0 for an empty set.
func SuccessRate(stmts []*statement.Statement) float64 {
	if len(stmts) == 0 {
		return 0.0
	}
	var succeeded int64
	for _, s := range stmts {
		if s.IsSuccessful() {
			succeeded++
		}
	}
	return float64(succeeded) * 100.0 / float64(len(stmts))
}

// VerbBreakdown groups the set by verb id and returns usage rows ordered
// by descending count, verb id ascending among equal counts. The display
// text comes from the first statement seen for each verb (en-US, falling
// back to the verb id). An empty set yields an empty slice.
func VerbBreakdown(stmts []*statement.Statement) []VerbReport {
	total := len(stmts)
	if total == 0 {
		return []VerbReport{}
	}

	counts := make(map[string]int64)
	displays := make(map[string]string)
	for _, s := range stmts {
		if s.Verb.ID == "" {
			continue
		}
		counts[s.Verb.ID]++
		if _, ok := displays[s.Verb.ID]; !ok {
			displays[s.Verb.ID] = s.Verb.DisplayFor(statement.DefaultLanguage)
		}
	}

	reports := make([]VerbReport, 0, len(counts))
	for verbID, count := range counts {
		reports = append(reports, VerbReport{
			VerbID:      verbID,
			VerbDisplay: displays[verbID],
			Count:       count,
			Percentage:  float64(count) * 100.0 / float64(total),
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].Count != reports[j].Count {
			return reports[i].Count > reports[j].Count
		}
		return reports[i].VerbID < reports[j].VerbID
	})

	return reports
}

// ActorReportFor summarizes the statements belonging to one actor.
// The input set is pre-filtered by the caller; an empty set yields a
// report carrying only the actor id and zero counts. Name and email are
// taken from the first statement in the set.
func ActorReportFor(actorID string, stmts []*statement.Statement) ActorReport {
	report := ActorReport{ActorID: actorID}
	if len(stmts) == 0 {
		return report
	}

	report.ActorName = stmts[0].Actor.Name
	report.ActorEmail = stmts[0].Actor.Mbox
	if report.ActorName == "" {
		report.ActorName = actorID
	}
	report.TotalStatements = int64(len(stmts))

	activities := make(map[string]struct{})
	for _, s := range stmts {
		if s.IsCompleted() {
			report.ActivitiesCompleted++
		}
		if s.Object.ID != "" {
			activities[s.Object.ID] = struct{}{}
		}
	}
	report.ActivitiesAttempted = int64(len(activities))
	report.AverageScore = AverageScore(stmts)

	// Completion measured against the actor's own distinct activities,
	// not their statement count.
	if report.ActivitiesAttempted > 0 {
		report.CompletionRate = float64(report.ActivitiesCompleted) * 100.0 / float64(report.ActivitiesAttempted)
	}

	report.FirstActivity, report.LastActivity = timestampSpan(stmts)
	return report
}

// ActivityReportFor summarizes the statements recorded against one
// activity. The input set is pre-filtered by the caller; an empty set
// yields a report carrying only the activity id and zero counts.
func ActivityReportFor(activityID string, stmts []*statement.Statement) ActivityReport {
	report := ActivityReport{ActivityID: activityID}
	if len(stmts) == 0 {
		return report
	}

	report.ActivityName = activityID
	for _, s := range stmts {
		if s.Object.Definition != nil && len(s.Object.Definition.Name) > 0 {
			report.ActivityName = s.Object.Definition.NameFor(statement.DefaultLanguage, activityID)
			break
		}
	}

	report.TotalStatements = int64(len(stmts))
	for _, s := range stmts {
		if s.IsCompleted() {
			report.CompletedCount++
		}
		if s.IsSuccessful() {
			report.SuccessCount++
		}
	}
	report.AverageScore = AverageScore(stmts)
	report.CompletionRate = float64(report.CompletedCount) * 100.0 / float64(report.TotalStatements)
	report.SuccessRate = float64(report.SuccessCount) * 100.0 / float64(report.TotalStatements)
	report.FirstAttempt, report.LastAttempt = timestampSpan(stmts)
	return report
}

// TopPerformers groups the set by actor and returns per-actor reports
// sorted by descending average score, actor id ascending as tie-break,
// truncated to limit. A non-positive limit yields an empty slice.
func TopPerformers(stmts []*statement.Statement, limit int) []ActorReport {
	if limit <= 0 {
		return []ActorReport{}
	}

	groups := groupByActor(stmts)
	reports := make([]ActorReport, 0, len(groups))
	for actorID, group := range groups {
		reports = append(reports, ActorReportFor(actorID, group))
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].AverageScore != reports[j].AverageScore {
			return reports[i].AverageScore > reports[j].AverageScore
		}
		return reports[i].ActorID < reports[j].ActorID
	})

	if len(reports) > limit {
		reports = reports[:limit]
	}
	return reports
}

// MostPopularActivities groups the set by activity and returns per-activity
// reports sorted by descending statement count, activity id ascending as
// tie-break, truncated to limit. A non-positive limit yields an empty
// slice.
func MostPopularActivities(stmts []*statement.Statement, limit int) []ActivityReport {
	if limit <= 0 {
		return []ActivityReport{}
	}

	groups := groupByActivity(stmts)
	reports := make([]ActivityReport, 0, len(groups))
	for activityID, group := range groups {
		reports = append(reports, ActivityReportFor(activityID, group))
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].TotalStatements != reports[j].TotalStatements {
			return reports[i].TotalStatements > reports[j].TotalStatements
		}
		return reports[i].ActivityID < reports[j].ActivityID
	})

	if len(reports) > limit {
		reports = reports[:limit]
	}
	return reports
}

// DailyTrends buckets the set by the calendar date of the event timestamp
// in loc (UTC when nil) and returns per-day aggregates sorted ascending by
// date. Statements with a zero event timestamp are excluded from the trend
// rather than guessed into a bucket.
func DailyTrends(stmts []*statement.Statement, loc *time.Location) []DailyActivityReport {
	buckets := make(map[string][]*statement.Statement)
	for _, s := range stmts {
		if s.Timestamp.IsZero() {
			continue
		}
		key := timeutil.DateKey(s.Timestamp, loc)
		buckets[key] = append(buckets[key], s)
	}

	reports := make([]DailyActivityReport, 0, len(buckets))
	for date, group := range buckets {
		reports = append(reports, DailyActivityReport{
			Date:             date,
			TotalStatements:  int64(len(group)),
			UniqueActors:     UniqueActors(group),
			UniqueActivities: UniqueActivities(group),
			Completions:      completionCount(group),
			AverageScore:     AverageScore(group),
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Date < reports[j].Date
	})

	return reports
}

// Comprehensive bundles every aggregate view over one statement set.
// The start and end parameters echo the query range; now becomes the
// generation timestamp. An empty set produces zero values and empty
// slices for every derived field.
func Comprehensive(stmts []*statement.Statement, start, end, now time.Time, loc *time.Location) ComprehensiveReport {
	report := ComprehensiveReport{
		GeneratedAt:           now,
		StartDate:             start,
		EndDate:               end,
		VerbBreakdown:         []VerbReport{},
		TopPerformers:         []ActorReport{},
		MostPopularActivities: []ActivityReport{},
		DailyTrends:           []DailyActivityReport{},
	}
	if len(stmts) == 0 {
		return report
	}

	report.TotalStatements = int64(len(stmts))
	report.TotalActors = UniqueActors(stmts)
	report.TotalActivities = UniqueActivities(stmts)
	report.TotalVerbs = UniqueVerbs(stmts)
	report.OverallAverageScore = AverageScore(stmts)
	report.OverallCompletionRate = CompletionRate(stmts)
	report.OverallSuccessRate = SuccessRate(stmts)
	report.VerbBreakdown = VerbBreakdown(stmts)
	report.TopPerformers = TopPerformers(stmts, topListSize)
	report.MostPopularActivities = MostPopularActivities(stmts, topListSize)
	report.DailyTrends = DailyTrends(stmts, loc)
	return report
}

// --- grouping helpers ---

func groupByActor(stmts []*statement.Statement) map[string][]*statement.Statement {
	groups := make(map[string][]*statement.Statement)
	for _, s := range stmts {
		if s.Actor.ID == "" {
			continue
		}
		groups[s.Actor.ID] = append(groups[s.Actor.ID], s)
	}
	return groups
}

func groupByActivity(stmts []*statement.Statement) map[string][]*statement.Statement {
	groups := make(map[string][]*statement.Statement)
	for _, s := range stmts {
		if s.Object.ID == "" {
			continue
		}
		groups[s.Object.ID] = append(groups[s.Object.ID], s)
	}
	return groups
}

func completionCount(stmts []*statement.Statement) int64 {
	var n int64
	for _, s := range stmts {
		if s.IsCompleted() {
			n++
		}
	}
	return n
}

// timestampSpan returns the earliest and latest event timestamps in the
// set, skipping zero timestamps. Both are nil when no statement carries a
// timestamp.
func timestampSpan(stmts []*statement.Statement) (first, last *time.Time) {
	for _, s := range stmts {
		if s.Timestamp.IsZero() {
			continue
		}
		t := s.Timestamp
		if first == nil || t.Before(*first) {
			first = &t
		}
		if last == nil || t.After(*last) {
			last = &t
		}
	}
	return first, last
}
