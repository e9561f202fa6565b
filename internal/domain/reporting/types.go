// Package reporting computes statistical reports over sets of canonical
// statements.
package reporting

import (
	"time"
)

// VerbReport is one row of a verb usage breakdown.
type VerbReport struct {
	// VerbID - the verb identifier URI.
	VerbID string `json:"verb_id"`

	// VerbDisplay - en-US display text, falling back to the verb id.
	VerbDisplay string `json:"verb_display"`

	// Count - number of statements using this verb.
	Count int64 `json:"count"`

	// Percentage - share of the statement set, 0-100.
	Percentage float64 `json:"percentage"`
}

// ActorReport summarizes one actor's recorded activity.
type ActorReport struct {
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name,omitempty"`

	// ActorEmail - mailbox URI of a representative statement, if any.
	ActorEmail string `json:"actor_email,omitempty"`

	TotalStatements int64 `json:"total_statements"`

	// ActivitiesCompleted - statements with completion == true.
	ActivitiesCompleted int64 `json:"activities_completed"`

	// ActivitiesAttempted - distinct activity ids this actor touched.
	ActivitiesAttempted int64 `json:"activities_attempted"`

	// AverageScore - mean scaled score over scored statements; 0 when none.
	AverageScore float64 `json:"average_score"`

	// CompletionRate - completions against the actor's own distinct
	// activities attempted, not total statements.
	CompletionRate float64 `json:"completion_rate"`

	FirstActivity *time.Time `json:"first_activity,omitempty"`
	LastActivity  *time.Time `json:"last_activity,omitempty"`
}

// ActivityReport summarizes one activity's recorded statements.
type ActivityReport struct {
	ActivityID   string `json:"activity_id"`
	ActivityName string `json:"activity_name,omitempty"`

	TotalStatements int64 `json:"total_statements"`
	CompletedCount  int64 `json:"completed_count"`
	SuccessCount    int64 `json:"success_count"`

	AverageScore float64 `json:"average_score"`

	// CompletionRate / SuccessRate - percentages against this activity's
	// own statement count.
	CompletionRate float64 `json:"completion_rate"`
	SuccessRate    float64 `json:"success_rate"`

	FirstAttempt *time.Time `json:"first_attempt,omitempty"`
	LastAttempt  *time.Time `json:"last_attempt,omitempty"`
}

// DailyActivityReport is one calendar-date bucket of the daily trend.
type DailyActivityReport struct {
	// Date - calendar date of the bucket in ISO form ("2026-08-28").
	Date string `json:"date"`

	TotalStatements  int64   `json:"total_statements"`
	UniqueActors     int64   `json:"unique_actors"`
	UniqueActivities int64   `json:"unique_activities"`
	Completions      int64   `json:"completions"`
	AverageScore     float64 `json:"average_score"`
}

// ComprehensiveReport bundles every aggregate view over one statement set.
type ComprehensiveReport struct {
	GeneratedAt time.Time `json:"report_generated_at"`
	StartDate   time.Time `json:"report_start_date"`
	EndDate     time.Time `json:"report_end_date"`

	TotalStatements int64 `json:"total_statements"`
	TotalActors     int64 `json:"total_actors"`
	TotalActivities int64 `json:"total_activities"`
	TotalVerbs      int64 `json:"total_verbs"`

	OverallAverageScore   float64 `json:"overall_average_score"`
	OverallCompletionRate float64 `json:"overall_completion_rate"`
	OverallSuccessRate    float64 `json:"overall_success_rate"`

	VerbBreakdown         []VerbReport          `json:"verb_breakdown"`
	TopPerformers         []ActorReport         `json:"top_performers"`
	MostPopularActivities []ActivityReport      `json:"most_popular_activities"`
	DailyTrends           []DailyActivityReport `json:"daily_trends"`
}
