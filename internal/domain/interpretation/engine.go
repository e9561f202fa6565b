// Package interpretation converts simplified, loosely-structured learning
// events into canonical statement drafts. The engine is a pure function of
// its input: no I/O, no shared state, and it never fails on unknown
// actions or malformed optional fields - it degrades to best-effort
// defaults instead.
package interpretation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/enumverse/lrs-hub/internal/domain/statement"
)

// Namespaces holds the URI prefixes used when synthesizing identifiers.
// Injected at construction so deployments can rebrand without code changes.
type Namespaces struct {
	Verb         string
	Activity     string
	ActivityType string
	Extension    string
}

// DefaultNamespaces returns the standard xAPI/ADL prefixes.
func DefaultNamespaces() Namespaces {
	return Namespaces{
		Verb:         "http://adlnet.gov/expapi/verbs/",
		Activity:     "http://example.com/activities/",
		ActivityType: "http://adlnet.gov/expapi/activities/",
		Extension:    "http://example.com/extensions/",
	}
}

// LearningEvent is the simplified, business-friendly input format.
// Everything except the learner / action / activity identity trio is
// optional.
type LearningEvent struct {
	// Who did it?
	LearnerID    string `json:"learnerId,omitempty"`
	LearnerName  string `json:"learnerName,omitempty"`
	LearnerEmail string `json:"learnerEmail,omitempty"`

	// What did they do?
	Action       string `json:"action,omitempty"` // e.g. "completed", "started", "viewed"
	ActivityID   string `json:"activityId,omitempty"`
	ActivityName string `json:"activityName,omitempty"`
	ActivityType string `json:"activityType,omitempty"` // e.g. "course", "module", "quiz"

	// How did they do?
	Score     *float64 `json:"score,omitempty"` // 0-100 scale
	Passed    *bool    `json:"passed,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
	Duration  string   `json:"duration,omitempty"` // "PT1H30M" or seconds as "5400"

	// Context
	Platform     string `json:"platform,omitempty"`
	CourseID     string `json:"courseId,omitempty"`
	CourseName   string `json:"courseName,omitempty"`
	InstructorID string `json:"instructorId,omitempty"`
	SessionID    string `json:"sessionId,omitempty"`

	// Additional metadata, copied into context extensions verbatim.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// verbMapping pairs a canonical verb token with its display text.
type verbMapping struct {
	token   string
	display string
}

// verbSynonyms is the fixed action-to-verb table. Lookup happens on the
// lower-cased action; anything absent from the table maps to itself.
var verbSynonyms = map[string]verbMapping{
	"completed": {"completed", "completed"},
	"finished":  {"completed", "completed"},
	"started":   {"initialized", "started"},
	"began":     {"initialized", "started"},
	"initiated": {"initialized", "started"},
	"passed":    {"passed", "passed"},
	"failed":    {"failed", "failed"},
	"viewed":    {"viewed", "viewed"},
	"watched":   {"viewed", "viewed"},
	"attempted": {"attempted", "attempted"},
	"answered":  {"answered", "answered"},
	"scored":    {"scored", "scored"},
}

// sessionExtensionKey is the reserved extension key under which the
// session id is recorded, in addition to context.registration.
const sessionExtensionKey = "sessionId"

// Engine interprets learning events against a configured namespace set.
type Engine struct {
	ns Namespaces

	// newID is swappable for deterministic tests.
	newID func() string
}

// NewEngine creates an interpretation engine. Zero-valued namespace fields
// fall back to the defaults.
func NewEngine(ns Namespaces) *Engine {
	def := DefaultNamespaces()
	if ns.Verb == "" {
		ns.Verb = def.Verb
	}
	if ns.Activity == "" {
		ns.Activity = def.Activity
	}
	if ns.ActivityType == "" {
		ns.ActivityType = def.ActivityType
	}
	if ns.Extension == "" {
		ns.Extension = def.Extension
	}
	return &Engine{ns: ns, newID: uuid.NewString}
}

// Validate reports whether the event carries the minimum required fields:
// some learner identity, a non-blank action, and some activity identity.
// All other fields may be absent.
func (e *Engine) Validate(ev *LearningEvent) bool {
	if ev == nil {
		return false
	}
	if ev.LearnerName == "" && ev.LearnerID == "" {
		return false
	}
	if strings.TrimSpace(ev.Action) == "" {
		return false
	}
	if ev.ActivityName == "" && ev.ActivityID == "" {
		return false
	}
	return true
}

// Interpret converts a learning event into a canonical statement draft.
// It is total: any event, validated or not, produces a draft.
func (e *Engine) Interpret(ev *LearningEvent) statement.Draft {
	return statement.Draft{
		Actor:   e.buildActor(ev),
		Verb:    e.buildVerb(ev.Action),
		Object:  e.buildActivity(ev),
		Result:  e.buildResult(ev),
		Context: e.buildContext(ev),
	}
}

func (e *Engine) buildActor(ev *LearningEvent) statement.Actor {
	id := ev.LearnerID
	if id == "" {
		id = e.newID()
	}

	mbox := ""
	if ev.LearnerEmail != "" {
		mbox = "mailto:" + ev.LearnerEmail
	}

	return statement.Actor{
		ID:         id,
		Name:       ev.LearnerName,
		Mbox:       mbox,
		ObjectType: statement.ActorAgent,
	}
}

func (e *Engine) buildVerb(action string) statement.Verb {
	lowered := strings.ToLower(action)

	m, ok := verbSynonyms[lowered]
	if !ok {
		// Unknown actions map to themselves; the table is total.
		m = verbMapping{token: lowered, display: lowered}
	}

	return statement.Verb{
		ID:      e.ns.Verb + m.token,
		Display: map[string]string{statement.DefaultLanguage: m.display},
	}
}

func (e *Engine) buildActivity(ev *LearningEvent) statement.Object {
	id := ev.ActivityID
	if id == "" {
		id = e.ns.Activity + e.newID()
	}

	name := ev.ActivityName
	if name == "" {
		name = "Learning Activity"
	}

	activityType := "course"
	if ev.ActivityType != "" {
		activityType = ev.ActivityType
	}

	return statement.Object{
		ID:         id,
		ObjectType: statement.ObjectActivity,
		Definition: &statement.Definition{
			Name: map[string]string{statement.DefaultLanguage: name},
			Type: e.ns.ActivityType + activityType,
		},
	}
}

func (e *Engine) buildResult(ev *LearningEvent) *statement.Result {
	// A result exists only when outcome data was supplied; otherwise the
	// statement carries no result object at all.
	if ev.Score == nil && ev.Passed == nil && ev.Completed == nil && ev.Duration == "" {
		return nil
	}

	var score *statement.Score
	if ev.Score != nil {
		scaled := *ev.Score / 100.0
		raw := *ev.Score
		min := 0.0
		max := 100.0
		score = &statement.Score{
			Scaled: &scaled,
			Raw:    &raw,
			Min:    &min,
			Max:    &max,
		}
	}

	return &statement.Result{
		Score:      score,
		Success:    ev.Passed,
		Completion: ev.Completed,
		Duration:   NormalizeDuration(ev.Duration),
	}
}

func (e *Engine) buildContext(ev *LearningEvent) *statement.Context {
	extensions := make(map[string]interface{})

	for key, value := range ev.Metadata {
		extensions[e.ns.Extension+key] = value
	}

	if ev.SessionID != "" {
		extensions[e.ns.Extension+sessionExtensionKey] = ev.SessionID
	}

	ctx := &statement.Context{
		Platform:     ev.Platform,
		InstructorID: ev.InstructorID,
		Registration: ev.SessionID,
	}
	if len(extensions) > 0 {
		ctx.Extensions = extensions
	}

	// An all-empty context is omitted rather than emitted empty.
	if ctx.IsEmpty() {
		return nil
	}
	return ctx
}

// NormalizeDuration converts a free-form duration string to ISO-8601.
// Strings already starting with "P" pass through unchanged; otherwise the
// value is parsed as an integer count of seconds. Normalization is
// best-effort: unparseable input passes through unchanged.
func NormalizeDuration(duration string) string {
	if duration == "" {
		return ""
	}

	if strings.HasPrefix(duration, "P") {
		return duration
	}

	seconds, err := strconv.ParseInt(duration, 10, 64)
	if err != nil {
		return duration
	}

	return formatISODuration(seconds)
}

// formatISODuration renders a second count as an ISO-8601 duration,
// e.g. 150 -> "PT2M30S", 5400 -> "PT1H30M".
func formatISODuration(seconds int64) string {
	neg := ""
	if seconds < 0 {
		neg = "-"
		seconds = -seconds
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	var b strings.Builder
	b.WriteString(neg)
	b.WriteString("PT")
	if hours > 0 {
		fmt.Fprintf(&b, "%dH", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dM", minutes)
	}
	if secs > 0 || (hours == 0 && minutes == 0) {
		fmt.Fprintf(&b, "%dS", secs)
	}
	return b.String()
}
