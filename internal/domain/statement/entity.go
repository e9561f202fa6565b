// Package statement contains the canonical xAPI-style statement model:
// an immutable record of "actor performed verb on object", optionally
// carrying a result and context. This is a pure domain layer; the only
// external dependency is uuid for server-generated identifiers.
package statement

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/enumverse/lrs-hub/internal/domain/shared"
)

// Version is the statement protocol version stamped on new statements.
const Version = "1.0.3"

// DefaultLanguage is the language tag used for synthesized display maps
// and for display lookups in reports.
const DefaultLanguage = "en-US"

// ActorType discriminates between the kinds of actor.
type ActorType string

const (
	ActorAgent ActorType = "Agent"
	ActorGroup ActorType = "Group"
)

// ParseActorType coerces a raw discriminant string to an ActorType.
// Unknown or empty values fall back to Agent; the second return value
// reports whether the input was recognized so callers can log a warning.
func ParseActorType(raw string) (ActorType, bool) {
	switch raw {
	case string(ActorAgent):
		return ActorAgent, true
	case string(ActorGroup):
		return ActorGroup, true
	default:
		return ActorAgent, false
	}
}

// ObjectType discriminates between the kinds of statement object.
type ObjectType string

const (
	ObjectActivity     ObjectType = "Activity"
	ObjectAgent        ObjectType = "Agent"
	ObjectGroup        ObjectType = "Group"
	ObjectSubStatement ObjectType = "SubStatement"
	ObjectStatementRef ObjectType = "StatementRef"
)

// ParseObjectType coerces a raw discriminant string to an ObjectType.
// Unknown or empty values fall back to Activity; the second return value
// reports whether the input was recognized.
func ParseObjectType(raw string) (ObjectType, bool) {
	switch raw {
	case string(ObjectActivity):
		return ObjectActivity, true
	case string(ObjectAgent):
		return ObjectAgent, true
	case string(ObjectGroup):
		return ObjectGroup, true
	case string(ObjectSubStatement):
		return ObjectSubStatement, true
	case string(ObjectStatementRef):
		return ObjectStatementRef, true
	default:
		return ObjectActivity, false
	}
}

// Account is an actor identity on some system, identified by a home page
// and an account name there.
type Account struct {
	Name     string `json:"name,omitempty"`
	HomePage string `json:"homePage,omitempty"`
}

// Actor is the subject of a statement: the person or group that performed
// the action. Exactly one of Mbox / MboxSHA1Sum / OpenID / Account is the
// primary identity by convention; the model stores whichever were supplied
// and does not enforce exclusivity.
type Actor struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name,omitempty"`
	Mbox        string    `json:"mbox,omitempty"`
	MboxSHA1Sum string    `json:"mbox_sha1sum,omitempty"`
	OpenID      string    `json:"openid,omitempty"`
	Account     *Account  `json:"account,omitempty"`
	ObjectType  ActorType `json:"objectType,omitempty"`
}

// IsZero reports whether the actor carries no identifying information.
func (a Actor) IsZero() bool {
	return a.ID == "" && a.Name == "" && a.Mbox == "" &&
		a.MboxSHA1Sum == "" && a.OpenID == "" && a.Account == nil
}

// Verb is the action performed, identified by URI with localized display
// text keyed by language tag.
type Verb struct {
	ID      string            `json:"id"`
	Display map[string]string `json:"display,omitempty"`
}

// DisplayFor returns the display text for the given language tag, falling
// back to the verb id when the map is absent or has no entry for the tag.
func (v Verb) DisplayFor(lang string) string {
	if v.Display != nil {
		if d, ok := v.Display[lang]; ok && d != "" {
			return d
		}
	}
	return v.ID
}

// Definition describes an activity: localized name and description maps,
// a type URI, a "more info" URI, and a free-form extension map.
type Definition struct {
	Name        map[string]string      `json:"name,omitempty"`
	Description map[string]string      `json:"description,omitempty"`
	Type        string                 `json:"type,omitempty"`
	MoreInfo    string                 `json:"moreInfo,omitempty"`
	Extensions  map[string]interface{} `json:"extensions,omitempty"`
}

// NameFor returns the localized activity name for lang, falling back to
// fallback when the name map is absent or has no entry.
func (d *Definition) NameFor(lang, fallback string) string {
	if d == nil || d.Name == nil {
		return fallback
	}
	if n, ok := d.Name[lang]; ok && n != "" {
		return n
	}
	return fallback
}

// Object is the target of the action. For the common Activity object type
// the Definition carries the human-readable description.
type Object struct {
	ID         string      `json:"id"`
	ObjectType ObjectType  `json:"objectType,omitempty"`
	Definition *Definition `json:"definition,omitempty"`
}

// Score is outcome scoring data. Fields are pointers because every one of
// them is optional on the wire; no range enforcement happens here.
type Score struct {
	Scaled *float64 `json:"scaled,omitempty"`
	Raw    *float64 `json:"raw,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}

// Result is outcome data attached to a statement.
type Result struct {
	Score      *Score                 `json:"score,omitempty"`
	Success    *bool                  `json:"success,omitempty"`
	Completion *bool                  `json:"completion,omitempty"`
	Response   string                 `json:"response,omitempty"`
	Duration   string                 `json:"duration,omitempty"` // ISO-8601 duration
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// Context is situational metadata attached to a statement.
type Context struct {
	Registration      string                 `json:"registration,omitempty"`
	InstructorID      string                 `json:"instructorId,omitempty"`
	TeamID            string                 `json:"teamId,omitempty"`
	ContextActivities map[string][]Object    `json:"contextActivities,omitempty"`
	Revision          string                 `json:"revision,omitempty"`
	Platform          string                 `json:"platform,omitempty"`
	Language          string                 `json:"language,omitempty"`
	Statement         string                 `json:"statement,omitempty"` // back-reference statement id
	Extensions        map[string]interface{} `json:"extensions,omitempty"`
}

// IsEmpty reports whether every field of the context is empty. An
// all-empty context is omitted from statements rather than stored as a
// present-but-empty object.
func (c *Context) IsEmpty() bool {
	if c == nil {
		return true
	}
	return c.Registration == "" &&
		c.InstructorID == "" &&
		c.TeamID == "" &&
		len(c.ContextActivities) == 0 &&
		c.Revision == "" &&
		c.Platform == "" &&
		c.Language == "" &&
		c.Statement == "" &&
		len(c.Extensions) == 0
}

// Statement is the canonical, immutable record of a learning activity.
// Once persisted it is owned by the store and never mutated.
type Statement struct {
	ID        string     `json:"id"`
	Actor     Actor      `json:"actor"`
	Verb      Verb       `json:"verb"`
	Object    Object     `json:"object"`
	Timestamp time.Time  `json:"timestamp"`        // event time
	Stored    time.Time  `json:"stored,omitempty"` // write time, may differ from event time
	Authority *Actor     `json:"authority,omitempty"`
	Version   string     `json:"version,omitempty"`
	Result    *Result    `json:"result,omitempty"`
	Context   *Context   `json:"context,omitempty"`
}

// Draft is a transient statement produced by interpretation or decoded from
// a create request. It has no identity and no storage timestamp until the
// store accepts it.
type Draft struct {
	Actor     Actor
	Verb      Verb
	Object    Object
	Timestamp time.Time // zero means "stamp at save time"
	Authority *Actor
	Result    *Result
	Context   *Context
}

// New promotes a draft to a full statement, assigning a server-generated
// id, stamping timestamps, and checking the statement invariant.
func New(d Draft, now time.Time) (*Statement, error) {
	s := &Statement{
		ID:        uuid.NewString(),
		Actor:     d.Actor,
		Verb:      d.Verb,
		Object:    d.Object,
		Timestamp: d.Timestamp,
		Stored:    now,
		Authority: d.Authority,
		Version:   Version,
		Result:    d.Result,
		Context:   d.Context,
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = now
	}
	if s.Context.IsEmpty() {
		s.Context = nil
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the statement invariant: actor, verb and object are
// always present, and the event timestamp never trails the storage
// timestamp.
func (s *Statement) Validate() error {
	if s.Actor.IsZero() || strings.TrimSpace(s.Verb.ID) == "" || strings.TrimSpace(s.Object.ID) == "" {
		return shared.ErrStatementIncomplete
	}
	if !s.Stored.IsZero() && s.Timestamp.After(s.Stored) {
		return shared.ErrStoredBeforeEvent
	}
	return nil
}

// ActivityName returns the en-US display name of the statement's object,
// falling back to the object id.
func (s *Statement) ActivityName() string {
	return s.Object.Definition.NameFor(DefaultLanguage, s.Object.ID)
}

// HasScaledScore reports whether result.score.scaled is populated.
func (s *Statement) HasScaledScore() bool {
	return s.Result != nil && s.Result.Score != nil && s.Result.Score.Scaled != nil
}

// ScaledScore returns result.score.scaled, or 0 when absent. Callers that
// need to distinguish absent from zero should check HasScaledScore first.
func (s *Statement) ScaledScore() float64 {
	if !s.HasScaledScore() {
		return 0
	}
	return *s.Result.Score.Scaled
}

// IsCompleted reports whether result.completion is exactly true.
func (s *Statement) IsCompleted() bool {
	return s.Result != nil && s.Result.Completion != nil && *s.Result.Completion
}

// IsSuccessful reports whether result.success is exactly true.
func (s *Statement) IsSuccessful() bool {
	return s.Result != nil && s.Result.Success != nil && *s.Result.Success
}
