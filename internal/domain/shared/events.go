// Package shared contains common domain types, errors, and events
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened in the store; subscribers react to them asynchronously.
const (
	// Statement events
	EventStatementCreated EventType = "statement.created"
	EventStatementDeleted EventType = "statement.deleted"

	// Interpretation events
	EventLearningEventInterpreted EventType = "interpretation.event_interpreted"
	EventLearningEventRejected    EventType = "interpretation.event_rejected"

	// Learning record events
	EventRecordCreated EventType = "record.created"
	EventRecordUpdated EventType = "record.updated"
	EventRecordDeleted EventType = "record.deleted"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// StatementCreatedEvent is emitted after a statement is durably saved.
// Delivery is fire-and-forget: subscriber failures are observed and
// swallowed, never rolled back into the write.
type StatementCreatedEvent struct {
	BaseEvent
	StatementID string `json:"statement_id"`
	ActorID     string `json:"actor_id"`
	ActorName   string `json:"actor_name,omitempty"`
	VerbID      string `json:"verb_id"`
	ActivityID  string `json:"activity_id"`
}

// Payload implements Event interface.
func (e StatementCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"statement_id": e.StatementID,
		"actor_id":     e.ActorID,
		"actor_name":   e.ActorName,
		"verb_id":      e.VerbID,
		"activity_id":  e.ActivityID,
	}
}

// NewStatementCreatedEvent creates a new StatementCreatedEvent.
func NewStatementCreatedEvent(statementID, actorID, actorName, verbID, activityID string) StatementCreatedEvent {
	return StatementCreatedEvent{
		BaseEvent:   NewBaseEvent(EventStatementCreated, statementID),
		StatementID: statementID,
		ActorID:     actorID,
		ActorName:   actorName,
		VerbID:      verbID,
		ActivityID:  activityID,
	}
}

// StatementDeletedEvent is emitted after a statement is removed.
type StatementDeletedEvent struct {
	BaseEvent
	StatementID string `json:"statement_id"`
}

// Payload implements Event interface.
func (e StatementDeletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"statement_id": e.StatementID,
	}
}

// NewStatementDeletedEvent creates a new StatementDeletedEvent.
func NewStatementDeletedEvent(statementID string) StatementDeletedEvent {
	return StatementDeletedEvent{
		BaseEvent:   NewBaseEvent(EventStatementDeleted, statementID),
		StatementID: statementID,
	}
}

// LearningEventRejectedEvent is emitted when interpretation validation fails.
type LearningEventRejectedEvent struct {
	BaseEvent
	Reason string `json:"reason"`
}

// Payload implements Event interface.
func (e LearningEventRejectedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"reason": e.Reason,
	}
}

// NewLearningEventRejectedEvent creates a new LearningEventRejectedEvent.
func NewLearningEventRejectedEvent(reason string) LearningEventRejectedEvent {
	return LearningEventRejectedEvent{
		BaseEvent: NewBaseEvent(EventLearningEventRejected, ""),
		Reason:    reason,
	}
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to all subscribed handlers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber

	// Close shuts down the bus and waits for in-flight handlers.
	Close() error
}

// NopPublisher discards every event. Useful in tests and when the
// notification pipeline is disabled.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) error { return nil }
