package command

import (
	"context"
	"time"

	"github.com/enumverse/lrs-hub/internal/domain/interpretation"
	"github.com/enumverse/lrs-hub/internal/domain/shared"
	"github.com/enumverse/lrs-hub/internal/domain/statement"
	"github.com/enumverse/lrs-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// INGEST LEARNING EVENT COMMAND
// The main write path: validates a simplified learning event, runs it
// through the interpretation engine, and persists the resulting canonical
// statement. Interpretation itself is pure; everything stateful happens
// here.
// ══════════════════════════════════════════════════════════════════════════════

// IngestLearningEventCommand contains the event to ingest.
type IngestLearningEventCommand struct {
	// Event is the simplified learning event as submitted.
	Event *interpretation.LearningEvent

	// DryRun interprets without persisting. Used by callers that want to
	// preview the canonical form of an event.
	DryRun bool

	// CorrelationID for tracing.
	CorrelationID string
}

// IngestLearningEventResult contains the outcome for a single event.
type IngestLearningEventResult struct {
	// Accepted is false when validation rejected the event.
	Accepted bool

	// Message is a human-readable outcome description.
	Message string

	// StatementID is set when a statement was persisted.
	StatementID string

	// Statement is the stored statement (nil on rejection or dry run
	// without persistence it is the would-be statement's draft instead).
	Statement *statement.Statement

	// Draft is the interpreted draft, present whenever validation passed.
	Draft *statement.Draft

	// ProcessedAt is when ingestion finished.
	ProcessedAt time.Time
}

// BatchIngestResult summarizes a batch submission.
type BatchIngestResult struct {
	TotalEvents  int
	SuccessCount int
	FailureCount int
	Results      []IngestLearningEventResult
}

// IngestLearningEventHandler handles single and batch ingestion.
type IngestLearningEventHandler struct {
	engine *interpretation.Engine
	create *CreateStatementHandler
	events shared.EventPublisher
	log    *logger.Logger
}

// NewIngestLearningEventHandler creates the handler.
func NewIngestLearningEventHandler(engine *interpretation.Engine, create *CreateStatementHandler, events shared.EventPublisher, log *logger.Logger) *IngestLearningEventHandler {
	if log == nil {
		log = logger.Default()
	}
	if events == nil {
		events = shared.NopPublisher{}
	}
	return &IngestLearningEventHandler{
		engine: engine,
		create: create,
		events: events,
		log:    log.With(logger.Component("ingest_learning_event")),
	}
}

// Handle ingests a single learning event.
func (h *IngestLearningEventHandler) Handle(ctx context.Context, cmd IngestLearningEventCommand) (*IngestLearningEventResult, error) {
	now := time.Now()

	if !h.engine.Validate(cmd.Event) {
		reason := rejectionReason(cmd.Event)
		h.log.Warn("learning event rejected", logger.String("reason", reason))
		if err := h.events.Publish(shared.NewLearningEventRejectedEvent(reason)); err != nil {
			h.log.Warn("rejection event not published", logger.Err(err))
		}
		return &IngestLearningEventResult{
			Accepted:    false,
			Message:     reason,
			ProcessedAt: now,
		}, shared.ErrEventNotInterpretable
	}

	draft := h.engine.Interpret(cmd.Event)

	result := &IngestLearningEventResult{
		Accepted:    true,
		Draft:       &draft,
		ProcessedAt: now,
	}

	if cmd.DryRun {
		result.Message = "event interpreted (not persisted)"
		return result, nil
	}

	created, err := h.create.Handle(ctx, CreateStatementCommand{
		Draft:         draft,
		CorrelationID: cmd.CorrelationID,
	})
	if err != nil {
		return nil, err
	}

	result.Message = "learning event recorded"
	result.Statement = created.Statement
	result.StatementID = created.Statement.ID
	result.ProcessedAt = created.CreatedAt
	return result, nil
}

// HandleBatch ingests a batch of learning events. Individual rejections
// and save failures are collected per item; the batch itself never fails.
func (h *IngestLearningEventHandler) HandleBatch(ctx context.Context, events []*interpretation.LearningEvent) *BatchIngestResult {
	batch := &BatchIngestResult{
		TotalEvents: len(events),
		Results:     make([]IngestLearningEventResult, 0, len(events)),
	}

	for _, ev := range events {
		result, err := h.Handle(ctx, IngestLearningEventCommand{Event: ev})
		if err != nil && result == nil {
			result = &IngestLearningEventResult{
				Accepted:    false,
				Message:     err.Error(),
				ProcessedAt: time.Now(),
			}
		}
		if err != nil {
			batch.FailureCount++
		} else {
			batch.SuccessCount++
		}
		batch.Results = append(batch.Results, *result)
	}

	h.log.Info("batch ingested",
		logger.Int("total", batch.TotalEvents),
		logger.Int("succeeded", batch.SuccessCount),
		logger.Int("failed", batch.FailureCount),
	)
	return batch
}

// rejectionReason names the first failed validation rule for an event.
func rejectionReason(ev *interpretation.LearningEvent) string {
	switch {
	case ev == nil:
		return "learning event is required"
	case ev.LearnerName == "" && ev.LearnerID == "":
		return "either learnerName or learnerId must be provided"
	case ev.Action == "":
		return "action is required"
	case ev.ActivityName == "" && ev.ActivityID == "":
		return "either activityName or activityId must be provided"
	default:
		return "action is required"
	}
}
