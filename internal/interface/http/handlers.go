package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/enumverse/lrs-hub/internal/application/command"
	"github.com/enumverse/lrs-hub/internal/application/query"
	"github.com/enumverse/lrs-hub/internal/domain/interpretation"
	"github.com/enumverse/lrs-hub/internal/domain/statement"
	"github.com/enumverse/lrs-hub/pkg/logger"
	"github.com/enumverse/lrs-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

type healthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version,omitempty"`
	Uptime   string            `json:"uptime"`
	Services map[string]string `json:"services,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Version: s.deps.Version,
		Uptime:  s.Uptime().Round(time.Second).String(),
	}

	status := http.StatusOK
	if len(s.deps.ReadinessChecks) > 0 {
		resp.Services = make(map[string]string, len(s.deps.ReadinessChecks))
		for name, check := range s.deps.ReadinessChecks {
			if err := check(r.Context()); err != nil {
				resp.Services[name] = "unavailable: " + err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
			} else {
				resp.Services[name] = "ok"
			}
		}
	}

	writeJSON(w, status, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// STATEMENTS
// ══════════════════════════════════════════════════════════════════════════════

// createStatementRequest mirrors the statement wire format minus the
// server-assigned fields (id, stored, version).
type createStatementRequest struct {
	Actor     statement.Actor    `json:"actor"`
	Verb      statement.Verb     `json:"verb"`
	Object    statement.Object   `json:"object"`
	Timestamp time.Time          `json:"timestamp"`
	Authority *statement.Actor   `json:"authority,omitempty"`
	Result    *statement.Result  `json:"result,omitempty"`
	Context   *statement.Context `json:"context,omitempty"`
}

// normalizeDraftTypes coerces unknown actor/object type discriminants on a
// decoded draft to their defaults, logging the raw value so misbehaving
// clients can be traced. Absent discriminants are left alone.
func (s *Server) normalizeDraftTypes(r *http.Request, d *statement.Draft) {
	if raw := string(d.Actor.ObjectType); raw != "" {
		if coerced, known := statement.ParseActorType(raw); !known {
			s.logger.Warn("unknown actor objectType coerced",
				logger.String("objectType", raw),
				logger.String("request_id", getRequestID(r.Context())),
			)
			d.Actor.ObjectType = coerced
		}
	}
	if d.Authority != nil {
		if raw := string(d.Authority.ObjectType); raw != "" {
			if coerced, known := statement.ParseActorType(raw); !known {
				s.logger.Warn("unknown authority objectType coerced",
					logger.String("objectType", raw),
					logger.String("request_id", getRequestID(r.Context())),
				)
				d.Authority.ObjectType = coerced
			}
		}
	}
	if raw := string(d.Object.ObjectType); raw != "" {
		if coerced, known := statement.ParseObjectType(raw); !known {
			s.logger.Warn("unknown object objectType coerced",
				logger.String("objectType", raw),
				logger.String("request_id", getRequestID(r.Context())),
			)
			d.Object.ObjectType = coerced
		}
	}
}

func (s *Server) handleCreateStatement(w http.ResponseWriter, r *http.Request) {
	var req createStatementRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	draft := statement.Draft{
		Actor:     req.Actor,
		Verb:      req.Verb,
		Object:    req.Object,
		Timestamp: req.Timestamp,
		Authority: req.Authority,
		Result:    req.Result,
		Context:   req.Context,
	}
	s.normalizeDraftTypes(r, &draft)

	result, err := s.deps.CreateStatement.Handle(r.Context(), command.CreateStatementCommand{
		Draft:         draft,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result.Statement)
}

func (s *Server) handleListStatements(w http.ResponseWriter, r *http.Request) {
	stmts, err := s.deps.StatementQueries.ListAll(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSONList(w, http.StatusOK, stmts, len(stmts))
}

func (s *Server) handleGetStatement(w http.ResponseWriter, r *http.Request) {
	stmt, err := s.deps.StatementQueries.GetByID(r.Context(), query.GetStatementQuery{ID: r.PathValue("id")})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stmt)
}

func (s *Server) handleDeleteStatement(w http.ResponseWriter, r *http.Request) {
	err := s.deps.DeleteStatement.Handle(r.Context(), command.DeleteStatementCommand{ID: r.PathValue("id")})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "statement deleted"})
}

func (s *Server) handleStatementsByActor(w http.ResponseWriter, r *http.Request) {
	stmts, err := s.deps.StatementQueries.ListByActorName(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSONList(w, http.StatusOK, stmts, len(stmts))
}

func (s *Server) handleStatementsByVerb(w http.ResponseWriter, r *http.Request) {
	stmts, err := s.deps.StatementQueries.ListByVerbID(r.Context(), r.URL.Query().Get("verbId"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSONList(w, http.StatusOK, stmts, len(stmts))
}

func (s *Server) handleStatementsByDateRange(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseRangeParams(w, r)
	if !ok {
		return
	}

	stmts, err := s.deps.StatementQueries.ListByTimestampRange(r.Context(), query.StatementRangeQuery{Start: start, End: end})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSONList(w, http.StatusOK, stmts, len(stmts))
}

// ══════════════════════════════════════════════════════════════════════════════
// LEARNING EVENTS
// ══════════════════════════════════════════════════════════════════════════════

type ingestResponse struct {
	Accepted    bool                 `json:"accepted"`
	Message     string               `json:"message"`
	StatementID string               `json:"statementId,omitempty"`
	Statement   *statement.Statement `json:"statement,omitempty"`
	ProcessedAt time.Time            `json:"processedAt"`
}

func ingestResponseFrom(result *command.IngestLearningEventResult) ingestResponse {
	return ingestResponse{
		Accepted:    result.Accepted,
		Message:     result.Message,
		StatementID: result.StatementID,
		Statement:   result.Statement,
		ProcessedAt: result.ProcessedAt,
	}
}

func (s *Server) handleIngestEvent(w http.ResponseWriter, r *http.Request) {
	var event interpretation.LearningEvent
	if !decodeJSONBody(w, r, &event) {
		return
	}

	result, err := s.deps.IngestEvent.Handle(r.Context(), command.IngestLearningEventCommand{
		Event:         &event,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		if result != nil && !result.Accepted {
			writeJSONError(w, http.StatusBadRequest, "event_rejected", result.Message)
			return
		}
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, ingestResponseFrom(result))
}

// handlePreviewEvent interprets an event without persisting the statement.
func (s *Server) handlePreviewEvent(w http.ResponseWriter, r *http.Request) {
	var event interpretation.LearningEvent
	if !decodeJSONBody(w, r, &event) {
		return
	}

	result, err := s.deps.IngestEvent.Handle(r.Context(), command.IngestLearningEventCommand{
		Event:         &event,
		DryRun:        true,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		if result != nil && !result.Accepted {
			writeJSONError(w, http.StatusBadRequest, "event_rejected", result.Message)
			return
		}
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accepted": result.Accepted,
		"message":  result.Message,
		"draft":    result.Draft,
	})
}

type batchIngestResponse struct {
	TotalEvents  int              `json:"totalEvents"`
	SuccessCount int              `json:"successCount"`
	FailureCount int              `json:"failureCount"`
	Results      []ingestResponse `json:"results"`
}

func (s *Server) handleIngestBatch(w http.ResponseWriter, r *http.Request) {
	var events []*interpretation.LearningEvent
	if !decodeJSONBody(w, r, &events) {
		return
	}
	if len(events) == 0 {
		writeJSONError(w, http.StatusBadRequest, "empty_batch", "Batch must contain at least one event")
		return
	}

	batch := s.deps.IngestEvent.HandleBatch(r.Context(), events)

	resp := batchIngestResponse{
		TotalEvents:  batch.TotalEvents,
		SuccessCount: batch.SuccessCount,
		FailureCount: batch.FailureCount,
		Results:      make([]ingestResponse, 0, len(batch.Results)),
	}
	for i := range batch.Results {
		resp.Results = append(resp.Results, ingestResponseFrom(&batch.Results[i]))
	}

	// A batch with any successes is reported 207-style as 200; only a
	// fully-rejected batch is a client error.
	status := http.StatusOK
	if batch.SuccessCount == 0 {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEARNING RECORDS
// ══════════════════════════════════════════════════════════════════════════════

type learningRecordRequest struct {
	UserID          string     `json:"userId"`
	CourseID        string     `json:"courseId"`
	ActivityType    string     `json:"activityType,omitempty"`
	ActivityName    string     `json:"activityName,omitempty"`
	Score           *int       `json:"score,omitempty"`
	Completed       *bool      `json:"completed,omitempty"`
	StartTime       *time.Time `json:"startTime,omitempty"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	DurationMinutes *int       `json:"durationMinutes,omitempty"`
	Status          string     `json:"status,omitempty"`
}

func (req learningRecordRequest) input() command.LearningRecordInput {
	return command.LearningRecordInput{
		UserID:          req.UserID,
		CourseID:        req.CourseID,
		ActivityType:    req.ActivityType,
		ActivityName:    req.ActivityName,
		Score:           req.Score,
		Completed:       req.Completed,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
		Status:          req.Status,
	}
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req learningRecordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	rec, err := s.deps.Records.Create(r.Context(), req.input())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := s.deps.RecordQueries.ListAll(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSONList(w, http.StatusOK, recs, len(recs))
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.deps.RecordQueries.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var req learningRecordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	rec, err := s.deps.Records.Update(r.Context(), r.PathValue("id"), req.input())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Records.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "learning record deleted"})
}

func (s *Server) handleRecordsByUser(w http.ResponseWriter, r *http.Request) {
	recs, err := s.deps.RecordQueries.ListByUserID(r.Context(), r.PathValue("userId"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSONList(w, http.StatusOK, recs, len(recs))
}

func (s *Server) handleRecordsByCourse(w http.ResponseWriter, r *http.Request) {
	recs, err := s.deps.RecordQueries.ListByCourseID(r.Context(), r.PathValue("courseId"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSONList(w, http.StatusOK, recs, len(recs))
}

func (s *Server) handleRecordsByUserAndCourse(w http.ResponseWriter, r *http.Request) {
	recs, err := s.deps.RecordQueries.ListByUserAndCourse(r.Context(), r.PathValue("userId"), r.PathValue("courseId"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSONList(w, http.StatusOK, recs, len(recs))
}

func (s *Server) handleRecordsByCompleted(w http.ResponseWriter, r *http.Request) {
	completed, err := strconv.ParseBool(r.PathValue("flag"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "completed flag must be true or false")
		return
	}

	recs, err := s.deps.RecordQueries.ListByCompleted(r.Context(), completed)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSONList(w, http.StatusOK, recs, len(recs))
}

// ══════════════════════════════════════════════════════════════════════════════
// REPORTS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleComprehensiveReport(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseRangeParams(w, r)
	if !ok {
		return
	}

	report, err := s.deps.ReportQueries.Comprehensive(r.Context(), query.ReportRangeQuery{Start: start, End: end})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleActorReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.ReportQueries.ActorReport(r.Context(), r.URL.Query().Get("actorId"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleActivityReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.ReportQueries.ActivityReport(r.Context(), r.URL.Query().Get("activityId"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleVerbBreakdown(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseRangeParams(w, r)
	if !ok {
		return
	}

	reports, err := s.deps.ReportQueries.VerbBreakdown(r.Context(), query.ReportRangeQuery{Start: start, End: end})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSONList(w, http.StatusOK, reports, len(reports))
}

func (s *Server) handleDailyTrends(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseRangeParams(w, r)
	if !ok {
		return
	}

	trends, err := s.deps.ReportQueries.DailyTrends(r.Context(), query.ReportRangeQuery{Start: start, End: end})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSONList(w, http.StatusOK, trends, len(trends))
}

func (s *Server) handleTopPerformers(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimitParam(w, r)
	if !ok {
		return
	}

	performers, err := s.deps.ReportQueries.TopPerformers(r.Context(), query.RankingQuery{Limit: limit})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSONList(w, http.StatusOK, performers, len(performers))
}

func (s *Server) handlePopularActivities(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimitParam(w, r)
	if !ok {
		return
	}

	activities, err := s.deps.ReportQueries.MostPopularActivities(r.Context(), query.RankingQuery{Limit: limit})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSONList(w, http.StatusOK, activities, len(activities))
}

// ══════════════════════════════════════════════════════════════════════════════
// PARAMETER PARSING
// ══════════════════════════════════════════════════════════════════════════════

// parseRangeParams reads the start/end query parameters. Each accepts
// RFC3339 or a bare calendar date; a date-only end is widened to the end of
// that day so "?start=2026-08-01&end=2026-08-28" covers the 28th fully.
func parseRangeParams(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	start, err := parseTimeParam(r.URL.Query().Get("start"), false)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "start must be an RFC3339 timestamp or a YYYY-MM-DD date")
		return time.Time{}, time.Time{}, false
	}

	end, err := parseTimeParam(r.URL.Query().Get("end"), true)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "end must be an RFC3339 timestamp or a YYYY-MM-DD date")
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}

// parseTimeParam parses a single time parameter. Empty input returns the
// zero time with no error; range validation downstream rejects it with the
// proper domain error.
func parseTimeParam(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	day, err := timeutil.ParseDateKey(raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return timeutil.EndOfDay(day, time.UTC), nil
	}
	return day, nil
}

// parseLimitParam reads the optional limit query parameter; absent means 0
// so the query layer applies its default.
func parseLimitParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "limit must be an integer")
		return 0, false
	}
	return limit, true
}
