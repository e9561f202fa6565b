package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enumverse/lrs-hub/internal/application/command"
	"github.com/enumverse/lrs-hub/internal/application/query"
	"github.com/enumverse/lrs-hub/internal/domain/interpretation"
	"github.com/enumverse/lrs-hub/internal/infrastructure/persistence/memory"
)

func newTestServer() *Server {
	statements := memory.NewStatementRepository()
	records := memory.NewRecordRepository()
	engine := interpretation.NewEngine(interpretation.Namespaces{})

	createStatement := command.NewCreateStatementHandler(statements, nil, nil)

	return NewServer(DefaultConfig(), Dependencies{
		CreateStatement:  createStatement,
		DeleteStatement:  command.NewDeleteStatementHandler(statements, nil, nil),
		IngestEvent:      command.NewIngestLearningEventHandler(engine, createStatement, nil, nil),
		Records:          command.NewLearningRecordHandler(records, nil),
		StatementQueries: query.NewStatementQueryHandler(statements, nil),
		RecordQueries:    query.NewRecordQueryHandler(records, nil),
		ReportQueries:    query.NewReportQueryHandler(statements, nil, 0, nil, nil),
		Version:          "test",
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, JSONResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return rec, resp
}

func decodeData(t *testing.T, resp JSONResponse, dst any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer()

	rec, resp := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestIngestAndFetchStatement(t *testing.T) {
	s := newTestServer()

	rec, resp := doJSON(t, s, http.MethodPost, "/api/learning-events", map[string]any{
		"learnerId":    "u1",
		"learnerName":  "Ama Mensah",
		"action":       "completed",
		"activityName": "Intro to Algebra",
		"score":        85,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, resp.Success)

	var ingested struct {
		Accepted    bool   `json:"accepted"`
		StatementID string `json:"statementId"`
	}
	decodeData(t, resp, &ingested)
	assert.True(t, ingested.Accepted)
	require.NotEmpty(t, ingested.StatementID)

	rec, resp = doJSON(t, s, http.MethodGet, "/api/statements/"+ingested.StatementID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched struct {
		Actor struct {
			Name string `json:"name"`
		} `json:"actor"`
		Verb struct {
			ID string `json:"id"`
		} `json:"verb"`
		Result struct {
			Score struct {
				Scaled float64 `json:"scaled"`
			} `json:"score"`
		} `json:"result"`
	}
	decodeData(t, resp, &fetched)
	assert.Equal(t, "Ama Mensah", fetched.Actor.Name)
	assert.Equal(t, "http://adlnet.gov/expapi/verbs/completed", fetched.Verb.ID)
	assert.Equal(t, 0.85, fetched.Result.Score.Scaled)
}

func TestIngestRejectedEvent(t *testing.T) {
	s := newTestServer()

	rec, resp := doJSON(t, s, http.MethodPost, "/api/learning-events", map[string]any{
		"action": "completed",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "event_rejected", resp.Error.Code)
}

func TestPreviewDoesNotPersist(t *testing.T) {
	s := newTestServer()

	rec, _ := doJSON(t, s, http.MethodPost, "/api/learning-events/preview", map[string]any{
		"learnerName":  "Ama",
		"action":       "viewed",
		"activityName": "Video",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := doJSON(t, s, http.MethodGet, "/api/statements", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 0, resp.Meta.Count)
}

func TestBatchIngest(t *testing.T) {
	s := newTestServer()

	rec, resp := doJSON(t, s, http.MethodPost, "/api/learning-events/batch", []map[string]any{
		{"learnerName": "Ama", "action": "completed", "activityName": "Quiz"},
		{"action": "completed", "activityName": "Quiz"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var batch struct {
		TotalEvents  int `json:"totalEvents"`
		SuccessCount int `json:"successCount"`
		FailureCount int `json:"failureCount"`
	}
	decodeData(t, resp, &batch)
	assert.Equal(t, 2, batch.TotalEvents)
	assert.Equal(t, 1, batch.SuccessCount)
	assert.Equal(t, 1, batch.FailureCount)
}

func TestCreateStatementCoercesUnknownTypes(t *testing.T) {
	s := newTestServer()

	rec, resp := doJSON(t, s, http.MethodPost, "/api/statements", map[string]any{
		"actor": map[string]any{
			"id":         "u1",
			"name":       "Ama",
			"objectType": "Robot",
		},
		"verb": map[string]any{"id": "http://adlnet.gov/expapi/verbs/completed"},
		"object": map[string]any{
			"id":         "http://example.com/activities/quiz",
			"objectType": "Widget",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var created struct {
		ID     string `json:"id"`
		Actor  struct {
			ObjectType string `json:"objectType"`
		} `json:"actor"`
		Object struct {
			ObjectType string `json:"objectType"`
		} `json:"object"`
	}
	decodeData(t, resp, &created)
	assert.Equal(t, "Agent", created.Actor.ObjectType)
	assert.Equal(t, "Activity", created.Object.ObjectType)

	// The coerced values are what gets stored, not the raw discriminants.
	rec, resp = doJSON(t, s, http.MethodGet, "/api/statements/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, resp, &created)
	assert.Equal(t, "Agent", created.Actor.ObjectType)
	assert.Equal(t, "Activity", created.Object.ObjectType)
}

func TestCreateStatementKeepsKnownTypes(t *testing.T) {
	s := newTestServer()

	rec, resp := doJSON(t, s, http.MethodPost, "/api/statements", map[string]any{
		"actor": map[string]any{"id": "g1", "name": "Cohort A", "objectType": "Group"},
		"verb":  map[string]any{"id": "http://adlnet.gov/expapi/verbs/completed"},
		"object": map[string]any{
			"id":         "http://example.com/statements/ref-1",
			"objectType": "StatementRef",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Actor struct {
			ObjectType string `json:"objectType"`
		} `json:"actor"`
		Object struct {
			ObjectType string `json:"objectType"`
		} `json:"object"`
	}
	decodeData(t, resp, &created)
	assert.Equal(t, "Group", created.Actor.ObjectType)
	assert.Equal(t, "StatementRef", created.Object.ObjectType)
}

func TestCreateStatementFutureTimestampIsBadRequest(t *testing.T) {
	s := newTestServer()

	rec, resp := doJSON(t, s, http.MethodPost, "/api/statements", map[string]any{
		"actor":     map[string]any{"id": "u1", "name": "Ama"},
		"verb":      map[string]any{"id": "http://adlnet.gov/expapi/verbs/completed"},
		"object":    map[string]any{"id": "http://example.com/activities/quiz"},
		"timestamp": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "validation_error", resp.Error.Code)
}

func TestStatementNotFoundMapsTo404(t *testing.T) {
	s := newTestServer()

	rec, resp := doJSON(t, s, http.MethodGet, "/api/statements/missing-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "not_found", resp.Error.Code)
}

func TestDeleteStatement(t *testing.T) {
	s := newTestServer()

	_, resp := doJSON(t, s, http.MethodPost, "/api/learning-events", map[string]any{
		"learnerName":  "Ama",
		"action":       "completed",
		"activityName": "Quiz",
	})
	var ingested struct {
		StatementID string `json:"statementId"`
	}
	decodeData(t, resp, &ingested)

	rec, _ := doJSON(t, s, http.MethodDelete, "/api/statements/"+ingested.StatementID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, s, http.MethodDelete, "/api/statements/"+ingested.StatementID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatementFilters(t *testing.T) {
	s := newTestServer()

	for _, ev := range []map[string]any{
		{"learnerName": "Ama", "action": "completed", "activityName": "Quiz"},
		{"learnerName": "Kofi", "action": "viewed", "activityName": "Video"},
	} {
		rec, _ := doJSON(t, s, http.MethodPost, "/api/learning-events", ev)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, resp := doJSON(t, s, http.MethodGet, "/api/statements/actor/Ama", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, resp.Meta.Count)

	rec, resp = doJSON(t, s, http.MethodGet, "/api/statements/verb?verbId=http://adlnet.gov/expapi/verbs/viewed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, resp.Meta.Count)

	// Missing verbId is a validation error.
	rec, _ = doJSON(t, s, http.MethodGet, "/api/statements/verb", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatementDateRangeParams(t *testing.T) {
	s := newTestServer()

	rec, _ := doJSON(t, s, http.MethodGet, "/api/statements/date-range?start=2026-08-01&end=2026-08-28", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, s, http.MethodGet, "/api/statements/date-range?start=not-a-date&end=2026-08-28", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing bounds fail range validation downstream.
	rec, _ = doJSON(t, s, http.MethodGet, "/api/statements/date-range", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// End before start.
	rec, _ = doJSON(t, s, http.MethodGet, "/api/statements/date-range?start=2026-08-28&end=2026-08-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLearningRecordCRUD(t *testing.T) {
	s := newTestServer()

	rec, resp := doJSON(t, s, http.MethodPost, "/api/learning-records", map[string]any{
		"userId":       "u1",
		"courseId":     "c1",
		"activityName": "Algebra",
		"score":        90,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID string `json:"id"`
	}
	decodeData(t, resp, &created)
	require.NotEmpty(t, created.ID)

	rec, _ = doJSON(t, s, http.MethodPut, "/api/learning-records/"+created.ID, map[string]any{
		"userId":    "u1",
		"courseId":  "c1",
		"completed": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = doJSON(t, s, http.MethodGet, "/api/learning-records/user/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, resp.Meta.Count)

	rec, resp = doJSON(t, s, http.MethodGet, "/api/learning-records/completed/true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, resp.Meta.Count)

	rec, _ = doJSON(t, s, http.MethodDelete, "/api/learning-records/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, s, http.MethodGet, "/api/learning-records/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLearningRecordValidation(t *testing.T) {
	s := newTestServer()

	rec, resp := doJSON(t, s, http.MethodPost, "/api/learning-records", map[string]any{
		"userId": "u1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "validation_error", resp.Error.Code)
}

func TestReportEndpoints(t *testing.T) {
	s := newTestServer()

	rec, _ := doJSON(t, s, http.MethodPost, "/api/learning-events", map[string]any{
		"learnerId":    "u1",
		"learnerName":  "Ama",
		"action":       "completed",
		"activityId":   "http://example.com/activities/quiz",
		"activityName": "Quiz",
		"score":        80,
		"completed":    true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := doJSON(t, s, http.MethodGet, "/api/reports/comprehensive?start=2020-01-01&end=2099-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report struct {
		TotalStatements int64 `json:"total_statements"`
	}
	decodeData(t, resp, &report)
	assert.Equal(t, int64(1), report.TotalStatements)

	rec, resp = doJSON(t, s, http.MethodGet, "/api/reports/actor?actorId=u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var actor struct {
		ActorID         string `json:"actor_id"`
		TotalStatements int64  `json:"total_statements"`
	}
	decodeData(t, resp, &actor)
	assert.Equal(t, "u1", actor.ActorID)
	assert.Equal(t, int64(1), actor.TotalStatements)

	rec, _ = doJSON(t, s, http.MethodGet, "/api/reports/activity?activityId=http://example.com/activities/quiz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, s, http.MethodGet, "/api/reports/top-performers?limit=5", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, s, http.MethodGet, "/api/reports/top-performers?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, s, http.MethodGet, "/api/reports/popular-activities", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, s, http.MethodGet, "/api/reports/verbs?start=2020-01-01&end=2099-01-01", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, s, http.MethodGet, "/api/reports/daily-trends?start=2020-01-01&end=2099-01-01", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodOptions, "/api/statements", nil)
	req.Header.Set("Origin", "https://lms.example.org")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://lms.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
}
