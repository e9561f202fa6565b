package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enumverse/lrs-hub/internal/domain/interpretation"
	"github.com/enumverse/lrs-hub/internal/domain/shared"
	"github.com/enumverse/lrs-hub/internal/domain/statement"
	"github.com/enumverse/lrs-hub/internal/infrastructure/persistence/memory"
)

func newIngestFixture() (*IngestLearningEventHandler, *memory.StatementRepository) {
	repo := memory.NewStatementRepository()
	engine := interpretation.NewEngine(interpretation.Namespaces{})
	create := NewCreateStatementHandler(repo, nil, nil)
	ingest := NewIngestLearningEventHandler(engine, create, nil, nil)
	return ingest, repo
}

func scorePtr(v float64) *float64 { return &v }
func completedPtr(v bool) *bool   { return &v }

func TestIngest_PersistsInterpretedStatement(t *testing.T) {
	ingest, repo := newIngestFixture()
	ctx := context.Background()

	result, err := ingest.Handle(ctx, IngestLearningEventCommand{
		Event: &interpretation.LearningEvent{
			LearnerID:    "u1",
			LearnerName:  "Ama Mensah",
			Action:       "completed",
			ActivityName: "Intro to Algebra",
			Score:        scorePtr(85),
			Completed:    completedPtr(true),
		},
	})

	require.NoError(t, err)
	assert.True(t, result.Accepted)
	require.NotEmpty(t, result.StatementID)

	stored, err := repo.FindByID(ctx, result.StatementID)
	require.NoError(t, err)

	assert.Equal(t, "Ama Mensah", stored.Actor.Name)
	assert.Equal(t, "http://adlnet.gov/expapi/verbs/completed", stored.Verb.ID)
	assert.Equal(t, "Intro to Algebra", stored.Object.Definition.Name[statement.DefaultLanguage])
	require.NotNil(t, stored.Result)
	assert.Equal(t, 0.85, *stored.Result.Score.Scaled)
	assert.True(t, stored.IsCompleted())
	assert.False(t, stored.Stored.IsZero())
	assert.False(t, stored.Timestamp.After(stored.Stored))
}

func TestIngest_RejectsInvalidEvent(t *testing.T) {
	ingest, repo := newIngestFixture()
	ctx := context.Background()

	result, err := ingest.Handle(ctx, IngestLearningEventCommand{
		Event: &interpretation.LearningEvent{Action: "completed", ActivityName: "Quiz"},
	})

	assert.ErrorIs(t, err, shared.ErrEventNotInterpretable)
	require.NotNil(t, result)
	assert.False(t, result.Accepted)
	assert.Contains(t, result.Message, "learner")

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestIngest_DryRunDoesNotPersist(t *testing.T) {
	ingest, repo := newIngestFixture()
	ctx := context.Background()

	result, err := ingest.Handle(ctx, IngestLearningEventCommand{
		Event: &interpretation.LearningEvent{
			LearnerName:  "Ama",
			Action:       "viewed",
			ActivityName: "Video",
		},
		DryRun: true,
	})

	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Empty(t, result.StatementID)
	require.NotNil(t, result.Draft)
	assert.Equal(t, "http://adlnet.gov/expapi/verbs/viewed", result.Draft.Verb.ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestIngest_BatchCollectsPerItemOutcomes(t *testing.T) {
	ingest, repo := newIngestFixture()
	ctx := context.Background()

	batch := ingest.HandleBatch(ctx, []*interpretation.LearningEvent{
		{LearnerName: "Ama", Action: "completed", ActivityName: "Quiz"},
		{Action: "completed", ActivityName: "Quiz"}, // no learner, rejected
		{LearnerName: "Kofi", Action: "started", ActivityName: "Quiz"},
	})

	assert.Equal(t, 3, batch.TotalEvents)
	assert.Equal(t, 2, batch.SuccessCount)
	assert.Equal(t, 1, batch.FailureCount)
	require.Len(t, batch.Results, 3)
	assert.True(t, batch.Results[0].Accepted)
	assert.False(t, batch.Results[1].Accepted)
	assert.True(t, batch.Results[2].Accepted)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCreateStatement_RejectsIncompleteDraft(t *testing.T) {
	repo := memory.NewStatementRepository()
	create := NewCreateStatementHandler(repo, nil, nil)

	_, err := create.Handle(context.Background(), CreateStatementCommand{
		Draft: statement.Draft{Verb: statement.Verb{ID: "v"}, Object: statement.Object{ID: "a"}},
	})

	assert.ErrorIs(t, err, shared.ErrStatementIncomplete)
}

func TestDeleteStatement_MissingIDIsReported(t *testing.T) {
	repo := memory.NewStatementRepository()
	del := NewDeleteStatementHandler(repo, nil, nil)

	err := del.Handle(context.Background(), DeleteStatementCommand{ID: "missing"})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = del.Handle(context.Background(), DeleteStatementCommand{})
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}
