package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/repository"
)

func TestInMemoryJobRepository(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryJobRepository()

	first := model.NewJobExecution("ingestJob", model.NewJobParameters())
	first.StartTime = time.Now().Add(-time.Minute)
	second := model.NewJobExecution("ingestJob", model.NewJobParameters())
	other := model.NewJobExecution("rangeJob", model.NewJobParameters())
	for _, je := range []*model.JobExecution{first, second, other} {
		require.NoError(t, r.SaveJobExecution(ctx, je))
	}
	assert.Error(t, r.SaveJobExecution(ctx, first), "duplicate id")

	se := model.NewStepExecution(second, "ingestStep")
	require.NoError(t, r.SaveStepExecution(ctx, se))
	se.ReadCount = 12
	require.NoError(t, r.UpdateStepExecution(ctx, se))

	got, err := r.FindJobExecutionByID(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, got.StepExecutions, 1)
	assert.Equal(t, 12, got.StepExecutions[0].ReadCount)

	list, err := r.FindJobExecutionsByJobName(ctx, "ingestJob")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "latest first")

	_, err = r.FindJobExecutionByID(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrJobExecutionNotFound)
	_, err = r.FindStepExecutionByID(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrStepExecutionNotFound)
	assert.Error(t, r.UpdateJobExecution(ctx, model.NewJobExecution("x", model.NewJobParameters())))
	assert.NoError(t, r.Close())
}
