package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	port "github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
	model "github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/core/job"
	metrics "github.com/Yognotiano/TESIS/pkg/batch/core/metrics"
	"github.com/Yognotiano/TESIS/pkg/batch/engine/step/tasklet"
	"github.com/Yognotiano/TESIS/pkg/batch/infrastructure/repository/inmemory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockTasklet struct {
	mock.Mock
	ec model.ExecutionContext
}

func (m *mockTasklet) Execute(ctx context.Context, se *model.StepExecution) (model.ExitStatus, error) {
	args := m.Called(ctx, se)
	return args.Get(0).(model.ExitStatus), args.Error(1)
}

func (m *mockTasklet) Close(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *mockTasklet) SetExecutionContext(ctx context.Context, ec model.ExecutionContext) error {
	m.ec = ec
	return nil
}

func (m *mockTasklet) GetExecutionContext(ctx context.Context) (model.ExecutionContext, error) {
	return m.ec, nil
}

type recordingListener struct {
	before, after []string
}

func (r *recordingListener) BeforeJob(ctx context.Context, je *model.JobExecution) {
	r.before = append(r.before, je.JobName)
}

func (r *recordingListener) AfterJob(ctx context.Context, je *model.JobExecution) {
	r.after = append(r.after, string(je.Status))
}

func newLauncher(listeners ...port.JobExecutionListener) (*SimpleJobLauncher, *inmemory.InMemoryJobRepository) {
	repo := inmemory.NewInMemoryJobRepository()
	return NewSimpleJobLauncher(LauncherParams{
		JobRepository:  repo,
		MetricRecorder: metrics.NewNoOpMetricRecorder(),
		Tracer:         metrics.NewNoOpTracer(),
		Listeners:      listeners,
	}), repo
}

func TestLaunch_CompletesAllSteps(t *testing.T) {
	launcher, repo := newLauncher()

	first := &mockTasklet{}
	first.On("Execute", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		se := args.Get(1).(*model.StepExecution)
		se.ReadCount = 3
		se.WriteCount = 2
		assert.Same(t, se, port.GetStepExecutionFromContext(args.Get(0).(context.Context)))
	}).Return(model.ExitStatusCompleted, nil)
	first.On("Close", mock.Anything).Return(nil)

	second := &mockTasklet{}
	second.On("Execute", mock.Anything, mock.Anything).Return(model.ExitStatusNoOp, nil)
	second.On("Close", mock.Anything).Return(nil)

	j := job.NewSimpleJob("ingestJob",
		tasklet.NewTaskletStep("ingestStep", first, repo, nil, nil, nil),
		tasklet.NewTaskletStep("mirrorStep", second, repo, nil, nil, nil),
	)

	je, err := launcher.Launch(context.Background(), j, model.NewJobParameters())
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, je.Status)
	require.Len(t, je.StepExecutions, 2)
	assert.Equal(t, 3, je.StepExecutions[0].ReadCount)
	assert.Equal(t, model.ExitStatusNoOp, je.StepExecutions[1].ExitStatus)

	stored, err := repo.FindJobExecutionByID(context.Background(), je.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, stored.Status)

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestLaunch_StopsAtFirstFailure(t *testing.T) {
	listener := &recordingListener{}
	launcher, repo := newLauncher(listener)
	boom := errors.New("output dir unavailable")

	failing := &mockTasklet{}
	failing.On("Execute", mock.Anything, mock.Anything).Return(model.ExitStatusFailed, boom)
	failing.On("Close", mock.Anything).Return(nil)
	never := &mockTasklet{}

	j := job.NewSimpleJob("ingestJob",
		tasklet.NewTaskletStep("ingestStep", failing, repo, nil, nil, nil),
		tasklet.NewTaskletStep("mirrorStep", never, repo, nil, nil, nil),
	)

	je, err := launcher.Launch(context.Background(), j, model.NewJobParameters())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, model.BatchStatusFailed, je.Status)
	require.Len(t, je.StepExecutions, 1)
	assert.Equal(t, model.BatchStatusFailed, je.StepExecutions[0].Status)
	assert.Contains(t, je.Failures, "output dir unavailable")

	assert.Equal(t, []string{"ingestJob"}, listener.before)
	assert.Equal(t, []string{"FAILED"}, listener.after)
	never.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestLaunch_CloseErrorFailsStep(t *testing.T) {
	launcher, repo := newLauncher()

	tk := &mockTasklet{}
	tk.On("Execute", mock.Anything, mock.Anything).Return(model.ExitStatusCompleted, nil)
	tk.On("Close", mock.Anything).Return(errors.New("flush failed"))

	je, err := launcher.Launch(context.Background(),
		job.NewSimpleJob("histoJob", tasklet.NewTaskletStep("histoStep", tk, repo, nil, nil, nil)),
		model.NewJobParameters())
	assert.EqualError(t, err, "flush failed")
	assert.Equal(t, model.BatchStatusFailed, je.Status)
}

func TestLaunch_CancelledContext(t *testing.T) {
	launcher, repo := newLauncher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	never := &mockTasklet{}
	je, err := launcher.Launch(ctx,
		job.NewSimpleJob("rangeJob", tasklet.NewTaskletStep("rangeStep", never, repo, nil, nil, nil)),
		model.NewJobParameters())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, model.BatchStatusFailed, je.Status)
	assert.Empty(t, je.StepExecutions)
}
