// Package inmemory keeps job and step execution metadata in process memory.
// Thermolog runs are one-shot, so nothing outlives the process.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/repository"
)

// InMemoryJobRepository is a map-backed repository.JobRepository.
type InMemoryJobRepository struct {
	jobExecutions  map[string]*model.JobExecution
	stepExecutions map[string]*model.StepExecution
	mu             sync.RWMutex
}

// NewInMemoryJobRepository creates an empty repository.
func NewInMemoryJobRepository() *InMemoryJobRepository {
	return &InMemoryJobRepository{
		jobExecutions:  make(map[string]*model.JobExecution),
		stepExecutions: make(map[string]*model.StepExecution),
	}
}

func (r *InMemoryJobRepository) Close() error {
	return nil
}

func (r *InMemoryJobRepository) SaveJobExecution(ctx context.Context, je *model.JobExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobExecutions[je.ID]; exists {
		return fmt.Errorf("JobExecution with ID %s already exists", je.ID)
	}
	r.jobExecutions[je.ID] = je
	return nil
}

func (r *InMemoryJobRepository) UpdateJobExecution(ctx context.Context, je *model.JobExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobExecutions[je.ID]; !exists {
		return fmt.Errorf("JobExecution with ID %s not found for update", je.ID)
	}
	r.jobExecutions[je.ID] = je
	return nil
}

// FindJobExecutionByID returns a copy of the execution with its steps ordered by start time.
func (r *InMemoryJobRepository) FindJobExecutionByID(ctx context.Context, id string) (*model.JobExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	je, ok := r.jobExecutions[id]
	if !ok {
		return nil, repository.ErrJobExecutionNotFound
	}
	return r.cloneWithSteps(je), nil
}

func (r *InMemoryJobRepository) FindJobExecutionsByJobName(ctx context.Context, jobName string) ([]*model.JobExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.JobExecution
	for _, je := range r.jobExecutions {
		if je.JobName == jobName {
			out = append(out, r.cloneWithSteps(je))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[j].StartTime.Before(out[i].StartTime) })
	return out, nil
}

func (r *InMemoryJobRepository) cloneWithSteps(je *model.JobExecution) *model.JobExecution {
	c := *je
	c.StepExecutions = make([]*model.StepExecution, 0)
	for _, se := range r.stepExecutions {
		if se.JobExecutionID == c.ID {
			c.StepExecutions = append(c.StepExecutions, se)
		}
	}
	sort.Slice(c.StepExecutions, func(i, j int) bool {
		return c.StepExecutions[i].StartTime.Before(c.StepExecutions[j].StartTime)
	})
	return &c
}

func (r *InMemoryJobRepository) SaveStepExecution(ctx context.Context, se *model.StepExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.stepExecutions[se.ID]; exists {
		return fmt.Errorf("StepExecution with ID %s already exists", se.ID)
	}
	r.stepExecutions[se.ID] = se
	return nil
}

func (r *InMemoryJobRepository) UpdateStepExecution(ctx context.Context, se *model.StepExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.stepExecutions[se.ID]; !exists {
		return fmt.Errorf("StepExecution with ID %s not found for update", se.ID)
	}
	r.stepExecutions[se.ID] = se
	return nil
}

func (r *InMemoryJobRepository) FindStepExecutionByID(ctx context.Context, id string) (*model.StepExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	se, ok := r.stepExecutions[id]
	if !ok {
		return nil, repository.ErrStepExecutionNotFound
	}
	c := *se
	return &c, nil
}

var _ repository.JobRepository = (*InMemoryJobRepository)(nil)
