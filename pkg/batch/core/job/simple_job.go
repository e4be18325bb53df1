// Package job provides the sequential job definition used by every thermolog command.
package job

import (
	port "github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
)

// SimpleJob runs its steps in order and stops at the first failure.
type SimpleJob struct {
	name  string
	steps []port.Step
}

// NewSimpleJob creates a job named name.
func NewSimpleJob(name string, steps ...port.Step) *SimpleJob {
	return &SimpleJob{name: name, steps: steps}
}

func (j *SimpleJob) JobName() string { return j.name }

func (j *SimpleJob) Steps() []port.Step { return j.steps }

var _ port.Job = (*SimpleJob)(nil)
