// Package model defines the execution records of a batch job run.
package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// JobStatus represents the state of a job or step execution.
type JobStatus string

const (
	BatchStatusStarting  JobStatus = "STARTING"
	BatchStatusStarted   JobStatus = "STARTED"
	BatchStatusCompleted JobStatus = "COMPLETED"
	BatchStatusFailed    JobStatus = "FAILED"
	BatchStatusStopped   JobStatus = "STOPPED"
)

// String returns the string representation of the JobStatus.
func (s JobStatus) String() string {
	return string(s)
}

// IsFinished reports whether the status is terminal.
func (s JobStatus) IsFinished() bool {
	switch s {
	case BatchStatusCompleted, BatchStatusFailed, BatchStatusStopped:
		return true
	default:
		return false
	}
}

// ExitStatus represents the detailed status upon job/step completion.
type ExitStatus string

const (
	ExitStatusUnknown   ExitStatus = "UNKNOWN"
	ExitStatusCompleted ExitStatus = "COMPLETED"
	ExitStatusFailed    ExitStatus = "FAILED"
	ExitStatusStopped   ExitStatus = "STOPPED"
	ExitStatusNoOp      ExitStatus = "NO_OP"
)

// String returns the ExitStatus as a string.
func (s ExitStatus) String() string {
	return string(s)
}

// ExecutionContext is a key-value store shared between a step's tasklet and the job.
type ExecutionContext map[string]interface{}

// NewExecutionContext creates an empty ExecutionContext.
func NewExecutionContext() ExecutionContext {
	return make(ExecutionContext)
}

// Put stores a value.
func (ec ExecutionContext) Put(key string, value interface{}) {
	ec[key] = value
}

// Get returns a value and whether it was present.
func (ec ExecutionContext) Get(key string) (interface{}, bool) {
	v, ok := ec[key]
	return v, ok
}

// GetString returns the value as a string when it is one.
func (ec ExecutionContext) GetString(key string) (string, bool) {
	v, ok := ec[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt returns integer values, accepting the numeric types a JSON round trip may produce.
func (ec ExecutionContext) GetInt(key string) (int, bool) {
	switch v := ec[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// Copy returns a shallow copy.
func (ec ExecutionContext) Copy() ExecutionContext {
	out := make(ExecutionContext, len(ec))
	for k, v := range ec {
		out[k] = v
	}
	return out
}

// JobParameters are the immutable inputs of one job run.
type JobParameters struct {
	Params map[string]interface{}
}

// NewJobParameters creates empty JobParameters.
func NewJobParameters() JobParameters {
	return JobParameters{Params: make(map[string]interface{})}
}

// Put stores a parameter.
func (jp JobParameters) Put(key string, value interface{}) {
	jp.Params[key] = value
}

// Get returns a parameter or nil.
func (jp JobParameters) Get(key string) interface{} {
	return jp.Params[key]
}

// GetString returns a string parameter.
func (jp JobParameters) GetString(key string) (string, bool) {
	s, ok := jp.Params[key].(string)
	return s, ok
}

// String renders the parameters as JSON with sorted keys.
func (jp JobParameters) String() string {
	keys := make([]string, 0, len(jp.Params))
	for k := range jp.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := make([]string, 0, len(keys))
	for _, k := range keys {
		b, err := json.Marshal(jp.Params[k])
		if err != nil {
			b = []byte(fmt.Sprintf("%q", fmt.Sprint(jp.Params[k])))
		}
		ordered = append(ordered, fmt.Sprintf("%q:%s", k, b))
	}
	out := "{"
	for i, kv := range ordered {
		if i > 0 {
			out += ","
		}
		out += kv
	}
	return out + "}"
}

// FailureList holds failure messages in the order they were recorded.
type FailureList []string

// JobExecution is a single run of a job.
type JobExecution struct {
	ID               string
	JobName          string
	Parameters       JobParameters
	StartTime        time.Time
	EndTime          *time.Time
	Status           JobStatus
	ExitStatus       ExitStatus
	Failures         FailureList
	StepExecutions   []*StepExecution
	ExecutionContext ExecutionContext
	LastUpdated      time.Time
}

// StepExecution is a single run of a step within a JobExecution.
type StepExecution struct {
	ID               string
	StepName         string
	JobExecution     *JobExecution
	JobExecutionID   string
	StartTime        time.Time
	EndTime          *time.Time
	Status           JobStatus
	ExitStatus       ExitStatus
	Failures         FailureList
	ReadCount        int
	WriteCount       int
	FilterCount      int
	SkipReadCount    int
	SkipWriteCount   int
	ExecutionContext ExecutionContext
	LastUpdated      time.Time
}

// NewID generates a new UUID string.
func NewID() string {
	return uuid.New().String()
}

// NewJobExecution creates a JobExecution in the STARTING state.
func NewJobExecution(jobName string, params JobParameters) *JobExecution {
	now := time.Now()
	return &JobExecution{
		ID:               NewID(),
		JobName:          jobName,
		Parameters:       params,
		StartTime:        now,
		Status:           BatchStatusStarting,
		ExitStatus:       ExitStatusUnknown,
		Failures:         make(FailureList, 0),
		StepExecutions:   make([]*StepExecution, 0),
		ExecutionContext: NewExecutionContext(),
		LastUpdated:      now,
	}
}

// NewStepExecution creates a StepExecution attached to jobExecution.
func NewStepExecution(jobExecution *JobExecution, stepName string) *StepExecution {
	now := time.Now()
	se := &StepExecution{
		ID:               NewID(),
		StepName:         stepName,
		JobExecution:     jobExecution,
		JobExecutionID:   jobExecution.ID,
		StartTime:        now,
		Status:           BatchStatusStarting,
		ExitStatus:       ExitStatusUnknown,
		Failures:         make(FailureList, 0),
		ExecutionContext: NewExecutionContext(),
		LastUpdated:      now,
	}
	jobExecution.StepExecutions = append(jobExecution.StepExecutions, se)
	return se
}

func isValidTransition(current, next JobStatus) bool {
	switch current {
	case BatchStatusStarting:
		return next == BatchStatusStarted || next == BatchStatusFailed || next == BatchStatusStopped
	case BatchStatusStarted:
		return next == BatchStatusCompleted || next == BatchStatusFailed || next == BatchStatusStopped
	default:
		return false
	}
}

// TransitionTo changes the status when the transition is legal.
func (je *JobExecution) TransitionTo(newStatus JobStatus) error {
	if !isValidTransition(je.Status, newStatus) {
		return fmt.Errorf("JobExecution (ID: %s): invalid state transition: %s -> %s", je.ID, je.Status, newStatus)
	}
	je.Status = newStatus
	je.LastUpdated = time.Now()
	return nil
}

// MarkAsStarted updates the JobExecution status to STARTED.
func (je *JobExecution) MarkAsStarted() {
	if err := je.TransitionTo(BatchStatusStarted); err != nil {
		logger.Warnf("Could not update JobExecution status to STARTED: %v", err)
		je.Status = BatchStatusStarted
	}
}

// MarkAsCompleted updates the JobExecution status to COMPLETED.
func (je *JobExecution) MarkAsCompleted() {
	if err := je.TransitionTo(BatchStatusCompleted); err != nil {
		logger.Warnf("Could not update JobExecution status to COMPLETED: %v", err)
		je.Status = BatchStatusCompleted
	}
	je.ExitStatus = ExitStatusCompleted
	je.end()
}

// MarkAsFailed updates the JobExecution status to FAILED and records err.
func (je *JobExecution) MarkAsFailed(err error) {
	if terr := je.TransitionTo(BatchStatusFailed); terr != nil {
		logger.Warnf("Could not update JobExecution status to FAILED: %v", terr)
		je.Status = BatchStatusFailed
	}
	je.ExitStatus = ExitStatusFailed
	je.end()
	je.AddFailureException(err)
}

// MarkAsStopped updates the JobExecution status to STOPPED.
func (je *JobExecution) MarkAsStopped() {
	if err := je.TransitionTo(BatchStatusStopped); err != nil {
		logger.Warnf("Could not update JobExecution status to STOPPED: %v", err)
		je.Status = BatchStatusStopped
	}
	je.ExitStatus = ExitStatusStopped
	je.end()
}

func (je *JobExecution) end() {
	now := time.Now()
	je.EndTime = &now
	je.LastUpdated = now
}

// AddFailureException records the error message once.
func (je *JobExecution) AddFailureException(err error) {
	je.Failures = appendFailure(je.Failures, err)
}

// Duration returns the elapsed run time, or the time since start if still running.
func (je *JobExecution) Duration() time.Duration {
	if je.EndTime == nil {
		return time.Since(je.StartTime)
	}
	return je.EndTime.Sub(je.StartTime)
}

// TransitionTo changes the status when the transition is legal.
func (se *StepExecution) TransitionTo(newStatus JobStatus) error {
	if !isValidTransition(se.Status, newStatus) {
		return fmt.Errorf("StepExecution (ID: %s): invalid state transition: %s -> %s", se.ID, se.Status, newStatus)
	}
	se.Status = newStatus
	se.LastUpdated = time.Now()
	return nil
}

// MarkAsStarted updates the StepExecution status to STARTED.
func (se *StepExecution) MarkAsStarted() {
	if err := se.TransitionTo(BatchStatusStarted); err != nil {
		logger.Warnf("Could not update StepExecution status to STARTED: %v", err)
		se.Status = BatchStatusStarted
	}
}

// MarkAsCompleted updates the StepExecution status to COMPLETED.
func (se *StepExecution) MarkAsCompleted() {
	if err := se.TransitionTo(BatchStatusCompleted); err != nil {
		logger.Warnf("Could not update StepExecution status to COMPLETED: %v", err)
		se.Status = BatchStatusCompleted
	}
	se.ExitStatus = ExitStatusCompleted
	se.end()
}

// MarkAsFailed updates the StepExecution status to FAILED and records err.
func (se *StepExecution) MarkAsFailed(err error) {
	if terr := se.TransitionTo(BatchStatusFailed); terr != nil {
		logger.Warnf("Could not update StepExecution status to FAILED: %v", terr)
		se.Status = BatchStatusFailed
	}
	se.ExitStatus = ExitStatusFailed
	se.end()
	se.AddFailureException(err)
}

func (se *StepExecution) end() {
	now := time.Now()
	se.EndTime = &now
	se.LastUpdated = now
}

// AddFailureException records the error message once.
func (se *StepExecution) AddFailureException(err error) {
	se.Failures = appendFailure(se.Failures, err)
}

func appendFailure(list FailureList, err error) FailureList {
	if err == nil {
		return list
	}
	msg := exception.ExtractErrorMessage(err)
	for _, existing := range list {
		if existing == msg {
			return list
		}
	}
	return append(list, msg)
}
