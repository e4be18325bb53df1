// Package repository defines persistence of job and step execution metadata.
package repository

// JobRepository persists batch execution metadata.
type JobRepository interface {
	JobExecution
	StepExecution

	// Close releases resources used by the repository.
	Close() error
}
