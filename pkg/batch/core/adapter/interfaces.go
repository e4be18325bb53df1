// Package adapter defines what every external resource connection has in common.
package adapter

// ResourceConnection represents a named connection to a storage or database resource.
type ResourceConnection interface {
	// Close closes the resource connection.
	Close() error
	// Type returns the backend type (e.g. "local", "gcs", "sqlite").
	Type() string
	// Name returns the configured connection name.
	Name() string
}
