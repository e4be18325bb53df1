// Package storage defines the storage adapter interfaces used to persist and mirror artifacts.
package storage

import (
	"context"
	"io"

	coreAdapter "github.com/Yognotiano/TESIS/pkg/batch/core/adapter"
)

// StorageExecutor defines object operations on a storage backend.
type StorageExecutor interface {
	// Upload writes data to bucket/objectName, replacing any existing object.
	Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error
	// Download opens bucket/objectName for reading. The caller must close the reader.
	Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error)
	// ListObjects calls fn for each object under prefix.
	ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error
	// DeleteObject deletes bucket/objectName. Deleting a missing object is not an error.
	DeleteObject(ctx context.Context, bucket, objectName string) error
}

// StorageConnection is a named storage backend.
type StorageConnection interface {
	coreAdapter.ResourceConnection
	StorageExecutor
}

// StorageProvider creates and caches connections of one backend type.
type StorageProvider interface {
	// GetConnection returns the connection configured under adapter.storage.<name>.
	GetConnection(name string) (StorageConnection, error)
	// CloseAll closes every cached connection.
	CloseAll() error
	// Type returns the backend type this provider handles.
	Type() string
}

// StorageConnectionResolver picks the provider for a named connection.
type StorageConnectionResolver interface {
	ResolveStorageConnection(ctx context.Context, name string) (StorageConnection, error)
}

// ProviderGroup is the fx value group storage providers are collected into.
const ProviderGroup = `group:"storage_providers"`
