// Package local provides a local file system implementation of the storage adapter interfaces.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	storageAdapter "github.com/Yognotiano/TESIS/pkg/batch/adapter/storage"
	storageConfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/storage/config"
	coreConfig "github.com/Yognotiano/TESIS/pkg/batch/core/config"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// ProviderType defines the type identifier for this local storage provider.
const ProviderType = "local"

// localAdapter implements storage.StorageConnection on a directory tree.
type localAdapter struct {
	cfg  storageConfig.StorageConfig
	name string
}

var _ storageAdapter.StorageConnection = (*localAdapter)(nil)

// NewLocalAdapter creates a localAdapter rooted at cfg.BaseDir, creating the directory if needed.
func NewLocalAdapter(cfg storageConfig.StorageConfig, name string) (storageAdapter.StorageConnection, error) {
	if cfg.BaseDir == "" {
		return nil, fmt.Errorf("local storage adapter '%s': BaseDir must be specified in configuration", name)
	}
	info, err := os.Stat(cfg.BaseDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
			return nil, fmt.Errorf("local storage adapter '%s': failed to create BaseDir '%s': %w", name, cfg.BaseDir, err)
		}
	case err != nil:
		return nil, fmt.Errorf("local storage adapter '%s': failed to stat BaseDir '%s': %w", name, cfg.BaseDir, err)
	case !info.IsDir():
		return nil, fmt.Errorf("local storage adapter '%s': BaseDir '%s' is not a directory", name, cfg.BaseDir)
	}
	return &localAdapter{cfg: cfg, name: name}, nil
}

// Close is a no-op; the adapter holds no open handles between calls.
func (a *localAdapter) Close() error {
	return nil
}

// Type returns "local".
func (a *localAdapter) Type() string {
	return ProviderType
}

// Name returns the name of this connection.
func (a *localAdapter) Name() string {
	return a.name
}

// Upload writes data next to the target under a temporary name and renames it into place,
// so readers never observe a partially written object.
func (a *localAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) (err error) {
	fullPath, err := a.resolvePath(bucket, objectName)
	if err != nil {
		return fmt.Errorf("failed to resolve path for upload: %w", err)
	}
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}
	if info, statErr := os.Stat(fullPath); statErr == nil && info.IsDir() {
		return fmt.Errorf("cannot replace directory '%s' with a file", fullPath)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in '%s': %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = io.Copy(tmp, data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write data to '%s': %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync '%s': %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close '%s': %w", tmpName, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod '%s': %w", tmpName, err)
	}
	if err = os.Rename(tmpName, fullPath); err != nil {
		return fmt.Errorf("failed to move '%s' into place: %w", fullPath, err)
	}
	logger.Debugf("Uploaded data to '%s' (local adapter '%s').", fullPath, a.name)
	return nil
}

// Download opens the object for reading.
func (a *localAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	fullPath, err := a.resolvePath(bucket, objectName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path for download: %w", err)
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file '%s': %w", fullPath, err)
	}
	return file, nil
}

// ListObjects walks the bucket directory and reports files whose relative path starts with prefix.
func (a *localAdapter) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	basePath, err := a.resolvePath(bucket, "")
	if err != nil {
		return fmt.Errorf("failed to resolve base path for listing: %w", err)
	}
	err = filepath.WalkDir(basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		objectName, err := filepath.Rel(basePath, path)
		if err != nil {
			return err
		}
		objectName = filepath.ToSlash(objectName)
		if !strings.HasPrefix(objectName, prefix) {
			return nil
		}
		return fn(objectName)
	})
	if err != nil {
		return fmt.Errorf("failed to list objects in '%s' with prefix '%s': %w", basePath, prefix, err)
	}
	return nil
}

// DeleteObject removes the object. A missing object is logged and ignored.
func (a *localAdapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	fullPath, err := a.resolvePath(bucket, objectName)
	if err != nil {
		return fmt.Errorf("failed to resolve path for delete: %w", err)
	}
	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debugf("Attempted to delete non-existent object '%s' (local adapter '%s').", fullPath, a.name)
			return nil
		}
		return fmt.Errorf("failed to delete file '%s': %w", fullPath, err)
	}
	return nil
}

// resolvePath joins BaseDir, bucket and objectName and refuses paths that escape BaseDir.
func (a *localAdapter) resolvePath(bucket, objectName string) (string, error) {
	if bucket == "" {
		bucket = a.cfg.BucketName
	}
	fullPath := filepath.Join(a.cfg.BaseDir, bucket, objectName)

	absBaseDir, err := filepath.Abs(a.cfg.BaseDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for BaseDir '%s': %w", a.cfg.BaseDir, err)
	}
	absFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", fullPath, err)
	}
	rel, err := filepath.Rel(absBaseDir, absFullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("resolved path '%s' is outside of BaseDir '%s'", fullPath, a.cfg.BaseDir)
	}
	return fullPath, nil
}

// LocalProvider creates local connections from adapter.storage.<name> entries.
type LocalProvider struct {
	cfg         *coreConfig.Config
	connections map[string]storageAdapter.StorageConnection
	mu          sync.Mutex
}

// NewLocalProvider creates a new LocalProvider.
func NewLocalProvider(cfg *coreConfig.Config) storageAdapter.StorageProvider {
	return &LocalProvider{
		cfg:         cfg,
		connections: make(map[string]storageAdapter.StorageConnection),
	}
}

// GetConnection returns the cached connection for name or creates it.
func (p *LocalProvider) GetConnection(name string) (storageAdapter.StorageConnection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if conn, ok := p.connections[name]; ok {
		return conn, nil
	}

	var sc storageConfig.StorageConfig
	if err := p.cfg.DecodeAdapterConfig("storage", name, &sc); err != nil {
		return nil, err
	}
	if sc.Type != ProviderType {
		return nil, fmt.Errorf("storage config type mismatch for '%s': expected '%s', got '%s'", name, ProviderType, sc.Type)
	}
	expanded, err := coreConfig.NewOsEnvironmentExpander().ExpandPath(sc.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand BaseDir for '%s': %w", name, err)
	}
	sc.BaseDir = expanded

	conn, err := NewLocalAdapter(sc, name)
	if err != nil {
		return nil, err
	}
	p.connections[name] = conn
	logger.Debugf("Created new local storage connection '%s' at '%s'.", name, sc.BaseDir)
	return conn, nil
}

// CloseAll closes all connections managed by this provider.
func (p *LocalProvider) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var result error
	for name, conn := range p.connections {
		if err := conn.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close local storage connection '%s': %w", name, err))
		}
		delete(p.connections, name)
	}
	return result
}

// Type returns "local".
func (p *LocalProvider) Type() string {
	return ProviderType
}
