// Package gcs provides a Google Cloud Storage implementation of the storage adapter interfaces.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	gcstorage "cloud.google.com/go/storage"
	"github.com/hashicorp/go-multierror"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	storageAdapter "github.com/Yognotiano/TESIS/pkg/batch/adapter/storage"
	storageConfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/storage/config"
	coreConfig "github.com/Yognotiano/TESIS/pkg/batch/core/config"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// ProviderType defines the type identifier for this storage provider.
const ProviderType = "gcs"

type gcsAdapter struct {
	client *gcstorage.Client
	cfg    storageConfig.StorageConfig
	name   string
}

var _ storageAdapter.StorageConnection = (*gcsAdapter)(nil)

// NewGCSAdapter opens a client using cfg.CredentialsFile, or application default credentials when empty.
func NewGCSAdapter(ctx context.Context, cfg storageConfig.StorageConfig, name string, opts ...option.ClientOption) (storageAdapter.StorageConnection, error) {
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := gcstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs storage adapter '%s': failed to create client: %w", name, err)
	}
	return &gcsAdapter{client: client, cfg: cfg, name: name}, nil
}

func (a *gcsAdapter) Close() error {
	return a.client.Close()
}

func (a *gcsAdapter) Type() string {
	return ProviderType
}

func (a *gcsAdapter) Name() string {
	return a.name
}

func (a *gcsAdapter) bucket(bucket string) (*gcstorage.BucketHandle, error) {
	if bucket == "" {
		bucket = a.cfg.BucketName
	}
	if bucket == "" {
		return nil, fmt.Errorf("gcs storage adapter '%s': no bucket given and bucket_name not configured", a.name)
	}
	return a.client.Bucket(bucket), nil
}

// Upload streams data into a new object generation. The object becomes visible only when the writer closes.
func (a *gcsAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	b, err := a.bucket(bucket)
	if err != nil {
		return err
	}
	w := b.Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to upload gs object '%s': %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize gs object '%s': %w", objectName, err)
	}
	logger.Debugf("Uploaded gs object '%s' (gcs adapter '%s').", objectName, a.name)
	return nil
}

func (a *gcsAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	b, err := a.bucket(bucket)
	if err != nil {
		return nil, err
	}
	r, err := b.Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs object '%s': %w", objectName, err)
	}
	return r, nil
}

func (a *gcsAdapter) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	b, err := a.bucket(bucket)
	if err != nil {
		return err
	}
	it := b.Objects(ctx, &gcstorage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list gs objects with prefix '%s': %w", prefix, err)
		}
		if err := fn(attrs.Name); err != nil {
			return err
		}
	}
}

func (a *gcsAdapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	b, err := a.bucket(bucket)
	if err != nil {
		return err
	}
	if err := b.Object(objectName).Delete(ctx); err != nil {
		if errors.Is(err, gcstorage.ErrObjectNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete gs object '%s': %w", objectName, err)
	}
	return nil
}

// GCSProvider creates GCS connections from adapter.storage.<name> entries.
type GCSProvider struct {
	cfg         *coreConfig.Config
	connections map[string]storageAdapter.StorageConnection
	mu          sync.Mutex
}

// NewGCSProvider creates a new GCSProvider.
func NewGCSProvider(cfg *coreConfig.Config) storageAdapter.StorageProvider {
	return &GCSProvider{cfg: cfg, connections: make(map[string]storageAdapter.StorageConnection)}
}

func (p *GCSProvider) GetConnection(name string) (storageAdapter.StorageConnection, error) {
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
	conn, err := NewGCSAdapter(context.Background(), sc, name)
	if err != nil {
		return nil, err
	}
	p.connections[name] = conn
	return conn, nil
}

func (p *GCSProvider) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var result error
	for name, conn := range p.connections {
		if err := conn.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close gcs connection '%s': %w", name, err))
		}
		delete(p.connections, name)
	}
	return result
}

func (p *GCSProvider) Type() string {
	return ProviderType
}
