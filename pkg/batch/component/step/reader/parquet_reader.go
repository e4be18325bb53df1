// Package reader provides item readers over Parquet objects and database tables.
package reader

import (
	"context"
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go-source/buffer"
	pqreader "github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"

	"github.com/Yognotiano/TESIS/pkg/batch/adapter/storage"
	"github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// ParquetReader reads every row of one Parquet object into memory on Open and
// hands them out one at a time. Footer key/value metadata is available after Open.
type ParquetReader[T any] struct {
	name       string
	conn       storage.StorageConnection
	objectName string

	items    []T
	pos      int
	metadata map[string]string
	ec       model.ExecutionContext
}

// NewParquetReader creates a reader for objectName on conn.
func NewParquetReader[T any](name string, conn storage.StorageConnection, objectName string) *ParquetReader[T] {
	return &ParquetReader[T]{name: name, conn: conn, objectName: objectName}
}

// Open downloads and decodes the object.
func (r *ParquetReader[T]) Open(ctx context.Context, ec model.ExecutionContext) error {
	r.ec = ec
	r.items = nil
	r.pos = 0
	r.metadata = make(map[string]string)

	rc, err := r.conn.Download(ctx, "", r.objectName)
	if err != nil {
		return exception.NewBatchError("reader", fmt.Sprintf("ParquetReader '%s': failed to open '%s'", r.name, r.objectName), err, false, false)
	}
	data, err := io.ReadAll(rc)
	closeErr := rc.Close()
	if err != nil {
		return exception.NewBatchError("reader", fmt.Sprintf("ParquetReader '%s': failed to read '%s'", r.name, r.objectName), err, false, false)
	}
	if closeErr != nil {
		logger.Warnf("ParquetReader '%s': closing '%s' failed: %v", r.name, r.objectName, closeErr)
	}

	pf, err := buffer.NewBufferFile(data)
	if err != nil {
		return exception.NewBatchError("reader", fmt.Sprintf("ParquetReader '%s': failed to buffer '%s'", r.name, r.objectName), err, false, false)
	}
	defer pf.Close()

	items, metadata, err := decode[T](pf, r.objectName)
	if err != nil {
		return exception.NewBatchError("reader", fmt.Sprintf("ParquetReader '%s': failed to decode '%s'", r.name, r.objectName), err, false, false)
	}
	r.items = items
	r.metadata = metadata
	logger.Debugf("ParquetReader '%s': loaded %d rows from '%s'.", r.name, len(items), r.objectName)
	return nil
}

func decode[T any](pf source.ParquetFile, objectName string) (items []T, metadata map[string]string, err error) {
	// The library panics on some corrupt footers.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("parquet reader panicked on '%s': %v", objectName, rec)
		}
	}()

	pr, err := pqreader.NewParquetReader(pf, new(T), 1)
	if err != nil {
		return nil, nil, err
	}
	defer pr.ReadStop()

	metadata = make(map[string]string)
	for _, kv := range pr.Footer.KeyValueMetadata {
		if kv == nil || kv.Value == nil {
			continue
		}
		metadata[kv.Key] = *kv.Value
	}

	n := int(pr.GetNumRows())
	items = make([]T, n)
	if n > 0 {
		if err := pr.Read(&items); err != nil {
			return nil, nil, err
		}
	}
	return items, metadata, nil
}

// Read returns the next row or port.ErrNoMoreItems.
func (r *ParquetReader[T]) Read(ctx context.Context) (T, error) {
	var zero T
	if r.pos >= len(r.items) {
		return zero, port.ErrNoMoreItems
	}
	item := r.items[r.pos]
	r.pos++
	return item, nil
}

// Close drops the loaded rows.
func (r *ParquetReader[T]) Close(ctx context.Context) error {
	r.items = nil
	return nil
}

// Len returns the number of rows loaded by Open.
func (r *ParquetReader[T]) Len() int {
	return len(r.items)
}

// Metadata returns the footer key/value pairs.
func (r *ParquetReader[T]) Metadata() map[string]string {
	return r.metadata
}

// GetExecutionContext returns the ExecutionContext given on Open.
func (r *ParquetReader[T]) GetExecutionContext(ctx context.Context) (model.ExecutionContext, error) {
	return r.ec, nil
}

// SetExecutionContext stores ec.
func (r *ParquetReader[T]) SetExecutionContext(ctx context.Context, ec model.ExecutionContext) error {
	r.ec = ec
	return nil
}

var _ port.ItemReader[any] = (*ParquetReader[any])(nil)
