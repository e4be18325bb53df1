package reader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Yognotiano/TESIS/pkg/batch/adapter/database"
	"github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// GormCursorReader reads a table row by row through a gorm cursor.
// The number of rows read is kept in the ExecutionContext under "<name>.readCount",
// and a reader opened with a non-zero count resumes after that many rows.
type GormCursorReader[T any] struct {
	conn      database.DBConnection
	name      string
	tableName string
	orderBy   string
	rows      *sql.Rows
	readCount int
	ec        model.ExecutionContext
}

// NewGormCursorReader creates a new instance of GormCursorReader.
// orderBy is passed to ORDER BY and must give a stable order for resuming to be meaningful.
func NewGormCursorReader[T any](conn database.DBConnection, name, tableName, orderBy string) *GormCursorReader[T] {
	return &GormCursorReader[T]{
		conn:      conn,
		name:      name,
		tableName: tableName,
		orderBy:   orderBy,
	}
}

func (r *GormCursorReader[T]) readCountKey() string {
	return r.name + ".readCount"
}

// Open executes the query, skipping rows already counted in ec.
func (r *GormCursorReader[T]) Open(ctx context.Context, ec model.ExecutionContext) error {
	if ec == nil {
		ec = model.NewExecutionContext()
	}
	r.ec = ec
	r.readCount = 0
	if n, found := r.ec.GetInt(r.readCountKey()); found {
		r.readCount = n
	}

	q := r.conn.DB().WithContext(ctx).Table(r.tableName)
	if r.orderBy != "" {
		q = q.Order(r.orderBy)
	}
	if r.readCount > 0 {
		q = q.Offset(r.readCount)
		logger.Infof("GormCursorReader '%s': Resuming '%s' from offset %d.", r.name, r.tableName, r.readCount)
	}

	rows, err := q.Rows()
	if err != nil {
		return exception.NewBatchError("reader", fmt.Sprintf("Failed to execute query for GormCursorReader '%s'", r.name), err, false, false)
	}
	r.rows = rows
	return nil
}

// Read returns the next row, or port.ErrNoMoreItems once the cursor is exhausted.
func (r *GormCursorReader[T]) Read(ctx context.Context) (T, error) {
	var item T
	if r.rows == nil {
		return item, exception.NewBatchError("reader", fmt.Sprintf("GormCursorReader '%s': Reader not opened or already closed.", r.name), errors.New("reader not initialized"), false, false)
	}

	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return item, exception.NewBatchError("reader", fmt.Sprintf("Error during row iteration for GormCursorReader '%s'", r.name), err, false, false)
		}
		return item, port.ErrNoMoreItems
	}

	if err := r.conn.DB().Table(r.tableName).ScanRows(r.rows, &item); err != nil {
		return item, exception.NewBatchError("reader", fmt.Sprintf("Failed to map row for GormCursorReader '%s'", r.name), err, false, false)
	}

	r.readCount++
	r.ec.Put(r.readCountKey(), r.readCount)
	return item, nil
}

// Close releases the cursor.
func (r *GormCursorReader[T]) Close(ctx context.Context) error {
	if r.rows != nil {
		err := r.rows.Close()
		r.rows = nil
		if err != nil {
			return exception.NewBatchError("reader", fmt.Sprintf("Failed to close rows for GormCursorReader '%s'", r.name), err, false, false)
		}
	}
	logger.Debugf("GormCursorReader '%s': closed after %d rows.", r.name, r.readCount)
	return nil
}

// GetExecutionContext returns the current ExecutionContext of the reader.
func (r *GormCursorReader[T]) GetExecutionContext(ctx context.Context) (model.ExecutionContext, error) {
	if r.ec == nil {
		return model.NewExecutionContext(), nil
	}
	return r.ec, nil
}

// SetExecutionContext restores the read position from ec.
func (r *GormCursorReader[T]) SetExecutionContext(ctx context.Context, ec model.ExecutionContext) error {
	r.ec = ec
	r.readCount = 0
	if val, found := ec.GetInt(r.readCountKey()); found {
		r.readCount = val
	}
	return nil
}

// ReadAll drains reader into a slice. The reader must already be open.
func ReadAll[T any](ctx context.Context, reader port.ItemReader[T]) ([]T, error) {
	var items []T
	for {
		item, err := reader.Read(ctx)
		if errors.Is(err, port.ErrNoMoreItems) {
			return items, nil
		}
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
}

// Verify that GormCursorReader implements the port.ItemReader interface at compile time.
var _ port.ItemReader[any] = (*GormCursorReader[any])(nil)
