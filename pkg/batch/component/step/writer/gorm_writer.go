package writer

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Yognotiano/TESIS/pkg/batch/adapter/database"
	"github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// DefaultBulkSize is the chunk size used when a GormWriter is created with bulkSize <= 0.
const DefaultBulkSize = 500

// GormWriter is an implementation of [port.ItemWriter] that inserts items into one table
// through gorm. Open recreates the table from the item type, so every run starts empty.
type GormWriter[T any] struct {
	name                 string
	conn                 database.DBConnection
	tableName            string
	bulkSize             int
	written              int64
	stepExecutionContext model.ExecutionContext
}

// NewGormWriter creates a new instance of [GormWriter].
//
// Parameters:
//
//	name: A unique name for this writer instance.
//	conn: The database connection written to.
//	tableName: The target table. It is dropped and recreated on Open.
//	bulkSize: The maximum number of rows per INSERT statement.
func NewGormWriter[T any](name string, conn database.DBConnection, tableName string, bulkSize int) *GormWriter[T] {
	if bulkSize <= 0 {
		bulkSize = DefaultBulkSize
	}
	return &GormWriter[T]{
		name:      name,
		conn:      conn,
		tableName: tableName,
		bulkSize:  bulkSize,
	}
}

// Verify that [GormWriter] implements the [port.ItemWriter] interface at compile time.
var _ port.ItemWriter[any] = (*GormWriter[any])(nil)

func (w *GormWriter[T]) db(ctx context.Context) *gorm.DB {
	return w.conn.DB().WithContext(ctx).Table(w.tableName)
}

// Open drops the target table if it exists and creates it from T.
func (w *GormWriter[T]) Open(ctx context.Context, ec model.ExecutionContext) error {
	w.stepExecutionContext = ec
	w.written = 0

	if err := w.conn.DB().WithContext(ctx).Migrator().DropTable(w.tableName); err != nil {
		return exception.NewBatchError("writer", fmt.Sprintf("GormWriter '%s': failed to drop table '%s'", w.name, w.tableName), err, false, false)
	}
	if err := w.db(ctx).AutoMigrate(new(T)); err != nil {
		return exception.NewBatchError("writer", fmt.Sprintf("GormWriter '%s': failed to create table '%s'", w.name, w.tableName), err, false, false)
	}
	logger.Debugf("GormWriter '%s': recreated table '%s' on '%s'.", w.name, w.tableName, w.conn.Name())
	return nil
}

// Write inserts items in chunks of bulkSize inside one transaction.
func (w *GormWriter[T]) Write(ctx context.Context, items []T) error {
	if len(items) == 0 {
		return nil
	}
	err := w.conn.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Table(w.tableName).CreateInBatches(items, w.bulkSize).Error
	})
	if err != nil {
		return exception.NewBatchError("writer", fmt.Sprintf("GormWriter '%s': failed to insert %d rows into '%s'", w.name, len(items), w.tableName), err, false, false)
	}
	w.written += int64(len(items))
	logger.Debugf("GormWriter '%s': wrote %d rows (%d total).", w.name, len(items), w.written)
	return nil
}

// Close logs the row count. The connection itself belongs to its provider and stays open.
func (w *GormWriter[T]) Close(ctx context.Context) error {
	logger.Debugf("GormWriter '%s': closed after %d rows into '%s'.", w.name, w.written, w.tableName)
	return nil
}

// Written returns the number of rows inserted since Open.
func (w *GormWriter[T]) Written() int64 {
	return w.written
}

// SetExecutionContext sets the [model.ExecutionContext] for the writer.
func (w *GormWriter[T]) SetExecutionContext(ctx context.Context, ec model.ExecutionContext) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	w.stepExecutionContext = ec
	return nil
}

// GetExecutionContext returns the [model.ExecutionContext] given on Open or SetExecutionContext.
func (w *GormWriter[T]) GetExecutionContext(ctx context.Context) (model.ExecutionContext, error) {
	return w.stepExecutionContext, nil
}

// GetTargetName returns the database connection name.
func (w *GormWriter[T]) GetTargetName() string {
	return w.conn.Name()
}

// GetTableName returns the target table name.
func (w *GormWriter[T]) GetTableName() string {
	return w.tableName
}
