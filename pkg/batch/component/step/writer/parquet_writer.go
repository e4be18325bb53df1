package writer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/Yognotiano/TESIS/pkg/batch/adapter/storage"
	"github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// ParquetWriterConfig holds the configuration for ParquetWriter.
type ParquetWriterConfig struct {
	// ObjectName is the object (file name) written on the storage connection.
	ObjectName string `mapstructure:"objectName"`
	// CompressionType is the compression type for Parquet files (e.g., "SNAPPY", "GZIP", "NONE").
	CompressionType string `mapstructure:"compressionType"`
}

type keyValue struct {
	key   string
	value string
}

// ParquetWriter implements port.ItemWriter by buffering items and writing them as a single
// Parquet object on Close. Footer key/value metadata added with PutMetadata is written alongside.
type ParquetWriter[T any] struct {
	name   string
	config *ParquetWriterConfig
	conn   storage.StorageConnection
	// itemPrototype is a pointer to a zero-value instance of the item type, used for Parquet schema reflection.
	itemPrototype *T

	bufferedItems        []T
	metadata             []keyValue
	aborted              bool
	stepExecutionContext model.ExecutionContext
}

// NewParquetWriter creates a new instance of ParquetWriter.
//
// Parameters:
//
//	name: The unique name of the writer.
//	properties: Configuration properties for the writer (objectName, compressionType).
//	conn: The storage connection the object is uploaded to.
//	itemPrototype: A prototype instance of the item type for schema reflection.
func NewParquetWriter[T any](
	name string,
	properties map[string]interface{},
	conn storage.StorageConnection,
	itemPrototype *T,
) (*ParquetWriter[T], error) {
	var config ParquetWriterConfig
	if err := mapstructure.Decode(properties, &config); err != nil {
		return nil, exception.NewBatchError(
			"writer",
			fmt.Sprintf("Failed to decode ParquetWriter properties for %s: %v", name, err),
			err,
			false,
			false,
		)
	}
	if config.ObjectName == "" {
		return nil, exception.NewBatchError(
			"writer",
			fmt.Sprintf("ParquetWriter '%s' requires 'objectName' property.", name),
			nil,
			false,
			false,
		)
	}
	if conn == nil {
		return nil, exception.NewBatchErrorf("writer", "ParquetWriter '%s' requires a storage connection.", name)
	}
	if config.CompressionType == "" {
		config.CompressionType = "SNAPPY"
	}
	if _, err := getCompressionCodec(config.CompressionType); err != nil {
		return nil, exception.NewBatchError(
			"writer",
			fmt.Sprintf("Invalid compression type '%s' for ParquetWriter '%s': %v", config.CompressionType, name, err),
			err,
			false,
			false,
		)
	}
	if itemPrototype == nil {
		itemPrototype = new(T)
	}

	return &ParquetWriter[T]{
		name:          name,
		config:        &config,
		conn:          conn,
		itemPrototype: itemPrototype,
	}, nil
}

// Open stores the execution context and clears internal buffers.
func (w *ParquetWriter[T]) Open(ctx context.Context, ec model.ExecutionContext) error {
	w.stepExecutionContext = ec
	w.bufferedItems = nil
	w.metadata = nil
	w.aborted = false
	logger.Debugf("ParquetWriter '%s' opened. Target: %s/%s", w.name, w.conn.Name(), w.config.ObjectName)
	return nil
}

// Write accumulates items into the internal buffer. Nothing reaches storage before Close.
func (w *ParquetWriter[T]) Write(ctx context.Context, items []T) error {
	w.bufferedItems = append(w.bufferedItems, items...)
	return nil
}

// PutMetadata adds a footer key/value pair. Keys are written in insertion order; a repeated key
// replaces the earlier value.
func (w *ParquetWriter[T]) PutMetadata(key, value string) {
	for i := range w.metadata {
		if w.metadata[i].key == key {
			w.metadata[i].value = value
			return
		}
	}
	w.metadata = append(w.metadata, keyValue{key: key, value: value})
}

// Buffered returns the number of items waiting for Close.
func (w *ParquetWriter[T]) Buffered() int {
	return len(w.bufferedItems)
}

// Abort discards buffered items. A following Close writes nothing.
func (w *ParquetWriter[T]) Abort() {
	w.bufferedItems = nil
	w.metadata = nil
	w.aborted = true
}

// Close encodes the buffered items into one Parquet object and uploads it, replacing any
// existing object of the same name. An empty buffer still produces a valid file with the schema.
func (w *ParquetWriter[T]) Close(ctx context.Context) error {
	if w.aborted {
		logger.Debugf("ParquetWriter '%s': aborted, nothing written.", w.name)
		return nil
	}

	compressionCodec, _ := getCompressionCodec(w.config.CompressionType)
	buf := new(bytes.Buffer)

	pw, err := writer.NewParquetWriterFromWriter(buf, w.itemPrototype, 1)
	if err != nil {
		return exception.NewBatchError(
			"writer",
			fmt.Sprintf("Failed to create Parquet writer in ParquetWriter '%s': %v", w.name, err),
			err,
			false,
			false,
		)
	}
	pw.CompressionType = compressionCodec

	var multiErr error
	for _, item := range w.bufferedItems {
		if err := pw.Write(item); err != nil {
			multiErr = multierror.Append(multiErr, exception.NewBatchError(
				"writer",
				fmt.Sprintf("Failed to write item to Parquet in ParquetWriter '%s': %v", w.name, err),
				err,
				false,
				false,
			))
			break
		}
	}

	for i := range w.metadata {
		kv := w.metadata[i]
		value := kv.value
		pw.Footer.KeyValueMetadata = append(pw.Footer.KeyValueMetadata, &parquet.KeyValue{Key: kv.key, Value: &value})
	}

	// WriteStop may panic on schema problems inside the library.
	func() {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("parquet writer panicked during WriteStop in ParquetWriter '%s': %v", w.name, r)
				multiErr = multierror.Append(multiErr, exception.NewBatchError("writer", err.Error(), err, false, false))
				logger.Errorf("ParquetWriter '%s': Recovered from panic during WriteStop: %v", w.name, r)
			}
		}()
		if err := pw.WriteStop(); err != nil {
			multiErr = multierror.Append(multiErr, exception.NewBatchError(
				"writer",
				fmt.Sprintf("Failed to stop Parquet writer in ParquetWriter '%s': %v", w.name, err),
				err,
				false,
				false,
			))
		}
	}()
	if multiErr != nil {
		return multiErr
	}

	logger.Debugf("ParquetWriter '%s': Uploading %d bytes (%d rows) to %s/%s", w.name, buf.Len(), len(w.bufferedItems), w.conn.Name(), w.config.ObjectName)
	if err := w.conn.Upload(ctx, "", w.config.ObjectName, buf, "application/octet-stream"); err != nil {
		return exception.NewBatchError(
			"writer",
			fmt.Sprintf("Failed to upload Parquet file '%s' in ParquetWriter '%s': %v", w.config.ObjectName, w.name, err),
			err,
			false,
			false,
		)
	}

	w.bufferedItems = nil
	return nil
}

// getCompressionCodec returns the Parquet compression codec from a string.
func getCompressionCodec(compressionType string) (parquet.CompressionCodec, error) {
	switch strings.ToUpper(compressionType) {
	case "SNAPPY":
		return parquet.CompressionCodec_SNAPPY, nil
	case "GZIP":
		return parquet.CompressionCodec_GZIP, nil
	case "NONE", "": // NONE or empty string means uncompressed
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unsupported compression type: %s", compressionType)
	}
}

// SetExecutionContext sets the execution context for the writer.
func (w *ParquetWriter[T]) SetExecutionContext(ctx context.Context, ec model.ExecutionContext) error {
	w.stepExecutionContext = ec
	return nil
}

// GetExecutionContext returns the execution context last given to the writer.
func (w *ParquetWriter[T]) GetExecutionContext(ctx context.Context) (model.ExecutionContext, error) {
	return w.stepExecutionContext, nil
}

// GetTargetName returns the name of the storage connection this writer uploads to.
func (w *ParquetWriter[T]) GetTargetName() string {
	return w.conn.Name()
}

// GetTableName returns the object name written on Close.
func (w *ParquetWriter[T]) GetTableName() string {
	return w.config.ObjectName
}

// Verify that [ParquetWriter] satisfies the [port.ItemWriter] interface at compile time.
var _ port.ItemWriter[any] = (*ParquetWriter[any])(nil)
