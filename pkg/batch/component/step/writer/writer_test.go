package writer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go/parquet"

	dbconfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/config"
	gormadapter "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/gorm"
	_ "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/gorm/sqlite"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/storage"
	storageConfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/storage/config"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/storage/local"
	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
)

type reading struct {
	ID    int32   `parquet:"name=id, type=INT32" gorm:"column:id;primaryKey"`
	Probe string  `parquet:"name=probe, type=BYTE_ARRAY, convertedtype=UTF8" gorm:"column:probe"`
	Value float32 `parquet:"name=value, type=FLOAT" gorm:"column:value"`
}

func localConn(t *testing.T) (string, storage.StorageConnection) {
	t.Helper()
	dir := t.TempDir()
	conn, err := local.NewLocalAdapter(storageConfig.StorageConfig{Type: local.ProviderType, BaseDir: dir}, "out")
	require.NoError(t, err)
	return dir, conn
}

func TestNewParquetWriter_Validation(t *testing.T) {
	_, conn := localConn(t)

	_, err := NewParquetWriter[reading]("w", map[string]interface{}{}, conn, nil)
	assert.ErrorContains(t, err, "objectName")

	_, err = NewParquetWriter[reading]("w", map[string]interface{}{"objectName": "a.parquet", "compressionType": "LZMA"}, conn, nil)
	assert.ErrorContains(t, err, "Invalid compression type")

	_, err = NewParquetWriter[reading]("w", map[string]interface{}{"objectName": "a.parquet"}, nil, nil)
	assert.Error(t, err)

	w, err := NewParquetWriter[reading]("w", map[string]interface{}{"objectName": "a.parquet"}, conn, nil)
	require.NoError(t, err)
	assert.Equal(t, "SNAPPY", w.config.CompressionType)
	assert.Equal(t, "out", w.GetTargetName())
	assert.Equal(t, "a.parquet", w.GetTableName())
}

func TestGetCompressionCodec(t *testing.T) {
	c, err := getCompressionCodec("gzip")
	require.NoError(t, err)
	assert.Equal(t, parquet.CompressionCodec_GZIP, c)

	c, err = getCompressionCodec("")
	require.NoError(t, err)
	assert.Equal(t, parquet.CompressionCodec_UNCOMPRESSED, c)
}

func TestParquetWriter_CloseUploadsOnlyOnClose(t *testing.T) {
	dir, conn := localConn(t)
	ctx := context.Background()

	w, err := NewParquetWriter[reading]("w", map[string]interface{}{"objectName": "r.parquet", "compressionType": "NONE"}, conn, nil)
	require.NoError(t, err)
	require.NoError(t, w.Open(ctx, model.NewExecutionContext()))
	require.NoError(t, w.Write(ctx, []reading{{ID: 1, Probe: "S1", Value: 20.5}, {ID: 2, Probe: "S2", Value: 21}}))
	assert.Equal(t, 2, w.Buffered())
	assert.NoFileExists(t, filepath.Join(dir, "r.parquet"))

	w.PutMetadata("files", "[]")
	w.PutMetadata("files", `[{"key":"file_0"}]`)
	require.Len(t, w.metadata, 1)

	require.NoError(t, w.Close(ctx))
	assert.FileExists(t, filepath.Join(dir, "r.parquet"))
	assert.Zero(t, w.Buffered())
}

func TestParquetWriter_AbortWritesNothing(t *testing.T) {
	dir, conn := localConn(t)
	ctx := context.Background()

	w, err := NewParquetWriter[reading]("w", map[string]interface{}{"objectName": "r.parquet"}, conn, nil)
	require.NoError(t, err)
	require.NoError(t, w.Open(ctx, nil))
	require.NoError(t, w.Write(ctx, []reading{{ID: 1}}))
	w.Abort()
	require.NoError(t, w.Close(ctx))
	assert.NoFileExists(t, filepath.Join(dir, "r.parquet"))
}

func TestGormWriter_RecreatesTableOnOpen(t *testing.T) {
	ctx := context.Background()
	cfg := dbconfig.DatabaseConfig{Type: "sqlite", Database: filepath.Join(t.TempDir(), "w.db")}
	db, err := gormadapter.Open(cfg)
	require.NoError(t, err)
	conn, err := gormadapter.NewGormDBAdapter(db, cfg, "export")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	w := NewGormWriter[reading]("readings", conn, "readings", 2)
	assert.Equal(t, "export", w.GetTargetName())
	assert.Equal(t, "readings", w.GetTableName())

	require.NoError(t, w.Open(ctx, model.NewExecutionContext()))
	require.NoError(t, w.Write(ctx, []reading{{ID: 1, Probe: "S1"}, {ID: 2, Probe: "S2"}, {ID: 3, Probe: "S3"}}))
	require.NoError(t, w.Write(ctx, nil))
	require.NoError(t, w.Close(ctx))
	assert.EqualValues(t, 3, w.Written())

	var n int64
	require.NoError(t, db.Table("readings").Count(&n).Error)
	assert.EqualValues(t, 3, n)

	require.NoError(t, w.Open(ctx, model.NewExecutionContext()))
	require.NoError(t, w.Write(ctx, []reading{{ID: 7, Probe: "S7"}}))
	require.NoError(t, w.Close(ctx))

	require.NoError(t, db.Table("readings").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}
