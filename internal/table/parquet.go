package table

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Yognotiano/TESIS/internal/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/storage"
	storageConfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/storage/config"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/storage/local"
	"github.com/Yognotiano/TESIS/pkg/batch/component/step/reader"
	"github.com/Yognotiano/TESIS/pkg/batch/component/step/writer"
	batchModel "github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
)

const artifactConnection = "artifact"

type parquetSink struct {
	path string
	w    *writer.ParquetWriter[model.TempRow]
	side model.SideTables
	rows int
}

func newParquetSink(dir, name, compression string) (*parquetSink, error) {
	conn, err := artifactConn(dir)
	if err != nil {
		return nil, exception.NewFatal("table", exception.ErrOutputCreateFailed, "cannot use output directory", err)
	}
	if err := probeWritable(dir); err != nil {
		return nil, exception.NewFatal("table", exception.ErrOutputCreateFailed,
			fmt.Sprintf("cannot create files in '%s'", dir), err)
	}
	w, err := writer.NewParquetWriter[model.TempRow](name, map[string]interface{}{
		"objectName":      name,
		"compressionType": compression,
	}, conn, nil)
	if err != nil {
		return nil, exception.NewFatal("table", exception.ErrOutputCreateFailed, "cannot configure parquet writer", err)
	}
	if err := w.Open(context.Background(), batchModel.NewExecutionContext()); err != nil {
		return nil, exception.NewFatal("table", exception.ErrOutputCreateFailed, "cannot open parquet writer", err)
	}
	return &parquetSink{path: filepath.Join(dir, name), w: w}, nil
}

func artifactConn(dir string) (storage.StorageConnection, error) {
	return local.NewLocalAdapter(storageConfig.StorageConfig{Type: local.ProviderType, BaseDir: dir}, artifactConnection)
}

func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func (s *parquetSink) Append(ctx context.Context, row model.TempRow) error {
	s.rows++
	return s.w.Write(ctx, []model.TempRow{row})
}

func (s *parquetSink) AddFile(id int32, path string)            { s.side.AddFile(id, path) }
func (s *parquetSink) AddHeader(id int32, h model.HeaderRecord) { s.side.AddHeader(id, h) }
func (s *parquetSink) Rows() int                                { return s.rows }
func (s *parquetSink) Path() string                             { return s.path }

func (s *parquetSink) Close(ctx context.Context) error {
	files, err := json.Marshal(nonNilFiles(s.side.Files))
	if err != nil {
		return exception.NewFatal("table", exception.ErrOutputCreateFailed, "cannot encode files table", err)
	}
	meta, err := json.Marshal(nonNilMeta(s.side.Meta))
	if err != nil {
		return exception.NewFatal("table", exception.ErrOutputCreateFailed, "cannot encode meta table", err)
	}
	s.w.PutMetadata(model.FilesTable, string(files))
	s.w.PutMetadata(model.MetaTable, string(meta))
	if err := s.w.Close(ctx); err != nil {
		return exception.NewFatal("table", exception.ErrOutputCreateFailed,
			fmt.Sprintf("cannot write '%s'", s.path), err)
	}
	return nil
}

func (s *parquetSink) Abort(ctx context.Context) error {
	s.w.Abort()
	return s.w.Close(ctx)
}

func nonNilFiles(f []model.FileEntry) []model.FileEntry {
	if f == nil {
		return []model.FileEntry{}
	}
	return f
}

func nonNilMeta(m []model.MetaEntry) []model.MetaEntry {
	if m == nil {
		return []model.MetaEntry{}
	}
	return m
}

func readParquet(ctx context.Context, path string) (*Table, error) {
	conn, err := artifactConn(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	r := reader.NewParquetReader[model.TempRow](model.TempsTable, conn, filepath.Base(path))
	if err := r.Open(ctx, batchModel.NewExecutionContext()); err != nil {
		return nil, err
	}
	defer r.Close(ctx)

	rows, err := reader.ReadAll[model.TempRow](ctx, r)
	if err != nil {
		return nil, err
	}
	t := &Table{Rows: rows}
	md := r.Metadata()
	if raw, ok := md[model.FilesTable]; ok {
		if err := json.Unmarshal([]byte(raw), &t.Files); err != nil {
			return nil, fmt.Errorf("'%s': malformed %s table: %w", path, model.FilesTable, err)
		}
	}
	if raw, ok := md[model.MetaTable]; ok {
		if err := json.Unmarshal([]byte(raw), &t.Meta); err != nil {
			return nil, fmt.Errorf("'%s': malformed %s table: %w", path, model.MetaTable, err)
		}
	}
	return t, nil
}
