package table

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/Yognotiano/TESIS/internal/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/database"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/storage"
	"github.com/Yognotiano/TESIS/pkg/batch/component/step/writer"
	"github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
	batchModel "github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

const exportBulkSize = 500

// Export recreates the temps, files and meta tables on conn and fills them from t.
func Export(ctx context.Context, conn database.DBConnection, t *Table) error {
	records := make([]model.TempRecord, 0, len(t.Rows))
	for _, r := range t.Rows {
		records = append(records, model.NewTempRecord(r))
	}
	if err := writeAll(ctx, writer.NewGormWriter[model.TempRecord](model.TempsTable, conn, model.TempsTable, exportBulkSize), records); err != nil {
		return err
	}
	if err := writeAll(ctx, writer.NewGormWriter[model.FileEntry](model.FilesTable, conn, model.FilesTable, exportBulkSize), t.Files); err != nil {
		return err
	}
	if err := writeAll(ctx, writer.NewGormWriter[model.MetaEntry](model.MetaTable, conn, model.MetaTable, exportBulkSize), t.Meta); err != nil {
		return err
	}
	logger.Debugf("Exported %d rows, %d files, %d meta entries to '%s'.", len(t.Rows), len(t.Files), len(t.Meta), conn.Name())
	return nil
}

func writeAll[T any](ctx context.Context, w port.ItemWriter[T], items []T) error {
	if err := w.Open(ctx, batchModel.NewExecutionContext()); err != nil {
		return err
	}
	for start := 0; start < len(items); start += exportBulkSize {
		end := start + exportBulkSize
		if end > len(items) {
			end = len(items)
		}
		if err := w.Write(ctx, items[start:end]); err != nil {
			_ = w.Close(ctx)
			return err
		}
	}
	return w.Close(ctx)
}

// Mirror uploads the file at localPath to conn as prefix/<basename>.
func Mirror(ctx context.Context, conn storage.StorageConnection, localPath, prefix string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	object := filepath.Base(localPath)
	if prefix != "" {
		object = path.Join(prefix, object)
	}
	if err := conn.Upload(ctx, "", object, f, "application/octet-stream"); err != nil {
		return "", fmt.Errorf("mirroring '%s' to '%s': %w", localPath, conn.Name(), err)
	}
	return object, nil
}
