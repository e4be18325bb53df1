package table

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/Yognotiano/TESIS/internal/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/database"
	dbconfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/config"
	gormadapter "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/gorm"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/database/gorm/sqlite"
	"github.com/Yognotiano/TESIS/pkg/batch/component/step/reader"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// sqliteSink buffers rows and writes a fresh database file next to the target on Close.
type sqliteSink struct {
	dir, name string
	tmp       string
	t         Table
}

func newSQLiteSink(dir, name string) (*sqliteSink, error) {
	f, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return nil, exception.NewFatal("table", exception.ErrOutputCreateFailed,
			fmt.Sprintf("cannot create files in '%s'", dir), err)
	}
	tmp := f.Name()
	_ = f.Close()
	return &sqliteSink{dir: dir, name: name, tmp: tmp}, nil
}

func (s *sqliteSink) Append(ctx context.Context, row model.TempRow) error {
	s.t.Rows = append(s.t.Rows, row)
	return nil
}

func (s *sqliteSink) AddFile(id int32, path string)            { s.t.AddFile(id, path) }
func (s *sqliteSink) AddHeader(id int32, h model.HeaderRecord) { s.t.AddHeader(id, h) }
func (s *sqliteSink) Rows() int                                { return len(s.t.Rows) }
func (s *sqliteSink) Path() string                             { return filepath.Join(s.dir, s.name) }

func (s *sqliteSink) Close(ctx context.Context) error {
	if err := s.write(ctx); err != nil {
		_ = os.Remove(s.tmp)
		return exception.NewFatal("table", exception.ErrOutputCreateFailed,
			fmt.Sprintf("cannot write '%s'", s.Path()), err)
	}
	if err := os.Rename(s.tmp, s.Path()); err != nil {
		_ = os.Remove(s.tmp)
		return exception.NewFatal("table", exception.ErrOutputCreateFailed,
			fmt.Sprintf("cannot move artifact into '%s'", s.Path()), err)
	}
	return nil
}

func (s *sqliteSink) write(ctx context.Context) (err error) {
	conn, err := openSQLite(s.tmp, s.name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			err = multierror.Append(err, cerr)
		}
	}()
	return Export(ctx, conn, &s.t)
}

func (s *sqliteSink) Abort(ctx context.Context) error {
	s.t = Table{}
	if err := os.Remove(s.tmp); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func openSQLite(path, name string) (database.DBConnection, error) {
	cfg := dbconfig.DatabaseConfig{Type: sqlite.ProviderType, Database: path}
	db, err := gormadapter.Open(cfg)
	if err != nil {
		return nil, err
	}
	return gormadapter.NewGormDBAdapter(db, cfg, name)
}

func readSQLite(ctx context.Context, path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	conn, err := openSQLite(path, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Warnf("closing '%s' failed: %v", path, err)
		}
	}()

	cursor := reader.NewGormCursorReader[model.TempRecord](conn, model.TempsTable, model.TempsTable, "id")
	if err := cursor.Open(ctx, nil); err != nil {
		return nil, err
	}
	records, err := reader.ReadAll[model.TempRecord](ctx, cursor)
	if cerr := cursor.Close(ctx); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}

	t := &Table{Rows: make([]model.TempRow, 0, len(records))}
	for _, rec := range records {
		t.Rows = append(t.Rows, rec.Row())
	}
	db := conn.DB().WithContext(ctx)
	if err := db.Order("rowid").Find(&t.Files).Error; err != nil {
		return nil, fmt.Errorf("'%s': reading %s table: %w", path, model.FilesTable, err)
	}
	if err := db.Order("rowid").Find(&t.Meta).Error; err != nil {
		return nil, fmt.Errorf("'%s': reading %s table: %w", path, model.MetaTable, err)
	}
	return t, nil
}
