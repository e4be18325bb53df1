// Package table stores the temps table and its files/meta side tables as one artifact.
//
// Two formats are supported. Parquet keeps the side tables as JSON in the footer
// key/value metadata; SQLite keeps them as ordinary tables. Either way the artifact is
// written under a temporary name and renamed over the target on Close, so a reader sees
// the previous artifact or the complete new one.
package table

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Yognotiano/TESIS/internal/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/core/config"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
)

// Sink receives the rows and side-table entries of one artifact.
// Nothing is visible at Path until Close returns successfully.
type Sink interface {
	Append(ctx context.Context, row model.TempRow) error
	AddFile(id int32, path string)
	AddHeader(id int32, h model.HeaderRecord)
	// Rows returns the number of rows appended so far.
	Rows() int
	// Close writes the artifact. Failures wrap exception.ErrOutputCreateFailed.
	Close(ctx context.Context) error
	// Abort discards everything; a previous artifact at Path is left untouched.
	Abort(ctx context.Context) error
	Path() string
}

// Table is an artifact loaded into memory.
type Table struct {
	Rows []model.TempRow
	model.SideTables
}

// Options tune artifact creation.
type Options struct {
	// Format is config.FormatParquet (default) or config.FormatSQLite.
	Format string
	// Compression is the parquet codec name; ignored for SQLite.
	Compression string
}

// Create opens a sink for dir/name. The directory must exist. The target is probed for
// writability up front so that an unusable output fails before any row is produced.
func Create(ctx context.Context, dir, name string, opts Options) (Sink, error) {
	path := filepath.Join(dir, name)
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, exception.NewFatal("table", exception.ErrOutputCreateFailed,
			fmt.Sprintf("output path '%s' is a directory", path), nil)
	}

	switch opts.Format {
	case "", config.FormatParquet:
		return newParquetSink(dir, name, opts.Compression)
	case config.FormatSQLite:
		return newSQLiteSink(dir, name)
	default:
		return nil, exception.NewFatal("table", exception.ErrOutputCreateFailed,
			fmt.Sprintf("unknown table format '%s'", opts.Format), nil)
	}
}

// CopySideTables registers every files/meta entry of side on sink.
func CopySideTables(sink Sink, side model.SideTables) {
	for _, id := range side.FileIDs() {
		p, _ := side.FilePath(id)
		sink.AddFile(id, p)
		if h, ok := side.Header(id); ok {
			sink.AddHeader(id, h)
		}
	}
}

var (
	parquetMagic = []byte("PAR1")
	sqliteMagic  = []byte("SQLite format 3\x00")
)

// DetectFormat inspects the first bytes of path.
func DetectFormat(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, len(sqliteMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read '%s': %w", path, err)
	}
	head = head[:n]
	switch {
	case bytes.HasPrefix(head, sqliteMagic):
		return config.FormatSQLite, nil
	case bytes.HasPrefix(head, parquetMagic):
		return config.FormatParquet, nil
	}
	return "", fmt.Errorf("'%s' is neither a parquet nor a sqlite table", path)
}

// Read loads the artifact at path. An empty format is detected from the file content.
func Read(ctx context.Context, path, format string) (*Table, error) {
	if format == "" {
		var err error
		if format, err = DetectFormat(path); err != nil {
			return nil, err
		}
	}
	switch format {
	case config.FormatParquet:
		return readParquet(ctx, path)
	case config.FormatSQLite:
		return readSQLite(ctx, path)
	default:
		return nil, fmt.Errorf("unknown table format '%s'", format)
	}
}
