package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/Yognotiano/TESIS/internal/table"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/database"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/storage"
	"github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
	"github.com/Yognotiano/TESIS/pkg/batch/core/config"
	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/core/metrics"
	"github.com/Yognotiano/TESIS/pkg/batch/engine/step/retry"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// Keys written to the step and job ExecutionContext.
const (
	OutputPathKey = "ingest.output_path"
	RowsKey       = "ingest.rows"
	FilesKey      = "ingest.files"
	MirrorKey     = "ingest.mirror_object"
)

// Skip reasons reported to the MetricRecorder.
const (
	ReasonLineSkip        = "line_skip"
	ReasonFileOpen        = "file_open"
	ReasonHeaderMalformed = "header_malformed"
)

const lockFileName = ".thermolog.lock"

var _ port.Tasklet = (*Tasklet)(nil)

// Params are the two positional arguments of an ingestion run.
type Params struct {
	// Inputs is the comma separated path/glob list. Empty means IngestConfig.DefaultInputs.
	Inputs string
	// Output overrides the artifact name. Empty or "auto" picks one from the input dates.
	Output string
}

// Stats counts what one run consumed and produced.
type Stats struct {
	Files       int
	Unreadable  int
	Headers     int
	Malformed   int
	Lines       int
	Rows        int
	SkippedRows int
}

// Tasklet ingests the thermometer logs named by Params into one table artifact.
type Tasklet struct {
	cfg      *config.IngestConfig
	expander config.EnvironmentExpander
	params   Params
	recorder metrics.MetricRecorder

	storageResolver storage.StorageConnectionResolver
	mirrorPrefix    string
	dbResolver      database.DBConnectionResolver

	stats Stats
	ec    model.ExecutionContext
}

// Option configures optional collaborators of a Tasklet.
type Option func(*Tasklet)

// WithMirror enables uploading the finished artifact to IngestConfig.MirrorRef under prefix.
func WithMirror(resolver storage.StorageConnectionResolver, prefix string) Option {
	return func(t *Tasklet) {
		t.storageResolver = resolver
		t.mirrorPrefix = prefix
	}
}

// WithExport enables copying the finished tables to IngestConfig.ExportRef.
func WithExport(resolver database.DBConnectionResolver) Option {
	return func(t *Tasklet) { t.dbResolver = resolver }
}

// NewTasklet creates an ingestion Tasklet. A nil recorder records nothing.
func NewTasklet(cfg *config.IngestConfig, expander config.EnvironmentExpander, recorder metrics.MetricRecorder, params Params, opts ...Option) *Tasklet {
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	t := &Tasklet{
		cfg:      cfg,
		expander: expander,
		params:   params,
		recorder: recorder,
		ec:       model.NewExecutionContext(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Stats returns the counters of the last Execute.
func (t *Tasklet) Stats() Stats {
	return t.stats
}

// Execute runs the whole ingestion. Only NoInputs, OutputDirUnavailable, OutputCreateFailed,
// cancellation and mirror/export failures end it with an error.
func (t *Tasklet) Execute(ctx context.Context, se *model.StepExecution) (model.ExitStatus, error) {
	t.stats = Stats{}
	started := time.Now()

	inputs := t.params.Inputs
	if trimSpace(inputs) == "" {
		inputs = t.cfg.DefaultInputs
	}
	files, err := ExpandInputs(inputs)
	if err != nil {
		return model.ExitStatusFailed, err
	}
	dir, err := EnsureOutputDir(t.expander, t.cfg.BaseDir, t.cfg.SubDir)
	if err != nil {
		return model.ExitStatusFailed, err
	}
	name := ChooseOutputName(files, t.params.Output)
	outPath := filepath.Join(dir, name)
	logger.Infof("Output file: %s", outPath)

	if !t.cfg.NoLock {
		unlock, err := lockDir(dir)
		if err != nil {
			return model.ExitStatusFailed, err
		}
		defer unlock()
	}

	sink, err := table.Create(ctx, dir, name, table.Options{Format: t.cfg.Format, Compression: t.cfg.Compression})
	if err != nil {
		return model.ExitStatusFailed, err
	}

	if err := t.ingestAll(ctx, se.StepName, sink, files); err != nil {
		if abortErr := sink.Abort(ctx); abortErr != nil {
			logger.Warnf("Discarding partial output %s failed: %v", outPath, abortErr)
		}
		return model.ExitStatusFailed, err
	}
	if err := sink.Close(ctx); err != nil {
		return model.ExitStatusFailed, err
	}

	se.ReadCount += t.stats.Lines
	se.WriteCount += t.stats.Rows
	se.SkipReadCount += t.stats.SkippedRows + t.stats.Unreadable + t.stats.Malformed
	t.recorder.RecordItemRead(ctx, se.StepName, t.stats.Lines)
	t.recorder.RecordItemWrite(ctx, se.StepName, t.stats.Rows)
	t.recorder.RecordDuration(ctx, "ingest", time.Since(started), map[string]string{"format": formatOf(t.cfg.Format)})

	t.ec.Put(OutputPathKey, outPath)
	t.ec.Put(RowsKey, t.stats.Rows)
	t.ec.Put(FilesKey, t.stats.Files)
	if se.JobExecution != nil {
		se.JobExecution.ExecutionContext.Put(OutputPathKey, outPath)
	}
	logger.Infof("OK: wrote %s with '%s', 'files' and 'meta' (%d rows from %d files).", outPath, "temps", t.stats.Rows, t.stats.Files)

	if err := t.publish(ctx, outPath); err != nil {
		return model.ExitStatusFailed, err
	}
	return model.ExitStatusCompleted, nil
}

func formatOf(f string) string {
	if f == "" {
		return config.FormatParquet
	}
	return f
}

func lockDir(dir string) (func(), error) {
	path := filepath.Join(dir, lockFileName)
	fl := flock.New(path)
	acquired, err := fl.TryLock()
	if err != nil {
		return nil, exception.NewFatal("ingest", exception.ErrOutputCreateFailed,
			fmt.Sprintf("failed to try lock on %s", path), err)
	}
	if !acquired {
		return nil, exception.NewFatal("ingest", exception.ErrOutputCreateFailed,
			fmt.Sprintf("output directory %s is locked by another run", dir), nil)
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			logger.Warnf("failed to release lock on %s: %v", path, err)
		}
	}, nil
}

// ingestAll assigns file ids in discovery order. An id is consumed even when the file cannot be opened.
func (t *Tasklet) ingestAll(ctx context.Context, stepName string, sink table.Sink, files []string) error {
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := int32(i)
		sink.AddFile(id, path)
		t.stats.Files++
		if err := t.ingestFile(ctx, stepName, sink, id, path); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tasklet) ingestFile(ctx context.Context, stepName string, sink table.Sink, id int32, path string) error {
	f, err := os.Open(path)
	if err != nil {
		t.stats.Unreadable++
		t.recorder.RecordItemSkip(ctx, stepName, ReasonFileOpen)
		logger.Warnf("%v", exception.NewSkippable("ingest", exception.ErrFileOpen, fmt.Sprintf("cannot open %s", path), err))
		return nil
	}
	defer f.Close()

	br, h, state, err := readHeader(f)
	if err != nil {
		t.stats.Unreadable++
		t.recorder.RecordItemSkip(ctx, stepName, ReasonFileOpen)
		logger.Warnf("Cannot read %s: %v", path, err)
		return nil
	}
	switch state {
	case headerPresent:
		sink.AddHeader(id, h)
		t.stats.Headers++
	case headerMalformed:
		t.stats.Malformed++
		t.recorder.RecordItemSkip(ctx, stepName, ReasonHeaderMalformed)
		logger.Debugf("%s: first line starts with '#' but is not a header; ignored.", path)
	}

	for {
		line, readErr := br.ReadString('\n')
		if line != "" {
			if err := t.ingestLine(ctx, stepName, sink, id, line); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			logger.Warnf("Reading %s stopped early: %v", path, readErr)
			return nil
		}
	}
}

func (t *Tasklet) ingestLine(ctx context.Context, stepName string, sink table.Sink, id int32, line string) error {
	row, err := ParseLine(line)
	switch {
	case errors.Is(err, errIgnored):
		return nil
	case err != nil:
		t.stats.Lines++
		t.stats.SkippedRows++
		t.recorder.RecordItemSkip(ctx, stepName, ReasonLineSkip)
		return nil
	}
	t.stats.Lines++
	row.FileID = id
	if err := sink.Append(ctx, row); err != nil {
		return err
	}
	t.stats.Rows++
	return nil
}

// publish runs the optional mirror upload and database export of a finished artifact.
// Both are retried per IngestConfig.PublishAttempts.
func (t *Tasklet) publish(ctx context.Context, outPath string) error {
	policy := retry.NewPolicy(t.cfg.PublishAttempts, time.Duration(t.cfg.PublishBackoffMs)*time.Millisecond)

	if t.cfg.MirrorRef != "" && t.storageResolver != nil {
		conn, err := t.storageResolver.ResolveStorageConnection(ctx, t.cfg.MirrorRef)
		if err != nil {
			return exception.NewBatchError("ingest", fmt.Sprintf("cannot resolve mirror '%s'", t.cfg.MirrorRef), err, false, false)
		}
		var object string
		err = retry.Do(ctx, policy, "mirror upload", func(ctx context.Context) error {
			var uerr error
			if object, uerr = table.Mirror(ctx, conn, outPath, t.mirrorPrefix); uerr != nil {
				return exception.NewBatchError("ingest", "mirror upload failed", uerr, false, true)
			}
			return nil
		})
		if err != nil {
			return err
		}
		t.ec.Put(MirrorKey, object)
		logger.Infof("Mirrored %s to %s:%s", outPath, conn.Name(), object)
	}

	if t.cfg.ExportRef != "" && t.dbResolver != nil {
		conn, err := t.dbResolver.ResolveDBConnection(ctx, t.cfg.ExportRef)
		if err != nil {
			return exception.NewBatchError("ingest", fmt.Sprintf("cannot resolve export database '%s'", t.cfg.ExportRef), err, false, false)
		}
		tbl, err := table.Read(ctx, outPath, formatOf(t.cfg.Format))
		if err != nil {
			return exception.NewBatchError("ingest", fmt.Sprintf("cannot re-read %s for export", outPath), err, false, false)
		}
		err = retry.Do(ctx, policy, "export", func(ctx context.Context) error {
			if xerr := table.Export(ctx, conn, tbl); xerr != nil {
				return exception.NewBatchError("ingest", fmt.Sprintf("export to '%s' failed", t.cfg.ExportRef), xerr, false, true)
			}
			return nil
		})
		if err != nil {
			return err
		}
		logger.Infof("Exported %d rows to database '%s'.", len(tbl.Rows), t.cfg.ExportRef)
	}
	return nil
}

// Close is required by port.Tasklet; all files are closed by Execute.
func (t *Tasklet) Close(ctx context.Context) error {
	return nil
}

// SetExecutionContext adopts ec as the step ExecutionContext.
func (t *Tasklet) SetExecutionContext(ctx context.Context, ec model.ExecutionContext) error {
	if ec != nil {
		t.ec = ec
	}
	return nil
}

// GetExecutionContext returns the step ExecutionContext including the output keys.
func (t *Tasklet) GetExecutionContext(ctx context.Context) (model.ExecutionContext, error) {
	return t.ec, nil
}
