package selection

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Yognotiano/TESIS/internal/table"
	"github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/core/metrics"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// ExecutionContext keys set by a RangeTasklet.
const (
	CutKey     = "range.cut"
	EntriesKey = "range.entries"
	SubsetKey  = "range.subset"
)

var _ port.Tasklet = (*RangeTasklet)(nil)

// RangeParams describe one range selection.
type RangeParams struct {
	// Table is the artifact path; its format is detected from the content.
	Table string
	Start string
	End   string
	// Expr is the projection, "Y:X" or "Y". Empty means DefaultExpr.
	Expr string
	// FileID restricts the selection to one source file; negative selects all.
	FileID int
	// Subset, when set, receives the selected rows as a new artifact.
	Subset string
	// Compression is used when Subset is a parquet artifact.
	Compression string
}

// RangeTasklet selects a time window from a table and writes the projected series as TSV.
type RangeTasklet struct {
	params   RangeParams
	out      io.Writer
	recorder metrics.MetricRecorder
	ec       model.ExecutionContext
}

// NewRangeTasklet creates a RangeTasklet writing its series to out (stdout when nil).
func NewRangeTasklet(params RangeParams, out io.Writer, recorder metrics.MetricRecorder) *RangeTasklet {
	if out == nil {
		out = os.Stdout
	}
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	return &RangeTasklet{params: params, out: out, recorder: recorder, ec: model.NewExecutionContext()}
}

// Execute reads the table, applies the window and emits the series and the optional subset.
func (t *RangeTasklet) Execute(ctx context.Context, se *model.StepExecution) (model.ExitStatus, error) {
	started := time.Now()
	if t.params.Table == "" {
		return model.ExitStatusFailed, exception.NewBatchErrorf("selection", "table path is empty")
	}
	r, err := NewRange(t.params.Start, t.params.End, t.params.FileID)
	if err != nil {
		return model.ExitStatusFailed, err
	}
	proj, err := ParseProjection(t.params.Expr)
	if err != nil {
		return model.ExitStatusFailed, exception.NewBatchError("selection", fmt.Sprintf("invalid expression %q", t.params.Expr), err, false, false)
	}

	format, err := table.DetectFormat(t.params.Table)
	if err != nil {
		return model.ExitStatusFailed, exception.NewBatchError("selection", fmt.Sprintf("cannot open %s", t.params.Table), err, false, false)
	}
	tbl, err := table.Read(ctx, t.params.Table, format)
	if err != nil {
		return model.ExitStatusFailed, exception.NewBatchError("selection", fmt.Sprintf("cannot read table 'temps' from %s", t.params.Table), err, false, false)
	}

	rows := Select(tbl.Rows, r)
	logger.Infof("Cut = %s", r.Cut())
	logger.Infof("Entries in range = %d", len(rows))

	if err := WriteTSV(t.out, proj, rows); err != nil {
		return model.ExitStatusFailed, exception.NewBatchError("selection", "writing the series failed", err, false, false)
	}

	t.ec.Put(CutKey, r.Cut())
	t.ec.Put(EntriesKey, len(rows))
	if t.params.Subset != "" {
		opts := table.Options{Format: format, Compression: t.params.Compression}
		if err := WriteSubset(ctx, t.params.Subset, opts, tbl.SideTables, rows); err != nil {
			return model.ExitStatusFailed, err
		}
		t.ec.Put(SubsetKey, t.params.Subset)
		logger.Infof("Subset saved to: %s", t.params.Subset)
	}

	se.ReadCount += len(tbl.Rows)
	se.WriteCount += len(rows)
	t.recorder.RecordItemRead(ctx, se.StepName, len(tbl.Rows))
	t.recorder.RecordItemWrite(ctx, se.StepName, len(rows))
	t.recorder.RecordDuration(ctx, "range", time.Since(started), map[string]string{"format": format})
	return model.ExitStatusCompleted, nil
}

// Close implements port.Tasklet.
func (t *RangeTasklet) Close(ctx context.Context) error { return nil }

// SetExecutionContext adopts ec.
func (t *RangeTasklet) SetExecutionContext(ctx context.Context, ec model.ExecutionContext) error {
	if ec != nil {
		t.ec = ec
	}
	return nil
}

// GetExecutionContext returns the ExecutionContext holding the cut and entry count.
func (t *RangeTasklet) GetExecutionContext(ctx context.Context) (model.ExecutionContext, error) {
	return t.ec, nil
}
