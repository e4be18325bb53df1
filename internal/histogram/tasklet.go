package histogram

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
	"github.com/Yognotiano/TESIS/pkg/batch/core/config"
	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/core/metrics"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// OutputsKey lists the bin tables written by a HistogramTasklet.
const OutputsKey = "histogram.outputs"

var _ port.Tasklet = (*Tasklet)(nil)

// Params select the events and the pairs to fill.
type Params struct {
	Events string
	// Pair is 1..NumPairs, or 0 for every pair.
	Pair int
	// First and Last bound the entries read, [First, Last). Last <= 0 reads to the end.
	First int
	Last  int
	// OutputDir receives histo_A<k>_B<k>.root. Empty means the directory of Events.
	OutputDir   string
	Compression string
}

// Tasklet fills the density histogram of each requested pair and stores it as a bin table.
type Tasklet struct {
	cfg      *config.HistogramConfig
	params   Params
	recorder metrics.MetricRecorder
	ec       model.ExecutionContext
	hists    []*Hist2D
}

// NewTasklet creates a histogram Tasklet. cfg supplies the binning shared by both axes.
func NewTasklet(cfg *config.HistogramConfig, params Params, recorder metrics.MetricRecorder) *Tasklet {
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	return &Tasklet{cfg: cfg, params: params, recorder: recorder, ec: model.NewExecutionContext()}
}

// Histograms returns the histograms filled by the last Execute.
func (t *Tasklet) Histograms() []*Hist2D {
	return t.hists
}

func (t *Tasklet) pairs() ([]int, error) {
	switch {
	case t.params.Pair == 0:
		return []int{1, 2, 3}, nil
	case t.params.Pair >= 1 && t.params.Pair <= NumPairs:
		return []int{t.params.Pair}, nil
	}
	return nil, exception.NewBatchErrorf("histogram", "pair %d out of range 1..%d", t.params.Pair, NumPairs)
}

// Execute reads the events once and writes one bin table per pair.
func (t *Tasklet) Execute(ctx context.Context, se *model.StepExecution) (model.ExitStatus, error) {
	started := time.Now()
	pairs, err := t.pairs()
	if err != nil {
		return model.ExitStatusFailed, err
	}

	events, total, err := ReadEvents(ctx, t.params.Events, t.params.First, t.params.Last)
	if err != nil {
		return model.ExitStatusFailed, exception.NewBatchError("histogram", fmt.Sprintf("cannot read events from %s", t.params.Events), err, false, false)
	}
	logger.Infof("Read %d of %d entries from %s.", len(events), total, t.params.Events)

	outDir := t.params.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(t.params.Events)
	}

	t.hists = nil
	var outputs []string
	for _, k := range pairs {
		h, err := NewHist2D(HistName(k), HistTitle(k), t.cfg.Bins, t.cfg.Min, t.cfg.Max, t.cfg.Bins, t.cfg.Min, t.cfg.Max)
		if err != nil {
			return model.ExitStatusFailed, exception.NewBatchError("histogram", "invalid binning", err, false, false)
		}
		for i := range events {
			if i%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return model.ExitStatusFailed, err
				}
			}
			a, b, _ := events[i].Pair(k)
			h.Fill(float64(a), float64(b))
		}

		out := filepath.Join(outDir, OutputName(k))
		if err := Write(ctx, h, out, t.params.Compression); err != nil {
			return model.ExitStatusFailed, exception.NewBatchError("histogram", fmt.Sprintf("cannot write %s", out), err, false, false)
		}
		logger.Infof("%s (%s): %d entries, %g in range, written to %s", h.Name, h.Title, h.Entries(), h.Integral(), out)
		t.hists = append(t.hists, h)
		outputs = append(outputs, out)
	}

	t.ec.Put(OutputsKey, outputs)
	se.ReadCount += len(events)
	se.WriteCount += len(outputs)
	t.recorder.RecordItemRead(ctx, se.StepName, len(events))
	t.recorder.RecordItemWrite(ctx, se.StepName, len(outputs))
	t.recorder.RecordDuration(ctx, "histogram", time.Since(started), nil)
	return model.ExitStatusCompleted, nil
}

// Close implements port.Tasklet.
func (t *Tasklet) Close(ctx context.Context) error { return nil }

// SetExecutionContext adopts ec.
func (t *Tasklet) SetExecutionContext(ctx context.Context, ec model.ExecutionContext) error {
	if ec != nil {
		t.ec = ec
	}
	return nil
}

// GetExecutionContext returns the ExecutionContext holding OutputsKey.
func (t *Tasklet) GetExecutionContext(ctx context.Context) (model.ExecutionContext, error) {
	return t.ec, nil
}
