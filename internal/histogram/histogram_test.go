package histogram

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yognotiano/TESIS/pkg/batch/component/step/writer"
	"github.com/Yognotiano/TESIS/pkg/batch/core/config"
	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
)

func newDensity(t *testing.T) *Hist2D {
	t.Helper()
	h, err := NewHist2D(HistName(1), HistTitle(1), 12, 0, 12, 12, 0, 12)
	require.NoError(t, err)
	return h
}

func TestNewHist2D_Validation(t *testing.T) {
	_, err := NewHist2D("h", "", 0, 0, 1, 1, 0, 1)
	assert.Error(t, err)
	_, err = NewHist2D("h", "", 1, 1, 1, 1, 0, 1)
	assert.Error(t, err)
	_, err = NewHist2D("h", "", 1, 0, 1, 1, 0, math.NaN())
	assert.Error(t, err)
}

func TestHist2D_FindBin(t *testing.T) {
	h := newDensity(t)
	tests := []struct {
		x, y   float64
		ix, iy int
	}{
		{0, 0, 1, 1},
		{0.999, 11.999, 1, 12},
		{5.5, 6, 6, 7},
		{-0.001, 3, 0, 4},
		{12, 3, 13, 4},
		{3, math.NaN(), 4, 13},
		{math.Inf(-1), math.Inf(1), 0, 13},
	}
	for _, tt := range tests {
		ix, iy := h.FindBin(tt.x, tt.y)
		assert.Equal(t, tt.ix, ix, "x=%v", tt.x)
		assert.Equal(t, tt.iy, iy, "y=%v", tt.y)
	}
}

func TestHist2D_FillAndCounts(t *testing.T) {
	h := newDensity(t)
	h.Fill(1.5, 2.5)
	h.Fill(1.2, 2.9)
	h.Fill(11.5, 0)
	h.Fill(-1, 5)
	h.Fill(4, 12)

	assert.Equal(t, int64(5), h.Entries())
	assert.Equal(t, 2.0, h.BinContent(2, 3))
	assert.Equal(t, 1.0, h.BinContent(12, 1))
	assert.Equal(t, 1.0, h.BinContent(0, 6))
	assert.Equal(t, 1.0, h.BinContent(5, 13))
	assert.Equal(t, 0.0, h.BinContent(99, 1))
	assert.Equal(t, 3.0, h.Integral())
	assert.Equal(t, 2.0, h.Outside())

	bins := h.Bins()
	require.Len(t, bins, 144)
	assert.Equal(t, Bin{IX: 1, IY: 1, XLow: 0, YLow: 0}, bins[0])
	assert.Equal(t, Bin{IX: 2, IY: 3, XLow: 1, YLow: 2, Content: 2}, bins[2*12+1])
	assert.Equal(t, Bin{IX: 12, IY: 12, XLow: 11, YLow: 11}, bins[143])
}

func TestEvent_Pair(t *testing.T) {
	e := Event{A1: 1, B1: 2, A2: 3, B2: 4, A3: 5, B3: 6}
	for k, want := range map[int][2]float32{1: {1, 2}, 2: {3, 4}, 3: {5, 6}} {
		a, b, err := e.Pair(k)
		require.NoError(t, err)
		assert.Equal(t, want, [2]float32{a, b})
	}
	_, _, err := e.Pair(4)
	assert.Error(t, err)
	assert.Equal(t, "histo_A2_B2.root", OutputName(2))
	assert.Equal(t, "signal density for A3 B3", HistTitle(3))
}

func writeEvents(t *testing.T, path string, events []Event) {
	t.Helper()
	conn, object, err := dirConn(path, "events")
	require.NoError(t, err)
	w, err := writer.NewParquetWriter[Event]("events", map[string]interface{}{"objectName": object}, conn, nil)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, w.Open(ctx, model.NewExecutionContext()))
	require.NoError(t, w.Write(ctx, events))
	require.NoError(t, w.Close(ctx))
}

func sampleEvents() []Event {
	return []Event{
		{Evn: 0, A1: 0.5, B1: 0.5, A2: 3, B2: 3, A3: 20, B3: 1},
		{Evn: 1, A1: 1.5, B1: 2.5, A2: 3, B2: 3, A3: 1, B3: 1},
		{Evn: 2, A1: 1.5, B1: 2.5, A2: 4, B2: 3, A3: 1, B3: 1},
		{Evn: 3, A1: 11.5, B1: 11.5, A2: -1, B2: 3, A3: 1, B3: 1},
	}
}

func TestReadEvents_Range(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.parquet")
	writeEvents(t, path, sampleEvents())
	ctx := context.Background()

	all, total, err := ReadEvents(ctx, path, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, all, 4)

	mid, _, err := ReadEvents(ctx, path, 1, 3)
	require.NoError(t, err)
	require.Len(t, mid, 2)
	assert.Equal(t, float32(1), mid[0].Evn)
	assert.Equal(t, float32(2), mid[1].Evn)

	tail, _, err := ReadEvents(ctx, path, 3, 100)
	require.NoError(t, err)
	assert.Len(t, tail, 1)

	none, _, err := ReadEvents(ctx, path, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, _, err = ReadEvents(ctx, filepath.Join(t.TempDir(), "missing.parquet"), 0, 0)
	assert.Error(t, err)
}

func TestWriteLoad_RoundTrip(t *testing.T) {
	h := newDensity(t)
	h.Fill(1.5, 2.5)
	h.Fill(1.5, 2.5)
	h.Fill(30, 2)
	path := filepath.Join(t.TempDir(), OutputName(1))

	require.NoError(t, Write(context.Background(), h, path, "GZIP"))
	got, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "density_1", got.Name)
	assert.Equal(t, "signal density for A1 B1", got.Title)
	assert.Equal(t, 12, got.NX)
	assert.Equal(t, 12.0, got.YMax)
	assert.Equal(t, int64(3), got.Entries())
	assert.Equal(t, 2.0, got.BinContent(2, 3))
	assert.Equal(t, 2.0, got.Integral())
	assert.Equal(t, 1.0, got.Outside())
}

func TestTasklet(t *testing.T) {
	dir := t.TempDir()
	events := filepath.Join(dir, "data.parquet")
	writeEvents(t, events, sampleEvents())
	cfg := &config.HistogramConfig{Bins: 12, Min: 0, Max: 12}

	t.Run("single pair with entry range", func(t *testing.T) {
		tk := NewTasklet(cfg, Params{Events: events, Pair: 1, First: 1}, nil)
		se := model.NewStepExecution(model.NewJobExecution("histoJob", model.NewJobParameters()), "histoStep")

		status, err := tk.Execute(context.Background(), se)
		require.NoError(t, err)
		assert.Equal(t, model.ExitStatusCompleted, status)
		assert.Equal(t, 3, se.ReadCount)
		assert.Equal(t, 1, se.WriteCount)

		require.Len(t, tk.Histograms(), 1)
		h := tk.Histograms()[0]
		assert.Equal(t, int64(3), h.Entries())
		assert.Equal(t, 2.0, h.BinContent(2, 3))
		assert.Equal(t, 1.0, h.BinContent(12, 12))
		assert.Equal(t, 0.0, h.BinContent(1, 1), "entry 0 is outside the range")

		stored, err := Load(context.Background(), filepath.Join(dir, "histo_A1_B1.root"))
		require.NoError(t, err)
		assert.Equal(t, h.Bins(), stored.Bins())
	})

	t.Run("every pair", func(t *testing.T) {
		out := t.TempDir()
		tk := NewTasklet(cfg, Params{Events: events, OutputDir: out}, nil)
		se := model.NewStepExecution(model.NewJobExecution("histoJob", model.NewJobParameters()), "histoStep")

		_, err := tk.Execute(context.Background(), se)
		require.NoError(t, err)
		ec, _ := tk.GetExecutionContext(context.Background())
		assert.Equal(t, []string{
			filepath.Join(out, "histo_A1_B1.root"),
			filepath.Join(out, "histo_A2_B2.root"),
			filepath.Join(out, "histo_A3_B3.root"),
		}, ec[OutputsKey])

		hs := tk.Histograms()
		require.Len(t, hs, 3)
		assert.Equal(t, 2.0, hs[1].BinContent(4, 4))
		assert.Equal(t, 1.0, hs[1].Outside())
		assert.Equal(t, 3.0, hs[2].BinContent(2, 2))
		assert.Equal(t, 1.0, hs[2].Outside())
	})

	t.Run("bad pair", func(t *testing.T) {
		se := model.NewStepExecution(model.NewJobExecution("histoJob", model.NewJobParameters()), "histoStep")
		_, err := NewTasklet(cfg, Params{Events: events, Pair: 4}, nil).Execute(context.Background(), se)
		assert.ErrorContains(t, err, "out of range")
	})
}
