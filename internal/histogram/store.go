package histogram

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/Yognotiano/TESIS/pkg/batch/adapter/storage"
	storageConfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/storage/config"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/storage/local"
	"github.com/Yognotiano/TESIS/pkg/batch/component/step/reader"
	"github.com/Yognotiano/TESIS/pkg/batch/component/step/writer"
	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
)

// headerKey holds the axis definition and entry count in the bin table footer.
const headerKey = "histogram"

type header struct {
	Name    string  `json:"name"`
	Title   string  `json:"title"`
	NX      int     `json:"nx"`
	XMin    float64 `json:"xmin"`
	XMax    float64 `json:"xmax"`
	NY      int     `json:"ny"`
	YMin    float64 `json:"ymin"`
	YMax    float64 `json:"ymax"`
	Entries int64   `json:"entries"`
	Outside float64 `json:"outside"`
}

func dirConn(path, name string) (storage.StorageConnection, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", err
	}
	conn, err := local.NewLocalAdapter(storageConfig.StorageConfig{Type: local.ProviderType, BaseDir: filepath.Dir(abs)}, name)
	if err != nil {
		return nil, "", err
	}
	return conn, filepath.Base(abs), nil
}

// ReadEvents loads entries [first, last) of the events table at path. last <= 0 means
// the end of the table; both bounds are clamped to it.
func ReadEvents(ctx context.Context, path string, first, last int) ([]Event, int, error) {
	conn, object, err := dirConn(path, "events")
	if err != nil {
		return nil, 0, err
	}
	defer conn.Close()

	r := reader.NewParquetReader[Event]("events", conn, object)
	if err := r.Open(ctx, model.NewExecutionContext()); err != nil {
		return nil, 0, err
	}
	defer r.Close(ctx)

	all, err := reader.ReadAll[Event](ctx, r)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	if last <= 0 || last > total {
		last = total
	}
	if first < 0 {
		first = 0
	}
	if first >= last {
		return nil, total, nil
	}
	return all[first:last], total, nil
}

// Write stores h as a bin table at path, replacing any existing file.
func Write(ctx context.Context, h *Hist2D, path, compression string) error {
	conn, object, err := dirConn(path, "histogram")
	if err != nil {
		return err
	}
	defer conn.Close()

	w, err := writer.NewParquetWriter[Bin](h.Name, map[string]interface{}{
		"objectName":      object,
		"compressionType": compression,
	}, conn, nil)
	if err != nil {
		return err
	}
	if err := w.Open(ctx, model.NewExecutionContext()); err != nil {
		return err
	}
	hdr, err := json.Marshal(header{
		Name: h.Name, Title: h.Title,
		NX: h.NX, XMin: h.XMin, XMax: h.XMax,
		NY: h.NY, YMin: h.YMin, YMax: h.YMax,
		Entries: h.Entries(), Outside: h.Outside(),
	})
	if err != nil {
		return err
	}
	w.PutMetadata(headerKey, string(hdr))
	if err := w.Write(ctx, h.Bins()); err != nil {
		w.Abort()
		return err
	}
	return w.Close(ctx)
}

// Load reads a bin table written by Write. Underflow and overflow are not restored
// cell by cell; their total is kept in the entry count.
func Load(ctx context.Context, path string) (*Hist2D, error) {
	conn, object, err := dirConn(path, "histogram")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	r := reader.NewParquetReader[Bin]("histogram", conn, object)
	if err := r.Open(ctx, model.NewExecutionContext()); err != nil {
		return nil, err
	}
	defer r.Close(ctx)

	raw, ok := r.Metadata()[headerKey]
	if !ok {
		return nil, fmt.Errorf("'%s' has no histogram header", path)
	}
	var hdr header
	if err := json.Unmarshal([]byte(raw), &hdr); err != nil {
		return nil, fmt.Errorf("'%s': bad histogram header: %w", path, err)
	}
	h, err := NewHist2D(hdr.Name, hdr.Title, hdr.NX, hdr.XMin, hdr.XMax, hdr.NY, hdr.YMin, hdr.YMax)
	if err != nil {
		return nil, err
	}
	bins, err := reader.ReadAll[Bin](ctx, r)
	if err != nil {
		return nil, err
	}
	for _, b := range bins {
		h.SetBinContent(int(b.IX), int(b.IY), b.Content)
	}
	h.SetEntries(hdr.Entries)
	return h, nil
}
