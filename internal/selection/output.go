package selection

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/Yognotiano/TESIS/internal/domain/model"
	"github.com/Yognotiano/TESIS/internal/table"
)

// WriteTSV writes one "x<TAB>y" line per row, preceded by the axis titles.
func WriteTSV(w io.Writer, proj Projection, rows []model.TempRow) error {
	tsv := csv.NewWriter(w)
	tsv.Comma = '\t'

	xLabel, yLabel := proj.Labels()
	if err := tsv.Write([]string{xLabel, yLabel}); err != nil {
		return err
	}
	for i := range rows {
		x, y := proj.Point(i, &rows[i])
		record := []string{
			strconv.FormatFloat(x, 'f', -1, 64),
			strconv.FormatFloat(y, 'f', -1, 64),
		}
		if err := tsv.Write(record); err != nil {
			return err
		}
	}
	tsv.Flush()
	return tsv.Error()
}

// WriteSubset stores rows as a new artifact at path, replacing any existing one, with the
// files and meta tables of the source copied over.
func WriteSubset(ctx context.Context, path string, opts table.Options, side model.SideTables, rows []model.TempRow) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving subset path '%s': %w", path, err)
	}
	sink, err := table.Create(ctx, filepath.Dir(abs), filepath.Base(abs), opts)
	if err != nil {
		return err
	}
	table.CopySideTables(sink, side)
	for _, row := range rows {
		if err := sink.Append(ctx, row); err != nil {
			_ = sink.Abort(ctx)
			return err
		}
	}
	return sink.Close(ctx)
}
