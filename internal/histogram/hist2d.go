// Package histogram fills 2D occupancy histograms from detector event tables.
package histogram

import (
	"fmt"
)

// Hist2D is a fixed-binning 2D histogram. Cell 0 and cell N+1 on each axis hold
// underflow and overflow; cells 1..N are the in-range bins.
type Hist2D struct {
	Name  string
	Title string

	NX         int
	XMin, XMax float64
	NY         int
	YMin, YMax float64

	cells   []float64
	entries int64
}

// NewHist2D allocates an empty histogram. Each axis needs at least one bin and max > min.
func NewHist2D(name, title string, nx int, xmin, xmax float64, ny int, ymin, ymax float64) (*Hist2D, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("histogram %s: bin counts must be positive, got %dx%d", name, nx, ny)
	}
	if !(xmax > xmin) || !(ymax > ymin) {
		return nil, fmt.Errorf("histogram %s: empty axis range [%g,%g) x [%g,%g)", name, xmin, xmax, ymin, ymax)
	}
	return &Hist2D{
		Name: name, Title: title,
		NX: nx, XMin: xmin, XMax: xmax,
		NY: ny, YMin: ymin, YMax: ymax,
		cells: make([]float64, (nx+2)*(ny+2)),
	}, nil
}

func findBin(v, lo, hi float64, n int) int {
	switch {
	case v < lo:
		return 0
	case !(v < hi):
		// NaN lands here too.
		return n + 1
	}
	bin := 1 + int(float64(n)*(v-lo)/(hi-lo))
	if bin > n {
		bin = n
	}
	return bin
}

// FindBin returns the cell indices of (x, y).
func (h *Hist2D) FindBin(x, y float64) (ix, iy int) {
	return findBin(x, h.XMin, h.XMax, h.NX), findBin(y, h.YMin, h.YMax, h.NY)
}

func (h *Hist2D) cell(ix, iy int) int {
	return iy*(h.NX+2) + ix
}

// Fill adds one entry at (x, y).
func (h *Hist2D) Fill(x, y float64) {
	ix, iy := h.FindBin(x, y)
	h.cells[h.cell(ix, iy)]++
	h.entries++
}

// Entries counts every Fill, in range or not.
func (h *Hist2D) Entries() int64 {
	return h.entries
}

// BinContent returns the content of cell (ix, iy); indices outside 0..N+1 return 0.
func (h *Hist2D) BinContent(ix, iy int) float64 {
	if ix < 0 || ix > h.NX+1 || iy < 0 || iy > h.NY+1 {
		return 0
	}
	return h.cells[h.cell(ix, iy)]
}

// Integral sums the in-range bins.
func (h *Hist2D) Integral() float64 {
	var sum float64
	for iy := 1; iy <= h.NY; iy++ {
		for ix := 1; ix <= h.NX; ix++ {
			sum += h.cells[h.cell(ix, iy)]
		}
	}
	return sum
}

// BinLowEdges returns the lower edges of in-range bin (ix, iy).
func (h *Hist2D) BinLowEdges(ix, iy int) (x, y float64) {
	x = h.XMin + float64(ix-1)*(h.XMax-h.XMin)/float64(h.NX)
	y = h.YMin + float64(iy-1)*(h.YMax-h.YMin)/float64(h.NY)
	return x, y
}

// Bin is one in-range cell as stored in a bin table.
type Bin struct {
	IX      int32   `parquet:"name=ix, type=INT32"`
	IY      int32   `parquet:"name=iy, type=INT32"`
	XLow    float64 `parquet:"name=x_low, type=DOUBLE"`
	YLow    float64 `parquet:"name=y_low, type=DOUBLE"`
	Content float64 `parquet:"name=content, type=DOUBLE"`
}

// Bins lists the in-range cells, x fastest.
func (h *Hist2D) Bins() []Bin {
	out := make([]Bin, 0, h.NX*h.NY)
	for iy := 1; iy <= h.NY; iy++ {
		for ix := 1; ix <= h.NX; ix++ {
			x, y := h.BinLowEdges(ix, iy)
			out = append(out, Bin{IX: int32(ix), IY: int32(iy), XLow: x, YLow: y, Content: h.cells[h.cell(ix, iy)]})
		}
	}
	return out
}

// Outside is the total content of underflow and overflow cells.
func (h *Hist2D) Outside() float64 {
	return float64(h.entries) - h.Integral()
}

// SetBinContent overwrites cell (ix, iy). It is used when loading a stored bin table.
func (h *Hist2D) SetBinContent(ix, iy int, v float64) {
	if ix < 0 || ix > h.NX+1 || iy < 0 || iy > h.NY+1 {
		return
	}
	h.cells[h.cell(ix, iy)] = v
}

// SetEntries overwrites the entry count.
func (h *Hist2D) SetEntries(n int64) {
	h.entries = n
}
