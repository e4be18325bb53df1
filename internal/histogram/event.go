package histogram

import "fmt"

// NumPairs is the number of (A, B) detector plane pairs in an event.
const NumPairs = 3

// Event is one entry of the events table.
type Event struct {
	Evn float32 `parquet:"name=evn, type=FLOAT"`
	A1  float32 `parquet:"name=A1, type=FLOAT"`
	A2  float32 `parquet:"name=A2, type=FLOAT"`
	A3  float32 `parquet:"name=A3, type=FLOAT"`
	B1  float32 `parquet:"name=B1, type=FLOAT"`
	B2  float32 `parquet:"name=B2, type=FLOAT"`
	B3  float32 `parquet:"name=B3, type=FLOAT"`
}

// Pair returns (Ak, Bk) for k in 1..NumPairs.
func (e *Event) Pair(k int) (a, b float32, err error) {
	switch k {
	case 1:
		return e.A1, e.B1, nil
	case 2:
		return e.A2, e.B2, nil
	case 3:
		return e.A3, e.B3, nil
	}
	return 0, 0, fmt.Errorf("pair %d out of range 1..%d", k, NumPairs)
}

// HistName is "density_<k>".
func HistName(k int) string { return fmt.Sprintf("density_%d", k) }

// HistTitle is "signal density for A<k> B<k>".
func HistTitle(k int) string { return fmt.Sprintf("signal density for A%d B%d", k, k) }

// OutputName is "histo_A<k>_B<k>.root".
func OutputName(k int) string { return fmt.Sprintf("histo_A%d_B%d.root", k, k) }
