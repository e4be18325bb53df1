package ingest

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yognotiano/TESIS/internal/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/core/config"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a.TXT", "b*.TXT", "c d.TXT"}, splitList(" a.TXT ,, b*.TXT,\tc d.TXT ,"))
	assert.Nil(t, splitList(" , ,"))
	assert.Nil(t, splitList(""))
}

func TestHasGlobMeta(t *testing.T) {
	for tok, want := range map[string]bool{
		"2025*.TXT": true, "file?.TXT": true, "[ab].TXT": true, "plain.TXT": false,
	} {
		assert.Equal(t, want, hasGlobMeta(tok), tok)
	}
}

func TestBasename(t *testing.T) {
	assert.Equal(t, "bar.root", basename("foo/bar.root"))
	assert.Equal(t, "out.root", basename("/tmp/out.root"))
	assert.Equal(t, "x.TXT", basename(`C:\logs\x.TXT`))
	assert.Equal(t, "x.TXT", basename("x.TXT"))
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "20250820_b.TXT", "20250819_a.TXT", "notes.md")

	files, err := ExpandInputs(filepath.Join(dir, "2025*.TXT") + " , missing.TXT")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "20250819_a.TXT"),
		filepath.Join(dir, "20250820_b.TXT"),
		"missing.TXT",
	}, files, "globs are sorted, literals kept unchecked")

	dup := filepath.Join(dir, "20250819_a.TXT")
	files, err = ExpandInputs(dup + "," + filepath.Join(dir, "20250819*"))
	require.NoError(t, err)
	assert.Equal(t, []string{dup, dup}, files, "no de-duplication")
}

func TestExpandInputs_NoInputs(t *testing.T) {
	for _, pattern := range []string{"", " , ", filepath.Join(t.TempDir(), "*.TXT")} {
		_, err := ExpandInputs(pattern)
		assert.ErrorIs(t, err, exception.ErrNoInputs, "pattern %q", pattern)
		assert.True(t, exception.IsFatal(err))
	}
}

func TestChooseOutputName(t *testing.T) {
	cases := []struct {
		name     string
		files    []string
		override string
		want     string
	}{
		{"single day", []string{"logs/20250819_0800-0800.TXT"}, "", "temps_20250819.root"},
		{"auto keyword", []string{"20250819_x.TXT"}, "auto", "temps_20250819.root"},
		{"two days", []string{"20250820_b.TXT", "20250819_a.TXT"}, "", "temps_20250819_20250820.root"},
		{"same day twice", []string{"20250819_a.TXT", "20250819_b.TXT"}, "", "temps_20250819.root"},
		{"no prefix", []string{"ok.TXT", "2025081_short.TXT"}, "", "temps.root"},
		{"mixed", []string{"ok.TXT", "20250821_c.TXT"}, "", "temps_20250821.root"},
		{"override dir stripped", []string{"20250819_a.TXT"}, "foo/bar.root", "bar.root"},
		{"override absolute", nil, "/tmp/out.root", "out.root"},
		{"override extension verbatim", nil, "run.parquet", "run.parquet"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ChooseOutputName(tc.files, tc.override))
		})
	}
}

func TestDateSpan_OnlyPrefixOfBasename(t *testing.T) {
	dmin, dmax := DateSpan([]string{"20240101/x.TXT", "a20250819.TXT"})
	assert.Empty(t, dmin)
	assert.Empty(t, dmax)
}

func TestEnsureOutputDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("THERMO_BASE", base)
	exp := config.NewOsEnvironmentExpander()

	dir, err := EnsureOutputDir(exp, "$THERMO_BASE/Root", "temp_root")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "Root", "temp_root"), dir)
	assert.DirExists(t, dir)

	again, err := EnsureOutputDir(exp, "${THERMO_BASE}/Root", "temp_root")
	require.NoError(t, err)
	assert.Equal(t, dir, again, "idempotent")

	t.Setenv("HOME", base)
	home, err := EnsureOutputDir(exp, "~/lab", "temp_root")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "lab", "temp_root"), home)
}

func TestEnsureOutputDir_Unavailable(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := EnsureOutputDir(config.NewOsEnvironmentExpander(), blocker, "temp_root")
	assert.ErrorIs(t, err, exception.ErrOutputDirUnavailable)

	require.NoError(t, os.Mkdir(filepath.Join(base, "sub"), 0o755))
	_, err = EnsureOutputDir(config.NewOsEnvironmentExpander(), base, "file")
	assert.ErrorIs(t, err, exception.ErrOutputDirUnavailable)
}

func TestParseHeader(t *testing.T) {
	h, ok := parseHeader("# Inicio: 2025-08-19 15:22:22 ; Duracion: 60\n")
	require.True(t, ok)
	assert.Equal(t, model.HeaderRecord{Inicio: "2025-08-19 15:22:22", DuracionMin: 60}, h)

	h, ok = parseHeader("#Inicio:2025-08-19   15:22:22;Duracion:5")
	require.True(t, ok)
	assert.Equal(t, "2025-08-19   15:22:22", h.Inicio)
	assert.Equal(t, int64(5), h.DuracionMin)

	for _, bad := range []string{"# comment", "# Inicio: 2025-08-19 ; Duracion: 60", "# Inicio: 2025-08-19 15:22:22 ; Duracion: -3"} {
		_, ok := parseHeader(bad)
		assert.False(t, ok, bad)
	}
}

func TestReadHeader(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		f := strings.NewReader("# Inicio: 2025-08-19 15:22:22 ; Duracion: 60\n2025-08-19,15:22:22, S1: 1.0\n")
		br, h, state, err := readHeader(f)
		require.NoError(t, err)
		assert.Equal(t, headerPresent, state)
		assert.Equal(t, int64(60), h.DuracionMin)
		next, _ := br.ReadString('\n')
		assert.Equal(t, "2025-08-19,15:22:22, S1: 1.0\n", next)
	})
	t.Run("absent rewinds", func(t *testing.T) {
		f := strings.NewReader("2025-08-19,15:22:22, S1: 1.0\nsecond\n")
		br, _, state, err := readHeader(f)
		require.NoError(t, err)
		assert.Equal(t, headerAbsent, state)
		next, _ := br.ReadString('\n')
		assert.Equal(t, "2025-08-19,15:22:22, S1: 1.0\n", next)
	})
	t.Run("malformed is consumed", func(t *testing.T) {
		f := strings.NewReader("# just a note\n2025-08-19,15:22:22, S1: 1.0\n")
		br, _, state, err := readHeader(f)
		require.NoError(t, err)
		assert.Equal(t, headerMalformed, state)
		next, _ := br.ReadString('\n')
		assert.Equal(t, "2025-08-19,15:22:22, S1: 1.0\n", next)
	})
	t.Run("empty file", func(t *testing.T) {
		br, _, state, err := readHeader(strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, headerAbsent, state)
		_, err = br.ReadString('\n')
		assert.Error(t, err)
	})
}

func assertOnly(t *testing.T, row model.TempRow, want map[int]float32) {
	t.Helper()
	for i := 1; i <= model.NumSensors; i++ {
		v, ok := want[i]
		if !ok {
			assert.True(t, math.IsNaN(float64(row.Sensor(i))), "S%d should be NaN", i)
			continue
		}
		assert.Equal(t, math.Float32bits(v), math.Float32bits(row.Sensor(i)), "S%d", i)
	}
}

func TestParseLine_FullLine(t *testing.T) {
	row, err := ParseLine("2025-08-19,15:22:22, Unidad: C°, S1: 20.5, S2: 21.0.")
	require.NoError(t, err)
	assert.Equal(t, int32(2025), row.Year)
	assert.Equal(t, int32(8), row.Month)
	assert.Equal(t, int32(19), row.Day)
	assert.Equal(t, int32(15), row.Hour)
	assert.Equal(t, int32(22), row.Minute)
	assert.Equal(t, int32(22), row.Second)
	assert.Equal(t, int32(55342), row.Tsec)
	assertOnly(t, row, map[int]float32{1: 20.5, 2: 21.0})
}

func TestParseLine_TsecInvariant(t *testing.T) {
	for _, clock := range []string{"00:00:00", "07:00:00", "23:59:59", "12:34:56"} {
		row, err := ParseLine("2025-08-20," + clock + ", S1: 1")
		require.NoError(t, err)
		assert.Equal(t, row.Hour*3600+row.Minute*60+row.Second, row.Tsec, clock)
	}
}

func TestParseLine_Laws(t *testing.T) {
	base, err := ParseLine("2025-08-19,15:22:22, Unidad: C°, S1: 20.5, S2: 21.0, S19: -1.25")
	require.NoError(t, err)

	for _, variant := range []string{
		"2025-08-19,15:22:22, Unidad: C°, S1: 20.5, S2: 21.0, S19: -1.25.",
		"2025-08-19,15:22:22, Unidad: C°, S1: 20.5, S2: 21.0, S19: -1.25,",
		"2025-08-19,15:22:22, Unidad: C°, S19: -1.25, S2: 21.0, S1: 20.5",
		"  2025-08-19,15:22:22, Unidad: C°, S2:21.0, S19:   -1.25, S1: 20.5  \r\n",
	} {
		row, err := ParseLine(variant)
		require.NoError(t, err, variant)
		assert.Equal(t, base.Tsec, row.Tsec)
		assertOnly(t, row, map[int]float32{1: 20.5, 2: 21.0, 19: -1.25})
	}
}

func TestParseLine_SingleSensor(t *testing.T) {
	row, err := ParseLine("2025-08-19,15:22:22, S5: 21.3")
	require.NoError(t, err)
	assertOnly(t, row, map[int]float32{5: 21.3})
}

func TestParseLine_TrailingCommaNoUnit(t *testing.T) {
	row, err := ParseLine("2025-08-20,07:00:00, S19: -1.25,")
	require.NoError(t, err)
	assert.Equal(t, int32(25200), row.Tsec)
	assertOnly(t, row, map[int]float32{19: -1.25})
}

func TestParseLine_DuplicateAndOutOfRange(t *testing.T) {
	row, err := ParseLine("2025-08-19,15:22:22, S3: 1.5, S0: 9, S20: 9, S99999999999: 9, S3: +2.5")
	require.NoError(t, err)
	assertOnly(t, row, map[int]float32{3: 2.5})
}

func TestParseLine_NoSensors(t *testing.T) {
	row, err := ParseLine("2025-08-19,15:22:22, Unidad: C°")
	require.NoError(t, err)
	assertOnly(t, row, nil)
}

func TestParseLine_Ignored(t *testing.T) {
	for _, line := range []string{"", "   \n", "# comment", "  # Inicio: 2025-08-19 15:22:22 ; Duracion: 60"} {
		_, err := ParseLine(line)
		assert.ErrorIs(t, err, errIgnored, "%q", line)
	}
}

func TestParseLine_Skipped(t *testing.T) {
	for _, line := range []string{
		"garbage",
		",,",
		"2025-08-19 15:22:22 S1: 1.0",
		"2025-08-19,15:22:22",
		"2025-08,15:22:22, S1: 1.0",
		"2025-08-19,15:22, S1: 1.0",
		"2025/08/19,15:22:22, S1: 1.0",
		"2025-08-19,-1:22:22, S1: 1.0",
		"x,15:22:22, S1: 1.0",
	} {
		_, err := ParseLine(line)
		assert.True(t, errors.Is(err, exception.ErrLineSkip), "%q: %v", line, err)
	}
}

func TestScanUints(t *testing.T) {
	got, ok := scanUints("2025-08-19", '-')
	require.True(t, ok)
	assert.Equal(t, [3]uint32{2025, 8, 19}, got)

	got, ok = scanUints(" 15: 2:+3junk", ':')
	require.True(t, ok, "sscanf skips blanks before numbers and ignores trailing text")
	assert.Equal(t, [3]uint32{15, 2, 3}, got)

	_, ok = scanUints("15 :2:3", ':')
	assert.False(t, ok)
	_, ok = scanUints("99999999999-1-1", '-')
	assert.False(t, ok)
}
