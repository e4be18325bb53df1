package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yognotiano/TESIS/internal/histogram"
	"github.com/Yognotiano/TESIS/internal/table"
	storageConfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/storage/config"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/storage/local"
	"github.com/Yognotiano/TESIS/pkg/batch/component/step/writer"
	"github.com/Yognotiano/TESIS/pkg/batch/core/config"
	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

const testConfig = `
thermolog:
  system:
    logging:
      level: WARN
  ingest:
    sub_dir: temp_root
    format: parquet
  observability:
    metrics:
      backend: none
`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := logger.GetLogLevel().String()
	t.Cleanup(func() { logger.SetLogLevel(prev) })

	root := newRootCommand(&globalOptions{embedded: config.EmbeddedConfig(testConfig)})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestIngestThenRange(t *testing.T) {
	base := t.TempDir()
	logs := t.TempDir()
	writeLog(t, logs, "20250819_a.TXT", "# Inicio: 2025-08-19 15:22:22 ; Duracion: 60\n"+
		"2025-08-19,15:22:21, S1: 19.5\n"+
		"2025-08-19,15:22:22, S1: 20.5, S2: 21.0.\n"+
		"junk\n")
	writeLog(t, logs, "20250820_b.TXT", "2025-08-20,07:00:00, S1: 18.0,\n")

	_, err := runCLI(t, "ingest", filepath.Join(logs, "*.TXT"), "--base-dir", base)
	require.NoError(t, err)

	artifact := filepath.Join(base, "temp_root", "temps_20250819_20250820.root")
	tbl, err := table.Read(context.Background(), artifact, "")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, []int32{0, 1}, tbl.FileIDs())

	out, err := runCLI(t, "range", artifact, "2025-08-19 15:22:22", "--expr", "S1:tsec")
	require.NoError(t, err)
	assert.Equal(t, "tsec\tS1\n55342\t20.5\n25200\t18\n", out)

	subset := filepath.Join(t.TempDir(), "subset.root")
	_, err = runCLI(t, "range", artifact, "2025-08-19 15:22:22", "2025-08-19 23:59:59", "--file-id", "0", "--subset", subset)
	require.NoError(t, err)
	sub, err := table.Read(context.Background(), subset, "")
	require.NoError(t, err)
	require.Len(t, sub.Rows, 1)
	_, ok := sub.Header(0)
	assert.True(t, ok)
}

func TestIngest_SQLiteOverrideName(t *testing.T) {
	base := t.TempDir()
	in := writeLog(t, t.TempDir(), "20250819_a.TXT", "2025-08-19,15:22:22, S1: 20.5\n")

	_, err := runCLI(t, "ingest", in, "elsewhere/custom.root", "--base-dir", base, "--format", "sqlite", "--no-lock")
	require.NoError(t, err)

	format, err := table.DetectFormat(filepath.Join(base, "temp_root", "custom.root"))
	require.NoError(t, err)
	assert.Equal(t, config.FormatSQLite, format)
}

func TestIngest_Failures(t *testing.T) {
	_, err := runCLI(t, "ingest", filepath.Join(t.TempDir(), "*.TXT"), "--base-dir", t.TempDir())
	assert.ErrorIs(t, err, exception.ErrNoInputs)

	_, err = runCLI(t, "ingest", "x.TXT", "--format", "root")
	assert.ErrorContains(t, err, "unknown format")

	_, err = runCLI(t, "ingest", "a", "b", "c")
	assert.Error(t, err)
}

func TestRange_InvalidStart(t *testing.T) {
	_, err := runCLI(t, "range", "temps.root", "19/08/2025")
	assert.ErrorIs(t, err, exception.ErrInvalidRange)
}

func TestHisto(t *testing.T) {
	dir := t.TempDir()
	conn, err := local.NewLocalAdapter(storageConfig.StorageConfig{Type: local.ProviderType, BaseDir: dir}, "events")
	require.NoError(t, err)
	w, err := writer.NewParquetWriter[histogram.Event]("events", map[string]interface{}{"objectName": "data.parquet"}, conn, nil)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, w.Open(ctx, model.NewExecutionContext()))
	require.NoError(t, w.Write(ctx, []histogram.Event{{A2: 1.5, B2: 2.5}, {A2: 1.5, B2: 2.5}, {A2: 40, B2: 1}}))
	require.NoError(t, w.Close(ctx))

	_, err = runCLI(t, "histo", filepath.Join(dir, "data.parquet"), "--pair", "2")
	require.NoError(t, err)

	h, err := histogram.Load(ctx, filepath.Join(dir, "histo_A2_B2.root"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), h.Entries())
	assert.Equal(t, 2.0, h.BinContent(2, 3))
	assert.NoFileExists(t, filepath.Join(dir, "histo_A1_B1.root"))
}

func TestRootHelp(t *testing.T) {
	out, err := runCLI(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"ingest", "range", "histo"} {
		assert.True(t, strings.Contains(out, sub), sub)
	}
}
