package local

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageConfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/storage/config"
	coreConfig "github.com/Yognotiano/TESIS/pkg/batch/core/config"
)

func newAdapter(t *testing.T) (string, *localAdapter) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "temp_root")
	conn, err := NewLocalAdapter(storageConfig.StorageConfig{Type: ProviderType, BaseDir: dir}, "artifact")
	require.NoError(t, err)
	return dir, conn.(*localAdapter)
}

func TestNewLocalAdapter_CreatesBaseDir(t *testing.T) {
	dir, a := newAdapter(t)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "local", a.Type())
	assert.Equal(t, "artifact", a.Name())
}

func TestNewLocalAdapter_RejectsFileBaseDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := NewLocalAdapter(storageConfig.StorageConfig{BaseDir: file}, "bad")
	assert.Error(t, err)

	_, err = NewLocalAdapter(storageConfig.StorageConfig{}, "empty")
	assert.Error(t, err)
}

func TestUpload_ReplacesAtomically(t *testing.T) {
	dir, a := newAdapter(t)
	ctx := context.Background()

	require.NoError(t, a.Upload(ctx, "", "temps.root", strings.NewReader("first"), "application/octet-stream"))
	require.NoError(t, a.Upload(ctx, "", "temps.root", strings.NewReader("second"), "application/octet-stream"))

	data, err := os.ReadFile(filepath.Join(dir, "temps.root"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestUpload_FailureLeavesNoPartialFile(t *testing.T) {
	dir, a := newAdapter(t)

	err := a.Upload(context.Background(), "", "temps.root", failingReader{}, "")
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_RefusesToReplaceDirectory(t *testing.T) {
	dir, a := newAdapter(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "taken.root"), 0o755))

	err := a.Upload(context.Background(), "", "taken.root", strings.NewReader("x"), "")
	assert.Error(t, err)
}

func TestDownloadListDelete(t *testing.T) {
	_, a := newAdapter(t)
	ctx := context.Background()

	require.NoError(t, a.Upload(ctx, "", "2025/temps_20250819.root", bytes.NewReader([]byte("a")), ""))
	require.NoError(t, a.Upload(ctx, "", "2025/temps_20250820.root", bytes.NewReader([]byte("b")), ""))
	require.NoError(t, a.Upload(ctx, "", "other.root", bytes.NewReader([]byte("c")), ""))

	rc, err := a.Download(ctx, "", "2025/temps_20250820.root")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "b", string(body))

	var names []string
	require.NoError(t, a.ListObjects(ctx, "", "2025/", func(name string) error {
		names = append(names, name)
		return nil
	}))
	sort.Strings(names)
	assert.Equal(t, []string{"2025/temps_20250819.root", "2025/temps_20250820.root"}, names)

	require.NoError(t, a.DeleteObject(ctx, "", "other.root"))
	require.NoError(t, a.DeleteObject(ctx, "", "other.root"), "deleting twice is not an error")
	_, err = a.Download(ctx, "", "other.root")
	assert.Error(t, err)
}

func TestResolvePath_RejectsEscape(t *testing.T) {
	_, a := newAdapter(t)

	_, err := a.resolvePath("", "../outside.root")
	assert.Error(t, err)

	p, err := a.resolvePath("", "inside.root")
	require.NoError(t, err)
	assert.Equal(t, "inside.root", filepath.Base(p))
}

func TestLocalProvider_GetConnection(t *testing.T) {
	base := t.TempDir()
	t.Setenv("THERMO_ARCHIVE", base)

	cfg := coreConfig.NewConfig()
	cfg.Thermolog.AdapterConfigs["storage"] = map[string]interface{}{
		"archive": map[string]interface{}{"type": "local", "base_dir": "$THERMO_ARCHIVE/mirror"},
		"cloud":   map[string]interface{}{"type": "gcs", "bucket_name": "lab"},
	}
	p := NewLocalProvider(cfg)

	conn, err := p.GetConnection("archive")
	require.NoError(t, err)
	again, err := p.GetConnection("archive")
	require.NoError(t, err)
	assert.Same(t, conn, again)
	assert.DirExists(t, filepath.Join(base, "mirror"))

	_, err = p.GetConnection("cloud")
	assert.Error(t, err, "type mismatch")

	_, err = p.GetConnection("missing")
	assert.Error(t, err)

	assert.NoError(t, p.CloseAll())
}
