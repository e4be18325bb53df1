package gcs

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	storageConfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/storage/config"
	coreConfig "github.com/Yognotiano/TESIS/pkg/batch/core/config"
)

func TestGCSAdapter_RequiresBucket(t *testing.T) {
	ctx := context.Background()
	conn, err := NewGCSAdapter(ctx, storageConfig.StorageConfig{Type: ProviderType}, "mirror", option.WithoutAuthentication())
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "gcs", conn.Type())
	assert.Equal(t, "mirror", conn.Name())

	err = conn.Upload(ctx, "", "temps.root", strings.NewReader("x"), "application/octet-stream")
	assert.ErrorContains(t, err, "bucket_name not configured")
}

func TestGCSProvider_TypeMismatch(t *testing.T) {
	cfg := coreConfig.NewConfig()
	cfg.Thermolog.AdapterConfigs["storage"] = map[string]interface{}{
		"archive": map[string]interface{}{"type": "local", "base_dir": "/tmp"},
	}
	p := NewGCSProvider(cfg)

	assert.Equal(t, "gcs", p.Type())
	_, err := p.GetConnection("archive")
	assert.ErrorContains(t, err, "type mismatch")
	assert.NoError(t, p.CloseAll())
}
