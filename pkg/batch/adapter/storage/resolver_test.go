package storage

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	coreConfig "github.com/Yognotiano/TESIS/pkg/batch/core/config"
)

type mockProvider struct {
	mock.Mock
	kind string
}

func (m *mockProvider) GetConnection(name string) (StorageConnection, error) {
	args := m.Called(name)
	conn, _ := args.Get(0).(StorageConnection)
	return conn, args.Error(1)
}

func (m *mockProvider) CloseAll() error { return m.Called().Error(0) }
func (m *mockProvider) Type() string    { return m.kind }

type stubConn struct{ name string }

func (s *stubConn) Close() error { return nil }
func (s *stubConn) Type() string { return "gcs" }
func (s *stubConn) Name() string { return s.name }
func (s *stubConn) Upload(context.Context, string, string, io.Reader, string) error {
	return nil
}
func (s *stubConn) Download(context.Context, string, string) (io.ReadCloser, error) {
	return nil, nil
}
func (s *stubConn) ListObjects(context.Context, string, string, func(string) error) error {
	return nil
}
func (s *stubConn) DeleteObject(context.Context, string, string) error { return nil }

func TestConnectionResolver_DispatchesByType(t *testing.T) {
	cfg := coreConfig.NewConfig()
	cfg.Thermolog.AdapterConfigs["storage"] = map[string]interface{}{
		"mirror": map[string]interface{}{"type": "gcs", "bucket_name": "lab-temps"},
		"nfs":    map[string]interface{}{"type": "ftp"},
	}

	gcs := &mockProvider{kind: "gcs"}
	local := &mockProvider{kind: "local"}
	gcs.On("GetConnection", "mirror").Return(&stubConn{name: "mirror"}, nil).Once()

	r := NewConnectionResolver(cfg, gcs, local)

	conn, err := r.ResolveStorageConnection(context.Background(), "mirror")
	require.NoError(t, err)
	assert.Equal(t, "mirror", conn.Name())

	_, err = r.ResolveStorageConnection(context.Background(), "nfs")
	assert.ErrorContains(t, err, "no storage provider found for type 'ftp'")

	_, err = r.ResolveStorageConnection(context.Background(), "absent")
	assert.Error(t, err)

	gcs.AssertExpectations(t)
	local.AssertNotCalled(t, "GetConnection", mock.Anything)
}

func TestConnectionResolver_CloseAll(t *testing.T) {
	p := &mockProvider{kind: "local"}
	p.On("CloseAll").Return(nil).Once()

	r := NewConnectionResolver(coreConfig.NewConfig(), p)
	assert.NoError(t, r.CloseAll())
	p.AssertExpectations(t)
}
