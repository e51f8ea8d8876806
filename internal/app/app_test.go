package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-sync-keeper/internal/adapter"
	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// fakeDevice эмулирует device bridge с одним todo-элементом
type fakeDevice struct {
	connects    atomic.Int32
	disconnects atomic.Int32
}

func (d *fakeDevice) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/connect", func(w http.ResponseWriter, r *http.Request) {
		d.connects.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/disconnect", func(w http.ResponseWriter, r *http.Request) {
		d.disconnects.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/anchor", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"anchor": "gen-1"})
	})
	mux.HandleFunc("GET /api/items/{type}", func(w http.ResponseWriter, r *http.Request) {
		var items []models.Item
		if r.PathValue("type") == models.Todo.String() {
			items = []models.Item{{ID: "1", Fingerprint: "h1", Payload: []byte("BEGIN:VTODO")}}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	})
	return mux
}

// fakeMirror запоминает все PUT-запросы
type fakeMirror struct {
	mu   sync.Mutex
	puts []string
}

func (m *fakeMirror) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/items/{type}/{id}", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.puts = append(m.puts, r.PathValue("type")+"/"+r.PathValue("id"))
		m.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"fingerprint": "mirror-fp"})
	})
	return mux
}

func (m *fakeMirror) received() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.puts...)
}

func testSyncConfig(t *testing.T, deviceURL string) *config.SyncConfig {
	t.Helper()
	return &config.SyncConfig{
		MemberID: "zaurus-1",
		Storage: config.Storage{
			Driver: config.DriverFile,
			Files:  config.Files{Dir: t.TempDir()},
		},
		Adapter: config.Adapter{
			HTTPAddress:    deviceURL,
			RequestTimeout: 5 * time.Second,
		},
		Workers:       config.Workers{SyncInterval: time.Hour},
		ObjectTypes:   []models.ObjectType{models.Todo},
		CommitWorkers: 2,
	}
}

func TestNewApp_InvalidBridgeAddress(t *testing.T) {
	cfg := testSyncConfig(t, "")

	_, err := NewApp(context.Background(), cfg, models.DefaultMemberInfo(), models.AppBuildInfo{}, logger.Nop())
	assert.ErrorIs(t, err, adapter.ErrInvalidAddress)
}

func TestNewApp_InvalidMirrorAddress(t *testing.T) {
	cfg := testSyncConfig(t, "localhost:8090")
	cfg.Adapter.MirrorAddress = "http://"

	_, err := NewApp(context.Background(), cfg, models.DefaultMemberInfo(), models.AppBuildInfo{}, logger.Nop())
	assert.ErrorIs(t, err, adapter.ErrInvalidAddress)
	assert.Contains(t, err.Error(), "mirror")
}

func TestNewApp_UnknownStorageDriver(t *testing.T) {
	cfg := testSyncConfig(t, "localhost:8090")
	cfg.Storage.Driver = "redis"

	_, err := NewApp(context.Background(), cfg, models.DefaultMemberInfo(), models.AppBuildInfo{}, logger.Nop())
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}

func TestApp_Run_ReportOnly(t *testing.T) {
	device := &fakeDevice{}
	srv := httptest.NewServer(device.handler())
	defer srv.Close()

	cfg := testSyncConfig(t, srv.URL)
	a, err := NewApp(context.Background(), cfg, models.DefaultMemberInfo(), models.AppBuildInfo{}, logger.Nop())
	require.NoError(t, err)
	require.NotNil(t, a.Services())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return device.disconnects.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, int32(1), device.connects.Load())

	fs, err := store.NewFileStorage(cfg.Storage.Files, cfg.MemberID, logger.Nop())
	require.NoError(t, err)
	records, err := fs.LoadFingerprints(context.Background(), models.Todo)
	require.NoError(t, err)
	// без applier'ов изменения только отправляются в reporter, состояние всё равно фиксируется
	assert.Equal(t, []models.FingerprintRecord{{ID: "1", Fingerprint: "h1"}}, records)
}

func TestApp_Run_Mirror(t *testing.T) {
	device := &fakeDevice{}
	deviceSrv := httptest.NewServer(device.handler())
	defer deviceSrv.Close()

	mirror := &fakeMirror{}
	mirrorSrv := httptest.NewServer(mirror.handler())
	defer mirrorSrv.Close()

	cfg := testSyncConfig(t, deviceSrv.URL)
	cfg.Adapter.MirrorAddress = mirrorSrv.URL

	a, err := NewApp(context.Background(), cfg, models.DefaultMemberInfo(), models.AppBuildInfo{}, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return device.disconnects.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"todo/1"}, mirror.received())

	fs, err := store.NewFileStorage(cfg.Storage.Files, cfg.MemberID, logger.Nop())
	require.NoError(t, err)
	records, err := fs.LoadFingerprints(context.Background(), models.Todo)
	require.NoError(t, err)
	// в хранилище остаётся fingerprint устройства, а не зеркала
	assert.Equal(t, []models.FingerprintRecord{{ID: "1", Fingerprint: "h1"}}, records)

	anchor, ok, err := fs.GetAnchor(context.Background(), "device")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "gen-1", anchor)
}

func freeAddress(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestApp_Run_ControlAPI(t *testing.T) {
	device := &fakeDevice{}
	srv := httptest.NewServer(device.handler())
	defer srv.Close()

	cfg := testSyncConfig(t, srv.URL)
	cfg.Server = config.Server{HTTPAddress: freeAddress(t), RequestTimeout: 5 * time.Second}

	a, err := NewApp(context.Background(), cfg, models.DefaultMemberInfo(), models.NewAppBuildInfo("1.0.0", "", ""), logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	base := "http://" + cfg.Server.HTTPAddress

	// ждём первый сеанс, запущенный воркером при старте
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/api/status")
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		var status struct {
			Sessions int `json:"sessions"`
		}
		return json.NewDecoder(resp.Body).Decode(&status) == nil && status.Sessions >= 1
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Post(base+"/api/sync", "application/json", nil)
	require.NoError(t, err)
	var got struct {
		Report struct {
			Committed bool `json:"committed"`
		} `json:"report"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, got.Report.Committed)
	assert.Equal(t, int32(2), device.connects.Load())

	cancel()
	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
