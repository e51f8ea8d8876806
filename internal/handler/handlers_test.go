package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/service"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// newTestServices returns an empty *service.Services. http.NewHandler only
// copies the interfaces, so nil services are safe for construction-time tests.
func newTestServices() *service.Services {
	return &service.Services{}
}

func TestNewHandlers_WithAddress(t *testing.T) {
	cfg := &config.SyncConfig{Server: config.Server{HTTPAddress: "localhost:8070"}}

	h, err := NewHandlers(newTestServices(), cfg, models.NewAppBuildInfo("", "", ""), logger.Nop())

	require.NoError(t, err)
	require.NotNil(t, h)
	assert.NotNil(t, h.HTTP, "expected HTTP handler to be initialised")
	assert.NotNil(t, h.HTTP.Init())
}

// TestNewHandlers_NoAddress verifies that without a control API address
// NewHandlers returns errNoHandlersAreCreated and a nil *Handlers.
func TestNewHandlers_NoAddress(t *testing.T) {
	h, err := NewHandlers(newTestServices(), &config.SyncConfig{}, models.AppBuildInfo{}, logger.Nop())

	require.ErrorIs(t, err, errNoHandlersAreCreated)
	assert.Nil(t, h)
}

func TestNewHandlers_IndependentInstances(t *testing.T) {
	cfg := &config.SyncConfig{Server: config.Server{HTTPAddress: "localhost:8070"}}

	h1, err1 := NewHandlers(newTestServices(), cfg, models.AppBuildInfo{}, logger.Nop())
	h2, err2 := NewHandlers(newTestServices(), cfg, models.AppBuildInfo{}, logger.Nop())

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.NotSame(t, h1, h2)
	assert.NotSame(t, h1.HTTP, h2.HTTP)
}
