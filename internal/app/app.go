package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-sync-keeper/internal/adapter"
	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/handler"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/server"
	"github.com/MKhiriev/go-sync-keeper/internal/service"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
	"github.com/MKhiriev/go-sync-keeper/internal/utils"
	"github.com/MKhiriev/go-sync-keeper/internal/workers"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// App is the sync daemon of one member.
type App struct {
	storages *store.Storages
	services *service.Services
	workers  *workers.Workers

	logger *logger.Logger
}

// NewApp opens the storages and the device bridge described by cfg and wires
// the sync services for member. When cfg.Adapter.MirrorAddress is set every
// detected change is written to a second bridge at that address. When
// cfg.Server.HTTPAddress is set the control API runs next to the sync worker.
func NewApp(ctx context.Context, cfg *config.SyncConfig, member models.MemberInfo, info models.AppBuildInfo, log *logger.Logger) (*App, error) {
	storages, err := store.NewStorages(ctx, cfg.Storage, cfg.MemberID, log)
	if err != nil {
		return nil, fmt.Errorf("create storages: %w", err)
	}

	deps, err := newSyncDependencies(cfg, log)
	if err != nil {
		_ = storages.Close()
		return nil, err
	}

	sessionCfg := service.SessionConfig{
		MemberID:      cfg.MemberID,
		Member:        member,
		ObjectTypes:   cfg.ObjectTypes,
		SlowSync:      cfg.SlowSync,
		Timeouts:      cfg.Timeouts,
		CommitWorkers: cfg.CommitWorkers,
	}
	services := service.NewServices(storages, deps, sessionCfg, log)

	runners := []workers.Worker{
		workers.NewSyncWorker(services.SyncService, services.SyncJob, cfg.Workers.SyncInterval, log),
	}

	if cfg.Server.HTTPAddress != "" {
		handlers, err := handler.NewHandlers(services, cfg, info, log)
		if err != nil {
			_ = storages.Close()
			return nil, fmt.Errorf("create handlers: %w", err)
		}
		srv, err := server.NewServer(handlers, cfg.Server, log)
		if err != nil {
			_ = storages.Close()
			return nil, fmt.Errorf("create server: %w", err)
		}
		runners = append(runners, srv)
	}

	return &App{
		storages: storages,
		services: services,
		workers:  workers.NewWorkers(log, runners...),
		logger:   log,
	}, nil
}

func newSyncDependencies(cfg *config.SyncConfig, log *logger.Logger) (service.SyncDependencies, error) {
	bridge, err := adapter.NewHTTPDeviceBridge(cfg.Adapter, log.WithFields("bridge", "device"))
	if err != nil {
		return service.SyncDependencies{}, fmt.Errorf("create device bridge: %w", err)
	}

	deps := service.SyncDependencies{
		ConfigLoader: config.NewMemberConfigLoader(cfg.MemberConfigPath),
		Device:       bridge,
		Source:       bridge,
		IDs:          utils.NewUUIDGenerator(),
	}

	if cfg.Adapter.MirrorAddress != "" {
		mirrorCfg := cfg.Adapter
		mirrorCfg.HTTPAddress = cfg.Adapter.MirrorAddress

		mirror, err := adapter.NewHTTPDeviceBridge(mirrorCfg, log.WithFields("bridge", "mirror"))
		if err != nil {
			return service.SyncDependencies{}, fmt.Errorf("create mirror bridge: %w", err)
		}
		deps.DefaultApplier = mirrorApplier(mirror)
	}

	return deps, nil
}

// mirrorApplier writes changes to mirror. The fingerprint store tracks the
// device, so the mirror's own fingerprint is dropped.
func mirrorApplier(mirror adapter.DeviceBridge) service.Applier {
	return service.ApplierFunc(func(ctx context.Context, change models.ChangeRecord) (models.ApplyResult, error) {
		result, err := mirror.Apply(ctx, change)
		if err != nil {
			return models.ApplyResult{}, err
		}
		result.Fingerprint = ""
		return result, nil
	})
}

// Services exposes the wired services.
func (a *App) Services() *service.Services {
	return a.services
}

// Run implements Runner. It runs the workers until ctx is cancelled or one of
// them fails and closes the storages on return.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info().Str("func", "App.Run").Msg("sync daemon started")

	runErr := a.workers.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	if err := a.storages.Close(); err != nil {
		a.logger.Err(err).Str("func", "App.Run").Msg("error closing storages")
		runErr = errors.Join(runErr, fmt.Errorf("close storages: %w", err))
	}

	a.logger.Info().Str("func", "App.Run").Msg("sync daemon stopped")
	return runErr
}
