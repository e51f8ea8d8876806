package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
	"github.com/MKhiriev/go-sync-keeper/models"
)

type fixedIDs string

func (id fixedIDs) Generate() string {
	return string(id)
}

type recordingApplier struct {
	mu      sync.Mutex
	changes []models.ChangeRecord
}

func (a *recordingApplier) Apply(_ context.Context, change models.ChangeRecord) (models.ApplyResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.changes = append(a.changes, change)
	return models.ApplyResult{}, nil
}

func (a *recordingApplier) byID() map[models.ItemID]models.ChangeRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[models.ItemID]models.ChangeRecord, len(a.changes))
	for _, c := range a.changes {
		out[c.ID] = c
	}
	return out
}

func (e *sessionEnv) newSyncService(deps SyncDependencies) SyncService {
	deps.ConfigLoader = e.config
	deps.Device = e.device
	deps.Source = e.source
	if deps.Reporter == nil {
		deps.Reporter = e.reporter
	}
	if deps.IDs == nil {
		deps.IDs = fixedIDs("session-1")
	}
	return NewSyncService(
		NewFingerprintStore(e.storage, logger.Nop()),
		NewAnchorStore(e.storage, logger.Nop()),
		deps, e.cfg, logger.Nop(),
	)
}

func TestSyncService_RunSession_ReportOnly(t *testing.T) {
	env := newSessionEnv(t)
	env.source.set(models.Todo, models.Item{ID: "A", Fingerprint: "h1"})
	env.source.set(models.Contact, models.Item{ID: "K", Fingerprint: "hk"})
	svc := env.newSyncService(SyncDependencies{})

	report, err := svc.RunSession(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "session-1", report.SessionID)
	assert.Equal(t, "zaurus-1", report.MemberID)
	assert.True(t, report.Committed)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
	require.Len(t, report.ChangeSets, 2)
	assert.Equal(t, models.Todo, report.ChangeSets[0].ObjectType)
	assert.Equal(t, models.Contact, report.ChangeSets[1].ObjectType)
	assert.Empty(t, report.Commit.Applied)
	assert.Len(t, env.reporter.changes, 2)

	assert.Equal(t, []models.FingerprintRecord{{ID: "A", Fingerprint: "h1"}}, env.stored(t, models.Todo))
	assert.Equal(t, []models.FingerprintRecord{{ID: "K", Fingerprint: "hk"}}, env.stored(t, models.Contact))

	report, err = svc.RunSession(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.ChangeSets[0].Changes)
	assert.Empty(t, report.ChangeSets[1].Changes)
}

func TestSyncService_RunSession_AppliesChanges(t *testing.T) {
	env := newSessionEnv(t)
	env.source.set(models.Todo, models.Item{ID: "A", Fingerprint: "h1"})
	env.source.set(models.Contact, models.Item{ID: "K", Fingerprint: "hk"})

	todos := &recordingApplier{}
	fallback := &recordingApplier{}
	svc := env.newSyncService(SyncDependencies{
		Appliers:       map[models.ObjectType]Applier{models.Todo: todos},
		DefaultApplier: fallback,
	})

	_, err := svc.RunSession(context.Background())
	require.NoError(t, err)

	// второй проход: A изменён и отдан без тела, K удалён
	env.source.set(models.Todo, models.Item{ID: "A", Fingerprint: "h1b", Deferred: true})
	env.source.set(models.Contact)
	env.source.payloads["A"] = []byte("BEGIN:VTODO")

	report, err := svc.RunSession(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Committed)
	assert.Len(t, report.Commit.Applied, 2)
	assert.Empty(t, report.Commit.Failed)

	a := todos.byID()["A"]
	assert.Equal(t, models.Modified, a.Kind)
	assert.False(t, a.Deferred)
	assert.Equal(t, []byte("BEGIN:VTODO"), a.Payload)
	assert.Equal(t, models.Deleted, fallback.byID()["K"].Kind)

	assert.Equal(t, []models.FingerprintRecord{{ID: "A", Fingerprint: "h1b"}}, env.stored(t, models.Todo))
	assert.Empty(t, env.stored(t, models.Contact))
}

func TestSyncService_RunSession_MissingApplierKeepsChange(t *testing.T) {
	env := newSessionEnv(t)
	env.source.set(models.Todo, models.Item{ID: "A", Fingerprint: "h1"})
	env.source.set(models.Contact, models.Item{ID: "K", Fingerprint: "hk"})

	svc := env.newSyncService(SyncDependencies{
		Appliers: map[models.ObjectType]Applier{models.Todo: &recordingApplier{}},
	})

	report, err := svc.RunSession(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Commit.Failed, 1)
	assert.Equal(t, models.ItemID("K"), report.Commit.Failed[0].Change.ID)
	assert.ErrorIs(t, report.Commit.Failed[0].Err, ErrApplyFailed)
	assert.Empty(t, env.stored(t, models.Contact))
}

func TestSyncService_RunSession_EnumerationFailure(t *testing.T) {
	env := newSessionEnv(t)
	env.cfg.ObjectTypes = []models.ObjectType{models.Todo}
	env.source.set(models.Todo, models.Item{ID: "K", Fingerprint: "hk"}, models.Item{ID: "A", Fingerprint: "h1"}, models.Item{ID: "A", Fingerprint: "h1"})
	svc := env.newSyncService(SyncDependencies{})

	report, err := svc.RunSession(context.Background())
	require.ErrorIs(t, err, ErrDuplicateIdentity)
	assert.False(t, report.Committed)
	assert.Empty(t, env.stored(t, models.Todo))
	assert.Equal(t, int32(1), env.device.disconnects.Load())

	_, found, err := env.storage.GetAnchor(context.Background(), AnchorKeyDevice)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSyncService_RunSession_CancelledContext(t *testing.T) {
	env := newSessionEnv(t)
	svc := env.newSyncService(SyncDependencies{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.RunSession(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, report.Committed)
}

func TestNewServices(t *testing.T) {
	env := newSessionEnv(t)
	storages := &store.Storages{FingerprintRepository: env.storage, AnchorRepository: env.storage}

	services := NewServices(storages, SyncDependencies{
		ConfigLoader: env.config,
		Device:       env.device,
		Source:       env.source,
		IDs:          fixedIDs("s"),
	}, env.cfg, logger.Nop())
	require.NotNil(t, services.SyncService)
	require.NotNil(t, services.SyncJob)

	env.source.set(models.Todo, models.Item{ID: "A", Fingerprint: "h1"})
	report, err := services.SyncService.RunSession(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Committed)

	value, found, err := services.Anchors.Get(context.Background(), AnchorKeyDevice)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "gen-1", value)

	status := services.StatusService.Status()
	assert.Equal(t, 1, status.Sessions)
	require.NotNil(t, status.LastReport)
	assert.Equal(t, report.SessionID, status.LastReport.SessionID)
}

func TestLogReporter(t *testing.T) {
	r := NewLogReporter(logger.Nop())
	assert.NoError(t, r.ReportChange(context.Background(), models.ChangeRecord{ID: "A", ObjectType: models.Todo, Kind: models.Added}))
}
