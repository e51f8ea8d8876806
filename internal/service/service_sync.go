package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// IDGenerator produces session ids.
type IDGenerator interface {
	Generate() string
}

// SyncDependencies are the external collaborators of a sync run.
type SyncDependencies struct {
	ConfigLoader ConfigLoader
	Device       Device
	Source       ItemSource
	Reporter     ChangeReporter

	// Appliers routes changes by object type. DefaultApplier handles types
	// missing from the map. With neither set the commit phase is skipped:
	// the reporter is the only consumer of the changes.
	Appliers       map[models.ObjectType]Applier
	DefaultApplier Applier

	IDs IDGenerator
}

type syncService struct {
	cfg            SessionConfig
	deps           SessionDeps
	appliers       map[models.ObjectType]Applier
	defaultApplier Applier
	ids            IDGenerator
	logger         *logger.Logger

	// one session at a time
	mu sync.Mutex
}

// NewSyncService returns a SyncService running sessions over the given
// stores and collaborators.
func NewSyncService(fingerprints *FingerprintStore, anchors *AnchorStore, deps SyncDependencies, cfg SessionConfig, log *logger.Logger) SyncService {
	return &syncService{
		cfg: cfg,
		deps: SessionDeps{
			Fingerprints: fingerprints,
			Anchors:      anchors,
			Classifier:   NewChangeClassifier(log),
			ConfigLoader: deps.ConfigLoader,
			Device:       deps.Device,
			Source:       deps.Source,
			Reporter:     deps.Reporter,
		},
		appliers:       deps.Appliers,
		defaultApplier: deps.DefaultApplier,
		ids:            deps.IDs,
		logger:         log,
	}
}

// RunSession connects, enumerates every accepted type concurrently, applies
// the changes when appliers are configured and finalizes. Any failure or
// cancellation of ctx finalizes without commit.
func (s *syncService) RunSession(ctx context.Context) (report models.SessionReport, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report = models.SessionReport{
		SessionID: s.ids.Generate(),
		MemberID:  s.cfg.MemberID,
		StartedAt: time.Now(),
	}
	defer func() { report.FinishedAt = time.Now() }()

	session := NewSession(report.SessionID, s.cfg, s.deps, s.logger)
	log := s.logger.WithFields("session_id", report.SessionID)

	abort := func(cause error) (models.SessionReport, error) {
		if finErr := session.Finalize(ctx, false); finErr != nil {
			log.Warn().Err(finErr).Str("func", "syncService.RunSession").Msg("finalize after failure")
		}
		log.Err(cause).Str("func", "syncService.RunSession").Msg("sync session failed")
		return report, cause
	}

	if err := session.Connect(ctx); err != nil {
		return abort(fmt.Errorf("connect: %w", err))
	}

	types := s.cfg.Types()
	sets := make([]models.ChangeSet, len(types))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range types {
		g.Go(func() error {
			set, err := session.EnumerateChanges(gctx, t)
			sets[i] = set
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return abort(err)
	}
	report.ChangeSets = sets

	if s.hasAppliers() {
		var changes []models.ChangeRecord
		for _, set := range sets {
			changes = append(changes, set.Changes...)
		}

		commit, err := session.CommitChanges(ctx, changes, s.applierFor(session))
		report.Commit = commit
		if err != nil {
			return abort(fmt.Errorf("commit changes: %w", err))
		}
	}

	if err := ctx.Err(); err != nil {
		return abort(err)
	}

	if err := session.Finalize(ctx, true); err != nil {
		log.Err(err).Str("func", "syncService.RunSession").Msg("finalize failed")
		return report, fmt.Errorf("finalize: %w", err)
	}
	report.Committed = true

	log.Info().
		Str("func", "syncService.RunSession").
		Int("applied", len(report.Commit.Applied)).
		Int("failed", len(report.Commit.Failed)).
		Msg("sync session committed")
	return report, nil
}

func (s *syncService) hasAppliers() bool {
	return s.defaultApplier != nil || len(s.appliers) > 0
}

// applierFor resolves the applier of a type and fetches deferred bodies
// before handing a change over.
func (s *syncService) applierFor(session *Session) func(models.ObjectType) Applier {
	return func(objectType models.ObjectType) Applier {
		apply, ok := s.appliers[objectType]
		if !ok {
			apply = s.defaultApplier
		}
		if apply == nil {
			return nil
		}

		return ApplierFunc(func(ctx context.Context, change models.ChangeRecord) (models.ApplyResult, error) {
			if change.Deferred && change.Kind != models.Deleted {
				payload, err := session.FetchPayload(ctx, change.ObjectType, change.ID)
				if err != nil {
					return models.ApplyResult{}, fmt.Errorf("fetch deferred payload: %w", err)
				}
				change.Payload = payload
				change.Deferred = false
			}
			return apply.Apply(ctx, change)
		})
	}
}
