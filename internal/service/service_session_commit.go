package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-sync-keeper/models"
)

// CommitChange applies change through apply within the apply timeout. On
// success the fingerprint buffer is updated: Added and Modified items are
// marked seen with the fingerprint reported by apply (or the change's own
// when none is reported) and Deleted items are forgotten. On failure the
// item is reverted to its stored state and an error wrapping ErrApplyFailed
// is returned; the session stays usable.
func (s *Session) CommitChange(ctx context.Context, change models.ChangeRecord, apply Applier) (models.ApplyResult, error) {
	s.mu.Lock()
	if err := s.checkState("commit change", models.Connected, models.ChangesEnumerated, models.Committing); err != nil {
		s.mu.Unlock()
		return models.ApplyResult{}, err
	}
	s.state = models.Committing
	h, ok := s.handles[change.ObjectType]
	s.mu.Unlock()
	if !ok {
		return models.ApplyResult{}, fmt.Errorf("%w: %s", ErrUnknownObjectType, change.ObjectType)
	}

	log := s.logger.WithFields("object_type", change.ObjectType.String(), "item_id", string(change.ID))

	fail := func(cause error) (models.ApplyResult, error) {
		err := fmt.Errorf("%w: %s %s %q: %w", ErrApplyFailed, change.Kind, change.ObjectType, change.ID, cause)
		log.Warn().Err(cause).Str("func", "Session.CommitChange").Str("kind", change.Kind.String()).Msg("change not applied")
		if revertErr := h.Revert(change.ID); revertErr != nil {
			return models.ApplyResult{}, errors.Join(err, revertErr)
		}
		return models.ApplyResult{}, err
	}

	if apply == nil {
		return fail(errors.New("no applier configured"))
	}

	result, err := callWithTimeout(ctx, s.cfg.Timeouts.Apply, func(ctx context.Context) (models.ApplyResult, error) {
		return apply.Apply(ctx, change)
	})
	if err != nil {
		return fail(err)
	}

	if change.Kind == models.Deleted {
		if err := h.Forget(change.ID); err != nil {
			return models.ApplyResult{}, err
		}
	} else {
		fp := result.Fingerprint
		if fp == "" {
			fp = change.Fingerprint
		}
		if fp == "" {
			return fail(fmt.Errorf("%w: no fingerprint", ErrInvalidItem))
		}
		if err := h.MarkSeen(change.ID, fp); err != nil {
			return models.ApplyResult{}, err
		}
		result.Fingerprint = fp
	}

	log.Debug().Str("func", "Session.CommitChange").Str("kind", change.Kind.String()).Msg("change applied")
	return result, nil
}

// CommitChanges applies changes concurrently, at most CommitWorkers at a
// time, using the applier returned by applierFor for each change's type.
// Per-change failures are collected in the report; only errors that end the
// session (an errored session or a closed handle) are returned.
func (s *Session) CommitChanges(ctx context.Context, changes []models.ChangeRecord, applierFor func(models.ObjectType) Applier) (models.CommitReport, error) {
	type outcome struct {
		done bool
		err  error
	}
	outcomes := make([]outcome, len(changes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.cfg.CommitWorkers))

	for i, change := range changes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = outcome{done: true, err: err}
				return nil
			}

			var apply Applier
			if applierFor != nil {
				apply = applierFor(change.ObjectType)
			}

			_, err := s.CommitChange(gctx, change, apply)
			if err != nil && !errors.Is(err, ErrApplyFailed) {
				return err
			}
			outcomes[i] = outcome{done: true, err: err}
			return nil
		})
	}
	err := g.Wait()

	var report models.CommitReport
	for i, o := range outcomes {
		switch {
		case !o.done:
			report.Failed = append(report.Failed, models.ChangeFailure{Change: changes[i], Err: err})
		case o.err != nil:
			report.Failed = append(report.Failed, models.ChangeFailure{Change: changes[i], Err: o.err})
		default:
			report.Applied = append(report.Applied, changes[i])
		}
	}

	s.logger.Info().
		Str("func", "Session.CommitChanges").
		Int("applied", len(report.Applied)).
		Int("failed", len(report.Failed)).
		Msg("commit phase finished")

	return report, err
}
