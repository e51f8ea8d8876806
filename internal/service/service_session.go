// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// SessionConfig describes what a session synchronizes and how long each
// phase may take.
type SessionConfig struct {
	MemberID string
	Member   models.MemberInfo

	// ObjectTypes lists the accepted types. Empty means every type of Member.
	ObjectTypes []models.ObjectType
	// SlowSync lists types the host wants fully reconciled.
	SlowSync []models.ObjectType

	// Timeouts bounds the connect, enumerate and apply phases. Zero
	// durations disable the bound.
	Timeouts models.Timeouts
	// CommitWorkers bounds concurrent applies in CommitChanges.
	CommitWorkers int
}

// Types returns the accepted object types.
func (c SessionConfig) Types() []models.ObjectType {
	if len(c.ObjectTypes) > 0 {
		return c.ObjectTypes
	}
	return c.Member.Types()
}

// SessionDeps are the collaborators of a session.
type SessionDeps struct {
	Fingerprints *FingerprintStore
	Anchors      *AnchorStore
	Classifier   *ChangeClassifier
	ConfigLoader ConfigLoader
	Device       Device
	Source       ItemSource
	// Reporter is optional.
	Reporter ChangeReporter
}

// Session drives one sync session through
// Disconnected → Connected → ChangesEnumerated → Committing → Done.
// Any fatal failure moves it to Errored, from which only Finalize is
// accepted. Durable fingerprint state changes only in Finalize(true).
type Session struct {
	id     string
	cfg    SessionConfig
	deps   SessionDeps
	logger *logger.Logger

	mu           sync.Mutex
	state        models.SessionState
	handles      map[models.ObjectType]*FingerprintHandle
	enumerated   map[models.ObjectType]bool
	reset        map[models.ObjectType]bool
	deviceAnchor string
	configDigest string
	deviceUp     bool
}

// NewSession returns a disconnected session identified by id.
func NewSession(id string, cfg SessionConfig, deps SessionDeps, log *logger.Logger) *Session {
	return &Session{
		id:         id,
		cfg:        cfg,
		deps:       deps,
		logger:     log.WithFields("session_id", id, "member_id", cfg.MemberID),
		state:      models.Disconnected,
		enumerated: make(map[models.ObjectType]bool),
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state.
func (s *Session) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsSlowSync reports whether objectType is reconciled with a full pass in
// this session.
func (s *Session) IsSlowSync(objectType models.ObjectType) bool {
	s.mu.Lock()
	h, ok := s.handles[objectType]
	s.mu.Unlock()
	return ok && h.IsSlowSync()
}

type connectResult struct {
	handles      map[models.ObjectType]*FingerprintHandle
	reset        map[models.ObjectType]bool
	deviceAnchor string
	configDigest string
	deviceUp     bool
}

// Connect loads the member configuration, connects the device, opens a
// fingerprint handle per accepted type and compares anchors. An anchor
// mismatch puts every type into slow sync.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.Disconnected {
		return s.invalidTransition("connect")
	}

	res, err := callWithTimeout(ctx, s.cfg.Timeouts.Connect, s.connect)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			err = fmt.Errorf("%w: %w", ErrConnectFailed, err)
		}
		s.logger.Err(err).Str("func", "Session.Connect").Msg("connect failed")
		s.state = models.Errored
		// after a timeout the device may have connected late
		s.deviceUp = res.deviceUp || errors.Is(err, ErrTimeout)
		s.disconnectDevice(ctx)
		return err
	}

	s.handles = res.handles
	s.reset = res.reset
	s.deviceAnchor = res.deviceAnchor
	s.configDigest = res.configDigest
	s.deviceUp = true
	s.state = models.Connected

	slow := make([]string, 0, len(s.handles))
	for _, t := range slices.Sorted(maps.Keys(s.handles)) {
		if s.handles[t].IsSlowSync() {
			slow = append(slow, t.String())
		}
	}
	s.logger.Info().
		Str("func", "Session.Connect").
		Strs("slow_sync", slow).
		Msg("session connected")
	return nil
}

func (s *Session) connect(ctx context.Context) (connectResult, error) {
	res := connectResult{
		handles: make(map[models.ObjectType]*FingerprintHandle),
		reset:   make(map[models.ObjectType]bool),
	}

	blob, err := s.deps.ConfigLoader.LoadConfig(ctx)
	if err != nil {
		return res, fmt.Errorf("%w: load member config: %w", ErrConnectFailed, err)
	}
	if err := s.deps.Device.Connect(ctx, blob); err != nil {
		return res, fmt.Errorf("%w: %w", ErrConnectFailed, err)
	}
	res.deviceUp = true
	res.deviceAnchor, err = s.deps.Device.Anchor(ctx)
	if err != nil {
		return res, fmt.Errorf("%w: read device anchor: %w", ErrConnectFailed, err)
	}
	res.configDigest = ConfigDigest(blob)

	discardAll := func() {
		for _, h := range res.handles {
			h.Discard()
		}
	}

	for _, t := range s.cfg.Types() {
		h, reset, err := s.openHandle(ctx, t)
		if err != nil {
			discardAll()
			return res, err
		}
		res.handles[t] = h
		res.reset[t] = reset
	}

	deviceMatch, err := s.deps.Anchors.Compare(ctx, AnchorKeyDevice, res.deviceAnchor)
	if err != nil {
		discardAll()
		return res, err
	}
	configMatch, err := s.deps.Anchors.Compare(ctx, AnchorKeyConfig, res.configDigest)
	if err != nil {
		discardAll()
		return res, err
	}
	if !deviceMatch || !configMatch {
		for _, h := range res.handles {
			h.SetSlowSync()
		}
	}

	for _, t := range s.cfg.SlowSync {
		if h, ok := res.handles[t]; ok {
			h.SetSlowSync()
		} else {
			s.logger.Warn().Str("func", "Session.connect").Str("object_type", t.String()).
				Msg("slow sync requested for a type the session does not accept")
		}
	}

	return res, nil
}

// openHandle opens objectType, or opens it fresh in slow sync when a
// corruption marker is set. A corrupt namespace is marked for the next
// session and reported.
func (s *Session) openHandle(ctx context.Context, objectType models.ObjectType) (*FingerprintHandle, bool, error) {
	marked, err := s.deps.Anchors.isMarkedCorrupt(ctx, objectType)
	if err != nil {
		return nil, false, err
	}
	if marked {
		h, err := s.deps.Fingerprints.OpenFresh(ctx, objectType)
		if err != nil {
			return nil, false, err
		}
		h.SetSlowSync()
		return h, true, nil
	}

	h, err := s.deps.Fingerprints.Open(ctx, objectType)
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			s.logger.Error().
				Str("func", "Session.openHandle").
				Str("object_type", objectType.String()).
				Msg("fingerprint state is corrupt; next session will rebuild it")
			if markErr := s.deps.Anchors.markCorrupt(ctx, objectType); markErr != nil {
				err = errors.Join(err, markErr)
			}
		}
		return nil, false, err
	}
	return h, false, nil
}

// EnumerateChanges classifies the current items of objectType and forwards
// every Added, Modified and Deleted record to the reporter. Any failure,
// including exceeding the enumerate timeout, is fatal to the session.
func (s *Session) EnumerateChanges(ctx context.Context, objectType models.ObjectType) (models.ChangeSet, error) {
	s.mu.Lock()
	if err := s.checkState("enumerate changes", models.Connected, models.ChangesEnumerated); err != nil {
		s.mu.Unlock()
		return models.ChangeSet{}, err
	}
	h, ok := s.handles[objectType]
	s.mu.Unlock()
	if !ok {
		return models.ChangeSet{}, fmt.Errorf("%w: %s", ErrUnknownObjectType, objectType)
	}

	opts := models.ListOptions{Full: h.IsSlowSync()}
	fetch := func(ctx context.Context, id models.ItemID) ([]byte, error) {
		return s.deps.Source.FetchPayload(ctx, objectType, id)
	}

	set, err := callWithTimeout(ctx, s.cfg.Timeouts.Enumerate, func(ctx context.Context) (models.ChangeSet, error) {
		items := s.deps.Source.Items(ctx, objectType, opts)
		return s.deps.Classifier.Classify(ctx, h, items, fetch, s.report)
	})
	if err != nil {
		s.logger.Err(err).
			Str("func", "Session.EnumerateChanges").
			Str("object_type", objectType.String()).
			Msg("enumeration failed")
		s.fail()
		return models.ChangeSet{}, fmt.Errorf("enumerate %s: %w", objectType, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == models.Errored {
		return models.ChangeSet{}, ErrSessionErrored
	}
	s.state = models.ChangesEnumerated
	s.enumerated[objectType] = true

	return set, nil
}

func (s *Session) report(ctx context.Context, change models.ChangeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.deps.Reporter == nil {
		return nil
	}
	return s.deps.Reporter.ReportChange(ctx, change)
}

// FetchPayload returns the body of a deferred item.
func (s *Session) FetchPayload(ctx context.Context, objectType models.ObjectType, id models.ItemID) ([]byte, error) {
	s.mu.Lock()
	err := s.checkState("fetch payload", models.Connected, models.ChangesEnumerated, models.Committing)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return s.deps.Source.FetchPayload(ctx, objectType, id)
}

// Finalize ends the session. With success every enumerated handle is
// committed, the anchors are advanced and corruption markers of rebuilt
// types are cleared; otherwise every handle is discarded. The device is
// disconnected and the handles are released in both cases.
func (s *Session) Finalize(ctx context.Context, success bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case models.Errored:
		s.release(ctx)
		if success {
			return fmt.Errorf("%w: finalize with success", ErrSessionErrored)
		}
		return nil
	case models.Connected:
		if success {
			return s.invalidTransition("finalize with success")
		}
	case models.ChangesEnumerated, models.Committing:
	default:
		return s.invalidTransition("finalize")
	}

	if !success {
		s.release(ctx)
		s.state = models.Done
		s.logger.Info().Str("func", "Session.Finalize").Msg("session finished without commit")
		return nil
	}

	var errs []error
	var committed []models.ObjectType
	for _, t := range slices.Sorted(maps.Keys(s.handles)) {
		h := s.handles[t]
		if !s.enumerated[t] {
			h.Discard()
			continue
		}
		if err := h.Commit(ctx); err != nil {
			errs = append(errs, err)
			continue
		}
		committed = append(committed, t)
	}

	// anchors resolve a mismatch for every type at once, so they only move
	// when no accepted type was left unreconciled
	reconciled := len(committed) == len(s.handles)
	if len(errs) == 0 && !reconciled {
		s.logger.Warn().
			Str("func", "Session.Finalize").
			Int("committed_types", len(committed)).
			Int("accepted_types", len(s.handles)).
			Msg("not every type was enumerated; anchors left unchanged")
	}
	if len(errs) == 0 && reconciled {
		if err := s.deps.Anchors.Update(ctx, AnchorKeyDevice, s.deviceAnchor); err != nil {
			errs = append(errs, err)
		} else if err := s.deps.Anchors.Update(ctx, AnchorKeyConfig, s.configDigest); err != nil {
			errs = append(errs, err)
		}
	}
	for _, t := range committed {
		if !s.reset[t] {
			continue
		}
		if err := s.deps.Anchors.clearCorrupt(ctx, t); err != nil {
			errs = append(errs, err)
		}
	}

	s.release(ctx)

	if len(errs) > 0 {
		err := errors.Join(errs...)
		s.logger.Err(err).Str("func", "Session.Finalize").Msg("failed to commit session state")
		s.state = models.Errored
		return err
	}

	s.state = models.Done
	s.logger.Info().
		Str("func", "Session.Finalize").
		Int("committed_types", len(committed)).
		Msg("session committed")
	return nil
}

// fail moves the session to Errored and discards every handle.
func (s *Session) fail() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = models.Errored
	for _, h := range s.handles {
		h.Discard()
	}
}

// release discards remaining handles and disconnects the device. Callers
// hold s.mu.
func (s *Session) release(ctx context.Context) {
	for _, h := range s.handles {
		h.Discard()
	}
	s.handles = nil
	s.disconnectDevice(ctx)
}

// disconnectDevice disconnects even when ctx is already cancelled, bounded by
// the connect timeout.
func (s *Session) disconnectDevice(ctx context.Context) {
	if s.deviceUp {
		dctx, cancel := withTimeout(context.WithoutCancel(ctx), s.cfg.Timeouts.Connect)
		defer cancel()
		if err := s.deps.Device.Disconnect(dctx); err != nil {
			s.logger.Warn().Err(err).Str("func", "Session.disconnectDevice").Msg("device disconnect failed")
		}
	}
	s.deviceUp = false
}

func (s *Session) checkState(op string, allowed ...models.SessionState) error {
	if s.state == models.Errored {
		return fmt.Errorf("%w: %s", ErrSessionErrored, op)
	}
	if !slices.Contains(allowed, s.state) {
		return s.invalidTransition(op)
	}
	return nil
}

func (s *Session) invalidTransition(op string) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, op, s.state)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// callWithTimeout runs fn with a context bounded by d and returns as soon as
// either fn finishes or the bound expires, even when fn ignores its context.
// Exceeding the bound is reported as ErrTimeout; cancellation of ctx itself
// is returned as is.
func callWithTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	cctx, cancel := withTimeout(ctx, d)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(cctx)
		done <- result{value: v, err: err}
	}()

	timedOut := func(err error) error {
		if ctx.Err() == nil && errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s: %w", ErrTimeout, d, err)
		}
		return err
	}

	select {
	case r := <-done:
		if r.err != nil {
			return r.value, timedOut(r.err)
		}
		return r.value, nil
	case <-cctx.Done():
		var zero T
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, timedOut(cctx.Err())
	}
}
