// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-sync-keeper/models"
)

// Storage drivers accepted by Storage.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverFile     = "file"
)

// Defaults applied by [StructuredConfig.GetSyncConfig] to unset fields.
const (
	DefaultCommitWorkers  = 4
	DefaultRequestTimeout = 30 * time.Second
	DefaultSyncInterval   = 5 * time.Minute
	DefaultServerTimeout  = 2 * time.Minute
)

// SyncConfig is the fully resolved view consumed by the sync daemon.
type SyncConfig struct {
	MemberID         string
	MemberConfigPath string

	Storage Storage
	Adapter Adapter
	Server  Server
	Workers Workers
	Log     Log

	// ObjectTypes is the accepted type list after intersecting the member
	// descriptor with Session.ObjectTypes.
	ObjectTypes []models.ObjectType
	// SlowSync lists types the host asked to fully reconcile.
	SlowSync []models.ObjectType

	Timeouts      models.Timeouts
	CommitWorkers int
}

// GetSyncConfig resolves cfg against the member descriptor info, applies
// defaults and validates the result.
func (cfg *StructuredConfig) GetSyncConfig(info models.MemberInfo) (*SyncConfig, error) {
	sc := &SyncConfig{
		MemberID:         cfg.Member.ID,
		MemberConfigPath: cfg.Member.ConfigPath,
		Storage:          cfg.Storage,
		Adapter:          cfg.Adapter,
		Server:           cfg.Server,
		Workers:          cfg.Workers,
		Log:              cfg.Log,
		Timeouts:         info.Timeouts,
		CommitWorkers:    cfg.Session.CommitWorkers,
	}

	if sc.Storage.Driver == "" {
		sc.Storage.Driver = DriverSQLite
	}
	if sc.Adapter.RequestTimeout == 0 {
		sc.Adapter.RequestTimeout = DefaultRequestTimeout
	}
	if sc.Server.HTTPAddress != "" && sc.Server.RequestTimeout == 0 {
		sc.Server.RequestTimeout = DefaultServerTimeout
	}
	if sc.Workers.SyncInterval == 0 {
		sc.Workers.SyncInterval = DefaultSyncInterval
	}
	if sc.CommitWorkers == 0 {
		sc.CommitWorkers = DefaultCommitWorkers
	}

	if cfg.Session.ConnectTimeout > 0 {
		sc.Timeouts.Connect = cfg.Session.ConnectTimeout
	}
	if cfg.Session.EnumerateTimeout > 0 {
		sc.Timeouts.Enumerate = cfg.Session.EnumerateTimeout
	}
	if cfg.Session.ApplyTimeout > 0 {
		sc.Timeouts.Apply = cfg.Session.ApplyTimeout
	}

	if len(cfg.Session.ObjectTypes) == 0 {
		sc.ObjectTypes = info.Types()
	} else {
		for _, t := range toObjectTypes(cfg.Session.ObjectTypes) {
			if !info.Accepts(t) {
				return nil, fmt.Errorf("%w: member %s does not accept %s", ErrInvalidSessionConfigs, info.Name, t)
			}
			sc.ObjectTypes = append(sc.ObjectTypes, t)
		}
	}
	sc.SlowSync = toObjectTypes(cfg.Session.SlowSync)

	if err := sc.validate(); err != nil {
		return nil, err
	}

	return sc, nil
}

func toObjectTypes(raw []string) []models.ObjectType {
	return models.ParseObjectTypes(strings.Join(raw, ","))
}
