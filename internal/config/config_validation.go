// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-sync-keeper/models"
)

// validate checks the merged [StructuredConfig] for values that are wrong
// regardless of defaults: an unknown storage driver, negative budgets or
// blank object types. Missing values are filled in
// later by [StructuredConfig.GetSyncConfig].
func (cfg *StructuredConfig) validate() error {
	switch cfg.Storage.Driver {
	case "", DriverSQLite, DriverPostgres, DriverFile:
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidStorageConfigs, cfg.Storage.Driver)
	}

	if cfg.Session.ConnectTimeout < 0 || cfg.Session.EnumerateTimeout < 0 ||
		cfg.Session.ApplyTimeout < 0 || cfg.Session.CommitWorkers < 0 {
		return ErrInvalidSessionConfigs
	}

	for _, t := range append(append([]string{}, cfg.Session.ObjectTypes...), cfg.Session.SlowSync...) {
		if !models.ObjectType(strings.TrimSpace(t)).Valid() {
			return fmt.Errorf("%w: blank object type %q", ErrInvalidSessionConfigs, t)
		}
	}

	if cfg.Adapter.RequestTimeout < 0 || cfg.Workers.SyncInterval < 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Server.RequestTimeout < 0 {
		return ErrInvalidServerConfigs
	}

	return nil
}

func (cfg *SyncConfig) validate() error {
	if cfg.MemberID == "" {
		return ErrInvalidMemberConfigs
	}

	switch cfg.Storage.Driver {
	case DriverSQLite, DriverPostgres:
		if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
			return ErrInvalidStorageConfigs
		}
	case DriverFile:
		if cfg.Storage.Files.Dir == "" {
			return ErrInvalidStorageConfigs
		}
	default:
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Adapter.HashKey == "" {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Adapter.MirrorAddress != "" && cfg.Adapter.MirrorAddress == cfg.Adapter.HTTPAddress {
		return fmt.Errorf("%w: mirror address equals device address", ErrInvalidAdapterConfigs)
	}

	if cfg.Server.HTTPAddress != "" && cfg.Server.HTTPAddress == cfg.Adapter.HTTPAddress {
		return fmt.Errorf("%w: server address equals device address", ErrInvalidServerConfigs)
	}

	if cfg.Workers.SyncInterval == 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
