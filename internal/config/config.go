// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// go-sync-keeper daemon. It aggregates all sub-configurations and is
// populated by merging values from environment variables, command-line flags,
// and an optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Member identifies the synchronized member and its opaque configuration.
	Member Member `envPrefix:"MEMBER_"`

	// Storage selects and configures the durable backend for fingerprints
	// and anchors.
	Storage Storage `envPrefix:"STORAGE_"`

	// Session holds the accepted object types and the per-phase budgets.
	Session Session `envPrefix:"SESSION_"`

	// Adapter holds the device bridge endpoint settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Server holds settings of the optional HTTP control API.
	Server Server `envPrefix:"SERVER_"`

	// Workers holds settings of the periodic sync job.
	Workers Workers `envPrefix:"WORKERS_"`

	// Log holds log output settings.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Member identifies the synchronized member.
type Member struct {
	// ID scopes every fingerprint and anchor row.
	// Env: MEMBER_ID
	ID string `env:"ID"`

	// ConfigPath points at the opaque member configuration blob handed to the
	// device on connect. Its digest is tracked as the "config" anchor.
	// Env: MEMBER_CONFIG_PATH
	ConfigPath string `env:"CONFIG_PATH"`
}

// Storage groups the configuration for the durable backends.
type Storage struct {
	// Driver is one of "sqlite", "postgres" or "file".
	// Env: STORAGE_DRIVER
	Driver string `env:"DRIVER"`

	// DB holds the SQL connection settings (sqlite and postgres drivers).
	DB DB `envPrefix:"DB_"`

	// Files holds the directory used by the file driver.
	Files Files `envPrefix:"FILES_"`
}

// DB holds connection settings for the SQL backends.
type DB struct {
	// DSN is the sqlite file path or the PostgreSQL connection string.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Files holds settings of the JSON file backend.
type Files struct {
	// Dir is the directory holding anchors.json and one fingerprint file per
	// object type.
	// Env: STORAGE_FILES_DIR
	Dir string `env:"DIR"`
}

// Session holds session-level settings.
type Session struct {
	// ObjectTypes restricts the accepted object types. Empty accepts every
	// type declared by the member descriptor.
	// Env: SESSION_OBJECT_TYPES (comma separated)
	ObjectTypes []string `env:"OBJECT_TYPES" envSeparator:","`

	// SlowSync lists object types the operator wants fully reconciled on the
	// next session.
	// Env: SESSION_SLOW_SYNC (comma separated)
	SlowSync []string `env:"SLOW_SYNC" envSeparator:","`

	// Env: SESSION_CONNECT_TIMEOUT
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT"`

	// Env: SESSION_ENUMERATE_TIMEOUT
	EnumerateTimeout time.Duration `env:"ENUMERATE_TIMEOUT"`

	// Env: SESSION_APPLY_TIMEOUT
	ApplyTimeout time.Duration `env:"APPLY_TIMEOUT"`

	// CommitWorkers bounds concurrent apply calls during the commit phase.
	// Env: SESSION_COMMIT_WORKERS
	CommitWorkers int `env:"COMMIT_WORKERS"`
}

// Adapter holds the device bridge settings.
type Adapter struct {
	// HTTPAddress is the device bridge base address ("host:port" or URL).
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single HTTP request to the bridge.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// HashKey is the HMAC key used for the HashSHA256 integrity header.
	// Env: ADAPTER_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// MirrorAddress is an optional second bridge that receives every change
	// detected on the device. Empty means changes are only reported.
	// Env: ADAPTER_MIRROR_ADDRESS
	MirrorAddress string `env:"MIRROR_ADDRESS"`
}

// Server holds network and timeout settings for the control API.
type Server struct {
	// HTTPAddress is the TCP address on which the control API listens,
	// in "host:port" format. Empty disables the API.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request, a manually triggered session included.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds configuration for background workers.
type Workers struct {
	// SyncInterval defines how often a sync session is started.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`
}

// Log holds log output settings.
type Log struct {
	// File is the log file path. Empty logs to stdout.
	// Env: LOG_FILE
	File string `env:"FILE"`
}

// GetStructuredConfig loads and merges the configuration from all available
// sources in the following priority order (earlier non-zero fields win,
// later sources fill the gaps):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(args).
		withJSON().
		build()
}
