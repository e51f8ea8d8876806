// Package config provides configuration loading, merging, and validation
// facilities for the sync daemon.
//
// Configuration is assembled from multiple sources in the following priority
// order (earlier non-zero fields win, later sources fill the gaps):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// The main entry points are [GetStructuredConfig] for the raw merged
// configuration and [StructuredConfig.GetSyncConfig] for the resolved view
// with defaults applied.
package config
