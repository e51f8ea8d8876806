// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app implements the sync daemon runtime.
//
// It wires the durable storages, the device bridge, the sync services and
// the background workers into a single process lifecycle.
package app
