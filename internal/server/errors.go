// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

// ErrControlAPIDisabled is returned by NewServer when there is no control
// API handler or listen address to serve.
var ErrControlAPIDisabled = errors.New("control api is disabled")
