// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"time"
)

// New creates the HTTP backend client for the project at baseURL.
// A zero timeout uses the 10s default.
func New(baseURL, anonKey string, timeout time.Duration) API {
	return newHTTP(baseURL, anonKey, timeout)
}
