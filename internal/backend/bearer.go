// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/http"
	"strings"
)

// ParseBearerToken extracts token from a value like "Bearer <token>" case-insensitively.
// Returns the token string without the "Bearer " prefix, or empty string if invalid format.
func ParseBearerToken(value string) string {
	v := strings.TrimSpace(value)
	if len(v) < 7 || !strings.EqualFold(v[:6], "bearer") || (v[6] != ' ' && v[6] != '\t') {
		return ""
	}
	return strings.TrimSpace(v[7:])
}

// BearerFromRequest returns the bearer token of the Authorization header.
func BearerFromRequest(r *http.Request) string {
	return ParseBearerToken(r.Header.Get("Authorization"))
}
