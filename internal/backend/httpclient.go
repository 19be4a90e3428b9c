// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	authPath      = "/auth/v1"
	restPath      = "/rest/v1"
	functionsPath = "/functions/v1"

	clientInfo = "arenatv-cli/1.0"
)

// HTTP implements API over the project's REST endpoints.
type HTTP struct {
	// baseURL is the project URL (e.g., "https://xyz.supabase.co")
	baseURL string
	// anonKey is the public API key sent with every request
	anonKey string
	// client is the underlying HTTP client with configured timeout
	client *http.Client
}

// newHTTP creates a new HTTP client with the given base URL and key.
func newHTTP(baseURL, anonKey string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// StatusError is a non-2xx response decoded from any of the backend services.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// setStandardHeaders adds the project key and client identification. The
// Authorization header carries the user's token when present, else the anon key.
func (h *HTTP) setStandardHeaders(req *http.Request, accessToken string) {
	req.Header.Set("apikey", h.anonKey)
	req.Header.Set("X-Client-Info", clientInfo)
	req.Header.Set("Accept", "application/json")
	bearer := accessToken
	if bearer == "" {
		bearer = h.anonKey
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
}

// newRequest builds a request against path (relative to the project URL) with
// an optional JSON body.
func (h *HTTP) newRequest(ctx context.Context, method, path string, query url.Values, body any, accessToken string) (*http.Request, error) {
	u := h.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, err
	}
	h.setStandardHeaders(req, accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do executes req and decodes a 2xx JSON body into out (when non-nil).
// Non-2xx responses become *StatusError; transport failures are returned as-is.
func (h *HTTP) do(req *http.Request, out any) error {
	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeStatusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeStatusError reads the error payload of any backend service. The auth
// service uses msg/error_description, the data API message/code and the
// functions {"error": "..."}; be liberal in what we accept.
func decodeStatusError(resp *http.Response) *StatusError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	se := &StatusError{Status: resp.StatusCode}

	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err == nil {
		se.Message = firstString(raw, "msg", "message", "error_description", "error")
		se.Code = firstString(raw, "error_code", "code")
		if se.Code == "" {
			if s, ok := raw["error"].(string); ok && s != se.Message {
				se.Code = s
			}
		}
	}
	if se.Message == "" {
		se.Message = strings.TrimSpace(string(b))
	}
	if se.Message == "" {
		se.Message = http.StatusText(resp.StatusCode)
	}
	return se
}

func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// GetVersion calls GET /auth/v1/health and returns the auth service version.
// No authentication required beyond the project key.
func (h *HTTP) GetVersion(ctx context.Context) (string, error) {
	req, err := h.newRequest(ctx, http.MethodGet, authPath+"/health", nil, nil, "")
	if err != nil {
		return "", err
	}
	var out struct {
		Version string `json:"version"`
	}
	if err := h.do(req, &out); err != nil {
		return "", err
	}
	if out.Version == "" {
		return "unknown", nil
	}
	return out.Version, nil
}
