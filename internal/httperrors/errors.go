// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns failed backend round-trips into messages a viewer
// can act on: timeouts, DNS failures, refused connections, TLS problems and
// server-side errors each get their own explanation.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"arenatv/cli/internal/backend"
)

// Category is the broad cause of a network failure.
type Category int

const (
	Generic Category = iota
	Timeout
	DNS
	Refused
	TLS
	Server
)

// Classify inspects err for its cause.
func Classify(err error) Category {
	if err == nil {
		return Generic
	}
	var se *backend.StatusError
	if errors.As(err, &se) && se.Status >= 500 {
		return Server
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return DNS
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return Refused
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return Timeout
	case strings.Contains(msg, "connection refused"):
		return Refused
	case strings.Contains(msg, "x509"), strings.Contains(msg, "certificate"), strings.Contains(msg, "tls"):
		return TLS
	}
	return Generic
}

// Report is a rendered explanation.
type Report struct {
	Title string
	Lines []string
}

// Describe explains err; action says what the CLI was doing ("loading events").
func Describe(err error, action, host string) Report {
	if host == "" {
		host = "the ArenaTV service"
	}
	switch Classify(err) {
	case Timeout:
		return Report{
			Title: fmt.Sprintf("Connection timed out while %s", action),
			Lines: []string{"The server took too long to respond.", "Check your connection and try again in a moment."},
		}
	case DNS:
		return Report{
			Title: fmt.Sprintf("Cannot resolve %s while %s", host, action),
			Lines: []string{"Check that you are online and that the backend URL in your config is correct."},
		}
	case Refused:
		return Report{
			Title: fmt.Sprintf("Connection refused by %s while %s", host, action),
			Lines: []string{"The service may be down, or the configured port is wrong."},
		}
	case TLS:
		return Report{
			Title: fmt.Sprintf("Secure connection to %s failed while %s", host, action),
			Lines: []string{"Check your system clock and any proxy that intercepts HTTPS."},
		}
	case Server:
		return Report{
			Title: fmt.Sprintf("Server error while %s", action),
			Lines: []string{"The problem is on our side, not your setup. Please try again shortly."},
		}
	}
	return Report{
		Title: fmt.Sprintf("Cannot reach %s while %s", host, action),
		Lines: []string{"Check your internet connection and firewall settings."},
	}
}

// FormatNetworkError prints a Report for err and returns err wrapped.
func FormatNetworkError(err error, action, baseURL string) error {
	if err == nil {
		return nil
	}
	r := Describe(err, action, ExtractHostFromURL(baseURL))
	pterm.Error.Println(r.Title)
	for _, l := range r.Lines {
		pterm.Println("  " + l)
	}
	pterm.Debug.Printf("Technical details: %s\n", truncate(err.Error(), 160))
	return fmt.Errorf("network error: %w", err)
}

// ExtractHostFromURL returns the host of urlStr, or "" when it has none.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
