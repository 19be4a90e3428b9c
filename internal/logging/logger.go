// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// Options configures New.
type Options struct {
	Level  string
	JSON   bool
	Writer io.Writer
}

// New builds a pterm logger. Unknown levels fall back to info.
func New(opts Options) *pterm.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	l := pterm.DefaultLogger.WithWriter(w).WithLevel(ParseLevel(opts.Level))
	if opts.JSON {
		l = l.WithFormatter(pterm.LogFormatterJSON)
	}
	return l
}

// Discard returns a logger that never prints, for tests and library defaults.
func Discard() *pterm.Logger {
	return pterm.DefaultLogger.WithWriter(io.Discard).WithLevel(pterm.LogLevelDisabled)
}

// ParseLevel maps a config string to a pterm level.
func ParseLevel(s string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "off", "disabled", "none":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelInfo
	}
}
