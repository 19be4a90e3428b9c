// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package entitlement answers one question: does the signed-in user hold an
// active subscription right now.
//
// The answer always comes from a fresh call to the check_active_subscription
// procedure. Any failure is logged and read as "no", so a broken check can
// never unlock gated content.
package entitlement

import (
	"context"
	"time"

	"github.com/pterm/pterm"

	"arenatv/cli/internal/backend"
	apperrors "arenatv/cli/internal/errors"
	"arenatv/cli/internal/logging"
	"arenatv/cli/internal/session"
)

// Resolver runs subscription checks.
type Resolver struct {
	api      backend.EntitlementAPI
	log      *pterm.Logger
	attempts int
	backoff  time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets where swallowed check failures are reported.
func WithLogger(l *pterm.Logger) Option { return func(r *Resolver) { r.log = l } }

// WithRetry makes a failed check try again up to attempts times in total,
// waiting base, 2*base, 4*base... in between. attempts < 1 means one.
func WithRetry(attempts int, base time.Duration) Option {
	return func(r *Resolver) {
		if attempts < 1 {
			attempts = 1
		}
		r.attempts = attempts
		r.backoff = base
	}
}

// New creates a Resolver. By default each check makes a single attempt.
func New(api backend.EntitlementAPI, opts ...Option) *Resolver {
	r := &Resolver{api: api, log: logging.Discard(), attempts: 1}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Check reports whether the session's user has an active subscription.
// A nil session, a failed call or a cancelled context all yield false.
func (r *Resolver) Check(ctx context.Context, s *session.Session) bool {
	if s == nil || s.User.ID == "" {
		return false
	}

	var err error
	wait := r.backoff
	for attempt := 1; attempt <= r.attempts; attempt++ {
		var active bool
		active, err = r.api.CheckActiveSubscription(ctx, s.AccessToken, s.User.ID)
		if err == nil {
			return active
		}
		if attempt == r.attempts || !sleep(ctx, wait) {
			break
		}
		wait *= 2
	}

	checkErr := apperrors.Wrap(apperrors.EntitlementCheck, "subscription check failed", err)
	r.log.Error("Error checking subscription", r.log.Args("user", s.User.ID, "error", checkErr))
	return false
}

func sleep(ctx context.Context, d time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
