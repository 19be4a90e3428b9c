// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"arenatv/cli/internal/authstate"
	"arenatv/cli/internal/backend"
	"arenatv/cli/internal/catalog"
	"arenatv/cli/internal/config"
	"arenatv/cli/internal/entitlement"
	"arenatv/cli/internal/logging"
	"arenatv/cli/internal/session"
)

// app is the dependency graph every client command runs against.
type app struct {
	cfg     config.Config
	log     *pterm.Logger
	api     backend.API
	store   *session.Store
	auth    *authstate.Provider
	catalog *catalog.Service

	stopRefresh context.CancelFunc
}

func effectiveLogLevel(cfg config.Config) string {
	switch {
	case logLevel != "":
		return logLevel
	case verbose:
		return "debug"
	default:
		return cfg.LogLevel
	}
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logging.New(logging.Options{Level: effectiveLogLevel(cfg)})

	api := backend.New(cfg.Backend.URL, cfg.Backend.AnonKey, cfg.Backend.Timeout.Duration)
	store := session.NewStore(api, session.WithLogger(log))
	resolver := entitlement.New(api,
		entitlement.WithLogger(log),
		entitlement.WithRetry(1+cfg.Backend.EntitlementRetries, 250*time.Millisecond),
	)
	provider := authstate.New(store, resolver, authstate.WithLogger(log))
	provider.Start(ctx)

	refreshCtx, stop := context.WithCancel(ctx)
	go store.Run(refreshCtx)

	return &app{
		cfg:         cfg,
		log:         log,
		api:         api,
		store:       store,
		auth:        provider,
		catalog:     catalog.New(api, provider),
		stopRefresh: stop,
	}, nil
}

func (a *app) Close() {
	a.stopRefresh()
	a.auth.Close()
}

// ready waits for the initial session and entitlement check, showing a
// spinner while they are in flight.
func (a *app) ready(ctx context.Context) (authstate.State, error) {
	select {
	case <-a.auth.Ready():
		return a.auth.State(), nil
	default:
	}
	stop := startPending("Checking your session")
	defer stop()
	return a.auth.WaitReady(ctx)
}

// withApp builds the app for a command and tears it down afterwards.
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, a, args)
	}
}
