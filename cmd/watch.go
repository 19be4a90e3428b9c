// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"arenatv/cli/internal/guard"
)

var watchOpen bool

// watchCmd is the subscriber-only view: it shows the stream URL of an event.
var watchCmd = &cobra.Command{
	Use:   "watch <event-id>",
	Short: "Get the stream of an event (subscribers only)",
	Long: `The watch command prints the stream URL of an event and, with --open, opens it
in your browser. It requires a signed-in account with an active subscription;
otherwise it tells you whether to sign in or subscribe.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		var stop func()
		d, err := guard.Await(ctx, a.auth, guard.EntitlementGuard{}, func() {
			stop = startPending("Checking your subscription")
		})
		if stop != nil {
			stop()
		}
		if err != nil {
			return err
		}
		a.log.Debug("guard decision", a.log.Args("outcome", d.Outcome.String(), "location", d.Location))
		if d.Outcome == guard.Redirect {
			redirectHint(d)
			return &reportedError{err: errNotAllowed}
		}

		e, url, err := a.catalog.StreamURL(ctx, args[0])
		if err != nil {
			return present(a.cfg, err, "loading the stream")
		}
		pterm.Println(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("▶ " + e.Title))
		pterm.Println("  " + statusLabel(e.Status) + "  " + formatTime(e.StartTime))
		pterm.Println()
		pterm.Println(url)
		if watchOpen {
			openBrowser(url)
		}
		return nil
	}),
}

func init() {
	watchCmd.Flags().BoolVar(&watchOpen, "open", false, "Open the stream in your browser")
	rootCmd.AddCommand(watchCmd)
}
