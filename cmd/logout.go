// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// logoutCmd clears the session locally and revokes it remotely (best effort).
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the stored session",
	Long: `The logout command signs out of ArenaTV. The session is always removed from the
OS keychain, even when the backend cannot be reached to revoke it.`,

	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		st, err := a.ready(ctx)
		if err != nil {
			return err
		}
		if st.User == nil {
			pterm.Println("You're not logged in.")
			return nil
		}
		if err := a.auth.SignOut(ctx); err != nil {
			a.log.Warn("could not revoke session remotely", a.log.Args("error", err))
		}
		pterm.Println("✅ Signed out of " + st.User.Email)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
