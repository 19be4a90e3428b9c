package cmd

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// whoamiCmd shows the signed-in account and its subscription status.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show current authenticated account",
	Long: `The whoami command restores the stored session (refreshing it when it has
expired), then shows the account and whether it has an active subscription.`,

	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		st, err := a.ready(ctx)
		if err != nil {
			return err
		}
		if st.User == nil {
			pterm.Println("🔒 You're not logged in yet!")
			pterm.Println("   Run 'arenatv login' to get started.")
			return nil
		}
		pterm.Println(fmt.Sprintf("👤 Current user: %s", st.User.Email))
		if verbose {
			pterm.Println("   User ID: " + st.User.ID)
			pterm.Println("   Session expires: " + formatTime(st.Session.ExpiresAt))
		}
		printSubscription(st)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
