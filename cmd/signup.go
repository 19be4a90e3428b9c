// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var signupEmail string

var signupCmd = &cobra.Command{
	Use:     "signup",
	Aliases: []string{"register"},
	Short:   "Create an ArenaTV account",
	Long: `The signup command registers a new account. Depending on the project settings
you are either signed in right away or asked to confirm your email first.`,

	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if _, err := a.ready(ctx); err != nil {
			return err
		}
		email, password, err := promptCredentials(signupEmail)
		if err != nil {
			return err
		}

		stop := startPending("Creating your account")
		err = a.auth.SignUp(ctx, email, password)
		stop()
		if err != nil {
			return present(a.cfg, err, "creating your account")
		}

		st := a.auth.State()
		if st.User != nil && st.User.Email == email {
			pterm.Println(getRandomLoginGreeting(email))
			return nil
		}
		pterm.Println("📧 Account created. Open the confirmation link we sent to " + email + ",")
		pterm.Println("   then run 'arenatv login'.")
		return nil
	}),
}

func init() {
	signupCmd.Flags().StringVarP(&signupEmail, "email", "e", "", "Account email (prompted when omitted)")
	rootCmd.AddCommand(signupCmd)
}
