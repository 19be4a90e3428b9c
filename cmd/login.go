// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"arenatv/cli/internal/authstate"
	"arenatv/cli/internal/terminal"
)

var loginEmail string

// loginCmd signs in with email and password and stores the session in the
// OS keychain.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"signin"},
	Short:   "Sign in with your ArenaTV email and password",
	Long: `The login command signs in with your email and password. The password is read
without echo. The resulting session is stored in the OS keychain and refreshed
automatically while the CLI runs.

If you are already signed in, the command only reports the current account.`,

	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		st, err := a.ready(ctx)
		if err != nil {
			return err
		}
		if st.User != nil {
			fmt.Printf("Already logged in as %s\n", st.User.Email)
			return nil
		}

		email, password, err := promptCredentials(loginEmail)
		if err != nil {
			return err
		}

		stop := startPending("Signing in")
		err = a.auth.SignIn(ctx, email, password)
		stop()
		if err != nil {
			return present(a.cfg, err, "signing in")
		}

		st = a.auth.State()
		if st.User == nil {
			pterm.Println("✅ Login successful!")
			return nil
		}
		pterm.Println(getRandomLoginGreeting(st.User.Email))
		printSubscription(st)
		return nil
	}),
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}

// promptCredentials asks for whatever was not passed as a flag.
func promptCredentials(email string) (string, string, error) {
	p := terminal.NewPrompter()
	email = strings.TrimSpace(email)
	if email == "" {
		v, err := p.Line("Email: ")
		if err != nil {
			return "", "", err
		}
		email = strings.TrimSpace(v)
	}
	if email == "" {
		return "", "", fmt.Errorf("email is required")
	}
	password, err := p.Password("Password: ")
	if err != nil {
		return "", "", err
	}
	if password == "" {
		return "", "", fmt.Errorf("password is required")
	}
	if isTerminal() {
		terminal.ClearPreviousLines(len("Password: "))
	}
	return email, password, nil
}

func printSubscription(st authstate.State) {
	switch {
	case st.User == nil:
	case !st.Resolved:
		pterm.Println("   Subscription: checking…")
	case st.Entitled:
		pterm.Println("   Subscription: " + pterm.NewStyle(pterm.FgGreen).Sprint("active"))
	default:
		pterm.Println("   Subscription: " + pterm.NewStyle(pterm.FgYellow).Sprint("none") + " (run 'arenatv subscribe')")
	}
}

// getRandomLoginGreeting returns a random greeting phrase with the user's identifier
func getRandomLoginGreeting(identifier string) string {
	greetings := []string{
		"🎉 Welcome back, %s!",
		"✨ Great to see you, %s!",
		"🚀 You're all set, %s!",
		"👋 Hello %s! Ready for kick-off?",
		"🏟️ Welcome to the arena, %s!",
		"⚡ Logged in as %s - let's go!",
		"✅ Authentication complete! Hi %s!",
		"🎯 You're in, %s!",
	}
	return fmt.Sprintf(greetings[rand.Intn(len(greetings))], identifier)
}
