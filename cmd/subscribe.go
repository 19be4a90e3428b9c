// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"arenatv/cli/internal/catalog"
	"arenatv/cli/internal/guard"
	"arenatv/cli/internal/model"
)

var (
	subscribeMethod    string
	subscribePaymentID string
	subscribeAmount    float64
	subscribeCurrency  string
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Buy a subscription to unlock every stream",
	Long: `The subscribe command pays for a subscription with bank_transfer, card or paypal.
You must be signed in. Without --method you are asked to pick one.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		var stop func()
		d, err := guard.Await(ctx, a.auth, guard.AuthGuard{}, func() {
			stop = startPending("Checking your session")
		})
		if stop != nil {
			stop()
		}
		if err != nil {
			return err
		}
		if d.Outcome == guard.Redirect {
			redirectHint(d)
			return &reportedError{err: errNotAllowed}
		}
		if st := a.auth.State(); st.Resolved && st.Entitled {
			pterm.Println("⭐ Your subscription is already active. Enjoy the games!")
			return nil
		}

		offer := catalog.Offer{Amount: a.cfg.Payment.Amount, Currency: a.cfg.Payment.Currency}
		if subscribeAmount > 0 {
			offer.Amount = subscribeAmount
		}
		if subscribeCurrency != "" {
			offer.Currency = subscribeCurrency
		}

		method := subscribeMethod
		if method == "" {
			method, err = pickPaymentMethod(offer)
			if err != nil {
				return err
			}
		}

		stop = startPending("Processing payment")
		res, err := a.catalog.Subscribe(ctx, method, subscribePaymentID, offer)
		stop()
		if err != nil {
			return present(a.cfg, err, "processing the payment")
		}
		pterm.Println("✅ " + res.Message)

		if st := a.auth.State(); st.Entitled {
			pterm.Println("⭐ Subscription active. Every stream is unlocked.")
		} else {
			pterm.Println("   The subscription is not active yet. Check again with 'arenatv whoami'.")
		}
		return nil
	}),
}

// pickPaymentMethod asks for a method interactively, or lists them off a
// terminal.
func pickPaymentMethod(offer catalog.Offer) (string, error) {
	names := make([]string, 0, len(model.PaymentMethods))
	for _, m := range model.PaymentMethods {
		names = append(names, m.Name)
	}
	if !isTerminal() {
		pterm.Println("Choose a payment method with --method:")
		for _, m := range model.PaymentMethods {
			pterm.Printf("  %-14s %s\n", m.ID, m.Name)
		}
		return "", &reportedError{err: fmt.Errorf("payment method is required")}
	}
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprintf("Subscription: %.2f %s", offer.Amount, offer.Currency))
	choice, err := pterm.DefaultInteractiveSelect.
		WithOptions(names).
		WithDefaultText("Payment method").
		Show()
	if err != nil {
		return "", err
	}
	for _, m := range model.PaymentMethods {
		if m.Name == choice {
			return string(m.ID), nil
		}
	}
	return "", fmt.Errorf("unknown payment method %q", choice)
}

func init() {
	subscribeCmd.Flags().StringVarP(&subscribeMethod, "method", "m", "", "Payment method: bank_transfer, card or paypal")
	subscribeCmd.Flags().StringVar(&subscribePaymentID, "payment-id", "", "Reference of the payment at your provider")
	subscribeCmd.Flags().Float64Var(&subscribeAmount, "amount", 0, "Amount to pay (defaults to the configured offer)")
	subscribeCmd.Flags().StringVar(&subscribeCurrency, "currency", "", "Currency (defaults to the configured offer)")
	rootCmd.AddCommand(subscribeCmd)
}
