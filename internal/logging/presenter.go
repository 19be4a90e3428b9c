// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	apperrors "arenatv/cli/internal/errors"

	"github.com/pterm/pterm"
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Mask(err.Error())
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

// AuthFailure is the category of a failed sign-in, sign-up or sign-out.
type AuthFailure int

const (
	AuthFailureUnknown AuthFailure = iota
	AuthFailureCredentials
	AuthFailureUnconfirmed
	AuthFailureDuplicate
	AuthFailureWeakPassword
	AuthFailureRateLimited
	AuthFailureNetwork
)

// ClassifyAuthError categorizes an auth error by its kind and backend message.
func ClassifyAuthError(err error) AuthFailure {
	if err == nil {
		return AuthFailureUnknown
	}
	if apperrors.Is(err, apperrors.AuthTransport) {
		return AuthFailureNetwork
	}
	lower := strings.ToLower(apperrors.MessageOf(err))
	switch {
	case strings.Contains(lower, "invalid login credentials"), strings.Contains(lower, "invalid grant"):
		return AuthFailureCredentials
	case strings.Contains(lower, "not confirmed"):
		return AuthFailureUnconfirmed
	case strings.Contains(lower, "already registered"), strings.Contains(lower, "already exists"):
		return AuthFailureDuplicate
	case strings.Contains(lower, "password should"), strings.Contains(lower, "weak password"):
		return AuthFailureWeakPassword
	case strings.Contains(lower, "rate limit"), strings.Contains(lower, "too many"):
		return AuthFailureRateLimited
	}
	return AuthFailureUnknown
}

// FormatAuthError renders an auth error with a hint about what to do next.
func FormatAuthError(err error) string {
	var b strings.Builder
	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Authentication failed"))
	b.WriteString("\n\n")

	switch ClassifyAuthError(err) {
	case AuthFailureCredentials:
		b.WriteString("The email or password is incorrect.\n")
	case AuthFailureUnconfirmed:
		b.WriteString("Your email address has not been confirmed yet.\n")
		b.WriteString("Open the confirmation link we sent you, then sign in again.\n")
	case AuthFailureDuplicate:
		b.WriteString("An account with this email already exists.\n")
		b.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Run 'arenatv login' instead"))
		b.WriteString("\n")
	case AuthFailureWeakPassword:
		b.WriteString("The password does not meet the requirements.\n")
	case AuthFailureRateLimited:
		b.WriteString("Too many attempts. Wait a minute and try again.\n")
	case AuthFailureNetwork:
		b.WriteString("The authentication service could not be reached.\n")
		b.WriteString("Check your internet connection and try again.\n")
	default:
		b.WriteString("The request was rejected by the authentication service.\n")
	}

	if msg := strings.TrimSpace(apperrors.MessageOf(err)); msg != "" {
		b.WriteString("\n")
		b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Details: " + Mask(msg)))
	}
	return b.String()
}
