package cmd

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"golang.org/x/term"

	"arenatv/cli/internal/config"
	apperrors "arenatv/cli/internal/errors"
	"arenatv/cli/internal/guard"
	"arenatv/cli/internal/httperrors"
	"arenatv/cli/internal/logging"
)

// reportedError marks an error that has already been shown to the user, so
// Execute only sets the exit code.
type reportedError struct{ err error }

func (r *reportedError) Error() string { return r.err.Error() }
func (r *reportedError) Unwrap() error { return r.err }

// errNotAllowed is returned after a guard redirect has been explained.
var errNotAllowed = errors.New("not allowed")

func isTerminal() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

// startPending shows a spinner with text until the returned function is
// called. Off a terminal it prints nothing.
func startPending(text string) func() {
	if !isTerminal() {
		return func() {}
	}
	cursor.Hide()
	sp, err := pterm.DefaultSpinner.
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(120 * time.Millisecond).
		WithRemoveWhenDone(true).
		Start(text)
	if err != nil {
		cursor.Show()
		return func() {}
	}
	return func() {
		_ = sp.Stop()
		cursor.Show()
	}
}

// present prints err the way its kind calls for and marks it reported.
func present(cfg config.Config, err error, action string) error {
	if err == nil {
		return nil
	}
	switch apperrors.KindOf(err) {
	case apperrors.AuthRejected, apperrors.AuthTransport:
		pterm.Println(logging.FormatAuthError(err))
	case apperrors.BackendUnavailable:
		_ = httperrors.FormatNetworkError(err, action, cfg.Backend.URL)
	case apperrors.Unauthorized:
		pterm.Println("🔒 You need to be signed in for this.")
		pterm.Println("   Run 'arenatv login' to get started.")
	case apperrors.NotFound:
		pterm.Println("❌ " + apperrors.MessageOf(err))
	case apperrors.PaymentFailed:
		pterm.Println(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Payment failed"))
		pterm.Println("   " + logging.Mask(apperrors.MessageOf(err)))
	case apperrors.InvalidRequest:
		pterm.Println("❌ " + logging.Mask(apperrors.MessageOf(err)))
	default:
		if errors.Is(err, context.Canceled) {
			return err
		}
		pterm.Error.Println(logging.PresentError(action, err))
	}
	return &reportedError{err: err}
}

// redirectHint tells the user which command leads to a guard's redirect target.
func redirectHint(d guard.Decision) {
	switch d.Location {
	case guard.SignInRoute:
		pterm.Println("🔒 You need to be signed in to watch.")
		pterm.Println("   Run 'arenatv login' to get started.")
	case guard.SubscriptionRoute:
		pterm.Println("⭐ An active subscription is required to watch this event.")
		pterm.Println("   Run 'arenatv subscribe' to unlock every stream.")
	default:
		pterm.Println("→ " + d.Location)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Mon 02 Jan 15:04")
}

func renderTable(header []string, rows [][]string) error {
	data := pterm.TableData{header}
	data = append(data, rows...)
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// openBrowser attempts to open url in the user's default browser without
// waiting for it.
func openBrowser(url string) {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		c = exec.Command("open", url)
	default:
		c = exec.Command("xdg-open", url)
	}
	if err := c.Start(); err != nil {
		pterm.Debug.Printfln("could not open browser: %v", err)
	}
}
