package cmd

import (
	"testing"

	"arenatv/cli/internal/config"
)

func TestEffectiveLogLevel(t *testing.T) {
	cfg := config.Defaults()
	tests := []struct {
		name    string
		flag    string
		verbose bool
		want    string
	}{
		{"config default", "", false, "info"},
		{"verbose", "", true, "debug"},
		{"explicit flag wins", "warn", true, "warn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logLevel, verbose = tt.flag, tt.verbose
			t.Cleanup(func() { logLevel, verbose = "", false })
			if got := effectiveLogLevel(cfg); got != tt.want {
				t.Errorf("effectiveLogLevel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShorten(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"multi\n  line   text", 20, "multi line text"},
		{"abcdefghij", 5, "abcd…"},
	}
	for _, tt := range tests {
		if got := shorten(tt.in, tt.n); got != tt.want {
			t.Errorf("shorten(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestCommandTree(t *testing.T) {
	want := []string{"login", "signup", "logout", "whoami", "sports", "teams", "events", "event", "watch", "subscribe", "favorites", "notifications", "serve"}
	for _, name := range want {
		c, _, err := rootCmd.Find([]string{name})
		if err != nil || c == rootCmd {
			t.Errorf("command %q not registered", name)
		}
	}
	for _, sub := range []string{"list", "add-sport", "remove-sport", "add-team", "remove-team"} {
		if c, _, err := rootCmd.Find([]string{"favorites", sub}); err != nil || c.Name() != sub {
			t.Errorf("favorites %s not registered", sub)
		}
	}
}
