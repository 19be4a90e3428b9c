package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ARENATV_URL", "")
	t.Setenv("ARENATV_ANON_KEY", "")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Payment.Amount != 60 || c.Payment.Currency != "THB" {
		t.Errorf("payment defaults = %+v", c.Payment)
	}
	if c.Backend.Timeout.Duration != 10*time.Second {
		t.Errorf("timeout = %v", c.Backend.Timeout)
	}
	if err := c.Validate(); err == nil {
		t.Errorf("Validate() should fail without backend URL")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("ARENATV_URL", "https://env.example.co/")
	t.Setenv("ARENATV_ANON_KEY", "")

	raw, _ := json.Marshal(map[string]any{
		"log_level": "debug",
		"backend":   map[string]any{"url": "https://file.example.co", "anon_key": "anon", "timeout": "3s"},
	})
	if err := os.MkdirAll(filepath.Join(dir, "arenatv"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "arenatv", "config.json"), raw, 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"env overrides url and trims slash", c.Backend.URL, "https://env.example.co"},
		{"file anon key kept", c.Backend.AnonKey, "anon"},
		{"file log level", c.LogLevel, "debug"},
		{"file timeout", c.Backend.Timeout.Duration, 3 * time.Second},
		{"defaults survive partial file", c.Server.NotifySpec, "@every 15m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
