// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; session tokens go to the OS keychain.
// Environment variables override the file so the functions server can be
// configured without one.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"arenatv/cli/internal/xdg"
)

// Config holds CLI and functions-server settings.
type Config struct {
	LogLevel string        `json:"log_level"`
	Backend  BackendConfig `json:"backend"`
	Payment  PaymentConfig `json:"payment"`
	Server   ServerConfig  `json:"server"`
}

// BackendConfig points the client at the hosted backend project.
type BackendConfig struct {
	// URL is the project base URL, e.g. "https://xyz.supabase.co".
	URL string `json:"url"`
	// AnonKey is the public API key sent as the apikey header.
	AnonKey string `json:"anon_key"`
	// Timeout bounds every HTTP round-trip.
	Timeout Duration `json:"timeout"`
	// EntitlementRetries is the number of extra attempts for the subscription check.
	EntitlementRetries int `json:"entitlement_retries"`
}

// PaymentConfig holds subscription offer defaults.
type PaymentConfig struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// ServerConfig configures `arenatv serve`.
type ServerConfig struct {
	Addr         string `json:"addr"`
	GRPCAddr     string `json:"grpc_addr"`
	DatabaseURL  string `json:"-"`
	JWTSecret    string `json:"-"`
	ServiceKey   string `json:"-"`
	RedisAddr    string `json:"redis_addr"`
	NotifySpec   string `json:"notify_schedule"`
	PaymentLimit int    `json:"payment_limit_per_minute"`
}

// Duration is a time.Duration that marshals as a Go duration string.
type Duration struct{ time.Duration }

func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		LogLevel: "info",
		Backend: BackendConfig{
			Timeout: Duration{10 * time.Second},
		},
		Payment: PaymentConfig{Amount: 60, Currency: "THB"},
		Server: ServerConfig{
			Addr:         ":8080",
			GRPCAddr:     ":9090",
			NotifySpec:   "@every 15m",
			PaymentLimit: 5,
		},
	}
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults. Environment
// overrides are applied in both cases.
func Load() (Config, error) {
	c := Defaults()
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, err
		}
	}
	applyEnv(&c, os.Getenv)
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

func applyEnv(c *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.LogLevel, "ARENATV_LOG_LEVEL")
	set(&c.Backend.URL, "ARENATV_URL")
	set(&c.Backend.AnonKey, "ARENATV_ANON_KEY")
	set(&c.Server.DatabaseURL, "ARENATV_DATABASE_URL")
	set(&c.Server.JWTSecret, "ARENATV_JWT_SECRET")
	set(&c.Server.ServiceKey, "ARENATV_SERVICE_KEY")
	set(&c.Server.RedisAddr, "ARENATV_REDIS_ADDR")
	c.Backend.URL = strings.TrimRight(c.Backend.URL, "/")
}

// Validate reports missing settings the client cannot work without.
func (c Config) Validate() error {
	if c.Backend.URL == "" {
		return errors.New("backend URL is not configured (set ARENATV_URL or backend.url)")
	}
	if c.Backend.AnonKey == "" {
		return errors.New("backend anon key is not configured (set ARENATV_ANON_KEY or backend.anon_key)")
	}
	return nil
}
