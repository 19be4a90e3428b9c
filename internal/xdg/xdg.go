// Package xdg resolves XDG Base Directory paths for arenatv.
// Directories are created on demand with private permissions because the
// config directory may hold backend URLs and keys tied to the user's account.
package xdg

import (
	"os"
	"path/filepath"
)

const appDir = "arenatv"

// ConfigDir returns $XDG_CONFIG_HOME/arenatv, falling back to ~/.config/arenatv.
// The directory is created with 0700 if missing.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

func resolve(envKey, homeFallback string) (string, error) {
	base := os.Getenv(envKey)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeFallback)
	}
	dir := filepath.Join(base, appDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
