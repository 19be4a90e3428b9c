// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain persists the signed-in session in the OS credential store.
//
// The session blob (access token, refresh token, expiry, user projection) is the
// CLI's equivalent of the browser's persisted auth token: it is what lets a new
// process pick up where the last one left off. Nothing else is stored here.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
)

// ErrNotFound is returned by backends when a key has no stored value.
var ErrNotFound = errors.New("keychain: key not found")

// Manager provides thread-safe access to the session entry in the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
}

// keychainBackend defines the interface for keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "arenatv"

// KeySession is the key holding the serialized session.
const KeySession = "auth_session"

// NewManager creates a keychain manager, preferring the native macOS
// security command and falling back to the keyring library.
func NewManager() (*Manager, error) {
	if runtime.GOOS == "darwin" {
		if backend, err := newSecurityBackend(); err == nil {
			return &Manager{backend: backend}, nil
		}
	}

	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// GetManager returns the process-wide manager, creating it on first use.
// A failed initialization is retried on the next call.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends only; there is
// deliberately no encrypted-file fallback.
func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on this OS")
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
	}
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = ServiceName
	}
	return keyring.Open(cfg)
}

// SaveSession stores the serialized session.
func (m *Manager) SaveSession(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Set(KeySession, string(data))
	}
	return m.ring.Set(keyring.Item{Key: KeySession, Data: data, Label: "ArenaTV session"})
}

// LoadSession returns the serialized session, or nil when none is stored.
func (m *Manager) LoadSession() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.backend != nil {
		data, err := m.backend.Get(KeySession)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []byte(data), nil
	}

	it, err := m.ring.Get(KeySession)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return it.Data, nil
}

// ClearSession removes the stored session. Missing entries are not an error.
func (m *Manager) ClearSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Delete(KeySession)
	}
	if err := m.ring.Remove(KeySession); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
