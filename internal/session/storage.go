// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"encoding/json"
	"sync"

	"arenatv/cli/internal/keychain"
)

// Persister stores the session between processes.
type Persister interface {
	// Load returns the stored session, or nil when none is stored.
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

// KeychainPersister keeps the session in the OS keychain.
type KeychainPersister struct{}

func (KeychainPersister) Load() (*Session, error) {
	km, err := keychain.GetManager()
	if err != nil {
		return nil, err
	}
	data, err := km.LoadSession()
	if err != nil || len(data) == 0 {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.AccessToken == "" {
		return nil, nil
	}
	return &s, nil
}

func (KeychainPersister) Save(s *Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	km, err := keychain.GetManager()
	if err != nil {
		return err
	}
	return km.SaveSession(b)
}

func (KeychainPersister) Clear() error {
	km, err := keychain.GetManager()
	if err != nil {
		return err
	}
	return km.ClearSession()
}

// MemoryPersister keeps the session for the life of the process only.
type MemoryPersister struct {
	mu sync.Mutex
	s  *Session
}

func (m *MemoryPersister) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.Clone(), nil
}

func (m *MemoryPersister) Save(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s.Clone()
	return nil
}

func (m *MemoryPersister) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = nil
	return nil
}
