// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build darwin

package keychain

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

func isVerbose() bool {
	return os.Getenv("ARENATV_VERBOSE") == "1"
}

// securityBackend stores generic passwords through the macOS security command,
// which avoids the keychain ACL prompts the keyring library triggers on every
// rebuilt binary.
type securityBackend struct{}

func newSecurityBackend() (*securityBackend, error) {
	if _, err := exec.LookPath("security"); err != nil {
		return nil, fmt.Errorf("security command not found: %w", err)
	}
	return &securityBackend{}, nil
}

func (s *securityBackend) run(args ...string) (string, string, error) {
	cmd := exec.Command("security", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Set stores a key-value pair, replacing any existing entry.
func (s *securityBackend) Set(key, value string) error {
	if err := s.Delete(key); err != nil && isVerbose() {
		fmt.Printf("[DEBUG] keychain: delete before set for '%s': %v\n", key, err)
	}
	_, stderr, err := s.run("add-generic-password", "-a", ServiceName, "-s", key, "-w", value, "-U")
	if err != nil {
		return fmt.Errorf("failed to store '%s' in keychain: %s: %w", key, strings.TrimSpace(stderr), err)
	}
	if isVerbose() {
		fmt.Printf("[DEBUG] keychain: stored '%s' (%d bytes)\n", key, len(value))
	}
	return nil
}

// Get retrieves a value; a missing entry yields ErrNotFound.
func (s *securityBackend) Get(key string) (string, error) {
	stdout, stderr, err := s.run("find-generic-password", "-a", ServiceName, "-s", key, "-w")
	if err != nil {
		if strings.Contains(stderr, "could not be found") {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to retrieve from keychain: %s: %w", strings.TrimSpace(stderr), err)
	}
	return strings.TrimSpace(stdout), nil
}

// Delete removes a key; a missing entry is not an error.
func (s *securityBackend) Delete(key string) error {
	_, stderr, err := s.run("delete-generic-password", "-a", ServiceName, "-s", key)
	if err != nil {
		if strings.Contains(stderr, "could not be found") {
			return nil
		}
		return fmt.Errorf("failed to delete from keychain: %s: %w", strings.TrimSpace(stderr), err)
	}
	return nil
}
