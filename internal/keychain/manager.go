// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain keeps menagerie's secrets, currently the collection store
// DSN, in the OS keychain/credential store.
//
// macOS uses the native security command when available; other platforms go
// through github.com/99designs/keyring with native backends only.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "menagerie"

// KeyStoreDSN is the keychain key of the collection store DSN.
const KeyStoreDSN = "store_dsn"

// ErrNotFound is returned when no secret is stored under a key.
var ErrNotFound = errors.New("keychain: secret not found")

var (
	globalManager *Manager
	mu            sync.Mutex
)

// secrets is the minimal key/value contract of a credential store.
type secrets interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// Manager provides thread-safe access to the credential store.
type Manager struct {
	mu    sync.RWMutex
	store secrets
}

// NewManager opens the platform credential store.
func NewManager() (*Manager, error) {
	if runtime.GOOS == "darwin" {
		if backend, err := newSecurityBackend(); err == nil {
			return &Manager{store: backend}, nil
		}
	}
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return NewWithKeyring(ring), nil
}

// NewWithKeyring wraps an already opened keyring.
func NewWithKeyring(ring keyring.Keyring) *Manager {
	return &Manager{store: ringStore{ring: ring}}
}

// GetManager returns the process-wide manager, retrying initialization on
// each call until it succeeds.
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
	return m, nil
}

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
		return nil, errors.New("secure storage not supported on " + runtime.GOOS)
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
	})
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. Install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

// SaveStoreDSN stores the collection store DSN.
func (m *Manager) SaveStoreDSN(dsn string) error {
	if dsn == "" {
		return errors.New("keychain: empty DSN")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Set(KeyStoreDSN, dsn)
}

// LoadStoreDSN returns the stored DSN or ErrNotFound.
func (m *Manager) LoadStoreDSN() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, err := m.store.Get(KeyStoreDSN)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

// ClearStoreDSN removes the stored DSN. Missing entries are not an error.
func (m *Manager) ClearStoreDSN() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Delete(KeyStoreDSN); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// ringStore adapts a keyring.Keyring.
type ringStore struct {
	ring keyring.Keyring
}

func (r ringStore) Set(key, value string) error {
	return r.ring.Set(keyring.Item{Key: key, Data: []byte(value)})
}

func (r ringStore) Get(key string) (string, error) {
	it, err := r.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(it.Data), nil
}

func (r ringStore) Delete(key string) error {
	err := r.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}
