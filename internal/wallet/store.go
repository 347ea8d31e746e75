package wallet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists wallet metadata.
type Store interface {
	Load() ([]*Wallet, error)
	Save([]*Wallet) error
}

// MemoryStore keeps wallets for the life of the process.
type MemoryStore struct {
	wallets []*Wallet
}

// Load returns the saved wallets.
func (s *MemoryStore) Load() ([]*Wallet, error) { return s.wallets, nil }

// Save replaces the saved wallets.
func (s *MemoryStore) Save(wallets []*Wallet) error {
	s.wallets = wallets
	return nil
}

// JSONStore persists wallets to a JSON file, wallets.json in the config dir.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store backed by path. The file is created on the
// first save.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads the file. A missing file is an empty list.
func (s *JSONStore) Load() ([]*Wallet, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var wallets []*Wallet
	if err := json.Unmarshal(data, &wallets); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return wallets, nil
}

// Save writes the file with owner-only permissions.
func (s *JSONStore) Save(wallets []*Wallet) error {
	data, err := json.MarshalIndent(wallets, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
