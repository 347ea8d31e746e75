package wallet

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet types.
const (
	TypeWatchOnly = "watch-only"
	TypeSigning   = "signing"
)

// Errors.
var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrInvalidKey     = errors.New("invalid private key")
	ErrInvalidAddress = errors.New("invalid address")
	ErrWatchOnly      = errors.New("wallet is watch-only")
)

// Wallet is a named account. Private keys never live here; signing wallets
// point at the keystore through KeyRef.
type Wallet struct {
	Name      string         `json:"name"`
	Address   common.Address `json:"address"`
	Type      string         `json:"type"`
	KeyRef    string         `json:"key_ref,omitempty"`
	IsDefault bool           `json:"is_default,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Account returns the wallet address.
func (w *Wallet) Account() common.Address { return w.Address }

// CanSign reports whether the wallet signs with a local key.
func (w *Wallet) CanSign() bool { return w.Type == TypeSigning }

// Manager keeps the named wallets and the keys of the signing ones.
type Manager struct {
	mu      sync.Mutex
	store   Store
	keys    KeystoreBackend
	wallets map[string]*Wallet
	loaded  bool
	now     func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore sets where wallet metadata is persisted.
func WithStore(s Store) Option {
	return func(m *Manager) { m.store = s }
}

// WithKeystore sets where private keys of signing wallets go.
func WithKeystore(ks KeystoreBackend) Option {
	return func(m *Manager) { m.keys = ks }
}

// NewManager returns a Manager. Without options wallets and keys are kept in
// memory only.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		wallets: make(map[string]*Wallet),
		store:   &MemoryStore{},
		keys:    NewInMemoryKeystore(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Keystore returns the backend holding private keys.
func (m *Manager) Keystore() KeystoreBackend { return m.keys }

// AddWatchOnly records an address under name without a key.
func (m *Manager) AddWatchOnly(name, address string) (*Wallet, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return m.add(&Wallet{
		Name:    name,
		Address: common.HexToAddress(address),
		Type:    TypeWatchOnly,
	})
}

// AddWithKey derives the address from a hex private key, stores the key in
// the keystore and records a signing wallet.
func (m *Manager) AddWithKey(name, hexKey string) (*Wallet, error) {
	privKey, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	m.mu.Lock()
	if err := m.loadLocked(); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	_, exists := m.wallets[name]
	m.mu.Unlock()
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrWalletExists, name)
	}

	ref, err := m.keys.Store(name, hexKey)
	if err != nil {
		return nil, fmt.Errorf("storing key: %w", err)
	}
	return m.add(&Wallet{
		Name:    name,
		Address: crypto.PubkeyToAddress(privKey.PublicKey),
		Type:    TypeSigning,
		KeyRef:  ref,
	})
}

func (m *Manager) add(w *Wallet) (*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.loadLocked(); err != nil {
		return nil, err
	}
	if _, exists := m.wallets[w.Name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrWalletExists, w.Name)
	}
	w.CreatedAt = m.now().UTC().Truncate(time.Second)
	m.wallets[w.Name] = w
	return w, m.persistLocked()
}

// Get returns a wallet by name.
func (m *Manager) Get(name string) (*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.loadLocked(); err != nil {
		return nil, err
	}
	w, ok := m.wallets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	return w, nil
}

// Remove deletes a wallet by name, along with its stored key.
func (m *Manager) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.loadLocked(); err != nil {
		return err
	}
	w, ok := m.wallets[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	if w.KeyRef != "" {
		if err := m.keys.Delete(w.KeyRef); err != nil {
			return err
		}
	}
	delete(m.wallets, name)
	return m.persistLocked()
}

// List returns all wallets sorted by name.
func (m *Manager) List() []*Wallet {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadLocked() //nolint:errcheck
	return m.listLocked()
}

func (m *Manager) listLocked() []*Wallet {
	out := make([]*Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetDefault marks a wallet as the default.
func (m *Manager) SetDefault(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.loadLocked(); err != nil {
		return err
	}
	if _, ok := m.wallets[name]; !ok {
		return fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	for _, w := range m.wallets {
		w.IsDefault = w.Name == name
	}
	return m.persistLocked()
}

// Default returns the default wallet, the only wallet when there is just
// one, or nil.
func (m *Manager) Default() *Wallet {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadLocked() //nolint:errcheck
	for _, w := range m.wallets {
		if w.IsDefault {
			return w
		}
	}
	if len(m.wallets) == 1 {
		for _, w := range m.wallets {
			return w
		}
	}
	return nil
}

// SigningWallet picks the wallet that signs locally. An explicit name must be
// a signing wallet. Otherwise the configured name, then the default, is used
// when it can sign. A nil wallet with no error means the wallet provider
// signs.
func (m *Manager) SigningWallet(explicit, configured string) (*Wallet, error) {
	if explicit != "" {
		w, err := m.Get(explicit)
		if err != nil {
			return nil, err
		}
		if !w.CanSign() {
			return nil, fmt.Errorf("%w: %s", ErrWatchOnly, w.Name)
		}
		return w, nil
	}

	w := m.Default()
	if configured != "" {
		if named, err := m.Get(configured); err == nil {
			w = named
		}
	}
	if w != nil && w.CanSign() {
		return w, nil
	}
	return nil, nil
}

func (m *Manager) loadLocked() error {
	if m.loaded {
		return nil
	}
	wallets, err := m.store.Load()
	if err != nil {
		return err
	}
	for _, w := range wallets {
		m.wallets[w.Name] = w
	}
	m.loaded = true
	return nil
}

func (m *Manager) persistLocked() error {
	return m.store.Save(m.listLocked())
}
