// Package session holds the wallet-bound contract client: which provider was
// detected, which account is authorized, and the contract handle bound to it.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/Mohsinsiddi/w3dapp/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
)

// State is where a session is in the connect flow.
type State int

const (
	Unconnected State = iota // no authorized account
	Connected                // account known, no contract handle
	Bound                    // handle built for the active account
)

func (s State) String() string {
	switch s {
	case Unconnected:
		return "unconnected"
	case Connected:
		return "connected"
	case Bound:
		return "bound"
	default:
		return "unknown"
	}
}

// SignerFactory builds the signer used for an account.
type SignerFactory func(p chain.Provider, account common.Address) (contract.Signer, error)

// WalletSigner lets the provider's wallet sign for every account.
func WalletSigner(p chain.Provider, account common.Address) (contract.Signer, error) {
	return wallet.NewProviderSigner(p, account), nil
}

// Config parameterizes a session with the one contract it talks to.
type Config struct {
	Address      common.Address
	Methods      *contract.MethodSet
	PollInterval time.Duration // receipt polling, chain.DefaultPollInterval if zero
	ManualRebind bool          // keep the session Connected after an account change
	SignerFor    SignerFactory // WalletSigner if nil
}

// Session is one user's connection to one contract.
type Session struct {
	cfg Config

	mu       sync.RWMutex
	provider chain.Provider
	account  common.Address
	handle   *contract.Handle
	rebind   bool // set by a successful Bind, cleared by SetProvider
}

// New returns an Unconnected session without a provider.
func New(cfg Config) *Session {
	if cfg.SignerFor == nil {
		cfg.SignerFor = WalletSigner
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = chain.DefaultPollInterval
	}
	return &Session{cfg: cfg}
}

// Detect probes the candidate endpoints and adopts the first wallet found.
// The caller closes d.Provider when done with the session.
func (s *Session) Detect(ctx context.Context, candidates ...string) (*chain.Detection, error) {
	d, err := chain.Detect(ctx, candidates...)
	if err != nil {
		return nil, err
	}
	s.SetProvider(d.Provider)
	return d, nil
}

// SetProvider installs p and resets the session to Unconnected.
func (s *Session) SetProvider(p chain.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = p
	s.account = common.Address{}
	s.handle = nil
	s.rebind = false
}

// Provider returns the installed provider, or nil.
func (s *Session) Provider() chain.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider
}

// HasProvider reports whether a wallet was found.
func (s *Session) HasProvider() bool { return s.Provider() != nil }

// Contract returns the bound contract address.
func (s *Session) Contract() common.Address { return s.cfg.Address }

// State reports the connect state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.handle != nil:
		return Bound
	case s.account != (common.Address{}):
		return Connected
	default:
		return Unconnected
	}
}

// Account returns the active account; ok is false when none is authorized.
func (s *Session) Account() (common.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account, s.account != (common.Address{})
}

func (s *Session) client() (*chain.EVMClient, error) {
	p := s.Provider()
	if p == nil {
		return nil, chain.ErrNoProvider
	}
	return chain.NewEVMClient(p), nil
}

// Authorize asks the wallet for access. The first returned account becomes
// active. On failure the session is left as it was.
func (s *Session) Authorize(ctx context.Context) (common.Address, error) {
	c, err := s.client()
	if err != nil {
		return common.Address{}, err
	}
	accounts, err := c.RequestAccounts(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if len(accounts) == 0 {
		return common.Address{}, chain.NewError(chain.KindUnauthorized, "eth_requestAccounts",
			errors.New("wallet returned no accounts"))
	}
	s.SetAccount(accounts[0])
	return accounts[0], nil
}

// Restore adopts an account the wallet has already authorized, without
// prompting. ok is false when the wallet exposes none.
func (s *Session) Restore(ctx context.Context) (account common.Address, ok bool, err error) {
	c, err := s.client()
	if err != nil {
		return common.Address{}, false, err
	}
	accounts, err := c.Accounts(ctx)
	if err != nil {
		return common.Address{}, false, err
	}
	if len(accounts) == 0 {
		s.SetAccount(common.Address{})
		return common.Address{}, false, nil
	}
	s.SetAccount(accounts[0])
	return accounts[0], true, nil
}

// Connect authorizes and binds in one step.
func (s *Session) Connect(ctx context.Context) (*contract.Handle, error) {
	if _, err := s.Authorize(ctx); err != nil {
		return nil, err
	}
	return s.Bind()
}

// Bind builds a fresh contract handle for the active account.
func (s *Session) Bind() (*contract.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bindLocked()
}

func (s *Session) bindLocked() (*contract.Handle, error) {
	if s.provider == nil {
		return nil, chain.ErrNoProvider
	}
	if s.account == (common.Address{}) {
		return nil, chain.NewError(chain.KindUnauthorized, "bind", errors.New("no authorized account"))
	}
	if s.cfg.Methods == nil {
		return nil, chain.NewError(chain.KindChain, "bind", errors.New("no contract method set configured"))
	}
	signer, err := s.cfg.SignerFor(s.provider, s.account)
	if err != nil {
		return nil, chain.NewError(chain.KindUnauthorized, "bind", err)
	}
	if signer.Account() != s.account {
		return nil, chain.NewError(chain.KindUnauthorized, "bind",
			fmt.Errorf("signer account %s is not the active account", signer.Account().Hex()))
	}
	s.handle = contract.Bind(s.cfg.Address, s.cfg.Methods, s.provider, signer).
		WithPollInterval(s.cfg.PollInterval)
	s.rebind = true
	return s.handle, nil
}

// Handle returns the current contract handle.
func (s *Session) Handle() (*contract.Handle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.handle == nil {
		return nil, chain.NewError(chain.KindUnauthorized, "handle", errors.New("contract not bound, connect a wallet first"))
	}
	return s.handle, nil
}

// SetAccount switches the active account. The old handle is dropped. Once the
// session has been bound, a new handle is bound for every later account,
// including one adopted after the wallet was locked, unless ManualRebind is
// set or acct is the zero address.
func (s *Session) SetAccount(acct common.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct == s.account && (s.handle == nil || s.handle.Account() == acct) {
		return
	}
	s.account = acct
	s.handle = nil
	if s.rebind && !s.cfg.ManualRebind && acct != (common.Address{}) {
		s.bindLocked() //nolint:errcheck
	}
}

// Invoke runs a state-changing method with the current handle and returns
// once it is confirmed. value may be nil.
func (s *Session) Invoke(ctx context.Context, method string, value *big.Int, args ...any) (*chain.Receipt, error) {
	h, err := s.Handle()
	if err != nil {
		return nil, err
	}
	return s.InvokeWith(ctx, h, method, value, args...)
}

// InvokeWith runs a method through a handle obtained earlier. A handle
// bound to an account that is no longer active is rejected.
func (s *Session) InvokeWith(ctx context.Context, h *contract.Handle, method string, value *big.Int, args ...any) (*chain.Receipt, error) {
	if err := s.checkCurrent(h); err != nil {
		return nil, err
	}
	return h.Transact(ctx, method, value, args...)
}

// Call runs a read-only method with the current handle.
func (s *Session) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	h, err := s.Handle()
	if err != nil {
		return nil, err
	}
	return h.Call(ctx, method, args...)
}

func (s *Session) checkCurrent(h *contract.Handle) error {
	if h == nil {
		return chain.NewError(chain.KindUnauthorized, "invoke", errors.New("contract not bound"))
	}
	acct, ok := s.Account()
	if !ok || h.Account() != acct {
		return chain.NewError(chain.KindUnauthorized, "invoke",
			fmt.Errorf("stale contract handle for %s, active account changed", h.Account().Hex()))
	}
	return nil
}
