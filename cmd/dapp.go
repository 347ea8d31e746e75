package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/config"
	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/Mohsinsiddi/w3dapp/internal/session"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/Mohsinsiddi/w3dapp/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
)

// localAddresses are where the demo contracts land when deployed first and
// second by the default account of a fresh Hardhat or Anvil node.
var localAddresses = map[string]string{
	"atm":    "0x5FbDB2315678afecb367f032d93F642f64180aa3",
	"office": "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512",
}

// addressFlag overrides the contract address resolved from the project file.
var addressFlag string

func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.DefaultKeystore(filepath.Join(cfg.Dir(), "keys"))),
	)
}

func projectRegistry() (*contract.Registry, error) {
	reg := contract.NewRegistry(contract.ProjectFile)
	if err := reg.Load(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", contract.ProjectFile, err)
	}
	return reg, nil
}

// resolveContract finds the address and method set of a contract on the
// configured network. The project file wins; built-ins fall back to their
// local-node addresses on localhost.
func resolveContract(name string) (common.Address, *contract.MethodSet, error) {
	reg, err := projectRegistry()
	if err != nil {
		return common.Address{}, nil, err
	}

	var (
		set  *contract.MethodSet
		addr string
	)
	e, err := reg.Get(name, cfg.Network)
	switch {
	case err == nil:
		if set, err = reg.Methods(e); err != nil {
			return common.Address{}, nil, err
		}
		addr = e.Address
	case errors.Is(err, contract.ErrContractNotFound):
		if set, err = contract.BuiltinMethods(name); err != nil {
			return common.Address{}, nil, fmt.Errorf("%w: %s on %s", contract.ErrContractNotFound, name, cfg.Network)
		}
		if cfg.Network == "localhost" {
			addr = localAddresses[name]
		}
	default:
		return common.Address{}, nil, err
	}

	if addressFlag != "" {
		addr = addressFlag
	}
	if !common.IsHexAddress(addr) {
		return common.Address{}, nil, fmt.Errorf("no address for %s on %s: run w3dapp deploy %s or pass --address", name, cfg.Network, name)
	}
	return common.HexToAddress(addr), set, nil
}

// signingWallet returns the wallet that signs locally: --wallet, else the
// default wallet when it holds a key. nil means the provider signs.
func signingWallet(mgr *wallet.Manager) (*wallet.Wallet, error) {
	w, err := mgr.SigningWallet(walletFlag, cfg.DefaultWallet)
	if errors.Is(err, wallet.ErrWatchOnly) {
		return nil, fmt.Errorf("%w (import its key with: w3dapp wallet import <name> --key <hex>)", err)
	}
	return w, err
}

// signerFor signs with w's key for w's own account and lets the provider
// sign for any other account.
func signerFor(mgr *wallet.Manager, w *wallet.Wallet) session.SignerFactory {
	if w == nil {
		return session.WalletSigner
	}
	return func(p chain.Provider, acct common.Address) (contract.Signer, error) {
		if acct != w.Account() {
			return session.WalletSigner(p, acct)
		}
		return wallet.NewKeySigner(w, mgr.Keystore(), p)
	}
}

func walletCandidates() []string {
	candidates := cfg.WalletCandidates(chain.NewRegistry())
	if walletURLFlag != "" {
		candidates = append([]string{walletURLFlag}, candidates...)
	}
	return candidates
}

// detectWallet finds the wallet provider. With --verbose every round trip is
// echoed to stderr.
func detectWallet(ctx context.Context) (*chain.Detection, chain.Provider, error) {
	dctx, cancel := context.WithTimeout(ctx, config.DetectTimeout)
	defer cancel()

	d, err := chain.Detect(dctx, walletCandidates()...)
	if err != nil {
		return nil, nil, err
	}
	return d, traced(d), nil
}

// traced returns the detected provider, wrapped to echo round trips when
// --verbose is set.
func traced(d *chain.Detection) chain.Provider {
	if !verbose {
		return d.Provider
	}
	fmt.Fprintln(os.Stderr, ui.Meta(fmt.Sprintf("wallet: %s (%s, %s)", d.URL, chain.NewRegistry().Describe(d.ChainID), d.Latency.Round(time.Millisecond))))
	return &chain.Traced{Provider: d.Provider, Out: os.Stderr, Format: ui.Meta}
}

// dapp is one command's session with one contract.
type dapp struct {
	s      *session.Session
	det    *chain.Detection
	signer *wallet.Wallet // nil when the provider signs
}

// openDapp resolves contract name and attaches the detected wallet. A missing
// wallet is an error unless allowMissing is set, in which case the session
// has no provider.
func openDapp(ctx context.Context, name string, allowMissing bool) (*dapp, error) {
	addr, set, err := resolveContract(name)
	if err != nil {
		return nil, err
	}
	mgr := newWalletManager()
	w, err := signingWallet(mgr)
	if err != nil {
		return nil, err
	}

	d := &dapp{
		signer: w,
		s: session.New(session.Config{
			Address:      addr,
			Methods:      set,
			PollInterval: cfg.PollInterval(),
			SignerFor:    signerFor(mgr, w),
		}),
	}

	dctx, cancel := context.WithTimeout(ctx, config.DetectTimeout)
	defer cancel()
	det, err := d.s.Detect(dctx, walletCandidates()...)
	if err != nil {
		if allowMissing && chain.KindOf(err) == chain.KindNoProvider {
			return d, nil
		}
		return nil, err
	}
	d.det = det
	if verbose {
		d.s.SetProvider(traced(det))
	}
	return d, nil
}

// Close releases the detected provider.
func (d *dapp) Close() {
	if d.det != nil {
		d.det.Provider.Close()
	}
}

// connect binds the session. A local signing wallet binds its own account;
// otherwise an already authorized account is restored, and only when there
// is none is the wallet asked.
func (d *dapp) connect(ctx context.Context) error {
	if d.signer != nil {
		d.s.SetAccount(d.signer.Account())
		_, err := d.s.Bind()
		return err
	}

	rctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	_, ok, err := d.s.Restore(rctx)
	cancel()
	if err != nil {
		return err
	}
	if !ok {
		if _, err := d.s.Authorize(ctx); err != nil {
			return err
		}
	}
	_, err = d.s.Bind()
	return err
}

// network describes the chain the wallet answered for.
func (d *dapp) network() string {
	if d.det == nil {
		return cfg.Network
	}
	return chain.NewRegistry().Describe(d.det.ChainID)
}

// txContext bounds a confirmation wait by confirm_timeout_sec, if set.
func txContext(parent context.Context) (context.Context, context.CancelFunc) {
	if d := cfg.ConfirmTimeout(); d > 0 {
		return context.WithTimeout(parent, d)
	}
	return context.WithCancel(parent)
}

// readContext bounds a single view call.
func readContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, config.ReadTimeout)
}

// runTx shows a spinner while fn waits for its confirmation.
func runTx(ctx context.Context, msg string, fn func(ctx context.Context) error) error {
	tctx, cancel := txContext(ctx)
	defer cancel()

	spin := ui.NewSpinner(msg)
	spin.Start()
	err := fn(tctx)
	spin.Stop()
	return err
}

func printConnected(d *dapp) {
	acct, _ := d.s.Account()
	pairs := [][2]string{
		{"Account", acct.Hex()},
		{"Contract", d.s.Contract().Hex()},
		{"Network", d.network()},
	}
	if d.signer != nil {
		pairs = append(pairs, [2]string{"Signer", d.signer.Name + " (local key)"})
	}
	fmt.Println(ui.KeyValueBlock("", pairs))
}
