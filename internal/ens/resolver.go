// Package ens resolves ENS names through the connected wallet.
package ens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// RegistryAddress is the ENS registry, at the same address on mainnet and
// the public testnets.
var RegistryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

// ErrNotFound is returned when a name or address has no record.
var ErrNotFound = errors.New("no ENS record")

const resolverABI = `[
	{"type":"function","name":"resolver","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"addr","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"name","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"string"}]}
]`

var parsedABI = func() abi.ABI {
	a, err := abi.JSON(strings.NewReader(resolverABI))
	if err != nil {
		panic(err)
	}
	return a
}()

// Resolver answers ENS lookups with eth_call through the wallet.
type Resolver struct {
	c        *chain.EVMClient
	registry common.Address
}

// NewResolver returns a Resolver using the canonical registry.
func NewResolver(p chain.Provider) *Resolver {
	return &Resolver{c: chain.NewEVMClient(p), registry: RegistryAddress}
}

// WithRegistry points the resolver at another registry, as on a local fork.
func (r *Resolver) WithRegistry(addr common.Address) *Resolver {
	r.registry = addr
	return r
}

// IsName reports whether s looks like an ENS name rather than an address.
func IsName(s string) bool {
	return strings.Contains(s, ".") && !common.IsHexAddress(s)
}

// Resolve returns the address an ENS name points to.
func (r *Resolver) Resolve(ctx context.Context, name string) (common.Address, error) {
	node := Namehash(name)
	res, err := r.resolverFor(ctx, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("resolving %s: %w", name, err)
	}

	var addr common.Address
	if err := r.call(ctx, res, "addr", node, &addr); err != nil {
		return common.Address{}, fmt.Errorf("resolving %s: %w", name, err)
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s has no address", ErrNotFound, name)
	}
	return addr, nil
}

// Lookup returns the primary name of addr from the addr.reverse registrar.
func (r *Resolver) Lookup(ctx context.Context, addr common.Address) (string, error) {
	node := Namehash(strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x")) + ".addr.reverse")
	res, err := r.resolverFor(ctx, node)
	if err != nil {
		return "", fmt.Errorf("reverse lookup of %s: %w", addr.Hex(), err)
	}

	var name string
	if err := r.call(ctx, res, "name", node, &name); err != nil {
		return "", fmt.Errorf("reverse lookup of %s: %w", addr.Hex(), err)
	}
	if name == "" {
		return "", fmt.Errorf("%w: %s has no primary name", ErrNotFound, addr.Hex())
	}
	return name, nil
}

func (r *Resolver) resolverFor(ctx context.Context, node [32]byte) (common.Address, error) {
	var res common.Address
	if err := r.call(ctx, r.registry, "resolver", node, &res); err != nil {
		return common.Address{}, err
	}
	if res == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: no resolver set", ErrNotFound)
	}
	return res, nil
}

func (r *Resolver) call(ctx context.Context, to common.Address, method string, node [32]byte, out any) error {
	data, err := parsedABI.Pack(method, node)
	if err != nil {
		return err
	}
	raw, err := r.c.Call(ctx, chain.TxRequest{To: &to, Data: data})
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("%w: no contract at %s", ErrNotFound, to.Hex())
	}
	return parsedABI.UnpackIntoInterface(out, method, raw)
}

// Namehash implements the EIP-137 namehash.
func Namehash(name string) [32]byte {
	var node [32]byte
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		label := keccak256([]byte(labels[i]))
		copy(node[:], keccak256(node[:], label))
	}
	return node
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
