package ens

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/Mohsinsiddi/w3dapp/internal/chain/chaintest"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

func hexNode(name string) string {
	n := Namehash(name)
	return hex.EncodeToString(n[:])
}

// ---------------------------------------------------------------------------
// Namehash: EIP-137 vectors
// ---------------------------------------------------------------------------

func TestNamehash_Empty(t *testing.T) {
	assert.Equal(t, "0000000000000000000000000000000000000000000000000000000000000000", hexNode(""))
}

func TestNamehash_ETH(t *testing.T) {
	assert.Equal(t, "93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae", hexNode("eth"))
}

func TestNamehash_FooETH(t *testing.T) {
	assert.Equal(t, "de9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f", hexNode("foo.eth"))
}

func TestNamehash_Subdomain(t *testing.T) {
	assert.NotEqual(t, Namehash("test.eth"), Namehash("sub.test.eth"))
}

func TestIsName(t *testing.T) {
	assert.True(t, IsName("alice.eth"))
	assert.True(t, IsName("pay.alice.eth"))
	assert.False(t, IsName(alice.Hex()))
	assert.False(t, IsName("alice"))
}

// ---------------------------------------------------------------------------
// Resolve / Lookup
// ---------------------------------------------------------------------------

// fakeENS is one contract acting as both the registry and the resolver for
// the names it knows.
func fakeENS(t *testing.T, names map[string]common.Address) *Resolver {
	t.Helper()
	reverse := make(map[[32]byte]string)
	forward := make(map[[32]byte]common.Address)
	for name, addr := range names {
		forward[Namehash(name)] = addr
		reverse[Namehash(common.Bytes2Hex(addr.Bytes())+".addr.reverse")] = name
	}

	p := chaintest.NewProvider()
	c := chaintest.NewContract(parsedABI, RegistryAddress)
	known := func(node [32]byte) bool {
		_, f := forward[node]
		_, r := reverse[node]
		return f || r
	}
	c.View("resolver", func(_ common.Address, args []any) ([]any, error) {
		if known(args[0].([32]byte)) {
			return []any{RegistryAddress}, nil
		}
		return []any{common.Address{}}, nil
	})
	c.View("addr", func(_ common.Address, args []any) ([]any, error) {
		return []any{forward[args[0].([32]byte)]}, nil
	})
	c.View("name", func(_ common.Address, args []any) ([]any, error) {
		return []any{reverse[args[0].([32]byte)]}, nil
	})
	c.Install(p)
	return NewResolver(p)
}

func TestResolve(t *testing.T) {
	r := fakeENS(t, map[string]common.Address{"alice.eth": alice})

	got, err := r.Resolve(context.Background(), "alice.eth")
	require.NoError(t, err)
	assert.Equal(t, alice, got)
}

func TestResolve_NoResolver(t *testing.T) {
	r := fakeENS(t, nil)

	_, err := r.Resolve(context.Background(), "nobody.eth")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookup(t *testing.T) {
	r := fakeENS(t, map[string]common.Address{"alice.eth": alice})

	name, err := r.Lookup(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, "alice.eth", name)
}

func TestLookup_NoPrimaryName(t *testing.T) {
	r := fakeENS(t, nil)

	_, err := r.Lookup(context.Background(), alice)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_NoRegistryOnChain(t *testing.T) {
	p := chaintest.NewProvider()
	p.Result("eth_call", "0x")

	_, err := NewResolver(p).Resolve(context.Background(), "alice.eth")
	assert.ErrorIs(t, err, ErrNotFound)
}
