package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetByName(t *testing.T) {
	r := NewRegistry()
	n, err := r.GetByName("LocalHost")
	require.NoError(t, err)
	assert.Equal(t, int64(31337), n.ChainID)
	assert.Equal(t, "http://127.0.0.1:8545", n.RPCURL)

	_, err = r.GetByName("nope")
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

func TestRegistryGetByChainID(t *testing.T) {
	r := NewRegistry()
	n, err := r.GetByChainID(big.NewInt(11155111))
	require.NoError(t, err)
	assert.Equal(t, "sepolia", n.Name)

	_, err = r.GetByChainID(nil)
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

func TestRegistryDescribe(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "Hardhat (localhost)", r.Describe(big.NewInt(31337)))
	assert.Equal(t, "chain 424242", r.Describe(big.NewInt(424242)))
	assert.Equal(t, "unknown chain", r.Describe(nil))
}

func TestRegistryUniqueNamesAndIDs(t *testing.T) {
	seenName := map[string]bool{}
	seenID := map[int64]bool{}
	for _, n := range NewRegistry().All() {
		assert.False(t, seenName[n.Name], "duplicate name %s", n.Name)
		assert.False(t, seenID[n.ChainID], "duplicate chain id %d", n.ChainID)
		seenName[n.Name] = true
		seenID[n.ChainID] = true
	}
}

func TestWalletCandidates(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t,
		[]string{"http://wallet:9000", FrameURL, "http://127.0.0.1:8545"},
		r.WalletCandidates("http://wallet:9000", "localhost"))
	assert.Equal(t, []string{FrameURL}, r.WalletCandidates("", "unknown"))
}
