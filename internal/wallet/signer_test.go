package wallet

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/chain/chaintest"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var target = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

// devNode answers the fee and nonce queries a local-key signer needs and
// captures the raw transaction it broadcasts.
func devNode(t *testing.T) (*chaintest.Provider, *[]*types.Transaction) {
	t.Helper()
	p := chaintest.NewProvider()
	p.Result("eth_chainId", (*hexutil.Big)(big.NewInt(31337)))
	p.Result("eth_getTransactionCount", hexutil.Uint64(7))
	p.Result("eth_estimateGas", hexutil.Uint64(50_000))
	p.Result("eth_gasPrice", (*hexutil.Big)(big.NewInt(1_000_000_000)))
	p.Result("eth_maxPriorityFeePerGas", (*hexutil.Big)(big.NewInt(1_000)))

	var sent []*types.Transaction
	p.Handle("eth_sendRawTransaction", func(params []json.RawMessage) (any, error) {
		var raw hexutil.Bytes
		require.NoError(t, json.Unmarshal(params[0], &raw))
		tx := new(types.Transaction)
		require.NoError(t, tx.UnmarshalBinary(raw))
		sent = append(sent, tx)
		return tx.Hash(), nil
	})
	return p, &sent
}

func signingWallet(t *testing.T, ks KeystoreBackend) *Wallet {
	t.Helper()
	ref, err := ks.Store("dev", testPrivKeyHex)
	require.NoError(t, err)
	return &Wallet{Name: "dev", Address: common.HexToAddress(testSignerAddr), Type: TypeSigning, KeyRef: ref}
}

// ---------------------------------------------------------------------------
// ProviderSigner
// ---------------------------------------------------------------------------

func TestProviderSignerSendsFromAccount(t *testing.T) {
	p := chaintest.NewProvider()
	hash := common.HexToHash("0x01")
	p.Result("eth_sendTransaction", hash)

	account := common.HexToAddress(testSignerAddr)
	s := NewProviderSigner(p, account)
	got, err := s.SendTransaction(context.Background(), chain.TxRequest{To: &target})
	require.NoError(t, err)
	assert.Equal(t, hash, got)
	assert.Equal(t, account, s.Account())

	calls := p.Calls("eth_sendTransaction")
	require.Len(t, calls, 1)
	var req chain.TxRequest
	require.NoError(t, json.Unmarshal(calls[0].Params[0], &req))
	assert.Equal(t, account, req.From, "from is always the bound account")
}

func TestProviderSignerRejected(t *testing.T) {
	p := chaintest.NewProvider()
	p.Fail("eth_sendTransaction", chaintest.ErrUserRejected)

	_, err := NewProviderSigner(p, common.HexToAddress(testSignerAddr)).
		SendTransaction(context.Background(), chain.TxRequest{To: &target})
	assert.ErrorIs(t, err, chain.ErrRejected)
}

// ---------------------------------------------------------------------------
// KeySigner
// ---------------------------------------------------------------------------

func TestNewKeySignerWatchOnly(t *testing.T) {
	_, err := NewKeySigner(&Wallet{Name: "watcher", Address: common.HexToAddress(testSignerAddr), Type: TypeWatchOnly}, NewInMemoryKeystore(), chaintest.NewProvider())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch-only")
}

func TestKeySignerSignsDynamicFeeTx(t *testing.T) {
	t.Setenv(EnvKey, "")
	p, sent := devNode(t)
	ks := NewInMemoryKeystore()
	s, err := NewKeySigner(signingWallet(t, ks), ks, p)
	require.NoError(t, err)

	value := big.NewInt(20)
	hash, err := s.SendTransaction(context.Background(), chain.TxRequest{
		To:    &target,
		Data:  []byte{0xb6, 0xb5, 0x5f, 0x25},
		Value: (*hexutil.Big)(value),
	})
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	tx := (*sent)[0]
	assert.Equal(t, hash, tx.Hash())
	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(50_000), tx.Gas())
	assert.Equal(t, big.NewInt(31337), tx.ChainId())
	assert.Equal(t, big.NewInt(1_000), tx.GasTipCap())
	assert.Equal(t, big.NewInt(2_000_000_000), tx.GasFeeCap())
	assert.Equal(t, value, tx.Value())
	assert.Equal(t, target, *tx.To())

	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), from)
}

func TestKeySignerUsesGivenGas(t *testing.T) {
	t.Setenv(EnvKey, "")
	p, sent := devNode(t)
	ks := NewInMemoryKeystore()
	s, err := NewKeySigner(signingWallet(t, ks), ks, p)
	require.NoError(t, err)

	gas := hexutil.Uint64(90_000)
	_, err = s.SendTransaction(context.Background(), chain.TxRequest{To: &target, Gas: &gas})
	require.NoError(t, err)
	assert.Equal(t, uint64(90_000), (*sent)[0].Gas())
	assert.Zero(t, p.Count("eth_estimateGas"))
}

func TestKeySignerEstimateRevert(t *testing.T) {
	t.Setenv(EnvKey, "")
	p, sent := devNode(t)
	p.Fail("eth_estimateGas", &chaintest.RPCError{Code: 3, Message: "execution reverted: Office is already booked"})
	ks := NewInMemoryKeystore()
	s, err := NewKeySigner(signingWallet(t, ks), ks, p)
	require.NoError(t, err)

	_, err = s.SendTransaction(context.Background(), chain.TxRequest{To: &target})
	require.Error(t, err)
	assert.ErrorIs(t, err, chain.ErrChain)
	assert.Empty(t, *sent)
}

func TestKeySignerMissingKey(t *testing.T) {
	t.Setenv(EnvKey, "")
	w := &Wallet{Name: "dev", Address: common.HexToAddress(testSignerAddr), Type: TypeSigning, KeyRef: "w3dapp.missing"}
	s, err := NewKeySigner(w, NewInMemoryKeystore(), chaintest.NewProvider())
	require.NoError(t, err)

	_, err = s.SendTransaction(context.Background(), chain.TxRequest{To: &target})
	assert.ErrorIs(t, err, chain.ErrUnauthorized)
}

func TestKeySignerKeyForOtherAccount(t *testing.T) {
	t.Setenv(EnvKey, "")
	ks := NewInMemoryKeystore()
	w := signingWallet(t, ks)
	w.Address = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	s, err := NewKeySigner(w, ks, chaintest.NewProvider())
	require.NoError(t, err)

	_, err = s.SendTransaction(context.Background(), chain.TxRequest{To: &target})
	require.Error(t, err)
	assert.ErrorIs(t, err, chain.ErrUnauthorized)
	assert.Contains(t, err.Error(), "stored key is for")
}
