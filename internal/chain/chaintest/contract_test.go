package chaintest

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Solidity >=0.6 output: mutability only in stateMutability.
const payableABI = `[
  {"type":"function","name":"pay","stateMutability":"payable","inputs":[],"outputs":[]},
  {"type":"function","name":"poke","stateMutability":"nonpayable","inputs":[],"outputs":[]}
]`

var (
	fakeAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	fakeFrom = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

func sendWithValue(t *testing.T, method string, wei int64) (*Contract, error) {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(payableABI))
	require.NoError(t, err)

	c := NewContract(parsed, fakeAddr)
	c.Tx(method, func(common.Address, *big.Int, []any) error { return nil })
	p := NewProvider()
	c.Install(p)

	data, err := parsed.Pack(method)
	require.NoError(t, err)
	to := fakeAddr
	_, err = p.Request(context.Background(), "eth_sendTransaction", chain.TxRequest{
		From:  fakeFrom,
		To:    &to,
		Data:  data,
		Value: (*hexutil.Big)(big.NewInt(wei)),
	})
	return c, err
}

func TestSendAcceptsValueForStateMutabilityPayable(t *testing.T) {
	c, err := sendWithValue(t, "pay", 1000)
	require.NoError(t, err)

	sent := c.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "pay", sent[0].Method)
	assert.Equal(t, int64(1000), sent[0].Value.Int64())
}

func TestSendRejectsValueForNonPayable(t *testing.T) {
	c, err := sendWithValue(t, "poke", 1)
	assert.ErrorContains(t, err, "non-payable")
	assert.Empty(t, c.Sent())
}
