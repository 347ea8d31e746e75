package atm_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3dapp/internal/atm"
	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/chain/chaintest"
	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/Mohsinsiddi/w3dapp/internal/session"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	atmAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	owner   = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

// fakeATM keeps a balance the way the deployed contract does.
type fakeATM struct {
	mu      sync.Mutex
	balance *big.Int
}

func (f *fakeATM) get() *big.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return new(big.Int).Set(f.balance)
}

func setup(t *testing.T, start int64) (*atm.Client, *fakeATM, *chaintest.Contract) {
	t.Helper()
	set, err := contract.BuiltinMethods("atm")
	require.NoError(t, err)

	p := chaintest.NewProvider()
	p.Result("eth_requestAccounts", []common.Address{owner})

	state := &fakeATM{balance: big.NewInt(start)}
	c := chaintest.NewContract(set.ABI(), atmAddr)
	c.View(atm.MethodGetBalance, func(common.Address, []any) ([]any, error) {
		return []any{state.get()}, nil
	})
	c.Tx(atm.MethodDeposit, func(_ common.Address, _ *big.Int, args []any) error {
		state.mu.Lock()
		defer state.mu.Unlock()
		state.balance.Add(state.balance, args[0].(*big.Int))
		return nil
	})
	c.Tx(atm.MethodWithdraw, func(_ common.Address, _ *big.Int, args []any) error {
		state.mu.Lock()
		defer state.mu.Unlock()
		amt := args[0].(*big.Int)
		if state.balance.Cmp(amt) < 0 {
			return errors.New("Insufficient balance")
		}
		state.balance.Sub(state.balance, amt)
		return nil
	})
	c.Install(p)

	s := session.New(session.Config{Address: atmAddr, Methods: set, PollInterval: time.Millisecond})
	s.SetProvider(p)
	_, err = s.Connect(context.Background())
	require.NoError(t, err)
	return atm.New(s), state, c
}

func TestDepositAppendsHistoryAndRefreshes(t *testing.T) {
	client, _, _ := setup(t, 0)

	require.NoError(t, client.Deposit(context.Background(), big.NewInt(5)))

	history := client.History()
	require.Len(t, history, 1)
	assert.Equal(t, atm.TypeDeposit, history[0].Type)
	assert.Equal(t, big.NewInt(5), history[0].Amount)

	bal, ok := client.Balance()
	require.True(t, ok)
	assert.Equal(t, big.NewInt(5), bal)
	assert.Contains(t, client.Message(), "Deposit of 5")
}

func TestWithdraw(t *testing.T) {
	client, state, _ := setup(t, 10)

	require.NoError(t, client.Withdraw(context.Background(), big.NewInt(3)))
	assert.Equal(t, big.NewInt(7), state.get())

	history := client.History()
	require.Len(t, history, 1)
	assert.Equal(t, atm.TypeWithdraw, history[0].Type)
	bal, _ := client.Balance()
	assert.Equal(t, big.NewInt(7), bal)
}

func TestWithdrawRevertLeavesHistory(t *testing.T) {
	client, _, _ := setup(t, 1)
	_, err := client.RefreshBalance(context.Background())
	require.NoError(t, err)

	err = client.Withdraw(context.Background(), big.NewInt(100))
	require.Error(t, err)
	assert.Equal(t, chain.KindChain, chain.KindOf(err))
	assert.Empty(t, client.History())
	assert.Contains(t, client.Message(), "Unable to withdraw")
	assert.Contains(t, client.Message(), "Insufficient balance")

	bal, _ := client.Balance()
	assert.Equal(t, big.NewInt(1), bal, "mirror unchanged")
}

func TestMinedRevertIsNotRecorded(t *testing.T) {
	client, _, c := setup(t, 0)
	c.Tx(atm.MethodDeposit, func(common.Address, *big.Int, []any) error { return chaintest.ErrMinedRevert })

	err := client.Deposit(context.Background(), big.NewInt(5))
	assert.ErrorIs(t, err, chain.ErrChain)
	assert.Empty(t, client.History())
}

func TestHistoryIsCopy(t *testing.T) {
	client, _, _ := setup(t, 0)
	require.NoError(t, client.Deposit(context.Background(), big.NewInt(2)))

	h := client.History()
	h[0].Type = "tampered"
	assert.Equal(t, atm.TypeDeposit, client.History()[0].Type)
}

func TestRefreshBalanceNotConnected(t *testing.T) {
	set, err := contract.BuiltinMethods("atm")
	require.NoError(t, err)
	s := session.New(session.Config{Address: atmAddr, Methods: set})
	client := atm.New(s)

	_, err = client.RefreshBalance(context.Background())
	assert.ErrorIs(t, err, chain.ErrUnauthorized)
	_, ok := client.Balance()
	assert.False(t, ok)
}
