package contract_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/chain/chaintest"
	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	officeAddr = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	alice      = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

// walletSigner sends through the provider's eth_sendTransaction.
type walletSigner struct {
	account common.Address
	client  *chain.EVMClient
}

func (s walletSigner) Account() common.Address { return s.account }

func (s walletSigner) SendTransaction(ctx context.Context, req chain.TxRequest) (common.Hash, error) {
	return s.client.SendTransaction(ctx, req)
}

func officeFixture(t *testing.T) (*chaintest.Contract, *contract.Handle) {
	t.Helper()
	set := mustBuiltin(t, "office")
	p := chaintest.NewProvider()
	c := chaintest.NewContract(set.ABI(), officeAddr)
	c.Install(p)

	signer := walletSigner{account: alice, client: chain.NewEVMClient(p)}
	h := contract.Bind(officeAddr, set, p, signer).WithPollInterval(time.Millisecond)
	return c, h
}

func TestHandleCall(t *testing.T) {
	c, h := officeFixture(t)
	c.View("earnings", func(from common.Address, args []any) ([]any, error) {
		assert.Equal(t, alice, from)
		assert.Equal(t, alice, args[0])
		return []any{big.NewInt(30)}, nil
	})

	out, err := h.Call(context.Background(), "earnings", alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(30), out[0])
}

func TestHandleCallRevert(t *testing.T) {
	c, h := officeFixture(t)
	c.View("checkOfficeAvailability", func(common.Address, []any) ([]any, error) {
		return nil, errors.New("Office does not exist")
	})

	_, err := h.Call(context.Background(), "checkOfficeAvailability", big.NewInt(9))
	require.Error(t, err)
	assert.ErrorIs(t, err, chain.ErrChain)
	assert.Contains(t, err.Error(), "Office does not exist")
}

func TestHandleTransactSendsFromAccountWithValue(t *testing.T) {
	c, h := officeFixture(t)
	c.Tx("bookOffice", func(common.Address, *big.Int, []any) error { return nil })

	value := big.NewInt(20)
	receipt, err := h.Transact(context.Background(), "bookOffice", value, big.NewInt(1), big.NewInt(2))
	require.NoError(t, err)
	assert.True(t, receipt.Succeeded())

	sent := c.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, alice, sent[0].From)
	assert.Equal(t, "bookOffice", sent[0].Method)
	assert.Equal(t, value, sent[0].Value)
	assert.Equal(t, sent[0].Hash, receipt.TxHash)
}

func TestHandleRejectsValueOnNonPayable(t *testing.T) {
	c, h := officeFixture(t)
	c.Tx("returnOffice", func(common.Address, *big.Int, []any) error { return nil })

	_, err := h.Submit(context.Background(), "returnOffice", big.NewInt(1), big.NewInt(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrNotPayable)
	assert.Equal(t, chain.KindChain, chain.KindOf(err))
	assert.Empty(t, c.Sent(), "nothing must reach the wallet")
}

func TestHandleRejectsViewAsTransaction(t *testing.T) {
	_, h := officeFixture(t)
	_, err := h.Submit(context.Background(), "earnings", nil, alice)
	assert.ErrorIs(t, err, contract.ErrViewMethod)
}

func TestHandleUnknownMethod(t *testing.T) {
	_, h := officeFixture(t)
	_, err := h.Transact(context.Background(), "destroy", nil)
	assert.ErrorIs(t, err, contract.ErrUnknownMethod)
	assert.Equal(t, chain.KindChain, chain.KindOf(err))
}

func TestHandleSubmitRejectedByUser(t *testing.T) {
	set := mustBuiltin(t, "office")
	p := chaintest.NewProvider()
	p.Fail("eth_sendTransaction", chaintest.ErrUserRejected)

	h := contract.Bind(officeAddr, set, p, walletSigner{account: alice, client: chain.NewEVMClient(p)})
	_, err := h.Transact(context.Background(), "withdrawEarnings", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, chain.ErrRejected)
	assert.Zero(t, p.Count("eth_getTransactionReceipt"))
}

func TestHandleTransactMinedRevert(t *testing.T) {
	c, h := officeFixture(t)
	c.Tx("withdrawEarnings", func(common.Address, *big.Int, []any) error { return chaintest.ErrMinedRevert })

	receipt, err := h.Transact(context.Background(), "withdrawEarnings", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, chain.ErrChain)
	require.NotNil(t, receipt)
	assert.False(t, receipt.Succeeded())
}

func TestHandleTransactWaitsForConfirmation(t *testing.T) {
	c, h := officeFixture(t)
	c.Tx("addOffice", func(common.Address, *big.Int, []any) error { return nil })
	c.Hold()

	done := make(chan error, 1)
	go func() {
		_, err := h.Transact(context.Background(), "addOffice", nil, "Loft", big.NewInt(10))
		done <- err
	}()

	require.Eventually(t, func() bool { return c.ReceiptPolls() >= 2 }, time.Second, time.Millisecond)
	select {
	case <-done:
		t.Fatal("Transact returned before the receipt was available")
	default:
	}

	c.Release()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Transact did not return after release")
	}
}

func TestHandleIsImmutable(t *testing.T) {
	_, h := officeFixture(t)
	h2 := h.WithPollInterval(time.Hour)
	assert.NotSame(t, h, h2)
	assert.Equal(t, h.Address(), h2.Address())
	assert.Equal(t, alice, h2.Account())
}
