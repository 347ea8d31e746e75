package contract

import (
	"context"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Signer submits transactions on behalf of one account.
type Signer interface {
	Account() common.Address
	SendTransaction(ctx context.Context, req chain.TxRequest) (common.Hash, error)
}

// Handle binds a contract address and method set to one signing account.
// A Handle is never mutated; a new account gets a new Handle.
type Handle struct {
	address      common.Address
	methods      *MethodSet
	client       *chain.EVMClient
	signer       Signer
	pollInterval time.Duration
}

// Bind builds a handle for the contract at address. Reads go through p and
// state-changing calls are sent by signer.
func Bind(address common.Address, methods *MethodSet, p chain.Provider, signer Signer) *Handle {
	return &Handle{
		address:      address,
		methods:      methods,
		client:       chain.NewEVMClient(p),
		signer:       signer,
		pollInterval: chain.DefaultPollInterval,
	}
}

// WithPollInterval returns a copy of h that polls for receipts every d.
func (h *Handle) WithPollInterval(d time.Duration) *Handle {
	c := *h
	if d > 0 {
		c.pollInterval = d
	}
	return &c
}

// Address returns the bound contract address.
func (h *Handle) Address() common.Address { return h.address }

// Account returns the account the handle signs for.
func (h *Handle) Account() common.Address { return h.signer.Account() }

// Methods returns the bound method set.
func (h *Handle) Methods() *MethodSet { return h.methods }

// Call runs a read-only method with eth_call and returns the decoded outputs.
func (h *Handle) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := h.methods.Pack(method, args...)
	if err != nil {
		return nil, chain.NewError(chain.KindChain, method, err)
	}
	out, err := h.client.Call(ctx, chain.TxRequest{
		From: h.Account(),
		To:   &h.address,
		Data: data,
	})
	if err != nil {
		return nil, err
	}
	results, err := h.methods.Unpack(method, out)
	if err != nil {
		return nil, chain.NewError(chain.KindChain, method, err)
	}
	return results, nil
}

// Submit sends a state-changing method and returns once the wallet has
// accepted it. value may be nil.
func (h *Handle) Submit(ctx context.Context, method string, value *big.Int, args ...any) (common.Hash, error) {
	m, err := h.methods.Method(method)
	if err != nil {
		return common.Hash{}, chain.NewError(chain.KindChain, method, err)
	}
	if m.IsConstant() {
		return common.Hash{}, chain.NewError(chain.KindChain, method, ErrViewMethod)
	}
	if value != nil && value.Sign() > 0 && !m.IsPayable() {
		return common.Hash{}, chain.NewError(chain.KindChain, method, ErrNotPayable)
	}

	data, err := h.methods.Pack(method, args...)
	if err != nil {
		return common.Hash{}, chain.NewError(chain.KindChain, method, err)
	}
	req := chain.TxRequest{
		From: h.Account(),
		To:   &h.address,
		Data: data,
	}
	if value != nil && value.Sign() > 0 {
		req.Value = (*hexutil.Big)(value)
	}

	hash, err := h.signer.SendTransaction(ctx, req)
	if err != nil {
		return common.Hash{}, chain.Classify(method, err)
	}
	return hash, nil
}

// Transact submits a method and waits until it is mined. A mined but
// reverted transaction is returned with a ChainError.
func (h *Handle) Transact(ctx context.Context, method string, value *big.Int, args ...any) (*chain.Receipt, error) {
	hash, err := h.Submit(ctx, method, value, args...)
	if err != nil {
		return nil, err
	}
	return h.client.WaitForReceipt(ctx, hash, h.pollInterval)
}
