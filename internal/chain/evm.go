package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// EVMClient issues typed Ethereum JSON-RPC calls through a Provider.
type EVMClient struct {
	p Provider
}

// TxRequest is the transaction object accepted by eth_sendTransaction,
// eth_call and eth_estimateGas. A nil To means contract creation.
type TxRequest struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to,omitempty"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Gas   *hexutil.Uint64 `json:"gas,omitempty"`
}

// NewEVMClient wraps p.
func NewEVMClient(p Provider) *EVMClient {
	return &EVMClient{p: p}
}

// Provider returns the wrapped provider.
func (c *EVMClient) Provider() Provider { return c.p }

// Accounts returns the accounts the wallet has already authorized, without
// prompting (eth_accounts).
func (c *EVMClient) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := c.call(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// RequestAccounts asks the wallet to authorize this client (eth_requestAccounts).
func (c *EVMClient) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := c.call(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// ChainID returns the chain's ID.
func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	var id hexutil.Big
	if err := c.call(ctx, &id, "eth_chainId"); err != nil {
		return nil, err
	}
	return id.ToInt(), nil
}

// Call executes a read-only call against the latest block.
func (c *EVMClient) Call(ctx context.Context, req TxRequest) ([]byte, error) {
	var out hexutil.Bytes
	if err := c.call(ctx, &out, "eth_call", req, "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

// SendTransaction hands an unsigned transaction to the wallet, which signs and
// broadcasts it. Returns once the wallet has accepted it as pending.
func (c *EVMClient) SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error) {
	var hash common.Hash
	if err := c.call(ctx, &hash, "eth_sendTransaction", req); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// SendRawTransaction broadcasts an already signed transaction.
func (c *EVMClient) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	var hash common.Hash
	if err := c.call(ctx, &hash, "eth_sendRawTransaction", hexutil.Bytes(raw)); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// GetPendingNonce returns the transaction count including queued transactions.
func (c *EVMClient) GetPendingNonce(ctx context.Context, addr common.Address) (uint64, error) {
	var n hexutil.Uint64
	if err := c.call(ctx, &n, "eth_getTransactionCount", addr, "pending"); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// EstimateGas estimates gas for req.
func (c *EVMClient) EstimateGas(ctx context.Context, req TxRequest) (uint64, error) {
	var n hexutil.Uint64
	if err := c.call(ctx, &n, "eth_estimateGas", req); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// GasPrice returns the current gas price.
func (c *EVMClient) GasPrice(ctx context.Context) (*big.Int, error) {
	var gp hexutil.Big
	if err := c.call(ctx, &gp, "eth_gasPrice"); err != nil {
		return nil, err
	}
	return gp.ToInt(), nil
}

// MaxPriorityFee returns the suggested EIP-1559 tip.
func (c *EVMClient) MaxPriorityFee(ctx context.Context) (*big.Int, error) {
	var tip hexutil.Big
	if err := c.call(ctx, &tip, "eth_maxPriorityFeePerGas"); err != nil {
		return nil, err
	}
	return tip.ToInt(), nil
}

var jsonNull = []byte("null")

func (c *EVMClient) call(ctx context.Context, out any, method string, params ...any) error {
	raw, err := c.p.Request(ctx, method, params...)
	if err != nil {
		return Classify(method, err)
	}
	if out == nil {
		return nil
	}
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return NewError(KindNetwork, method, fmt.Errorf("%s returned no result", method))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return NewError(KindNetwork, method, fmt.Errorf("parsing %s result: %w", method, err))
	}
	return nil
}
