package chaintest

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ViewFunc answers a read-only method. Results must match the ABI outputs.
type ViewFunc func(from common.Address, args []any) ([]any, error)

// TxFunc applies a state-changing method. Returning an error rejects the
// transaction at submission with a revert; returning ErrMinedRevert lets it
// be mined with a failed status instead.
type TxFunc func(from common.Address, value *big.Int, args []any) error

// ErrMinedRevert makes a TxFunc's transaction mine with status 0.
var ErrMinedRevert = errors.New("mined revert")

// SentTx records a transaction accepted by the Contract.
type SentTx struct {
	Hash   common.Hash
	From   common.Address
	Method string
	Args   []any
	Value  *big.Int
}

// Contract is a fake deployed contract answering eth_call,
// eth_sendTransaction and eth_getTransactionReceipt for one ABI.
type Contract struct {
	ABI     abi.ABI
	Address common.Address

	mu       sync.Mutex
	views    map[string]ViewFunc
	txs      map[string]TxFunc
	receipts map[common.Hash]*chain.Receipt
	sent     []SentTx
	held     bool
	polls    int
}

// NewContract returns a Contract at addr with no behaviour installed.
func NewContract(a abi.ABI, addr common.Address) *Contract {
	return &Contract{
		ABI:      a,
		Address:  addr,
		views:    make(map[string]ViewFunc),
		txs:      make(map[string]TxFunc),
		receipts: make(map[common.Hash]*chain.Receipt),
	}
}

// View installs the behaviour of a read-only method.
func (c *Contract) View(method string, fn ViewFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[method] = fn
}

// Tx installs the behaviour of a state-changing method.
func (c *Contract) Tx(method string, fn TxFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs[method] = fn
}

// Hold keeps every receipt pending until Release is called.
func (c *Contract) Hold() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held = true
}

// Release lets pending transactions confirm.
func (c *Contract) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held = false
}

// Sent returns the transactions accepted so far.
func (c *Contract) Sent() []SentTx {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SentTx(nil), c.sent...)
}

// ReceiptPolls returns how many receipt lookups were answered.
func (c *Contract) ReceiptPolls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.polls
}

// Install wires the contract's methods into p.
func (c *Contract) Install(p *Provider) {
	p.Handle("eth_call", c.handleCall)
	p.Handle("eth_sendTransaction", c.handleSend)
	p.Handle("eth_getTransactionReceipt", c.handleReceipt)
}

func (c *Contract) decode(params []json.RawMessage) (chain.TxRequest, *abi.Method, []any, error) {
	var req chain.TxRequest
	if len(params) == 0 {
		return req, nil, nil, &RPCError{Code: -32602, Message: "missing transaction object"}
	}
	if err := json.Unmarshal(params[0], &req); err != nil {
		return req, nil, nil, &RPCError{Code: -32602, Message: err.Error()}
	}
	if req.To == nil || *req.To != c.Address {
		return req, nil, nil, &RPCError{Code: -32000, Message: "no contract at target address"}
	}
	if len(req.Data) < 4 {
		return req, nil, nil, &RPCError{Code: 3, Message: "execution reverted: missing selector"}
	}
	method, err := c.ABI.MethodById(req.Data[:4])
	if err != nil {
		return req, nil, nil, &RPCError{Code: 3, Message: "execution reverted: unknown selector"}
	}
	args, err := method.Inputs.Unpack(req.Data[4:])
	if err != nil {
		return req, nil, nil, &RPCError{Code: -32602, Message: err.Error()}
	}
	return req, method, args, nil
}

func (c *Contract) handleCall(params []json.RawMessage) (any, error) {
	req, method, args, err := c.decode(params)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	fn, ok := c.views[method.Name]
	c.mu.Unlock()
	if !ok {
		return nil, &RPCError{Code: 3, Message: "execution reverted: " + method.Name + " not implemented"}
	}

	results, err := fn(req.From, args)
	if err != nil {
		return nil, &RPCError{Code: 3, Message: "execution reverted: " + err.Error()}
	}
	out, err := method.Outputs.Pack(results...)
	if err != nil {
		return nil, fmt.Errorf("packing %s results: %w", method.Name, err)
	}
	return hexutil.Bytes(out), nil
}

func (c *Contract) handleSend(params []json.RawMessage) (any, error) {
	req, method, args, err := c.decode(params)
	if err != nil {
		return nil, err
	}

	value := new(big.Int)
	if req.Value != nil {
		value = req.Value.ToInt()
	}
	if value.Sign() > 0 && !method.IsPayable() {
		return nil, &RPCError{Code: 3, Message: "execution reverted: non-payable method"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fn, ok := c.txs[method.Name]
	if !ok {
		return nil, &RPCError{Code: 3, Message: "execution reverted: " + method.Name + " not implemented"}
	}

	status := hexutil.Uint64(1)
	if err := fn(req.From, value, args); err != nil {
		if !errors.Is(err, ErrMinedRevert) {
			return nil, &RPCError{Code: 3, Message: "execution reverted: " + err.Error()}
		}
		status = 0
	}

	nonce := len(c.sent)
	hash := crypto.Keccak256Hash(c.Address.Bytes(), req.From.Bytes(), big.NewInt(int64(nonce)).Bytes())
	to := c.Address
	c.sent = append(c.sent, SentTx{Hash: hash, From: req.From, Method: method.Name, Args: args, Value: value})
	c.receipts[hash] = &chain.Receipt{
		TxHash:      hash,
		Status:      status,
		BlockNumber: hexutil.Uint64(nonce + 1),
		GasUsed:     21000,
		From:        req.From,
		To:          &to,
	}
	return hash, nil
}

func (c *Contract) handleReceipt(params []json.RawMessage) (any, error) {
	if len(params) == 0 {
		return nil, &RPCError{Code: -32602, Message: "missing hash"}
	}
	var hash common.Hash
	if err := json.Unmarshal(params[0], &hash); err != nil {
		return nil, &RPCError{Code: -32602, Message: err.Error()}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.polls++
	if c.held {
		return nil, nil
	}
	r, ok := c.receipts[hash]
	if !ok {
		return nil, nil
	}
	return r, nil
}
