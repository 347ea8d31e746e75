package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DefaultPollInterval is how often WaitForReceipt asks for a receipt.
const DefaultPollInterval = 2 * time.Second

// Receipt holds the fields of a mined transaction's receipt this client uses.
type Receipt struct {
	TxHash          common.Hash     `json:"transactionHash"`
	Status          hexutil.Uint64  `json:"status"` // 1 = success, 0 = reverted
	BlockNumber     hexutil.Uint64  `json:"blockNumber"`
	GasUsed         hexutil.Uint64  `json:"gasUsed"`
	From            common.Address  `json:"from"`
	To              *common.Address `json:"to"`
	ContractAddress *common.Address `json:"contractAddress"` // set when a contract was created
}

// Succeeded reports whether the transaction executed without reverting.
func (r *Receipt) Succeeded() bool { return r.Status == 1 }

// GetTransactionReceipt fetches the receipt for hash.
// Returns nil, nil if the transaction is still pending.
func (c *EVMClient) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	raw, err := c.p.Request(ctx, "eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, Classify("eth_getTransactionReceipt", err)
	}
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return nil, nil
	}

	var r Receipt
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, NewError(KindNetwork, "eth_getTransactionReceipt", fmt.Errorf("parsing receipt: %w", err))
	}
	if r.TxHash == (common.Hash{}) {
		r.TxHash = hash
	}
	return &r, nil
}

// WaitForReceipt polls every interval until the transaction is mined or ctx
// is done. A reverted transaction returns its receipt together with a
// KindChain error.
func (c *EVMClient) WaitForReceipt(ctx context.Context, hash common.Hash, interval time.Duration) (*Receipt, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := c.GetTransactionReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			if !receipt.Succeeded() {
				return receipt, NewError(KindChain, "wait",
					fmt.Errorf("transaction reverted (hash: %s)", hash.Hex()))
			}
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, NewError(KindNetwork, "wait",
				fmt.Errorf("transaction %s not confirmed: %w", hash.Hex(), ctx.Err()))
		case <-ticker.C:
		}
	}
}
