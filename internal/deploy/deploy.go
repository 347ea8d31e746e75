// Package deploy pushes a compiled contract to a network.
package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/ethereum/go-ethereum/common"
)

// Result describes a confirmed deployment.
type Result struct {
	ContractName string
	Address      common.Address
	TxHash       common.Hash
	Deployer     common.Address
	GasUsed      uint64
	BlockNumber  uint64
}

// Deployer sends contract creation transactions.
type Deployer struct {
	client       *chain.EVMClient
	signer       contract.Signer
	pollInterval time.Duration
}

// New returns a Deployer that signs with signer and reads receipts through p.
func New(p chain.Provider, signer contract.Signer) *Deployer {
	return &Deployer{
		client:       chain.NewEVMClient(p),
		signer:       signer,
		pollInterval: chain.DefaultPollInterval,
	}
}

// WithPollInterval sets how often the receipt is polled.
func (d *Deployer) WithPollInterval(interval time.Duration) *Deployer {
	if interval > 0 {
		d.pollInterval = interval
	}
	return d
}

// Deploy sends the artifact's creation code with the given constructor
// arguments and waits until the contract is mined.
func (d *Deployer) Deploy(ctx context.Context, a *contract.Artifact, args ...any) (*Result, error) {
	data, err := a.Methods.Deploy(a.Bytecode, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.ContractName, err)
	}

	hash, err := d.signer.SendTransaction(ctx, chain.TxRequest{
		From: d.signer.Account(),
		Data: data,
	})
	if err != nil {
		return nil, chain.Classify("deploy", err)
	}

	receipt, err := d.client.WaitForReceipt(ctx, hash, d.pollInterval)
	if err != nil {
		return nil, err
	}
	if receipt.ContractAddress == nil || *receipt.ContractAddress == (common.Address{}) {
		return nil, chain.NewError(chain.KindChain, "deploy",
			fmt.Errorf("receipt has no contract address (tx %s)", hash.Hex()))
	}

	return &Result{
		ContractName: a.ContractName,
		Address:      *receipt.ContractAddress,
		TxHash:       hash,
		Deployer:     d.signer.Account(),
		GasUsed:      uint64(receipt.GasUsed),
		BlockNumber:  uint64(receipt.BlockNumber),
	}, nil
}

// Summary is the line printed after a successful deployment.
func (r *Result) Summary() string {
	return r.ContractName + " deployed to: " + r.Address.Hex()
}
