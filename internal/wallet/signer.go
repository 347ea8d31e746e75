package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ProviderSigner lets the wallet behind the provider sign: transactions go
// out with eth_sendTransaction and the wallet may prompt the user.
type ProviderSigner struct {
	account common.Address
	client  *chain.EVMClient
}

// NewProviderSigner returns a signer for an account the provider controls.
func NewProviderSigner(p chain.Provider, account common.Address) *ProviderSigner {
	return &ProviderSigner{account: account, client: chain.NewEVMClient(p)}
}

// Account returns the signing account.
func (s *ProviderSigner) Account() common.Address { return s.account }

// SendTransaction asks the wallet to sign and broadcast req.
func (s *ProviderSigner) SendTransaction(ctx context.Context, req chain.TxRequest) (common.Hash, error) {
	req.From = s.account
	return s.client.SendTransaction(ctx, req)
}

// KeySigner signs locally with a key from the keystore and broadcasts the
// raw transaction through the provider.
type KeySigner struct {
	wallet *Wallet
	ks     KeystoreBackend
	client *chain.EVMClient
}

// NewKeySigner creates a signer for a signing wallet.
func NewKeySigner(w *Wallet, ks KeystoreBackend, p chain.Provider) (*KeySigner, error) {
	if w.Type != TypeSigning {
		return nil, fmt.Errorf("wallet %q is watch-only and cannot sign", w.Name)
	}
	return &KeySigner{wallet: w, ks: ks, client: chain.NewEVMClient(p)}, nil
}

// Account returns the wallet address.
func (s *KeySigner) Account() common.Address { return s.wallet.Account() }

// SendTransaction fills nonce, gas and fees, signs an EIP-1559 transaction
// and sends it with eth_sendRawTransaction.
func (s *KeySigner) SendTransaction(ctx context.Context, req chain.TxRequest) (common.Hash, error) {
	hexKey, err := s.ks.Retrieve(s.wallet.KeyRef)
	if err != nil {
		return common.Hash{}, chain.NewError(chain.KindUnauthorized, "sign", fmt.Errorf("retrieving key: %w", err))
	}
	privKey, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return common.Hash{}, chain.NewError(chain.KindUnauthorized, "sign", fmt.Errorf("parsing private key: %w", err))
	}
	from := crypto.PubkeyToAddress(privKey.PublicKey)
	if from != s.Account() {
		return common.Hash{}, chain.NewError(chain.KindUnauthorized, "sign",
			fmt.Errorf("stored key is for %s, not %s", from.Hex(), s.wallet.Address.Hex()))
	}
	req.From = from

	chainID, err := s.client.ChainID(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	nonce, err := s.client.GetPendingNonce(ctx, from)
	if err != nil {
		return common.Hash{}, err
	}
	gas := uint64(0)
	if req.Gas != nil {
		gas = uint64(*req.Gas)
	} else if gas, err = s.client.EstimateGas(ctx, req); err != nil {
		return common.Hash{}, err
	}
	gasPrice, err := s.client.GasPrice(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	tip, err := s.client.MaxPriorityFee(ctx)
	if err != nil {
		tip = gasPrice
	}
	feeCap := new(big.Int).Mul(gasPrice, big.NewInt(2))
	if tip.Cmp(feeCap) > 0 {
		tip = feeCap
	}

	value := new(big.Int)
	if req.Value != nil {
		value = req.Value.ToInt()
	}
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        req.To,
		Value:     value,
		Data:      req.Data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), privKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("signing transaction: %w", err)
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return common.Hash{}, fmt.Errorf("marshaling signed tx: %w", err)
	}
	return s.client.SendRawTransaction(ctx, raw)
}
