package chain

import (
	"errors"
	"math/big"
	"strings"
)

// ErrNetworkNotFound is returned when a network is not in the registry.
var ErrNetworkNotFound = errors.New("network not found")

// FrameURL is the local endpoint the Frame desktop wallet exposes for dapps.
const FrameURL = "http://127.0.0.1:1248"

// Network holds the metadata for a network the dapps can run against.
type Network struct {
	Name           string `json:"name"`
	DisplayName    string `json:"display_name"`
	ChainID        int64  `json:"chain_id"`
	NativeCurrency string `json:"native_currency"`
	RPCURL         string `json:"rpc_url"` // node endpoint; dev nodes also act as the wallet
	Explorer       string `json:"explorer,omitempty"`
}

// Registry is the network registry.
type Registry struct {
	networks []Network
	byName   map[string]*Network
	byID     map[int64]*Network
}

// NewRegistry returns the registry of known networks.
func NewRegistry() *Registry {
	networks := allNetworks()
	r := &Registry{
		networks: networks,
		byName:   make(map[string]*Network, len(networks)),
		byID:     make(map[int64]*Network, len(networks)),
	}
	for i := range r.networks {
		n := &r.networks[i]
		r.byName[n.Name] = n
		r.byID[n.ChainID] = n
	}
	return r
}

// All returns every network in the registry.
func (r *Registry) All() []Network {
	return r.networks
}

// GetByName finds a network by its slug (e.g. "localhost", "sepolia").
func (r *Registry) GetByName(name string) (*Network, error) {
	n, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

// GetByChainID finds a network by its numeric chain ID.
func (r *Registry) GetByChainID(id *big.Int) (*Network, error) {
	if id == nil || !id.IsInt64() {
		return nil, ErrNetworkNotFound
	}
	n, ok := r.byID[id.Int64()]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

// Describe returns a display label for a chain ID, falling back to the number.
func (r *Registry) Describe(id *big.Int) string {
	if n, err := r.GetByChainID(id); err == nil {
		return n.DisplayName
	}
	if id == nil {
		return "unknown chain"
	}
	return "chain " + id.String()
}

// WalletCandidates returns the endpoints to probe for a wallet, in order:
// the explicit override, the Frame bridge, then the network's own node.
func (r *Registry) WalletCandidates(override, network string) []string {
	var out []string
	if override != "" {
		out = append(out, override)
	}
	out = append(out, FrameURL)
	if n, err := r.GetByName(network); err == nil && n.RPCURL != "" {
		out = append(out, n.RPCURL)
	}
	return out
}

// --- network data ---

func allNetworks() []Network {
	return []Network{
		{
			Name: "localhost", DisplayName: "Hardhat (localhost)", ChainID: 31337,
			NativeCurrency: "ETH", RPCURL: "http://127.0.0.1:8545",
		},
		{
			Name: "ganache", DisplayName: "Ganache", ChainID: 1337,
			NativeCurrency: "ETH", RPCURL: "http://127.0.0.1:7545",
		},
		{
			Name: "sepolia", DisplayName: "Sepolia", ChainID: 11155111,
			NativeCurrency: "ETH", RPCURL: "https://ethereum-sepolia-rpc.publicnode.com",
			Explorer: "https://sepolia.etherscan.io",
		},
		{
			Name: "holesky", DisplayName: "Holesky", ChainID: 17000,
			NativeCurrency: "ETH", RPCURL: "https://ethereum-holesky-rpc.publicnode.com",
			Explorer: "https://holesky.etherscan.io",
		},
		{
			Name: "ethereum", DisplayName: "Ethereum", ChainID: 1,
			NativeCurrency: "ETH", RPCURL: "https://ethereum-rpc.publicnode.com",
			Explorer: "https://etherscan.io",
		},
	}
}
