// Package sync imports Hardhat Ignition deployments into the project file.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/ethereum/go-ethereum/common"
)

// AddressesFile is the file Ignition writes into each deployment directory.
const AddressesFile = "deployed_addresses.json"

// ErrNoDeployments is returned when a directory has no deployed addresses.
var ErrNoDeployments = errors.New("no ignition deployments found")

// Deployment is one contract recorded in an Ignition deployment directory.
type Deployment struct {
	FutureID     string // e.g. "OfficeModule#SharedOfficeBookingSystem"
	ContractName string // part after '#'
	Address      common.Address
	Artifact     string // artifact JSON path, empty when Ignition did not keep one
}

// Scan reads an Ignition deployment directory such as
// ignition/deployments/chain-31337. chainID is parsed from the directory
// name and is nil when the name does not follow Ignition's scheme.
func Scan(dir string) (chainID *big.Int, deployments []Deployment, err error) {
	data, err := os.ReadFile(filepath.Join(dir, AddressesFile))
	if os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("%w in %s", ErrNoDeployments, dir)
	}
	if err != nil {
		return nil, nil, err
	}

	var addrs map[string]string
	if err := json.Unmarshal(data, &addrs); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", AddressesFile, err)
	}
	if len(addrs) == 0 {
		return nil, nil, fmt.Errorf("%w in %s", ErrNoDeployments, dir)
	}

	for id, addr := range addrs {
		if !common.IsHexAddress(addr) {
			return nil, nil, fmt.Errorf("%s: invalid address %q for %s", AddressesFile, addr, id)
		}
		d := Deployment{
			FutureID:     id,
			ContractName: id,
			Address:      common.HexToAddress(addr),
		}
		if i := strings.LastIndex(id, "#"); i >= 0 {
			d.ContractName = id[i+1:]
		}
		artifact := filepath.Join(dir, "artifacts", id+".json")
		if _, err := os.Stat(artifact); err == nil {
			d.Artifact = artifact
		}
		deployments = append(deployments, d)
	}
	sort.Slice(deployments, func(i, j int) bool { return deployments[i].FutureID < deployments[j].FutureID })

	if n, ok := strings.CutPrefix(filepath.Base(filepath.Clean(dir)), "chain-"); ok {
		if id, ok := new(big.Int).SetString(n, 10); ok {
			chainID = id
		}
	}
	return chainID, deployments, nil
}

// Syncer records Ignition deployments in a contract registry.
type Syncer struct {
	reg      *contract.Registry
	networks *chain.Registry
	rename   map[string]string
}

// New returns a Syncer writing into reg. rename maps a future ID or a
// contract name to the entry name to record it under, e.g.
// "Assessment" → "atm".
func New(reg *contract.Registry, rename map[string]string) *Syncer {
	return &Syncer{reg: reg, networks: chain.NewRegistry(), rename: rename}
}

// entryName picks the registry name for d.
func (s *Syncer) entryName(d Deployment) string {
	if n, ok := s.rename[d.FutureID]; ok {
		return n
	}
	if n, ok := s.rename[d.ContractName]; ok {
		return n
	}
	return strings.ToLower(d.ContractName)
}

// Run imports every deployment in dir and saves the registry. An empty
// network is derived from the directory's chain ID.
func (s *Syncer) Run(dir, network string) ([]*contract.Entry, error) {
	chainID, deployments, err := Scan(dir)
	if err != nil {
		return nil, err
	}
	if network == "" {
		n, err := s.networks.GetByChainID(chainID)
		if err != nil {
			return nil, fmt.Errorf("cannot tell the network of %s: pass --network", dir)
		}
		network = n.Name
	}

	base, err := filepath.Abs(filepath.Dir(s.reg.Path()))
	if err != nil {
		return nil, err
	}

	entries := make([]*contract.Entry, 0, len(deployments))
	for _, d := range deployments {
		name := s.entryName(d)
		e := s.reg.SetAddress(name, network, d.Address)
		if d.Artifact != "" {
			e.Artifact = d.Artifact
			if abs, err := filepath.Abs(d.Artifact); err == nil {
				if rel, err := filepath.Rel(base, abs); err == nil {
					e.Artifact = rel
				}
			}
		}
		if _, ok := contract.GetBuiltin(name); ok && e.Kind == "" {
			e.Kind = name
		}
		entries = append(entries, e)
	}

	if err := s.reg.Save(); err != nil {
		return nil, fmt.Errorf("saving contracts: %w", err)
	}
	return entries, nil
}

// Watch runs Run, then re-runs it whenever the addresses file changes,
// until ctx is cancelled. onSync is called after every import.
func (s *Syncer) Watch(ctx context.Context, dir, network string, interval time.Duration, onSync func([]*contract.Entry, error)) error {
	entries, err := s.Run(dir, network)
	if err != nil {
		return err
	}
	if onSync != nil {
		onSync(entries, nil)
	}

	last := modTime(dir)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		mt := modTime(dir)
		if mt.Equal(last) {
			continue
		}
		last = mt
		entries, err := s.Run(dir, network)
		if onSync != nil {
			onSync(entries, err)
		}
	}
}

func modTime(dir string) time.Time {
	fi, err := os.Stat(filepath.Join(dir, AddressesFile))
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}
