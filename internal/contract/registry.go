package contract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
)

// ProjectFile is the per-project contract list, kept next to the artifacts.
const ProjectFile = "w3dapp.toml"

// ErrContractNotFound is returned when a contract is not found.
var ErrContractNotFound = errors.New("contract not found")

// Entry is a contract known to the project.
type Entry struct {
	Name     string `toml:"name"`
	Network  string `toml:"network"`
	Kind     string `toml:"kind,omitempty"`     // built-in method set ID, e.g. "office"
	Address  string `toml:"address,omitempty"`  // empty until deployed
	Artifact string `toml:"artifact,omitempty"` // Hardhat/Foundry artifact, relative to the project file
}

// HasAddress reports whether the entry points at a deployed contract.
func (e *Entry) HasAddress() bool {
	return common.IsHexAddress(e.Address) && common.HexToAddress(e.Address) != (common.Address{})
}

type projectFile struct {
	Contracts []Entry `toml:"contract"`
}

// Registry stores and retrieves contract entries in a TOML project file.
type Registry struct {
	path      string
	contracts map[string]*Entry // key: "name@network"
}

// NewRegistry creates a Registry backed by the TOML file at path.
func NewRegistry(path string) *Registry {
	return &Registry{
		path:      path,
		contracts: make(map[string]*Entry),
	}
}

// Path returns the project file location.
func (r *Registry) Path() string { return r.path }

// Load reads stored contracts from disk. A missing file is an empty project.
func (r *Registry) Load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var pf projectFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("parsing %s: %w", r.path, err)
	}
	for i := range pf.Contracts {
		e := &pf.Contracts[i]
		if e.Name == "" {
			return fmt.Errorf("%s: contract #%d has no name", r.path, i+1)
		}
		r.contracts[key(e.Name, e.Network)] = e
	}
	return nil
}

// Save writes all contracts to disk, sorted by name then network.
func (r *Registry) Save() error {
	pf := projectFile{Contracts: make([]Entry, 0, len(r.contracts))}
	for _, e := range r.All() {
		pf.Contracts = append(pf.Contracts, *e)
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(pf); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", r.path, err)
	}
	return f.Close()
}

// Add adds or updates a contract entry.
func (r *Registry) Add(e *Entry) {
	r.contracts[key(e.Name, e.Network)] = e
}

// Get returns a contract by name and network.
func (r *Registry) Get(name, network string) (*Entry, error) {
	e, ok := r.contracts[key(name, network)]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrContractNotFound, name, network)
	}
	return e, nil
}

// SetAddress records a deployment, creating the entry if needed.
func (r *Registry) SetAddress(name, network string, addr common.Address) *Entry {
	e, ok := r.contracts[key(name, network)]
	if !ok {
		e = &Entry{Name: name, Network: network}
		r.Add(e)
	}
	e.Address = addr.Hex()
	return e
}

// All returns all registered contracts sorted by name then network.
func (r *Registry) All() []*Entry {
	out := make([]*Entry, 0, len(r.contracts))
	for _, e := range r.contracts {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Network < out[j].Network
	})
	return out
}

// Remove deletes a contract entry.
func (r *Registry) Remove(name, network string) error {
	k := key(name, network)
	if _, ok := r.contracts[k]; !ok {
		return fmt.Errorf("%w: %s on %s", ErrContractNotFound, name, network)
	}
	delete(r.contracts, k)
	return nil
}

// ArtifactPath resolves an entry's artifact relative to the project file.
func (r *Registry) ArtifactPath(e *Entry) string {
	if e.Artifact == "" || filepath.IsAbs(e.Artifact) {
		return e.Artifact
	}
	return filepath.Join(filepath.Dir(r.path), e.Artifact)
}

// Methods resolves the method set of an entry: its artifact when one is
// set, otherwise the built-in named by Kind (or by Name).
func (r *Registry) Methods(e *Entry) (*MethodSet, error) {
	if e.Artifact != "" {
		return LoadMethods(r.ArtifactPath(e))
	}
	kind := e.Kind
	if kind == "" {
		kind = e.Name
	}
	return BuiltinMethods(kind)
}

func key(name, network string) string {
	return strings.ToLower(name) + "@" + strings.ToLower(network)
}
