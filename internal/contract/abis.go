package contract

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// BuiltinKind describes a built-in contract type whose ABI is embedded in the
// binary. New built-ins register themselves via init() in their own file:
// create internal/contract/<name>_abi.go and call RegisterBuiltin().
type BuiltinKind struct {
	ID          string // machine key, e.g. "atm", "office"
	Name        string // human label, e.g. "SharedOfficeBookingSystem"
	Description string // one-line summary shown in `contract builtins`
	ABI         string // ABI JSON array

	once    sync.Once
	methods *MethodSet
	err     error
}

var builtinRegistry = map[string]*BuiltinKind{}

// RegisterBuiltin adds a built-in ABI to the global registry.
// Call this from init() in the file that defines the ABI.
func RegisterBuiltin(b *BuiltinKind) {
	builtinRegistry[b.ID] = b
}

// GetBuiltin returns a built-in by ID. ok is false if not found.
func GetBuiltin(id string) (*BuiltinKind, bool) {
	b, ok := builtinRegistry[strings.ToLower(id)]
	return b, ok
}

// Methods parses the built-in ABI once and returns its method set.
func (b *BuiltinKind) Methods() (*MethodSet, error) {
	b.once.Do(func() {
		b.methods, b.err = ParseMethodSet(b.Name, []byte(b.ABI))
	})
	return b.methods, b.err
}

// BuiltinMethods returns the method set of a built-in by ID.
func BuiltinMethods(id string) (*MethodSet, error) {
	b, ok := GetBuiltin(id)
	if !ok {
		return nil, fmt.Errorf("%w: no built-in %q", ErrContractNotFound, id)
	}
	return b.Methods()
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []*BuiltinKind {
	out := make([]*BuiltinKind, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
