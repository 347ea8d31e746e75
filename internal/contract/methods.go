package contract

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	// ErrUnknownMethod is returned when a method is not in the method set.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrNotPayable is returned when a value is attached to a non-payable method.
	ErrNotPayable = errors.New("method is not payable")
	// ErrViewMethod is returned when a read-only method is sent as a transaction.
	ErrViewMethod = errors.New("method is read-only")
)

// MethodSet is the fixed set of callable methods of one contract kind.
type MethodSet struct {
	name string
	abi  abi.ABI
}

// NewMethodSet wraps a parsed ABI.
func NewMethodSet(name string, parsed abi.ABI) *MethodSet {
	return &MethodSet{name: name, abi: parsed}
}

// ParseMethodSet parses an ABI JSON array into a method set.
func ParseMethodSet(name string, abiJSON []byte) (*MethodSet, error) {
	set, err := parseABI(name, abiJSON)
	if err != nil {
		return nil, err
	}
	if len(set.abi.Methods) == 0 {
		return nil, fmt.Errorf("%s ABI has no functions", name)
	}
	return set, nil
}

// parseABI accepts ABIs without functions, such as a bare constructor in a
// deploy artifact.
func parseABI(name string, abiJSON []byte) (*MethodSet, error) {
	parsed, err := abi.JSON(bytes.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("parsing %s ABI: %w", name, err)
	}
	return NewMethodSet(name, parsed), nil
}

// Name returns the contract name the set was built for.
func (s *MethodSet) Name() string { return s.name }

// ABI returns the underlying parsed ABI.
func (s *MethodSet) ABI() abi.ABI { return s.abi }

// Method looks up a method by name.
func (s *MethodSet) Method(name string) (*abi.Method, error) {
	m, ok := s.abi.Methods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no method %q", ErrUnknownMethod, s.name, name)
	}
	return &m, nil
}

// Names returns the method names sorted alphabetically.
func (s *MethodSet) Names() []string {
	out := make([]string, 0, len(s.abi.Methods))
	for name := range s.abi.Methods {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsView reports whether name is a view or pure method.
func (s *MethodSet) IsView(name string) bool {
	m, ok := s.abi.Methods[name]
	return ok && m.IsConstant()
}

// IsPayable reports whether name accepts an attached value.
func (s *MethodSet) IsPayable(name string) bool {
	m, ok := s.abi.Methods[name]
	return ok && m.IsPayable()
}

// Pack encodes a call to name: the 4-byte selector followed by the arguments.
func (s *MethodSet) Pack(name string, args ...any) ([]byte, error) {
	if _, err := s.Method(name); err != nil {
		return nil, err
	}
	data, err := s.abi.Pack(name, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s arguments: %w", name, err)
	}
	return data, nil
}

// Unpack decodes the return data of name.
func (s *MethodSet) Unpack(name string, data []byte) ([]any, error) {
	if _, err := s.Method(name); err != nil {
		return nil, err
	}
	out, err := s.abi.Unpack(name, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s result: %w", name, err)
	}
	return out, nil
}

// Deploy encodes contract creation data: bytecode followed by the packed
// constructor arguments.
func (s *MethodSet) Deploy(bytecode []byte, args ...any) ([]byte, error) {
	ctorArgs, err := s.abi.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("encoding constructor arguments: %w", err)
	}
	return append(append([]byte(nil), bytecode...), ctorArgs...), nil
}
