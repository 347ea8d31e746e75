package contract

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Selector computes the 4-byte function selector for a canonical signature
// such as "bookOffice(uint256,uint256)".
func Selector(signature string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// MethodInfo is a display row for one method of a set.
type MethodInfo struct {
	Name       string
	Signature  string
	Selector   string
	Mutability string
	Outputs    []string
}

// Describe lists every method of the set in name order.
func (s *MethodSet) Describe() []MethodInfo {
	out := make([]MethodInfo, 0, len(s.abi.Methods))
	for _, name := range s.Names() {
		m := s.abi.Methods[name]
		outputs := make([]string, len(m.Outputs))
		for i, o := range m.Outputs {
			outputs[i] = o.Type.String()
		}
		mut := m.StateMutability
		if mut == "" {
			mut = "nonpayable"
		}
		out = append(out, MethodInfo{
			Name:       m.Name,
			Signature:  m.Sig,
			Selector:   Selector(m.Sig),
			Mutability: mut,
			Outputs:    outputs,
		})
	}
	return out
}

// String renders the method like "earnings(address) view returns (uint256)".
func (i MethodInfo) String() string {
	var b strings.Builder
	b.WriteString(i.Signature)
	if i.Mutability != "nonpayable" {
		b.WriteString(" " + i.Mutability)
	}
	if len(i.Outputs) > 0 {
		b.WriteString(" returns (" + strings.Join(i.Outputs, ",") + ")")
	}
	return b.String()
}
