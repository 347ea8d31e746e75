package chain

import (
	"fmt"
	"math/big"
	"strings"
)

var weiPerETH = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// WeiToETH formats a wei amount as a decimal ETH string with at least one
// fractional digit: 10e18 → "10.0", 1.5e18 → "1.5".
func WeiToETH(wei *big.Int) string {
	if wei == nil {
		return "0.0"
	}
	s := new(big.Rat).SetFrac(wei, weiPerETH).FloatString(18)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}

// ParseETH converts a decimal ETH amount ("10", "0.25") to wei. Amounts with
// more than 18 fractional digits are rejected.
func ParseETH(eth string) (*big.Int, error) {
	eth = strings.TrimSpace(eth)
	r, ok := new(big.Rat).SetString(eth)
	if !ok {
		return nil, fmt.Errorf("invalid ETH value: %q", eth)
	}
	if r.Sign() < 0 {
		return nil, fmt.Errorf("negative ETH value: %q", eth)
	}
	r.Mul(r, new(big.Rat).SetInt(weiPerETH))
	if !r.IsInt() {
		return nil, fmt.Errorf("ETH value %q has more than 18 decimals", eth)
	}
	return new(big.Int).Set(r.Num()), nil
}

// ParseUint parses a non-negative integer in decimal or 0x-prefixed hex.
func ParseUint(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid unsigned integer: %q", s)
	}
	return n, nil
}
