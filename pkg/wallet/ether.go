package wallet

import (
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const etherDecimals = 18

var (
	ErrInvalidAmount  = errors.New("invalid ether amount")
	ErrInvalidAddress = errors.New("invalid recipient address")
)

// ValidAddress reports whether s is a 20-byte hex address with 0x prefix.
func ValidAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// ParseEther converts a decimal ether string ("0.5", "1", ".25") to wei.
// Negative values and more than 18 fractional digits are rejected.
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return nil, ErrInvalidAmount
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, ErrInvalidAmount
	}
	if len(frac) > etherDecimals || !digits(whole) || !digits(frac) {
		return nil, ErrInvalidAmount
	}
	frac += strings.Repeat("0", etherDecimals-len(frac))
	n := strings.TrimLeft(whole+frac, "0")
	if n == "" {
		return new(big.Int), nil
	}
	wei, ok := new(big.Int).SetString(n, 10)
	if !ok {
		return nil, ErrInvalidAmount
	}
	return wei, nil
}

// FormatEther renders wei as a decimal ether string without trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	neg := wei.Sign() < 0
	s := new(big.Int).Abs(wei).String()
	if len(s) <= etherDecimals {
		s = strings.Repeat("0", etherDecimals-len(s)+1) + s
	}
	whole, frac := s[:len(s)-etherDecimals], strings.TrimRight(s[len(s)-etherDecimals:], "0")
	out := whole
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
