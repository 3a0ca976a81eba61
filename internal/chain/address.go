// Package chain holds the EVM-flavored primitives the ledger keeps from
// its on-chain origin: address canonicalization, slug hashing, and
// personal_sign signature recovery.
package chain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ZeroAddress is the all-zero EVM address in checksummed form.
var ZeroAddress = common.Address{}.Hex()

// NormalizeAddress parses s as an EVM address and returns the EIP-55
// checksummed form. Every address the ledger stores or compares goes
// through this first.
func NormalizeAddress(s string) (string, error) {
	if !common.IsHexAddress(s) {
		return "", fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s).Hex(), nil
}

// IsValidAddress reports whether s parses as an EVM address.
func IsValidAddress(s string) bool {
	return common.IsHexAddress(s)
}

// IsZeroAddress reports whether s parses to the zero address.
func IsZeroAddress(s string) bool {
	return common.IsHexAddress(s) && common.HexToAddress(s) == (common.Address{})
}

// SameAddress compares two addresses ignoring checksum casing.
func SameAddress(a, b string) bool {
	if !common.IsHexAddress(a) || !common.IsHexAddress(b) {
		return false
	}
	return common.HexToAddress(a) == common.HexToAddress(b)
}
