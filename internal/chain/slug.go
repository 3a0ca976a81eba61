package chain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// HashSlug derives the canonical channel key: keccak-256 over the raw slug
// bytes, 0x-prefixed lowercase hex (66 characters).
func HashSlug(slug string) string {
	return crypto.Keccak256Hash([]byte(slug)).Hex()
}

// NormalizeSlugHash validates s as a 32-byte hex key and returns it
// lowercased. common.HexToHash would silently pad or truncate odd input,
// so the length is checked explicitly.
func NormalizeSlugHash(s string) (string, error) {
	if len(s) != 66 || !strings.HasPrefix(s, "0x") {
		return "", fmt.Errorf("invalid slug hash %q", s)
	}
	if _, err := hexutil.Decode(s); err != nil {
		return "", fmt.Errorf("invalid slug hash %q", s)
	}
	return strings.ToLower(s), nil
}
