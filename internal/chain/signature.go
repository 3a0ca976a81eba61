package chain

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// HashBody returns the 0x-prefixed keccak-256 of a request body. An empty
// body hashes the empty byte string, which keeps bodyless requests
// signable.
func HashBody(body []byte) string {
	return crypto.Keccak256Hash(body).Hex()
}

// SigningText assembles the exact text a caller personal_signs to
// authorize one request.
func SigningText(method, path string, timestamp int64, bodyHash string) string {
	return fmt.Sprintf("onchat:%s:%s:%d:%s", method, path, timestamp, bodyHash)
}

// RecoverSigner recovers the checksummed address that personal_signed
// text.
func RecoverSigner(text, signature string) (string, error) {
	sigHex := strings.TrimPrefix(signature, "0x")
	sigBytes, err := hex.DecodeString(sigHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode signature: %w", err)
	}
	if len(sigBytes) != 65 {
		return "", fmt.Errorf("signature must be 65 bytes, got %d", len(sigBytes))
	}

	// Wallets emit the recovery id as 27/28; SigToPub wants 0/1.
	if sigBytes[64] >= 27 {
		sigBytes[64] -= 27
	}

	hash := accounts.TextHash([]byte(text))
	pubKey, err := crypto.SigToPub(hash, sigBytes)
	if err != nil {
		return "", fmt.Errorf("failed to recover public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pubKey).Hex(), nil
}

// SignText signs text with a private key the way a wallet's personal_sign
// does, recovery id included. Used by tests and the client tooling.
func SignText(text string, key *ecdsa.PrivateKey) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(text)), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign text: %w", err)
	}
	sig[64] += 27
	return hexutil.Encode(sig), nil
}

// AddressFromKey derives the checksummed address of a private key.
func AddressFromKey(key *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}
