package chain

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	t.Parallel()

	t.Run("checksums lowercase input", func(t *testing.T) {
		got, err := NormalizeAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
		require.NoError(t, err)
		assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", got)
	})

	t.Run("rejects junk", func(t *testing.T) {
		_, err := NormalizeAddress("not-an-address")
		assert.Error(t, err)
	})

	t.Run("rejects short hex", func(t *testing.T) {
		_, err := NormalizeAddress("0x1234")
		assert.Error(t, err)
	})
}

func TestSameAddress(t *testing.T) {
	t.Parallel()

	assert.True(t, SameAddress(
		"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	))
	assert.False(t, SameAddress(
		"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
		ZeroAddress,
	))
	assert.False(t, SameAddress("garbage", "garbage"))
}

func TestIsZeroAddress(t *testing.T) {
	t.Parallel()

	assert.True(t, IsZeroAddress("0x0000000000000000000000000000000000000000"))
	assert.False(t, IsZeroAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"))
	assert.False(t, IsZeroAddress(""))
}

func TestHashSlug(t *testing.T) {
	t.Parallel()

	// Known keccak-256 vector for the empty string.
	assert.Equal(t,
		"0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		HashSlug(""),
	)

	h := HashSlug("test-channel")
	assert.Len(t, h, 66)
	assert.True(t, strings.HasPrefix(h, "0x"))
	assert.Equal(t, h, HashSlug("test-channel"), "hash must be stable")
	assert.NotEqual(t, h, HashSlug("test-channe"), "distinct slugs must not collide")
}

func TestNormalizeSlugHash(t *testing.T) {
	t.Parallel()

	h := HashSlug("general")

	got, err := NormalizeSlugHash(strings.ToUpper(h[:2]) + strings.ToUpper(h[2:]))
	require.Error(t, err, "uppercase 0X prefix is not accepted")
	_ = got

	got, err = NormalizeSlugHash("0x" + strings.ToUpper(h[2:]))
	require.NoError(t, err)
	assert.Equal(t, h, got)

	_, err = NormalizeSlugHash("0x1234")
	assert.Error(t, err)

	_, err = NormalizeSlugHash(h[2:])
	assert.Error(t, err, "missing 0x prefix")

	_, err = NormalizeSlugHash("0x" + strings.Repeat("zz", 32))
	assert.Error(t, err, "non-hex characters")
}

func TestSignAndRecover(t *testing.T) {
	t.Parallel()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := AddressFromKey(key)

	text := SigningText("POST", "/api/channels", 1700000000, HashBody([]byte(`{"slug":"general"}`)))

	sig, err := SignText(text, key)
	require.NoError(t, err)

	recovered, err := RecoverSigner(text, sig)
	require.NoError(t, err)
	assert.Equal(t, addr, recovered)

	// A different text must not recover to the same signer.
	other, err := RecoverSigner(text+"x", sig)
	require.NoError(t, err)
	assert.NotEqual(t, addr, other)
}

func TestRecoverSignerRejectsMalformed(t *testing.T) {
	t.Parallel()

	_, err := RecoverSigner("hello", "0x1234")
	assert.Error(t, err, "short signature")

	_, err = RecoverSigner("hello", "0x"+strings.Repeat("zz", 65))
	assert.Error(t, err, "non-hex signature")
}
