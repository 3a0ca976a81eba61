package models

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBigIntScan(t *testing.T) {
	t.Parallel()

	var b BigInt
	require.NoError(t, b.Scan("2500000000000000"))
	assert.Equal(t, "2500000000000000", b.String())

	require.NoError(t, b.Scan([]byte("12800000000000")))
	assert.Equal(t, "12800000000000", b.String())

	require.NoError(t, b.Scan(int64(42)))
	assert.Equal(t, "42", b.String())

	require.NoError(t, b.Scan(nil))
	assert.Equal(t, "0", b.String())

	assert.Error(t, b.Scan("not-a-number"))
	assert.Error(t, b.Scan(3.14))
}

func TestBigIntValue(t *testing.T) {
	t.Parallel()

	b := NewBigIntFromUint64(500000000000000)
	v, err := b.Value()
	require.NoError(t, err)
	assert.Equal(t, "500000000000000", v)
}

func TestBigIntJSON(t *testing.T) {
	t.Parallel()

	// Amounts must serialize as strings: 2.5e15 does not survive float64.
	b := NewBigInt(big.NewInt(2500000000000000))
	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, `"2500000000000000"`, string(data))

	var back BigInt
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "2500000000000000", back.String())

	// Bare numbers from older clients are still accepted.
	require.NoError(t, json.Unmarshal([]byte(`1000`), &back))
	assert.Equal(t, "1000", back.String())
}

func TestNewBigIntCopies(t *testing.T) {
	t.Parallel()

	src := big.NewInt(100)
	b := NewBigInt(src)
	src.SetInt64(999)
	assert.Equal(t, "100", b.String(), "BigInt must not alias its source")
}
