package fees

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		total    string
		owner    string
		treasury string
	}{
		{name: "channel creation fee", total: "2500000000000000", owner: "2000000000000000", treasury: "500000000000000"},
		{name: "zero", total: "0", owner: "0", treasury: "0"},
		{name: "one wei", total: "1", owner: "0", treasury: "1"},
		{name: "indivisible remainder to treasury", total: "10001", owner: "8000", treasury: "2001"},
		{name: "small even", total: "10", owner: "8", treasury: "2"},
		{name: "odd", total: "7", owner: "5", treasury: "2"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			total, ok := new(big.Int).SetString(tc.total, 10)
			require.True(t, ok)

			owner, treasury := Split(total)
			assert.Equal(t, tc.owner, owner.String())
			assert.Equal(t, tc.treasury, treasury.String())

			// Conservation: nothing is lost to rounding.
			sum := new(big.Int).Add(owner, treasury)
			assert.Zero(t, sum.Cmp(total), "owner+treasury must equal total")
		})
	}
}

func TestMessageFee(t *testing.T) {
	t.Parallel()

	base, _ := new(big.Int).SetString("10000000000000", 10)   // 0.00001 ether
	perByte, _ := new(big.Int).SetString("200000000000", 10)  // 0.0000002 ether

	// 14-byte message: 0.00001 + 14*0.0000002 = 0.0000128 ether.
	fee := MessageFee(base, perByte, 14)
	assert.Equal(t, "12800000000000", fee.String())

	// Zero-length content pays the base fee alone.
	assert.Equal(t, base.String(), MessageFee(base, perByte, 0).String())

	// The base amount must not be mutated by the computation.
	assert.Equal(t, "10000000000000", base.String())
}

func TestEtherToWei(t *testing.T) {
	t.Parallel()

	t.Run("creation fee default", func(t *testing.T) {
		wei, err := EtherToWei("0.0025")
		require.NoError(t, err)
		assert.Equal(t, "2500000000000000", wei.String())
	})

	t.Run("per byte default", func(t *testing.T) {
		wei, err := EtherToWei("0.0000002")
		require.NoError(t, err)
		assert.Equal(t, "200000000000", wei.String())
	})

	t.Run("whole ether", func(t *testing.T) {
		wei, err := EtherToWei("1")
		require.NoError(t, err)
		assert.Equal(t, "1000000000000000000", wei.String())
	})

	t.Run("zero", func(t *testing.T) {
		wei, err := EtherToWei("0")
		require.NoError(t, err)
		assert.Equal(t, "0", wei.String())
	})

	t.Run("negative rejected", func(t *testing.T) {
		_, err := EtherToWei("-1")
		assert.Error(t, err)
	})

	t.Run("sub-wei rejected", func(t *testing.T) {
		_, err := EtherToWei("0.0000000000000000001")
		assert.Error(t, err)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := EtherToWei("a lot")
		assert.Error(t, err)
	})
}

func TestWeiToEther(t *testing.T) {
	t.Parallel()

	wei, _ := new(big.Int).SetString("12800000000000", 10)
	assert.Equal(t, "0.0000128", WeiToEther(wei))
	assert.Equal(t, "0", WeiToEther(big.NewInt(0)))
}
