// Package fees implements the ledger's fee arithmetic: the basis-point
// revenue split, message fee quoting, and ether/wei conversion.
package fees

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Basis-point split applied to every collected fee.
const (
	OwnerShareBP = 8000
	TotalBP      = 10000
)

var (
	bpOwner = big.NewInt(OwnerShareBP)
	bpTotal = big.NewInt(TotalBP)

	weiPerEther = decimal.New(1, 18)
)

// Split divides a collected fee into owner and treasury shares. The owner
// share is floor(total*8000/10000); the treasury share is the remainder by
// subtraction, so the two always sum exactly to total.
func Split(total *big.Int) (ownerShare, treasuryShare *big.Int) {
	ownerShare = new(big.Int).Mul(total, bpOwner)
	ownerShare.Quo(ownerShare, bpTotal)
	treasuryShare = new(big.Int).Sub(total, ownerShare)
	return ownerShare, treasuryShare
}

// MessageFee quotes the fee for a message of contentBytes UTF-8 bytes:
// base + contentBytes*perByte.
func MessageFee(base, perByte *big.Int, contentBytes int) *big.Int {
	fee := new(big.Int).Mul(perByte, big.NewInt(int64(contentBytes)))
	return fee.Add(fee, base)
}

// EtherToWei converts a human ether-denominated decimal string ("0.0025")
// into wei. It rejects negatives and fractions finer than one wei.
func EtherToWei(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid ether amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("ether amount %q is negative", s)
	}
	wei := d.Mul(weiPerEther)
	if !wei.IsInteger() {
		return nil, fmt.Errorf("ether amount %q is finer than one wei", s)
	}
	return wei.BigInt(), nil
}

// WeiToEther renders a wei amount as an ether decimal string for logs and
// operator tooling.
func WeiToEther(wei *big.Int) string {
	return decimal.NewFromBigInt(wei, 0).Div(weiPerEther).String()
}
