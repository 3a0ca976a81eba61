package models

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strings"
)

// BigInt wraps math/big.Int for storage as a decimal string column.
// Wei amounts overflow int64 and neither postgres nor sqlite has a native
// 256-bit integer type, so values round-trip through varchar and are
// compared in Go.
type BigInt struct {
	big.Int
}

// NewBigInt returns a BigInt holding a copy of v. A nil v yields zero.
func NewBigInt(v *big.Int) BigInt {
	var b BigInt
	if v != nil {
		b.Set(v)
	}
	return b
}

// NewBigIntFromUint64 returns a BigInt holding v.
func NewBigIntFromUint64(v uint64) BigInt {
	var b BigInt
	b.SetUint64(v)
	return b
}

// NewBigIntFromString parses a base-10 string into a BigInt.
func NewBigIntFromString(s string) (BigInt, error) {
	var b BigInt
	if err := b.setString(s); err != nil {
		return BigInt{}, err
	}
	return b, nil
}

// Scan implements sql.Scanner.
func (b *BigInt) Scan(value interface{}) error {
	if value == nil {
		b.SetInt64(0)
		return nil
	}
	switch v := value.(type) {
	case string:
		return b.setString(v)
	case []byte:
		return b.setString(string(v))
	case int64:
		b.SetInt64(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into BigInt", value)
	}
}

// Value implements driver.Valuer.
func (b BigInt) Value() (driver.Value, error) {
	return b.String(), nil
}

// GormDataType reports the column type backing BigInt.
func (BigInt) GormDataType() string {
	return "varchar(80)"
}

// MarshalJSON encodes the amount as a JSON string so JavaScript clients
// never round it through float64.
func (b BigInt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.String() + `"`), nil
}

// UnmarshalJSON accepts both string and bare-number encodings.
func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		b.SetInt64(0)
		return nil
	}
	return b.setString(s)
}

func (b *BigInt) setString(s string) error {
	if s == "" {
		b.SetInt64(0)
		return nil
	}
	if _, ok := b.SetString(s, 10); !ok {
		return fmt.Errorf("invalid decimal integer %q", s)
	}
	return nil
}
