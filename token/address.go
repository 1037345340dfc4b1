package token

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Address identifies an account as a fixed-width 20-byte value.
type Address [20]byte

// ZeroAddress is the sentinel used as the sender of issuance events
// and the recipient of destruction events.
var ZeroAddress = Address{}

// ParseAddress decodes a hex address, with or without a 0x prefix.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimPrefix(s, "0x")
	var a Address
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("token: invalid address %q: %w", s, err)
	}
	if len(b) != len(a) {
		return Address{}, fmt.Errorf("token: invalid address length %d, want %d", len(b), len(a))
	}
	copy(a[:], b)
	return a, nil
}

// MustParseAddress is ParseAddress for static addresses; it panics on error.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the 0x-prefixed lowercase hex form of the address.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero reports whether a is the zero sentinel.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}
