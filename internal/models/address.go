// internal/models/address.go
package models

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInvalidAddress = errors.New("invalid address")

// Address is a 0x-prefixed account identifier stored in EIP-55 checksum form.
type Address string

// ZeroAddress never owns anything; it is rejected wherever a caller is expected.
const ZeroAddress Address = ""

// ParseAddress accepts any hex casing and returns the checksummed form.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return ZeroAddress, ErrInvalidAddress
	}
	a := common.HexToAddress(s)
	if a == (common.Address{}) {
		return ZeroAddress, ErrInvalidAddress
	}
	return Address(a.Hex()), nil
}

// MustAddress is for constants and tests.
func MustAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic("models: bad address " + s)
	}
	return a
}

func (a Address) String() string { return string(a) }

func (a Address) IsZero() bool { return a == ZeroAddress }
