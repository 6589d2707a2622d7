// Package address derives the deterministic storage keys of poll program
// records and defines the 32-byte Address shared by identities, the program id
// and derived record addresses.
package address

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

const Size = 32

var ErrInvalidAddress = errors.New("invalid address")

// Address is a 32-byte key rendered as base58 text.
type Address [Size]byte

func (a Address) String() string {
	return base58.Encode(a[:])
}

func (a Address) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, a[:])
	return out
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) Equal(other Address) bool {
	return bytes.Equal(a[:], other[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Parse decodes a base58 address.
func Parse(value string) (Address, error) {
	raw, err := base58.Decode(value)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return FromBytes(raw)
}

func MustParse(value string) Address {
	a, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return a
}

func FromBytes(raw []byte) (Address, error) {
	if len(raw) != Size {
		return Address{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, Size, len(raw))
	}
	var a Address
	copy(a[:], raw)
	return a, nil
}

// PollIDSeed is the fixed-width little-endian encoding used in every seed tuple.
func PollIDSeed(pollID uint64) []byte {
	seed := make([]byte, 8)
	binary.LittleEndian.PutUint64(seed, pollID)
	return seed
}
