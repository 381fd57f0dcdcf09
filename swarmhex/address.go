// Copyright 2024 The go-bmt Authors
// This file is part of the go-bmt library.
//
// The go-bmt library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-bmt library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-bmt library. If not, see <http://www.gnu.org/licenses/>.

// Package swarmhex gives chunk and file addresses a fixed-length,
// hex-friendly type for use at API and storage boundaries, instead of
// passing raw []byte around.
package swarmhex

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Size is the byte length of an Address: the digest size of the hash
// function package bmt uses to derive chunk and file addresses.
const Size = 32

// ErrInvalidAddressLength is returned when decoding bytes that are not
// exactly Size long into an Address.
var ErrInvalidAddressLength = errors.New("swarmhex: invalid address length")

// Address is a content address as produced by package bmt or package file:
// a chunk address or a file address, both 32-byte Keccak-256 digests.
type Address [Size]byte

// ZeroAddress is the Address with all bytes zero.
var ZeroAddress = Address{}

// NewAddress copies b into a new Address. It returns ErrInvalidAddressLength
// if b is not exactly Size bytes.
func NewAddress(b []byte) (Address, error) {
	var a Address
	if len(b) != Size {
		return a, fmt.Errorf("%w: got %d, want %d", ErrInvalidAddressLength, len(b), Size)
	}
	copy(a[:], b)
	return a, nil
}

// ParseHexAddress decodes a hex string, with or without a leading "0x", into
// an Address.
func ParseHexAddress(s string) (Address, error) {
	b, err := hex.DecodeString(trim0x(s))
	if err != nil {
		return Address{}, fmt.Errorf("swarmhex: decoding hex address: %w", err)
	}
	return NewAddress(b)
}

// MustParseHexAddress is like ParseHexAddress but panics on error. Intended
// for use with compile-time-constant addresses, such as in tests.
func MustParseHexAddress(s string) Address {
	a, err := ParseHexAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Bytes returns a's bytes as a newly allocated slice.
func (a Address) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, a[:])
	return out
}

// String returns a's hex encoding, without a "0x" prefix, matching the
// Swarm reference's address text form.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// MarshalJSON encodes a as a "0x"-prefixed hex string, matching go-ethereum's
// convention for fixed-length byte arrays.
func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(`"` + hexutil.Encode(a[:]) + `"`), nil
}

// UnmarshalJSON decodes a "0x"-prefixed hex string produced by MarshalJSON.
func (a *Address) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return fmt.Errorf("swarmhex: decoding hex address: %w", err)
	}
	parsed, err := NewAddress(b)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func unquote(data []byte) (string, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return "", errors.New("swarmhex: address JSON value must be a string")
	}
	return string(data[1 : len(data)-1]), nil
}
