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

package bmt

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// DefaultSpanLength is the width, in bytes, of the span prefix attached
	// to every chunk. The reference Swarm wire format fixes this at 8.
	DefaultSpanLength = 8

	// MinSpanLength is the smallest span width a caller may request.
	MinSpanLength = 4

	// MaxSafeValue is the largest span value this package will encode or
	// accept on decode: 2^53-1, the JavaScript safe-integer bound the Swarm
	// reference implementation inherited and that this package reproduces
	// bit-for-bit rather than widening to the full uint64 range.
	MaxSafeValue = (int64(1) << 53) - 1
)

// ErrSpanOutOfRange is returned when a span value is negative or exceeds
// MaxSafeValue, either on encode or on decode of a foreign span.
var ErrSpanOutOfRange = errors.New("bmt: span value out of range")

// EncodeSpan writes value as an unsigned little-endian integer into a
// newly allocated buffer of length bytes (DefaultSpanLength if length is
// zero). It fails if value is negative or exceeds MaxSafeValue.
func EncodeSpan(value int64, length int) ([]byte, error) {
	if length == 0 {
		length = DefaultSpanLength
	}
	if value < 0 || value > MaxSafeValue {
		return nil, fmt.Errorf("%w: %d", ErrSpanOutOfRange, value)
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(value))
	span := make([]byte, length)
	n := length
	if n > 8 {
		n = 8
	}
	copy(span, buf[:n])
	return span, nil
}

// DecodeSpan reads span as an unsigned little-endian integer. It fails if
// the decoded value exceeds MaxSafeValue.
func DecodeSpan(span []byte) (int64, error) {
	var buf [8]byte
	n := len(span)
	if n > 8 {
		n = 8
	}
	copy(buf[:n], span[:n])
	v := binary.LittleEndian.Uint64(buf[:])
	if v > uint64(MaxSafeValue) {
		return 0, fmt.Errorf("%w: %d", ErrSpanOutOfRange, v)
	}
	return int64(v), nil
}
