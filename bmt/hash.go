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
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/crypto/sha3"
)

// ErrInvalidDigestSize is returned when a caller-supplied HashFunc returns a
// digest that is not SegmentSize bytes long.
var ErrInvalidDigestSize = errors.New("bmt: hash function returned unexpected digest size")

// HashFunc is a 32-byte hash function accepting a variadic list of byte
// inputs, concatenated before hashing. It is the single capability every
// internal BMT operation is routed through, so that an alternative hash
// function applies uniformly across chunk, tree and proof construction.
type HashFunc func(data ...[]byte) []byte

// KeccakHasher is the default HashFunc, delegating to go-ethereum's
// Keccak-256, the hash Swarm addresses are defined over.
func KeccakHasher(data ...[]byte) []byte {
	return crypto.Keccak256(data...)
}

// NewSHA3Hasher builds a HashFunc directly over golang.org/x/crypto/sha3's
// legacy Keccak-256 instead of go-ethereum's crypto package. Package bmt
// still imports go-ethereum for its default KeccakHasher. Bit-for-bit
// identical to KeccakHasher.
func NewSHA3Hasher() HashFunc {
	return func(data ...[]byte) []byte {
		h := sha3.NewLegacyKeccak256()
		for _, d := range data {
			h.Write(d)
		}
		return h.Sum(nil)
	}
}

// validateDigest checks that a digest produced by a (possibly
// caller-supplied) HashFunc has the expected length. A mismatch is logged
// before being surfaced as an error, since it almost always means a custom
// hash function was wired in incorrectly.
func validateDigest(digest []byte) error {
	if len(digest) != SegmentSize {
		log.Warn("bmt: hash function returned unexpected digest size", "want", SegmentSize, "got", len(digest))
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidDigestSize, len(digest), SegmentSize)
	}
	return nil
}
