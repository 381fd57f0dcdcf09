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

package file

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethersphere/go-bmt/bmt"
)

// TestNewEmptyPayload checks that the file address of an empty payload is
// the address of its single empty leaf chunk.
func TestNewEmptyPayload(t *testing.T) {
	f, err := New(nil)
	require.NoError(t, err)

	assert.Equal(t, 1, f.LeafCount())
	assert.Equal(t, make([]byte, bmt.DefaultSpanLength), f.Span())
	assert.Equal(t, f.LeafChunks()[0].Address(), f.Address())
}

// TestNewSingleLeaf covers invariant 8: a payload no longer than
// MaxPayloadSize yields exactly one leaf chunk, whose address is the file
// address.
func TestNewSingleLeaf(t *testing.T) {
	f, err := New([]byte("small payload"))
	require.NoError(t, err)

	assert.Equal(t, 1, f.LeafCount())
	assert.Equal(t, f.LeafChunks()[0].Address(), f.Address())
}

// TestNewSpanEqualsPayloadLength covers invariant 2: the root span decodes
// to the total payload length.
func TestNewSpanEqualsPayloadLength(t *testing.T) {
	payload := bytes.Repeat([]byte{0x9}, 1000)
	f, err := New(payload, bmt.WithMaxPayloadSize(64))
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), f.SpanValue())
}

// TestNewDeterminism covers invariant 1 at the file level.
func TestNewDeterminism(t *testing.T) {
	payload := bytes.Repeat([]byte{0x42}, 1000)
	f1, err := New(payload, bmt.WithMaxPayloadSize(64))
	require.NoError(t, err)
	f2, err := New(payload, bmt.WithMaxPayloadSize(64))
	require.NoError(t, err)
	assert.Equal(t, f1.Address(), f2.Address())
}

// TestNewAddressChangesWithSegment covers invariant 6: perturbing one
// segment changes the file address.
func TestNewAddressChangesWithSegment(t *testing.T) {
	payload := bytes.Repeat([]byte{0x42}, 1000)
	f1, err := New(payload, bmt.WithMaxPayloadSize(64))
	require.NoError(t, err)

	mutated := append([]byte(nil), payload...)
	mutated[500] ^= 0xff
	f2, err := New(mutated, bmt.WithMaxPayloadSize(64))
	require.NoError(t, err)

	assert.NotEqual(t, f1.Address(), f2.Address())
}

// TestChunkedFileHexAddress checks that HexAddress agrees with Address.
func TestChunkedFileHexAddress(t *testing.T) {
	f, err := New([]byte("hex file address"))
	require.NoError(t, err)

	addr, err := f.HexAddress()
	require.NoError(t, err)
	assert.Equal(t, f.Address(), addr.Bytes())
}

// TestBMTLastLevelIsRoot covers invariant 4 through the ChunkedFile wrapper.
func TestBMTLastLevelIsRoot(t *testing.T) {
	payload := bytes.Repeat([]byte{0x3}, 160)
	f, err := New(payload, bmt.WithMaxPayloadSize(64))
	require.NoError(t, err)

	levels := f.BMT()
	last := levels[len(levels)-1]
	require.Len(t, last, 1)
	assert.Equal(t, f.Address(), last[0].Address())
	assert.Equal(t, f.Depth(), len(levels))
}
