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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethersphere/go-bmt/bmt"
)

// TestInclusionProofRoundTrip covers invariant 5: recomputing the file
// address from a segment's proof must match the file's actual address, for
// a payload small enough to stay single-level.
func TestInclusionProofRoundTrip(t *testing.T) {
	payload := []byte("a payload short enough to be a single chunk")
	f, err := New(payload)
	require.NoError(t, err)

	proof, err := InclusionProof(f, 0)
	require.NoError(t, err)
	require.Len(t, proof, 1)

	segment := make([]byte, bmt.SegmentSize)
	copy(segment, payload)

	got, err := AddressFromInclusionProof(proof, segment, 0)
	require.NoError(t, err)
	assert.Equal(t, f.Address(), got)
}

// TestInclusionProofRoundTripCarrier covers the same round trip across a
// carrier-promoted chunk: the proof is shorter than the naive per-level
// count because a level was skipped, since the final segment sits in the
// carrier, one level up from where an unpromoted leaf would be.
func TestInclusionProofRoundTripCarrier(t *testing.T) {
	opts := []bmt.Option{bmt.WithMaxPayloadSize(64)}
	payload := bytes.Repeat([]byte{0x5a}, 160)
	f, err := New(payload, opts...)
	require.NoError(t, err)
	require.Equal(t, 3, f.Depth())

	lastSegmentIndex := 4
	proof, err := InclusionProof(f, lastSegmentIndex)
	require.NoError(t, err)
	assert.Len(t, proof, 2, "carrier promotion skips one level")

	segment := make([]byte, bmt.SegmentSize)
	copy(segment, payload[lastSegmentIndex*bmt.SegmentSize:])

	got, err := AddressFromInclusionProof(proof, segment, lastSegmentIndex, opts...)
	require.NoError(t, err)
	assert.Equal(t, f.Address(), got)
}

// TestInclusionProofRoundTripEveryLeafSegment exercises every leaf segment
// of a small multi-level, carrier-bearing tree, not just the one landing in
// the carrier.
func TestInclusionProofRoundTripEveryLeafSegment(t *testing.T) {
	opts := []bmt.Option{bmt.WithMaxPayloadSize(64)}
	payload := bytes.Repeat([]byte{0x77}, 160)
	f, err := New(payload, opts...)
	require.NoError(t, err)

	segmentCount := (len(payload) + bmt.SegmentSize - 1) / bmt.SegmentSize
	for i := 0; i < segmentCount; i++ {
		proof, err := InclusionProof(f, i)
		require.NoError(t, err)

		start := i * bmt.SegmentSize
		end := start + bmt.SegmentSize
		segment := make([]byte, bmt.SegmentSize)
		if end > len(payload) {
			end = len(payload)
		}
		copy(segment, payload[start:end])

		got, err := AddressFromInclusionProof(proof, segment, i, opts...)
		require.NoError(t, err)
		assert.Equal(t, f.Address(), got, "segment %d", i)
	}
}

func TestInclusionProofOutOfRange(t *testing.T) {
	f, err := New([]byte("short"))
	require.NoError(t, err)

	_, err = InclusionProof(f, 1)
	assert.ErrorIs(t, err, ErrSegmentIndexOutOfRange)
}

func TestVerifyInclusionProof(t *testing.T) {
	payload := []byte("verify this payload")
	f, err := New(payload)
	require.NoError(t, err)

	proof, err := InclusionProof(f, 0)
	require.NoError(t, err)

	segment := make([]byte, bmt.SegmentSize)
	copy(segment, payload)

	ok, err := VerifyInclusionProof(proof, segment, 0, f.Address())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyInclusionProof(proof, segment, 0, make([]byte, bmt.SegmentSize))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddressFromInclusionProofRejectsEmptyProof(t *testing.T) {
	_, err := AddressFromInclusionProof(nil, make([]byte, bmt.SegmentSize), 0)
	assert.Error(t, err)
}

func TestProofJSONRoundTrip(t *testing.T) {
	payload := []byte("json round trip payload")
	f, err := New(payload)
	require.NoError(t, err)

	proof, err := InclusionProof(f, 0)
	require.NoError(t, err)

	b, err := json.Marshal(proof)
	require.NoError(t, err)

	var got []Proof
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, proof, got)
}
