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

// Package bmt implements the Binary Merkle Tree hash used to address one
// Swarm chunk: a fixed-depth tree over 32-byte segments of a zero-padded
// payload, combined with an 8-byte length prefix (the span) to form the
// chunk's content address.
package bmt

import (
	"errors"
	"fmt"

	"github.com/ethersphere/go-bmt/swarmhex"
)

// ErrPayloadTooLarge is returned when a chunk's payload exceeds the
// configured MaxPayloadSize.
var ErrPayloadTooLarge = errors.New("bmt: payload exceeds max payload size")

// ErrSegmentIndexOutOfRange is returned when a proof is requested for a
// segment that is not covered by the chunk's actual payload (as opposed to
// its zero-padding).
var ErrSegmentIndexOutOfRange = errors.New("bmt: segment index out of range")

// Proof is a chunk-level inclusion proof: the sister segments of one
// chunk's BMT path, plus the span that closes the proof into the chunk's
// content address.
type Proof struct {
	Span           []byte
	SisterSegments [][]byte
}

// Chunk is an immutable, fixed-capacity container of payload bytes plus an
// encoded span. Every derived value (padded data, BMT levels, address) is
// computed once at construction time and is safe for concurrent read-only
// use thereafter.
type Chunk struct {
	opts    Options
	payload []byte
	span    []byte
	data    []byte
	levels  []level
	address []byte
}

// NewChunk validates and constructs a Chunk from payload, which must be no
// longer than the configured MaxPayloadSize (default 4096 bytes). By
// default the chunk's span equals len(payload); pass WithStartingSpanValue
// to override it, as parent-chunk construction in package file does to
// make span additive over a subtree.
func NewChunk(payload []byte, opts ...Option) (*Chunk, error) {
	o, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}
	if len(payload) > o.MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(payload), o.MaxPayloadSize)
	}

	spanValue := int64(len(payload))
	if o.StartingSpanValue != nil {
		spanValue = *o.StartingSpanValue
	}
	span, err := EncodeSpan(spanValue, o.SpanLength)
	if err != nil {
		return nil, err
	}

	data := make([]byte, o.MaxPayloadSize)
	copy(data, payload)

	levels, err := buildTree(data, o.HashFunc)
	if err != nil {
		return nil, err
	}
	root := levels[len(levels)-1][0]

	address := o.HashFunc(span, root)
	if err := validateDigest(address); err != nil {
		return nil, err
	}

	payloadCopy := make([]byte, len(payload))
	copy(payloadCopy, payload)

	chunksHashedCounter.Inc(1)

	return &Chunk{
		opts:    o,
		payload: payloadCopy,
		span:    span,
		data:    data,
		levels:  levels,
		address: address,
	}, nil
}

// Payload returns the chunk's unpadded payload bytes.
func (c *Chunk) Payload() []byte {
	return cloneBytes(c.payload)
}

// Span returns the chunk's encoded span.
func (c *Chunk) Span() []byte {
	return cloneBytes(c.span)
}

// SpanValue decodes and returns the chunk's span as an integer.
func (c *Chunk) SpanValue() int64 {
	v, err := DecodeSpan(c.span)
	if err != nil {
		// span was produced by EncodeSpan at construction time under the
		// same validation, so a decode failure here would be a bug in
		// this package, not a caller error.
		panic(fmt.Sprintf("bmt: chunk has unrepresentable span: %v", err))
	}
	return v
}

// Data returns the chunk's payload right-padded with zero bytes to
// MaxPayloadSize: the buffer the in-chunk BMT is computed over.
func (c *Chunk) Data() []byte {
	return cloneBytes(c.data)
}

// Address returns the chunk's content address: H(span || bmtRoot(Data())).
func (c *Chunk) Address() []byte {
	return cloneBytes(c.address)
}

// HexAddress returns the chunk's content address as a swarmhex.Address, for
// callers that want a printable or JSON-able address instead of raw bytes.
func (c *Chunk) HexAddress() (swarmhex.Address, error) {
	return swarmhex.NewAddress(c.address)
}

// BMT returns the chunk's complete in-chunk Merkle tree as a slice of
// levels, leaves first. The final level contains exactly one segment, the
// BMT root.
func (c *Chunk) BMT() [][][]byte {
	out := make([][][]byte, len(c.levels))
	for i, lvl := range c.levels {
		segs := make([][]byte, len(lvl))
		for j, s := range lvl {
			segs[j] = cloneBytes(s)
		}
		out[i] = segs
	}
	return out
}

// InclusionProof returns the sister segments and span needed to recompute
// this chunk's BMT root from segment segmentIndex. segmentIndex*SegmentSize
// must fall within the actual payload; indices into the zero-padding
// region are not provable.
func (c *Chunk) InclusionProof(segmentIndex int) (Proof, error) {
	if segmentIndex < 0 || segmentIndex*SegmentSize >= len(c.payload) {
		return Proof{}, fmt.Errorf("%w: %d", ErrSegmentIndexOutOfRange, segmentIndex)
	}
	return Proof{
		Span:           c.Span(),
		SisterSegments: inclusionProofSegments(c.levels, segmentIndex),
	}, nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
