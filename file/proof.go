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
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethersphere/go-bmt/bmt"
)

// ErrSegmentIndexOutOfRange is returned when a proof is requested for a
// segment beyond the payload covered by the file's root span.
var ErrSegmentIndexOutOfRange = errors.New("file: segment index out of range")

// Proof is one record of a file-level inclusion proof: the sister segments
// of one chunk's BMT path and that chunk's span. A full proof is an
// ordered sequence of these, from the leaf chunk containing the proved
// segment up to the root chunk.
type Proof struct {
	Span           []byte
	SisterSegments [][]byte
}

// proofJSON is the wire shape for Proof: hex-encoded byte fields, so a
// proof can cross a process boundary (stored, sent over a network) and be
// reconstructed by a verifier that never built the tree itself.
type proofJSON struct {
	Span           string   `json:"span"`
	SisterSegments []string `json:"sisterSegments"`
}

// MarshalJSON encodes p as hex-stringed fields.
func (p Proof) MarshalJSON() ([]byte, error) {
	sisters := make([]string, len(p.SisterSegments))
	for i, s := range p.SisterSegments {
		sisters[i] = hex.EncodeToString(s)
	}
	return json.Marshal(proofJSON{
		Span:           hex.EncodeToString(p.Span),
		SisterSegments: sisters,
	})
}

// UnmarshalJSON decodes p from the shape produced by MarshalJSON.
func (p *Proof) UnmarshalJSON(data []byte) error {
	var pj proofJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	span, err := hex.DecodeString(pj.Span)
	if err != nil {
		return fmt.Errorf("file: decoding proof span: %w", err)
	}
	sisters := make([][]byte, len(pj.SisterSegments))
	for i, s := range pj.SisterSegments {
		seg, err := hex.DecodeString(s)
		if err != nil {
			return fmt.Errorf("file: decoding proof sister segment %d: %w", i, err)
		}
		sisters[i] = seg
	}
	p.Span = span
	p.SisterSegments = sisters
	return nil
}

// InclusionProof returns the ordered sequence of per-chunk proof records
// sufficient to recompute f's file address from the single payload
// segment at segmentIndex, via AddressFromInclusionProof.
//
// It walks f's already-built levels rather than re-deriving carrier
// placement: PositionOfSegment locates the (possibly carrier-promoted) leaf
// chunk once, and from there a chunk's parent is always at chunkIndex/fanout
// in the next level, regardless of any carrier folded into either level.
func InclusionProof(f *ChunkedFile, segmentIndex int) ([]Proof, error) {
	total := f.SpanValue()
	if segmentIndex < 0 || int64(segmentIndex)*bmt.SegmentSize >= total {
		return nil, fmt.Errorf("%w: %d", ErrSegmentIndexOutOfRange, segmentIndex)
	}

	fanout := f.opts.Fanout()
	pos := PositionOfSegment(int64(segmentIndex), total, f.opts.MaxPayloadSize)

	levels := f.levels
	level := pos.Level
	index := pos.ChunkIndex
	within := segmentIndex % fanout

	var out []Proof
	for {
		proof, err := levels[level][index].InclusionProof(within)
		if err != nil {
			return nil, err
		}
		out = append(out, Proof{Span: proof.Span, SisterSegments: proof.SisterSegments})

		if level == len(levels)-1 {
			return out, nil
		}
		within = index % fanout
		index = index / fanout
		level++
	}
}

// AddressFromInclusionProof recomputes a file address from proof, the
// claimed leaf segment proveSegment, and its global index
// proveSegmentIndex. It uses the position resolver rather than naive
// index-halving at each step, since carrier promotion can make a chunk's
// position in its parent diverge from the naive index/2^depth rule.
func AddressFromInclusionProof(proof []Proof, proveSegment []byte, proveSegmentIndex int, opts ...bmt.Option) ([]byte, error) {
	if len(proof) == 0 {
		return nil, errors.New("file: empty inclusion proof")
	}
	o, err := bmt.NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	total, err := bmt.DecodeSpan(proof[len(proof)-1].Span)
	if err != nil {
		return nil, err
	}

	h := make([]byte, len(proveSegment))
	copy(h, proveSegment)
	segIdx := int64(proveSegmentIndex)

	for _, record := range proof {
		pos := PositionOfSegment(segIdx, total, o.MaxPayloadSize)

		idx := segIdx
		for _, sister := range record.SisterSegments {
			if idx%2 == 0 {
				h = o.HashFunc(h, sister)
			} else {
				h = o.HashFunc(sister, h)
			}
			idx >>= 1
		}

		h = o.HashFunc(record.Span, h)
		segIdx = int64(pos.ChunkIndex)
	}

	return h, nil
}

// VerifyInclusionProof recomputes a file address from proof and checks it
// against expectedAddress.
func VerifyInclusionProof(proof []Proof, proveSegment []byte, proveSegmentIndex int, expectedAddress []byte, opts ...bmt.Option) (bool, error) {
	got, err := AddressFromInclusionProof(proof, proveSegment, proveSegmentIndex, opts...)
	if err != nil {
		return false, err
	}
	return bytes.Equal(got, expectedAddress), nil
}
