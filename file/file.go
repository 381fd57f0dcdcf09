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
	"github.com/ethersphere/go-bmt/bmt"
	"github.com/ethersphere/go-bmt/swarmhex"
)

// ChunkedFile is the chunk tree built over an arbitrary-length payload: its
// leaf chunks, every intermediate level, and the root chunk whose address
// is the file address. Like bmt.Chunk it is immutable and safe for
// concurrent read-only use once constructed.
type ChunkedFile struct {
	opts   bmt.Options
	leaves []*bmt.Chunk
	levels [][]*bmt.Chunk
	root   *bmt.Chunk
}

// New splits payload into leaf chunks and folds them up into a root chunk,
// handling carrier-chunk promotion along the way. Any byte length,
// including zero, is accepted.
func New(payload []byte, opts ...bmt.Option) (*ChunkedFile, error) {
	o, err := bmt.NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	leaves, err := SplitLeaves(payload, opts...)
	if err != nil {
		return nil, err
	}

	levels, err := BMTTree(leaves, opts...)
	if err != nil {
		return nil, err
	}

	return &ChunkedFile{
		opts:   o,
		leaves: leaves,
		levels: levels,
		root:   levels[len(levels)-1][0],
	}, nil
}

// LeafChunks returns the file's leaf-level chunks, in payload order.
func (f *ChunkedFile) LeafChunks() []*bmt.Chunk {
	out := make([]*bmt.Chunk, len(f.leaves))
	copy(out, f.leaves)
	return out
}

// LeafCount returns the number of leaf chunks the payload was split into.
func (f *ChunkedFile) LeafCount() int {
	return len(f.leaves)
}

// RootChunk returns the file's root chunk.
func (f *ChunkedFile) RootChunk() *bmt.Chunk {
	return f.root
}

// Address returns the file address: the root chunk's address.
func (f *ChunkedFile) Address() []byte {
	return f.root.Address()
}

// HexAddress returns the file address as a swarmhex.Address, for callers
// that want a printable or JSON-able address instead of raw bytes.
func (f *ChunkedFile) HexAddress() (swarmhex.Address, error) {
	return f.root.HexAddress()
}

// Span returns the root chunk's span: the total payload length.
func (f *ChunkedFile) Span() []byte {
	return f.root.Span()
}

// SpanValue decodes and returns the total payload length.
func (f *ChunkedFile) SpanValue() int64 {
	return f.root.SpanValue()
}

// BMT returns every level of the file's chunk tree, leaves first, the
// final level holding exactly the root chunk.
func (f *ChunkedFile) BMT() [][]*bmt.Chunk {
	out := make([][]*bmt.Chunk, len(f.levels))
	for i, lvl := range f.levels {
		cp := make([]*bmt.Chunk, len(lvl))
		copy(cp, lvl)
		out[i] = cp
	}
	return out
}

// Depth returns the number of levels in the file's chunk tree.
func (f *ChunkedFile) Depth() int {
	return len(f.levels)
}
