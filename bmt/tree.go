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

import "golang.org/x/sync/errgroup"

// level is one row of a chunk's in-memory BMT: a list of fixed-size
// segments, leaves first. The last level of a built tree always holds
// exactly one segment, the BMT root.
type level [][]byte

// concurrencyThreshold is the minimum number of sibling pairs in a level
// before hashing them is worth farming out to goroutines. Below it, the
// goroutine scheduling overhead costs more than the serial work it would
// save.
const concurrencyThreshold = 16

// buildTree computes the full in-chunk BMT over data, which must already be
// padded to a power-of-two multiple of SegmentSize. It returns every level,
// leaves first, the final level holding the single 32-byte root.
func buildTree(data []byte, hash HashFunc) ([]level, error) {
	segCount := len(data) / SegmentSize
	leaves := make(level, segCount)
	for i := 0; i < segCount; i++ {
		leaves[i] = data[i*SegmentSize : (i+1)*SegmentSize]
	}

	levels := make([]level, 0, 1)
	levels = append(levels, leaves)

	cur := leaves
	for len(cur) > 1 {
		next, err := hashLevel(cur, hash)
		if err != nil {
			return nil, err
		}
		levels = append(levels, next)
		cur = next
	}
	return levels, nil
}

// hashLevel produces the parent level of cur: the j-th segment of the
// result is H(cur[2j] || cur[2j+1]).
func hashLevel(cur level, hash HashFunc) (level, error) {
	next := make(level, len(cur)/2)
	if len(next) < concurrencyThreshold {
		for j := range next {
			digest := hash(cur[2*j], cur[2*j+1])
			if err := validateDigest(digest); err != nil {
				return nil, err
			}
			next[j] = digest
		}
		return next, nil
	}

	var g errgroup.Group
	for j := range next {
		j := j
		g.Go(func() error {
			digest := hash(cur[2*j], cur[2*j+1])
			if err := validateDigest(digest); err != nil {
				return err
			}
			next[j] = digest
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return next, nil
}

// inclusionProofSegments walks levels from the leaves to (but excluding)
// the root, collecting the sister of segmentIndex at each level.
func inclusionProofSegments(levels []level, segmentIndex int) [][]byte {
	sisters := make([][]byte, 0, len(levels)-1)
	idx := segmentIndex
	for l := 0; l < len(levels)-1; l++ {
		sisterIdx := idx + 1
		if idx%2 != 0 {
			sisterIdx = idx - 1
		}
		sister := make([]byte, SegmentSize)
		copy(sister, levels[l][sisterIdx])
		sisters = append(sisters, sister)
		idx >>= 1
	}
	return sisters
}

// RootFromProof reconstructs a chunk's BMT root from a within-chunk
// inclusion proof: the sister segments produced by Chunk.InclusionProof,
// the claimed leaf segment, and its index. It does not reconstruct the
// chunk address; combine the result with the proof's span to do that.
func RootFromProof(sisterSegments [][]byte, proveSegment []byte, proveIndex int, opts ...Option) ([]byte, error) {
	o, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}
	h := make([]byte, len(proveSegment))
	copy(h, proveSegment)
	idx := proveIndex
	for _, sister := range sisterSegments {
		if idx%2 == 0 {
			h = o.HashFunc(h, sister)
		} else {
			h = o.HashFunc(sister, h)
		}
		if err := validateDigest(h); err != nil {
			return nil, err
		}
		idx >>= 1
	}
	return h, nil
}
