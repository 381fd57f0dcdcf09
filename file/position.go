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

import "github.com/ethersphere/go-bmt/bmt"

// Position locates a payload segment within a built chunk tree: the level
// it terminates on (0 being the leaves) and its chunk index within that
// level.
type Position struct {
	Level      int
	ChunkIndex int
}

// PositionOfSegment maps a global payload segment index to its position in
// the tree a ChunkedFile of the given totalSpan and maxPayloadSize would
// produce, without simulating the build. This is the only place carrier
// placement is computed analytically rather than by running the builder,
// which is what lets verifiers check an inclusion proof without rebuilding
// the whole tree.
func PositionOfSegment(segmentIndex int64, totalSpan int64, maxPayloadSize int) Position {
	if maxPayloadSize <= 0 {
		maxPayloadSize = bmt.DefaultMaxPayloadSize
	}
	fanout := int64(maxPayloadSize / bmt.SegmentSize)
	logFanout := trailingZeros(fanout)

	saturatedBytes := totalSpan - (totalSpan % int64(maxPayloadSize))
	saturatedSegments := saturatedBytes / int64(bmt.SegmentSize)

	if segmentIndex >= saturatedSegments && segmentIndex < saturatedSegments+fanout {
		idx := segmentIndex
		level := 0
		for {
			idx >>= logFanout
			level++
			if idx%fanout != 0 {
				break
			}
		}
		level--
		return Position{Level: level, ChunkIndex: int(idx)}
	}

	return Position{Level: 0, ChunkIndex: int(segmentIndex >> logFanout)}
}

// trailingZeros returns log2(n) for a power-of-two n.
func trailingZeros(n int64) int {
	count := 0
	for n > 1 {
		n >>= 1
		count++
	}
	return count
}
