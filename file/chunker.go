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

// Package file builds the multi-level chunk tree over an arbitrary-length
// payload on top of package bmt's per-chunk hashing, including the
// "carrier chunk" promotion rule that keeps file addresses well-defined for
// payload sizes that don't evenly fill the configured fanout, and the
// proofs that let a verifier recompute a file address from a single
// payload segment.
package file

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"

	"github.com/ethersphere/go-bmt/bmt"
)

// errEmptyLevel indicates a level-construction call with no chunks: an
// internal invariant violation rather than a caller input error, since
// every public entrypoint guarantees at least one chunk per level.
var errEmptyLevel = errors.New("file: level construction called with no chunks")

// concurrencyThreshold plays the same role as package bmt's: below this
// many leaf windows or parent groups in a level, parallel hashing isn't
// worth the goroutine overhead.
const concurrencyThreshold = 8

// SplitLeaves partitions payload into contiguous MaxPayloadSize windows,
// each becoming a leaf chunk whose span is the window's byte length. An
// empty payload yields exactly one empty leaf chunk.
func SplitLeaves(payload []byte, opts ...bmt.Option) ([]*bmt.Chunk, error) {
	o, err := bmt.NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	if len(payload) == 0 {
		c, err := bmt.NewChunk(nil, opts...)
		if err != nil {
			return nil, err
		}
		return []*bmt.Chunk{c}, nil
	}

	windowCount := (len(payload) + o.MaxPayloadSize - 1) / o.MaxPayloadSize
	leaves := make([]*bmt.Chunk, windowCount)

	buildOne := func(i int) error {
		start := i * o.MaxPayloadSize
		end := start + o.MaxPayloadSize
		if end > len(payload) {
			end = len(payload)
		}
		c, err := bmt.NewChunk(payload[start:end], opts...)
		if err != nil {
			return err
		}
		leaves[i] = c
		return nil
	}

	if windowCount < concurrencyThreshold {
		for i := 0; i < windowCount; i++ {
			if err := buildOne(i); err != nil {
				return nil, err
			}
		}
		return leaves, nil
	}

	var g errgroup.Group
	for i := 0; i < windowCount; i++ {
		i := i
		g.Go(func() error { return buildOne(i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return leaves, nil
}

// popCarrier applies the carrier-pop rule to level: if level has more than
// one chunk and its count is congruent to 1 mod fanout, the rightmost
// chunk is removed and returned separately as the carrier.
func popCarrier(lvl []*bmt.Chunk, fanout int) (rest []*bmt.Chunk, carrier *bmt.Chunk) {
	if len(lvl) > 1 && len(lvl)%fanout == 1 {
		return lvl[:len(lvl)-1], lvl[len(lvl)-1]
	}
	return lvl, nil
}

// nextLevel groups lvl into parent chunks of up to fanout children each,
// then resolves carrier placement: an input carrier is merged into the new
// level if that level's own count isn't already a multiple of fanout,
// otherwise it propagates unchanged; with no input carrier, the new level
// is itself checked for a carrier to pop.
func nextLevel(lvl []*bmt.Chunk, carrier *bmt.Chunk, fanout int, opts ...bmt.Option) (next []*bmt.Chunk, nextCarrier *bmt.Chunk, err error) {
	if len(lvl) == 0 {
		return nil, nil, errEmptyLevel
	}

	groupCount := (len(lvl) + fanout - 1) / fanout
	next = make([]*bmt.Chunk, groupCount)

	buildGroup := func(i int) error {
		start := i * fanout
		end := start + fanout
		if end > len(lvl) {
			end = len(lvl)
		}
		group := lvl[start:end]

		payload := make([]byte, 0, len(group)*bmt.SegmentSize)
		var spanSum int64
		for _, c := range group {
			payload = append(payload, c.Address()...)
			spanSum += c.SpanValue()
		}

		parentOpts := make([]bmt.Option, 0, len(opts)+1)
		parentOpts = append(parentOpts, opts...)
		parentOpts = append(parentOpts, bmt.WithStartingSpanValue(spanSum))

		parent, err := bmt.NewChunk(payload, parentOpts...)
		if err != nil {
			return fmt.Errorf("file: building parent chunk %d: %w", i, err)
		}
		next[i] = parent
		return nil
	}

	if groupCount < concurrencyThreshold {
		for i := 0; i < groupCount; i++ {
			if err := buildGroup(i); err != nil {
				return nil, nil, err
			}
		}
	} else {
		var g errgroup.Group
		for i := 0; i < groupCount; i++ {
			i := i
			g.Go(func() error { return buildGroup(i) })
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	}

	if carrier != nil {
		if len(next)%fanout != 0 {
			next = append(next, carrier)
			nextCarrier = nil
		} else {
			nextCarrier = carrier
		}
		return next, nextCarrier, nil
	}

	next, nextCarrier = popCarrier(next, fanout)
	return next, nextCarrier, nil
}

// RootChunk folds leaves up to a single root chunk, handling carrier
// promotion across as many levels as needed. The root's address is the
// file address; its span equals the total payload length.
func RootChunk(leaves []*bmt.Chunk, opts ...bmt.Option) (*bmt.Chunk, error) {
	o, err := bmt.NewOptions(opts...)
	if err != nil {
		return nil, err
	}
	fanout := o.Fanout()

	lvl, carrier := popCarrier(leaves, fanout)
	for len(lvl) != 1 || carrier != nil {
		lvl, carrier, err = nextLevel(lvl, carrier, fanout, opts...)
		if err != nil {
			return nil, err
		}
	}
	return lvl[0], nil
}

// BMTTree folds leaves up to a single root chunk like RootChunk, but
// records every intermediate level (after that level's own carrier
// resolution) into the returned slice, leaves first, the final entry
// holding exactly one chunk: the root.
func BMTTree(leaves []*bmt.Chunk, opts ...bmt.Option) ([][]*bmt.Chunk, error) {
	o, err := bmt.NewOptions(opts...)
	if err != nil {
		return nil, err
	}
	fanout := o.Fanout()

	lvl, carrier := popCarrier(leaves, fanout)
	levels := [][]*bmt.Chunk{lvl}

	for len(lvl) != 1 || carrier != nil {
		lvl, carrier, err = nextLevel(lvl, carrier, fanout, opts...)
		if err != nil {
			return nil, err
		}
		levels = append(levels, lvl)
	}

	log.Debug("file: built chunk tree", "leaves", len(leaves), "levels", len(levels))
	return levels, nil
}
