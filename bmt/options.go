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
)

const (
	// SegmentSize is the width, in bytes, of one segment: the unit of BMT
	// hashing and the digest size of the configured HashFunc.
	SegmentSize = 32

	// DefaultMaxPayloadSize is the default chunk payload capacity, matching
	// the Swarm reference chunk size.
	DefaultMaxPayloadSize = 4096
)

// ErrInvalidMaxPayloadSize is returned when MaxPayloadSize is not a
// power-of-two multiple of SegmentSize.
var ErrInvalidMaxPayloadSize = errors.New("bmt: max payload size must be a power-of-two multiple of segment size")

// ErrInvalidSpanLength is returned when SpanLength is smaller than
// MinSpanLength.
var ErrInvalidSpanLength = errors.New("bmt: span length too small")

// Options configures chunk and tree construction. The zero value is not
// directly usable; obtain one through NewOptions or pass Option values to
// a constructor such as NewChunk.
type Options struct {
	MaxPayloadSize    int
	SpanLength        int
	StartingSpanValue *int64
	HashFunc          HashFunc
}

// Option mutates an Options value under construction.
type Option func(*Options)

// WithMaxPayloadSize overrides the chunk payload capacity. Must be a
// power-of-two multiple of SegmentSize.
func WithMaxPayloadSize(n int) Option {
	return func(o *Options) { o.MaxPayloadSize = n }
}

// WithSpanLength overrides the span encoding width in bytes. Must be at
// least MinSpanLength.
func WithSpanLength(n int) Option {
	return func(o *Options) { o.SpanLength = n }
}

// WithStartingSpanValue overrides the span value recorded for a chunk
// instead of deriving it from the payload length. Used internally when
// building parent chunks, whose span must aggregate the covered subtree's
// payload size rather than the byte length of the address list they carry.
func WithStartingSpanValue(v int64) Option {
	return func(o *Options) { o.StartingSpanValue = &v }
}

// WithHashFunc overrides the 32-byte hash function used throughout chunk,
// tree and proof construction. The default is KeccakHasher.
func WithHashFunc(fn HashFunc) Option {
	return func(o *Options) { o.HashFunc = fn }
}

func defaultOptions() Options {
	return Options{
		MaxPayloadSize: DefaultMaxPayloadSize,
		SpanLength:     DefaultSpanLength,
		HashFunc:       KeccakHasher,
	}
}

// NewOptions resolves a set of Option values into a validated Options
// struct. Exported so the file package can share option parsing with bmt
// without duplicating defaulting/validation logic.
func NewOptions(opts ...Option) (Options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

func (o Options) validate() error {
	if o.MaxPayloadSize <= 0 || o.MaxPayloadSize%SegmentSize != 0 || !isPowerOfTwo(o.MaxPayloadSize/SegmentSize) {
		return fmt.Errorf("%w: %d", ErrInvalidMaxPayloadSize, o.MaxPayloadSize)
	}
	if o.SpanLength < MinSpanLength {
		return fmt.Errorf("%w: %d", ErrInvalidSpanLength, o.SpanLength)
	}
	if o.HashFunc == nil {
		return errors.New("bmt: hash function must not be nil")
	}
	return nil
}

// Fanout is the number of child segments (leaf level) or child addresses
// (intermediate chunks) packed under one chunk: MaxPayloadSize / SegmentSize.
func (o Options) Fanout() int {
	return o.MaxPayloadSize / SegmentSize
}

// Depth is the number of levels in one chunk's BMT, leaves through root:
// log2(MaxPayloadSize/SegmentSize) + 1.
func (o Options) Depth() int {
	d := 0
	for f := o.Fanout(); f > 1; f >>= 1 {
		d++
	}
	return d + 1
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
