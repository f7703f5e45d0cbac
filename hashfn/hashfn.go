// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hashfn provides the hash strategies a chainmap.Table can be
// configured with. The strategies range from deliberately poor (Constant,
// FirstByte, Length) to hardware-assisted (CRC32C) so that their bucket
// distributions can be compared over the same key set.
//
// Every strategy is a pure function of the key bytes. Keys carry an implicit
// zero terminator; strategies that consume whole 8-byte words treat the bytes
// after the key as zero regardless of what the backing array holds.
package hashfn

import (
	"fmt"
	"math/bits"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/zeebo/xxh3"
)

// Strategy maps a key to a 64-bit hash value.
type Strategy interface {
	Sum64(key []byte) uint64
}

// Func adapts an ordinary function to the Strategy interface.
type Func func(key []byte) uint64

// Sum64 implements Strategy.
func (f Func) Sum64(key []byte) uint64 { return f(key) }

// Kind enumerates the built-in strategies.
type Kind int

const (
	KindConstant Kind = iota
	KindFirstByte
	KindLength
	KindByteSum
	KindRotateLeft
	KindRotateRight
	KindDJB
	KindCRC32C
	KindXXHash
	KindXXH3

	numKinds
)

var kindNames = [numKinds]string{
	KindConstant:    "constant",
	KindFirstByte:   "first-byte",
	KindLength:      "length",
	KindByteSum:     "byte-sum",
	KindRotateLeft:  "rol",
	KindRotateRight: "ror",
	KindDJB:         "djb",
	KindCRC32C:      "crc32c",
	KindXXHash:      "xxhash",
	KindXXH3:        "xxh3",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every built-in kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, numKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, errors.Newf("unknown hash strategy %q", name)
}

// New returns the strategy for kind k.
func New(k Kind) Strategy {
	switch k {
	case KindConstant:
		return Constant{}
	case KindFirstByte:
		return FirstByte{}
	case KindLength:
		return Length{}
	case KindByteSum:
		return ByteSum{}
	case KindRotateLeft:
		return RotateLeft{}
	case KindRotateRight:
		return RotateRight{}
	case KindDJB:
		return DJB{}
	case KindCRC32C:
		return CRC32C{}
	case KindXXHash:
		return XXHash{}
	case KindXXH3:
		return XXH3{}
	}
	panic(errors.AssertionFailedf("unknown hash strategy %d", int(k)))
}

// Constant hashes every key to 1. It places every key in the same bucket and
// exists to produce the worst case for chain scans. That bucket is
// 1 % bucketCount, i.e. bucket 1 in any table with more than one bucket.
type Constant struct{}

// Sum64 implements Strategy.
func (Constant) Sum64([]byte) uint64 { return 1 }

// FirstByte hashes a key to its first byte, or to the terminator (0) for the
// empty key.
type FirstByte struct{}

// Sum64 implements Strategy.
func (FirstByte) Sum64(key []byte) uint64 {
	if len(key) == 0 {
		return 0
	}
	return uint64(key[0])
}

// Length hashes a key to its length.
type Length struct{}

// Sum64 implements Strategy.
func (Length) Sum64(key []byte) uint64 { return uint64(len(key)) }

// ByteSum hashes a key to the sum of its bytes.
type ByteSum struct{}

// Sum64 implements Strategy.
func (ByteSum) Sum64(key []byte) uint64 {
	var sum uint64
	for _, c := range key {
		sum += uint64(c)
	}
	return sum
}

// RotateLeft rotates the accumulator left by one bit before adding each
// byte. A zero result is reported as 1.
type RotateLeft struct{}

// Sum64 implements Strategy.
func (RotateLeft) Sum64(key []byte) uint64 {
	var sum uint64
	for _, c := range key {
		sum = bits.RotateLeft64(sum, 1) + uint64(c)
	}
	if sum == 0 {
		return 1
	}
	return sum
}

// RotateRight rotates the accumulator right by one bit before adding each
// byte. A zero result is reported as 1.
type RotateRight struct{}

// Sum64 implements Strategy.
func (RotateRight) Sum64(key []byte) uint64 {
	var sum uint64
	for _, c := range key {
		sum = bits.RotateLeft64(sum, -1) + uint64(c)
	}
	if sum == 0 {
		return 1
	}
	return sum
}

// DJB is the classic multiplicative string hash: h = h*33 + c, seeded with
// 5381.
type DJB struct{}

// Sum64 implements Strategy.
func (DJB) Sum64(key []byte) uint64 {
	sum := uint64(5381)
	for _, c := range key {
		sum = sum*33 + uint64(c)
	}
	return sum
}

// XXHash hashes a key with xxHash64.
type XXHash struct{}

// Sum64 implements Strategy.
func (XXHash) Sum64(key []byte) uint64 { return xxhash.Sum64(key) }

// XXH3 hashes a key with the 64-bit XXH3 variant.
type XXH3 struct{}

// Sum64 implements Strategy.
func (XXH3) Sum64(key []byte) uint64 { return xxh3.Hash(key) }

func (Constant) String() string    { return KindConstant.String() }
func (FirstByte) String() string   { return KindFirstByte.String() }
func (Length) String() string      { return KindLength.String() }
func (ByteSum) String() string     { return KindByteSum.String() }
func (RotateLeft) String() string  { return KindRotateLeft.String() }
func (RotateRight) String() string { return KindRotateRight.String() }
func (DJB) String() string         { return KindDJB.String() }
func (CRC32C) String() string      { return KindCRC32C.String() }
func (XXHash) String() string      { return KindXXHash.String() }
func (XXH3) String() string        { return KindXXH3.String() }
