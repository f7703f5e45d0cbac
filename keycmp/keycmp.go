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

// Package keycmp implements equality tests over byte string keys.
//
// Two comparators are provided. Bytewise has no layout requirement. Aligned
// compares keys one 32-byte block at a time and requires every key to follow
// the aligned key layout:
//
//   - the first byte of the key is at an address that is a multiple of
//     BlockSize,
//   - the slice capacity extends at least to PaddedLen(len(key)), i.e. the
//     implicit terminator and the padding up to the next block boundary are
//     addressable.
//
// Bytes past the end of the key are never significant: two keys with the same
// contents compare equal whatever their padding holds. Calling Aligned.Equal
// on keys that do not follow the layout is undefined; callers that cannot
// guarantee the layout check it with IsAligned first.
package keycmp

import (
	"bytes"
	"unsafe"
)

// BlockSize is the alignment boundary and block width of the Aligned
// comparator.
const BlockSize = 32

// Comparator reports whether two keys are equal.
type Comparator interface {
	Equal(a, b []byte) bool
	// Alignment returns the address boundary the comparator requires of its
	// keys. A value of 1 means no requirement.
	Alignment() int
}

// Bytewise compares keys byte by byte. It is always available.
type Bytewise struct{}

var _ Comparator = Bytewise{}

// Equal implements Comparator.
func (Bytewise) Equal(a, b []byte) bool { return bytes.Equal(a, b) }

// Alignment implements Comparator.
func (Bytewise) Alignment() int { return 1 }

func (Bytewise) String() string { return "bytewise" }

// Aligned compares keys in BlockSize blocks. It uses the AVX2 backend when
// Accelerated reports true, and an equivalent portable loop otherwise.
type Aligned struct{}

var _ Comparator = Aligned{}

// Equal implements Comparator.
func (Aligned) Equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return equalBlocks(a, b)
}

// Alignment implements Comparator.
func (Aligned) Alignment() int { return BlockSize }

func (Aligned) String() string { return "aligned" }

// Default returns Aligned when the hardware backend is available and Bytewise
// otherwise.
func Default() Comparator {
	if Accelerated() {
		return Aligned{}
	}
	return Bytewise{}
}

// PaddedLen returns the number of addressable bytes an aligned key of length
// n occupies: the key, its terminator and the zero padding up to the next
// block boundary.
func PaddedLen(n int) int {
	return (n + BlockSize) &^ (BlockSize - 1)
}

// IsAligned reports whether key follows the aligned key layout for the given
// boundary. A boundary of 1 or less accepts any non-nil key.
func IsAligned(key []byte, boundary int) bool {
	if key == nil {
		return false
	}
	if boundary <= 1 {
		return true
	}
	p := uintptr(unsafe.Pointer(unsafe.SliceData(key)))
	if p%uintptr(boundary) != 0 {
		return false
	}
	padded := (len(key) + boundary) / boundary * boundary
	return cap(key) >= padded
}

// Lookup returns the comparator with the given name.
func Lookup(name string) (Comparator, bool) {
	switch name {
	case "bytewise":
		return Bytewise{}, true
	case "aligned":
		return Aligned{}, true
	case "default":
		return Default(), true
	}
	return nil, false
}
