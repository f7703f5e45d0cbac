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

// Package arena hands out byte string keys laid out for the aligned
// comparator: every key starts on a keycmp.BlockSize boundary and is followed
// by a zero terminator and zero padding up to the next boundary.
package arena

import (
	"unsafe"

	"github.com/cockroachdb/chainmap/keycmp"
)

const defaultChunkSize = 64 << 10

// Arena allocates aligned keys out of large chunks. Keys returned by an Arena
// alias its chunks and stay valid for as long as the caller holds them; the
// arena itself never reuses memory.
type Arena struct {
	chunk     []byte
	chunkSize int
	n         int
}

// New returns an arena that carves keys out of chunks of at least chunkSize
// bytes. A chunkSize of zero selects a default.
func New(chunkSize int) *Arena {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Arena{chunkSize: keycmp.PaddedLen(chunkSize - 1)}
}

// Len returns the number of keys allocated so far.
func (a *Arena) Len() int { return a.n }

// Copy returns an aligned copy of word.
func (a *Arena) Copy(word []byte) []byte {
	key := a.Alloc(len(word))
	copy(key, word)
	return key
}

// CopyString returns an aligned copy of s.
func (a *Arena) CopyString(s string) []byte {
	key := a.Alloc(len(s))
	copy(key, s)
	return key
}

// Alloc returns a zeroed aligned key of length n. The returned slice has
// capacity keycmp.PaddedLen(n).
func (a *Arena) Alloc(n int) []byte {
	size := keycmp.PaddedLen(n)
	if len(a.chunk) < size {
		a.chunk = alignedBytes(max(size, a.chunkSize))
	}
	key := a.chunk[:n:size]
	a.chunk = a.chunk[size:]
	a.n++
	return key
}

// alignedBytes returns a zeroed slice of n bytes whose first byte sits on a
// keycmp.BlockSize boundary.
func alignedBytes(n int) []byte {
	buf := make([]byte, n+keycmp.BlockSize)
	off := 0
	if rem := int(uintptr(unsafe.Pointer(unsafe.SliceData(buf))) % keycmp.BlockSize); rem != 0 {
		off = keycmp.BlockSize - rem
	}
	return buf[off : off+n : off+n]
}

// Misaligned returns a copy of word that starts one byte past a block
// boundary. It exists to exercise alignment checks.
func Misaligned(word []byte) []byte {
	buf := alignedBytes(keycmp.PaddedLen(len(word) + 1))
	key := buf[1 : 1+len(word) : len(buf)]
	copy(key, word)
	return key
}
