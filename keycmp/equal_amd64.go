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

//go:build !purego

package keycmp

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

var hasAVX2 = cpu.X86.HasAVX2

// Accelerated reports whether the AVX2 block compare is available.
func Accelerated() bool { return hasAVX2 }

// equalAVX2 compares n bytes at a and b one 32-byte block at a time. Both
// pointers must be 32-byte aligned, and when n is not a multiple of 32 the
// final block must be fully addressable. Lanes past n are ignored.
//
//go:noescape
func equalAVX2(a, b *byte, n int) bool

func equalBlocks(a, b []byte) bool {
	if !hasAVX2 {
		return equalBlocksGeneric(a, b)
	}
	return equalAVX2(unsafe.SliceData(a), unsafe.SliceData(b), len(a))
}
