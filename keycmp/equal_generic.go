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

package keycmp

import "encoding/binary"

// equalBlocksGeneric is the portable version of the block compare. It walks
// the padded key eight bytes at a time and masks out the bytes of the last
// word that lie past the end of the key. len(a) == len(b) is assumed.
func equalBlocksGeneric(a, b []byte) bool {
	n := len(a)
	if n == 0 {
		return true
	}
	// The layout guarantees PaddedLen(n) addressable bytes; reslicing past
	// len panics rather than reading out of bounds if it was violated.
	end := (n + 7) &^ 7
	a, b = a[:end], b[:end]
	for i := 0; i < end; i += 8 {
		x := binary.LittleEndian.Uint64(a[i:]) ^ binary.LittleEndian.Uint64(b[i:])
		if rem := n - i; rem < 8 {
			x &= 1<<(8*uint(rem)) - 1
		}
		if x != 0 {
			return false
		}
	}
	return true
}
