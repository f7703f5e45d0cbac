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

package hashfn

import "hash/crc32"

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C folds a key into a CRC-32C register one little-endian 8-byte word
// at a time, starting from a zero register and without the customary pre and
// post inversion. The last word processed is the one holding the key's
// terminator; the bytes after the terminator are taken as zero. The result
// matches what the SSE4.2 CRC32 instruction computes over a key stored in the
// aligned layout.
//
// Two backends compute the word fold: a hand-written amd64 loop around the
// CRC32Q instruction, used when Accelerated reports true, and a portable one
// built on hash/crc32. Both produce identical results for every input.
type CRC32C struct{}

// Sum64 implements Strategy.
func (CRC32C) Sum64(key []byte) uint64 {
	return uint64(crc32cKey(updateWords, key))
}

// wordsFunc folds len(p)/8 words of p into crc. len(p) is a multiple of 8.
type wordsFunc func(crc uint32, p []byte) uint32

func crc32cKey(update wordsFunc, key []byte) uint32 {
	n := len(key) &^ 7
	crc := update(0, key[:n])
	var last [8]byte
	copy(last[:], key[n:])
	return update(crc, last[:])
}

// updatePortable is the raw register update. hash/crc32 inverts the register
// on entry and exit, so both inversions are undone here.
func updatePortable(crc uint32, p []byte) uint32 {
	return ^crc32.Update(^crc, castagnoli, p)
}

var updateWords = func() wordsFunc {
	if Accelerated() {
		return updateAsm
	}
	return updatePortable
}()
