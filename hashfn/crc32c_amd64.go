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

package hashfn

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Accelerated reports whether CRC32C uses the CRC32Q assembly backend.
func Accelerated() bool { return cpu.X86.HasSSE42 }

// crc32cWords folds n 8-byte words starting at p into crc.
//
//go:noescape
func crc32cWords(crc uint32, p *byte, n int) uint32

func updateAsm(crc uint32, p []byte) uint32 {
	if len(p) == 0 {
		return crc
	}
	return crc32cWords(crc, unsafe.SliceData(p), len(p)/8)
}
