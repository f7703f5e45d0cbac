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

//go:build purego || !amd64

package keycmp

// Accelerated reports whether the hardware block compare is available. It is
// never available in purego builds or on architectures other than amd64.
func Accelerated() bool { return false }

func equalBlocks(a, b []byte) bool {
	return equalBlocksGeneric(a, b)
}
