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

package chainmap

import (
	"unsafe"

	"github.com/cockroachdb/chainmap/keycmp"
	"github.com/cockroachdb/errors"
)

// Verify checks the structure of the table and returns the first violation
// found, in this order: the bucket array is missing (ErrBuffer), the bucket
// count is zero (ErrBufferSize), a node in some chain has no key
// (ErrPoisonedEntry), or, when the alignment guard is enabled, a node's key
// does not follow the comparator's layout (ErrAlignment). With the guard off
// key layout is not checked at all, even for a comparator that requires it.
//
// Any table built purely through Insert and Remove passes Verify. Enable
// WithVerification to run it around every operation.
func (t *Table[V]) Verify() error {
	if t == nil {
		return errors.Wrap(ErrInvalidArgument, "verify of nil table")
	}
	if t.buckets == nil {
		return ErrBuffer
	}
	if t.bucketCount == 0 || t.bucketCount > len(t.buckets) {
		return errors.Wrapf(ErrBufferSize, "bucket count %d, bucket array of %d", t.bucketCount, len(t.buckets))
	}

	align := 1
	if t.guard && t.cmp != nil {
		align = t.cmp.Alignment()
	}
	for i, n := range t.buckets[:t.bucketCount] {
		for j := 0; n != nil; n, j = n.next, j+1 {
			if n.key == nil {
				return errors.Wrapf(ErrPoisonedEntry, "bucket %d, node %d has no key", i, j)
			}
			if align > 1 && !keycmp.IsAligned(n.key, align) {
				return errors.Wrapf(ErrAlignment, "bucket %d, node %d: key %q at %p is not laid out on a %d-byte boundary",
					i, j, n.key, unsafe.SliceData(n.key), align)
			}
		}
	}
	return nil
}
