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

// Package chainmap is a fixed-bucket, separate-chaining hash table keyed by
// byte strings.
//
// The table is built both as a key/value store and as an instrument for
// studying hash functions: the hash strategy and the key comparator are
// chosen at construction, and the per-bucket chain lengths are exposed so
// that the distribution a strategy produces over a key set can be measured.
//
// # Layout
//
// A Table owns one array of bucket heads, allocated when the table is created
// and never resized. Each bucket heads a singly linked chain of nodes. New
// keys are spliced at the head of their chain, so a chain lists its entries
// most recently inserted first. Inserting a key that is already present
// overwrites its value in place; a chain never holds two equal keys.
//
// # Keys
//
// Keys are borrowed, not copied: a node aliases the slice passed to Insert.
// The caller must keep the bytes alive and unmodified while the key is in the
// table. When the table uses keycmp.Aligned the keys must also follow the
// aligned key layout described in package keycmp; WithAlignmentGuard turns
// violations into ErrAlignment instead of undefined behavior.
package chainmap

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/cockroachdb/chainmap/hashfn"
	"github.com/cockroachdb/chainmap/keycmp"
	"github.com/cockroachdb/errors"
)

const debug = false

// Node is one entry of a chain. Nodes are created and released through the
// table's Allocator; their fields are private to the table.
type Node[V any] struct {
	key   []byte
	value V
	next  *Node[V]
}

// Table is a hash table from byte string keys to values of type V with
// Insert, Find and Remove operations. The number of buckets is fixed when
// the table is created.
//
// A Table is NOT goroutine-safe.
type Table[V any] struct {
	// The hash strategy used to pick a bucket: hash(key) % bucketCount.
	hash hashfn.Strategy
	// The comparator used to scan chains.
	cmp keycmp.Comparator
	// The allocator for the bucket array and for nodes.
	allocator Allocator[V]
	// Options.
	guard       bool
	verify      bool
	name        string
	formatKey   func(w io.Writer, key []byte)
	formatValue func(w io.Writer, value V)
	// buckets holds the chain heads. It is nil once the table is closed.
	buckets     []*Node[V]
	bucketCount int
	// The number of entries across all chains.
	used int
}

// New constructs a table with bucketCount buckets that picks buckets with the
// given hash strategy. Both arguments are required.
func New[V any](
	bucketCount int, strategy hashfn.Strategy, options ...option[V],
) (*Table[V], error) {
	if bucketCount <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "bucket count must be positive, got %d", bucketCount)
	}
	if strategy == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "hash strategy is required")
	}

	t := &Table[V]{
		hash:      strategy,
		cmp:       keycmp.Bytewise{},
		allocator: defaultAllocator[V]{},
	}
	for _, op := range options {
		op.apply(t)
	}
	if t.cmp == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "comparator is required")
	}
	if t.allocator == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "allocator is required")
	}

	buckets := t.allocator.AllocBuckets(bucketCount)
	if len(buckets) < bucketCount {
		return nil, errors.Wrapf(ErrAllocationFailure, "allocating %d buckets", bucketCount)
	}
	buckets = buckets[:bucketCount]
	clear(buckets)
	t.buckets = buckets
	t.bucketCount = bucketCount

	if err := t.precondition("new"); err != nil {
		return nil, err
	}
	return t, nil
}

// Close releases every node and the bucket array back to the allocator and
// leaves the table in a closed state in which every operation fails with
// ErrBuffer. Close refuses to run on a table that fails Verify. Closing a
// closed table is a no-op.
func (t *Table[V]) Close() error {
	if t == nil {
		return errors.Wrap(ErrInvalidArgument, "close of nil table")
	}
	if t.buckets == nil {
		return nil
	}
	if err := t.Verify(); err != nil {
		return errors.Wrap(err, "close")
	}

	for i, n := range t.buckets {
		// Chains are released iteratively; a degenerate strategy can put
		// every entry in one chain.
		for n != nil {
			next := n.next
			*n = Node[V]{}
			t.allocator.FreeNode(n)
			n = next
		}
		t.buckets[i] = nil
	}
	t.allocator.FreeBuckets(t.buckets)

	t.buckets = nil
	t.bucketCount = 0
	t.used = 0
	t.hash = nil
	t.cmp = nil
	t.allocator = nil
	return nil
}

// Insert associates value with key, overwriting the value of an existing
// entry with an equal key. The table keeps a reference to key.
func (t *Table[V]) Insert(key []byte, value V) error {
	if err := t.checkKey(key); err != nil {
		return err
	}
	if err := t.precondition("insert"); err != nil {
		return err
	}

	b := t.bucket(key)
	if debug {
		fmt.Printf("insert(%q): bucket=%d len=%d\n", key, b, chainLen(t.buckets[b]))
	}

	for n := t.buckets[b]; n != nil; n = n.next {
		if t.cmp.Equal(key, n.key) {
			if debug {
				fmt.Printf("insert(updating): bucket=%d key=%q\n", b, key)
			}
			n.value = value
			return t.postcondition("insert")
		}
	}

	n := t.allocator.AllocNode()
	if n == nil {
		return errors.Wrapf(ErrAllocationFailure, "inserting %q", key)
	}
	*n = Node[V]{key: key, value: value, next: t.buckets[b]}
	t.buckets[b] = n
	t.used++
	return t.postcondition("insert")
}

// Find returns the value associated with key. It returns ErrKeyNotFound,
// unwrapped, if the table holds no equal key.
func (t *Table[V]) Find(key []byte) (value V, _ error) {
	if err := t.checkKey(key); err != nil {
		return value, err
	}
	if err := t.precondition("find"); err != nil {
		return value, err
	}

	b := t.bucket(key)
	if debug {
		fmt.Printf("find(%q): bucket=%d len=%d\n", key, b, chainLen(t.buckets[b]))
	}
	for n := t.buckets[b]; n != nil; n = n.next {
		if t.cmp.Equal(key, n.key) {
			return n.value, nil
		}
	}
	return value, ErrKeyNotFound
}

// Remove deletes the entry for key and returns its value. ok reports whether
// the key was present; removing an absent key is not an error.
func (t *Table[V]) Remove(key []byte) (old V, ok bool, _ error) {
	if err := t.checkKey(key); err != nil {
		return old, false, err
	}
	if err := t.precondition("remove"); err != nil {
		return old, false, err
	}

	b := t.bucket(key)
	var prev *Node[V]
	for n := t.buckets[b]; n != nil; prev, n = n, n.next {
		if !t.cmp.Equal(key, n.key) {
			continue
		}
		if debug {
			fmt.Printf("remove(%q): bucket=%d head=%t\n", key, b, prev == nil)
		}
		if prev == nil {
			t.buckets[b] = n.next
		} else {
			prev.next = n.next
		}
		old = n.value
		*n = Node[V]{}
		t.allocator.FreeNode(n)
		t.used--
		return old, true, t.postcondition("remove")
	}
	return old, false, nil
}

// Len returns the number of entries in the table.
func (t *Table[V]) Len() int {
	if t == nil {
		return 0
	}
	return t.used
}

// BucketCount returns the number of buckets, or 0 for a closed table.
func (t *Table[V]) BucketCount() int {
	if t == nil {
		return 0
	}
	return t.bucketCount
}

// Bucket returns the index of the bucket key hashes to.
func (t *Table[V]) Bucket(key []byte) (int, error) {
	if err := t.checkKey(key); err != nil {
		return 0, err
	}
	return t.bucket(key), nil
}

// ChainLen returns the number of entries in the given bucket.
func (t *Table[V]) ChainLen(bucket int) (int, error) {
	if err := t.checkBucket(bucket); err != nil {
		return 0, err
	}
	return chainLen(t.buckets[bucket]), nil
}

// Chain calls yield for each entry of the given bucket, most recently
// inserted first. If yield returns false, iteration stops. The table must not
// be mutated during iteration.
func (t *Table[V]) Chain(bucket int, yield func(key []byte, value V) bool) error {
	if err := t.checkBucket(bucket); err != nil {
		return err
	}
	for n := t.buckets[bucket]; n != nil; n = n.next {
		if !yield(n.key, n.value) {
			break
		}
	}
	return nil
}

// All calls yield sequentially for each key and value present in the table,
// bucket by bucket. If yield returns false, iteration stops. The table must
// not be mutated during iteration.
func (t *Table[V]) All(yield func(key []byte, value V) bool) {
	if t == nil {
		return
	}
	for _, n := range t.buckets {
		for ; n != nil; n = n.next {
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}

// bucket returns the bucket index for key. The table must be live.
func (t *Table[V]) bucket(key []byte) int {
	return int(t.hash.Sum64(key) % uint64(t.bucketCount))
}

// checkLive verifies the table has the structure every operation relies on.
func (t *Table[V]) checkLive() error {
	switch {
	case t == nil:
		return errors.Wrap(ErrInvalidArgument, "nil table")
	case t.buckets == nil:
		return ErrBuffer
	case t.bucketCount == 0 || t.bucketCount > len(t.buckets):
		return errors.Wrapf(ErrBufferSize, "bucket count %d, bucket array of %d", t.bucketCount, len(t.buckets))
	}
	return nil
}

func (t *Table[V]) checkKey(key []byte) error {
	if err := t.checkLive(); err != nil {
		return err
	}
	if key == nil {
		return errors.Wrap(ErrInvalidArgument, "nil key")
	}
	if t.guard {
		if align := t.cmp.Alignment(); !keycmp.IsAligned(key, align) {
			return errors.Wrapf(ErrAlignment, "key %q at %p (cap %d) is not laid out on a %d-byte boundary",
				key, unsafe.SliceData(key), cap(key), align)
		}
	}
	return nil
}

func (t *Table[V]) checkBucket(bucket int) error {
	if err := t.checkLive(); err != nil {
		return err
	}
	if bucket < 0 || bucket >= t.bucketCount {
		return errors.Wrapf(ErrInvalidArgument, "bucket %d out of range [0, %d)", bucket, t.bucketCount)
	}
	return nil
}

func (t *Table[V]) precondition(op string) error {
	if !t.verify {
		return nil
	}
	if err := t.Verify(); err != nil {
		return errors.Wrapf(err, "before %s", op)
	}
	return nil
}

func (t *Table[V]) postcondition(op string) error {
	if !t.verify {
		return nil
	}
	if err := t.Verify(); err != nil {
		return errors.Wrapf(err, "after %s", op)
	}
	return nil
}

// chainLen counts the nodes reachable from n.
func chainLen[V any](n *Node[V]) int {
	var count int
	for ; n != nil; n = n.next {
		count++
	}
	return count
}
