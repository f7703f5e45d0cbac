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
	"io"

	"github.com/cockroachdb/chainmap/keycmp"
)

// option provide an interface to do work on Table while it is being created.
type option[V any] interface {
	apply(t *Table[V])
}

type comparatorOption[V any] struct {
	cmp keycmp.Comparator
}

func (op comparatorOption[V]) apply(t *Table[V]) {
	t.cmp = op.cmp
}

// WithComparator is an option to specify the key comparator. The default is
// keycmp.Bytewise.
func WithComparator[V any](cmp keycmp.Comparator) option[V] {
	return comparatorOption[V]{cmp}
}

type alignmentGuardOption[V any] struct {
	enabled bool
}

func (op alignmentGuardOption[V]) apply(t *Table[V]) {
	t.guard = op.enabled
}

// WithAlignmentGuard is an option to check every key against the layout the
// comparator requires before it is hashed or compared. A key that fails the
// check is rejected with ErrAlignment. Without the guard, passing such a key
// to a table using keycmp.Aligned is undefined.
func WithAlignmentGuard[V any](enabled bool) option[V] {
	return alignmentGuardOption[V]{enabled}
}

type verificationOption[V any] struct {
	enabled bool
}

func (op verificationOption[V]) apply(t *Table[V]) {
	t.verify = op.enabled
}

// WithVerification is an option to run Verify around every operation: before
// and after Insert and Remove, and before Find.
func WithVerification[V any](enabled bool) option[V] {
	return verificationOption[V]{enabled}
}

type nameOption[V any] struct {
	name string
}

func (op nameOption[V]) apply(t *Table[V]) {
	t.name = op.name
}

// WithName is an option to set the identity Dump prints for the table. By
// default the table's address is printed.
func WithName[V any](name string) option[V] {
	return nameOption[V]{name}
}

type keyFormatterOption[V any] struct {
	format func(w io.Writer, key []byte)
}

func (op keyFormatterOption[V]) apply(t *Table[V]) {
	t.formatKey = op.format
}

// WithKeyFormatter is an option to control how Dump prints keys. By default
// keys are printed as text.
func WithKeyFormatter[V any](format func(w io.Writer, key []byte)) option[V] {
	return keyFormatterOption[V]{format}
}

type valueFormatterOption[V any] struct {
	format func(w io.Writer, value V)
}

func (op valueFormatterOption[V]) apply(t *Table[V]) {
	t.formatValue = op.format
}

// WithValueFormatter is an option to control how Dump prints values.
func WithValueFormatter[V any](format func(w io.Writer, value V)) option[V] {
	return valueFormatterOption[V]{format}
}

// Allocator specifies an interface for allocating and releasing the memory
// used by a Table: one bucket array for the lifetime of the table and one
// node per entry. The default allocator utilizes Go's builtin make() and new()
// and allows the GC to reclaim memory.
//
// A nil return from AllocBuckets or AllocNode reports an allocation failure.
// Every slice and node handed out is passed back to the matching Free method
// exactly once: nodes when their entry is removed or the table is closed, the
// bucket array when the table is closed.
type Allocator[V any] interface {
	// AllocBuckets should return a slice equivalent to make([]*Node[V], n).
	AllocBuckets(n int) []*Node[V]

	// FreeBuckets can optionally release the memory associated with a slice
	// returned by AllocBuckets.
	FreeBuckets(b []*Node[V])

	// AllocNode should return a node equivalent to new(Node[V]).
	AllocNode() *Node[V]

	// FreeNode can optionally release a node returned by AllocNode. The node
	// has been unlinked and cleared.
	FreeNode(n *Node[V])
}

type defaultAllocator[V any] struct{}

func (defaultAllocator[V]) AllocBuckets(n int) []*Node[V] {
	return make([]*Node[V], n)
}

func (defaultAllocator[V]) FreeBuckets(b []*Node[V]) {
}

func (defaultAllocator[V]) AllocNode() *Node[V] {
	return new(Node[V])
}

func (defaultAllocator[V]) FreeNode(n *Node[V]) {
}

type allocatorOption[V any] struct {
	allocator Allocator[V]
}

func (op allocatorOption[V]) apply(t *Table[V]) {
	t.allocator = op.allocator
}

// WithAllocator is an option for specify the Allocator to use for a Table[V].
func WithAllocator[V any](allocator Allocator[V]) option[V] {
	return allocatorOption[V]{allocator}
}
