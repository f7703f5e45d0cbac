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

import "github.com/cockroachdb/errors"

// Errors returned by Table operations. Operations wrap them with context;
// test for them with errors.Is.
var (
	// ErrInvalidArgument is returned for a nil table or key, a nil strategy
	// or comparator, a non-positive bucket count or an out of range bucket
	// index.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAllocationFailure is returned when the allocator could not provide
	// the bucket array or a chain node. The table is left unchanged.
	ErrAllocationFailure = errors.New("allocation failure")
	// ErrBuffer is returned when the table has no bucket array, which is the
	// case after Close.
	ErrBuffer = errors.New("table has no bucket array")
	// ErrBufferSize is returned when the table's bucket count is zero or
	// exceeds its bucket array.
	ErrBufferSize = errors.New("invalid bucket count")
	// ErrAlignment is returned when a key does not follow the layout the
	// comparator requires.
	ErrAlignment = errors.New("key violates alignment contract")
	// ErrPoisonedEntry is returned by Verify when a chain holds a node
	// without a key.
	ErrPoisonedEntry = errors.New("poisoned entry")
	// ErrKeyNotFound is the ordinary negative result of Find. It is returned
	// unwrapped.
	ErrKeyNotFound = errors.New("key not found")
)
