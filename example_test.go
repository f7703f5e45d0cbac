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

package chainmap_test

import (
	"fmt"
	"os"

	"github.com/cockroachdb/chainmap"
	"github.com/cockroachdb/chainmap/hashfn"
	"github.com/cockroachdb/chainmap/internal/arena"
	"github.com/cockroachdb/chainmap/keycmp"
)

func Example() {
	t, err := chainmap.New[int](16, hashfn.DJB{},
		chainmap.WithComparator[int](keycmp.Default()),
		chainmap.WithAlignmentGuard[int](true),
		chainmap.WithName[int]("demo"))
	if err != nil {
		panic(err)
	}
	defer t.Close()

	// Keys are borrowed: the arena keeps them alive and aligned for as long
	// as the table references them.
	a := arena.New(0)
	for i, word := range []string{"a", "b", "ab", "hello", "a"} {
		if err := t.Insert(a.CopyString(word), i); err != nil {
			panic(err)
		}
	}

	v, err := t.Find(a.CopyString("a"))
	fmt.Println(v, err)
	_, err = t.Find(a.CopyString("absent"))
	fmt.Println(err)
	fmt.Println()

	if err := t.Dump(os.Stdout); err != nil {
		panic(err)
	}
	// Output:
	// 4 <nil>
	// key not found
	//
	// Hash Table [demo]
	// Bucket count: 16
	// Entries: 4
	// Buckets:
	//       0:
	//       1:
	//       2:
	//       3:
	//       4:
	//       5:
	//       6: (a, 4)
	//       7: (b, 1)
	//       8: (ab, 2)
	//       9: (hello, 3)
	//      10:
	//      11:
	//      12:
	//      13:
	//      14:
	//      15:
}
