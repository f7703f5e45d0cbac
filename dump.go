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
	"bufio"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
)

// Dump writes a human readable rendering of the table to w: its identity,
// bucket count and entry count, then one line per bucket listing its chain as
// (key, value) pairs from head to tail. The format is meant for debugging
// and carries no stability guarantee. Dump refuses to render a table that
// fails Verify.
func (t *Table[V]) Dump(w io.Writer) error {
	if err := t.Verify(); err != nil {
		return errors.Wrap(err, "dump")
	}

	name := t.name
	if name == "" {
		name = fmt.Sprintf("%p", t)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Hash Table [%s]\n", name)
	fmt.Fprintf(bw, "Bucket count: %d\n", t.bucketCount)
	fmt.Fprintf(bw, "Entries: %d\n", t.used)
	fmt.Fprintf(bw, "Buckets:\n")
	for i, head := range t.buckets {
		fmt.Fprintf(bw, "  %5d:", i)
		for n := head; n != nil; n = n.next {
			if n != head {
				bw.WriteString(" ->")
			}
			bw.WriteString(" (")
			t.writeKey(bw, n.key)
			bw.WriteString(", ")
			t.writeValue(bw, n.value)
			bw.WriteByte(')')
		}
		bw.WriteByte('\n')
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

func (t *Table[V]) writeKey(w io.Writer, key []byte) {
	if t.formatKey != nil {
		t.formatKey(w, key)
		return
	}
	w.Write(key)
}

func (t *Table[V]) writeValue(w io.Writer, value V) {
	if t.formatValue != nil {
		t.formatValue(w, value)
		return
	}
	fmt.Fprint(w, value)
}
