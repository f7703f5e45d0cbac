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

// Package chainstat measures how evenly hash strategies spread a key set
// over the buckets of a chainmap.Table.
package chainstat

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cockroachdb/chainmap"
	"github.com/cockroachdb/chainmap/hashfn"
	"github.com/cockroachdb/chainmap/keycmp"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
)

// Result is the chain length distribution one strategy produced.
type Result struct {
	Strategy string
	// Keys is the number of distinct keys in the table.
	Keys int
	// Lengths holds the chain length of every bucket.
	Lengths []int
	// Empty is the number of buckets without entries.
	Empty  int
	Max    int
	Mean   float64
	StdDev float64
	P99    float64
}

// Config controls how the measured tables are built.
type Config struct {
	Buckets    int
	Comparator keycmp.Comparator
	Guard      bool
	Verify     bool
	// Allocator is optional.
	Allocator chainmap.Allocator[int]
}

func (c Config) table(strategy hashfn.Strategy) (*chainmap.Table[int], error) {
	cmp := c.Comparator
	if cmp == nil {
		cmp = keycmp.Bytewise{}
	}
	if c.Allocator != nil {
		return chainmap.New[int](c.Buckets, strategy,
			chainmap.WithComparator[int](cmp),
			chainmap.WithAlignmentGuard[int](c.Guard),
			chainmap.WithVerification[int](c.Verify),
			chainmap.WithAllocator[int](c.Allocator))
	}
	return chainmap.New[int](c.Buckets, strategy,
		chainmap.WithComparator[int](cmp),
		chainmap.WithAlignmentGuard[int](c.Guard),
		chainmap.WithVerification[int](c.Verify))
}

// Build constructs a table with the given strategy and inserts every key,
// mapping it to its index in keys. Repeated keys keep their last index.
func Build(cfg Config, strategy hashfn.Strategy, keys [][]byte) (*chainmap.Table[int], error) {
	t, err := cfg.table(strategy)
	if err != nil {
		return nil, err
	}
	for i, key := range keys {
		if err := t.Insert(key, i); err != nil {
			_ = t.Close()
			return nil, errors.Wrapf(err, "inserting key %d", i)
		}
	}
	return t, nil
}

// Measure builds a table over keys with the given strategy and summarises its
// chain lengths.
func Measure(cfg Config, name string, strategy hashfn.Strategy, keys [][]byte) (Result, error) {
	t, err := Build(cfg, strategy, keys)
	if err != nil {
		return Result{}, errors.Wrapf(err, "strategy %s", name)
	}
	defer func() { _ = t.Close() }()
	return Summarize(name, t)
}

// MeasureAll runs Measure for each kind over the same key set.
func MeasureAll(cfg Config, kinds []hashfn.Kind, keys [][]byte) ([]Result, error) {
	results := make([]Result, 0, len(kinds))
	for _, k := range kinds {
		r, err := Measure(cfg, k.String(), hashfn.New(k), keys)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// Summarize collects the chain length of every bucket of t.
func Summarize[V any](name string, t *chainmap.Table[V]) (Result, error) {
	r := Result{
		Strategy: name,
		Keys:     t.Len(),
		Lengths:  make([]int, t.BucketCount()),
	}
	for i := range r.Lengths {
		n, err := t.ChainLen(i)
		if err != nil {
			return Result{}, err
		}
		r.Lengths[i] = n
		if n == 0 {
			r.Empty++
		}
	}

	data := stats.LoadRawData(r.Lengths)
	var err error
	if r.Mean, err = stats.Mean(data); err != nil {
		return Result{}, errors.Wrap(err, "mean")
	}
	if r.StdDev, err = stats.StandardDeviation(data); err != nil {
		return Result{}, errors.Wrap(err, "standard deviation")
	}
	if r.P99, err = stats.Percentile(data, 99); err != nil {
		return Result{}, errors.Wrap(err, "percentile")
	}
	longest, err := stats.Max(data)
	if err != nil {
		return Result{}, errors.Wrap(err, "max")
	}
	r.Max = int(longest)
	return r, nil
}

// WriteTable renders a summary line per result.
func WriteTable(w io.Writer, results []Result) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeader([]string{"strategy", "keys", "buckets", "empty", "max", "mean", "stddev", "p99"})
	for _, r := range results {
		table.Append([]string{
			r.Strategy,
			humanize.Comma(int64(r.Keys)),
			humanize.Comma(int64(len(r.Lengths))),
			humanize.Comma(int64(r.Empty)),
			strconv.Itoa(r.Max),
			fmt.Sprintf("%.2f", r.Mean),
			fmt.Sprintf("%.2f", r.StdDev),
			fmt.Sprintf("%.0f", r.P99),
		})
	}
	table.Render()
}

// WriteCSV writes one row per bucket with the chain length each result
// recorded for it. All results must cover the same number of buckets.
func WriteCSV(w io.Writer, results []Result) error {
	if len(results) == 0 {
		return nil
	}
	buckets := len(results[0].Lengths)
	cw := csv.NewWriter(w)
	header := []string{"bucket"}
	for _, r := range results {
		if len(r.Lengths) != buckets {
			return errors.Newf("strategy %s has %d buckets, expected %d", r.Strategy, len(r.Lengths), buckets)
		}
		header = append(header, r.Strategy)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(results)+1)
	for i := 0; i < buckets; i++ {
		row[0] = strconv.Itoa(i)
		for j, r := range results {
			row[j+1] = strconv.Itoa(r.Lengths[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FindStats is the outcome of a lookup loop.
type FindStats struct {
	Iterations int
	Hits       int
	Elapsed    time.Duration
}

// PerOp returns the mean duration of a lookup.
func (s FindStats) PerOp() time.Duration {
	if s.Iterations == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Iterations)
}

// FindLoop performs iterations lookups, cycling through keys.
func FindLoop[V any](t *chainmap.Table[V], keys [][]byte, iterations int) (FindStats, error) {
	s := FindStats{Iterations: iterations}
	if len(keys) == 0 {
		return s, errors.New("no keys to look up")
	}
	start := time.Now()
	for i := 0; i < iterations; i++ {
		_, err := t.Find(keys[i%len(keys)])
		switch {
		case err == nil:
			s.Hits++
		case errors.Is(err, chainmap.ErrKeyNotFound):
		default:
			return s, err
		}
	}
	s.Elapsed = time.Since(start)
	return s, nil
}
