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

// chainstat converts text into word files and measures how hash strategies
// distribute the words over the buckets of a chainmap.Table.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/chainmap"
	"github.com/cockroachdb/chainmap/hashfn"
	"github.com/cockroachdb/chainmap/internal/arena"
	"github.com/cockroachdb/chainmap/internal/chainstat"
	"github.com/cockroachdb/chainmap/internal/wordfile"
	"github.com/cockroachdb/chainmap/keycmp"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var log = zap.NewNop()

var verbose bool

var tableFlags = pflag.NewFlagSet("table", pflag.ExitOnError)
var buckets = tableFlags.Int("buckets", 1009, "number of buckets in the table")
var comparatorName = tableFlags.String("comparator", "default",
	"key comparator: bytewise, aligned or default (aligned when AVX2 is available)")
var guard = tableFlags.Bool("guard", true, "check every key against the comparator's alignment contract")
var verify = tableFlags.Bool("verify", false, "verify the table around every operation")
var rawText = tableFlags.Bool("text", false,
	"read the input as plain text and tokenize it in memory instead of mapping a word file")

var reportStrategies, dumpStrategy, findStrategy string
var format string
var iterations int

var rootCmd = &cobra.Command{
	Use:           "chainstat",
	Short:         "Measure hash strategies over a chained hash table",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			log, err = zap.NewDevelopment()
		} else {
			log, err = zap.NewProduction()
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <text> <wordfile>",
	Short: "Split a text file into words and write them as an aligned word file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		words, err := wordfile.ConvertFile(args[0], args[1])
		if err != nil {
			return err
		}
		log.Info("converted", zap.String("input", args[0]), zap.String("output", args[1]),
			zap.Int("words", words))
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <wordfile|text>",
	Short: "Report the chain length distribution of each hash strategy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds, err := parseKinds(reportStrategies)
		if err != nil {
			return err
		}
		cfg, err := tableConfig()
		if err != nil {
			return err
		}
		return withWords(args[0], func(keys [][]byte) error {
			results, err := chainstat.MeasureAll(cfg, kinds, keys)
			if err != nil {
				return err
			}
			switch format {
			case "table":
				chainstat.WriteTable(os.Stdout, results)
				return nil
			case "csv":
				return chainstat.WriteCSV(os.Stdout, results)
			}
			return errors.Newf("unknown format %q", format)
		})
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump <wordfile|text>",
	Short: "Build a table over the words of a word file and dump it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, err := parseStrategy(dumpStrategy)
		if err != nil {
			return err
		}
		cfg, err := tableConfig()
		if err != nil {
			return err
		}
		return withWords(args[0], func(keys [][]byte) error {
			t, err := chainstat.Build(cfg, strategy, keys)
			if err != nil {
				return err
			}
			defer func() { _ = t.Close() }()
			return t.Dump(os.Stdout)
		})
	},
}

var findCmd = &cobra.Command{
	Use:   "find <wordfile|text>",
	Short: "Time repeated lookups of the words of a word file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, err := parseStrategy(findStrategy)
		if err != nil {
			return err
		}
		cfg, err := tableConfig()
		if err != nil {
			return err
		}
		return withWords(args[0], func(keys [][]byte) error {
			t, err := chainstat.Build(cfg, strategy, keys)
			if err != nil {
				return err
			}
			defer func() { _ = t.Close() }()

			s, err := chainstat.FindLoop(t, keys, iterations)
			if err != nil {
				return err
			}
			log.Info("find loop done",
				zap.String("strategy", findStrategy),
				zap.Int("entries", t.Len()),
				zap.Int("iterations", s.Iterations),
				zap.Int("hits", s.Hits),
				zap.Duration("elapsed", s.Elapsed),
				zap.Duration("per-op", s.PerOp()))
			fmt.Printf("%s lookups in %s (%s/op)\n",
				humanize.Comma(int64(s.Iterations)), s.Elapsed, s.PerOp())
			return nil
		})
	},
}

func tableConfig() (chainstat.Config, error) {
	cmp, ok := keycmp.Lookup(*comparatorName)
	if !ok {
		return chainstat.Config{}, errors.Newf("unknown comparator %q", *comparatorName)
	}
	if *buckets <= 0 {
		return chainstat.Config{}, errors.Wrapf(chainmap.ErrInvalidArgument, "--buckets=%d", *buckets)
	}
	log.Debug("table config",
		zap.Int("buckets", *buckets),
		zap.String("comparator", fmt.Sprint(cmp)),
		zap.Bool("avx2", keycmp.Accelerated()),
		zap.Bool("crc32q", hashfn.Accelerated()),
		zap.Bool("guard", *guard),
		zap.Bool("verify", *verify))
	return chainstat.Config{
		Buckets:    *buckets,
		Comparator: cmp,
		Guard:      *guard,
		Verify:     *verify,
	}, nil
}

func withWords(path string, fn func(keys [][]byte) error) error {
	if *rawText {
		a := arena.New(0)
		keys, err := wordfile.ReadText(path, a)
		if err != nil {
			return err
		}
		log.Debug("tokenized text file", zap.String("path", path), zap.Int("words", len(keys)))
		return fn(keys)
	}

	f, err := wordfile.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn("unmapping word file", zap.String("path", path), zap.Error(err))
		}
	}()
	log.Debug("loaded word file", zap.String("path", path),
		zap.Int("words", len(f.Keys())), zap.String("size", humanize.Bytes(uint64(f.Size()))))
	return fn(f.Keys())
}

func parseKinds(s string) ([]hashfn.Kind, error) {
	if s == "all" {
		return hashfn.Kinds(), nil
	}
	var kinds []hashfn.Kind
	for _, name := range strings.Split(s, ",") {
		k, err := hashfn.ParseKind(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func parseStrategy(s string) (hashfn.Strategy, error) {
	k, err := hashfn.ParseKind(s)
	if err != nil {
		return nil, err
	}
	return hashfn.New(k), nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	reportCmd.Flags().AddFlagSet(tableFlags)
	reportCmd.Flags().StringVar(&reportStrategies, "strategy", "all",
		"comma separated hash strategies to compare, or all")
	reportCmd.Flags().StringVar(&format, "format", "table", "output format: table or csv")

	dumpCmd.Flags().AddFlagSet(tableFlags)
	dumpCmd.Flags().StringVar(&dumpStrategy, "strategy", "djb", "hash strategy")

	findCmd.Flags().AddFlagSet(tableFlags)
	findCmd.Flags().StringVar(&findStrategy, "strategy", "crc32c", "hash strategy")
	findCmd.Flags().IntVar(&iterations, "iterations", 10_000_000, "number of lookups")

	rootCmd.AddCommand(convertCmd, reportCmd, dumpCmd, findCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "chainstat: %v\n", err)
		os.Exit(1)
	}
}
