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

package hashfn

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStrategies(t *testing.T) {
	testCases := []struct {
		key      string
		strategy Strategy
		expected uint64
	}{
		{"a", Constant{}, 1},
		{"", Constant{}, 1},
		{"hello", FirstByte{}, 'h'},
		{"", FirstByte{}, 0},
		{"hello", Length{}, 5},
		{"", Length{}, 0},
		{"a", ByteSum{}, 97},
		{"ab", ByteSum{}, 195},
		{"hello", ByteSum{}, 532},
		{"", ByteSum{}, 0},
		{"a", RotateLeft{}, 97},
		{"ab", RotateLeft{}, 292},
		{"hello", RotateLeft{}, 3231},
		{"", RotateLeft{}, 1},
		{"a", RotateRight{}, 97},
		{"ab", RotateRight{}, 9223372036854775954},
		{"hello", RotateRight{}, 2305843009213694163},
		{"", RotateRight{}, 1},
		{"", DJB{}, 5381},
		{"a", DJB{}, 177670},
		{"b", DJB{}, 177671},
		{"ab", DJB{}, 5863208},
		{"hello", DJB{}, 210714636441},
		{"", CRC32C{}, 0},
		{"a", CRC32C{}, 0x5e3cd38c},
		{"hello", CRC32C{}, 0x1c2b5f39},
		{"abcdefg", CRC32C{}, 0x6da35890},
		{"abcdefgh", CRC32C{}, 0x079a1c0e},
		{"The quick brown fox", CRC32C{}, 0x6847a25b},
	}
	for _, c := range testCases {
		t.Run(fmt.Sprintf("%s/%q", c.strategy, c.key), func(t *testing.T) {
			require.EqualValues(t, c.expected, c.strategy.Sum64([]byte(c.key)))
		})
	}
}

func TestKinds(t *testing.T) {
	for _, k := range Kinds() {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		require.Equal(t, k, parsed)

		s := New(k)
		require.Equal(t, k.String(), fmt.Sprint(s))
		// Every strategy is deterministic.
		require.Equal(t, s.Sum64([]byte("determinism")), s.Sum64([]byte("determinism")))
	}

	_, err := ParseKind("md5")
	require.Error(t, err)
	require.Equal(t, "Kind(42)", Kind(42).String())
}

func TestFunc(t *testing.T) {
	var s Strategy = Func(func(key []byte) uint64 { return uint64(len(key)) * 3 })
	require.EqualValues(t, 9, s.Sum64([]byte("abc")))
}

func TestHashIgnoresPadding(t *testing.T) {
	// Strategies only look at the key bytes, never at whatever follows them
	// in the backing array.
	clean := make([]byte, 32)
	dirty := make([]byte, 32)
	for i := range dirty {
		dirty[i] = 0xff
	}
	copy(clean, "padding")
	copy(dirty, "padding")

	for _, k := range Kinds() {
		s := New(k)
		require.Equal(t, s.Sum64(clean[:7]), s.Sum64(dirty[:7]), "%s", k)
	}
}

func BenchmarkStrategies(b *testing.B) {
	key := []byte("a-moderately-long-benchmark-key")
	for _, k := range Kinds() {
		s := New(k)
		b.Run("strategy="+k.String(), func(b *testing.B) {
			b.SetBytes(int64(len(key)))
			var sum uint64
			for i := 0; i < b.N; i++ {
				sum += s.Sum64(key)
			}
			_ = sum
		})
	}
}
