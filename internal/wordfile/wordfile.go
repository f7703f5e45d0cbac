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

// Package wordfile turns text into keys for a chainmap.Table.
//
// Text is split into words, the maximal runs of ASCII letters and digits. A
// word file stores each word on a keycmp.BlockSize boundary followed by a
// zero terminator and zero padding up to the next boundary, so the file can
// be mapped into memory and its words handed to the table in place, already
// in the aligned key layout.
package wordfile

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/cockroachdb/chainmap/internal/arena"
	"github.com/cockroachdb/chainmap/keycmp"
	"github.com/cockroachdb/errors"
	mmap "github.com/edsrzf/mmap-go"
)

const maxWordSize = 1 << 20

func isAlnum(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// ScanAlnum is a bufio.SplitFunc that returns each run of ASCII letters and
// digits, dropping everything else.
func ScanAlnum(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) && !isAlnum(data[start]) {
		start++
	}
	for i := start; i < len(data); i++ {
		if !isAlnum(data[i]) {
			return i + 1, data[start:i], nil
		}
	}
	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}

// Tokenize splits text into words and copies each one into an aligned key
// allocated from a. Words longer than 1 MiB are rejected.
func Tokenize(text []byte, a *arena.Arena) ([][]byte, error) {
	var keys [][]byte
	s := bufio.NewScanner(bytes.NewReader(text))
	s.Buffer(nil, maxWordSize)
	s.Split(ScanAlnum)
	for s.Scan() {
		keys = append(keys, a.Copy(s.Bytes()))
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrapf(err, "scanning words after word %d", len(keys))
	}
	return keys, nil
}

// ReadText reads the text file at path and tokenizes it into keys allocated
// from a.
func ReadText(path string, a *arena.Arena) ([][]byte, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	keys, err := Tokenize(text, a)
	if err != nil {
		return nil, errors.Wrapf(err, "tokenizing %s", path)
	}
	return keys, nil
}

// Convert reads text from r and writes the word file for it to w. It returns
// the number of words written.
func Convert(r io.Reader, w io.Writer) (int, error) {
	s := bufio.NewScanner(r)
	s.Buffer(nil, maxWordSize)
	s.Split(ScanAlnum)

	bw := bufio.NewWriter(w)
	var padding [keycmp.BlockSize]byte
	var words int
	for s.Scan() {
		word := s.Bytes()
		if _, err := bw.Write(word); err != nil {
			return words, err
		}
		if _, err := bw.Write(padding[:keycmp.PaddedLen(len(word))-len(word)]); err != nil {
			return words, err
		}
		words++
	}
	if err := s.Err(); err != nil {
		return words, errors.Wrap(err, "scanning words")
	}
	return words, bw.Flush()
}

// ConvertFile converts the text file at input into a word file at output.
func ConvertFile(input, output string) (int, error) {
	in, err := os.Open(input)
	if err != nil {
		return 0, errors.Wrapf(err, "opening %s", input)
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return 0, errors.Wrapf(err, "creating %s", output)
	}
	words, err := Convert(in, out)
	if err != nil {
		_ = out.Close()
		return words, errors.Wrapf(err, "converting %s", input)
	}
	return words, out.Close()
}

// File is a word file mapped into memory. Its keys alias the mapping and
// remain valid until Close.
type File struct {
	data mmap.MMap
	keys [][]byte
}

// Open maps the word file at path. The mapping is copy-on-write: the keys are
// writable but changes never reach the file.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if fi.Size() == 0 {
		return nil, errors.Newf("%s: empty word file", path)
	}

	data, err := mmap.Map(f, mmap.COPY, 0 /* flags */)
	if err != nil {
		return nil, errors.Wrapf(err, "mmaping %s", path)
	}
	keys, err := Parse(data)
	if err != nil {
		_ = data.Unmap()
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return &File{data: data, keys: keys}, nil
}

// Keys returns the words of the file in file order.
func (f *File) Keys() [][]byte { return f.keys }

// Size returns the size of the mapping in bytes.
func (f *File) Size() int { return len(f.data) }

// Close unmaps the file. The keys must not be used afterwards.
func (f *File) Close() error {
	if f.data == nil {
		return nil
	}
	err := f.data.Unmap()
	f.data, f.keys = nil, nil
	return err
}

// Parse splits the contents of a word file into keys aliasing data. Each key
// has capacity up to the end of its padding. data must start on a
// keycmp.BlockSize boundary for the keys to be aligned.
func Parse(data []byte) ([][]byte, error) {
	if len(data)%keycmp.BlockSize != 0 {
		return nil, errors.Newf("word file size %d is not a multiple of %d", len(data), keycmp.BlockSize)
	}
	var keys [][]byte
	for off := 0; off < len(data); {
		n := bytes.IndexByte(data[off:], 0)
		if n < 0 {
			return nil, errors.Newf("unterminated word at offset %d", off)
		}
		size := keycmp.PaddedLen(n)
		if n > 0 {
			keys = append(keys, data[off:off+n:off+size])
		}
		off += size
	}
	return keys, nil
}
