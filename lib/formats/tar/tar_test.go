// Copyright 2026 The Decodeengine Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tar

import (
	"bytes"
	"testing"

	"github.com/google/decodeengine/lib/engine"
)

// buildHeader writes a single ustar header block with the named fields
// set and everything else zero-filled, matching the field layout this
// package decodes.
func buildHeader(name, mode string, size uint64, typeflag byte) []byte {
	b := make([]byte, blockSize)
	copy(b[0:100], name)
	copy(b[100:108], mode)
	octal := func(field []byte, v uint64) {
		s := []byte{}
		if v == 0 {
			s = []byte{'0'}
		}
		for v > 0 {
			s = append([]byte{byte('0' + v%8)}, s...)
			v /= 8
		}
		copy(field, s)
	}
	octal(b[124:135], size)
	b[156] = typeflag
	copy(b[257:263], "ustar\x00")
	copy(b[263:265], "00")
	return b
}

func pad(data []byte) []byte {
	padding := (blockSize - (len(data) % blockSize)) % blockSize
	return append(append([]byte{}, data...), make([]byte, padding)...)
}

func TestDecodeSingleFile(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildHeader("a", "0000644\x00", 5, '0'))
	buf.Write(pad([]byte("hello")))
	buf.Write(make([]byte, 1024)) // end-of-archive trailer.

	e := engine.New(buf.Bytes())
	v, err := Decode(e)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(v.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(v.Entries))
	}
	if v.Entries[0].Name != "a" {
		t.Fatalf("Name = %q, want %q", v.Entries[0].Name, "a")
	}
	if string(v.Data[0]) != "hello" {
		t.Fatalf("Data = %q, want %q", v.Data[0], "hello")
	}
	if err := e.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestDecodeMultipleEntries(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildHeader("one.txt", "0000644\x00", 3, '0'))
	buf.Write(pad([]byte("one")))
	buf.Write(buildHeader("two.txt", "0000644\x00", 6, '0'))
	buf.Write(pad([]byte("twotwo")))
	buf.Write(make([]byte, 1024))

	e := engine.New(buf.Bytes())
	v, err := Decode(e)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(v.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(v.Entries))
	}
	if v.Entries[1].Name != "two.txt" || string(v.Data[1]) != "twotwo" {
		t.Fatalf("second entry = %+v %q, want two.txt twotwo", v.Entries[1], v.Data[1])
	}
}

func TestParseBase256SizeField(t *testing.T) {
	field := make([]byte, 12)
	field[0] = 0x80 // GNU base-256 marker.
	field[11] = 5
	size, err := parseSizeField(field)
	if err != nil {
		t.Fatalf("parseSizeField: %v", err)
	}
	if size != 5 {
		t.Fatalf("size = %d, want 5", size)
	}
}

func TestDecodeMissingTrailer(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildHeader("a", "0000644\x00", 1, '0'))
	buf.Write(pad([]byte("x")))
	// No trailing zero blocks.

	e := engine.New(buf.Bytes())
	if _, err := Decode(e); err == nil {
		t.Fatalf("expected failure on missing end-of-archive trailer")
	}
}
