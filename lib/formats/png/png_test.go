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

package png

import (
	"bytes"
	stdzlib "compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/google/decodeengine/lib/engine"
)

func appendChunk(buf []byte, typ string, data []byte) []byte {
	var lenBytes [4]byte
	binary.BigEndian.PutUint32(lenBytes[:], uint32(len(data)))
	buf = append(buf, lenBytes[:]...)
	typeAndData := append([]byte(typ), data...)
	buf = append(buf, typeAndData...)
	var crcBytes [4]byte
	binary.BigEndian.PutUint32(crcBytes[:], crc32.ChecksumIEEE(typeAndData))
	return append(buf, crcBytes[:]...)
}

// TestDecode1x1Image reproduces the minimal 1x1 truecolor PNG: IHDR with
// width=1, height=1, bit depth 8, color type 2, followed by a single IDAT
// holding a zlib-wrapped, stored-block DEFLATE stream, then IEND.
func TestDecode1x1Image(t *testing.T) {
	buf := append([]byte{}, signature...)

	ihdrData := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdrData[0:4], 1)
	binary.BigEndian.PutUint32(ihdrData[4:8], 1)
	ihdrData[8] = 8
	ihdrData[9] = 2
	buf = appendChunk(buf, "IHDR", ihdrData)

	idatData := []byte{0x78, 0x01, 0x01, 0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0x01}
	buf = appendChunk(buf, "IDAT", idatData)
	buf = appendChunk(buf, "IEND", nil)

	e := engine.New(buf)
	v, err := Decode(e)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.IHDR.Width != 1 || v.IHDR.Height != 1 || v.IHDR.BitDepth != 8 || v.IHDR.ColorType != 2 {
		t.Fatalf("IHDR = %+v, want width=1 height=1 bitDepth=8 colorType=2", v.IHDR)
	}
	if len(v.Decoded) != 0 {
		t.Fatalf("Decoded = %v, want empty stored block", v.Decoded)
	}
	if err := e.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestDecodeMultipleIDATChunksConcatenate(t *testing.T) {
	var zbuf bytes.Buffer
	w, err := stdzlib.NewWriterLevel(&zbuf, stdzlib.BestCompression)
	if err != nil {
		t.Fatalf("NewWriterLevel: %v", err)
	}
	payload := bytes.Repeat([]byte{0xAB, 0xCD, 0xEF}, 200)
	if _, err := w.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	full := zbuf.Bytes()
	half := len(full) / 2

	buf := append([]byte{}, signature...)
	ihdrData := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdrData[0:4], 10)
	binary.BigEndian.PutUint32(ihdrData[4:8], 20)
	ihdrData[8] = 8
	ihdrData[9] = 2
	buf = appendChunk(buf, "IHDR", ihdrData)
	buf = appendChunk(buf, "IDAT", full[:half])
	buf = appendChunk(buf, "IDAT", full[half:])
	buf = appendChunk(buf, "IEND", nil)

	e := engine.New(buf)
	v, err := Decode(e)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(v.Decoded, payload) {
		t.Fatalf("Decoded mismatch across split IDAT chunks")
	}
}

func TestDecodeBadSignature(t *testing.T) {
	e := engine.New([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	if _, err := Decode(e); err == nil {
		t.Fatalf("expected failure on bad signature")
	}
}

// TestDecodeCorruptChunkCRC confirms a wrong CRC-32 trailer is recorded,
// not rejected: CRC verification is a semantic cross-reference check
// this engine does not perform (spec.md's stream-parsing Non-goals).
func TestDecodeCorruptChunkCRC(t *testing.T) {
	buf := append([]byte{}, signature...)
	ihdrData := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdrData[0:4], 1)
	binary.BigEndian.PutUint32(ihdrData[4:8], 1)
	buf = appendChunk(buf, "IHDR", ihdrData)
	buf[len(buf)-1] ^= 0xFF
	buf = appendChunk(buf, "IEND", nil)

	e := engine.New(buf)
	v, err := Decode(e)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.IHDR.Width != 1 || v.IHDR.Height != 1 {
		t.Fatalf("IHDR = %+v, want a corrupt-CRC chunk to still decode its fields", v.IHDR)
	}
}
