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

package zlib

import (
	"bytes"
	stdzlib "compress/zlib"
	"testing"

	"github.com/google/decodeengine/lib/engine"
)

func buildZlib(t *testing.T, payload []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := stdzlib.NewWriterLevel(&buf, stdzlib.BestCompression)
	if err != nil {
		t.Fatalf("NewWriterLevel: %v", err)
	}
	if _, err := w.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("PNG IDAT filtered scanline bytes "), 20)
	encoded := buildZlib(t, payload)

	e := engine.New(encoded)
	got, err := Decode(e)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("Decode mismatch")
	}
	if err := e.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestDecodeBadHeader(t *testing.T) {
	e := engine.New([]byte{0x08, 0x00, 0, 0, 0, 0})
	if _, err := Decode(e); err == nil {
		t.Fatalf("expected failure on bad zlib header")
	}
}

func TestDecodeCorruptAdler(t *testing.T) {
	encoded := buildZlib(t, []byte("corrupt me"))
	encoded[len(encoded)-1] ^= 0xFF

	e := engine.New(encoded)
	if _, err := Decode(e); err == nil {
		t.Fatalf("expected failure on corrupt Adler-32 trailer")
	}
}
