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

// ----------------

// Package text is the dispatcher's fallback format: it accepts any valid
// UTF-8 byte sequence, possibly empty, possibly ending at a NUL byte. It
// is tried last, after every binary format has failed. A structurally
// invalid binary input is rejected here only if it is not valid UTF-8
// (a PNG signature's 0x89 byte is not; a truncated ELF header may be).
package text

import (
	"unicode/utf8"

	"github.com/google/decodeengine/lib/engine"
)

// Value is the decoded text payload.
type Value struct {
	Bytes []byte
}

// Decode consumes the remainder of the input one UTF-8 rune at a time,
// failing with KindExcludedBranch at the first invalid encoding.
// Decoding a NUL byte is valid UTF-8 (it's just rune 0) and does not stop
// the scan.
func Decode(e *engine.Engine) (Value, error) {
	start := e.Pos()
	for e.Remaining() > 0 {
		chunk := e.PeekRunePrefix()
		r, size := utf8.DecodeRune(chunk)
		if r == utf8.RuneError && size <= 1 {
			return Value{}, engine.NewExcludedBranchError("invalid UTF-8 encoding")
		}
		if _, err := e.ReadBytes(size); err != nil {
			return Value{}, err
		}
	}
	rest, err := e.BufferSince(start)
	if err != nil {
		return Value{}, err
	}
	return Value{Bytes: rest}, nil
}
