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

// Package zlib decodes the zlib wrapper (RFC 1950): a 2-byte header
// (whose 16-bit big-endian value must be a multiple of 31, per the
// standard's self-check), an optional 4-byte preset-dictionary id, a raw
// DEFLATE stream (lib/formats/deflate), and a 4-byte big-endian Adler-32
// trailer. lib/formats/png uses it for the concatenated IDAT payload
// only; PNG's iCCP, zTXt and iTXt payloads are not passed through it.
//
// The header validity check and compression-method restriction are
// grounded on lib/zlibcut/zlibcut.go's Cut, which walks the identical
// wrapper to re-encode a truncated prefix rather than to decode it.
package zlib

import (
	"encoding/binary"
	"hash/adler32"

	"github.com/google/decodeengine/lib/engine"
	"github.com/google/decodeengine/lib/formats/deflate"
)

// Decode reads a complete zlib stream and returns its decompressed bytes.
func Decode(e *engine.Engine) ([]byte, error) {
	cmf, err := e.ReadByte()
	if err != nil {
		return nil, err
	}
	flg, err := e.ReadByte()
	if err != nil {
		return nil, err
	}
	header := uint32(cmf)<<8 | uint32(flg)
	if err := e.Where(header%31 == 0, "zlib header is not a multiple of 31"); err != nil {
		return nil, err
	}
	if err := e.Where(cmf&0x0F == 8, "unsupported zlib compression method"); err != nil {
		return nil, err
	}

	if flg&0x20 != 0 { // FDICT: preset dictionary id follows the header.
		if _, err := e.ReadBytes(4); err != nil {
			return nil, err
		}
	}

	decoded, err := deflate.Decode(e)
	if err != nil {
		return nil, err
	}

	trailer, err := e.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	want := binary.BigEndian.Uint32(trailer)
	got := adler32.Checksum(decoded)
	if err := e.Where(got == want, "zlib trailer Adler-32 mismatch"); err != nil {
		return nil, err
	}
	return decoded, nil
}
