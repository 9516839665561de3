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

// Package waldo decodes the toy "waldo" format: an 8-byte little-endian
// absolute offset, followed (elsewhere in the buffer, not necessarily
// immediately after the header) by a fixed 5-byte marker "WALDO" that the
// offset must point at.
//
// Like lib/formats/peano, waldo exercises a single engine primitive in
// isolation: here, the absolute-offset excursion (engine.Excursion), the
// same primitive ELF uses to visit program/section headers via
// phoff/shoff and TIFF-in-Exif uses to visit IFDs.
package waldo

import (
	"encoding/binary"

	"github.com/google/decodeengine/lib/engine"
)

// Marker is the fixed byte string that must be found at the offset
// waldo's header points to.
var Marker = []byte("WALDO")

// Value is a decoded waldo file: the header's target offset, confirmed
// to locate Marker.
type Value struct {
	TargetOffset uint64
}

// Decode reads the 8-byte little-endian header, then performs an
// absolute-offset excursion to confirm Marker is present there. The
// excursion's cursor movement is discarded either way; Decode's own
// cursor only ever advances past the 8-byte header.
func Decode(e *engine.Engine) (Value, error) {
	raw, err := e.ReadBytes(8)
	if err != nil {
		return Value{}, err
	}
	offset := binary.LittleEndian.Uint64(raw)

	err = e.Excursion(int64(offset), func() error {
		return e.ExpectBytes(Marker)
	})
	if err != nil {
		return Value{}, err
	}
	return Value{TargetOffset: offset}, nil
}
