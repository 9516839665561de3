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

// Package tiff decodes a standalone TIFF file down to its header and
// IFD0: a byte-order mark ("II" or "MM") that selects the order used for
// every integer field that follows, the fixed 42 magic number, and an
// absolute-offset excursion to the first image-file-directory. This is
// the same byte-order-sensitive excursion lib/formats/jpeg performs for
// an Exif blob's embedded TIFF structure, applied here directly to a
// whole top-level file rather than a reparsed sub-buffer.
package tiff

import (
	"encoding/binary"

	"github.com/google/decodeengine/lib/engine"
)

// IFDEntry is one 12-byte TIFF image-file-directory entry.
type IFDEntry struct {
	Tag           uint16
	Type          uint16
	Count         uint32
	ValueOrOffset uint32
}

// Value is a fully decoded TIFF file's header and first IFD.
type Value struct {
	LittleEndian bool
	IFD0Offset   uint32
	IFD0         []IFDEntry
	NextIFD      uint32
}

// Decode reads a TIFF header and its first image-file-directory.
func Decode(e *engine.Engine) (Value, error) {
	order, err := e.ReadBytes(2)
	if err != nil {
		return Value{}, err
	}
	littleEndian := string(order) == "II"
	if err := e.Where(littleEndian || string(order) == "MM", "unrecognized TIFF byte-order mark"); err != nil {
		return Value{}, err
	}
	var bo binary.ByteOrder = binary.LittleEndian
	if !littleEndian {
		bo = binary.BigEndian
	}

	magicBytes, err := e.ReadBytes(2)
	if err != nil {
		return Value{}, err
	}
	if err := e.Where(bo.Uint16(magicBytes) == 42, "bad TIFF magic number"); err != nil {
		return Value{}, err
	}
	offsetBytes, err := e.ReadBytes(4)
	if err != nil {
		return Value{}, err
	}
	ifdOffset := bo.Uint32(offsetBytes)

	v := Value{LittleEndian: littleEndian, IFD0Offset: ifdOffset}
	err = e.Excursion(int64(ifdOffset), func() error {
		entries, next, ferr := decodeIFD(e, bo)
		if ferr != nil {
			return ferr
		}
		v.IFD0 = entries
		v.NextIFD = next
		return nil
	})
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

func decodeIFD(e *engine.Engine, bo binary.ByteOrder) ([]IFDEntry, uint32, error) {
	countBytes, err := e.ReadBytes(2)
	if err != nil {
		return nil, 0, err
	}
	count := bo.Uint16(countBytes)
	entries := make([]IFDEntry, count)
	for i := uint16(0); i < count; i++ {
		raw, err := e.ReadBytes(12)
		if err != nil {
			return nil, 0, err
		}
		entries[i] = IFDEntry{
			Tag:           bo.Uint16(raw[0:2]),
			Type:          bo.Uint16(raw[2:4]),
			Count:         bo.Uint32(raw[4:8]),
			ValueOrOffset: bo.Uint32(raw[8:12]),
		}
	}
	nextBytes, err := e.ReadBytes(4)
	if err != nil {
		return nil, 0, err
	}
	return entries, bo.Uint32(nextBytes), nil
}
