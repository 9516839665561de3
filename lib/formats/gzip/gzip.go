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

// Package gzip decodes a gzip member (RFC 1952): a fixed 10-byte header,
// optional FEXTRA/FNAME/FCOMMENT/FHCRC fields selected by the header's
// flag byte, a raw DEFLATE stream (lib/formats/deflate), and an 8-byte
// trailer of CRC-32 and ISIZE.
package gzip

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/google/decodeengine/lib/engine"
	"github.com/google/decodeengine/lib/formats/deflate"
)

const (
	flagText    = 1 << 0
	flagHCRC    = 1 << 1
	flagExtra   = 1 << 2
	flagName    = 1 << 3
	flagComment = 1 << 4
)

var nonNUL = engine.ByteRange(1, 255)

// Value is a decoded gzip member. CRC32Valid and ISIZEValid report
// whether the trailer's declared checksum and length agree with the
// inflated bytes actually produced; a mismatch is recorded, not
// rejected, since cross-referencing the trailer is a semantic check
// this engine does not perform.
type Value struct {
	ModTime    uint32
	OS         byte
	Name       string
	Comment    string
	Decoded    []byte
	CRC32      uint32
	CRC32Valid bool
	ISIZE      uint32
	ISIZEValid bool
}

// isNUL is the peek-dispatch classifier for the NUL-terminated FNAME and
// FCOMMENT fields.
func isNUL(e *engine.Engine) bool {
	b, err := e.ReadByte()
	return err != nil || b == 0
}

// Decode reads one gzip member starting at e's current position.
func Decode(e *engine.Engine) (Value, error) {
	if err := e.ExpectBytes([]byte{0x1f, 0x8b}); err != nil {
		return Value{}, err
	}
	cm, err := e.ReadByte()
	if err != nil {
		return Value{}, err
	}
	if err := e.Where(cm == 8, "gzip compression method must be 8 (deflate)"); err != nil {
		return Value{}, err
	}
	flg, err := e.ReadByte()
	if err != nil {
		return Value{}, err
	}

	mtimeBytes, err := e.ReadBytes(4)
	if err != nil {
		return Value{}, err
	}
	mtime := binary.LittleEndian.Uint32(mtimeBytes)

	if _, err := e.ReadByte(); err != nil { // XFL, not surfaced.
		return Value{}, err
	}
	osByte, err := e.ReadByte()
	if err != nil {
		return Value{}, err
	}

	if flg&flagExtra != 0 {
		xlenBytes, err := e.ReadBytes(2)
		if err != nil {
			return Value{}, err
		}
		xlen := binary.LittleEndian.Uint16(xlenBytes)
		if _, err := e.ReadBytes(int(xlen)); err != nil {
			return Value{}, err
		}
	}

	var name string
	if flg&flagName != 0 {
		raw, err := engine.Repeat0(e, isNUL, func(e *engine.Engine) (byte, error) {
			return e.ReadIf(nonNUL)
		})
		if err != nil {
			return Value{}, err
		}
		if err := e.ExpectByte(0); err != nil {
			return Value{}, err
		}
		name = string(raw)
	}

	var comment string
	if flg&flagComment != 0 {
		raw, err := engine.Repeat0(e, isNUL, func(e *engine.Engine) (byte, error) {
			return e.ReadIf(nonNUL)
		})
		if err != nil {
			return Value{}, err
		}
		if err := e.ExpectByte(0); err != nil {
			return Value{}, err
		}
		comment = string(raw)
	}

	if flg&flagHCRC != 0 {
		if _, err := e.ReadBytes(2); err != nil {
			return Value{}, err
		}
	}

	decoded, err := deflate.Decode(e)
	if err != nil {
		return Value{}, err
	}

	crcBytes, err := e.ReadBytes(4)
	if err != nil {
		return Value{}, err
	}
	wantCRC := binary.LittleEndian.Uint32(crcBytes)
	gotCRC := crc32.ChecksumIEEE(decoded)

	isizeBytes, err := e.ReadBytes(4)
	if err != nil {
		return Value{}, err
	}
	isize := binary.LittleEndian.Uint32(isizeBytes)

	return Value{
		ModTime:    mtime,
		OS:         osByte,
		Name:       name,
		Comment:    comment,
		Decoded:    decoded,
		CRC32:      wantCRC,
		CRC32Valid: gotCRC == wantCRC,
		ISIZE:      isize,
		ISIZEValid: uint32(len(decoded)) == isize,
	}, nil
}
