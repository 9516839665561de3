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

// Package png decodes a PNG stream down to its chunk structure: the
// 8-byte signature, IHDR's fixed 13-byte field layout, every other
// chunk's length/type/data/CRC-32 framing, and the concatenated IDAT
// payload reparsed through lib/formats/zlib. It stops at the decompressed
// scanline bytes; reconstructing pixels from PNG's per-scanline filter
// bytes is image processing, not stream parsing, and is out of scope.
package png

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/google/decodeengine/lib/engine"
	"github.com/google/decodeengine/lib/formats/zlib"
)

var signature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// IHDR is PNG's mandatory first chunk, fully decoded.
type IHDR struct {
	Width             uint32
	Height            uint32
	BitDepth          byte
	ColorType         byte
	CompressionMethod byte
	FilterMethod      byte
	InterlaceMethod   byte
}

// Chunk is any chunk other than IHDR, with its data left undecoded for
// every chunk type: ancillary chunks (tEXt, tIME, pHYs, ...) are not
// decoded, and iCCP, zTXt and iTXt payloads are not inflated. Only IDAT
// data is inflated, concatenated, into Value.Decoded. CRC is the
// chunk's declared trailer value and CRCValid reports whether it matches
// the type+data bytes actually read; a mismatch is not a parse failure,
// since cross-referencing the checksum is a semantic check this engine
// does not perform.
type Chunk struct {
	Type     string
	Data     []byte
	CRC      uint32
	CRCValid bool
}

// Value is a fully decoded PNG stream.
type Value struct {
	IHDR    IHDR
	Chunks  []Chunk
	Decoded []byte // concatenated IDAT data, inflated.
}

// isIEND is the peek-dispatch classifier the chunk loop uses to stop.
func isIEND(e *engine.Engine) bool {
	typ, err := peekChunkType(e)
	return err != nil || typ == "IEND"
}

// peekChunkType reads the 4-byte length field and 4-byte type field
// without consuming them, for use inside a peek context only.
func peekChunkType(e *engine.Engine) (string, error) {
	if _, err := e.ReadBytes(4); err != nil {
		return "", err
	}
	typ, err := e.ReadBytes(4)
	if err != nil {
		return "", err
	}
	return string(typ), nil
}

// Decode reads a complete PNG stream: signature, IHDR, a run of
// zero-or-more other chunks up to and including IEND.
func Decode(e *engine.Engine) (Value, error) {
	if err := e.ExpectBytes(signature); err != nil {
		return Value{}, err
	}

	ihdr, err := decodeIHDRChunk(e)
	if err != nil {
		return Value{}, err
	}

	chunks, err := engine.Repeat0(e, isIEND, decodeChunk)
	if err != nil {
		return Value{}, err
	}
	iend, err := decodeChunk(e)
	if err != nil {
		return Value{}, err
	}
	if err := e.Where(iend.Type == "IEND" && len(iend.Data) == 0, "IEND must be empty"); err != nil {
		return Value{}, err
	}
	chunks = append(chunks, iend)

	var idat []byte
	for _, c := range chunks {
		if c.Type == "IDAT" {
			idat = append(idat, c.Data...)
		}
	}

	var decoded []byte
	if len(idat) > 0 {
		err := e.Reparse(idat, func(inner *engine.Engine) error {
			d, err := zlib.Decode(inner)
			if err != nil {
				return err
			}
			decoded = d
			return inner.Finish()
		})
		if err != nil {
			return Value{}, err
		}
	}

	return Value{IHDR: ihdr, Chunks: chunks, Decoded: decoded}, nil
}

// decodeIHDRChunk reads the length/type/data/crc framing common to every
// chunk, requires the type to be "IHDR", and decodes its 13-byte payload.
func decodeIHDRChunk(e *engine.Engine) (IHDR, error) {
	c, err := decodeChunk(e)
	if err != nil {
		return IHDR{}, err
	}
	if err := e.Where(c.Type == "IHDR", "first chunk must be IHDR"); err != nil {
		return IHDR{}, err
	}
	if err := e.Where(len(c.Data) == 13, "IHDR data must be 13 bytes"); err != nil {
		return IHDR{}, err
	}
	return IHDR{
		Width:             binary.BigEndian.Uint32(c.Data[0:4]),
		Height:            binary.BigEndian.Uint32(c.Data[4:8]),
		BitDepth:          c.Data[8],
		ColorType:         c.Data[9],
		CompressionMethod: c.Data[10],
		FilterMethod:      c.Data[11],
		InterlaceMethod:   c.Data[12],
	}, nil
}

// decodeChunk reads one length-prefixed, CRC-32-trailed chunk. The
// trailer's agreement with the type+data bytes is recorded on the
// returned Chunk but never rejects the parse: CRC verification is a
// semantic cross-reference check, which this engine does not perform.
func decodeChunk(e *engine.Engine) (Chunk, error) {
	lengthBytes, err := e.ReadBytes(4)
	if err != nil {
		return Chunk{}, err
	}
	length := binary.BigEndian.Uint32(lengthBytes)

	typeAndData, err := e.ReadBytes(4 + int(length))
	if err != nil {
		return Chunk{}, err
	}

	crcBytes, err := e.ReadBytes(4)
	if err != nil {
		return Chunk{}, err
	}
	want := binary.BigEndian.Uint32(crcBytes)
	got := crc32.ChecksumIEEE(typeAndData)

	return Chunk{
		Type:     string(typeAndData[:4]),
		Data:     typeAndData[4:],
		CRC:      want,
		CRCValid: got == want,
	}, nil
}
