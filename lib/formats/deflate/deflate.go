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

// Package deflate decodes a raw DEFLATE bitstream (RFC 1951) into its
// literal byte output, one block at a time: stored, fixed-Huffman and
// dynamic-Huffman blocks, LZ77 length/distance back-references, and the
// final-block flag that ends the stream.
//
// The block-type dispatch and the length/distance base-and-extra-bits
// tables are adapted from lib/flatecut/flatecut.go's cutter type, which
// walks the identical bitstream grammar to re-encode a truncated prefix
// rather than to decode it; this package walks the same grammar to
// produce the fully decoded byte vector instead.
package deflate

import (
	"github.com/google/decodeengine/lib/engine"
)

// codeOrder is defined in RFC 1951 section 3.2.7.
var codeOrder = [19]uint32{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// lBases and lExtras are defined in RFC 1951 section 3.2.5. Index i
// corresponds to length symbol 257+i.
var (
	lBases = [29]uint32{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
	lExtras = [29]uint32{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	}
	dBases = [30]uint32{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
	}
	dExtras = [30]uint32{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
)

const maxWindowBack = 32768

// Decode reads a complete DEFLATE bitstream: e must not already be in
// bit-mode. It returns the decompressed bytes and leaves e in byte-mode,
// aligned to the byte following the final block's end-of-stream bits.
func Decode(e *engine.Engine) ([]byte, error) {
	e.EnterBitsMode()
	out, err := decodeBlocks(e)
	e.EscapeBitsMode()
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeBlocks(e *engine.Engine) ([]byte, error) {
	var out []byte
	for {
		final, err := e.ReadBits(1)
		if err != nil {
			return nil, err
		}
		blockType, err := e.ReadBits(2)
		if err != nil {
			return nil, err
		}

		switch blockType {
		case 0:
			out, err = decodeStored(e, out)
		case 1:
			out, err = decodeHuffmanBlock(e, out, fixedLLengths(), fixedDLengths())
		case 2:
			out, err = decodeDynamicBlock(e, out)
		default:
			err = engine.NewExcludedBranchError("reserved DEFLATE block type 3")
		}
		if err != nil {
			return nil, err
		}
		if final != 0 {
			return out, nil
		}
	}
}

// decodeStored handles blockType 0: a byte-aligned length-prefixed literal
// run. LEN and its one's complement NLEN must agree; trailing window bytes
// are appended directly to out.
func decodeStored(e *engine.Engine, out []byte) ([]byte, error) {
	e.BitAlign()
	length, err := e.ReadBits(16)
	if err != nil {
		return nil, err
	}
	nlen, err := e.ReadBits(16)
	if err != nil {
		return nil, err
	}
	if length^0xFFFF != nlen {
		return nil, engine.NewExcludedBranchError("stored block LEN/NLEN mismatch")
	}
	for i := uint32(0); i < length; i++ {
		b, err := e.ReadBits(8)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(b))
	}
	return out, nil
}

// fixedLLengths and fixedDLengths build the compile-time-fixed code
// length vectors of RFC 1951 section 3.2.6.
func fixedLLengths() []uint32 {
	lengths := make([]uint32, 288)
	i := 0
	for ; i < 144; i++ {
		lengths[i] = 8
	}
	for ; i < 256; i++ {
		lengths[i] = 9
	}
	for ; i < 280; i++ {
		lengths[i] = 7
	}
	for ; i < 288; i++ {
		lengths[i] = 8
	}
	return lengths
}

// fixedDLengths covers all 32 five-bit codes of the fixed distance
// alphabet, not just the 30 symbols a back-reference can legally use:
// symbols 30 and 31 are reserved but still occupy code space, and
// NewHuffmanTable's completeness check requires the full canonical code
// to be present. decodeHuffmanBlock rejects a decoded 30 or 31 as a
// reserved distance symbol after the fact.
func fixedDLengths() []uint32 {
	lengths := make([]uint32, 32)
	for i := range lengths {
		lengths[i] = 5
	}
	return lengths
}

// decodeDynamicBlock handles blockType 2: the block carries its own
// literal/length and distance code-length vectors, themselves Huffman
// coded with a third, small "code length of a code length" alphabet.
func decodeDynamicBlock(e *engine.Engine, out []byte) ([]byte, error) {
	numLCodesBits, err := e.ReadBits(5)
	if err != nil {
		return nil, err
	}
	numDCodesBits, err := e.ReadBits(5)
	if err != nil {
		return nil, err
	}
	numCodeLengthsBits, err := e.ReadBits(4)
	if err != nil {
		return nil, err
	}
	numLCodes := 257 + int(numLCodesBits)
	numDCodes := 1 + int(numDCodesBits)
	numCodeLengths := 4 + int(numCodeLengthsBits)

	if numLCodes > 286 || numDCodes > 30 {
		return nil, engine.NewExcludedBranchError("dynamic block declares too many codes")
	}

	clLengths := make([]uint32, 19)
	for i := 0; i < numCodeLengths; i++ {
		x, err := e.ReadBits(3)
		if err != nil {
			return nil, err
		}
		clLengths[codeOrder[i]] = x
	}
	clTable, err := engine.NewHuffmanTable(clLengths, nil, 7)
	if err != nil {
		return nil, err
	}

	lengths := make([]uint32, numLCodes+numDCodes)
	for i := 0; i < len(lengths); {
		symbol, err := clTable.Decode(e)
		if err != nil {
			return nil, err
		}

		var value, count uint32
		switch symbol {
		case 16:
			if i == 0 {
				return nil, engine.NewExcludedBranchError("repeat-previous code length with no previous entry")
			}
			value = lengths[i-1]
			n, err := e.ReadBits(2)
			if err != nil {
				return nil, err
			}
			count = 3 + n
		case 17:
			n, err := e.ReadBits(3)
			if err != nil {
				return nil, err
			}
			count = 3 + n
		case 18:
			n, err := e.ReadBits(7)
			if err != nil {
				return nil, err
			}
			count = 11 + n
		default:
			lengths[i] = symbol
			i++
			continue
		}
		if i+int(count) > len(lengths) {
			return nil, engine.NewExcludedBranchError("code length repeat runs past table end")
		}
		for ; count > 0; count-- {
			lengths[i] = value
			i++
		}
	}

	return decodeHuffmanBlock(e, out, lengths[:numLCodes], lengths[numLCodes:])
}

// decodeHuffmanBlock decodes a stream of literal/length/distance symbols
// until the end-of-block code (literal/length symbol 256) is seen,
// appending literal bytes and resolved LZ77 back-reference copies to out.
func decodeHuffmanBlock(e *engine.Engine, out []byte, lLengths, dLengths []uint32) ([]byte, error) {
	lTable, err := engine.NewHuffmanTable(lLengths, nil, 15)
	if err != nil {
		return nil, err
	}
	dTable, err := engine.NewHuffmanTable(dLengths, nil, 15)
	if err != nil {
		return nil, err
	}

	for {
		lSymbol, err := lTable.Decode(e)
		if err != nil {
			return nil, err
		}
		switch {
		case lSymbol < 256:
			out = append(out, byte(lSymbol))
			continue
		case lSymbol == 256:
			return out, nil
		case lSymbol > 285:
			return nil, engine.NewFailTokenError("reserved length symbol 286/287")
		}

		lIdx := lSymbol - 257
		extra, err := e.ReadBits(lExtras[lIdx])
		if err != nil {
			return nil, err
		}
		length := lBases[lIdx] + extra

		dSymbol, err := dTable.Decode(e)
		if err != nil {
			return nil, err
		}
		if dSymbol > 29 {
			return nil, engine.NewFailTokenError("reserved distance symbol 30/31")
		}
		dExtra, err := e.ReadBits(dExtras[dSymbol])
		if err != nil {
			return nil, err
		}
		distance := dBases[dSymbol] + dExtra

		if int(distance) > len(out) || distance > maxWindowBack {
			return nil, engine.NewExcludedBranchError("back-reference distance exceeds available window")
		}
		copyFrom := len(out) - int(distance)
		for i := uint32(0); i < length; i++ {
			out = append(out, out[copyFrom+int(i)])
		}
	}
}
