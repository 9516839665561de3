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

package engine

import "errors"

// ErrBadHuffmanTree is returned by NewHuffmanTable when the supplied
// length vector is over-subscribed (sum of 2^-L[i] > 1) or
// under-subscribed (sum < 1) for anything but the single degenerate
// one-symbol case: reject, never guess, matching lib/flatecut.go's
// huffman.construct, which returns errInvalidBadHuffmanTree for exactly
// the same two conditions.
var ErrBadHuffmanTree = errors.New("engine: malformed canonical Huffman code-length vector")

const maxHuffmanSymbols = 1 << 16

// HuffmanTable is a canonical prefix code built from a code-length
// vector, as specified by RFC 1951 §3.2.2. Build it with NewHuffmanTable
// and decode symbols from an Engine's bit-mode cursor with Decode.
//
// The construction algorithm (count codes per length, compute
// next_code[l], assign codes in ascending alphabet order within each
// length) and the decode algorithm (walk length by length, tracking the
// first code of each length) are adapted from lib/flatecut.go's
// unexported huffman type, generalized here from a DEFLATE-only
// (288+32)-symbol alphabet with a compiled-in lookup table to an
// arbitrary alphabet size with an optional permutation, since PNG's and
// gzip's embedded DEFLATE share the same primitive but the canonical
// code-length alphabet (RFC 1951 §3.2.7, 19 symbols) needs permutation
// support that flatecut.go's specialized type doesn't.
type HuffmanTable struct {
	maxBits uint32
	counts  []uint32 // counts[l] = number of symbols with code length l.
	symbols []uint32 // symbols in order of (length, then alphabet order).
}

// NewHuffmanTable builds a HuffmanTable from lengths (lengths[i] == 0
// means symbol i is absent). If perm is non-nil, it is consulted first:
// the symbol at position i of the table is perm[i], not i itself, and
// entries at positions >= len(perm) are treated as absent. maxBits caps
// the accepted code length; 0 selects 15. The cap is taken only from this
// argument: NewHuffmanTable does not consult any Engine's Limits.
func NewHuffmanTable(lengths []uint32, perm []uint32, maxBits uint32) (*HuffmanTable, error) {
	if maxBits == 0 {
		maxBits = 15
	}
	if len(lengths) > maxHuffmanSymbols {
		return nil, ErrBadHuffmanTree
	}

	alphabetSize := len(lengths)
	if perm != nil {
		alphabetSize = len(perm)
	}

	// symbolLength[s] is the code length assigned to alphabet symbol s
	// (0 if absent), after resolving the optional permutation.
	symbolLength := make([]uint32, alphabetSize)
	present := 0
	for i := 0; i < alphabetSize; i++ {
		sym := i
		if perm != nil {
			sym = int(perm[i])
		}
		if i >= len(lengths) {
			continue
		}
		l := lengths[i]
		if l == 0 {
			continue
		}
		if l > maxBits {
			return nil, ErrBadHuffmanTree
		}
		if sym >= alphabetSize {
			return nil, ErrBadHuffmanTree
		}
		symbolLength[sym] = l
		present++
	}

	t := &HuffmanTable{
		maxBits: maxBits,
		counts:  make([]uint32, maxBits+1),
	}
	for _, l := range symbolLength {
		t.counts[l]++
	}
	if present == 0 {
		return nil, ErrBadHuffmanTree
	}

	// Check for an over- or under-subscribed tree (flatecut.go's
	// remaining-capacity walk).
	remaining := uint32(1)
	for l := uint32(1); l <= maxBits; l++ {
		remaining *= 2
		if remaining < t.counts[l] {
			return nil, ErrBadHuffmanTree
		}
		remaining -= t.counts[l]
	}
	if remaining != 0 {
		degenerate := (t.counts[0]+1 == uint32(alphabetSize)) && t.counts[1] == 1
		if !degenerate {
			return nil, ErrBadHuffmanTree
		}
	}

	offsets := make([]uint32, maxBits+2)
	for l := uint32(1); l <= maxBits; l++ {
		offsets[l+1] = offsets[l] + t.counts[l]
	}
	t.symbols = make([]uint32, present)
	for sym, l := range symbolLength {
		if l == 0 {
			continue
		}
		t.symbols[offsets[l]] = uint32(sym)
		offsets[l]++
	}
	return t, nil
}

// Decode reads one symbol from e's bit-mode cursor, using exactly as many
// bits as needed to disambiguate it (no speculative over-read). It fails
// with KindExhaustedCodes if the bits read match no assigned code, or
// KindOverrun if the bit cursor runs out of input first.
func (t *HuffmanTable) Decode(e *Engine) (uint32, error) {
	code := uint32(0)
	first := uint32(0)
	symIndex := uint32(0)

	for l := uint32(1); l <= t.maxBits; l++ {
		bit, err := e.ReadBit()
		if err != nil {
			return 0, err
		}
		code = (code << 1) | bit

		count := t.counts[l]
		if code < first+count {
			return t.symbols[symIndex+code-first], nil
		}
		symIndex += count
		first = (first + count) << 1
	}
	return 0, errExhaustedCodes(idHuffmanExhausted, "bit pattern matches no assigned Huffman code")
}
