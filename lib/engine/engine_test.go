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

package engine

import (
	"errors"
	"testing"
)

func TestPeekTransparency(t *testing.T) {
	e := New([]byte{1, 2, 3, 4, 5})

	before := e.Pos()
	err := e.Peek(func() error {
		if _, err := e.ReadBytes(3); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if e.Pos() != before {
		t.Fatalf("pos after successful Peek = %d, want %d", e.Pos(), before)
	}

	err = e.Peek(func() error {
		if _, err := e.ReadBytes(3); err != nil {
			return err
		}
		return errors.New("forced failure")
	})
	if err == nil {
		t.Fatalf("expected forced failure")
	}
	if e.Pos() != before {
		t.Fatalf("pos after failing Peek = %d, want %d", e.Pos(), before)
	}
}

func TestAlternationRollback(t *testing.T) {
	// Three alternatives; the second one succeeds. The observable output
	// must equal running that alternative directly from the starting
	// cursor.
	data := []byte{0xAA, 0x01, 0x02}

	run := func() (any, error) {
		e := New(data)
		val, err := e.Alternation([]Alternative{
			{Try: func() (any, error) {
				if err := e.ExpectByte(0xFF); err != nil {
					return nil, err
				}
				return "first", nil
			}},
			{Try: func() (any, error) {
				b, err := e.ReadByte()
				if err != nil {
					return nil, err
				}
				return b, nil
			}},
			{Try: func() (any, error) {
				return "third", nil
			}},
		})
		return val, err
	}

	val, err := run()
	if err != nil {
		t.Fatalf("Alternation: %v", err)
	}
	if val != byte(0xAA) {
		t.Fatalf("Alternation result = %v, want 0xAA", val)
	}

	// Direct run of alternative 2 from the same starting cursor.
	e2 := New(data)
	direct, err := e2.ReadByte()
	if err != nil {
		t.Fatalf("direct read: %v", err)
	}
	if val != direct {
		t.Fatalf("alternation result %v != direct result %v", val, direct)
	}
}

func TestAlternationCommitted(t *testing.T) {
	e := New([]byte{0x01})
	_, err := e.Alternation([]Alternative{
		{Committed: true, Try: func() (any, error) {
			if _, err := e.ReadByte(); err != nil {
				return nil, err
			}
			return nil, errors.New("committed alternative fails after consuming input")
		}},
		{Try: func() (any, error) {
			t.Fatalf("second alternative must not run after a committed failure")
			return nil, nil
		}},
	})
	if err == nil {
		t.Fatalf("expected committed failure to propagate")
	}
}

func TestSliceContainment(t *testing.T) {
	e := New([]byte{1, 2, 3, 4, 5, 6})
	if err := e.StartSlice(3); err != nil {
		t.Fatalf("StartSlice: %v", err)
	}
	if _, err := e.ReadBytes(3); err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if _, err := e.ReadByte(); !IsKind(err, KindOverrun) {
		t.Fatalf("read past slice end = %v, want KindOverrun", err)
	}
	if err := e.EndSlice(); err != nil {
		t.Fatalf("EndSlice: %v", err)
	}
	if e.Pos() != 3 {
		t.Fatalf("pos = %d, want 3", e.Pos())
	}

	if err := e.StartSlice(2); err != nil {
		t.Fatalf("StartSlice: %v", err)
	}
	if _, err := e.ReadByte(); err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if err := e.EndSlice(); !IsKind(err, KindTrailingInSlice) {
		t.Fatalf("EndSlice with unread byte = %v, want KindTrailingInSlice", err)
	}
}

func TestBitByteSeparation(t *testing.T) {
	e := New([]byte{0b1011_0010, 0xFF})
	e.EnterBitsMode()
	bits, err := e.ReadBits(4)
	if err != nil {
		t.Fatalf("ReadBits: %v", err)
	}
	if bits != 0b0010 {
		t.Fatalf("ReadBits(4) = %#b, want 0b0010", bits)
	}
	total := e.EscapeBitsMode()
	if total != 4 {
		t.Fatalf("bits consumed = %d, want 4", total)
	}
	// Byte-mode resumes at the first byte AFTER the partially consumed
	// byte, not partway through it.
	b, err := e.ReadByte()
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if b != 0xFF {
		t.Fatalf("ReadByte after escape = %#x, want 0xFF", b)
	}
}

func TestBitModeReenterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on re-entering bit-mode")
		}
	}()
	e := New([]byte{0x00})
	e.EnterBitsMode()
	e.EnterBitsMode()
}

func TestHuffmanRoundTrip(t *testing.T) {
	// The "ABCDEFGH" example from RFC 1951 section 3.2.2 (also used by
	// lib/flatecut/flatecut_test.go's TestHuffmanDecode): lengths (3, 3,
	// 3, 3, 3, 2, 4, 4) for symbols A..H give canonical codes
	// F=00 A=010 B=011 C=100 D=101 E=110 G=1110 H=1111.
	lengths := []uint32{
		'A' - 'A': 3, 'B' - 'A': 3, 'C' - 'A': 3, 'D' - 'A': 3,
		'E' - 'A': 3, 'F' - 'A': 2, 'G' - 'A': 4, 'H' - 'A': 4,
	}
	table, err := NewHuffmanTable(lengths, nil, 15)
	if err != nil {
		t.Fatalf("NewHuffmanTable: %v", err)
	}

	codes := map[byte]string{
		'A': "010", 'B': "011", 'C': "100", 'D': "101",
		'E': "110", 'F': "00", 'G': "1110", 'H': "1111",
	}
	for sym, code := range codes {
		bits := encodeMSBFirst(code)
		e := New(bits)
		e.EnterBitsMode()
		got, err := table.Decode(e)
		if err != nil {
			t.Fatalf("Decode(%q): %v", code, err)
		}
		if got != uint32(sym-'A') {
			t.Fatalf("Decode(%q) = %d, want %d", code, got, sym-'A')
		}
	}
}

func TestHuffmanBadTreeRejected(t *testing.T) {
	// Under-subscribed: one length-1 code and one length-2 code fill only
	// 3/4 of the code space, which is neither the degenerate single-code
	// case nor a complete tree.
	_, err := NewHuffmanTable([]uint32{1, 2}, nil, 15)
	if !errors.Is(err, ErrBadHuffmanTree) {
		t.Fatalf("NewHuffmanTable(under-subscribed) = %v, want ErrBadHuffmanTree", err)
	}

	// Over-subscribed: three symbols all claiming the only two length-1
	// codes between them.
	_, err = NewHuffmanTable([]uint32{1, 1, 1}, nil, 15)
	if !errors.Is(err, ErrBadHuffmanTree) {
		t.Fatalf("NewHuffmanTable(over-subscribed) = %v, want ErrBadHuffmanTree", err)
	}
}

func TestReparserIsolation(t *testing.T) {
	outer := New([]byte{0xAA, 0xBB, 0xCC})
	if _, err := outer.ReadByte(); err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	outerPos := outer.Pos()
	outerSliceDepth := outer.SliceDepth()

	inflated := []byte{1, 2, 3}
	var innerSum int
	err := outer.Reparse(inflated, func(inner *Engine) error {
		for inner.Remaining() > 0 {
			b, err := inner.ReadByte()
			if err != nil {
				return err
			}
			innerSum += int(b)
		}
		return inner.Finish()
	})
	if err != nil {
		t.Fatalf("Reparse: %v", err)
	}
	if innerSum != 6 {
		t.Fatalf("innerSum = %d, want 6", innerSum)
	}
	if outer.Pos() != outerPos {
		t.Fatalf("outer pos changed by Reparse: %d != %d", outer.Pos(), outerPos)
	}
	if outer.SliceDepth() != outerSliceDepth {
		t.Fatalf("outer slice depth changed by Reparse")
	}
	if outer.InBitMode() {
		t.Fatalf("outer bit-mode changed by Reparse")
	}
}

func TestRepeatCombinators(t *testing.T) {
	isZero := func(e *Engine) bool {
		b, err := e.ReadByte()
		return err != nil || b == 0
	}

	e := New([]byte{1, 2, 3, 0, 9})
	vals, err := Repeat0(e, isZero, func(e *Engine) (byte, error) { return e.ReadByte() })
	if err != nil {
		t.Fatalf("Repeat0: %v", err)
	}
	if len(vals) != 3 || vals[0] != 1 || vals[2] != 3 {
		t.Fatalf("Repeat0 = %v, want [1 2 3]", vals)
	}

	e2 := New([]byte{0, 9})
	if _, err := Repeat1(e2, isZero, func(e *Engine) (byte, error) { return e.ReadByte() }); !IsKind(err, KindInsufficientRepeats) {
		t.Fatalf("Repeat1 on immediate end = %v, want KindInsufficientRepeats", err)
	}
}

// encodeMSBFirst packs a string of '0'/'1' characters into bytes such
// that the first character is the first bit the engine's bit-mode cursor
// reads (LSB-first within a byte), matching how canonical Huffman codes
// are conventionally written MSB-first as a bit sequence.
func encodeMSBFirst(bits string) []byte {
	var out []byte
	var cur byte
	var n uint
	for _, c := range bits {
		if c == '1' {
			cur |= 1 << n
		}
		n++
		if n == 8 {
			out = append(out, cur)
			cur, n = 0, 0
		}
	}
	if n > 0 {
		out = append(out, cur)
	}
	return out
}
