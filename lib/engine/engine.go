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

// Package engine implements the stream-parsing engine that format schemas
// (lib/formats/...) are written against: byte-accurate and bit-accurate
// cursors over an input buffer, nested bounded slices, absolute-offset
// peek windows, speculative alternation with rollback, canonical Huffman
// table construction/decoding, and a reparse operation for inflated
// byte vectors.
//
// This package holds no process-wide mutable state: every operation is a
// method on an *Engine, and distinct Engine values (even over the same
// underlying buffer) never interact.
package engine

// Limits bounds pathological inputs. The engine does not impose a
// wall-clock limit (spec says callers do that externally) but it does
// cap structural nesting, matching compression.Level's shape of a typed
// value with named defaults rather than a flags/env config layer.
type Limits struct {
	// MaxSliceDepth is the maximum number of nested slice pushes.
	MaxSliceDepth int

	// MaxAltDepth is the maximum number of nested alternation frames.
	MaxAltDepth int

	// MaxHuffmanCodeBits is a canonical code length cap for callers to pass
	// to NewHuffmanTable as maxBits. The engine does not apply it itself:
	// NewHuffmanTable takes its cap only from that argument.
	MaxHuffmanCodeBits int
}

// DefaultLimits is used by New when no Limits are supplied.
var DefaultLimits = Limits{
	MaxSliceDepth:      64,
	MaxAltDepth:        32,
	MaxHuffmanCodeBits: 15,
}

// Engine is one stream-parsing instance over a single immutable input
// buffer. The zero value is not usable; construct with New.
type Engine struct {
	src byteSource

	limits Limits

	sliceStack []int // saved `end` values, one per active slice push.
	peekStack  []int // saved `pos` values, one per open peek context.
	altStack   []altFrame

	bits bitCursor
}

// New wraps buf in a fresh Engine with DefaultLimits.
func New(buf []byte) *Engine {
	return NewWithLimits(buf, DefaultLimits)
}

// NewWithLimits wraps buf in a fresh Engine using the given Limits.
func NewWithLimits(buf []byte, limits Limits) *Engine {
	return &Engine{
		src:    newByteSource(buf),
		limits: limits,
	}
}

// Pos returns the current absolute read offset.
func (e *Engine) Pos() int64 {
	return e.src.offset()
}

// Remaining returns the number of bytes readable before the current
// effective end (the innermost active slice, or the buffer length).
func (e *Engine) Remaining() int {
	return e.src.remaining()
}

// Len returns the length of the whole underlying buffer, independent of
// any slice currently in effect.
func (e *Engine) Len() int {
	return len(e.src.buf)
}

// InBitMode reports whether the engine is currently in bit-mode (C6).
func (e *Engine) InBitMode() bool {
	return e.bits.active
}

// ReadByte reads and returns the next byte, advancing pos by one. It is a
// programming error to call this while in bit-mode; callers must
// EscapeBitsMode first.
func (e *Engine) ReadByte() (byte, error) {
	if e.bits.active {
		panic("engine: ReadByte called while in bit-mode")
	}
	return e.src.readByte()
}

// ReadBytes reads and returns exactly n bytes, advancing pos by n.
func (e *Engine) ReadBytes(n int) ([]byte, error) {
	if e.bits.active {
		panic("engine: ReadBytes called while in bit-mode")
	}
	if n < 0 || n > e.src.remaining() {
		return nil, errOverrun(idBytesourceOverrun, "not enough bytes remaining")
	}
	start := e.src.pos
	if err := e.src.advanceBy(n); err != nil {
		return nil, err
	}
	return e.src.buf[start:e.src.pos], nil
}

// ExpectByte reads one byte and fails with KindExcludedBranch unless it
// equals want.
func (e *Engine) ExpectByte(want byte) error {
	got, err := e.ReadByte()
	if err != nil {
		return err
	}
	if got != want {
		return errExcludedBranch(idBytesourceOverrun, "literal byte mismatch")
	}
	return nil
}

// ExpectBytes reads len(want) bytes and fails with KindExcludedBranch
// unless they equal want exactly.
func (e *Engine) ExpectBytes(want []byte) error {
	got, err := e.ReadBytes(len(want))
	if err != nil {
		return err
	}
	for i := range want {
		if got[i] != want[i] {
			return errExcludedBranch(idBytesourceOverrun, "literal byte string mismatch")
		}
	}
	return nil
}

// ReadIf reads one byte and fails with KindExcludedBranch unless it is a
// member of set.
func (e *Engine) ReadIf(set ByteSet) (byte, error) {
	got, err := e.ReadByte()
	if err != nil {
		return 0, err
	}
	if !set.Contains(got) {
		e.src.pos--
		return 0, errExcludedBranch(idBytesourceOverrun, "byte excluded from set")
	}
	return got, nil
}

// Where fails the parse with KindFalsifiedWhere unless ok is true. It
// models a post-read predicate, e.g. "length <= 2^31-1".
func (e *Engine) Where(ok bool, reason string) error {
	if !ok {
		return errFalsifiedWhere(idSliceTooLarge, reason)
	}
	return nil
}

// SkipAlign advances pos to the next multiple of k, measured from the
// start of the whole buffer.
func (e *Engine) SkipAlign(k int) error {
	if e.bits.active {
		panic("engine: SkipAlign called while in bit-mode")
	}
	return e.src.skipAlign(k)
}

// SkipRemainder advances pos to the current effective end. It cannot fail.
func (e *Engine) SkipRemainder() {
	e.src.skipRemainder()
}

// Finish succeeds iff pos equals the length of the whole input buffer;
// otherwise it fails with KindTrailingBytes.
func (e *Engine) Finish() error {
	return e.src.finish()
}

// PeekRunePrefix returns up to utf8.UTFMax bytes starting at pos without
// advancing, for callers that need to classify the next rune before
// committing to consume it.
func (e *Engine) PeekRunePrefix() []byte {
	const utfMax = 4
	return e.src.peekBytes(utfMax)
}

// BufferSince returns the bytes consumed between the absolute offset
// start and the current pos. start must be a value previously returned
// by Pos on this same Engine.
func (e *Engine) BufferSince(start int64) ([]byte, error) {
	if start < 0 || int(start) > e.src.pos {
		return nil, errOverrun(idBytesourceOverrun, "BufferSince start is ahead of pos")
	}
	return e.src.sliceAbs(int(start)), nil
}
