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

// byteSource owns an immutable byte slice and a read offset. It is the
// lowest layer of an Engine: every other primitive (slices, peeks,
// alternations, bit-mode) is defined in terms of advancing or restoring
// pos within [0, end].
type byteSource struct {
	buf []byte
	pos int
	end int
}

func newByteSource(buf []byte) byteSource {
	return byteSource{buf: buf, pos: 0, end: len(buf)}
}

// remaining returns end - pos.
func (b *byteSource) remaining() int {
	return b.end - b.pos
}

// readByte returns the byte at pos and advances pos by one, or fails with
// KindOverrun if pos == end.
func (b *byteSource) readByte() (byte, error) {
	if b.pos >= b.end {
		return 0, errOverrun(idBytesourceOverrun, "read past end of input")
	}
	c := b.buf[b.pos]
	b.pos++
	return c, nil
}

// advanceBy moves pos forward by n bytes, failing with KindOverrun if
// fewer than n bytes remain.
func (b *byteSource) advanceBy(n int) error {
	if n < 0 || n > b.remaining() {
		return errOverrun(idBytesourceAdvance, "advance past end of input")
	}
	b.pos += n
	return nil
}

// offset returns the absolute current position.
func (b *byteSource) offset() int64 {
	return int64(b.pos)
}

// skipAlign advances pos to the next multiple of k, measured from the
// start of the buffer (absolute alignment, as ELF and tar require).
func (b *byteSource) skipAlign(k int) error {
	if k <= 0 {
		return nil
	}
	rem := b.pos % k
	if rem == 0 {
		return nil
	}
	return b.advanceBy(k - rem)
}

// skipRemainder advances pos to end. It cannot fail.
func (b *byteSource) skipRemainder() {
	b.pos = b.end
}

// finish succeeds iff pos == end of the outermost buffer.
func (b *byteSource) finish() error {
	if b.pos != len(b.buf) {
		return errTrailingBytes(idSliceTrailing, "bytes remain after top-level parse")
	}
	return nil
}

// peekByte returns the byte at pos without advancing, failing with
// KindOverrun if pos == end. Used by the C9 peek-dispatch classifiers,
// which must inspect upcoming bytes without committing a read.
func (b *byteSource) peekByte() (byte, error) {
	if b.pos >= b.end {
		return 0, errOverrun(idBytesourceOverrun, "peek past end of input")
	}
	return b.buf[b.pos], nil
}

// peekBytes returns up to n bytes starting at pos without advancing. It
// may return fewer than n bytes (never more) if the slice end is closer
// than n bytes away; it never fails.
func (b *byteSource) peekBytes(n int) []byte {
	if n > b.remaining() {
		n = b.remaining()
	}
	if n <= 0 {
		return nil
	}
	return b.buf[b.pos : b.pos+n]
}

// sliceAbs returns buf[start:b.pos], the bytes consumed since the
// absolute offset start. start must not exceed b.pos.
func (b *byteSource) sliceAbs(start int) []byte {
	return b.buf[start:b.pos]
}
