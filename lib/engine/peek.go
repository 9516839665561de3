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

// OpenPeekContext saves pos, to be restored unconditionally by
// ClosePeekContext. Used for lookahead whose cursor movement must never
// be observed by the caller.
func (e *Engine) OpenPeekContext() {
	e.peekStack = append(e.peekStack, e.src.pos)
}

// ClosePeekContext pops the most recently opened peek context, restoring
// pos to the value it held when that context was opened, regardless of
// how far reads inside it advanced pos or whether they failed.
func (e *Engine) ClosePeekContext() {
	if len(e.peekStack) == 0 {
		panic("engine: ClosePeekContext with no open peek context")
	}
	saved := e.peekStack[len(e.peekStack)-1]
	e.peekStack = e.peekStack[:len(e.peekStack)-1]
	e.src.pos = saved
}

// PeekDepth returns the number of currently open peek contexts.
func (e *Engine) PeekDepth() int {
	return len(e.peekStack)
}

// Peek runs fn with the cursor at its current position, then restores the
// cursor before returning fn's result: the general form of
// OpenPeekContext/ClosePeekContext, used wherever a sub-parser's cursor
// movement must be inspected for success but never kept.
func (e *Engine) Peek(fn func() error) error {
	e.OpenPeekContext()
	err := fn()
	e.ClosePeekContext()
	return err
}

// PeekNot runs fn and succeeds (returning nil) exactly when fn fails; it
// fails with KindNegatedSuccess when fn succeeds. Either way, fn's cursor
// movement is discarded. PeekNot does not distinguish fn's failure kinds.
func (e *Engine) PeekNot(fn func() error) error {
	e.OpenPeekContext()
	err := fn()
	e.ClosePeekContext()
	if err == nil {
		return errNegatedSuccess(idSliceTrailing, "peek-not sub-parser succeeded")
	}
	return nil
}

// Excursion performs an absolute-offset peek: it saves pos, jumps to the
// given absolute offset (which must lie within the whole input buffer,
// not just the current slice), runs fn, and restores pos to its saved
// value regardless of fn's outcome. This is the primitive ELF uses to
// visit program/section headers via phoff/shoff, and TIFF-in-Exif uses to
// visit IFDs via byte-order-sensitive offsets.
//
// Excursion temporarily lifts the current slice bound to the whole buffer
// for the duration of fn, since the target offset is typically outside
// whatever slice is active when the excursion is requested: it presumes
// the whole input is available and indexed, not just the active slice.
func (e *Engine) Excursion(absOffset int64, fn func() error) error {
	if absOffset < 0 || absOffset > int64(len(e.src.buf)) {
		return errOverrun(idBytesourceOverrun, "excursion offset out of bounds")
	}
	savedPos := e.src.pos
	savedEnd := e.src.end
	e.src.pos = int(absOffset)
	e.src.end = len(e.src.buf)
	err := fn()
	e.src.pos = savedPos
	e.src.end = savedEnd
	return err
}
