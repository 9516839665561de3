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

// StartSlice pushes the current effective end and installs a tighter one
// at pos+size, failing with KindOverrun if fewer than size bytes remain.
// A slice is a strictly nested region: every EndSlice or ReleaseSlice
// must pop exactly the slice StartSlice pushed, in LIFO order with peek
// contexts and alternation frames.
func (e *Engine) StartSlice(size int) error {
	if len(e.sliceStack) >= e.limits.MaxSliceDepth {
		return errOverrun(idSliceTooLarge, "slice nesting exceeds limit")
	}
	if size < 0 || size > e.src.remaining() {
		return errOverrun(idSliceTooLarge, "slice size exceeds remaining input")
	}
	e.sliceStack = append(e.sliceStack, e.src.end)
	e.src.end = e.src.pos + size
	return nil
}

// EndSlice pops the slice pushed by the matching StartSlice. It requires
// pos == end (the slice was fully, exactly consumed); otherwise it fails
// with KindTrailingInSlice and the slice is still popped (the caller is
// expected to propagate the failure up through an alternation or give
// up the whole parse).
func (e *Engine) EndSlice() error {
	if len(e.sliceStack) == 0 {
		panic("engine: EndSlice with no active slice")
	}
	tight := e.src.pos == e.src.end
	prev := e.sliceStack[len(e.sliceStack)-1]
	e.sliceStack = e.sliceStack[:len(e.sliceStack)-1]
	e.src.end = prev
	if !tight {
		return errTrailingInSlice(idSliceTrailing, "unread bytes remain in slice")
	}
	return nil
}

// ReleaseSlice pops the slice pushed by the matching StartSlice without
// requiring pos == end (the "slack" release form, used when trailing
// unread bytes inside the slice are expected and not an error). It
// cannot fail.
func (e *Engine) ReleaseSlice() {
	if len(e.sliceStack) == 0 {
		panic("engine: ReleaseSlice with no active slice")
	}
	prev := e.sliceStack[len(e.sliceStack)-1]
	e.sliceStack = e.sliceStack[:len(e.sliceStack)-1]
	e.src.end = prev
}

// SliceDepth returns the number of currently active slice pushes.
func (e *Engine) SliceDepth() int {
	return len(e.sliceStack)
}

// WithSlice runs fn inside a slice of the given size, always popping the
// slice (tight form) before returning, and propagating fn's error (if
// any) in preference to a trailing-bytes error from the pop itself.
func (e *Engine) WithSlice(size int, fn func() error) error {
	if err := e.StartSlice(size); err != nil {
		return err
	}
	ferr := fn()
	if ferr != nil {
		e.ReleaseSlice()
		return ferr
	}
	return e.EndSlice()
}
