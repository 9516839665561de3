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

// altFrame is the state an alternation checkpoints before its first
// alternative runs, so NextAlt(false) can roll every sub-stack back to
// exactly this point.
type altFrame struct {
	pos       int
	sliceDeep int
	peekDeep  int
}

// StartAlt pushes a new alternation frame, capturing pos and the current
// slice/peek stack depths.
func (e *Engine) StartAlt() error {
	if len(e.altStack) >= e.limits.MaxAltDepth {
		return errOverrun(idAltExhausted, "alternation nesting exceeds limit")
	}
	e.altStack = append(e.altStack, altFrame{
		pos:       e.src.pos,
		sliceDeep: len(e.sliceStack),
		peekDeep:  len(e.peekStack),
	})
	return nil
}

// NextAlt is called after an alternative fails. If committed is false, it
// restores pos and the slice/peek stack depths to the top alternation
// frame so the next alternative can run from a clean state; the frame
// stays on the stack. If committed is true, the failure is irrecoverable
// within this frame: stack depths are still restored (so sibling
// alternations above this one are unaffected) but pos is left where the
// committed alternative's partial read left it, and the caller must treat
// this as the whole alternation's failure rather than trying further
// alternatives.
func (e *Engine) NextAlt(committed bool) {
	if len(e.altStack) == 0 {
		panic("engine: NextAlt with no active alternation")
	}
	f := e.altStack[len(e.altStack)-1]
	e.unwindTo(f.sliceDeep, f.peekDeep)
	if !committed {
		e.src.pos = f.pos
	}
}

// EndAlt pops the top alternation frame after a successful alternative
// (or after the caller has given up on every alternative and is
// propagating the last failure itself).
func (e *Engine) EndAlt() {
	if len(e.altStack) == 0 {
		panic("engine: EndAlt with no active alternation")
	}
	e.altStack = e.altStack[:len(e.altStack)-1]
}

// AltDepth returns the number of currently open alternation frames.
func (e *Engine) AltDepth() int {
	return len(e.altStack)
}

// unwindTo pops slice and peek entries down to the given depths,
// discarding their saved state without honoring slice-end or peek-restore
// semantics (those stacks are conceptually abandoned, not closed).
func (e *Engine) unwindTo(sliceDeep, peekDeep int) {
	if sliceDeep < len(e.sliceStack) {
		e.src.end = e.sliceStack[sliceDeep]
		e.sliceStack = e.sliceStack[:sliceDeep]
	}
	if peekDeep < len(e.peekStack) {
		e.peekStack = e.peekStack[:peekDeep]
	}
}

// Alternative is one arm of an Alternation: Try attempts to parse it and
// returns its result. Committed indicates whether, should Try fail, the
// whole alternation must fail rather than advancing to the next
// Alternative. The flag is fixed before Try runs; it cannot be set partway
// through an alternative (e.g. once a magic number has matched).
type Alternative struct {
	Try       func() (any, error)
	Committed bool
}

// Alternation runs each Alternative in order, rolling the cursor and
// stack depths back between failed attempts, and returns the first one
// that succeeds. If every alternative fails, it returns the last
// alternative's error (or, if a Committed alternative failed, that
// alternative's error, since no further alternatives are tried).
func (e *Engine) Alternation(alts []Alternative) (any, error) {
	if err := e.StartAlt(); err != nil {
		return nil, err
	}

	var lastErr error = errAltExhausted()
	for i, alt := range alts {
		val, err := alt.Try()
		if err == nil {
			e.EndAlt()
			return val, nil
		}
		lastErr = err
		last := i == len(alts)-1
		if alt.Committed || last {
			e.NextAlt(true)
			e.EndAlt()
			return nil, lastErr
		}
		e.NextAlt(false)
	}
	e.EndAlt()
	return nil, lastErr
}

func errAltExhausted() error {
	return errExcludedBranch(idAltExhausted, "no alternative matched")
}
