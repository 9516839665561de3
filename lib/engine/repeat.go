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

// IsEnd classifies the upcoming bytes without consuming them: it is
// always invoked by the repeat combinators from inside a peek context, so
// any reads it performs are rolled back regardless of its return value.
// Format schemas build IsEnd funcs from a ByteSet switch over one or a
// small fixed window of peeked bytes (a "peek-dispatch" classifier),
// e.g. tar's digit-or-NUL-or-space classifier.
type IsEnd func(e *Engine) bool

// peekIsEnd runs classify inside a peek context, guaranteeing its cursor
// movement is discarded before the caller ever sees the bool.
func peekIsEnd(e *Engine, classify IsEnd) bool {
	e.OpenPeekContext()
	r := classify(e)
	e.ClosePeekContext()
	return r
}

// Repeat0 parses zero or more elements with parseElem, stopping as soon as
// classify reports "end" or the buffer is exhausted.
func Repeat0[T any](e *Engine, classify IsEnd, parseElem func(*Engine) (T, error)) ([]T, error) {
	var out []T
	for e.Remaining() > 0 && !peekIsEnd(e, classify) {
		v, err := parseElem(e)
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Repeat1 parses at least one element, failing with
// KindInsufficientRepeats if the very first iteration classifies as end.
func Repeat1[T any](e *Engine, classify IsEnd, parseElem func(*Engine) (T, error)) ([]T, error) {
	if e.Remaining() == 0 || peekIsEnd(e, classify) {
		return nil, errInsufficientRepeats(idRepeatInsufficient, "repeat1 produced zero elements")
	}
	out := []T{}
	for {
		v, err := parseElem(e)
		if err != nil {
			return out, err
		}
		out = append(out, v)
		if e.Remaining() == 0 || peekIsEnd(e, classify) {
			return out, nil
		}
	}
}

// RepeatCount parses exactly n elements. Any element failure is returned
// immediately; RepeatCount does not itself consult a classifier.
func RepeatCount[T any](e *Engine, n int, parseElem func(*Engine) (T, error)) ([]T, error) {
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, err := parseElem(e)
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// RepeatBetween parses between lo and hi elements (inclusive), stopping
// as soon as classify reports "end" and the lo minimum has been met, or
// force-stopping once hi elements have been parsed.
func RepeatBetween[T any](e *Engine, lo, hi int, classify IsEnd, parseElem func(*Engine) (T, error)) ([]T, error) {
	out := make([]T, 0, lo)
	for len(out) < hi {
		if len(out) >= lo && (e.Remaining() == 0 || peekIsEnd(e, classify)) {
			break
		}
		v, err := parseElem(e)
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	if len(out) < lo {
		return out, errInsufficientRepeats(idRepeatInsufficient, "repeat_between below minimum count")
	}
	return out, nil
}
