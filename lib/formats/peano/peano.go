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

// Package peano decodes the toy "peano" format: a unary counter made of
// zero or more 'S' (successor) bytes followed by a single terminating
// 'Z' (zero) byte, spelling out a Peano numeral. "SSSZ" decodes to the
// value 3, "Z" decodes to 0.
//
// peano exists purely to exercise the engine's repeat0 combinator in
// isolation, the way a unit test would: no slices, no alternation, no
// bit-mode, just one classifier and one loop.
package peano

import "github.com/google/decodeengine/lib/engine"

// Value is a decoded peano numeral.
type Value struct {
	N uint64
}

var successorSet = engine.NewByteSet('S')

// isZero classifies the upcoming byte: true if it's 'Z' or if the input
// is exhausted. It is always invoked from inside a peek context by
// engine.Repeat0, so the read it performs here never advances the
// caller's cursor.
func isZero(e *engine.Engine) bool {
	b, err := e.ReadByte()
	return err != nil || b == 'Z'
}

// Decode parses a peano numeral: Repeat0 consumes 'S' bytes until the
// classifier sees 'Z', then the terminating 'Z' itself is read directly.
func Decode(e *engine.Engine) (Value, error) {
	esses, err := engine.Repeat0(e, isZero, func(e *engine.Engine) (byte, error) {
		return e.ReadIf(successorSet)
	})
	if err != nil {
		return Value{}, err
	}
	if err := e.ExpectByte('Z'); err != nil {
		return Value{}, err
	}
	return Value{N: uint64(len(esses))}, nil
}
