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

// Reparse constructs a fresh Engine over v (a byte vector produced during
// the outer parse, e.g. inflated PNG IDAT bytes or an inflated MPEG-4
// payload) with empty slice/peek/alternation stacks and bit-mode off, and
// runs fn against it. The outer engine e is completely untouched: fn
// receives a different *Engine value, so there is no way for it to reach
// back into e's cursor, bit-mode state, or stacks. This is the only
// correct way to treat a previously produced byte vector as a fresh input
// stream.
func (e *Engine) Reparse(v []byte, fn func(inner *Engine) error) error {
	inner := NewWithLimits(v, e.limits)
	return fn(inner)
}
