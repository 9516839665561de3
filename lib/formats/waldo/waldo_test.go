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

package waldo

import (
	"encoding/binary"
	"testing"

	"github.com/google/decodeengine/lib/engine"
)

func buildWaldo(targetOffset uint64, gapFiller byte, prefixLen int) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, targetOffset)
	for len(buf) < prefixLen {
		buf = append(buf, gapFiller)
	}
	buf = append(buf, Marker...)
	return buf
}

func TestDecode(t *testing.T) {
	buf := buildWaldo(12, 0, 12)
	e := engine.New(buf)
	v, err := Decode(e)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.TargetOffset != 12 {
		t.Fatalf("TargetOffset = %d, want 12", v.TargetOffset)
	}
	if e.Pos() != 8 {
		t.Fatalf("pos after Decode = %d, want 8 (excursion must not leak)", e.Pos())
	}
}

func TestDecodeBadMarker(t *testing.T) {
	buf := buildWaldo(8, 0, 8)
	copy(buf[8:], "NOTITT")
	e := engine.New(buf)
	if _, err := Decode(e); err == nil {
		t.Fatalf("expected failure when marker is absent at target offset")
	}
}
