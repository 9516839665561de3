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

// Package mpeg4 decodes an ISO base-media (MPEG-4/QuickTime) container
// down to its atom tree: a run of top-level atoms, each a big-endian
// 32-bit size, a 4-character type, and that much payload, with a handful
// of well-known container types ("moov", "trak", "mdia", "minf", "stbl",
// "udta", "edts", "dinf", "meta", "mdat" is not one of them) recursing
// into their own nested atom run bounded by the outer atom's size.
package mpeg4

import (
	"encoding/binary"

	"github.com/google/decodeengine/lib/engine"
)

// containerTypes are the atom types this package descends into rather
// than treating as an opaque payload.
var containerTypes = map[string]bool{
	"moov": true,
	"trak": true,
	"mdia": true,
	"minf": true,
	"stbl": true,
	"udta": true,
	"edts": true,
	"dinf": true,
	"meta": true,
	"mvex": true,
	"moof": true,
	"traf": true,
}

// Atom is one ISO-BMFF atom (also called a "box"). For a container atom,
// Children is set and Data is nil; otherwise Data holds the atom's raw
// payload bytes and Children is nil.
type Atom struct {
	Type     string
	Children []Atom
	Data     []byte
}

// Value is a fully decoded ISO-BMFF stream: its top-level atom run.
type Value struct {
	Atoms []Atom
}

func never(e *engine.Engine) bool { return false }

// Decode reads a run of top-level atoms until the input is exhausted.
func Decode(e *engine.Engine) (Value, error) {
	atoms, err := engine.Repeat0(e, never, decodeAtom)
	if err != nil {
		return Value{}, err
	}
	return Value{Atoms: atoms}, nil
}

func decodeAtom(e *engine.Engine) (Atom, error) {
	sizeBytes, err := e.ReadBytes(4)
	if err != nil {
		return Atom{}, err
	}
	size := int64(binary.BigEndian.Uint32(sizeBytes))
	typeBytes, err := e.ReadBytes(4)
	if err != nil {
		return Atom{}, err
	}
	typ := string(typeBytes)
	headerSize := int64(8)

	if size == 1 {
		extBytes, err := e.ReadBytes(8)
		if err != nil {
			return Atom{}, err
		}
		size = int64(binary.BigEndian.Uint64(extBytes))
		headerSize = 16
	} else if size == 0 {
		// "Extends to end of file": consume everything the active slice
		// (or, at top level, the whole remaining buffer) still holds.
		size = headerSize + int64(e.Remaining())
	}
	if err := e.Where(size >= headerSize, "atom size must cover its own header"); err != nil {
		return Atom{}, err
	}
	payloadSize := int(size - headerSize)

	if containerTypes[typ] {
		var children []Atom
		err := e.WithSlice(payloadSize, func() error {
			var ferr error
			children, ferr = engine.Repeat0(e, never, decodeAtom)
			return ferr
		})
		if err != nil {
			return Atom{}, err
		}
		return Atom{Type: typ, Children: children}, nil
	}

	data, err := e.ReadBytes(payloadSize)
	if err != nil {
		return Atom{}, err
	}
	return Atom{Type: typ, Data: data}, nil
}
