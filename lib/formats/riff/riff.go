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

// Package riff decodes a RIFF container (used by WAVE, AVI, WebP, and
// others): the outer "RIFF" <size> <form-type> header, then a sequence of
// chunks, each a 4-character ID, a little-endian size, and that many data
// bytes padded to an even boundary. A "LIST" chunk recurses: its own
// 4-character form type followed by nested chunks bounded by its size.
package riff

import (
	"encoding/binary"

	"github.com/google/decodeengine/lib/engine"
)

// Chunk is one RIFF chunk. For a "LIST" chunk, FormType and Chunks are
// set and Data is nil; otherwise Data holds the chunk's raw bytes and
// Chunks is nil.
type Chunk struct {
	ID       string
	FormType string
	Data     []byte
	Chunks   []Chunk
}

// Value is a fully decoded RIFF container.
type Value struct {
	FormType string
	Chunks   []Chunk
}

// never is the repeat0 classifier for slice-bounded chunk runs: the slice
// itself (via Remaining() reaching zero) is what stops the loop.
func never(e *engine.Engine) bool { return false }

// Decode reads a complete RIFF container.
func Decode(e *engine.Engine) (Value, error) {
	if err := e.ExpectBytes([]byte("RIFF")); err != nil {
		return Value{}, err
	}
	sizeBytes, err := e.ReadBytes(4)
	if err != nil {
		return Value{}, err
	}
	size := binary.LittleEndian.Uint32(sizeBytes)
	formTypeBytes, err := e.ReadBytes(4)
	if err != nil {
		return Value{}, err
	}
	if err := e.Where(size >= 4, "RIFF size must cover at least the form type"); err != nil {
		return Value{}, err
	}

	var chunks []Chunk
	err = e.WithSlice(int(size)-4, func() error {
		var ferr error
		chunks, ferr = engine.Repeat0(e, never, decodeChunk)
		return ferr
	})
	if err != nil {
		return Value{}, err
	}

	return Value{FormType: string(formTypeBytes), Chunks: chunks}, nil
}

func decodeChunk(e *engine.Engine) (Chunk, error) {
	idBytes, err := e.ReadBytes(4)
	if err != nil {
		return Chunk{}, err
	}
	id := string(idBytes)
	sizeBytes, err := e.ReadBytes(4)
	if err != nil {
		return Chunk{}, err
	}
	size := binary.LittleEndian.Uint32(sizeBytes)

	var chunk Chunk
	if id == "LIST" {
		if err := e.Where(size >= 4, "LIST size must cover at least its form type"); err != nil {
			return Chunk{}, err
		}
		formTypeBytes, err := e.ReadBytes(4)
		if err != nil {
			return Chunk{}, err
		}
		var sub []Chunk
		err = e.WithSlice(int(size)-4, func() error {
			var ferr error
			sub, ferr = engine.Repeat0(e, never, decodeChunk)
			return ferr
		})
		if err != nil {
			return Chunk{}, err
		}
		chunk = Chunk{ID: id, FormType: string(formTypeBytes), Chunks: sub}
	} else {
		data, err := e.ReadBytes(int(size))
		if err != nil {
			return Chunk{}, err
		}
		chunk = Chunk{ID: id, Data: data}
	}

	if size%2 == 1 {
		if _, err := e.ReadBytes(1); err != nil {
			return Chunk{}, err
		}
	}
	return chunk, nil
}
