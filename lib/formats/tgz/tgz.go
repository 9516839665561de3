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

// Package tgz decodes a gzip-compressed tar archive: an outer
// lib/formats/gzip member whose inflated bytes are reparsed as a
// lib/formats/tar archive, the same "decompress then reparse" pattern
// lib/formats/png uses for its zlib-wrapped IDAT payload.
package tgz

import (
	"github.com/google/decodeengine/lib/engine"
	"github.com/google/decodeengine/lib/formats/gzip"
	"github.com/google/decodeengine/lib/formats/tar"
)

// Value is a fully decoded gzip-compressed tar archive.
type Value struct {
	Gzip gzip.Value
	Tar  tar.Value
}

// Decode reads one gzip member and reparses its inflated bytes as tar.
func Decode(e *engine.Engine) (Value, error) {
	gz, err := gzip.Decode(e)
	if err != nil {
		return Value{}, err
	}

	var tv tar.Value
	err = e.Reparse(gz.Decoded, func(inner *engine.Engine) error {
		var ferr error
		tv, ferr = tar.Decode(inner)
		return ferr
	})
	if err != nil {
		return Value{}, err
	}

	return Value{Gzip: gz, Tar: tv}, nil
}
