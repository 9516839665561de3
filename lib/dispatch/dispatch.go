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

// Package dispatch is the top-level format recognizer: it tries each
// known format's Decode in a fixed order, via engine.Alternation, and
// returns the first that succeeds. Every alternative but the last rolls
// the cursor back on failure and lets the next alternative try; the text
// fallback is the last alternative, so its failure is the whole decode's
// failure. No binary format is committed: an input whose magic matches a
// format but whose decode fails (e.g. a truncated ELF) still falls
// through to the later alternatives and decodes as text if it is valid
// UTF-8.
package dispatch

import (
	"github.com/google/decodeengine/lib/engine"
	"github.com/google/decodeengine/lib/formats/elf"
	"github.com/google/decodeengine/lib/formats/gif"
	"github.com/google/decodeengine/lib/formats/gzip"
	"github.com/google/decodeengine/lib/formats/jpeg"
	"github.com/google/decodeengine/lib/formats/mpeg4"
	"github.com/google/decodeengine/lib/formats/peano"
	"github.com/google/decodeengine/lib/formats/png"
	"github.com/google/decodeengine/lib/formats/riff"
	"github.com/google/decodeengine/lib/formats/tar"
	"github.com/google/decodeengine/lib/formats/text"
	"github.com/google/decodeengine/lib/formats/tgz"
	"github.com/google/decodeengine/lib/formats/tiff"
	"github.com/google/decodeengine/lib/formats/waldo"
)

// Value is a tagged union over every format this package recognizes.
// Format names which field is populated.
type Value struct {
	Format string

	Waldo *waldo.Value
	Peano *peano.Value
	GIF   *gif.Value
	Tgz   *tgz.Value
	Gzip  *gzip.Value
	JPEG  *jpeg.Value
	MPEG4 *mpeg4.Value
	PNG   *png.Value
	RIFF  *riff.Value
	TIFF  *tiff.Value
	Tar   *tar.Value
	ELF   *elf.Header
	Text  *text.Value
}

// Decode recognizes and parses e's content as the first format in trial
// order that successfully parses it, falling back to UTF-8 text.
func Decode(e *engine.Engine) (Value, error) {
	val, err := e.Alternation([]engine.Alternative{
		alt("waldo", false, func() (any, error) {
			v, err := waldo.Decode(e)
			return v, err
		}),
		alt("peano", false, func() (any, error) {
			v, err := peano.Decode(e)
			return v, err
		}),
		alt("gif", false, func() (any, error) {
			v, err := gif.Decode(e)
			return v, err
		}),
		alt("tgz", false, func() (any, error) {
			v, err := tgz.Decode(e)
			return v, err
		}),
		alt("gzip", false, func() (any, error) {
			v, err := gzip.Decode(e)
			return v, err
		}),
		alt("jpeg", false, func() (any, error) {
			v, err := jpeg.Decode(e)
			return v, err
		}),
		alt("mpeg4", false, func() (any, error) {
			v, err := mpeg4.Decode(e)
			return v, err
		}),
		alt("png", false, func() (any, error) {
			v, err := png.Decode(e)
			return v, err
		}),
		alt("riff", false, func() (any, error) {
			v, err := riff.Decode(e)
			return v, err
		}),
		alt("tiff", false, func() (any, error) {
			v, err := tiff.Decode(e)
			return v, err
		}),
		alt("tar", false, func() (any, error) {
			v, err := tar.Decode(e)
			return v, err
		}),
		alt("elf", false, func() (any, error) {
			v, err := elf.Decode(e)
			return v, err
		}),
		alt("text", true, func() (any, error) {
			v, err := text.Decode(e)
			return v, err
		}),
	})
	if err != nil {
		return Value{}, err
	}
	return val.(taggedValue).toValue(), nil
}

// taggedValue pairs a format name with its untyped decoded value, so the
// single Alternation result can be routed back into Value's matching
// typed field without a second type switch over every format.
type taggedValue struct {
	format string
	v      any
}

func (t taggedValue) toValue() Value {
	switch v := t.v.(type) {
	case waldo.Value:
		return Value{Format: t.format, Waldo: &v}
	case peano.Value:
		return Value{Format: t.format, Peano: &v}
	case gif.Value:
		return Value{Format: t.format, GIF: &v}
	case tgz.Value:
		return Value{Format: t.format, Tgz: &v}
	case gzip.Value:
		return Value{Format: t.format, Gzip: &v}
	case jpeg.Value:
		return Value{Format: t.format, JPEG: &v}
	case mpeg4.Value:
		return Value{Format: t.format, MPEG4: &v}
	case png.Value:
		return Value{Format: t.format, PNG: &v}
	case riff.Value:
		return Value{Format: t.format, RIFF: &v}
	case tiff.Value:
		return Value{Format: t.format, TIFF: &v}
	case tar.Value:
		return Value{Format: t.format, Tar: &v}
	case elf.Header:
		return Value{Format: t.format, ELF: &v}
	case text.Value:
		return Value{Format: t.format, Text: &v}
	}
	return Value{Format: t.format}
}

// alt wraps a per-format Decode call as an engine.Alternative, tagging
// its result with the format name on success.
func alt(format string, committed bool, try func() (any, error)) engine.Alternative {
	return engine.Alternative{
		Committed: committed,
		Try: func() (any, error) {
			v, err := try()
			if err != nil {
				return nil, err
			}
			return taggedValue{format: format, v: v}, nil
		},
	}
}
