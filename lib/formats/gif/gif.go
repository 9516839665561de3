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

// Package gif decodes a GIF87a/GIF89a stream down to its block structure:
// the header and logical screen descriptor (with an optional global color
// table), a run of extension and image-descriptor blocks each built from
// GIF's generic size-prefixed data sub-blocks, and the trailer byte.
// Pixel data is returned as its raw (still LZW-compressed) sub-block
// bytes; LZW decompression is a distinct image codec and out of scope.
package gif

import (
	"github.com/google/decodeengine/lib/engine"
)

const (
	blockExtension       = 0x21
	blockImageDescriptor = 0x2C
	blockTrailer         = 0x3B
)

// ScreenDescriptor is GIF's fixed 7-byte logical screen descriptor.
type ScreenDescriptor struct {
	Width            uint16
	Height           uint16
	GlobalColorTable bool
	ColorResolution  byte
	SortFlag         bool
	GlobalTableSize  byte // 2^(n+1) colors.
	BackgroundIndex  byte
	PixelAspectRatio byte
}

// Extension is an Extension-Introducer (0x21) block: a label byte
// followed by a run of generic data sub-blocks.
type Extension struct {
	Label byte
	Data  [][]byte
}

// Image is an Image-Descriptor (0x2C) block: its geometry, an optional
// local color table, and its still-LZW-compressed data sub-blocks.
type Image struct {
	Left            uint16
	Top             uint16
	Width           uint16
	Height          uint16
	LocalColorTable []byte
	Interlace       bool
	LZWMinCodeSize  byte
	Data            [][]byte
}

// Block is one top-level block: exactly one of Extension or Image is set.
type Block struct {
	Extension *Extension
	Image     *Image
}

// Value is a fully decoded GIF stream.
type Value struct {
	Version          string // "87a" or "89a".
	Screen           ScreenDescriptor
	GlobalColorTable []byte
	Blocks           []Block
}

var headerMagic = []byte("GIF")

func isTrailer(e *engine.Engine) bool {
	b, err := e.ReadByte()
	return err != nil || b == blockTrailer
}

func isZeroSizeByte(e *engine.Engine) bool {
	b, err := e.ReadByte()
	return err != nil || b == 0
}

// Decode reads a complete GIF stream.
func Decode(e *engine.Engine) (Value, error) {
	if err := e.ExpectBytes(headerMagic); err != nil {
		return Value{}, err
	}
	versionBytes, err := e.ReadBytes(3)
	if err != nil {
		return Value{}, err
	}
	version := string(versionBytes)
	if err := e.Where(version == "87a" || version == "89a", "unrecognized GIF version"); err != nil {
		return Value{}, err
	}

	screen, err := decodeScreenDescriptor(e)
	if err != nil {
		return Value{}, err
	}

	var globalTable []byte
	if screen.GlobalColorTable {
		n := 3 * (1 << (uint(screen.GlobalTableSize) + 1))
		globalTable, err = e.ReadBytes(n)
		if err != nil {
			return Value{}, err
		}
	}

	blocks, err := engine.Repeat0(e, isTrailer, decodeBlock)
	if err != nil {
		return Value{}, err
	}
	if err := e.ExpectByte(blockTrailer); err != nil {
		return Value{}, err
	}

	return Value{
		Version:          version,
		Screen:           screen,
		GlobalColorTable: globalTable,
		Blocks:           blocks,
	}, nil
}

func decodeScreenDescriptor(e *engine.Engine) (ScreenDescriptor, error) {
	raw, err := e.ReadBytes(7)
	if err != nil {
		return ScreenDescriptor{}, err
	}
	packed := raw[4]
	return ScreenDescriptor{
		Width:            le16(raw[0:2]),
		Height:           le16(raw[2:4]),
		GlobalColorTable: packed&0x80 != 0,
		ColorResolution:  (packed >> 4) & 0x07,
		SortFlag:         packed&0x08 != 0,
		GlobalTableSize:  packed & 0x07,
		BackgroundIndex:  raw[5],
		PixelAspectRatio: raw[6],
	}, nil
}

func decodeBlock(e *engine.Engine) (Block, error) {
	introducer, err := e.ReadByte()
	if err != nil {
		return Block{}, err
	}
	switch introducer {
	case blockExtension:
		ext, err := decodeExtension(e)
		if err != nil {
			return Block{}, err
		}
		return Block{Extension: &ext}, nil
	case blockImageDescriptor:
		img, err := decodeImage(e)
		if err != nil {
			return Block{}, err
		}
		return Block{Image: &img}, nil
	default:
		return Block{}, engine.NewExcludedBranchError("unrecognized GIF block introducer")
	}
}

func decodeExtension(e *engine.Engine) (Extension, error) {
	label, err := e.ReadByte()
	if err != nil {
		return Extension{}, err
	}
	data, err := decodeSubBlocks(e)
	if err != nil {
		return Extension{}, err
	}
	return Extension{Label: label, Data: data}, nil
}

func decodeImage(e *engine.Engine) (Image, error) {
	raw, err := e.ReadBytes(9)
	if err != nil {
		return Image{}, err
	}
	packed := raw[8]
	img := Image{
		Left:      le16(raw[0:2]),
		Top:       le16(raw[2:4]),
		Width:     le16(raw[4:6]),
		Height:    le16(raw[6:8]),
		Interlace: packed&0x40 != 0,
	}
	if packed&0x80 != 0 {
		n := 3 * (1 << ((packed & 0x07) + 1))
		img.LocalColorTable, err = e.ReadBytes(n)
		if err != nil {
			return Image{}, err
		}
	}
	img.LZWMinCodeSize, err = e.ReadByte()
	if err != nil {
		return Image{}, err
	}
	img.Data, err = decodeSubBlocks(e)
	if err != nil {
		return Image{}, err
	}
	return img, nil
}

// decodeSubBlocks reads GIF's generic size-prefixed data sub-block run,
// stopping at and consuming the zero-size terminator byte.
func decodeSubBlocks(e *engine.Engine) ([][]byte, error) {
	blocks, err := engine.Repeat0(e, isZeroSizeByte, decodeSubBlock)
	if err != nil {
		return nil, err
	}
	if err := e.ExpectByte(0); err != nil {
		return nil, err
	}
	return blocks, nil
}

func decodeSubBlock(e *engine.Engine) ([]byte, error) {
	size, err := e.ReadByte()
	if err != nil {
		return nil, err
	}
	return e.ReadBytes(int(size))
}

func le16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}
