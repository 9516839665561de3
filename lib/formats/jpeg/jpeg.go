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

// Package jpeg decodes a JFIF/Exif-wrapped JPEG stream down to its marker
// segments: SOI, a run of length-prefixed segments (APP0/JFIF, APP1/Exif
// with its embedded TIFF IFD visited via an absolute-offset excursion,
// DQT, DHT, SOF0/SOF2 frame headers, DRI's restart interval, SOS followed
// by its entropy-coded scan data), and EOI. Entropy-coded coefficient
// decoding (the Huffman-coded DCT data itself) is a distinct image codec
// and out of scope; scan data is returned as de-stuffed raw bytes.
package jpeg

import (
	"encoding/binary"

	"github.com/google/decodeengine/lib/engine"
	"github.com/google/decodeengine/lib/formats/tiff"
)

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerDRI  = 0xDD
	markerSOF0 = 0xC0
	markerSOF2 = 0xC2
	markerAPP0 = 0xE0
	markerAPP1 = 0xE1

	restartLow  = 0xD0
	restartHigh = 0xD7
)

// JFIF is APP0's payload when it carries the "JFIF\x00" identifier.
type JFIF struct {
	VersionMajor byte
	VersionMinor byte
	DensityUnits byte
	XDensity     uint16
	YDensity     uint16
	ThumbWidth   byte
	ThumbHeight  byte
	Thumbnail    []byte
}

// Frame is a SOF0 (baseline) or SOF2 (progressive) frame header.
type Frame struct {
	Progressive bool
	Precision   byte
	Height      uint16
	Width       uint16
	Components  []FrameComponent
}

// FrameComponent is one component entry within a frame header.
type FrameComponent struct {
	ID                 byte
	HorizontalSampling byte
	VerticalSampling   byte
	QuantTableSelector byte
}

// Scan is an SOS header: the components selected for this scan and
// their entropy-coding table selectors.
type Scan struct {
	Components       []ScanComponent
	SpectralStart    byte
	SpectralEnd      byte
	SuccessiveApprox byte
}

// ScanComponent is one component entry within a scan header.
type ScanComponent struct {
	Selector byte
	DCTable  byte
	ACTable  byte
}

// Segment is one marker segment following SOI. Exactly one of the typed
// fields is set for a recognized marker, except that SOS sets Scan
// together with ScanData; Raw holds the undecoded payload
// for markers this package doesn't give special treatment (DQT, DHT,
// COM, and any APPn this package doesn't recognize by identifier).
type Segment struct {
	Marker          byte
	JFIF            *JFIF
	Exif            *tiff.Value
	Frame           *Frame
	Scan            *Scan
	ScanData        []byte
	RestartInterval *uint16
	Raw             []byte
}

// Value is a fully decoded JPEG stream: its marker segments between SOI
// and EOI.
type Value struct {
	Segments []Segment
}

func isEOIMarker(e *engine.Engine) bool {
	b0, err := e.ReadByte()
	if err != nil || b0 != 0xFF {
		return err != nil
	}
	b1, err := e.ReadByte()
	return err != nil || b1 == markerEOI
}

// Decode reads a complete JPEG stream from SOI through EOI.
func Decode(e *engine.Engine) (Value, error) {
	if err := e.ExpectBytes([]byte{0xFF, markerSOI}); err != nil {
		return Value{}, err
	}
	segments, err := engine.Repeat0(e, isEOIMarker, decodeSegment)
	if err != nil {
		return Value{}, err
	}
	if err := e.ExpectBytes([]byte{0xFF, markerEOI}); err != nil {
		return Value{}, err
	}
	return Value{Segments: segments}, nil
}

func decodeSegment(e *engine.Engine) (Segment, error) {
	if err := e.ExpectByte(0xFF); err != nil {
		return Segment{}, err
	}
	marker, err := e.ReadByte()
	if err != nil {
		return Segment{}, err
	}

	if marker == markerSOS {
		scan, err := decodeScanHeader(e)
		if err != nil {
			return Segment{}, err
		}
		data, err := readScanData(e)
		if err != nil {
			return Segment{}, err
		}
		return Segment{Marker: marker, Scan: &scan, ScanData: data}, nil
	}

	lengthBytes, err := e.ReadBytes(2)
	if err != nil {
		return Segment{}, err
	}
	length := binary.BigEndian.Uint16(lengthBytes)
	if err := e.Where(length >= 2, "segment length must cover its own length field"); err != nil {
		return Segment{}, err
	}
	payload, err := e.ReadBytes(int(length) - 2)
	if err != nil {
		return Segment{}, err
	}

	seg := Segment{Marker: marker}
	switch marker {
	case markerAPP0:
		if len(payload) >= 5 && string(payload[0:5]) == "JFIF\x00" {
			jfif, err := decodeJFIF(e, payload[5:])
			if err != nil {
				return Segment{}, err
			}
			seg.JFIF = &jfif
		} else {
			seg.Raw = payload
		}
	case markerAPP1:
		if len(payload) >= 6 && string(payload[0:6]) == "Exif\x00\x00" {
			var exif tiff.Value
			err := e.Reparse(payload[6:], func(inner *engine.Engine) error {
				var ferr error
				exif, ferr = tiff.Decode(inner)
				return ferr
			})
			if err != nil {
				return Segment{}, err
			}
			seg.Exif = &exif
		} else {
			seg.Raw = payload
		}
	case markerSOF0, markerSOF2:
		frame, err := decodeFrameHeader(e, marker == markerSOF2, payload)
		if err != nil {
			return Segment{}, err
		}
		seg.Frame = &frame
	case markerDRI:
		if err := e.Where(len(payload) == 2, "DRI segment must be 2 bytes"); err != nil {
			return Segment{}, err
		}
		interval := binary.BigEndian.Uint16(payload)
		seg.RestartInterval = &interval
	default:
		seg.Raw = payload
	}
	return seg, nil
}

func decodeJFIF(e *engine.Engine, rest []byte) (JFIF, error) {
	if err := e.Where(len(rest) >= 9, "JFIF payload too short"); err != nil {
		return JFIF{}, err
	}
	thumbW, thumbH := rest[7], rest[8]
	n := 3 * int(thumbW) * int(thumbH)
	if err := e.Where(len(rest) == 9+n, "JFIF thumbnail size mismatch"); err != nil {
		return JFIF{}, err
	}
	return JFIF{
		VersionMajor: rest[0],
		VersionMinor: rest[1],
		DensityUnits: rest[2],
		XDensity:     binary.BigEndian.Uint16(rest[3:5]),
		YDensity:     binary.BigEndian.Uint16(rest[5:7]),
		ThumbWidth:   thumbW,
		ThumbHeight:  thumbH,
		Thumbnail:    rest[9:],
	}, nil
}

func decodeFrameHeader(e *engine.Engine, progressive bool, payload []byte) (Frame, error) {
	if err := e.Where(len(payload) >= 6, "frame header too short"); err != nil {
		return Frame{}, err
	}
	n := payload[5]
	if err := e.Where(len(payload) == 6+3*int(n), "frame header component count mismatch"); err != nil {
		return Frame{}, err
	}
	comps := make([]FrameComponent, n)
	for i := 0; i < int(n); i++ {
		b := payload[6+3*i : 9+3*i]
		comps[i] = FrameComponent{
			ID:                 b[0],
			HorizontalSampling: b[1] >> 4,
			VerticalSampling:   b[1] & 0x0F,
			QuantTableSelector: b[2],
		}
	}
	return Frame{
		Progressive: progressive,
		Precision:   payload[0],
		Height:      binary.BigEndian.Uint16(payload[1:3]),
		Width:       binary.BigEndian.Uint16(payload[3:5]),
		Components:  comps,
	}, nil
}

func decodeScanHeader(e *engine.Engine) (Scan, error) {
	nBytes, err := e.ReadBytes(3)
	if err != nil {
		return Scan{}, err
	}
	// The first two bytes are the segment length; only the component
	// count (third byte) is needed to size the component loop.
	n := nBytes[2]
	comps := make([]ScanComponent, n)
	for i := 0; i < int(n); i++ {
		raw, err := e.ReadBytes(2)
		if err != nil {
			return Scan{}, err
		}
		comps[i] = ScanComponent{
			Selector: raw[0],
			DCTable:  raw[1] >> 4,
			ACTable:  raw[1] & 0x0F,
		}
	}
	tail, err := e.ReadBytes(3)
	if err != nil {
		return Scan{}, err
	}
	return Scan{
		Components:       comps,
		SpectralStart:    tail[0],
		SpectralEnd:      tail[1],
		SuccessiveApprox: tail[2],
	}, nil
}

// readScanData reads entropy-coded bytes up to (but not including) the
// next marker that isn't a 0xFF00 stuffed byte or a restart marker,
// de-stuffing as it goes.
func readScanData(e *engine.Engine) ([]byte, error) {
	var data []byte
	for {
		var b0 byte
		err := e.Peek(func() error {
			var ferr error
			b0, ferr = e.ReadByte()
			return ferr
		})
		if err != nil {
			return nil, err
		}
		if b0 != 0xFF {
			b, _ := e.ReadByte()
			data = append(data, b)
			continue
		}

		var b1 byte
		err = e.Peek(func() error {
			if _, ferr := e.ReadByte(); ferr != nil {
				return ferr
			}
			var ferr error
			b1, ferr = e.ReadByte()
			return ferr
		})
		if err != nil {
			return nil, err
		}
		switch {
		case b1 == 0x00:
			if _, err := e.ReadBytes(2); err != nil {
				return nil, err
			}
			data = append(data, 0xFF)
		case b1 >= restartLow && b1 <= restartHigh:
			if _, err := e.ReadBytes(2); err != nil {
				return nil, err
			}
			data = append(data, 0xFF, b1)
		default:
			return data, nil
		}
	}
}

