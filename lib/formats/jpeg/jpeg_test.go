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

package jpeg

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/google/decodeengine/lib/engine"
)

func segment(marker byte, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(0xFF)
	buf.WriteByte(marker)
	var length [2]byte
	binary.BigEndian.PutUint16(length[:], uint16(2+len(payload)))
	buf.Write(length[:])
	buf.Write(payload)
	return buf.Bytes()
}

func TestDecodeJFIFAndFrame(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, markerSOI})
	buf.Write(segment(markerAPP0, []byte("JFIF\x00\x01\x02\x00\x00\x48\x00\x48\x00\x00"))) // no thumbnail.
	buf.Write(segment(markerSOF0, []byte{8, 0, 1, 0, 1, 1, 1, 0x22, 0}))                             // 1x1, 1 component.
	buf.Write(segment(markerDRI, []byte{0, 4}))

	// Minimal SOS: 1 component, selector 1, tables 0; spectral 0,63,0.
	sos := []byte{0, 8, 1, 1, 0, 0, 63, 0}
	buf.WriteByte(0xFF)
	buf.WriteByte(markerSOS)
	buf.Write(sos)
	buf.Write([]byte{0x12, 0x34, 0xFF, 0x00, 0x56}) // scan bytes with a stuffed 0xFF00.
	buf.Write([]byte{0xFF, 0xD0})                   // restart marker embedded in the scan.
	buf.Write([]byte{0x78})
	buf.Write([]byte{0xFF, markerEOI})

	e := engine.New(buf.Bytes())
	v, err := Decode(e)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(v.Segments) != 4 {
		t.Fatalf("len(Segments) = %d, want 4", len(v.Segments))
	}
	if v.Segments[0].JFIF == nil || v.Segments[0].JFIF.VersionMajor != 1 {
		t.Fatalf("JFIF segment = %+v", v.Segments[0])
	}
	if v.Segments[1].Frame == nil || v.Segments[1].Frame.Progressive || v.Segments[1].Frame.Width != 1 {
		t.Fatalf("frame segment = %+v", v.Segments[1])
	}
	if v.Segments[2].RestartInterval == nil || *v.Segments[2].RestartInterval != 4 {
		t.Fatalf("DRI segment = %+v", v.Segments[2])
	}
	scan := v.Segments[3]
	if scan.Scan == nil || len(scan.Scan.Components) != 1 {
		t.Fatalf("scan header = %+v", scan.Scan)
	}
	want := []byte{0x12, 0x34, 0xFF, 0x56, 0xFF, 0xD0, 0x78}
	if !bytes.Equal(scan.ScanData, want) {
		t.Fatalf("ScanData = %x, want %x", scan.ScanData, want)
	}
	if err := e.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestDecodeExifTIFF(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.Gray{Y: 255})
	var tiffBuf bytes.Buffer
	if err := tiff.Encode(&tiffBuf, img, nil); err != nil {
		t.Fatalf("tiff.Encode: %v", err)
	}

	app1 := append([]byte("Exif\x00\x00"), tiffBuf.Bytes()...)

	var buf bytes.Buffer
	buf.Write([]byte{0xFF, markerSOI})
	buf.Write(segment(markerAPP1, app1))
	buf.Write([]byte{0xFF, markerEOI})

	e := engine.New(buf.Bytes())
	v, err := Decode(e)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(v.Segments) != 1 || v.Segments[0].Exif == nil {
		t.Fatalf("Segments = %+v, want one Exif segment", v.Segments)
	}
	if len(v.Segments[0].Exif.IFD0) == 0 {
		t.Fatalf("Exif.IFD0 is empty, want at least one tag from the encoded TIFF")
	}
}

func TestDecodeBadSOI(t *testing.T) {
	e := engine.New([]byte{0x00, 0x00})
	if _, err := Decode(e); err == nil {
		t.Fatalf("expected failure on missing SOI marker")
	}
}
