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

// Package elf decodes an ELF object file's identification and header down
// to its program and section header tables. The 16-byte e_ident prefix
// selects both the class (32-bit or 64-bit field widths, byte EI_CLASS)
// and the byte order (byte EI_DATA) used to read every integer field that
// follows, including phoff/shoff: each is visited with an absolute-offset
// excursion back from wherever the header itself left the cursor, since
// the header tables need not immediately follow the header.
package elf

import (
	"encoding/binary"

	"github.com/google/decodeengine/lib/engine"
)

const (
	classELF32 = 1
	classELF64 = 2

	dataLittleEndian = 1
	dataBigEndian    = 2
)

var magic = []byte{0x7F, 'E', 'L', 'F'}

// Ident is the 16-byte e_ident prefix.
type Ident struct {
	Class      byte
	Data       byte
	Version    byte
	OSABI      byte
	ABIVersion byte
}

// ProgramHeader is one entry of the program header table (visited via
// Header.ProgramHeaderOffset).
type ProgramHeader struct {
	Type     uint32
	Flags    uint32
	Offset   uint64
	VAddr    uint64
	PAddr    uint64
	FileSize uint64
	MemSize  uint64
	Align    uint64
}

// SectionHeader is one entry of the section header table (visited via
// Header.SectionHeaderOffset).
type SectionHeader struct {
	NameOffset uint32
	Name       string
	Type       uint32
	Flags      uint64
	Addr       uint64
	Offset     uint64
	Size       uint64
	Link       uint32
	Info       uint32
	AddrAlign  uint64
	EntrySize  uint64
}

// Header is the decoded ELF file header plus, when phnum/shnum indicate
// they are present, the program and section header tables it points to.
type Header struct {
	Ident                Ident
	Type                 uint16
	Machine              uint16
	Version              uint32
	Entry                uint64
	ProgramHeaderOffset  uint64
	SectionHeaderOffset  uint64
	Flags                uint32
	HeaderSize           uint16
	ProgramHeaderEntSize uint16
	ProgramHeaderCount   uint16
	SectionHeaderEntSize uint16
	SectionHeaderCount   uint16
	SectionNameStrIndex  uint16
	ProgramHeaders       []ProgramHeader
	SectionHeaders       []SectionHeader
}

// byteOrder is the subset of encoding/binary.ByteOrder this package needs.
type byteOrder interface {
	Uint16([]byte) uint16
	Uint32([]byte) uint32
	Uint64([]byte) uint64
}

// Decode reads a complete ELF file header, dispatching field widths and
// byte order on the ident bytes, then following phoff/shoff (when
// non-empty) to decode the program and section header tables.
func Decode(e *engine.Engine) (Header, error) {
	identBytes, err := e.ReadBytes(16)
	if err != nil {
		return Header{}, err
	}
	if err := e.Where(identBytes[0] == magic[0] && identBytes[1] == magic[1] &&
		identBytes[2] == magic[2] && identBytes[3] == magic[3], "bad ELF magic"); err != nil {
		return Header{}, err
	}
	ident := Ident{
		Class:      identBytes[4],
		Data:       identBytes[5],
		Version:    identBytes[6],
		OSABI:      identBytes[7],
		ABIVersion: identBytes[8],
	}
	if err := e.Where(ident.Class == classELF32 || ident.Class == classELF64, "unrecognized ELF class"); err != nil {
		return Header{}, err
	}
	if err := e.Where(ident.Data == dataLittleEndian || ident.Data == dataBigEndian, "unrecognized ELF data encoding"); err != nil {
		return Header{}, err
	}
	var order byteOrder = binary.LittleEndian
	if ident.Data == dataBigEndian {
		order = binary.BigEndian
	}

	h := Header{Ident: ident}
	if ident.Class == classELF64 {
		if err := decodeRest64(e, order, &h); err != nil {
			return Header{}, err
		}
	} else {
		if err := decodeRest32(e, order, &h); err != nil {
			return Header{}, err
		}
	}

	if h.ProgramHeaderCount > 0 {
		err := e.Excursion(int64(h.ProgramHeaderOffset), func() error {
			headers := make([]ProgramHeader, 0, h.ProgramHeaderCount)
			for i := uint16(0); i < h.ProgramHeaderCount; i++ {
				var ph ProgramHeader
				var err error
				if ident.Class == classELF64 {
					ph, err = decodeProgramHeader64(e, order)
				} else {
					ph, err = decodeProgramHeader32(e, order)
				}
				if err != nil {
					return err
				}
				headers = append(headers, ph)
			}
			h.ProgramHeaders = headers
			return nil
		})
		if err != nil {
			return Header{}, err
		}
	}

	if h.SectionHeaderCount > 0 {
		err := e.Excursion(int64(h.SectionHeaderOffset), func() error {
			headers := make([]SectionHeader, 0, h.SectionHeaderCount)
			for i := uint16(0); i < h.SectionHeaderCount; i++ {
				var sh SectionHeader
				var err error
				if ident.Class == classELF64 {
					sh, err = decodeSectionHeader64(e, order)
				} else {
					sh, err = decodeSectionHeader32(e, order)
				}
				if err != nil {
					return err
				}
				headers = append(headers, sh)
			}
			h.SectionHeaders = headers
			return nil
		})
		if err != nil {
			return Header{}, err
		}
		if err := resolveSectionNames(e, h.SectionHeaders, h.SectionNameStrIndex); err != nil {
			return Header{}, err
		}
	}

	return h, nil
}

func decodeRest64(e *engine.Engine, order byteOrder, h *Header) error {
	raw, err := e.ReadBytes(48)
	if err != nil {
		return err
	}
	h.Type = order.Uint16(raw[0:2])
	h.Machine = order.Uint16(raw[2:4])
	h.Version = order.Uint32(raw[4:8])
	h.Entry = order.Uint64(raw[8:16])
	h.ProgramHeaderOffset = order.Uint64(raw[16:24])
	h.SectionHeaderOffset = order.Uint64(raw[24:32])
	h.Flags = order.Uint32(raw[32:36])
	h.HeaderSize = order.Uint16(raw[36:38])
	h.ProgramHeaderEntSize = order.Uint16(raw[38:40])
	h.ProgramHeaderCount = order.Uint16(raw[40:42])
	h.SectionHeaderEntSize = order.Uint16(raw[42:44])
	h.SectionHeaderCount = order.Uint16(raw[44:46])
	h.SectionNameStrIndex = order.Uint16(raw[46:48])
	return nil
}

func decodeRest32(e *engine.Engine, order byteOrder, h *Header) error {
	raw, err := e.ReadBytes(36)
	if err != nil {
		return err
	}
	h.Type = order.Uint16(raw[0:2])
	h.Machine = order.Uint16(raw[2:4])
	h.Version = order.Uint32(raw[4:8])
	h.Entry = uint64(order.Uint32(raw[8:12]))
	h.ProgramHeaderOffset = uint64(order.Uint32(raw[12:16]))
	h.SectionHeaderOffset = uint64(order.Uint32(raw[16:20]))
	h.Flags = order.Uint32(raw[20:24])
	h.HeaderSize = order.Uint16(raw[24:26])
	h.ProgramHeaderEntSize = order.Uint16(raw[26:28])
	h.ProgramHeaderCount = order.Uint16(raw[28:30])
	h.SectionHeaderEntSize = order.Uint16(raw[30:32])
	h.SectionHeaderCount = order.Uint16(raw[32:34])
	h.SectionNameStrIndex = order.Uint16(raw[34:36])
	return nil
}

func decodeProgramHeader64(e *engine.Engine, order byteOrder) (ProgramHeader, error) {
	raw, err := e.ReadBytes(56)
	if err != nil {
		return ProgramHeader{}, err
	}
	return ProgramHeader{
		Type:     order.Uint32(raw[0:4]),
		Flags:    order.Uint32(raw[4:8]),
		Offset:   order.Uint64(raw[8:16]),
		VAddr:    order.Uint64(raw[16:24]),
		PAddr:    order.Uint64(raw[24:32]),
		FileSize: order.Uint64(raw[32:40]),
		MemSize:  order.Uint64(raw[40:48]),
		Align:    order.Uint64(raw[48:56]),
	}, nil
}

func decodeProgramHeader32(e *engine.Engine, order byteOrder) (ProgramHeader, error) {
	raw, err := e.ReadBytes(32)
	if err != nil {
		return ProgramHeader{}, err
	}
	return ProgramHeader{
		Type:     order.Uint32(raw[0:4]),
		Offset:   uint64(order.Uint32(raw[4:8])),
		VAddr:    uint64(order.Uint32(raw[8:12])),
		PAddr:    uint64(order.Uint32(raw[12:16])),
		FileSize: uint64(order.Uint32(raw[16:20])),
		MemSize:  uint64(order.Uint32(raw[20:24])),
		Flags:    order.Uint32(raw[24:28]),
		Align:    uint64(order.Uint32(raw[28:32])),
	}, nil
}

func decodeSectionHeader64(e *engine.Engine, order byteOrder) (SectionHeader, error) {
	raw, err := e.ReadBytes(64)
	if err != nil {
		return SectionHeader{}, err
	}
	return SectionHeader{
		NameOffset: order.Uint32(raw[0:4]),
		Type:       order.Uint32(raw[4:8]),
		Flags:      order.Uint64(raw[8:16]),
		Addr:       order.Uint64(raw[16:24]),
		Offset:     order.Uint64(raw[24:32]),
		Size:       order.Uint64(raw[32:40]),
		Link:       order.Uint32(raw[40:44]),
		Info:       order.Uint32(raw[44:48]),
		AddrAlign:  order.Uint64(raw[48:56]),
		EntrySize:  order.Uint64(raw[56:64]),
	}, nil
}

func decodeSectionHeader32(e *engine.Engine, order byteOrder) (SectionHeader, error) {
	raw, err := e.ReadBytes(40)
	if err != nil {
		return SectionHeader{}, err
	}
	return SectionHeader{
		NameOffset: order.Uint32(raw[0:4]),
		Type:       order.Uint32(raw[4:8]),
		Flags:      uint64(order.Uint32(raw[8:12])),
		Addr:       uint64(order.Uint32(raw[12:16])),
		Offset:     uint64(order.Uint32(raw[16:20])),
		Size:       uint64(order.Uint32(raw[20:24])),
		Link:       order.Uint32(raw[24:28]),
		Info:       order.Uint32(raw[28:32]),
		AddrAlign:  uint64(order.Uint32(raw[32:36])),
		EntrySize:  uint64(order.Uint32(raw[36:40])),
	}, nil
}

// resolveSectionNames reads the section name string table (itself just
// another section, identified by strIndex) via a second excursion, then
// resolves each section's NameOffset into the string it points at.
func resolveSectionNames(e *engine.Engine, sections []SectionHeader, strIndex uint16) error {
	if int(strIndex) >= len(sections) {
		return nil
	}
	strTab := sections[strIndex]
	if strTab.Size == 0 {
		return nil
	}
	var raw []byte
	err := e.Excursion(int64(strTab.Offset), func() error {
		var ferr error
		raw, ferr = e.ReadBytes(int(strTab.Size))
		return ferr
	})
	if err != nil {
		return err
	}
	for i := range sections {
		off := int(sections[i].NameOffset)
		if off < 0 || off >= len(raw) {
			continue
		}
		end := off
		for end < len(raw) && raw[end] != 0 {
			end++
		}
		sections[i].Name = string(raw[off:end])
	}
	return nil
}
