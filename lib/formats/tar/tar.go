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

// Package tar decodes a POSIX ustar archive: a sequence of 512-byte
// headers, each followed by the entry's data padded to the next 512-byte
// boundary, ending at two consecutive all-zero 512-byte blocks.
//
// size is parsed as either the usual ASCII octal field or, when the
// field's first byte has its high bit set, the GNU/POSIX base-256
// extension that lets an entry exceed the 8 GiB an 11-digit octal field
// can express.
package tar

import (
	"github.com/google/decodeengine/lib/engine"
)

const blockSize = 512

// Entry is one decoded archive member: its header fields and file data.
type Entry struct {
	Name     string
	Mode     string
	Size     uint64
	TypeFlag byte
	LinkName string
	Magic    string
}

// Value is a fully decoded tar archive.
type Value struct {
	Entries []Entry
	Data    [][]byte // Data[i] is Entries[i]'s file content.
}

var zeroBlock = make([]byte, blockSize)

// isEndOfArchive peeks one block and reports whether it is all zero,
// which POSIX tar uses as the first of its two end-of-archive blocks.
func isEndOfArchive(e *engine.Engine) bool {
	block, err := e.ReadBytes(blockSize)
	if err != nil {
		return true
	}
	return isAllZero(block)
}

func isAllZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// Decode reads entries until the end-of-archive marker, then consumes the
// two trailing all-zero blocks.
func Decode(e *engine.Engine) (Value, error) {
	entries, err := engine.Repeat0(e, isEndOfArchive, decodeEntry)
	if err != nil {
		return Value{}, err
	}

	var v Value
	for _, pair := range entries {
		v.Entries = append(v.Entries, pair.entry)
		v.Data = append(v.Data, pair.data)
	}

	if err := e.ExpectBytes(zeroBlock); err != nil {
		return Value{}, err
	}
	if err := e.ExpectBytes(zeroBlock); err != nil {
		return Value{}, err
	}
	return v, nil
}

// entryAndData pairs decodeEntry's two return values so it can be used
// directly as a Repeat0 element parser.
type entryAndData struct {
	entry Entry
	data  []byte
}

// decodeEntry reads one 512-byte header plus its data, padded to the
// next 512-byte boundary.
func decodeEntry(e *engine.Engine) (entryAndData, error) {
	header, err := e.ReadBytes(blockSize)
	if err != nil {
		return entryAndData{}, err
	}

	size, err := parseSizeField(header[124:136])
	if err != nil {
		return entryAndData{}, err
	}

	entry := Entry{
		Name:     trimField(header[0:100]),
		Mode:     trimField(header[100:108]),
		Size:     size,
		TypeFlag: header[156],
		LinkName: trimField(header[157:257]),
		Magic:    trimField(header[257:263]),
	}

	data, err := e.ReadBytes(int(size))
	if err != nil {
		return entryAndData{}, err
	}
	padding := (blockSize - (int(size) % blockSize)) % blockSize
	if _, err := e.ReadBytes(padding); err != nil {
		return entryAndData{}, err
	}

	return entryAndData{entry: entry, data: data}, nil
}

// trimField trims a fixed-width header field at its first NUL, the
// convention ustar uses for name/mode/magic/etc. fields.
func trimField(raw []byte) string {
	for i, c := range raw {
		if c == 0 {
			return string(raw[:i])
		}
	}
	return string(raw)
}

// parseSizeField decodes the 12-byte size field: GNU/POSIX base-256 when
// the first byte's high bit is set, otherwise ASCII octal terminated by
// NUL or space.
func parseSizeField(raw []byte) (uint64, error) {
	if raw[0]&0x80 != 0 {
		return parseBase256(raw), nil
	}
	return parseOctal(raw)
}

// parseBase256 decodes a GNU base-256 field: the first byte's low 7 bits
// plus the remaining bytes form a big-endian integer.
func parseBase256(raw []byte) uint64 {
	var v uint64
	v = uint64(raw[0] & 0x7F)
	for _, c := range raw[1:] {
		v = v<<8 | uint64(c)
	}
	return v
}

func parseOctal(raw []byte) (uint64, error) {
	var v uint64
	for _, c := range raw {
		if c == 0 || c == ' ' {
			break
		}
		if c < '0' || c > '7' {
			return 0, engine.NewExcludedBranchError("tar size field contains a non-octal digit")
		}
		v = v*8 + uint64(c-'0')
	}
	return v, nil
}
