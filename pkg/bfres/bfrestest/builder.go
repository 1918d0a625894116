// Package bfrestest builds synthetic FRES containers for tests.
package bfrestest

import (
	"encoding/binary"

	"github.com/goopsie/ftextools/pkg/bfres"
	"github.com/goopsie/ftextools/pkg/gx2"
)

// Entry describes one texture record to emit.
type Entry struct {
	Name       string
	Surface    gx2.Surface
	MipOffsets [bfres.MipTableSize]uint32
	CompSel    [4]byte
	Data       []byte
	MipData    []byte

	// Magic overrides the record magic when non-zero.
	Magic [4]byte
	// BadDataPointer makes the image pointer reach past the end of the file.
	BadDataPointer bool
}

const recordSize = 0xC0

var be = binary.BigEndian

// Build returns a container of the given version holding entries. ImageSize
// and MipSize are taken from the entry's Surface, so callers set them to
// the lengths of Data and MipData unless they want a mismatch.
func Build(version byte, entries []Entry) []byte {
	const groupPos = bfres.HeaderSize + 8
	entriesPos := groupPos + 20
	namesPos := entriesPos + 16*len(entries)

	nameAt := make([]int, len(entries))
	pos := namesPos
	for i, e := range entries {
		nameAt[i] = pos
		pos += len(e.Name) + 1
	}
	pos = align(pos, 16)

	recordAt := make([]int, len(entries))
	for i := range entries {
		recordAt[i] = pos
		pos += recordSize
	}

	dataAt := make([]int, len(entries))
	mipAt := make([]int, len(entries))
	for i, e := range entries {
		pos = align(pos, 256)
		dataAt[i] = pos
		pos += len(e.Data)
		if len(e.MipData) > 0 {
			pos = align(pos, 256)
			mipAt[i] = pos
			pos += len(e.MipData)
		}
	}

	out := make([]byte, pos)
	copy(out, bfres.Magic[:])
	out[4] = version
	be.PutUint32(out[0x24:], uint32(groupPos-bfres.HeaderSize))
	be.PutUint32(out[groupPos:], uint32(len(entries)))

	for i, e := range entries {
		ent := entriesPos + 16*i
		putRelative(out, ent+8, nameAt[i])
		putRelative(out, ent+12, recordAt[i])
		copy(out[nameAt[i]:], e.Name)

		rec := recordAt[i]
		magic := e.Magic
		if magic == ([4]byte{}) {
			magic = bfres.TextureMagic
		}
		copy(out[rec:], magic[:])
		e.Surface.EncodeTo(out[rec+4:])
		for j, off := range e.MipOffsets {
			be.PutUint32(out[rec+0x44+4*j:], off)
		}
		copy(out[rec+0x88:], e.CompSel[:])

		if e.BadDataPointer {
			putRelative(out, rec+0xB0, len(out))
		} else {
			putRelative(out, rec+0xB0, dataAt[i])
		}
		if len(e.MipData) > 0 {
			putRelative(out, rec+0xB4, mipAt[i])
		}
		copy(out[dataAt[i]:], e.Data)
		copy(out[mipAt[i]:], e.MipData)
	}
	return out
}

func putRelative(buf []byte, field, target int) {
	be.PutUint32(buf[field:], uint32(int32(target-field)))
}

func align(v, a int) int {
	return (v + a - 1) / a * a
}
