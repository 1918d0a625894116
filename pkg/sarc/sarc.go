// Package sarc provides types and functions for working with SARC archives,
// the flat named-file containers models and packs are shipped in.
package sarc

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/goopsie/ftextools/pkg/archive"
	"github.com/goopsie/ftextools/pkg/fault"
)

var (
	Magic     = [4]byte{'S', 'A', 'R', 'C'}
	FATMagic  = [4]byte{'S', 'F', 'A', 'T'}
	FNTMagic  = [4]byte{'S', 'F', 'N', 'T'}
	byteOrder = map[[2]byte]binary.ByteOrder{
		{0xfe, 0xff}: binary.BigEndian,
		{0xff, 0xfe}: binary.LittleEndian,
	}
)

const (
	HeaderSize     = 0x14
	FATHeaderSize  = 0x0c
	NodeSize       = 0x10
	FNTHeaderSize  = 0x08
	DefaultHashKey = 0x65
	Version        = 0x0100

	namedFlag = 0x01000000
)

// Header is the archive header.
type Header struct {
	Magic      [4]byte
	HeaderSize uint16
	BOM        uint16
	FileSize   uint32
	DataOffset uint32 // Start of the file data region
	Version    uint16
	Reserved   uint16
}

// FATHeader describes the file allocation table.
type FATHeader struct {
	Magic      [4]byte
	HeaderSize uint16
	NodeCount  uint16
	HashKey    uint32
}

// Node is one allocation table entry. Start and End are relative to the
// data region.
type Node struct {
	NameHash   uint32
	Attributes uint32 // Named flag in the top byte, name offset / 4 below
	Start      uint32
	End        uint32
}

// FNTHeader precedes the file name table.
type FNTHeader struct {
	Magic      [4]byte
	HeaderSize uint16
	Reserved   uint16
}

// File is a named member of an archive. Data aliases the archive bytes.
type File struct {
	Name string
	Hash uint32
	Data []byte
}

// Archive is a parsed SARC archive.
type Archive struct {
	Order  binary.ByteOrder
	Header Header
	FAT    FATHeader
	Nodes  []Node
	Files  []File
}

// Hash computes the name hash stored in the allocation table.
func Hash(name string, key uint32) uint32 {
	var h uint32
	for i := 0; i < len(name); i++ {
		h = h*key + uint32(name[i])
	}
	return h
}

// FileCount returns the number of files in this archive.
func (a *Archive) FileCount() int {
	return len(a.Files)
}

// Lookup returns the named file.
func (a *Archive) Lookup(name string) (File, bool) {
	h := Hash(name, a.FAT.HashKey)
	i := sort.Search(len(a.Files), func(i int) bool { return a.Files[i].Hash >= h })
	for ; i < len(a.Files) && a.Files[i].Hash == h; i++ {
		if a.Files[i].Name == name {
			return a.Files[i], true
		}
	}
	return File{}, false
}

// Open parses data as a SARC archive.
func Open(data []byte) (*Archive, error) {
	a := &Archive{}
	if err := a.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return a, nil
}

// ReadFile reads, decompresses and parses an archive from a file.
func ReadFile(path string) (*Archive, error) {
	data, _, err := archive.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read archive")
	}
	return Open(data)
}

// IsArchive reports whether data begins with the SARC magic.
func IsArchive(data []byte) bool {
	return bytes.HasPrefix(data, Magic[:])
}

// UnmarshalBinary decodes an archive from binary data.
func (a *Archive) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fault.Truncated("sarc header", HeaderSize, len(data))
	}
	if !IsArchive(data) {
		return fault.Formatf("sarc magic", uint64(binary.BigEndian.Uint32(data)))
	}
	order, ok := byteOrder[[2]byte{data[6], data[7]}]
	if !ok {
		return fault.Formatf("sarc byte order mark", uint64(binary.BigEndian.Uint16(data[6:])))
	}
	a.Order = order

	reader := bytes.NewReader(data)
	if err := binary.Read(reader, order, &a.Header); err != nil {
		return errors.Wrap(err, "read header")
	}
	if _, err := reader.Seek(int64(a.Header.HeaderSize), io.SeekStart); err != nil {
		return errors.Wrap(err, "seek allocation table")
	}
	if err := binary.Read(reader, order, &a.FAT); err != nil {
		return fault.Truncated("sarc allocation table", int(a.Header.HeaderSize)+FATHeaderSize, len(data))
	}
	if a.FAT.Magic != FATMagic {
		return fault.Formatf("sfat magic", uint64(binary.BigEndian.Uint32(a.FAT.Magic[:])))
	}

	a.Nodes = make([]Node, a.FAT.NodeCount)
	if err := binary.Read(reader, order, &a.Nodes); err != nil {
		return fault.Truncated("sarc nodes", int(a.Header.HeaderSize)+FATHeaderSize+len(a.Nodes)*NodeSize, len(data))
	}

	var fnt FNTHeader
	if err := binary.Read(reader, order, &fnt); err != nil {
		return fault.Truncated("sarc name table", len(data)+FNTHeaderSize, len(data))
	}
	if fnt.Magic != FNTMagic {
		return fault.Formatf("sfnt magic", uint64(binary.BigEndian.Uint32(fnt.Magic[:])))
	}
	namesStart := len(data) - reader.Len()

	dataStart := int(a.Header.DataOffset)
	if dataStart > len(data) || dataStart < namesStart {
		return fault.Formatf("sarc data offset", uint64(a.Header.DataOffset))
	}
	names := data[namesStart:dataStart]

	a.Files = make([]File, len(a.Nodes))
	for i, n := range a.Nodes {
		if n.End < n.Start {
			return errors.Errorf("node %d: end 0x%x before start 0x%x", i, n.End, n.Start)
		}
		if dataStart+int(n.End) > len(data) {
			return fault.Truncated("sarc file data", dataStart+int(n.End), len(data))
		}

		f := File{
			Hash: n.NameHash,
			Data: data[dataStart+int(n.Start) : dataStart+int(n.End)],
		}
		if n.Attributes&0xff000000 == namedFlag {
			off := int(n.Attributes&0xffff) * 4
			if off >= len(names) {
				return fault.Formatf("sarc name offset", uint64(off))
			}
			end := bytes.IndexByte(names[off:], 0)
			if end < 0 {
				return fault.Truncated("sarc name", len(names)+1, len(names))
			}
			f.Name = string(names[off : off+end])
		}
		a.Files[i] = f
	}
	return nil
}
