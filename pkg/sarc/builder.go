package sarc

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/goopsie/ftextools/pkg/archive"
)

const (
	// DefaultAlignment is the data alignment used for building archives.
	DefaultAlignment = 0x100
)

// Builder constructs a SARC archive from a set of named files.
type Builder struct {
	order     binary.ByteOrder
	hashKey   uint32
	alignment int
	files     map[string][]byte
}

// NewBuilder creates a new archive builder writing in the given byte order.
func NewBuilder(order binary.ByteOrder) *Builder {
	return &Builder{
		order:     order,
		hashKey:   DefaultHashKey,
		alignment: DefaultAlignment,
		files:     make(map[string][]byte),
	}
}

// SetAlignment sets the alignment of every member's data. It must be a
// power of two.
func (b *Builder) SetAlignment(alignment int) {
	b.alignment = alignment
}

// Add adds or replaces a member.
func (b *Builder) Add(name string, data []byte) {
	b.files[name] = data
}

// Len returns the number of members added so far.
func (b *Builder) Len() int {
	return len(b.files)
}

// ScanFiles walks dir and adds every regular file under it, named by its
// slash-separated path relative to dir.
func (b *Builder) ScanFiles(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return errors.Wrap(err, "relative path")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		b.Add(filepath.ToSlash(rel), data)
		return nil
	})
}

// MarshalBinary encodes the archive. Members are ordered by name hash.
func (b *Builder) MarshalBinary() ([]byte, error) {
	if b.alignment <= 0 || b.alignment&(b.alignment-1) != 0 {
		return nil, errors.Errorf("alignment %d is not a power of two", b.alignment)
	}
	if len(b.files) > 0xffff {
		return nil, errors.Errorf("%d files exceed the node table", len(b.files))
	}

	type member struct {
		name string
		hash uint32
	}
	members := make([]member, 0, len(b.files))
	for name := range b.files {
		members = append(members, member{name, Hash(name, b.hashKey)})
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].hash != members[j].hash {
			return members[i].hash < members[j].hash
		}
		return members[i].name < members[j].name
	})

	var names bytes.Buffer
	nodes := make([]Node, len(members))
	var dataLen int
	for i, m := range members {
		dataLen = align(dataLen, b.alignment)
		nodes[i] = Node{
			NameHash:   m.hash,
			Attributes: namedFlag | uint32(names.Len()/4),
			Start:      uint32(dataLen),
			End:        uint32(dataLen + len(b.files[m.name])),
		}
		dataLen += len(b.files[m.name])

		names.WriteString(m.name)
		names.WriteByte(0)
		for names.Len()%4 != 0 {
			names.WriteByte(0)
		}
	}

	fntStart := HeaderSize + FATHeaderSize + len(nodes)*NodeSize
	dataStart := align(fntStart+FNTHeaderSize+names.Len(), b.alignment)

	header := Header{
		Magic:      Magic,
		HeaderSize: HeaderSize,
		BOM:        0xfeff,
		FileSize:   uint32(dataStart + dataLen),
		DataOffset: uint32(dataStart),
		Version:    Version,
	}
	fat := FATHeader{
		Magic:      FATMagic,
		HeaderSize: FATHeaderSize,
		NodeCount:  uint16(len(nodes)),
		HashKey:    b.hashKey,
	}
	fnt := FNTHeader{
		Magic:      FNTMagic,
		HeaderSize: FNTHeaderSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, dataStart+dataLen))
	for _, section := range []any{header, fat, nodes, fnt} {
		if err := binary.Write(buf, b.order, section); err != nil {
			return nil, errors.Wrap(err, "write section")
		}
	}
	buf.Write(names.Bytes())

	out := buf.Bytes()
	out = append(out, make([]byte, dataStart+dataLen-len(out))...)
	for i, m := range members {
		copy(out[dataStart+int(nodes[i].Start):], b.files[m.name])
	}
	return out, nil
}

// WriteFile encodes the archive and writes it compressed with codec.
func (b *Builder) WriteFile(path string, codec archive.Codec, opts ...archive.WriterOption) error {
	data, err := b.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "marshal archive")
	}
	if err := archive.WriteFile(path, data, codec, opts...); err != nil {
		return errors.Wrap(err, "encode archive")
	}
	return nil
}

func align(v, a int) int {
	return (v + a - 1) &^ (a - 1)
}
