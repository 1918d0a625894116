// Package bfres extracts texture records from FRES binary resource
// containers.
//
// A container starts with the magic "FRES" and a version byte (3 or 4).
// The texture group offset at 0x24 points at a resource group whose 16-byte
// entries name each texture record. Records hold a GX2 surface descriptor,
// the mip offset table, the component selection and pointers to the base
// image and mip chain. All integers are big-endian and all offsets are
// relative to the field that stores them.
package bfres

import (
	"bytes"
	"encoding/binary"
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/goopsie/ftextools/pkg/fault"
	"github.com/goopsie/ftextools/pkg/gx2"
	"github.com/goopsie/ftextools/pkg/pixel"
)

// Magic identifies a FRES container.
var Magic = [4]byte{'F', 'R', 'E', 'S'}

// TextureMagic identifies a texture record.
var TextureMagic = [4]byte{'F', 'T', 'E', 'X'}

const (
	HeaderSize = 0x28 // group offsets are relative to the end of the header

	textureGroupOffset = 0x24
	groupEntriesStart  = 20
	groupEntrySize     = 16

	recordSurface   = 0x04
	recordMipTable  = 0x44
	recordCompSel   = 0x88
	recordDataPtr   = 0xB0
	recordMipPtr    = 0xB4
	recordMinLength = 0xB8

	// MipTableSize is the number of mip offsets stored per record.
	MipTableSize = 13
	// MaxMipCount is the largest mip count a version 3 record may declare.
	MaxMipCount = MipTableSize + 1
)

var be = binary.BigEndian

// Container is a validated view over FRES bytes. It does not copy data.
type Container struct {
	data    []byte
	version byte
}

// Open validates the container magic and version.
func Open(data []byte) (*Container, error) {
	if len(data) < 4 || !bytes.Equal(data[:4], Magic[:]) {
		var got uint64
		if len(data) >= 4 {
			got = uint64(be.Uint32(data))
		}
		return nil, fault.Formatf("container magic", got)
	}
	if len(data) < HeaderSize {
		return nil, fault.Truncated("container header", HeaderSize, len(data))
	}
	version := data[4]
	if version != 3 && version != 4 {
		return nil, fault.Formatf("container version", uint64(version))
	}
	return &Container{data: data, version: version}, nil
}

// Version returns the container version byte.
func (c *Container) Version() byte {
	return c.version
}

// GroupEntry names one texture record.
type GroupEntry struct {
	Name         string
	RecordOffset int
}

// Entries lists the texture group without decoding records. A zero group
// offset means the container holds no textures.
func (c *Container) Entries() ([]GroupEntry, error) {
	rel := int32(be.Uint32(c.data[textureGroupOffset:]))
	if rel == 0 {
		return nil, nil
	}
	pos := int(rel) + HeaderSize
	if pos < 0 || pos+4 > len(c.data) {
		return nil, fault.Truncated("texture group", pos+4, len(c.data))
	}
	count := int32(be.Uint32(c.data[pos:]))
	if count < 0 {
		return nil, fault.Formatf("texture group count", uint64(uint32(count)))
	}
	base := pos + groupEntriesStart
	if end := base + int(count)*groupEntrySize; end > len(c.data) {
		return nil, fault.Truncated("texture group entries", end, len(c.data))
	}

	entries := make([]GroupEntry, 0, count)
	for i := 0; i < int(count); i++ {
		e := base + i*groupEntrySize
		name, err := c.cString(c.relative(e + 8))
		if err != nil {
			return nil, errors.Wrapf(err, "group entry %d", i)
		}
		entries = append(entries, GroupEntry{Name: name, RecordOffset: c.relative(e + 12)})
	}
	return entries, nil
}

// relative resolves the signed offset stored at field.
func (c *Container) relative(field int) int {
	return field + int(int32(be.Uint32(c.data[field:])))
}

func (c *Container) cString(off int) (string, error) {
	if off < 0 || off >= len(c.data) {
		return "", fault.Truncated("name", off+1, len(c.data))
	}
	end := bytes.IndexByte(c.data[off:], 0)
	if end < 0 {
		return "", fault.Truncated("name", len(c.data)+1, len(c.data))
	}
	return string(c.data[off : off+end]), nil
}

// Texture is one extracted texture. It is immutable after extraction and
// owns its pixel slices.
type Texture struct {
	Name    string
	Version byte

	// Surface is the record's descriptor; NumMips is forced to 1 for
	// version 4 containers and for records that store 0.
	Surface    gx2.Surface
	MipOffsets [MipTableSize]uint32

	// CompSel is the selection used for decoding; CompSelRaw is the stored
	// one, which may contain the unsupported marker 4.
	CompSel    pixel.ComponentSelection
	CompSelRaw pixel.ComponentSelection

	BlockWidth    uint32
	BlockHeight   uint32
	BytesPerPixel uint32 // per element, per block for block formats

	Data    []byte // base level, ImageSize bytes
	MipData []byte // mip chain, empty when the texture has no mips

	RecordOffset  int
	DataOffset    int
	MipDataOffset int
}

// Format returns the surface format.
func (t *Texture) Format() gx2.Format { return t.Surface.Format }

// Width returns the base level width in pixels.
func (t *Texture) Width() uint32 { return t.Surface.Width }

// Height returns the base level height in pixels.
func (t *Texture) Height() uint32 { return t.Surface.Height }

// MipCount returns the number of mip levels including the base level.
func (t *Texture) MipCount() int { return int(t.Surface.NumMips) }

// Result is the outcome of Extract. Failed entries do not prevent their
// siblings from being extracted.
type Result struct {
	Version  byte
	Textures []*Texture
	Failed   []*fault.TextureError
	Skipped  []string
}

// Lookup returns the texture with the given name.
func (r *Result) Lookup(name string) (*Texture, bool) {
	for _, t := range r.Textures {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

type extractConfig struct {
	logger *slog.Logger
	filter func(string) bool
}

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

// WithLogger sets the logger for skipped and failed entries.
func WithLogger(l *slog.Logger) ExtractOption {
	return func(c *extractConfig) {
		c.logger = l
	}
}

// WithNameFilter restricts extraction to entries for which keep returns true.
func WithNameFilter(keep func(name string) bool) ExtractOption {
	return func(c *extractConfig) {
		c.filter = keep
	}
}

// Extract reads every texture record of a FRES container. Container-level
// problems are returned as errors; per-texture problems are collected in
// Result.Failed and textures with unsupported mip counts in Result.Skipped.
func Extract(data []byte, opts ...ExtractOption) (*Result, error) {
	cfg := extractConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	c, err := Open(data)
	if err != nil {
		return nil, err
	}
	entries, err := c.Entries()
	if err != nil {
		return nil, errors.Wrap(err, "read texture group")
	}

	res := &Result{Version: c.version}
	for _, e := range entries {
		if cfg.filter != nil && !cfg.filter(e.Name) {
			continue
		}
		tex, err := c.Texture(e)
		switch {
		case errors.Is(err, fault.ErrUnsupported):
			cfg.logger.Info("skipping texture", "name", e.Name, "reason", err)
			res.Skipped = append(res.Skipped, e.Name)
		case err != nil:
			cfg.logger.Warn("texture extraction failed", "name", e.Name, "err", err)
			res.Failed = append(res.Failed, &fault.TextureError{Name: e.Name, Mip: -1, Err: err})
		default:
			cfg.logger.Debug("extracted texture", "name", e.Name, "surface", tex.Surface.String())
			res.Textures = append(res.Textures, tex)
		}
	}
	return res, nil
}

// Texture decodes the record of a single group entry.
func (c *Container) Texture(e GroupEntry) (*Texture, error) {
	pos := e.RecordOffset
	if pos < 0 || pos+recordMinLength > len(c.data) {
		return nil, fault.Truncated("texture record", pos+recordMinLength, len(c.data))
	}
	rec := c.data[pos:]
	if !bytes.Equal(rec[:4], TextureMagic[:]) {
		return nil, fault.Formatf("texture record magic", uint64(be.Uint32(rec)))
	}

	tex := &Texture{Name: e.Name, Version: c.version, RecordOffset: pos}
	if err := tex.Surface.UnmarshalBinary(rec[recordSurface:]); err != nil {
		return nil, err
	}
	switch {
	case c.version == 4, tex.Surface.NumMips == 0:
		tex.Surface.NumMips = 1
	case tex.Surface.NumMips > MaxMipCount:
		return nil, errors.Wrapf(fault.ErrUnsupported, "mip count %d", tex.Surface.NumMips)
	}
	if err := tex.Surface.Validate(); err != nil {
		return nil, err
	}

	for i := range tex.MipOffsets {
		tex.MipOffsets[i] = be.Uint32(rec[recordMipTable+4*i:])
	}

	copy(tex.CompSelRaw[:], rec[recordCompSel:recordCompSel+4])
	if err := tex.CompSelRaw.Validate(); err != nil {
		return nil, err
	}
	tex.CompSel = tex.CompSelRaw.Renderable()

	format := tex.Surface.Format
	tex.BlockWidth, tex.BlockHeight = format.BlockSize()
	tex.BytesPerPixel = format.BitsPerPixel() / 8

	tex.DataOffset = c.relative(pos + recordDataPtr)
	data, err := c.slice("image data", tex.DataOffset, tex.Surface.ImageSize)
	if err != nil {
		return nil, err
	}
	tex.Data = data

	if be.Uint32(rec[recordMipPtr:]) != 0 && tex.Surface.MipSize != 0 {
		tex.MipDataOffset = c.relative(pos + recordMipPtr)
		mipData, err := c.slice("mip data", tex.MipDataOffset, tex.Surface.MipSize)
		if err != nil {
			return nil, err
		}
		tex.MipData = mipData
	}
	return tex, nil
}

func (c *Container) slice(what string, off int, size uint32) ([]byte, error) {
	end := off + int(size)
	if off < 0 || end > len(c.data) {
		return nil, fault.Truncated(what, end, len(c.data))
	}
	out := make([]byte, size)
	copy(out, c.data[off:end])
	return out, nil
}
