// Package dds wraps detiled texture payloads in DirectDraw Surface files
// with a DX10 extension header, so block compressed levels can be exported
// without decompression.
package dds

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"

	"github.com/goopsie/ftextools/pkg/bfres"
	"github.com/goopsie/ftextools/pkg/fault"
	"github.com/goopsie/ftextools/pkg/ftex"
	"github.com/goopsie/ftextools/pkg/gx2"
)

// DXGI_FORMAT constants for the formats textures can be exported in
const (
	DXGI_FORMAT_UNKNOWN             = 0
	DXGI_FORMAT_R10G10B10A2_UNORM   = 24
	DXGI_FORMAT_R8G8B8A8_UNORM      = 28
	DXGI_FORMAT_R8G8B8A8_UNORM_SRGB = 29
	DXGI_FORMAT_R8G8_UNORM          = 49
	DXGI_FORMAT_R8_UNORM            = 61
	DXGI_FORMAT_BC1_UNORM           = 71
	DXGI_FORMAT_BC1_UNORM_SRGB      = 72
	DXGI_FORMAT_BC2_UNORM           = 74
	DXGI_FORMAT_BC2_UNORM_SRGB      = 75
	DXGI_FORMAT_BC3_UNORM           = 77
	DXGI_FORMAT_BC3_UNORM_SRGB      = 78
	DXGI_FORMAT_BC4_UNORM           = 80
	DXGI_FORMAT_BC4_SNORM           = 81
	DXGI_FORMAT_BC5_UNORM           = 83
	DXGI_FORMAT_BC5_SNORM           = 84
)

var formatInfo = map[uint32]struct {
	name       string
	blockBytes uint32 // bytes per 4x4 block, or per pixel when uncompressed
	compressed bool
}{
	DXGI_FORMAT_R10G10B10A2_UNORM:   {"R10G10B10A2_UNORM", 4, false},
	DXGI_FORMAT_R8G8B8A8_UNORM:      {"R8G8B8A8_UNORM", 4, false},
	DXGI_FORMAT_R8G8B8A8_UNORM_SRGB: {"R8G8B8A8_UNORM_SRGB", 4, false},
	DXGI_FORMAT_R8G8_UNORM:          {"R8G8_UNORM", 2, false},
	DXGI_FORMAT_R8_UNORM:            {"R8_UNORM", 1, false},
	DXGI_FORMAT_BC1_UNORM:           {"BC1_UNORM", 8, true},
	DXGI_FORMAT_BC1_UNORM_SRGB:      {"BC1_UNORM_SRGB", 8, true},
	DXGI_FORMAT_BC2_UNORM:           {"BC2_UNORM", 16, true},
	DXGI_FORMAT_BC2_UNORM_SRGB:      {"BC2_UNORM_SRGB", 16, true},
	DXGI_FORMAT_BC3_UNORM:           {"BC3_UNORM", 16, true},
	DXGI_FORMAT_BC3_UNORM_SRGB:      {"BC3_UNORM_SRGB", 16, true},
	DXGI_FORMAT_BC4_UNORM:           {"BC4_UNORM", 8, true},
	DXGI_FORMAT_BC4_SNORM:           {"BC4_SNORM", 8, true},
	DXGI_FORMAT_BC5_UNORM:           {"BC5_UNORM", 16, true},
	DXGI_FORMAT_BC5_SNORM:           {"BC5_SNORM", 16, true},
}

var gx2Formats = map[gx2.Format]uint32{
	gx2.FormatR10G10B10A2Unorm: DXGI_FORMAT_R10G10B10A2_UNORM,
	gx2.FormatR8G8B8A8Unorm:    DXGI_FORMAT_R8G8B8A8_UNORM,
	gx2.FormatR8G8B8A8SRGB:     DXGI_FORMAT_R8G8B8A8_UNORM_SRGB,
	gx2.FormatR8G8Unorm:        DXGI_FORMAT_R8G8_UNORM,
	gx2.FormatR8Unorm:          DXGI_FORMAT_R8_UNORM,
	gx2.FormatBC1Unorm:         DXGI_FORMAT_BC1_UNORM,
	gx2.FormatBC1SRGB:          DXGI_FORMAT_BC1_UNORM_SRGB,
	gx2.FormatBC2Unorm:         DXGI_FORMAT_BC2_UNORM,
	gx2.FormatBC2SRGB:          DXGI_FORMAT_BC2_UNORM_SRGB,
	gx2.FormatBC3Unorm:         DXGI_FORMAT_BC3_UNORM,
	gx2.FormatBC3SRGB:          DXGI_FORMAT_BC3_UNORM_SRGB,
	gx2.FormatBC4Unorm:         DXGI_FORMAT_BC4_UNORM,
	gx2.FormatBC4Snorm:         DXGI_FORMAT_BC4_SNORM,
	gx2.FormatBC5Unorm:         DXGI_FORMAT_BC5_UNORM,
	gx2.FormatBC5Snorm:         DXGI_FORMAT_BC5_SNORM,
}

// FormatOf maps a surface format to its DXGI equivalent. Formats whose
// channel order has no DXGI counterpart return fault.ErrUnsupported.
func FormatOf(f gx2.Format) (uint32, error) {
	if v, ok := gx2Formats[f]; ok {
		return v, nil
	}
	return DXGI_FORMAT_UNKNOWN, errors.Wrapf(fault.ErrUnsupported, "no DXGI format for %s", f)
}

// FormatName returns a human-readable name for a DXGI_FORMAT value.
func FormatName(format uint32) string {
	if info, ok := formatInfo[format]; ok {
		return info.name
	}
	return fmt.Sprintf("UNKNOWN(0x%x)", format)
}

// DDS header constants
const (
	DDS_MAGIC                    = 0x20534444 // "DDS "
	DDS_HEADER_SIZE              = 124
	DDS_HEADER_FLAGS_CAPS        = 0x1
	DDS_HEADER_FLAGS_HEIGHT      = 0x2
	DDS_HEADER_FLAGS_WIDTH       = 0x4
	DDS_HEADER_FLAGS_PITCH       = 0x8
	DDS_HEADER_FLAGS_PIXELFORMAT = 0x1000
	DDS_HEADER_FLAGS_MIPMAPCOUNT = 0x20000
	DDS_HEADER_FLAGS_LINEARSIZE  = 0x80000

	DDS_SURFACE_FLAGS_TEXTURE = 0x1000
	DDS_SURFACE_FLAGS_MIPMAP  = 0x400000
	DDS_SURFACE_FLAGS_COMPLEX = 0x8

	DDS_PIXELFORMAT_SIZE = 32
	DDS_FOURCC           = 0x4

	DX10_FOURCC = 0x30315844 // "DX10"

	// FileHeaderSize is the magic, the header and the DX10 extension.
	FileHeaderSize = 4 + DDS_HEADER_SIZE + 20
)

// Metadata describes the image a DDS file holds.
type Metadata struct {
	Width      uint32
	Height     uint32
	MipLevels  uint32
	DXGIFormat uint32
	ArraySize  uint32
}

func (m *Metadata) String() string {
	return fmt.Sprintf("DDS: %dx%d, %d mips, format=%s", m.Width, m.Height, m.MipLevels, FormatName(m.DXGIFormat))
}

// LevelSize returns the payload size of one mip level.
func (m *Metadata) LevelSize(level uint32) uint32 {
	w := max(1, m.Width>>level)
	h := max(1, m.Height>>level)
	info := formatInfo[m.DXGIFormat]
	if info.compressed {
		return ((w + 3) / 4) * ((h + 3) / 4) * info.blockBytes
	}
	return w * h * info.blockBytes
}

// PayloadSize returns the total size of every mip level.
func (m *Metadata) PayloadSize() uint32 {
	var n uint32
	for i := uint32(0); i < max(1, m.MipLevels); i++ {
		n += m.LevelSize(i)
	}
	return n
}

// Build prepends a DDS header to a payload of concatenated mip levels.
func Build(meta *Metadata, payload []byte) ([]byte, error) {
	if meta == nil {
		return nil, errors.New("metadata is required")
	}
	if _, ok := formatInfo[meta.DXGIFormat]; !ok {
		return nil, fault.Formatf("dxgi format", uint64(meta.DXGIFormat))
	}
	if uint32(len(payload)) != meta.PayloadSize() {
		return nil, errors.Errorf("payload size %d doesn't match expected size %d", len(payload), meta.PayloadSize())
	}

	data := make([]byte, FileHeaderSize+len(payload))
	writeHeader(data, meta)
	copy(data[FileHeaderSize:], payload)
	return data, nil
}

// FromTexture detiles the texture's levels and returns them as a DDS file.
// Only the base level is written unless allMips is set.
func FromTexture(dec *ftex.Decoder, tex *bfres.Texture, allMips bool) ([]byte, error) {
	format, err := FormatOf(tex.Format())
	if err != nil {
		return nil, err
	}
	mips := 1
	if allMips {
		mips = tex.MipCount()
	}
	meta := &Metadata{
		Width:      tex.Width(),
		Height:     tex.Height(),
		MipLevels:  uint32(mips),
		DXGIFormat: format,
		ArraySize:  1,
	}

	payload := make([]byte, 0, meta.PayloadSize())
	for i := 0; i < mips; i++ {
		lvl, err := dec.Detiled(tex, i)
		if err != nil {
			return nil, err
		}
		payload = append(payload, lvl.Data...)
	}
	return Build(meta, payload)
}

// ParseHeader reads the metadata back from a DDS file with a DX10 header.
func ParseHeader(data []byte) (*Metadata, error) {
	if len(data) < FileHeaderSize {
		return nil, fault.Truncated("dds header", FileHeaderSize, len(data))
	}
	le := binary.LittleEndian
	if le.Uint32(data[0:4]) != DDS_MAGIC {
		return nil, fault.Formatf("dds magic", uint64(le.Uint32(data[0:4])))
	}
	if le.Uint32(data[84:88]) != DX10_FOURCC {
		return nil, fault.Formatf("dds fourcc", uint64(le.Uint32(data[84:88])))
	}
	return &Metadata{
		Height:     le.Uint32(data[12:16]),
		Width:      le.Uint32(data[16:20]),
		MipLevels:  max(1, le.Uint32(data[28:32])),
		DXGIFormat: le.Uint32(data[128:132]),
		ArraySize:  le.Uint32(data[140:144]),
	}, nil
}

// writeHeader writes the magic, DDS header and DX10 extension.
func writeHeader(header []byte, meta *Metadata) {
	le := binary.LittleEndian
	info := formatInfo[meta.DXGIFormat]

	le.PutUint32(header[0:4], DDS_MAGIC)

	// DDS_HEADER starts at offset 4
	offset := 4

	le.PutUint32(header[offset:offset+4], DDS_HEADER_SIZE)
	offset += 4

	flags := uint32(DDS_HEADER_FLAGS_CAPS | DDS_HEADER_FLAGS_HEIGHT | DDS_HEADER_FLAGS_WIDTH |
		DDS_HEADER_FLAGS_PIXELFORMAT)
	pitchOrLinearSize := meta.LevelSize(0)
	if info.compressed {
		flags |= DDS_HEADER_FLAGS_LINEARSIZE
	} else {
		flags |= DDS_HEADER_FLAGS_PITCH
		pitchOrLinearSize = meta.Width * info.blockBytes
	}
	if meta.MipLevels > 1 {
		flags |= DDS_HEADER_FLAGS_MIPMAPCOUNT
	}
	le.PutUint32(header[offset:offset+4], flags)
	offset += 4

	le.PutUint32(header[offset:offset+4], meta.Height)
	offset += 4
	le.PutUint32(header[offset:offset+4], meta.Width)
	offset += 4
	le.PutUint32(header[offset:offset+4], pitchOrLinearSize)
	offset += 4

	// dwDepth (unused)
	offset += 4

	le.PutUint32(header[offset:offset+4], meta.MipLevels)
	offset += 4

	// dwReserved1[11]
	offset += 44

	// DDS_PIXELFORMAT
	le.PutUint32(header[offset:offset+4], DDS_PIXELFORMAT_SIZE)
	offset += 4
	le.PutUint32(header[offset:offset+4], DDS_FOURCC)
	offset += 4
	le.PutUint32(header[offset:offset+4], DX10_FOURCC)
	offset += 4

	// bit count and masks, all zero for DX10
	offset += 20

	caps := uint32(DDS_SURFACE_FLAGS_TEXTURE)
	if meta.MipLevels > 1 {
		caps |= DDS_SURFACE_FLAGS_MIPMAP | DDS_SURFACE_FLAGS_COMPLEX
	}
	le.PutUint32(header[offset:offset+4], caps)
	offset += 4

	// dwCaps2, dwCaps3, dwCaps4, dwReserved2
	offset += 16

	// DX10 extension
	le.PutUint32(header[offset:offset+4], meta.DXGIFormat)
	offset += 4

	// resourceDimension (3 = TEXTURE2D)
	le.PutUint32(header[offset:offset+4], 3)
	offset += 4

	// miscFlag
	offset += 4

	le.PutUint32(header[offset:offset+4], max(1, meta.ArraySize))
}
