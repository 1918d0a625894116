package dds

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"

	"github.com/goopsie/ftextools/pkg/bfres"
	"github.com/goopsie/ftextools/pkg/fault"
	"github.com/goopsie/ftextools/pkg/ftex"
	"github.com/goopsie/ftextools/pkg/gx2"
	"github.com/goopsie/ftextools/pkg/pixel"
)

func TestBuildHeader(t *testing.T) {
	meta := &Metadata{
		Width:      64,
		Height:     32,
		MipLevels:  3,
		DXGIFormat: DXGI_FORMAT_BC1_UNORM,
		ArraySize:  1,
	}
	// 16x8 + 8x4 + 4x2 blocks
	if got := meta.PayloadSize(); got != 1024+256+64 {
		t.Fatalf("payload size: got %d", got)
	}

	data, err := Build(meta, make([]byte, meta.PayloadSize()))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(data) != FileHeaderSize+1344 {
		t.Fatalf("file size: got %d", len(data))
	}

	le := binary.LittleEndian
	checks := []struct {
		name   string
		offset int
		want   uint32
	}{
		{"Magic", 0, DDS_MAGIC},
		{"Size", 4, DDS_HEADER_SIZE},
		{"Flags", 8, DDS_HEADER_FLAGS_CAPS | DDS_HEADER_FLAGS_HEIGHT | DDS_HEADER_FLAGS_WIDTH |
			DDS_HEADER_FLAGS_PIXELFORMAT | DDS_HEADER_FLAGS_LINEARSIZE | DDS_HEADER_FLAGS_MIPMAPCOUNT},
		{"Height", 12, 32},
		{"Width", 16, 64},
		{"LinearSize", 20, 1024},
		{"MipCount", 28, 3},
		{"PixelFormatSize", 76, DDS_PIXELFORMAT_SIZE},
		{"FourCC", 84, DX10_FOURCC},
		{"Caps", 108, DDS_SURFACE_FLAGS_TEXTURE | DDS_SURFACE_FLAGS_MIPMAP | DDS_SURFACE_FLAGS_COMPLEX},
		{"DXGIFormat", 128, DXGI_FORMAT_BC1_UNORM},
		{"Dimension", 132, 3},
		{"ArraySize", 140, 1},
	}
	for _, c := range checks {
		if got := le.Uint32(data[c.offset:]); got != c.want {
			t.Errorf("%s: got 0x%x, want 0x%x", c.name, got, c.want)
		}
	}

	parsed, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if *parsed != *meta {
		t.Errorf("parsed %+v, want %+v", parsed, meta)
	}
}

func TestBuildErrors(t *testing.T) {
	meta := &Metadata{Width: 8, Height: 8, MipLevels: 1, DXGIFormat: DXGI_FORMAT_BC3_UNORM}
	if _, err := Build(meta, make([]byte, 63)); err == nil {
		t.Error("expected error for short payload")
	}
	if _, err := Build(nil, nil); err == nil {
		t.Error("expected error for nil metadata")
	}
	bad := &Metadata{Width: 8, Height: 8, MipLevels: 1, DXGIFormat: 98}
	if _, err := Build(bad, nil); !fault.IsFormat(err) {
		t.Errorf("expected format error, got %v", err)
	}
	if _, err := ParseHeader([]byte("DDS ")); !fault.IsTruncated(err) {
		t.Errorf("expected truncation, got %v", err)
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		format gx2.Format
		want   uint32
	}{
		{gx2.FormatBC1Unorm, DXGI_FORMAT_BC1_UNORM},
		{gx2.FormatBC3SRGB, DXGI_FORMAT_BC3_UNORM_SRGB},
		{gx2.FormatBC4Snorm, DXGI_FORMAT_BC4_SNORM},
		{gx2.FormatBC5Unorm, DXGI_FORMAT_BC5_UNORM},
		{gx2.FormatR8G8B8A8SRGB, DXGI_FORMAT_R8G8B8A8_UNORM_SRGB},
		{gx2.FormatR8Unorm, DXGI_FORMAT_R8_UNORM},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.format)
		if err != nil || got != tt.want {
			t.Errorf("%s: got %s, %v", tt.format, FormatName(got), err)
		}
	}

	if _, err := FormatOf(gx2.FormatR5G6B5Unorm); !errors.Is(err, fault.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestFromTexture(t *testing.T) {
	data := make([]byte, 8*4*4)
	for i := range data {
		data[i] = byte(i)
	}
	tex := &bfres.Texture{
		Name: "Linear",
		Surface: gx2.Surface{
			Dim:       gx2.Dim2D,
			Width:     8,
			Height:    4,
			Depth:     1,
			NumMips:   1,
			Format:    gx2.FormatR8G8B8A8Unorm,
			TileMode:  gx2.TileModeDefault,
			ImageSize: uint32(len(data)),
		},
		CompSel:       pixel.Identity,
		BlockWidth:    1,
		BlockHeight:   1,
		BytesPerPixel: 4,
		Data:          data,
	}

	out, err := FromTexture(ftex.NewDecoder(), tex, true)
	if err != nil {
		t.Fatalf("from texture: %v", err)
	}
	if !bytes.Equal(out[FileHeaderSize:], data) {
		t.Error("payload differs from the linear texture data")
	}
	flags := binary.LittleEndian.Uint32(out[8:])
	if flags&DDS_HEADER_FLAGS_PITCH == 0 || flags&DDS_HEADER_FLAGS_LINEARSIZE != 0 {
		t.Errorf("flags: 0x%x", flags)
	}
	if pitch := binary.LittleEndian.Uint32(out[20:]); pitch != 32 {
		t.Errorf("pitch: got %d, want 32", pitch)
	}

	meta, err := ParseHeader(out)
	if err != nil {
		t.Fatal(err)
	}
	if meta.String() != "DDS: 8x4, 1 mips, format=R8G8B8A8_UNORM" {
		t.Errorf("String: %s", meta.String())
	}
}
