// Package gx2 describes GX2 texture surfaces and implements the R600-family
// address library used to lay them out in memory: surface geometry per mip
// level (pitch, padded height, size, effective tile mode) and conversion of a
// tiled surface back to linear row-major order.
package gx2

import "fmt"

// Format is a GX2 surface format code. The low 6 bits select the hardware
// format; bits 8-11 carry the numeric type (0x200 signed, 0x400 sRGB).
type Format uint32

const (
	FormatR8Unorm          Format = 0x001
	FormatR4G4Unorm        Format = 0x002
	FormatR8G8Unorm        Format = 0x007
	FormatR5G6B5Unorm      Format = 0x008
	FormatR5G5B5A1Unorm    Format = 0x00a
	FormatR4G4B4A4Unorm    Format = 0x00b
	FormatR10G10B10A2Unorm Format = 0x019
	FormatR8G8B8A8Unorm    Format = 0x01a
	FormatR8G8B8A8SRGB     Format = 0x41a
	FormatBC1Unorm         Format = 0x031
	FormatBC1SRGB          Format = 0x431
	FormatBC2Unorm         Format = 0x032
	FormatBC2SRGB          Format = 0x432
	FormatBC3Unorm         Format = 0x033
	FormatBC3SRGB          Format = 0x433
	FormatBC4Unorm         Format = 0x034
	FormatBC4Snorm         Format = 0x234
	FormatBC5Unorm         Format = 0x035
	FormatBC5Snorm         Format = 0x235
)

var formatNames = map[Format]string{
	FormatR8Unorm:          "TC_R8_UNORM",
	FormatR4G4Unorm:        "TC_R4_G4_UNORM",
	FormatR8G8Unorm:        "TC_R8_G8_UNORM",
	FormatR5G6B5Unorm:      "TCS_R5_G6_B5_UNORM",
	FormatR5G5B5A1Unorm:    "TC_R5_G5_B5_A1_UNORM",
	FormatR4G4B4A4Unorm:    "TC_R4_G4_B4_A4_UNORM",
	FormatR10G10B10A2Unorm: "TCS_R10_G10_B10_A2_UNORM",
	FormatR8G8B8A8Unorm:    "TCS_R8_G8_B8_A8_UNORM",
	FormatR8G8B8A8SRGB:     "TCS_R8_G8_B8_A8_SRGB",
	FormatBC1Unorm:         "T_BC1_UNORM",
	FormatBC1SRGB:          "T_BC1_SRGB",
	FormatBC2Unorm:         "T_BC2_UNORM",
	FormatBC2SRGB:          "T_BC2_SRGB",
	FormatBC3Unorm:         "T_BC3_UNORM",
	FormatBC3SRGB:          "T_BC3_SRGB",
	FormatBC4Unorm:         "T_BC4_UNORM",
	FormatBC4Snorm:         "T_BC4_SNORM",
	FormatBC5Unorm:         "T_BC5_UNORM",
	FormatBC5Snorm:         "T_BC5_SNORM",
}

// Known reports whether f is one of the formats texture containers emit.
func (f Format) Known() bool {
	_, ok := formatNames[f]
	return ok
}

// String returns the GX2 name of the format.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%x)", uint32(f))
}

// HW returns the hardware format, the low 6 bits of the code.
func (f Format) HW() uint32 {
	return uint32(f) & 0x3f
}

// IsBlockCompressed reports whether texels are stored as 4x4 blocks.
func (f Format) IsBlockCompressed() bool {
	hw := f.HW()
	return hw >= 0x31 && hw <= 0x35
}

// Family returns the block compression family (1 to 5) or 0 for raw formats.
func (f Format) Family() int {
	if !f.IsBlockCompressed() {
		return 0
	}
	return int(f.HW() - 0x30)
}

// Signed reports whether the format stores signed normalized values.
func (f Format) Signed() bool {
	return (uint32(f)>>8)&0xf == 0x2
}

// SRGB reports whether the format stores sRGB-encoded color.
func (f Format) SRGB() bool {
	return (uint32(f)>>8)&0xf == 0x4
}

// BlockSize returns the texel block dimensions: 4x4 for block formats,
// 1x1 otherwise.
func (f Format) BlockSize() (width, height uint32) {
	if f.IsBlockCompressed() {
		return 4, 4
	}
	return 1, 1
}

// BitsPerPixel returns the bits per element (per block for block formats)
// of the hardware format, or 0 if the hardware format has no layout.
func (f Format) BitsPerPixel() uint32 {
	return elementInfo(f.HW()).bits
}

// TileMode is a GX2 tile mode.
type TileMode uint32

const (
	TileModeDefault       TileMode = 0x00
	TileModeLinearAligned TileMode = 0x01
	TileMode1DThin1       TileMode = 0x02
	TileMode1DThick       TileMode = 0x03
	TileMode2DThin1       TileMode = 0x04
	TileMode2DThin2       TileMode = 0x05
	TileMode2DThin4       TileMode = 0x06
	TileMode2DThick       TileMode = 0x07
	TileMode2BThin1       TileMode = 0x08
	TileMode2BThin2       TileMode = 0x09
	TileMode2BThin4       TileMode = 0x0a
	TileMode2BThick       TileMode = 0x0b
	TileMode3DThin1       TileMode = 0x0c
	TileMode3DThick       TileMode = 0x0d
	TileMode3BThin1       TileMode = 0x0e
	TileMode3BThick       TileMode = 0x0f
	TileModeLinearSpecial TileMode = 0x10
)

var tileModeNames = [...]string{
	"DEFAULT", "LINEAR_ALIGNED", "1D_TILED_THIN1", "1D_TILED_THICK",
	"2D_TILED_THIN1", "2D_TILED_THIN2", "2D_TILED_THIN4", "2D_TILED_THICK",
	"2B_TILED_THIN1", "2B_TILED_THIN2", "2B_TILED_THIN4", "2B_TILED_THICK",
	"3D_TILED_THIN1", "3D_TILED_THICK", "3B_TILED_THIN1", "3B_TILED_THICK",
	"LINEAR_SPECIAL",
}

// Valid reports whether m is a tile mode the hardware defines.
func (m TileMode) Valid() bool {
	return m <= TileModeLinearSpecial
}

func (m TileMode) String() string {
	if m.Valid() {
		return tileModeNames[m]
	}
	return fmt.Sprintf("UNKNOWN(0x%x)", uint32(m))
}

// IsLinear reports whether the mode stores rows contiguously.
func (m TileMode) IsLinear() bool {
	return m == TileModeDefault || m == TileModeLinearAligned || m == TileModeLinearSpecial
}

// IsMicroTiled reports whether the mode is one of the 1D tiled modes.
func (m TileMode) IsMicroTiled() bool {
	return m == TileMode1DThin1 || m == TileMode1DThick
}

// Dimension is a GX2 surface dimensionality.
type Dimension uint32

const (
	Dim1D           Dimension = 0
	Dim2D           Dimension = 1
	Dim3D           Dimension = 2
	DimCube         Dimension = 3
	Dim1DArray      Dimension = 4
	Dim2DArray      Dimension = 5
	Dim2DMSAA       Dimension = 6
	Dim2DMSAAArray  Dimension = 7
	maxDimension              = Dim2DMSAAArray
	maxSampleLevel            = 3
)

var dimensionNames = [...]string{"1D", "2D", "3D", "CUBE", "1D_ARRAY", "2D_ARRAY", "2D_MSAA", "2D_MSAA_ARRAY"}

func (d Dimension) String() string {
	if d <= maxDimension {
		return dimensionNames[d]
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint32(d))
}
