package gx2

import (
	"encoding/binary"
	"fmt"

	"github.com/goopsie/ftextools/pkg/fault"
)

// SurfaceSize is the binary size of a GX2 surface descriptor.
const SurfaceSize = 64

// Surface is the GX2Surface descriptor stored big-endian in texture records.
type Surface struct {
	Dim       Dimension // +0x00
	Width     uint32    // +0x04
	Height    uint32    // +0x08
	Depth     uint32    // +0x0C
	NumMips   uint32    // +0x10
	Format    Format    // +0x14
	AA        uint32    // +0x18: multisample level, samples = 1 << AA
	Use       uint32    // +0x1C
	ImageSize uint32    // +0x20
	ImagePtr  uint32    // +0x24
	MipSize   uint32    // +0x28
	MipPtr    uint32    // +0x2C
	TileMode  TileMode  // +0x30
	Swizzle   uint32    // +0x34
	Alignment uint32    // +0x38
	Pitch     uint32    // +0x3C
}

// UnmarshalBinary decodes the descriptor without validating it.
func (s *Surface) UnmarshalBinary(data []byte) error {
	if len(data) < SurfaceSize {
		return fault.Truncated("surface descriptor", SurfaceSize, len(data))
	}
	be := binary.BigEndian
	s.Dim = Dimension(be.Uint32(data[0x00:]))
	s.Width = be.Uint32(data[0x04:])
	s.Height = be.Uint32(data[0x08:])
	s.Depth = be.Uint32(data[0x0C:])
	s.NumMips = be.Uint32(data[0x10:])
	s.Format = Format(be.Uint32(data[0x14:]))
	s.AA = be.Uint32(data[0x18:])
	s.Use = be.Uint32(data[0x1C:])
	s.ImageSize = be.Uint32(data[0x20:])
	s.ImagePtr = be.Uint32(data[0x24:])
	s.MipSize = be.Uint32(data[0x28:])
	s.MipPtr = be.Uint32(data[0x2C:])
	s.TileMode = TileMode(be.Uint32(data[0x30:]))
	s.Swizzle = be.Uint32(data[0x34:])
	s.Alignment = be.Uint32(data[0x38:])
	s.Pitch = be.Uint32(data[0x3C:])
	return nil
}

// MarshalBinary encodes the descriptor.
func (s *Surface) MarshalBinary() ([]byte, error) {
	buf := make([]byte, SurfaceSize)
	s.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the descriptor to buf, which must hold SurfaceSize bytes.
func (s *Surface) EncodeTo(buf []byte) {
	be := binary.BigEndian
	be.PutUint32(buf[0x00:], uint32(s.Dim))
	be.PutUint32(buf[0x04:], s.Width)
	be.PutUint32(buf[0x08:], s.Height)
	be.PutUint32(buf[0x0C:], s.Depth)
	be.PutUint32(buf[0x10:], s.NumMips)
	be.PutUint32(buf[0x14:], uint32(s.Format))
	be.PutUint32(buf[0x18:], s.AA)
	be.PutUint32(buf[0x1C:], s.Use)
	be.PutUint32(buf[0x20:], s.ImageSize)
	be.PutUint32(buf[0x24:], s.ImagePtr)
	be.PutUint32(buf[0x28:], s.MipSize)
	be.PutUint32(buf[0x2C:], s.MipPtr)
	be.PutUint32(buf[0x30:], uint32(s.TileMode))
	be.PutUint32(buf[0x34:], s.Swizzle)
	be.PutUint32(buf[0x38:], s.Alignment)
	be.PutUint32(buf[0x3C:], s.Pitch)
}

// Validate checks the fields the decode pipeline interprets.
func (s *Surface) Validate() error {
	if !s.Format.Known() {
		return fault.Formatf("surface format", uint64(s.Format))
	}
	if !s.TileMode.Valid() {
		return fault.Formatf("tile mode", uint64(s.TileMode))
	}
	if s.Dim > maxDimension {
		return fault.Formatf("surface dimension", uint64(s.Dim))
	}
	if s.AA > maxSampleLevel {
		return fault.Formatf("multisample level", uint64(s.AA))
	}
	return nil
}

// Info computes the geometry of the given mip level of the surface.
func (s *Surface) Info(level uint32) (SurfaceInfo, error) {
	return ComputeSurfaceInfo(s.Format, s.Width, s.Height, s.Depth, s.Dim, s.TileMode, s.AA, level)
}

func (s *Surface) String() string {
	return fmt.Sprintf("%s %dx%dx%d, %d mips, %s, tile=%s, swizzle=0x%x, pitch=%d",
		s.Dim, s.Width, s.Height, s.Depth, s.NumMips, s.Format, s.TileMode, s.Swizzle, s.Pitch)
}
