package gx2

import (
	"github.com/goopsie/ftextools/pkg/fault"
)

// Detile converts slice 0 of a tiled surface into row-major order.
//
// width and height are the level's pixel dimensions; block formats are
// addressed in 4x4 block units. paddedHeight, pitch and bpp come from the
// level's SurfaceInfo, tileMode is the effective tile mode and swizzle the
// raw surface swizzle word. The result holds exactly
// ceil(width/bw) * ceil(height/bh) * bpp/8 bytes.
func Detile(width, height, paddedHeight uint32, format Format, tileMode TileMode, swizzle, pitch, bpp uint32, tiled []byte) ([]byte, error) {
	if !tileMode.Valid() {
		return nil, fault.Formatf("tile mode", uint64(tileMode))
	}
	if bpp == 0 || bpp%8 != 0 {
		return nil, fault.Formatf("bits per element", uint64(bpp))
	}
	bw, bh := format.BlockSize()
	width = (width + bw - 1) / bw
	height = (height + bh - 1) / bh
	elemBytes := uint64(bpp / 8)

	a := newAddressing(tileMode, bpp, pitch, paddedHeight, swizzle)
	out := make([]byte, uint64(width)*uint64(height)*elemBytes)
	have := uint64(len(tiled))

	for y := uint32(0); y < height; y++ {
		row := out[uint64(y)*uint64(width)*elemBytes:]
		for x := uint32(0); x < width; x++ {
			pos := a.address(x, y)
			if pos+elemBytes > have {
				return nil, fault.Truncated("tiled surface", int(pos+elemBytes), len(tiled))
			}
			copy(row[uint64(x)*elemBytes:(uint64(x)+1)*elemBytes], tiled[pos:pos+elemBytes])
		}
	}
	return out, nil
}
