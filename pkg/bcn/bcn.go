// Package bcn decompresses BC1-BC5 block-compressed texel data into RGBA8.
//
// Input is a row-major sequence of 4x4 blocks, ceil(w/4) blocks per row.
// Output is width*height*4 bytes of non-premultiplied RGBA; blocks that
// overhang the right or bottom edge are cropped.
package bcn

import (
	"encoding/binary"

	"github.com/goopsie/ftextools/pkg/fault"
)

const (
	bc1BlockSize = 8
	bc2BlockSize = 16
	bc3BlockSize = 16
	bc4BlockSize = 8
	bc5BlockSize = 16
)

// Decompress dispatches on the block family (1 to 5). signed selects the
// signed variant of BC4 and BC5 and is ignored for the other families.
func Decompress(family int, data []byte, width, height int, signed bool) ([]byte, error) {
	switch family {
	case 1:
		return DecompressBC1(data, width, height)
	case 2:
		return DecompressBC2(data, width, height)
	case 3:
		return DecompressBC3(data, width, height)
	case 4:
		return DecompressBC4(data, width, height, signed)
	case 5:
		return DecompressBC5(data, width, height, signed)
	}
	return nil, fault.Formatf("block compression family", uint64(family))
}

// DecompressBC1 decodes BC1 (DXT1): 8 bytes per block, RGB565 endpoints,
// 1-bit punch-through alpha when c0 <= c1.
func DecompressBC1(data []byte, width, height int) ([]byte, error) {
	return decodeBlocks(data, width, height, bc1BlockSize, "BC1", func(block []byte, texels *[16][4]byte) {
		decodeColor(block, texels, true)
	})
}

// DecompressBC2 decodes BC2 (DXT3): explicit 4-bit alpha followed by a
// BC1 color block.
func DecompressBC2(data []byte, width, height int) ([]byte, error) {
	return decodeBlocks(data, width, height, bc2BlockSize, "BC2", func(block []byte, texels *[16][4]byte) {
		decodeColor(block[8:], texels, false)
		alpha := binary.LittleEndian.Uint64(block)
		for i := 0; i < 16; i++ {
			texels[i][3] = byte((alpha>>(4*i))&0xf) * 17
		}
	})
}

// DecompressBC3 decodes BC3 (DXT5): interpolated alpha followed by a BC1
// color block.
func DecompressBC3(data []byte, width, height int) ([]byte, error) {
	return decodeBlocks(data, width, height, bc3BlockSize, "BC3", func(block []byte, texels *[16][4]byte) {
		decodeColor(block[8:], texels, false)
		var alpha [16]byte
		decodeUnsignedChannel(block, &alpha)
		for i := 0; i < 16; i++ {
			texels[i][3] = alpha[i]
		}
	})
}

// DecompressBC4 decodes BC4 single-channel blocks into (r, 0, 0, 255).
// Signed blocks are stored as v+128.
func DecompressBC4(data []byte, width, height int, signed bool) ([]byte, error) {
	return decodeBlocks(data, width, height, bc4BlockSize, "BC4", func(block []byte, texels *[16][4]byte) {
		var red [16]byte
		decodeChannel(block, &red, signed)
		for i := 0; i < 16; i++ {
			texels[i] = [4]byte{red[i], 0, 0, 0xff}
		}
	})
}

// DecompressBC5 decodes BC5 two-channel blocks into (r, g, 0, 255).
// Signed blocks are stored as v+128.
func DecompressBC5(data []byte, width, height int, signed bool) ([]byte, error) {
	return decodeBlocks(data, width, height, bc5BlockSize, "BC5", func(block []byte, texels *[16][4]byte) {
		var red, green [16]byte
		decodeChannel(block, &red, signed)
		decodeChannel(block[8:], &green, signed)
		for i := 0; i < 16; i++ {
			texels[i] = [4]byte{red[i], green[i], 0, 0xff}
		}
	})
}

// decodeBlocks walks the block grid, decoding each block into 16 texels
// and copying the visible ones into the output image.
func decodeBlocks(data []byte, width, height, blockSize int, what string, decode func(block []byte, texels *[16][4]byte)) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return []byte{}, nil
	}
	blocksW := (width + 3) / 4
	blocksH := (height + 3) / 4
	if need := blocksW * blocksH * blockSize; len(data) < need {
		return nil, fault.Truncated(what+" data", need, len(data))
	}

	out := make([]byte, width*height*4)
	stride := width * 4
	var texels [16][4]byte
	offset := 0
	for by := 0; by < blocksH; by++ {
		for bx := 0; bx < blocksW; bx++ {
			decode(data[offset:offset+blockSize], &texels)
			offset += blockSize

			for ty := 0; ty < 4; ty++ {
				y := by*4 + ty
				if y >= height {
					break
				}
				for tx := 0; tx < 4; tx++ {
					x := bx*4 + tx
					if x >= width {
						break
					}
					copy(out[y*stride+x*4:], texels[ty*4+tx][:])
				}
			}
		}
	}
	return out, nil
}

func expand565(c uint16) [4]int {
	r := int(c>>11) & 0x1f
	g := int(c>>5) & 0x3f
	b := int(c) & 0x1f
	return [4]int{r<<3 | r>>2, g<<2 | g>>4, b<<3 | b>>2, 0xff}
}

// decodeColor decodes an 8-byte color block. Only BC1 honors the
// three-color mode with a transparent black fourth entry.
func decodeColor(block []byte, texels *[16][4]byte, punchThrough bool) {
	c0 := binary.LittleEndian.Uint16(block[0:])
	c1 := binary.LittleEndian.Uint16(block[2:])
	indices := binary.LittleEndian.Uint32(block[4:])

	var palette [4][4]int
	palette[0] = expand565(c0)
	palette[1] = expand565(c1)
	if c0 > c1 || !punchThrough {
		for ch := 0; ch < 3; ch++ {
			palette[2][ch] = (2*palette[0][ch] + palette[1][ch]) / 3
			palette[3][ch] = (palette[0][ch] + 2*palette[1][ch]) / 3
		}
		palette[2][3], palette[3][3] = 0xff, 0xff
	} else {
		for ch := 0; ch < 3; ch++ {
			palette[2][ch] = (palette[0][ch] + palette[1][ch]) / 2
		}
		palette[2][3] = 0xff
		palette[3] = [4]int{0, 0, 0, 0}
	}

	for i := 0; i < 16; i++ {
		p := palette[(indices>>(2*i))&3]
		texels[i] = [4]byte{byte(p[0]), byte(p[1]), byte(p[2]), byte(p[3])}
	}
}

func decodeChannel(block []byte, out *[16]byte, signed bool) {
	if signed {
		decodeSignedChannel(block, out)
	} else {
		decodeUnsignedChannel(block, out)
	}
}

func channelIndices(block []byte) uint64 {
	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(block[2+i]) << (8 * i)
	}
	return bits
}

// decodeUnsignedChannel decodes an 8-byte interpolated channel block
// (BC3 alpha, BC4, each half of BC5).
func decodeUnsignedChannel(block []byte, out *[16]byte) {
	a0, a1 := int(block[0]), int(block[1])
	var palette [8]int
	palette[0], palette[1] = a0, a1
	if a0 > a1 {
		for i := 2; i < 8; i++ {
			palette[i] = ((8-i)*a0 + (i-1)*a1) / 7
		}
	} else {
		for i := 2; i < 6; i++ {
			palette[i] = ((6-i)*a0 + (i-1)*a1) / 5
		}
		palette[6], palette[7] = 0, 0xff
	}

	bits := channelIndices(block)
	for i := 0; i < 16; i++ {
		out[i] = byte(palette[(bits>>(3*i))&7])
	}
}

// decodeSignedChannel interpolates in signed space, with -128 treated as
// -127, and stores each value offset by 128.
func decodeSignedChannel(block []byte, out *[16]byte) {
	a0 := max(int(int8(block[0])), -127)
	a1 := max(int(int8(block[1])), -127)
	var palette [8]int
	palette[0], palette[1] = a0, a1
	if a0 > a1 {
		for i := 2; i < 8; i++ {
			palette[i] = ((8-i)*a0 + (i-1)*a1) / 7
		}
	} else {
		for i := 2; i < 6; i++ {
			palette[i] = ((6-i)*a0 + (i-1)*a1) / 5
		}
		palette[6], palette[7] = -127, 127
	}

	bits := channelIndices(block)
	for i := 0; i < 16; i++ {
		out[i] = byte(palette[(bits>>(3*i))&7] + 128)
	}
}
