package gx2

var bankSwapOrder = [...]uint32{0, 1, 3, 2, 6, 7, 5, 4}

// addressing holds the per-surface constants of the address functions.
type addressing struct {
	tileMode    TileMode
	bpp         uint32
	pitch       uint32
	height      uint32
	pipeSwizzle uint32
	bankSwizzle uint32

	thickness      uint32
	microTileBytes uint64
	macroPitch     uint32
	macroHeight    uint32
	macroTileBytes uint64
	bankSwapWidth  uint32
}

func newAddressing(tileMode TileMode, bpp, pitch, height, swizzle uint32) *addressing {
	a := &addressing{
		tileMode:    tileMode,
		bpp:         bpp,
		pitch:       pitch,
		height:      height,
		pipeSwizzle: (swizzle >> 8) & 1,
		bankSwizzle: (swizzle >> 9) & 3,
		thickness:   surfaceThickness(tileMode),
	}
	a.microTileBytes = (uint64(bpp)*uint64(a.thickness)*microTileWidth*microTileHeight + 7) / 8

	a.macroPitch = microTileWidth * numBanks
	a.macroHeight = microTileHeight * numPipes
	switch tileMode {
	case TileMode2DThin2, TileMode2BThin2:
		a.macroPitch >>= 1
		a.macroHeight *= 2
	case TileMode2DThin4, TileMode2BThin4:
		a.macroPitch >>= 2
		a.macroHeight *= 4
	}
	a.macroTileBytes = (uint64(a.thickness)*uint64(bpp)*uint64(a.macroHeight)*uint64(a.macroPitch) + 7) / 8
	if isBankSwapped(tileMode) {
		a.bankSwapWidth = bankSwappedWidth(tileMode, bpp, 1, pitch)
	}
	return a
}

// SurfaceAddress returns the byte offset of element (x, y) of slice 0 in a
// single-sampled surface with the given tile mode, bits per element, pitch
// and padded height. swizzle is the raw surface swizzle word.
func SurfaceAddress(x, y uint32, tileMode TileMode, bpp, pitch, height, swizzle uint32) uint64 {
	return newAddressing(tileMode, bpp, pitch, height, swizzle).address(x, y)
}

func (a *addressing) address(x, y uint32) uint64 {
	switch {
	case a.tileMode.IsLinear():
		return a.linear(x, y)
	case a.tileMode.IsMicroTiled():
		return a.microTiled(x, y)
	default:
		return a.macroTiled(x, y)
	}
}

func (a *addressing) linear(x, y uint32) uint64 {
	return (uint64(y)*uint64(a.pitch) + uint64(x)) * uint64(a.bpp) / 8
}

func (a *addressing) microTiled(x, y uint32) uint64 {
	tileIndex := uint64(x/microTileWidth) + uint64(y/microTileHeight)*uint64(a.pitch/microTileWidth)
	pixelOffset := uint64(a.bpp) * uint64(pixelIndexWithinMicroTile(x, y, 0, a.bpp, a.tileMode)) / 8
	return a.microTileBytes*tileIndex + pixelOffset
}

func (a *addressing) macroTiled(x, y uint32) uint64 {
	pixelIndex := pixelIndexWithinMicroTile(x, y, 0, a.bpp, a.tileMode)
	elemOffset := (uint64(a.bpp)*uint64(pixelIndex) + 7) / 8

	pipe := pipeFromCoord(x, y)
	bank := bankFromCoord(x, y)
	bankPipe := pipe + numPipes*bank
	bankPipe ^= a.pipeSwizzle + numPipes*a.bankSwizzle
	bankPipe %= numPipes * numBanks
	pipe = bankPipe % numPipes
	bank = bankPipe / numPipes

	macroTilesPerRow := uint64(a.pitch / a.macroPitch)
	macroX := x / a.macroPitch
	macroY := y / a.macroHeight
	macroTileOffset := (uint64(macroX) + macroTilesPerRow*uint64(macroY)) * a.macroTileBytes

	if a.bankSwapWidth != 0 {
		swapIndex := a.macroPitch * macroX / a.bankSwapWidth
		bank ^= bankSwapOrder[swapIndex&(numBanks-1)]
	}

	const groupMask = (1 << numGroupBits) - 1
	total := elemOffset + macroTileOffset>>3
	offsetHigh := (total &^ groupMask) << (numPipeBits + numBankBits)
	offsetLow := total & groupMask
	return uint64(bank)<<(numPipeBits+numGroupBits) | uint64(pipe)<<numGroupBits | offsetLow | offsetHigh
}

func pipeFromCoord(x, y uint32) uint32 {
	return ((y >> 3) ^ (x >> 3)) & 1
}

func bankFromCoord(x, y uint32) uint32 {
	bit0 := ((y / (16 * numPipes)) ^ (x >> 3)) & 1
	bit1 := ((y / (8 * numPipes)) ^ (x >> 4)) & 1
	return bit0 | bit1<<1
}

// pixelIndexWithinMicroTile interleaves the low coordinate bits into the
// element index within an 8x8 micro tile.
func pixelIndexWithinMicroTile(x, y, z, bpp uint32, tileMode TileMode) uint32 {
	bit := func(v uint32, n uint) uint32 { return (v >> n) & 1 }
	x0, x1, x2 := bit(x, 0), bit(x, 1), bit(x, 2)
	y0, y1, y2 := bit(y, 0), bit(y, 1), bit(y, 2)

	var p0, p1, p2, p3, p4, p5 uint32
	switch bpp {
	case 8:
		p0, p1, p2, p3, p4, p5 = x0, x1, x2, y1, y0, y2
	case 16:
		p0, p1, p2, p3, p4, p5 = x0, x1, x2, y0, y1, y2
	case 64:
		p0, p1, p2, p3, p4, p5 = x0, y0, x1, x2, y1, y2
	case 128:
		p0, p1, p2, p3, p4, p5 = y0, x0, x1, x2, y1, y2
	default:
		p0, p1, p2, p3, p4, p5 = x0, x1, y0, x2, y1, y2
	}

	var p6, p7 uint32
	if surfaceThickness(tileMode) > 1 {
		p6, p7 = bit(z, 0), bit(z, 1)
	}
	return p7<<7 | p6<<6 | p5<<5 | p4<<4 | p3<<3 | p2<<2 | p1<<1 | p0
}
