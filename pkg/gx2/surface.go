package gx2

import (
	"github.com/goopsie/ftextools/pkg/fault"
)

// Chip parameters of the R600-family configuration GX2 surfaces are laid
// out for.
const (
	numBanks            = 4
	numPipes            = 2
	pipeInterleaveBytes = 256
	rowSize             = 2048
	swapSize            = 256
	splitSize           = 2048
	microTileWidth      = 8
	microTileHeight     = 8
	numPipeBits         = 1
	numBankBits         = 2
	numGroupBits        = 8
)

// SurfaceInfo is the geometry of one mip level of a surface.
type SurfaceInfo struct {
	Pitch        uint32 // row pitch in elements
	Height       uint32 // padded height in elements
	Depth        uint32 // padded slice count
	Size         uint64 // bytes occupied by the level
	SliceSize    uint64
	TileMode     TileMode // effective tile mode after demotion
	BitsPerPixel uint32   // bits per element, 64 or 128 for block formats
	BaseAlign    uint32
	PitchAlign   uint32
	HeightAlign  uint32
	DepthAlign   uint32
	PixelPitch   uint32 // pitch in pixels
	PixelHeight  uint32 // height in pixels
}

type elemMode uint8

const (
	elemUncompressed elemMode = iota + 3
	elemExpanded
	elemPackedStd
	elemPackedRev
	elemPackedGBGR
	elemPackedBGRG
	elemPackedBC1
	elemPackedBC2
	elemPackedBC3
	elemPackedBC4
	elemPackedBC5
)

type elemInfo struct {
	bits             uint32
	expandX, expandY uint32
	mode             elemMode
}

func elementInfo(hw uint32) elemInfo {
	plain := func(bits uint32) elemInfo { return elemInfo{bits, 1, 1, elemUncompressed} }
	switch hw {
	case 0x01, 0x02, 0x03:
		return plain(8)
	case 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c:
		return plain(16)
	case 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18,
		0x19, 0x1a, 0x1b, 0x29, 0x2a, 0x2b:
		return plain(32)
	case 0x1d, 0x1e, 0x1f, 0x20, 0x3e:
		return plain(64)
	case 0x22, 0x23:
		return plain(128)
	case 0x24:
		return plain(64)
	case 0x25, 0x26:
		return elemInfo{1, 8, 1, elemPackedStd}
	case 0x27:
		return elemInfo{16, 1, 1, elemPackedGBGR}
	case 0x28:
		return elemInfo{16, 1, 1, elemPackedBGRG}
	case 0x2c, 0x2d, 0x2e:
		return elemInfo{24, 3, 1, elemExpanded}
	case 0x2f, 0x30:
		return elemInfo{48, 3, 1, elemExpanded}
	case 0x31:
		return elemInfo{64, 4, 4, elemPackedBC1}
	case 0x34:
		return elemInfo{64, 4, 4, elemPackedBC4}
	case 0x32:
		return elemInfo{128, 4, 4, elemPackedBC2}
	case 0x33:
		return elemInfo{128, 4, 4, elemPackedBC3}
	case 0x35, 0x36, 0x37:
		return elemInfo{128, 4, 4, elemPackedBC5}
	}
	return elemInfo{}
}

func isBlockHW(hw uint32) bool {
	return hw >= 0x31 && hw <= 0x37
}

type surfaceFlags struct {
	cube         bool
	volume       bool
	inputBaseMap bool
	pitch3x      bool
}

type surfaceIn struct {
	tileMode   TileMode
	format     uint32
	bpp        uint32
	numSamples uint32
	width      uint32
	height     uint32
	numSlices  uint32
	mipLevel   uint32
	flags      surfaceFlags
}

// ComputeSurfaceInfo returns the geometry of mip level `level` of a surface
// with the given format, base dimensions and tile mode. aa is the
// multisample level (1 << aa samples).
func ComputeSurfaceInfo(format Format, width, height, depth uint32, dim Dimension, tileMode TileMode, aa, level uint32) (SurfaceInfo, error) {
	hw := format.HW()
	elem := elementInfo(hw)
	if elem.bits == 0 {
		return SurfaceInfo{}, fault.Formatf("surface format", uint64(format))
	}
	if !tileMode.Valid() {
		return SurfaceInfo{}, fault.Formatf("tile mode", uint64(tileMode))
	}
	if dim > maxDimension {
		return SurfaceInfo{}, fault.Formatf("surface dimension", uint64(dim))
	}
	if aa > maxSampleLevel {
		return SurfaceInfo{}, fault.Formatf("multisample level", uint64(aa))
	}
	numSamples := uint32(1) << aa

	if tileMode == TileModeLinearSpecial {
		return linearSpecialInfo(format, elem.bits, width, height, depth, dim, numSamples, level), nil
	}

	in := surfaceIn{
		tileMode:   tileMode,
		format:     hw,
		bpp:        elem.bits,
		numSamples: numSamples,
		width:      max(1, width>>level),
		mipLevel:   level,
	}
	switch dim {
	case Dim1D:
		in.height, in.numSlices = 1, 1
	case Dim2D, Dim2DMSAA:
		in.height, in.numSlices = max(1, height>>level), 1
	case Dim3D:
		in.height, in.numSlices = max(1, height>>level), max(1, depth>>level)
		in.flags.volume = true
	case DimCube:
		in.height, in.numSlices = max(1, height>>level), max(6, depth)
		in.flags.cube = true
	case Dim1DArray:
		in.height, in.numSlices = 1, depth
	case Dim2DArray, Dim2DMSAAArray:
		in.height, in.numSlices = max(1, height>>level), depth
	}
	in.flags.inputBaseMap = level == 0

	return computeSurfaceInfo(in), nil
}

func linearSpecialInfo(format Format, bits, width, height, depth uint32, dim Dimension, numSamples, level uint32) SurfaceInfo {
	block, _ := format.BlockSize()
	w := powTwoAlign(width>>level, block)
	h := uint32(1)
	switch dim {
	case Dim1D, Dim1DArray:
	default:
		h = max(1, height>>level)
	}
	d := uint32(1)
	switch dim {
	case Dim3D:
		d = max(1, depth>>level)
	case DimCube:
		d = max(6, depth)
	case Dim1DArray, Dim2DArray, Dim2DMSAAArray:
		d = max(1, depth)
	}

	out := SurfaceInfo{
		TileMode:     TileModeLinearSpecial,
		BitsPerPixel: bits,
		Pitch:        max(1, w/block),
		Height:       max(1, powTwoAlign(h, block)/block),
		Depth:        d,
		PixelPitch:   max(block, w),
		PixelHeight:  max(block, powTwoAlign(h, block)),
		BaseAlign:    1,
		PitchAlign:   1,
		HeightAlign:  1,
		DepthAlign:   1,
	}
	out.Size = uint64(bits) * uint64(numSamples) * uint64(out.Depth) * uint64(out.Height) * uint64(out.Pitch) >> 3
	if dim == Dim3D {
		out.SliceSize = out.Size
	} else {
		out.SliceSize = out.Size / uint64(out.Depth)
	}
	return out
}

func computeSurfaceInfo(in surfaceIn) SurfaceInfo {
	computeMipLevel(&in)

	elem := elementInfo(in.format)
	if elem.mode == elemExpanded && elem.expandX == 3 && in.tileMode == TileModeLinearAligned {
		in.flags.pitch3x = true
	}
	adjustSurfaceInfo(&in, elem)

	out := computeSurfaceInfoEx(&in)
	out.BitsPerPixel = in.bpp
	out.PixelPitch = out.Pitch
	out.PixelHeight = out.Height
	if !in.flags.pitch3x || in.mipLevel == 0 {
		restoreSurfaceInfo(&out, elem)
	}
	if in.flags.volume {
		out.SliceSize = out.Size
	} else {
		out.SliceSize = out.Size / uint64(max(1, out.Depth))
	}
	return out
}

func computeMipLevel(in *surfaceIn) {
	block := isBlockHW(in.format)
	if block && (in.mipLevel == 0 || in.flags.inputBaseMap) {
		in.width = powTwoAlign(in.width, 4)
		in.height = powTwoAlign(in.height, 4)
	}

	if block {
		if in.mipLevel != 0 {
			width, height, slices := in.width, in.height, in.numSlices
			if in.flags.inputBaseMap {
				width = max(1, width>>in.mipLevel)
				height = max(1, height>>in.mipLevel)
				if !in.flags.cube {
					slices = max(1, slices>>in.mipLevel)
				}
			}
			in.width = nextPow2(width)
			in.height = nextPow2(height)
			in.numSlices = slices
		}
		return
	}

	if in.mipLevel != 0 && in.flags.inputBaseMap {
		width := max(1, in.width>>in.mipLevel)
		height := max(1, in.height>>in.mipLevel)
		slices := in.numSlices
		if !in.flags.cube {
			slices = max(1, slices>>in.mipLevel)
		}
		if in.format != 0x2f && in.format != 0x30 {
			width = nextPow2(width)
			height = nextPow2(height)
			slices = nextPow2(slices)
		}
		in.width, in.height, in.numSlices = width, height, slices
	}
}

func adjustSurfaceInfo(in *surfaceIn, elem elemInfo) {
	compressed := false
	if in.bpp != 0 {
		switch elem.mode {
		case elemExpanded:
			in.bpp = in.bpp / elem.expandX / elem.expandY
		case elemPackedStd, elemPackedRev:
			in.bpp = in.bpp * elem.expandX * elem.expandY
		case elemPackedBC1, elemPackedBC4:
			in.bpp = 64
			compressed = true
		case elemPackedBC2, elemPackedBC3, elemPackedBC5:
			in.bpp = 128
			compressed = true
		}
	}

	if in.width == 0 || in.height == 0 || (elem.expandX <= 1 && elem.expandY <= 1) {
		return
	}
	width, height := in.width, in.height
	switch {
	case elem.mode == elemExpanded:
		width *= elem.expandX
		height *= elem.expandY
	case compressed:
		width /= elem.expandX
		height /= elem.expandY
	default:
		width = (width + elem.expandX - 1) / elem.expandX
		height = (height + elem.expandY - 1) / elem.expandY
	}
	in.width = max(1, width)
	in.height = max(1, height)
}

func restoreSurfaceInfo(out *SurfaceInfo, elem elemInfo) {
	if elem.expandX <= 1 && elem.expandY <= 1 {
		return
	}
	if elem.mode == elemExpanded {
		out.PixelPitch = max(1, out.PixelPitch/elem.expandX)
		out.PixelHeight = max(1, out.PixelHeight/elem.expandY)
	} else {
		out.PixelPitch = max(1, out.PixelPitch*elem.expandX)
		out.PixelHeight = max(1, out.PixelHeight*elem.expandY)
	}
}

func computeSurfaceInfoEx(in *surfaceIn) SurfaceInfo {
	baseTileMode := in.tileMode
	numSamples := max(1, in.numSamples)
	padDims := 0
	if in.flags.cube && in.mipLevel == 0 {
		padDims = 2
	}

	tileMode := mipLevelTileMode(in.tileMode, in.bpp, in.mipLevel, in.width, in.height, in.numSlices, numSamples, false)

	switch {
	case tileMode == TileModeDefault || tileMode == TileModeLinearAligned:
		return surfaceInfoLinear(tileMode, in.bpp, numSamples, in.width, in.height, in.numSlices, in.mipLevel, padDims, in.flags)
	case tileMode.IsMicroTiled():
		return surfaceInfoMicroTiled(tileMode, in.bpp, numSamples, in.width, in.height, in.numSlices, in.mipLevel, padDims, in.flags)
	default:
		return surfaceInfoMacroTiled(tileMode, baseTileMode, in.bpp, numSamples, in.width, in.height, in.numSlices, in.mipLevel, padDims, in.flags)
	}
}

// mipLevelTileMode demotes tile modes for mip levels too small to fill a
// macro tile, and thick modes for multisampled surfaces, surfaces whose
// thick tile spans more than one split, or surfaces with fewer than 4 slices.
func mipLevelTileMode(base TileMode, bpp, level, width, height, slices, numSamples uint32, noRecursive bool) TileMode {
	tileMode := base
	if numSamples > 1 || surfaceTileSlices(base, bpp, numSamples) > 1 {
		switch tileMode {
		case TileMode1DThick:
			tileMode = TileMode1DThin1
		case TileMode2DThick:
			tileMode = TileMode2DThin1
		case TileMode2BThick:
			tileMode = TileMode2BThin1
		case TileMode3DThick:
			tileMode = TileMode3DThin1
		case TileMode3BThick:
			tileMode = TileMode3BThin1
		}
	}
	if noRecursive || level == 0 {
		return tileMode
	}

	if bpp == 24 || bpp == 48 || bpp == 96 {
		bpp /= 3
	}
	width = nextPow2(width)
	height = nextPow2(height)
	slices = nextPow2(slices)

	tileMode = nonBankSwapped(tileMode)
	thickness := surfaceThickness(tileMode)
	microTileBytes := bitsToBytes(numSamples * bpp * (thickness << 6))
	widthAlignFactor := uint32(1)
	if microTileBytes < pipeInterleaveBytes {
		widthAlignFactor = pipeInterleaveBytes / microTileBytes
	}
	macroWidth := uint32(microTileWidth * numBanks)
	macroHeight := uint32(microTileHeight * numPipes)

	switch tileMode {
	case TileMode2DThin1, TileMode3DThin1:
		if width < widthAlignFactor*macroWidth || height < macroHeight {
			tileMode = TileMode1DThin1
		}
	case TileMode2DThin2:
		macroWidth >>= 1
		macroHeight *= 2
		if width < widthAlignFactor*macroWidth || height < macroHeight {
			tileMode = TileMode1DThin1
		}
	case TileMode2DThin4:
		macroWidth >>= 2
		macroHeight *= 4
		if width < widthAlignFactor*macroWidth || height < macroHeight {
			tileMode = TileMode1DThin1
		}
	case TileMode2DThick, TileMode3DThick:
		if width < widthAlignFactor*macroWidth || height < macroHeight {
			tileMode = TileMode1DThick
		}
	}

	if slices < 4 {
		switch tileMode {
		case TileMode1DThick:
			tileMode = TileMode1DThin1
		case TileMode2DThick:
			tileMode = TileMode2DThin1
		case TileMode3DThick:
			tileMode = TileMode3DThin1
		}
	}

	return mipLevelTileMode(tileMode, bpp, level, width, height, slices, numSamples, true)
}

func surfaceInfoLinear(tileMode TileMode, bpp, numSamples, pitch, height, numSlices, mipLevel uint32, padDims int, flags surfaceFlags) SurfaceInfo {
	expPitch, expHeight, expSlices := pitch, height, numSlices
	thickness := surfaceThickness(tileMode)
	baseAlign, pitchAlign, heightAlign := alignmentsLinear(tileMode, bpp)

	if flags.pitch3x && mipLevel == 0 {
		expPitch = nextPow2(expPitch / 3)
	}
	if mipLevel != 0 {
		expPitch = nextPow2(expPitch)
		expHeight = nextPow2(expHeight)
		expSlices, padDims = mipSlices(numSlices, padDims, flags.cube)
	}

	expPitch, expHeight, expSlices = padDimensions(tileMode, padDims, flags.cube, expPitch, pitchAlign, expHeight, heightAlign, expSlices, thickness)
	if flags.pitch3x && mipLevel == 0 {
		expPitch *= 3
	}

	slices := expSlices * numSamples / thickness
	return SurfaceInfo{
		Pitch:       expPitch,
		Height:      expHeight,
		Depth:       expSlices,
		Size:        bitsToBytes64(uint64(expHeight) * uint64(expPitch) * uint64(slices) * uint64(bpp) * uint64(numSamples)),
		TileMode:    tileMode,
		BaseAlign:   baseAlign,
		PitchAlign:  pitchAlign,
		HeightAlign: heightAlign,
		DepthAlign:  thickness,
	}
}

func surfaceInfoMicroTiled(tileMode TileMode, bpp, numSamples, pitch, height, numSlices, mipLevel uint32, padDims int, flags surfaceFlags) SurfaceInfo {
	expPitch, expHeight, expSlices := pitch, height, numSlices
	expTileMode := tileMode
	thickness := surfaceThickness(tileMode)

	if mipLevel != 0 {
		expPitch = nextPow2(expPitch)
		expHeight = nextPow2(expHeight)
		expSlices, padDims = mipSlices(numSlices, padDims, flags.cube)
		if expTileMode == TileMode1DThick && expSlices < 4 {
			expTileMode = TileMode1DThin1
			thickness = 1
		}
	}

	baseAlign, pitchAlign, heightAlign := alignmentsMicroTiled(expTileMode, bpp, numSamples)
	expPitch, expHeight, expSlices = padDimensions(expTileMode, padDims, flags.cube, expPitch, pitchAlign, expHeight, heightAlign, expSlices, thickness)

	return SurfaceInfo{
		Pitch:       expPitch,
		Height:      expHeight,
		Depth:       expSlices,
		Size:        bitsToBytes64(uint64(expHeight) * uint64(expPitch) * uint64(expSlices) * uint64(bpp) * uint64(numSamples)),
		TileMode:    expTileMode,
		BaseAlign:   baseAlign,
		PitchAlign:  pitchAlign,
		HeightAlign: heightAlign,
		DepthAlign:  thickness,
	}
}

func surfaceInfoMacroTiled(tileMode, baseTileMode TileMode, bpp, numSamples, pitch, height, numSlices, mipLevel uint32, padDims int, flags surfaceFlags) SurfaceInfo {
	expPitch, expHeight, expSlices := pitch, height, numSlices
	expTileMode := tileMode
	thickness := surfaceThickness(tileMode)

	if mipLevel != 0 {
		expPitch = nextPow2(expPitch)
		expHeight = nextPow2(expHeight)
		expSlices, padDims = mipSlices(numSlices, padDims, flags.cube)
		if expTileMode == TileMode2DThick && expSlices < 4 {
			expTileMode = TileMode2DThin1
			thickness = 1
		}
	}

	if tileMode != baseTileMode && mipLevel != 0 && isThickMacroTiled(baseTileMode) && !isThickMacroTiled(tileMode) {
		_, pitchAlign, heightAlign := alignmentsMacroTiled(baseTileMode, bpp, numSamples)
		factor := max(1, 32/bpp)
		if expPitch < pitchAlign*factor || expHeight < heightAlign {
			return surfaceInfoMicroTiled(TileMode1DThin1, bpp, numSamples, pitch, height, numSlices, mipLevel, padDims, flags)
		}
	}

	baseAlign, pitchAlign, heightAlign := alignmentsMacroTiled(tileMode, bpp, numSamples)
	if swapped := bankSwappedWidth(tileMode, bpp, numSamples, pitch); swapped > pitchAlign {
		pitchAlign = swapped
	}
	expPitch, expHeight, expSlices = padDimensions(tileMode, padDims, flags.cube, expPitch, pitchAlign, expHeight, heightAlign, expSlices, thickness)

	return SurfaceInfo{
		Pitch:       expPitch,
		Height:      expHeight,
		Depth:       expSlices,
		Size:        bitsToBytes64(uint64(expHeight) * uint64(expPitch) * uint64(expSlices) * uint64(bpp) * uint64(numSamples)),
		TileMode:    expTileMode,
		BaseAlign:   baseAlign,
		PitchAlign:  pitchAlign,
		HeightAlign: heightAlign,
		DepthAlign:  thickness,
	}
}

func mipSlices(numSlices uint32, padDims int, cube bool) (uint32, int) {
	if !cube {
		return nextPow2(numSlices), padDims
	}
	if numSlices <= 1 {
		return numSlices, 2
	}
	return numSlices, 0
}

func alignmentsLinear(tileMode TileMode, bpp uint32) (baseAlign, pitchAlign, heightAlign uint32) {
	switch tileMode {
	case TileModeDefault:
		baseAlign, pitchAlign, heightAlign = 1, 1, 1
		if bpp == 1 {
			pitchAlign = 8
		}
	case TileModeLinearAligned:
		baseAlign = pipeInterleaveBytes
		pitchAlign = max(64, 8*pipeInterleaveBytes/bpp)
		heightAlign = 1
	default:
		baseAlign, pitchAlign, heightAlign = 1, 1, 1
	}
	return baseAlign, pitchAlign, heightAlign
}

func alignmentsMicroTiled(tileMode TileMode, bpp, numSamples uint32) (baseAlign, pitchAlign, heightAlign uint32) {
	if bpp == 24 || bpp == 48 || bpp == 96 {
		bpp /= 3
	}
	thickness := surfaceThickness(tileMode)
	baseAlign = pipeInterleaveBytes
	pitchAlign = max(8, pipeInterleaveBytes/bitsToBytes(bpp)/numSamples/thickness)
	heightAlign = 8
	return baseAlign, pitchAlign, heightAlign
}

func alignmentsMacroTiled(tileMode TileMode, bpp, numSamples uint32) (baseAlign, pitchAlign, heightAlign uint32) {
	aspect := macroTileAspectRatio(tileMode)
	thickness := surfaceThickness(tileMode)
	if bpp == 24 || bpp == 48 || bpp == 96 {
		bpp /= 3
	}
	if bpp == 3 {
		bpp = 1
	}

	macroWidth := uint32(microTileWidth*numBanks) / aspect
	macroHeight := aspect * microTileHeight * numPipes
	pitchAlign = max(macroWidth, macroWidth*(pipeInterleaveBytes/bpp/(8*thickness)/numSamples))
	heightAlign = macroHeight

	macroTileBytes := numSamples * bitsToBytes(bpp*macroHeight*macroWidth)
	if thickness == 1 {
		baseAlign = max(macroTileBytes, bitsToBytes(numSamples*heightAlign*bpp*pitchAlign))
	} else {
		baseAlign = max(pipeInterleaveBytes, bitsToBytes(4*heightAlign*bpp*pitchAlign))
	}

	microTileBytes := bitsToBytes(thickness * numSamples * (bpp << 6))
	slicesPerMicroTile := uint32(1)
	if microTileBytes >= splitSize {
		slicesPerMicroTile = microTileBytes / splitSize
	}
	baseAlign /= slicesPerMicroTile
	return baseAlign, pitchAlign, heightAlign
}

func padDimensions(tileMode TileMode, padDims int, cube bool, pitch, pitchAlign, height, heightAlign, slices, sliceAlign uint32) (uint32, uint32, uint32) {
	thickness := surfaceThickness(tileMode)
	if padDims == 0 {
		padDims = 3
	}

	if isPow2(pitchAlign) {
		pitch = powTwoAlign(pitch, pitchAlign)
	} else {
		pitch = (pitch + pitchAlign - 1) / pitchAlign * pitchAlign
	}
	if padDims > 1 {
		height = powTwoAlign(height, heightAlign)
	}
	if padDims > 2 || thickness > 1 {
		if cube {
			slices = nextPow2(slices)
		}
		if thickness > 1 {
			slices = powTwoAlign(slices, sliceAlign)
		}
	}
	return pitch, height, slices
}

// bankSwappedWidth returns the pitch granularity at which bank-swapped
// modes rotate the bank order, or 0 for other modes.
func bankSwappedWidth(tileMode TileMode, bpp, numSamples, pitch uint32) uint32 {
	if !isBankSwapped(tileMode) {
		return 0
	}

	bytesPerSample := 8 * bpp
	samplesPerTile := uint32(1)
	if bytesPerSample != 0 {
		samplesPerTile = max(1, splitSize/bytesPerSample)
	}
	slicesPerTile := max(1, numSamples/samplesPerTile)
	if isThickMacroTiled(tileMode) {
		numSamples = 4
	}
	bytesPerTileSlice := numSamples * bytesPerSample / slicesPerTile

	factor := macroTileAspectRatio(tileMode)
	swapTiles := max(1, (swapSize>>1)/bpp)
	swapWidth := swapTiles * 8 * numBanks
	heightBytes := numSamples * factor * numPipes * bpp / slicesPerTile
	swapMax := numPipes * numBanks * rowSize / heightBytes
	swapMin := pipeInterleaveBytes * 8 * numBanks / bytesPerTileSlice

	width := min(swapMax, max(swapMin, swapWidth))
	for width >= 2*pitch && width > 1 {
		width >>= 1
	}
	return width
}

func surfaceThickness(tileMode TileMode) uint32 {
	switch tileMode {
	case TileMode1DThick, TileMode2DThick, TileMode2BThick, TileMode3DThick, TileMode3BThick:
		return 4
	}
	return 1
}

// surfaceTileSlices returns how many tile splits one tile of the given mode
// occupies. Thick tiles count as 4 samples.
func surfaceTileSlices(tileMode TileMode, bpp, numSamples uint32) uint32 {
	bytesPerSample := ((bpp << 6) + 7) >> 3
	if surfaceThickness(tileMode) > 1 {
		numSamples = 4
	}
	if bytesPerSample == 0 {
		return 1
	}
	samplesPerTile := splitSize / bytesPerSample
	if samplesPerTile == 0 {
		return 1
	}
	return max(1, numSamples/samplesPerTile)
}

func isThickMacroTiled(tileMode TileMode) bool {
	switch tileMode {
	case TileMode2DThick, TileMode2BThick, TileMode3DThick, TileMode3BThick:
		return true
	}
	return false
}

func isBankSwapped(tileMode TileMode) bool {
	switch tileMode {
	case TileMode2BThin1, TileMode2BThin2, TileMode2BThin4, TileMode2BThick, TileMode3BThin1, TileMode3BThick:
		return true
	}
	return false
}

func nonBankSwapped(tileMode TileMode) TileMode {
	switch tileMode {
	case TileMode2BThin1:
		return TileMode2DThin1
	case TileMode2BThin2:
		return TileMode2DThin2
	case TileMode2BThin4:
		return TileMode2DThin4
	case TileMode2BThick:
		return TileMode2DThick
	case TileMode3BThin1:
		return TileMode3DThin1
	case TileMode3BThick:
		return TileMode3DThick
	}
	return tileMode
}

func macroTileAspectRatio(tileMode TileMode) uint32 {
	switch tileMode {
	case TileMode2DThin2, TileMode2BThin2:
		return 2
	case TileMode2DThin4, TileMode2BThin4:
		return 4
	}
	return 1
}

func surfaceRotation(tileMode TileMode) uint32 {
	switch tileMode {
	case TileMode2DThin1, TileMode2DThin2, TileMode2DThin4, TileMode2DThick,
		TileMode2BThin1, TileMode2BThin2, TileMode2BThin4, TileMode2BThick:
		return numPipes * ((numBanks >> 1) - 1)
	case TileMode3DThin1, TileMode3DThick, TileMode3BThin1, TileMode3BThick:
		return 1
	}
	return 0
}

func bitsToBytes(bits uint32) uint32 {
	return (bits + 7) / 8
}

func bitsToBytes64(bits uint64) uint64 {
	return (bits + 7) / 8
}

func isPow2(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}

func powTwoAlign(x, align uint32) uint32 {
	return (x + align - 1) &^ (align - 1)
}

func nextPow2(v uint32) uint32 {
	if v <= 1 {
		return 1
	}
	p := uint32(1)
	for p < v {
		p <<= 1
	}
	return p
}
