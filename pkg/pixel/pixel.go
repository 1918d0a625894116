// Package pixel converts raw (uncompressed) texel layouts into RGBA8 and
// applies a texture's component selection.
//
// Two converters implement the same contract: Reference unpacks one texel
// at a time and Fast uses lookup tables with a copy path for identity
// selections. Default is Fast unless the module is built with -tags pixelref.
package pixel

import (
	"fmt"

	"github.com/goopsie/ftextools/pkg/fault"
)

// Layout is a raw texel layout. Texels are little-endian words.
type Layout uint8

const (
	LayoutL8 Layout = iota + 1
	LayoutLA4
	LayoutLA8
	LayoutRGB565
	LayoutRGB5A1
	LayoutRGBA4
	LayoutBGR10A2
	LayoutRGBA8
)

var layoutInfo = map[Layout]struct {
	name  string
	bytes int
}{
	LayoutL8:      {"l8", 1},
	LayoutLA4:     {"la4", 1},
	LayoutLA8:     {"la8", 2},
	LayoutRGB565:  {"rgb565", 2},
	LayoutRGB5A1:  {"rgb5a1", 2},
	LayoutRGBA4:   {"rgba4", 2},
	LayoutBGR10A2: {"bgr10a2", 4},
	LayoutRGBA8:   {"rgba8", 4},
}

// BytesPerPixel returns the texel size, or 0 for an unknown layout.
func (l Layout) BytesPerPixel() int {
	return layoutInfo[l].bytes
}

func (l Layout) String() string {
	if info, ok := layoutInfo[l]; ok {
		return info.name
	}
	return fmt.Sprintf("layout(%d)", uint8(l))
}

// Selector values beyond the four source channels.
const (
	SelectZero = 4 // also the unsupported marker in stored selections
	SelectOne  = 5
)

// ComponentSelection maps each output channel (R, G, B, A) to a source
// channel 0-3, constant 0 (4) or constant 255 (5).
type ComponentSelection [4]uint8

// Identity selects each channel from itself.
var Identity = ComponentSelection{0, 1, 2, 3}

// Renderable replaces the unsupported marker 4 with the channel's own index.
func (s ComponentSelection) Renderable() ComponentSelection {
	for i, v := range s {
		if v == SelectZero {
			s[i] = uint8(i)
		}
	}
	return s
}

// Validate rejects selectors above 5.
func (s ComponentSelection) Validate() error {
	for _, v := range s {
		if v > SelectOne {
			return fault.Formatf("component selector", uint64(v))
		}
	}
	return nil
}

func (s ComponentSelection) String() string {
	const names = "RGBA01"
	b := make([]byte, 4)
	for i, v := range s {
		if int(v) < len(names) {
			b[i] = names[v]
		} else {
			b[i] = '?'
		}
	}
	return string(b)
}

// Converter turns width*height raw texels of the given layout into
// width*height*4 bytes of RGBA8 after applying sel.
type Converter interface {
	Convert(raw []byte, width, height int, layout Layout, sel ComponentSelection) ([]byte, error)
}

func checkInput(raw []byte, width, height int, layout Layout, sel ComponentSelection) (int, error) {
	bpp := layout.BytesPerPixel()
	if bpp == 0 {
		return 0, fault.Formatf("pixel layout", uint64(layout))
	}
	if err := sel.Validate(); err != nil {
		return 0, err
	}
	n := width * height
	if need := n * bpp; len(raw) < need {
		return 0, fault.Truncated(layout.String()+" texels", need, len(raw))
	}
	return n, nil
}

func scale(v, maxValue uint32) byte {
	return byte(v * 255 / maxValue)
}

// unpack returns the channel array for one texel: four channels, then the
// constants 0 and 255 addressed by selectors 4 and 5.
func unpack(layout Layout, p uint32) [6]byte {
	c := [6]byte{0, 0, 0, 0xff, 0, 0xff}
	switch layout {
	case LayoutL8:
		c[0] = byte(p)
	case LayoutLA4:
		c[0] = byte(p&0xf) * 17
		c[1] = byte((p>>4)&0xf) * 17
	case LayoutLA8:
		c[0] = byte(p)
		c[1] = byte(p >> 8)
	case LayoutRGB565:
		c[0] = scale(p&0x1f, 31)
		c[1] = scale((p>>5)&0x3f, 63)
		c[2] = scale((p>>11)&0x1f, 31)
	case LayoutRGB5A1:
		c[0] = scale(p&0x1f, 31)
		c[1] = scale((p>>5)&0x1f, 31)
		c[2] = scale((p>>10)&0x1f, 31)
		c[3] = byte((p>>15)&1) * 0xff
	case LayoutRGBA4:
		c[0] = byte(p&0xf) * 17
		c[1] = byte((p>>4)&0xf) * 17
		c[2] = byte((p>>8)&0xf) * 17
		c[3] = byte((p>>12)&0xf) * 17
	case LayoutBGR10A2:
		c[0] = scale(p&0x3ff, 1023)
		c[1] = scale((p>>10)&0x3ff, 1023)
		c[2] = scale((p>>20)&0x3ff, 1023)
		c[3] = scale((p>>30)&0x3, 3)
	case LayoutRGBA8:
		c[0] = byte(p)
		c[1] = byte(p >> 8)
		c[2] = byte(p >> 16)
		c[3] = byte(p >> 24)
	}
	return c
}

func readTexel(raw []byte, i, bpp int) uint32 {
	switch bpp {
	case 1:
		return uint32(raw[i])
	case 2:
		return uint32(raw[i]) | uint32(raw[i+1])<<8
	default:
		return uint32(raw[i]) | uint32(raw[i+1])<<8 | uint32(raw[i+2])<<16 | uint32(raw[i+3])<<24
	}
}
