package pixel

import "sync"

// Fast converts through per-layout lookup tables. Layouts with at most 16
// bits per texel are unpacked from a table of all texel values; RGBA8 with
// the identity selection is copied.
type Fast struct{}

var (
	tablesOnce sync.Once
	tables     map[Layout][][6]byte
)

func buildTables() {
	tables = make(map[Layout][][6]byte)
	for _, layout := range []Layout{LayoutL8, LayoutLA4, LayoutLA8, LayoutRGB565, LayoutRGB5A1, LayoutRGBA4} {
		size := 1 << (8 * layout.BytesPerPixel())
		t := make([][6]byte, size)
		for p := range t {
			t[p] = unpack(layout, uint32(p))
		}
		tables[layout] = t
	}
}

// Convert implements Converter.
func (Fast) Convert(raw []byte, width, height int, layout Layout, sel ComponentSelection) ([]byte, error) {
	n, err := checkInput(raw, width, height, layout, sel)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n*4)

	switch layout {
	case LayoutRGBA8:
		if sel == Identity {
			copy(out, raw[:n*4])
			return out, nil
		}
		for i := 0; i < n; i++ {
			c := [6]byte{raw[i*4], raw[i*4+1], raw[i*4+2], raw[i*4+3], 0, 0xff}
			out[i*4+0] = c[sel[0]]
			out[i*4+1] = c[sel[1]]
			out[i*4+2] = c[sel[2]]
			out[i*4+3] = c[sel[3]]
		}
		return out, nil
	case LayoutBGR10A2:
		for i := 0; i < n; i++ {
			c := unpack(layout, readTexel(raw, i*4, 4))
			out[i*4+0] = c[sel[0]]
			out[i*4+1] = c[sel[1]]
			out[i*4+2] = c[sel[2]]
			out[i*4+3] = c[sel[3]]
		}
		return out, nil
	}

	tablesOnce.Do(buildTables)
	table := tables[layout]
	if layout.BytesPerPixel() == 1 {
		for i := 0; i < n; i++ {
			c := &table[raw[i]]
			out[i*4+0] = c[sel[0]]
			out[i*4+1] = c[sel[1]]
			out[i*4+2] = c[sel[2]]
			out[i*4+3] = c[sel[3]]
		}
		return out, nil
	}
	for i := 0; i < n; i++ {
		c := &table[uint16(raw[i*2])|uint16(raw[i*2+1])<<8]
		out[i*4+0] = c[sel[0]]
		out[i*4+1] = c[sel[1]]
		out[i*4+2] = c[sel[2]]
		out[i*4+3] = c[sel[3]]
	}
	return out, nil
}
