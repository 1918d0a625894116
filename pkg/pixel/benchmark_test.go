package pixel

import (
	"math/rand"
	"testing"
)

func BenchmarkConvert(b *testing.B) {
	const size = 512
	converters := []struct {
		name string
		conv Converter
	}{
		{"Reference", Reference{}},
		{"Fast", Fast{}},
	}
	layouts := []Layout{LayoutL8, LayoutLA8, LayoutRGB565, LayoutBGR10A2, LayoutRGBA8}
	selections := []struct {
		name string
		sel  ComponentSelection
	}{
		{"Identity", Identity},
		{"Swizzled", ComponentSelection{2, 1, 0, 5}},
	}

	rng := rand.New(rand.NewSource(1))
	for _, layout := range layouts {
		raw := make([]byte, size*size*layout.BytesPerPixel())
		rng.Read(raw)

		for _, s := range selections {
			for _, c := range converters {
				b.Run(layout.String()+"/"+s.name+"/"+c.name, func(b *testing.B) {
					b.SetBytes(int64(len(raw)))
					b.ResetTimer()
					for i := 0; i < b.N; i++ {
						if _, err := c.conv.Convert(raw, size, size, layout, s.sel); err != nil {
							b.Fatal(err)
						}
					}
				})
			}
		}
	}
}
