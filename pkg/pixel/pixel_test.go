package pixel

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/goopsie/ftextools/pkg/fault"
)

var converters = []struct {
	name string
	conv Converter
}{
	{"Reference", Reference{}},
	{"Fast", Fast{}},
}

func TestConvertLayouts(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
		raw    []byte
		want   [4]byte
	}{
		{"L8", LayoutL8, []byte{0x80}, [4]byte{128, 0, 0, 255}},
		{"LA4", LayoutLA4, []byte{0x3c}, [4]byte{204, 51, 0, 255}},
		{"LA8", LayoutLA8, []byte{0x10, 0x20}, [4]byte{16, 32, 0, 255}},
		{"RGB565_Blue", LayoutRGB565, []byte{0x00, 0xf8}, [4]byte{0, 0, 255, 255}},
		{"RGB565_Scaled", LayoutRGB565, []byte{0x15, 0x00}, [4]byte{172, 0, 0, 255}},
		{"RGB5A1", LayoutRGB5A1, []byte{0x1f, 0x80}, [4]byte{255, 0, 0, 255}},
		{"RGB5A1_Transparent", LayoutRGB5A1, []byte{0x00, 0x7c}, [4]byte{0, 0, 255, 0}},
		{"RGBA4", LayoutRGBA4, []byte{0x21, 0x43}, [4]byte{17, 34, 51, 68}},
		{"BGR10A2", LayoutBGR10A2, []byte{0xff, 0x03, 0x00, 0xc0}, [4]byte{255, 0, 0, 255}},
		{"BGR10A2_PartialAlpha", LayoutBGR10A2, []byte{0x00, 0x00, 0xf0, 0x7f}, [4]byte{0, 0, 255, 85}},
		{"RGBA8", LayoutRGBA8, []byte{10, 20, 30, 40}, [4]byte{10, 20, 30, 40}},
	}

	for _, c := range converters {
		for _, tt := range tests {
			t.Run(c.name+"/"+tt.name, func(t *testing.T) {
				got, err := c.conv.Convert(tt.raw, 1, 1, tt.layout, Identity)
				if err != nil {
					t.Fatalf("convert: %v", err)
				}
				if !bytes.Equal(got, tt.want[:]) {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			})
		}
	}
}

func TestConvertComponentSelection(t *testing.T) {
	tests := []struct {
		name string
		sel  ComponentSelection
		want [4]byte
	}{
		{"SwapRB_ConstAlpha", ComponentSelection{2, 1, 0, 5}, [4]byte{30, 20, 10, 255}},
		{"Broadcast", ComponentSelection{0, 0, 0, 3}, [4]byte{10, 10, 10, 40}},
		{"ZeroConstant", ComponentSelection{4, 4, 1, 5}, [4]byte{0, 0, 20, 255}},
		{"RenderableMarker", ComponentSelection{4, 4, 1, 5}.Renderable(), [4]byte{10, 20, 20, 255}},
	}

	for _, c := range converters {
		for _, tt := range tests {
			t.Run(c.name+"/"+tt.name, func(t *testing.T) {
				got, err := c.conv.Convert([]byte{10, 20, 30, 40}, 1, 1, LayoutRGBA8, tt.sel)
				if err != nil {
					t.Fatalf("convert: %v", err)
				}
				if !bytes.Equal(got, tt.want[:]) {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			})
		}
	}
}

func TestConvertersAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	layouts := []Layout{LayoutL8, LayoutLA4, LayoutLA8, LayoutRGB565, LayoutRGB5A1, LayoutRGBA4, LayoutBGR10A2, LayoutRGBA8}
	selections := []ComponentSelection{
		Identity,
		{2, 1, 0, 5},
		{0, 0, 0, 1},
		{3, 4, 5, 0},
	}

	const w, h = 33, 17
	for _, layout := range layouts {
		raw := make([]byte, w*h*layout.BytesPerPixel())
		rng.Read(raw)
		for _, sel := range selections {
			t.Run(layout.String()+"/"+sel.String(), func(t *testing.T) {
				ref, err := Reference{}.Convert(raw, w, h, layout, sel)
				if err != nil {
					t.Fatalf("reference: %v", err)
				}
				fast, err := Fast{}.Convert(raw, w, h, layout, sel)
				if err != nil {
					t.Fatalf("fast: %v", err)
				}
				if !bytes.Equal(ref, fast) {
					t.Error("backends disagree")
				}
			})
		}
	}
}

func TestConvertErrors(t *testing.T) {
	for _, c := range converters {
		t.Run(c.name, func(t *testing.T) {
			if _, err := c.conv.Convert(make([]byte, 4), 2, 2, LayoutRGBA8, Identity); !fault.IsTruncated(err) {
				t.Errorf("short input: expected truncation error, got %v", err)
			}
			if _, err := c.conv.Convert(make([]byte, 4), 1, 1, LayoutRGBA8, ComponentSelection{0, 1, 2, 9}); !fault.IsFormat(err) {
				t.Errorf("selector 9: expected format error, got %v", err)
			}
			if _, err := c.conv.Convert(make([]byte, 4), 1, 1, Layout(0), Identity); !fault.IsFormat(err) {
				t.Errorf("unknown layout: expected format error, got %v", err)
			}
		})
	}
}

func TestComponentSelection(t *testing.T) {
	sel := ComponentSelection{4, 1, 4, 5}
	if got, want := sel.Renderable(), (ComponentSelection{0, 1, 2, 5}); got != want {
		t.Errorf("renderable: got %v, want %v", got, want)
	}
	if got := sel.String(); got != "0G01" {
		t.Errorf("string: got %q", got)
	}
	if sel != (ComponentSelection{4, 1, 4, 5}) {
		t.Error("Renderable modified the receiver")
	}
}
