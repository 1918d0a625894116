// Package ftex turns extracted textures into RGBA8 images: it slices each
// mip level out of the base and mip-chain data, detiles it, decompresses or
// converts the texels and applies the texture's component selection.
package ftex

import (
	"image"
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/goopsie/ftextools/pkg/bcn"
	"github.com/goopsie/ftextools/pkg/bfres"
	"github.com/goopsie/ftextools/pkg/fault"
	"github.com/goopsie/ftextools/pkg/gx2"
	"github.com/goopsie/ftextools/pkg/pixel"
)

// Decoder holds immutable configuration and is safe for concurrent use.
type Decoder struct {
	conv   pixel.Converter
	logger *slog.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithConverter sets the raw pixel converter.
func WithConverter(c pixel.Converter) Option {
	return func(d *Decoder) {
		d.conv = c
	}
}

// WithLogger sets the logger used for per-level debug output.
func WithLogger(l *slog.Logger) Option {
	return func(d *Decoder) {
		d.logger = l
	}
}

// NewDecoder returns a Decoder using pixel.Default unless configured otherwise.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		conv:   pixel.Default,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Level is one detiled mip level in row-major element order.
type Level struct {
	Mip    int
	Width  int // pixels
	Height int // pixels
	Info   gx2.SurfaceInfo
	Data   []byte // ceil(Width/bw) * ceil(Height/bh) * bytesPerElement
}

// Detiled returns the linear payload of one mip level.
func (d *Decoder) Detiled(tex *bfres.Texture, mip int) (*Level, error) {
	lvl, err := d.detile(tex, mip)
	if err != nil {
		return nil, &fault.TextureError{Name: tex.Name, Mip: mip, Err: err}
	}
	return lvl, nil
}

func (d *Decoder) detile(tex *bfres.Texture, mip int) (*Level, error) {
	if mip < 0 || mip >= tex.MipCount() {
		return nil, errors.Errorf("mip level %d out of range [0, %d)", mip, tex.MipCount())
	}
	s := &tex.Surface

	base, err := s.Info(0)
	if err != nil {
		return nil, err
	}

	var src []byte
	info := base
	if mip == 0 {
		if uint64(len(tex.Data)) < base.Size {
			return nil, fault.Truncated("base level", int(base.Size), len(tex.Data))
		}
		src = tex.Data[:base.Size]
	} else {
		off := uint64(tex.MipOffsets[mip-1])
		if mip == 1 {
			if off < base.Size {
				return nil, fault.Formatf("mip 1 offset", off)
			}
			off -= base.Size
		}
		if info, err = s.Info(uint32(mip)); err != nil {
			return nil, err
		}
		if end := off + info.Size; end > uint64(len(tex.MipData)) {
			return nil, fault.Truncated("mip data", int(end), len(tex.MipData))
		}
		src = tex.MipData[off : off+info.Size]
	}

	width := max(1, s.Width>>mip)
	height := max(1, s.Height>>mip)
	d.logger.Debug("detiling level",
		"name", tex.Name, "mip", mip, "width", width, "height", height,
		"tileMode", info.TileMode.String(), "pitch", info.Pitch, "size", info.Size)

	data, err := gx2.Detile(width, height, info.Height, s.Format, info.TileMode, s.Swizzle, info.Pitch, info.BitsPerPixel, src)
	if err != nil {
		return nil, errors.Wrap(err, "detile")
	}
	return &Level{Mip: mip, Width: int(width), Height: int(height), Info: info, Data: data}, nil
}

// Decode returns one mip level as a non-premultiplied RGBA8 image.
func (d *Decoder) Decode(tex *bfres.Texture, mip int) (*image.NRGBA, error) {
	img, err := d.decode(tex, mip)
	if err != nil {
		return nil, &fault.TextureError{Name: tex.Name, Mip: mip, Err: err}
	}
	return img, nil
}

func (d *Decoder) decode(tex *bfres.Texture, mip int) (*image.NRGBA, error) {
	lvl, err := d.detile(tex, mip)
	if err != nil {
		return nil, err
	}
	return d.convert(tex, lvl)
}

// DecodeAll decodes every mip level, stopping at the first failure.
func (d *Decoder) DecodeAll(tex *bfres.Texture) ([]*image.NRGBA, error) {
	images := make([]*image.NRGBA, 0, tex.MipCount())
	for mip := 0; mip < tex.MipCount(); mip++ {
		img, err := d.Decode(tex, mip)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func (d *Decoder) convert(tex *bfres.Texture, lvl *Level) (*image.NRGBA, error) {
	format := tex.Format()
	raw, layout := lvl.Data, LayoutOf(format)
	if format.IsBlockCompressed() {
		var err error
		raw, err = bcn.Decompress(format.Family(), lvl.Data, lvl.Width, lvl.Height, format.Signed())
		if err != nil {
			return nil, errors.Wrap(err, "decompress")
		}
		layout = pixel.LayoutRGBA8
	}
	if layout == 0 {
		return nil, fault.Formatf("surface format", uint64(format))
	}

	pix, err := d.conv.Convert(raw, lvl.Width, lvl.Height, layout, tex.CompSel)
	if err != nil {
		return nil, errors.Wrap(err, "convert")
	}
	return &image.NRGBA{
		Pix:    pix,
		Stride: lvl.Width * 4,
		Rect:   image.Rect(0, 0, lvl.Width, lvl.Height),
	}, nil
}

// LayoutOf returns the raw layout of an uncompressed format, or 0.
func LayoutOf(f gx2.Format) pixel.Layout {
	switch f {
	case gx2.FormatR8Unorm:
		return pixel.LayoutL8
	case gx2.FormatR4G4Unorm:
		return pixel.LayoutLA4
	case gx2.FormatR8G8Unorm:
		return pixel.LayoutLA8
	case gx2.FormatR5G6B5Unorm:
		return pixel.LayoutRGB565
	case gx2.FormatR5G5B5A1Unorm:
		return pixel.LayoutRGB5A1
	case gx2.FormatR4G4B4A4Unorm:
		return pixel.LayoutRGBA4
	case gx2.FormatR10G10B10A2Unorm:
		return pixel.LayoutBGR10A2
	}
	if f.HW() == gx2.FormatR8G8B8A8Unorm.HW() {
		return pixel.LayoutRGBA8
	}
	return 0
}
