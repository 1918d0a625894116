package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 255 / max(1, w-1)), uint8(y * 255 / max(1, h-1)), 128, 255})
		}
	}
	return img
}

func TestEncodeRoundTrip(t *testing.T) {
	src := gradient(17, 9)

	decoders := map[Format]func(*bytes.Reader) (image.Image, error){
		FormatPNG:  func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) },
		FormatBMP:  func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) },
		FormatTIFF: func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) },
	}

	for format, decode := range decoders {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, src, format); err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := decode(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Bounds() != src.Bounds() {
				t.Fatalf("bounds: got %v", got.Bounds())
			}
			for y := 0; y < 9; y++ {
				for x := 0; x < 17; x++ {
					want := src.NRGBAAt(x, y)
					if c := color.NRGBAModel.Convert(got.At(x, y)).(color.NRGBA); c != want {
						t.Fatalf("pixel (%d, %d): got %v, want %v", x, y, c, want)
					}
				}
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{".PNG", FormatPNG, false},
		{"bmp", FormatBMP, false},
		{"tif", FormatTIFF, false},
		{"tiff", FormatTIFF, false},
		{"webp", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.name)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %s, %v", tt.name, got, err)
		}
	}
	if FormatTIFF.Ext() != ".tiff" {
		t.Errorf("Ext: got %s", FormatTIFF.Ext())
	}
}

func TestPath(t *testing.T) {
	tests := []struct {
		key  string
		mip  int
		want string
	}{
		{"model/Tex", 0, filepath.Join("model", "Tex.png")},
		{"model/Tex", 2, filepath.Join("model", "Tex_mip2.png")},
		{"pack/Model.szs/output.bfres/A:B", 0, filepath.Join("pack", "Model.szs", "output.bfres", "A_B.png")},
		{"model/..", 0, filepath.Join("model", "_...png")},
		{"model/Cafe\u0301", 0, filepath.Join("model", "Caf\u00e9.png")},
	}
	for _, tt := range tests {
		if got := Path(tt.key, tt.mip, ".png"); got != tt.want {
			t.Errorf("Path(%q, %d) = %q, want %q", tt.key, tt.mip, got, tt.want)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Tex_Alb", "Tex_Alb"},
		{`a\b*c?`, "a_b_c_"},
		{"tab\there", "tab_here"},
		{"", "_"},
		{"..", "_.."},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tex.png")
	img := gradient(4, 4)

	if err := WriteFile(path, img, FormatPNG, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteFile(path, img, FormatPNG, false); !os.IsExist(err) {
		t.Errorf("expected exists error without force, got %v", err)
	}
	if err := WriteFile(path, img, FormatPNG, true); err != nil {
		t.Errorf("forced write: %v", err)
	}
	if err := WriteBytes(path, []byte("DDS "), true); err != nil {
		t.Errorf("write bytes: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "DDS " {
		t.Errorf("read back %q, %v", data, err)
	}
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		w, h         int
		size         int
		wantW, wantH int
	}{
		{512, 256, 256, 256, 128},
		{64, 1024, 256, 16, 256},
		{32, 32, 256, 32, 32},
		{1024, 1, 256, 256, 1},
	}
	for _, tt := range tests {
		thumb := Thumbnail(gradient(tt.w, tt.h), tt.size)
		if thumb.Bounds().Dx() != tt.wantW || thumb.Bounds().Dy() != tt.wantH {
			t.Errorf("%dx%d: got %v", tt.w, tt.h, thumb.Bounds())
		}
	}

	src := gradient(32, 32)
	if !bytes.Equal(Thumbnail(src, 256).Pix, src.Pix) {
		t.Error("unscaled thumbnail differs from the source")
	}
}

func TestCatalog(t *testing.T) {
	var entries []CatalogEntry
	for i := 0; i < 14; i++ {
		entries = append(entries, CatalogEntry{
			Title:   "Tex_é",
			Caption: "64x64 T_BC1_UNORM",
			Image:   gradient(64, 32+i),
		})
	}

	var buf bytes.Buffer
	if err := Catalog(&buf, "model.szs", entries); err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", buf.Bytes()[:8])
	}
	buf.Reset()
	if err := Catalog(&buf, "empty", nil); err != nil {
		t.Fatalf("empty catalog: %v", err)
	}
}
