// Package export writes decoded textures to disk as images and renders
// contact-sheet catalogs of them.
package export

import (
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/text/unicode/norm"
)

// Format is an output image format.
type Format int

const (
	FormatPNG Format = iota
	FormatBMP
	FormatTIFF
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	}
	return "format(" + strconv.Itoa(int(f)) + ")"
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + f.String()
}

// ParseFormat maps a format name or extension to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(name), ".") {
	case "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return 0, errors.Errorf("unknown image format %q", name)
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return errors.Errorf("unknown image format %d", int(f))
}

// WriteFile encodes img into path, creating parent directories. An existing
// file is only replaced when force is set.
func WriteFile(path string, img image.Image, f Format, force bool) error {
	return writeFile(path, force, func(w io.Writer) error {
		return Encode(w, img, f)
	})
}

// WriteBytes writes data into path like WriteFile.
func WriteBytes(path string, data []byte, force bool) error {
	return writeFile(path, force, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func writeFile(path string, force bool, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create output dir")
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}

// Path turns a texture key into a relative output path. Each "/" separated
// segment of the key becomes a directory, names are NFC normalized and
// characters that are unsafe in file names are replaced. Levels other than
// the base get a _mipN suffix.
func Path(key string, mip int, ext string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = SanitizeName(s)
	}
	last := len(segments) - 1
	if mip > 0 {
		segments[last] += "_mip" + strconv.Itoa(mip)
	}
	segments[last] += ext
	return filepath.Join(segments...)
}

// SanitizeName returns name in NFC form with path separators, reserved
// punctuation and control characters replaced by '_'.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, norm.NFC.String(name))

	if strings.Trim(name, ". ") == "" {
		return "_" + name
	}
	return name
}
