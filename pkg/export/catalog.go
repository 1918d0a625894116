package export

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

const (
	catalogColumns = 3
	catalogRows    = 4
	pageMargin     = 12.0 // mm
	captionHeight  = 4.0  // mm per caption line

	// DefaultThumbnailSize is the longest side of a catalog thumbnail in pixels.
	DefaultThumbnailSize = 256
)

// CatalogEntry is one texture on a catalog page.
type CatalogEntry struct {
	Title   string
	Caption string
	Image   image.Image
}

// Thumbnail scales img down so its longest side is at most size pixels.
// Smaller images are copied unscaled.
func Thumbnail(img image.Image, size int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > size || h > size {
		if w >= h {
			w, h = size, max(1, h*size/w)
		} else {
			w, h = max(1, w*size/h), size
		}
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Catalog renders entries as a grid of captioned thumbnails on A4 pages.
func Catalog(w io.Writer, title string, entries []CatalogEntry) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("ftextool", true)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	cellW := (pageW - 2*pageMargin) / catalogColumns
	cellH := (pageH - 2*pageMargin - 10) / catalogRows
	imageBox := min(cellW, cellH-3*captionHeight) - 4

	perPage := catalogColumns * catalogRows
	if len(entries) == 0 {
		addCatalogPage(pdf, tr, title, 0, 0)
	}
	for i, e := range entries {
		if i%perPage == 0 {
			addCatalogPage(pdf, tr, title, i/perPage+1, (len(entries)+perPage-1)/perPage)
		}
		slot := i % perPage
		x := pageMargin + float64(slot%catalogColumns)*cellW
		y := pageMargin + 10 + float64(slot/catalogColumns)*cellH

		thumb := Thumbnail(e.Image, DefaultThumbnailSize)
		var buf bytes.Buffer
		if err := png.Encode(&buf, thumb); err != nil {
			return errors.Wrapf(err, "encode thumbnail %s", e.Title)
		}
		name := "thumb" + strconv.Itoa(i)
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, &buf)

		tw, th := float64(thumb.Bounds().Dx()), float64(thumb.Bounds().Dy())
		scale := imageBox / max(tw, th)
		dw, dh := tw*scale, th*scale
		ix := x + (cellW-dw)/2
		iy := y + (imageBox-dh)/2

		pdf.SetFillColor(220, 220, 220)
		pdf.Rect(x+(cellW-imageBox)/2, y, imageBox, imageBox, "F")
		pdf.ImageOptions(name, ix, iy, dw, dh, false, opts, 0, "")

		pdf.SetFont("Helvetica", "B", 7)
		pdf.SetXY(x, y+imageBox+1)
		pdf.CellFormat(cellW, captionHeight, tr(e.Title), "", 2, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(cellW, captionHeight, tr(e.Caption), "", 2, "C", false, 0, "")

		if err := pdf.Error(); err != nil {
			return errors.Wrapf(err, "render %s", e.Title)
		}
	}
	return pdf.Output(w)
}

func addCatalogPage(pdf *fpdf.Fpdf, tr func(string) string, title string, page, pages int) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(pageMargin, pageMargin)
	header := title
	if pages > 1 {
		header += " (" + strconv.Itoa(page) + "/" + strconv.Itoa(pages) + ")"
	}
	pdf.CellFormat(0, 8, tr(header), "", 1, "L", false, 0, "")
}
