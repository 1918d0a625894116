package asset_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"

	"github.com/goopsie/ftextools/pkg/archive"
	"github.com/goopsie/ftextools/pkg/asset"
	"github.com/goopsie/ftextools/pkg/bfres/bfrestest"
	"github.com/goopsie/ftextools/pkg/ftex"
	"github.com/goopsie/ftextools/pkg/gx2"
	"github.com/goopsie/ftextools/pkg/pixel"
	"github.com/goopsie/ftextools/pkg/sarc"
)

type countingConverter struct {
	calls atomic.Int32
}

func (c *countingConverter) Convert(raw []byte, width, height int, layout pixel.Layout, sel pixel.ComponentSelection) ([]byte, error) {
	c.calls.Add(1)
	return pixel.Reference{}.Convert(raw, width, height, layout, sel)
}

func entry(name string, shade byte) bfrestest.Entry {
	data := make([]byte, 8*4*4)
	for i := range data {
		data[i] = shade
	}
	return bfrestest.Entry{
		Name: name,
		Surface: gx2.Surface{
			Dim:       gx2.Dim2D,
			Width:     8,
			Height:    4,
			Depth:     1,
			NumMips:   1,
			Format:    gx2.FormatR8G8B8A8Unorm,
			TileMode:  gx2.TileModeDefault,
			ImageSize: uint32(len(data)),
		},
		CompSel: [4]byte{0, 1, 2, 3},
		Data:    data,
	}
}

func container(entries ...bfrestest.Entry) []byte {
	return bfrestest.Build(3, entries)
}

func newCache(opts ...asset.CacheOption) (*asset.Cache, *countingConverter) {
	conv := &countingConverter{}
	opts = append([]asset.CacheOption{asset.WithDecoder(ftex.NewDecoder(ftex.WithConverter(conv)))}, opts...)
	return asset.NewCache(opts...), conv
}

func TestLoadContainer(t *testing.T) {
	c, _ := newCache()
	n, err := c.LoadBytes("model", container(entry("A", 1), entry("B", 2)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n != 2 || c.Len() != 2 {
		t.Fatalf("loaded %d, Len %d", n, c.Len())
	}
	if got, want := c.Keys(), []string{"model/A", "model/B"}; !reflect.DeepEqual(got, want) {
		t.Errorf("keys: got %v, want %v", got, want)
	}
	tex, ok := c.Texture("model/B")
	if !ok || tex.Data[0] != 2 {
		t.Errorf("texture lookup: %v", ok)
	}
}

func TestLoadNestedArchives(t *testing.T) {
	inner := sarc.NewBuilder(binary.BigEndian)
	inner.Add("output.bfres", container(entry("A", 1)))
	inner.Add("readme.txt", []byte("not a resource"))
	innerData, err := inner.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	innerPacked, err := archive.Compress(innerData, archive.CodecYaz0)
	if err != nil {
		t.Fatal(err)
	}

	outer := sarc.NewBuilder(binary.LittleEndian)
	outer.Add("Model.szs", innerPacked)
	outer.Add("Other.bfres", container(entry("B", 2)))
	outerData, err := outer.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	packed, err := archive.Compress(outerData, archive.CodecZstd)
	if err != nil {
		t.Fatal(err)
	}

	c, _ := newCache()
	n, err := c.LoadBytes("pack", packed)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n != 2 {
		t.Fatalf("loaded %d textures", n)
	}
	want := []string{"pack/Model.szs/output.bfres/A", "pack/Other.bfres/B"}
	if got := c.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("keys: got %v, want %v", got, want)
	}
}

func TestLoadErrors(t *testing.T) {
	c, _ := newCache()

	if _, err := c.LoadBytes("text", []byte("plain text")); !errors.Is(err, asset.ErrNotResource) {
		t.Errorf("expected ErrNotResource, got %v", err)
	}

	bad := entry("Broken", 0)
	bad.Surface.Format = gx2.Format(0x3f)
	n, err := c.LoadBytes("model", container(entry("A", 1), bad))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n != 1 {
		t.Errorf("loaded %d textures", n)
	}
	failed := c.Failed()
	if len(failed) != 1 || failed[0].Name != "model/Broken" {
		t.Errorf("failed: %v", failed)
	}

	if _, err := c.Image("model/Missing", 0); err == nil {
		t.Error("expected error for a missing key")
	}
}

func TestImageMemoization(t *testing.T) {
	c, conv := newCache()
	if _, err := c.LoadBytes("model", container(entry("A", 7))); err != nil {
		t.Fatal(err)
	}

	first, err := c.Image("model/A", 0)
	if err != nil {
		t.Fatalf("image: %v", err)
	}
	second, err := c.Image("model/A", 0)
	if err != nil {
		t.Fatalf("image: %v", err)
	}
	if first != second {
		t.Error("second lookup decoded again")
	}
	if calls := conv.calls.Load(); calls != 1 {
		t.Errorf("converter calls: got %d, want 1", calls)
	}
	if first.Pix[0] != 7 {
		t.Errorf("pixel: got %d", first.Pix[0])
	}

	// Reloading the same key replaces the texture and its image.
	if _, err := c.LoadBytes("model", container(entry("A", 9))); err != nil {
		t.Fatal(err)
	}
	third, err := c.Image("model/A", 0)
	if err != nil {
		t.Fatal(err)
	}
	if third.Pix[0] != 9 {
		t.Errorf("reloaded pixel: got %d", third.Pix[0])
	}
}

func TestImageEviction(t *testing.T) {
	c, conv := newCache(asset.WithMaxImages(1))
	if _, err := c.LoadBytes("model", container(entry("A", 1), entry("B", 2))); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"model/A", "model/B", "model/A"} {
		if _, err := c.Image(key, 0); err != nil {
			t.Fatalf("image %s: %v", key, err)
		}
	}
	if calls := conv.calls.Load(); calls != 3 {
		t.Errorf("converter calls: got %d, want 3", calls)
	}
	if c.CachedImages() != 1 {
		t.Errorf("cached images: got %d, want 1", c.CachedImages())
	}

	c.Purge()
	if c.Len() != 0 || c.CachedImages() != 0 {
		t.Errorf("after purge: %d textures, %d images", c.Len(), c.CachedImages())
	}
}

func TestConcurrentImages(t *testing.T) {
	c, _ := newCache()
	if _, err := c.LoadBytes("model", container(entry("A", 1), entry("B", 2))); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key, want := "model/A", byte(1)
			if i%2 == 1 {
				key, want = "model/B", 2
			}
			img, err := c.Image(key, 0)
			if err != nil {
				t.Errorf("image %s: %v", key, err)
				return
			}
			if img.Pix[0] != want {
				t.Errorf("%s: got %d", key, img.Pix[0])
			}
		}(i)
	}
	wg.Wait()
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "course.szs")
	packed, err := archive.Compress(container(entry("A", 1)), archive.CodecYaz0)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, packed, 0644); err != nil {
		t.Fatal(err)
	}

	c, _ := newCache()
	if _, err := c.LoadFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := c.Texture("course/A"); !ok {
		t.Errorf("keys: %v", c.Keys())
	}
}
