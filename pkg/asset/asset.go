// Package asset keeps the textures of loaded resource files and a bounded
// set of their decoded images.
//
// Resource files may be compressed (Yaz0, zstd) and may nest SARC archives
// holding further compressed archives or FRES containers. Every texture is
// keyed by the path of archive member names leading to it, joined with
// "/", followed by the texture name.
package asset

import (
	"bytes"
	"container/list"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/goopsie/ftextools/pkg/archive"
	"github.com/goopsie/ftextools/pkg/bfres"
	"github.com/goopsie/ftextools/pkg/fault"
	"github.com/goopsie/ftextools/pkg/ftex"
	"github.com/goopsie/ftextools/pkg/sarc"
)

// DefaultMaxImages is the number of decoded images kept by default.
const DefaultMaxImages = 64

// ErrNotResource is returned for data that is neither a FRES container nor
// a SARC archive once decompressed.
var ErrNotResource = errors.New("not a FRES or SARC resource")

// Cache is safe for concurrent use.
type Cache struct {
	decoder   *ftex.Decoder
	logger    *slog.Logger
	maxImages int

	mu       sync.Mutex
	textures map[string]*bfres.Texture
	failed   []*fault.TextureError
	images   map[string]*list.Element
	lru      *list.List
}

type cachedImage struct {
	key string
	img *image.NRGBA
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithDecoder sets the decoder used for images.
func WithDecoder(d *ftex.Decoder) CacheOption {
	return func(c *Cache) {
		c.decoder = d
	}
}

// WithLogger sets the logger for load and eviction events.
func WithLogger(l *slog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = l
	}
}

// WithMaxImages bounds the number of decoded images kept. Zero or less
// keeps every image until Purge.
func WithMaxImages(n int) CacheOption {
	return func(c *Cache) {
		c.maxImages = n
	}
}

// NewCache creates an empty cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxImages: DefaultMaxImages,
		textures:  make(map[string]*bfres.Texture),
		images:    make(map[string]*list.Element),
		lru:       list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.decoder == nil {
		c.decoder = ftex.NewDecoder(ftex.WithLogger(c.logger))
	}
	return c
}

// LoadFile loads a resource file, keyed by its base name without extension.
func (c *Cache) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	name := filepath.Base(path)
	return c.LoadBytes(strings.TrimSuffix(name, filepath.Ext(name)), data)
}

// LoadBytes loads every texture reachable from data and returns how many
// were added. Reloading a key replaces its texture and drops its images.
func (c *Cache) LoadBytes(prefix string, data []byte) (int, error) {
	loaded, err := c.load(prefix, data)
	if err != nil {
		return loaded, errors.Wrapf(err, "load %s", prefix)
	}
	c.logger.Info("loaded resource", "prefix", prefix, "textures", loaded)
	return loaded, nil
}

func (c *Cache) load(prefix string, data []byte) (int, error) {
	data, codec, err := archive.Decompress(data)
	if err != nil {
		return 0, err
	}
	if codec != archive.CodecNone {
		c.logger.Debug("decompressed", "key", prefix, "codec", codec.String(), "size", len(data))
	}

	switch {
	case bytes.HasPrefix(data, bfres.Magic[:]):
		return c.loadContainer(prefix, data)
	case sarc.IsArchive(data):
		a, err := sarc.Open(data)
		if err != nil {
			return 0, err
		}
		total := 0
		for _, f := range a.Files {
			name := f.Name
			if name == "" {
				name = "0x" + strconv.FormatUint(uint64(f.Hash), 16)
			}
			n, err := c.load(prefix+"/"+name, f.Data)
			switch {
			case errors.Is(err, ErrNotResource):
				c.logger.Debug("skipping archive member", "key", prefix+"/"+name)
			case err != nil:
				return total, errors.Wrap(err, name)
			}
			total += n
		}
		return total, nil
	}

	return 0, ErrNotResource
}

func (c *Cache) loadContainer(prefix string, data []byte) (int, error) {
	res, err := bfres.Extract(data, bfres.WithLogger(c.logger.With("key", prefix)))
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tex := range res.Textures {
		key := prefix + "/" + tex.Name
		c.textures[key] = tex
		c.dropImagesLocked(key)
	}
	for _, f := range res.Failed {
		c.failed = append(c.failed, &fault.TextureError{Name: prefix + "/" + f.Name, Mip: f.Mip, Err: f.Err})
	}
	return len(res.Textures), nil
}

// Keys returns the keys of every loaded texture in sorted order.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.textures))
	for k := range c.textures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of loaded textures.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.textures)
}

// Failed returns the textures that could not be extracted, keyed like
// loaded textures.
func (c *Cache) Failed() []*fault.TextureError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*fault.TextureError(nil), c.failed...)
}

// Texture returns the texture stored under key.
func (c *Cache) Texture(key string) (*bfres.Texture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tex, ok := c.textures[key]
	return tex, ok
}

// Image returns the decoded mip level of the texture stored under key,
// decoding it on first use. Callers must not modify the returned image.
func (c *Cache) Image(key string, mip int) (*image.NRGBA, error) {
	ik := imageKey(key, mip)

	c.mu.Lock()
	if el, ok := c.images[ik]; ok {
		c.lru.MoveToFront(el)
		img := el.Value.(*cachedImage).img
		c.mu.Unlock()
		return img, nil
	}
	tex, ok := c.textures[key]
	c.mu.Unlock()
	if !ok {
		return nil, errors.Errorf("no texture %q", key)
	}

	img, err := c.decoder.Decode(tex, mip)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.textures[key] != tex {
		return img, nil
	}
	if el, ok := c.images[ik]; ok {
		c.lru.MoveToFront(el)
		return el.Value.(*cachedImage).img, nil
	}
	c.images[ik] = c.lru.PushFront(&cachedImage{key: ik, img: img})
	for c.maxImages > 0 && c.lru.Len() > c.maxImages {
		oldest := c.lru.Back()
		evicted := c.lru.Remove(oldest).(*cachedImage)
		delete(c.images, evicted.key)
		c.logger.Debug("evicted image", "key", evicted.key)
	}
	return img, nil
}

// CachedImages returns the number of decoded images currently kept.
func (c *Cache) CachedImages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Purge drops every texture and decoded image.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.textures = make(map[string]*bfres.Texture)
	c.images = make(map[string]*list.Element)
	c.failed = nil
	c.lru.Init()
}

func (c *Cache) dropImagesLocked(key string) {
	prefix := key + "#"
	for ik, el := range c.images {
		if strings.HasPrefix(ik, prefix) {
			c.lru.Remove(el)
			delete(c.images, ik)
		}
	}
}

func imageKey(key string, mip int) string {
	return key + "#" + strconv.Itoa(mip)
}
