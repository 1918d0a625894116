package archive

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Codec identifies the whole-file compression of a resource.
type Codec int

const (
	CodecNone Codec = iota
	CodecYaz0
	CodecZstd
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecYaz0:
		return "yaz0"
	case CodecZstd:
		return "zstd"
	}
	return "unknown"
}

// ParseCodec maps a codec name back to its Codec.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "", "none":
		return CodecNone, nil
	case "yaz0", "szs":
		return CodecYaz0, nil
	case "zstd", "zst":
		return CodecZstd, nil
	}
	return CodecNone, errors.Errorf("unknown codec %q", name)
}

// ZstdBackend names the zstd implementation compiled into this build.
func ZstdBackend() string {
	return zstdBackend
}

// Sniff reports the codec data is compressed with.
func Sniff(data []byte) Codec {
	switch {
	case bytes.HasPrefix(data, Yaz0Magic[:]):
		return CodecYaz0
	case bytes.HasPrefix(data, ZstdMagic[:]):
		return CodecZstd
	}
	return CodecNone
}

// Decompress unwraps data according to its leading magic. Data with no
// recognised magic is returned unchanged.
func Decompress(data []byte) ([]byte, Codec, error) {
	codec := Sniff(data)
	switch codec {
	case CodecYaz0:
		out, err := DecodeYaz0(data)
		if err != nil {
			return nil, codec, errors.Wrap(err, "yaz0")
		}
		return out, codec, nil
	case CodecZstd:
		out, err := zstdDecompress(data)
		if err != nil {
			return nil, codec, errors.Wrap(err, "zstd")
		}
		return out, codec, nil
	}
	return data, codec, nil
}

// ReadAll reads the entire content of r and decompresses it.
func ReadAll(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read content")
	}
	data, _, err := Decompress(raw)
	return data, err
}

// ReadFile reads and decompresses the named file.
func ReadFile(path string) ([]byte, Codec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, CodecNone, err
	}
	return Decompress(raw)
}
