package archive

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

const (
	// DefaultCompressionLevel is the default zstd level for encoding.
	DefaultCompressionLevel = 1
)

type writerConfig struct {
	level int
}

// WriterOption configures Compress and Encode.
type WriterOption func(*writerConfig)

// WithCompressionLevel sets the zstd compression level. Yaz0 ignores it.
func WithCompressionLevel(level int) WriterOption {
	return func(c *writerConfig) {
		c.level = level
	}
}

// Compress wraps data in the given codec.
func Compress(data []byte, codec Codec, opts ...WriterOption) ([]byte, error) {
	cfg := writerConfig{level: DefaultCompressionLevel}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch codec {
	case CodecNone:
		return data, nil
	case CodecYaz0:
		if uint64(len(data)) > uint64(^uint32(0)) {
			return nil, errors.Errorf("yaz0: %d bytes exceeds the 32-bit size field", len(data))
		}
		return EncodeYaz0(data), nil
	case CodecZstd:
		out, err := zstdCompress(data, cfg.level)
		if err != nil {
			return nil, errors.Wrap(err, "zstd")
		}
		return out, nil
	}
	return nil, errors.Errorf("unknown codec %d", int(codec))
}

// Encode compresses data and writes it to dst.
func Encode(dst io.Writer, data []byte, codec Codec, opts ...WriterOption) error {
	out, err := Compress(data, codec, opts...)
	if err != nil {
		return err
	}
	if _, err := dst.Write(out); err != nil {
		return errors.Wrap(err, "write data")
	}
	return nil
}

// WriteFile compresses data and writes it to the named file.
func WriteFile(path string, data []byte, codec Codec, opts ...WriterOption) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, data, codec, opts...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
