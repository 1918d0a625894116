package archive

import (
	"bytes"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/goopsie/ftextools/pkg/fault"
)

func yaz0Stream(size uint32, body ...byte) []byte {
	h := NewHeader(size)
	buf, _ := h.MarshalBinary()
	return append(buf, body...)
}

func TestHeader(t *testing.T) {
	t.Run("MarshalUnmarshal", func(t *testing.T) {
		original := &Header{
			Magic:     Yaz0Magic,
			Size:      1024,
			Alignment: 0x2000,
		}

		data, err := original.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(data[:8], []byte{'Y', 'a', 'z', '0', 0, 0, 0x04, 0}) {
			t.Errorf("unexpected encoding % x", data[:8])
		}

		decoded := &Header{}
		if err := decoded.UnmarshalBinary(data); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		if *decoded != *original {
			t.Errorf("mismatch: got %+v, want %+v", decoded, original)
		}
	})

	t.Run("InvalidMagic", func(t *testing.T) {
		h := &Header{Magic: [4]byte{'Y', 'a', 'z', '1'}, Size: 1024}
		if err := h.Validate(); !fault.IsFormat(err) {
			t.Errorf("expected format error, got %v", err)
		}
	})

	t.Run("BadAlignment", func(t *testing.T) {
		h := &Header{Magic: Yaz0Magic, Size: 1024, Alignment: 3}
		if err := h.Validate(); err == nil {
			t.Error("expected error for non power of two alignment")
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		var h Header
		if err := h.UnmarshalBinary([]byte("Yaz0")); !fault.IsTruncated(err) {
			t.Errorf("expected truncation, got %v", err)
		}
	})
}

func TestYaz0Vectors(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
		want   []byte
	}{
		{
			name:   "ShortMatch",
			stream: yaz0Stream(9, 0xe0, 'a', 'b', 'c', 0x40, 0x02),
			want:   []byte("abcabcabc"),
		},
		{
			name:   "LongMatch",
			stream: yaz0Stream(100, 0x80, 0x00, 0x00, 0x00, 0x51),
			want:   make([]byte, 100),
		},
		{
			name:   "Empty",
			stream: yaz0Stream(0),
			want:   []byte{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeYaz0(tt.stream)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if enc := EncodeYaz0(tt.want); !bytes.Equal(enc, tt.stream) {
				t.Errorf("encode: got % x, want % x", enc, tt.stream)
			}
		})
	}
}

func TestYaz0RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	random := make([]byte, 5000)
	rng.Read(random)

	repetitive := make([]byte, 64*1024)
	for i := range repetitive {
		repetitive[i] = byte(i % 251)
	}

	words := bytes.Repeat([]byte("FRES FTEX SARC SFAT SFNT "), 400)

	for name, data := range map[string][]byte{
		"Random":     random,
		"Repetitive": repetitive,
		"Text":       words,
		"OneByte":    {0x42},
	} {
		t.Run(name, func(t *testing.T) {
			enc := EncodeYaz0(data)
			dec, err := DecodeYaz0(enc)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !bytes.Equal(dec, data) {
				t.Fatal("round trip mismatch")
			}
			if name == "Repetitive" && len(enc) >= len(data)/4 {
				t.Errorf("poor compression: %d -> %d", len(data), len(enc))
			}
		})
	}
}

func TestYaz0DecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
		check  func(error) bool
	}{
		{"MissingCode", yaz0Stream(4), fault.IsTruncated},
		{"MissingLiteral", yaz0Stream(4, 0xf0, 'a'), fault.IsTruncated},
		{"MissingPair", yaz0Stream(4, 0x00, 0x10), fault.IsTruncated},
		{"MissingCount", yaz0Stream(40, 0x00, 0x00, 0x00), fault.IsTruncated},
		{"ReferenceBeforeStart", yaz0Stream(4, 0x00, 0x10, 0x00), fault.IsFormat},
		{"BadMagic", []byte("Yaz1\x00\x00\x00\x04\x00\x00\x00\x00\x00\x00\x00\x00"), fault.IsFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeYaz0(tt.stream); !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDecompress(t *testing.T) {
	original := bytes.Repeat([]byte("Hello, World! This is test data for compression. "), 50)

	t.Run("PassThrough", func(t *testing.T) {
		out, codec, err := Decompress(original)
		if err != nil {
			t.Fatalf("decompress: %v", err)
		}
		if codec != CodecNone || !bytes.Equal(out, original) {
			t.Errorf("expected data unchanged, codec %s", codec)
		}
	})

	for _, codec := range []Codec{CodecYaz0, CodecZstd} {
		t.Run(codec.String(), func(t *testing.T) {
			packed, err := Compress(original, codec, WithCompressionLevel(3))
			if err != nil {
				t.Fatalf("compress: %v", err)
			}
			if Sniff(packed) != codec {
				t.Fatalf("sniff: got %s", Sniff(packed))
			}
			out, got, err := Decompress(packed)
			if err != nil {
				t.Fatalf("decompress: %v", err)
			}
			if got != codec {
				t.Errorf("codec: got %s, want %s", got, codec)
			}
			if !bytes.Equal(out, original) {
				t.Error("data mismatch")
			}
		})
	}

	t.Run("CorruptZstd", func(t *testing.T) {
		bad := append(ZstdMagic[:], 0xff, 0xff, 0xff, 0xff)
		if _, _, err := Decompress(bad); err == nil {
			t.Error("expected error for corrupt zstd frame")
		}
	})
}

func TestReadWrite(t *testing.T) {
	original := []byte("Hello, World! This is test data for compression.")

	t.Run("EncodeReadAllRoundTrip", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Encode(&buf, original, CodecYaz0); err != nil {
			t.Fatalf("encode: %v", err)
		}

		decoded, err := ReadAll(&buf)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !bytes.Equal(decoded, original) {
			t.Errorf("data mismatch: got %q, want %q", decoded, original)
		}
	})

	t.Run("FileRoundTrip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.szs")
		if err := WriteFile(path, original, CodecZstd); err != nil {
			t.Fatalf("write: %v", err)
		}
		decoded, codec, err := ReadFile(path)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if codec != CodecZstd || !bytes.Equal(decoded, original) {
			t.Errorf("got codec %s and %q", codec, decoded)
		}
	})

	t.Run("UnknownCodec", func(t *testing.T) {
		if _, err := Compress(original, Codec(9)); err == nil {
			t.Error("expected error for unknown codec")
		}
	})
}

func TestParseCodec(t *testing.T) {
	tests := []struct {
		name    string
		want    Codec
		wantErr bool
	}{
		{"", CodecNone, false},
		{"none", CodecNone, false},
		{"szs", CodecYaz0, false},
		{"yaz0", CodecYaz0, false},
		{"zstd", CodecZstd, false},
		{"lz4", CodecNone, true},
	}
	for _, tt := range tests {
		got, err := ParseCodec(tt.name)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseCodec(%q) = %s, %v", tt.name, got, err)
		}
	}
	if ZstdBackend() == "" {
		t.Error("empty zstd backend name")
	}
}
