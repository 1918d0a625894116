package archive

import (
	"testing"
)

func benchPayload(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 256)
	}
	return data
}

// BenchmarkCompression benchmarks compression with each codec.
func BenchmarkCompression(b *testing.B) {
	data := benchPayload(256 * 1024)

	b.Run("Yaz0", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			EncodeYaz0(data)
		}
	})

	for _, level := range []int{1, 3} {
		b.Run("Zstd_Level"+string(rune('0'+level)), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Compress(data, CodecZstd, WithCompressionLevel(level)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkDecompression benchmarks the sniffing decompressor.
func BenchmarkDecompression(b *testing.B) {
	original := benchPayload(1024 * 1024)

	for _, codec := range []Codec{CodecYaz0, CodecZstd} {
		packed, err := Compress(original, codec)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(codec.String(), func(b *testing.B) {
			b.SetBytes(int64(len(original)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, _, err := Decompress(packed); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkHeader benchmarks header operations.
func BenchmarkHeader(b *testing.B) {
	header := NewHeader(1024 * 1024)

	b.Run("EncodeTo", func(b *testing.B) {
		buf := make([]byte, HeaderSize)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			header.EncodeTo(buf)
		}
	})

	data, _ := header.MarshalBinary()

	b.Run("Unmarshal", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			h := &Header{}
			if err := h.UnmarshalBinary(data); err != nil {
				b.Fatal(err)
			}
		}
	})
}
