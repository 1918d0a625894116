//go:build cgo

package archive

import "github.com/DataDog/zstd"

const zstdBackend = "datadog/zstd"

func zstdDecompress(src []byte) ([]byte, error) {
	return zstd.Decompress(nil, src)
}

func zstdCompress(src []byte, level int) ([]byte, error) {
	return zstd.CompressLevel(nil, src, level)
}
