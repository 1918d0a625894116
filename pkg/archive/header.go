// Package archive provides the whole-file compression codecs resource files
// are shipped in: Yaz0 and zstd.
package archive

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/goopsie/ftextools/pkg/fault"
)

// Yaz0Magic identifies a Yaz0 stream.
var Yaz0Magic = [4]byte{'Y', 'a', 'z', '0'}

// ZstdMagic identifies a zstd frame.
var ZstdMagic = [4]byte{0x28, 0xb5, 0x2f, 0xfd}

// HeaderSize is the fixed binary size of a Yaz0 header.
const HeaderSize = 16 // 4 + 4 + 4 + 4 bytes

// Header is the big-endian Yaz0 stream header.
type Header struct {
	Magic     [4]byte
	Size      uint32 // Uncompressed size
	Alignment uint32 // Required buffer alignment, 0 when unspecified
	Reserved  uint32
}

// Validate checks the header for validity.
func (h *Header) Validate() error {
	if h.Magic != Yaz0Magic {
		return fault.Formatf("yaz0 magic", uint64(binary.BigEndian.Uint32(h.Magic[:])))
	}
	if h.Alignment != 0 && h.Alignment&(h.Alignment-1) != 0 {
		return errors.Errorf("yaz0 alignment %d is not a power of two", h.Alignment)
	}
	return nil
}

// MarshalBinary encodes the header to binary format.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the header to the given buffer.
// The buffer must be at least HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0:4], h.Magic[:])
	binary.BigEndian.PutUint32(buf[4:8], h.Size)
	binary.BigEndian.PutUint32(buf[8:12], h.Alignment)
	binary.BigEndian.PutUint32(buf[12:16], h.Reserved)
}

// UnmarshalBinary decodes and validates the header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fault.Truncated("yaz0 header", HeaderSize, len(data))
	}
	h.DecodeFrom(data)
	return h.Validate()
}

// DecodeFrom reads the header from the given buffer.
// Does not validate - use UnmarshalBinary for validation.
func (h *Header) DecodeFrom(data []byte) {
	copy(h.Magic[:], data[0:4])
	h.Size = binary.BigEndian.Uint32(data[4:8])
	h.Alignment = binary.BigEndian.Uint32(data[8:12])
	h.Reserved = binary.BigEndian.Uint32(data[12:16])
}

// NewHeader creates a Yaz0 header for the given uncompressed size.
func NewHeader(uncompressedSize uint32) *Header {
	return &Header{
		Magic: Yaz0Magic,
		Size:  uncompressedSize,
	}
}
