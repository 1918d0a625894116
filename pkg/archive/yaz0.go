package archive

import (
	"github.com/goopsie/ftextools/pkg/fault"
)

const (
	yaz0Window    = 0x1000
	yaz0MinMatch  = 3
	yaz0MaxMatch  = 0xff + 0x12
	yaz0HashBits  = 15
	yaz0MaxChains = 64
)

// DecodeYaz0 decompresses a Yaz0 stream including its header.
func DecodeYaz0(src []byte) ([]byte, error) {
	var h Header
	if err := h.UnmarshalBinary(src); err != nil {
		return nil, err
	}

	out := make([]byte, h.Size)
	in, o := HeaderSize, 0
	for o < len(out) {
		if in >= len(src) {
			return nil, fault.Truncated("yaz0 stream", in+1, len(src))
		}
		code := src[in]
		in++

		for bit := 0; bit < 8 && o < len(out); bit++ {
			if code&(0x80>>bit) != 0 {
				if in >= len(src) {
					return nil, fault.Truncated("yaz0 stream", in+1, len(src))
				}
				out[o] = src[in]
				in++
				o++
				continue
			}

			if in+2 > len(src) {
				return nil, fault.Truncated("yaz0 stream", in+2, len(src))
			}
			b1, b2 := src[in], src[in+1]
			in += 2
			dist := (int(b1&0x0f)<<8 | int(b2)) + 1
			n := int(b1 >> 4)
			if n == 0 {
				if in >= len(src) {
					return nil, fault.Truncated("yaz0 stream", in+1, len(src))
				}
				n = int(src[in]) + 0x12
				in++
			} else {
				n += 2
			}

			start := o - dist
			if start < 0 {
				return nil, fault.Formatf("yaz0 back-reference", uint64(dist))
			}
			for i := 0; i < n && o < len(out); i++ {
				out[o] = out[start+i]
				o++
			}
		}
	}
	return out, nil
}

// EncodeYaz0 compresses src into a Yaz0 stream with a greedy hash-chain
// matcher.
func EncodeYaz0(src []byte) []byte {
	out := make([]byte, HeaderSize, HeaderSize+len(src)+len(src)/8+1)
	NewHeader(uint32(len(src))).EncodeTo(out)

	head := make([]int32, 1<<yaz0HashBits)
	for i := range head {
		head[i] = -1
	}
	prev := make([]int32, len(src))
	insert := func(i int) {
		if i+yaz0MinMatch > len(src) {
			return
		}
		h := yaz0Hash(src[i:])
		prev[i] = head[h]
		head[h] = int32(i)
	}

	pos := 0
	for pos < len(src) {
		codePos := len(out)
		out = append(out, 0)
		for bit := 0; bit < 8 && pos < len(src); bit++ {
			length, dist := yaz0Match(src, pos, head, prev)
			if length < yaz0MinMatch {
				out[codePos] |= 0x80 >> bit
				out = append(out, src[pos])
				insert(pos)
				pos++
				continue
			}

			d := dist - 1
			if length >= 0x12 {
				out = append(out, byte(d>>8), byte(d), byte(length-0x12))
			} else {
				out = append(out, byte((length-2)<<4|d>>8), byte(d))
			}
			for i := 0; i < length; i++ {
				insert(pos + i)
			}
			pos += length
		}
	}
	return out
}

func yaz0Hash(b []byte) uint32 {
	v := uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	return (v * 2654435761) >> (32 - yaz0HashBits)
}

func yaz0Match(src []byte, pos int, head, prev []int32) (length, dist int) {
	if pos+yaz0MinMatch > len(src) {
		return 0, 0
	}
	limit := min(yaz0MaxMatch, len(src)-pos)
	cand := head[yaz0Hash(src[pos:])]
	for tries := 0; cand >= 0 && pos-int(cand) <= yaz0Window && tries < yaz0MaxChains; tries++ {
		c := int(cand)
		n := 0
		for n < limit && src[c+n] == src[pos+n] {
			n++
		}
		if n > length {
			length, dist = n, pos-c
			if n == limit {
				break
			}
		}
		cand = prev[c]
	}
	return length, dist
}
