// Package itf8 implements CRAM's ITF-8 variable-length integer encoding:
// a self-describing 1-to-5-byte format for int32 values, ported from the
// itf8_get/itf8_put macros in cram_io.h. pkg/cramblock uses it for block
// header fields.
package itf8

import "errors"

// ErrTruncated is returned when b does not contain enough bytes for the
// length its leading byte declares.
var ErrTruncated = errors.New("itf8: truncated input")

// Encode returns the ITF-8 encoding of v, 1 to 5 bytes depending on
// magnitude: values up to 7 bits fit in one byte, up to 14 bits in two,
// up to 21 in three, up to 28 in four, and anything else takes five bytes:
// the top nibble in the first byte and the low nibble in the fifth.
func Encode(v int32) []byte {
	u := uint32(v)
	switch {
	case u&^0x7f == 0:
		return []byte{byte(u)}
	case u&^0x3fff == 0:
		return []byte{byte(u>>8) | 0x80, byte(u)}
	case u&^0x1fffff == 0:
		return []byte{byte(u>>16) | 0xc0, byte(u >> 8), byte(u)}
	case u&^0xfffffff == 0:
		return []byte{byte(u>>24) | 0xe0, byte(u >> 16), byte(u >> 8), byte(u)}
	default:
		return []byte{0xf0 | byte(u>>28&0xff), byte(u >> 20), byte(u >> 12), byte(u >> 4), byte(u & 0xf)}
	}
}

// Decode reads one ITF-8 value from the start of b, returning the value
// and the number of bytes consumed.
func Decode(b []byte) (v int32, n int, err error) {
	if len(b) < 1 {
		return 0, 0, ErrTruncated
	}
	c0 := uint32(b[0])

	switch {
	case c0 < 0x80:
		return int32(c0), 1, nil
	case c0 < 0xc0:
		if len(b) < 2 {
			return 0, 0, ErrTruncated
		}
		return int32((c0<<8 | uint32(b[1])) & 0x3fff), 2, nil
	case c0 < 0xe0:
		if len(b) < 3 {
			return 0, 0, ErrTruncated
		}
		return int32((c0<<16 | uint32(b[1])<<8 | uint32(b[2])) & 0x1fffff), 3, nil
	case c0 < 0xf0:
		if len(b) < 4 {
			return 0, 0, ErrTruncated
		}
		return int32((c0<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])) & 0xfffffff), 4, nil
	default:
		if len(b) < 5 {
			return 0, 0, ErrTruncated
		}
		val := (c0&0x0f)<<28 | uint32(b[1])<<20 | uint32(b[2])<<12 | uint32(b[3])<<4 | uint32(b[4])&0x0f
		return int32(val), 5, nil
	}
}
