package freqtable

import "errors"

// ErrFrequencyOverflow is returned when a parsed table's cumulative
// frequency for a context row would exceed TotFreq.
var ErrFrequencyOverflow = errors.New("freqtable: cumulative frequency exceeds TotFreq")

// ErrTruncatedTable is returned when the table bytes end before a
// terminator is reached.
var ErrTruncatedTable = errors.New("freqtable: truncated table")

// ErrTableTooLarge guards the documented upper bound on a serialized
// table (257*257*3 bytes, from spec.md's buffer-sizing note) so a
// corrupt frame can't be used to coerce unbounded parsing.
var ErrTableTooLarge = errors.New("freqtable: table exceeds maximum size")

// ErrBadSymbolIndex is returned when a parsed symbol or context index
// falls outside [0, 256) — only reachable from a malformed frame, since a
// well-formed table never drives the run-length counters past 255.
var ErrBadSymbolIndex = errors.New("freqtable: symbol index out of range")

const maxTableSize = 257 * 257 * 3

// EncodeTable0 serializes a normalized order-0 frequency row using the
// RLE-over-present-symbols format from spec.md §4.D: an index byte (elided
// for symbols covered by an active run), an optional run-length byte, and
// a 1- or 2-byte frequency, terminated by a 0x00 byte.
//
// The run-length byte is emitted for symbol j if and only if the byte
// just written is an index (not itself run-elided) and its predecessor
// j-1 was present — matching the reference rans_compress_O0/O1 byte for
// byte rather than the simpler prose description, since that's what a
// round-trip with the reference format requires.
func EncodeTable0(freqs [256]uint32) []byte {
	buf := make([]byte, 0, 256*3+1)
	rle := 0

	for j := 0; j < 256; j++ {
		f := freqs[j]
		if f == 0 {
			continue
		}

		if rle > 0 {
			rle--
		} else {
			buf = append(buf, byte(j))
			if j > 0 && freqs[j-1] > 0 {
				k := j + 1
				for k < 256 && freqs[k] > 0 {
					k++
				}
				rle = k - (j + 1)
				buf = append(buf, byte(rle))
			}
		}

		buf = appendFreq(buf, f)
	}

	buf = append(buf, 0)
	return buf
}

func appendFreq(buf []byte, f uint32) []byte {
	if f < 128 {
		return append(buf, byte(f))
	}
	return append(buf, byte(0x80|(f>>8)), byte(f&0xff))
}

// tableReader is the shared byte-cursor state for the table parsers below:
// a position into a byte slice plus read/peek helpers that report
// truncation instead of panicking.
type tableReader struct {
	data []byte
	pos  int
}

func (r *tableReader) readByte() (byte, bool) {
	if r.pos >= len(r.data) {
		return 0, false
	}
	b := r.data[r.pos]
	r.pos++
	return b, true
}

func (r *tableReader) peekByte() (byte, bool) {
	if r.pos >= len(r.data) {
		return 0, false
	}
	return r.data[r.pos], true
}

// readFreq reads a 1- or 2-byte frequency value.
func (r *tableReader) readFreq() (uint32, error) {
	f, ok := r.readByte()
	if !ok {
		return 0, ErrTruncatedTable
	}
	if f < 128 {
		return uint32(f), nil
	}
	lo, ok := r.readByte()
	if !ok {
		return 0, ErrTruncatedTable
	}
	return (uint32(f&0x7f) << 8) | uint32(lo), nil
}

// advanceIndex implements the shared RLE-over-present-indices walk used by
// both the outer (context) and inner (symbol) loops: given the index just
// finished (idx) and the current run counter, it returns the next index to
// process and the updated run counter.
func (r *tableReader) advanceIndex(idx, rle int) (next, nextRLE int, err error) {
	if rle > 0 {
		return idx + 1, rle - 1, nil
	}
	if peek, ok := r.peekByte(); ok && int(peek) == idx+1 {
		b, _ := r.readByte()
		rb, ok := r.readByte()
		if !ok {
			return 0, 0, ErrTruncatedTable
		}
		return int(b), int(rb), nil
	}
	b, ok := r.readByte()
	if !ok {
		return 0, 0, ErrTruncatedTable
	}
	return int(b), 0, nil
}

// DecodeTable0 parses an order-0 table at the start of data, returning the
// normalized frequencies and the number of bytes consumed (including the
// terminating 0x00). It rejects tables whose cumulative frequency would
// overflow TotFreq or that run off the end of data before terminating.
func DecodeTable0(data []byte) (freqs [256]uint32, consumed int, err error) {
	return decodeTable0(data, false)
}

// decodeTable0 is DecodeTable0's implementation; zeroIsTotFreq applies the
// order-1-only F==0 → TotFreq substitution (spec.md §9) when parsing a
// single row nested inside an order-1 table.
func decodeTable0(data []byte, zeroIsTotFreq bool) (freqs [256]uint32, consumed int, err error) {
	r := &tableReader{data: data}

	jb, ok := r.readByte()
	if !ok {
		return freqs, 0, ErrTruncatedTable
	}
	j := int(jb)

	x := uint32(0)
	rle := 0

	for {
		if j < 0 || j > 255 {
			return freqs, 0, ErrBadSymbolIndex
		}

		freq, err := r.readFreq()
		if err != nil {
			return freqs, 0, err
		}
		if freq == 0 && zeroIsTotFreq {
			freq = TotFreq
		}
		if x+freq > TotFreq {
			return freqs, 0, ErrFrequencyOverflow
		}
		freqs[j] = freq
		x += freq

		if r.pos > maxTableSize {
			return freqs, 0, ErrTableTooLarge
		}

		next, nextRLE, err := r.advanceIndex(j, rle)
		if err != nil {
			return freqs, 0, err
		}
		j, rle = next, nextRLE

		if j == 0 && rle == 0 {
			break
		}
	}

	return freqs, r.pos, nil
}

// EncodeTable1 serializes an order-1 table: an outer RLE-over-present-
// contexts loop wrapping an order-0 row per present context, terminated
// by a trailing outer 0x00 after the last context row's own terminator.
func EncodeTable1(freqs [256][256]uint32, totals [256]uint32) []byte {
	buf := make([]byte, 0, maxTableSize/2)
	rleI := 0

	for i := 0; i < 256; i++ {
		if totals[i] == 0 {
			continue
		}

		if rleI > 0 {
			rleI--
		} else {
			buf = append(buf, byte(i))
			if i > 0 && totals[i-1] > 0 {
				k := i + 1
				for k < 256 && totals[k] > 0 {
					k++
				}
				rleI = k - (i + 1)
				buf = append(buf, byte(rleI))
			}
		}

		buf = append(buf, EncodeTable0(freqs[i])...)
	}

	buf = append(buf, 0)
	return buf
}

// DecodeTable1 parses an order-1 table, returning per-context frequency
// rows and the number of bytes consumed.
//
// A stored per-symbol frequency byte that decodes to literal 0 is treated
// as TotFreq, a workaround preserved from the reference decoder for rows
// with only a single present symbol (spec.md §9).
func DecodeTable1(data []byte) (freqs [256][256]uint32, consumed int, err error) {
	r := &tableReader{data: data}

	ib, ok := r.readByte()
	if !ok {
		return freqs, 0, ErrTruncatedTable
	}
	i := int(ib)

	rleI := 0

	for {
		if i < 0 || i > 255 {
			return freqs, 0, ErrBadSymbolIndex
		}

		row, n, err := decodeTable0(data[r.pos:], true)
		if err != nil {
			return freqs, 0, err
		}
		freqs[i] = row
		r.pos += n

		if r.pos > maxTableSize {
			return freqs, 0, ErrTableTooLarge
		}

		next, nextRLE, err := r.advanceIndex(i, rleI)
		if err != nil {
			return freqs, 0, err
		}
		i, rleI = next, nextRLE

		if i == 0 && rleI == 0 {
			break
		}
	}

	return freqs, r.pos, nil
}

// ComputeStarts returns each present symbol's cumulative start, in
// ascending symbol-index order — the same order both EncodeTable0 and
// DecodeTable0 walk the table in, so encoder and decoder always agree.
func ComputeStarts(freqs [256]uint32) (starts [256]uint32) {
	x := uint32(0)
	for j := 0; j < 256; j++ {
		if freqs[j] == 0 {
			continue
		}
		starts[j] = x
		x += freqs[j]
	}
	return starts
}

// BuildReverseLookup fills a TotFreq-entry table mapping a cumulative-
// frequency slot to the symbol whose range contains it, for O(1) decode.
func BuildReverseLookup(freqs, starts [256]uint32) (r [TotFreq]byte) {
	for j := 0; j < 256; j++ {
		if freqs[j] == 0 {
			continue
		}
		for s := starts[j]; s < starts[j]+freqs[j]; s++ {
			r[s] = byte(j)
		}
	}
	return r
}
