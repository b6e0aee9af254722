// Package codec assembles pkg/rans and pkg/freqtable into the frame
// orchestrator: Compress and Decompress operate on whole byte slices,
// splitting work across four interleaved rANS lanes the way
// rans_compress_O0/O1 do in the reference implementation.
package codec

import (
	"errors"
	"fmt"
	"math"

	"github.com/biohpc/cram-rans/pkg/freqtable"
	"github.com/biohpc/cram-rans/pkg/rans"
)

// Order selects the statistical model. OrderOne on input shorter than
// four bytes is silently treated as OrderZero, since the four-lane
// partition and the order-1 lane-start bump both assume N >= 4.
const (
	OrderZero = 0
	OrderOne  = 1
)

const headerSize = 9

var (
	// ErrFrameTooShort is returned when a frame is shorter than the 9-byte header.
	ErrFrameTooShort = errors.New("codec: frame shorter than header")
	// ErrBadOrder is returned when the order byte is neither 0 nor 1.
	ErrBadOrder = errors.New("codec: order byte is not 0 or 1")
	// ErrSizeMismatch is returned when the declared frame size disagrees with len(frame).
	ErrSizeMismatch = errors.New("codec: declared size does not match frame length")
	// ErrTruncatedPayload is returned when the rANS payload ends before all
	// four lane states can be initialized or advanced.
	ErrTruncatedPayload = errors.New("codec: payload truncated")
)

// Compress encodes in using the given order, returning a self-contained
// frame. order values other than OrderZero/OrderOne are treated as
// OrderZero; OrderOne on an input shorter than four bytes falls back to
// OrderZero, matching rans_compress_O1's own fallback.
func Compress(in []byte, order int) []byte {
	if order == OrderOne && len(in) >= 4 {
		return compressOrder1(in)
	}
	return compressOrder0(in)
}

// Decompress parses a frame produced by Compress and returns the original
// bytes. It never returns a partially-populated slice: on any error the
// returned slice is nil.
func Decompress(frame []byte) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrTruncatedPayload, r)
		}
	}()

	if len(frame) < headerSize {
		return nil, ErrFrameTooShort
	}

	order := frame[0]
	declared := le32(frame[1:5])
	n := le32(frame[5:9])

	if int(declared) != len(frame)-headerSize {
		return nil, ErrSizeMismatch
	}

	switch order {
	case OrderZero:
		return decompressOrder0(frame[headerSize:], n)
	case OrderOne:
		return decompressOrder1(frame[headerSize:], n)
	default:
		return nil, ErrBadOrder
	}
}

// bufferSize is the worst-case scratch buffer spec.md §4.E calls for:
// enough room for an incompressible payload plus a maximally expanded
// order-1 table (256 contexts * 256 symbols * up to 3 bytes each).
func bufferSize(n int) int {
	return int(math.Ceil(1.05*float64(n))) + 257*257*3 + headerSize
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func put32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// finalize moves the backward-written payload (currently sitting at
// out[pos:outEnd]) down to directly follow the table at out[headerSize:],
// trims out to its final length, writes the table, and fills in the
// header. This is the Go analogue of the reference's memmove-then-header
// write in rans_compress_O0/O1.
func finalize(out []byte, pos, outEnd int, table []byte, order byte, n int) []byte {
	payload := out[pos:outEnd]
	tableSize := headerSize + len(table)
	copy(out[tableSize:], payload)
	out = out[:tableSize+len(payload)]
	copy(out[headerSize:], table)

	out[0] = order
	put32(out[1:5], uint32(len(out)-headerSize))
	put32(out[5:9], uint32(n))
	return out
}

func compressOrder0(in []byte) []byte {
	n := len(in)
	out := make([]byte, bufferSize(n))
	outEnd := len(out)

	var freqs [256]uint32
	var syms [256]rans.EncSymbol

	if n > 0 {
		counts := freqtable.CountOrder0(in)
		freqs = freqtable.NormalizeOrder0(counts, uint32(n))
		starts := freqtable.ComputeStarts(freqs)
		for j := 0; j < 256; j++ {
			if freqs[j] == 0 {
				continue
			}
			syms[j].Init(starts[j], freqs[j], freqtable.TFShift)
		}
	}
	table := freqtable.EncodeTable0(freqs)

	s0, s1, s2, s3 := rans.EncInit(), rans.EncInit(), rans.EncInit(), rans.EncInit()
	pos := outEnd

	switch n & 3 {
	case 3:
		s2, pos = s2.EncPutSymbol(out, pos, syms[in[n-1]])
		s1, pos = s1.EncPutSymbol(out, pos, syms[in[n-2]])
		s0, pos = s0.EncPutSymbol(out, pos, syms[in[n-3]])
	case 2:
		s1, pos = s1.EncPutSymbol(out, pos, syms[in[n-1]])
		s0, pos = s0.EncPutSymbol(out, pos, syms[in[n-2]])
	case 1:
		s0, pos = s0.EncPutSymbol(out, pos, syms[in[n-1]])
	}

	for i := n &^ 3; i > 0; i -= 4 {
		sym3, sym2, sym1, sym0 := syms[in[i-1]], syms[in[i-2]], syms[in[i-3]], syms[in[i-4]]
		s3, pos = s3.EncPutSymbol(out, pos, sym3)
		s2, pos = s2.EncPutSymbol(out, pos, sym2)
		s1, pos = s1.EncPutSymbol(out, pos, sym1)
		s0, pos = s0.EncPutSymbol(out, pos, sym0)
	}

	pos = s3.EncFlush(out, pos)
	pos = s2.EncFlush(out, pos)
	pos = s1.EncFlush(out, pos)
	pos = s0.EncFlush(out, pos)

	return finalize(out, pos, outEnd, table, OrderZero, n)
}

func decompressOrder0(data []byte, n uint32) ([]byte, error) {
	// An empty input's table is a bare terminator byte, indistinguishable
	// from "symbol 0 present with frequency 0" by the table format alone
	// (compressOrder0 never builds a real table for n == 0). The frame's
	// own declared size settles it without parsing the table at all.
	if n == 0 {
		return []byte{}, nil
	}

	freqs, consumed, err := freqtable.DecodeTable0(data)
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	starts := freqtable.ComputeStarts(freqs)
	var syms [256]rans.DecSymbol
	for j := 0; j < 256; j++ {
		if freqs[j] == 0 {
			continue
		}
		syms[j].Init(starts[j], freqs[j])
	}
	lookup := freqtable.BuildReverseLookup(freqs, starts)

	payload := data[consumed:]
	if len(payload) < 16 {
		return nil, ErrTruncatedPayload
	}

	s0, pos := rans.DecInit(payload, 0)
	s1, pos := rans.DecInit(payload, pos)
	s2, pos := rans.DecInit(payload, pos)
	s3, pos := rans.DecInit(payload, pos)

	outEnd := int(n) &^ 3
	for i := 0; i < outEnd; i += 4 {
		m0, m1, m2, m3 := s0.DecGet(freqtable.TFShift), s1.DecGet(freqtable.TFShift), s2.DecGet(freqtable.TFShift), s3.DecGet(freqtable.TFShift)
		c0, c1, c2, c3 := lookup[m0], lookup[m1], lookup[m2], lookup[m3]
		out[i+0], out[i+1], out[i+2], out[i+3] = c0, c1, c2, c3

		s0, pos = s0.DecAdvanceSymbol(payload, pos, syms[c0], freqtable.TFShift)
		s1, pos = s1.DecAdvanceSymbol(payload, pos, syms[c1], freqtable.TFShift)
		s2, pos = s2.DecAdvanceSymbol(payload, pos, syms[c2], freqtable.TFShift)
		s3, pos = s3.DecAdvanceSymbol(payload, pos, syms[c3], freqtable.TFShift)
	}

	switch int(n) & 3 {
	case 1:
		c := lookup[s0.DecGet(freqtable.TFShift)]
		s0, pos = s0.DecAdvanceSymbol(payload, pos, syms[c], freqtable.TFShift)
		out[outEnd] = c
	case 2:
		c := lookup[s0.DecGet(freqtable.TFShift)]
		s0, pos = s0.DecAdvanceSymbol(payload, pos, syms[c], freqtable.TFShift)
		out[outEnd] = c

		c = lookup[s1.DecGet(freqtable.TFShift)]
		s1, pos = s1.DecAdvanceSymbol(payload, pos, syms[c], freqtable.TFShift)
		out[outEnd+1] = c
	case 3:
		c := lookup[s0.DecGet(freqtable.TFShift)]
		s0, pos = s0.DecAdvanceSymbol(payload, pos, syms[c], freqtable.TFShift)
		out[outEnd] = c

		c = lookup[s1.DecGet(freqtable.TFShift)]
		s1, pos = s1.DecAdvanceSymbol(payload, pos, syms[c], freqtable.TFShift)
		out[outEnd+1] = c

		c = lookup[s2.DecGet(freqtable.TFShift)]
		s2, pos = s2.DecAdvanceSymbol(payload, pos, syms[c], freqtable.TFShift)
		out[outEnd+2] = c
	}

	return out, nil
}

// compressOrder1 mirrors rans_compress_O1: the 4-way partition is walked
// backward with each lane tracking its own running context byte (l0..l3),
// since the symbol encoded at position i is conditioned on in[i-1], which
// is only known once the backward scan has reached it.
func compressOrder1(in []byte) []byte {
	n := len(in)
	out := make([]byte, bufferSize(n))
	outEnd := len(out)

	counts, totals := freqtable.CountOrder1(in)
	freqtable.BumpLaneStarts(&counts, &totals, in)
	freqs := freqtable.NormalizeOrder1(counts, totals)
	table := freqtable.EncodeTable1(freqs, totals)

	var syms [256][256]rans.EncSymbol
	for i := 0; i < 256; i++ {
		if totals[i] == 0 {
			continue
		}
		starts := freqtable.ComputeStarts(freqs[i])
		for j := 0; j < 256; j++ {
			if freqs[i][j] == 0 {
				continue
			}
			syms[i][j].Init(starts[j], freqs[i][j], freqtable.TFShift)
		}
	}

	s0, s1, s2, s3 := rans.EncInit(), rans.EncInit(), rans.EncInit(), rans.EncInit()
	pos := outEnd

	isz4 := n / 4
	i0 := 1*isz4 - 2
	i1 := 2*isz4 - 2
	i2 := 3*isz4 - 2
	i3 := 4*isz4 - 2

	l0 := in[i0+1]
	l1 := in[i1+1]
	l2 := in[i2+1]
	l3 := in[n-1]

	for i3 = n - 2; i3 > 4*isz4-2; i3-- {
		c3 := in[i3]
		s3, pos = s3.EncPutSymbol(out, pos, syms[c3][l3])
		l3 = c3
	}

	for ; i0 >= 0; i0, i1, i2, i3 = i0-1, i1-1, i2-1, i3-1 {
		c0, c1, c2, c3 := in[i0], in[i1], in[i2], in[i3]
		sym3, sym2, sym1, sym0 := syms[c3][l3], syms[c2][l2], syms[c1][l1], syms[c0][l0]

		s3, pos = s3.EncPutSymbol(out, pos, sym3)
		s2, pos = s2.EncPutSymbol(out, pos, sym2)
		s1, pos = s1.EncPutSymbol(out, pos, sym1)
		s0, pos = s0.EncPutSymbol(out, pos, sym0)

		l0, l1, l2, l3 = c0, c1, c2, c3
	}

	s3, pos = s3.EncPutSymbol(out, pos, syms[0][l3])
	s2, pos = s2.EncPutSymbol(out, pos, syms[0][l2])
	s1, pos = s1.EncPutSymbol(out, pos, syms[0][l1])
	s0, pos = s0.EncPutSymbol(out, pos, syms[0][l0])

	pos = s3.EncFlush(out, pos)
	pos = s2.EncFlush(out, pos)
	pos = s1.EncFlush(out, pos)
	pos = s0.EncFlush(out, pos)

	return finalize(out, pos, outEnd, table, OrderOne, n)
}

func decompressOrder1(data []byte, n uint32) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}

	freqs, consumed, err := freqtable.DecodeTable1(data)
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	var syms [256][256]rans.DecSymbol
	var lookups [256][]byte
	for i := 0; i < 256; i++ {
		present := false
		for j := 0; j < 256; j++ {
			if freqs[i][j] != 0 {
				present = true
				break
			}
		}
		if !present {
			continue
		}
		starts := freqtable.ComputeStarts(freqs[i])
		for j := 0; j < 256; j++ {
			if freqs[i][j] == 0 {
				continue
			}
			syms[i][j].Init(starts[j], freqs[i][j])
		}
		table := freqtable.BuildReverseLookup(freqs[i], starts)
		lookups[i] = table[:]
	}

	payload := data[consumed:]
	if len(payload) < 16 {
		return nil, ErrTruncatedPayload
	}

	s0, pos := rans.DecInit(payload, 0)
	s1, pos := rans.DecInit(payload, pos)
	s2, pos := rans.DecInit(payload, pos)
	s3, pos := rans.DecInit(payload, pos)

	isz4 := int(n) / 4
	var l0, l1, l2, l3 byte
	i0, i1, i2, i3 := 0, isz4, 2*isz4, 3*isz4

	for ; i0 < isz4; i0, i1, i2, i3 = i0+1, i1+1, i2+1, i3+1 {
		m0, m1, m2, m3 := s0.DecGet(freqtable.TFShift), s1.DecGet(freqtable.TFShift), s2.DecGet(freqtable.TFShift), s3.DecGet(freqtable.TFShift)
		c0, c1, c2, c3 := lookups[l0][m0], lookups[l1][m1], lookups[l2][m2], lookups[l3][m3]
		out[i0], out[i1], out[i2], out[i3] = c0, c1, c2, c3

		s0, pos = s0.DecAdvanceSymbol(payload, pos, syms[l0][c0], freqtable.TFShift)
		s1, pos = s1.DecAdvanceSymbol(payload, pos, syms[l1][c1], freqtable.TFShift)
		s2, pos = s2.DecAdvanceSymbol(payload, pos, syms[l2][c2], freqtable.TFShift)
		s3, pos = s3.DecAdvanceSymbol(payload, pos, syms[l3][c3], freqtable.TFShift)

		l0, l1, l2, l3 = c0, c1, c2, c3
	}

	for ; i3 < int(n); i3++ {
		c3 := lookups[l3][s3.DecGet(freqtable.TFShift)]
		out[i3] = c3
		s3, pos = s3.DecAdvanceSymbol(payload, pos, syms[l3][c3], freqtable.TFShift)
		l3 = c3
	}

	return out, nil
}
