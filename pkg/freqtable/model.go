// Package freqtable builds and serializes the order-0 and order-1
// frequency tables consumed by pkg/rans and pkg/codec: counting, fixed-point
// normalization to a 2^TFShift total, and a run-length-compressed wire
// format for the normalized table.
package freqtable

// TFShift is the scale at compile time: every normalized frequency row
// sums to TotFreq. This is fixed for the format, not a per-call parameter.
const TFShift = 12

// TotFreq is 1<<TFShift, the fixed total every context row normalizes to.
const TotFreq = 1 << TFShift

// CountOrder0 tallies raw byte occurrences.
func CountOrder0(in []byte) (counts [256]uint32) {
	for _, b := range in {
		counts[b]++
	}
	return counts
}

// CountOrder1 tallies occurrences keyed by (previous byte, byte), with the
// previous byte for in[0] taken to be 0 (the virtual predecessor spec.md
// §4.C assigns to the first symbol of each lane).
func CountOrder1(in []byte) (counts [256][256]uint32, totals [256]uint32) {
	prev := byte(0)
	for _, b := range in {
		counts[prev][b]++
		totals[prev]++
		prev = b
	}
	return counts, totals
}

// NormalizeOrder0 scales raw counts so they sum to exactly TotFreq, with
// every symbol that had a nonzero raw count kept at frequency >= 1. n must
// be the total of counts and must be nonzero; callers (pkg/codec) special-
// case the n == 0 empty-input frame before ever reaching here.
//
// The scaling factor is a rounded fixed-point reciprocal, reproduced
// verbatim from the reference implementation: simpler roundings produce
// off-by-one normalized counts and then misaligned cumulative frequencies
// during decode.
func NormalizeOrder0(counts [256]uint32, n uint32) (freqs [256]uint32) {
	tr := (uint64(TotFreq)<<31)/uint64(n) + (uint64(1)<<30)/uint64(n)

	var maxSym int
	var maxCount uint32
	var fsum uint32
	for j := 0; j < 256; j++ {
		if counts[j] == 0 {
			continue
		}
		if counts[j] > maxCount {
			maxCount = counts[j]
			maxSym = j
		}
		f := uint32((uint64(counts[j]) * tr) >> 31)
		if f == 0 {
			f = 1
		}
		freqs[j] = f
		fsum += f
	}

	if fsum < TotFreq {
		freqs[maxSym] += TotFreq - fsum
	} else {
		freqs[maxSym] -= fsum - TotFreq
	}

	return freqs
}

// BumpLaneStarts applies the order-1 lane-start coverage fix spec.md §4.C
// describes: the three interior rANS lanes each start by encoding their
// first byte against virtual predecessor 0, so row 0 must assign nonzero
// probability to those three bytes even if they never otherwise follow a
// literal 0 byte in the input. Called by pkg/codec, which owns the lane
// partition, before normalizing row 0.
func BumpLaneStarts(counts *[256][256]uint32, totals *[256]uint32, in []byte) {
	n := len(in)
	quarter := n / 4
	for k := 1; k <= 3; k++ {
		counts[0][in[k*quarter]]++
	}
	totals[0] += 3
}

// NormalizeOrder1 normalizes each context row independently. Rows with a
// zero total are left untouched (they simply don't appear in the
// serialized table — spec.md §3's "absent means never observed" rule).
func NormalizeOrder1(counts [256][256]uint32, totals [256]uint32) (freqs [256][256]uint32) {
	for i := 0; i < 256; i++ {
		if totals[i] == 0 {
			continue
		}
		freqs[i] = NormalizeOrder0(counts[i], totals[i])
	}
	return freqs
}
