// Package qualbin implements CRAM's Illumina quality-score binning
// tables, ported from binning.h. Collapsing the ~94 distinct Phred
// values a sequencer emits down to a handful of bins is what lets
// pkg/codec's order-1 model pay off on a quality stream: fewer distinct
// symbols means fewer, better-populated context rows.
//
// The shape here (an enum plus precomputed-table accessor functions)
// follows the teacher's pkg/vocab, swapping its language token tables
// for these quality bins.
package qualbin

// Mode selects whether binning is applied at all.
type Mode int

const (
	// None passes quality values through unchanged.
	None Mode = iota
	// Illumina applies the 8-level binning scheme from Illumina's
	// quality-score compression whitepaper.
	Illumina
)

var illuminaBin [256]byte
var illuminaBin33 [256]byte

// breakpoint pairs an inclusive upper quality bound with the bin value
// assigned to every quality in (previous bound, this bound].
type breakpoint struct {
	upTo int
	bin  byte
}

var illuminaBreakpoints = []breakpoint{
	{0, 0},
	{1, 1},
	{9, 6},
	{19, 15},
	{24, 22},
	{29, 27},
	{34, 33},
	{39, 37},
	{255, 40},
}

func init() {
	q := 0
	for _, bp := range illuminaBreakpoints {
		for ; q <= bp.upTo; q++ {
			illuminaBin[q] = bp.bin
			illuminaBin33[q] = bp.bin + 33
		}
	}
}

// Bin maps a raw (non-ASCII-offset) Phred quality score to its bin under
// mode. Mode None is the identity function.
func Bin(mode Mode, qual byte) byte {
	if mode == Illumina {
		return illuminaBin[qual]
	}
	return qual
}

// BinPhred33 is Bin, but the returned bin is already offset into
// Phred+33 ASCII range, so a caller assembling a FASTQ-style quality
// string doesn't need a separate +33 step.
func BinPhred33(mode Mode, qual byte) byte {
	if mode == Illumina {
		return illuminaBin33[qual]
	}
	return qual + 33
}
