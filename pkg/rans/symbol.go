package rans

// EncSymbol is a precomputed per-symbol encoder record. Its fields are
// chosen so EncPutSymbol reduces to a renormalize, a multiply-high, and a
// couple of adds — see Init for the derivation (Alverson's reciprocal
// division, Giesen's rans_byte bias trick for freq == 1).
type EncSymbol struct {
	xMax     uint32 // exclusive upper bound of the pre-normalization interval
	rcpFreq  uint32 // fixed-point reciprocal of freq
	bias     uint32
	cmplFreq uint32 // (1<<scaleBits) - freq
	rcpShift uint32 // shift count, pre-biased by +32
}

// Init derives the encoder record for a symbol with cumulative range
// [start, start+freq) out of a total of 1<<scaleBits.
//
// For freq >= 2 this is Alverson's "Integer Division using reciprocals":
// shift = ceil(log2(freq)), rcpFreq = floor((2^(shift+31)+freq-1)/freq),
// rcpShift = shift-1+32, bias = start.
//
// freq == 1 is a special case: the reciprocal of 1 can't be represented as
// a fraction smaller than 1, so rcpFreq = 0xFFFFFFFF, rcpShift = 0 (folded
// to 32 below), and bias = start + (1<<scaleBits) - 1 restores the correct
// result. Skipping this case miscodes any rare-but-present symbol.
func (e *EncSymbol) Init(start, freq, scaleBits uint32) {
	e.xMax = ((L >> scaleBits) << 8) * freq
	e.cmplFreq = (uint32(1) << scaleBits) - freq

	if freq < 2 {
		e.rcpFreq = 0xFFFFFFFF
		e.rcpShift = 0
		e.bias = start + (uint32(1) << scaleBits) - 1
	} else {
		shift := uint32(0)
		for freq > (uint32(1) << shift) {
			shift++
		}
		e.rcpFreq = uint32(((uint64(1) << (shift + 31)) + uint64(freq) - 1) / uint64(freq))
		e.rcpShift = shift - 1
		e.bias = start
	}

	e.rcpShift += 32 // fold the mulhi's implicit >>32 into the shift
}

// DecSymbol is a decoder symbol record: just the cumulative start and the
// frequency, both fitting comfortably in 16 bits since TotFreq == 1<<12.
type DecSymbol struct {
	Start uint16
	Freq  uint16
}

// Init sets the decoder record for a symbol with cumulative range
// [start, start+freq).
func (d *DecSymbol) Init(start, freq uint32) {
	d.Start = uint16(start)
	d.Freq = uint16(freq)
}
