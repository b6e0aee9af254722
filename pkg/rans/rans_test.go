package rans

import "testing"

// buildUniform builds a trivial two-symbol table at the given scale, used to
// drive the single-lane encode/decode primitives directly without going
// through the frame format in pkg/codec.
func buildUniform(scaleBits uint32) (encA, encB EncSymbol, decA, decB DecSymbol, mask uint32) {
	total := uint32(1) << scaleBits
	freqA := total / 4
	freqB := total - freqA
	encA.Init(0, freqA, scaleBits)
	encB.Init(freqA, freqB, scaleBits)
	decA.Init(0, freqA)
	decB.Init(freqA, freqB)
	return encA, encB, decA, decB, total - 1
}

func TestEncodeDecodeSingleSymbolRoundTrip(t *testing.T) {
	const scaleBits = 12
	encA, encB, decA, decB, _ := buildUniform(scaleBits)

	symbols := []byte{0, 1, 0, 0, 1, 1, 0, 1, 1, 1, 0, 0, 0, 1}

	out := make([]byte, 4096)
	n := len(out)
	s := EncInit()
	for i := len(symbols) - 1; i >= 0; i-- {
		if symbols[i] == 0 {
			s, n = s.EncPutSymbol(out, n, encA)
		} else {
			s, n = s.EncPutSymbol(out, n, encB)
		}
	}
	n = s.EncFlush(out, n)
	stream := out[n:]

	s, pos := DecInit(stream, 0)
	decoded := make([]byte, len(symbols))
	for i := range decoded {
		slot := s.DecGet(scaleBits)
		if slot < uint32(decA.Start)+uint32(decA.Freq) {
			decoded[i] = 0
			s, pos = s.DecAdvanceSymbol(stream, pos, decA, scaleBits)
		} else {
			decoded[i] = 1
			s, pos = s.DecAdvanceSymbol(stream, pos, decB, scaleBits)
		}
	}

	for i := range symbols {
		if decoded[i] != symbols[i] {
			t.Fatalf("symbol %d: got %d want %d", i, decoded[i], symbols[i])
		}
	}
}

func TestEncSymbolFreqOneSpecialCase(t *testing.T) {
	const scaleBits = 12
	const total = uint32(1) << scaleBits

	var rare, common EncSymbol
	rare.Init(0, 1, scaleBits)
	common.Init(1, total-1, scaleBits)

	var rareDec, commonDec DecSymbol
	rareDec.Init(0, 1)
	commonDec.Init(1, total-1)

	if rare.rcpFreq != 0xFFFFFFFF || rare.rcpShift != 32 {
		t.Fatalf("freq=1 special case not applied: rcpFreq=%#x rcpShift=%d", rare.rcpFreq, rare.rcpShift)
	}

	// Encode a run dominated by the common symbol with one rare symbol
	// buried in the middle, and check it still round-trips — deleting the
	// freq=1 special case would miscode the rare symbol.
	symbols := make([]byte, 2000)
	symbols[1000] = 1 // the rare symbol

	out := make([]byte, 8192)
	n := len(out)
	s := EncInit()
	for i := len(symbols) - 1; i >= 0; i-- {
		if symbols[i] == 1 {
			s, n = s.EncPutSymbol(out, n, rare)
		} else {
			s, n = s.EncPutSymbol(out, n, common)
		}
	}
	n = s.EncFlush(out, n)
	stream := out[n:]

	s, pos := DecInit(stream, 0)
	for i := range symbols {
		slot := s.DecGet(scaleBits)
		var sym byte
		if slot < uint32(rareDec.Start)+uint32(rareDec.Freq) {
			sym = 1
			s, pos = s.DecAdvanceSymbol(stream, pos, rareDec, scaleBits)
		} else {
			sym = 0
			s, pos = s.DecAdvanceSymbol(stream, pos, commonDec, scaleBits)
		}
		if sym != symbols[i] {
			t.Fatalf("symbol %d: got %d want %d", i, sym, symbols[i])
		}
	}
}

func TestEncPutMatchesEncPutSymbol(t *testing.T) {
	const scaleBits = 12
	const freq = 37
	const start = 500

	var sym EncSymbol
	sym.Init(start, freq, scaleBits)

	outFast := make([]byte, 64)
	outSlow := make([]byte, 64)
	nFast, nSlow := len(outFast), len(outSlow)

	sFast := EncInit()
	sSlow := EncInit()
	for i := 0; i < 5; i++ {
		sFast, nFast = sFast.EncPutSymbol(outFast, nFast, sym)
		sSlow, nSlow = sSlow.EncPut(outSlow, nSlow, start, freq, scaleBits)
	}

	if sFast != sSlow {
		t.Fatalf("state mismatch: fast=%d slow=%d", sFast, sSlow)
	}
	if string(outFast[nFast:]) != string(outSlow[nSlow:]) {
		t.Fatalf("output bytes mismatch: fast=%v slow=%v", outFast[nFast:], outSlow[nSlow:])
	}
}
