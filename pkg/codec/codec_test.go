package codec

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/biohpc/cram-rans/pkg/freqtable"
)

func allDistinctBytes() []byte {
	b := make([]byte, 256)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func pseudoRandom(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	b := make([]byte, n)
	r.Read(b)
	return b
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"single byte", []byte{0x2a}},
		{"two bytes", []byte{0x01, 0x02}},
		{"three bytes", []byte{0x01, 0x02, 0x03}},
		{"ABABA", []byte("ABABA")},
		{"ABABABAB", []byte("ABABABAB")},
		{"4096 A's", bytes.Repeat([]byte{0x41}, 4096)},
		{"all distinct bytes", allDistinctBytes()},
		{"repeated phrase", bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog"), 500)},
		{"pseudo-random 64KiB", pseudoRandom(64*1024, 1)},
	}

	for _, tc := range cases {
		for _, order := range []int{OrderZero, OrderOne} {
			t.Run(tc.name, func(t *testing.T) {
				frame := Compress(tc.data, order)
				out, err := Decompress(frame)
				if err != nil {
					t.Fatalf("order %d: Decompress failed: %v", order, err)
				}
				if !bytes.Equal(out, tc.data) {
					t.Fatalf("order %d: round trip mismatch: got %d bytes, want %d bytes", order, len(out), len(tc.data))
				}
			})
		}
	}
}

func TestDeterminism(t *testing.T) {
	data := pseudoRandom(10000, 7)
	a := Compress(data, OrderOne)
	b := Compress(data, OrderOne)
	if !bytes.Equal(a, b) {
		t.Fatal("compress is not deterministic for identical input")
	}
}

func TestFrameIntegrity(t *testing.T) {
	data := []byte("ABABA")
	frame := Compress(data, OrderZero)

	if frame[0] != OrderZero {
		t.Fatalf("order byte: got %d want %d", frame[0], OrderZero)
	}
	if got := le32(frame[1:5]); int(got) != len(frame)-headerSize {
		t.Fatalf("size field: got %d want %d", got, len(frame)-headerSize)
	}
	if got := le32(frame[5:9]); got != uint32(len(data)) {
		t.Fatalf("original size field: got %d want %d", got, len(data))
	}
}

func TestOrder1TableContextsABABABAB(t *testing.T) {
	frame := Compress([]byte("ABABABAB"), OrderOne)
	if frame[0] != OrderOne {
		t.Fatalf("expected order-1 frame, got order byte %d", frame[0])
	}

	freqs, _, err := freqtable.DecodeTable1(frame[headerSize:])
	if err != nil {
		t.Fatalf("DecodeTable1 failed: %v", err)
	}
	for i := 0; i < 256; i++ {
		present := false
		for j := 0; j < 256; j++ {
			if freqs[i][j] != 0 {
				present = true
			}
		}
		if want := i == 0 || i == 'A' || i == 'B'; present != want {
			t.Fatalf("context %d: present=%v, want %v", i, present, want)
		}
	}

	out, err := Decompress(frame)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if string(out) != "ABABABAB" {
		t.Fatalf("got %q want %q", out, "ABABABAB")
	}
}

func TestOrder0TableSingleSymbol(t *testing.T) {
	data := bytes.Repeat([]byte{0x41}, 4096)
	frame := Compress(data, OrderZero)

	freqs, _, err := freqtable.DecodeTable0(frame[headerSize:])
	if err != nil {
		t.Fatalf("DecodeTable0 failed: %v", err)
	}
	for j := 0; j < 256; j++ {
		want := uint32(0)
		if j == 0x41 {
			want = freqtable.TotFreq
		}
		if freqs[j] != want {
			t.Fatalf("symbol %d: frequency %d, want %d", j, freqs[j], want)
		}
	}

	out, err := Decompress(frame)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatal("round trip mismatch for single-symbol input")
	}
}

func TestOrder1FallsBackBelowFourBytes(t *testing.T) {
	for n := 0; n < 4; n++ {
		data := pseudoRandom(n, int64(n))
		frame := Compress(data, OrderOne)
		if frame[0] != OrderZero {
			t.Fatalf("n=%d: expected fallback to order-0, got order byte %d", n, frame[0])
		}
	}
}

func TestIncompressibleSizeCeiling(t *testing.T) {
	data := pseudoRandom(1_000_000, 42)
	for _, order := range []int{OrderZero, OrderOne} {
		frame := Compress(data, order)
		if len(frame) >= len(data)+1000 {
			t.Fatalf("order %d: frame grew too much: %d bytes for %d input", order, len(frame), len(data))
		}
		out, err := Decompress(frame)
		if err != nil {
			t.Fatalf("order %d: Decompress failed: %v", order, err)
		}
		if !bytes.Equal(out, data) {
			t.Fatalf("order %d: round trip mismatch on random data", order)
		}
	}
}

func TestDecompressRejectsShortFrame(t *testing.T) {
	if _, err := Decompress([]byte{0, 1, 2}); err != ErrFrameTooShort {
		t.Fatalf("got %v want ErrFrameTooShort", err)
	}
}

func TestDecompressRejectsBadOrder(t *testing.T) {
	frame := Compress([]byte("hello"), OrderZero)
	frame[0] = 7
	if _, err := Decompress(frame); err != ErrBadOrder {
		t.Fatalf("got %v want ErrBadOrder", err)
	}
}

func TestDecompressRejectsCorruptedSizeField(t *testing.T) {
	frame := Compress([]byte("hello world, this is a test of the frame format"), OrderZero)
	corrupted := make([]byte, len(frame))
	copy(corrupted, frame)
	put32(corrupted[1:5], uint32(len(corrupted)*10))

	out, err := Decompress(corrupted)
	if err == nil {
		t.Fatal("expected an error decoding a frame with a corrupted size field")
	}
	if out != nil {
		t.Fatal("expected a nil result on decode failure")
	}
}

func TestDecompressNeverPanicsOnTruncatedFrame(t *testing.T) {
	frame := Compress(pseudoRandom(5000, 3), OrderOne)
	for cut := len(frame) - 1; cut > headerSize; cut -= 37 {
		truncated := make([]byte, cut)
		copy(truncated, frame)
		put32(truncated[1:5], uint32(cut-headerSize))
		// Decompress must report an error, not panic, regardless of where
		// the payload was cut off.
		if _, err := Decompress(truncated); err == nil {
			t.Fatalf("cut at %d: expected an error decoding a truncated frame", cut)
		}
	}
}

func TestLaneSymmetry(t *testing.T) {
	n := 4000
	data := pseudoRandom(n, 99)
	for _, order := range []int{OrderZero, OrderOne} {
		frame := Compress(data, order)
		out, err := Decompress(frame)
		if err != nil {
			t.Fatalf("order %d: Decompress failed: %v", order, err)
		}
		quarter := n / 4
		for k := 0; k < 4; k++ {
			if out[k*quarter] != data[k*quarter] {
				t.Fatalf("order %d: lane %d start mismatch at %d", order, k, k*quarter)
			}
		}
	}
}
