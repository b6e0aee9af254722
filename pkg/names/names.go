package names

import (
	"encoding/binary"
	"errors"

	"github.com/biohpc/cram-rans/pkg/codec"
	"github.com/biohpc/cram-rans/pkg/itf8"
)

// ErrTruncatedStream is returned when a compressed name stream ends
// before its declared token count has been consumed.
var ErrTruncatedStream = errors.New("names: truncated token stream")

// Compress tokenizes text against vocab, ITF-8-encodes the resulting
// token IDs back-to-back, and entropy-codes that byte stream with
// pkg/codec's order-0 model. Order 0 is the right choice here, not
// order 1: tokenization has already done the work of turning
// correlated runs of bytes into single low-ID symbols, so there's
// little context-conditional structure left for order-1's bigger table
// to exploit.
func Compress(text []byte, vocab *Vocabulary) []byte {
	enc := NewEncoder(vocab)
	ids := enc.Encode(text)

	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(ids)))

	idBytes := make([]byte, 0, len(ids)*2)
	for _, id := range ids {
		idBytes = append(idBytes, itf8.Encode(int32(id))...)
	}

	frame := codec.Compress(idBytes, codec.OrderZero)
	out := make([]byte, 0, 4+len(frame))
	out = append(out, countBuf[:]...)
	out = append(out, frame...)
	return out
}

// Decompress reverses Compress, rebuilding the original text from the
// entropy-coded token ID stream and vocab.
func Decompress(data []byte, vocab *Vocabulary) ([]byte, error) {
	if len(data) < 4 {
		return nil, ErrTruncatedStream
	}
	count := binary.LittleEndian.Uint32(data[:4])

	idBytes, err := codec.Decompress(data[4:])
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, count)
	pos := 0
	for i := uint32(0); i < count; i++ {
		if pos >= len(idBytes) {
			return nil, ErrTruncatedStream
		}
		v, n, err := itf8.Decode(idBytes[pos:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, int(v))
		pos += n
	}

	dec := NewEncoder(vocab)
	return dec.Decode(ids), nil
}
