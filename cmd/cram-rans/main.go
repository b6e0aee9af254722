// Command cram-rans is the CLI driver for pkg/codec: it reads raw bytes
// from stdin (or a named file) in fixed-size chunks, and on compression
// writes one `[4-byte LE frame length][frame bytes]` record per chunk to
// stdout; on decompression it reads that same record stream back and
// writes the reassembled original bytes.
//
// Usage:
//
//	cram-rans -o {0|1} [-i in] [-out out]     compress
//	cram-rans -d [-i in] [-out out]            decompress
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/biohpc/cram-rans/pkg/blockpool"
	"github.com/biohpc/cram-rans/pkg/codec"
	"github.com/biohpc/cram-rans/pkg/seqprofile"
)

// blkSize mirrors spec.md §6's BLK_SIZE: the amount of input consumed
// per compressed frame.
const blkSize = 1 << 20

func main() {
	order := flag.Int("o", 0, "entropy coder order: 0 or 1")
	decode := flag.Bool("d", false, "decode a frame stream instead of encoding")
	auto := flag.Bool("auto", false, "pick the order per chunk via pkg/seqprofile instead of -o")
	inPath := flag.String("i", "", "input path (default stdin)")
	outPath := flag.String("out", "", "output path (default stdout)")
	flag.Parse()

	if !*decode && *order != 0 && *order != 1 {
		log.Fatalf("cram-rans: -o must be 0 or 1, got %d", *order)
	}

	in, err := openInput(*inPath)
	if err != nil {
		log.Fatalf("cram-rans: %v", err)
	}
	defer in.Close()

	out, err := openOutput(*outPath)
	if err != nil {
		log.Fatalf("cram-rans: %v", err)
	}
	defer out.Close()

	r := bufio.NewReaderSize(in, blkSize)
	w := bufio.NewWriter(out)
	defer w.Flush()

	if *decode {
		if err := runDecode(r, w); err != nil {
			log.Fatalf("cram-rans: decode failed: %v", err)
		}
		return
	}
	if err := runEncode(r, w, *order, *auto); err != nil {
		log.Fatalf("cram-rans: encode failed: %v", err)
	}
}

// runEncode reads blkSize chunks in batches of blockpool.Workers() at a
// time, compresses each batch's chunks concurrently, and writes their
// frames to w in the original chunk order — bounded fan-out so a large
// file doesn't serialize on pkg/codec's single-threaded compressor.
func runEncode(r *bufio.Reader, w *bufio.Writer, order int, auto bool) error {
	batchSize := blockpool.Workers()
	for {
		chunks, eof, err := readChunkBatch(r, batchSize)
		if err != nil {
			return err
		}
		frames := blockpool.MapOrdered(chunks, batchSize, func(chunk []byte) []byte {
			useOrder := order
			if auto {
				useOrder = seqprofile.Analyze(chunk).SuggestedOrder
			}
			return codec.Compress(chunk, useOrder)
		})
		for _, frame := range frames {
			if err := writeRecord(w, frame); err != nil {
				return err
			}
		}
		if eof {
			return nil
		}
	}
}

func readChunkBatch(r *bufio.Reader, batchSize int) (chunks [][]byte, eof bool, err error) {
	for i := 0; i < batchSize; i++ {
		chunk := make([]byte, blkSize)
		n, readErr := io.ReadFull(r, chunk)
		if n > 0 {
			chunks = append(chunks, chunk[:n])
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			return chunks, true, nil
		}
		if readErr != nil {
			return chunks, false, readErr
		}
	}
	return chunks, false, nil
}

type decodeResult struct {
	data []byte
	err  error
}

// runDecode mirrors runEncode: it reads a batch of records, decompresses
// them concurrently, then writes the decoded bytes in record order.
func runDecode(r *bufio.Reader, w *bufio.Writer) error {
	batchSize := blockpool.Workers()
	for {
		frames, eof, err := readRecordBatch(r, batchSize)
		if err != nil {
			return err
		}
		results := blockpool.MapOrdered(frames, batchSize, func(frame []byte) decodeResult {
			out, err := codec.Decompress(frame)
			return decodeResult{out, err}
		})
		for _, res := range results {
			if res.err != nil {
				return res.err
			}
			if _, err := w.Write(res.data); err != nil {
				return err
			}
		}
		if eof {
			return nil
		}
	}
}

func readRecordBatch(r *bufio.Reader, batchSize int) (frames [][]byte, eof bool, err error) {
	for i := 0; i < batchSize; i++ {
		frame, readErr := readRecord(r)
		if readErr == io.EOF {
			return frames, true, nil
		}
		if readErr != nil {
			return frames, false, readErr
		}
		frames = append(frames, frame)
	}
	return frames, false, nil
}

func writeRecord(w io.Writer, frame []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(frame)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(frame)
	return err
}

func readRecord(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("truncated record length")
		}
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	frame := make([]byte, n)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, fmt.Errorf("truncated frame body: %w", err)
	}
	return frame, nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
