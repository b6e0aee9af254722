// Command ransbench times a single pass of pkg/codec over a file and
// reports throughput, mirroring the timing loop in the original
// rANS_static.c's TEST_MAIN (gettimeofday before/after a single
// encode-or-decode call, microseconds and MB/s on stderr). It is
// intentionally single-threaded and single-block: spec.md's
// concurrency model explicitly leaves parallelism to the caller, one
// block at a time.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/biohpc/cram-rans/pkg/codec"
)

func main() {
	order := flag.Int("o", 0, "entropy coder order: 0 or 1")
	decode := flag.Bool("d", false, "time a decode pass instead of an encode pass")
	iterations := flag.Int("n", 1, "number of passes to average over")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: ransbench [-o 0|1] [-d] [-n count] file")
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("ransbench: %v", err)
	}

	if *decode {
		benchmarkDecode(data, *order, *iterations)
		return
	}
	benchmarkEncode(data, *order, *iterations)
}

func benchmarkEncode(data []byte, order, iterations int) {
	var total time.Duration
	var frameLen int
	for i := 0; i < iterations; i++ {
		start := time.Now()
		frame := codec.Compress(data, order)
		total += time.Since(start)
		frameLen = len(frame)
	}
	report("encode", len(data), total, iterations)
	fmt.Fprintf(os.Stderr, "%d bytes -> %d bytes (%.1f%%)\n",
		len(data), frameLen, 100*float64(frameLen)/float64(max(1, len(data))))
}

func benchmarkDecode(data []byte, order, iterations int) {
	frame := codec.Compress(data, order)
	var total time.Duration
	for i := 0; i < iterations; i++ {
		start := time.Now()
		if _, err := codec.Decompress(frame); err != nil {
			log.Fatalf("ransbench: decode failed: %v", err)
		}
		total += time.Since(start)
	}
	report("decode", len(data), total, iterations)
}

func report(label string, n int, total time.Duration, iterations int) {
	micros := total.Microseconds() / int64(iterations)
	mbPerSec := 0.0
	if micros > 0 {
		mbPerSec = float64(n) / float64(micros)
	}
	fmt.Fprintf(os.Stderr, "%s: took %d microseconds, %5.1f MB/s\n", label, micros, mbPerSec)
}
