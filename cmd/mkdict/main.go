// Command mkdict trains a pkg/names vocabulary from a newline-delimited
// sample of read names and writes it out as Go source: a
// map[string]int literal in the same shape pkg/names.NewVocabulary
// consumes, mirroring how the teacher's mkdict emits a tiktoken-style
// token table for pkg/vocab.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
)

var (
	goPackage = flag.String("pkg", "names", "Go package name for the generated file")
	varName   = flag.String("var", "TrainedTokens", "variable name for the generated token map")
	numMerges = flag.Int("merges", 200, "number of BPE merge operations to perform")
	outPath   = flag.String("out", "", "output path (default stdout)")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}

	sample, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("mkdict: cannot read %q: %v", flag.Arg(0), err)
	}

	tokenRanks := trainBPE(sample, *numMerges)

	var w io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("mkdict: cannot create %q: %v", *outPath, err)
		}
		defer f.Close()
		w = f
	}

	writeGoSource(w, tokenRanks)
}

// trainBPE performs the same byte-pair-merge training pkg/names.Train
// does, but returns the raw rank map rather than a built Vocabulary so
// the CLI can serialize it directly to Go source.
func trainBPE(sample []byte, merges int) map[string]int {
	tokenRanks := make(map[string]int, 256)
	for i := 0; i < 256; i++ {
		tokenRanks[string([]byte{byte(i)})] = i
	}

	ids := make([]int, len(sample))
	for i, b := range sample {
		ids[i] = int(b)
	}

	nextRank := 256
	for merge := 0; merge < merges; merge++ {
		pairCounts := make(map[[2]int]int)
		for i := 0; i < len(ids)-1; i++ {
			pairCounts[[2]int{ids[i], ids[i+1]}]++
		}
		if len(pairCounts) == 0 {
			break
		}

		var bestPair [2]int
		bestCount := 0
		for pair, count := range pairCounts {
			if count > bestCount {
				bestCount = count
				bestPair = pair
			}
		}
		if bestCount < 2 {
			break
		}

		var left, right []byte
		for b, r := range tokenRanks {
			if r == bestPair[0] {
				left = []byte(b)
			}
			if r == bestPair[1] {
				right = []byte(b)
			}
		}
		newBytes := append(append([]byte{}, left...), right...)
		newID := nextRank
		tokenRanks[string(newBytes)] = newID
		nextRank++

		newIDs := make([]int, 0, len(ids))
		i := 0
		for i < len(ids) {
			if i < len(ids)-1 && ids[i] == bestPair[0] && ids[i+1] == bestPair[1] {
				newIDs = append(newIDs, newID)
				i += 2
			} else {
				newIDs = append(newIDs, ids[i])
				i++
			}
		}
		ids = newIDs
	}

	return tokenRanks
}

// writeGoSource emits tokenRanks as a Go source file defining a
// map[string]int literal under *goPackage/*varName.
func writeGoSource(w io.Writer, tokenRanks map[string]int) {
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	fmt.Fprintf(bw, "// Code generated by cmd/mkdict from a read-name sample; DO NOT EDIT.\n\n")
	fmt.Fprintf(bw, "package %s\n\n", *goPackage)
	fmt.Fprintf(bw, "var %s = map[string]int{\n", *varName)

	type entry struct {
		token string
		rank  int
	}
	entries := make([]entry, 0, len(tokenRanks))
	for token, rank := range tokenRanks {
		entries = append(entries, entry{token, rank})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].rank < entries[j].rank })

	for _, e := range entries {
		fmt.Fprintf(bw, "\t%s: %d,\n", goStringLiteral(e.token), e.rank)
	}
	fmt.Fprintln(bw, "}")
}

// goStringLiteral renders s as a double-quoted Go string literal,
// escaping control bytes and non-ASCII bytes so arbitrary token bytes
// (a trained merge can span a multi-byte boundary) survive a
// round trip through a .go source file untouched.
func goStringLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&b, `\x%02x`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: mkdict [-pkg name] [-var name] [-merges N] [-out file] sample.txt

Train a pkg/names vocabulary from a newline-delimited sample of read
names and emit it as a Go source file.

Options:
  -pkg name      Go package name for the generated file (default "names")
  -var name      variable name for the generated token map (default "TrainedTokens")
  -merges N      number of BPE merge operations to perform (default 200)
  -out file      output path (default stdout)
`)
}
