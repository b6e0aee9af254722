// Package names tokenizes FASTQ/SAM read names into a small vocabulary of
// recurring fragments (instrument prefixes, separators, mate suffixes,
// digit runs) and entropy-codes the resulting token IDs with pkg/codec's
// order-0 model. Read names compress poorly byte-for-byte because their
// entropy is concentrated in a handful of numeric fields between long
// runs of boilerplate; tokenizing first turns that boilerplate into a
// handful of very frequent symbols order-0 rANS is good at.
//
// The trie/vocabulary/encoder shape here is carried over unchanged from
// the teacher's pkg/bpe: only the default token list (pkg/vocab's
// per-language tables there) is swapped for read-name fragments.
package names

import "sort"

// Token is one entry in a Vocabulary: a byte fragment and the rank it was
// assigned at construction (lower rank means it was seen, or declared,
// earlier and gets a smaller ID).
type Token struct {
	Bytes []byte
	Rank  int
}

// Vocabulary maps byte fragments to small integer IDs and back.
type Vocabulary struct {
	tokens   []Token
	byteToID map[string]int
	maxLen   int
}

// NewVocabulary builds a Vocabulary from a fragment-to-rank map, assigning
// token IDs in rank order so common fragments (rank 0) land on the
// smallest IDs, which in turn land in the most-favored rows of the
// order-0 frequency table once encoded.
func NewVocabulary(tokenRanks map[string]int) *Vocabulary {
	v := &Vocabulary{
		tokens:   make([]Token, len(tokenRanks)),
		byteToID: make(map[string]int, len(tokenRanks)),
	}

	type tokenRank struct {
		bytes []byte
		rank  int
	}
	sorted := make([]tokenRank, 0, len(tokenRanks))
	for b, r := range tokenRanks {
		sorted = append(sorted, tokenRank{[]byte(b), r})
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].rank < sorted[j].rank
	})

	for id, tr := range sorted {
		v.tokens[id] = Token{Bytes: tr.bytes, Rank: tr.rank}
		v.byteToID[string(tr.bytes)] = id
		if len(tr.bytes) > v.maxLen {
			v.maxLen = len(tr.bytes)
		}
	}
	return v
}

// Size returns the number of distinct tokens in the vocabulary.
func (v *Vocabulary) Size() int { return len(v.tokens) }

// MaxLen returns the length in bytes of the longest token.
func (v *Vocabulary) MaxLen() int { return v.maxLen }

// GetToken returns the token for id.
func (v *Vocabulary) GetToken(id int) (Token, bool) {
	if id < 0 || id >= len(v.tokens) {
		return Token{}, false
	}
	return v.tokens[id], true
}

// GetID returns the ID for a fragment's exact bytes.
func (v *Vocabulary) GetID(frag []byte) (int, bool) {
	id, ok := v.byteToID[string(frag)]
	return id, ok
}

// Decode concatenates the byte fragments named by ids.
func (v *Vocabulary) Decode(ids []int) []byte {
	total := 0
	for _, id := range ids {
		if id >= 0 && id < len(v.tokens) {
			total += len(v.tokens[id].Bytes)
		}
	}
	out := make([]byte, 0, total)
	for _, id := range ids {
		if id >= 0 && id < len(v.tokens) {
			out = append(out, v.tokens[id].Bytes...)
		}
	}
	return out
}

// AllTokens returns every fragment's bytes and assigned ID.
func (v *Vocabulary) AllTokens() map[string]int {
	out := make(map[string]int, len(v.tokens))
	for id, tok := range v.tokens {
		out[string(tok.Bytes)] = id
	}
	return out
}

// singleBytes builds a rank map covering every possible byte value, used
// as the fallback tier beneath any multi-byte fragment so Encode never
// gets stuck on an input byte no fragment covers.
func singleBytes(startRank int) map[string]int {
	out := make(map[string]int, 256)
	for i := 0; i < 256; i++ {
		out[string([]byte{byte(i)})] = startRank + i
	}
	return out
}

// Train extends a single-byte vocabulary with the most frequent
// multi-byte substrings observed in sample, using repeated pairwise
// merges exactly as the teacher's bpe.Train does, so a caller with a
// representative batch of read names (rather than this package's fixed
// DefaultVocabulary) can build a tighter, corpus-specific table.
func Train(sample []byte, numMerges int) *Vocabulary {
	tokenRanks := singleBytes(0)

	ids := make([]int, len(sample))
	for i, b := range sample {
		ids[i] = int(b)
	}

	nextRank := 256
	for merge := 0; merge < numMerges; merge++ {
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

	return NewVocabulary(tokenRanks)
}
