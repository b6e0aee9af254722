package names

// readNameFragments lists the fixed strings that recur across the major
// read-name conventions (Illumina's colon-delimited instrument/run/tile
// coordinates, SRA's run-accession-dot-index form, and the /1, /2 mate
// suffixes both still carry for legacy tooling). Rank order here doubles
// as frequency priority: fragments expected to dominate real read-name
// streams get the lowest IDs.
var readNameFragments = []string{
	":", ".", "/1", "/2", "/3", " ", "#", "@",
	"_", "-", "=",
	"SRR", "ERR", "DRR", "SRX", "ERX",
	"HWI-", "HISEQ", "MISEQ", "NOVASEQ", "NEXTSEQ", "M0", "K0",
	"length=", "read=", "barcode=", "YM", "N:0:",
	"00", "000", "0000",
}

// DefaultVocabulary returns the package's built-in read-name tokenizer
// vocabulary: every raw byte value (so Encode never stalls on unexpected
// input) plus the common read-name fragments above, ranked ahead of the
// single bytes they're built from. The greedy longest-match trie prefers a
// multi-byte fragment over its single bytes because it is longer; rank only
// decides token IDs.
func DefaultVocabulary() *Vocabulary {
	ranks := make(map[string]int, 256+len(readNameFragments))
	for i, frag := range readNameFragments {
		ranks[frag] = i
	}
	base := len(readNameFragments)
	for b, r := range singleBytes(base) {
		if _, exists := ranks[b]; !exists {
			ranks[b] = r
		}
	}
	return NewVocabulary(ranks)
}
