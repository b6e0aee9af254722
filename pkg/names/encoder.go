package names

// Encoder performs greedy longest-match tokenization against a
// Vocabulary, backed by a fastTrie for O(n) throughput regardless of
// vocabulary size.
type Encoder struct {
	vocab *Vocabulary
	trie  *fastTrie
}

// NewEncoder builds an Encoder for vocab.
func NewEncoder(vocab *Vocabulary) *Encoder {
	trie := newFastTrie()
	for frag, id := range vocab.AllTokens() {
		trie.insert([]byte(frag), id)
	}
	return &Encoder{vocab: vocab, trie: trie}
}

// Encode tokenizes text into a sequence of vocabulary IDs.
func (e *Encoder) Encode(text []byte) []int {
	if len(text) == 0 {
		return nil
	}

	out := make([]int, 0, len(text)/3+1)
	pos := 0
	for pos < len(text) {
		matchLen, tokenID := e.trie.longestMatch(text[pos:])
		if matchLen == 0 {
			// DefaultVocabulary always covers every single byte, so this
			// only fires for a caller-supplied vocabulary with gaps.
			if id, ok := e.vocab.GetID(text[pos : pos+1]); ok {
				out = append(out, id)
			} else {
				out = append(out, int(text[pos]))
			}
			pos++
			continue
		}
		out = append(out, tokenID)
		pos += matchLen
	}
	return out
}

// Decode reassembles token IDs into their original bytes.
func (e *Encoder) Decode(ids []int) []byte {
	return e.vocab.Decode(ids)
}

// Vocabulary returns the vocabulary this Encoder tokenizes against.
func (e *Encoder) Vocabulary() *Vocabulary {
	return e.vocab
}
