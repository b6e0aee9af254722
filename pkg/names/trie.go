package names

// fastTrie is a byte trie sized for O(1) child lookup at every node,
// used for the greedy longest-fragment match Encoder needs.
type fastTrie struct {
	root *fastTrieNode
}

type fastTrieNode struct {
	children [256]*fastTrieNode
	tokenID  int
	isToken  bool
}

func newFastTrie() *fastTrie {
	return &fastTrie{root: &fastTrieNode{tokenID: -1}}
}

func (t *fastTrie) insert(frag []byte, id int) {
	node := t.root
	for _, b := range frag {
		if node.children[b] == nil {
			node.children[b] = &fastTrieNode{tokenID: -1}
		}
		node = node.children[b]
	}
	node.tokenID = id
	node.isToken = true
}

// longestMatch returns the length and ID of the longest fragment in the
// trie that prefixes text, or (0, -1) if even a single byte isn't covered.
func (t *fastTrie) longestMatch(text []byte) (int, int) {
	node := t.root
	bestLen := 0
	bestID := -1

	for i, b := range text {
		child := node.children[b]
		if child == nil {
			break
		}
		node = child
		if node.isToken {
			bestLen = i + 1
			bestID = node.tokenID
		}
	}
	return bestLen, bestID
}
