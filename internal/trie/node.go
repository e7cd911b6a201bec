package trie

import "fmt"

const (
	// AlphabetSize is the number of distinct key symbols, 'A' through 'z'.
	AlphabetSize = 58

	firstSymbol = 'A'
	lastSymbol  = firstSymbol + AlphabetSize - 1
)

// node is a single vertex of the trie. It is owned by exactly one parent slot.
type node struct {
	label    string // Edge label from the parent; empty only for the root
	value    string
	terminal bool // Whether value holds a stored key's payload
	count    int  // Terminal nodes in this subtree, including this one
	children [AlphabetSize]*node
}

func newLeaf(label, value string) *node {
	return &node{
		label:    label,
		value:    value,
		terminal: true,
		count:    1,
	}
}

// symbolIndex maps a key byte to its child slot. The byte must be valid.
func symbolIndex(c byte) int {
	return int(c - firstSymbol)
}

// ValidateKey returns an error wrapping ErrInvalidKey if key has a byte outside the alphabet.
func ValidateKey(key string) error {
	for i := 0; i < len(key); i++ {
		if c := key[i]; c < firstSymbol || c > lastSymbol {
			return fmt.Errorf("%w: symbol %q at offset %d", ErrInvalidKey, c, i)
		}
	}
	return nil
}

// commonPrefixLen returns the length of the longest shared prefix of a and b.
func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func (n *node) numChildren() int {
	c := 0
	for _, child := range n.children {
		if child != nil {
			c++
		}
	}
	return c
}

func (n *node) firstChild() *node {
	for _, child := range n.children {
		if child != nil {
			return child
		}
	}
	return nil
}
