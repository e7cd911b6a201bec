package trie

import "strings"

// Entry is a key-value pair returned by rank queries and traversals.
type Entry struct {
	Key   string
	Value string
}

// Trie is a compressed prefix tree keyed by strings over the 58-symbol alphabet.
type Trie struct {
	root  *node
	nodes int // Allocated nodes, excluding the root
}

// New creates an empty trie.
func New() *Trie {
	return &Trie{root: &node{}}
}

// Len returns the number of stored keys.
func (t *Trie) Len() int {
	return t.root.count
}

// Nodes returns the number of nodes below the root.
func (t *Trie) Nodes() int {
	return t.nodes
}

// Put inserts or updates a key-value pair.
// Returns true if an existing key's value was overwritten.
func (t *Trie) Put(key, value string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}

	cur := t.root
	path := []*node{cur}
	pos := 0

	for pos < len(key) {
		rest := key[pos:]
		slot := symbolIndex(rest[0])
		child := cur.children[slot]

		if child == nil {
			cur.children[slot] = newLeaf(rest, value)
			t.nodes++
			incrementPath(path)
			return false, nil
		}

		matched := commonPrefixLen(rest, child.label)
		if matched == len(child.label) {
			pos += matched
			cur = child
			path = append(path, child)
			continue
		}

		// Split the child at the mismatch. The intermediate node takes over
		// the child's slot and inherits its count before this insertion.
		mid := &node{
			label: child.label[:matched],
			count: child.count,
		}
		child.label = child.label[matched:]
		mid.children[symbolIndex(child.label[0])] = child
		cur.children[slot] = mid
		t.nodes++
		path = append(path, mid)

		if matched == len(rest) {
			mid.value = value
			mid.terminal = true
		} else {
			mid.children[symbolIndex(rest[matched])] = newLeaf(rest[matched:], value)
			t.nodes++
		}
		incrementPath(path)
		return false, nil
	}

	if cur.terminal {
		cur.value = value
		return true, nil
	}
	cur.value = value
	cur.terminal = true
	incrementPath(path)
	return false, nil
}

// Get retrieves the value stored under key.
func (t *Trie) Get(key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	path := t.find(key)
	if path == nil {
		return "", false, nil
	}
	n := path[len(path)-1]
	if !n.terminal {
		return "", false, nil
	}
	return n.value, true, nil
}

// Remove deletes key. Returns true if the key existed.
func (t *Trie) Remove(key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	path := t.find(key)
	if path == nil || !path[len(path)-1].terminal {
		return false, nil
	}
	t.removeAt(path)
	return true, nil
}

// Select returns the n-th key (0-indexed) in lexicographic order.
func (t *Trie) Select(n int) (Entry, bool) {
	path, key, ok := t.locate(n)
	if !ok {
		return Entry{}, false
	}
	return Entry{Key: key, Value: path[len(path)-1].value}, true
}

// RemoveNth deletes the n-th key in lexicographic order and returns it.
func (t *Trie) RemoveNth(n int) (Entry, bool) {
	path, key, ok := t.locate(n)
	if !ok {
		return Entry{}, false
	}
	e := Entry{Key: key, Value: path[len(path)-1].value}
	t.removeAt(path)
	return e, true
}

// Walk calls fn for every stored key in lexicographic order until fn returns false.
func (t *Trie) Walk(fn func(key, value string) bool) {
	walk(t.root, nil, fn)
}

func walk(n *node, prefix []byte, fn func(key, value string) bool) bool {
	if n.terminal && !fn(string(prefix), n.value) {
		return false
	}
	for _, child := range n.children {
		if child == nil {
			continue
		}
		if !walk(child, append(prefix, child.label...), fn) {
			return false
		}
	}
	return true
}

// find returns the root path ending at the node whose key equals key exactly,
// or nil if the key ends inside an edge or leaves the tree.
func (t *Trie) find(key string) []*node {
	cur := t.root
	path := []*node{cur}
	pos := 0
	for pos < len(key) {
		child := cur.children[symbolIndex(key[pos])]
		if child == nil || !strings.HasPrefix(key[pos:], child.label) {
			return nil
		}
		pos += len(child.label)
		cur = child
		path = append(path, cur)
	}
	return path
}

// locate walks down by rank using subtree counts. It returns the root path to
// the n-th terminal node and that node's full key.
func (t *Trie) locate(n int) ([]*node, string, bool) {
	if n < 0 || n >= t.root.count {
		return nil, "", false
	}

	var sb strings.Builder
	cur := t.root
	path := []*node{cur}
	rank := n

	for {
		if cur.terminal {
			if rank == 0 {
				return path, sb.String(), true
			}
			rank--
		}

		var next *node
		for _, child := range cur.children {
			if child == nil {
				continue
			}
			if rank < child.count {
				next = child
				break
			}
			rank -= child.count
		}
		if next == nil {
			// Counts disagree with the structure.
			return nil, "", false
		}
		sb.WriteString(next.label)
		cur = next
		path = append(path, cur)
	}
}

// removeAt clears the terminal node at the end of path and restores the
// compression invariant on the way up.
func (t *Trie) removeAt(path []*node) {
	last := path[len(path)-1]
	last.value = ""
	last.terminal = false
	for _, n := range path {
		n.count--
	}
	t.compact(path)
}

// compact drops childless valueless nodes and merges valueless nodes with a
// single child into that child. The root is never removed or merged.
func (t *Trie) compact(path []*node) {
	for i := len(path) - 1; i > 0; i-- {
		n, parent := path[i], path[i-1]
		if n.terminal {
			return
		}
		slot := symbolIndex(n.label[0])
		switch n.numChildren() {
		case 0:
			parent.children[slot] = nil
			t.nodes--
		case 1:
			child := n.firstChild()
			child.label = n.label + child.label
			parent.children[slot] = child
			t.nodes--
			return
		default:
			return
		}
	}
}

func incrementPath(path []*node) {
	for _, n := range path {
		n.count++
	}
}
