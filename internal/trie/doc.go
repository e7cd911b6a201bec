// Package trie implements a compressed prefix tree (radix trie) with
// order-statistics support.
//
// Each edge carries a multi-symbol label, so chains of single-child nodes
// collapse into one edge. Every node tracks how many stored keys live in its
// subtree, which lets Select and RemoveNth find the n-th key in lexicographic
// order by skipping whole subtrees instead of walking them.
//
// Layout:
//
//	root ("")
//	 ├── "App"      (value)
//	 │    └── "le"  (value)       -> "Apple"
//	 └── "Banana"   (value)
//
// Key components:
//   - node: fixed 58-slot child array indexed by symbol, edge label, value, count
//   - Put/Get/Remove: exact-key operations with split and merge
//   - Select/RemoveNth: rank queries driven by subtree counts
//
// A Trie is not safe for concurrent use; callers must serialize access.
package trie
