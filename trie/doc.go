// Package trie implements the bit-sliced multi-language n-gram trie.
//
// Every key byte is split into groups of B bits (B in {2, 3, 4, 8}), most
// significant group first, and each group selects one child. A trie is
// built as a [MutableTrie], whose nodes live in index-addressed arenas, and
// converted with [Pack] into a [PackedTrie]: a read-only structure of three
// back-to-back arrays (full nodes, frequency records, terminal nodes) that
// is read through big-endian accessors and can therefore be served straight
// from a memory mapping.
//
// Full nodes carry a child bitmap, cumulative per-word population counts
// and the index of their first child. Children of one parent are a
// contiguous run in branch-value order, so the child for group value g is
// firstChild + rank(g). When none of a node's children has children of its
// own, the run is stored in the terminal array instead, which keeps only a
// frequency index per node. Terminal indices carry [TerminalMask].
package trie
