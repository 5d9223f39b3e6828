package trie

import (
	"encoding/binary"
	"math/bits"

	"github.com/hupe1980/langid/freq"
)

// NodeIndex addresses a packed node. Indices with TerminalMask set point
// into the terminal array.
type NodeIndex uint32

const (
	// Root is the index of the root node.
	Root NodeIndex = 0

	// TerminalMask marks an index into the terminal array.
	TerminalMask NodeIndex = 1 << 31

	// NoNode is returned when a key cannot be extended.
	NoNode NodeIndex = ^NodeIndex(0)

	// noFrequencies marks a full node without records.
	noFrequencies = ^uint32(0)

	terminalSize = 4
)

// IsTerminal reports whether n points into the terminal array.
func (n NodeIndex) IsTerminal() bool { return n&TerminalMask != 0 }

// nodeLayout describes the byte layout of one full node:
//
//	firstChild u32 | freqIndex u32 | bitmap [words]u32 | popcount [words]u8, padded to 4
type nodeLayout struct {
	words    int
	bitmap   int
	popcount int
	size     int
}

func newNodeLayout(bitsPerLevel int) nodeLayout {
	words := max(1, (1<<bitsPerLevel)/32)
	return nodeLayout{
		words:    words,
		bitmap:   8,
		popcount: 8 + 4*words,
		size:     8 + 4*words + (words+3)&^3,
	}
}

// PackedTrie is the read-only query-time trie. All arrays are byte views,
// so a PackedTrie parsed from a memory mapping reads straight from the
// mapped pages. It is safe for concurrent use.
type PackedTrie struct {
	cfg    Config
	levels []level
	layout nodeLayout

	nodes []byte
	freqs []byte
	terms []byte

	numNodes  uint32
	numFreqs  uint32
	numTerms  uint32
	maxKeyLen uint32
	checksum  uint32
}

// Config returns the configuration the trie was built with.
func (t *PackedTrie) Config() Config { return t.cfg }

// IgnoresWhitespace reports whether space bytes are dropped from keys.
func (t *PackedTrie) IgnoresWhitespace() bool { return t.cfg.IgnoreWhitespace }

// MaxKeyLen returns the longest key length stored.
func (t *PackedTrie) MaxKeyLen() int { return int(t.maxKeyLen) }

// NumNodes returns the number of full nodes, the root included.
func (t *PackedTrie) NumNodes() int { return int(t.numNodes) }

// NumFrequencies returns the number of frequency records.
func (t *PackedTrie) NumFrequencies() int { return int(t.numFreqs) }

// NumTerminals returns the number of childless terminal nodes.
func (t *PackedTrie) NumTerminals() int { return int(t.numTerms) }

func (t *PackedTrie) u32(b []byte, off int) uint32 {
	return binary.BigEndian.Uint32(b[off:])
}

func (t *PackedTrie) nodeOffset(n NodeIndex) int { return int(n) * t.layout.size }

func (t *PackedTrie) firstChild(n NodeIndex) NodeIndex {
	return NodeIndex(t.u32(t.nodes, t.nodeOffset(n)))
}

// ExtendKey follows byte b from node n. Spaces are skipped (n is returned
// unchanged) when the trie ignores whitespace. Terminal nodes have no
// children and cannot be extended.
func (t *PackedTrie) ExtendKey(n NodeIndex, b byte) (NodeIndex, bool) {
	if t.cfg.skip(b) {
		return n, true
	}
	return t.extend(n, t.cfg.fold(b))
}

func (t *PackedTrie) extend(n NodeIndex, b byte) (NodeIndex, bool) {
	for _, lv := range t.levels {
		if n&TerminalMask != 0 {
			return NoNode, false
		}
		off := t.nodeOffset(n)
		g := (b >> lv.shift) & lv.mask
		w := int(g >> 5)
		word := t.u32(t.nodes, off+t.layout.bitmap+4*w)
		bit := uint32(1) << (g & 31)
		if word&bit == 0 {
			return NoNode, false
		}
		rank := uint32(t.nodes[off+t.layout.popcount+w]) + uint32(bits.OnesCount32(word&(bit-1)))
		n = NodeIndex(t.u32(t.nodes, off)) + NodeIndex(rank)
	}
	return n, true
}

// FrequencyIndex returns the index of n's first frequency record.
func (t *PackedTrie) FrequencyIndex(n NodeIndex) (uint32, bool) {
	var fi uint32
	if n&TerminalMask != 0 {
		fi = t.u32(t.terms, int(n&^TerminalMask)*terminalSize)
	} else {
		fi = t.u32(t.nodes, t.nodeOffset(n)+4)
	}
	return fi, fi != noFrequencies
}

// IsLeaf reports whether a key ends at n.
func (t *PackedTrie) IsLeaf(n NodeIndex) bool {
	_, ok := t.FrequencyIndex(n)
	return ok
}

// FrequencyAt returns the i-th record of the frequency array.
func (t *PackedTrie) FrequencyAt(i uint32) freq.Frequency {
	return freq.Frequency(t.u32(t.freqs, int(i)*4))
}

// Frequencies returns the records of leaf n, ending with the record that
// carries the last bit.
func (t *PackedTrie) Frequencies(n NodeIndex) []freq.Frequency {
	i, ok := t.FrequencyIndex(n)
	if !ok {
		return nil
	}
	var out []freq.Frequency
	for ; i < t.numFreqs; i++ {
		f := t.FrequencyAt(i)
		out = append(out, f)
		if f.IsLast() {
			break
		}
	}
	return out
}

// Find returns the leaf for key.
func (t *PackedTrie) Find(key []byte) (NodeIndex, bool) {
	n, ok := Root, false
	length := 0
	for _, b := range key {
		if t.cfg.skip(b) {
			continue
		}
		if n, ok = t.extend(n, t.cfg.fold(b)); !ok {
			return NoNode, false
		}
		length++
	}
	if length == 0 || !t.IsLeaf(n) {
		return NoNode, false
	}
	return n, true
}

// Enumerate calls fn for every leaf in depth-first, branch-value order. The
// key slice is reused between calls. Enumeration stops when fn returns
// false.
func (t *PackedTrie) Enumerate(fn func(key []byte, n NodeIndex) bool) {
	if t.numNodes == 0 {
		return
	}
	key := make([]byte, 0, max(int(t.maxKeyLen), 16))
	t.enumerate(Root, 0, 0, key, fn)
}

func (t *PackedTrie) enumerate(n NodeIndex, lvl int, acc byte, key []byte, fn func([]byte, NodeIndex) bool) bool {
	if lvl == len(t.levels) {
		key = append(key, acc)
		if t.IsLeaf(n) && !fn(key, n) {
			return false
		}
		lvl, acc = 0, 0
	}
	if n&TerminalMask != 0 {
		return true
	}
	off := t.nodeOffset(n)
	first := t.firstChild(n)
	lv := t.levels[lvl]
	width := bitsOf(lv.mask)
	rank := NodeIndex(0)
	for g := 0; g <= int(lv.mask); g++ {
		word := t.u32(t.nodes, off+t.layout.bitmap+4*(g>>5))
		if word&(1<<(g&31)) == 0 {
			continue
		}
		if !t.enumerate(first+rank, lvl+1, acc<<width|byte(g), key, fn) {
			return false
		}
		rank++
	}
	return true
}

// Unpack rebuilds a mutable trie. Counts are the decoded magnitudes, so a
// pack of the result reproduces the same frequency words.
func (t *PackedTrie) Unpack() (*MutableTrie, error) {
	m, err := NewMutable(t.cfg)
	if err != nil {
		return nil, err
	}
	t.Enumerate(func(key []byte, n NodeIndex) bool {
		for _, f := range t.Frequencies(n) {
			m.Insert(key, f.LanguageID(), f.Decode(), f.IsStopgram())
		}
		return true
	})
	return m, nil
}
