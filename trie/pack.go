package trie

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"slices"

	"github.com/hupe1980/langid/freq"
	"github.com/hupe1980/langid/internal/hash"
)

// packCounts is the result of the pre-scan.
type packCounts struct {
	nodes     uint32
	terminals uint32
	records   uint32
}

// Pack converts a mutable trie into its packed form.
//
// A pre-scan sizes the node, record and terminal arrays exactly, then a
// depth-first copy fills them. Counts are taken as scaled magnitudes
// (probability × 1e9) and quantized with [freq.Encode]. Each leaf's records
// are ordered regular records first, then stop-grams, each by language ID,
// and the final record carries the last bit.
func Pack(m *MutableTrie) (*PackedTrie, error) {
	counts, err := m.prescan()
	if err != nil {
		return nil, err
	}

	t := &PackedTrie{
		cfg:       m.cfg,
		levels:    m.levels,
		layout:    newNodeLayout(m.cfg.BitsPerLevel),
		numNodes:  counts.nodes,
		numFreqs:  counts.records,
		numTerms:  counts.terminals,
		maxKeyLen: uint32(m.longestKey),
	}
	t.nodes = make([]byte, int(counts.nodes)*t.layout.size)
	t.freqs = make([]byte, int(counts.records)*4)
	t.terms = make([]byte, int(counts.terminals)*terminalSize)

	p := &packer{m: m, t: t, nextNode: 1}
	if err := p.fill(0, Root); err != nil {
		return nil, err
	}
	if p.nextNode != counts.nodes || p.nextTerm != counts.terminals || p.nextFreq != counts.records {
		return nil, fmt.Errorf("%w: pre-scan disagrees with copy", ErrCorrupt)
	}
	t.checksum = hash.Sections(t.nodes, t.freqs, t.terms)
	return t, nil
}

// hasChildren reports whether n has at least one child.
func (m *MutableTrie) hasChildren(n uint32) bool {
	nd := m.nodes.At(n)
	if nd.children == noIndex {
		return false
	}
	for g := range m.fanout {
		if *m.slots.At(nd.children - 1 + uint32(g)) != noIndex {
			return true
		}
	}
	return false
}

// childList returns n's children in branch-value order.
func (m *MutableTrie) childList(n uint32, buf []branch) []branch {
	buf = buf[:0]
	nd := m.nodes.At(n)
	if nd.children == noIndex {
		return buf
	}
	for g := range m.fanout {
		if c := *m.slots.At(nd.children - 1 + uint32(g)); c != noIndex {
			buf = append(buf, branch{value: uint8(g), node: c})
		}
	}
	return buf
}

type branch struct {
	value uint8
	node  uint32
}

// childrenTerminal reports whether every child of n is childless. Such a
// run is stored in the terminal array.
func (m *MutableTrie) childrenTerminal(children []branch) bool {
	for _, c := range children {
		if m.hasChildren(c.node) {
			return false
		}
	}
	return true
}

func (m *MutableTrie) prescan() (packCounts, error) {
	c := packCounts{nodes: 1}
	var buf []branch
	stack := []uint32{0}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for r := m.nodes.At(n).records; r != noIndex; r = m.records.At(r - 1).next {
			if l := m.records.At(r - 1).Language; l > freq.MaxLanguageID {
				return c, fmt.Errorf("%w: %d", ErrLanguageID, l)
			}
			c.records++
		}
		children := m.childList(n, buf)
		if len(children) == 0 {
			continue
		}
		if m.childrenTerminal(children) {
			c.terminals += uint32(len(children))
		} else {
			c.nodes += uint32(len(children))
		}
		for _, ch := range children {
			stack = append(stack, ch.node)
		}
		buf = children
	}
	if c.nodes >= uint32(TerminalMask) || c.terminals >= uint32(TerminalMask) {
		return c, ErrTooLarge
	}
	return c, nil
}

type packer struct {
	m        *MutableTrie
	t        *PackedTrie
	nextNode uint32
	nextTerm uint32
	nextFreq uint32
	recs     []Record
}

// writeRecords appends n's records and returns the index of the first one.
func (p *packer) writeRecords(n uint32) uint32 {
	nd := p.m.nodes.At(n)
	if nd.records == noIndex {
		return noFrequencies
	}
	p.recs = p.recs[:0]
	for r := nd.records; r != noIndex; r = p.m.records.At(r - 1).next {
		p.recs = append(p.recs, p.m.records.At(r-1).Record)
	}
	slices.SortFunc(p.recs, func(a, b Record) int {
		if a.Stopgram != b.Stopgram {
			if a.Stopgram {
				return 1
			}
			return -1
		}
		return int(a.Language) - int(b.Language)
	})

	first := p.nextFreq
	for i, r := range p.recs {
		f := freq.Encode(r.Count, r.Language, i == len(p.recs)-1, r.Stopgram)
		binary.BigEndian.PutUint32(p.t.freqs[int(p.nextFreq)*4:], uint32(f))
		p.nextFreq++
	}
	return first
}

func (p *packer) fill(n uint32, at NodeIndex) error {
	fi := p.writeRecords(n)

	if at&TerminalMask != 0 {
		if p.m.hasChildren(n) {
			return fmt.Errorf("%w: terminal node with children", ErrCorrupt)
		}
		binary.BigEndian.PutUint32(p.t.terms[int(at&^TerminalMask)*terminalSize:], fi)
		return nil
	}

	layout := p.t.layout
	off := int(at) * layout.size
	node := p.t.nodes[off : off+layout.size]
	binary.BigEndian.PutUint32(node[4:], fi)

	children := p.m.childList(n, nil)
	if len(children) == 0 {
		return nil
	}

	var first NodeIndex
	if p.m.childrenTerminal(children) {
		first = TerminalMask | NodeIndex(p.nextTerm)
		p.nextTerm += uint32(len(children))
	} else {
		first = NodeIndex(p.nextNode)
		p.nextNode += uint32(len(children))
	}
	binary.BigEndian.PutUint32(node, uint32(first))

	words := make([]uint32, layout.words)
	for _, c := range children {
		words[c.value>>5] |= 1 << (c.value & 31)
	}
	var running int
	for w, word := range words {
		binary.BigEndian.PutUint32(node[layout.bitmap+4*w:], word)
		node[layout.popcount+w] = byte(running)
		running += bits.OnesCount32(word)
	}

	for i, c := range children {
		if err := p.fill(c.node, first+NodeIndex(i)); err != nil {
			return err
		}
	}
	return nil
}
