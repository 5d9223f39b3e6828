package trie

import (
	"math"

	"github.com/hupe1980/langid/freq"
	"github.com/hupe1980/langid/internal/container"
)

const (
	// MaxCount is the largest count a record can hold. Increments saturate.
	MaxCount = math.MaxUint32

	initialCapacity = 1 << 12
	noIndex         = 0
)

// Record is one language's count at a leaf.
type Record struct {
	Language uint32
	Count    uint32
	Stopgram bool
}

type mnode struct {
	children uint32 // 1 + first slot of the child block, noIndex if none
	records  uint32 // 1 + first record, noIndex if none
	leaf     bool
	stop     bool
}

type mrecord struct {
	Record
	next uint32 // 1 + next record, noIndex at the end
}

// MutableTrie is the construction-time trie.
//
// Nodes, child slots and records live in chunked arenas addressed by uint32
// indices, so growth never invalidates an index. A node gets a block of
// 2^BitsPerLevel child slots the first time it gains a child. Nothing is
// freed individually.
//
// MutableTrie is not safe for concurrent use.
type MutableTrie struct {
	cfg    Config
	levels []level
	fanout int

	nodes   *container.Chunked[mnode]
	slots   *container.Chunked[uint32]
	records *container.Chunked[mrecord]

	longestKey int
	leaves     int
}

// NewMutable creates an empty trie.
func NewMutable(cfg Config) (*MutableTrie, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &MutableTrie{
		cfg:     cfg,
		levels:  levels(cfg.BitsPerLevel),
		fanout:  1 << cfg.BitsPerLevel,
		nodes:   container.NewChunked[mnode](initialCapacity),
		slots:   container.NewChunked[uint32](initialCapacity),
		records: container.NewChunked[mrecord](initialCapacity),
	}
	t.nodes.Append(mnode{}) // root
	return t, nil
}

// Config returns the trie configuration.
func (t *MutableTrie) Config() Config { return t.cfg }

// LongestKey returns the length of the longest key stored so far, after
// normalization.
func (t *MutableTrie) LongestKey() int { return t.longestKey }

// NumLeaves returns the number of keys with at least one record.
func (t *MutableTrie) NumLeaves() int { return t.leaves }

// NumNodes returns the number of allocated nodes including the root.
func (t *MutableTrie) NumNodes() int { return t.nodes.Len() }

// NumRecords returns the number of frequency records.
func (t *MutableTrie) NumRecords() int { return t.records.Len() }

func (t *MutableTrie) child(n uint32, g uint8) uint32 {
	nd := t.nodes.At(n)
	if nd.children == noIndex {
		return noIndex
	}
	return *t.slots.At(nd.children - 1 + uint32(g))
}

func (t *MutableTrie) addChild(n uint32, g uint8) uint32 {
	nd := t.nodes.At(n)
	if nd.children == noIndex {
		base := uint32(t.slots.Len())
		for range t.fanout {
			t.slots.Append(noIndex)
		}
		nd.children = base + 1
	}
	c := t.nodes.Append(mnode{})
	t.slots.Set(nd.children-1+uint32(g), c)
	return c
}

// extend walks one key byte from n. With create set, missing nodes are
// allocated; otherwise noIndex is returned when the path does not exist.
// The root is never a child, so noIndex doubles as the failure value.
func (t *MutableTrie) extend(n uint32, b byte, create bool) uint32 {
	for _, lv := range t.levels {
		g := (b >> lv.shift) & lv.mask
		c := t.child(n, g)
		if c == noIndex {
			if !create {
				return noIndex
			}
			c = t.addChild(n, g)
		}
		n = c
	}
	return n
}

// walk returns the node for key, creating the path when create is set, and
// the normalized key length.
func (t *MutableTrie) walk(key []byte, create bool) (uint32, int) {
	n, length := uint32(0), 0
	for _, b := range key {
		if t.cfg.skip(b) {
			continue
		}
		n = t.extend(n, t.cfg.fold(b), create)
		if n == noIndex {
			return noIndex, length
		}
		length++
	}
	return n, length
}

// findRecord returns 1 + the index of lang's record at leaf n.
func (t *MutableTrie) findRecord(n uint32, lang uint32) uint32 {
	for r := t.nodes.At(n).records; r != noIndex; r = t.records.At(r - 1).next {
		if t.records.At(r-1).Language == lang {
			return r
		}
	}
	return noIndex
}

// upsert applies update to lang's record at leaf n, creating the record
// first if absent. It reports whether n became a leaf.
//
// With replace set the record's stop-gram flag is overwritten, otherwise a
// set flag sticks.
func (t *MutableTrie) upsert(n uint32, length int, lang uint32, stop, replace bool, update func(old uint32) uint32) bool {
	nd := t.nodes.At(n)
	newLeaf := !nd.leaf
	if newLeaf {
		nd.leaf = true
		t.leaves++
		t.longestKey = max(t.longestKey, length)
	}

	if r := t.findRecord(n, lang); r != noIndex {
		rec := t.records.At(r - 1)
		rec.Count = update(rec.Count)
		if replace {
			rec.Stopgram = stop
		} else {
			rec.Stopgram = rec.Stopgram || stop
		}
	} else {
		idx := t.records.Append(mrecord{
			Record: Record{Language: lang, Count: update(0), Stopgram: stop},
			next:   nd.records,
		})
		nd.records = idx + 1
	}

	nd.stop = false
	for r := nd.records; r != noIndex; r = t.records.At(r - 1).next {
		nd.stop = nd.stop || t.records.At(r-1).Stopgram
	}
	return newLeaf
}

// Insert stores count for lang under key, replacing any existing record for
// that language. It reports whether a new leaf was created.
func (t *MutableTrie) Insert(key []byte, lang uint32, count uint32, stopgram bool) bool {
	n, length := t.walk(key, true)
	if length == 0 {
		return false
	}
	return t.upsert(n, length, lang, stopgram, true, func(uint32) uint32 { return count })
}

// Increment adds delta to lang's count under key, saturating at MaxCount.
// It reports whether a new leaf was created.
func (t *MutableTrie) Increment(key []byte, lang uint32, delta uint32, stopgram bool) bool {
	n, length := t.walk(key, true)
	if length == 0 {
		return false
	}
	return t.upsert(n, length, lang, stopgram, false, func(old uint32) uint32 {
		return saturatingAdd(old, delta)
	})
}

// IncrementExtensions adds delta to lang's count for every prefix of key
// whose stored length n satisfies fromLen <= n <= toLen, in a single walk.
// Lengths count stored bytes, so skipped spaces do not count.
func (t *MutableTrie) IncrementExtensions(key []byte, fromLen, toLen int, lang uint32, delta uint32) {
	fromLen = max(fromLen, 1)
	n, length := uint32(0), 0
	for _, b := range key {
		if length >= toLen {
			break
		}
		if t.cfg.skip(b) {
			continue
		}
		n = t.extend(n, t.cfg.fold(b), true)
		length++
		if length >= fromLen {
			t.upsert(n, length, lang, false, false, func(old uint32) uint32 {
				return saturatingAdd(old, delta)
			})
		}
	}
}

// Lookup returns the records stored under key.
func (t *MutableTrie) Lookup(key []byte) ([]Record, bool) {
	n, length := t.walk(key, false)
	if n == noIndex || length == 0 || !t.nodes.At(n).leaf {
		return nil, false
	}
	return t.recordsOf(n), true
}

func (t *MutableTrie) recordsOf(n uint32) []Record {
	var out []Record
	for r := t.nodes.At(n).records; r != noIndex; r = t.records.At(r - 1).next {
		out = append(out, t.records.At(r-1).Record)
	}
	return out
}

// Enumerate calls fn for every leaf in depth-first, branch-value order with
// the leaf's normalized key and records. The key slice is reused between
// calls. Enumeration stops when fn returns false.
func (t *MutableTrie) Enumerate(fn func(key []byte, records []Record) bool) {
	t.enumerateNodes(func(key []byte, n uint32) bool {
		return fn(key, t.recordsOf(n))
	})
}

func (t *MutableTrie) enumerateNodes(fn func(key []byte, n uint32) bool) {
	key := make([]byte, 0, max(t.longestKey, 16))
	t.enumerate(0, 0, 0, key, fn)
}

func (t *MutableTrie) enumerate(n uint32, lvl int, acc byte, key []byte, fn func([]byte, uint32) bool) bool {
	if lvl == len(t.levels) {
		key = append(key, acc)
		if t.nodes.At(n).leaf && !fn(key, n) {
			return false
		}
		lvl, acc = 0, 0
	}
	nd := t.nodes.At(n)
	if nd.children == noIndex {
		return true
	}
	lv := t.levels[lvl]
	width := bitsOf(lv.mask)
	for g := 0; g <= int(lv.mask); g++ {
		c := *t.slots.At(nd.children - 1 + uint32(g))
		if c == noIndex {
			continue
		}
		if !t.enumerate(c, lvl+1, acc<<width|byte(g), key, fn) {
			return false
		}
	}
	return true
}

func bitsOf(mask uint8) uint8 {
	var w uint8
	for ; mask != 0; mask >>= 1 {
		w++
	}
	return w
}

// visitRecords calls fn with a pointer to every record of every leaf.
func (t *MutableTrie) visitRecords(fn func(key []byte, r *Record)) {
	t.enumerateNodes(func(key []byte, n uint32) bool {
		for r := t.nodes.At(n).records; r != noIndex; r = t.records.At(r - 1).next {
			fn(key, &t.records.At(r-1).Record)
		}
		return true
	})
}

// ScaleFrequencies replaces every count with the value fn returns for it.
func (t *MutableTrie) ScaleFrequencies(fn func(key []byte, r Record) uint32) {
	t.visitRecords(func(key []byte, r *Record) {
		r.Count = fn(key, *r)
	})
}

// ScaleByTrainingSize converts raw counts into magnitudes scaled by 1e9
// relative to each language's training byte count. Records of languages
// without a total are left unchanged.
func (t *MutableTrie) ScaleByTrainingSize(totals []uint64) {
	t.ScaleFrequencies(func(_ []byte, r Record) uint32 {
		if int(r.Language) >= len(totals) {
			return r.Count
		}
		return freq.ScaleCount(uint64(r.Count), totals[r.Language])
	})
}

// Smooth raises every nonzero count below minimum to minimum so that rare
// n-grams survive quantization. Stop-gram records are left unchanged.
func (t *MutableTrie) Smooth(minimum uint32) {
	t.ScaleFrequencies(func(_ []byte, r Record) uint32 {
		if r.Stopgram || r.Count == 0 || r.Count >= minimum {
			return r.Count
		}
		return minimum
	})
}

func saturatingAdd(a, b uint32) uint32 {
	if s := a + b; s >= a {
		return s
	}
	return MaxCount
}
