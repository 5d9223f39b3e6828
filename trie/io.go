package trie

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"github.com/hupe1980/langid/internal/hash"
)

// HeaderSize is the size of the packed trie header.
const HeaderSize = 64

const (
	// Version is the packed trie format version written by WriteTo.
	Version    uint8 = 1
	minVersion uint8 = 1
	maxVersion uint8 = 1
)

var signature = [8]byte{'M', 'u', 'l', 'T', 'r', 'i', 'e', 0}

// header layout (big-endian):
//
//	0   signature [8]
//	8   version u8
//	9   bits per level u8
//	10  ignore whitespace u8
//	11  case mode u8
//	12  node count u32
//	16  max key length u32
//	20  frequency count u32
//	24  terminal count u32
//	28  checksum u32 (CRC32C of the three arrays, 0 if absent)
//	32  reserved
const (
	offVersion   = 8
	offBits      = 9
	offIgnoreWS  = 10
	offCaseMode  = 11
	offNodes     = 12
	offMaxKeyLen = 16
	offFreqs     = 20
	offTerms     = 24
	offChecksum  = 28
)

// Size returns the serialized size in bytes.
func (t *PackedTrie) Size() int {
	return HeaderSize + len(t.nodes) + len(t.freqs) + len(t.terms)
}

// Checksum returns the CRC32C of the node, frequency and terminal arrays.
func (t *PackedTrie) Checksum() uint32 { return t.checksum }

func (t *PackedTrie) header() []byte {
	h := make([]byte, HeaderSize)
	copy(h, signature[:])
	h[offVersion] = Version
	h[offBits] = byte(t.cfg.BitsPerLevel)
	if t.cfg.IgnoreWhitespace {
		h[offIgnoreWS] = 1
	}
	h[offCaseMode] = byte(t.cfg.CaseMode)
	binary.BigEndian.PutUint32(h[offNodes:], t.numNodes)
	binary.BigEndian.PutUint32(h[offMaxKeyLen:], t.maxKeyLen)
	binary.BigEndian.PutUint32(h[offFreqs:], t.numFreqs)
	binary.BigEndian.PutUint32(h[offTerms:], t.numTerms)
	binary.BigEndian.PutUint32(h[offChecksum:], t.checksum)
	return h
}

// WriteTo writes the header followed by the node, frequency and terminal
// arrays.
func (t *PackedTrie) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, part := range [][]byte{t.header(), t.nodes, t.freqs, t.terms} {
		n, err := w.Write(part)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ParseOption configures Parse.
type ParseOption func(*parseOptions)

type parseOptions struct {
	bitsPerLevel   int
	skipChecksum   bool
	skipValidation bool
	trustChecksum  bool
}

// WithBitsPerLevel makes Parse fail unless the trie was built with bits.
// Zero accepts any supported width.
func WithBitsPerLevel(bits int) ParseOption {
	return func(o *parseOptions) { o.bitsPerLevel = bits }
}

// SkipChecksum disables checksum verification.
func SkipChecksum() ParseOption {
	return func(o *parseOptions) { o.skipChecksum = true }
}

// SkipValidation disables the structural link check. Only use it for data
// that was verified before, e.g. by checksum.
func SkipValidation() ParseOption {
	return func(o *parseOptions) { o.skipValidation = true }
}

// TrustChecksum skips the structural link check when a stored checksum was
// verified. Tries without a checksum are still validated.
func TrustChecksum() ParseOption {
	return func(o *parseOptions) { o.trustChecksum = true }
}

// Parse overlays a packed trie onto data and returns the number of bytes it
// occupies. The trie keeps referencing data, which must stay valid and
// unmodified for the trie's lifetime.
func Parse(data []byte, opts ...ParseOption) (*PackedTrie, int, error) {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}

	if len(data) < HeaderSize {
		return nil, 0, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderSize, len(data))
	}
	h := data[:HeaderSize]
	if !bytes.Equal(h[:len(signature)], signature[:]) {
		return nil, 0, ErrSignature
	}
	if v := h[offVersion]; v < minVersion || v > maxVersion {
		return nil, 0, &VersionError{Version: v, Min: minVersion, Max: maxVersion}
	}

	cfg := Config{
		BitsPerLevel:     int(h[offBits]),
		IgnoreWhitespace: h[offIgnoreWS] != 0,
		CaseMode:         CaseMode(h[offCaseMode]),
	}
	if o.bitsPerLevel != 0 && o.bitsPerLevel != cfg.BitsPerLevel {
		return nil, 0, &BitsPerLevelError{Want: o.bitsPerLevel, Got: cfg.BitsPerLevel}
	}
	if err := cfg.Validate(); err != nil {
		return nil, 0, err
	}

	t := &PackedTrie{
		cfg:       cfg,
		levels:    levels(cfg.BitsPerLevel),
		layout:    newNodeLayout(cfg.BitsPerLevel),
		numNodes:  binary.BigEndian.Uint32(h[offNodes:]),
		maxKeyLen: binary.BigEndian.Uint32(h[offMaxKeyLen:]),
		numFreqs:  binary.BigEndian.Uint32(h[offFreqs:]),
		numTerms:  binary.BigEndian.Uint32(h[offTerms:]),
		checksum:  binary.BigEndian.Uint32(h[offChecksum:]),
	}
	if t.numNodes == 0 || t.numNodes >= uint32(TerminalMask) || t.numTerms >= uint32(TerminalMask) {
		return nil, 0, fmt.Errorf("%w: node count %d", ErrCorrupt, t.numNodes)
	}

	nodesLen := uint64(t.numNodes) * uint64(t.layout.size)
	freqsLen := uint64(t.numFreqs) * 4
	termsLen := uint64(t.numTerms) * terminalSize
	size := uint64(HeaderSize) + nodesLen + freqsLen + termsLen
	if uint64(len(data)) < size {
		return nil, 0, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, size, len(data))
	}

	off := uint64(HeaderSize)
	t.nodes = data[off : off+nodesLen : off+nodesLen]
	off += nodesLen
	t.freqs = data[off : off+freqsLen : off+freqsLen]
	off += freqsLen
	t.terms = data[off : off+termsLen : off+termsLen]

	verified := false
	if t.checksum != 0 && !o.skipChecksum {
		if got := hash.Sections(t.nodes, t.freqs, t.terms); got != t.checksum {
			return nil, 0, fmt.Errorf("%w: stored %08x, computed %08x", ErrChecksum, t.checksum, got)
		}
		verified = true
	}
	if !o.skipValidation && !(o.trustChecksum && verified) {
		if err := t.validate(); err != nil {
			return nil, 0, err
		}
	}
	return t, int(size), nil
}

// validate checks that every link stays inside its array and points past
// its node, so lookups and enumeration on damaged data terminate.
func (t *PackedTrie) validate() error {
	for i := range t.numNodes {
		off := int(i) * t.layout.size
		first := NodeIndex(t.u32(t.nodes, off))
		fi := t.u32(t.nodes, off+4)
		if fi != noFrequencies && fi >= t.numFreqs {
			return fmt.Errorf("%w: node %d frequency index %d", ErrCorrupt, i, fi)
		}
		var children int
		for w := range t.layout.words {
			if int(t.nodes[off+t.layout.popcount+w]) != children {
				return fmt.Errorf("%w: node %d popcount", ErrCorrupt, i)
			}
			children += bits.OnesCount32(t.u32(t.nodes, off+t.layout.bitmap+4*w))
		}
		if children == 0 {
			continue
		}
		limit, base := t.numNodes, uint32(first)
		if first&TerminalMask != 0 {
			limit, base = t.numTerms, uint32(first&^TerminalMask)
		} else if base <= i {
			// children always follow their parent, so a backward link is a cycle
			return fmt.Errorf("%w: node %d links back to node %d", ErrCorrupt, i, base)
		}
		if uint64(base)+uint64(children) > uint64(limit) {
			return fmt.Errorf("%w: node %d children out of range", ErrCorrupt, i)
		}
	}
	for i := range t.numTerms {
		if fi := t.u32(t.terms, int(i)*terminalSize); fi != noFrequencies && fi >= t.numFreqs {
			return fmt.Errorf("%w: terminal %d frequency index %d", ErrCorrupt, i, fi)
		}
	}
	return nil
}
