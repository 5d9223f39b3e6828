package trie

import (
	"fmt"
	"io"
)

// Stats summarizes a packed trie.
type Stats struct {
	BitsPerLevel     int
	IgnoreWhitespace bool
	CaseMode         CaseMode
	Nodes            int
	Terminals        int
	Frequencies      int
	Leaves           int
	Stopgrams        int
	MaxKeyLen        int
	Bytes            int
}

// Stats walks the trie and returns its statistics.
func (t *PackedTrie) Stats() Stats {
	s := Stats{
		BitsPerLevel:     t.cfg.BitsPerLevel,
		IgnoreWhitespace: t.cfg.IgnoreWhitespace,
		CaseMode:         t.cfg.CaseMode,
		Nodes:            int(t.numNodes),
		Terminals:        int(t.numTerms),
		Frequencies:      int(t.numFreqs),
		MaxKeyLen:        int(t.maxKeyLen),
		Bytes:            t.Size(),
	}
	t.Enumerate(func(_ []byte, n NodeIndex) bool {
		s.Leaves++
		for _, f := range t.Frequencies(n) {
			if f.IsStopgram() {
				s.Stopgrams++
			}
		}
		return true
	})
	return s
}

// Dump writes one line per leaf: the quoted key followed by its records.
func (t *PackedTrie) Dump(w io.Writer) error {
	var err error
	t.Enumerate(func(key []byte, n NodeIndex) bool {
		if _, err = fmt.Fprintf(w, "%q", key); err != nil {
			return false
		}
		for _, f := range t.Frequencies(n) {
			if _, err = fmt.Fprintf(w, " [%s]", f); err != nil {
				return false
			}
		}
		_, err = fmt.Fprintln(w)
		return err == nil
	})
	return err
}
