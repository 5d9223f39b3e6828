package catalog

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"github.com/hupe1980/langid/freq"
)

// MaxLanguages is the largest number of languages a catalog can hold; IDs
// must fit the frequency word.
const MaxLanguages = freq.MaxLanguageID + 1

// ErrTooManyLanguages is returned when a catalog is full.
var ErrTooManyLanguages = errors.New("catalog: too many languages")

// Catalog is the dense, ID-indexed list of languages of a database. It is
// immutable once handed to an identifier.
type Catalog struct {
	langs []LanguageID
}

// New creates a catalog from langs; the slice index is the language ID.
func New(langs ...LanguageID) (*Catalog, error) {
	c := &Catalog{}
	for _, l := range langs {
		if _, err := c.Add(l); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add appends l and returns its ID.
func (c *Catalog) Add(l LanguageID) (uint32, error) {
	if len(c.langs) >= MaxLanguages {
		return 0, ErrTooManyLanguages
	}
	if err := l.Validate(); err != nil {
		return 0, err
	}
	c.langs = append(c.langs, l)
	return uint32(len(c.langs) - 1), nil
}

// Len returns the number of languages.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.langs)
}

// Get returns the language with the given ID.
func (c *Catalog) Get(id uint32) (LanguageID, bool) {
	if c == nil || int(id) >= len(c.langs) {
		return LanguageID{}, false
	}
	return c.langs[id], true
}

// All returns a copy of every language record in ID order.
func (c *Catalog) All() []LanguageID {
	if c == nil {
		return nil
	}
	out := make([]LanguageID, len(c.langs))
	copy(out, c.langs)
	return out
}

// TrainingTotals returns every language's training byte count in ID order.
func (c *Catalog) TrainingTotals() []uint64 {
	out := make([]uint64, c.Len())
	for i, l := range c.langs {
		out[i] = l.TrainingBytes
	}
	return out
}

// Name returns the language name, or "" for an unknown ID.
func (c *Catalog) Name(id uint32) string {
	l, _ := c.Get(id)
	return l.Name()
}

// Select returns the set of languages for which keep returns true.
func (c *Catalog) Select(keep func(LanguageID) bool) *LanguageSet {
	s := NewLanguageSet()
	for i, l := range c.All() {
		if keep(l) {
			s.Add(uint32(i))
		}
	}
	return s
}

// ByLanguage returns the languages whose code matches any of codes.
func (c *Catalog) ByLanguage(codes ...string) *LanguageSet {
	return c.Select(func(l LanguageID) bool { return contains(codes, l.Language) })
}

// ByEncoding returns the languages trained on any of the encodings.
func (c *Catalog) ByEncoding(encodings ...string) *LanguageSet {
	return c.Select(func(l LanguageID) bool { return contains(encodings, l.Encoding) })
}

// ByScript returns the languages written in any of the scripts. Records
// without a script use the most likely script of their language.
func (c *Catalog) ByScript(scripts ...string) *LanguageSet {
	return c.Select(func(l LanguageID) bool { return contains(scripts, l.InferredScript()) })
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// Similarity returns how well a reader of language a understands language
// b, in [0, 1]. Different encodings of the same language are identical;
// otherwise the mutual intelligibility data of golang.org/x/text decides.
func (c *Catalog) Similarity(a, b uint32) float64 {
	la, ok := c.Get(a)
	if !ok {
		return 0
	}
	lb, ok := c.Get(b)
	if !ok {
		return 0
	}
	if la.Name() == lb.Name() {
		return 1
	}
	ta, err := la.Tag()
	if err != nil {
		return 0
	}
	tb, err := lb.Tag()
	if err != nil {
		return 0
	}
	switch language.Comprehends(ta, tb) {
	case language.Exact:
		return 1
	case language.High:
		return 0.75
	case language.Low:
		return 0.25
	default:
		return 0
	}
}

func (c *Catalog) String() string {
	return fmt.Sprintf("Catalog(%d languages)", c.Len())
}
