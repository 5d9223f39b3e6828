package trie

import "fmt"

// CaseMode selects how key bytes are compared.
type CaseMode uint8

const (
	// CaseSensitive compares bytes exactly.
	CaseSensitive CaseMode = iota
	// CaseFoldASCII maps ASCII upper case letters to lower case on insert
	// and lookup.
	CaseFoldASCII
)

func (m CaseMode) String() string {
	switch m {
	case CaseSensitive:
		return "sensitive"
	case CaseFoldASCII:
		return "fold-ascii"
	default:
		return fmt.Sprintf("CaseMode(%d)", uint8(m))
	}
}

// DefaultBitsPerLevel is the branching width used when none is configured.
const DefaultBitsPerLevel = 4

// Config holds the trie-wide settings shared by the mutable and packed form.
type Config struct {
	// BitsPerLevel is the number of key bits consumed per trie level.
	BitsPerLevel int
	// IgnoreWhitespace drops space bytes from keys on insert and lookup.
	IgnoreWhitespace bool
	// CaseMode controls ASCII case folding.
	CaseMode CaseMode
}

// DefaultConfig returns the default trie configuration.
func DefaultConfig() Config {
	return Config{BitsPerLevel: DefaultBitsPerLevel}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.BitsPerLevel {
	case 2, 3, 4, 8:
	default:
		return fmt.Errorf("%w: %d bits per level", ErrInvalidConfig, c.BitsPerLevel)
	}
	if c.CaseMode > CaseFoldASCII {
		return fmt.Errorf("%w: case mode %d", ErrInvalidConfig, c.CaseMode)
	}
	return nil
}

// level describes one bit group of a key byte.
type level struct {
	shift uint8
	mask  uint8
}

// levels splits a byte into groups of bits, most significant first. The
// last group is narrower when bits does not divide 8.
func levels(bits int) []level {
	var out []level
	for remaining := 8; remaining > 0; remaining -= bits {
		w := min(bits, remaining)
		out = append(out, level{
			shift: uint8(remaining - w),
			mask:  uint8(1<<w - 1),
		})
	}
	return out
}

// skip reports whether b is dropped from keys.
func (c Config) skip(b byte) bool {
	return c.IgnoreWhitespace && b == ' '
}

// fold applies the case mode to b.
func (c Config) fold(b byte) byte {
	if c.CaseMode == CaseFoldASCII && b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// Normalize returns key as it is stored: spaces dropped when whitespace is
// ignored and ASCII folded when case folding is on.
func (c Config) Normalize(key []byte) []byte {
	out := make([]byte, 0, len(key))
	for _, b := range key {
		if c.skip(b) {
			continue
		}
		out = append(out, c.fold(b))
	}
	return out
}
