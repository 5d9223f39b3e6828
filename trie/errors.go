package trie

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned for unsupported trie settings.
	ErrInvalidConfig = errors.New("trie: invalid config")

	// ErrSignature is returned when a packed trie does not start with the
	// expected signature.
	ErrSignature = errors.New("trie: bad signature")

	// ErrUnsupportedVersion is returned for a format version outside the
	// supported range.
	ErrUnsupportedVersion = errors.New("trie: unsupported version")

	// ErrBitsPerLevel is returned when a packed trie was built with a
	// different branching width than requested.
	ErrBitsPerLevel = errors.New("trie: bits per level mismatch")

	// ErrTruncated is returned when the data ends before the arrays the
	// header declares.
	ErrTruncated = errors.New("trie: truncated data")

	// ErrChecksum is returned when the stored checksum does not match.
	ErrChecksum = errors.New("trie: checksum mismatch")

	// ErrCorrupt is returned when node links point outside their arrays.
	ErrCorrupt = errors.New("trie: corrupt node")

	// ErrTooLarge is returned when a trie does not fit the 31-bit index space.
	ErrTooLarge = errors.New("trie: too many nodes")

	// ErrLanguageID is returned when a record's language ID does not fit
	// the frequency word.
	ErrLanguageID = errors.New("trie: language id out of range")
)

// BitsPerLevelError reports a branching width mismatch.
type BitsPerLevelError struct {
	Want int
	Got  int
}

func (e *BitsPerLevelError) Error() string {
	return fmt.Sprintf("trie: bits per level mismatch: want %d, got %d", e.Want, e.Got)
}

func (e *BitsPerLevelError) Unwrap() error { return ErrBitsPerLevel }

// VersionError reports an unsupported format version.
type VersionError struct {
	Version  uint8
	Min, Max uint8
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("trie: unsupported version %d (supported %d..%d)", e.Version, e.Min, e.Max)
}

func (e *VersionError) Unwrap() error { return ErrUnsupportedVersion }
