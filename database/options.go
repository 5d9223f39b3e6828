package database

import (
	"log/slog"

	"github.com/hupe1980/langid/internal/fs"
	"github.com/hupe1980/langid/trie"
)

// Verification selects the integrity checks run when a database is loaded.
type Verification uint8

const (
	// VerifyAll checks the trie checksum and every trie link.
	VerifyAll Verification = iota
	// VerifyChecksum skips the link check for tries whose stored checksum
	// matches. Tries without a checksum get the full check.
	VerifyChecksum
	// VerifyNone trusts the data. Only use it for databases from a trusted
	// source; damaged data can crash lookups.
	VerifyNone
)

func (v Verification) parseOptions() []trie.ParseOption {
	switch v {
	case VerifyChecksum:
		return []trie.ParseOption{trie.TrustChecksum()}
	case VerifyNone:
		return []trie.ParseOption{trie.SkipChecksum(), trie.SkipValidation()}
	default:
		return nil
	}
}

// Options configures building and loading a database.
type Options struct {
	// Trie configures the mutable trie of a new database.
	Trie trie.Config

	// HasBigrams records that the model contains two-byte n-grams.
	HasBigrams bool

	// BitsPerLevel, when nonzero, makes loading fail for tries built with a
	// different branching width.
	BitsPerLevel int

	// Verify selects the load-time integrity checks. Defaults to VerifyAll.
	Verify Verification

	// Mmap maps database files instead of reading them. Ignored where
	// memory mapping is unsupported and for compressed files.
	Mmap bool

	// Compression selects the container written by WriteFile.
	Compression Compression

	// FileSystem is used for file access. Defaults to the local file system.
	FileSystem fs.FileSystem

	// Logger receives load and write events. Defaults to discarding.
	Logger *slog.Logger
}

// DefaultOptions returns options for a 4-bit trie, memory-mapped loading and
// uncompressed files.
func DefaultOptions() Options {
	return Options{
		Trie: trie.DefaultConfig(),
		Mmap: true,
	}
}

func (o Options) withDefaults() Options {
	if o.Trie.BitsPerLevel == 0 {
		o.Trie.BitsPerLevel = trie.DefaultBitsPerLevel
	}
	if o.FileSystem == nil {
		o.FileSystem = fs.Default
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}
