package langid

import (
	"errors"
	"fmt"
	"os"

	"github.com/hupe1980/langid/catalog"
	"github.com/hupe1980/langid/database"
	"github.com/hupe1980/langid/trie"
)

var (
	// ErrInvalidDatabase is returned when database data cannot be loaded.
	ErrInvalidDatabase = errors.New("langid: invalid database")

	// ErrNotFound is returned when a database file or blob does not exist.
	ErrNotFound = errors.New("langid: database not found")

	// ErrNoDatabase is returned by operations that need a loaded database
	// when Open fell back to an empty identifier.
	ErrNoDatabase = errors.New("langid: no database loaded")
)

// ErrBitsPerLevel indicates a database whose trie branching width differs
// from the one requested with WithBitsPerLevel.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrBitsPerLevel struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrBitsPerLevel) Error() string {
	return fmt.Sprintf("langid: bits per level mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrBitsPerLevel) Unwrap() error { return e.cause }

// Is reports ErrInvalidDatabase so callers can match the general case.
func (e *ErrBitsPerLevel) Is(target error) bool { return target == ErrInvalidDatabase }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var bpl *trie.BitsPerLevelError
	if errors.As(err, &bpl) {
		return &ErrBitsPerLevel{Expected: bpl.Want, Actual: bpl.Got, cause: err}
	}

	for _, target := range []error{
		database.ErrSignature,
		database.ErrUnsupportedVersion,
		database.ErrTruncated,
		database.ErrScoreTable,
		database.ErrCompression,
		trie.ErrSignature,
		trie.ErrUnsupportedVersion,
		trie.ErrTruncated,
		trie.ErrChecksum,
		trie.ErrCorrupt,
		trie.ErrInvalidConfig,
		trie.ErrLanguageID,
		catalog.ErrRecordTruncated,
		catalog.ErrAlignment,
		catalog.ErrTooManyLanguages,
	} {
		if errors.Is(err, target) {
			return fmt.Errorf("%w: %w", ErrInvalidDatabase, err)
		}
	}

	return err
}
