package database

import (
	"errors"
	"fmt"
)

var (
	// ErrSignature is returned when data is not a database.
	ErrSignature = errors.New("database: bad signature")

	// ErrUnsupportedVersion is returned for format versions outside the
	// supported range.
	ErrUnsupportedVersion = errors.New("database: unsupported version")

	// ErrTruncated is returned when data ends early.
	ErrTruncated = errors.New("database: truncated data")

	// ErrScoreTable is returned when the score table marker or offset is
	// wrong.
	ErrScoreTable = errors.New("database: score table not found")

	// ErrCompression is returned for damaged or unknown containers.
	ErrCompression = errors.New("database: invalid compressed container")

	// ErrClosed is returned when a closed database is used.
	ErrClosed = errors.New("database: closed")
)

// VersionError reports an unsupported format version.
type VersionError struct {
	Version  uint8
	Min, Max uint8
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("database: unsupported version %d (supported %d..%d)", e.Version, e.Min, e.Max)
}

func (e *VersionError) Unwrap() error { return ErrUnsupportedVersion }
