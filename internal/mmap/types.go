package mmap

import "errors"

// AccessPattern is a hint to the kernel about how mapped data will be read.
type AccessPattern int

const (
	// AccessDefault applies no specific advice.
	AccessDefault AccessPattern = iota
	// AccessSequential expects a front-to-back scan (header and record parsing).
	AccessSequential
	// AccessRandom expects scattered reads (trie traversal).
	AccessRandom
	// AccessWillNeed asks the kernel to prefetch the range.
	AccessWillNeed
	// AccessDontNeed tells the kernel the range will not be read soon.
	AccessDontNeed
)

var (
	// ErrClosed is returned when using a mapping after Close.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for files whose size cannot be mapped.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrOutOfBounds is returned when a region falls outside the mapping.
	ErrOutOfBounds = errors.New("mmap: out of bounds")
	// ErrUnsupported is returned on platforms without memory mapping.
	ErrUnsupported = errors.New("mmap: not supported on this platform")
)
