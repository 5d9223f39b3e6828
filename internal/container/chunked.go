// Package container implements index-addressed container data structures.
package container

const (
	// chunkBits determines the size of each chunk.
	// 16 bits = 65536 items per chunk.
	chunkBits = 16
	chunkSize = 1 << chunkBits
	chunkMask = chunkSize - 1
)

// Chunked is an append-only array stored as a list of fixed-size chunks.
//
// Growth appends new chunks and never moves existing items, so an index
// handed out by Append stays valid for the lifetime of the array. The chunk
// directory doubles its capacity when it runs out of room.
//
// Chunked is not safe for concurrent mutation.
type Chunked[T any] struct {
	chunks []*[chunkSize]T
	n      uint32
}

// NewChunked creates an empty array with room for at least capacity items
// before the chunk directory has to grow.
func NewChunked[T any](capacity int) *Chunked[T] {
	dir := max(1, (capacity+chunkSize-1)>>chunkBits)
	return &Chunked[T]{chunks: make([]*[chunkSize]T, 0, dir)}
}

// Len returns the number of items appended so far.
func (c *Chunked[T]) Len() int { return int(c.n) }

// Append stores v and returns its index.
func (c *Chunked[T]) Append(v T) uint32 {
	idx := c.n
	if int(idx>>chunkBits) == len(c.chunks) {
		if len(c.chunks) == cap(c.chunks) {
			grown := make([]*[chunkSize]T, len(c.chunks), 2*cap(c.chunks))
			copy(grown, c.chunks)
			c.chunks = grown
		}
		c.chunks = append(c.chunks, new([chunkSize]T))
	}
	c.chunks[idx>>chunkBits][idx&chunkMask] = v
	c.n++
	return idx
}

// At returns a pointer to the item at index i. The pointer stays valid across
// later appends. It panics if i is out of range.
func (c *Chunked[T]) At(i uint32) *T {
	if i >= c.n {
		panic("container: index out of range")
	}
	return &c.chunks[i>>chunkBits][i&chunkMask]
}

// Get returns the item at index i.
// Returns the zero value and false if i is out of range.
func (c *Chunked[T]) Get(i uint32) (T, bool) {
	if i >= c.n {
		var zero T
		return zero, false
	}
	return c.chunks[i>>chunkBits][i&chunkMask], true
}

// Set overwrites the item at index i. It panics if i is out of range.
func (c *Chunked[T]) Set(i uint32, v T) {
	*c.At(i) = v
}
