package freq

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// DefaultStopGramPenalty is the score of a stop-gram record under
// [DefaultMapping].
const DefaultStopGramPenalty = -1.0

var (
	// ErrTableTruncated is returned when a serialized table is shorter than
	// its declared size.
	ErrTableTruncated = errors.New("freq: score table truncated")

	// ErrTableSize is returned when a serialized table does not have
	// TableSize entries.
	ErrTableSize = errors.New("freq: unexpected score table size")
)

// Mapping turns a decoded magnitude into a score.
type Mapping func(value uint32, stopgram bool) float64

// PercentageMapping maps magnitudes to percentages and every stop-gram to
// penalty.
func PercentageMapping(penalty float64) Mapping {
	return func(value uint32, stopgram bool) float64 {
		if stopgram {
			return penalty
		}
		return float64(value) * 100 / Scale
	}
}

// DefaultMapping is PercentageMapping(DefaultStopGramPenalty).
var DefaultMapping = PercentageMapping(DefaultStopGramPenalty)

// ScoreTable maps every value index to a score. It is immutable after
// construction and safe for concurrent use.
type ScoreTable struct {
	scores []float64
}

// NewScoreTable evaluates m for every representable value. A nil mapping
// selects DefaultMapping.
func NewScoreTable(m Mapping) *ScoreTable {
	if m == nil {
		m = DefaultMapping
	}
	scores := make([]float64, TableSize)
	for i := range scores {
		idx := uint32(i)
		stop := idx&1 != 0
		exp := (idx >> 1) & maxExponent
		mant := idx >> (1 + ExponentBits)
		scores[i] = m(dequantize(mant, exp), stop)
	}
	return &ScoreTable{scores: scores}
}

// WithPenalty returns a copy of t in which every stop-gram entry is penalty.
func (t *ScoreTable) WithPenalty(penalty float64) *ScoreTable {
	scores := make([]float64, len(t.scores))
	copy(scores, t.scores)
	for i := 1; i < len(scores); i += 2 {
		scores[i] = penalty
	}
	return &ScoreTable{scores: scores}
}

// Score returns the mapped score of f.
func (t *ScoreTable) Score(f Frequency) float64 { return t.scores[uint32(f)>>ValueShift] }

// Len returns the number of entries.
func (t *ScoreTable) Len() int { return len(t.scores) }

// Size returns the serialized size in bytes.
func (t *ScoreTable) Size() int { return 4 + 8*len(t.scores) }

// Equal reports whether both tables hold bit-identical scores.
func (t *ScoreTable) Equal(o *ScoreTable) bool {
	if len(t.scores) != len(o.scores) {
		return false
	}
	for i, s := range t.scores {
		if math.Float64bits(s) != math.Float64bits(o.scores[i]) {
			return false
		}
	}
	return true
}

// WriteTo writes the entry count followed by the IEEE-754 bits of every
// score, big-endian.
func (t *ScoreTable) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, t.Size())
	binary.BigEndian.PutUint32(buf, uint32(len(t.scores)))
	for i, s := range t.scores {
		binary.BigEndian.PutUint64(buf[4+8*i:], math.Float64bits(s))
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// ParseScoreTable decodes a table written by WriteTo and returns the number
// of bytes consumed.
func ParseScoreTable(data []byte) (*ScoreTable, int, error) {
	if len(data) < 4 {
		return nil, 0, ErrTableTruncated
	}
	n := binary.BigEndian.Uint32(data)
	if n != TableSize {
		return nil, 0, fmt.Errorf("%w: %d entries", ErrTableSize, n)
	}
	size := 4 + 8*int(n)
	if len(data) < size {
		return nil, 0, ErrTableTruncated
	}
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = math.Float64frombits(binary.BigEndian.Uint64(data[4+8*i:]))
	}
	return &ScoreTable{scores: scores}, size, nil
}
