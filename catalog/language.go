package catalog

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
)

// RecordSize is the serialized size of a LanguageID.
const RecordSize = 220

// MaxAlignment is the largest byte alignment an encoding can have.
const MaxAlignment = 4

const (
	languageLen = 32
	regionLen   = 32
	encodingLen = 32
	sourceLen   = 64
	scriptLen   = 32
)

// Upper bounds of the coverage statistics. Values are clamped into
// [0, max] and stored scaled into the full uint32 range.
const (
	MaxCoverage        = 4.0
	MaxCountedCoverage = 4.0
	MaxFreqCoverage    = 100.0
	MaxMatchFactor     = 1.0
)

var (
	// ErrRecordTruncated is returned when fewer than RecordSize bytes are
	// available.
	ErrRecordTruncated = errors.New("catalog: language record truncated")

	// ErrAlignment is returned for alignments other than 1, 2 and 4.
	ErrAlignment = errors.New("catalog: invalid alignment")
)

// LanguageID describes one language model in a database.
type LanguageID struct {
	Language string // language code, e.g. "en"
	Region   string
	Encoding string
	Source   string
	Script   string

	// TrainingBytes is the size of the training corpus.
	TrainingBytes uint64

	// Alignment is the byte alignment of the encoding (1, 2 or 4).
	// Zero is treated as 1.
	Alignment uint8

	// Coverage statistics computed while building the model. A zero value
	// means unknown.
	Coverage        float64
	CountedCoverage float64
	FreqCoverage    float64
	MatchFactor     float64
}

// Validate checks the alignment.
func (l LanguageID) Validate() error {
	switch l.Alignment {
	case 0, 1, 2, 4:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrAlignment, l.Alignment)
	}
}

// EffectiveAlignment returns the alignment with zero mapped to 1.
func (l LanguageID) EffectiveAlignment() uint8 {
	if l.Alignment == 0 {
		return 1
	}
	return l.Alignment
}

// AdjustmentFactor compensates for languages that can only match at
// aligned offsets: MatchFactor^0.25 / alignment. An unknown match factor
// counts as 1.
func (l LanguageID) AdjustmentFactor() float64 {
	mf := clamp(l.MatchFactor, MaxMatchFactor)
	if mf == 0 {
		mf = 1
	}
	return math.Pow(mf, 0.25) / float64(l.EffectiveAlignment())
}

// Name returns the language code with the region appended when present,
// e.g. "pt_BR".
func (l LanguageID) Name() string {
	if l.Region == "" {
		return l.Language
	}
	return l.Language + "_" + l.Region
}

// Tag returns the BCP 47 tag for the language, region and script.
func (l LanguageID) Tag() (language.Tag, error) {
	parts := []string{l.Language}
	if l.Script != "" {
		parts = append(parts, l.Script)
	}
	if l.Region != "" {
		parts = append(parts, l.Region)
	}
	return language.Parse(strings.Join(parts, "-"))
}

// InferredScript returns Script, or the most likely script for the
// language when none was recorded.
func (l LanguageID) InferredScript() string {
	if l.Script != "" {
		return l.Script
	}
	tag, err := language.Parse(l.Language)
	if err != nil {
		return ""
	}
	script, conf := tag.Script()
	if conf == language.No {
		return ""
	}
	return script.String()
}

func (l LanguageID) String() string {
	s := l.Name()
	if l.Encoding != "" {
		s += "." + l.Encoding
	}
	return s
}

// AppendRecord appends the 220-byte record for l:
//
//	language[32] region[32] encoding[32] source[64] script[32]
//	training bytes u64, alignment u8, reserved[3],
//	coverage u32, counted coverage u32, frequency coverage u32, match factor u32
//
// Strings are NUL padded and truncated to leave a terminating NUL.
func (l LanguageID) AppendRecord(buf []byte) []byte {
	rec := make([]byte, RecordSize)
	off := 0
	for _, f := range []struct {
		s string
		n int
	}{
		{l.Language, languageLen},
		{l.Region, regionLen},
		{l.Encoding, encodingLen},
		{l.Source, sourceLen},
		{l.Script, scriptLen},
	} {
		putString(rec[off:off+f.n], f.s)
		off += f.n
	}
	binary.BigEndian.PutUint64(rec[off:], l.TrainingBytes)
	off += 8
	rec[off] = l.Alignment
	off += 4
	for _, v := range []uint32{
		scale(l.Coverage, MaxCoverage),
		scale(l.CountedCoverage, MaxCountedCoverage),
		scale(l.FreqCoverage, MaxFreqCoverage),
		scale(l.MatchFactor, MaxMatchFactor),
	} {
		binary.BigEndian.PutUint32(rec[off:], v)
		off += 4
	}
	return append(buf, rec...)
}

// ParseRecord decodes a record written by AppendRecord.
func ParseRecord(b []byte) (LanguageID, error) {
	if len(b) < RecordSize {
		return LanguageID{}, ErrRecordTruncated
	}
	var l LanguageID
	off := 0
	for _, f := range []struct {
		dst *string
		n   int
	}{
		{&l.Language, languageLen},
		{&l.Region, regionLen},
		{&l.Encoding, encodingLen},
		{&l.Source, sourceLen},
		{&l.Script, scriptLen},
	} {
		*f.dst = getString(b[off : off+f.n])
		off += f.n
	}
	l.TrainingBytes = binary.BigEndian.Uint64(b[off:])
	off += 8
	l.Alignment = b[off]
	off += 4
	for _, f := range []struct {
		dst *float64
		max float64
	}{
		{&l.Coverage, MaxCoverage},
		{&l.CountedCoverage, MaxCountedCoverage},
		{&l.FreqCoverage, MaxFreqCoverage},
		{&l.MatchFactor, MaxMatchFactor},
	} {
		*f.dst = unscale(binary.BigEndian.Uint32(b[off:]), f.max)
		off += 4
	}
	if err := l.Validate(); err != nil {
		return LanguageID{}, err
	}
	return l, nil
}

func putString(dst []byte, s string) {
	copy(dst[:len(dst)-1], s)
}

func getString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func clamp(v, hi float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return min(v, hi)
}

func scale(v, hi float64) uint32 {
	return uint32(math.Round(clamp(v, hi) / hi * math.MaxUint32))
}

func unscale(v uint32, hi float64) float64 {
	return float64(v) / math.MaxUint32 * hi
}
