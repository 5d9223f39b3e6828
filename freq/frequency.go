package freq

import "fmt"

const (
	// LanguageBits is the width of the language ID field.
	LanguageBits = 13
	// MantissaBits is the width of the mantissa field.
	MantissaBits = 15
	// ExponentBits is the width of the exponent field.
	ExponentBits = 2
	// MaxLanguageID is the largest language ID a record can carry.
	MaxLanguageID = 1<<LanguageBits - 1

	// ValueShift drops the language ID and the last bit, leaving
	// mantissa, exponent and stop-gram bit.
	ValueShift = LanguageBits + 1

	// TableSize is the number of distinct value indices.
	TableSize = 1 << (32 - ValueShift)

	// Scale converts a probability into the scaled magnitude.
	Scale = 1_000_000_000

	// ScaledBits is the width of the largest encodable magnitude.
	// Larger values saturate.
	ScaledBits = 30
	// MaxScaled is the largest encodable magnitude.
	MaxScaled = 1<<ScaledBits - 1

	maxExponent   = 1<<ExponentBits - 1
	mantissaShift = ScaledBits - MantissaBits
)

const (
	langMask     = MaxLanguageID
	lastBit      = 1 << LanguageBits
	stopBit      = 1 << (LanguageBits + 1)
	exponentPos  = LanguageBits + 2
	exponentMask = maxExponent << exponentPos
	mantissaPos  = exponentPos + ExponentBits
)

// Frequency is one quantized frequency record.
type Frequency uint32

// Encode quantizes a scaled magnitude for a language.
//
// The value is shifted left two bits at a time until its top bit group is
// occupied or the exponent is exhausted. A nonzero value never encodes to a
// zero mantissa. Language IDs above MaxLanguageID are truncated; callers
// validate them when languages are registered.
func Encode(value uint32, lang uint32, last, stopgram bool) Frequency {
	mant, exp := quantize(value)
	w := mant<<mantissaPos | exp<<exponentPos | lang&langMask
	if last {
		w |= lastBit
	}
	if stopgram {
		w |= stopBit
	}
	return Frequency(w)
}

func quantize(value uint32) (mant, exp uint32) {
	if value > MaxScaled {
		value = MaxScaled
	}
	x := value
	for x < 1<<(ScaledBits-ExponentBits) && exp < maxExponent {
		x <<= ExponentBits
		exp++
	}
	mant = x >> mantissaShift
	if mant == 0 && value != 0 {
		mant = 1
	}
	return mant, exp
}

func dequantize(mant, exp uint32) uint32 {
	return mant << mantissaShift >> (ExponentBits * exp)
}

// Decode returns the scaled magnitude (probability × 1e9).
func (f Frequency) Decode() uint32 { return dequantize(f.Mantissa(), f.Exponent()) }

// Probability returns the decoded magnitude as a probability.
func (f Frequency) Probability() float64 { return float64(f.Decode()) / Scale }

// LanguageID returns the language the record belongs to.
func (f Frequency) LanguageID() uint32 { return uint32(f) & langMask }

// IsLast reports whether f ends its leaf's record list.
func (f Frequency) IsLast() bool { return uint32(f)&lastBit != 0 }

// IsStopgram reports whether f marks an n-gram that counts against its
// language.
func (f Frequency) IsStopgram() bool { return uint32(f)&stopBit != 0 }

// Exponent returns the number of 2-bit normalization steps.
func (f Frequency) Exponent() uint32 { return (uint32(f) & exponentMask) >> exponentPos }

// Mantissa returns the normalized magnitude bits.
func (f Frequency) Mantissa() uint32 { return uint32(f) >> mantissaPos }

// ValueIndex is the score table index of f.
func (f Frequency) ValueIndex() uint32 { return uint32(f) >> ValueShift }

// WithLast returns f with the last bit set to last.
func (f Frequency) WithLast(last bool) Frequency {
	if last {
		return f | lastBit
	}
	return f &^ lastBit
}

func (f Frequency) String() string {
	s := fmt.Sprintf("lang=%d value=%d p=%.3g", f.LanguageID(), f.Decode(), f.Probability())
	if f.IsStopgram() {
		s += " stop"
	}
	if f.IsLast() {
		s += " last"
	}
	return s
}

// ScaleCount converts a raw count out of total training bytes into a scaled
// magnitude, saturating at MaxScaled.
func ScaleCount(count, total uint64) uint32 {
	if total == 0 || count == 0 {
		return 0
	}
	v := float64(count) * Scale / float64(total)
	if v >= MaxScaled {
		return MaxScaled
	}
	if v < 1 {
		return 1
	}
	return uint32(v)
}
