// Package freq implements the quantized frequency word stored in packed
// tries and the score table that turns those words into scores.
//
// A Frequency packs a language ID, two flags and a 17-bit floating point
// magnitude into 32 bits:
//
//	bit 31..17  mantissa (15 bits)
//	bit 16..15  exponent (2 bits)
//	bit 14      stop-gram
//	bit 13      last record of a leaf's list
//	bit 12..0   language ID (13 bits)
//
// Magnitudes are probabilities scaled by 1e9 (parts per billion). The
// mantissa, exponent and stop-gram bits together form the value index
// (word >> ValueShift) into a [ScoreTable], so scoring a record is one shift
// and one load.
package freq
