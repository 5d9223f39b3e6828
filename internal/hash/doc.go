// Package hash provides the integrity checksums used by the database format.
//
// The packed trie stores a CRC32-Castagnoli checksum of its node, frequency
// and terminal arrays in an otherwise reserved header slot. A zero value
// means "not recorded", which keeps files written without a checksum
// loadable. Go's hash/crc32 uses SSE4.2 or the ARM CRC extension when the
// CPU has them.
package hash
