// Package database builds, writes and loads language identification
// databases.
//
// A database holds the language catalog, the multi-language n-gram trie and
// the score table. While building, the trie is a [trie.MutableTrie]; for
// writing and querying it is a [trie.PackedTrie]. The two representations
// are mutually exclusive and switching converts one into the other.
//
// File layout (big-endian):
//
//	offset  size   field
//	0       16     signature "LangIdent DB\0\0\0\0"
//	16      1      format version
//	17      3      reserved
//	20      4      language count
//	24      1      has-bigrams flag
//	25      7      reserved
//	32      8      offset of the score table marker
//	40      24     reserved
//	64      N×220  language records
//	...            packed trie
//	...     4      0xFFFFFFFF marker
//	...     4+8×n  score table
//
// A database file may be wrapped in a zstd or lz4 container; loading
// detects the container and decompresses transparently.
package database
