// Package mmap maps database files read-only into memory.
//
// A loaded language database is an immutable byte image: a fixed header,
// the language records, the packed trie arrays and the score table. Mapping
// the file lets the trie overlay its views directly onto the page cache
// instead of copying the whole image onto the heap.
//
//	m, err := mmap.Open("languages.db")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//	trieRegion, _ := m.Region(off, size)
//	_ = trieRegion.Advise(mmap.AccessRandom)
//
// Unix platforms use mmap(2) and madvise(2); Windows uses
// CreateFileMapping/MapViewOfFile and treats advice as a no-op. On any other
// platform Open returns ErrUnsupported and callers fall back to reading the
// file.
//
// The byte slice returned by Bytes is valid until Close. Close is idempotent.
package mmap
