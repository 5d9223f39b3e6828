package database

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/langid/catalog"
	"github.com/hupe1980/langid/freq"
	"github.com/hupe1980/langid/trie"
)

// HeaderSize is the size of the database header.
const HeaderSize = 64

const (
	// Version is the format version written by WriteTo.
	Version    uint8 = 1
	minVersion uint8 = 1
	maxVersion uint8 = 1

	tableMarker = 0xFFFFFFFF

	offVersion     = 16
	offLangCount   = 20
	offHasBigrams  = 24
	offTableOffset = 32
)

// Signature starts every database file.
var Signature = [16]byte{'L', 'a', 'n', 'g', 'I', 'd', 'e', 'n', 't', ' ', 'D', 'B'}

// WriteTo writes the database, packing the trie first if necessary.
func (db *Database) WriteTo(w io.Writer) (int64, error) {
	p, err := db.Packed()
	if err != nil {
		return 0, err
	}
	table := db.ScoreTable()
	langs := db.catalog.All()

	tableOffset := uint64(HeaderSize) + uint64(len(langs))*catalog.RecordSize + uint64(p.Size())

	head := make([]byte, HeaderSize, HeaderSize+len(langs)*catalog.RecordSize)
	copy(head, Signature[:])
	head[offVersion] = Version
	binary.BigEndian.PutUint32(head[offLangCount:], uint32(len(langs)))
	if db.hasBigrams {
		head[offHasBigrams] = 1
	}
	binary.BigEndian.PutUint64(head[offTableOffset:], tableOffset)
	for _, l := range langs {
		head = l.AppendRecord(head)
	}

	var total int64
	n, err := w.Write(head)
	total += int64(n)
	if err != nil {
		return total, err
	}
	m, err := p.WriteTo(w)
	total += m
	if err != nil {
		return total, err
	}
	var marker [4]byte
	binary.BigEndian.PutUint32(marker[:], tableMarker)
	n, err = w.Write(marker[:])
	total += int64(n)
	if err != nil {
		return total, err
	}
	m, err = table.WriteTo(w)
	total += m
	return total, err
}

// Bytes returns the serialized database.
func (db *Database) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := db.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse loads a database from data. Compressed containers are decompressed
// first; otherwise the trie references data directly, which must stay
// valid for the lifetime of the database.
func Parse(data []byte, opts Options) (*Database, error) {
	opts = opts.withDefaults()
	if IsCompressed(data) {
		raw, err := Decompress(data)
		if err != nil {
			return nil, err
		}
		opts.Logger.Debug("database decompressed", "compressed", len(data), "size", len(raw))
		data = raw
	}

	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: header", ErrTruncated)
	}
	if !bytes.Equal(data[:len(Signature)], Signature[:]) {
		return nil, ErrSignature
	}
	if v := data[offVersion]; v < minVersion || v > maxVersion {
		return nil, &VersionError{Version: v, Min: minVersion, Max: maxVersion}
	}
	count := binary.BigEndian.Uint32(data[offLangCount:])
	if count > catalog.MaxLanguages {
		return nil, fmt.Errorf("%w: %d languages", catalog.ErrTooManyLanguages, count)
	}
	tableOffset := binary.BigEndian.Uint64(data[offTableOffset:])

	off := uint64(HeaderSize)
	if uint64(len(data)) < off+uint64(count)*catalog.RecordSize {
		return nil, fmt.Errorf("%w: language records", ErrTruncated)
	}
	c, _ := catalog.New()
	for range count {
		l, err := catalog.ParseRecord(data[off:])
		if err != nil {
			return nil, err
		}
		if _, err := c.Add(l); err != nil {
			return nil, err
		}
		off += catalog.RecordSize
	}

	trieOpts := opts.Verify.parseOptions()
	if opts.BitsPerLevel != 0 {
		trieOpts = append(trieOpts, trie.WithBitsPerLevel(opts.BitsPerLevel))
	}
	p, size, err := trie.Parse(data[off:], trieOpts...)
	if err != nil {
		return nil, err
	}
	off += uint64(size)

	if tableOffset != off {
		return nil, fmt.Errorf("%w: header says %d, trie ends at %d", ErrScoreTable, tableOffset, off)
	}
	if uint64(len(data)) < off+4 {
		return nil, fmt.Errorf("%w: score table marker", ErrTruncated)
	}
	if binary.BigEndian.Uint32(data[off:]) != tableMarker {
		return nil, fmt.Errorf("%w: bad marker", ErrScoreTable)
	}
	table, _, err := freq.ParseScoreTable(data[off+4:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScoreTable, err)
	}

	db := &Database{
		opts:       opts,
		logger:     opts.Logger,
		catalog:    c,
		repr:       Packed{Trie: p},
		table:      table,
		hasBigrams: data[offHasBigrams] != 0,
	}
	db.logger.Debug("database parsed",
		"languages", count,
		"nodes", p.NumNodes(),
		"bits_per_level", p.Config().BitsPerLevel,
	)
	return db, nil
}
