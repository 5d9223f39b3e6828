package database

import (
	"errors"
	"io"
	"log/slog"

	"github.com/hupe1980/langid/catalog"
	"github.com/hupe1980/langid/freq"
	"github.com/hupe1980/langid/trie"
)

// Representation is the trie form a database currently holds: either
// [Mutable] or [Packed].
type Representation interface {
	representation()
}

// Mutable holds a trie under construction.
type Mutable struct{ Trie *trie.MutableTrie }

// Packed holds a query-ready trie.
type Packed struct{ Trie *trie.PackedTrie }

func (Mutable) representation() {}
func (Packed) representation()  {}

// Database is a language catalog plus its n-gram trie and score table.
//
// A Database is not safe for concurrent mutation. Once loaded or packed,
// concurrent reads are safe.
type Database struct {
	opts    Options
	logger  *slog.Logger
	catalog *catalog.Catalog
	repr    Representation
	table   *freq.ScoreTable

	hasBigrams bool
	closer     io.Closer
}

// New creates an empty database with a mutable trie.
func New(opts Options) (*Database, error) {
	opts = opts.withDefaults()
	m, err := trie.NewMutable(opts.Trie)
	if err != nil {
		return nil, err
	}
	c, _ := catalog.New()
	return &Database{
		opts:       opts,
		logger:     opts.Logger,
		catalog:    c,
		repr:       Mutable{Trie: m},
		hasBigrams: opts.HasBigrams,
	}, nil
}

// AddLanguage registers a language trained on trainingBytes bytes and
// returns its ID.
func (db *Database) AddLanguage(info catalog.LanguageID, trainingBytes uint64) (uint32, error) {
	info.TrainingBytes = trainingBytes
	id, err := db.catalog.Add(info)
	if err != nil {
		return 0, err
	}
	db.logger.Debug("language added", "id", id, "language", info.String(), "training_bytes", trainingBytes)
	return id, nil
}

// Catalog returns the language catalog.
func (db *Database) Catalog() *catalog.Catalog { return db.catalog }

// NumLanguages returns the number of languages.
func (db *Database) NumLanguages() int { return db.catalog.Len() }

// HasBigrams reports whether the model contains two-byte n-grams.
func (db *Database) HasBigrams() bool { return db.hasBigrams }

// SetHasBigrams records whether the model contains two-byte n-grams.
func (db *Database) SetHasBigrams(v bool) { db.hasBigrams = v }

// Representation returns the current trie form.
func (db *Database) Representation() Representation { return db.repr }

// Unpacked returns the mutable trie, unpacking the packed trie first if
// necessary. The packed trie is discarded.
func (db *Database) Unpacked() (*trie.MutableTrie, error) {
	switch r := db.repr.(type) {
	case Mutable:
		return r.Trie, nil
	case Packed:
		m, err := r.Trie.Unpack()
		if err != nil {
			return nil, err
		}
		db.repr = Mutable{Trie: m}
		_ = db.release()
		db.logger.Debug("trie unpacked", "leaves", m.NumLeaves())
		return m, nil
	default:
		return nil, errors.New("database: no trie")
	}
}

// Packed returns the packed trie, packing the mutable trie first if
// necessary. The mutable trie is discarded.
func (db *Database) Packed() (*trie.PackedTrie, error) {
	switch r := db.repr.(type) {
	case Packed:
		return r.Trie, nil
	case Mutable:
		p, err := trie.Pack(r.Trie)
		if err != nil {
			return nil, err
		}
		db.repr = Packed{Trie: p}
		db.logger.Debug("trie packed",
			"nodes", p.NumNodes(),
			"terminals", p.NumTerminals(),
			"frequencies", p.NumFrequencies(),
		)
		return p, nil
	default:
		return nil, errors.New("database: no trie")
	}
}

// ScoreTable returns the score table, building the default table if none
// was set.
func (db *Database) ScoreTable() *freq.ScoreTable {
	if db.table == nil {
		db.table = freq.NewScoreTable(nil)
	}
	return db.table
}

// SetScoreTable replaces the score table.
func (db *Database) SetScoreTable(t *freq.ScoreTable) { db.table = t }

// Close releases the memory mapping backing a loaded database. The trie
// must not be used afterwards.
func (db *Database) Close() error {
	return db.release()
}

func (db *Database) release() error {
	if db.closer == nil {
		return nil
	}
	err := db.closer.Close()
	db.closer = nil
	return err
}
