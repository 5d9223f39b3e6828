package langid

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/langid/blobstore"
	"github.com/hupe1980/langid/catalog"
	"github.com/hupe1980/langid/database"
	"github.com/hupe1980/langid/freq"
	"github.com/hupe1980/langid/trie"
)

// unreachable is the alignment class of languages that never score.
const unreachable = math.MaxUint8

// Identifier scores text against a loaded language database.
//
// An Identifier is immutable after loading and safe for concurrent use.
// Close releases the database file mapping; no method may be called after
// Close.
type Identifier struct {
	db      *database.Database
	trie    *trie.PackedTrie
	table   *freq.ScoreTable
	catalog *catalog.Catalog
	source  string

	// alignClass holds the required alignment of every representable
	// language ID; filtered and unknown IDs are unreachable.
	alignClass    []uint8
	adjustment    []float64
	lengthFactors []float64
	bigramWeight  float64
	minHistory    int
	adjust        bool
	similarity    float64

	logger  *Logger
	metrics MetricsCollector

	closeOnce sync.Once
	closer    io.Closer
}

// Open loads the database at path. When path is empty DefaultDatabaseName
// is used. If the file cannot be loaded, its base name is tried in each
// search directory in turn.
//
// When no database can be loaded Open logs a warning and returns an
// Identifier without languages, whose Identify always yields empty scores.
func Open(path string, opts ...Option) (*Identifier, error) {
	o := newOptions(opts)
	ctx := context.Background()

	candidates := searchCandidates(path, o.searchPaths)
	var lastErr error
	for _, c := range candidates {
		if !database.Exists(o.fileSystem, c) {
			continue
		}
		start := time.Now()
		db, err := database.Open(c, o.databaseOptions())
		if err == nil {
			var id *Identifier
			if id, err = newIdentifier(db, nil, c, o); err == nil {
				o.metricsCollector.RecordLoad(id.NumLanguages(), time.Since(start), nil)
				o.logger.LogLoad(ctx, c, id.NumLanguages(), time.Since(start), nil)
				return id, nil
			}
			_ = db.Close()
		}
		lastErr = translateError(err)
		o.metricsCollector.RecordLoad(0, time.Since(start), lastErr)
		o.logger.LogLoad(ctx, c, 0, time.Since(start), lastErr)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: %s", ErrNotFound, candidates[0])
	}
	o.logger.LogFallback(ctx, candidates, lastErr)
	return newEmptyIdentifier(o), nil
}

// Load parses a database held in memory. The identifier references data
// directly unless it is compressed, so data must not be modified while the
// identifier is in use.
func Load(data []byte, opts ...Option) (*Identifier, error) {
	o := newOptions(opts)
	start := time.Now()

	id, err := load(data, nil, "memory", o)
	o.metricsCollector.RecordLoad(id.NumLanguages(), time.Since(start), err)
	o.logger.LogLoad(context.Background(), "memory", id.NumLanguages(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return id, nil
}

// OpenBlob loads the named database from a blob store. Memory-mapped local
// blobs are used in place and stay mapped until Close.
func OpenBlob(ctx context.Context, store blobstore.BlobStore, name string, opts ...Option) (*Identifier, error) {
	o := newOptions(opts)
	start := time.Now()

	id, err := openBlob(ctx, store, name, o)
	o.metricsCollector.RecordLoad(id.NumLanguages(), time.Since(start), err)
	o.logger.LogLoad(ctx, name, id.NumLanguages(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return id, nil
}

func openBlob(ctx context.Context, store blobstore.BlobStore, name string, o options) (*Identifier, error) {
	data, closer, err := blobstore.Load(ctx, store, name)
	if err != nil {
		return nil, translateError(err)
	}
	if database.IsCompressed(data) {
		// decompression copies; the blob is not referenced afterwards
		_ = closer.Close()
		closer = nil
	}
	id, err := load(data, closer, name, o)
	if err != nil && closer != nil {
		_ = closer.Close()
	}
	return id, err
}

func load(data []byte, closer io.Closer, source string, o options) (*Identifier, error) {
	db, err := database.Parse(data, o.databaseOptions())
	if err != nil {
		return nil, translateError(err)
	}
	id, err := newIdentifier(db, closer, source, o)
	if err != nil {
		return nil, translateError(err)
	}
	return id, nil
}

func (o options) databaseOptions() database.Options {
	opts := database.DefaultOptions()
	opts.Mmap = o.mmap
	opts.BitsPerLevel = o.bitsPerLevel
	opts.Verify = o.verify
	opts.FileSystem = o.fileSystem
	opts.Logger = o.logger.Logger
	return opts
}

func searchCandidates(path string, dirs []string) []string {
	if path == "" {
		path = DefaultDatabaseName
	}
	candidates := []string{path}
	base := filepath.Base(path)
	for _, dir := range dirs {
		dir = expandHome(dir)
		if dir == "" {
			continue
		}
		c := filepath.Join(dir, base)
		if !slices.Contains(candidates, c) {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

func expandHome(dir string) string {
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, dir[1:])
}

func newEmptyIdentifier(o options) *Identifier {
	cat, _ := catalog.New()
	return &Identifier{
		catalog:    cat,
		table:      freq.NewScoreTable(o.mapping),
		alignClass: unreachableClasses(),
		minHistory: 2,
		logger:     o.logger,
		metrics:    o.metricsCollector,
	}
}

func newIdentifier(db *database.Database, closer io.Closer, source string, o options) (*Identifier, error) {
	packed, err := db.Packed()
	if err != nil {
		return nil, err
	}

	table := db.ScoreTable()
	if o.mapping != nil {
		table = freq.NewScoreTable(o.mapping)
	}
	if o.penalty != nil {
		table = table.WithPenalty(*o.penalty)
	}

	cat := db.Catalog()
	id := &Identifier{
		db:           db,
		trie:         packed,
		table:        table,
		catalog:      cat,
		source:       source,
		alignClass:   unreachableClasses(),
		adjustment:   make([]float64, cat.Len()),
		bigramWeight: o.bigramWeight,
		minHistory:   2,
		adjust:       o.adjust,
		similarity:   o.similarity,
		logger:       o.logger.WithSource(source),
		metrics:      o.metricsCollector,
		closer:       closer,
	}

	for i, l := range cat.All() {
		lang := uint32(i)
		id.adjustment[i] = l.AdjustmentFactor()
		if o.filter == nil || o.filter.Contains(lang) {
			id.alignClass[lang] = l.EffectiveAlignment()
		}
	}

	if id.bigramWeight > 0 && db.HasBigrams() {
		id.minHistory = 1
	}
	id.lengthFactors = lengthFactors(packed.MaxKeyLen(), id.bigramWeight)
	return id, nil
}

func unreachableClasses() []uint8 {
	classes := make([]uint8, freq.MaxLanguageID+1)
	for i := range classes {
		classes[i] = unreachable
	}
	return classes
}

// lengthFactors weights a match of n bytes by 270 × n^0.75. Single bytes
// count 1 and pairs are additionally scaled by bigramWeight.
func lengthFactors(maxKeyLen int, bigramWeight float64) []float64 {
	lf := make([]float64, max(maxKeyLen, 2)+1)
	for n := range lf {
		lf[n] = lengthFactor(n, bigramWeight)
	}
	return lf
}

func lengthFactor(n int, bigramWeight float64) float64 {
	switch {
	case n <= 0:
		return 0
	case n == 1:
		return 1
	case n == 2:
		return bigramWeight * 270 * math.Pow(2, 0.75)
	default:
		return 270 * math.Pow(float64(n), 0.75)
	}
}

// Close releases the database. It is safe to call more than once.
func (id *Identifier) Close() error {
	if id == nil {
		return nil
	}
	var firstErr error
	id.closeOnce.Do(func() {
		if id.db != nil {
			if err := id.db.Close(); err != nil {
				firstErr = err
			}
		}
		if id.closer != nil {
			if err := id.closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	})
	return firstErr
}

// Source returns the path or blob name the database was loaded from, or
// the empty string for the fallback identifier.
func (id *Identifier) Source() string { return id.source }

// Catalog returns the language catalog.
func (id *Identifier) Catalog() *catalog.Catalog { return id.catalog }

// ScoreTable returns the score table in use.
func (id *Identifier) ScoreTable() *freq.ScoreTable { return id.table }

// HasBigrams reports whether the database contains two-byte n-grams.
func (id *Identifier) HasBigrams() bool { return id.db != nil && id.db.HasBigrams() }

// NumLanguages returns the number of languages in the database.
func (id *Identifier) NumLanguages() int {
	if id == nil {
		return 0
	}
	return id.catalog.Len()
}

// Language returns the catalog record of language lang.
func (id *Identifier) Language(lang uint32) (catalog.LanguageID, bool) {
	return id.catalog.Get(lang)
}

// LanguageName returns the language code of lang, e.g. "en".
func (id *Identifier) LanguageName(lang uint32) string {
	l, _ := id.catalog.Get(lang)
	return l.Language
}

// LanguageRegion returns the region of lang, e.g. "GB".
func (id *Identifier) LanguageRegion(lang uint32) string {
	l, _ := id.catalog.Get(lang)
	return l.Region
}

// LanguageEncoding returns the character encoding lang was trained on.
func (id *Identifier) LanguageEncoding(lang uint32) string {
	l, _ := id.catalog.Get(lang)
	return l.Encoding
}

// LanguageScript returns the script of lang, inferred from the language
// code when the record has none.
func (id *Identifier) LanguageScript(lang uint32) string {
	l, _ := id.catalog.Get(lang)
	return l.InferredScript()
}

// LanguageSource returns the training source of lang.
func (id *Identifier) LanguageSource(lang uint32) string {
	l, _ := id.catalog.Get(lang)
	return l.Source
}

// Stats returns statistics of the loaded trie.
func (id *Identifier) Stats() (trie.Stats, error) {
	if id.trie == nil {
		return trie.Stats{}, ErrNoDatabase
	}
	return id.trie.Stats(), nil
}
