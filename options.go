package langid

import (
	"log/slog"

	"github.com/hupe1980/langid/catalog"
	"github.com/hupe1980/langid/database"
	"github.com/hupe1980/langid/freq"
	"github.com/hupe1980/langid/internal/fs"
)

const (
	// DefaultDatabaseName is the file looked up when Open is given no path.
	DefaultDatabaseName = "languages.db"

	// DefaultBigramWeight scales the length factor of two-byte n-grams.
	DefaultBigramWeight = 0.15

	// DefaultCutoffRatio drops languages scoring below half the best score.
	DefaultCutoffRatio = 0.5

	// DefaultTopN is the number of results returned by IdentifyLanguages.
	DefaultTopN = 5
)

// DefaultSearchPaths are the directories Open searches after the given
// path. "~" is expanded to the home directory.
var DefaultSearchPaths = []string{".", "~/.langid", "/usr/share/langid"}

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	searchPaths      []string
	mmap             bool
	bitsPerLevel     int
	verify           database.Verification
	mapping          freq.Mapping
	penalty          *float64
	bigramWeight     float64
	adjust           bool
	similarity       float64
	filter           *catalog.LanguageSet
	fileSystem       fs.FileSystem
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		searchPaths:      DefaultSearchPaths,
		mmap:             true,
		bigramWeight:     DefaultBigramWeight,
		adjust:           true,
		fileSystem:       fs.Default,
	}
}

func newOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures Open, Load and OpenBlob.
type Option func(*options)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithLogLevel logs human-readable text to stderr at the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithSearchPaths replaces the directories Open searches for the database
// file. An empty list restricts Open to the given path.
func WithSearchPaths(dirs ...string) Option {
	return func(o *options) {
		o.searchPaths = dirs
	}
}

// WithMmap enables or disables memory mapping of database files.
// Enabled by default.
func WithMmap(enabled bool) Option {
	return func(o *options) {
		o.mmap = enabled
	}
}

// WithBitsPerLevel makes loading fail unless the database trie uses the
// given branching width (2, 3, 4 or 8).
func WithBitsPerLevel(bits int) Option {
	return func(o *options) {
		o.bitsPerLevel = bits
	}
}

// WithVerification selects the integrity checks run when the database is
// loaded. The default, database.VerifyAll, checks the checksum and every
// trie link.
func WithVerification(v database.Verification) Option {
	return func(o *options) {
		o.verify = v
	}
}

// WithScoreMapping replaces the score table stored in the database with
// one built from m.
func WithScoreMapping(m freq.Mapping) Option {
	return func(o *options) {
		o.mapping = m
	}
}

// WithStopGramPenalty sets the score of every stop-gram record.
func WithStopGramPenalty(penalty float64) Option {
	return func(o *options) {
		o.penalty = &penalty
	}
}

// WithBigramWeight sets the weight of two-byte n-grams. Zero disables
// bigram scoring, so keys need at least two bytes of history.
func WithBigramWeight(w float64) Option {
	return func(o *options) {
		if w >= 0 {
			o.bigramWeight = w
		}
	}
}

// WithAdjustment enables or disables the per-language adjustment applied
// by FinishIdentification. Enabled by default.
func WithAdjustment(enabled bool) Option {
	return func(o *options) {
		o.adjust = enabled
	}
}

// WithSimilarityMerge makes IdentifyLanguages add weight × similarity ×
// score of every closely related candidate to each language's score before
// ranking. Similarity comes from Catalog.Similarity. Zero, the default,
// disables merging.
func WithSimilarityMerge(weight float64) Option {
	return func(o *options) {
		if weight >= 0 {
			o.similarity = weight
		}
	}
}

// WithLanguageFilter restricts identification to the languages in set.
// Records of other languages are skipped during scoring.
func WithLanguageFilter(set *catalog.LanguageSet) Option {
	return func(o *options) {
		o.filter = set
	}
}

// WithFileSystem sets the file system used by Open.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = fs.Default
		}
		o.fileSystem = fsys
	}
}

type identifyOptions struct {
	ignoreWhitespace bool
	applyStopGrams   bool
	normalizer       float64
	alignments       [4]uint8
}

func defaultIdentifyOptions() identifyOptions {
	return identifyOptions{
		applyStopGrams: true,
		alignments:     DefaultAlignments,
	}
}

// DefaultAlignments is the largest language alignment permitted at a start
// offset, indexed by offset modulo 4.
var DefaultAlignments = [4]uint8{4, 1, 2, 1}

// IdentifyOption configures a single Identify call.
type IdentifyOption func(*identifyOptions)

// IgnoreWhitespace skips space bytes while matching, so "a b" matches the
// n-gram "ab". Tries built to ignore whitespace always do this.
func IgnoreWhitespace(enabled bool) IdentifyOption {
	return func(o *identifyOptions) {
		o.ignoreWhitespace = enabled
	}
}

// ApplyStopGrams controls whether stop-gram records add their penalty.
// When disabled, stop-grams are skipped. Enabled by default.
func ApplyStopGrams(enabled bool) IdentifyOption {
	return func(o *identifyOptions) {
		o.applyStopGrams = enabled
	}
}

// LengthNormalization divides every contribution by n instead of the
// buffer length. Values <= 0 select the buffer length.
func LengthNormalization(n float64) IdentifyOption {
	return func(o *identifyOptions) {
		o.normalizer = n
	}
}

// Alignments sets the largest language alignment permitted at each start
// offset modulo 4. Values above catalog.MaxAlignment are clamped.
func Alignments(a [4]uint8) IdentifyOption {
	return func(o *identifyOptions) {
		for i, v := range a {
			o.alignments[i] = min(v, catalog.MaxAlignment)
		}
	}
}
