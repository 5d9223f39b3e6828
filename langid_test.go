package langid

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/langid/blobstore"
	"github.com/hupe1980/langid/catalog"
	"github.com/hupe1980/langid/database"
	"github.com/hupe1980/langid/freq"
	"github.com/hupe1980/langid/trie"
)

const trainingBytes = 1000

type ngram struct {
	key   string
	lang  uint32
	count uint32
	stop  bool
}

type fixture struct {
	langs   []catalog.LanguageID
	grams   []ngram
	bigrams bool
	trie    trie.Config
}

func (f fixture) database(t *testing.T) *database.Database {
	t.Helper()
	opts := database.DefaultOptions()
	if f.trie.BitsPerLevel != 0 {
		opts.Trie = f.trie
	}
	db, err := database.New(opts)
	require.NoError(t, err)

	for _, l := range f.langs {
		_, err := db.AddLanguage(l, trainingBytes)
		require.NoError(t, err)
	}
	db.SetHasBigrams(f.bigrams)

	m, err := db.Unpacked()
	require.NoError(t, err)
	for _, g := range f.grams {
		m.Insert([]byte(g.key), g.lang, g.count, g.stop)
	}
	m.ScaleByTrainingSize(db.Catalog().TrainingTotals())
	return db
}

func (f fixture) bytes(t *testing.T) []byte {
	t.Helper()
	data, err := f.database(t).Bytes()
	require.NoError(t, err)
	return data
}

func (f fixture) load(t *testing.T, opts ...Option) *Identifier {
	t.Helper()
	id, err := Load(f.bytes(t), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = id.Close() })
	return id
}

// expected returns the contribution of one match of a record with count
// occurrences, for a key of keyLen bytes in a buffer of bufLen bytes.
func expected(count uint32, keyLen, bufLen int) float64 {
	f := freq.Encode(freq.ScaleCount(uint64(count), trainingBytes), 0, true, false)
	return freq.NewScoreTable(nil).Score(f) * lengthFactor(keyLen, DefaultBigramWeight) / float64(bufLen)
}

func score(t *testing.T, ls *catalog.LanguageScores, lang uint32) float64 {
	t.Helper()
	s, ok := ls.Get(lang)
	require.True(t, ok)
	return s
}

var (
	en = catalog.LanguageID{Language: "en", Encoding: "utf8", Script: "Latn"}
	de = catalog.LanguageID{Language: "de", Encoding: "utf8", Script: "Latn"}
)

func TestIdentify_ExactMatch(t *testing.T) {
	id := fixture{
		langs: []catalog.LanguageID{en, de},
		grams: []ngram{{key: "the", lang: 0, count: 100}},
	}.load(t)

	scores := id.Identify([]byte("the"))
	require.Equal(t, 2, scores.Len())
	assert.InDelta(t, expected(100, 3, 3), score(t, scores, 0), 1e-9)
	assert.Greater(t, score(t, scores, 0), 0.0)
	assert.Zero(t, score(t, scores, 1))

	results := id.IdentifyLanguages([]byte("the"), 3)
	require.Len(t, results, 1)
	assert.Equal(t, "en", results[0].Code)
	assert.Equal(t, "Latn", results[0].Script)
}

func TestIdentify_NoHit(t *testing.T) {
	id := fixture{
		langs: []catalog.LanguageID{en},
		grams: []ngram{{key: "the", lang: 0, count: 100}},
	}.load(t)

	for _, buf := range []string{"", "t", "th", "xyz", "teh"} {
		scores := id.Identify([]byte(buf))
		assert.Zero(t, score(t, scores, 0), buf)
	}
	assert.Empty(t, id.IdentifyLanguages([]byte("xyz"), 3))
}

func TestIdentify_IgnoreWhitespace(t *testing.T) {
	id := fixture{
		langs:   []catalog.LanguageID{en},
		grams:   []ngram{{key: "ab", lang: 0, count: 50}},
		bigrams: true,
	}.load(t)

	buf := []byte("a b")
	with := id.Identify(buf, IgnoreWhitespace(true))
	assert.InDelta(t, expected(50, 2, len(buf)), score(t, with, 0), 1e-9)

	without := id.Identify(buf, IgnoreWhitespace(false))
	assert.Zero(t, score(t, without, 0))
}

func TestIdentify_TrieIgnoresWhitespace(t *testing.T) {
	cfg := trie.DefaultConfig()
	cfg.IgnoreWhitespace = true
	id := fixture{
		langs: []catalog.LanguageID{en},
		grams: []ngram{{key: "a b c", lang: 0, count: 50}},
		trie:  cfg,
	}.load(t)

	// the key was stored as "abc"; spaces never count towards the length
	scores := id.Identify([]byte("a  bc"))
	assert.InDelta(t, expected(50, 3, 5), score(t, scores, 0), 1e-9)
}

func TestIdentify_SharedNgram(t *testing.T) {
	id := fixture{
		langs: []catalog.LanguageID{en, de},
		grams: []ngram{
			{key: "er", lang: 0, count: 20},
			{key: "er", lang: 1, count: 80},
		},
		bigrams: true,
	}.load(t)

	scores := id.Identify([]byte("er"))
	sEn, sDe := score(t, scores, 0), score(t, scores, 1)
	require.Greater(t, sEn, 0.0)
	require.Greater(t, sDe, 0.0)
	assert.InDelta(t, expected(20, 2, 2), sEn, 1e-9)
	assert.InDelta(t, expected(80, 2, 2), sDe, 1e-9)
	assert.InDelta(t, expected(20, 2, 2)/expected(80, 2, 2), sEn/sDe, 1e-9)
}

func TestIdentify_BigramsNeedWeight(t *testing.T) {
	f := fixture{
		langs:   []catalog.LanguageID{en},
		grams:   []ngram{{key: "er", lang: 0, count: 20}},
		bigrams: true,
	}

	id := f.load(t, WithBigramWeight(0))
	assert.Zero(t, score(t, id.Identify([]byte("er")), 0))

	f.bigrams = false
	id = f.load(t)
	assert.Zero(t, score(t, id.Identify([]byte("er")), 0))
}

func TestIdentify_Alignment(t *testing.T) {
	utf32 := catalog.LanguageID{Language: "en", Encoding: "utf32", Alignment: 4}
	id := fixture{
		langs: []catalog.LanguageID{utf32, en},
		grams: []ngram{
			{key: "aaa", lang: 0, count: 10},
			{key: "aaa", lang: 1, count: 10},
		},
	}.load(t)

	for pad := 0; pad < 8; pad++ {
		buf := []byte(strings.Repeat("b", pad) + "aaa")
		scores := id.Identify(buf)

		assert.Greater(t, score(t, scores, 1), 0.0, "offset %d", pad)
		if pad%4 == 0 {
			assert.InDelta(t, score(t, scores, 1), score(t, scores, 0), 1e-9, "offset %d", pad)
		} else {
			assert.Zero(t, score(t, scores, 0), "offset %d", pad)
		}
	}

	scores := id.Identify([]byte("aaa"), Alignments([4]uint8{1, 1, 1, 1}))
	assert.Zero(t, score(t, scores, 0))
	assert.Greater(t, score(t, scores, 1), 0.0)
}

func TestIdentify_UnknownLanguageRecords(t *testing.T) {
	id := fixture{
		langs: []catalog.LanguageID{en},
		grams: []ngram{
			{key: "the", lang: 0, count: 100},
			{key: "the", lang: 7, count: 100},
		},
	}.load(t)

	for _, opts := range [][]IdentifyOption{
		nil,
		{Alignments([4]uint8{255, 255, 255, 255})},
	} {
		scores := id.Identify([]byte("the"), opts...)
		require.Equal(t, 1, scores.Len())
		assert.Greater(t, score(t, scores, 0), 0.0)
	}
}

func TestLoad_Verification(t *testing.T) {
	f := fixture{
		langs: []catalog.LanguageID{en},
		grams: []ngram{{key: "the", lang: 0, count: 100}},
	}
	for _, v := range []database.Verification{database.VerifyAll, database.VerifyChecksum, database.VerifyNone} {
		id := f.load(t, WithVerification(v))
		assert.Greater(t, score(t, id.Identify([]byte("the")), 0), 0.0)
	}
}

func TestIdentify_StopGrams(t *testing.T) {
	base := fixture{
		langs: []catalog.LanguageID{en, de},
		grams: []ngram{
			{key: "the", lang: 0, count: 100},
			{key: "ich", lang: 1, count: 90},
		},
	}
	withStop := base
	withStop.grams = append(append([]ngram(nil), base.grams...),
		ngram{key: "the", lang: 1, count: 50, stop: true},
		ngram{key: "ich", lang: 0, count: 50, stop: true},
	)

	plain := base.load(t)
	stopped := withStop.load(t)

	buf := []byte("the ich the")
	want := plain.Identify(buf)

	got := stopped.Identify(buf, ApplyStopGrams(false))
	assert.Equal(t, want.Entries(), got.Entries())

	penalized := stopped.Identify(buf, ApplyStopGrams(true))
	assert.Less(t, score(t, penalized, 0), score(t, want, 0))
	assert.Less(t, score(t, penalized, 1), score(t, want, 1))

	custom := withStop.load(t, WithStopGramPenalty(0))
	assert.Equal(t, want.Entries(), custom.Identify(buf).Entries())
}

func TestIdentify_LengthNormalization(t *testing.T) {
	id := fixture{
		langs: []catalog.LanguageID{en},
		grams: []ngram{{key: "the", lang: 0, count: 100}},
	}.load(t)

	buf := []byte("xx the xx")
	byLen := score(t, id.Identify(buf), 0)
	fixed := score(t, id.Identify(buf, LengthNormalization(1)), 0)
	assert.InDelta(t, byLen*float64(len(buf)), fixed, 1e-9)
}

func TestIdentify_LanguageFilter(t *testing.T) {
	f := fixture{
		langs: []catalog.LanguageID{en, de},
		grams: []ngram{
			{key: "der", lang: 0, count: 10},
			{key: "der", lang: 1, count: 90},
		},
	}
	all := f.load(t)
	onlyEn := f.load(t, WithLanguageFilter(catalog.NewLanguageSet(0)))

	buf := []byte("der")
	assert.Greater(t, score(t, all.Identify(buf), 1), 0.0)

	scores := onlyEn.Identify(buf)
	assert.Greater(t, score(t, scores, 0), 0.0)
	assert.Zero(t, score(t, scores, 1))
}

func TestIdentify_ScoreMapping(t *testing.T) {
	id := fixture{
		langs: []catalog.LanguageID{en},
		grams: []ngram{{key: "the", lang: 0, count: 100}},
	}.load(t, WithScoreMapping(func(uint32, bool) float64 { return 1 }))

	scores := id.Identify([]byte("the"))
	assert.InDelta(t, lengthFactor(3, DefaultBigramWeight)/3, score(t, scores, 0), 1e-9)
}

func TestFinishIdentification(t *testing.T) {
	weak := catalog.LanguageID{Language: "nl", MatchFactor: 0.4096}
	id := fixture{
		langs: []catalog.LanguageID{en, de, weak},
		grams: []ngram{
			{key: "een", lang: 0, count: 100},
			{key: "een", lang: 1, count: 10},
			{key: "een", lang: 2, count: 100},
		},
	}.load(t)

	raw := id.Identify([]byte("een"))
	sEn := score(t, raw, 0)
	assert.InDelta(t, sEn, score(t, raw, 2), 1e-9)

	ranked := id.FinishIdentification(raw.Clone(), 5, DefaultCutoffRatio)
	require.Equal(t, 2, ranked.Len())
	assert.Equal(t, uint32(0), ranked.ID(0))
	assert.Equal(t, uint32(2), ranked.ID(1))
	assert.InDelta(t, sEn*0.8, ranked.Score(1), 1e-6)

	top := id.FinishIdentification(raw.Clone(), 1, 0)
	require.Equal(t, 1, top.Len())
	assert.Equal(t, uint32(0), top.ID(0))

	noAdjust := fixture{
		langs: []catalog.LanguageID{en, de, weak},
		grams: []ngram{{key: "een", lang: 2, count: 100}},
	}.load(t, WithAdjustment(false))
	s := noAdjust.FinishIdentification(noAdjust.Identify([]byte("een")), 1, 0)
	assert.InDelta(t, expected(100, 3, 3), s.Score(0), 1e-9)
}

func TestFinishIdentification_NeverEmpties(t *testing.T) {
	id := fixture{
		langs: []catalog.LanguageID{en, de},
		grams: []ngram{{key: "the", lang: 0, count: 100}},
	}.load(t)

	ranked := id.FinishIdentification(id.Identify([]byte("zzz")), 3, DefaultCutoffRatio)
	assert.Equal(t, 1, ranked.Len())
}

func TestIdentifyLanguages_MergesEncodings(t *testing.T) {
	latin1 := catalog.LanguageID{Language: "en", Encoding: "latin1"}
	id := fixture{
		langs: []catalog.LanguageID{en, latin1, de},
		grams: []ngram{
			{key: "the", lang: 0, count: 100},
			{key: "the", lang: 1, count: 90},
			{key: "the", lang: 2, count: 80},
		},
	}.load(t)

	results := id.IdentifyLanguages([]byte("the"), 0)
	require.Len(t, results, 2)
	assert.Equal(t, "en", results[0].Name())
	assert.Equal(t, "utf8", results[0].Encoding)
	assert.Equal(t, "de", results[1].Code)
}

func TestIdentifyLanguages_SimilarityMerge(t *testing.T) {
	enGB := catalog.LanguageID{Language: "en", Region: "GB", Encoding: "utf8"}
	f := fixture{
		langs: []catalog.LanguageID{en, enGB, de},
		grams: []ngram{
			{key: "the", lang: 0, count: 100},
			{key: "the", lang: 1, count: 55},
			{key: "the", lang: 2, count: 70},
		},
	}

	plain := f.load(t, WithAdjustment(false)).IdentifyLanguages([]byte("the"), 3)
	require.Len(t, plain, 3)
	assert.Equal(t, "de", plain[1].Name())

	merged := f.load(t, WithAdjustment(false), WithSimilarityMerge(1)).IdentifyLanguages([]byte("the"), 3)
	require.GreaterOrEqual(t, len(merged), 2)
	assert.ElementsMatch(t, []string{"en", "en_GB"}, []string{merged[0].Name(), merged[1].Name()})
	assert.Greater(t, merged[0].Score, plain[0].Score)
}

func TestAccessors(t *testing.T) {
	pt := catalog.LanguageID{Language: "pt", Region: "BR", Encoding: "utf8", Source: "news"}
	id := fixture{
		langs: []catalog.LanguageID{pt},
		grams: []ngram{{key: "que", lang: 0, count: 5}},
	}.load(t)

	assert.Equal(t, 1, id.NumLanguages())
	assert.Equal(t, "pt", id.LanguageName(0))
	assert.Equal(t, "BR", id.LanguageRegion(0))
	assert.Equal(t, "utf8", id.LanguageEncoding(0))
	assert.Equal(t, "news", id.LanguageSource(0))
	assert.Equal(t, "Latn", id.LanguageScript(0))
	assert.Equal(t, "memory", id.Source())

	l, ok := id.Language(0)
	require.True(t, ok)
	assert.Equal(t, "pt_BR", l.Name())

	_, ok = id.Language(5)
	assert.False(t, ok)
	assert.Empty(t, id.LanguageName(5))

	_, err := id.Stats()
	assert.NoError(t, err)
}

func TestOpen_Fallback(t *testing.T) {
	dir := t.TempDir()
	mc := &BasicMetricsCollector{}

	id, err := Open(filepath.Join(dir, "missing.db"), WithSearchPaths(), WithMetricsCollector(mc))
	require.NoError(t, err)
	require.NotNil(t, id)
	defer id.Close()

	assert.Zero(t, id.NumLanguages())
	assert.Zero(t, id.Identify([]byte("the quick brown fox")).Len())
	assert.Empty(t, id.IdentifyLanguages([]byte("the quick brown fox"), 3))
	assert.Empty(t, id.Source())

	_, err = id.Stats()
	assert.ErrorIs(t, err, ErrNoDatabase)
	assert.Zero(t, mc.GetStats().LoadCount)
}

func TestOpen_SearchPaths(t *testing.T) {
	dir := t.TempDir()
	db := fixture{
		langs: []catalog.LanguageID{en},
		grams: []ngram{{key: "the", lang: 0, count: 100}},
	}.database(t)
	require.NoError(t, db.WriteFile(filepath.Join(dir, DefaultDatabaseName)))

	for _, mmap := range []bool{true, false} {
		id, err := Open("elsewhere/"+DefaultDatabaseName, WithSearchPaths(dir), WithMmap(mmap))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, DefaultDatabaseName), id.Source())
		assert.Greater(t, score(t, id.Identify([]byte("the")), 0), 0.0)
		require.NoError(t, id.Close())
		require.NoError(t, id.Close())
	}
}

func TestOpen_CorruptFallsBack(t *testing.T) {
	dir := t.TempDir()
	store := blobstore.NewLocalStore(dir)
	require.NoError(t, store.Put(context.Background(), "bad.db", []byte("not a database at all")))

	id, err := Open(filepath.Join(dir, "bad.db"), WithSearchPaths())
	require.NoError(t, err)
	assert.Zero(t, id.NumLanguages())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load([]byte("garbage"))
	assert.ErrorIs(t, err, ErrInvalidDatabase)

	data := fixture{
		langs: []catalog.LanguageID{en},
		grams: []ngram{{key: "the", lang: 0, count: 100}},
	}.bytes(t)
	_, err = Load(data, WithBitsPerLevel(8))
	var bpl *ErrBitsPerLevel
	require.ErrorAs(t, err, &bpl)
	assert.Equal(t, 8, bpl.Expected)
	assert.Equal(t, trie.DefaultBitsPerLevel, bpl.Actual)
	assert.ErrorIs(t, err, ErrInvalidDatabase)
	assert.ErrorIs(t, err, trie.ErrBitsPerLevel)

	_, err = Load(data[:len(data)-4])
	assert.ErrorIs(t, err, ErrInvalidDatabase)
}

func TestOpenBlob(t *testing.T) {
	ctx := context.Background()
	data := fixture{
		langs: []catalog.LanguageID{en},
		grams: []ngram{{key: "the", lang: 0, count: 100}},
	}.bytes(t)
	compressed, err := database.Compress(data, database.CompressionZstd)
	require.NoError(t, err)

	stores := map[string]blobstore.BlobStore{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "languages.db", data))
			require.NoError(t, store.Put(ctx, "languages.db.zst", compressed))

			for _, blob := range []string{"languages.db", "languages.db.zst"} {
				id, err := OpenBlob(ctx, store, blob)
				require.NoError(t, err)
				assert.Equal(t, blob, id.Source())
				assert.InDelta(t, expected(100, 3, 3), score(t, id.Identify([]byte("the")), 0), 1e-9)
				require.NoError(t, id.Close())
			}

			_, err := OpenBlob(ctx, store, "missing.db")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMetrics(t *testing.T) {
	mc := &BasicMetricsCollector{}
	id := fixture{
		langs: []catalog.LanguageID{en},
		grams: []ngram{{key: "the", lang: 0, count: 100}},
	}.load(t, WithMetricsCollector(mc), WithLogger(NoopLogger()))

	id.Identify([]byte("the"))
	id.Identify([]byte("the cat"))

	_, err := Load([]byte("bad"), WithMetricsCollector(mc))
	require.Error(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.LoadCount)
	assert.Equal(t, int64(1), stats.LoadErrors)
	assert.Equal(t, int64(2), stats.IdentifyCount)
	assert.Equal(t, int64(10), stats.IdentifyBytes)
}

func TestLengthFactors(t *testing.T) {
	lf := lengthFactors(4, 0.5)
	require.Len(t, lf, 5)
	assert.Zero(t, lf[0])
	assert.Equal(t, 1.0, lf[1])
	assert.InDelta(t, 0.5*270*1.681792830507429, lf[2], 1e-9)
	assert.InDelta(t, 270*2.2795070569547775, lf[3], 1e-9)
	assert.InDelta(t, 270*2.8284271247461903, lf[4], 1e-9)
}

func TestSearchCandidates(t *testing.T) {
	got := searchCandidates("", []string{".", "/usr/share/langid", ""})
	assert.Equal(t, []string{"languages.db", "/usr/share/langid/languages.db"}, got)

	got = searchCandidates("/opt/db/custom.db", []string{"/usr/share/langid"})
	assert.Equal(t, []string{"/opt/db/custom.db", "/usr/share/langid/custom.db"}, got)
}
