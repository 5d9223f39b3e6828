package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/langid/catalog"
)

func TestTrainWords(t *testing.T) {
	db, err := New(DefaultOptions())
	require.NoError(t, err)
	en, err := db.AddLanguage(catalog.LanguageID{Language: "en", Encoding: "utf8"}, 100)
	require.NoError(t, err)

	n, err := db.Train(en, []byte("the cat, the hat."), DefaultTrainConfig())
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	m, err := db.Unpacked()
	require.NoError(t, err)

	recs, ok := m.Lookup([]byte(" the "))
	require.True(t, ok)
	require.Len(t, recs, 1)
	assert.Equal(t, uint32(2), recs[0].Count)

	_, ok = m.Lookup([]byte("at "))
	assert.True(t, ok)
	_, ok = m.Lookup([]byte("e ca"))
	assert.False(t, ok, "n-grams do not cross words")
	_, ok = m.Lookup([]byte("t,"))
	assert.False(t, ok)
	assert.False(t, db.HasBigrams())
}

func TestTrainRunningText(t *testing.T) {
	db, err := New(DefaultOptions())
	require.NoError(t, err)
	en, err := db.AddLanguage(catalog.LanguageID{Language: "en"}, 100)
	require.NoError(t, err)

	cfg := TrainConfig{MinLen: 2, MaxLen: 4}
	n, err := db.Train(en, []byte("ab ab"), cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.True(t, db.HasBigrams())

	m, err := db.Unpacked()
	require.NoError(t, err)
	recs, ok := m.Lookup([]byte("ab"))
	require.True(t, ok)
	assert.Equal(t, uint32(2), recs[0].Count)
	_, ok = m.Lookup([]byte("b a"))
	assert.True(t, ok)
}

func TestTrainIgnoreWhitespaceTrie(t *testing.T) {
	opts := DefaultOptions()
	opts.Trie.IgnoreWhitespace = true
	db, err := New(opts)
	require.NoError(t, err)
	en, err := db.AddLanguage(catalog.LanguageID{Language: "en"}, 100)
	require.NoError(t, err)

	_, err = db.Train(en, []byte("ab"), TrainConfig{MinLen: 2, MaxLen: 3, Words: true})
	require.NoError(t, err)

	m, err := db.Unpacked()
	require.NoError(t, err)
	recs, ok := m.Lookup([]byte("ab"))
	require.True(t, ok)
	assert.Equal(t, uint32(1), recs[0].Count)
	for _, key := range []string{"a", "b"} {
		_, ok := m.Lookup([]byte(key))
		assert.False(t, ok, key)
	}
}

func TestTrainNormalizes(t *testing.T) {
	db, err := New(DefaultOptions())
	require.NoError(t, err)
	fr, err := db.AddLanguage(catalog.LanguageID{Language: "fr"}, 100)
	require.NoError(t, err)

	_, err = db.Train(fr, []byte("e\u0301te\u0301"), DefaultTrainConfig())
	require.NoError(t, err)

	m, err := db.Unpacked()
	require.NoError(t, err)
	_, ok := m.Lookup([]byte(" \u00e9t"))
	assert.True(t, ok)
}

func TestTrainErrors(t *testing.T) {
	db, err := New(DefaultOptions())
	require.NoError(t, err)

	_, err = db.Train(0, []byte("x"), DefaultTrainConfig())
	assert.Error(t, err)

	en, err := db.AddLanguage(catalog.LanguageID{Language: "en"}, 1)
	require.NoError(t, err)
	_, err = db.Train(en, []byte("x"), TrainConfig{MinLen: 4, MaxLen: 2})
	assert.Error(t, err)
}
