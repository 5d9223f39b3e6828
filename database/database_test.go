package database

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/langid/catalog"
	"github.com/hupe1980/langid/freq"
	"github.com/hupe1980/langid/internal/fs"
	"github.com/hupe1980/langid/trie"
)

func buildTestDB(t *testing.T, opts Options) *Database {
	t.Helper()
	db, err := New(opts)
	require.NoError(t, err)

	en, err := db.AddLanguage(catalog.LanguageID{Language: "en", Encoding: "utf8", Script: "Latn", MatchFactor: 0.9}, 1000)
	require.NoError(t, err)
	de, err := db.AddLanguage(catalog.LanguageID{Language: "de", Encoding: "utf8", Alignment: 1}, 2000)
	require.NoError(t, err)

	m, err := db.Unpacked()
	require.NoError(t, err)
	m.Insert([]byte("the"), en, 100, false)
	m.Insert([]byte("er"), en, 20, false)
	m.Insert([]byte("er"), de, 80, false)
	m.Insert([]byte("der"), de, 60, false)
	m.Insert([]byte("zz"), en, 1, true)
	m.ScaleByTrainingSize(db.Catalog().TrainingTotals())
	return db
}

func TestNewDefaults(t *testing.T) {
	db, err := New(Options{})
	require.NoError(t, err)
	assert.Zero(t, db.NumLanguages())
	assert.IsType(t, Mutable{}, db.Representation())

	_, err = New(Options{Trie: trie.Config{BitsPerLevel: 5}})
	assert.ErrorIs(t, err, trie.ErrInvalidConfig)
}

func TestRepresentationSwitch(t *testing.T) {
	db := buildTestDB(t, DefaultOptions())

	p, err := db.Packed()
	require.NoError(t, err)
	assert.IsType(t, Packed{}, db.Representation())
	_, ok := p.Find([]byte("the"))
	assert.True(t, ok)

	again, err := db.Packed()
	require.NoError(t, err)
	assert.Same(t, p, again)

	m, err := db.Unpacked()
	require.NoError(t, err)
	assert.IsType(t, Mutable{}, db.Representation())
	_, ok = m.Lookup([]byte("der"))
	assert.True(t, ok)
}

func TestWriteParseRoundTrip(t *testing.T) {
	db := buildTestDB(t, DefaultOptions())
	db.SetHasBigrams(true)
	db.SetScoreTable(freq.NewScoreTable(freq.PercentageMapping(-3)))

	data, err := db.Bytes()
	require.NoError(t, err)

	loaded, err := Parse(data, Options{BitsPerLevel: trie.DefaultBitsPerLevel})
	require.NoError(t, err)

	assert.True(t, loaded.HasBigrams())
	assert.Equal(t, 2, loaded.NumLanguages())
	en, _ := loaded.Catalog().Get(0)
	assert.Equal(t, "en", en.Language)
	assert.Equal(t, uint64(1000), en.TrainingBytes)
	assert.InDelta(t, 0.9, en.MatchFactor, 1e-6)
	assert.True(t, db.ScoreTable().Equal(loaded.ScoreTable()))

	want, _ := db.Packed()
	got, err := loaded.Packed()
	require.NoError(t, err)
	assert.Equal(t, want.Checksum(), got.Checksum())
	n, ok := got.Find([]byte("er"))
	require.True(t, ok)
	assert.Len(t, got.Frequencies(n), 2)

	// the header records where the score table starts
	off := binary.BigEndian.Uint64(data[offTableOffset:])
	assert.Equal(t, uint32(tableMarker), binary.BigEndian.Uint32(data[off:]))
}

func TestParseErrors(t *testing.T) {
	data, err := buildTestDB(t, DefaultOptions()).Bytes()
	require.NoError(t, err)

	t.Run("signature", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[0] = 'X'
		_, err := Parse(bad, Options{})
		assert.ErrorIs(t, err, ErrSignature)
	})
	t.Run("version", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[offVersion] = 2
		_, err := Parse(bad, Options{})
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})
	t.Run("bits per level", func(t *testing.T) {
		_, err := Parse(data, Options{BitsPerLevel: 8})
		assert.ErrorIs(t, err, trie.ErrBitsPerLevel)
	})
	t.Run("truncated", func(t *testing.T) {
		for _, n := range []int{10, HeaderSize + 5, HeaderSize + 2*catalog.RecordSize + 10, len(data) - 1} {
			_, err := Parse(data[:n], Options{})
			assert.Error(t, err, "length %d", n)
		}
	})
	t.Run("table offset", func(t *testing.T) {
		bad := bytes.Clone(data)
		binary.BigEndian.PutUint64(bad[offTableOffset:], 12)
		_, err := Parse(bad, Options{})
		assert.ErrorIs(t, err, ErrScoreTable)
	})
	t.Run("marker", func(t *testing.T) {
		bad := bytes.Clone(data)
		off := binary.BigEndian.Uint64(bad[offTableOffset:])
		bad[off] = 0
		_, err := Parse(bad, Options{})
		assert.ErrorIs(t, err, ErrScoreTable)
	})
}

func TestDecompressZstdSizeBound(t *testing.T) {
	data := bytes.Repeat([]byte("langid "), 4096)
	packed, err := Compress(data, CompressionZstd)
	require.NoError(t, err)

	t.Run("understated", func(t *testing.T) {
		bad := bytes.Clone(packed)
		binary.BigEndian.PutUint64(bad[8:], 100)
		_, err := Decompress(bad)
		assert.ErrorIs(t, err, ErrCompression)
	})
	t.Run("oversized", func(t *testing.T) {
		bad := bytes.Clone(packed)
		binary.BigEndian.PutUint64(bad[8:], maxPrealloc+1)
		_, err := Decompress(bad)
		assert.ErrorIs(t, err, ErrCompression)
	})
}

func TestParseVerification(t *testing.T) {
	db := buildTestDB(t, DefaultOptions())
	data, err := db.Bytes()
	require.NoError(t, err)

	// overwrite the checksum field of the embedded trie header
	const trieChecksum = 28
	bad := bytes.Clone(data)
	at := HeaderSize + 2*catalog.RecordSize + trieChecksum
	binary.BigEndian.PutUint32(bad[at:], binary.BigEndian.Uint32(bad[at:])^0xffffffff)

	for _, v := range []Verification{VerifyAll, VerifyChecksum} {
		_, err := Parse(bad, Options{Verify: v})
		assert.ErrorIs(t, err, trie.ErrChecksum)
	}

	loaded, err := Parse(bad, Options{Verify: VerifyNone})
	require.NoError(t, err)
	p, err := loaded.Packed()
	require.NoError(t, err)
	_, ok := p.Find([]byte("der"))
	assert.True(t, ok)

	_, err = Parse(data, Options{Verify: VerifyChecksum})
	assert.NoError(t, err)
}

func TestWriteFileOpen(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		for _, mapped := range []bool{false, true} {
			t.Run(c.String(), func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "languages.db")
				opts := DefaultOptions()
				opts.Compression = c
				opts.Mmap = mapped
				require.NoError(t, buildTestDB(t, opts).WriteFile(path))
				assert.True(t, Exists(nil, path))

				db, err := Open(path, opts)
				require.NoError(t, err)
				defer db.Close()

				assert.Equal(t, 2, db.NumLanguages())
				p, err := db.Packed()
				require.NoError(t, err)
				_, ok := p.Find([]byte("der"))
				assert.True(t, ok)
			})
		}
	}
}

func TestWriteFileFault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "languages.db")
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("languages.db", fs.Fault{FailAfterBytes: 100})

	opts := DefaultOptions()
	opts.FileSystem = ffs
	err := buildTestDB(t, opts).WriteFile(path)
	assert.ErrorIs(t, err, fs.ErrInjected)
	assert.False(t, Exists(nil, path))
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.db"), DefaultOptions())
	assert.Error(t, err)
	assert.False(t, Exists(nil, t.TempDir()), "directories are not databases")
}

func TestCompressRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("langident "), 1000)
	for _, c := range []Compression{CompressionLZ4, CompressionZstd} {
		packed, err := Compress(data, c)
		require.NoError(t, err)
		assert.True(t, IsCompressed(packed))
		assert.Less(t, len(packed), len(data))

		raw, err := Decompress(packed)
		require.NoError(t, err)
		assert.Equal(t, data, raw)

		_, err = Decompress(packed[:containerHeaderSize+2])
		assert.ErrorIs(t, err, ErrCompression)
	}

	same, err := Compress(data, CompressionNone)
	require.NoError(t, err)
	assert.Equal(t, data, same)

	_, err = Compress(data, Compression(9))
	assert.ErrorIs(t, err, ErrCompression)
}
