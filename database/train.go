package database

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/unicode/norm"
)

// TrainConfig controls how sample text is turned into n-gram counts.
type TrainConfig struct {
	// MinLen and MaxLen bound the n-gram lengths in bytes.
	MinLen, MaxLen int
	// Words counts n-grams inside single words padded with one space on
	// each side instead of across the running text.
	Words bool
	// Normalize converts the text to Unicode NFC before counting.
	Normalize bool
}

// DefaultTrainConfig returns trigram to five-gram counting over NFC words.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{MinLen: 3, MaxLen: 5, Words: true, Normalize: true}
}

// Train counts the n-grams of text for lang in the mutable trie, unpacking
// the database first if necessary. Counts are raw; scale them with
// ScaleByTrainingSize once all text has been added. It returns the number
// of bytes counted.
func (db *Database) Train(lang uint32, text []byte, cfg TrainConfig) (int, error) {
	if _, ok := db.catalog.Get(lang); !ok {
		return 0, fmt.Errorf("database: unknown language %d", lang)
	}
	if cfg.MinLen < 1 || cfg.MaxLen < cfg.MinLen {
		return 0, fmt.Errorf("database: invalid n-gram range [%d, %d]", cfg.MinLen, cfg.MaxLen)
	}
	m, err := db.Unpacked()
	if err != nil {
		return 0, err
	}
	if cfg.Normalize {
		text = norm.NFC.Bytes(text)
	}
	if cfg.MinLen <= 2 {
		db.hasBigrams = true
	}

	skipWS := m.Config().IgnoreWhitespace
	count := func(seg []byte) {
		for i := range seg {
			if skipWS && seg[i] == ' ' {
				continue
			}
			m.IncrementExtensions(seg[i:], cfg.MinLen, cfg.MaxLen, lang, 1)
		}
	}

	if !cfg.Words {
		count(text)
		return len(text), nil
	}

	var n int
	padded := make([]byte, 0, 64)
	toks := words.FromString(string(text))
	for toks.Next() {
		tok := toks.Value()
		if !isWord(tok) {
			continue
		}
		padded = append(append(append(padded[:0], ' '), tok...), ' ')
		count(padded)
		n += len(tok)
	}
	db.logger.Debug("text trained", "language", lang, "bytes", n, "words", cfg.Words)
	return n, nil
}

// isWord reports whether tok starts with a letter or digit. Segments of
// spaces and punctuation are skipped.
func isWord(tok string) bool {
	r, _ := utf8.DecodeRuneInString(tok)
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
