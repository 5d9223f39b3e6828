package langid

import (
	"context"
	"time"

	"github.com/hupe1980/langid/catalog"
	"github.com/hupe1980/langid/trie"
)

// Result is one ranked language of IdentifyLanguages.
type Result struct {
	ID       uint32
	Code     string
	Region   string
	Encoding string
	Script   string
	Score    float64
}

// Name returns the code with the region appended, e.g. "pt_BR".
func (r Result) Name() string {
	if r.Region == "" {
		return r.Code
	}
	return r.Code + "_" + r.Region
}

// Identify scores buf against every language. The returned vector is dense
// (entry i belongs to language i) and unsorted; pass it to
// FinishIdentification to rank it.
//
// Every start offset is matched against the trie byte by byte. Whenever the
// match reaches a leaf, each record of the leaf adds its mapped score,
// weighted by the match length and divided by the buffer length, to its
// language, unless the language needs a wider alignment than the start
// offset permits.
func (id *Identifier) Identify(buf []byte, opts ...IdentifyOption) *catalog.LanguageScores {
	start := time.Now()
	scores := catalog.NewLanguageScores(id.NumLanguages())
	if id.trie == nil || len(buf) == 0 || scores.Len() == 0 {
		return scores
	}

	o := defaultIdentifyOptions()
	for _, opt := range opts {
		opt(&o)
	}

	normalizer := o.normalizer
	if normalizer <= 0 {
		normalizer = float64(len(buf))
	}
	factors := make([]float64, len(id.lengthFactors))
	for n, lf := range id.lengthFactors {
		factors[n] = lf / normalizer
	}

	id.accumulate(scores.Raw(), buf, factors, normalizer, o)

	elapsed := time.Since(start)
	id.metrics.RecordIdentify(len(buf), elapsed)
	id.logger.LogIdentify(context.Background(), len(buf), countPositive(scores), elapsed)
	return scores
}

func (id *Identifier) accumulate(acc []float64, buf []byte, factors []float64, normalizer float64, o identifyOptions) {
	t := id.trie
	skipWS := o.ignoreWhitespace || t.IgnoresWhitespace()
	minHistory := id.minHistory
	numFreqs := uint32(t.NumFrequencies())
	n := len(buf)

	for i := 0; i+minHistory <= n; i++ {
		if skipWS && buf[i] == ' ' {
			continue
		}
		permitted := o.alignments[i&3]

		node := trie.Root
		keyLen := 0
		j := i
		ok := true
		for keyLen < minHistory && j < n {
			b := buf[j]
			j++
			if skipWS && b == ' ' {
				continue
			}
			if node, ok = t.ExtendKey(node, b); !ok {
				break
			}
			keyLen++
		}
		if !ok || keyLen < minHistory {
			continue
		}

		for ; j < n; j++ {
			b := buf[j]
			if skipWS && b == ' ' {
				continue
			}
			if node, ok = t.ExtendKey(node, b); !ok {
				break
			}
			keyLen++

			fi, leaf := t.FrequencyIndex(node)
			if !leaf {
				continue
			}
			var factor float64
			if keyLen < len(factors) {
				factor = factors[keyLen]
			} else {
				factor = lengthFactor(keyLen, id.bigramWeight) / normalizer
			}

			for ; fi < numFreqs; fi++ {
				f := t.FrequencyAt(fi)
				score := id.table.Score(f)
				if !o.applyStopGrams && score <= 0 {
					break
				}
				lang := f.LanguageID()
				if id.alignClass[lang] <= permitted {
					acc[lang] += score * factor
				}
				if f.IsLast() {
					break
				}
			}
		}
	}
}

func countPositive(scores *catalog.LanguageScores) int {
	n := 0
	for i := range scores.Len() {
		if scores.Score(i) > 0 {
			n++
		}
	}
	return n
}

// FinishIdentification ranks scores in place: it applies the per-language
// adjustment (unless disabled with WithAdjustment), drops languages below
// cutoffRatio × the best score and keeps the topN best. A nonempty vector
// keeps at least one entry.
func (id *Identifier) FinishIdentification(scores *catalog.LanguageScores, topN int, cutoffRatio float64) *catalog.LanguageScores {
	id.adjustScores(scores)
	scores.Sort(cutoffRatio)
	scores.TopN(topN)
	return scores
}

func (id *Identifier) adjustScores(scores *catalog.LanguageScores) {
	if !id.adjust {
		return
	}
	scores.Scale(func(lang uint32) float64 {
		if int(lang) < len(id.adjustment) {
			return id.adjustment[lang]
		}
		return 1
	})
}

// IdentifyLanguages identifies buf and returns up to topN languages with a
// positive score, best first. A language trained in several encodings is
// reported once. WithSimilarityMerge lets related languages reinforce each
// other before ranking. topN <= 0 selects DefaultTopN.
func (id *Identifier) IdentifyLanguages(buf []byte, topN int, opts ...IdentifyOption) []Result {
	if topN <= 0 {
		topN = DefaultTopN
	}
	scores := id.Identify(buf, opts...)
	id.adjustScores(scores)
	scores.MergeDuplicates(id.catalog.Name)
	if id.similarity > 0 {
		scores.MergeSimilar(id.catalog.Similarity, id.similarity)
	}
	scores.Sort(DefaultCutoffRatio)
	scores.TopN(topN)

	results := make([]Result, 0, scores.Len())
	for i := range scores.Len() {
		if scores.Score(i) <= 0 {
			continue
		}
		lang := scores.ID(i)
		results = append(results, Result{
			ID:       lang,
			Code:     id.LanguageName(lang),
			Region:   id.LanguageRegion(lang),
			Encoding: id.LanguageEncoding(lang),
			Script:   id.LanguageScript(lang),
			Score:    scores.Score(i),
		})
	}
	return results
}
