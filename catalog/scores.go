package catalog

import (
	"slices"
)

// LanguageScores holds parallel language IDs and scores.
//
// A fresh vector is dense: entry i belongs to language i. Sorting reorders
// and truncates the entries and sets the sorted flag; after that entries
// are matched by ID.
type LanguageScores struct {
	ids    []uint32
	scores []float64
	sorted bool
	dense  bool
}

// NewLanguageScores creates a dense vector for n languages with all scores
// zero.
func NewLanguageScores(n int) *LanguageScores {
	ls := &LanguageScores{
		ids:    make([]uint32, n),
		scores: make([]float64, n),
		dense:  true,
	}
	for i := range ls.ids {
		ls.ids[i] = uint32(i)
	}
	return ls
}

// Len returns the number of entries.
func (ls *LanguageScores) Len() int { return len(ls.ids) }

// Sorted reports whether the entries are ordered by descending score.
func (ls *LanguageScores) Sorted() bool { return ls.sorted }

// ID returns the language ID of entry i.
func (ls *LanguageScores) ID(i int) uint32 { return ls.ids[i] }

// Score returns the score of entry i.
func (ls *LanguageScores) Score(i int) float64 { return ls.scores[i] }

// Raw returns the score slice of a dense vector, indexed by language ID.
// Identification accumulates into it directly. It returns nil once the
// vector was reordered or filtered.
func (ls *LanguageScores) Raw() []float64 {
	if !ls.dense {
		return nil
	}
	return ls.scores
}

func (ls *LanguageScores) index(id uint32) int {
	if ls.dense {
		if int(id) < len(ls.ids) {
			return int(id)
		}
		return -1
	}
	for i, x := range ls.ids {
		if x == id {
			return i
		}
	}
	return -1
}

// Get returns the score of language id.
func (ls *LanguageScores) Get(id uint32) (float64, bool) {
	if i := ls.index(id); i >= 0 {
		return ls.scores[i], true
	}
	return 0, false
}

// Set stores the score of language id, appending an entry when absent.
func (ls *LanguageScores) Set(id uint32, score float64) {
	if i := ls.index(id); i >= 0 {
		ls.scores[i] = score
		return
	}
	ls.dense = ls.dense && int(id) == len(ls.ids)
	ls.ids = append(ls.ids, id)
	ls.scores = append(ls.scores, score)
	ls.sorted = false
}

// Entries returns a copy of the entries in their current order.
func (ls *LanguageScores) Entries() []Entry {
	out := make([]Entry, len(ls.ids))
	for i := range ls.ids {
		out[i] = Entry{ID: ls.ids[i], Score: ls.scores[i]}
	}
	return out
}

// Entry is one (language, score) pair.
type Entry struct {
	ID    uint32
	Score float64
}

// Clone returns a deep copy.
func (ls *LanguageScores) Clone() *LanguageScores {
	return &LanguageScores{
		ids:    slices.Clone(ls.ids),
		scores: slices.Clone(ls.scores),
		sorted: ls.sorted,
		dense:  ls.dense,
	}
}

// Add adds weight × other to ls. Two dense vectors of equal length are
// combined position by position; otherwise entries are matched by ID.
func (ls *LanguageScores) Add(other *LanguageScores, weight float64) {
	if ls.dense && other.dense && len(ls.ids) == len(other.ids) {
		for i, s := range other.scores {
			ls.scores[i] += weight * s
		}
		return
	}
	for i, id := range other.ids {
		cur, _ := ls.Get(id)
		ls.Set(id, cur+weight*other.scores[i])
	}
}

// Subtract subtracts weight × other from ls.
func (ls *LanguageScores) Subtract(other *LanguageScores, weight float64) {
	ls.Add(other, -weight)
}

// Scale multiplies every score by factor(id).
func (ls *LanguageScores) Scale(factor func(id uint32) float64) {
	for i, id := range ls.ids {
		ls.scores[i] *= factor(id)
	}
}

func (ls *LanguageScores) swap(i, j int) {
	ls.dense = false
	ls.ids[i], ls.ids[j] = ls.ids[j], ls.ids[i]
	ls.scores[i], ls.scores[j] = ls.scores[j], ls.scores[i]
}

// sortDescending orders entries by score, highest first, ties by ID.
func (ls *LanguageScores) sortDescending() {
	entries := ls.Entries()
	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return int(a.ID) - int(b.ID)
		}
	})
	for i, e := range entries {
		ls.ids[i], ls.scores[i] = e.ID, e.Score
	}
	ls.sorted = true
	ls.dense = false
}

// Sort orders the entries by descending score and drops every entry that
// is not positive or scores below cutoffRatio × the highest score. A
// nonempty vector always keeps at least its highest entry.
func (ls *LanguageScores) Sort(cutoffRatio float64) {
	if len(ls.ids) == 0 {
		ls.sorted = true
		return
	}
	ls.sortDescending()
	threshold := cutoffRatio * ls.scores[0]
	keep := 1
	for keep < len(ls.ids) {
		s := ls.scores[keep]
		if s <= 0 || s < threshold {
			break
		}
		keep++
	}
	ls.Truncate(keep)
}

// TopN keeps the n highest scoring entries in descending order. It inserts
// into a small ordered prefix instead of sorting the whole vector, which
// is cheap for the usual n of ten or less.
func (ls *LanguageScores) TopN(n int) {
	if n <= 0 {
		ls.Truncate(0)
		ls.sorted = true
		return
	}
	if ls.sorted {
		ls.Truncate(n)
		return
	}
	k := 0
	for i := range ls.ids {
		if k == n && !better(ls.scores[i], ls.ids[i], ls.scores[k-1], ls.ids[k-1]) {
			continue
		}
		pos := k
		if k < n {
			ls.swap(k, i)
			k++
		} else {
			ls.swap(n-1, i)
			pos = n - 1
		}
		for pos > 0 && better(ls.scores[pos], ls.ids[pos], ls.scores[pos-1], ls.ids[pos-1]) {
			ls.swap(pos, pos-1)
			pos--
		}
	}
	ls.Truncate(k)
	ls.sorted = true
}

func better(s1 float64, id1 uint32, s2 float64, id2 uint32) bool {
	return s1 > s2 || (s1 == s2 && id1 < id2)
}

// Truncate keeps the first n entries.
func (ls *LanguageScores) Truncate(n int) {
	if n < len(ls.ids) {
		ls.ids = ls.ids[:n]
		ls.scores = ls.scores[:n]
	}
}

// Filter drops every entry for which keep returns false.
func (ls *LanguageScores) Filter(keep func(id uint32, score float64) bool) {
	j := 0
	for i := range ls.ids {
		if keep(ls.ids[i], ls.scores[i]) {
			ls.ids[j], ls.scores[j] = ls.ids[i], ls.scores[i]
			j++
		}
	}
	if j < len(ls.ids) {
		ls.dense = false
		ls.ids = ls.ids[:j]
		ls.scores = ls.scores[:j]
	}
}

// FilterSet drops every language not in set.
func (ls *LanguageScores) FilterSet(set *LanguageSet) {
	ls.Filter(func(id uint32, _ float64) bool { return set.Contains(id) })
}

// MergeDuplicates keeps one entry per name, the highest scoring one, so a
// language trained in several encodings is reported once. The result is
// sorted.
func (ls *LanguageScores) MergeDuplicates(name func(id uint32) string) {
	ls.sortDescending()
	seen := make(map[string]struct{}, len(ls.ids))
	ls.Filter(func(id uint32, _ float64) bool {
		n := name(id)
		if _, dup := seen[n]; dup {
			return false
		}
		seen[n] = struct{}{}
		return true
	})
}

// MergeSimilar adds to every positive entry the scores of the other
// entries weighted by their similarity, scaled by weight, and re-sorts.
// Closely related languages thereby reinforce each other's evidence.
func (ls *LanguageScores) MergeSimilar(similarity func(a, b uint32) float64, weight float64) {
	merged := slices.Clone(ls.scores)
	for i, a := range ls.ids {
		if ls.scores[i] <= 0 {
			continue
		}
		for j, b := range ls.ids {
			if i == j || ls.scores[j] <= 0 {
				continue
			}
			if sim := similarity(a, b); sim > 0 {
				merged[i] += weight * sim * ls.scores[j]
			}
		}
	}
	ls.scores = merged
	ls.sortDescending()
}
