package catalog

import "github.com/RoaringBitmap/roaring/v2"

// LanguageSet is a set of language IDs.
type LanguageSet struct {
	bm *roaring.Bitmap
}

// NewLanguageSet creates a set holding ids.
func NewLanguageSet(ids ...uint32) *LanguageSet {
	return &LanguageSet{bm: roaring.BitmapOf(ids...)}
}

// Add inserts id.
func (s *LanguageSet) Add(id uint32) { s.bm.Add(id) }

// Remove deletes id.
func (s *LanguageSet) Remove(id uint32) { s.bm.Remove(id) }

// Contains reports whether id is in the set. A nil set contains nothing.
func (s *LanguageSet) Contains(id uint32) bool {
	return s != nil && s.bm.Contains(id)
}

// Len returns the number of IDs.
func (s *LanguageSet) Len() int {
	if s == nil {
		return 0
	}
	return int(s.bm.GetCardinality())
}

// IDs returns the IDs in ascending order.
func (s *LanguageSet) IDs() []uint32 {
	if s == nil {
		return nil
	}
	return s.bm.ToArray()
}

// Union returns a new set with the IDs of both sets.
func (s *LanguageSet) Union(o *LanguageSet) *LanguageSet {
	return &LanguageSet{bm: roaring.Or(s.bm, o.bm)}
}

// Intersect returns a new set with the IDs present in both sets.
func (s *LanguageSet) Intersect(o *LanguageSet) *LanguageSet {
	return &LanguageSet{bm: roaring.And(s.bm, o.bm)}
}

// Clone returns a copy of s.
func (s *LanguageSet) Clone() *LanguageSet {
	return &LanguageSet{bm: s.bm.Clone()}
}
