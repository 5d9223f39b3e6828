// Package catalog holds per-language metadata and the score vector that
// identification produces.
//
// A [Catalog] is the dense list of [LanguageID] records of one database,
// indexed by language ID. [LanguageScores] is the per-query accumulator with
// sort, top-N, filter and merge operations. [LanguageSet] is a roaring
// bitmap of language IDs used to restrict identification.
package catalog
