// Package testutil provides testing utilities for langid.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source for generating n-gram keys, text
// and skewed counts.
//
// # Random Keys
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.Keys(1000, 2, 5, testutil.Lowercase)
//
// # Skewed Counts
//
//	count := rng.Zipf(1000, 1.2) + 1 // n-gram counts follow a power law
//
// # Text
//
//	buf := rng.Text(4096, testutil.Lowercase + " ")
package testutil
