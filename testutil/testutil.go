package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// Lowercase is the ASCII lowercase alphabet.
const Lowercase = "abcdefghijklmnopqrstuvwxyz"

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint32n returns a pseudo-random number in [0,n).
func (r *RNG) Uint32n(n uint32) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return uint32(r.rand.Int63n(int64(n)))
}

// Bool returns a pseudo-random bool that is true with probability p.
func (r *RNG) Bool(p float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64() < p
}

// Text returns n bytes drawn uniformly from alphabet.
// Locks only once per call.
func (r *RNG) Text(n int, alphabet string) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.textLocked(n, alphabet)
}

func (r *RNG) textLocked(n int, alphabet string) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = alphabet[r.rand.Intn(len(alphabet))]
	}
	return buf
}

// Keys returns num distinct keys with lengths in [minLen, maxLen] drawn
// from alphabet. It returns fewer keys when the alphabet cannot form num
// distinct keys.
func (r *RNG) Keys(num, minLen, maxLen int, alphabet string) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, num)
	keys := make([][]byte, 0, num)
	for attempts := 0; len(keys) < num && attempts < 10*num; attempts++ {
		k := r.textLocked(minLen+r.rand.Intn(maxLen-minLen+1), alphabet)
		if _, dup := seen[string(k)]; dup {
			continue
		}
		seen[string(k)] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	// Compute normalization constant (harmonic number with exponent s)
	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	// Sample from uniform and use inverse transform
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1 // 0-indexed
		}
	}

	return n - 1
}

// ZipfCounts returns n counts in [1, maxCount] with Zipfian skew.
func (r *RNG) ZipfCounts(n, maxCount int, s float64) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make([]uint32, n)
	for i := range counts {
		counts[i] = uint32(maxCount - r.zipfLocked(maxCount, s))
	}
	return counts
}
