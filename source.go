package vars

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// Source supplies uniform samples in [0, 1). Every observation of a random
// variable consumes exactly one sample.
type Source interface {
	Float64() float64
}

// SourceFunc adapts a function to Source.
type SourceFunc func() float64

// Float64 implements Source.
func (f SourceFunc) Float64() float64 {
	return f()
}

// NewSeededSource returns a deterministic PCG source. It is not safe for
// concurrent use.
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

var (
	defaultSourceOnce sync.Once
	defaultSource     *lockedSource
)

// DefaultSource returns the process-wide source used when no source is
// configured. It is seeded from crypto/rand once and is safe for concurrent
// use.
func DefaultSource() Source {
	defaultSourceOnce.Do(func() {
		seed, err := NewSeed()
		if err != nil {
			seed = uint64(time.Now().UnixNano())
		}
		defaultSource = &lockedSource{rng: rand.New(rand.NewPCG(seed, seed>>1))}
	})
	return defaultSource
}

type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Eager sampling helpers. They resolve randomness immediately, so the result
// is an ordinary value that can be stored in a Variable.

// Bernoulli returns true with probability p, drawing one sample. p is clamped
// to [0, 1].
func Bernoulli(src Source, p float64) bool {
	return src.Float64() < min(max(p, 0), 1)
}

// IntN returns a uniform integer in [0, n). It panics if n <= 0.
func IntN(src Source, n int) int {
	if n <= 0 {
		panic("vars: IntN requires n > 0")
	}
	return min(int(src.Float64()*float64(n)), n-1)
}

// Uniform returns a uniform float in [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}
