// Package seed derives deterministic pseudo random numbers from string keys,
// so decoration variants stay stable across runs with the same base seed.
package seed

import (
	"strconv"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

const unit = 1.0 / (1 << 53)

type Source struct {
	base string
}

func New(base string) *Source {
	return &Source{base: base}
}

func (s *Source) Base() string { return s.base }

// Random returns a float in [0,1) that depends only on the base seed and key.
func (s *Source) Random(key string) float64 {
	h := xxhash.New()
	_, _ = h.WriteString(s.base)
	_, _ = h.WriteString(key)
	return float64(h.Sum64()>>11) * unit
}

// Intn maps Random(key) onto [0,n). n must be positive.
func (s *Source) Intn(key string, n int) int {
	return int(s.Random(key) * float64(n))
}

// Pick returns a deterministic element of options.
func Pick[T any](s *Source, key string, options []T) T {
	return options[s.Intn(key, len(options))]
}

// Sequence returns a deterministic stream for key. The stream is safe for
// concurrent use; concurrent callers share one counter.
func (s *Source) Sequence(key string) func() float64 {
	var i atomic.Uint64
	return func() float64 {
		n := i.Add(1) - 1
		return s.Random(key + strconv.FormatUint(n, 10))
	}
}
