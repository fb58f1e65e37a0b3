package recommend

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"time"
)

// Sampler picks k distinct indices out of n for a genre. Returned indices
// are sorted so results keep table order.
type Sampler interface {
	Sample(genre string, n, k int) []int
}

// Sampling strategy names accepted by NewSampler.
const (
	SamplingRandom = "random"
	SamplingDaily  = "daily"
	SamplingSeeded = "seeded"
)

// NewSampler returns the sampler for a configured strategy.
func NewSampler(strategy string, seed uint64) (Sampler, error) {
	switch strategy {
	case "", SamplingRandom:
		return RandomSampler{}, nil
	case SamplingDaily:
		return DailySampler{Seed: seed}, nil
	case SamplingSeeded:
		return SeededSampler{Seed: seed}, nil
	default:
		return nil, fmt.Errorf("unknown sampling strategy %q", strategy)
	}
}

// RandomSampler draws a fresh seed on every call.
type RandomSampler struct{}

func (RandomSampler) Sample(_ string, n, k int) []int {
	return sample(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), n, k)
}

// SeededSampler returns the same sample for the same (seed, genre) pair.
type SeededSampler struct {
	Seed uint64
}

func (s SeededSampler) Sample(genre string, n, k int) []int {
	return sample(rand.New(rand.NewPCG(s.Seed, hashString(genre))), n, k)
}

// DailySampler returns the same sample for a genre during one UTC day.
type DailySampler struct {
	Seed uint64
	Now  func() time.Time
}

func (s DailySampler) Sample(genre string, n, k int) []int {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	day := now().UTC().Format(time.DateOnly)
	return sample(rand.New(rand.NewPCG(s.Seed, hashString(genre+"|"+day))), n, k)
}

func sample(rng *rand.Rand, n, k int) []int {
	if k >= n {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := rng.Perm(n)[:k]
	slices.Sort(out)
	return out
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
