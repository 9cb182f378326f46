package model

import (
	"fmt"
	"math"
	"math/rand"

	"blogo/internal/values"
)

// Entry is one (value, probability) pair in a finite distribution.
type Entry struct {
	Value any
	Prob  float64
}

// Distribution is a finite-support probability distribution over domain
// values. Weights are normalized at construction.
type Distribution struct {
	entries []Entry
}

// NewDistribution builds a distribution from weighted entries. Weights
// must be non-negative with a positive sum; they are normalized to
// probabilities.
func NewDistribution(entries ...Entry) (*Distribution, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("model: distribution needs at least one entry")
	}
	sum := 0.0
	for _, e := range entries {
		if e.Prob < 0 || math.IsNaN(e.Prob) || math.IsInf(e.Prob, 0) {
			return nil, fmt.Errorf("model: invalid weight %v for value %v", e.Prob, e.Value)
		}
		sum += e.Prob
	}
	if sum <= 0 {
		return nil, fmt.Errorf("model: distribution weights sum to %v", sum)
	}
	norm := make([]Entry, len(entries))
	for i, e := range entries {
		norm[i] = Entry{Value: e.Value, Prob: e.Prob / sum}
	}
	return &Distribution{entries: norm}, nil
}

// NewBernoulli returns a boolean distribution with P(true) = p.
func NewBernoulli(p float64) (*Distribution, error) {
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("model: bernoulli parameter %v out of [0,1]", p)
	}
	return NewDistribution(Entry{Value: true, Prob: p}, Entry{Value: false, Prob: 1 - p})
}

// Support returns the distribution's entries.
func (d *Distribution) Support() []Entry { return d.entries }

// Sample draws a value and returns it with the log-probability of the
// draw.
func (d *Distribution) Sample(rng *rand.Rand) (any, float64) {
	u := rng.Float64()
	acc := 0.0
	for _, e := range d.entries {
		acc += e.Prob
		if u < acc {
			return e.Value, math.Log(e.Prob)
		}
	}
	// Floating point slack: fall through to the last entry.
	last := d.entries[len(d.entries)-1]
	return last.Value, math.Log(last.Prob)
}

// LogProb returns the log-probability of a value, or -Inf when the
// value is outside the support.
func (d *Distribution) LogProb(v any) float64 {
	for _, e := range d.entries {
		if values.Equal(e.Value, v) {
			return math.Log(e.Prob)
		}
	}
	return math.Inf(-1)
}
