package vbt

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// ErrExhausted is returned by Samples once every reading has been replayed.
var ErrExhausted = errors.New("velocity source exhausted")

// VelocitySource yields one velocity reading (m/s) per call.
type VelocitySource interface {
	Sample(ctx context.Context) (float64, error)
}

// SourceFunc adapts a function to VelocitySource.
type SourceFunc func(ctx context.Context) (float64, error)

// Sample calls f.
func (f SourceFunc) Sample(ctx context.Context) (float64, error) { return f(ctx) }

// RandomSource simulates a bar-speed sensor with readings uniform in [Min, Min+Span),
// rounded to two decimals.
type RandomSource struct {
	Min  float64
	Span float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource returns a simulator producing readings in [0.30, 0.80) m/s.
func NewRandomSource(seed int64) *RandomSource {
	return &RandomSource{
		Min:  0.3,
		Span: 0.5,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Sample returns the next simulated reading.
func (s *RandomSource) Sample(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	x := s.rng.Float64()
	s.mu.Unlock()
	v := math.Round((x*s.Span+s.Min)*100) / 100
	return v, nil
}

// Samples replays recorded readings in order.
type Samples struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewSamples returns a source replaying values.
func NewSamples(values ...float64) *Samples {
	return &Samples{values: append([]float64(nil), values...)}
}

// Sample returns the next recorded reading or ErrExhausted.
func (s *Samples) Sample(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.values) {
		return 0, ErrExhausted
	}
	v := s.values[s.next]
	s.next++
	return v, nil
}

// Remaining returns how many readings are left.
func (s *Samples) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values) - s.next
}

// Measure takes one reading from src and assesses it.
func Measure(ctx context.Context, src VelocitySource, goal Goal) (Assessment, error) {
	if !goal.Valid() {
		return Assessment{}, fmt.Errorf("unknown training goal %q: %w", goal, ErrInvalidInput)
	}
	v, err := src.Sample(ctx)
	if err != nil {
		return Assessment{}, fmt.Errorf("sampling velocity: %w", err)
	}
	return Assess(v, goal)
}
