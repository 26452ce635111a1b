// Package rng is the seedable generator every random draw in a match goes
// through. The recurrence is a 32-bit LCG, so a seed reproduces the same
// stream on any platform and in any client that implements the same step.
package rng

const (
	multiplier = 1664525
	increment  = 1013904223
	modulus    = 1 << 32
)

// Rng is a single-owner stream. Draws mutate it in place; there is no
// way to fork or clone a stream.
type Rng struct {
	state uint32
}

// New truncates seed to its low 32 bits (negative seeds wrap).
func New(seed int64) *Rng {
	return &Rng{state: uint32(seed)}
}

// Next advances the stream and returns a float in [0, 1).
func (r *Rng) Next() float64 {
	r.state = r.state*multiplier + increment
	return float64(r.state) / modulus
}

// Int returns an integer in [min, max], inclusive on both ends.
func (r *Rng) Int(min, max int) int {
	return int(r.Next()*float64(max-min+1)) + min
}

// State exposes the raw generator state for replay dumps.
func (r *Rng) State() uint32 { return r.state }
