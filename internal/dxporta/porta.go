// Package dxporta implements the portamento/glide rate table and the
// Step helper that moves a pitch toward its glide target, shared by
// every voice.
package dxporta

import "math"

const blockSize = 64

// Rates is a 128-entry sample-rate-dependent table of per-block pitch
// increments, indexed by a 0..127 portamento-time CC value.
type Rates struct {
	rates [128]int32
}

// NewRates builds the portamento rate table for the given sample rate.
// Rate i corresponds to a glide speed of 350*2^(-0.062*i) semitones/s.
func NewRates(sampleRate float64) *Rates {
	r := &Rates{}
	const step = (1 << 24) / 12
	for i := 0; i < 128; i++ {
		sps := 350.0 * math.Pow(2.0, -0.062*float64(i))
		spf := sps / sampleRate
		spp := spf * blockSize
		r.rates[i] = int32(0.5 + step*spp)
	}
	return r
}

// At returns the per-block pitch increment for portamento-time index i
// (0..127, clamped).
func (r *Rates) At(i int) int32 {
	if i < 0 {
		i = 0
	}
	if i > 127 {
		i = 127
	}
	return r.rates[i]
}

// Step advances cur by one block's worth of glide toward target at
// rate index i, clamping exactly at target when the glide would
// overshoot it. Direction is inferred from the sign of target-cur.
func (r *Rates) Step(cur, target int32, i int) int32 {
	inc := r.At(i)
	if cur < target {
		cur += inc
		if cur > target {
			cur = target
		}
	} else if cur > target {
		cur -= inc
		if cur < target {
			cur = target
		}
	}
	return cur
}
