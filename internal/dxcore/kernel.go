package dxcore

import "github.com/cbegin/dx7fm-go/internal/dxtables"

// computeDGain returns the per-sample gain increment for a linear
// ramp from gain1 to gain2 over one N-sample block, rounded to the
// nearest integer.
func computeDGain(gain1, gain2 int32) int32 {
	return (gain2 - gain1 + (dxtables.N >> 1)) >> dxtables.LgN
}

// compute renders one block of a modulated operator: phase-modulated
// by input, gain-ramped from gain1 to gain2. If add is true, the
// result is accumulated into output instead of overwriting it.
func compute(sin func(int32) int32, output, input []int32, phase0, freq, gain1, gain2 int32, add bool) {
	dgain := computeDGain(gain1, gain2)
	gain := gain1
	phase := phase0
	for i := 0; i < dxtables.N; i++ {
		gain += dgain
		y := sin(phase + input[i])
		y1 := int32((int64(y) * int64(gain)) >> 24)
		if add {
			output[i] += y1
		} else {
			output[i] = y1
		}
		phase += freq
	}
}

// computePure renders one block of an unmodulated (carrier) operator.
func computePure(sin func(int32) int32, output []int32, phase0, freq, gain1, gain2 int32, add bool) {
	dgain := computeDGain(gain1, gain2)
	gain := gain1
	phase := phase0
	for i := 0; i < dxtables.N; i++ {
		gain += dgain
		y := sin(phase)
		y1 := int32((int64(y) * int64(gain)) >> 24)
		if add {
			output[i] += y1
		} else {
			output[i] = y1
		}
		phase += freq
	}
}

// computeFB renders one block of a self-feedback operator. fbBuf holds
// the two most recent raw output samples (y0, y1) across calls, scaled
// by fbShift+1 before being fed back as phase modulation.
func computeFB(sin func(int32) int32, output []int32, phase0, freq, gain1, gain2 int32, fbBuf *[2]int32, fbShift int, add bool) {
	dgain := computeDGain(gain1, gain2)
	gain := gain1
	phase := phase0
	y0 := fbBuf[0]
	y := fbBuf[1]
	for i := 0; i < dxtables.N; i++ {
		gain += dgain
		scaledFB := (y0 + y) >> uint(fbShift+1)
		y0 = y
		y = sin(phase + scaledFB)
		y = int32((int64(y) * int64(gain)) >> 24)
		if add {
			output[i] += y
		} else {
			output[i] = y
		}
		phase += freq
	}
	fbBuf[0] = y0
	fbBuf[1] = y
}
