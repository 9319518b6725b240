// Package dxfilter implements the engine's output stage: a one-pole DC
// blocker, a gain stage, and an optional 4-pole resonant low-pass
// filter derived from the Obxd project's trapezoidal-integration SVF
// topology.
package dxfilter

import "math"

// tptpc is one trapezoidal-prewarped one-pole integrator stage, used
// both as a cascade stage of the 4-pole ladder and as a fixed shelving
// stage ahead of it.
func tptpc(state *float64, inp, cutoff float64) float64 {
	v := (inp - *state) * cutoff / (1 + cutoff)
	res := v + *state
	*state = res + v
	return res
}

// tptlpupw is tptpc with the cutoff pre-warped against the sample
// rate, used for the fixed fricative-damping shelf ahead of the main
// cascade.
func tptlpupw(state *float64, inp, cutoff, srInv float64) float64 {
	cutoff = (cutoff * srInv) * math.Pi
	v := (inp - *state) * cutoff / (1 + cutoff)
	res := v + *state
	*state = res + v
	return res
}

// logsc maps a 0..1 control value onto an exponential (musically even)
// range [min, max] with the given rolloff shape.
func logsc(param, min, max, rolloff float64) float64 {
	return ((math.Exp(param*math.Log(rolloff+1))-1.0)/rolloff)*(max-min) + min
}

// Filter is one instance of the engine's output DC blocker, gain
// stage, and 4-pole resonant low-pass.
type Filter struct {
	Cutoff float64 // 0..1, 1 = filter fully open (bypassed)
	Reso   float64 // 0..1
	Gain   float64 // linear gain multiplier

	sampleRate    float64
	sampleRateInv float64

	// 4-pole cascade state.
	s1, s2, s3, s4 float64
	c, d           float64
	r24            float64
	rcor24         float64
	rcor24Inv      float64
	bright         float64
	r              float64

	pCutoff, pReso float64
	rCutoff, rReso float64

	// DC blocker state.
	dcR  float64
	dcID float64
	dcOD float64
}

// NewFilter builds a Filter configured for the given sample rate, with
// the low-pass fully open and unity gain.
func NewFilter(sampleRate float64) *Filter {
	f := &Filter{
		Cutoff:        1.0,
		Reso:          0.0,
		Gain:          1.0,
		sampleRate:    sampleRate,
		sampleRateInv: 1 / sampleRate,
		pCutoff:       -1,
		pReso:         -1,
	}
	rcrate := math.Sqrt(44000 / sampleRate)
	f.rcor24 = (970.0 / 44000) * rcrate
	f.rcor24Inv = 1 / f.rcor24
	f.bright = math.Tan((sampleRate*0.5 - 10) * math.Pi * f.sampleRateInv)
	f.r = 1
	f.dcR = 1.0 - (126.0 / sampleRate)
	return f
}

// SetCutoff clamps and stores the filter's 0..1 cutoff control.
func (f *Filter) SetCutoff(cutoff float64) {
	if cutoff < 0 {
		cutoff = 0
	}
	if cutoff > 1 {
		cutoff = 1
	}
	f.Cutoff = cutoff
}

// SetResonance clamps and stores the filter's 0..1 resonance control.
func (f *Filter) SetResonance(reso float64) {
	if reso < 0 {
		reso = 0
	}
	if reso > 1 {
		reso = 1
	}
	f.Reso = reso
}

// SetGain stores the filter's linear output gain multiplier.
func (f *Filter) SetGain(gain float64) {
	f.Gain = gain
}

// Process filters work in place: DC blocker, then gain, then (unless
// the cutoff control is fully open) the resonant 4-pole low-pass.
func (f *Filter) Process(work []float32) {
	n := len(work)
	if n == 0 {
		return
	}

	tfd := float64(work[0])
	work[0] = float32(float64(work[0]) - f.dcID + f.dcR*f.dcOD)
	f.dcID = tfd
	for i := 1; i < n; i++ {
		tfd = float64(work[i])
		work[i] = float32(float64(work[i]) - f.dcID + f.dcR*float64(work[i-1]))
		f.dcID = tfd
	}
	f.dcOD = float64(work[n-1])

	switch f.Gain {
	case 0.0:
		for i := range work {
			work[i] = 0
		}
	case 1.0:
	default:
		for i := range work {
			work[i] = float32(float64(work[i]) * f.Gain)
		}
	}

	if f.Cutoff == 1.0 {
		return
	}

	if f.Cutoff != f.pCutoff || f.Reso != f.pReso {
		f.rReso = 0.991 - logsc(1-f.Reso, 0, 0.991, 19.0)
		f.r24 = 3.5 * f.rReso

		cutoffNorm := logsc(f.Cutoff, 60, 19000, 19.0)
		f.rCutoff = math.Tan(cutoffNorm * f.sampleRateInv * math.Pi)

		f.pCutoff = f.Cutoff
		f.pReso = f.Reso
		f.r = 1 - f.rReso
	}

	g := f.rCutoff
	lpc := g / (1 + g)

	for i := 0; i < n; i++ {
		s := float64(work[i])
		s = s - 0.45*tptlpupw(&f.c, s, 15, f.sampleRateInv)
		s = tptpc(&f.d, s, f.bright)

		y0 := f.nr24(s, g, lpc)

		v := (y0 - f.s1) * lpc
		res := v + f.s1
		f.s1 = res + v
		f.s1 = math.Atan(f.s1*f.rcor24) * f.rcor24Inv

		y1 := res
		y2 := tptpc(&f.s2, y1, g)
		y3 := tptpc(&f.s3, y2, g)
		y4 := tptpc(&f.s4, y3, g)

		work[i] = float32(y4 * (1 + f.r24*0.45))
	}
}

// nr24 solves the 4-pole feedback loop's implicit sample, matching the
// Obxd/Dexed ladder's nonlinear-resistor approximation.
func (f *Filter) nr24(sample, g, lpc float64) float64 {
	ml := 1 / (1 + g)
	s := (lpc*(lpc*(lpc*f.s1+f.s2)+f.s3) + f.s4) * ml
	gg := lpc * lpc * lpc * lpc
	y := (sample - f.r24*s) / (1 + f.r24*gg)
	return y + 1e-8
}
