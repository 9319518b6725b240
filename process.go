package dx7fm

import "time"

// signedSaturateRshift mirrors the original engine's fixed-point
// output stage: shift x right by rshift bits, then clamp the result
// to a signed limitBits-wide range before handing it to the float
// conversion in Process.
func signedSaturateRshift(x int32, limitBits, rshift uint) int32 {
	x >>= rshift
	limit := int32(1) << (limitBits - 1)
	if x < -limit {
		return -limit
	}
	if x > limit-1 {
		return limit - 1
	}
	return x
}

// Process fills dst, an interleaved buffer of Channels()-wide frames,
// by rendering fixed 64-sample mono blocks and splitting or carrying
// over partial blocks as needed to exactly match len(dst). Safe to
// call only from the single audio-callback thread; note/controller
// events from other goroutines are queued by NoteOn et al. and
// applied here at block boundaries.
func (e *Engine) Process(dst []float32) {
	start := time.Now()
	channels := e.channels
	if channels < 1 {
		channels = 1
	}
	framesNeeded := len(dst) / channels

	written := 0
	for written < framesNeeded {
		if len(e.carry) == 0 {
			e.renderBlock()
			e.carry = e.blockOut
		}
		n := len(e.carry)
		if rem := framesNeeded - written; n > rem {
			n = rem
		}
		for i := 0; i < n; i++ {
			s := e.carry[i]
			base := (written + i) * channels
			for c := 0; c < channels; c++ {
				dst[base+c] = s
			}
		}
		e.carry = e.carry[n:]
		written += n
	}

	elapsed := time.Since(start)
	budget := time.Duration(float64(framesNeeded) / float64(e.sampleRate) * float64(time.Second))
	if elapsed > budget {
		e.xrunCount.Add(1)
	}
	for {
		cur := e.renderTimeMax.Load()
		ns := elapsed.Nanoseconds()
		if ns <= cur || e.renderTimeMax.CompareAndSwap(cur, ns) {
			break
		}
	}
}

// renderBlock applies any queued events, advances the LFO by one
// block, sums every live voice's rendered output, and runs the result
// through the output filter, leaving the mono result in e.blockOut.
func (e *Engine) renderBlock() {
	e.drainEvents()
	if e.refreshPending {
		patch := e.patch.Load()
		e.alloc.RefreshLiveVoices(patch, e.ctrls, e.srMultiplier)
		e.lfo.Reset(e.lfoUnit, patch.LFOParams())
		e.refreshPending = false
	}

	lfoVal := e.lfo.Sample()
	lfoDelay := e.lfo.Delay()

	for i := range e.monoScratch {
		e.monoScratch[i] = 0
	}

	voices := e.alloc.Voices()
	for i, v := range voices {
		if !e.alloc.Live(i) {
			continue
		}
		for j := range e.voiceScratch {
			e.voiceScratch[j] = 0
		}
		v.Compute(e.voiceScratch, lfoVal, lfoDelay, e.ctrls, e.freqLut, e.portaRates)
		for j, s := range e.voiceScratch {
			e.monoScratch[j] += s
		}
	}

	e.alloc.ReapSilentVoices()

	for i, s := range e.monoScratch {
		e.blockOut[i] = float32(signedSaturateRshift(s>>4, 24, 9)) / 32768.0
	}

	e.filter.SetGain(e.loadGain())
	e.filter.SetCutoff(e.loadCutoff())
	e.filter.SetResonance(e.loadResonance())
	e.filter.Process(e.blockOut)
}

// Channels returns the engine's fixed output channel count.
func (e *Engine) Channels() int { return e.channels }
