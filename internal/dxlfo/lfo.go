// Package dxlfo implements the engine-global low-frequency oscillator:
// 6 waveforms, a two-segment delay ramp, sample-and-hold, and
// keydown-sync, all in Q24 fixed point.
package dxlfo

import "github.com/cbegin/dx7fm-go/internal/dxtables"

// Waveform selects one of the 6 DX7-compatible LFO shapes.
const (
	WaveTriangle = 0
	WaveSawDown  = 1
	WaveSawUp    = 2
	WaveSquare   = 3
	WaveSine     = 4
	WaveSampleHold = 5
)

// Unit computes the sample-rate-dependent phase-increment scale;
// compute once per sample rate and pass to Reset.
func Unit(sampleRate float64) uint32 {
	const blockSize = 64
	return uint32(blockSize*25190424/sampleRate + 0.5)
}

// LFO is one engine-global low-frequency oscillator instance.
type LFO struct {
	unit uint32

	phase      uint32
	delta      uint32
	delayInc   uint32
	delayInc2  uint32
	delayState uint32
	waveform   int
	sync       bool
	randState  uint8
}

// Reset configures the LFO from its 6 raw patch bytes: rate, delay,
// pitch-mod depth, amp-mod depth, sync flag, waveform. Only rate,
// delay, sync, and waveform (indices 0, 1, 4, 5) are consumed here;
// the two depth bytes are read by the controller/pitch-mod stage.
func (l *LFO) Reset(unit uint32, params [6]uint8) {
	l.unit = unit
	rate := int(params[0])
	sr := 1
	if rate != 0 {
		sr = (165 * rate) >> 6
	}
	if sr < 160 {
		sr *= 11
	} else {
		sr *= 11 + ((sr - 160) >> 4)
	}
	l.delta = l.unit * uint32(sr)

	a := 99 - int(params[1])
	if a == 99 {
		l.delayInc = ^uint32(0)
		l.delayInc2 = ^uint32(0)
	} else {
		a = (16 + (a & 15)) << uint(1+(a>>4))
		l.delayInc = l.unit * uint32(a)
		a &= 0xff80
		if a < 0x80 {
			a = 0x80
		}
		l.delayInc2 = l.unit * uint32(a)
	}
	l.waveform = int(params[5])
	l.sync = params[4] != 0
}

// Sample advances the LFO by one block and returns its current
// waveform value in Q24, range [0, 1<<24].
func (l *LFO) Sample() int32 {
	l.phase += l.delta
	switch l.waveform {
	case WaveTriangle:
		x := int32(l.phase >> 7)
		x ^= -int32(l.phase >> 31)
		x &= (1 << 24) - 1
		return x
	case WaveSawDown:
		return int32((^l.phase ^ (1 << 31)) >> 8)
	case WaveSawUp:
		return int32((l.phase ^ (1 << 31)) >> 8)
	case WaveSquare:
		return int32((^l.phase)>>7) & (1 << 24)
	case WaveSine:
		return (1 << 23) + (dxtables.Sin.Lookup(int32(l.phase>>8)) >> 1)
	case WaveSampleHold:
		if l.phase < l.delta {
			l.randState = byte(uint32(l.randState)*179+17) & 0xff
		}
		x := int32(l.randState) ^ 0x80
		return (x + 1) << 16
	}
	return 1 << 23
}

// Delay advances the two-segment delay ramp and returns a Q24 value
// that scales pitch/amp modulation depth from 0 (still ramping in) to
// 1<<24 (fully ramped in).
func (l *LFO) Delay() int32 {
	delta := l.delayInc
	if l.delayState >= (1 << 31) {
		delta = l.delayInc2
	}
	d := uint64(l.delayState) + uint64(delta)
	if d > uint64(^uint32(0)) {
		return 1 << 24
	}
	l.delayState = uint32(d)
	if d < (1 << 31) {
		return 0
	}
	return int32((d >> 7) & ((1 << 24) - 1))
}

// KeyDown resets the delay ramp, and if the LFO's sync flag is set,
// also resets its phase — used when a note-on occurs while no other
// voices were previously sounding.
func (l *LFO) KeyDown() {
	if l.sync {
		l.phase = (1 << 31) - 1
	}
	l.delayState = 0
}
