// Package dxtables holds the fixed-point lookup tables shared by every
// voice: the sine oscillator table, the exp2 table used for gain
// conversion, a tanh table (Tanh/TanhSigned; the output filter does not
// call it, its damping path uses math.Atan), and the
// sample-rate-dependent log-frequency-to-phase-increment table.
//
// All tables operate in Q24 fixed point unless noted otherwise. Every
// lookup except sinTable.LookupNearest is linearly interpolated between
// adjacent entries, matching
// the DX7 emulation's accuracy contract of "within 1 LSB" rather than
// bit-exact reproduction of the original's recursive table-construction
// trick (see DESIGN.md).
package dxtables

import "math"

const (
	// LgN is log2 of the operator-kernel block size.
	LgN = 6
	// N is the operator-kernel block size in samples.
	N = 1 << LgN
)

const (
	sinLgSamples = 10
	sinSamples   = 1 << sinLgSamples // 1024
	sinShift     = 24 - sinLgSamples // 14
	sinIdxMask   = sinSamples - 1
	sinFracMask  = (1 << sinShift) - 1
)

// Sin is the shared sine lookup table, Q24 in both domain and range.
// A full cycle spans 1<<24 phase units.
var Sin sinTable

type sinTable struct {
	tab [sinSamples + 1]int32
}

func init() {
	for i := 0; i <= sinSamples; i++ {
		angle := 2 * math.Pi * float64(i) / sinSamples
		Sin.tab[i] = int32(math.Round(math.Sin(angle) * (1 << 24)))
	}
}

// Lookup returns sin(phase) in Q24, where phase is a Q24 fraction of a
// cycle (1<<24 == 2*pi). Phase wraps modulo 1<<24.
func (t *sinTable) Lookup(phase int32) int32 {
	idx := (phase >> sinShift) & sinIdxMask
	frac := phase & sinFracMask
	a := int64(t.tab[idx])
	b := int64(t.tab[idx+1])
	return int32(a + (((b - a) * int64(frac)) >> sinShift))
}

const (
	exp2LgSamples = 10
	exp2Samples   = 1 << exp2LgSamples // 1024
	exp2Shift     = 24 - exp2LgSamples // 14
	exp2FracMask  = (1 << exp2Shift) - 1
)

// Exp2 converts a Q24 log2 value into a Q24 linear gain: Lookup(x)
// returns 2^(x/2^24) expressed in Q24. The table covers one octave;
// the integer octave count (x>>24) is applied as a binary shift.
var Exp2 exp2Table

type exp2Table struct {
	tab [exp2Samples + 1]int32
}

func init() {
	for i := 0; i <= exp2Samples; i++ {
		frac := float64(i) / exp2Samples
		Exp2.tab[i] = int32(math.Round(math.Exp2(frac) * (1 << 24)))
	}
}

// Lookup returns 2^(x/2^24) in Q24. Large negative x saturates to 0;
// large positive x saturates to the int32 range ceiling.
func (t *exp2Table) Lookup(x int32) int32 {
	hi := x >> 24 // arithmetic shift: octave count, may be negative
	lo := x & 0xFFFFFF
	idx := (lo >> exp2Shift) & (exp2Samples - 1)
	frac := lo & exp2FracMask
	a := int64(t.tab[idx])
	b := int64(t.tab[idx+1])
	base := a + (((b - a) * int64(frac)) >> exp2Shift) // in [1<<24, 1<<25)

	switch {
	case hi >= 0:
		if hi >= 32 {
			return math.MaxInt32
		}
		shifted := base << uint(hi)
		if shifted > math.MaxInt32 {
			return math.MaxInt32
		}
		return int32(shifted)
	default:
		shift := uint(-hi)
		if shift >= 31 {
			return 0
		}
		return int32(base >> shift)
	}
}

const (
	tanhLgSamples = 10
	tanhSamples   = 1 << tanhLgSamples // 1024
	tanhDomain    = 4 << 24            // input domain is [0,4] in Q24
	tanhShift     = 26 - tanhLgSamples // domain width is 2^26, 1024 buckets -> 2^16 wide
	tanhFracMask  = (1 << tanhShift) - 1
)

// Tanh is a Q24 lookup of tanh(x) over the domain x in [0,4] (Q24).
// Use TanhSigned for signed inputs outside that domain.
var Tanh tanhTable

type tanhTable struct {
	tab [tanhSamples + 1]int32
}

func init() {
	for i := 0; i <= tanhSamples; i++ {
		x := 4.0 * float64(i) / tanhSamples
		Tanh.tab[i] = int32(math.Round(math.Tanh(x) * (1 << 24)))
	}
}

// Lookup returns tanh(x) in Q24 for x clamped to [0, 4<<24].
func (t *tanhTable) Lookup(x int32) int32 {
	if x < 0 {
		x = 0
	}
	if x >= tanhDomain {
		return t.tab[tanhSamples]
	}
	idx := (x >> tanhShift) & (tanhSamples - 1)
	frac := x & tanhFracMask
	a := int64(t.tab[idx])
	b := int64(t.tab[idx+1])
	return int32(a + (((b - a) * int64(frac)) >> tanhShift))
}

// LookupNearest returns sin(phase) from the nearest table entry with
// no interpolation, matching the coarser sine table of early DX7
// hardware revisions (the engine's Mark-I resolution flavor).
func (t *sinTable) LookupNearest(phase int32) int32 {
	idx := (phase >> sinShift) & sinIdxMask
	if phase&sinFracMask > (1 << (sinShift - 1)) {
		idx = (idx + 1) & sinIdxMask
	}
	return t.tab[idx]
}

// LookupOPL returns sin(phase) quantized to a coarse log-amplitude
// step, echoing the log-sine tables of Yamaha's OPL-series FM chips
// (the engine's OPL resolution flavor).
func (t *sinTable) LookupOPL(phase int32) int32 {
	const quantum = 1 << 15
	v := t.Lookup(phase)
	if v >= 0 {
		return (v / quantum) * quantum
	}
	return -((-v / quantum) * quantum)
}

// TanhSigned extends Tanh.Lookup to negative inputs via odd symmetry.
func TanhSigned(x int32) int32 {
	if x < 0 {
		return -Tanh.Lookup(-x)
	}
	return Tanh.Lookup(x)
}

const (
	freqLgSamples   = 10
	freqSamples     = 1 << freqLgSamples // 1024
	freqSampleShift = 24 - freqLgSamples // 14
	maxLogfreqInt   = 20
)

// FreqLut resolves a Q24 log-frequency signal (1.0 == one octave) to a
// phase increment per sample, for a given sample rate. One instance
// must be (re)initialized whenever the sample rate changes.
type FreqLut struct {
	tab [freqSamples + 1]int32
}

// NewFreqLut builds a frequency lookup table for the given sample rate.
func NewFreqLut(sampleRate float64) *FreqLut {
	f := &FreqLut{}
	y := math.Pow(2, 24+maxLogfreqInt) / sampleRate
	inc := math.Pow(2, 1.0/freqSamples)
	for i := 0; i <= freqSamples; i++ {
		f.tab[i] = int32(math.Round(y))
		y *= inc
	}
	return f
}

// Lookup converts a Q24 log-frequency value to a phase increment.
func (f *FreqLut) Lookup(logfreq int32) int32 {
	idx := (logfreq & 0xFFFFFF) >> freqSampleShift
	frac := logfreq & ((1 << freqSampleShift) - 1)
	a := int64(f.tab[idx])
	b := int64(f.tab[idx+1])
	interp := a + (((b - a) * int64(frac)) >> freqSampleShift)

	hibits := logfreq >> 24
	shift := maxLogfreqInt - int(hibits)
	switch {
	case shift >= 0:
		if shift >= 31 {
			return 0
		}
		return int32(interp >> uint(shift))
	default:
		s := uint(-shift)
		if s >= 31 {
			return math.MaxInt32
		}
		shifted := interp << s
		if shifted > math.MaxInt32 {
			return math.MaxInt32
		}
		return int32(shifted)
	}
}
