// Package dxenv implements the 4-stage amplitude envelope generator
// shared by every operator: attack, decay, sustain, release, driven by
// rate/level pairs stored in the patch and a keyboard-scaled output
// level.
package dxenv

const lgN = 6 // matches dxcore/dxtables block-size exponent

// levelLUT maps a 0..19 output-level nibble to its scaled equivalent;
// levels 20 and above scale linearly as 28+outlevel.
var levelLUT = [20]int{
	0, 5, 9, 13, 17, 20, 23, 25, 27, 29, 31, 33, 35, 37, 39, 41, 42, 43, 45, 46,
}

// ScaleOutLevel converts a raw 0..127 output-level patch value into
// the internal scaled representation used by Advance.
func ScaleOutLevel(outlevel int) int {
	if outlevel >= 20 {
		return 28 + outlevel
	}
	return levelLUT[outlevel]
}

// Env is one amplitude envelope generator instance. One exists per
// operator per voice.
type Env struct {
	rates  [4]int
	levels [4]int

	outlevel    int
	rateScaling int

	level       int32
	targetLevel int32
	inc         int32
	rising      bool
	ix          int
	down        bool

	srMultiplier int64
}

// srMultiplierDefault is (44100/sampleRate)*2^24 evaluated at 44100Hz,
// i.e. the identity scale. InitSampleRate must be called once the
// real sample rate is known.
const srMultiplierDefault = 1 << 24

// InitSampleRate sets the sample-rate correction factor applied to
// every computed rate increment. Must be called before any Env.Init.
func InitSampleRate(sampleRate float64) int64 {
	return int64((44100.0 / sampleRate) * (1 << 24))
}

// Init starts this envelope at stage 0 (attack) for a freshly struck
// note. rates and levels are the four patch-supplied EG rate/level
// pairs (0..99), outlevel is the keyboard-scaled output level, and
// rateScaling is the keyboard rate-scaling contribution.
func (e *Env) Init(srMultiplier int64, rates, levels [4]int, outlevel, rateScaling int) {
	e.srMultiplier = srMultiplier
	e.rates = rates
	e.levels = levels
	e.outlevel = outlevel
	e.rateScaling = rateScaling
	e.level = 0
	e.down = true
	e.advance(0)
}

// Update re-applies a patch edit to a currently-sounding envelope
// without resetting its stage; used when a patch parameter changes on
// a live voice rather than a new note-on.
func (e *Env) Update(srMultiplier int64, rates, levels [4]int, outlevel, rateScaling int) {
	e.srMultiplier = srMultiplier
	e.rates = rates
	e.levels = levels
	e.outlevel = outlevel
	e.rateScaling = rateScaling
	if e.down {
		newlevel := e.levels[2]
		actuallevel := ScaleOutLevel(newlevel) >> 1
		actuallevel = (actuallevel << 6) - 4256
		if actuallevel < 16 {
			actuallevel = 16
		}
		e.targetLevel = int32(actuallevel) << 16
		e.advance(2)
	}
}

// GetSample advances the envelope by one N-sample block and returns
// its current Q24-ish level (in the original's native 24+8 fixed
// range used directly as EG level input to the operator kernel).
func (e *Env) GetSample() int32 {
	if e.ix < 3 || (e.ix < 4 && !e.down) {
		if e.rising {
			const jumpTarget = 1716
			if e.level < (jumpTarget << 16) {
				e.level = jumpTarget << 16
			}
			e.level += (((17 << 24) - e.level) >> 24) * e.inc
			if e.level >= e.targetLevel {
				e.level = e.targetLevel
				e.advance(e.ix + 1)
			}
		} else {
			e.level -= e.inc
			if e.level <= e.targetLevel {
				e.level = e.targetLevel
				e.advance(e.ix + 1)
			}
		}
	}
	return e.level
}

// KeyDown transitions the envelope between its held (attack/decay/
// sustain, stages 0-2) and released (stage 3) phases.
func (e *Env) KeyDown(down bool) {
	if e.down != down {
		e.down = down
		if down {
			e.advance(0)
		} else {
			e.advance(3)
		}
	}
}

// advance moves to EG stage newix and recomputes the target level and
// per-sample increment for that stage.
func (e *Env) advance(newix int) {
	e.ix = newix
	if e.ix >= 4 {
		return
	}
	newlevel := e.levels[e.ix]
	actuallevel := ScaleOutLevel(newlevel) >> 1
	actuallevel = (actuallevel << 6) + e.outlevel - 4256
	if actuallevel < 16 {
		actuallevel = 16
	}
	e.targetLevel = int32(actuallevel) << 16
	e.rising = e.targetLevel > e.level

	qrate := (e.rates[e.ix] * 41) >> 6
	qrate += e.rateScaling
	if qrate > 63 {
		qrate = 63
	}

	inc := int64(4+(qrate&3)) << uint(2+lgN+(qrate>>2))
	e.inc = int32((inc * e.srMultiplier) >> 24)
}

// Stage returns the current EG stage, 0..3, or 4 once release has
// finished.
func (e *Env) Stage() int { return e.ix }

// Transfer copies src's full state into e, used when a voice is
// re-parented during mono-mode note stealing.
func (e *Env) Transfer(src *Env) {
	*e = *src
}
