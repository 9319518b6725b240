package dxvoice

import (
	"math"

	"github.com/cbegin/dx7fm-go/internal/dxcore"
	"github.com/cbegin/dx7fm-go/internal/dxctrl"
	"github.com/cbegin/dx7fm-go/internal/dxenv"
	"github.com/cbegin/dx7fm-go/internal/dxpitch"
	"github.com/cbegin/dx7fm-go/internal/dxporta"
	"github.com/cbegin/dx7fm-go/internal/dxtables"
)

// Voice is one active FM note: six operator envelopes, a shared pitch
// envelope, per-operator pitch/portamento state, and the operator
// kernel scratch state needed to render it one block at a time.
type Voice struct {
	env      [6]dxenv.Env
	pitchEnv dxpitch.Env
	core     *dxcore.Core
	params   [6]dxcore.OpParams
	fbBuf    [2]int32

	algorithm int
	fbShift   int

	opMode        [6]int
	basePitch     [6]int32
	portaCurPitch [6]int32
	ampModSens    [6]uint32

	portaRateIndex int // -1 disables portamento
	portaGliss     bool

	cachedPitchModDepth int32
	cachedPitchModSens  int32
	cachedAmpModDepth   int32
}

// NewVoice allocates a voice's fixed per-slot state. Voices are
// allocated once by the allocator and reused for the life of the
// engine; Init/Update (re)configure an existing Voice for a new or
// edited note.
func NewVoice() *Voice {
	return &Voice{core: dxcore.NewCore()}
}

// Init starts a brand new note: resets every operator envelope and
// the pitch envelope to stage 0 and computes fresh pitch/level state
// from the patch. srcnote/porta describe an in-progress portamento
// glide (porta<0 disables it); srMultiplier and pitchUnit are the
// engine's sample-rate-dependent envelope scale factors.
func (v *Voice) Init(patch *Patch, midinote, velocity, srcnote, porta int, glissando bool, srMultiplier int64, pitchUnit int32) {
	for op := 0; op < 6; op++ {
		b := patch.Op(op)
		var rates, levels [4]int
		for i := 0; i < 4; i++ {
			rates[i] = int(b[i])
			levels[i] = int(b[4+i])
		}

		outlevel := dxenv.ScaleOutLevel(int(b[opOutputLevel]))
		levelScaling := ScaleLevel(midinote, int(b[opLevelScalingBreakPoint]), int(b[opLevelScalingDepthLeft]),
			int(b[opLevelScalingDepthRight]), int(b[opLevelScalingCurveLeft]), int(b[opLevelScalingCurveRight]))
		outlevel += levelScaling
		if outlevel > 127 {
			outlevel = 127
		}
		outlevel <<= 5
		outlevel += ScaleVelocity(velocity, int(b[opVelocitySens]))
		if outlevel < 0 {
			outlevel = 0
		}
		rateScaling := ScaleRate(midinote, int(b[opRateScaling]))
		v.env[op].Init(srMultiplier, rates, levels, outlevel, rateScaling)

		mode := int(b[opMode])
		coarse := int(b[opFreqCoarse])
		fine := int(b[opFreqFine])
		detune := int(b[opDetune])
		freq := OscFreq(midinote, mode, coarse, fine, detune)
		v.opMode[op] = mode
		v.basePitch[op] = freq
		v.portaCurPitch[op] = freq
		v.ampModSens[op] = ampModSensTab[b[opAmpModSens]&3]

		if porta >= 0 {
			v.portaCurPitch[op] = OscFreq(srcnote, mode, coarse, fine, detune)
		}
	}

	rates, levels := patch.PitchEGRatesLevels()
	v.pitchEnv.Set(pitchUnit, rates, levels)
	v.algorithm = patch.Algorithm()
	v.fbShift = patch.FeedbackShift()
	v.portaRateIndex = porta
	if porta > 127 {
		v.portaRateIndex = 127
	}
	v.portaGliss = glissando
	v.cachedPitchModDepth = patch.PitchModDepth()
	v.cachedPitchModSens = patch.PitchModSens()
	v.cachedAmpModDepth = patch.AmpModDepth()
}

// Update re-applies an edited patch to a currently-sounding voice
// without resetting envelope stages.
func (v *Voice) Update(patch *Patch, midinote, velocity, porta int, glissando bool, srMultiplier int64) {
	for op := 0; op < 6; op++ {
		b := patch.Op(op)
		mode := int(b[opMode])
		coarse := int(b[opFreqCoarse])
		fine := int(b[opFreqFine])
		detune := int(b[opDetune])
		freq := OscFreq(midinote, mode, coarse, fine, detune)
		v.basePitch[op] = freq
		v.portaCurPitch[op] = freq
		v.ampModSens[op] = ampModSensTab[b[opAmpModSens]&3]
		v.opMode[op] = mode

		var rates, levels [4]int
		for i := 0; i < 4; i++ {
			rates[i] = int(b[i])
			levels[i] = int(b[4+i])
		}
		outlevel := dxenv.ScaleOutLevel(int(b[opOutputLevel]))
		levelScaling := ScaleLevel(midinote, int(b[opLevelScalingBreakPoint]), int(b[opLevelScalingDepthLeft]),
			int(b[opLevelScalingDepthRight]), int(b[opLevelScalingCurveLeft]), int(b[opLevelScalingCurveRight]))
		outlevel += levelScaling
		if outlevel > 127 {
			outlevel = 127
		}
		outlevel <<= 5
		outlevel += ScaleVelocity(velocity, int(b[opVelocitySens]))
		if outlevel < 0 {
			outlevel = 0
		}
		rateScaling := ScaleRate(midinote, int(b[opRateScaling]))
		v.env[op].Update(srMultiplier, rates, levels, outlevel, rateScaling)
	}
	v.algorithm = patch.Algorithm()
	v.fbShift = patch.FeedbackShift()
	v.portaRateIndex = porta
	if porta > 127 {
		v.portaRateIndex = 127
	}
	v.portaGliss = glissando
	v.cachedPitchModDepth = patch.PitchModDepth()
	v.cachedPitchModSens = patch.PitchModSens()
	v.cachedAmpModDepth = patch.AmpModDepth()
}

// Compute renders one N-sample block into output, applying pitch
// LFO/bend/envelope modulation, amp LFO/EG-bias modulation, per-op
// keyboard scaling, and portamento glide, then runs the algorithm
// router for this voice's current algorithm.
func (v *Voice) Compute(output []int32, lfoVal, lfoDelay int32, ctrls *dxctrl.Controllers, freqLut *dxtables.FreqLut, portaRates *dxporta.Rates) {
	pmd := uint32(v.pitchModDepth()) * uint32(lfoDelay)
	sensLFO := int32(v.pitchModSens()) * (lfoVal - (1 << 23))
	pmod1 := int32((int64(pmd) * int64(sensLFO)) >> 39)
	pmod1 = abs32(pmod1)
	pmod2 := int32((int64(ctrls.PitchMod) * int64(sensLFO)) >> 14)
	pmod2 = abs32(pmod2)
	pitchMod := pmod1
	if pmod2 > pitchMod {
		pitchMod = pmod2
	}
	sign := int32(1)
	if sensLFO < 0 {
		sign = -1
	}
	pitchMod = v.pitchEnv.GetSample() + pitchMod*sign

	pitchBase := ctrls.PitchBend() + ctrls.MasterTune
	pitchMod += pitchBase

	invLFO := (int32(1) << 24) - lfoVal
	amod1 := uint32((int64(v.ampModDepth()) * int64(lfoDelay)) >> 8)
	amod1 = uint32((int64(amod1) * int64(invLFO)) >> 24)
	amod2 := uint32((int64(ctrls.AmpMod) * int64(invLFO)) >> 7)
	ampMod := amod1
	if amod2 > ampMod {
		ampMod = amod2
	}
	amod3 := uint32(ctrls.EGMod+1) << 17
	if floor := (uint32(1) << 24) - amod3; floor > ampMod {
		ampMod = floor
	}

	for op := 0; op < 6; op++ {
		if ctrls.OpSwitch&(1<<uint(op)) == 0 {
			v.env[op].GetSample()
			v.params[op].LevelIn = 0
			continue
		}

		basePitch := v.basePitch[op]
		if v.opMode[op] != 0 {
			v.params[op].Freq = freqLut.Lookup(basePitch + pitchBase)
		} else {
			if v.portaRateIndex >= 0 {
				basePitch = v.portaCurPitch[op]
				if v.portaGliss {
					basePitch = LogfreqRound2Semi(basePitch)
				}
			}
			v.params[op].Freq = freqLut.Lookup(basePitch + pitchMod)
		}

		level := v.env[op].GetSample()
		if v.ampModSens[op] != 0 {
			sensAmp := uint32((uint64(ampMod) * uint64(v.ampModSens[op])) >> 24)
			pt := expApprox(float64(sensAmp)/262144*0.07 + 12.2)
			ldiff := uint32((uint64(level) * (uint64(pt) << 4)) >> 28)
			level -= int32(ldiff)
		}
		v.params[op].LevelIn = level
	}

	if v.portaRateIndex >= 0 {
		for op := 0; op < 6; op++ {
			v.portaCurPitch[op] = portaRates.Step(v.portaCurPitch[op], v.basePitch[op], v.portaRateIndex)
		}
	}

	v.core.Render(output, &v.params, v.algorithm, &v.fbBuf, v.fbShift)
}

// Keyup releases this voice's operator and pitch envelopes into their
// release stage.
func (v *Voice) Keyup() {
	for op := 0; op < 6; op++ {
		v.env[op].KeyDown(false)
	}
	v.pitchEnv.KeyDown(false)
}

// TransferState copies another voice's full envelope and phase state
// into v, used when mono-mode note stealing re-parents a held note.
func (v *Voice) TransferState(src *Voice) {
	for i := 0; i < 6; i++ {
		v.env[i].Transfer(&src.env[i])
		v.params[i].GainOut = src.params[i].GainOut
		v.params[i].Phase = src.params[i].Phase
	}
}

// TransferSignal copies only phase/gain continuity from src, leaving
// envelopes independent.
func (v *Voice) TransferSignal(src *Voice) {
	for i := 0; i < 6; i++ {
		v.params[i].GainOut = src.params[i].GainOut
		v.params[i].Phase = src.params[i].Phase
	}
}

// TransferPortamento copies src's in-flight glide pitch into v.
func (v *Voice) TransferPortamento(src *Voice) {
	v.portaCurPitch = src.portaCurPitch
}

// OscSync resets every operator's phase and gain to silence, used on
// key-sync note retrigger.
func (v *Voice) OscSync() {
	for i := 0; i < 6; i++ {
		v.params[i].GainOut = 0
		v.params[i].Phase = 0
	}
}

// CarrierMask returns the current algorithm's carrier-operator bitmap.
func (v *Voice) CarrierMask() uint8 {
	return dxcore.CarrierMask(v.algorithm)
}

// SetResolution switches this voice's operator kernel to the given
// sine-lookup resolution flavor (Modern/Mark-I/OPL).
func (v *Voice) SetResolution(r dxtables.Resolution) {
	v.core.SetResolution(r)
}

// silenceLevel is the original engine's VOICE_SILENCE_LEVEL: a Q24
// carrier gain at or below this is inaudible.
const silenceLevel = 1100

// Silent reports whether every carrier operator has both decayed to
// or below silenceLevel and reached EG stage 4 (fully released), the
// condition the allocator's polyphony audit uses to free a voice.
func (v *Voice) Silent() bool {
	mask := v.CarrierMask()
	for op := 0; op < 6; op++ {
		if mask&(1<<uint(op)) == 0 {
			continue
		}
		if v.params[op].GainOut > silenceLevel || v.env[op].Stage() != 4 {
			return false
		}
	}
	return true
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

// expApprox mirrors the original's EXP_FUNC(...) call in the amp-mod
// sensitivity curve.
func expApprox(x float64) uint32 {
	return uint32(math.Exp(x))
}

// pitchModDepth/pitchModSens/ampModDepth cache the patch-derived
// scalars set by Init/Update; stored directly rather than re-read
// from Patch each block, matching the original's per-note fields.
func (v *Voice) pitchModDepth() int32 { return v.cachedPitchModDepth }
func (v *Voice) pitchModSens() int32  { return v.cachedPitchModSens }
func (v *Voice) ampModDepth() int32   { return v.cachedAmpModDepth }
