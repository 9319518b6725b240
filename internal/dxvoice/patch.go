// Package dxvoice implements the 155-byte voice patch data model and
// the per-voice FM note (pitch, envelopes, algorithm routing) built
// from it: the DX7-compatible oscillator math, keyboard scaling
// curves, and the Voice type that renders one active note.
package dxvoice

// Patch is the 155-byte unpacked voice parameter block: six 21-byte
// operators followed by 29 bytes of global parameters.
type Patch [155]byte

// Operator byte offsets, relative to an operator's 21-byte block.
const (
	opEGRate1 = iota
	opEGRate2
	opEGRate3
	opEGRate4
	opEGLevel1
	opEGLevel2
	opEGLevel3
	opEGLevel4
	opLevelScalingBreakPoint
	opLevelScalingDepthLeft
	opLevelScalingDepthRight
	opLevelScalingCurveLeft
	opLevelScalingCurveRight
	opRateScaling
	opAmpModSens
	opVelocitySens
	opOutputLevel
	opMode
	opFreqCoarse
	opFreqFine
	opDetune
)

const operatorBlockSize = 21

// Global parameter byte offsets, relative to byte 126 of the patch.
const (
	globalPitchEGRate1 = iota
	globalPitchEGRate2
	globalPitchEGRate3
	globalPitchEGRate4
	globalPitchEGLevel1
	globalPitchEGLevel2
	globalPitchEGLevel3
	globalPitchEGLevel4
	globalAlgorithm
	globalFeedback
	globalOscKeySync
	globalLFOSpeed
	globalLFODelay
	globalLFOPitchModDepth
	globalLFOAmpModDepth
	globalLFOSync
	globalLFOWaveform
	globalLFOPitchModSens
	globalTranspose
	globalNameStart // 10 bytes, names 19..28
)

const globalBase = 126

// NameOffset and NameLen bound the patch's 10-character ASCII name
// field in absolute byte offsets, for callers (such as dxsysex's
// parameter-change decoder) that must not clamp name bytes to the
// numeric 0..99 range every other parameter uses.
const (
	NameOffset = globalBase + globalNameStart
	NameLen    = 10
)

// Op returns the 21-byte slice for operator i (0..5, in dump order:
// 0 = OP6, 5 = OP1).
func (p *Patch) Op(i int) []byte {
	off := i * operatorBlockSize
	return p[off : off+operatorBlockSize]
}

// Global returns the 29-byte slice of global parameters starting at
// byte 126.
func (p *Patch) Global() []byte {
	return p[globalBase:155]
}

// Algorithm returns the patch's algorithm index, 0..31.
func (p *Patch) Algorithm() int {
	return int(p.Global()[globalAlgorithm])
}

// Feedback returns the patch's feedback amount, 0..7.
func (p *Patch) Feedback() int {
	return int(p.Global()[globalFeedback])
}

// FeedbackShift converts the patch's feedback amount into the shift
// applied to the self-feedback operator; 16 disables feedback.
func (p *Patch) FeedbackShift() int {
	fb := p.Feedback()
	if fb == 0 {
		return 16
	}
	return feedbackBitDepth - fb
}

const feedbackBitDepth = 8

// LFOParams returns the 6 raw LFO patch bytes in the order consumed
// by dxlfo.LFO.Reset: speed, delay, pitch-mod depth, amp-mod depth,
// sync, waveform.
func (p *Patch) LFOParams() [6]byte {
	g := p.Global()
	return [6]byte{
		g[globalLFOSpeed],
		g[globalLFODelay],
		g[globalLFOPitchModDepth],
		g[globalLFOAmpModDepth],
		g[globalLFOSync],
		g[globalLFOWaveform],
	}
}

// PitchEGRatesLevels returns the pitch EG's 4 rates and 4 levels.
func (p *Patch) PitchEGRatesLevels() (rates, levels [4]int) {
	g := p.Global()
	for i := 0; i < 4; i++ {
		rates[i] = int(g[globalPitchEGRate1+i])
		levels[i] = int(g[globalPitchEGLevel1+i])
	}
	return
}

// PitchModDepth returns the LFO pitch-mod depth scaled per
// Dx7Note::init (patch byte * 165 >> 6).
func (p *Patch) PitchModDepth() int32 {
	return int32(p.Global()[globalLFOPitchModDepth]) * 165 >> 6
}

// AmpModDepth returns the LFO amp-mod depth, scaled the same way.
func (p *Patch) AmpModDepth() int32 {
	return int32(p.Global()[globalLFOAmpModDepth]) * 165 >> 6
}

// PitchModSens returns the LFO pitch-mod sensitivity, 0..7 mapped
// through pitchModSensTab.
func (p *Patch) PitchModSens() int32 {
	return int32(pitchModSensTab[p.Global()[globalLFOPitchModSens]&7])
}

// Transpose returns the patch's key-transpose offset in semitones,
// already adjusted for the DX7's fixed +24 display bias.
func (p *Patch) Transpose() int {
	const transposeFix = 24
	return int(p.Global()[globalTranspose]) - transposeFix
}

// KeySync reports whether oscillator phases reset to zero on note-on.
func (p *Patch) KeySync() bool {
	return p.Global()[globalOscKeySync] != 0
}
