package dxvoice

// DefaultPatch returns the classic DX7 "INIT VOICE" patch: algorithm 1
// (routing table index 0), a single audible carrier (operator slot 5,
// fed only by its own modulator at zero depth) with all other
// operators silenced, full-sustain envelopes, and the factory LFO
// defaults. It is the starting patch for a freshly constructed engine.
//
// Algorithm index 0's routing ({0xc1,0x11,0x11,0x14,0x01,0x14}) only
// carries operator slots 3 and 5 to the main bus; every other slot
// modulates into an auxiliary bus. Zeroing every output level except
// slot 5's reproduces the real INIT VOICE's single clean sine tone.
func DefaultPatch() *Patch {
	var p Patch
	for op := 0; op < 6; op++ {
		b := p.Op(op)
		b[opEGRate1] = 99
		b[opEGRate2] = 99
		b[opEGRate3] = 99
		b[opEGRate4] = 99
		b[opEGLevel1] = 99
		b[opEGLevel2] = 99
		b[opEGLevel3] = 99
		b[opEGLevel4] = 0
		b[opLevelScalingBreakPoint] = 39
		b[opLevelScalingDepthLeft] = 0
		b[opLevelScalingDepthRight] = 0
		b[opLevelScalingCurveLeft] = 0
		b[opLevelScalingCurveRight] = 0
		b[opRateScaling] = 0
		b[opAmpModSens] = 0
		b[opVelocitySens] = 0
		b[opOutputLevel] = 0
		b[opMode] = 0
		b[opFreqCoarse] = 1
		b[opFreqFine] = 0
		b[opDetune] = 7 // center of the 0..14 range
	}
	p.Op(5)[opOutputLevel] = 99

	g := p.Global()
	g[globalPitchEGRate1] = 99
	g[globalPitchEGRate2] = 99
	g[globalPitchEGRate3] = 99
	g[globalPitchEGRate4] = 99
	g[globalPitchEGLevel1] = 50
	g[globalPitchEGLevel2] = 50
	g[globalPitchEGLevel3] = 50
	g[globalPitchEGLevel4] = 50
	g[globalAlgorithm] = 0
	g[globalFeedback] = 0
	g[globalOscKeySync] = 1
	g[globalLFOSpeed] = 35
	g[globalLFODelay] = 0
	g[globalLFOPitchModDepth] = 0
	g[globalLFOAmpModDepth] = 0
	g[globalLFOSync] = 1
	g[globalLFOWaveform] = 0 // triangle
	g[globalLFOPitchModSens] = 3
	g[globalTranspose] = 24 // Transpose() == 0

	name := g[globalNameStart : globalNameStart+10]
	copy(name, "INIT VOICE")
	return &p
}
