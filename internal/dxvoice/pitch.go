package dxvoice

import "math"

// logfreqBase is (1<<24) * (log2(440) - 69/12), the Q24 log-frequency
// of MIDI note 0 under A440 12-TET tuning.
const logfreqBase = 50857777

// logfreqStep is (1<<24)/12, one semitone in Q24 log-frequency units.
const logfreqStep = (1 << 24) / 12

// MidinoteToLogfreq converts a MIDI note number to a Q24 log-frequency
// value (1.0 == one octave).
func MidinoteToLogfreq(midinote int) int32 {
	return logfreqBase + logfreqStep*int32(midinote)
}

// LogfreqRound2Semi snaps a Q24 log-frequency value to the nearest
// semitone at or below it, used for glissando portamento.
func LogfreqRound2Semi(freq int32) int32 {
	rem := (freq - logfreqBase) % logfreqStep
	return freq - rem
}

// coarsemul maps a 0..31 operator coarse-frequency value to its Q24
// log-frequency contribution in ratio mode.
var coarsemul = [32]int32{
	-16777216, 0, 16777216, 26591258, 33554432, 38955489, 43368474, 47099600,
	50331648, 53182516, 55732705, 58039632, 60145690, 62083076, 63876816,
	65546747, 67108864, 68576247, 69959732, 71268397, 72509921, 73690858,
	74816848, 75892776, 76922906, 77910978, 78860292, 79773775, 80654032,
	81503396, 82323963, 83117622,
}

// OscFreq computes an operator's Q24 log-frequency from its patch
// fields: mode 0 is ratio (relative to midinote), non-zero mode is
// fixed-frequency.
func OscFreq(midinote, mode, coarse, fine, detune int) int32 {
	if mode == 0 {
		logfreq := MidinoteToLogfreq(midinote)
		detuneRatio := 0.0209 * math.Exp(-0.396*(float64(logfreq)/(1<<24))) / 7
		logfreq += int32(detuneRatio * float64(logfreq) * float64(detune-7))
		logfreq += coarsemul[coarse&31]
		if fine != 0 {
			logfreq += int32(math.Floor(24204406.323123*math.Log(1+0.01*float64(fine)) + 0.5))
		}
		return logfreq
	}
	logfreq := int32(4458616*((coarse&3)*100+fine)) >> 3
	if detune > 7 {
		logfreq += int32(13457 * (detune - 7))
	}
	return logfreq
}

// velocityData maps a clamped 0..63 half-velocity index to a scaled
// velocity curve value.
var velocityData = [64]uint8{
	0, 70, 86, 97, 106, 114, 121, 126, 132, 138, 142, 148, 152, 156, 160, 163,
	166, 170, 173, 174, 178, 181, 184, 186, 189, 190, 194, 196, 198, 200, 202,
	205, 206, 209, 211, 214, 216, 218, 220, 222, 224, 225, 227, 229, 230, 232,
	233, 235, 237, 238, 240, 241, 242, 243, 244, 246, 246, 248, 249, 250, 251,
	252, 253, 254,
}

// ScaleVelocity returns the output-level delta (in microsteps) applied
// to an operator for the given note-on velocity and the operator's
// velocity-sensitivity patch value.
func ScaleVelocity(velocity, sensitivity int) int {
	clamped := velocity
	if clamped < 0 {
		clamped = 0
	}
	if clamped > 127 {
		clamped = 127
	}
	velValue := int(velocityData[clamped>>1]) - 239
	return ((sensitivity*velValue + 7) >> 3) << 4
}

// ScaleRate returns the rate-scaling delta applied to an operator's EG
// rates for the given midinote and the operator's rate-scaling patch
// value.
func ScaleRate(midinote, sensitivity int) int {
	x := midinote/3 - 7
	if x < 0 {
		x = 0
	}
	if x > 31 {
		x = 31
	}
	return (sensitivity * x) >> 3
}

// expScaleData is the exponential keyboard-level-scaling curve table.
var expScaleData = [33]uint8{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 11, 14, 16, 19, 23, 27, 33, 39, 47, 56, 66,
	80, 94, 110, 126, 142, 158, 174, 190, 206, 222, 238, 250,
}

// ScaleCurve applies one keyboard-level-scaling curve (0=-lin, 1=-exp,
// 2=+exp, 3=+lin: curves 0/3 are linear, 1/2 are exponential, and
// curve<2 negates the result — the DX7's 4 curve shapes).
func ScaleCurve(group, depth, curve int) int {
	var scale int
	if curve == 0 || curve == 3 {
		scale = (group * depth * 329) >> 12
	} else {
		g := group
		if g > len(expScaleData)-1 {
			g = len(expScaleData) - 1
		}
		if g < 0 {
			g = 0
		}
		scale = (int(expScaleData[g]) * depth * 329) >> 15
	}
	if curve < 2 {
		scale = -scale
	}
	return scale
}

// ScaleLevel returns an operator's keyboard-level-scaling contribution
// for the given midinote and its breakpoint/depth/curve patch fields.
func ScaleLevel(midinote, breakPt, leftDepth, rightDepth, leftCurve, rightCurve int) int {
	offset := midinote - breakPt - 17
	if offset >= 0 {
		return ScaleCurve((offset+1)/3, rightDepth, rightCurve)
	}
	return ScaleCurve(-(offset-1)/3, leftDepth, leftCurve)
}

// pitchModSensTab maps a 0..7 patch value to an LFO pitch-mod
// sensitivity scalar.
var pitchModSensTab = [8]uint8{0, 10, 20, 33, 55, 92, 153, 255}

// ampModSensTab maps a 0..3 patch value to an operator's amp-mod
// sensitivity scalar.
var ampModSensTab = [4]uint32{0, 4342338, 7171437, 16777216}
