// Package dxpitch implements the per-voice pitch envelope generator: a
// 4-stage linear-ramp EG shared by all six operators of a voice,
// modulating pitch rather than amplitude.
package dxpitch

// rateTable maps a raw 0..99 patch rate value to a per-sample
// increment unit multiplier.
var rateTable = [100]uint8{
	1, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12,
	12, 13, 13, 14, 14, 15, 16, 16, 17, 18, 18, 19, 20, 21, 22, 23, 24,
	25, 26, 27, 28, 30, 31, 33, 34, 36, 37, 38, 39, 41, 42, 44, 46, 47,
	49, 51, 53, 54, 56, 58, 60, 62, 64, 66, 68, 70, 72, 74, 76, 79, 82,
	85, 88, 91, 94, 98, 102, 106, 110, 115, 120, 125, 130, 135, 141, 147,
	153, 159, 165, 171, 178, 185, 193, 202, 211, 232, 243, 254, 255,
}

// levelTable maps a raw 0..99 patch level value to a signed pitch
// offset.
var levelTable = [100]int8{
	-128, -116, -104, -95, -85, -76, -68, -61, -56, -52, -49, -46, -43,
	-41, -39, -37, -35, -33, -32, -31, -30, -29, -28, -27, -26, -25, -24,
	-23, -22, -21, -20, -19, -18, -17, -16, -15, -14, -13, -12, -11, -10,
	-9, -8, -7, -6, -5, -4, -3, -2, -1, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10,
	11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27,
	28, 29, 30, 31, 32, 33, 34, 35, 38, 40, 43, 46, 49, 53, 58, 65, 73,
	82, 92, 103, 115, 127,
}

// Unit computes the sample-rate-dependent per-sample increment scale;
// compute once per sample rate and pass into Env.Set/advance.
func Unit(sampleRate float64) int32 {
	const blockSize = 64
	return int32(blockSize*(1<<24)/(21.3*sampleRate) + 0.5)
}

// Env is one pitch envelope generator instance, one per voice.
type Env struct {
	rates  [4]int
	levels [4]int

	level       int32
	targetLevel int32
	inc         int32
	rising      bool
	ix          int
	down        bool

	unit int32
}

// Set starts the pitch envelope at stage 0 for a freshly struck note.
func (e *Env) Set(unit int32, rates, levels [4]int) {
	e.unit = unit
	e.rates = rates
	e.levels = levels
	e.level = int32(levelTable[levels[3]]) << 19
	e.down = true
	e.advance(0)
}

// GetSample advances the envelope by one block and returns its
// current signed pitch offset.
func (e *Env) GetSample() int32 {
	if e.ix < 3 || (e.ix < 4 && !e.down) {
		if e.rising {
			e.level += e.inc
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

// KeyDown transitions between held (stages 0-2) and released (stage 3).
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

func (e *Env) advance(newix int) {
	e.ix = newix
	if e.ix >= 4 {
		return
	}
	newlevel := e.levels[e.ix]
	e.targetLevel = int32(levelTable[newlevel]) << 19
	e.rising = e.targetLevel > e.level
	e.inc = int32(rateTable[e.rates[e.ix]]) * e.unit
}

// Stage returns the current EG stage, 0..3, or 4 once release has
// finished.
func (e *Env) Stage() int { return e.ix }
