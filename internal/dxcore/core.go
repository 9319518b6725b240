package dxcore

import "github.com/cbegin/dx7fm-go/internal/dxtables"

// levelThresh is the Q24 gain value below which an operator's output
// is treated as silent and skipped; below this level the bus it would
// have written is marked as having no content unless it is an add bus.
const levelThresh = 1120

// OpParams is the per-operator render state fed to Render each block.
// Phase and GainOut persist across blocks; LevelIn is written by the
// envelope/pitch stage before each call.
type OpParams struct {
	Phase   int32 // Q24 running phase accumulator
	Freq    int32 // Q24 phase increment per sample
	LevelIn int32 // Q24 target output level for this block
	GainOut int32 // Q24 gain at the end of the previous block (ramp start)
}

// Core holds the two auxiliary-bus scratch buffers shared by every
// render() call for a single voice. Not safe for concurrent use by
// more than one voice; each voice owns one Core.
type Core struct {
	buf [2][dxtables.N]int32
	sin func(int32) int32
}

// NewCore allocates a fresh operator-kernel scratch state using the
// modern interpolated sine table.
func NewCore() *Core {
	return &Core{sin: dxtables.Sin.Lookup}
}

// SetResolution switches this core's sine source between the
// Modern/Mark-I/OPL flavors; all three share the rest of the render
// path unchanged.
func (c *Core) SetResolution(r dxtables.Resolution) {
	c.sin = dxtables.SinFor(r)
}

// Render computes one N-sample block for all 6 operators of the given
// algorithm, writing the summed carrier output into output (which must
// be at least dxtables.N long). fbBuf carries the two-sample feedback
// history across calls for whichever operator has self-feedback
// enabled; feedbackShift is derived from the patch feedback amount
// (>=16 disables feedback entirely).
func (c *Core) Render(output []int32, params *[6]OpParams, algorithm int, fbBuf *[2]int32, feedbackShift int) {
	alg := Algorithms[algorithm]
	var hasContents [3]bool
	hasContents[0] = true

	for op := 0; op < 6; op++ {
		flags := alg.Ops[op]
		add := flags&outBusAdd != 0
		param := &params[op]
		inbus := (int(flags) >> 4) & 3
		outbus := int(flags) & 3

		var outptr []int32
		if outbus == 0 {
			outptr = output
		} else {
			outptr = c.buf[outbus-1][:]
		}

		gain1 := param.GainOut
		gain2 := dxtables.Exp2.Lookup(param.LevelIn - 14*(1<<24))
		param.GainOut = gain2

		if gain1 >= levelThresh || gain2 >= levelThresh {
			if !hasContents[outbus] {
				add = false
			}
			if inbus == 0 || !hasContents[inbus] {
				if flags&fbMask == fbMask && feedbackShift < 16 {
					computeFB(c.sin, outptr, param.Phase, param.Freq, gain1, gain2, fbBuf, feedbackShift, add)
				} else {
					computePure(c.sin, outptr, param.Phase, param.Freq, gain1, gain2, add)
				}
			} else {
				compute(c.sin, outptr, c.buf[inbus-1][:], param.Phase, param.Freq, gain1, gain2, add)
			}
			hasContents[outbus] = true
		} else if !add {
			hasContents[outbus] = false
		}
		param.Phase += param.Freq << dxtables.LgN
	}
}
