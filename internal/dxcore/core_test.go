package dxcore

import (
	"testing"

	"github.com/cbegin/dx7fm-go/internal/dxtables"
)

func TestCarrierMaskAlgorithm1(t *testing.T) {
	// Algorithm 1 (index 0): ops = {0xc1, 0x11, 0x11, 0x14, 0x01, 0x14}.
	// Op 0 feeds aux bus 1 with self-feedback; ops 1-2 chain-modulate
	// through that same bus; op 3 (0x14, add-to-main) and op 4 (0x01,
	// overwrite aux bus 1) feed the second stage; op 5 (0x14) adds the
	// second chain's result to main. Only ops 3 and 5 write to the main
	// bus, so only they are carriers.
	mask := CarrierMask(0)
	if mask&(1<<3) == 0 {
		t.Error("expected op 3 to be a carrier in algorithm 1")
	}
	if mask&(1<<5) == 0 {
		t.Error("expected op 5 to be a carrier in algorithm 1")
	}
	if mask&(1<<0) != 0 {
		t.Error("expected op 0 not to be a carrier in algorithm 1")
	}
	if mask&(1<<1) != 0 {
		t.Error("expected op 1 not to be a carrier in algorithm 1")
	}
}

func TestRenderSilentOperatorsProduceSilence(t *testing.T) {
	c := NewCore()
	var params [6]OpParams
	var fbBuf [2]int32
	out := make([]int32, dxtables.N)
	c.Render(out, &params, 0, &fbBuf, 16)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("expected silence at sample %d, got %d", i, v)
		}
	}
}

func TestRenderSingleCarrierProducesSignal(t *testing.T) {
	c := NewCore()
	var params [6]OpParams
	var fbBuf [2]int32
	// Algorithm 32 (index 31): all six ops are independent carriers.
	// Drive operator 0 with a full-scale level and a mid-range freq.
	params[0].LevelIn = 14 << 24 // gain2 = Exp2.Lookup(0) = 1<<24
	params[0].Freq = 1 << 18
	out := make([]int32, dxtables.N)
	c.Render(out, &params, 31, &fbBuf, 16)

	nonZero := false
	for _, v := range out {
		if v != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatal("expected non-silent output from a driven carrier")
	}
}

func TestRenderFeedbackOperatorStaysBounded(t *testing.T) {
	c := NewCore()
	var params [6]OpParams
	var fbBuf [2]int32
	params[0].LevelIn = 14 << 24
	params[0].Freq = 1 << 18
	out := make([]int32, dxtables.N)
	// Algorithm 1 (index 0): op 0 has both fb bits set (0xc1).
	for block := 0; block < 8; block++ {
		c.Render(out, &params, 0, &fbBuf, 3)
	}
	for i, v := range out {
		if v > 1<<24 || v < -(1<<24) {
			t.Fatalf("sample %d out of expected range: %d", i, v)
		}
	}
}
