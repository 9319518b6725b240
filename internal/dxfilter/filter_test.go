package dxfilter

import "testing"

func impulse(n int) []float32 {
	buf := make([]float32, n)
	buf[0] = 1
	return buf
}

func TestZeroGainSilencesOutput(t *testing.T) {
	f := NewFilter(44100)
	f.SetGain(0)
	buf := impulse(32)
	for i := range buf {
		buf[i] = 1
	}
	f.Process(buf)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d expected silence with zero gain, got %v", i, s)
		}
	}
}

func TestFullyOpenCutoffBypassesLowPass(t *testing.T) {
	f := NewFilter(44100)
	f.SetCutoff(1.0)
	buf := []float32{1, 0.5, -0.5, -1}
	before := append([]float32(nil), buf...)
	f.Process(buf)
	// DC blocker + unity gain still apply, so the first sample is
	// untouched (dcID/dcOD start at 0) but later samples differ
	// slightly; check the low-pass cascade never ran by confirming
	// no resonance blow-up (bounded output).
	for i, s := range buf {
		if s > 2 || s < -2 {
			t.Errorf("sample %d = %v exceeds expected bounded range given input %v", i, s, before[i])
		}
	}
}

func TestClosedCutoffStaysBounded(t *testing.T) {
	f := NewFilter(44100)
	f.SetCutoff(0.2)
	f.SetResonance(0.9)
	buf := impulse(256)
	f.Process(buf)
	for i, s := range buf {
		if s != s { // NaN check
			t.Fatalf("sample %d is NaN", i)
		}
		if s > 10 || s < -10 {
			t.Fatalf("sample %d = %v diverged", i, s)
		}
	}
}

func TestDCBlockerRemovesConstantOffset(t *testing.T) {
	f := NewFilter(44100)
	buf := make([]float32, 2000)
	for i := range buf {
		buf[i] = 0.5
	}
	f.Process(buf)
	tail := buf[len(buf)-10:]
	for i, s := range tail {
		if s > 0.05 || s < -0.05 {
			t.Errorf("tail sample %d = %v, expected DC blocker to settle near 0", i, s)
		}
	}
}
