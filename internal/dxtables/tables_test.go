package dxtables

import (
	"math"
	"testing"
)

func TestSinLookupQuadrants(t *testing.T) {
	cases := []struct {
		name  string
		phase int32
		want  float64
	}{
		{"zero", 0, 0},
		{"quarter", 1 << 22, 1},
		{"half", 1 << 23, 0},
		{"threeQuarter", 3 << 22, -1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := float64(Sin.Lookup(c.phase)) / (1 << 24)
			if math.Abs(got-c.want) > 1e-3 {
				t.Errorf("Sin.Lookup(%d) = %f, want %f", c.phase, got, c.want)
			}
		})
	}
}

func TestExp2LookupIdentities(t *testing.T) {
	if got := Exp2.Lookup(0); got != 1<<24 {
		t.Errorf("Exp2.Lookup(0) = %d, want %d", got, 1<<24)
	}
	got := float64(Exp2.Lookup(1<<24)) / (1 << 24)
	if math.Abs(got-2) > 1e-3 {
		t.Errorf("Exp2.Lookup(1<<24) = %f, want 2", got)
	}
	got = float64(Exp2.Lookup(-(1 << 24))) / (1 << 24)
	if math.Abs(got-0.5) > 1e-3 {
		t.Errorf("Exp2.Lookup(-1<<24) = %f, want 0.5", got)
	}
}

func TestExp2LookupSaturatesDeepNegative(t *testing.T) {
	if got := Exp2.Lookup(-64 << 24); got != 0 {
		t.Errorf("Exp2.Lookup(-64<<24) = %d, want 0", got)
	}
}

func TestTanhLookupMonotonic(t *testing.T) {
	prev := Tanh.Lookup(0)
	for x := int32(1 << 16); x <= tanhDomain; x += 1 << 16 {
		cur := Tanh.Lookup(x)
		if cur < prev {
			t.Fatalf("Tanh.Lookup not monotonic at x=%d: %d < %d", x, cur, prev)
		}
		prev = cur
	}
}

func TestTanhSignedOddSymmetry(t *testing.T) {
	for _, x := range []int32{0, 1 << 20, 1 << 23, 4 << 24} {
		if got, want := TanhSigned(-x), -TanhSigned(x); got != want {
			t.Errorf("TanhSigned(-%d) = %d, want %d", x, got, want)
		}
	}
}

func TestFreqLutMonotonicWithLogFreq(t *testing.T) {
	lut := NewFreqLut(44100)
	prev := lut.Lookup(0)
	for lf := int32(1 << 18); lf <= 8<<24; lf += 1 << 20 {
		cur := lut.Lookup(lf)
		if cur < prev {
			t.Fatalf("FreqLut not monotonic at logfreq=%d: %d < %d", lf, cur, prev)
		}
		prev = cur
	}
}

func TestFreqLutScalesWithSampleRate(t *testing.T) {
	lut44 := NewFreqLut(44100)
	lut88 := NewFreqLut(88200)
	lf := int32(4 << 24)
	got44 := lut44.Lookup(lf)
	got88 := lut88.Lookup(lf)
	ratio := float64(got44) / float64(got88)
	if math.Abs(ratio-2) > 0.01 {
		t.Errorf("doubling sample rate should halve phase increment: ratio=%f", ratio)
	}
}
