package dxporta

import "testing"

func TestRatesDecreaseWithIndex(t *testing.T) {
	r := NewRates(44100)
	if r.At(0) <= r.At(127) {
		t.Errorf("expected rate 0 (fastest) > rate 127 (slowest): got %d <= %d", r.At(0), r.At(127))
	}
}

func TestAtClampsOutOfRangeIndex(t *testing.T) {
	r := NewRates(44100)
	if r.At(-5) != r.At(0) {
		t.Error("negative index should clamp to 0")
	}
	if r.At(500) != r.At(127) {
		t.Error("large index should clamp to 127")
	}
}

func TestStepConvergesToTarget(t *testing.T) {
	r := NewRates(44100)
	cur := int32(0)
	target := int32(1 << 24)
	steps := 0
	for cur != target && steps < 100000 {
		cur = r.Step(cur, target, 64)
		steps++
	}
	if cur != target {
		t.Fatalf("Step never converged to target after %d steps", steps)
	}
}

func TestStepHandlesDescendingGlide(t *testing.T) {
	r := NewRates(44100)
	cur := int32(1 << 24)
	target := int32(0)
	for i := 0; i < 100000 && cur != target; i++ {
		cur = r.Step(cur, target, 64)
	}
	if cur != target {
		t.Fatal("descending glide never converged")
	}
}
