package dxpitch

import "testing"

func TestEnvRisesAndAdvances(t *testing.T) {
	var e Env
	unit := Unit(44100)
	rates := [4]int{99, 99, 99, 99}
	levels := [4]int{99, 50, 50, 50}
	e.Set(unit, rates, levels)

	if e.Stage() != 0 {
		t.Fatalf("expected stage 0, got %d", e.Stage())
	}
	for i := 0; i < 100000 && e.Stage() == 0; i++ {
		e.GetSample()
	}
	if e.Stage() == 0 {
		t.Fatal("pitch EG never left attack stage")
	}
}

func TestEnvKeyDownFalseMovesToRelease(t *testing.T) {
	var e Env
	unit := Unit(44100)
	rates := [4]int{50, 50, 50, 50}
	levels := [4]int{99, 50, 50, 50}
	e.Set(unit, rates, levels)
	e.KeyDown(false)
	if e.Stage() != 3 {
		t.Fatalf("expected stage 3, got %d", e.Stage())
	}
}

func TestUnitScalesInverselyWithSampleRate(t *testing.T) {
	u1 := Unit(44100)
	u2 := Unit(88200)
	if u2 >= u1 {
		t.Errorf("higher sample rate should yield smaller per-block unit: u1=%d u2=%d", u1, u2)
	}
}
