package dxlfo

import "testing"

func TestSampleHoldStaysWithinRange(t *testing.T) {
	var l LFO
	unit := Unit(44100)
	l.Reset(unit, [6]uint8{50, 0, 0, 0, 0, WaveSampleHold})
	for i := 0; i < 1000; i++ {
		v := l.Sample()
		if v < 0 || v > (1<<24) {
			t.Fatalf("sample %d out of Q24 range: %d", i, v)
		}
	}
}

func TestTriangleWaveformBounded(t *testing.T) {
	var l LFO
	unit := Unit(44100)
	l.Reset(unit, [6]uint8{80, 0, 0, 0, 0, WaveTriangle})
	for i := 0; i < 1000; i++ {
		v := l.Sample()
		if v < 0 || v >= (1<<24) {
			t.Fatalf("sample %d out of expected triangle range: %d", i, v)
		}
	}
}

func TestKeyDownSyncResetsPhase(t *testing.T) {
	var l LFO
	unit := Unit(44100)
	l.Reset(unit, [6]uint8{50, 0, 0, 0, 1, WaveSine})
	for i := 0; i < 100; i++ {
		l.Sample()
	}
	l.KeyDown()
	if l.phase != (1<<31)-1 {
		t.Fatalf("expected phase reset to 1<<31-1, got %d", l.phase)
	}
}

func TestDelayRampEventuallyReachesFullDepth(t *testing.T) {
	var l LFO
	unit := Unit(44100)
	l.Reset(unit, [6]uint8{50, 50, 0, 0, 0, WaveSine})
	var last int32
	for i := 0; i < 200000; i++ {
		last = l.Delay()
		if last == 1<<24 {
			return
		}
	}
	t.Fatalf("delay ramp never reached full depth, last=%d", last)
}

func TestLongDelayStaysZeroInitially(t *testing.T) {
	var l LFO
	unit := Unit(44100)
	l.Reset(unit, [6]uint8{50, 99, 0, 0, 0, WaveSine})
	for i := 0; i < 100; i++ {
		if v := l.Delay(); v != 0 {
			t.Fatalf("delay=99 should still be ramping in at step %d, got %d", i, v)
		}
	}
}

func TestZeroDelayRampsInImmediately(t *testing.T) {
	var l LFO
	unit := Unit(44100)
	l.Reset(unit, [6]uint8{50, 0, 0, 0, 0, WaveSine})
	if v := l.Delay(); v == 0 {
		t.Fatal("delay=0 should ramp in on the first call")
	}
}
