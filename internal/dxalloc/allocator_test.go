package dxalloc

import (
	"testing"

	"github.com/cbegin/dx7fm-go/internal/dxctrl"
	"github.com/cbegin/dx7fm-go/internal/dxenv"
	"github.com/cbegin/dx7fm-go/internal/dxlfo"
	"github.com/cbegin/dx7fm-go/internal/dxvoice"
)

func testPatch() *dxvoice.Patch {
	var p dxvoice.Patch
	return &p
}

func TestNoteOnFillsFreeSlotsBeforeStealing(t *testing.T) {
	a := NewAllocator(2)
	patch := testPatch()
	ctrls := dxctrl.NewControllers()
	ctrls.Refresh()
	lfo := &dxlfo.LFO{}
	srMul := dxenv.InitSampleRate(44100)

	a.NoteOn(60, 100, patch, ctrls, lfo, srMul, 0)
	a.NoteOn(64, 100, patch, ctrls, lfo, srMul, 0)

	liveCount := 0
	for i := 0; i < a.MaxNotes(); i++ {
		if a.Live(i) {
			liveCount++
		}
	}
	if liveCount != 2 {
		t.Fatalf("expected 2 live voices after 2 note-ons into a 2-voice pool, got %d", liveCount)
	}
}

func TestNoteOnStealsOldestVoiceWhenFull(t *testing.T) {
	a := NewAllocator(1)
	patch := testPatch()
	ctrls := dxctrl.NewControllers()
	ctrls.Refresh()
	lfo := &dxlfo.LFO{}
	srMul := dxenv.InitSampleRate(44100)

	a.NoteOn(60, 100, patch, ctrls, lfo, srMul, 0)
	a.NoteOn(67, 100, patch, ctrls, lfo, srMul, 0)

	if !a.Live(0) {
		t.Fatal("expected the single voice slot to still be live after stealing")
	}
	// midiNote is stored after the patch transpose is applied.
	if want := 67 + patch.Transpose(); a.voices[0].midiNote != want {
		t.Errorf("expected stolen voice to carry the new note 67 transposed to %d, got %d", want, a.voices[0].midiNote)
	}
}

func TestNoteOffReleasesMatchingVoice(t *testing.T) {
	a := NewAllocator(2)
	patch := testPatch()
	ctrls := dxctrl.NewControllers()
	ctrls.Refresh()
	lfo := &dxlfo.LFO{}
	srMul := dxenv.InitSampleRate(44100)

	a.NoteOn(60, 100, patch, ctrls, lfo, srMul, 0)
	a.NoteOff(60, patch)

	if a.voices[0].keydown {
		t.Error("expected keydown to clear after note-off")
	}
	if !a.voices[0].live {
		t.Error("a released voice stays live until its envelope decays")
	}
}

func TestSustainHoldsNoteInsteadOfReleasing(t *testing.T) {
	a := NewAllocator(1)
	patch := testPatch()
	ctrls := dxctrl.NewControllers()
	ctrls.Refresh()
	lfo := &dxlfo.LFO{}
	srMul := dxenv.InitSampleRate(44100)

	a.SetSustain(true)
	a.NoteOn(60, 100, patch, ctrls, lfo, srMul, 0)
	a.NoteOff(60, patch)

	if !a.voices[0].sustained {
		t.Error("expected note-off under sustain to mark the voice sustained, not release it")
	}
}

func TestPanicClearsAllLiveVoicesAndSustain(t *testing.T) {
	a := NewAllocator(2)
	patch := testPatch()
	ctrls := dxctrl.NewControllers()
	ctrls.Refresh()
	lfo := &dxlfo.LFO{}
	srMul := dxenv.InitSampleRate(44100)

	a.SetSustain(true)
	a.NoteOn(60, 100, patch, ctrls, lfo, srMul, 0)
	a.NoteOn(64, 100, patch, ctrls, lfo, srMul, 0)
	a.Panic()

	for i := 0; i < a.MaxNotes(); i++ {
		if a.Live(i) {
			t.Errorf("voice %d still live after panic", i)
		}
	}
	if a.Sustain() {
		t.Error("expected panic to release the sustain pedal")
	}
}

func TestSetMonoModeClearsLiveVoicesOnChange(t *testing.T) {
	a := NewAllocator(2)
	patch := testPatch()
	ctrls := dxctrl.NewControllers()
	ctrls.Refresh()
	lfo := &dxlfo.LFO{}
	srMul := dxenv.InitSampleRate(44100)

	a.NoteOn(60, 100, patch, ctrls, lfo, srMul, 0)
	a.SetMonoMode(true)

	for i := 0; i < a.MaxNotes(); i++ {
		if a.Live(i) {
			t.Errorf("voice %d still live after switching mono mode", i)
		}
	}
	if !a.MonoMode() {
		t.Error("expected mono mode to be enabled")
	}
}

func TestResizeShrinksAndGrowsPool(t *testing.T) {
	a := NewAllocator(4)
	a.Resize(2)
	if a.MaxNotes() != 2 {
		t.Fatalf("expected pool of 2 after shrink, got %d", a.MaxNotes())
	}
	a.Resize(6)
	if a.MaxNotes() != 6 {
		t.Fatalf("expected pool of 6 after grow, got %d", a.MaxNotes())
	}
}
