// Package dxalloc implements polyphonic voice allocation: note-on/
// note-off dispatch across a fixed pool of dxvoice.Voice slots, oldest-
// voice stealing when the pool is full, sustain-pedal hold, mono-mode
// note transfer, and panic/notes-off resets.
package dxalloc

import (
	"github.com/cbegin/dx7fm-go/internal/dxctrl"
	"github.com/cbegin/dx7fm-go/internal/dxlfo"
	"github.com/cbegin/dx7fm-go/internal/dxtables"
	"github.com/cbegin/dx7fm-go/internal/dxvoice"
)

// slot pairs one Voice with the allocator bookkeeping the original
// engine keeps alongside it.
type slot struct {
	voice           *dxvoice.Voice
	midiNote        int
	velocity        int
	porta           int // -1 when this voice has no active portamento glide
	keydown         bool
	sustained       bool
	live            bool
	keyPressedTimer uint32
}

// Allocator owns a fixed pool of voices and decides which plays each
// incoming note-on, following the original engine's round-robin-then-
// steal-oldest policy.
type Allocator struct {
	voices      []slot
	currentNote int
	lastKeyDown int

	monoMode    bool
	refreshMode bool
	sustain     bool

	clock uint32
}

// NewAllocator builds an allocator with maxNotes voice slots.
func NewAllocator(maxNotes int) *Allocator {
	a := &Allocator{
		voices:      make([]slot, maxNotes),
		lastKeyDown: -1,
	}
	for i := range a.voices {
		a.voices[i].voice = dxvoice.NewVoice()
	}
	return a
}

// Resize grows or shrinks the voice pool, discarding any notes beyond
// a smaller new size. Existing slots are preserved in place.
func (a *Allocator) Resize(maxNotes int) {
	if maxNotes == len(a.voices) {
		return
	}
	if maxNotes < len(a.voices) {
		a.voices = a.voices[:maxNotes]
		if a.currentNote >= maxNotes {
			a.currentNote = 0
		}
		return
	}
	for len(a.voices) < maxNotes {
		a.voices = append(a.voices, slot{voice: dxvoice.NewVoice()})
	}
}

// MaxNotes returns the current voice pool size.
func (a *Allocator) MaxNotes() int { return len(a.voices) }

// Voices returns the underlying voice pool for the render loop to sum
// over. A voice only contributes audio while its slot reports Live.
func (a *Allocator) Voices() []*dxvoice.Voice {
	out := make([]*dxvoice.Voice, len(a.voices))
	for i := range a.voices {
		out[i] = a.voices[i].voice
	}
	return out
}

// Live reports whether voice slot i currently holds a sounding note.
func (a *Allocator) Live(i int) bool {
	return a.voices[i].live
}

// tick returns a monotonically increasing logical timestamp used to
// find the oldest voice when stealing; the original engine uses
// wall-clock milliseconds for this, but a logical counter gives the
// same oldest-wins ordering without making allocation depend on real
// time.
func (a *Allocator) tick() uint32 {
	a.clock++
	return a.clock
}

// SetSustain enables or disables the sustain pedal.
func (a *Allocator) SetSustain(s bool) {
	a.sustain = s
}

// Sustain reports the current sustain-pedal state.
func (a *Allocator) Sustain() bool { return a.sustain }

// SetRefreshMode controls whether a held, sustained note that is
// struck again retriggers its envelope in place instead of stealing a
// new voice.
func (a *Allocator) SetRefreshMode(mode bool) {
	a.refreshMode = mode
}

// SetMonoMode switches between polyphonic and monophonic operation,
// clearing all live notes on a genuine mode change.
func (a *Allocator) SetMonoMode(mode bool) {
	if a.monoMode == mode {
		return
	}
	a.NotesOff()
	a.monoMode = mode
}

// MonoMode reports whether the allocator is in monophonic mode.
func (a *Allocator) MonoMode() bool { return a.monoMode }

// NoteOn dispatches a note-on: refreshing a sustained held note in
// place (refresh mode), retriggering a free or stolen voice slot, and
// in mono mode transferring envelope/phase continuity from whichever
// voice the new note supersedes.
func (a *Allocator) NoteOn(pitch, velocity int, patch *dxvoice.Patch, ctrls *dxctrl.Controllers, lfo *dxlfo.LFO, srMultiplier int64, pitchUnit int32) {
	if velocity == 0 {
		a.NoteOff(pitch, patch)
		return
	}
	if len(a.voices) == 0 {
		return
	}

	pitch += patch.Transpose()

	previousKeyDown := a.lastKeyDown
	a.lastKeyDown = pitch

	porta := -1
	if ctrls.PortamentoEnabled && previousKeyDown >= 0 {
		porta = int(ctrls.PortamentoTime)
	}

	maxNotes := len(a.voices)
	note := a.currentNote
	keydownCounter := 0

	if !a.monoMode && a.refreshMode {
		for i := 0; i < maxNotes; i++ {
			s := &a.voices[i]
			if s.midiNote == pitch && !s.keydown && s.live && s.sustained {
				s.voice.Keyup()
				s.midiNote = pitch
				s.velocity = velocity
				s.keydown = true
				s.sustained = a.sustain
				s.live = true
				s.voice.Init(patch, pitch, velocity, pitch, porta, ctrls.PortamentoGlissando, srMultiplier, pitchUnit)
				s.porta = porta
				s.keyPressedTimer = a.tick()
				return
			}
		}
	}

	for i := 0; i <= maxNotes; i++ {
		if i == maxNotes {
			if a.monoMode {
				break
			}
			var minTimer uint32 = ^uint32(0)
			for n := 0; n < maxNotes; n++ {
				if a.voices[n].keyPressedTimer < minTimer {
					minTimer = a.voices[n].keyPressedTimer
					note = n
				}
			}
			a.voices[note].keydown = false
			a.voices[note].sustained = false
			a.voices[note].live = false
			a.voices[note].keyPressedTimer = 0
			keydownCounter--
		}

		s := &a.voices[note]
		if !s.keydown {
			a.currentNote = (note + 1) % maxNotes
			s.midiNote = pitch
			s.velocity = velocity
			s.sustained = a.sustain
			s.keydown = true
			srcnote := pitch
			if previousKeyDown >= 0 {
				srcnote = previousKeyDown
			}
			s.voice.Init(patch, pitch, velocity, srcnote, porta, ctrls.PortamentoGlissando, srMultiplier, pitchUnit)
			s.porta = porta
			if patch.KeySync() {
				s.voice.OscSync()
			}
			s.keyPressedTimer = a.tick()
			keydownCounter++
			break
		}
		keydownCounter++
		note = (note + 1) % maxNotes
	}

	if keydownCounter == 0 {
		lfo.KeyDown()
	}

	if a.monoMode {
		for i := 0; i < maxNotes; i++ {
			s := &a.voices[i]
			if s.live {
				if !s.keydown {
					s.live = false
					a.voices[note].voice.TransferSignal(s.voice)
					break
				}
				if s.midiNote < pitch {
					s.live = false
					a.voices[note].voice.TransferState(s.voice)
					break
				}
				return
			}
		}
	}

	a.voices[note].live = true
}

// NoteOff dispatches a note-off: releasing the matching voice's
// envelopes (or, with sustain held, marking it sustained instead), and
// in mono mode transferring envelope continuity to the next-highest
// held note.
func (a *Allocator) NoteOff(pitch int, patch *dxvoice.Patch) {
	if pitch < 0 {
		pitch = 0
	}
	if pitch > 127 {
		pitch = 127
	}
	pitch += patch.Transpose()

	maxNotes := len(a.voices)
	note := maxNotes
	for n := 0; n < maxNotes; n++ {
		if a.voices[n].midiNote == pitch && a.voices[n].keydown {
			a.voices[n].keydown = false
			a.voices[n].keyPressedTimer = 0
			note = n
			break
		}
	}
	if note >= maxNotes {
		return
	}

	if a.monoMode {
		highNote := -1
		target := 0
		for i := 0; i < maxNotes; i++ {
			if a.voices[i].keydown && a.voices[i].midiNote > highNote {
				target = i
				highNote = a.voices[i].midiNote
			}
		}
		if highNote != -1 && a.voices[note].live {
			a.voices[note].live = false
			a.voices[note].keyPressedTimer = 0
			a.voices[target].live = true
			a.voices[target].voice.TransferState(a.voices[note].voice)
		}
	}

	if a.sustain {
		a.voices[note].sustained = true
	} else {
		a.voices[note].voice.Keyup()
	}
}

// Panic silences every live voice immediately (phase/gain reset, no
// release ramp) and releases the sustain pedal.
func (a *Allocator) Panic() {
	for i := range a.voices {
		s := &a.voices[i]
		if s.live {
			s.keydown = false
			s.live = false
			s.sustained = false
			s.keyPressedTimer = 0
			s.voice.OscSync()
		}
	}
	a.sustain = false
}

// NotesOff marks every live voice as released without resetting its
// phase, used when switching poly/mono mode.
func (a *Allocator) NotesOff() {
	for i := range a.voices {
		s := &a.voices[i]
		if s.live {
			s.keydown = false
			s.live = false
		}
	}
}

// ReapSilentVoices is the polyphony audit: for each live voice whose
// carrier operators have all decayed to or below the silence
// threshold and reached EG stage 4, free the slot so a later note-on
// can reuse it instead of stealing one that is still actually
// sounding. Intended to run once per rendered block, after every live
// voice's Compute for that block.
func (a *Allocator) ReapSilentVoices() {
	for i := range a.voices {
		s := &a.voices[i]
		if s.live && s.voice.Silent() {
			s.live = false
			s.sustained = false
			s.keydown = false
			s.keyPressedTimer = 0
		}
	}
}

// SetResolution switches every voice in the pool (live or idle) to the
// given sine-lookup resolution flavor.
func (a *Allocator) SetResolution(r dxtables.Resolution) {
	for i := range a.voices {
		a.voices[i].voice.SetResolution(r)
	}
}

// RefreshLiveVoices re-reads patch parameters into every live voice
// without retriggering its envelope or phase, for when a parameter
// edit arrives mid-note.
func (a *Allocator) RefreshLiveVoices(patch *dxvoice.Patch, ctrls *dxctrl.Controllers, srMultiplier int64) {
	for i := range a.voices {
		s := &a.voices[i]
		if s.live {
			s.voice.Update(patch, s.midiNote, s.velocity, s.porta, ctrls.PortamentoGlissando, srMultiplier)
		}
	}
}
