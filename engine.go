// Package dx7fm implements a DX7-compatible six-operator FM synthesis
// engine: 32 algorithms, per-operator envelopes and keyboard scaling,
// a global LFO, portamento, a continuous-controller model, polyphonic
// voice allocation with stealing, an Obxd-derived output low-pass, and
// a SysEx codec for the classic 155-byte voice format.
package dx7fm

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/cbegin/dx7fm-go/internal/dxalloc"
	"github.com/cbegin/dx7fm-go/internal/dxctrl"
	"github.com/cbegin/dx7fm-go/internal/dxenv"
	"github.com/cbegin/dx7fm-go/internal/dxfilter"
	"github.com/cbegin/dx7fm-go/internal/dxlfo"
	"github.com/cbegin/dx7fm-go/internal/dxpitch"
	"github.com/cbegin/dx7fm-go/internal/dxporta"
	"github.com/cbegin/dx7fm-go/internal/dxsysex"
	"github.com/cbegin/dx7fm-go/internal/dxtables"
	"github.com/cbegin/dx7fm-go/internal/dxvoice"
)

// EngineType selects among the sine-lookup resolution flavors the
// operator kernel renders with.
type EngineType int

const (
	EngineTypeModern EngineType = EngineType(dxtables.ResolutionModern)
	EngineTypeMarkI  EngineType = EngineType(dxtables.ResolutionMarkI)
	EngineTypeOPL    EngineType = EngineType(dxtables.ResolutionOPL)
)

// ErrInvalidSampleRate is returned by NewEngine when sampleRate <= 0.
var ErrInvalidSampleRate = errors.New("dx7fm: sampleRate must be positive")

const blockSize = 64 // dxtables.N, restated here to avoid a public re-export

// EngineOption configures an Engine at construction time.
type EngineOption func(*engineConfig)

type engineConfig struct {
	maxNotes        int
	channels        int
	monoMode        bool
	refreshMode     bool
	masterTune      int8
	gain            float64
	filterCutoff    float64
	filterResonance float64
	engineType      EngineType
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		maxNotes:        16,
		channels:        1,
		gain:            1.0,
		filterCutoff:    1.0,
		filterResonance: 0.0,
		engineType:      EngineTypeModern,
	}
}

// WithMaxNotes sets the initial polyphony cap, 0..32.
func WithMaxNotes(n int) EngineOption {
	return func(cfg *engineConfig) { cfg.maxNotes = clampInt(n, 0, 32) }
}

// WithChannels sets the output channel count (1 = mono, 2 = stereo
// duplicated from the mono mix).
func WithChannels(channels int) EngineOption {
	return func(cfg *engineConfig) {
		if channels < 1 {
			channels = 1
		}
		cfg.channels = channels
	}
}

// WithMonoMode starts the engine in monophonic last-note-priority mode.
func WithMonoMode(enabled bool) EngineOption {
	return func(cfg *engineConfig) { cfg.monoMode = enabled }
}

// WithRefreshMode enables in-place retrigger of sustained notes struck
// again instead of stealing a new voice.
func WithRefreshMode(enabled bool) EngineOption {
	return func(cfg *engineConfig) { cfg.refreshMode = enabled }
}

// WithMasterTune sets the initial fine-tune offset in cents/100,
// -99..99.
func WithMasterTune(cents int8) EngineOption {
	return func(cfg *engineConfig) { cfg.masterTune = cents }
}

// WithGain sets the initial output trim, applied after the DC blocker
// and before the optional low-pass.
func WithGain(gain float64) EngineOption {
	return func(cfg *engineConfig) { cfg.gain = gain }
}

// WithFilterCutoff sets the initial low-pass cutoff control, 0..1 (1 =
// fully open / bypassed).
func WithFilterCutoff(cutoff float64) EngineOption {
	return func(cfg *engineConfig) { cfg.filterCutoff = cutoff }
}

// WithFilterResonance sets the initial low-pass resonance control,
// 0..1.
func WithFilterResonance(reso float64) EngineOption {
	return func(cfg *engineConfig) { cfg.filterResonance = reso }
}

// WithEngineType sets the initial sine-lookup resolution flavor.
func WithEngineType(t EngineType) EngineOption {
	return func(cfg *engineConfig) { cfg.engineType = t }
}

// event is a deferred engine mutation, enqueued by a controller/note
// thread and applied by Process at the start of the next block, per
// spec's single-producer/single-consumer event-queue model.
type event func(e *Engine)

// Engine is one DX7-compatible polyphonic FM synthesizer instance,
// fixed at construction to one sample rate and channel count.
type Engine struct {
	id uuid.UUID

	sampleRate int
	channels   int

	eventsMu sync.Mutex
	events   []event

	alloc      *dxalloc.Allocator
	ctrls      *dxctrl.Controllers
	lfo        dxlfo.LFO
	freqLut    *dxtables.FreqLut
	portaRates *dxporta.Rates
	filter     *dxfilter.Filter

	// patch is an atomic pointer so Dump (callable from any goroutine)
	// can read the current patch without contending with the audio
	// thread's event queue.
	patch atomic.Pointer[dxvoice.Patch]

	srMultiplier int64
	pitchUnit    int32
	lfoUnit      uint32

	resolution dxtables.Resolution

	// gainBits/cutoffBits/resonanceBits hold math.Float64bits of the
	// corresponding Filter field; Process applies them to filter once
	// per block without locking the event queue, matching the
	// teacher's atomic-float-poll idiom for UI-adjustable knobs that
	// don't need to participate in note-event ordering.
	gainBits      atomic.Uint64
	cutoffBits    atomic.Uint64
	resonanceBits atomic.Uint64

	xrunCount     atomic.Uint64
	renderTimeMax atomic.Int64 // nanoseconds

	// block-granular render state: a fixed N-sample accumulation
	// scratch plus a carry-over buffer bridging the 64-frame render
	// granularity against an arbitrary caller buffer length.
	monoScratch []int32
	voiceScratch []int32
	blockOut    []float32
	carry       []float32
	refreshPending bool
}

// NewEngine constructs an Engine at the given sample rate (Hz),
// starting from the classic DX7 INIT VOICE patch.
func NewEngine(sampleRate int, opts ...EngineOption) (*Engine, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine{
		id:           uuid.New(),
		sampleRate:   sampleRate,
		channels:     cfg.channels,
		alloc:        dxalloc.NewAllocator(cfg.maxNotes),
		ctrls:        dxctrl.NewControllers(),
		freqLut:      dxtables.NewFreqLut(float64(sampleRate)),
		portaRates:   dxporta.NewRates(float64(sampleRate)),
		filter:       dxfilter.NewFilter(float64(sampleRate)),
		srMultiplier: dxenv.InitSampleRate(float64(sampleRate)),
		pitchUnit:    dxpitch.Unit(float64(sampleRate)),
		lfoUnit:      dxlfo.Unit(float64(sampleRate)),
		resolution:   dxtables.Resolution(cfg.engineType).Clamp(),
		monoScratch:  make([]int32, blockSize),
		voiceScratch: make([]int32, blockSize),
		blockOut:     make([]float32, blockSize),
	}
	e.patch.Store(dxvoice.DefaultPatch())
	e.alloc.SetMonoMode(cfg.monoMode)
	e.alloc.SetRefreshMode(cfg.refreshMode)
	e.alloc.SetResolution(e.resolution)
	e.ctrls.SetMasterTune(cfg.masterTune)
	e.lfo.Reset(e.lfoUnit, e.patch.Load().LFOParams())
	e.filter.SetGain(cfg.gain)
	e.filter.SetCutoff(cfg.filterCutoff)
	e.filter.SetResonance(cfg.filterResonance)
	e.storeGain(cfg.gain)
	e.storeCutoff(cfg.filterCutoff)
	e.storeResonance(cfg.filterResonance)
	return e, nil
}

// ID returns this engine instance's identifier, useful for correlating
// XRun/health accessor readings across multiple engine instances hosted
// in one process. It is not written into SYSEX dumps.
func (e *Engine) ID() uuid.UUID { return e.id }

// SampleRate returns the engine's fixed construction-time sample rate.
func (e *Engine) SampleRate() int { return e.sampleRate }

func (e *Engine) enqueue(ev event) {
	e.eventsMu.Lock()
	e.events = append(e.events, ev)
	e.eventsMu.Unlock()
}

func (e *Engine) drainEvents() {
	e.eventsMu.Lock()
	pending := e.events
	e.events = nil
	e.eventsMu.Unlock()
	for _, ev := range pending {
		ev(e)
	}
}

// NoteOn dispatches a MIDI-style note-on. channel is accepted for
// interface symmetry with noteOff/controlChange but this engine does
// not implement multitimbral per-channel routing; every channel plays
// the same current patch. velocity 0 is treated as note-off, matching
// standard MIDI running-status convention.
func (e *Engine) NoteOn(channel int, pitch, velocity int) {
	_ = channel
	e.enqueue(func(e *Engine) {
		e.alloc.NoteOn(pitch, velocity, e.patch.Load(), e.ctrls, &e.lfo, e.srMultiplier, e.pitchUnit)
	})
}

// NoteOff dispatches a MIDI-style note-off.
func (e *Engine) NoteOff(channel int, pitch int) {
	_ = channel
	e.enqueue(func(e *Engine) {
		e.alloc.NoteOff(pitch, e.patch.Load())
	})
}

// ControlChange dispatches a MIDI CC per spec §6's mapping: 1=mod
// wheel, 2=breath, 4=foot, 5=portamento-time, 64=sustain,
// 65=glissando on/off. CC 65 does not switch portamento itself, which
// is on whenever the CC 5 time is above 0. Unmapped controllers are
// ignored.
func (e *Engine) ControlChange(cc, value int) {
	v := uint8(clampInt(value, 0, 127))
	e.enqueue(func(e *Engine) {
		switch cc {
		case 1:
			e.ctrls.SetModWheel(v)
		case 2:
			e.ctrls.SetBreath(v)
		case 4:
			e.ctrls.SetFoot(v)
		case 5:
			// Portamento time; enablement derives from time>0 (see
			// dxctrl.Controllers.SetPortamentoMode), glissando unchanged.
			e.ctrls.SetPortamentoMode(0, b2u8(e.ctrls.PortamentoGlissando), v)
		case 64:
			e.alloc.SetSustain(v >= 64)
		case 65:
			// Portamento on/off toggles glissando (note-snapping glide)
			// rather than enablement, which this engine ties to time>0.
			e.ctrls.SetPortamentoMode(0, b2u8(v >= 64), e.ctrls.PortamentoTime)
		}
	})
}

// PitchBend dispatches a 14-bit pitch-bend value, -8192..8191.
func (e *Engine) PitchBend(value int) {
	v := int16(clampInt(value, -8192, 8191)) + 0x2000
	e.enqueue(func(e *Engine) {
		e.ctrls.SetPitchBend(v)
	})
}

// ChannelPressure dispatches a MIDI channel-aftertouch value, 0..127.
func (e *Engine) ChannelPressure(value int) {
	v := uint8(clampInt(value, 0, 127))
	e.enqueue(func(e *Engine) {
		e.ctrls.SetAftertouch(v)
	})
}

// Panic silences every voice immediately and clears sustain.
func (e *Engine) Panic() {
	e.enqueue(func(e *Engine) {
		e.alloc.Panic()
	})
}

// Sysex dispatches a raw SysEx message: a single-voice dump is
// decoded and installed via LoadVoiceParameters, a parameter-change
// message is applied via EditPatch, and any other framing returns an
// error without mutating engine state.
func (e *Engine) Sysex(data []byte) error {
	if pc, err := dxsysex.DecodeParameterChange(data); err == nil {
		e.EditPatch(pc.Apply)
		return nil
	}
	patch, err := dxsysex.DecodeDump(data)
	if err != nil {
		return err
	}
	return e.LoadVoiceParameters(*patch)
}

// Dump encodes the engine's current patch as a single-voice SysEx
// dump message on the given MIDI channel, 0..15. Safe to call from
// any goroutine: it reads the patch via an atomic pointer rather than
// joining the event queue.
func (e *Engine) Dump(channel uint8) []byte {
	return dxsysex.EncodeDump(e.patch.Load(), channel)
}

// LoadVoiceParameters replaces the current patch wholesale, panics
// (silences all voices), and marks every live voice for refresh on
// the next block, per spec §6's loadVoiceParameters contract.
func (e *Engine) LoadVoiceParameters(patch dxvoice.Patch) error {
	e.enqueue(func(e *Engine) {
		e.patch.Store(&patch)
		e.alloc.Panic()
		e.lfo.Reset(e.lfoUnit, patch.LFOParams())
		e.refreshPending = true
	})
	return nil
}

// EditPatch applies fn to a copy of the engine's current patch, then
// installs the edited copy and marks live voices for an in-place
// refresh (Voice.Update, not Voice.Init — no retrigger). Use this for
// the per-operator runtime editing API on dxvoice.Patch instead of a
// full LoadVoiceParameters round trip.
func (e *Engine) EditPatch(fn func(p *dxvoice.Patch)) {
	e.enqueue(func(e *Engine) {
		patch := *e.patch.Load()
		fn(&patch)
		e.patch.Store(&patch)
		e.refreshPending = true
	})
}

// SetMaxNotes resizes the voice pool, 0..32.
func (e *Engine) SetMaxNotes(n int) {
	n = clampInt(n, 0, 32)
	e.enqueue(func(e *Engine) {
		e.alloc.Resize(n)
	})
}

// SetMonoMode switches between polyphonic and last-note-priority
// monophonic operation.
func (e *Engine) SetMonoMode(enabled bool) {
	e.enqueue(func(e *Engine) {
		e.alloc.SetMonoMode(enabled)
	})
}

// SetRefreshMode enables or disables in-place retrigger of sustained
// notes struck again.
func (e *Engine) SetRefreshMode(enabled bool) {
	e.enqueue(func(e *Engine) {
		e.alloc.SetRefreshMode(enabled)
	})
}

// SetMasterTune sets the fine-tune offset in cents/100, -99..99.
func (e *Engine) SetMasterTune(cents int8) {
	e.enqueue(func(e *Engine) {
		e.ctrls.SetMasterTune(cents)
	})
}

// SetGain sets the output trim applied after the DC blocker.
func (e *Engine) SetGain(gain float64) {
	e.storeGain(gain)
}

// SetFilterCutoff sets the low-pass cutoff control, 0..1 (clamped by
// Filter.SetCutoff; 1 bypasses the low-pass entirely).
func (e *Engine) SetFilterCutoff(cutoff float64) {
	e.storeCutoff(cutoff)
}

// SetFilterResonance sets the low-pass resonance control, 0..1.
func (e *Engine) SetFilterResonance(reso float64) {
	e.storeResonance(reso)
}

// SetEngineType switches the sine-lookup resolution flavor used by
// every voice.
func (e *Engine) SetEngineType(t EngineType) {
	e.enqueue(func(e *Engine) {
		e.resolution = dxtables.Resolution(t).Clamp()
		e.alloc.SetResolution(e.resolution)
	})
}

func (e *Engine) storeGain(v float64) { e.gainBits.Store(math.Float64bits(v)) }
func (e *Engine) loadGain() float64   { return math.Float64frombits(e.gainBits.Load()) }

func (e *Engine) storeCutoff(v float64) { e.cutoffBits.Store(math.Float64bits(v)) }
func (e *Engine) loadCutoff() float64   { return math.Float64frombits(e.cutoffBits.Load()) }

func (e *Engine) storeResonance(v float64) { e.resonanceBits.Store(math.Float64bits(v)) }
func (e *Engine) loadResonance() float64   { return math.Float64frombits(e.resonanceBits.Load()) }

// XRunCount returns the number of Process calls, since construction,
// whose wall-clock time exceeded the duration of the audio they produced.
func (e *Engine) XRunCount() uint64 { return e.xrunCount.Load() }

// RenderTimeMax returns the high-water-mark wall-clock duration, in
// nanoseconds, spent inside a single Process call.
func (e *Engine) RenderTimeMax() int64 { return e.renderTimeMax.Load() }

// ResetRenderTimeMax clears the render-time high-water mark.
func (e *Engine) ResetRenderTimeMax() { e.renderTimeMax.Store(0) }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func b2u8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
