// Package dxaudio adapts an engine's block-rendered float32 stream
// into an oto/v3 playback stream: a StreamReader turning Process calls
// into the byte stream oto expects, and a Player wrapping the shared
// oto.Context.
package dxaudio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

// SampleSource produces interleaved float32 samples on demand.
type SampleSource interface {
	Process(dst []float32)
}

// FinishingSource is a SampleSource that can signal when playback has
// ended. When Finished returns true, the stream returns io.EOF on the
// next Read.
type FinishingSource interface {
	SampleSource
	Finished() bool
}

// StreamReader turns a SampleSource into an io.Reader of little-endian
// float32 PCM bytes, the format oto.FormatFloat32LE expects.
type StreamReader struct {
	mu         sync.Mutex
	source     SampleSource
	buf        []float32
	channels   int
	framesRead atomic.Int64
}

// NewStreamReader wraps source as an io.Reader producing channels-wide
// interleaved frames.
func NewStreamReader(source SampleSource, channels int) *StreamReader {
	if channels < 1 {
		channels = 1
	}
	return &StreamReader{source: source, channels: channels}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	const bytesPerSample = 4
	bytesPerFrame := bytesPerSample * r.channels
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	need := frames * r.channels
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i := 0; i < need; i++ {
		u := math.Float32bits(r.buf[i])
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], u)
	}
	r.framesRead.Add(int64(frames))
	n := frames * bytesPerFrame
	if fs, ok := r.source.(FinishingSource); ok && fs.Finished() {
		return n, io.EOF
	}
	return n, nil
}

func (r *StreamReader) Close() error { return nil }

// FramesRead returns the total number of frames handed to the audio
// backend so far.
func (r *StreamReader) FramesRead() int64 { return r.framesRead.Load() }

// Player wraps an oto.Player bound to a StreamReader.
type Player struct {
	player     oto.Player
	reader     *StreamReader
	sampleRate int
}

var (
	contextOnce  sync.Once
	context      *oto.Context
	contextErr   error
	contextRate  int
	contextChans int
)

func sharedContext(sampleRate, channels int) (*oto.Context, error) {
	contextOnce.Do(func() {
		contextRate = sampleRate
		contextChans = channels
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			contextErr = err
			return
		}
		<-ready
		context = ctx
	})
	if contextErr != nil {
		return nil, contextErr
	}
	if contextRate != sampleRate || contextChans != channels {
		return nil, fmt.Errorf("dxaudio: audio context already initialized at %d Hz/%d ch (requested %d Hz/%d ch)", contextRate, contextChans, sampleRate, channels)
	}
	return context, nil
}

// NewPlayer creates a Player pulling interleaved float32 samples from
// source, opening (or reusing) the process-wide oto context at
// sampleRate/channels.
func NewPlayer(sampleRate, channels int, source SampleSource) (*Player, error) {
	ctx, err := sharedContext(sampleRate, channels)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source, channels)
	return &Player{
		player:     ctx.NewPlayer(reader),
		reader:     reader,
		sampleRate: sampleRate,
	}, nil
}

func (p *Player) Play()            { p.player.Play() }
func (p *Player) Pause()           { p.player.Pause() }
func (p *Player) IsPlaying() bool  { return p.player.IsPlaying() }

// Position returns the playback position implied by the number of
// frames handed to the backend so far; oto buffers internally, so
// this is an upper bound on what the listener has actually heard.
func (p *Player) Position() time.Duration {
	frames := p.reader.FramesRead()
	return time.Duration(frames) * time.Second / time.Duration(p.sampleRate)
}

func (p *Player) Stop() error {
	p.player.Pause()
	err := p.player.Close()
	_ = p.reader.Close()
	return err
}
