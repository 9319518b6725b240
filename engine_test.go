package dx7fm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zeroCrossings counts positive-going zero crossings, one per cycle of
// a periodic signal.
func zeroCrossings(buf []float32) int {
	count := 0
	for i := 1; i < len(buf); i++ {
		if buf[i-1] < 0 && buf[i] >= 0 {
			count++
		}
	}
	return count
}

func TestInitVoiceA4ProducesExpectedFrequency(t *testing.T) {
	e, err := NewEngine(44100)
	require.NoError(t, err)

	e.NoteOn(0, 69, 100)
	buf := make([]float32, 44100)
	e.Process(buf)

	zc := zeroCrossings(buf)
	assert.GreaterOrEqual(t, zc, 430)
	assert.LessOrEqual(t, zc, 450)
}

func TestSilenceRendersAllZeroAfterSettling(t *testing.T) {
	e, err := NewEngine(44100)
	require.NoError(t, err)

	buf := make([]float32, 4096)
	e.Process(buf)
	for i, s := range buf[64:] {
		if s != 0 {
			t.Fatalf("sample %d non-zero with no notes playing: %v", i+64, s)
		}
	}
}

func TestNoteOnThenPanicSilencesEngine(t *testing.T) {
	e, err := NewEngine(44100)
	require.NoError(t, err)

	e.NoteOn(0, 60, 100)
	buf := make([]float32, 256)
	e.Process(buf)

	e.Panic()
	// Render several blocks of silence so the DC blocker's leaky
	// integrator state (left non-zero by the note just played) has
	// time to decay near zero; panic silences the voices immediately,
	// not the filter's settling tail.
	buf2 := make([]float32, 44100)
	e.Process(buf2)
	tail := buf2[len(buf2)-64:]
	for i, s := range tail {
		if s > 1e-4 || s < -1e-4 {
			t.Fatalf("tail sample %d = %v, expected near-silence well after panic", i, s)
		}
	}
}

func TestInvalidSampleRateRejected(t *testing.T) {
	_, err := NewEngine(0)
	assert.ErrorIs(t, err, ErrInvalidSampleRate)
	_, err = NewEngine(-1)
	assert.ErrorIs(t, err, ErrInvalidSampleRate)
}

func TestLoadVoiceParametersSilencesThenRetriggersCleanly(t *testing.T) {
	e, err := NewEngine(44100)
	require.NoError(t, err)

	e.NoteOn(0, 60, 100)
	buf := make([]float32, 128)
	e.Process(buf)

	require.NoError(t, e.LoadVoiceParameters(*e.patch.Load()))
	buf2 := make([]float32, 128)
	e.Process(buf2)

	e.NoteOn(0, 60, 100)
	buf3 := make([]float32, 4096)
	e.Process(buf3)
	nonZero := false
	for _, s := range buf3 {
		if s != 0 {
			nonZero = true
			break
		}
	}
	assert.True(t, nonZero, "expected audible output after reload + retrigger")
}

func TestChannelsDuplicatesMonoToStereo(t *testing.T) {
	e, err := NewEngine(44100, WithChannels(2))
	require.NoError(t, err)
	e.NoteOn(0, 60, 100)

	buf := make([]float32, 256) // 128 stereo frames
	e.Process(buf)
	for i := 0; i < len(buf); i += 2 {
		assert.Equal(t, buf[i], buf[i+1])
	}
}

func TestSysexRoundTripsDump(t *testing.T) {
	e, err := NewEngine(44100)
	require.NoError(t, err)

	dump := e.Dump(0)
	require.NoError(t, e.Sysex(dump))
	e.Process(make([]float32, 64)) // drain the queued LoadVoiceParameters event
	assert.Equal(t, dump, e.Dump(0))
}

func TestXRunCounterStartsAtZero(t *testing.T) {
	e, err := NewEngine(44100)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), e.XRunCount())
	assert.Equal(t, int64(0), e.RenderTimeMax())
}
