package dxsysex

import (
	"testing"

	"github.com/cbegin/dx7fm-go/internal/dxvoice"
	"pgregory.net/rapid"
)

// genPatch builds a patch with every field drawn from its legal
// packed-field range, so Pack never has to clamp (round-tripping
// through pack/unpack should then be lossless).
func genPatch(t *rapid.T) *dxvoice.Patch {
	var p dxvoice.Patch
	for op := 0; op < 6; op++ {
		u := p.Op(op)
		for i := 0; i < 8; i++ {
			u[i] = byte(rapid.IntRange(0, 99).Draw(t, "egByte"))
		}
		u[8] = byte(rapid.IntRange(0, 99).Draw(t, "breakpoint"))
		u[9] = byte(rapid.IntRange(0, 99).Draw(t, "leftDepth"))
		u[10] = byte(rapid.IntRange(0, 99).Draw(t, "rightDepth"))
		u[11] = byte(rapid.IntRange(0, 3).Draw(t, "leftCurve"))
		u[12] = byte(rapid.IntRange(0, 3).Draw(t, "rightCurve"))
		u[13] = byte(rapid.IntRange(0, 7).Draw(t, "rateScaling"))
		u[14] = byte(rapid.IntRange(0, 3).Draw(t, "ampModSens"))
		u[15] = byte(rapid.IntRange(0, 7).Draw(t, "velocitySens"))
		u[16] = byte(rapid.IntRange(0, 99).Draw(t, "outputLevel"))
		u[17] = byte(rapid.IntRange(0, 1).Draw(t, "mode"))
		u[18] = byte(rapid.IntRange(0, 31).Draw(t, "freqCoarse"))
		u[19] = byte(rapid.IntRange(0, 99).Draw(t, "freqFine"))
		u[20] = byte(rapid.IntRange(0, 14).Draw(t, "detune"))
	}
	g := p.Global()
	for i := 0; i < 8; i++ {
		g[i] = byte(rapid.IntRange(0, 99).Draw(t, "pitchEGByte"))
	}
	g[8] = byte(rapid.IntRange(0, 31).Draw(t, "algorithm"))
	g[9] = byte(rapid.IntRange(0, 7).Draw(t, "feedback"))
	g[10] = byte(rapid.IntRange(0, 1).Draw(t, "oscKeySync"))
	for i := 11; i < 15; i++ {
		g[i] = byte(rapid.IntRange(0, 99).Draw(t, "lfoByte"))
	}
	g[15] = byte(rapid.IntRange(0, 1).Draw(t, "lfoSync"))
	g[16] = byte(rapid.IntRange(0, 5).Draw(t, "lfoWaveform"))
	g[17] = byte(rapid.IntRange(0, 7).Draw(t, "pitchModSens"))
	g[18] = byte(rapid.IntRange(0, 48).Draw(t, "transpose"))
	for i := 19; i < 29; i++ {
		g[i] = byte(rapid.IntRange(32, 126).Draw(t, "nameByte"))
	}
	return &p
}

func TestPackUnpackRoundTrips(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := genPatch(rt)
		packed := Pack(p)
		got := Unpack(packed)
		if *got != *p {
			t.Fatalf("round trip mismatch:\n  in  = %v\n  out = %v", *p, *got)
		}
	})
}

func TestEncodeDecodeDumpRoundTrips(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := genPatch(rt)
		channel := byte(rapid.IntRange(0, 15).Draw(rt, "channel"))
		dump := EncodeDump(p, channel)
		got, err := DecodeDump(dump)
		if err != nil {
			t.Fatalf("DecodeDump failed on a message this package just encoded: %v", err)
		}
		if *got != *p {
			t.Fatalf("dump round trip mismatch:\n  in  = %v\n  out = %v", *p, *got)
		}
	})
}

func TestDecodeDumpRejectsBadLength(t *testing.T) {
	_, err := DecodeDump([]byte{0xF0, 0x43, 0x00, 0x00, 0x01, 0x1B, 0xF7})
	if err != ErrBadPatchSize {
		t.Errorf("expected ErrBadPatchSize for a truncated message, got %v", err)
	}
}

func TestDecodeDumpRejectsBadChecksum(t *testing.T) {
	var p dxvoice.Patch
	dump := EncodeDump(&p, 0)
	dump[len(dump)-2] ^= 0x7f // corrupt the checksum byte
	_, err := DecodeDump(dump)
	if err != ErrBadChecksum {
		t.Errorf("expected ErrBadChecksum for a corrupted checksum byte, got %v", err)
	}
}

func TestDecodeDumpRejectsBadFraming(t *testing.T) {
	var p dxvoice.Patch
	dump := EncodeDump(&p, 0)
	dump[0] = 0x00 // not a SysEx start byte
	_, err := DecodeDump(dump)
	if err != ErrBadPatchSize {
		t.Errorf("expected ErrBadPatchSize for bad start byte, got %v", err)
	}
}
