// Package dxsysex implements the bijective codec between the 155-byte
// unpacked voice patch and the 128-byte packed DX7 SysEx voice format,
// plus framing/checksum validation for a full single-voice dump
// message.
package dxsysex

import (
	"errors"

	"github.com/cbegin/dx7fm-go/internal/dxvoice"
)

// ErrBadPatchSize is returned when a SysEx message's framing or
// declared byte count disagrees with the single-voice dump contract.
var ErrBadPatchSize = errors.New("dxsysex: bad patch size or framing")

// ErrBadChecksum is returned when a SysEx dump's 7-bit checksum byte
// does not match the sum of its packed data bytes.
var ErrBadChecksum = errors.New("dxsysex: checksum mismatch")

const (
	sysexStart    = 0xF0
	sysexEnd      = 0xF7
	yamahaID      = 0x43
	substatusOne  = 0x00 // single-voice dump format number
	byteCountHi   = 0x01
	byteCountLo   = 0x1B // 155 encoded as two 7-bit digits, a DX7 quirk:
	// the field names the unpacked voice's logical size even though
	// only the 128-byte packed form is actually transmitted.
	headerLen  = 6
	packedLen  = 128
	trailerLen = 2 // checksum byte + F7
	dumpLen    = headerLen + packedLen + trailerLen
)

// Pack converts an unpacked 155-byte voice into its 128-byte packed
// SysEx representation.
func Pack(p *dxvoice.Patch) [128]byte {
	var out [128]byte
	for op := 0; op < 6; op++ {
		u := p.Op(op)
		o := out[op*17 : op*17+17]
		copy(o[0:4], u[0:4])
		copy(o[4:8], u[4:8])
		o[8] = u[8]
		o[9] = u[9]
		o[10] = u[10]
		o[11] = ((u[12] & 0x03) << 2) | (u[11] & 0x03)
		o[12] = ((u[20] & 0x0f) << 3) | (u[13] & 0x07)
		o[13] = ((u[15] & 0x07) << 2) | (u[14] & 0x03)
		o[14] = u[16]
		o[15] = ((u[18] & 0x1f) << 1) | (u[17] & 0x01)
		o[16] = u[19]
	}

	g := p.Global()
	copy(out[102:106], g[0:4])
	copy(out[106:110], g[4:8])
	out[110] = g[8] & 0x1f
	out[111] = ((g[10] & 0x01) << 3) | (g[9] & 0x07)
	copy(out[112:116], g[11:15])
	out[116] = ((g[17] & 0x07) << 4) | ((g[16] & 0x07) << 1) | (g[15] & 0x01)
	out[117] = g[18]
	copy(out[118:128], g[19:29])
	return out
}

// Unpack converts a 128-byte packed SysEx voice into a fresh unpacked
// 155-byte patch.
func Unpack(packed [128]byte) *dxvoice.Patch {
	var p dxvoice.Patch
	for op := 0; op < 6; op++ {
		o := packed[op*17 : op*17+17]
		u := p.Op(op)
		copy(u[0:4], o[0:4])
		copy(u[4:8], o[4:8])
		u[8] = o[8]
		u[9] = o[9]
		u[10] = o[10]
		u[11] = o[11] & 0x03
		u[12] = (o[11] >> 2) & 0x03
		u[13] = o[12] & 0x07
		u[20] = (o[12] >> 3) & 0x0f
		u[14] = o[13] & 0x03
		u[15] = (o[13] >> 2) & 0x07
		u[16] = o[14]
		u[17] = o[15] & 0x01
		u[18] = (o[15] >> 1) & 0x1f
		u[19] = o[16]
	}

	g := p.Global()
	copy(g[0:4], packed[102:106])
	copy(g[4:8], packed[106:110])
	g[8] = packed[110] & 0x1f
	g[9] = packed[111] & 0x07
	g[10] = (packed[111] >> 3) & 0x01
	copy(g[11:15], packed[112:116])
	g[15] = packed[116] & 0x01
	g[16] = (packed[116] >> 1) & 0x07
	g[17] = (packed[116] >> 4) & 0x07
	g[18] = packed[117]
	copy(g[19:29], packed[118:128])
	return &p
}

// checksum computes the DX7's 7-bit checksum over a packed voice's
// 128 data bytes: the two's-complement (mod 128) of their sum.
func checksum(packed [128]byte) byte {
	var sum byte
	for _, b := range packed {
		sum += b
	}
	return (0x80 - (sum & 0x7f)) & 0x7f
}

// EncodeDump wraps a packed voice in a full single-voice SysEx
// message: header, 128 data bytes, checksum, and terminator.
func EncodeDump(p *dxvoice.Patch, channel uint8) []byte {
	packed := Pack(p)
	buf := make([]byte, 0, dumpLen)
	buf = append(buf, sysexStart, yamahaID, (substatusOne<<4)|(channel&0x0f), 0x00, byteCountHi, byteCountLo)
	buf = append(buf, packed[:]...)
	buf = append(buf, checksum(packed))
	buf = append(buf, sysexEnd)
	return buf
}

const (
	paramChangeLen  = 7
	paramChangeSub  = 0x01 // substatus nibble 1 = parameter change
	paramGroupVoice = 0x00
)

// ParameterChange is one decoded simplified parameter-change message:
// an offset into the 155-byte unpacked patch and the raw 0..99 (or
// 0..127 for some fields) value to store there.
type ParameterChange struct {
	Channel uint8
	Offset  int
	Value   byte
}

// DecodeParameterChange validates and decodes a single DX7 parameter-
// change message (`F0 43 1n gg pp dd F7`, 7 bytes): substatus nibble 1
// identifies it as a parameter change, gg selects the voice parameter
// group (only group 0, the 155-byte voice block, is recognized here),
// pp is the 0..154 byte offset, dd is the new value.
func DecodeParameterChange(data []byte) (*ParameterChange, error) {
	if len(data) != paramChangeLen {
		return nil, ErrBadPatchSize
	}
	if data[0] != sysexStart || data[len(data)-1] != sysexEnd {
		return nil, ErrBadPatchSize
	}
	if data[1] != yamahaID {
		return nil, ErrBadPatchSize
	}
	sub := data[2] >> 4
	channel := data[2] & 0x0f
	if sub != paramChangeSub {
		return nil, ErrBadPatchSize
	}
	group := data[3]
	if group != paramGroupVoice {
		return nil, ErrBadPatchSize
	}
	offset := int(data[4])
	if offset >= 155 {
		return nil, ErrBadPatchSize
	}
	return &ParameterChange{Channel: channel, Offset: offset, Value: data[5]}, nil
}

// Apply stores a decoded parameter change's value at its target byte
// offset in p. Every numeric parameter clamps to 0..99, same as the
// patch-wide contract every other field in this codec honors; the
// 10-byte ASCII name field (offsets dxvoice.NameOffset..+NameLen) is
// exempt; a raw MIDI data byte (0..127) is stored there unclamped.
func (pc *ParameterChange) Apply(p *dxvoice.Patch) {
	if pc.Offset >= dxvoice.NameOffset && pc.Offset < dxvoice.NameOffset+dxvoice.NameLen {
		p[pc.Offset] = pc.Value
		return
	}
	v := pc.Value
	if v > 99 {
		v = 99
	}
	p[pc.Offset] = v
}

// DecodeDump validates and unpacks a single-voice SysEx dump message,
// rejecting bad framing/length (ErrBadPatchSize) or a mismatched
// checksum (ErrBadChecksum) without mutating any existing patch.
func DecodeDump(data []byte) (*dxvoice.Patch, error) {
	if len(data) != dumpLen {
		return nil, ErrBadPatchSize
	}
	if data[0] != sysexStart || data[len(data)-1] != sysexEnd {
		return nil, ErrBadPatchSize
	}
	if data[1] != yamahaID {
		return nil, ErrBadPatchSize
	}
	if data[4] != byteCountHi || data[5] != byteCountLo {
		return nil, ErrBadPatchSize
	}

	var packed [128]byte
	copy(packed[:], data[headerLen:headerLen+packedLen])
	got := data[headerLen+packedLen]
	if want := checksum(packed); got != want {
		return nil, ErrBadChecksum
	}
	return Unpack(packed), nil
}
