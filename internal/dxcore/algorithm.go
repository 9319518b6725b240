// Package dxcore implements the 6-operator FM routing core: the
// 32-algorithm bus table and the operator kernel that renders one
// 64-sample block of one operator's output with a linear gain ramp.
package dxcore

// Per-operator routing byte layout, one byte per operator per algorithm:
//
//	bits 0-1  output bus (0 = main output, 1 or 2 = auxiliary bus)
//	bit  2    add-to-bus: sum the operator's output into the bus instead
//	          of overwriting it
//	bits 4-5  input bus (0 = none/carrier, 1 or 2 = modulate from that bus)
//	bit  6    feedback-in: this operator reads its own delayed output
//	bit  7    feedback-out: combined with bit 6 to mark the self-feedback op
const (
	outBusAdd = 0x04
	fbIn      = 0x40
	fbOut     = 0x80
	fbMask    = fbIn | fbOut
)

// Algorithm is one row of the 32-algorithm routing table: one routing
// byte per operator.
type Algorithm struct {
	Ops [6]byte
}

// Algorithms is the DX7-compatible 32-algorithm static routing table,
// indexed 0..31 (algorithm 1..32 in patch/UI numbering).
var Algorithms = [32]Algorithm{
	{[6]byte{0xc1, 0x11, 0x11, 0x14, 0x01, 0x14}}, // 1
	{[6]byte{0x01, 0x11, 0x11, 0x14, 0xc1, 0x14}}, // 2
	{[6]byte{0xc1, 0x11, 0x14, 0x01, 0x11, 0x14}}, // 3
	{[6]byte{0xc1, 0x11, 0x94, 0x01, 0x11, 0x14}}, // 4
	{[6]byte{0xc1, 0x14, 0x01, 0x14, 0x01, 0x14}}, // 5
	{[6]byte{0xc1, 0x94, 0x01, 0x14, 0x01, 0x14}}, // 6
	{[6]byte{0xc1, 0x11, 0x05, 0x14, 0x01, 0x14}}, // 7
	{[6]byte{0x01, 0x11, 0xc5, 0x14, 0x01, 0x14}}, // 8
	{[6]byte{0x01, 0x11, 0x05, 0x14, 0xc1, 0x14}}, // 9
	{[6]byte{0x01, 0x05, 0x14, 0xc1, 0x11, 0x14}}, // 10
	{[6]byte{0xc1, 0x05, 0x14, 0x01, 0x11, 0x14}}, // 11
	{[6]byte{0x01, 0x05, 0x05, 0x14, 0xc1, 0x14}}, // 12
	{[6]byte{0xc1, 0x05, 0x05, 0x14, 0x01, 0x14}}, // 13
	{[6]byte{0xc1, 0x05, 0x11, 0x14, 0x01, 0x14}}, // 14
	{[6]byte{0x01, 0x05, 0x11, 0x14, 0xc1, 0x14}}, // 15
	{[6]byte{0xc1, 0x11, 0x02, 0x25, 0x05, 0x14}}, // 16
	{[6]byte{0x01, 0x11, 0x02, 0x25, 0xc5, 0x14}}, // 17
	{[6]byte{0x01, 0x11, 0x11, 0xc5, 0x05, 0x14}}, // 18
	{[6]byte{0xc1, 0x14, 0x14, 0x01, 0x11, 0x14}}, // 19
	{[6]byte{0x01, 0x05, 0x14, 0xc1, 0x14, 0x14}}, // 20
	{[6]byte{0x01, 0x14, 0x14, 0xc1, 0x14, 0x14}}, // 21
	{[6]byte{0xc1, 0x14, 0x14, 0x14, 0x01, 0x14}}, // 22
	{[6]byte{0xc1, 0x14, 0x14, 0x01, 0x14, 0x04}}, // 23
	{[6]byte{0xc1, 0x14, 0x14, 0x14, 0x04, 0x04}}, // 24
	{[6]byte{0xc1, 0x14, 0x14, 0x04, 0x04, 0x04}}, // 25
	{[6]byte{0xc1, 0x05, 0x14, 0x01, 0x14, 0x04}}, // 26
	{[6]byte{0x01, 0x05, 0x14, 0xc1, 0x14, 0x04}}, // 27
	{[6]byte{0x04, 0xc1, 0x11, 0x14, 0x01, 0x14}}, // 28
	{[6]byte{0xc1, 0x14, 0x01, 0x14, 0x04, 0x04}}, // 29
	{[6]byte{0x04, 0xc1, 0x11, 0x14, 0x04, 0x04}}, // 30
	{[6]byte{0xc1, 0x14, 0x04, 0x04, 0x04, 0x04}}, // 31
	{[6]byte{0xc4, 0x04, 0x04, 0x04, 0x04, 0x04}}, // 32
}

// CarrierMask returns a 6-bit mask of operators that write directly to
// the main output (i.e. are carriers) for the given algorithm index
// (0..31).
func CarrierMask(algorithm int) uint8 {
	var mask uint8
	alg := Algorithms[algorithm]
	for i, flags := range alg.Ops {
		if flags&(outBusAdd|3) == outBusAdd {
			mask |= 1 << uint(i)
		}
	}
	return mask & 0x3f
}
