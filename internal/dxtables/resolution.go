package dxtables

// Resolution selects among the alternate sine-table renderings the
// engine's resolution knob switches between. All three share the same
// EG/routing implementation; only the operator kernel's sine source
// changes.
type Resolution int

const (
	ResolutionModern Resolution = iota
	ResolutionMarkI
	ResolutionOPL
)

// Clamp pins r to a valid Resolution, defaulting out-of-range values
// to ResolutionModern.
func (r Resolution) Clamp() Resolution {
	if r < ResolutionModern || r > ResolutionOPL {
		return ResolutionModern
	}
	return r
}

// SinFor returns the sine-lookup function for the given resolution
// flavor: Modern is the interpolated Q24 table, MarkI is a
// nearest-sample lookup, OPL quantizes the result to a coarse
// log-amplitude step.
func SinFor(r Resolution) func(int32) int32 {
	switch r.Clamp() {
	case ResolutionMarkI:
		return Sin.LookupNearest
	case ResolutionOPL:
		return Sin.LookupOPL
	default:
		return Sin.Lookup
	}
}
