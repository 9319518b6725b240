package dxctrl

// SetWheelRange, SetWheelTarget, and SetWheelMode configure the
// mod-wheel controller source and recompute the derived modulation
// scalars, mirroring the original engine's dedicated per-controller
// setters (setMWController in spirit) rather than one struct-literal
// assignment.
func (c *Controllers) SetWheelRange(r uint8) {
	c.Wheel.SetRange(r)
	c.Refresh()
}

func (c *Controllers) SetWheelTarget(t uint8) {
	c.Wheel.SetTarget(t)
	c.Refresh()
}

func (c *Controllers) SetWheelMode(m uint8) {
	c.Wheel.SetMode(m)
	c.Refresh()
}

// SetFootRange, SetFootTarget, and SetFootMode configure the foot
// controller source.
func (c *Controllers) SetFootRange(r uint8) {
	c.Foot.SetRange(r)
	c.Refresh()
}

func (c *Controllers) SetFootTarget(t uint8) {
	c.Foot.SetTarget(t)
	c.Refresh()
}

func (c *Controllers) SetFootMode(m uint8) {
	c.Foot.SetMode(m)
	c.Refresh()
}

// SetBreathRange, SetBreathTarget, and SetBreathMode configure the
// breath controller source.
func (c *Controllers) SetBreathRange(r uint8) {
	c.Breath.SetRange(r)
	c.Refresh()
}

func (c *Controllers) SetBreathTarget(t uint8) {
	c.Breath.SetTarget(t)
	c.Refresh()
}

func (c *Controllers) SetBreathMode(m uint8) {
	c.Breath.SetMode(m)
	c.Refresh()
}

// SetAftertouchRange, SetAftertouchTarget, and SetAftertouchMode
// configure the channel-aftertouch controller source.
func (c *Controllers) SetAftertouchRange(r uint8) {
	c.At.SetRange(r)
	c.Refresh()
}

func (c *Controllers) SetAftertouchTarget(t uint8) {
	c.At.SetTarget(t)
	c.Refresh()
}

func (c *Controllers) SetAftertouchMode(m uint8) {
	c.At.SetMode(m)
	c.Refresh()
}

// SetModWheel, SetFoot, SetBreath, and SetAftertouch store the raw
// incoming CC/aftertouch value (0..127) for each continuous source
// and recompute the derived modulation scalars.
func (c *Controllers) SetModWheel(v uint8) {
	c.Wheel.SetValue(v)
	c.Refresh()
}

func (c *Controllers) SetFoot(v uint8) {
	c.Foot.SetValue(v)
	c.Refresh()
}

func (c *Controllers) SetBreath(v uint8) {
	c.Breath.SetValue(v)
	c.Refresh()
}

func (c *Controllers) SetAftertouch(v uint8) {
	c.At.SetValue(v)
	c.Refresh()
}
