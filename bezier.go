package keyframe

// cubicBez is a cubic Bézier in the (u, value) plane of a single span.
type cubicBez struct {
	P0 Position
	P1 Position
	P2 Position
	P3 Position
}

// hermiteBez returns the Bézier form of the cubic Hermite segment with the
// given end values and span-space slopes. Its control points are evenly
// spaced in u, so u is also the curve parameter.
func hermiteBez(vlo, vhi, slo, shi float64) cubicBez {
	return cubicBez{
		Pos(0, vlo),
		Pos(1.0/3.0, vlo+slo/3.0),
		Pos(2.0/3.0, vhi-shi/3.0),
		Pos(1, vhi),
	}
}

func (c cubicBez) Eval(t float64) Position {
	mt := 1.0 - t
	a := c.P0.Mul(mt * mt * mt)
	b := c.P1.Mul(mt * mt * 3.0)
	cc := c.P2.Mul(mt * 3.0)
	d := c.P3
	return a.Add(b.Add(cc.Add(d.Mul(t)).Mul(t)).Mul(t))
}

// Split splits the cubic at t, using de Casteljau.
func (c cubicBez) Split(t float64) (cubicBez, cubicBez) {
	p01 := c.P0.Lerp(c.P1, t)
	p12 := c.P1.Lerp(c.P2, t)
	p23 := c.P2.Lerp(c.P3, t)
	p012 := p01.Lerp(p12, t)
	p123 := p12.Lerp(p23, t)
	pm := p012.Lerp(p123, t)
	return cubicBez{c.P0, p01, p012, pm},
		cubicBez{pm, p123, p23, c.P3}
}

// startSlope returns the derivative of the value with respect to the curve
// parameter at the start of the cubic.
func (c cubicBez) startSlope() float64 {
	return 3 * (c.P1.V - c.P0.V)
}

// endSlope returns the derivative of the value with respect to the curve
// parameter at the end of the cubic.
func (c cubicBez) endSlope() float64 {
	return 3 * (c.P3.V - c.P2.V)
}
