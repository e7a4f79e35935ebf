package sampler

import "go-sampler/fixed"

// Interpolation selects how a voice reconstructs samples between frames.
type Interpolation int

const (
	Cubic Interpolation = iota
	Linear
)

func (m Interpolation) String() string {
	if m == Linear {
		return "linear"
	}
	return "cubic"
}

// ParseInterpolation maps a config name to a mode; unknown names are cubic.
func ParseInterpolation(s string) Interpolation {
	if s == "linear" {
		return Linear
	}
	return Cubic
}

// The cubic blend parameter is squeezed into [1/3, 2/3] so the curve never
// reaches its end points between frames.
var (
	cubicLow  = fixed.FromFloat(0.33333)
	cubicHigh = fixed.FromFloat(0.66666)
)

// at returns buf[i] with i clamped to the buffer.
func at(buf []int16, i int) fixed.Point {
	if i < 0 {
		i = 0
	} else if i >= len(buf) {
		i = len(buf) - 1
	}
	return fixed.FromInt16(buf[i])
}

// CubicAt reads buf at a fractional position using the four frames
// buf[i-2..i+1]; positions outside the buffer repeat the edge frames.
// buf must not be empty.
func CubicAt(buf []int16, head fixed.Point) int16 {
	i := head.Int()
	frac := head.Frac()
	if frac.Equal(fixed.Zero) {
		return at(buf, i).Int16()
	}

	p0 := at(buf, i-2)
	p1 := at(buf, i-1)
	p2 := at(buf, i)
	p3 := at(buf, i+1)

	t := fixed.Lerp(cubicLow, cubicHigh, frac)
	return cubicBlend(p0, p1, p2, p3, t).Int16()
}

// cubicBlend evaluates (1-t)^3 p0 + 3(1-t)^2 t p1 + 3(1-t) t^2 p2 + t^3 p3,
// multiplying left to right so every product truncates the same way.
func cubicBlend(p0, p1, p2, p3, t fixed.Point) fixed.Point {
	u := fixed.One.Sub(t)
	a := u.Mul(u).Mul(u).Mul(p0)
	b := fixed.Three.Mul(u).Mul(u).Mul(t).Mul(p1)
	c := fixed.Three.Mul(u).Mul(t).Mul(t).Mul(p2)
	d := t.Mul(t).Mul(t).Mul(p3)
	return a.Add(b).Add(c).Add(d)
}

// LinearAt reads buf at a fractional position by blending a frame with its
// successor; the last frame has no successor and is returned as is.
// buf must not be empty.
func LinearAt(buf []int16, head fixed.Point) int16 {
	i := head.Int()
	frac := head.Frac()
	curr := at(buf, i)
	if frac.Equal(fixed.Zero) || i+1 >= len(buf) {
		return curr.Int16()
	}
	return fixed.Lerp(curr, at(buf, i+1), frac).Int16()
}
