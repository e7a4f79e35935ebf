// Package fixed implements the Q8 fixed-point number used for playback speed,
// read-head position and interpolation fractions.
package fixed

import (
	"fmt"
	"math"
)

const (
	// FracBits is the number of fractional bits.
	FracBits = 8
	// Scale is the raw value of 1.0.
	Scale = 1 << FracBits

	scaleF = float64(Scale)
)

// Point is a signed fixed-point value with FracBits fractional bits.
// It is a plain value type; copy it freely.
type Point struct {
	v int32
}

var (
	Zero  = Point{}
	Half  = Point{Scale / 2}
	One   = Point{Scale}
	Two   = Point{2 * Scale}
	Three = Point{3 * Scale}
)

// FromRaw wraps a raw Q8 value.
func FromRaw(raw int32) Point {
	return Point{raw}
}

// FromInt converts an integer.
func FromInt(i int) Point {
	return Point{int32(i) << FracBits}
}

// FromInt16 converts a PCM sample.
func FromInt16(i int16) Point {
	return Point{int32(i) << FracBits}
}

// FromFloat converts a real value to the nearest step, halves rounding up.
func FromFloat(f float64) Point {
	return Point{int32(math.Floor(f*scaleF + 0.5))}
}

// Raw returns the underlying Q8 value.
func (p Point) Raw() int32 {
	return p.v
}

// Int returns the integer part. Negative values round toward negative
// infinity, as an arithmetic shift does.
func (p Point) Int() int {
	return int(p.v >> FracBits)
}

// Int16 returns the integer part narrowed to a PCM sample.
func (p Point) Int16() int16 {
	return int16(p.v >> FracBits)
}

// Frac returns p minus its integer part; always in [0, 1).
func (p Point) Frac() Point {
	return Point{p.v & (Scale - 1)}
}

// Float converts to a real value.
func (p Point) Float() float64 {
	return float64(p.v) / scaleF
}

func (p Point) Add(q Point) Point {
	return Point{p.v + q.v}
}

func (p Point) Sub(q Point) Point {
	return Point{p.v - q.v}
}

// SubInt subtracts an integer.
func (p Point) SubInt(i int) Point {
	return Point{p.v - int32(i)<<FracBits}
}

// AddAssign adds q in place.
func (p *Point) AddAssign(q Point) {
	p.v += q.v
}

// Mul multiplies through a 64-bit intermediate. The product of the
// magnitudes is shifted and the sign applied afterwards, so the result
// truncates toward zero for every sign combination.
func (p Point) Mul(q Point) Point {
	a, b := int64(p.v), int64(q.v)
	neg := false
	if a < 0 {
		a = -a
		neg = !neg
	}
	if b < 0 {
		b = -b
		neg = !neg
	}
	r := (a * b) >> FracBits
	if neg {
		r = -r
	}
	return Point{int32(r)}
}

// Div divides through a 64-bit intermediate.
// Dividing by Zero panics; callers must rule it out by construction.
func (p Point) Div(q Point) Point {
	return Point{int32((int64(p.v) << FracBits) / int64(q.v))}
}

// Neg returns -p.
func (p Point) Neg() Point {
	return Point{-p.v}
}

// Cmp returns -1, 0 or +1.
func (p Point) Cmp(q Point) int {
	switch {
	case p.v < q.v:
		return -1
	case p.v > q.v:
		return 1
	}
	return 0
}

func (p Point) Equal(q Point) bool     { return p.v == q.v }
func (p Point) Less(q Point) bool      { return p.v < q.v }
func (p Point) LessEq(q Point) bool    { return p.v <= q.v }
func (p Point) Greater(q Point) bool   { return p.v > q.v }
func (p Point) GreaterEq(q Point) bool { return p.v >= q.v }

func (p Point) String() string {
	return fmt.Sprintf("%.4f", p.Float())
}

// Lerp interpolates between a and b by t.
func Lerp(a, b, t Point) Point {
	return a.Add(b.Sub(a).Mul(t))
}

// Clamp limits p to [lo, hi].
func Clamp(p, lo, hi Point) Point {
	if p.v < lo.v {
		return lo
	}
	if p.v > hi.v {
		return hi
	}
	return p
}
