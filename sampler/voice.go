package sampler

import "go-sampler/fixed"

// minSpeed keeps the read head moving for degenerate speeds.
var minSpeed = fixed.FromRaw(1)

// Voice plays one borrowed sample buffer at a fixed-point speed.
// A Voice is not safe for concurrent use; the owner serialises Play/Stop
// against Next/Render.
type Voice struct {
	buf    []int16
	speed  fixed.Point
	head   fixed.Point
	gain   fixed.Point
	interp Interpolation
}

// NewVoice returns an idle voice using cubic interpolation.
func NewVoice() *Voice {
	return &Voice{speed: fixed.One, gain: fixed.One}
}

// Play starts buf from its first frame. The gain resets to unity.
func (v *Voice) Play(buf []int16, speed fixed.Point) {
	if len(buf) == 0 {
		v.Stop()
		return
	}
	if !speed.Greater(fixed.Zero) {
		speed = minSpeed
	}
	v.buf = buf
	v.speed = speed
	v.head = fixed.Zero
	v.gain = fixed.One
}

// Stop silences the voice immediately.
func (v *Voice) Stop() {
	v.buf = nil
	v.head = fixed.Zero
}

// Playing reports whether a buffer is attached.
func (v *Voice) Playing() bool {
	return v.buf != nil
}

func (v *Voice) SetGain(g fixed.Point)            { v.gain = g }
func (v *Voice) Gain() fixed.Point                { return v.gain }
func (v *Voice) Speed() fixed.Point               { return v.speed }
func (v *Voice) Head() fixed.Point                { return v.head }
func (v *Voice) SetInterpolation(m Interpolation) { v.interp = m }
func (v *Voice) Interpolation() Interpolation     { return v.interp }

// Next returns the sample under the read head and advances it.
// ok is false once the voice has nothing left to play.
func (v *Voice) Next() (s int16, ok bool) {
	if v.buf == nil {
		return 0, false
	}
	if v.head.Int() >= len(v.buf) {
		v.Stop()
		return 0, false
	}

	var p int16
	if v.interp == Linear {
		p = LinearAt(v.buf, v.head)
	} else {
		p = CubicAt(v.buf, v.head)
	}
	if !v.gain.Equal(fixed.One) {
		p = fixed.FromInt16(p).Mul(v.gain).Int16()
	}

	v.head.AddAssign(v.speed)
	if v.head.Int() >= len(v.buf) {
		v.Stop()
	}
	return p, true
}

// Render fills block, padding with silence after the sample ends, and
// returns the number of samples actually produced.
func (v *Voice) Render(block []int16) int {
	for i := range block {
		s, ok := v.Next()
		if !ok {
			clear(block[i:])
			return i
		}
		block[i] = s
	}
	return len(block)
}
