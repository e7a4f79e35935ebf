package sampler

import (
	"go-sampler/fixed"
)

// NumVoicesPerDrum is how many hits of one drum may overlap.
const NumVoicesPerDrum = 2

// Drum owns its voices and plays them through a PolyPlayer.
type Drum struct {
	Name     string
	Quantise bool // snap trigger pitches to the major scale

	voices [NumVoicesPerDrum]Voice
	poly   *PolyPlayer
}

// NewDrum builds a drum around sample with every voice registered.
func NewDrum(name string, sample *Sample) *Drum {
	d := &Drum{
		Name: name,
		poly: NewPolyPlayer(sample),
	}
	for i := range d.voices {
		d.voices[i] = *NewVoice()
		d.poly.AddVoice(&d.voices[i])
	}
	return d
}

// Trigger plays the drum at pitch (semitones, centre = unity speed) with
// gain in [0, 1]. It does not allocate.
func (d *Drum) Trigger(pitch int, gain float32) {
	if gain < 0 {
		gain = 0
	} else if gain > 1 {
		gain = 1
	}
	g := fixed.FromFloat(float64(gain))
	if d.Quantise {
		d.poly.PlayAtQuantisedPitch(pitch, g)
	} else {
		d.poly.PlayAtPitch(pitch, g)
	}
}

// Voice returns voice vi.
func (d *Drum) Voice(vi int) *Voice {
	return &d.voices[vi]
}

// Player exposes the underlying PolyPlayer.
func (d *Drum) Player() *PolyPlayer {
	return d.poly
}

// Stop silences every voice.
func (d *Drum) Stop() {
	for i := range d.voices {
		d.voices[i].Stop()
	}
}

// ActiveVoices counts sounding voices.
func (d *Drum) ActiveVoices() int {
	n := 0
	for i := range d.voices {
		if d.voices[i].Playing() {
			n++
		}
	}
	return n
}

// SetInterpolation switches every voice to mode m.
func (d *Drum) SetInterpolation(m Interpolation) {
	for i := range d.voices {
		d.voices[i].SetInterpolation(m)
	}
}

// VoiceMix is the mixer gain per voice so a full drum peaks at unity.
func VoiceMix() float32 {
	return 1.0 / NumVoicesPerDrum
}
