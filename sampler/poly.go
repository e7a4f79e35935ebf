package sampler

import (
	"math"

	"github.com/pkg/errors"

	"go-sampler/debug"
	"go-sampler/fixed"
)

const (
	// MaxVoices is the voice capacity of one PolyPlayer.
	MaxVoices = 8

	// DefaultCentre is the semitone that plays at unity speed.
	DefaultCentre = 12

	// SemitoneRange bounds the pitch offset from the centre (3.3 octaves),
	// keeping speeds inside 0.1x..10x.
	SemitoneRange = 39
)

var ErrTooManyVoices = errors.New("too many voices")

// scale holds the major-scale degrees used by PlayAtQuantisedPitch.
var scale = [7]int{0, 2, 4, 5, 7, 9, 11}

// PolyPlayer plays one sample over a small pool of voices, always taking
// the next voice in round-robin order.
type PolyPlayer struct {
	voices    [MaxVoices]*Voice
	numVoices int
	next      int

	sample *Sample
	centre int
}

// NewPolyPlayer creates a player with no voices for sample.
func NewPolyPlayer(sample *Sample) *PolyPlayer {
	return &PolyPlayer{
		sample: sample,
		centre: DefaultCentre,
	}
}

// AddVoice registers a voice. The voice storage stays with the caller.
func (p *PolyPlayer) AddVoice(v *Voice) error {
	if p.numVoices == MaxVoices {
		debug.Log("voice", "Too many voices (%d) for %s", MaxVoices, p.sample.Name)
		return errors.Wrapf(ErrTooManyVoices, "%s holds %d", p.sample.Name, MaxVoices)
	}
	p.voices[p.numVoices] = v
	p.numVoices++
	return nil
}

func (p *PolyPlayer) NumVoices() int     { return p.numVoices }
func (p *PolyPlayer) NextVoice() int     { return p.next }
func (p *PolyPlayer) Sample() *Sample    { return p.sample }
func (p *PolyPlayer) Centre() int        { return p.centre }
func (p *PolyPlayer) SetCentre(c int)    { p.centre = c }
func (p *PolyPlayer) Voice(i int) *Voice { return p.voices[i] }

// Play restarts the next voice at speed, stealing it if it is sounding.
func (p *PolyPlayer) Play(speed, gain fixed.Point) {
	if p.numVoices == 0 {
		return
	}
	v := p.voices[p.next]
	v.Stop()
	v.Play(p.sample.Data, speed)
	v.SetGain(gain)

	p.next++
	if p.next == p.numVoices {
		p.next = 0
	}
}

// PlayAtPitch plays at an equal-tempered semitone; the centre semitone
// plays at unity speed, one octave up doubles it.
func (p *PolyPlayer) PlayAtPitch(semitone int, gain fixed.Point) {
	p.Play(SpeedForSemitone(semitone-p.centre), gain)
}

// PlayAtQuantisedPitch snaps semitone up to the nearest major-scale degree
// in its octave before playing it.
func (p *PolyPlayer) PlayAtQuantisedPitch(semitone int, gain fixed.Point) {
	p.PlayAtPitch(Quantise(semitone), gain)
}

// SpeedForSemitone maps a semitone offset from unity to a playback speed.
func SpeedForSemitone(offset int) fixed.Point {
	if offset > SemitoneRange {
		offset = SemitoneRange
	} else if offset < -SemitoneRange {
		offset = -SemitoneRange
	}
	return fixed.FromFloat(math.Pow(2, float64(offset)/12))
}

// Quantise returns the first major-scale degree at or above semitone within
// the same octave. Octaves are floored, so -1 stays in the octave below 0.
func Quantise(semitone int) int {
	inOctave := semitone % 12
	if inOctave < 0 {
		inOctave += 12
	}
	root := semitone - inOctave
	for _, deg := range scale {
		if deg >= inOctave {
			return root + deg
		}
	}
	return semitone
}
