package sequencer

import "fmt"

const (
	// MaxSequenceSize is the number of beats one sequence can hold.
	MaxSequenceSize = 16

	// MaxDrums is the number of sequences in a pattern.
	MaxDrums = 5

	// MaxPatterns is the number of patterns in a set.
	MaxPatterns = 4

	// EmptyPitch marks a beat with no trigger.
	EmptyPitch = -127

	// MinPitch and MaxPitch bound the pitch of a real trigger.
	MinPitch = -126
	MaxPitch = 127

	// MaxVelocity is the velocity that plays at unity gain.
	MaxVelocity = 127
)

// Drum is anything a sequence can fire. sampler.Drum satisfies it.
type Drum interface {
	Trigger(pitch int, gain float32)
}

// Trigger is one beat of a sequence.
type Trigger struct {
	Pitch    int8
	Velocity uint8
}

// Empty reports whether the beat is a rest.
func (t Trigger) Empty() bool {
	return t.Pitch == EmptyPitch
}

// Gain maps velocity onto [0, 1]; anything above MaxVelocity plays at unity.
func (t Trigger) Gain() float32 {
	g := float32(t.Velocity) / MaxVelocity
	if g > 1 {
		g = 1
	}
	return g
}

// String renders the trigger as a grid cell.
func (t Trigger) String() string {
	if t.Empty() {
		return "-"
	}
	return fmt.Sprintf("{%d,%d}", t.Pitch, t.Velocity)
}
