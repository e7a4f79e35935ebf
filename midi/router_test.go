package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-sampler/sequencer"
)

type hit struct {
	drum int
	gain float32
}

type fakeTarget struct {
	hits      []hit
	ticks     int
	playing   bool
	starts    int
	continues int
}

func (f *fakeTarget) Audition(di int, gain float32) { f.hits = append(f.hits, hit{di, gain}) }
func (f *fakeTarget) Tick()         { f.ticks++ }
func (f *fakeTarget) Stop()         { f.playing = false }
func (f *fakeTarget) Playing() bool { return f.playing }

func (f *fakeTarget) Play() {
	f.playing = true
	f.starts++
}

func (f *fakeTarget) Continue() {
	f.playing = true
	f.continues++
}

func TestDecode(t *testing.T) {
	e, ok := Decode(gomidi.NoteOn(3, 36, 100))
	assert.True(t, ok)
	assert.Equal(t, Event{Type: NoteOn, Channel: 3, Note: 36, Velocity: 100}, e)

	_, ok = Decode(gomidi.NoteOn(3, 36, 0))
	assert.False(t, ok, "velocity 0 is a note-off")
	_, ok = Decode(gomidi.NoteOff(3, 36))
	assert.False(t, ok)
	_, ok = Decode(gomidi.ControlChange(0, 7, 100))
	assert.False(t, ok)

	realtime := []struct {
		msg  gomidi.Message
		want EventType
	}{
		{gomidi.TimingClock(), Clock},
		{gomidi.Start(), Start},
		{gomidi.Continue(), Continue},
		{gomidi.Stop(), Stop},
	}
	for _, tt := range realtime {
		e, ok := Decode(tt.msg)
		assert.True(t, ok, tt.want.String())
		assert.Equal(t, tt.want, e.Type)
	}
	_, ok = Decode(gomidi.Message{0xFE})
	assert.False(t, ok)
}

func TestRouterPlaysMappedNotes(t *testing.T) {
	f := &fakeTarget{}
	gm := sequencer.GetKit("gm")
	// drum 0 on the kick slot, drum 1 on the snare slot
	r := NewRouter(f, gm, []int{0, 1}, 4)

	r.Handle(gomidi.NoteOn(9, gm.Notes[1], 127), 0)
	r.Handle(gomidi.NoteOn(0, gm.Notes[0], 127), 0)
	r.Handle(gomidi.NoteOn(9, gm.Notes[2], 127), 0) // hi-hat has no drum
	assert.Equal(t, []hit{{1, 1}, {0, 1}}, f.hits)

	di, ok := r.DrumForNote(gm.Notes[1])
	assert.True(t, ok)
	assert.Equal(t, 1, di)
}

func TestRouterVelocityAndChannel(t *testing.T) {
	f := &fakeTarget{}
	gm := sequencer.GetKit("gm")
	r := NewRouter(f, gm, []int{0}, 4)
	r.SetChannel(9)

	r.HandleEvent(Event{Type: NoteOn, Channel: 0, Note: gm.Notes[0], Velocity: 100})
	assert.Empty(t, f.hits)

	r.HandleEvent(Event{Type: NoteOn, Channel: 9, Note: gm.Notes[0], Velocity: 127})
	r.HandleEvent(Event{Type: NoteOn, Channel: 9, Note: gm.Notes[0], Velocity: 0})
	assert.Equal(t, []hit{{0, 1}, {0, 0}}, f.hits)
}

func TestRouterFirstDrumWinsSharedSlot(t *testing.T) {
	f := &fakeTarget{}
	gm := sequencer.GetKit("gm")
	r := NewRouter(f, gm, []int{-1, 3, 3}, 4)

	r.HandleEvent(Event{Type: NoteOn, Note: gm.Notes[3], Velocity: 127})
	assert.Equal(t, []hit{{1, 1}}, f.hits)
}

func TestClockIgnoredWithoutSync(t *testing.T) {
	f := &fakeTarget{}
	r := NewRouter(f, sequencer.GetKit("gm"), nil, 4)

	r.HandleEvent(Event{Type: Start})
	for i := 0; i < 24; i++ {
		r.HandleEvent(Event{Type: Clock})
	}
	r.HandleEvent(Event{Type: Stop})
	assert.Zero(t, f.starts)
	assert.Zero(t, f.ticks)
}

func TestClockSyncDividesPulses(t *testing.T) {
	f := &fakeTarget{}
	r := NewRouter(f, sequencer.GetKit("gm"), nil, 4)
	r.SetClockSync(true)
	assert.True(t, r.ClockSync())

	// Pulses before Start do nothing.
	r.HandleEvent(Event{Type: Clock})
	assert.Zero(t, f.ticks)

	r.HandleEvent(Event{Type: Start})
	assert.True(t, f.playing)

	// Six pulses per sixteenth; the first pulse after Start is a step.
	for i := 0; i < 24; i++ {
		r.HandleEvent(Event{Type: Clock})
	}
	assert.Equal(t, 4, f.ticks)

	r.HandleEvent(Event{Type: Stop})
	assert.False(t, f.playing)
	r.HandleEvent(Event{Type: Clock})
	assert.Equal(t, 4, f.ticks)

	// Continue resumes the count where it stopped.
	r.HandleEvent(Event{Type: Continue})
	assert.Equal(t, 1, f.starts)
	assert.Equal(t, 1, f.continues)
	assert.True(t, f.playing)
	for i := 0; i < 6; i++ {
		r.HandleEvent(Event{Type: Clock})
	}
	assert.Equal(t, 5, f.ticks)

	// Start goes back to the top even while running.
	r.HandleEvent(Event{Type: Start})
	assert.Equal(t, 2, f.starts)
}

func TestPulsesPerStep(t *testing.T) {
	assert.Equal(t, 6, pulsesPerStep(4))
	assert.Equal(t, 24, pulsesPerStep(1))
	assert.Equal(t, 1, pulsesPerStep(0))
	assert.Equal(t, 1, pulsesPerStep(48))
}

func TestMonitorDropsWhenFull(t *testing.T) {
	r := NewRouter(&fakeTarget{}, sequencer.GetKit("gm"), nil, 4)
	for i := 0; i < 100; i++ {
		r.HandleEvent(Event{Type: Clock})
	}
	assert.Len(t, r.Monitor(), 64)
	e := <-r.Monitor()
	assert.Equal(t, Clock, e.Type)
}
