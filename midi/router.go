package midi

import (
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-sampler/debug"
	"go-sampler/sequencer"
)

// PulsesPerQuarter is the MIDI clock resolution.
const PulsesPerQuarter = 24

// OmniChannel accepts notes on every channel.
const OmniChannel = -1

// Target is what the router drives, normally an *engine.Manager.
type Target interface {
	Audition(drum int, gain float32)
	Tick()
	Play()
	Continue()
	Stop()
	Playing() bool
}

// Router turns MIDI input into drum hits and transport control.
// Notes are looked up in a kit to find the slot, and the slot to find
// the drum. Clock pulses advance the sequencer when clock sync is on.
type Router struct {
	mu          sync.Mutex
	target      Target
	kit         sequencer.DrumKit
	drumForSlot [sequencer.NumKitSlots]int
	channel     int
	clockSync   bool

	pulsesPerStep int
	pulse         int
	running       bool

	monitor chan Event
}

// NewRouter maps drum i to kit slot slots[i]. A negative slot leaves the
// drum unmapped.
func NewRouter(target Target, kit sequencer.DrumKit, slots []int, stepsPerBeat int) *Router {
	r := &Router{
		target:        target,
		kit:           kit,
		channel:       OmniChannel,
		pulsesPerStep: pulsesPerStep(stepsPerBeat),
		monitor:       make(chan Event, 64),
	}
	for i := range r.drumForSlot {
		r.drumForSlot[i] = -1
	}
	for di, slot := range slots {
		if slot >= 0 && slot < sequencer.NumKitSlots && r.drumForSlot[slot] < 0 {
			r.drumForSlot[slot] = di
		}
	}
	return r
}

func pulsesPerStep(stepsPerBeat int) int {
	if stepsPerBeat <= 0 || stepsPerBeat > PulsesPerQuarter {
		return 1
	}
	return PulsesPerQuarter / stepsPerBeat
}

// SetChannel restricts notes to one channel (0-15), or OmniChannel.
func (r *Router) SetChannel(ch int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channel = ch
}

// SetClockSync makes clock messages drive the sequencer.
func (r *Router) SetClockSync(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clockSync = on
	r.pulse = 0
}

func (r *Router) ClockSync() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clockSync
}

// Monitor receives every decoded event. Events are dropped when nobody
// reads.
func (r *Router) Monitor() <-chan Event {
	return r.monitor
}

// DrumForNote returns the drum a note plays, if any.
func (r *Router) DrumForNote(note uint8) (int, bool) {
	slot, ok := r.kit.Slot(note)
	if !ok {
		return 0, false
	}
	di := r.drumForSlot[slot]
	return di, di >= 0
}

// Handle has the signature of a gomidi listener.
func (r *Router) Handle(msg gomidi.Message, timestampms int32) {
	if e, ok := Decode(msg); ok {
		r.HandleEvent(e)
	}
}

// HandleEvent acts on a decoded event.
func (r *Router) HandleEvent(e Event) {
	select {
	case r.monitor <- e:
	default:
	}

	switch e.Type {
	case NoteOn:
		r.mu.Lock()
		channel := r.channel
		r.mu.Unlock()
		if channel != OmniChannel && int(e.Channel) != channel {
			return
		}
		di, ok := r.DrumForNote(e.Note)
		if !ok {
			debug.Log("midi", "Unmapped note %d", e.Note)
			return
		}
		r.target.Audition(di, sequencer.Trigger{Velocity: e.Velocity}.Gain())

	case Start, Continue:
		r.mu.Lock()
		if !r.clockSync {
			r.mu.Unlock()
			return
		}
		if e.Type == Start {
			r.pulse = 0
		}
		r.running = true
		r.mu.Unlock()
		if e.Type == Start {
			r.target.Play()
		} else {
			r.target.Continue()
		}

	case Stop:
		r.mu.Lock()
		synced := r.clockSync
		r.running = false
		r.mu.Unlock()
		if synced {
			r.target.Stop()
		}

	case Clock:
		r.mu.Lock()
		if !r.clockSync || !r.running {
			r.mu.Unlock()
			return
		}
		tick := r.pulse%r.pulsesPerStep == 0
		r.pulse++
		r.mu.Unlock()
		if tick {
			r.target.Tick()
		}
	}
}
