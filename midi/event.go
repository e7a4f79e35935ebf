package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// EventType is the kind of input the sampler reacts to
type EventType uint8

const (
	NoteOn EventType = iota + 1
	Clock
	Start
	Continue
	Stop
)

func (t EventType) String() string {
	switch t {
	case NoteOn:
		return "note-on"
	case Clock:
		return "clock"
	case Start:
		return "start"
	case Continue:
		return "continue"
	case Stop:
		return "stop"
	}
	return fmt.Sprintf("EventType(%d)", uint8(t))
}

// Event is a decoded MIDI input message
type Event struct {
	Type     EventType
	Channel  uint8
	Note     uint8
	Velocity uint8
}

// Decode converts msg; ok is false for anything the sampler ignores.
// Note-ons with velocity 0 are note-offs and are ignored too.
func Decode(msg gomidi.Message) (e Event, ok bool) {
	switch {
	case msg.Is(gomidi.TimingClockMsg):
		return Event{Type: Clock}, true
	case msg.Is(gomidi.StartMsg):
		return Event{Type: Start}, true
	case msg.Is(gomidi.ContinueMsg):
		return Event{Type: Continue}, true
	case msg.Is(gomidi.StopMsg):
		return Event{Type: Stop}, true
	}

	var ch, key, vel uint8
	if msg.GetNoteStart(&ch, &key, &vel) {
		return Event{Type: NoteOn, Channel: ch, Note: key, Velocity: vel}, true
	}
	return Event{}, false
}
