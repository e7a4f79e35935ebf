package sequencer

import "strings"

// Sequence is one row of a trigger grid bound to a drum. It holds up to
// MaxSequenceSize beats and plays one per clock, looping at its length.
type Sequence struct {
	drum     Drum
	triggers [MaxSequenceSize]Trigger
	length   int
	beat     int
}

// NewSequence returns an empty sequence firing drum.
func NewSequence(drum Drum) *Sequence {
	return &Sequence{drum: drum}
}

func (s *Sequence) Bind(d Drum)         { s.drum = d }
func (s *Sequence) Drum() Drum          { return s.drum }
func (s *Sequence) Len() int            { return s.length }
func (s *Sequence) Beat() int           { return s.beat }
func (s *Sequence) At(i int) Trigger    { return s.triggers[i] }
func (s *Sequence) Rewind()             { s.beat = 0 }
func (s *Sequence) Triggers() []Trigger { return s.triggers[:s.length] }

// Clear empties the sequence.
func (s *Sequence) Clear() {
	s.length = 0
	s.beat = 0
}

// Read parses one grid row from g, replacing the current contents. It
// returns false when the row held no triggers, leaving the sequence empty.
func (s *Sequence) Read(g *GridReader) bool {
	s.Clear()

	for {
		c, ok := g.next()
		if !ok {
			break
		}

		var t Trigger
		switch c {
		case ' ', '\t', '\r':
			continue
		case '\n':
			return s.length > 0
		case '-':
			t = Trigger{Pitch: EmptyPitch}
		case '{':
			t = readCell(g)
		default:
			g.warnf("unexpected %q at start of trigger", c)
			continue
		}

		if s.length < MaxSequenceSize {
			s.triggers[s.length] = t
			s.length++
		} else {
			g.warnf("more than %d triggers in row, %s dropped", MaxSequenceSize, t)
		}

		if endOfCell(g) {
			break
		}
	}
	return s.length > 0
}

// readCell parses PITCH,VELOCITY} after the opening brace.
func readCell(g *GridReader) Trigger {
	pitch, ok := g.readInt(',', MinPitch, MaxPitch)
	if !ok {
		return Trigger{}
	}
	vel, _ := g.readInt('}', 0, 255)
	return Trigger{Pitch: int8(pitch), Velocity: uint8(vel)}
}

// endOfCell consumes the separator after a cell and reports whether the
// row is finished. Anything but a comma or newline ends the row and the
// rest of the line is discarded.
func endOfCell(g *GridReader) bool {
	for {
		c, ok := g.next()
		if !ok {
			return true
		}
		switch c {
		case ' ', '\t', '\r':
			continue
		case ',':
			return false
		case '\n':
			return true
		default:
			g.warnf("expected ',' or newline, found %q", c)
			g.skipLine()
			return true
		}
	}
}

// Clock plays the current beat and advances. It returns true when the
// sequence wrapped back to its first beat. Empty sequences never wrap.
func (s *Sequence) Clock() bool {
	if s.length == 0 {
		return false
	}
	t := s.triggers[s.beat]
	if !t.Empty() && s.drum != nil {
		s.drum.Trigger(int(t.Pitch), t.Gain())
	}
	s.beat++
	if s.beat == s.length {
		s.beat = 0
		return true
	}
	return false
}

// String renders the sequence as a grid row without the newline.
func (s *Sequence) String() string {
	cells := make([]string, s.length)
	for i, t := range s.triggers[:s.length] {
		cells[i] = t.String()
	}
	return strings.Join(cells, ",")
}
