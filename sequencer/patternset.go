package sequencer

import (
	"github.com/spf13/afero"

	"go-sampler/debug"
)

// DefaultPatternNames are the pattern sources in rotation order.
var DefaultPatternNames = []string{"pattern1.txt", "pattern2.txt", "pattern3.txt", "pattern4.txt"}

// PatternSet rotates through up to MaxPatterns patterns. A requested
// change waits for the playing pattern's loop boundary.
type PatternSet struct {
	patterns    [MaxPatterns]Pattern
	numPatterns int
	current     int
	pending     int
}

// NewPatternSet returns an empty set.
func NewPatternSet() *PatternSet {
	return &PatternSet{}
}

// Load reads the named sources in order, stopping at the first that cannot
// be opened. Patterns loaded before the failure stay usable and set the
// rotation size. It returns how many patterns were loaded.
func (s *PatternSet) Load(fs afero.Fs, names []string, drums []Drum) (int, error) {
	s.numPatterns = 0
	s.current = 0
	s.pending = 0

	for _, name := range names {
		if s.numPatterns == MaxPatterns {
			debug.Log("pattern", "Ignoring %s, set holds %d patterns", name, MaxPatterns)
			break
		}
		if err := s.patterns[s.numPatterns].Read(fs, name, drums); err != nil {
			return s.numPatterns, err
		}
		s.numPatterns++
	}
	return s.numPatterns, nil
}

// Clock advances the current pattern one beat. At a loop boundary a
// pending pattern takes over from its first beat. It returns whether the
// beat was a boundary.
func (s *PatternSet) Clock() bool {
	if s.numPatterns == 0 {
		return false
	}
	boundary := s.patterns[s.current].Clock()
	if boundary && s.pending != s.current {
		s.current = s.pending
		s.patterns[s.current].Rewind()
	}
	return boundary
}

// AdvancePendingPattern queues the pattern after the pending one.
func (s *PatternSet) AdvancePendingPattern() {
	if s.numPatterns == 0 {
		return
	}
	s.pending = (s.pending + 1) % s.numPatterns
}

// QueuePattern queues pattern i directly; out of range requests are ignored.
func (s *PatternSet) QueuePattern(i int) bool {
	if i < 0 || i >= s.numPatterns {
		return false
	}
	s.pending = i
	return true
}

// Rewind restarts the current pattern.
func (s *PatternSet) Rewind() {
	if s.numPatterns > 0 {
		s.patterns[s.current].Rewind()
	}
}

// Reset returns to the first pattern with nothing queued.
func (s *PatternSet) Reset() {
	s.current = 0
	s.pending = 0
	s.Rewind()
}

func (s *PatternSet) IsPatternPending() bool { return s.pending != s.current }
func (s *PatternSet) CurrentPattern() int    { return s.current }
func (s *PatternSet) PendingPattern() int    { return s.pending }
func (s *PatternSet) NumPatterns() int       { return s.numPatterns }
func (s *PatternSet) Pattern(i int) *Pattern { return &s.patterns[i] }
