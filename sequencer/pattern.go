package sequencer

import (
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"go-sampler/debug"
)

// ErrSourceUnavailable is returned when a pattern source cannot be opened.
var ErrSourceUnavailable = errors.New("pattern source unavailable")

// Pattern clocks up to MaxDrums sequences together, one per drum.
// The longest (leading) sequence decides where the pattern loops.
type Pattern struct {
	name         string
	sequences    [MaxDrums]Sequence
	numSequences int
	leading      int

	problems []*ParseError
}

// Read loads the pattern from the grid file name on fs. Slot i is bound to
// drums[i]. Missing rows are tolerated; only an unopenable source fails,
// and then the pattern is left empty.
func (p *Pattern) Read(fs afero.Fs, name string, drums []Drum) error {
	f, err := fs.Open(name)
	if err != nil {
		debug.Log("pattern", "Unable to open %s: %v", name, err)
		p.reset(name, drums)
		return errors.Wrapf(ErrSourceUnavailable, "%s: %v", name, err)
	}
	defer f.Close()

	p.ReadFrom(f, name, drums)
	return nil
}

// ReadFrom loads the pattern from r. Rows are read in slot order until the
// input ends, a row is empty or every slot is filled.
func (p *Pattern) ReadFrom(r io.Reader, name string, drums []Drum) {
	p.reset(name, drums)

	g := NewGridReader(r, name)
	n := 0
	for n < MaxDrums && p.sequences[n].Read(g) {
		n++
	}
	p.numSequences = n
	p.problems = g.Problems()

	if n == MaxDrums && !g.AtEOF() {
		g.warnf("more than %d rows, the rest is ignored", MaxDrums)
		p.problems = g.Problems()
	}
	if bound := min(len(drums), MaxDrums); n != bound {
		debug.Log("pattern", "%s: %d sequences for %d drums", name, n, bound)
	}

	for i := 1; i < n; i++ {
		if p.sequences[i].Len() > p.sequences[p.leading].Len() {
			p.leading = i
		}
	}
	debug.Log("pattern", "%s: loaded %d sequences, leading %d (%d beats)", name, n, p.leading, p.LoopLength())
}

func (p *Pattern) reset(name string, drums []Drum) {
	p.name = name
	p.numSequences = 0
	p.leading = 0
	p.problems = nil
	for i := range p.sequences {
		var d Drum
		if i < len(drums) {
			d = drums[i]
		}
		p.sequences[i].Bind(d)
		p.sequences[i].Clear()
	}
}

// Clock advances every sequence by one beat and reports whether the
// leading sequence completed a cycle. A pattern with nothing loaded is
// always at a boundary.
func (p *Pattern) Clock() bool {
	if p.numSequences == 0 {
		return true
	}
	boundary := false
	for i := 0; i < p.numSequences; i++ {
		if p.sequences[i].Clock() && i == p.leading {
			boundary = true
		}
	}
	return boundary
}

// Rewind puts every sequence back on its first beat.
func (p *Pattern) Rewind() {
	for i := range p.sequences {
		p.sequences[i].Rewind()
	}
}

func (p *Pattern) Name() string             { return p.name }
func (p *Pattern) NumSequences() int        { return p.numSequences }
func (p *Pattern) Leading() int             { return p.leading }
func (p *Pattern) Sequence(i int) *Sequence { return &p.sequences[i] }
func (p *Pattern) Problems() []*ParseError  { return p.problems }

// LoopLength is the number of clocks between boundaries.
func (p *Pattern) LoopLength() int {
	if p.numSequences == 0 {
		return 1
	}
	return p.sequences[p.leading].Len()
}

// String renders the pattern back into grid text.
func (p *Pattern) String() string {
	var out []byte
	for i := 0; i < p.numSequences; i++ {
		out = append(out, p.sequences[i].String()...)
		out = append(out, '\n')
	}
	return string(out)
}
