package sequencer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hit struct {
	pitch int
	gain  float32
}

type recorder struct {
	hits []hit
}

func (r *recorder) Trigger(pitch int, gain float32) {
	r.hits = append(r.hits, hit{pitch, gain})
}

func readRow(t *testing.T, text string) (*Sequence, *recorder, *GridReader) {
	t.Helper()
	rec := &recorder{}
	s := NewSequence(rec)
	g := NewGridReader(strings.NewReader(text), "test.txt")
	s.Read(g)
	return s, rec, g
}

func TestSequenceReadAndClock(t *testing.T) {
	s, rec, g := readRow(t, "{0,127},-,{3,64}\n")
	require.Empty(t, g.Problems())
	require.Equal(t, 3, s.Len())

	assert.False(t, s.Clock())
	assert.False(t, s.Clock())
	assert.True(t, s.Clock())
	assert.Equal(t, 0, s.Beat())

	assert.Equal(t, []hit{{0, 1}, {3, 64.0 / 127}}, rec.hits)
	assert.Equal(t, "{0,127},-,{3,64}", s.String())
}

func TestSequenceWithoutNewline(t *testing.T) {
	s, _, g := readRow(t, "-,{12,100}")
	assert.Empty(t, g.Problems())
	assert.Equal(t, 2, s.Len())
	assert.True(t, g.AtEOF())
}

func TestEmptySequence(t *testing.T) {
	for _, text := range []string{"", "\n", "  \r\n"} {
		rec := &recorder{}
		s := NewSequence(rec)
		assert.False(t, s.Read(NewGridReader(strings.NewReader(text), "empty")), "%q", text)
		assert.Equal(t, 0, s.Len())
		assert.False(t, s.Clock())
		assert.Empty(t, rec.hits)
	}
}

func TestSequenceToleratesBlanks(t *testing.T) {
	s, _, g := readRow(t, " {1, 2} ,\r- \r\n")
	assert.Empty(t, g.Problems())
	assert.Equal(t, []Trigger{{1, 2}, {EmptyPitch, 0}}, s.Triggers())
}

func TestSequenceBadValuesResolveToZero(t *testing.T) {
	s, _, g := readRow(t, "{x,10},{300,5},{1,}\n")
	assert.Equal(t, []Trigger{{0, 10}, {0, 5}, {1, 0}}, s.Triggers())

	require.Len(t, g.Problems(), 3)
	assert.True(t, g.HasErrors())
	for _, p := range g.Problems() {
		assert.False(t, p.Warning)
	}
	assert.Contains(t, g.Problems()[1].Message, "outside")
}

func TestSequenceOversizedToken(t *testing.T) {
	s, _, g := readRow(t, "{"+strings.Repeat("1", 300)+",9}\n")
	assert.Equal(t, []Trigger{{0, 9}}, s.Triggers())
	require.Len(t, g.Problems(), 1)
	assert.Contains(t, g.Problems()[0].Message, "longer than")
}

func TestSequenceUnknownCharacterIsSkipped(t *testing.T) {
	s, _, g := readRow(t, "x-\n")
	assert.Equal(t, 1, s.Len())
	require.Len(t, g.Problems(), 1)
	p := g.Problems()[0]
	assert.True(t, p.Warning)
	assert.Equal(t, 1, p.Line)
	assert.Equal(t, 1, p.Column)
	assert.Equal(t, "test.txt:1:1: warning: unexpected 'x' at start of trigger", p.Error())
	assert.False(t, g.HasErrors())
}

func TestSequenceTrailingContentEndsRow(t *testing.T) {
	rec := &recorder{}
	g := NewGridReader(strings.NewReader("{1,2}x,-,-\n-,-\n"), "test.txt")

	first := NewSequence(rec)
	require.True(t, first.Read(g))
	assert.Equal(t, 1, first.Len())
	require.Len(t, g.Problems(), 1)
	assert.True(t, g.Problems()[0].Warning)

	second := NewSequence(rec)
	require.True(t, second.Read(g))
	assert.Equal(t, 2, second.Len())
}

func TestSequenceUnterminatedCell(t *testing.T) {
	g := NewGridReader(strings.NewReader("{5\n-\n"), "test.txt")
	s := NewSequence(nil)
	require.True(t, s.Read(g))
	assert.Equal(t, []Trigger{{0, 0}}, s.Triggers())
	assert.True(t, g.HasErrors())

	require.True(t, s.Read(g))
	assert.Equal(t, []Trigger{{EmptyPitch, 0}}, s.Triggers())
}

func TestSequenceCapacity(t *testing.T) {
	row := strings.Repeat("-,", MaxSequenceSize+3) + "-\n"
	s, _, g := readRow(t, row)
	assert.Equal(t, MaxSequenceSize, s.Len())
	assert.Len(t, g.Problems(), 4)
}

func TestSequenceVelocityAboveMaxPlaysAtUnity(t *testing.T) {
	s, rec, _ := readRow(t, "{-3,255}\n")
	assert.True(t, s.Clock())
	assert.Equal(t, []hit{{-3, 1}}, rec.hits)
}

func TestSequenceRewind(t *testing.T) {
	s, _, _ := readRow(t, "-,-,-\n")
	s.Clock()
	s.Clock()
	s.Rewind()
	assert.Equal(t, 0, s.Beat())
	assert.False(t, s.Clock())
}
