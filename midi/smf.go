package midi

import (
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-sampler/sequencer"
)

// TicksPerQuarter is the resolution of exported files.
const TicksPerQuarter = 960

// DrumChannel is the General MIDI percussion channel (10, zero based).
const DrumChannel = 9

// ExportOptions describes how a pattern set becomes a MIDI file.
type ExportOptions struct {
	Tempo        int
	StepsPerBeat int
	Kit          sequencer.DrumKit
	Slots        []int    // kit slot for each drum row
	Names        []string // optional track names
}

// ExportSMF writes the pattern set as a format 1 Standard MIDI File: a
// tempo track and one track per drum row. Patterns play once each, in
// order, for their loop length. Rows whose drum has no kit slot are left
// empty.
func ExportSMF(w io.Writer, set *sequencer.PatternSet, opts ExportOptions) error {
	spb := opts.StepsPerBeat
	if spb <= 0 {
		spb = 4
	}
	ticksPerStep := uint32(TicksPerQuarter / spb)
	gate := ticksPerStep / 2

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var track0 smf.Track
	track0.Add(0, smf.MetaMeter(4, 4))
	track0.Add(0, smf.MetaTempo(float64(opts.Tempo)))
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		return errors.Wrap(err, "add tempo track")
	}

	for row, slot := range opts.Slots {
		var track smf.Track
		if row < len(opts.Names) {
			track.Add(0, smf.MetaTrackSequenceName(opts.Names[row]))
		}
		note, mapped := opts.Kit.Note(slot)

		var last, start uint32
		for pi := 0; pi < set.NumPatterns(); pi++ {
			p := set.Pattern(pi)
			loop := p.LoopLength()
			if mapped && row < p.NumSequences() && p.Sequence(row).Len() > 0 {
				seq := p.Sequence(row)
				for s := 0; s < loop; s++ {
					t := seq.At(s % seq.Len())
					if t.Empty() || t.Velocity == 0 {
						continue
					}
					vel := t.Velocity
					if vel > sequencer.MaxVelocity {
						vel = sequencer.MaxVelocity
					}
					on := start + uint32(s)*ticksPerStep
					track.Add(on-last, gomidi.NoteOn(DrumChannel, note, vel))
					track.Add(gate, gomidi.NoteOff(DrumChannel, note))
					last = on + gate
				}
			}
			start += uint32(loop) * ticksPerStep
		}
		track.Close(start - last)
		if err := sm.Add(track); err != nil {
			return errors.Wrapf(err, "add track %d", row)
		}
	}

	if _, err := sm.WriteTo(w); err != nil {
		return errors.Wrap(err, "write midi file")
	}
	return nil
}

// WriteSMF exports to a file.
func WriteSMF(fs afero.Fs, path string, set *sequencer.PatternSet, opts ExportOptions) error {
	f, err := fs.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := ExportSMF(f, set, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
