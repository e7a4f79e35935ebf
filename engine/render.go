package engine

import (
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"go-sampler/debug"
)

// Bounce renders steps sequencer steps offline, ticking once every
// SamplesPerStep frames, followed by tail frames to let voices ring out.
func (m *Manager) Bounce(steps, tail int) []int16 {
	per := m.SamplesPerStep()
	out := make([]int16, steps*per+max(tail, 0))
	for s := 0; s < steps; s++ {
		m.Tick()
		m.RenderBlock(out[s*per : (s+1)*per])
	}
	m.RenderBlock(out[steps*per:])
	debug.Log("render", "Bounced %d steps (%d frames) at %d BPM", steps, len(out), m.Tempo())
	return out
}

// BounceSet renders every loaded pattern in order, each repeated loops
// times, followed by tail frames. The next pattern is queued during the
// last repeat so it takes over on the boundary.
func (m *Manager) BounceSet(loops, tail int) []int16 {
	if loops < 1 {
		loops = 1
	}
	m.Rewind()

	var out []int16
	n := m.NumPatterns()
	for i := 0; i < n; i++ {
		length := m.LoopLength(i)
		for l := 0; l < loops; l++ {
			if l == loops-1 && i+1 < n {
				m.QueuePattern(i + 1)
			}
			out = append(out, m.Bounce(length, 0)...)
		}
	}
	return append(out, m.Bounce(0, tail)...)
}

// WriteWAV writes mono 16-bit PCM to path on fs.
func WriteWAV(fs afero.Fs, path string, samples []int16, sampleRate int) error {
	f, err := fs.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return errors.Wrapf(err, "finish %s", path)
	}
	return f.Close()
}
