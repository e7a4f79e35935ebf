package engine

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"go-sampler/config"
	"go-sampler/debug"
	"go-sampler/sampler"
	"go-sampler/sequencer"
)

// LoadDrums builds one drum per configured entry. Every sample must load.
func LoadDrums(fs afero.Fs, cfg *config.Config) ([]*sampler.Drum, error) {
	drums := make([]*sampler.Drum, 0, len(cfg.Drums))
	for _, dc := range cfg.Drums {
		path, err := cfg.SamplePath(dc)
		if err != nil {
			return nil, err
		}
		s, err := sampler.LoadSample(fs, path)
		if err != nil {
			return nil, errors.Wrapf(err, "drum %s", dc.Name)
		}

		d := sampler.NewDrum(dc.Name, s)
		d.Quantise = dc.Quantise
		if dc.Centre != 0 {
			d.Player().SetCentre(dc.Centre)
		}
		drums = append(drums, d)
	}
	return drums, nil
}

// Setup loads samples and patterns and returns a configured Manager. A
// pattern source that cannot be read ends the rotation there; the error is
// returned alongside the usable Manager.
func Setup(fs afero.Fs, cfg *config.Config, patternPaths []string) (*Manager, error) {
	drums, err := LoadDrums(fs, cfg)
	if err != nil {
		return nil, err
	}

	set := sequencer.NewPatternSet()
	n, loadErr := set.Load(fs, patternPaths, SequencerDrums(drums))
	for i := 0; i < n; i++ {
		for _, pe := range set.Pattern(i).Problems() {
			debug.Log("pattern", "%v", pe)
		}
	}
	if loadErr != nil {
		debug.Log("pattern", "Loaded %d of %d patterns: %v", n, len(patternPaths), loadErr)
	}

	m := NewManager(drums, set, Options{
		SampleRate:   cfg.Audio.SampleRate,
		BlockSize:    cfg.Audio.BlockSize,
		Tempo:        cfg.Tempo,
		StepsPerBeat: cfg.StepsPerBeat,
	})
	m.SetInterpolation(sampler.ParseInterpolation(cfg.Interpolation))
	for i, dc := range cfg.Drums {
		if dc.Gain > 0 {
			m.SetDrumGain(i, dc.Gain)
		}
		m.SetMuted(i, dc.Mute)
	}
	return m, loadErr
}
