// render bounces the configured pattern set to a WAV file without touching
// the audio device, and optionally writes the same patterns as a MIDI file.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"go-sampler/config"
	"go-sampler/engine"
	"go-sampler/midi"
	"go-sampler/sequencer"
)

type options struct {
	configPath string
	snapshot   string
	loops      int
	tail       float64
	out        string
	smfPath    string
}

func main() {
	flags := config.Flags()
	var o options
	flags.StringVar(&o.configPath, "config", "", "config file (default ~/.config/go-sampler/config.json)")
	flags.StringVar(&o.snapshot, "snapshot", "", `render a saved snapshot ("latest" for the newest)`)
	flags.IntVar(&o.loops, "loops", 2, "times to repeat each pattern")
	flags.Float64Var(&o.tail, "tail", 1, "seconds of ring-out after the last step")
	flags.StringVarP(&o.out, "out", "o", "bounce.wav", "WAV file to write")
	flags.StringVar(&o.smfPath, "smf", "", "also write the patterns as a Standard MIDI File")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		os.Exit(2)
	}

	if err := run(afero.NewOsFs(), flags, o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(fs afero.Fs, flags *pflag.FlagSet, o options) error {
	cfg, err := config.Load(fs, o.configPath, flags)
	if err != nil {
		return err
	}

	paths, err := patternPaths(fs, cfg, o.snapshot)
	if err != nil {
		return err
	}

	mgr, err := engine.Setup(fs, cfg, paths)
	if mgr == nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if mgr.NumPatterns() == 0 {
		return errors.New("no patterns to render")
	}

	tail := int(o.tail * float64(cfg.Audio.SampleRate))
	samples := mgr.BounceSet(o.loops, tail)
	if err := engine.WriteWAV(fs, o.out, samples, cfg.Audio.SampleRate); err != nil {
		return err
	}
	fmt.Printf("Wrote %s: %d patterns, %.2fs\n", o.out, mgr.NumPatterns(),
		float64(len(samples))/float64(cfg.Audio.SampleRate))

	if o.smfPath == "" {
		return nil
	}

	// The manager owns its set; export from a fresh copy. Load problems
	// were already reported above.
	set := sequencer.NewPatternSet()
	_, _ = set.Load(fs, paths, engine.SequencerDrums(mgr.Drums()))
	names := make([]string, len(cfg.Drums))
	for i, d := range cfg.Drums {
		names[i] = d.Name
	}
	err = midi.WriteSMF(fs, o.smfPath, set, midi.ExportOptions{
		Tempo:        cfg.Tempo,
		StepsPerBeat: cfg.StepsPerBeat,
		Kit:          sequencer.GetKit(cfg.Kit),
		Slots:        cfg.Slots(),
		Names:        names,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", o.smfPath)
	return nil
}

func patternPaths(fs afero.Fs, cfg *config.Config, snapshot string) ([]string, error) {
	if snapshot == "" {
		return cfg.PatternPaths()
	}
	dir, err := config.Resolve("", cfg.SnapshotDir)
	if err != nil {
		return nil, err
	}
	if snapshot == "latest" {
		snapshot = ""
	}
	return sequencer.SnapshotPaths(fs, dir, snapshot)
}
