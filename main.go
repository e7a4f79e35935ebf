package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-sampler/config"
	"go-sampler/debug"
	"go-sampler/engine"
	"go-sampler/midi"
	"go-sampler/output"
	"go-sampler/sequencer"
	"go-sampler/theme"
	"go-sampler/tui"
)

func main() {
	flags := config.Flags()
	configPath := flags.String("config", "", "config file (default ~/.config/go-sampler/config.json)")
	snapshot := flags.String("snapshot", "", `load patterns from a saved snapshot ("latest" for the newest)`)
	saveConfig := flags.Bool("save-config", false, "write the effective config and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		os.Exit(2)
	}

	if err := run(afero.NewOsFs(), flags, *configPath, *snapshot, *saveConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(fs afero.Fs, flags *pflag.FlagSet, configPath, snapshot string, saveConfig bool) error {
	cfg, err := config.Load(fs, configPath, flags)
	if err != nil {
		return err
	}
	if saveConfig {
		return cfg.Save(fs, configPath)
	}

	if cfg.Debug {
		if logPath, err := config.LogPath(); err == nil {
			if err := debug.Enable(logPath); err != nil {
				fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
			}
			defer debug.Disable()
		}
	}

	th := theme.New(nil)
	if cfg.Palette != "" {
		path, err := config.Resolve("", cfg.Palette)
		if err != nil {
			return err
		}
		palette, err := theme.LoadGPL(fs, path)
		if err != nil {
			return err
		}
		th = theme.New(palette)
	}

	snapDir, err := config.Resolve("", cfg.SnapshotDir)
	if err != nil {
		return err
	}

	var paths []string
	switch snapshot {
	case "":
		paths, err = cfg.PatternPaths()
	case "latest":
		paths, err = sequencer.SnapshotPaths(fs, snapDir, "")
	default:
		paths, err = sequencer.SnapshotPaths(fs, snapDir, snapshot)
	}
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

	var sink output.Sink
	if cfg.Audio.Null {
		sink = output.NewNull(mgr, cfg.Audio.SampleRate, cfg.Audio.BlockSize)
	} else {
		player, err := output.Open(mgr, cfg.Audio.SampleRate, cfg.Audio.BlockSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v, running silent\n", err)
			sink = output.NewNull(mgr, cfg.Audio.SampleRate, cfg.Audio.BlockSize)
		} else {
			sink = player
		}
	}
	sink.Play()
	defer sink.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var watcher *midi.InputWatcher
	if cfg.MIDI.Enabled {
		router := midi.NewRouter(mgr, sequencer.GetKit(cfg.Kit), cfg.Slots(), cfg.StepsPerBeat)
		router.SetChannel(cfg.MIDI.Channel)
		router.SetClockSync(cfg.MIDI.ClockSync)
		mgr.SetExternalClock(cfg.MIDI.ClockSync)

		watcher = midi.NewInputWatcher(cfg.MIDI.InputPort, router.Handle)
		go watcher.Run(ctx)
		defer gomidi.CloseDriver()
	}

	m := tui.NewModel(mgr, watcher, th)
	m.FS = fs
	m.SnapshotDir = snapDir
	p := tea.NewProgram(m, tea.WithAltScreen())

	_, err = p.Run()
	cancel()
	mgr.Stop()
	return err
}
