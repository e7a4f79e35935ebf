package config

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"go-sampler/debug"
	"go-sampler/sequencer"
)

// EnvPrefix prefixes environment overrides, e.g. GOSAMPLER_TEMPO=140 or
// GOSAMPLER_MIDI_CLOCKSYNC=true.
const EnvPrefix = "GOSAMPLER"

// DrumConfig defines one drum and its sample
type DrumConfig struct {
	Name     string  `json:"name" mapstructure:"name"`
	Sample   string  `json:"sample" mapstructure:"sample"`
	Gain     float32 `json:"gain,omitempty" mapstructure:"gain"`         // <= 0 means unity
	Centre   int     `json:"centre,omitempty" mapstructure:"centre"`     // 0 means the default centre
	Quantise bool    `json:"quantise,omitempty" mapstructure:"quantise"` // snap pitches to the major scale
	Slot     int     `json:"slot" mapstructure:"slot"`                   // kit slot for MIDI, -1 for none
	Mute     bool    `json:"mute,omitempty" mapstructure:"mute"`
}

// AudioConfig sets up the output stream
type AudioConfig struct {
	SampleRate int  `json:"sampleRate" mapstructure:"sampleRate"`
	BlockSize  int  `json:"blockSize" mapstructure:"blockSize"`
	Null       bool `json:"null,omitempty" mapstructure:"null"` // run silently without a device
}

// MIDIConfig selects the MIDI input
type MIDIConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	InputPort string `json:"inputPort,omitempty" mapstructure:"inputPort"` // substring match, empty takes the first port
	Channel   int    `json:"channel" mapstructure:"channel"`               // 0-15, -1 for omni
	ClockSync bool   `json:"clockSync,omitempty" mapstructure:"clockSync"`
}

// Config is the main configuration structure
type Config struct {
	Tempo         int          `json:"tempo" mapstructure:"tempo"`
	StepsPerBeat  int          `json:"stepsPerBeat" mapstructure:"stepsPerBeat"`
	Interpolation string       `json:"interpolation" mapstructure:"interpolation"`
	Audio         AudioConfig  `json:"audio" mapstructure:"audio"`
	Drums         []DrumConfig `json:"drums" mapstructure:"drums"`
	SampleDir     string       `json:"sampleDir" mapstructure:"sampleDir"`
	PatternDir    string       `json:"patternDir" mapstructure:"patternDir"`
	Patterns      []string     `json:"patterns" mapstructure:"patterns"`
	SnapshotDir   string       `json:"snapshotDir" mapstructure:"snapshotDir"`
	Kit           string       `json:"kit" mapstructure:"kit"`
	Palette       string       `json:"palette,omitempty" mapstructure:"palette"` // GIMP palette, built-in plasma when empty
	MIDI          MIDIConfig   `json:"midi" mapstructure:"midi"`
	Debug         bool         `json:"debug,omitempty" mapstructure:"debug"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Tempo:         120,
		StepsPerBeat:  4,
		Interpolation: "cubic",
		Audio: AudioConfig{
			SampleRate: 44100,
			BlockSize:  128,
		},
		Drums: []DrumConfig{
			{Name: "kick", Sample: "kick.wav", Slot: 0},
			{Name: "snare", Sample: "snare.wav", Slot: 1},
			{Name: "hat", Sample: "hat.wav", Slot: 2},
			{Name: "open hat", Sample: "openhat.wav", Slot: 3},
			{Name: "clap", Sample: "clap.wav", Slot: 9},
		},
		SampleDir:   "~/.config/go-sampler/samples",
		PatternDir:  "~/.config/go-sampler/patterns",
		Patterns:    append([]string(nil), sequencer.DefaultPatternNames...),
		SnapshotDir: "~/.config/go-sampler/snapshots",
		Kit:         sequencer.DefaultKit,
		MIDI: MIDIConfig{
			Enabled: true,
			Channel: -1,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "find home directory")
	}
	return filepath.Join(home, ".config", "go-sampler"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Flags returns a flag set whose flags override config keys of the same
// name. Callers may add their own flags before parsing.
func Flags() *pflag.FlagSet {
	d := DefaultConfig()
	flags := pflag.NewFlagSet("go-sampler", pflag.ContinueOnError)
	flags.Int("tempo", d.Tempo, "tempo in BPM")
	flags.String("interpolation", d.Interpolation, "cubic or linear")
	flags.String("kit", d.Kit, "MIDI drum kit note mapping")
	flags.String("midi.inputPort", d.MIDI.InputPort, "MIDI input to open (substring match)")
	flags.Bool("midi.clockSync", d.MIDI.ClockSync, "follow MIDI clock instead of the internal tempo")
	flags.Bool("audio.null", d.Audio.Null, "run without an audio device")
	flags.Bool("debug", d.Debug, "write a debug log next to the config")
	return flags
}

// Load reads the config at path, or the default path when empty. A missing
// file yields defaults. Environment variables override both, and flags
// that were set on the command line override everything.
func Load(fs afero.Fs, path string, flags *pflag.FlagSet) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())
	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if err := v.BindPFlag(f.Name, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, errors.Wrap(bindErr, "bind flags")
		}
	}

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if exists {
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		debug.Log("config", "Loaded %s", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	cfg.normalize()
	return &cfg, nil
}

// setDefaults registers every key so environment overrides apply to it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("tempo", d.Tempo)
	v.SetDefault("stepsPerBeat", d.StepsPerBeat)
	v.SetDefault("interpolation", d.Interpolation)
	v.SetDefault("audio.sampleRate", d.Audio.SampleRate)
	v.SetDefault("audio.blockSize", d.Audio.BlockSize)
	v.SetDefault("audio.null", d.Audio.Null)
	v.SetDefault("drums", d.Drums)
	v.SetDefault("sampleDir", d.SampleDir)
	v.SetDefault("patternDir", d.PatternDir)
	v.SetDefault("patterns", d.Patterns)
	v.SetDefault("snapshotDir", d.SnapshotDir)
	v.SetDefault("kit", d.Kit)
	v.SetDefault("palette", d.Palette)
	v.SetDefault("midi.enabled", d.MIDI.Enabled)
	v.SetDefault("midi.inputPort", d.MIDI.InputPort)
	v.SetDefault("midi.channel", d.MIDI.Channel)
	v.SetDefault("midi.clockSync", d.MIDI.ClockSync)
	v.SetDefault("debug", d.Debug)
}

// normalize pulls out-of-range values back to something playable.
func (c *Config) normalize() {
	d := DefaultConfig()
	if c.StepsPerBeat <= 0 {
		c.StepsPerBeat = d.StepsPerBeat
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = d.Audio.SampleRate
	}
	if c.Audio.BlockSize <= 0 {
		c.Audio.BlockSize = d.Audio.BlockSize
	}
	if c.MIDI.Channel < -1 || c.MIDI.Channel > 15 {
		c.MIDI.Channel = -1
	}
	if len(c.Drums) > sequencer.MaxDrums {
		debug.Log("config", "Ignoring %d drums beyond %d", len(c.Drums)-sequencer.MaxDrums, sequencer.MaxDrums)
		c.Drums = c.Drums[:sequencer.MaxDrums]
	}
	if len(c.Patterns) == 0 {
		c.Patterns = d.Patterns
	}
}

// Save writes the config to path, or the default path when empty
func (c *Config) Save(fs afero.Fs, path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(path))
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return afero.WriteFile(fs, path, data, 0644)
}

// Resolve expands ~ in p and joins relative paths onto dir.
func Resolve(dir, p string) (string, error) {
	p, err := homedir.Expand(p)
	if err != nil {
		return "", errors.Wrapf(err, "expand %s", p)
	}
	if filepath.IsAbs(p) || dir == "" {
		return p, nil
	}
	dir, err = homedir.Expand(dir)
	if err != nil {
		return "", errors.Wrapf(err, "expand %s", dir)
	}
	return filepath.Join(dir, p), nil
}

// SamplePath resolves a drum's sample file.
func (c *Config) SamplePath(d DrumConfig) (string, error) {
	return Resolve(c.SampleDir, d.Sample)
}

// PatternPaths resolves the pattern sources in rotation order.
func (c *Config) PatternPaths() ([]string, error) {
	paths := make([]string, 0, len(c.Patterns))
	for _, name := range c.Patterns {
		p, err := Resolve(c.PatternDir, name)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Slots returns each drum's kit slot in drum order.
func (c *Config) Slots() []int {
	slots := make([]int, len(c.Drums))
	for i, d := range c.Drums {
		slots[i] = d.Slot
	}
	return slots
}

// LogPath is where the debug log goes when Debug is set.
func LogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "debug.log"), nil
}
