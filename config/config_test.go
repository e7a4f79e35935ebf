package config

import (
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sampler/sequencer"
)

const path = "/home/test/.config/go-sampler/config.json"

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, path, []byte(`{
		"tempo": 96,
		"interpolation": "linear",
		"audio": {"sampleRate": 22050},
		"drums": [
			{"name": "808", "sample": "/kits/808.wav", "gain": 0.8, "centre": 10, "quantise": true, "slot": 0},
			{"name": "rim", "sample": "rim.raw", "slot": -1, "mute": true}
		],
		"midi": {"inputPort": "digitakt", "clockSync": true}
	}`), 0644))

	cfg, err := Load(fs, path, nil)
	require.NoError(t, err)
	assert.Equal(t, 96, cfg.Tempo)
	assert.Equal(t, 4, cfg.StepsPerBeat)
	assert.Equal(t, "linear", cfg.Interpolation)
	assert.Equal(t, AudioConfig{SampleRate: 22050, BlockSize: 128}, cfg.Audio)
	assert.Equal(t, []DrumConfig{
		{Name: "808", Sample: "/kits/808.wav", Gain: 0.8, Centre: 10, Quantise: true, Slot: 0},
		{Name: "rim", Sample: "rim.raw", Slot: -1, Mute: true},
	}, cfg.Drums)
	assert.Equal(t, MIDIConfig{Enabled: true, InputPort: "digitakt", Channel: -1, ClockSync: true}, cfg.MIDI)
	assert.Equal(t, "gm", cfg.Kit)
	assert.Equal(t, []int{0, -1}, cfg.Slots())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("GOSAMPLER_TEMPO", "140")
	t.Setenv("GOSAMPLER_MIDI_CLOCKSYNC", "true")
	t.Setenv("GOSAMPLER_AUDIO_NULL", "true")

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, path, []byte(`{"tempo": 96}`), 0644))

	cfg, err := Load(fs, path, nil)
	require.NoError(t, err)
	assert.Equal(t, 140, cfg.Tempo)
	assert.True(t, cfg.MIDI.ClockSync)
	assert.True(t, cfg.Audio.Null)
}

func TestLoadRejectsBadJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, path, []byte(`{"tempo": `), 0644))
	_, err := Load(fs, path, nil)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, path, []byte(`{
		"stepsPerBeat": 0,
		"audio": {"sampleRate": -1, "blockSize": 0},
		"patterns": [],
		"midi": {"channel": 16},
		"drums": [{"name":"1"},{"name":"2"},{"name":"3"},{"name":"4"},{"name":"5"},{"name":"6"}]
	}`), 0644))

	cfg, err := Load(fs, path, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.StepsPerBeat)
	assert.Equal(t, AudioConfig{SampleRate: 44100, BlockSize: 128}, cfg.Audio)
	assert.Equal(t, -1, cfg.MIDI.Channel)
	assert.Len(t, cfg.Drums, sequencer.MaxDrums)
	assert.Equal(t, sequencer.DefaultPatternNames, cfg.Patterns)
}

func TestSaveThenLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := DefaultConfig()
	cfg.Tempo = 133
	cfg.Drums[1].Mute = true
	cfg.MIDI.InputPort = "pads"
	require.NoError(t, cfg.Save(fs, path))

	got, err := Load(fs, path, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestResolve(t *testing.T) {
	p, err := Resolve("/samples", "kick.wav")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/samples", "kick.wav"), p)

	p, err = Resolve("/samples", "/abs/kick.wav")
	require.NoError(t, err)
	assert.Equal(t, "/abs/kick.wav", p)

	home, err := homedir.Dir()
	require.NoError(t, err)
	p, err = Resolve("~/samples", "kick.wav")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "samples", "kick.wav"), p)

	cfg := DefaultConfig()
	cfg.PatternDir = "/pat"
	paths, err := cfg.PatternPaths()
	require.NoError(t, err)
	assert.Equal(t, []string{"/pat/pattern1.txt", "/pat/pattern2.txt", "/pat/pattern3.txt", "/pat/pattern4.txt"}, paths)
}

func TestFlagsOverrideFileAndEnv(t *testing.T) {
	t.Setenv("GOSAMPLER_TEMPO", "140")
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, path, []byte(`{"tempo": 96, "kit": "rd8"}`), 0644))

	flags := Flags()
	flags.String("config", "", "")
	require.NoError(t, flags.Parse([]string{"--tempo=150", "--midi.clockSync", "--config", path}))

	cfg, err := Load(fs, path, flags)
	require.NoError(t, err)
	assert.Equal(t, 150, cfg.Tempo)
	assert.True(t, cfg.MIDI.ClockSync)
	// Flags left at their defaults do not mask the file.
	assert.Equal(t, "rd8", cfg.Kit)
}
