package sampler

import (
	"encoding/binary"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(code RateCode, frames int, samples ...int16) []byte {
	out := make([]byte, HeaderSize+2*len(samples))
	binary.LittleEndian.PutUint32(out, uint32(code)<<24|uint32(frames))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[HeaderSize+2*i:], uint16(s))
	}
	return out
}

func TestParseSample(t *testing.T) {
	s, err := ParseSample("kick", payload(Rate22050, 3, 1, -2, 300, 99))
	require.NoError(t, err)
	assert.Equal(t, []int16{1, -2, 300}, s.Data, "frames beyond the header count are ignored")
	assert.Equal(t, 22050, s.Rate.SampleRate())
	assert.Equal(t, 3, s.Len())
}

func TestParseSampleErrors(t *testing.T) {
	_, err := ParseSample("short", []byte{1, 2})
	assert.True(t, errors.Is(err, ErrTruncatedSample))

	_, err = ParseSample("short", payload(Rate44100, 4, 1, 2))
	assert.True(t, errors.Is(err, ErrTruncatedSample))

	_, err = ParseSample("ulaw", payload(0x01, 1, 1))
	assert.True(t, errors.Is(err, ErrUnsupportedRate))

	_, err = ParseSample("empty", payload(Rate44100, 0))
	assert.True(t, errors.Is(err, ErrEmptySample))
}

func TestMarshalSample(t *testing.T) {
	s := &Sample{Name: "clap", Rate: Rate11025, Data: []int16{-32768, 0, 32767}}
	data, err := s.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, payload(Rate11025, 3, -32768, 0, 32767), data)
}

func TestLoadRawSample(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/samples/kick.raw", payload(Rate44100, 2, 5, 6), 0644))

	s, err := LoadSample(fs, "/samples/kick.raw")
	require.NoError(t, err)
	assert.Equal(t, "kick", s.Name)
	assert.Equal(t, []int16{5, 6}, s.Data)

	_, err = LoadSample(fs, "/samples/missing.raw")
	assert.Error(t, err)
}

func writeWAV(t *testing.T, fs afero.Fs, path string, rate, channels int, data []int) {
	f, err := fs.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

func TestLoadWAVSample(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeWAV(t, fs, "/samples/snare.wav", 44100, 2, []int{100, -1, -200, -1, 300, -1})

	s, err := LoadSample(fs, "/samples/snare.wav")
	require.NoError(t, err)
	assert.Equal(t, "snare", s.Name)
	assert.Equal(t, Rate44100, s.Rate)
	assert.Equal(t, []int16{100, -200, 300}, s.Data, "first channel only")
}

func TestLoadWAVUnsupportedRate(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeWAV(t, fs, "/samples/odd.wav", 48000, 1, []int{1, 2, 3})

	_, err := LoadSample(fs, "/samples/odd.wav")
	assert.True(t, errors.Is(err, ErrUnsupportedRate))
}

func TestLoadSampleSniffsWAV(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeWAV(t, fs, "/samples/rim.bin", 22050, 1, []int{7, 8})

	s, err := LoadSample(fs, "/samples/rim.bin")
	require.NoError(t, err)
	assert.Equal(t, Rate22050, s.Rate)
	assert.Equal(t, []int16{7, 8}, s.Data)
}
