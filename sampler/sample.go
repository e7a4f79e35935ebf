package sampler

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/h2non/filetype"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"go-sampler/debug"
)

// HeaderSize is the size of the little-endian payload header:
// low 24 bits frame count, high 8 bits rate code.
const HeaderSize = 4

// MaxFrames is the largest frame count the header can express.
const MaxFrames = 1<<24 - 1

var (
	ErrTruncatedSample = errors.New("sample payload shorter than its header says")
	ErrUnsupportedRate = errors.New("unsupported sample rate code")
	ErrEmptySample     = errors.New("sample has no frames")
)

// RateCode identifies the payload sample rate (16-bit PCM only).
type RateCode uint8

const (
	Rate44100 RateCode = 0x81
	Rate22050 RateCode = 0x82
	Rate11025 RateCode = 0x83
)

// SampleRate returns the rate in Hz, or 0 for an unknown code.
func (c RateCode) SampleRate() int {
	switch c {
	case Rate44100:
		return 44100
	case Rate22050:
		return 22050
	case Rate11025:
		return 11025
	}
	return 0
}

// RateCodeFor picks the code for a sample rate.
func RateCodeFor(hz int) (RateCode, error) {
	switch hz {
	case 44100:
		return Rate44100, nil
	case 22050:
		return Rate22050, nil
	case 11025:
		return Rate11025, nil
	}
	return 0, errors.Wrapf(ErrUnsupportedRate, "%d Hz", hz)
}

// Sample is an immutable PCM buffer shared by all voices of a drum.
type Sample struct {
	Name string
	Rate RateCode
	Data []int16
}

// Len returns the number of frames.
func (s *Sample) Len() int {
	return len(s.Data)
}

// ParseSample decodes a length-prefixed payload.
func ParseSample(name string, payload []byte) (*Sample, error) {
	if len(payload) < HeaderSize {
		return nil, errors.Wrapf(ErrTruncatedSample, "%s: no header", name)
	}
	header := binary.LittleEndian.Uint32(payload)
	frames := int(header & MaxFrames)
	rate := RateCode(header >> 24)

	if rate.SampleRate() == 0 {
		return nil, errors.Wrapf(ErrUnsupportedRate, "%s: code 0x%02X", name, uint8(rate))
	}
	if frames == 0 {
		return nil, errors.Wrap(ErrEmptySample, name)
	}
	body := payload[HeaderSize:]
	if len(body) < frames*2 {
		return nil, errors.Wrapf(ErrTruncatedSample, "%s: want %d frames, have %d", name, frames, len(body)/2)
	}

	data := make([]int16, frames)
	for i := range data {
		data[i] = int16(binary.LittleEndian.Uint16(body[i*2:]))
	}

	debug.Log("sample", "%s length:%d rate code:0x%02X", name, frames, uint8(rate))
	return &Sample{Name: name, Rate: rate, Data: data}, nil
}

// MarshalBinary encodes the sample as a length-prefixed payload.
func (s *Sample) MarshalBinary() ([]byte, error) {
	if len(s.Data) > MaxFrames {
		return nil, errors.Errorf("%s: %d frames exceed the header limit", s.Name, len(s.Data))
	}
	out := make([]byte, HeaderSize+2*len(s.Data))
	binary.LittleEndian.PutUint32(out, uint32(s.Rate)<<24|uint32(len(s.Data)))
	for i, v := range s.Data {
		binary.LittleEndian.PutUint16(out[HeaderSize+i*2:], uint16(v))
	}
	return out, nil
}

// LoadSample reads a drum sample from fs. WAV content is converted to the
// payload representation whatever the file is called; anything else is
// parsed as a raw payload.
func LoadSample(fs afero.Fs, path string) (*Sample, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read sample %s", path)
	}
	if filetype.Is(data, "wav") {
		return decodeWAV(data, path, name)
	}
	return ParseSample(name, data)
}

func decodeWAV(data []byte, path, name string) (*Sample, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, errors.Errorf("%s: not a valid WAV file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}

	rate, err := RateCodeFor(int(dec.SampleRate))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	frames := len(buf.Data) / channels
	if frames == 0 {
		return nil, errors.Wrap(ErrEmptySample, path)
	}
	if frames > MaxFrames {
		frames = MaxFrames
	}

	// Keep the first channel and rescale to 16 bits.
	shift := int(dec.BitDepth) - 16
	pcm := make([]int16, frames)
	for i := range pcm {
		v := buf.Data[i*channels]
		if dec.BitDepth == 8 {
			v -= 128 // 8-bit WAV is unsigned
		}
		switch {
		case shift > 0:
			v >>= shift
		case shift < 0:
			v <<= -shift
		}
		pcm[i] = int16(v)
	}

	debug.Log("sample", "%s (wav %d-bit %dch) length:%d rate code:0x%02X", name, dec.BitDepth, channels, frames, uint8(rate))
	return &Sample{Name: name, Rate: rate, Data: pcm}, nil
}
