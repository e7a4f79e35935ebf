package engine

// UnityGain is the channel multiplier for a gain of 1.0.
const UnityGain = 256

// maxGain bounds channel gain in either direction.
const maxGain = 127

// Mixer sums int16 blocks from several channels, each with its own gain,
// saturating at the int16 range.
type Mixer struct {
	mults []int32
}

// NewMixer returns a mixer with every channel at unity.
func NewMixer(channels int) *Mixer {
	m := &Mixer{mults: make([]int32, channels)}
	for i := range m.mults {
		m.mults[i] = UnityGain
	}
	return m
}

// Channels returns the number of inputs.
func (m *Mixer) Channels() int {
	return len(m.mults)
}

// SetGain sets channel ch, clamped to +/-127. Unknown channels are ignored.
func (m *Mixer) SetGain(ch int, gain float32) {
	if ch < 0 || ch >= len(m.mults) {
		return
	}
	if gain < -maxGain {
		gain = -maxGain
	} else if gain > maxGain {
		gain = maxGain
	}
	m.mults[ch] = int32(gain * UnityGain)
}

// Gain returns the gain of channel ch.
func (m *Mixer) Gain(ch int) float32 {
	if ch < 0 || ch >= len(m.mults) {
		return 0
	}
	return float32(m.mults[ch]) / UnityGain
}

// Add mixes src into dst through channel ch.
func (m *Mixer) Add(dst, src []int16, ch int) {
	n := min(len(dst), len(src))
	mult := m.mults[ch]
	if mult == UnityGain {
		for i := 0; i < n; i++ {
			dst[i] = saturate(int32(dst[i]) + int32(src[i]))
		}
		return
	}
	for i := 0; i < n; i++ {
		dst[i] = saturate(int32(dst[i]) + (int32(src[i])*mult)>>8)
	}
}

func saturate(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
