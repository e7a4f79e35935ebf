package engine

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/spf13/afero"

	"go-sampler/debug"
	"go-sampler/sampler"
	"go-sampler/sequencer"
)

const (
	DefaultSampleRate   = 44100
	DefaultBlockSize    = 128
	DefaultTempo        = 120
	DefaultStepsPerBeat = 4

	MinTempo = 20
	MaxTempo = 300
)

// Options configures a Manager.
type Options struct {
	SampleRate   int
	BlockSize    int
	Tempo        int
	StepsPerBeat int
}

// DefaultOptions returns 44.1kHz output, 128-frame blocks, 120 BPM in 16ths.
func DefaultOptions() Options {
	return Options{
		SampleRate:   DefaultSampleRate,
		BlockSize:    DefaultBlockSize,
		Tempo:        DefaultTempo,
		StepsPerBeat: DefaultStepsPerBeat,
	}
}

// State is a snapshot of playback for the UI.
type State struct {
	Playing       bool
	Tempo         int
	Step          int
	Current       int
	Pending       int
	NumPatterns   int
	PatternName   string
	Rows          [][]sequencer.Trigger // triggers of each sequence in the current pattern
	Beats         []int                 // beat of each sequence in the current pattern
	ActiveVoices  []int                 // sounding voices per drum
	Gains         []float32
	Muted         []bool
	Interpolation sampler.Interpolation
}

// Manager owns the drums and the pattern set and serialises the sequencer
// clock against audio rendering and live triggers.
type Manager struct {
	mu sync.Mutex

	drums    []*sampler.Drum
	gains    []float32
	muted    []bool
	patterns *sequencer.PatternSet
	mixer    *Mixer
	interp   sampler.Interpolation

	sampleRate    int
	tempo         int
	stepsPerBeat  int
	playing       bool
	externalClock bool
	step          int

	block   []int16
	scratch []int16
	out     []byte
	outPos  int

	stopChan chan struct{}

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager wires drums and patterns to an output mixer. Drum i is fed by
// row i of every pattern.
func NewManager(drums []*sampler.Drum, patterns *sequencer.PatternSet, opts Options) *Manager {
	def := DefaultOptions()
	if opts.SampleRate <= 0 {
		opts.SampleRate = def.SampleRate
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = def.BlockSize
	}
	if opts.StepsPerBeat <= 0 {
		opts.StepsPerBeat = def.StepsPerBeat
	}
	if opts.Tempo == 0 {
		opts.Tempo = def.Tempo
	}
	if patterns == nil {
		patterns = sequencer.NewPatternSet()
	}

	m := &Manager{
		drums:        drums,
		gains:        make([]float32, len(drums)),
		muted:        make([]bool, len(drums)),
		patterns:     patterns,
		mixer:        NewMixer(len(drums) * sampler.NumVoicesPerDrum),
		sampleRate:   opts.SampleRate,
		tempo:        clampTempo(opts.Tempo),
		stepsPerBeat: opts.StepsPerBeat,
		block:        make([]int16, opts.BlockSize),
		scratch:      make([]int16, opts.BlockSize),
		out:          make([]byte, 2*opts.BlockSize),
		UpdateChan:   make(chan struct{}, 1),
	}
	m.outPos = len(m.out)
	for i := range drums {
		m.gains[i] = 1
		m.applyGain(i)
	}
	return m
}

// SequencerDrums adapts drums for PatternSet.Load.
func SequencerDrums(drums []*sampler.Drum) []sequencer.Drum {
	out := make([]sequencer.Drum, len(drums))
	for i, d := range drums {
		out[i] = d
	}
	return out
}

func (m *Manager) Drums() []*sampler.Drum { return m.drums }
func (m *Manager) SampleRate() int        { return m.sampleRate }
func (m *Manager) BlockSize() int         { return len(m.block) }

// Tick advances the sequencer one step.
func (m *Manager) Tick() {
	m.mu.Lock()
	from, to := m.tick()
	m.mu.Unlock()
	logSwitch(from, to)
	m.notifyUpdate()
}

// tick steps the sequencer and reports the current pattern before and
// after. Callers hold m.mu and log only after releasing it.
func (m *Manager) tick() (from, to int) {
	from = m.patterns.CurrentPattern()
	m.patterns.Clock()
	m.step++
	return from, m.patterns.CurrentPattern()
}

func logSwitch(from, to int) {
	if from != to {
		debug.Log("pattern", "Switch %d -> %d", from, to)
	}
}

// Trigger plays drum di immediately, outside the sequencer.
func (m *Manager) Trigger(di, pitch int, gain float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if di < 0 || di >= len(m.drums) {
		return
	}
	m.drums[di].Trigger(pitch, gain)
}

// Audition plays drum di at its unity pitch.
func (m *Manager) Audition(di int, gain float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if di < 0 || di >= len(m.drums) {
		return
	}
	d := m.drums[di]
	d.Trigger(d.Player().Centre(), gain)
}

// RenderBlock mixes every sounding voice into out.
func (m *Manager) RenderBlock(out []int16) {
	m.mu.Lock()
	m.render(out)
	m.mu.Unlock()
}

func (m *Manager) render(out []int16) {
	for len(out) > 0 {
		n := min(len(out), len(m.scratch))
		chunk := out[:n]
		clear(chunk)
		for di, d := range m.drums {
			if m.muted[di] {
				d.Stop()
				continue
			}
			for vi := 0; vi < sampler.NumVoicesPerDrum; vi++ {
				v := d.Voice(vi)
				if !v.Playing() {
					continue
				}
				v.Render(m.scratch[:n])
				m.mixer.Add(chunk, m.scratch[:n], di*sampler.NumVoicesPerDrum+vi)
			}
		}
		out = out[n:]
	}
}

// Read streams the mix as mono signed 16-bit little-endian PCM. It never
// returns an error; silence is produced while nothing plays.
func (m *Manager) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for n < len(p) {
		if m.outPos == len(m.out) {
			m.render(m.block)
			for i, s := range m.block {
				binary.LittleEndian.PutUint16(m.out[2*i:], uint16(s))
			}
			m.outPos = 0
		}
		c := copy(p[n:], m.out[m.outPos:])
		n += c
		m.outPos += c
	}
	return n, nil
}

// Play starts playback from the top of the current pattern, going back to
// the top even when already playing. Unless an external clock drives Tick,
// a clock goroutine steps the sequencer.
func (m *Manager) Play() {
	m.start(true)
}

// Continue resumes playback from the current beat.
func (m *Manager) Continue() {
	m.start(false)
}

func (m *Manager) start(rewind bool) {
	m.mu.Lock()
	if rewind {
		m.step = 0
		m.patterns.Rewind()
	}
	if m.playing {
		m.mu.Unlock()
		m.notifyUpdate()
		return
	}
	m.playing = true
	external := m.externalClock
	if !external {
		m.stopChan = make(chan struct{})
		go m.clockLoop(m.stopChan)
	}
	m.mu.Unlock()

	debug.Log("clock", "Play tempo=%d external=%v rewind=%v", m.Tempo(), external, rewind)
	m.notifyUpdate()
}

// Rewind returns to the top of the first pattern.
func (m *Manager) Rewind() {
	m.mu.Lock()
	m.step = 0
	m.patterns.Reset()
	m.mu.Unlock()
	m.notifyUpdate()
}

// Stop halts playback and silences every drum.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.playing {
		m.mu.Unlock()
		return
	}
	m.playing = false
	if m.stopChan != nil {
		close(m.stopChan)
		m.stopChan = nil
	}
	for _, d := range m.drums {
		d.Stop()
	}
	m.mu.Unlock()

	debug.Log("clock", "Stop")
	m.notifyUpdate()
}

// Playing reports whether the sequencer is running.
func (m *Manager) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// SetExternalClock hands stepping to an outside source such as MIDI clock.
// It takes effect on the next Play.
func (m *Manager) SetExternalClock(on bool) {
	m.mu.Lock()
	m.externalClock = on
	m.mu.Unlock()
}

// clockLoop ticks once per step until stop is closed. Deadlines follow an
// absolute schedule from the first step.
func (m *Manager) clockLoop(stop chan struct{}) {
	next := time.Now()
	for {
		// Stop may have won the lock.
		m.mu.Lock()
		select {
		case <-stop:
			m.mu.Unlock()
			return
		default:
		}
		from, to := m.tick()
		m.mu.Unlock()
		logSwitch(from, to)
		m.notifyUpdate()

		next = next.Add(m.StepDuration())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// SetTempo sets the BPM
func (m *Manager) SetTempo(bpm int) {
	m.mu.Lock()
	m.tempo = clampTempo(bpm)
	m.mu.Unlock()
	m.notifyUpdate()
}

// Tempo returns the BPM.
func (m *Manager) Tempo() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tempo
}

func clampTempo(bpm int) int {
	if bpm < MinTempo {
		return MinTempo
	}
	if bpm > MaxTempo {
		return MaxTempo
	}
	return bpm
}

// StepsPerBeat returns how many sequencer steps make one beat.
func (m *Manager) StepsPerBeat() int {
	return m.stepsPerBeat
}

// StepDuration is the wall-clock length of one step at the current tempo.
func (m *Manager) StepDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Minute / time.Duration(m.tempo*m.stepsPerBeat)
}

// SamplesPerStep is the number of output frames in one step.
func (m *Manager) SamplesPerStep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sampleRate * 60 / (m.tempo * m.stepsPerBeat)
}

// GetState returns the current sequencer state
func (m *Manager) GetState() (step int, playing bool, tempo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step, m.playing, m.tempo
}

// Snapshot copies everything the UI draws.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := State{
		Playing:       m.playing,
		Tempo:         m.tempo,
		Step:          m.step,
		Current:       m.patterns.CurrentPattern(),
		Pending:       m.patterns.PendingPattern(),
		NumPatterns:   m.patterns.NumPatterns(),
		ActiveVoices:  make([]int, len(m.drums)),
		Gains:         append([]float32(nil), m.gains...),
		Muted:         append([]bool(nil), m.muted...),
		Interpolation: m.interp,
	}
	if st.NumPatterns > 0 {
		p := m.patterns.Pattern(st.Current)
		st.PatternName = p.Name()
		st.Rows = make([][]sequencer.Trigger, p.NumSequences())
		st.Beats = make([]int, p.NumSequences())
		for i := range st.Beats {
			seq := p.Sequence(i)
			st.Rows[i] = append([]sequencer.Trigger(nil), seq.Triggers()...)
			st.Beats[i] = seq.Beat()
		}
	}
	for i, d := range m.drums {
		st.ActiveVoices[i] = d.ActiveVoices()
	}
	return st
}

// PatternText returns the grid text of pattern i.
func (m *Manager) PatternText(i int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= m.patterns.NumPatterns() {
		return ""
	}
	return m.patterns.Pattern(i).String()
}

// LoopLength returns the loop length of pattern i, or 0 if it is not loaded.
func (m *Manager) LoopLength(i int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= m.patterns.NumPatterns() {
		return 0
	}
	return m.patterns.Pattern(i).LoopLength()
}

// NumPatterns returns how many patterns are loaded.
func (m *Manager) NumPatterns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.patterns.NumPatterns()
}

// AdvancePattern queues the next pattern in the rotation.
func (m *Manager) AdvancePattern() {
	m.mu.Lock()
	m.patterns.AdvancePendingPattern()
	m.mu.Unlock()
	m.notifyUpdate()
}

// QueuePattern queues pattern i for the next boundary.
func (m *Manager) QueuePattern(i int) bool {
	m.mu.Lock()
	ok := m.patterns.QueuePattern(i)
	m.mu.Unlock()
	m.notifyUpdate()
	return ok
}

// SaveSnapshot stores the loaded patterns under dir.
func (m *Manager) SaveSnapshot(fs afero.Fs, dir, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sequencer.SaveSnapshot(fs, dir, m.patterns, name, time.Now())
}

// SetInterpolation switches every voice of every drum.
func (m *Manager) SetInterpolation(mode sampler.Interpolation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interp = mode
	for _, d := range m.drums {
		d.SetInterpolation(mode)
	}
}

// SetDrumGain sets the level of drum di; each voice mixes at an equal share.
func (m *Manager) SetDrumGain(di int, gain float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if di < 0 || di >= len(m.drums) {
		return
	}
	m.gains[di] = gain
	m.applyGain(di)
}

// DrumGain returns the level of drum di.
func (m *Manager) DrumGain(di int) float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if di < 0 || di >= len(m.drums) {
		return 0
	}
	return m.gains[di]
}

func (m *Manager) applyGain(di int) {
	for vi := 0; vi < sampler.NumVoicesPerDrum; vi++ {
		m.mixer.SetGain(di*sampler.NumVoicesPerDrum+vi, m.gains[di]*sampler.VoiceMix())
	}
}

// SetMuted mutes or unmutes drum di.
func (m *Manager) SetMuted(di int, muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if di < 0 || di >= len(m.drums) {
		return
	}
	m.muted[di] = muted
	if muted {
		m.drums[di].Stop()
	}
}

// Muted reports whether drum di is muted.
func (m *Manager) Muted(di int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return di >= 0 && di < len(m.muted) && m.muted[di]
}

// notifyUpdate wakes the TUI without blocking.
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
