package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"

	"go-sampler/engine"
	"go-sampler/midi"
	"go-sampler/sampler"
	"go-sampler/sequencer"
	"go-sampler/theme"
	"go-sampler/widgets"
)

const (
	tempoStep = 5
	gainStep  = 0.1
)

var keyHelp = []widgets.KeySection{
	{Title: "Transport", Keys: []widgets.KeyBinding{
		{Key: "p, space", Desc: "play / stop"},
		{Key: "+ / -", Desc: "tempo"},
		{Key: "n", Desc: "queue next pattern"},
		{Key: "z x c v", Desc: "queue pattern 1-4"},
	}},
	{Title: "Drums", Keys: []widgets.KeyBinding{
		{Key: "1-5", Desc: "audition drum"},
		{Key: "j / k", Desc: "select drum"},
		{Key: "m", Desc: "mute selected"},
		{Key: "[ / ]", Desc: "gain of selected"},
		{Key: "i", Desc: "cubic / linear interpolation"},
	}},
	{Title: "Patterns", Keys: []widgets.KeyBinding{
		{Key: "s", Desc: "save snapshot"},
	}},
	{Keys: []widgets.KeyBinding{
		{Key: "?", Desc: "help"},
		{Key: "q", Desc: "quit"},
	}},
}

var patternKeys = map[string]int{"z": 0, "x": 1, "c": 2, "v": 3}

type Model struct {
	Manager *engine.Manager
	Watcher *midi.InputWatcher // nil without MIDI
	Theme   *theme.Theme

	// Snapshots are saved here with "s"; empty SnapshotDir disables saving
	FS          afero.Fs
	SnapshotDir string

	selected int
	message  string
	port     string
	showHelp bool
	quitting bool
}

type UpdateMsg struct{}

type PortEventMsg midi.PortEvent

func NewModel(manager *engine.Manager, watcher *midi.InputWatcher, th *theme.Theme) Model {
	m := Model{
		Manager: manager,
		Watcher: watcher,
		Theme:   th,
	}
	if watcher != nil {
		m.port = watcher.Connected()
	}
	return m
}

func ListenForUpdates(manager *engine.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForPorts(watcher *midi.InputWatcher) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-watcher.Events()
		if !ok {
			return nil
		}
		return PortEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Manager)}
	if m.Watcher != nil {
		cmds = append(cmds, ListenForPorts(m.Watcher))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case PortEventMsg:
		if msg.Type == midi.PortConnected {
			m.port = msg.Name
		} else if msg.Name == m.port {
			m.port = ""
		}
		return m, ListenForPorts(m.Watcher)
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	numDrums := len(m.Manager.Drums())

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.Manager.Stop()
		return m, tea.Quit

	case "p", " ":
		if m.Manager.Playing() {
			m.Manager.Stop()
		} else {
			m.Manager.Play()
		}

	case "+", "=":
		m.Manager.SetTempo(m.Manager.Tempo() + tempoStep)

	case "-", "_":
		m.Manager.SetTempo(m.Manager.Tempo() - tempoStep)

	case "n":
		m.Manager.AdvancePattern()

	case "z", "x", "c", "v":
		m.Manager.QueuePattern(patternKeys[key])

	case "1", "2", "3", "4", "5":
		m.Manager.Audition(int(key[0]-'1'), 1)

	case "j", "down":
		if m.selected < numDrums-1 {
			m.selected++
		}

	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}

	case "m":
		m.Manager.SetMuted(m.selected, !m.Manager.Muted(m.selected))

	case "[", "]":
		gain := m.Manager.DrumGain(m.selected)
		if key == "[" {
			gain -= gainStep
		} else {
			gain += gainStep
		}
		m.Manager.SetDrumGain(m.selected, min(max(gain, 0), 1))

	case "i":
		if m.Manager.Snapshot().Interpolation == sampler.Cubic {
			m.Manager.SetInterpolation(sampler.Linear)
		} else {
			m.Manager.SetInterpolation(sampler.Cubic)
		}

	case "s":
		if m.FS == nil || m.SnapshotDir == "" {
			m.message = "snapshots disabled"
			break
		}
		snap, err := m.Manager.SaveSnapshot(m.FS, m.SnapshotDir, "")
		if err != nil {
			m.message = err.Error()
		} else {
			m.message = "saved " + snap
		}

	case "?":
		m.showHelp = !m.showHelp
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.Manager.Snapshot()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())
	selStyle := lipgloss.NewStyle().Foreground(m.Theme.FG()).Bold(true)

	playState := "STOP"
	if st.Playing {
		playState = "PLAY"
	}
	midiStatus := ""
	if m.port != "" {
		midiStatus = "  MIDI:" + m.port
	}
	header := headerStyle.Render(fmt.Sprintf("go-sampler  %s  %3dbpm  step:%04d  %s%s",
		playState, st.Tempo, st.Step, st.Interpolation, midiStatus))

	var patternLine string
	if st.NumPatterns == 0 {
		patternLine = warnStyle.Render("no patterns loaded")
	} else {
		patternLine = fmt.Sprintf("pattern %d/%d %s", st.Current+1, st.NumPatterns, st.PatternName)
		if st.Pending != st.Current {
			patternLine += dimStyle.Render(fmt.Sprintf("  next: %d", st.Pending+1))
		}
	}

	var grid strings.Builder
	drums := m.Manager.Drums()
	for i, d := range drums {
		name := fmt.Sprintf("%-10.10s", d.Name)
		if i == m.selected {
			name = selStyle.Render(name)
		} else {
			name = dimStyle.Render(name)
		}

		var steps string
		if i < len(st.Rows) {
			steps = widgets.RenderSteps(m.Theme, st.Rows[i], st.Beats[i], sequencer.MaxSequenceSize, st.Playing)
		} else {
			steps = widgets.RenderSteps(m.Theme, nil, 0, sequencer.MaxSequenceSize, false)
		}

		level := fmt.Sprintf("%3.0f%%", st.Gains[i]*100)
		if st.Muted[i] {
			level = warnStyle.Render("mute")
		}

		fmt.Fprintf(&grid, "%d %s %s  %s %s\n", i+1, name, steps,
			widgets.RenderVoicePads(m.Theme, st.ActiveVoices[i], sampler.NumVoicesPerDrum), level)
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(patternLine)
	out.WriteString("\n\n")
	out.WriteString(grid.String())
	out.WriteString("\n")
	if m.message != "" {
		out.WriteString(dimStyle.Render(m.message))
		out.WriteString("\n")
	}
	if m.showHelp {
		out.WriteString(widgets.RenderKeyHelp(keyHelp))
	} else {
		out.WriteString(dimStyle.Render("p:play  n:next  1-5:audition  j/k:select  m:mute  i:interp  ?:help  q:quit"))
	}

	return out.String()
}
