package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-sampler/sequencer"
	"go-sampler/theme"
)

// RenderPad renders a single coloured symbol
func RenderPad(color lipgloss.Color, symbol rune) string {
	return lipgloss.NewStyle().Foreground(color).Render(string(symbol))
}

// RenderVoicePads shows one pad per voice, lit while it sounds
func RenderVoicePads(th *theme.Theme, active, total int) string {
	var out strings.Builder
	for i := 0; i < total; i++ {
		if i < active {
			out.WriteString(RenderPad(th.Active(), th.Symbols.Solid))
		} else {
			out.WriteString(RenderPad(th.Muted(), th.Symbols.Empty))
		}
	}
	return out.String()
}

// RenderSteps renders one sequence across width columns. beat is the next
// beat to play; it is marked only while playing.
func RenderSteps(th *theme.Theme, row []sequencer.Trigger, beat, width int, playing bool) string {
	var out strings.Builder
	for i := 0; i < width; i++ {
		if i > 0 {
			out.WriteString(" ")
		}
		switch {
		case i >= len(row):
			out.WriteRune(th.Symbols.StepBeyond)
		case playing && i == beat:
			out.WriteString(RenderPad(th.Accent(), th.Symbols.StepPlayhead))
		case row[i].Empty():
			out.WriteString(RenderPad(th.Muted(), th.Symbols.StepEmpty))
		default:
			out.WriteString(RenderPad(th.Velocity(row[i].Velocity), th.Symbols.StepActive))
		}
	}
	return out.String()
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
