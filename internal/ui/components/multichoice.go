package components

import (
	"fmt"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector. Options are picked with the
// arrows and Enter, or directly with their number key.
type MultiChoice struct {
	Options     []string
	Selected    int
	Submitted   bool
	ChosenIndex int

	// CorrectIndex is revealed after submission; -1 when unknown.
	CorrectIndex int
}

// NewMultiChoice creates a selector. correct is the exact text of the
// right option, used only to color the revealed answer.
func NewMultiChoice(options []string, correct string) MultiChoice {
	m := MultiChoice{Options: options, ChosenIndex: -1, CorrectIndex: -1}
	for i, o := range options {
		if o == correct {
			m.CorrectIndex = i
			break
		}
	}
	return m
}

// Update handles keyboard navigation and selection.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		m.Submitted = true
		m.ChosenIndex = m.Selected
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(m.Options) {
			m.Selected = n - 1
			m.Submitted = true
			m.ChosenIndex = m.Selected
		}
	}

	return m, nil
}

// Chosen returns the picked option text.
func (m MultiChoice) Chosen() (string, bool) {
	if !m.Submitted || m.ChosenIndex < 0 || m.ChosenIndex >= len(m.Options) {
		return "", false
	}
	return m.Options[m.ChosenIndex], true
}

// Reset clears a submission so the student can pick again.
func (m MultiChoice) Reset() MultiChoice {
	m.Submitted = false
	m.ChosenIndex = -1
	return m
}

// View renders the options.
func (m MultiChoice) View() string {
	var s string
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}

		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt)

		switch {
		case m.Submitted && i == m.CorrectIndex:
			s += theme.Correct.Render(line) + "\n"
		case m.Submitted && i == m.ChosenIndex:
			s += theme.Incorrect.Render(line) + "\n"
		case m.Submitted:
			s += lipgloss.NewStyle().Foreground(theme.TextDim).Render(line) + "\n"
		case i == m.Selected:
			s += theme.Selected.Render(line) + "\n"
		default:
			s += theme.Unselected.Render(line) + "\n"
		}
	}
	return s
}
