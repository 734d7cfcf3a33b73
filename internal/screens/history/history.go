package history

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/report"
	"github.com/TIMOVIS/mandarin-exam/internal/router"
	"github.com/TIMOVIS/mandarin-exam/internal/screen"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/layout"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/theme"
)

// HistoryScreen lists the student's answered questions, newest first.
type HistoryScreen struct {
	logs     []profile.AssessmentLog
	tests    map[string]string // test id → title
	selected int
	offset   int
	expanded map[int]bool
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(student profile.Profile) *HistoryScreen {
	tests := make(map[string]string, len(student.Tests))
	for _, t := range student.Tests {
		tests[t.ID] = t.Title
	}
	return &HistoryScreen{
		logs:     report.ForProfile(student).Logs,
		tests:    tests,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return nil
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.logs)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if len(s.logs) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No answers yet. Take your baseline assessment!")
	}

	// Keep the selection on screen; expanded rows take extra lines so
	// scrolling is approximate.
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if rows := max(height-2, 1); s.selected >= s.offset+rows {
		s.offset = s.selected - rows + 1
	}

	var b strings.Builder
	b.WriteString("\n")

	for i := s.offset; i < len(s.logs); i++ {
		l := s.logs[i]
		source := "Baseline"
		if title, ok := s.tests[l.TestID]; ok {
			source = title
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		mark := "✗"
		if l.Evaluation.IsCorrect {
			mark = "✓"
		}
		line := fmt.Sprintf("%s%s  %s  %-10s  %3d%%  %s",
			prefix, l.Timestamp.Format("Jan 02 15:04"), mark, l.Skill, l.Evaluation.Score, source)

		style := lipgloss.NewStyle().Foreground(scoreColor(l.Evaluation))
		if i == s.selected {
			style = style.Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(renderDetail(l, width))
		}
	}

	return b.String()
}

func renderDetail(l profile.AssessmentLog, width int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	val := lipgloss.NewStyle().Foreground(theme.Text).Width(min(width-20, 70))

	var b strings.Builder
	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.JoinHorizontal(lipgloss.Top, dim.Render(fmt.Sprintf("%-10s", label)), val.Render(value))))
		b.WriteString("\n")
	}
	field("Question", l.QuestionContent)
	field("Answer", l.StudentAnswer)
	field("Feedback", l.Evaluation.Feedback)
	if l.Evaluation.IsOverridden {
		field("Tutor", l.Evaluation.TutorFeedback)
	}
	b.WriteString("\n")
	return b.String()
}

func scoreColor(ev profile.Evaluation) color.Color {
	switch {
	case ev.IsOverridden:
		return theme.Accent
	case ev.IsCorrect:
		return theme.Success
	case ev.Score > 0:
		return theme.Warning
	default:
		return theme.Error
	}
}
