package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/roadmap"
	"github.com/TIMOVIS/mandarin-exam/internal/router"
	"github.com/TIMOVIS/mandarin-exam/internal/screen"
	"github.com/TIMOVIS/mandarin-exam/internal/session"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/components"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/layout"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/theme"
)

// SummaryScreen displays the session summary.
type SummaryScreen struct {
	summary session.Summary
	title   string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen for a finished session.
func New(sum session.Summary, title string) *SummaryScreen {
	return &SummaryScreen{summary: sum, title: title}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			// Home reloads the profile on Init.
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	center := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), "Session complete! 完成了!"))
	b.WriteString("\n")
	if s.title != "" {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), s.title))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	statsLine := fmt.Sprintf("Questions: %d        Correct: %d        Accuracy: %.0f%%",
		sum.TotalQuestions, sum.TotalCorrect, sum.Accuracy*100)
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text), statsLine))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(min(width-8, 60), 0)))
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), "Skills"))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	barWidth := min(width-8, 60)
	thresholds := roadmap.DefaultThresholds()
	for _, sr := range sum.SkillResults {
		status := thresholds.StatusFor(sr.Percent)
		label := fmt.Sprintf("  %-10s %d/%d correct", string(sr.Skill), sr.Correct, sr.Attempted)
		if sr.Attempted == 0 {
			label = fmt.Sprintf("  %-10s not attempted", string(sr.Skill))
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Width(barWidth).Render(
				label+"  "+theme.StatusStyle(status).Render(status.Label()))))
		b.WriteString("\n")

		bar := components.NewProgressBar("", float64(sr.Percent)/100, true, barWidth)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n")
	}

	if len(sum.SkillResults) == 0 {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), "No answers were recorded."))
		b.WriteString("\n")
	}
	return b.String()
}
