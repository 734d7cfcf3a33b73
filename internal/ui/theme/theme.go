package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/roadmap"
)

// Color palette, exam-hall calm with a red accent
var (
	Primary   = lipgloss.Color("#DC2626") // Lantern Red
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Warning   = lipgloss.Color("#EAB308") // Yellow
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// StatusStyle colors a roadmap status.
func StatusStyle(s roadmap.Status) lipgloss.Style {
	switch s {
	case roadmap.StatusMastered:
		return lipgloss.NewStyle().Foreground(Success).Bold(true)
	case roadmap.StatusInProgress:
		return lipgloss.NewStyle().Foreground(Warning)
	case roadmap.StatusWeak:
		return lipgloss.NewStyle().Foreground(Error)
	case roadmap.StatusUnlocked:
		return lipgloss.NewStyle().Foreground(Secondary)
	default:
		return lipgloss.NewStyle().Foreground(TextDim)
	}
}
