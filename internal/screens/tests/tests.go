package tests

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/router"
	"github.com/TIMOVIS/mandarin-exam/internal/screen"
	sessionscreen "github.com/TIMOVIS/mandarin-exam/internal/screens/session"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/components"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/layout"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/theme"
)

// TestsScreen lets the student pick one of their pending assigned tests.
type TestsScreen struct {
	pending []profile.AssignedTest
	menu    components.Menu
}

var _ screen.Screen = (*TestsScreen)(nil)
var _ screen.KeyHintProvider = (*TestsScreen)(nil)

// New creates a TestsScreen listing the student's pending tests.
func New(deps screen.Deps, student profile.Profile) *TestsScreen {
	pending := student.PendingTests()
	items := make([]components.MenuItem, 0, len(pending))
	for _, t := range pending {
		items = append(items, components.MenuItem{
			Label: fmt.Sprintf("%s  (%d questions, assigned %s)",
				t.Title, len(t.Questions), t.CreatedAt.Format("Jan 02")),
			Disabled: len(t.Questions) == 0,
			Action: func() tea.Cmd {
				next := sessionscreen.NewPlanned(deps, student, t)
				return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
			},
		})
	}
	return &TestsScreen{pending: pending, menu: components.NewMenu(items)}
}

func (s *TestsScreen) Init() tea.Cmd { return nil }

func (s *TestsScreen) Title() string { return "Assigned Tests" }

func (s *TestsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *TestsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *TestsScreen) View(width, height int) string {
	if len(s.pending) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No tests assigned. Ask your tutor!")
	}

	var b strings.Builder
	b.WriteString(theme.Title.Width(width).Render("Choose a test"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.menu.View()))
	return b.String()
}
