package roadmapview

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/roadmap"
	"github.com/TIMOVIS/mandarin-exam/internal/screen"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/components"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/layout"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/theme"
)

// PointDetailScreen shows details for a single learning point.
type PointDetailScreen struct {
	point roadmap.LearningPoint
}

var _ screen.Screen = (*PointDetailScreen)(nil)
var _ screen.KeyHintProvider = (*PointDetailScreen)(nil)

func newPointDetail(lp roadmap.LearningPoint) *PointDetailScreen {
	return &PointDetailScreen{point: lp}
}

func (d *PointDetailScreen) Init() tea.Cmd { return nil }
func (d *PointDetailScreen) Title() string { return d.point.Topic }

func (d *PointDetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	return d, nil
}

func (d *PointDetailScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (d *PointDetailScreen) View(width, height int) string {
	lp := d.point
	contentWidth := min(width-8, 70)

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render(fmt.Sprintf("  %s  %s", statusIcon(lp.Status), lp.Topic)))
	b.WriteString("\n")
	b.WriteString(theme.StatusStyle(lp.Status).
		PaddingLeft(2).
		Render(lp.Status.Label()))
	b.WriteString("\n\n")

	if lp.Description != "" {
		b.WriteString(lipgloss.NewStyle().
			Width(contentWidth).
			Foreground(theme.Text).
			PaddingLeft(2).
			Render(lp.Description))
		b.WriteString("\n\n")
	}

	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	valStyle := lipgloss.NewStyle().Foreground(theme.Text)

	b.WriteString(dimStyle.Render("  Skill:   ") + valStyle.Render(string(lp.Skill)) + "\n")
	b.WriteString(dimStyle.Render("  Stage:   ") + valStyle.Render(fmt.Sprintf("%d", lp.Stage)) + "\n")
	b.WriteString(dimStyle.Render("  Point:   ") + valStyle.Render(lp.ID) + "\n\n")

	bar := components.NewProgressBar("  Score", float64(lp.Score)/100, true, contentWidth)
	b.WriteString(bar.View())
	b.WriteString("\n")

	if lp.AppealActive {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.Accent).
			PaddingLeft(2).
			Render("Your tutor has been asked to review this point."))
		b.WriteString("\n")
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top,
		"\n"+b.String())
}
