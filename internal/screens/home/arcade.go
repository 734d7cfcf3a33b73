package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/ui/theme"
)

const titleFull = `╭──────────────────────────────╮
│   汉 语   M A N D A R I N   │
╰──────────────────────────────╯`

const titleCompact = "汉语 · MANDARIN"

// renderTitle returns the styled title block with a greeting.
func renderTitle(student string, cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Accent).
		Bold(true)

	title := titleFull
	if compact {
		title = titleCompact
	}
	greeting := lipgloss.NewStyle().
		Foreground(theme.Text).
		Render(fmt.Sprintf("你好, %s!", student))

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title) + "\n\n" + greeting)
}

// renderStatsBar renders the roadmap counts in a bordered box matching
// content width.
func renderStatsBar(c statusCounts, pending, cw int, compact bool) string {
	masteredStyle := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	progressStyle := lipgloss.NewStyle().Foreground(theme.Warning).Bold(true)
	weakStyle := lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
	testStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s %s",
			masteredStyle.Render(fmt.Sprintf("✓%d", c.Mastered)),
			progressStyle.Render(fmt.Sprintf("~%d", c.InProgress)),
			weakStyle.Render(fmt.Sprintf("!%d", c.Weak)),
			testText(pending, true, testStyle, dimStyle),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s  %s",
			masteredStyle.Render(fmt.Sprintf("✓ %d MASTERED", c.Mastered)),
			progressStyle.Render(fmt.Sprintf("~ %d IN PROGRESS", c.InProgress)),
			weakStyle.Render(fmt.Sprintf("! %d WEAK", c.Weak)),
			testText(pending, false, testStyle, dimStyle),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2). // account for border chars
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

func testText(pending int, compact bool, active, dim lipgloss.Style) string {
	if pending == 0 {
		if compact {
			return dim.Render("✎0")
		}
		return dim.Render("✎ NO TESTS")
	}
	if compact {
		return active.Render(fmt.Sprintf("✎%d", pending))
	}
	return active.Render(fmt.Sprintf("✎ %d TESTS", pending))
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 24

// renderMenu renders each menu item as a fixed-width button.
func renderMenu(items []string, selected int, cw int, disabled map[int]bool) string {
	selectedBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(theme.BgDark).
		Background(theme.Accent).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Accent).
		Padding(0, 1)

	normalBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	disabledBtn := normalBtn.Foreground(theme.TextDim)

	var buttons []string
	for i, label := range items {
		switch {
		case disabled[i]:
			buttons = append(buttons, disabledBtn.Render(label))
		case i == selected:
			buttons = append(buttons, selectedBtn.Render("▸ "+label))
		default:
			buttons = append(buttons, normalBtn.Render(label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderMenuCompact renders menu items as simple text lines (no borders)
// for very small terminals where bordered buttons would overflow.
func renderMenuCompact(items []string, selected int, cw int, disabled map[int]bool) string {
	var lines []string
	for i, label := range items {
		var line string
		switch {
		case disabled[i]:
			line = lipgloss.NewStyle().
				Foreground(theme.TextDim).
				Render("   " + label)
		case i == selected:
			line = lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.Accent).
				Bold(true).
				Render(" ▸ " + label + " ")
		default:
			line = lipgloss.NewStyle().
				Foreground(theme.Text).
				Render("   " + label)
		}
		lines = append(lines, line)
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderLLMBanner renders a warning banner when no LLM API key is configured.
func renderLLMBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ Set an LLM API key to take assessments (see mandarin --help)")
}

func renderError(msg string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Error).
		Width(cw).
		Align(lipgloss.Center).
		Render(msg)
}
