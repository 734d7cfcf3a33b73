package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/capture"
	sess "github.com/TIMOVIS/mandarin-exam/internal/session"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/components"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/theme"
)

// renderQuestionView renders the active question display.
func (s *SessionScreen) renderQuestionView(width, height int) string {
	q := s.state.Current
	if q == nil {
		return renderLoading(width, height, "Preparing your next question...")
	}

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s · Stage %d · %s", q.Skill, max(q.Stage, skill.MinStage), q.Difficulty))

	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d/%d", s.state.Position+1, s.state.Total))

	infoLine := infoLeft
	if rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; rightPad > 0 {
		infoLine += strings.Repeat(" ", rightPad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")

	b.WriteString("  ")
	b.WriteString(s.renderTimer(width - 4))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	bodyWidth := min(width-8, 76)
	questionStyle := lipgloss.NewStyle().
		Width(bodyWidth).
		Foreground(theme.Text).
		Bold(true)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, questionStyle.Render(q.Content)))
	b.WriteString("\n\n")

	if q.AudioScript != "" {
		script := lipgloss.NewStyle().
			Width(bodyWidth).
			Foreground(theme.Accent).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1).
			Render("🔊 " + q.AudioScript)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, script))
		b.WriteString("\n\n")
	}

	b.WriteString(s.renderModeTabs(width))
	b.WriteString("\n\n")
	b.WriteString(s.renderInput(width))

	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Accent).
			Render(s.notice))
	}

	return b.String()
}

// renderTimer renders the countdown as a draining bar.
func (s *SessionScreen) renderTimer(width int) string {
	frac := 0.0
	if s.state.InitialTime > 0 {
		frac = float64(s.state.TimeLeft) / float64(s.state.InitialTime)
	}
	label := fmt.Sprintf("%d:%02d", s.state.TimeLeft/60, s.state.TimeLeft%60)
	bar := components.NewProgressBar(label, frac, false, width).View()
	if s.state.TimeLeft <= 10 {
		return lipgloss.NewStyle().Foreground(theme.Error).Render("⏱ ") + bar
	}
	return lipgloss.NewStyle().Foreground(theme.TextDim).Render("⏱ ") + bar
}

func (s *SessionScreen) renderModeTabs(width int) string {
	var tabs []string
	for _, m := range s.mode.Allowed() {
		label := modeLabel(m)
		if m == s.mode.Current() {
			tabs = append(tabs, theme.Selected.Render("["+label+"]"))
		} else {
			tabs = append(tabs, theme.Unselected.Foreground(theme.TextDim).Render(" "+label+" "))
		}
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(tabs, "  "))
}

func modeLabel(m capture.InputMode) string {
	switch m {
	case capture.InputAudio:
		return "Speak"
	case capture.InputImage:
		return "Photo"
	default:
		return "Type"
	}
}

func (s *SessionScreen) renderInput(width int) string {
	q := s.state.Current
	switch s.mode.Current() {
	case capture.InputAudio:
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderRecorder())
	case capture.InputImage:
		line := "Image: " + s.pathIn.View()
		if m, ok := s.picker.Media(); ok {
			line += "\n" + theme.Correct.Render("✓ "+capture.Describe(m))
		}
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, line)
	}

	if q.IsMultipleChoice() {
		block := s.choice.View() + "\n" + theme.Hint.Render("Select (1-4) or use arrows + Enter")
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render("Answer: " + s.input.View())
}

func (s *SessionScreen) renderRecorder() string {
	if s.recorder == nil {
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("No microphone configured.")
	}
	switch s.recorder.State() {
	case capture.RecorderRecording:
		return lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render("● REC  press Ctrl+R to stop")
	case capture.RecorderRecorded:
		return theme.Correct.Render("✓ Recording ready  Enter to submit, Ctrl+D to redo")
	default:
		return lipgloss.NewStyle().Foreground(theme.Text).Render("○ Press Ctrl+R to start recording")
	}
}

// renderFeedback renders the verdict for the last answer.
func (s *SessionScreen) renderFeedback(width, height int) string {
	o := s.last

	var b strings.Builder
	b.WriteString("\n\n")

	center := func(style lipgloss.Style, text string) {
		b.WriteString(style.Width(width).Align(lipgloss.Center).Render(text))
		b.WriteString("\n")
	}

	switch {
	case o.TimedOut:
		center(lipgloss.NewStyle().Foreground(theme.Error).Bold(true), "Time's up!")
	case o.Confidence == sess.None:
		center(lipgloss.NewStyle().Foreground(theme.TextDim).Bold(true), "Skipped")
	case o.Confidence == sess.Partial:
		center(lipgloss.NewStyle().Foreground(theme.Warning).Bold(true), "Marked as unsure")
	case o.IsCorrect:
		center(lipgloss.NewStyle().Foreground(theme.Success).Bold(true), "Correct! 对了!")
	default:
		center(lipgloss.NewStyle().Foreground(theme.Error).Bold(true), "Not quite")
	}
	center(lipgloss.NewStyle().Foreground(theme.TextDim), fmt.Sprintf("Score: %d/100", o.Score))
	b.WriteString("\n")

	if o.Feedback != "" {
		fb := lipgloss.NewStyle().
			Width(min(width-8, 70)).
			Foreground(theme.Text).
			Render(o.Feedback)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, fb))
		b.WriteString("\n\n")
	}

	if !o.IsCorrect && o.Question.CorrectAnswer != "" && o.Confidence == sess.Confident {
		center(lipgloss.NewStyle().Foreground(theme.TextDim), "Model answer: "+o.Question.CorrectAnswer)
		b.WriteString("\n")
	}

	center(lipgloss.NewStyle().Foreground(theme.TextDim), "Press any key to continue...")
	return b.String()
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("End session early?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Answers from an unfinished session are not saved."))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render("[Y] Yes, end session"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render("[N] No, keep going"))

	return b.String()
}

// renderLoading renders a waiting state.
func renderLoading(width, height int, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  " + text)
}

// renderError renders an error message.
func renderError(width, height int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}
