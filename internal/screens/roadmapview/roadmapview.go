package roadmapview

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/roadmap"
	"github.com/TIMOVIS/mandarin-exam/internal/router"
	"github.com/TIMOVIS/mandarin-exam/internal/screen"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/layout"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/theme"
)

type rowKind int

const (
	rowStageHeader rowKind = iota
	rowPoint
)

type row struct {
	kind  rowKind
	stage int
	point int // index into RoadmapScreen.points
}

// appealedMsg carries the profile after an appeal was saved.
type appealedMsg struct {
	Profile profile.Profile
	Err     error
}

// RoadmapScreen lists the student's learning points grouped by stage.
type RoadmapScreen struct {
	deps    screen.Deps
	student profile.Profile

	rows         []row
	cursor       int
	scrollOffset int
	notice       string
}

var _ screen.Screen = (*RoadmapScreen)(nil)
var _ screen.KeyHintProvider = (*RoadmapScreen)(nil)

// New creates a RoadmapScreen for the student.
func New(deps screen.Deps, student profile.Profile) *RoadmapScreen {
	s := &RoadmapScreen{deps: deps, student: student}
	s.buildRows()
	return s
}

func (s *RoadmapScreen) buildRows() {
	s.rows = s.rows[:0]
	lastStage := 0
	for i, lp := range s.student.Points {
		if lp.Stage != lastStage {
			s.rows = append(s.rows, row{kind: rowStageHeader, stage: lp.Stage})
			lastStage = lp.Stage
		}
		s.rows = append(s.rows, row{kind: rowPoint, stage: lp.Stage, point: i})
	}
	if s.cursor == 0 || s.cursor >= len(s.rows) {
		s.cursor = 0
		s.moveCursor(1)
	}
}

func (s *RoadmapScreen) Init() tea.Cmd {
	return nil
}

func (s *RoadmapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case appealedMsg:
		if msg.Err != nil {
			s.notice = "Appeal failed: " + msg.Err.Error()
			return s, nil
		}
		s.student = msg.Profile
		s.buildRows()
		s.notice = "Appeal sent to your tutor."
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.moveCursor(-1)
		case "down", "j":
			s.moveCursor(1)
		case "tab":
			s.nextStage()
		case "shift+tab":
			s.prevStage()
		case "enter":
			return s, s.selectPoint()
		case "a":
			return s, s.appeal()
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *RoadmapScreen) View(width, height int) string {
	if len(s.rows) == 0 {
		return theme.Hint.Render("\n  No learning points yet.")
	}

	listHeight := height
	if s.notice != "" {
		listHeight -= 2
	}
	s.adjustScroll(listHeight)

	var lines []string
	visible := 0
	for i, r := range s.rows {
		if i < s.scrollOffset {
			continue
		}
		if visible >= listHeight {
			break
		}
		switch r.kind {
		case rowStageHeader:
			lines = append(lines, renderStageHeader(r.stage, width))
		case rowPoint:
			lines = append(lines, renderPointRow(s.student.Points[r.point], i == s.cursor, width))
		}
		visible++
	}

	if s.notice != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(theme.Accent).PaddingLeft(2).Render(s.notice))
	}
	return strings.Join(lines, "\n")
}

func (s *RoadmapScreen) Title() string {
	return "Roadmap"
}

// KeyHints returns the key binding hints for the footer.
func (s *RoadmapScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: "Stage"},
		{Key: "Enter", Description: "Details"},
		{Key: "A", Description: "Appeal"},
		{Key: "Esc", Description: "Back"},
	}
}

// moveCursor moves the cursor by delta, skipping stage headers.
func (s *RoadmapScreen) moveCursor(delta int) {
	next := s.cursor + delta
	for next >= 0 && next < len(s.rows) {
		if s.rows[next].kind == rowPoint {
			s.cursor = next
			return
		}
		next += delta
	}
}

// nextStage jumps the cursor to the first point of the next stage.
func (s *RoadmapScreen) nextStage() {
	current := s.rows[s.cursor].stage
	for i := s.cursor + 1; i < len(s.rows); i++ {
		if s.rows[i].kind == rowPoint && s.rows[i].stage != current {
			s.cursor = i
			return
		}
	}
}

// prevStage jumps the cursor to the first point of the previous stage.
func (s *RoadmapScreen) prevStage() {
	current := s.rows[s.cursor].stage
	target := -1
	for i := s.cursor - 1; i >= 0; i-- {
		if s.rows[i].kind == rowPoint && s.rows[i].stage != current {
			target = s.rows[i].stage
			break
		}
	}
	if target < 0 {
		return
	}
	for i, r := range s.rows {
		if r.kind == rowPoint && r.stage == target {
			s.cursor = i
			return
		}
	}
}

// adjustScroll ensures the cursor is visible within the viewport.
func (s *RoadmapScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	// Also show the stage header above the cursor if possible
	headerRow := s.cursor
	for headerRow > 0 && s.rows[headerRow-1].kind == rowStageHeader {
		headerRow--
	}

	if headerRow < s.scrollOffset {
		s.scrollOffset = headerRow
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func (s *RoadmapScreen) current() (roadmap.LearningPoint, bool) {
	if s.cursor < 0 || s.cursor >= len(s.rows) || s.rows[s.cursor].kind != rowPoint {
		return roadmap.LearningPoint{}, false
	}
	return s.student.Points[s.rows[s.cursor].point], true
}

// selectPoint opens the detail view for the point under the cursor.
func (s *RoadmapScreen) selectPoint() tea.Cmd {
	lp, ok := s.current()
	if !ok {
		return nil
	}
	detail := newPointDetail(lp)
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: detail}
	}
}

// appeal flags the point under the cursor and saves the profile.
func (s *RoadmapScreen) appeal() tea.Cmd {
	lp, ok := s.current()
	if !ok || s.deps.Profiles == nil {
		return nil
	}
	if lp.AppealActive {
		s.notice = "This point is already under review."
		return nil
	}
	profiles, student := s.deps.Profiles, s.student
	return func() tea.Msg {
		p, err := profile.AppealPoint(student, lp.ID)
		if err != nil {
			return appealedMsg{Err: err}
		}
		if err := profiles.Save(context.Background(), p); err != nil {
			return appealedMsg{Err: err}
		}
		return appealedMsg{Profile: p}
	}
}

// renderStageHeader renders a stage section header.
func renderStageHeader(stage int, width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Width(width).
		Padding(1, 0, 0, 2).
		Render(fmt.Sprintf("STAGE %d", stage))
}

// statusIcon returns the glyph shown beside a point.
func statusIcon(st roadmap.Status) string {
	switch st {
	case roadmap.StatusMastered:
		return "●"
	case roadmap.StatusInProgress:
		return "◐"
	case roadmap.StatusWeak:
		return "◌"
	case roadmap.StatusUnlocked:
		return "○"
	default:
		return "·"
	}
}

// renderPointRow renders a single learning point row.
func renderPointRow(lp roadmap.LearningPoint, selected bool, width int) string {
	padding := 4
	iconWidth := 3
	skillWidth := 11
	labelWidth := 12
	scoreWidth := 5
	spacing := 8
	nameWidth := width - padding - iconWidth - skillWidth - labelWidth - scoreWidth - spacing
	if nameWidth < 10 {
		nameWidth = 10
	}

	name := lp.Topic
	if lipgloss.Width(name) > nameWidth {
		r := []rune(name)
		name = string(r[:nameWidth-1]) + "…"
	}

	nameStyle := lipgloss.NewStyle().Foreground(theme.Text)
	skillStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	labelStyle := theme.StatusStyle(lp.Status)
	if selected {
		nameStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		skillStyle = lipgloss.NewStyle().Foreground(theme.Primary)
	}
	if lp.Status == roadmap.StatusLocked && !selected {
		nameStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	label := lp.Status.Label()
	if lp.AppealActive {
		label = "Appealed"
	}
	score := "   -"
	if lp.Status.Attempted() || lp.Score > 0 {
		score = fmt.Sprintf("%3d%%", lp.Score)
	}

	return fmt.Sprintf("  %s%s %s  %s  %s  %s",
		cursor,
		labelStyle.Render(statusIcon(lp.Status)),
		nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)),
		skillStyle.Render(fmt.Sprintf("%-*s", skillWidth, lp.Skill)),
		labelStyle.Render(fmt.Sprintf("%*s", labelWidth, label)),
		skillStyle.Render(score),
	)
}
