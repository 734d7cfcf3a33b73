package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/roadmap"
	"github.com/TIMOVIS/mandarin-exam/internal/router"
	"github.com/TIMOVIS/mandarin-exam/internal/screen"
	"github.com/TIMOVIS/mandarin-exam/internal/screens/history"
	"github.com/TIMOVIS/mandarin-exam/internal/screens/roadmapview"
	sessionscreen "github.com/TIMOVIS/mandarin-exam/internal/screens/session"
	"github.com/TIMOVIS/mandarin-exam/internal/screens/tests"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/components"
)

const (
	itemBaseline = iota
	itemTests
	itemRoadmap
	itemHistory
	itemExit
)

// profileLoadedMsg carries a fresh copy of the student after a session or
// a tutor edit.
type profileLoadedMsg struct {
	Profile *profile.Profile
	Err     error
}

// HomeScreen is the student dashboard.
type HomeScreen struct {
	deps    screen.Deps
	student profile.Profile

	menu       components.Menu
	menuLabels []string
	disabled   map[int]bool
	errMsg     string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.StudentProvider = (*HomeScreen)(nil)

// New creates a HomeScreen for the signed-in student.
func New(deps screen.Deps, student profile.Profile) *HomeScreen {
	h := &HomeScreen{
		deps:       deps,
		student:    student,
		menuLabels: []string{"START BASELINE", "TAKE ASSIGNED TEST", "ROADMAP", "HISTORY", "EXIT"},
	}
	h.buildMenu()
	return h
}

func (h *HomeScreen) buildMenu() {
	h.disabled = map[int]bool{
		itemBaseline: !h.deps.CanAssess(),
		itemTests:    !h.deps.CanAssess() || len(h.student.PendingTests()) == 0,
		itemHistory:  len(h.student.Logs) == 0,
	}

	push := func(s func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			next := s()
			return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}
	}

	items := []components.MenuItem{
		{Label: h.menuLabels[itemBaseline], Action: push(func() screen.Screen {
			return sessionscreen.NewBaseline(h.deps, h.student)
		})},
		{Label: h.menuLabels[itemTests], Action: push(func() screen.Screen {
			return tests.New(h.deps, h.student)
		})},
		{Label: h.menuLabels[itemRoadmap], Action: push(func() screen.Screen {
			return roadmapview.New(h.deps, h.student)
		})},
		{Label: h.menuLabels[itemHistory], Action: push(func() screen.Screen {
			return history.New(h.student)
		})},
		{Label: h.menuLabels[itemExit], Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	for i := range items {
		items[i].Disabled = h.disabled[i]
	}

	selected := h.menu.Selected
	h.menu = components.NewMenu(items)
	if selected > 0 && selected < len(items) && !items[selected].Disabled {
		h.menu.Selected = selected
	}
}

// Init reloads the student so results saved by other screens show up
// when the dashboard becomes active again.
func (h *HomeScreen) Init() tea.Cmd {
	if h.deps.Profiles == nil {
		return nil
	}
	profiles, name := h.deps.Profiles, h.student.Name
	return func() tea.Msg {
		p, err := profiles.Get(context.Background(), name)
		return profileLoadedMsg{Profile: p, Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(profileLoadedMsg); ok {
		switch {
		case msg.Err != nil:
			h.errMsg = msg.Err.Error()
		case msg.Profile != nil:
			h.student = *msg.Profile
			h.errMsg = ""
			h.buildMenu()
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := termHeight < 30 || width < 100

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(h.student.Name, cw, compact))
	sections = append(sections, renderStatsBar(countStatuses(h.student.Points), len(h.student.PendingTests()), cw, compact))

	if !h.deps.CanAssess() {
		sections = append(sections, renderLLMBanner(cw))
	}
	if h.errMsg != "" {
		sections = append(sections, renderError(h.errMsg, cw))
	}

	if compact {
		sections = append(sections, renderMenuCompact(h.menuLabels, h.menu.Selected, cw, h.disabled))
	} else {
		sections = append(sections, renderMenu(h.menuLabels, h.menu.Selected, cw, h.disabled))
	}

	return components.CabinetFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) Student() (string, int) {
	return h.student.Name, screen.Mastered(h.student)
}

// statusCounts tallies learning points by status.
type statusCounts struct {
	Mastered   int
	InProgress int
	Weak       int
}

func countStatuses(points []roadmap.LearningPoint) statusCounts {
	var c statusCounts
	for _, lp := range points {
		switch lp.Status {
		case roadmap.StatusMastered:
			c.Mastered++
		case roadmap.StatusInProgress:
			c.InProgress++
		case roadmap.StatusWeak:
			c.Weak++
		}
	}
	return c
}
