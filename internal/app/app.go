package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/router"
	"github.com/TIMOVIS/mandarin-exam/internal/screen"
	"github.com/TIMOVIS/mandarin-exam/internal/screens/home"
	"github.com/TIMOVIS/mandarin-exam/internal/screens/welcome"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	Deps screen.Deps
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel starting at the sign-in screen.
func newAppModel(opts Options) AppModel {
	deps := opts.Deps
	root := welcome.New(deps.Profiles, func(p profile.Profile) screen.Screen {
		return home.New(deps, p)
	})
	return AppModel{
		router: router.New(root),
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if bh, ok := m.router.Active().(screen.BackHandler); ok && bh.HandlesBack() {
				break
			}
			switch {
			case m.router.Depth() == 2:
				// Back to home, which reloads the profile.
				return m, func() tea.Msg { return router.PopToRootMsg{} }
			case m.router.Depth() > 2:
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the header, active screen and footer.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	student, mastered := "", 0
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StudentProvider); ok {
			student, mastered = sp.Student()
		}
	}

	header := layout.RenderHeader(title, student, mastered, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if kp, ok := active.(screen.KeyHintProvider); ok {
		if hints := kp.KeyHints(); len(hints) > 0 {
			return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
