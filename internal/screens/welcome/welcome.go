package welcome

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/router"
	"github.com/TIMOVIS/mandarin-exam/internal/screen"
	"github.com/TIMOVIS/mandarin-exam/internal/store"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/components"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/layout"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	totalDur     = 1500 * time.Millisecond
)

const lanternArt = `    ╭─┴─╮
   ╭┤ 学 ├╮
   ╰┤   ├╯
    ╰─┬─╯
      ┊`

// sparkle frames cycle around the lantern
var sparkleFrames = []string{"★", "✦"}

type tickMsg time.Time

type step int

const (
	stepName step = iota
	stepAge
	stepLoading
)

// signedInMsg carries the loaded or newly created profile. A nil
// Profile without an error means the student does not exist yet.
type signedInMsg struct {
	Profile *profile.Profile
	Err     error
}

// WelcomeScreen plays a short splash and then signs the student in by
// name. Unknown names are asked for an age and get a fresh profile.
type WelcomeScreen struct {
	profiles    store.ProfileRepo
	homeFactory func(profile.Profile) screen.Screen

	elapsed   time.Duration
	tickCount int

	step     step
	name     string
	nameIn   components.TextInput
	ageIn    components.TextInput
	errMsg   string
	signedIn bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)
var _ screen.KeyHintProvider = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that will transition to the screen produced
// by homeFactory once the student is signed in.
func New(profiles store.ProfileRepo, homeFactory func(profile.Profile) screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		profiles:    profiles,
		homeFactory: homeFactory,
		nameIn:      components.NewTextInput("Your name", false, 40),
		ageIn:       components.NewTextInput("Your age", true, 3),
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	if w.step == stepLoading {
		return nil
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tea.Batch(tick(), w.nameIn.Init())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		if w.signedIn {
			return w, nil
		}
		return w, tick()

	case signedInMsg:
		return w.handleSignedIn(msg)

	case tea.KeyPressMsg:
		// Any key skips the splash.
		if w.elapsed < totalDur {
			w.elapsed = totalDur
			return w, nil
		}
		return w.handleKey(msg)
	}

	return w, nil
}

func (w *WelcomeScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	switch w.step {
	case stepName:
		if msg.String() == "enter" {
			name := strings.TrimSpace(w.nameIn.Value())
			if name == "" {
				w.errMsg = "Please enter your name."
				return w, nil
			}
			w.name = name
			w.errMsg = ""
			w.step = stepLoading
			return w, w.lookup(name)
		}
		w.nameIn, cmd = w.nameIn.Update(msg)
	case stepAge:
		if msg.String() == "enter" {
			age, err := w.ageIn.NumericValue()
			if err != nil || age <= 0 {
				w.errMsg = "Please enter your age as a number."
				return w, nil
			}
			w.errMsg = ""
			w.step = stepLoading
			return w, w.create(w.name, age)
		}
		w.ageIn, cmd = w.ageIn.Update(msg)
	}
	return w, cmd
}

// lookup loads an existing profile. A missing student moves on to the
// age prompt.
func (w *WelcomeScreen) lookup(name string) tea.Cmd {
	profiles := w.profiles
	return func() tea.Msg {
		p, err := profiles.Get(context.Background(), name)
		return signedInMsg{Profile: p, Err: err}
	}
}

func (w *WelcomeScreen) create(name string, age int) tea.Cmd {
	profiles := w.profiles
	return func() tea.Msg {
		p, err := profile.New(name, age)
		if err != nil {
			return signedInMsg{Err: err}
		}
		if err := profiles.Create(context.Background(), p); err != nil {
			return signedInMsg{Err: err}
		}
		return signedInMsg{Profile: &p}
	}
}

func (w *WelcomeScreen) handleSignedIn(msg signedInMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		w.step = stepName
		w.errMsg = "Could not sign in: " + msg.Err.Error()
		if errors.Is(msg.Err, store.ErrDuplicateName) {
			w.errMsg = "That name was just taken. Try signing in again."
		}
		return w, nil
	}
	if msg.Profile == nil {
		w.step = stepAge
		return w, w.ageIn.Init()
	}
	if w.signedIn {
		return w, nil
	}
	w.signedIn = true
	home := w.homeFactory(*msg.Profile)
	return w, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: home}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	rendered := lipgloss.NewStyle().Foreground(theme.Primary).Render(lanternArt)

	if w.elapsed >= phase1End {
		sparkle := sparkleFrames[w.tickCount%len(sparkleFrames)]
		s1 := lipgloss.NewStyle().Foreground(theme.Accent).Render(sparkle)
		s2 := lipgloss.NewStyle().Foreground(theme.Secondary).Render(sparkle)

		lines := strings.Split(rendered, "\n")
		if len(lines) > 2 {
			lines[1] = s1 + "  " + lines[1] + "  " + s2
			lines[2] = s2 + "  " + lines[2] + "  " + s1
		}
		rendered = strings.Join(lines, "\n")
	}
	sections = append(sections, rendered)

	if w.elapsed >= totalDur {
		sections = append(sections, "", RenderBanner(width), "")
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render("IGCSE Mandarin assessment"))
		sections = append(sections, "", w.renderForm())
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}

func (w *WelcomeScreen) renderForm() string {
	var b strings.Builder
	switch w.step {
	case stepName:
		b.WriteString(theme.Body.Render("What is your name?  "))
		b.WriteString(w.nameIn.View())
	case stepAge:
		b.WriteString(theme.Body.Render("Welcome, " + w.name + "! How old are you?  "))
		b.WriteString(w.ageIn.View())
	case stepLoading:
		b.WriteString(theme.Hint.Render("Signing in..."))
	}
	if w.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(w.errMsg))
	}
	return b.String()
}
