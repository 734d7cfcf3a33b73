package app

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/router"
	"github.com/TIMOVIS/mandarin-exam/internal/screen"
	"github.com/TIMOVIS/mandarin-exam/internal/store"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/layout"
)

type nopProfiles struct{}

func (nopProfiles) Get(context.Context, string) (*profile.Profile, error) { return nil, nil }
func (nopProfiles) Save(context.Context, profile.Profile) error { return nil }
func (nopProfiles) Create(context.Context, profile.Profile) error { return nil }
func (nopProfiles) Delete(context.Context, string) error { return nil }
func (nopProfiles) Roster(context.Context) ([]store.RosterEntry, error) { return nil, nil }

// stubScreen is a minimal screen with optional back handling.
type stubScreen struct {
	title       string
	handlesBack bool
	got         []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd { return nil }
func (s *stubScreen) Title() string { return s.title }
func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) HandlesBack() bool { return s.handlesBack }
func (s *stubScreen) Student() (string, int) { return "Mei", 4 }
func (s *stubScreen) KeyHints() []layout.KeyHint { return []layout.KeyHint{{Key: "F1", Description: "Stub"}} }
func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}

func newTestModel() AppModel {
	return newAppModel(Options{Deps: screen.Deps{Profiles: nopProfiles{}}})
}

func escape() tea.KeyPressMsg { return tea.KeyPressMsg{Code: tea.KeyEscape} }

func TestStartsAtWelcome(t *testing.T) {
	m := newTestModel()
	if m.router.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", m.router.Depth())
	}
	if m.Init() == nil {
		t.Error("expected the welcome splash to start")
	}
}

func TestEscAtRootDoesNothing(t *testing.T) {
	m := newTestModel()
	_, cmd := m.Update(escape())
	if cmd != nil {
		t.Error("expected no command at root")
	}
}

func TestEscReturnsHome(t *testing.T) {
	m := newTestModel()
	m.router.Push(&stubScreen{title: "one"})

	_, cmd := m.Update(escape())
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Error("expected PopToRootMsg one level above home")
	}

	m.router.Push(&stubScreen{title: "two"})
	_, cmd = m.Update(escape())
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg deeper in the stack")
	}
}

func TestEscForwardedToBackHandler(t *testing.T) {
	m := newTestModel()
	s := &stubScreen{title: "session", handlesBack: true}
	m.router.Push(s)

	m.Update(escape())
	if len(s.got) != 1 {
		t.Fatalf("expected esc forwarded to the screen, got %d messages", len(s.got))
	}
}

func TestViewShowsStudentAndHints(t *testing.T) {
	m := newTestModel()
	m.router.Push(&stubScreen{title: "Roadmap"})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	content := updated.(AppModel).render()
	for _, want := range []string{"Mei", "4 mastered", "F1", "Stub"} {
		if !strings.Contains(content, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
