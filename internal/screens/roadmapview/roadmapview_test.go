package roadmapview

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/router"
	"github.com/TIMOVIS/mandarin-exam/internal/screen"
	"github.com/TIMOVIS/mandarin-exam/internal/store"
)

type savingRepo struct {
	saved []profile.Profile
}

func (r *savingRepo) Get(context.Context, string) (*profile.Profile, error) { return nil, nil }
func (r *savingRepo) Save(_ context.Context, p profile.Profile) error {
	r.saved = append(r.saved, p)
	return nil
}
func (r *savingRepo) Create(context.Context, profile.Profile) error       { return nil }
func (r *savingRepo) Delete(context.Context, string) error                { return nil }
func (r *savingRepo) Roster(context.Context) ([]store.RosterEntry, error) { return nil, nil }

func newTestScreen(t *testing.T) (*RoadmapScreen, *savingRepo) {
	t.Helper()
	p, err := profile.New("Mei", 14)
	if err != nil {
		t.Fatal(err)
	}
	repo := &savingRepo{}
	return New(screen.Deps{Profiles: repo}, p), repo
}

func press(s *RoadmapScreen, key string) tea.Cmd {
	var msg tea.KeyPressMsg
	switch key {
	case "down":
		msg = tea.KeyPressMsg{Code: tea.KeyDown}
	case "tab":
		msg = tea.KeyPressMsg{Code: tea.KeyTab}
	case "enter":
		msg = tea.KeyPressMsg{Code: tea.KeyEnter}
	default:
		msg = tea.KeyPressMsg{Code: []rune(key)[0], Text: key}
	}
	_, cmd := s.Update(msg)
	return cmd
}

func TestRowsGroupedByStage(t *testing.T) {
	s, _ := newTestScreen(t)

	headers, points := 0, 0
	for _, r := range s.rows {
		if r.kind == rowStageHeader {
			headers++
		} else {
			points++
		}
	}
	if headers != 6 || points != 36 {
		t.Errorf("expected 6 stage headers and 36 points, got %d and %d", headers, points)
	}
	if s.rows[s.cursor].kind != rowPoint {
		t.Error("cursor should start on a point")
	}
}

func TestTabJumpsStage(t *testing.T) {
	s, _ := newTestScreen(t)
	press(s, "tab")
	if got := s.rows[s.cursor].stage; got != 2 {
		t.Errorf("expected stage 2 after tab, got %d", got)
	}
}

func TestEnterPushesDetail(t *testing.T) {
	s, _ := newTestScreen(t)
	cmd := press(s, "enter")
	if cmd == nil {
		t.Fatal("expected a command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if !strings.Contains(push.Screen.View(100, 30), "Stage:") {
		t.Error("detail view should show the stage")
	}
}

func TestAppealSavesProfile(t *testing.T) {
	s, repo := newTestScreen(t)
	press(s, "down")
	lp, _ := s.current()

	cmd := press(s, "a")
	if cmd == nil {
		t.Fatal("expected appeal command")
	}
	s.Update(cmd())

	if len(repo.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(repo.saved))
	}
	got, _ := s.current()
	if got.ID != lp.ID || !got.AppealActive {
		t.Errorf("expected %s to be appealed, got %+v", lp.ID, got)
	}

	if cmd := press(s, "a"); cmd != nil {
		t.Error("appealing twice should not save again")
	}
}
