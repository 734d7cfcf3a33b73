package summary

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/router"
	"github.com/TIMOVIS/mandarin-exam/internal/session"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

func testSummary() session.Summary {
	return session.Summary{
		TotalQuestions: 12,
		TotalCorrect:   9,
		Accuracy:       0.75,
		SkillResults: []session.SkillResult{
			{Skill: skill.Listening, Attempted: 6, Correct: 6, Percent: 100},
			{Skill: skill.Speaking, Attempted: 6, Correct: 3, Percent: 47},
			{Skill: skill.Grammar},
		},
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testSummary(), "Week 1")
	if s.Title() != "Session Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Session Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	view := New(testSummary(), "Week 1").View(100, 40)

	for _, want := range []string{"Session complete!", "Week 1", "Questions: 12", "Correct: 9", "75%", "Listening", "6/6 correct", "Mastered", "In progress", "not attempted"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_Empty(t *testing.T) {
	view := New(session.Summary{}, "").View(80, 24)
	if !strings.Contains(view, "No answers were recorded.") {
		t.Error("expected empty notice")
	}
}

func TestSummaryScreen_ReturnsHome(t *testing.T) {
	for _, code := range []rune{tea.KeyEnter, tea.KeyEscape} {
		s := New(testSummary(), "")
		_, cmd := s.Update(tea.KeyPressMsg{Code: code})
		if cmd == nil {
			t.Fatal("expected command")
		}
		if _, ok := cmd().(router.PopToRootMsg); !ok {
			t.Errorf("expected PopToRootMsg for %q", code)
		}
	}
}

func TestSummaryScreen_IgnoresOtherKeys(t *testing.T) {
	s := New(testSummary(), "")
	if _, cmd := s.Update(tea.KeyPressMsg{Code: 'x', Text: "x"}); cmd != nil {
		t.Error("expected no command")
	}
}
