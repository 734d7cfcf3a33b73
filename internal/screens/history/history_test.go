package history

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

func TestNewestFirstAndExpand(t *testing.T) {
	p, _ := profile.New("Mei", 14)
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p.Logs = []profile.AssessmentLog{
		{ID: "old", Skill: skill.Reading, QuestionContent: "读", StudentAnswer: "a",
			Evaluation: profile.Evaluation{Score: 10, Feedback: "Try again"}, Timestamp: t0},
		{ID: "new", Skill: skill.Grammar, QuestionContent: "把字句", StudentAnswer: "把",
			Evaluation: profile.Evaluation{IsCorrect: true, Score: 100, Feedback: "Correct selection."}, Timestamp: t0.Add(time.Hour)},
	}

	s := New(p)
	if s.logs[0].ID != "new" {
		t.Fatalf("expected newest log first, got %s", s.logs[0].ID)
	}

	view := s.View(120, 30)
	if !strings.Contains(view, "Grammar") || !strings.Contains(view, "Baseline") {
		t.Errorf("unexpected view:\n%s", view)
	}
	if strings.Contains(view, "把字句") {
		t.Error("details should be collapsed")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !strings.Contains(s.View(120, 30), "把字句") {
		t.Error("expected expanded details")
	}
}

func TestEmptyHistory(t *testing.T) {
	p, _ := profile.New("Leo", 12)
	if !strings.Contains(New(p).View(80, 20), "No answers yet") {
		t.Error("expected empty message")
	}
}
