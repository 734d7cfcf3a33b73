package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestMultiChoice_NumberKeyPicks(t *testing.T) {
	m := NewMultiChoice([]string{"把", "被", "给", "让"}, "把")
	if m.CorrectIndex != 0 {
		t.Fatalf("expected correct index 0, got %d", m.CorrectIndex)
	}

	m, _ = m.Update(key("2"))
	got, ok := m.Chosen()
	if !ok || got != "被" {
		t.Errorf("expected 被 chosen, got %q (%v)", got, ok)
	}

	m, _ = m.Update(key("1"))
	if got, _ := m.Chosen(); got != "被" {
		t.Error("selection should be locked after submit")
	}
}

func TestMultiChoice_ArrowsAndEnter(t *testing.T) {
	m := NewMultiChoice([]string{"a", "b", "c"}, "c")
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("enter"))

	if got, _ := m.Chosen(); got != "c" {
		t.Errorf("expected c, got %q", got)
	}

	m = m.Reset()
	if _, ok := m.Chosen(); ok {
		t.Error("expected no choice after reset")
	}
}

func TestMultiChoice_OutOfRangeNumberIgnored(t *testing.T) {
	m := NewMultiChoice([]string{"a", "b"}, "a")
	m, _ = m.Update(key("4"))
	if m.Submitted {
		t.Error("expected 4 to be ignored with two options")
	}
}
