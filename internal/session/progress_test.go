package session

import (
	"testing"

	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

func TestTallyPercent(t *testing.T) {
	tests := []struct {
		name  string
		tally Tally
		want  int
	}{
		{"no attempts", Tally{}, 0},
		{"all correct", Tally{Sum: 6, Count: 6}, 100},
		{"partial weights", Tally{Sum: 0.2 + 0.2 + 1, Count: 3}, 47},
		{"half credit", Tally{Sum: 0.5, Count: 2}, 25},
		{"open ended", Tally{Sum: 0.45, Count: 1}, 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tally.Percent(); got != tt.want {
				t.Errorf("Percent() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFinalize_EverySkillPresent(t *testing.T) {
	tallies := map[skill.Skill]Tally{
		skill.Listening: Tally{}.Add(1).Add(0),
	}
	got := Finalize(tallies, []skill.Skill{skill.Listening, skill.Writing})

	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[skill.Listening] != 50 {
		t.Errorf("listening = %d, want 50", got[skill.Listening])
	}
	if v, ok := got[skill.Writing]; !ok || v != 0 {
		t.Errorf("writing = %d (present %v), want 0", v, ok)
	}
}
