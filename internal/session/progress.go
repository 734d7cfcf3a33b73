package session

import (
	"math"

	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

// Tally is the running aggregate for one skill within a session.
type Tally struct {
	Sum   float64
	Count int
}

// Add records one outcome's weight.
func (t Tally) Add(weight float64) Tally {
	return Tally{Sum: t.Sum + weight, Count: t.Count + 1}
}

// Percent returns round(Sum/Count*100), or 0 with no attempts.
func (t Tally) Percent() int {
	if t.Count == 0 {
		return 0
	}
	return int(math.Round(t.Sum / float64(t.Count) * 100))
}

// Finalize turns tallies into the per-skill percentage map handed to the
// roadmap. Every active skill gets an entry.
func Finalize(tallies map[skill.Skill]Tally, skills []skill.Skill) map[skill.Skill]int {
	out := make(map[skill.Skill]int, len(skills))
	for _, sk := range skills {
		out[sk] = tallies[sk].Percent()
	}
	return out
}
