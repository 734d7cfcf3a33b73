package session

import "github.com/TIMOVIS/mandarin-exam/internal/skill"

// SkillResult tracks per-skill performance within a single session.
type SkillResult struct {
	Skill     skill.Skill
	Attempted int
	Correct   int
	Percent   int
}

// Summary holds the data displayed on the summary screen.
type Summary struct {
	TotalQuestions int
	TotalCorrect   int
	Accuracy       float64
	SkillResults   []SkillResult
}

// BuildSummary creates a Summary from the session state. Skills appear in
// session order.
func BuildSummary(s State) Summary {
	correct := make(map[skill.Skill]int)
	total := 0
	for _, o := range s.Outcomes {
		if o.IsCorrect {
			correct[o.Question.Skill]++
			total++
		}
	}

	results := make([]SkillResult, 0, len(s.Skills))
	for _, sk := range s.Skills {
		t := s.Tallies[sk]
		results = append(results, SkillResult{
			Skill:     sk,
			Attempted: t.Count,
			Correct:   correct[sk],
			Percent:   t.Percent(),
		})
	}

	var accuracy float64
	if len(s.Outcomes) > 0 {
		accuracy = float64(total) / float64(len(s.Outcomes))
	}

	return Summary{
		TotalQuestions: len(s.Outcomes),
		TotalCorrect:   total,
		Accuracy:       accuracy,
		SkillResults:   results,
	}
}
