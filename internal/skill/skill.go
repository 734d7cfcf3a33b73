package skill

import (
	"fmt"
	"strings"
)

// Skill is one of the six assessed competencies.
type Skill string

const (
	Listening  Skill = "Listening"
	Speaking   Skill = "Speaking"
	Reading    Skill = "Reading"
	Writing    Skill = "Writing"
	Vocabulary Skill = "Vocabulary"
	Grammar    Skill = "Grammar"
)

// AllSkills returns all skills in baseline order.
func AllSkills() []Skill {
	return []Skill{
		Listening,
		Speaking,
		Reading,
		Writing,
		Vocabulary,
		Grammar,
	}
}

// ParseSkill resolves a skill name case-insensitively.
func ParseSkill(s string) (Skill, error) {
	for _, sk := range AllSkills() {
		if strings.EqualFold(string(sk), strings.TrimSpace(s)) {
			return sk, nil
		}
	}
	return "", fmt.Errorf("unknown skill: %q", s)
}

// ParseSkills resolves a list of skill names, failing on the first unknown one.
func ParseSkills(names []string) ([]Skill, error) {
	out := make([]Skill, 0, len(names))
	for _, n := range names {
		sk, err := ParseSkill(n)
		if err != nil {
			return nil, err
		}
		out = append(out, sk)
	}
	return out, nil
}

// Stage bounds. Stages group syllabus topics by difficulty progression.
const (
	MinStage = 1
	MaxStage = 6
)

// AllStages returns stages 1 through 6.
func AllStages() []int {
	stages := make([]int, 0, MaxStage)
	for s := MinStage; s <= MaxStage; s++ {
		stages = append(stages, s)
	}
	return stages
}

// ValidStage reports whether s is within the stage bounds.
func ValidStage(s int) bool {
	return s >= MinStage && s <= MaxStage
}

// Difficulty is the tier a question is generated at.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// AllDifficulties returns difficulties from easiest to hardest.
func AllDifficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// ParseDifficulty maps a name to a Difficulty. Unknown values become Medium.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy
	case "hard":
		return Hard
	default:
		return Medium
	}
}

// Mode is how a question is presented to the student.
type Mode string

const (
	ModeText  Mode = "Text"
	ModeAudio Mode = "Audio"
	ModeImage Mode = "Image"
)

// ParseMode maps a name to a Mode. Unknown values become ModeText.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "audio":
		return ModeAudio
	case "image":
		return ModeImage
	default:
		return ModeText
	}
}
