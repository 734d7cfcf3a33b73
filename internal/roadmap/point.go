package roadmap

import "github.com/TIMOVIS/mandarin-exam/internal/skill"

// Status is a learning point's position in the mastery lifecycle.
type Status string

const (
	StatusLocked     Status = "locked"
	StatusUnlocked   Status = "unlocked"
	StatusInProgress Status = "in-progress"
	StatusWeak       Status = "weak"
	StatusMastered   Status = "mastered"
)

// Attempted reports whether the status was derived from a score.
func (s Status) Attempted() bool {
	return s == StatusInProgress || s == StatusWeak || s == StatusMastered
}

// Label returns a short display label.
func (s Status) Label() string {
	switch s {
	case StatusMastered:
		return "Mastered"
	case StatusInProgress:
		return "In progress"
	case StatusWeak:
		return "Weak"
	case StatusUnlocked:
		return "Unlocked"
	default:
		return "Locked"
	}
}

// LearningPoint is one syllabus topic at a given skill and stage.
type LearningPoint struct {
	ID           string      `json:"id" yaml:"id"`
	Stage        int         `json:"stage" yaml:"stage"`
	Skill        skill.Skill `json:"skill" yaml:"skill"`
	Topic        string      `json:"topic" yaml:"topic"`
	Description  string      `json:"description" yaml:"description"`
	Status       Status      `json:"status" yaml:"status"`
	Score        int         `json:"score" yaml:"score"`
	AppealActive bool        `json:"appealActive,omitempty" yaml:"appeal_active,omitempty"`
}

// Thresholds is the single score-to-status table used by every path that
// derives a status from a score.
type Thresholds struct {
	Mastered   int
	InProgress int
}

// DefaultThresholds returns mastered at 80 and in-progress at 40.
func DefaultThresholds() Thresholds {
	return Thresholds{Mastered: 80, InProgress: 40}
}

// StatusFor maps a score to a status.
func (t Thresholds) StatusFor(score int) Status {
	switch {
	case score >= t.Mastered:
		return StatusMastered
	case score >= t.InProgress:
		return StatusInProgress
	default:
		return StatusWeak
	}
}

// Find returns the index of the point with the given id, or -1.
func Find(points []LearningPoint, id string) int {
	for i := range points {
		if points[i].ID == id {
			return i
		}
	}
	return -1
}

// BySkill returns the points belonging to sk, in roadmap order.
func BySkill(points []LearningPoint, sk skill.Skill) []LearningPoint {
	var out []LearningPoint
	for _, p := range points {
		if p.Skill == sk {
			out = append(out, p)
		}
	}
	return out
}

// ByStage groups points by stage. Stages with no points are omitted.
func ByStage(points []LearningPoint) map[int][]LearningPoint {
	out := make(map[int][]LearningPoint)
	for _, p := range points {
		out[p.Stage] = append(out[p.Stage], p)
	}
	return out
}

// Filter returns the points whose skill is in skills and stage is in stages.
func Filter(points []LearningPoint, skills []skill.Skill, stages []int) []LearningPoint {
	skillSet := make(map[skill.Skill]bool, len(skills))
	for _, s := range skills {
		skillSet[s] = true
	}
	stageSet := make(map[int]bool, len(stages))
	for _, s := range stages {
		stageSet[s] = true
	}
	var out []LearningPoint
	for _, p := range points {
		if skillSet[p.Skill] && stageSet[p.Stage] {
			out = append(out, p)
		}
	}
	return out
}
