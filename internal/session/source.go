package session

import (
	"context"
	"fmt"

	"github.com/TIMOVIS/mandarin-exam/internal/questiongen"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

// QuestionsPerSkill is the number of generated questions asked per skill
// in a baseline session.
const QuestionsPerSkill = 6

// BaselineTopic is the topic sent to the generator for baseline questions.
const BaselineTopic = "General IGCSE Assessment"

// Source supplies the question for a session position.
type Source interface {
	Next(ctx context.Context, position int) (questiongen.Question, error)
}

// OutOfRangeError is returned when a position is past the end of a plan.
type OutOfRangeError struct {
	Position int
	Length   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("position %d out of range for plan of %d questions", e.Position, e.Length)
}

// PlannedSource serves a fixed, tutor-assigned question list.
type PlannedSource struct {
	Plan []questiongen.Question
}

func (s PlannedSource) Next(_ context.Context, position int) (questiongen.Question, error) {
	if position < 0 || position >= len(s.Plan) {
		return questiongen.Question{}, &OutOfRangeError{Position: position, Length: len(s.Plan)}
	}
	return withDefaults(s.Plan[position].Clone()), nil
}

// GeneratedSource asks the generator for one question per position.
type GeneratedSource struct {
	Generator questiongen.Generator
	Skills    []skill.Skill
	Student   string

	// Context is optional guidance passed with every request.
	Context string
}

func (s GeneratedSource) Next(ctx context.Context, position int) (questiongen.Question, error) {
	if len(s.Skills) == 0 {
		return questiongen.Question{}, fmt.Errorf("generated source has no skills")
	}
	sk := SkillAt(s.Skills, position)
	qs, err := s.Generator.Generate(ctx, []questiongen.Task{{
		Topic:      BaselineTopic,
		Skill:      sk,
		Difficulty: DifficultyAt(position),
		Stage:      skill.MinStage,
		Context:    s.Context,
	}}, s.Student)
	if err != nil {
		return questiongen.Question{}, err
	}
	if len(qs) == 0 {
		return questiongen.Question{}, fmt.Errorf("generator returned no question for position %d", position)
	}
	q := qs[0]
	q.Skill = sk
	return withDefaults(q), nil
}

// SkillAt returns the skill asked at position, clamped to the last skill.
func SkillAt(skills []skill.Skill, position int) skill.Skill {
	return skills[min(position/QuestionsPerSkill, len(skills)-1)]
}

// DifficultyAt returns the difficulty for position within its skill block:
// the first third Easy, the next third Medium, the rest Hard.
func DifficultyAt(position int) skill.Difficulty {
	switch offset := position % QuestionsPerSkill; {
	case offset < 2:
		return skill.Easy
	case offset < 4:
		return skill.Medium
	default:
		return skill.Hard
	}
}

func withDefaults(q questiongen.Question) questiongen.Question {
	if q.TimeLimit <= 0 {
		q.TimeLimit = questiongen.DefaultTimeLimit
	}
	return q
}
