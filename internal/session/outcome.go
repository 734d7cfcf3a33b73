package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/TIMOVIS/mandarin-exam/internal/capture"
	"github.com/TIMOVIS/mandarin-exam/internal/grading"
	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/questiongen"
)

const (
	SkippedFeedback = "Student indicated they did not understand the question."
	PartialFeedback = "Student partially understood but did not know the answer."
	TimeoutFeedback = "Time expired before an answer was submitted."
	CorrectFeedback = "Correct selection."

	// PartialScore is the fixed score for a partial-confidence answer.
	PartialScore = 20

	// CorrectAbove is the oracle score above which an answer counts as
	// correct even when the oracle says otherwise.
	CorrectAbove = 60
)

// Outcome is the graded result of one question.
type Outcome struct {
	ID       string
	Position int
	Question questiongen.Question

	Answer       capture.Payload
	StoredAnswer string
	Confidence   Confidence
	TimedOut     bool

	IsCorrect bool
	Score     int
	Feedback  string

	// Weight is this outcome's contribution to its skill tally, 0..1.
	Weight float64

	// Media is set when the answer was a recording or an image.
	Media *capture.Media

	Timestamp time.Time
}

// Resolve grades a pending answer. Skipped, partial and multiple-choice
// answers are decided locally; everything else goes to the evaluator.
func Resolve(ctx context.Context, p Pending, ev grading.Evaluator) Outcome {
	sub := p.Submission
	o := Outcome{
		ID:         uuid.NewString(),
		Position:   p.Position,
		Question:   p.Question,
		Answer:     sub.Answer,
		Confidence: sub.Confidence,
		TimedOut:   sub.TimedOut,
		Timestamp:  time.Now(),
	}
	if m, ok := sub.Answer.(capture.Media); ok {
		o.Media = &m
	}
	described := capture.Describe(sub.Answer)

	switch {
	case sub.Confidence == None && sub.TimedOut:
		o.StoredAnswer = described
		o.Feedback = TimeoutFeedback

	case sub.Confidence == None:
		o.StoredAnswer = "[Skipped] " + described
		o.Feedback = SkippedFeedback

	case sub.Confidence == Partial:
		o.StoredAnswer = "[Partial] " + described
		o.Score = PartialScore
		o.Feedback = PartialFeedback
		o.Weight = float64(PartialScore) / 100

	case !p.NeedsOracle():
		o.StoredAnswer = described
		if described == p.Question.CorrectAnswer {
			o.IsCorrect = true
			o.Score = 100
			o.Feedback = CorrectFeedback
			o.Weight = 1
		} else {
			o.Feedback = fmt.Sprintf("Incorrect. Correct answer: %s", p.Question.CorrectAnswer)
		}

	default:
		o.StoredAnswer = described
		res := ev.Evaluate(ctx, grading.Request{
			QuestionContent: p.Question.Content,
			Answer:          sub.Answer,
			CanonicalAnswer: p.Question.CorrectAnswer,
		})
		o.Score = min(max(res.Score, 0), 100)
		o.IsCorrect = res.IsCorrect || o.Score > CorrectAbove
		o.Feedback = res.Feedback
		o.Weight = float64(o.Score) / 100
		if p.Question.IsMultipleChoice() {
			// Multiple choice is all or nothing, however it was answered.
			o.Weight = 0
			if o.IsCorrect {
				o.Weight = 1
			}
		}
	}
	return o
}

// Log converts the outcome into the record kept on the profile.
func (o Outcome) Log(testID string) profile.AssessmentLog {
	return profile.AssessmentLog{
		ID:              o.ID,
		TestID:          testID,
		QuestionID:      o.Question.ID,
		QuestionContent: o.Question.Content,
		Skill:           o.Question.Skill,
		StudentAnswer:   o.StoredAnswer,
		Evaluation: profile.Evaluation{
			IsCorrect: o.IsCorrect,
			Score:     o.Score,
			Feedback:  o.Feedback,
		},
		Timestamp: o.Timestamp,
	}
}

// Logs converts every outcome, in order.
func Logs(outcomes []Outcome, testID string) []profile.AssessmentLog {
	out := make([]profile.AssessmentLog, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, o.Log(testID))
	}
	return out
}
