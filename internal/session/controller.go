package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/TIMOVIS/mandarin-exam/internal/grading"
	"github.com/TIMOVIS/mandarin-exam/internal/logger"
	"github.com/TIMOVIS/mandarin-exam/internal/metrics"
	"github.com/TIMOVIS/mandarin-exam/internal/questiongen"
)

// AnswerFunc collects the student's answer to q. Returning an error
// abandons the session.
type AnswerFunc func(ctx context.Context, position int, q questiongen.Question) (Submission, error)

// Controller drives a session to completion without a UI.
type Controller struct {
	Source    Source
	Evaluator grading.Evaluator

	// OnOutcome, when set, is called after every recorded outcome.
	OnOutcome func(Outcome)

	Log *zap.Logger
}

// Run loops source, present, answer, resolve and record until the session
// is finished. On error the returned state is abandoned.
func (c *Controller) Run(ctx context.Context, s State, answer AnswerFunc) (State, error) {
	log := logger.OrNop(c.Log)

	for !s.Done() {
		if err := ctx.Err(); err != nil {
			return s.Abandon(), err
		}

		q, err := c.Source.Next(ctx, s.Position)
		if err != nil {
			return s.Abandon(), fmt.Errorf("load question %d: %w", s.Position, err)
		}
		if s, err = s.Present(q); err != nil {
			return s.Abandon(), err
		}

		sub, err := answer(ctx, s.Position, *s.Current)
		if err != nil {
			return s.Abandon(), fmt.Errorf("answer question %d: %w", s.Position, err)
		}

		var pending Pending
		if s, pending, err = s.Begin(sub); err != nil {
			return s.Abandon(), err
		}
		o := Resolve(ctx, pending, c.Evaluator)
		if s, err = s.Record(o); err != nil {
			return s.Abandon(), err
		}

		metrics.AnswersRecorded.WithLabelValues(string(o.Question.Skill), string(o.Confidence)).Inc()
		log.Debug("answer recorded",
			zap.Int("position", o.Position),
			zap.String("skill", string(o.Question.Skill)),
			zap.String("confidence", string(o.Confidence)),
			zap.Int("score", o.Score))

		if c.OnOutcome != nil {
			c.OnOutcome(o)
		}
	}

	if s.Phase == PhaseFinished {
		metrics.SessionsCompleted.Inc()
	}
	return s, nil
}
