package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TIMOVIS/mandarin-exam/internal/capture"
	"github.com/TIMOVIS/mandarin-exam/internal/questiongen"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

func mcQuestion() questiongen.Question {
	return questiongen.Question{
		ID:            "mc-1",
		Skill:         skill.Grammar,
		Content:       "我___书放在桌子上。",
		Options:       []string{"把", "被", "给", "让"},
		CorrectAnswer: "把",
		TimeLimit:     3,
	}
}

func openQuestion() questiongen.Question {
	return questiongen.Question{
		ID:            "open-1",
		Skill:         skill.Writing,
		Content:       "写一句话介绍你的家。",
		CorrectAnswer: "我家有四口人。",
	}
}

func presented(t *testing.T, q questiongen.Question) State {
	t.Helper()
	s, err := NewPlanned([]questiongen.Question{q}).Present(q)
	require.NoError(t, err)
	return s
}

func TestNew_Totals(t *testing.T) {
	s := New([]skill.Skill{skill.Listening, skill.Reading})
	assert.Equal(t, 12, s.Total)
	assert.Equal(t, PhaseLoading, s.Phase)

	p := NewPlanned([]questiongen.Question{
		{Skill: skill.Reading}, {Skill: skill.Grammar}, {Skill: skill.Reading},
	})
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, []skill.Skill{skill.Reading, skill.Grammar}, p.Skills)

	assert.Equal(t, PhaseFinished, NewPlanned(nil).Phase)
}

func TestPresent_StartsTimer(t *testing.T) {
	s := NewPlanned([]questiongen.Question{openQuestion()}).WithText("left over")
	s, err := s.Present(openQuestion())
	require.NoError(t, err)

	assert.Equal(t, PhasePresenting, s.Phase)
	assert.Equal(t, questiongen.DefaultTimeLimit, s.TimeLeft)
	assert.Equal(t, questiongen.DefaultTimeLimit, s.InitialTime)
	assert.Equal(t, 1, s.TimerID)
	assert.Empty(t, s.Draft.Text, "draft is reset for a new question")

	_, err = s.Present(openQuestion())
	assert.ErrorIs(t, err, ErrPhase)
}

func TestTick_CountsDownAndExpires(t *testing.T) {
	s := presented(t, mcQuestion())
	id := s.TimerID

	var sub *Submission
	s, sub = s.Tick(id)
	assert.Nil(t, sub)
	assert.Equal(t, 2, s.TimeLeft)
	s, sub = s.Tick(id)
	assert.Nil(t, sub)
	s, sub = s.Tick(id)
	require.NotNil(t, sub)
	assert.Equal(t, 0, s.TimeLeft)

	assert.True(t, sub.TimedOut)
	assert.Equal(t, None, sub.Confidence)
	assert.Equal(t, capture.Text{Value: TimeoutAnswer}, sub.Answer)

	_, again := s.Tick(id)
	assert.Nil(t, again, "an expired timer fires once")
}

func TestTick_StaleTimerIgnored(t *testing.T) {
	plan := []questiongen.Question{mcQuestion(), mcQuestion()}
	s, err := NewPlanned(plan).Present(plan[0])
	require.NoError(t, err)
	stale := s.TimerID

	s, pending, err := s.Begin(Submission{Answer: capture.Text{Value: "把"}, Confidence: Confident})
	require.NoError(t, err)
	s, err = s.Record(Resolve(context.Background(), pending, nil))
	require.NoError(t, err)
	s, err = s.Present(plan[1])
	require.NoError(t, err)

	before := s.TimeLeft
	s, sub := s.Tick(stale)
	assert.Nil(t, sub)
	assert.Equal(t, before, s.TimeLeft)
}

func TestTick_ExpiryUsesDraft(t *testing.T) {
	q := mcQuestion()
	q.TimeLimit = 1

	s := presented(t, q).WithText("被")
	_, sub := s.Tick(s.TimerID)
	require.NotNil(t, sub)
	assert.Equal(t, capture.Text{Value: "被"}, sub.Answer)
	assert.Equal(t, None, sub.Confidence)
	assert.False(t, sub.TimedOut)

	m := capture.NewMedia("audio/webm", []byte("ogg"))
	s = presented(t, q).WithMedia(m)
	_, sub = s.Tick(s.TimerID)
	require.NotNil(t, sub)
	assert.Equal(t, m, sub.Answer)
	assert.Equal(t, Confident, sub.Confidence)

	s = presented(t, q).WithMedia(m).WithoutMedia()
	_, sub = s.Tick(s.TimerID)
	require.NotNil(t, sub)
	assert.True(t, sub.TimedOut)
}

func TestBegin_BusyGuard(t *testing.T) {
	s := presented(t, mcQuestion())
	s, _, err := s.Begin(Submission{Answer: capture.Text{Value: "把"}})
	require.NoError(t, err)
	assert.Equal(t, PhaseEvaluating, s.Phase)

	_, _, err = s.Begin(Submission{Answer: capture.Text{Value: "被"}})
	assert.True(t, errors.Is(err, ErrBusy))

	_, _, err = New([]skill.Skill{skill.Reading}).Begin(Submission{})
	assert.ErrorIs(t, err, ErrBusy)
}

func TestBegin_CancelsTimer(t *testing.T) {
	s := presented(t, mcQuestion())
	id := s.TimerID
	s, _, err := s.Begin(Submission{Answer: capture.Text{Value: "把"}})
	require.NoError(t, err)

	after, sub := s.Tick(id)
	assert.Nil(t, sub)
	assert.Equal(t, s.TimeLeft, after.TimeLeft)
}

func TestRecord_AdvancesAndFinishes(t *testing.T) {
	plan := []questiongen.Question{mcQuestion(), openQuestion()}
	s := NewPlanned(plan)

	for i, q := range plan {
		var err error
		s, err = s.Present(q)
		require.NoError(t, err)
		var p Pending
		s, p, err = s.Begin(Submission{Answer: capture.Text{Value: "x"}, Confidence: Partial})
		require.NoError(t, err)
		assert.Equal(t, i, p.Position)

		s, err = s.Record(Resolve(context.Background(), p, nil))
		require.NoError(t, err)
	}

	assert.Equal(t, PhaseFinished, s.Phase)
	assert.Len(t, s.Outcomes, 2)
	assert.Equal(t, 0, s.Outcomes[0].Position)
	assert.Equal(t, 1, s.Outcomes[1].Position)
	assert.Equal(t, map[skill.Skill]int{skill.Grammar: 20, skill.Writing: 20}, s.Results())
}

func TestRecord_Guards(t *testing.T) {
	s := presented(t, mcQuestion())
	_, err := s.Record(Outcome{})
	assert.ErrorIs(t, err, ErrPhase)

	s, _, err = s.Begin(Submission{Answer: capture.Text{Value: "把"}})
	require.NoError(t, err)
	_, err = s.Record(Outcome{Position: 3})
	assert.ErrorIs(t, err, ErrPhase)
}

func TestRecord_DoesNotShareOutcomes(t *testing.T) {
	plan := []questiongen.Question{mcQuestion(), mcQuestion()}
	s, err := NewPlanned(plan).Present(plan[0])
	require.NoError(t, err)
	s, p, err := s.Begin(Submission{Answer: capture.Text{Value: "把"}})
	require.NoError(t, err)

	evaluating := s
	first, err := evaluating.Record(Resolve(context.Background(), p, nil))
	require.NoError(t, err)

	assert.Empty(t, evaluating.Outcomes)
	assert.Empty(t, evaluating.Tallies)
	assert.Len(t, first.Outcomes, 1)
}

func TestAbandon(t *testing.T) {
	s := presented(t, mcQuestion())
	id := s.TimerID
	s = s.Abandon()

	assert.Equal(t, PhaseAbandoned, s.Phase)
	assert.True(t, s.Done())
	_, sub := s.Tick(id)
	assert.Nil(t, sub)
	_, _, err := s.Begin(Submission{})
	assert.ErrorIs(t, err, ErrBusy)
}
