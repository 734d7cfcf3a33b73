package session

import (
	"errors"
	"fmt"

	"github.com/TIMOVIS/mandarin-exam/internal/capture"
	"github.com/TIMOVIS/mandarin-exam/internal/questiongen"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

var (
	// ErrBusy is returned when an answer is submitted while the previous
	// one is still being evaluated.
	ErrBusy = errors.New("session is busy evaluating an answer")

	// ErrPhase is returned when a transition is applied in the wrong phase.
	ErrPhase = errors.New("transition not allowed in current phase")
)

// TimeoutAnswer is stored when the timer expires with nothing captured.
const TimeoutAnswer = "[Time Out - No Answer]"

// Confidence is the student's self-reported understanding of a question.
type Confidence string

const (
	Confident Confidence = "confident"
	Partial   Confidence = "partial"
	None      Confidence = "none"
)

// Phase represents the current phase of the session.
type Phase int

const (
	PhaseLoading    Phase = iota // Waiting for the next question
	PhasePresenting              // Question shown, timer running
	PhaseEvaluating              // Answer submitted, awaiting a verdict
	PhaseFinished                // All questions answered
	PhaseAbandoned               // Student left before finishing
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhasePresenting:
		return "presenting"
	case PhaseEvaluating:
		return "evaluating"
	case PhaseFinished:
		return "finished"
	case PhaseAbandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Draft is the capture buffered for the current question. The timer reads
// it on expiry.
type Draft struct {
	Text  string
	Media *capture.Media
}

// Submission is an answer handed to Begin.
type Submission struct {
	Answer     capture.Payload
	Confidence Confidence

	// TimedOut marks the automatic submission made when the timer expired
	// with nothing captured.
	TimedOut bool
}

// State is the whole session. Every transition returns a new State; the
// receiver is never mutated.
type State struct {
	Skills   []skill.Skill
	Total    int
	Position int
	Phase    Phase

	// Current is the question being presented or evaluated.
	Current *questiongen.Question

	TimeLeft    int
	InitialTime int

	// TimerID identifies the running countdown. Ticks carrying any other
	// id are dropped.
	TimerID int

	Tallies  map[skill.Skill]Tally
	Outcomes []Outcome
	Draft    Draft
}

// New starts a baseline session of QuestionsPerSkill questions per skill.
func New(skills []skill.Skill) State {
	return newState(append([]skill.Skill(nil), skills...), len(skills)*QuestionsPerSkill)
}

// NewPlanned starts a session over a fixed question list. Its skills are
// the plan's distinct skills in first-seen order.
func NewPlanned(plan []questiongen.Question) State {
	var skills []skill.Skill
	seen := make(map[skill.Skill]bool)
	for _, q := range plan {
		if !seen[q.Skill] {
			seen[q.Skill] = true
			skills = append(skills, q.Skill)
		}
	}
	return newState(skills, len(plan))
}

func newState(skills []skill.Skill, total int) State {
	s := State{
		Skills:  skills,
		Total:   total,
		Phase:   PhaseLoading,
		Tallies: make(map[skill.Skill]Tally),
	}
	if total == 0 {
		s.Phase = PhaseFinished
	}
	return s
}

// Done reports whether the session can take no more answers.
func (s State) Done() bool {
	return s.Phase == PhaseFinished || s.Phase == PhaseAbandoned
}

// Present shows q and starts its countdown.
func (s State) Present(q questiongen.Question) (State, error) {
	if s.Phase != PhaseLoading {
		return s, fmt.Errorf("present in %s: %w", s.Phase, ErrPhase)
	}
	q = q.Clone()
	s.Current = &q
	s.Draft = Draft{}
	s.InitialTime = q.Limit()
	s.TimeLeft = s.InitialTime
	s.TimerID++
	s.Phase = PhasePresenting
	return s, nil
}

// WithText replaces the buffered typed answer.
func (s State) WithText(text string) State {
	s.Draft.Text = text
	return s
}

// WithMedia replaces the buffered recording or image.
func (s State) WithMedia(m capture.Media) State {
	s.Draft.Media = &m
	return s
}

// WithoutMedia discards the buffered recording or image.
func (s State) WithoutMedia() State {
	s.Draft.Media = nil
	return s
}

// Tick advances the countdown by one second. On expiry it returns the
// automatic submission built from the draft; the caller passes it to Begin.
func (s State) Tick(timerID int) (State, *Submission) {
	if s.Phase != PhasePresenting || timerID != s.TimerID || s.TimeLeft <= 0 {
		return s, nil
	}
	s.TimeLeft--
	if s.TimeLeft > 0 {
		return s, nil
	}
	sub := s.Draft.expired()
	return s, &sub
}

func (d Draft) expired() Submission {
	switch {
	case d.Text != "":
		return Submission{Answer: capture.Text{Value: d.Text}, Confidence: None}
	case d.Media != nil && !d.Media.Empty():
		return Submission{Answer: *d.Media, Confidence: Confident}
	default:
		return Submission{Answer: capture.Text{Value: TimeoutAnswer}, Confidence: None, TimedOut: true}
	}
}

// Pending is a submitted answer waiting for Resolve.
type Pending struct {
	Position   int
	Question   questiongen.Question
	Submission Submission
}

// NeedsOracle reports whether Resolve will call the evaluator.
func (p Pending) NeedsOracle() bool {
	if p.Submission.Confidence != Confident {
		return false
	}
	_, isText := p.Submission.Answer.(capture.Text)
	return !(isText && p.Question.IsMultipleChoice())
}

// Begin accepts a submission for the current question and stops its timer.
func (s State) Begin(sub Submission) (State, Pending, error) {
	if s.Phase != PhasePresenting || s.Current == nil {
		return s, Pending{}, ErrBusy
	}
	if sub.Confidence == "" {
		sub.Confidence = Confident
	}
	p := Pending{Position: s.Position, Question: *s.Current, Submission: sub}
	s.TimerID++
	s.Phase = PhaseEvaluating
	return s, p, nil
}

// Record folds a resolved outcome into the session and advances.
func (s State) Record(o Outcome) (State, error) {
	if s.Phase != PhaseEvaluating {
		return s, fmt.Errorf("record in %s: %w", s.Phase, ErrPhase)
	}
	if o.Position != s.Position {
		return s, fmt.Errorf("record outcome for position %d at position %d: %w", o.Position, s.Position, ErrPhase)
	}

	outcomes := make([]Outcome, len(s.Outcomes), len(s.Outcomes)+1)
	copy(outcomes, s.Outcomes)
	s.Outcomes = append(outcomes, o)

	tallies := make(map[skill.Skill]Tally, len(s.Tallies)+1)
	for k, v := range s.Tallies {
		tallies[k] = v
	}
	tallies[o.Question.Skill] = tallies[o.Question.Skill].Add(o.Weight)
	s.Tallies = tallies

	s.Position++
	s.Current = nil
	s.Draft = Draft{}
	s.TimeLeft = 0
	if s.Position >= s.Total {
		s.Phase = PhaseFinished
	} else {
		s.Phase = PhaseLoading
	}
	return s, nil
}

// Abandon ends the session without results.
func (s State) Abandon() State {
	s.TimerID++
	s.Current = nil
	s.Draft = Draft{}
	s.Phase = PhaseAbandoned
	return s
}

// Results returns the per-skill percentages for a finished session.
func (s State) Results() map[skill.Skill]int {
	return Finalize(s.Tallies, s.Skills)
}
