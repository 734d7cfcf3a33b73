package session

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/TIMOVIS/mandarin-exam/internal/capture"
	"github.com/TIMOVIS/mandarin-exam/internal/logger"
	"github.com/TIMOVIS/mandarin-exam/internal/metrics"
	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/questiongen"
	"github.com/TIMOVIS/mandarin-exam/internal/router"
	"github.com/TIMOVIS/mandarin-exam/internal/screen"
	"github.com/TIMOVIS/mandarin-exam/internal/screens/summary"
	sess "github.com/TIMOVIS/mandarin-exam/internal/session"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/components"
	"github.com/TIMOVIS/mandarin-exam/internal/ui/layout"
)

// SessionScreen implements screen.Screen for an active assessment.
type SessionScreen struct {
	deps    screen.Deps
	student profile.Profile
	testID  string
	title   string
	source  sess.Source
	state   sess.State
	log     *zap.Logger

	mode     *capture.ModeSelector
	input    components.TextInput
	choice   components.MultiChoice
	pathIn   components.TextInput
	picker   capture.ImagePicker
	recorder *capture.Recorder

	last         *sess.Outcome
	showFeedback bool
	confirmQuit  bool
	saving       bool
	notice       string
	errMsg       string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StudentProvider = (*SessionScreen)(nil)
var _ screen.BackHandler = (*SessionScreen)(nil)

// NewBaseline creates a generated session covering every skill.
func NewBaseline(deps screen.Deps, student profile.Profile) *SessionScreen {
	skills := skill.AllSkills()
	return newScreen(deps, student, "", "Baseline Assessment",
		sess.GeneratedSource{Generator: deps.Generator, Skills: skills, Student: student.Name, Context: student.Comments},
		sess.New(skills))
}

// NewPlanned creates a session over a tutor-assigned test.
func NewPlanned(deps screen.Deps, student profile.Profile, test profile.AssignedTest) *SessionScreen {
	return newScreen(deps, student, test.ID, test.Title,
		sess.PlannedSource{Plan: test.Questions},
		sess.NewPlanned(test.Questions))
}

func newScreen(deps screen.Deps, student profile.Profile, testID, title string, source sess.Source, state sess.State) *SessionScreen {
	s := &SessionScreen{
		deps:    deps,
		student: student,
		testID:  testID,
		title:   title,
		source:  source,
		state:   state,
		log:     logger.OrNop(deps.Log).With(zap.String("student", student.Name), zap.String("test", testID)),
		mode:    capture.NewModeSelector(skill.Listening),
		input:   components.NewTextInput("Type your answer...", false, 200),
		pathIn:  components.NewTextInput("Path to a photo of your answer", false, 260),
	}
	if deps.Audio != nil {
		s.recorder = capture.NewRecorder(deps.Audio)
	}
	return s
}

func (s *SessionScreen) Init() tea.Cmd {
	if s.state.Done() {
		return s.finish()
	}
	return s.loadQuestion(s.state.Position)
}

func (s *SessionScreen) Title() string {
	return s.title
}

// HandlesBack keeps Esc for the quit confirmation.
func (s *SessionScreen) HandlesBack() bool {
	return true
}

func (s *SessionScreen) Student() (string, int) {
	return s.student.Name, screen.Mastered(s.student)
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	case s.showFeedback:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	case s.state.Phase != sess.PhasePresenting:
		return nil
	}

	hints := []layout.KeyHint{{Key: "Enter", Description: "Submit"}}
	switch s.mode.Current() {
	case capture.InputAudio:
		hints = append(hints,
			layout.KeyHint{Key: "Ctrl+R", Description: "Record/Stop"},
			layout.KeyHint{Key: "Ctrl+D", Description: "Redo"})
	case capture.InputImage:
		hints = append(hints, layout.KeyHint{Key: "Ctrl+D", Description: "Clear"})
	}
	if len(s.mode.Allowed()) > 1 {
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Mode"})
	}
	return append(hints,
		layout.KeyHint{Key: "Ctrl+U", Description: "Unsure"},
		layout.KeyHint{Key: "Ctrl+S", Description: "Skip"},
		layout.KeyHint{Key: "Esc", Description: "Quit"})
}

func (s *SessionScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, height, s.errMsg)
	case s.confirmQuit:
		return renderQuitConfirm(width, height)
	case s.saving:
		return renderLoading(width, height, "Saving your results...")
	case s.showFeedback && s.last != nil:
		return s.renderFeedback(width, height)
	case s.state.Phase == sess.PhaseEvaluating:
		return renderLoading(width, height, "Checking your answer...")
	case s.state.Phase == sess.PhasePresenting:
		return s.renderQuestionView(width, height)
	default:
		return renderLoading(width, height, "Preparing your next question...")
	}
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionReadyMsg:
		return s.handleQuestionReady(msg)

	case timerTickMsg:
		return s.handleTimerTick(msg)

	case outcomeMsg:
		return s.handleOutcome(msg)

	case savedMsg:
		return s.handleSaved(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.state.Phase == sess.PhasePresenting && !s.confirmQuit {
		return s.forwardToInput(msg)
	}
	return s, nil
}

// loadQuestion fetches the question for position asynchronously.
func (s *SessionScreen) loadQuestion(position int) tea.Cmd {
	source := s.source
	return func() tea.Msg {
		q, err := source.Next(context.Background(), position)
		return questionReadyMsg{Position: position, Question: q, Err: err}
	}
}

func (s *SessionScreen) handleQuestionReady(msg questionReadyMsg) (screen.Screen, tea.Cmd) {
	if msg.Position != s.state.Position || s.state.Phase != sess.PhaseLoading {
		return s, nil
	}
	if msg.Err != nil {
		s.log.Error("load question failed", zap.Int("position", msg.Position), zap.Error(msg.Err))
		s.state = s.state.Abandon()
		s.errMsg = "Could not load the next question: " + msg.Err.Error()
		return s, nil
	}

	next, err := s.state.Present(msg.Question)
	if err != nil {
		return s, nil
	}
	s.state = next
	s.resetInputs(*s.state.Current)
	return s, tea.Batch(tickCmd(s.state.TimerID), s.input.Init())
}

// resetInputs prepares every capture for a new question.
func (s *SessionScreen) resetInputs(q questiongen.Question) {
	s.mode.Reset(q.Skill)
	s.input = components.NewTextInput("Type your answer...", false, 200)
	s.pathIn = components.NewTextInput("Path to a photo of your answer", false, 260)
	s.choice = components.NewMultiChoice(q.Options, q.CorrectAnswer)
	s.picker.Clear()
	if s.recorder != nil {
		s.recorder.Redo()
	}
	s.notice = ""
}

func (s *SessionScreen) handleTimerTick(msg timerTickMsg) (screen.Screen, tea.Cmd) {
	// The countdown holds while the quit dialog is open.
	if s.confirmQuit {
		if s.state.Phase == sess.PhasePresenting && msg.ID == s.state.TimerID {
			return s, tickCmd(msg.ID)
		}
		return s, nil
	}

	next, sub := s.state.Tick(msg.ID)
	s.state = next
	if sub != nil {
		s.stopRecording()
		return s.submit(*sub)
	}
	if s.state.Phase == sess.PhasePresenting && msg.ID == s.state.TimerID {
		return s, tickCmd(msg.ID)
	}
	return s, nil
}

func (s *SessionScreen) handleOutcome(msg outcomeMsg) (screen.Screen, tea.Cmd) {
	next, err := s.state.Record(msg.Outcome)
	if err != nil {
		s.log.Warn("drop outcome", zap.Int("position", msg.Outcome.Position), zap.Error(err))
		return s, nil
	}
	s.state = next
	o := msg.Outcome
	s.last = &o
	s.showFeedback = true

	metrics.AnswersRecorded.WithLabelValues(string(o.Question.Skill), string(o.Confidence)).Inc()
	s.log.Debug("answer recorded",
		zap.Int("position", o.Position),
		zap.String("confidence", string(o.Confidence)),
		zap.Int("score", o.Score))
	return s, nil
}

func (s *SessionScreen) handleFeedbackDone() (screen.Screen, tea.Cmd) {
	s.showFeedback = false
	if s.state.Done() {
		return s, s.finish()
	}
	return s, s.loadQuestion(s.state.Position)
}

// finish writes the results to the profile.
func (s *SessionScreen) finish() tea.Cmd {
	s.saving = true
	deps, student, state, testID := s.deps, s.student, s.state, s.testID
	return func() tea.Msg {
		p, err := deps.Finish(context.Background(), student, state, testID)
		return savedMsg{Profile: p, Err: err}
	}
}

func (s *SessionScreen) handleSaved(msg savedMsg) (screen.Screen, tea.Cmd) {
	s.saving = false
	if msg.Err != nil {
		s.log.Error("save session failed", zap.Error(msg.Err))
		s.errMsg = "Your answers could not be saved: " + msg.Err.Error()
		return s, nil
	}
	s.student = msg.Profile
	metrics.SessionsCompleted.Inc()

	sum := summary.New(sess.BuildSummary(s.state), s.title)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: sum} }
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			return s.quit()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if s.saving {
		return s, nil
	}

	if s.showFeedback {
		return s.handleFeedbackDone()
	}

	if key == "esc" {
		s.confirmQuit = true
		return s, nil
	}

	if s.state.Phase != sess.PhasePresenting {
		return s, nil
	}

	switch key {
	case "ctrl+u":
		s.stopRecording()
		return s.submit(sess.Submission{Answer: s.draftPayload(), Confidence: sess.Partial})
	case "ctrl+s":
		s.stopRecording()
		return s.submit(sess.Submission{Answer: s.draftPayload(), Confidence: sess.None})
	case "tab":
		s.cycleMode()
		return s, nil
	}

	switch s.mode.Current() {
	case capture.InputAudio:
		return s.handleAudioKey(key)
	case capture.InputImage:
		return s.handleImageKey(msg)
	default:
		return s.handleTextKey(msg)
	}
}

func (s *SessionScreen) handleTextKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	q := s.state.Current
	if q != nil && q.IsMultipleChoice() {
		var cmd tea.Cmd
		s.choice, cmd = s.choice.Update(msg)
		if chosen, ok := s.choice.Chosen(); ok {
			s.state = s.state.WithText(chosen)
			return s.submit(sess.Submission{Answer: capture.Text{Value: chosen}, Confidence: sess.Confident})
		}
		return s, cmd
	}

	if msg.String() == "enter" {
		text, err := capture.TextAnswer(s.input.Value())
		if errors.Is(err, capture.ErrEmptyAnswer) {
			s.notice = "Type an answer first, or press Ctrl+S to skip."
			return s, nil
		}
		return s.submit(sess.Submission{Answer: text, Confidence: sess.Confident})
	}
	return s.forwardToInput(msg)
}

func (s *SessionScreen) handleAudioKey(key string) (screen.Screen, tea.Cmd) {
	if s.recorder == nil {
		s.notice = "No microphone is configured."
		return s, nil
	}
	switch key {
	case "ctrl+r":
		if s.recorder.State() == capture.RecorderRecording {
			m, err := s.recorder.Stop()
			if err != nil {
				s.notice = err.Error()
				return s, nil
			}
			s.state = s.state.WithMedia(m)
			s.notice = "Recording saved. Press Enter to submit or Ctrl+D to redo."
			return s, nil
		}
		if err := s.recorder.Start(context.Background()); err != nil {
			s.log.Warn("start recording failed", zap.Error(err))
			s.notice = err.Error()
			return s, nil
		}
		s.state = s.state.WithoutMedia()
		s.notice = "Recording... press Ctrl+R to stop."
	case "ctrl+d":
		s.recorder.Redo()
		s.state = s.state.WithoutMedia()
		s.notice = ""
	case "enter":
		if s.recorder.State() == capture.RecorderRecording {
			s.notice = "Stop the recording first (Ctrl+R)."
			return s, nil
		}
		m, ok := s.recorder.Media()
		if !ok {
			s.notice = "Record an answer first (Ctrl+R)."
			return s, nil
		}
		return s.submit(sess.Submission{Answer: m, Confidence: sess.Confident})
	}
	return s, nil
}

func (s *SessionScreen) handleImageKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "ctrl+d":
		s.picker.Clear()
		s.state = s.state.WithoutMedia()
		s.pathIn = components.NewTextInput("Path to a photo of your answer", false, 260)
		s.notice = ""
		return s, s.pathIn.Init()
	case "enter":
		path := s.pathIn.Value()
		if m, ok := s.picker.Media(); ok && path == s.picker.Path() {
			return s.submit(sess.Submission{Answer: m, Confidence: sess.Confident})
		}
		m, err := s.picker.Replace(path)
		if err != nil {
			s.state = s.state.WithoutMedia()
			s.notice = err.Error()
			return s, nil
		}
		s.state = s.state.WithMedia(m)
		s.notice = "Image loaded (" + m.MIMEType + "). Press Enter again to submit."
		return s, nil
	}
	var cmd tea.Cmd
	s.pathIn, cmd = s.pathIn.Update(msg)
	return s, cmd
}

// forwardToInput passes msg to the text input and buffers its value so
// the timer can submit it on expiry.
func (s *SessionScreen) forwardToInput(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if s.mode.Current() != capture.InputText || (s.state.Current != nil && s.state.Current.IsMultipleChoice()) {
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.state = s.state.WithText(s.input.Value())
	if s.input.Value() != "" {
		s.notice = ""
	}
	return s, cmd
}

func (s *SessionScreen) cycleMode() {
	allowed := s.mode.Allowed()
	if len(allowed) < 2 {
		return
	}
	s.stopRecording()
	for i, m := range allowed {
		if m == s.mode.Current() {
			_ = s.mode.Select(allowed[(i+1)%len(allowed)])
			break
		}
	}
	s.notice = ""
}

// draftPayload is what the student has captured so far, used by the
// unsure and skip shortcuts.
func (s *SessionScreen) draftPayload() capture.Payload {
	d := s.state.Draft
	if d.Text != "" {
		return capture.Text{Value: d.Text}
	}
	if d.Media != nil && !d.Media.Empty() {
		return *d.Media
	}
	return capture.Text{}
}

// stopRecording finishes a running recording so it lands in the draft.
func (s *SessionScreen) stopRecording() {
	if s.recorder == nil || s.recorder.State() != capture.RecorderRecording {
		return
	}
	if m, err := s.recorder.Stop(); err == nil {
		s.state = s.state.WithMedia(m)
	}
}

// submit hands the answer to the engine and grades it asynchronously.
func (s *SessionScreen) submit(sub sess.Submission) (screen.Screen, tea.Cmd) {
	next, pending, err := s.state.Begin(sub)
	if err != nil {
		return s, nil
	}
	s.state = next
	s.notice = ""

	evaluator := s.deps.Evaluator
	return s, func() tea.Msg {
		return outcomeMsg{Outcome: sess.Resolve(context.Background(), pending, evaluator)}
	}
}

func (s *SessionScreen) quit() (screen.Screen, tea.Cmd) {
	if s.recorder != nil {
		_ = s.recorder.Close()
	}
	s.state = s.state.Abandon()
	s.log.Info("session abandoned", zap.Int("answered", len(s.state.Outcomes)))
	return s, func() tea.Msg { return router.PopScreenMsg{} }
}

// tickCmd returns a 1-second tick for timer id.
func tickCmd(id int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return timerTickMsg{ID: id}
	})
}
