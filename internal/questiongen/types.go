package questiongen

import "github.com/TIMOVIS/mandarin-exam/internal/skill"

// DefaultTimeLimit is the answer window in seconds when a question does not
// carry its own.
const DefaultTimeLimit = 60

// Question is a single assessment item ready for display.
type Question struct {
	ID string `json:"id" yaml:"id"`

	// LearningPointID links the question to a roadmap point when it was
	// generated for a specific topic. Empty for baseline questions.
	LearningPointID string `json:"learningPointId,omitempty" yaml:"learningPointId,omitempty"`

	Skill skill.Skill `json:"skill" yaml:"skill"`
	Stage int         `json:"stage" yaml:"stage"`
	Mode  skill.Mode  `json:"mode" yaml:"mode"`

	// Content is the prompt shown to the student. Instructions are
	// bilingual, reading passages are Chinese only.
	Content string `json:"content" yaml:"content"`

	// AudioScript is the Chinese text read aloud for listening questions.
	AudioScript string `json:"audioScript,omitempty" yaml:"audioScript,omitempty"`

	// Options is non-empty only for multiple choice.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`

	// CorrectAnswer is the exact option text for multiple choice, or the
	// model answer for open-ended questions.
	CorrectAnswer string `json:"correctAnswer" yaml:"correctAnswer"`

	Difficulty skill.Difficulty `json:"difficulty" yaml:"difficulty"`

	// TimeLimit is in seconds. Zero means DefaultTimeLimit.
	TimeLimit int `json:"timeLimit,omitempty" yaml:"timeLimit,omitempty"`
}

// IsMultipleChoice reports whether the student picks from Options.
func (q Question) IsMultipleChoice() bool {
	return len(q.Options) > 0
}

// Limit returns the answer window in seconds.
func (q Question) Limit() int {
	if q.TimeLimit > 0 {
		return q.TimeLimit
	}
	return DefaultTimeLimit
}

// Clone returns a deep copy so callers can hand questions out without
// sharing the options slice.
func (q Question) Clone() Question {
	if q.Options != nil {
		q.Options = append([]string(nil), q.Options...)
	}
	return q
}

// Task is one unit of a generation request.
type Task struct {
	Topic      string           `json:"topic" yaml:"topic"`
	Skill      skill.Skill      `json:"skill" yaml:"skill"`
	Difficulty skill.Difficulty `json:"difficulty" yaml:"difficulty"`
	Stage      int              `json:"stage" yaml:"stage"`

	// Context is optional tutor guidance, such as notes on the student.
	Context string `json:"context,omitempty" yaml:"context,omitempty"`

	// LearningPointID is copied onto the resulting question.
	LearningPointID string `json:"learningPointId,omitempty" yaml:"learningPointId,omitempty"`
}
