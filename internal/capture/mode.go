package capture

import (
	"errors"
	"slices"
	"strings"

	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

var (
	// ErrModeNotAllowed is returned when an input mode is not offered for
	// the current question's skill.
	ErrModeNotAllowed = errors.New("input mode not allowed for this skill")

	// ErrEmptyAnswer is returned when a text answer is blank.
	ErrEmptyAnswer = errors.New("answer is empty")
)

// InputMode is how the student answers.
type InputMode string

const (
	InputText  InputMode = "text"
	InputAudio InputMode = "audio"
	InputImage InputMode = "image"
)

// AllowedModes returns the input modes offered for a skill, preferred first.
func AllowedModes(sk skill.Skill) []InputMode {
	switch sk {
	case skill.Speaking:
		return []InputMode{InputAudio}
	case skill.Writing:
		return []InputMode{InputText, InputImage}
	default:
		return []InputMode{InputText, InputAudio, InputImage}
	}
}

// ModeSelector tracks the active input mode for the current question.
type ModeSelector struct {
	skill   skill.Skill
	current InputMode
}

// NewModeSelector starts on the first mode allowed for sk.
func NewModeSelector(sk skill.Skill) *ModeSelector {
	m := &ModeSelector{current: InputText}
	m.Reset(sk)
	return m
}

// Current returns the active mode.
func (m *ModeSelector) Current() InputMode { return m.current }

// Allowed returns the modes offered for the current skill.
func (m *ModeSelector) Allowed() []InputMode { return AllowedModes(m.skill) }

// Select switches to mode. A disallowed mode leaves the selection unchanged.
func (m *ModeSelector) Select(mode InputMode) error {
	if !slices.Contains(AllowedModes(m.skill), mode) {
		return ErrModeNotAllowed
	}
	m.current = mode
	return nil
}

// Reset moves to a new question's skill. The current mode is kept when it
// is still allowed.
func (m *ModeSelector) Reset(sk skill.Skill) {
	m.skill = sk
	allowed := AllowedModes(sk)
	if !slices.Contains(allowed, m.current) {
		m.current = allowed[0]
	}
}

// TextAnswer trims raw input into a Text payload.
func TextAnswer(raw string) (Text, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Text{}, ErrEmptyAnswer
	}
	return Text{Value: v}, nil
}
