package session

import (
	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/questiongen"
	sess "github.com/TIMOVIS/mandarin-exam/internal/session"
)

// questionReadyMsg is sent when the question for Position has been loaded.
type questionReadyMsg struct {
	Position int
	Question questiongen.Question
	Err      error
}

// timerTickMsg is sent every second while a question is presented. ID is
// the engine timer the tick belongs to.
type timerTickMsg struct {
	ID int
}

// outcomeMsg is sent when an answer has been graded.
type outcomeMsg struct {
	Outcome sess.Outcome
}

// savedMsg is sent once a finished session has been written to the profile.
type savedMsg struct {
	Profile profile.Profile
	Err     error
}
