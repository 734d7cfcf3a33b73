// Package profile holds a student's persistent state and the pure
// transitions applied to it by sessions and tutors.
package profile

import (
	"errors"
	"time"

	"github.com/TIMOVIS/mandarin-exam/internal/questiongen"
	"github.com/TIMOVIS/mandarin-exam/internal/roadmap"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

var (
	ErrLogNotFound       = errors.New("assessment log not found")
	ErrAlreadyOverridden = errors.New("assessment log already overridden")
	ErrTestNotFound      = errors.New("assigned test not found")
	ErrTestCompleted     = errors.New("assigned test already completed")
	ErrInvalidName       = errors.New("student name is required")
)

// PassMark is the override score at or above which an answer counts as
// correct.
const PassMark = 60

// Profile is everything stored for one student.
type Profile struct {
	Name      string                  `json:"name" bson:"name"`
	Age       int                     `json:"age" bson:"age"`
	Comments  string                  `json:"comments,omitempty" bson:"comments,omitempty"`
	Points    []roadmap.LearningPoint `json:"points" bson:"points"`
	Logs      []AssessmentLog         `json:"logs" bson:"logs"`
	Tests     []AssignedTest          `json:"tests" bson:"tests"`
	UpdatedAt time.Time               `json:"updatedAt" bson:"updated_at"`
}

// Evaluation is the graded outcome stored with a log.
type Evaluation struct {
	IsCorrect     bool   `json:"isCorrect" bson:"is_correct"`
	Score         int    `json:"score" bson:"score"`
	Feedback      string `json:"feedback" bson:"feedback"`
	TutorFeedback string `json:"tutorFeedback,omitempty" bson:"tutor_feedback,omitempty"`
	IsOverridden  bool   `json:"isOverridden,omitempty" bson:"is_overridden,omitempty"`
}

// AssessmentLog records one answered question.
type AssessmentLog struct {
	ID              string      `json:"id" bson:"id"`
	TestID          string      `json:"testId,omitempty" bson:"test_id,omitempty"`
	QuestionID      string      `json:"questionId" bson:"question_id"`
	QuestionContent string      `json:"questionContent" bson:"question_content"`
	Skill           skill.Skill `json:"skill" bson:"skill"`
	StudentAnswer   string      `json:"studentAnswer" bson:"student_answer"`
	// MediaKey locates the archived recording or image, when there is one.
	MediaKey   string     `json:"mediaKey,omitempty" bson:"media_key,omitempty"`
	Evaluation Evaluation `json:"evaluation" bson:"evaluation"`
	Timestamp  time.Time  `json:"timestamp" bson:"timestamp"`
}

// AssignedTest is a tutor-authored question set.
type AssignedTest struct {
	ID           string                 `json:"id" bson:"id"`
	Title        string                 `json:"title" bson:"title"`
	CreatedAt    time.Time              `json:"createdAt" bson:"created_at"`
	CompletedAt  *time.Time             `json:"completedAt,omitempty" bson:"completed_at,omitempty"`
	Questions    []questiongen.Question `json:"questions" bson:"questions"`
	OverallScore *int                   `json:"overallScore,omitempty" bson:"overall_score,omitempty"`
}

// Completed reports whether the student has taken the test.
func (t AssignedTest) Completed() bool { return t.CompletedAt != nil }

// New starts a profile on the default syllabus.
func New(name string, age int) (Profile, error) {
	if name == "" {
		return Profile{}, ErrInvalidName
	}
	return Profile{
		Name:   name,
		Age:    age,
		Points: roadmap.Syllabus(),
	}, nil
}

// HasHistory reports whether the student has attempted anything, which
// decides between the dashboard and the welcome screen.
func (p Profile) HasHistory() bool {
	if len(p.Tests) > 0 {
		return true
	}
	for _, pt := range p.Points {
		if pt.Score > 0 {
			return true
		}
	}
	return false
}

// Clone returns a copy whose slices can be changed without touching p.
func (p Profile) Clone() Profile {
	p.Points = append([]roadmap.LearningPoint(nil), p.Points...)
	p.Logs = append([]AssessmentLog(nil), p.Logs...)
	tests := make([]AssignedTest, len(p.Tests))
	for i, t := range p.Tests {
		qs := make([]questiongen.Question, len(t.Questions))
		for j, q := range t.Questions {
			qs[j] = q.Clone()
		}
		t.Questions = qs
		tests[i] = t
	}
	if p.Tests == nil {
		tests = nil
	}
	p.Tests = tests
	return p
}
