package profile

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/TIMOVIS/mandarin-exam/internal/questiongen"
	"github.com/TIMOVIS/mandarin-exam/internal/roadmap"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

// CompleteSession folds a finished session into the profile: per-skill
// results are merged into the roadmap, logs are appended tagged with the
// test, and the test (when there is one) is marked completed with the
// rounded mean of the session's log scores.
func CompleteSession(p Profile, testID string, results map[skill.Skill]int, logs []AssessmentLog, now time.Time, rec roadmap.Reconciler) Profile {
	out := p.Clone()
	out.Points = rec.MergeSkillScores(out.Points, results)

	for _, l := range logs {
		if testID != "" {
			l.TestID = testID
		}
		out.Logs = append(out.Logs, l)
	}

	if testID != "" {
		for i := range out.Tests {
			if out.Tests[i].ID != testID {
				continue
			}
			score := meanScore(logs)
			completed := now
			out.Tests[i].CompletedAt = &completed
			out.Tests[i].OverallScore = &score
		}
	}

	out.UpdatedAt = now
	return out
}

func meanScore(logs []AssessmentLog) int {
	if len(logs) == 0 {
		return 0
	}
	sum := 0
	for _, l := range logs {
		sum += l.Evaluation.Score
	}
	return int(math.Round(float64(sum) / float64(len(logs))))
}

// OverrideLog replaces the evaluator's verdict with the tutor's. The
// student's answer and the timestamp are kept. A log can be overridden once.
func OverrideLog(p Profile, logID string, score int, tutorFeedback string) (Profile, error) {
	idx := slices.IndexFunc(p.Logs, func(l AssessmentLog) bool { return l.ID == logID })
	if idx < 0 {
		return Profile{}, fmt.Errorf("override %s: %w", logID, ErrLogNotFound)
	}
	if p.Logs[idx].Evaluation.IsOverridden {
		return Profile{}, fmt.Errorf("override %s: %w", logID, ErrAlreadyOverridden)
	}

	out := p.Clone()
	score = min(max(score, 0), 100)
	ev := &out.Logs[idx].Evaluation
	ev.Score = score
	ev.IsCorrect = score >= PassMark
	ev.TutorFeedback = tutorFeedback
	ev.IsOverridden = true
	return out, nil
}

// EditPoint sets a roadmap score directly.
func EditPoint(p Profile, pointID string, score int, rec roadmap.Reconciler) (Profile, error) {
	pts, err := rec.SetScore(p.Points, pointID, score)
	if err != nil {
		return Profile{}, err
	}
	out := p.Clone()
	out.Points = pts
	return out, nil
}

// AppealPoint flags a roadmap point for the tutor.
func AppealPoint(p Profile, pointID string) (Profile, error) {
	pts, err := roadmap.Appeal(p.Points, pointID)
	if err != nil {
		return Profile{}, err
	}
	out := p.Clone()
	out.Points = pts
	return out, nil
}

// UnlockAll opens the whole roadmap.
func UnlockAll(p Profile) Profile {
	out := p.Clone()
	out.Points = roadmap.UnlockAll(out.Points)
	return out
}

// ResetPoints restores the syllabus. Logs and tests are kept.
func ResetPoints(p Profile) Profile {
	out := p.Clone()
	out.Points = roadmap.Reset()
	return out
}

// AssignTest adds a pending test built from questions.
func AssignTest(p Profile, title string, questions []questiongen.Question, now time.Time) (Profile, AssignedTest) {
	if title == "" {
		title = "Assessment " + now.Format("2006-01-02 15:04")
	}
	t := AssignedTest{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		Questions: cloneQuestions(questions),
	}
	out := p.Clone()
	out.Tests = append(out.Tests, t)
	return out, t
}

// UpdateTest replaces the title and questions of a pending test. An empty
// title keeps the current one.
func UpdateTest(p Profile, testID, title string, questions []questiongen.Question) (Profile, error) {
	idx := slices.IndexFunc(p.Tests, func(t AssignedTest) bool { return t.ID == testID })
	if idx < 0 {
		return Profile{}, fmt.Errorf("update test %s: %w", testID, ErrTestNotFound)
	}
	if p.Tests[idx].Completed() {
		return Profile{}, fmt.Errorf("update test %s: %w", testID, ErrTestCompleted)
	}
	out := p.Clone()
	if title != "" {
		out.Tests[idx].Title = title
	}
	out.Tests[idx].Questions = cloneQuestions(questions)
	return out, nil
}

// DeleteTest removes a test. Logs already tagged with it are kept.
func DeleteTest(p Profile, testID string) (Profile, error) {
	idx := slices.IndexFunc(p.Tests, func(t AssignedTest) bool { return t.ID == testID })
	if idx < 0 {
		return Profile{}, fmt.Errorf("delete test %s: %w", testID, ErrTestNotFound)
	}
	out := p.Clone()
	out.Tests = slices.Delete(out.Tests, idx, idx+1)
	return out, nil
}

// FindTest returns the test with id.
func (p Profile) FindTest(id string) (AssignedTest, bool) {
	for _, t := range p.Tests {
		if t.ID == id {
			return t, true
		}
	}
	return AssignedTest{}, false
}

// PendingTests returns tests not yet taken, newest first.
func (p Profile) PendingTests() []AssignedTest {
	var out []AssignedTest
	for _, t := range p.Tests {
		if !t.Completed() {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b AssignedTest) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// CompletedTests returns taken tests, most recently completed first.
func (p Profile) CompletedTests() []AssignedTest {
	var out []AssignedTest
	for _, t := range p.Tests {
		if t.Completed() {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b AssignedTest) int {
		return b.CompletedAt.Compare(*a.CompletedAt)
	})
	return out
}

// LogsForTest returns the logs recorded while taking testID, in order.
func (p Profile) LogsForTest(testID string) []AssessmentLog {
	var out []AssessmentLog
	for _, l := range p.Logs {
		if l.TestID == testID {
			out = append(out, l)
		}
	}
	return out
}

// FindLog returns the log with id.
func (p Profile) FindLog(id string) (AssessmentLog, bool) {
	for _, l := range p.Logs {
		if l.ID == id {
			return l, true
		}
	}
	return AssessmentLog{}, false
}

func cloneQuestions(qs []questiongen.Question) []questiongen.Question {
	out := make([]questiongen.Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}
