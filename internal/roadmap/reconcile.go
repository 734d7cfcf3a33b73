package roadmap

import (
	"errors"
	"fmt"

	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

// ErrUnknownPoint is returned when a transition names a point that is not
// on the roadmap.
var ErrUnknownPoint = errors.New("unknown learning point")

// Reconciler folds session results and tutor edits into a roadmap.
// Every method returns a new slice; the input is never mutated.
type Reconciler struct {
	Thresholds Thresholds
}

// NewReconciler returns a Reconciler using the default thresholds.
func NewReconciler() Reconciler {
	return Reconciler{Thresholds: DefaultThresholds()}
}

// MergeSkillScores applies a finished session's per-skill percentages to
// every point of that skill. A point's score never decreases here.
func (r Reconciler) MergeSkillScores(points []LearningPoint, results map[skill.Skill]int) []LearningPoint {
	out := clone(points)
	for i := range out {
		score, ok := results[out[i].Skill]
		if !ok {
			continue
		}
		merged := max(out[i].Score, clampScore(score))
		out[i].Score = merged
		out[i].Status = r.Thresholds.StatusFor(merged)
		out[i].AppealActive = false
	}
	return out
}

// SetScore is the tutor's direct edit: the score is set unconditionally.
func (r Reconciler) SetScore(points []LearningPoint, id string, score int) ([]LearningPoint, error) {
	idx := Find(points, id)
	if idx < 0 {
		return nil, fmt.Errorf("set score %s: %w", id, ErrUnknownPoint)
	}
	out := clone(points)
	score = clampScore(score)
	out[idx].Score = score
	out[idx].Status = r.Thresholds.StatusFor(score)
	out[idx].AppealActive = false
	return out, nil
}

// Appeal flags a point for tutor review.
func Appeal(points []LearningPoint, id string) ([]LearningPoint, error) {
	idx := Find(points, id)
	if idx < 0 {
		return nil, fmt.Errorf("appeal %s: %w", id, ErrUnknownPoint)
	}
	out := clone(points)
	out[idx].AppealActive = true
	return out, nil
}

// UnlockAll opens every point at in-progress with a score of 50.
func UnlockAll(points []LearningPoint) []LearningPoint {
	out := clone(points)
	for i := range out {
		out[i].Status = StatusInProgress
		out[i].Score = 50
	}
	return out
}

// Reset restores the syllabus.
func Reset() []LearningPoint {
	return Syllabus()
}

func clone(points []LearningPoint) []LearningPoint {
	out := make([]LearningPoint, len(points))
	copy(out, points)
	return out
}

func clampScore(score int) int {
	return min(max(score, 0), 100)
}
