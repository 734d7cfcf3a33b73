package screen

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/TIMOVIS/mandarin-exam/internal/capture"
	"github.com/TIMOVIS/mandarin-exam/internal/grading"
	"github.com/TIMOVIS/mandarin-exam/internal/logger"
	"github.com/TIMOVIS/mandarin-exam/internal/media"
	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/questiongen"
	"github.com/TIMOVIS/mandarin-exam/internal/roadmap"
	"github.com/TIMOVIS/mandarin-exam/internal/session"
	"github.com/TIMOVIS/mandarin-exam/internal/store"
)

// Deps are the services shared by every screen. Generator and Evaluator
// are nil when no LLM provider is configured.
type Deps struct {
	Profiles   store.ProfileRepo
	Snapshots  store.SnapshotRepo
	Generator  questiongen.Generator
	Evaluator  grading.Evaluator
	Archive    media.Archive
	Reconciler roadmap.Reconciler
	Audio      capture.Device
	Log        *zap.Logger
}

// CanAssess reports whether sessions can be started.
func (d Deps) CanAssess() bool {
	return d.Generator != nil && d.Evaluator != nil
}

// Finish folds a finished session into the student's profile and saves it.
// Media is archived first so the stored logs carry their keys. Abandoned
// sessions leave the profile untouched.
func (d Deps) Finish(ctx context.Context, p profile.Profile, s session.State, testID string) (profile.Profile, error) {
	if s.Phase != session.PhaseFinished {
		return p, nil
	}
	log := logger.OrNop(d.Log)

	logs := session.Logs(s.Outcomes, testID)
	archive := d.Archive
	if archive == nil {
		archive = media.NopArchive{}
	}
	media.Attach(ctx, archive, p.Name, s.Outcomes, logs, log)

	updated := profile.CompleteSession(p, testID, s.Results(), logs, time.Now(), d.Reconciler)
	if err := d.Profiles.Save(ctx, updated); err != nil {
		return p, fmt.Errorf("save profile %q: %w", p.Name, err)
	}
	log.Info("session saved",
		zap.String("student", p.Name),
		zap.String("test", testID),
		zap.Int("answers", len(logs)))
	return updated, nil
}

// Snapshot saves a copy of p before a destructive edit. Snapshots beyond
// keep are pruned.
func (d Deps) Snapshot(ctx context.Context, p profile.Profile, reason string, keep int) error {
	if d.Snapshots == nil {
		return nil
	}
	if err := d.Snapshots.Save(ctx, &store.Snapshot{
		Student:   p.Name,
		Reason:    reason,
		Timestamp: time.Now(),
		Data:      p.Clone(),
	}); err != nil {
		return fmt.Errorf("snapshot %q: %w", p.Name, err)
	}
	if keep > 0 {
		return d.Snapshots.Prune(ctx, p.Name, keep)
	}
	return nil
}

// Mastered counts the student's mastered learning points.
func Mastered(p profile.Profile) int {
	n := 0
	for _, lp := range p.Points {
		if lp.Status == roadmap.StatusMastered {
			n++
		}
	}
	return n
}
