package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/TIMOVIS/mandarin-exam/internal/llm"
	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/questiongen"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testProfile(t *testing.T, name string) profile.Profile {
	t.Helper()
	p, err := profile.New(name, 14)
	if err != nil {
		t.Fatalf("new profile: %v", err)
	}
	p.Comments = "Needs tone practice"
	p.UpdatedAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return p
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here. It is tested with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestWALMode(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want %q", mode, "wal")
	}
}

func TestProfileRepo_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProfileRepo()
	ctx := context.Background()

	got, err := repo.Get(ctx, "Mei")
	if err != nil {
		t.Fatalf("get (empty): %v", err)
	}
	if got != nil {
		t.Fatal("expected nil profile for unknown student")
	}

	p := testProfile(t, "Mei")
	p, _ = profile.AssignTest(p, "Week 1", []questiongen.Question{{
		ID: "q1", Skill: skill.Reading, Content: "读一读", Options: []string{"a", "b"}, CorrectAnswer: "a",
	}}, p.UpdatedAt)
	p.Logs = append(p.Logs, profile.AssessmentLog{
		ID: "l1", QuestionID: "q1", Skill: skill.Reading, StudentAnswer: "a",
		Evaluation: profile.Evaluation{IsCorrect: true, Score: 100, Feedback: "Correct selection."},
		Timestamp:  p.UpdatedAt,
	})

	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err = repo.Get(ctx, "Mei")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected profile")
	}
	if got.Age != 14 || got.Comments != "Needs tone practice" {
		t.Errorf("unexpected fields: %+v", got)
	}
	if len(got.Points) != 36 {
		t.Errorf("expected 36 points, got %d", len(got.Points))
	}
	if len(got.Tests) != 1 || got.Tests[0].Questions[0].Options[1] != "b" {
		t.Errorf("tests not round-tripped: %+v", got.Tests)
	}
	if len(got.Logs) != 1 || got.Logs[0].Evaluation.Score != 100 {
		t.Errorf("logs not round-tripped: %+v", got.Logs)
	}
	if !got.UpdatedAt.Equal(p.UpdatedAt) {
		t.Errorf("updated_at = %v, want %v", got.UpdatedAt, p.UpdatedAt)
	}
}

func TestProfileRepo_CreateDuplicate(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProfileRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, testProfile(t, "Mei")); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := repo.Create(ctx, testProfile(t, "Mei"))
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestProfileRepo_SaveUpserts(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProfileRepo()
	ctx := context.Background()

	p := testProfile(t, "Leo")
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("save (insert): %v", err)
	}
	p.Age = 15
	p = profile.UnlockAll(p)
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("save (update): %v", err)
	}

	got, err := repo.Get(ctx, "Leo")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Age != 15 {
		t.Errorf("age = %d, want 15", got.Age)
	}
	if got.Points[0].Score != 50 {
		t.Errorf("points not updated: %+v", got.Points[0])
	}

	roster, err := repo.Roster(ctx)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(roster) != 1 {
		t.Fatalf("expected 1 student, got %d", len(roster))
	}
}

func TestProfileRepo_RosterAndDelete(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProfileRepo()
	ctx := context.Background()

	zoe := testProfile(t, "Zoe")
	zoe, _ = profile.AssignTest(zoe, "A", nil, zoe.UpdatedAt)
	zoe, _ = profile.AssignTest(zoe, "B", nil, zoe.UpdatedAt)
	for _, p := range []profile.Profile{zoe, testProfile(t, "Amy")} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("create %s: %v", p.Name, err)
		}
	}

	roster, err := repo.Roster(ctx)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	want := []RosterEntry{
		{Name: "Amy", Age: 14, Comments: "Needs tone practice", TestsCount: 0},
		{Name: "Zoe", Age: 14, Comments: "Needs tone practice", TestsCount: 2},
	}
	if len(roster) != len(want) {
		t.Fatalf("roster = %+v", roster)
	}
	for i := range want {
		if roster[i] != want[i] {
			t.Errorf("roster[%d] = %+v, want %+v", i, roster[i], want[i])
		}
	}

	if err := repo.Delete(ctx, "Zoe"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "Zoe"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	got, _ := repo.Get(ctx, "Zoe")
	if got != nil {
		t.Error("expected student to be gone")
	}
}

func TestEventRepo_AppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, purpose := range []string{"question-gen", "evaluate", "evaluate"} {
		err := repo.AppendLLMRequest(ctx, llm.RequestEvent{
			Provider:     "gemini",
			Model:        "gemini-3-flash-preview",
			Purpose:      purpose,
			InputTokens:  100 * (i + 1),
			OutputTokens: 10,
			LatencyMs:    int64(200 * (i + 1)),
			Success:      i != 2,
			ErrorMessage: map[bool]string{true: "", false: "timeout"}[i != 2],
			RequestBody:  `{"system":"…"}`,
			ResponseBody: `{"isCorrect":true}`,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ID <= events[1].ID {
		t.Error("expected newest first")
	}
	if events[0].Success || events[0].ErrorMessage != "timeout" {
		t.Errorf("unexpected newest event: %+v", events[0])
	}

	evals, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "evaluate"})
	if err != nil {
		t.Fatalf("query purpose: %v", err)
	}
	if len(evals) != 2 {
		t.Errorf("expected 2 evaluate events, got %d", len(evals))
	}

	e, err := repo.GetLLMEvent(ctx, events[1].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.RequestBody != `{"system":"…"}` {
		t.Errorf("unexpected event: %+v", e)
	}
	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for missing event; got %v, %v", missing, err)
	}

	usage, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if len(usage) != 2 || usage[0].Purpose != "evaluate" || usage[0].Calls != 2 || usage[0].InputTokens != 500 {
		t.Errorf("unexpected usage: %+v", usage)
	}
	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 1 || byModel[0].Calls != 3 {
		t.Errorf("unexpected model usage: %+v", byModel)
	}
}

func TestSnapshotSaveLatestPrune(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	snap, err := repo.Latest(ctx, "Mei")
	if err != nil {
		t.Fatalf("latest (empty): %v", err)
	}
	if snap != nil {
		t.Fatal("expected nil snapshot when none exist")
	}

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		p := testProfile(t, "Mei")
		p.Age = 10 + i
		if err := repo.Save(ctx, &Snapshot{Student: "Mei", Reason: "reset", Timestamp: base.Add(time.Duration(i) * time.Hour), Data: p}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	if err := repo.Save(ctx, &Snapshot{Student: "Leo", Data: testProfile(t, "Leo")}); err != nil {
		t.Fatalf("save other: %v", err)
	}

	snap, err = repo.Latest(ctx, "Mei")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap.Data.Age != 13 || snap.Reason != "reset" {
		t.Errorf("unexpected latest snapshot: %+v", snap)
	}

	if err := repo.Prune(ctx, "Mei", 2); err != nil {
		t.Fatalf("prune: %v", err)
	}
	var count int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM profile_snapshots WHERE student = 'Mei'`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 snapshots after prune, got %d", count)
	}
	other, _ := repo.Latest(ctx, "Leo")
	if other == nil {
		t.Error("prune removed another student's snapshot")
	}
}
