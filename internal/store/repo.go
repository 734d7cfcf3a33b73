package store

import (
	"context"
	"errors"
	"time"

	"github.com/TIMOVIS/mandarin-exam/internal/llm"
	"github.com/TIMOVIS/mandarin-exam/internal/profile"
)

// ErrDuplicateName is returned by Create when a student with the same
// name already exists.
var ErrDuplicateName = errors.New("a student with this name already exists")

// RosterEntry is the summary shown in the student list.
type RosterEntry struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Comments   string `json:"comments,omitempty"`
	TestsCount int    `json:"testsCount"`
}

//go:generate go run go.uber.org/mock/mockgen -destination=mock_repo_test.go -package=store . ProfileRepo

// ProfileRepo persists student profiles keyed by name.
type ProfileRepo interface {
	// Get returns the profile, or nil when the student does not exist.
	Get(ctx context.Context, name string) (*profile.Profile, error)

	// Save inserts or replaces the profile.
	Save(ctx context.Context, p profile.Profile) error

	// Create inserts a new profile, failing with ErrDuplicateName.
	Create(ctx context.Context, p profile.Profile) error

	// Delete removes the student. Deleting a missing student is not an error.
	Delete(ctx context.Context, name string) error

	// Roster lists all students by name.
	Roster(ctx context.Context) ([]RosterEntry, error)
}

func rosterEntry(p profile.Profile) RosterEntry {
	return RosterEntry{Name: p.Name, Age: p.Age, Comments: p.Comments, TestsCount: len(p.Tests)}
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // id > After
	Before  int64     // id < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match when set
}

// LLMEvent is a stored LLM request.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	llm.RequestEvent
}

// PurposeUsage aggregates token usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// Snapshot is a saved copy of a profile taken before a destructive edit.
type Snapshot struct {
	ID        int
	Student   string
	Reason    string
	Timestamp time.Time
	Data      profile.Profile
}

// SnapshotRepo manages profile snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the student's most recent snapshot, or nil if none exist.
	Latest(ctx context.Context, student string) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots of the student.
	Prune(ctx context.Context, student string, keep int) error
}
