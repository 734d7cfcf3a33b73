package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// snapshotRepo implements SnapshotRepo on the profile_snapshots table.
type snapshotRepo struct {
	db *sql.DB
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}
	ts := snap.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query, args := builder().Insert(snapshotsTable.Name).
		Columns("student", "reason", "timestamp", "data").
		Values(snap.Student, snap.Reason, ts.UTC(), string(data)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context, student string) (*Snapshot, error) {
	query, args := builder().Select("id", "student", "reason", "timestamp", "data").
		From(entsql.Table(snapshotsTable.Name)).
		Where(entsql.EQ("student", student)).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Query()

	var (
		s    Snapshot
		data string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.Student, &s.Reason, &s.Timestamp, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &s.Data); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot data: %w", err)
	}
	return &s, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, student string, keep int) error {
	// Find the id of the Nth most recent snapshot.
	query, args := builder().Select("id").
		From(entsql.Table(snapshotsTable.Name)).
		Where(entsql.EQ("student", student)).
		OrderBy(entsql.Desc("id")).
		Offset(keep).
		Limit(1).
		Query()

	var threshold int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find prune threshold: %w", err)
	}

	del, dargs := builder().Delete(snapshotsTable.Name).
		Where(entsql.And(entsql.EQ("student", student), entsql.LTE("id", threshold))).
		Query()
	if _, err := r.db.ExecContext(ctx, del, dargs...); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
