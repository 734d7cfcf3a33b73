package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"

	"github.com/TIMOVIS/mandarin-exam/internal/profile"
)

// SQLProfileRepo implements ProfileRepo on the local students table.
type SQLProfileRepo struct {
	db *sql.DB
}

var studentColumns = []string{"name", "age", "comments", "points", "logs", "tests", "updated_at"}

func (r *SQLProfileRepo) Get(ctx context.Context, name string) (*profile.Profile, error) {
	query, args := builder().Select(studentColumns...).
		From(entsql.Table(studentsTable.Name)).
		Where(entsql.EQ("name", name)).
		Query()

	var (
		p                   profile.Profile
		points, logs, tests string
		updatedAt           time.Time
	)
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&p.Name, &p.Age, &p.Comments, &points, &logs, &tests, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query student %s: %w", name, err)
	}

	for _, f := range []struct {
		raw string
		dst any
	}{{points, &p.Points}, {logs, &p.Logs}, {tests, &p.Tests}} {
		if f.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return nil, fmt.Errorf("decode student %s: %w", name, err)
		}
	}
	p.UpdatedAt = updatedAt
	return &p, nil
}

func (r *SQLProfileRepo) Save(ctx context.Context, p profile.Profile) error {
	ins, err := insertStudent(p)
	if err != nil {
		return err
	}
	query, args := ins.
		OnConflict(entsql.ConflictColumns("name"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save student %s: %w", p.Name, err)
	}
	return nil
}

func (r *SQLProfileRepo) Create(ctx context.Context, p profile.Profile) error {
	ins, err := insertStudent(p)
	if err != nil {
		return err
	}
	query, args := ins.Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if sqlgraph.IsUniqueConstraintError(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("create student %s: %w", p.Name, err)
	}
	return nil
}

func (r *SQLProfileRepo) Delete(ctx context.Context, name string) error {
	query, args := builder().Delete(studentsTable.Name).
		Where(entsql.EQ("name", name)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete student %s: %w", name, err)
	}
	return nil
}

func (r *SQLProfileRepo) Roster(ctx context.Context) ([]RosterEntry, error) {
	query, args := builder().Select("name", "age", "comments", "tests").
		From(entsql.Table(studentsTable.Name)).
		OrderBy("name").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	defer rows.Close()

	var out []RosterEntry
	for rows.Next() {
		var (
			e     RosterEntry
			tests string
		)
		if err := rows.Scan(&e.Name, &e.Age, &e.Comments, &tests); err != nil {
			return nil, fmt.Errorf("scan roster: %w", err)
		}
		var ts []json.RawMessage
		if tests != "" {
			if err := json.Unmarshal([]byte(tests), &ts); err != nil {
				return nil, fmt.Errorf("decode tests of %s: %w", e.Name, err)
			}
		}
		e.TestsCount = len(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

func insertStudent(p profile.Profile) (*entsql.InsertBuilder, error) {
	if p.Name == "" {
		return nil, profile.ErrInvalidName
	}
	points, err := json.Marshal(orEmpty(p.Points))
	if err != nil {
		return nil, fmt.Errorf("encode points: %w", err)
	}
	logs, err := json.Marshal(orEmpty(p.Logs))
	if err != nil {
		return nil, fmt.Errorf("encode logs: %w", err)
	}
	tests, err := json.Marshal(orEmpty(p.Tests))
	if err != nil {
		return nil, fmt.Errorf("encode tests: %w", err)
	}
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	return builder().Insert(studentsTable.Name).
		Columns(studentColumns...).
		Values(p.Name, p.Age, p.Comments, string(points), string(logs), string(tests), updated.UTC()), nil
}

// orEmpty keeps nil slices from being stored as JSON null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
