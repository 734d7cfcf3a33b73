package store

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TIMOVIS/mandarin-exam/internal/metrics"
	"github.com/TIMOVIS/mandarin-exam/internal/profile"
)

// Mirrored writes every change to the hosted primary and the local store.
// The local store is authoritative for writes: a primary failure is logged
// and swallowed, except for a duplicate name on Create. Reads prefer the
// primary and fall back to the local store when the primary errors.
type Mirrored struct {
	primary ProfileRepo
	local   ProfileRepo
	log     *zap.Logger
}

// NewMirrored builds a Mirrored repo. A nil primary makes it local only.
func NewMirrored(primary, local ProfileRepo, log *zap.Logger) *Mirrored {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mirrored{primary: primary, local: local, log: log}
}

var _ ProfileRepo = (*Mirrored)(nil)

func (m *Mirrored) Get(ctx context.Context, name string) (*profile.Profile, error) {
	if m.primary == nil {
		return m.local.Get(ctx, name)
	}
	p, err := m.primary.Get(ctx, name)
	if err != nil {
		m.fallback("get", err, zap.String("student", name))
		return m.local.Get(ctx, name)
	}
	return p, nil
}

func (m *Mirrored) Roster(ctx context.Context) ([]RosterEntry, error) {
	if m.primary == nil {
		return m.local.Roster(ctx)
	}
	r, err := m.primary.Roster(ctx)
	if err != nil {
		m.fallback("roster", err)
		return m.local.Roster(ctx)
	}
	return r, nil
}

func (m *Mirrored) Save(ctx context.Context, p profile.Profile) error {
	return m.write("save", p.Name, func(r ProfileRepo) error { return r.Save(ctx, p) })
}

func (m *Mirrored) Create(ctx context.Context, p profile.Profile) error {
	return m.write("create", p.Name, func(r ProfileRepo) error { return r.Create(ctx, p) })
}

func (m *Mirrored) Delete(ctx context.Context, name string) error {
	return m.write("delete", name, func(r ProfileRepo) error { return r.Delete(ctx, name) })
}

// write runs op against both stores concurrently. Both always run; the
// local result is returned.
func (m *Mirrored) write(op, name string, fn func(ProfileRepo) error) error {
	if m.primary == nil {
		return fn(m.local)
	}

	var primaryErr, localErr error
	var g errgroup.Group
	g.Go(func() error {
		primaryErr = fn(m.primary)
		return nil
	})
	g.Go(func() error {
		localErr = fn(m.local)
		return nil
	})
	g.Wait()

	if primaryErr != nil {
		if errors.Is(primaryErr, ErrDuplicateName) {
			return ErrDuplicateName
		}
		m.fallback(op, primaryErr, zap.String("student", name))
	}
	return localErr
}

func (m *Mirrored) fallback(op string, err error, fields ...zap.Field) {
	metrics.StoreFallbacks.WithLabelValues(op).Inc()
	m.log.Warn("primary store failed, using local store",
		append(fields, zap.String("op", op), zap.Error(err))...)
}
