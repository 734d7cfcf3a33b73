package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/TIMOVIS/mandarin-exam/internal/profile"
)

// RedisProfileRepo stores each profile as a JSON string and keeps the set
// of names alongside for the roster.
type RedisProfileRepo struct {
	client *redis.Client
	prefix string
}

// NewRedisProfileRepo wraps client. Keys are namespaced under prefix.
func NewRedisProfileRepo(client *redis.Client, prefix string) *RedisProfileRepo {
	if prefix == "" {
		prefix = "mandarin"
	}
	return &RedisProfileRepo{client: client, prefix: prefix}
}

// OpenRedis connects to addr and verifies the connection.
func OpenRedis(ctx context.Context, addr, password string, db int) (*RedisProfileRepo, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisProfileRepo(client, ""), nil
}

// Close closes the client.
func (r *RedisProfileRepo) Close() error {
	return r.client.Close()
}

func (r *RedisProfileRepo) studentKey(name string) string {
	return fmt.Sprintf("%s:student:%s", r.prefix, name)
}

func (r *RedisProfileRepo) namesKey() string {
	return r.prefix + ":students"
}

func (r *RedisProfileRepo) Get(ctx context.Context, name string) (*profile.Profile, error) {
	data, err := r.client.Get(ctx, r.studentKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student %s: %w", name, err)
	}
	var p profile.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode student %s: %w", name, err)
	}
	return &p, nil
}

func (r *RedisProfileRepo) Save(ctx context.Context, p profile.Profile) error {
	data, err := r.encode(&p)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.studentKey(p.Name), data, 0)
	pipe.SAdd(ctx, r.namesKey(), p.Name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save student %s: %w", p.Name, err)
	}
	return nil
}

func (r *RedisProfileRepo) Create(ctx context.Context, p profile.Profile) error {
	data, err := r.encode(&p)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, r.studentKey(p.Name), data, 0).Result()
	if err != nil {
		return fmt.Errorf("create student %s: %w", p.Name, err)
	}
	if !ok {
		return ErrDuplicateName
	}
	if err := r.client.SAdd(ctx, r.namesKey(), p.Name).Err(); err != nil {
		return fmt.Errorf("index student %s: %w", p.Name, err)
	}
	return nil
}

func (r *RedisProfileRepo) Delete(ctx context.Context, name string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.studentKey(name))
	pipe.SRem(ctx, r.namesKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete student %s: %w", name, err)
	}
	return nil
}

func (r *RedisProfileRepo) Roster(ctx context.Context) ([]RosterEntry, error) {
	names, err := r.client.SMembers(ctx, r.namesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	sort.Strings(names)

	var out []RosterEntry
	for _, n := range names {
		p, err := r.Get(ctx, n)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		out = append(out, rosterEntry(*p))
	}
	return out, nil
}

func (r *RedisProfileRepo) encode(p *profile.Profile) ([]byte, error) {
	if p.Name == "" {
		return nil, profile.ErrInvalidName
	}
	stampUpdated(p)
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode student %s: %w", p.Name, err)
	}
	return data, nil
}
