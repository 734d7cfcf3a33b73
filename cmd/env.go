package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TIMOVIS/mandarin-exam/internal/capture"
	"github.com/TIMOVIS/mandarin-exam/internal/config"
	"github.com/TIMOVIS/mandarin-exam/internal/grading"
	"github.com/TIMOVIS/mandarin-exam/internal/llm"
	"github.com/TIMOVIS/mandarin-exam/internal/logger"
	"github.com/TIMOVIS/mandarin-exam/internal/media"
	"github.com/TIMOVIS/mandarin-exam/internal/metrics"
	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/questiongen"
	"github.com/TIMOVIS/mandarin-exam/internal/roadmap"
	"github.com/TIMOVIS/mandarin-exam/internal/screen"
	"github.com/TIMOVIS/mandarin-exam/internal/store"
)

// env is everything a command needs, opened from flags and config.
type env struct {
	Config   *config.Config
	Log      *zap.Logger
	Store    *store.Store
	Provider llm.Provider
	Deps     screen.Deps

	closers []func()
}

// envOptions selects what openEnv wires beyond the store.
type envOptions struct {
	// Console adds stderr logging. The TUI leaves it off.
	Console bool
	// LLM builds the provider, generator and evaluator. A missing provider
	// is reported but not fatal.
	LLM bool
	// Audio wires the ffmpeg microphone.
	Audio bool
}

// openEnv loads config, opens the stores and builds the domain services.
// Callers must Close the returned env.
func openEnv(cmd *cobra.Command, opts envOptions) (*env, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Options{File: cfg.Log.File, Level: cfg.Log.Level, Console: opts.Console})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	metrics.Init()

	e := &env{Config: cfg, Log: log}
	e.closers = append(e.closers, func() { _ = log.Sync() })

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.Store = st
	e.closers = append(e.closers, func() { st.Close() })

	primary, err := e.openPrimary(ctx)
	if err != nil {
		e.Close()
		return nil, err
	}

	reconciler := roadmap.Reconciler{Thresholds: cfg.Roadmap.Thresholds()}
	e.Deps = screen.Deps{
		Profiles:   store.NewMirrored(primary, st.ProfileRepo(), log),
		Snapshots:  st.SnapshotRepo(),
		Reconciler: reconciler,
		Log:        log,
	}

	archive, err := openArchive(ctx, cfg.Media, dbPath)
	if err != nil {
		// Archiving is best effort; sessions still run.
		log.Warn("media archive unavailable", zap.Error(err))
		archive = media.NopArchive{}
	}
	e.Deps.Archive = archive

	if opts.Audio {
		e.Deps.Audio = capture.DefaultFFmpegDevice()
	}

	if opts.LLM {
		e.openLLM(ctx)
	}
	return e, nil
}

// openPrimary connects the hosted profile store, if one is configured.
// Mongo wins when both are set.
func (e *env) openPrimary(ctx context.Context) (store.ProfileRepo, error) {
	sc := e.Config.Store
	switch {
	case sc.MongoURI != "":
		repo, err := store.OpenMongo(ctx, sc.MongoURI, sc.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		e.closers = append(e.closers, func() { _ = repo.Close(context.Background()) })
		e.Log.Info("using mongo primary", zap.String("database", sc.MongoDatabase))
		return repo, nil
	case sc.RedisAddr != "":
		repo, err := store.OpenRedis(ctx, sc.RedisAddr, sc.RedisPassword, sc.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
		e.closers = append(e.closers, func() { _ = repo.Close() })
		e.Log.Info("using redis primary", zap.String("addr", sc.RedisAddr))
		return repo, nil
	}
	return nil, nil
}

func (e *env) openLLM(ctx context.Context) {
	if !e.Config.LLMConfigured {
		e.Log.Warn("no LLM provider configured")
		return
	}
	provider, err := llm.NewProvider(ctx, e.Config.LLM, e.Store.EventRepo(), e.Log)
	if err != nil {
		e.Log.Warn("LLM provider unavailable", zap.Error(err))
		return
	}
	genCfg := questiongen.DefaultConfig()
	genCfg.StudentAge = e.Config.Question.StudentAge

	e.Provider = provider
	e.Deps.Generator = questiongen.New(provider, genCfg)
	e.Deps.Evaluator = grading.New(provider, e.Log)
}

// Close releases everything openEnv opened, in reverse order.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

func openArchive(ctx context.Context, mc config.MediaConfig, dbPath string) (media.Archive, error) {
	switch mc.Type {
	case "none":
		return media.NopArchive{}, nil
	case "minio":
		a, err := media.NewMinioArchive(ctx, mc.Minio())
		if err != nil {
			return nil, err
		}
		return a, nil
	case "local", "":
		dir := mc.LocalPath
		if dir == "" {
			dir = filepath.Join(filepath.Dir(dbPath), "media")
		}
		return media.LocalArchive{Dir: dir}, nil
	default:
		return nil, fmt.Errorf("unknown media type %q", mc.Type)
	}
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file, then MANDARIN_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

// loadStudent fetches a student or fails with a readable error.
func (e *env) loadStudent(ctx context.Context, name string) (profile.Profile, error) {
	p, err := e.Deps.Profiles.Get(ctx, name)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("load %s: %w", name, err)
	}
	if p == nil {
		return profile.Profile{}, fmt.Errorf("no student named %q", name)
	}
	return *p, nil
}
