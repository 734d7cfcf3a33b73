// Package config loads runtime settings from an optional YAML file and
// MANDARIN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/TIMOVIS/mandarin-exam/internal/llm"
	"github.com/TIMOVIS/mandarin-exam/internal/media"
	"github.com/TIMOVIS/mandarin-exam/internal/roadmap"
)

type Config struct {
	DB       string         `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	Store    StoreConfig    `mapstructure:"store"`
	Media    MediaConfig    `mapstructure:"media"`
	Server   ServerConfig   `mapstructure:"server"`
	Roadmap  RoadmapConfig  `mapstructure:"roadmap"`
	Question QuestionConfig `mapstructure:"question"`

	// LLM is resolved separately: explicit llm.* settings win, otherwise
	// the first provider key found in the environment is used.
	LLM llm.Config `mapstructure:"-"`

	// LLMConfigured is false when no provider could be resolved.
	LLMConfigured bool `mapstructure:"-"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// StoreConfig selects the hosted primary. Both empty means local only.
type StoreConfig struct {
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

type MediaConfig struct {
	// Type is "local", "minio" or "none".
	Type           string `mapstructure:"type"`
	LocalPath      string `mapstructure:"local_path"`
	MinioEndpoint  string `mapstructure:"minio_endpoint"`
	MinioAccessKey string `mapstructure:"minio_access_key"`
	MinioSecretKey string `mapstructure:"minio_secret_key"`
	MinioBucket    string `mapstructure:"minio_bucket"`
	MinioSecure    bool   `mapstructure:"minio_secure"`
}

// Minio returns the archive settings.
func (m MediaConfig) Minio() media.MinioConfig {
	return media.MinioConfig{
		Endpoint:  m.MinioEndpoint,
		AccessKey: m.MinioAccessKey,
		SecretKey: m.MinioSecretKey,
		Bucket:    m.MinioBucket,
		Secure:    m.MinioSecure,
	}
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"`

	// RateLimit is requests per second per client IP.
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`
}

type RoadmapConfig struct {
	Mastered   int `mapstructure:"mastered"`
	InProgress int `mapstructure:"in_progress"`
}

// Thresholds returns the configured score table.
func (r RoadmapConfig) Thresholds() roadmap.Thresholds {
	return roadmap.Thresholds{Mastered: r.Mastered, InProgress: r.InProgress}
}

type QuestionConfig struct {
	StudentAge int `mapstructure:"student_age"`
}

// Load reads configuration. path is an explicit config file; when empty
// config.yaml is looked up in the user config dir and the working
// directory, and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "mandarin"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MANDARIN")
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Roadmap.InProgress >= cfg.Roadmap.Mastered {
		return nil, fmt.Errorf("roadmap.in_progress (%d) must be below roadmap.mastered (%d)",
			cfg.Roadmap.InProgress, cfg.Roadmap.Mastered)
	}

	cfg.LLM, cfg.LLMConfigured = llmConfig(v)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("store.mongo_database", "mandarin")
	v.SetDefault("media.type", "local")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.rate_limit", 5.0)
	v.SetDefault("server.burst", 10)
	th := roadmap.DefaultThresholds()
	v.SetDefault("roadmap.mastered", th.Mastered)
	v.SetDefault("roadmap.in_progress", th.InProgress)
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("db", "MANDARIN_DB")
	_ = v.BindEnv("log.level", "MANDARIN_LOG_LEVEL")
	_ = v.BindEnv("log.file", "MANDARIN_LOG_FILE")

	_ = v.BindEnv("store.mongo_uri", "MANDARIN_MONGO_URI")
	_ = v.BindEnv("store.mongo_database", "MANDARIN_MONGO_DATABASE")
	_ = v.BindEnv("store.redis_addr", "MANDARIN_REDIS_ADDR")
	_ = v.BindEnv("store.redis_password", "MANDARIN_REDIS_PASSWORD")
	_ = v.BindEnv("store.redis_db", "MANDARIN_REDIS_DB")

	_ = v.BindEnv("media.type", "MANDARIN_MEDIA_TYPE")
	_ = v.BindEnv("media.local_path", "MANDARIN_MEDIA_PATH")
	_ = v.BindEnv("media.minio_endpoint", "MINIO_ENDPOINT")
	_ = v.BindEnv("media.minio_access_key", "MINIO_ACCESS_KEY")
	_ = v.BindEnv("media.minio_secret_key", "MINIO_SECRET_KEY")
	_ = v.BindEnv("media.minio_bucket", "MINIO_BUCKET")

	_ = v.BindEnv("server.addr", "MANDARIN_ADDR")
	_ = v.BindEnv("server.mode", "GIN_MODE")

	_ = v.BindEnv("llm.provider", "MANDARIN_LLM_PROVIDER")
	_ = v.BindEnv("llm.model", "MANDARIN_LLM_MODEL")
	_ = v.BindEnv("llm.timeout", "MANDARIN_LLM_TIMEOUT")
	_ = v.BindEnv("llm.anthropic_api_key", "MANDARIN_ANTHROPIC_API_KEY")
	_ = v.BindEnv("llm.openai_api_key", "MANDARIN_OPENAI_API_KEY")
	_ = v.BindEnv("llm.openai_base_url", "MANDARIN_OPENAI_BASE_URL")
	_ = v.BindEnv("llm.gemini_api_key", "MANDARIN_GEMINI_API_KEY")
	_ = v.BindEnv("llm.openrouter_api_key", "MANDARIN_OPENROUTER_API_KEY")
}

func llmConfig(v *viper.Viper) (llm.Config, bool) {
	provider := v.GetString("llm.provider")
	if provider == "" {
		return llm.DiscoverConfig()
	}

	cfg := llm.DefaultConfig()
	cfg.Provider = provider
	cfg.Anthropic.APIKey = v.GetString("llm.anthropic_api_key")
	cfg.OpenAI.APIKey = v.GetString("llm.openai_api_key")
	cfg.OpenAI.BaseURL = v.GetString("llm.openai_base_url")
	cfg.Gemini.APIKey = v.GetString("llm.gemini_api_key")
	cfg.Gemini.BaseURL = v.GetString("llm.gemini_base_url")
	cfg.OpenRouter.APIKey = v.GetString("llm.openrouter_api_key")
	cfg.OpenRouter.Referer = v.GetString("llm.openrouter_referer")

	if model := v.GetString("llm.model"); model != "" {
		switch provider {
		case "anthropic":
			cfg.Anthropic.Model = model
		case "openai":
			cfg.OpenAI.Model = model
		case "gemini":
			cfg.Gemini.Model = model
		case "openrouter":
			cfg.OpenRouter.Model = model
		}
	}
	if d := v.GetDuration("llm.timeout"); d > 0 {
		cfg.Timeout = d
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return cfg, true
}
