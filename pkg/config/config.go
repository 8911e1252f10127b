package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all configuration for upstart-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"PORT" env-default:"3000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`

	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	LLM      LLMConfig      `yaml:"llm"`
	Signals  SignalsConfig  `yaml:"signals"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"upstart"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"upstart"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// RedisConfig holds the optional Redis connection used for caching signals.
// Leave Host empty to run without a cache.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// LLMConfig selects the model provider used for analysis and idea generation.
type LLMConfig struct {
	// Provider is "anthropic" or "openai" (any OpenAI-compatible endpoint).
	Provider    string  `yaml:"provider" env:"LLM_PROVIDER" env-default:"anthropic"`
	Model       string  `yaml:"model" env:"LLM_MODEL" env-default:"claude-3-haiku-20240307"`
	Endpoint    string  `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:""`
	APIKey      string  `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	MaxTokens   int     `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"4000"`
	Temperature float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.3"`

	CircuitThreshold  int           `yaml:"circuit_threshold" env:"LLM_CIRCUIT_THRESHOLD" env-default:"5"`
	CircuitResetAfter time.Duration `yaml:"circuit_reset_after" env:"LLM_CIRCUIT_RESET_AFTER" env-default:"30s"`
}

// PlatformConfig is the per-platform collection setting.
type PlatformConfig struct {
	BaseURL          string `yaml:"base_url" env:"BASE_URL" env-default:""`
	RateLimitPerHour int    `yaml:"rate_limit_per_hour" env:"RATE_LIMIT_PER_HOUR" env-default:"0"`
}

// SignalsConfig controls community signal collection.
type SignalsConfig struct {
	// PlatformsStr is a comma-separated list of enabled platforms, in collection order.
	PlatformsStr string `yaml:"platforms" env:"SIGNALS_PLATFORMS" env-default:"reddit,hackernews,youtube"`
	// LivePlatformsStr lists the platforms that call their real API; the rest serve mock data.
	LivePlatformsStr string `yaml:"live_platforms" env:"SIGNALS_LIVE_PLATFORMS" env-default:"reddit,hackernews"`

	Pacing         time.Duration `yaml:"pacing" env:"SIGNALS_PACING" env-default:"1s"`
	MaxConcurrent  int           `yaml:"max_concurrent" env:"SIGNALS_MAX_CONCURRENT" env-default:"4"`
	CacheTTL       time.Duration `yaml:"cache_ttl" env:"SIGNALS_CACHE_TTL" env-default:"0s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"SIGNALS_REQUEST_TIMEOUT" env-default:"15s"`

	Reddit      PlatformConfig `yaml:"reddit" env-prefix:"REDDIT_"`
	HackerNews  PlatformConfig `yaml:"hackernews" env-prefix:"HACKERNEWS_"`
	YouTube     PlatformConfig `yaml:"youtube" env-prefix:"YOUTUBE_"`
	ProductHunt PlatformConfig `yaml:"producthunt" env-prefix:"PRODUCTHUNT_"`

	// Parsed from the comma-separated strings above (not from config file).
	Platforms     []string        `yaml:"-"`
	LivePlatforms map[string]bool `yaml:"-"`
}

// AnalysisConfig controls the LLM analysis pipeline.
type AnalysisConfig struct {
	CacheWindow time.Duration `yaml:"cache_window" env:"ANALYSIS_CACHE_WINDOW" env-default:"1h"`
	BatchDelay  time.Duration `yaml:"batch_delay" env:"ANALYSIS_BATCH_DELAY" env-default:"2s"`
	BatchLimit  int           `yaml:"batch_limit" env:"ANALYSIS_BATCH_LIMIT" env-default:"10"`
}

// platformDefaults mirrors the public endpoints and hourly quotas of each source.
var platformDefaults = map[string]PlatformConfig{
	"reddit":      {BaseURL: "https://www.reddit.com", RateLimitPerHour: 3600},
	"hackernews":  {BaseURL: "https://hn.algolia.com", RateLimitPerHour: 10000},
	"youtube":     {BaseURL: "https://www.googleapis.com/youtube/v3", RateLimitPerHour: 10000},
	"producthunt": {BaseURL: "https://www.producthunt.com/feed", RateLimitPerHour: 1000},
}

// Load reads configuration from config.yaml with environment variable overrides.
// A .env file in the working directory is loaded first if present. When
// config.yaml does not exist, configuration comes from the environment alone.
func Load(version string) (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Version: version,
	}

	err := cleanenv.ReadConfig("config.yaml", cfg)
	if errors.Is(err, fs.ErrNotExist) {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.parseComplexFields(); err != nil {
		return nil, fmt.Errorf("failed to parse config fields: %w", err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// parseComplexFields handles fields that need post-processing after loading.
func (c *Config) parseComplexFields() error {
	c.Signals.Platforms = parseList(c.Signals.PlatformsStr)
	for _, p := range c.Signals.Platforms {
		if _, ok := platformDefaults[p]; !ok {
			return fmt.Errorf("unknown signal platform %q", p)
		}
	}

	c.Signals.LivePlatforms = make(map[string]bool)
	for _, p := range parseList(c.Signals.LivePlatformsStr) {
		c.Signals.LivePlatforms[p] = true
	}

	c.Signals.Reddit = withPlatformDefaults(c.Signals.Reddit, platformDefaults["reddit"])
	c.Signals.HackerNews = withPlatformDefaults(c.Signals.HackerNews, platformDefaults["hackernews"])
	c.Signals.YouTube = withPlatformDefaults(c.Signals.YouTube, platformDefaults["youtube"])
	c.Signals.ProductHunt = withPlatformDefaults(c.Signals.ProductHunt, platformDefaults["producthunt"])

	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	switch c.LLM.Provider {
	case "anthropic":
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "openai":
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if c.LLM.Endpoint == "" {
			c.LLM.Endpoint = "https://api.openai.com/v1"
		}
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}

	c.Database.Host = ResolveHostForDocker(c.Database.Host)
	c.Redis.Host = ResolveHostForDocker(c.Redis.Host)
	return nil
}

// Platform returns the collection settings for a named platform.
func (s *SignalsConfig) Platform(name string) PlatformConfig {
	switch name {
	case "reddit":
		return s.Reddit
	case "hackernews":
		return s.HackerNews
	case "youtube":
		return s.YouTube
	case "producthunt":
		return s.ProductHunt
	}
	return PlatformConfig{}
}

// IsLive reports whether the platform is allowed to call its real API.
func (s *SignalsConfig) IsLive(name string) bool {
	return s.LivePlatforms[name]
}

func withPlatformDefaults(p, def PlatformConfig) PlatformConfig {
	if p.BaseURL == "" {
		p.BaseURL = def.BaseURL
	}
	if p.RateLimitPerHour <= 0 {
		p.RateLimitPerHour = def.RateLimitPerHour
	}
	p.BaseURL = strings.TrimSuffix(p.BaseURL, "/")
	return p
}

// parseList splits a comma-separated value, dropping blanks and duplicates.
func parseList(value string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// URL returns the connection string in URL form, as golang-migrate expects.
func (c *DatabaseConfig) URL() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}
