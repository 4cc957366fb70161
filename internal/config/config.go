package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the reelrank engine configuration.
type Config struct {
	Fusion    FusionConfig       `yaml:"fusion"`
	Cache     CacheConfig        `yaml:"cache"`
	Trending  TrendingConfig     `yaml:"trending"`
	Temporal  TemporalConfig     `yaml:"temporal"`
	Weights   map[string]float64 `yaml:"weights"`
	Redis     RedisConfig        `yaml:"redis"`
	Embedding EmbeddingConfig    `yaml:"embedding"`
	Logging   LoggingConfig      `yaml:"logging"`
}

// FusionConfig holds rank fusion and fan-out tunables.
type FusionConfig struct {
	RRFK              int     `yaml:"rrf_k"`
	DiversityLambda   float64 `yaml:"diversity_lambda"`
	DiversityEnabled  bool    `yaml:"diversity_enabled"`
	OverfetchFactor   int     `yaml:"overfetch_factor"`
	OverfetchCap      int     `yaml:"overfetch_cap"`
	StrategyTimeoutMS int     `yaml:"strategy_timeout_ms"`
	FanOutTimeoutMS   int     `yaml:"fanout_timeout_ms"`
	DefaultLimit      int     `yaml:"default_limit"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	TTLSec int `yaml:"ttl_sec"`
}

// TrendingConfig holds trending strategy settings.
type TrendingConfig struct {
	RefreshIntervalSec int `yaml:"refresh_interval_sec"`
}

// TemporalConfig holds context-temporal strategy settings.
type TemporalConfig struct {
	ContextCap int `yaml:"context_cap"`
}

// RedisConfig holds optional Redis settings for the shared result cache and
// reasoning bank. Empty addrs means in-memory backends.
type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
}

// EmbeddingConfig holds optional embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Fusion.RRFK <= 0 {
		c.Fusion.RRFK = 60
	}
	if c.Fusion.DiversityLambda <= 0 || c.Fusion.DiversityLambda > 1 {
		c.Fusion.DiversityLambda = 0.85
	}
	if c.Fusion.OverfetchFactor <= 0 {
		c.Fusion.OverfetchFactor = 3
	}
	if c.Fusion.OverfetchCap <= 0 {
		c.Fusion.OverfetchCap = 100
	}
	if c.Fusion.StrategyTimeoutMS <= 0 {
		c.Fusion.StrategyTimeoutMS = 800
	}
	if c.Fusion.FanOutTimeoutMS <= 0 {
		c.Fusion.FanOutTimeoutMS = 1500
	}
	if c.Fusion.DefaultLimit <= 0 {
		c.Fusion.DefaultLimit = 20
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Trending.RefreshIntervalSec <= 0 {
		c.Trending.RefreshIntervalSec = 3600
	}
	if c.Temporal.ContextCap <= 0 {
		c.Temporal.ContextCap = 20
	}
	if len(c.Weights) == 0 {
		c.Weights = map[string]float64{
			"collaborative":      0.30,
			"content_similarity": 0.30,
			"trending":           0.20,
			"context_temporal":   0.20,
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	for name, w := range c.Weights {
		if w < 0 || w > 1 {
			return fmt.Errorf("weights.%s must be between 0 and 1, got %f", name, w)
		}
	}
	if c.Fusion.OverfetchFactor < 1 {
		return fmt.Errorf("fusion.overfetch_factor must be at least 1")
	}
	if c.Fusion.FanOutTimeoutMS < c.Fusion.StrategyTimeoutMS {
		return fmt.Errorf(
			"fusion.fanout_timeout_ms (%d) must not be below strategy_timeout_ms (%d)",
			c.Fusion.FanOutTimeoutMS, c.Fusion.StrategyTimeoutMS,
		)
	}
	return nil
}

// StrategyTimeout returns the per-strategy time box.
func (c *Config) StrategyTimeout() time.Duration {
	return time.Duration(c.Fusion.StrategyTimeoutMS) * time.Millisecond
}

// FanOutTimeout returns the overall fan-out deadline.
func (c *Config) FanOutTimeout() time.Duration {
	return time.Duration(c.Fusion.FanOutTimeoutMS) * time.Millisecond
}

// CacheTTL returns the result cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSec) * time.Second
}

// TrendingRefreshInterval returns the popularity list refresh interval.
func (c *Config) TrendingRefreshInterval() time.Duration {
	return time.Duration(c.Trending.RefreshIntervalSec) * time.Second
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
