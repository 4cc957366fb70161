package config

import (
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Fusion.RRFK != 60 {
		t.Errorf("rrf_k default = %d, want 60", cfg.Fusion.RRFK)
	}
	if cfg.Fusion.DiversityLambda != 0.85 {
		t.Errorf("diversity_lambda default = %f, want 0.85", cfg.Fusion.DiversityLambda)
	}
	if cfg.Fusion.OverfetchFactor != 3 || cfg.Fusion.OverfetchCap != 100 {
		t.Errorf("overfetch defaults = %d/%d, want 3/100",
			cfg.Fusion.OverfetchFactor, cfg.Fusion.OverfetchCap)
	}
	if cfg.CacheTTL() != 5*time.Minute {
		t.Errorf("cache ttl default = %v, want 5m", cfg.CacheTTL())
	}
	if cfg.TrendingRefreshInterval() != time.Hour {
		t.Errorf("trending refresh default = %v, want 1h", cfg.TrendingRefreshInterval())
	}
	if cfg.Temporal.ContextCap != 20 {
		t.Errorf("context cap default = %d, want 20", cfg.Temporal.ContextCap)
	}
	if len(cfg.Weights) != 4 {
		t.Errorf("expected 4 default strategy weights, got %d", len(cfg.Weights))
	}
}

func TestValidate_WeightOutOfRange(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	cfg.Weights["collaborative"] = 1.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for weight above 1")
	}
}

func TestValidate_NegativeWeight(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	cfg.Weights["trending"] = -0.1

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative weight")
	}
}

func TestValidate_FanOutBelowStrategyTimeout(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	cfg.Fusion.StrategyTimeoutMS = 2000
	cfg.Fusion.FanOutTimeoutMS = 1000

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when fan-out deadline is below the strategy time box")
	}
}

func TestValidate_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate, got: %v", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("REELRANK_TEST_ADDR", "redis:6379")

	got := string(expandEnvVars([]byte("addr: ${REELRANK_TEST_ADDR}\nkey: ${UNSET_VAR:-fallback}")))
	want := "addr: redis:6379\nkey: fallback"
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}
