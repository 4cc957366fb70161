package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/reelrank/reelrank"
	"github.com/reelrank/reelrank/internal/config"
	logpkg "github.com/reelrank/reelrank/internal/logger"
	"github.com/reelrank/reelrank/internal/metrics"
	openaiEmb "github.com/reelrank/reelrank/internal/transport/openai"
	"github.com/reelrank/reelrank/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting reelrank demo",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
	)

	metrics.RegisterFusionMetrics()
	metrics.RegisterEmbeddingMetrics()

	opts := []reelrank.Option{
		reelrank.WithLogger(logger),
		reelrank.WithConfig(cfg),
	}

	if len(cfg.Redis.Addrs) > 0 {
		client, err := rueidis.NewClient(rueidis.ClientOption{
			InitAddress: cfg.Redis.Addrs,
			Password:    cfg.Redis.Password,
		})
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer client.Close()
		opts = append(opts, reelrank.WithRedis(client))
		logger.Info("Using Redis backends", zap.Strings("addrs", cfg.Redis.Addrs))
	}

	if cfg.Embedding.APIKey != "" {
		opts = append(opts, reelrank.WithEmbedder(openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Logger:     logger,
		})))
		logger.Info("Embedding provider configured", zap.String("model", cfg.Embedding.Model))
	}

	engine, err := reelrank.New(opts...)
	if err != nil {
		logger.Fatal("Failed to create engine", zap.Error(err))
	}

	if err := seedDemo(engine); err != nil {
		logger.Fatal("Failed to seed demo data", zap.Error(err))
	}

	// Expose Prometheus metrics while the demo runs.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              ":9090",
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("Metrics available", zap.String("addr", srv.Addr+"/metrics"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printRecommendations(ctx, engine, logger, "alice")
	printRecommendations(ctx, engine, logger, "newcomer")

	logger.Info("Demo complete, serving metrics until interrupted")
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Metrics server shutdown failed", zap.Error(err))
	}
	logger.Info("Bye")
}

// seedDemo loads a small catalog and watch history so both the personalized
// and the cold-start paths have material.
func seedDemo(engine *reelrank.Engine) error {
	catalog := []reelrank.Content{
		{ID: "603", MediaType: "movie", Title: "The Matrix", Genres: []string{"sci-fi", "action"}, Year: 1999, Popularity: 92},
		{ID: "604", MediaType: "movie", Title: "The Matrix Reloaded", Genres: []string{"sci-fi", "action"}, Year: 2003, Popularity: 74},
		{ID: "27205", MediaType: "movie", Title: "Inception", Genres: []string{"sci-fi", "thriller"}, Year: 2010, Popularity: 88},
		{ID: "157336", MediaType: "movie", Title: "Interstellar", Genres: []string{"sci-fi", "drama"}, Year: 2014, Popularity: 90},
		{ID: "1396", MediaType: "tv", Title: "Breaking Bad", Genres: []string{"crime", "drama"}, Year: 2008, Popularity: 95},
		{ID: "1399", MediaType: "tv", Title: "Game of Thrones", Genres: []string{"fantasy", "drama"}, Year: 2011, Popularity: 94},
	}
	if err := engine.AddContentBulk(catalog); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	embeddings := map[string][]float64{
		"603":    {0.9, 0.8, 0.1, 0.0},
		"604":    {0.88, 0.79, 0.12, 0.02},
		"27205":  {0.7, 0.6, 0.3, 0.1},
		"157336": {0.65, 0.5, 0.4, 0.3},
	}
	for id, vec := range embeddings {
		if err := engine.AddContentEmbedding(id, "movie", vec); err != nil {
			return fmt.Errorf("seed embedding %s: %w", id, err)
		}
	}

	events := []reelrank.WatchEvent{
		{UserID: "alice", ContentID: "603", MediaType: "movie", Device: "tv"},
		{UserID: "alice", ContentID: "27205", MediaType: "movie", Device: "tv"},
		{UserID: "bob", ContentID: "603", MediaType: "movie", Device: "mobile"},
		{UserID: "bob", ContentID: "157336", MediaType: "movie", Device: "mobile"},
		{UserID: "carol", ContentID: "27205", MediaType: "movie", Device: "desktop"},
		{UserID: "carol", ContentID: "1396", MediaType: "tv", Device: "tv"},
	}
	for _, ev := range events {
		if err := engine.AddWatchEvent(ev); err != nil {
			return fmt.Errorf("seed event: %w", err)
		}
	}

	return engine.UpdateUserPreferences("alice", []float64{0.85, 0.75, 0.2, 0.05})
}

func printRecommendations(ctx context.Context, engine *reelrank.Engine, logger *zap.Logger, userID string) {
	recs, stats, err := engine.GetHybridRecommendationsWithStats(ctx, userID, 5)
	if err != nil {
		logger.Error("Recommendation request failed", zap.String("user_id", userID), zap.Error(err))
		return
	}

	fmt.Printf("\nRecommendations for %s (strategies: %d run, %d failed; candidates: %d):\n",
		userID, stats.StrategiesRun, stats.StrategiesFailed, stats.Candidates)
	for i, rec := range recs {
		fmt.Printf("  %d. %s (%s, %d) score=%.5f\n     %s\n",
			i+1, rec.Title, rec.MediaType, rec.Year, rec.FinalScore, rec.Reasoning)
	}
}
