// Command server runs the farmer query HTTP gateway with the full
// classification, routing, and context management pipeline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"krishi-ai/internal/adapter/contextstore"
	"krishi-ai/internal/adapter/gateway"
	"krishi-ai/internal/adapter/llm"
	"krishi-ai/internal/adapter/responder"
	"krishi-ai/internal/adapter/weather"
	"krishi-ai/internal/domain"
	"krishi-ai/internal/infra/config"
	"krishi-ai/internal/infra/logger"
	"krishi-ai/internal/infra/tracer"
	"krishi-ai/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfigLoad, err)
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	store, closeStore, err := buildStore(cfg.Store, log)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer closeStore()

	sweeper := startSweeper(ctx, store, cfg.Store.SweepSchedule, log)
	if sweeper != nil {
		defer sweeper.Stop()
	}

	gen := buildGenerator(cfg.LLM, log)

	classifier, err := usecase.NewClassifier(usecase.DefaultRuleTable())
	if err != nil {
		return fmt.Errorf("init classifier: %w", err)
	}

	registry := usecase.NewRegistry(log)
	registerResponders(registry, gen, log)

	router := usecase.NewRouter(registry, usecase.DefaultRoutes(), log)
	enhancer := usecase.NewEnhancer(usecase.DefaultFollowUps())
	recorder := usecase.NewRecorder(store, log)
	pipeline := usecase.NewPipeline(classifier, store, router, enhancer, recorder, log)

	srv := gateway.New(ctx, cfg.Server, pipeline, registry, log)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildStore selects the context store backend. The returned closer is
// always non-nil.
func buildStore(cfg config.StoreConfig, log *slog.Logger) (domain.ContextStore, func() error, error) {
	switch cfg.Backend {
	case "redis":
		store, err := contextstore.NewRedisStore(cfg.RedisURL, cfg.DialTimeout, log)
		if err != nil {
			return nil, nil, err
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			store.Close()
			return nil, nil, err
		}
		log.Info("context store ready", "backend", "redis")
		return store, store.Close, nil
	case "sqlite":
		store, err := contextstore.NewSQLiteStore(cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("context store ready", "backend", "sqlite", "path", cfg.SQLitePath)
		return store, store.Close, nil
	default:
		log.Info("context store ready", "backend", "memory")
		return contextstore.NewMemoryStore(), func() error { return nil }, nil
	}
}

// startSweeper schedules periodic expiry sweeps for backends that need them.
// Redis expires keys natively, so stores that don't implement Sweeper get no
// schedule.
func startSweeper(ctx context.Context, store domain.ContextStore, schedule string, log *slog.Logger) *cron.Cron {
	sweeper, ok := store.(domain.Sweeper)
	if !ok || schedule == "" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		removed, err := sweeper.Sweep(ctx)
		if err != nil {
			log.Warn("expiry sweep failed", "error", err)
			return
		}
		if removed > 0 {
			log.Debug("expiry sweep", "removed", removed)
		}
	})
	if err != nil {
		log.Warn("invalid sweep schedule, sweeps disabled", "schedule", schedule, "error", err)
		return nil
	}
	c.Start()
	log.Info("expiry sweeper scheduled", "schedule", schedule)
	return c
}

// buildGenerator prefers the remote Groq generator behind a circuit breaker
// and falls back to canned templates when no API key is configured.
func buildGenerator(cfg config.LLMConfig, log *slog.Logger) domain.TextGenerator {
	if groq := llm.NewGroqGenerator(cfg, log); groq != nil {
		log.Info("text generator ready", "provider", "groq", "model", cfg.Model)
		return llm.NewCircuitBreakerGenerator(groq, log)
	}
	log.Info("no LLM API key configured, using template generator")
	return llm.TemplateGenerator{}
}

func registerResponders(registry *usecase.Registry, gen domain.TextGenerator, log *slog.Logger) {
	provider := weather.NewStaticProvider()

	registry.Register("crop_advisory", responder.NewCropAdvisory(gen, log))
	registry.Register("soil_analysis", responder.NewSoilAnalysis(gen, log))
	registry.Register("weather", responder.NewWeather(provider, gen, log))
	registry.Register("irrigation_planning", responder.NewIrrigation(gen, log))
	registry.Register("pest_disease", responder.NewPestDisease(gen, log))
	registry.Register("market_intelligence", responder.NewMarket(gen, log))
	registry.Register("financial_planning", responder.NewFinancial(gen, log))
	registry.Register("policy_query", responder.NewPolicy(gen, log))
	registry.Register("translation", responder.NewTranslation(gen, log))
	registry.Register("llm_chat", responder.NewChat(gen, log))
}
