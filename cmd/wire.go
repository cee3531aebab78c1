package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/coursegen/internal/auth"
	"github.com/abhisek/coursegen/internal/config"
	"github.com/abhisek/coursegen/internal/course"
	"github.com/abhisek/coursegen/internal/generate"
	"github.com/abhisek/coursegen/internal/llm"
	"github.com/abhisek/coursegen/internal/logging"
	"github.com/abhisek/coursegen/internal/progress"
	"github.com/abhisek/coursegen/internal/quiz"
	"github.com/abhisek/coursegen/internal/ratelimit"
	"github.com/abhisek/coursegen/internal/store"
)

// services is the wired application shared by serve and the CLI commands.
type services struct {
	courses  *course.Service
	quizzes  *quiz.Service
	tracker  *progress.Tracker
	provider llm.Provider
}

// buildServices wires storage, the LLM provider and the domain services.
func buildServices(ctx context.Context, cfg *config.Config, docs *store.Store, log *logging.Logger) (*services, error) {
	provider, err := llm.NewProvider(ctx, cfg.LLM, docs, log)
	if err != nil {
		return nil, err
	}
	orch := generate.New(provider, cfg.Generation, log)

	repo := course.NewFileRepository(docs)
	courses := course.NewService(repo, orch, log)
	tracker := progress.NewTracker(progress.NewFileStore(docs), repo, log)
	return &services{
		courses:  courses,
		quizzes:  quiz.NewService(courses, tracker, orch, log),
		tracker:  tracker,
		provider: provider,
	}, nil
}

func newAuthService(cfg *config.Config, docs *store.Store) (*auth.Service, error) {
	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		return nil, err
	}
	return auth.NewService(auth.NewFileUserRepository(docs), tokens), nil
}

// newLimiter returns the generation limiter and a function releasing it.
func newLimiter(ctx context.Context, cfg config.RateLimitConfig, log *logging.Logger) (ratelimit.Limiter, func(), error) {
	if cfg.GenerationsPerHour <= 0 {
		return ratelimit.Unlimited{}, func() {}, nil
	}
	if cfg.RedisURL == "" {
		log.Info("rate limiting in memory", "generations_per_hour", cfg.GenerationsPerHour)
		return ratelimit.NewMemoryLimiter(cfg.GenerationsPerHour, time.Hour), func() {}, nil
	}
	rl, err := ratelimit.NewRedisLimiter(ctx, cfg.RedisURL, cfg.GenerationsPerHour, time.Hour)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rate limiter: %w", err)
	}
	log.Info("rate limiting with redis", "generations_per_hour", cfg.GenerationsPerHour)
	return rl, func() {
		if err := rl.Close(); err != nil {
			log.Warn("close rate limiter", "error", err)
		}
	}, nil
}
