// Package main запускает HTTP-сервер сервиса учёта абонементов.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/gym-billing/internal/cache"
	"github.com/mmeshcher/gym-billing/internal/config"
	"github.com/mmeshcher/gym-billing/internal/handler"
	"github.com/mmeshcher/gym-billing/internal/metrics"
	"github.com/mmeshcher/gym-billing/internal/repository"
	"github.com/mmeshcher/gym-billing/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	opts := service.Options{
		Metrics:            m,
		Logger:             logger,
		PlanCacheTTL:       cfg.PlanCacheTTL,
		SweepInterval:      cfg.SweepInterval,
		UpcomingExpiryDays: cfg.UpcomingExpiryDays,
	}

	// Без Redis планы читаются напрямую из базы.
	if cfg.RedisAddress != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddress)
		if err != nil {
			sugar.Warnw("redis unavailable, plan cache disabled", "addr", cfg.RedisAddress, "error", err.Error())
		} else {
			defer redisCache.Close()
			opts.Cache = redisCache
		}
	}

	svc := service.NewService(repo, opts)
	defer svc.Close()

	h := handler.NewHandler(svc, logger, m.Handler())

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	// Фоновое обновление статусов абонементов
	g.Go(func() error {
		svc.StartStatusSweep(ctx)
		return nil
	})

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting gym billing server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
