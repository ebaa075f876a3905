package main

import (
	"context"
	"errors"
	"log/slog"
	"moviefinder/httpserver"
	"moviefinder/movie"
	"moviefinder/pkg/config"
	"moviefinder/pkg/sentry"
	"moviefinder/tmdb"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sentrygo "github.com/getsentry/sentry-go"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Cannot load config", "error", err)
		os.Exit(1)
	}

	err = sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		AttachStacktrace: true,
	})
	if err != nil {
		slog.Error("Cannot init sentry", "error", err)
		os.Exit(1)
	}
	defer sentrygo.Flush(sentry.FlushTime)

	var repo movie.Repository = tmdb.NewClient(tmdb.Options{
		BaseURL:      cfg.TMDB.BaseURL,
		APIKey:       cfg.TMDB.APIKey,
		Language:     cfg.TMDB.Language,
		IncludeAdult: cfg.TMDB.IncludeAdult,
		Timeout:      cfg.TMDB.Timeout,
	})
	if cfg.Breaker.Enabled {
		repo = tmdb.NewBreaker(repo, tmdb.BreakerSettings{
			MinRequests:  cfg.Breaker.MinRequests,
			FailureRatio: cfg.Breaker.FailureRatio,
			OpenTimeout:  cfg.Breaker.OpenTimeout,
		}, logger)
		slog.Info("tmdb circuit breaker enabled")
	}

	server := httpserver.Default(cfg)
	server.Logger = logger
	server.MovieService = movie.NewUsecase(repo)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	slog.Info("server started!", "addr", server.Addr)

	select {
	case sig := <-done:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped with error", "error", err)
			sentrygo.Flush(sentry.FlushTime)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		return
	}
	slog.Info("server stopped")
}
