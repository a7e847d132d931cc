package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"trendprobe/internal/app"
	"trendprobe/internal/config"
	"trendprobe/internal/server"
	"trendprobe/pkg/logger"
)

func main() {
	cfg := config.Load()
	l := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rl := server.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup(3 * time.Minute)
			}
		}
	}()

	// trending can wait 7s and then make up to three 25s upstream calls
	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      server.NewHandler(app.New(cfg, l), rl, l),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		l.Info().Str("addr", cfg.ServerAddr).Msg("server listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			l.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	l.Info().Msg("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("forced shutdown")
	}
	l.Info().Msg("bye")
}
