package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"pangan/internal/app"
	"pangan/internal/config"
	"pangan/internal/logx"
	"pangan/internal/router"
)

func main() {

	// ───────────────────────── ENV ─────────────────────────
	cfg, err := config.Load()
	if err != nil {
		logx.Init()
		logx.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := cfg.RequireJWTSecret(); err != nil {
		logx.Init()
		logx.Fatal().Err(err).Msg("invalid configuration")
	}

	logx.Init(logx.LoggerOpts{Environment: cfg.Environment(), Level: cfg.LogLevel})
	if cfg.Environment().IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ───────────────────────── STORE + SERVICES ─────────────────────────
	a, err := app.Open(ctx, cfg)
	if err != nil {
		logx.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("store init failed")
	}
	defer a.Close()

	// ───────────────────────── HTTP ─────────────────────────
	r := router.NewRouter(router.Deps{
		JWTSecret:    cfg.JWTSecret,
		AllowOrigins: cfg.AllowOrigins,
		Catalog:      a.Catalog,
		Prices:       a.Prices,
		Ingest:       a.Ingest,
		Ping:         a.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logx.Info().Str("addr", srv.Addr).Str("driver", cfg.Database.Driver).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logx.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("graceful shutdown failed")
	}
}
