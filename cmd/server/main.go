package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/tobeoren/classroom/internal/adapters/http"
	wssignal "github.com/tobeoren/classroom/internal/adapters/signal"
	"github.com/tobeoren/classroom/internal/app"
	"github.com/tobeoren/classroom/internal/config"
	"github.com/tobeoren/classroom/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	store := core.NewRoomStore()
	bans := core.NewBanRegistry()
	registry := app.NewRegistry()
	grace := app.NewGrace(cfg.PresenterGrace, cfg.LearnerGrace)
	chat := app.NewMinInterval(cfg.ChatMinInterval)

	orch := app.NewOrchestrator(registry, store, bans, grace, chat)
	ctl := wssignal.NewController(orch, cfg.ReadLimit, cfg.PingPeriod)

	r := router.SetupRouter(ctx, cfg, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("classroom server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited gracefully")
}
