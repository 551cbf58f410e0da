package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	osignal "os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "notary-relay/internal/adapters/http"
	"notary-relay/internal/adapters/signal"
	"notary-relay/internal/app"
	"notary-relay/internal/config"
	"notary-relay/internal/export"
	"notary-relay/internal/storage"
)

func main() {
	ctx, cancel := osignal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	store, err := storage.Open(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open recording store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("closing recording store")
		}
	}()

	dispatch := app.NewDispatcher(cfg.Dispatch.Workers, cfg.Dispatch.QueueSize, cfg.Dispatch.TaskTimeout)
	defer dispatch.Close()

	reconnects := signal.NewGraceReconnector(cfg.Recording.ReconnectGrace)
	relay := &app.Relay{
		Registry:    app.NewRegistry(),
		Rooms:       app.NewRoomManager(),
		Policy:      app.KickSlowPolicy{},
		Recorder:    app.NewRecorder(cfg.Recording.MaxBufferBytes),
		Store:       store,
		Exporter:    export.NewPDFMailExporter(cfg.Mail),
		Dispatch:    dispatch,
		Reconnector: reconnects,
	}

	chunkRate := signal.NewChunkRateLimiter(cfg.Recording.ChunkRateLimit, cfg.Recording.ChunkRateWin)
	ctl := signal.NewSessionWSController(relay, reconnects, cfg.ReadLimit, cfg.PingPeriod, chunkRate)

	r := router.SetupRouter(ctx, cfg, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("notary relay started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
