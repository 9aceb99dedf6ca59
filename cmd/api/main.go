package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"routebuilder/internal/api"
	"routebuilder/internal/buildinfo"
	"routebuilder/internal/config"
)

var interruptSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGINT,
}

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	log.Logger = cfg.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), interruptSignals...)
	defer stop()

	srv, err := api.NewServer(ctx, cfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init server")
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	httpServer.RegisterOnShutdown(srv.Drain)

	waitGroup, ctx := errgroup.WithContext(ctx)
	waitGroup.Go(func() error {
		log.Info().Str("addr", httpServer.Addr).Str("version", buildinfo.Version).Msg("API listening")
		srv.SetReady(true)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed to serve")
			return err
		}
		return nil
	})
	waitGroup.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("graceful shutdown HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server forced to shutdown")
			return err
		}
		log.Info().Msg("HTTP server is stopped")
		return nil
	})

	err = waitGroup.Wait()
	if cerr := srv.Close(); cerr != nil {
		log.Error().Err(cerr).Msg("close server resources")
	}
	if err != nil {
		log.Error().Err(err).Msg("error from wait group")
		os.Exit(1)
	}
}
