package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"studio/internal/http/handlers"
	"studio/internal/http/httpapi"
	"studio/internal/infra"
	"studio/internal/providers/backend"
	"studio/internal/providers/guard"
	"studio/internal/providers/safety"
	"studio/internal/registry"
	"studio/internal/settings"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store := settings.NewStore(cfg)
	reg := registry.New(cfg.JobRegistryMaxEntries)
	metrics := infra.NewPromMetrics("studio")

	app := handlers.NewApp(handlers.AppOptions{
		Config:   cfg,
		Log:      logger,
		Settings: store,
		Registry: reg,
		Guard:    guard.New(guard.Options{}),
		Safety:   safety.New(safety.Options{}),
		Backend:  backend.New(backend.Options{}),
		Metrics:  metrics,
	})

	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
