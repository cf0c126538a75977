package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dcb-service/internal/config"
	"dcb-service/internal/store"
	serverhttp "dcb-service/server/http"
)

func main() {
	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	aliases, err := config.LoadAliases(cfg.AliasFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("alias table")
	}

	ctx := context.Background()
	st, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("store")
	}
	defer st.Close()

	r := serverhttp.NewRouter(cfg, st, aliases, logger)

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info().Msg("bye")
}
