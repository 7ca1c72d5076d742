package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-service/internal/catalog/executor"
	"catalog-service/internal/catalog/loader"
	"catalog-service/internal/catalog/merge"
	"catalog-service/internal/catalog/query"
	"catalog-service/internal/catalog/store"
	"catalog-service/internal/config"
	serverhttp "catalog-service/server/http"
)

func main() {
	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	st := store.NewClient(cfg, logger)
	ld := loader.New(st, cfg, logger)
	ex := executor.New(st, ld, cfg, logger)
	mg := merge.NewManager(ld, ex, cfg, logger)
	qs := query.NewService(st)

	// warm the category listing; failure is non-fatal, the first request retries
	warmCtx, warmCancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
	if err := ld.Refresh(warmCtx); err != nil {
		logger.Warn().Err(err).Msg("initial category refresh failed")
	}
	warmCancel()

	r := serverhttp.NewRouter(cfg, logger, serverhttp.Deps{
		Store:  st,
		Loader: ld,
		Query:  qs,
		Merge:  mg,
	})

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	logger.Info().Str("addr", cfg.Addr()).Str("store", cfg.StoreURL).Msg("server starting")

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
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	mg.Close()
	ld.Close()
	logger.Info().Msg("bye")
}
