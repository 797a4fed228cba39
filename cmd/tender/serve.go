package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"tender-backend/internal/config"
	"tender-backend/internal/middleware/metrics"
	"tender-backend/internal/objectstore"
	"tender-backend/internal/service/export"
	"tender-backend/internal/service/tender"
	"tender-backend/internal/service/workdone"
	"tender-backend/internal/service/workforce"
	"tender-backend/internal/service/workorder"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

type services struct {
	workDone   *workdone.Service
	workOrders *workorder.Service
	tenders    *tender.Service
	workforce  *workforce.Service
	exports    *export.Service
	idCodes    idCodes
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, closeLog := setupLogger(cfg.Env)
	defer closeLog()

	log = log.With(slog.String("env", cfg.Env))

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("failed to open storage", slog.String("driver", cfg.Storage.Driver), slog.String("error", err.Error()))
		return err
	}
	defer closeStore()

	ids, closeIDs, err := openIDCodes(ctx, log, cfg, st)
	if err != nil {
		log.Error("failed to open id code backend", slog.String("error", err.Error()))
		return err
	}
	defer closeIDs()

	objects, err := objectstore.New(ctx, cfg.ObjectStore)
	if err != nil {
		log.Error("failed to open object storage", slog.String("endpoint", cfg.ObjectStore.Endpoint), slog.String("error", err.Error()))
		return err
	}

	svc := services{
		workDone:   workdone.NewService(st, ids),
		workOrders: workorder.NewService(st, ids),
		tenders:    tender.NewService(log, st, objects, ids),
		workforce:  workforce.NewService(log, st, ids),
		exports:    export.NewService(st),
		idCodes:    ids,
	}

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(cfg, log, svc, metrics.New(prometheus.DefaultRegisterer)),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started",
			slog.String("address", cfg.Address),
			slog.String("storage", cfg.Storage.Driver),
			slog.String("id_codes", cfg.IDCodes.Backend),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", slog.String("error", err.Error()))
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.String("error", err.Error()))
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")

	return nil
}
