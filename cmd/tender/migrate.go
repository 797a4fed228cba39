package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"tender-backend/internal/config"
	"tender-backend/internal/storage/mongo"
	"tender-backend/internal/storage/mysql"
)

func migrateCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply MySQL migrations or create MongoDB indexes, depending on storage.driver",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			log, closeLog := setupLogger(cfg.Env)
			defer closeLog()

			return migrateStore(cmd.Context(), log, cfg)
		},
	}
}

func migrateStore(ctx context.Context, log *slog.Logger, cfg *config.Config) error {
	const op = "main.migrateStore"

	switch cfg.Storage.Driver {
	case driverMySQL:
		s, err := mysql.New(cfg.MySQL)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		defer s.Close()

		version, err := s.Migrate()
		if err != nil {
			log.Error("migration failed", slog.String("error", err.Error()))
			return fmt.Errorf("%s: %w", op, err)
		}
		log.Info("mysql schema up to date", slog.Uint64("version", uint64(version)))

	case driverMongo:
		s, err := mongo.New(ctx, cfg.Mongo)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		defer s.Close(context.Background())

		ctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		if err := s.EnsureIndexes(ctx); err != nil {
			log.Error("index creation failed", slog.String("error", err.Error()))
			return fmt.Errorf("%s: %w", op, err)
		}
		log.Info("mongo indexes ensured", slog.String("database", cfg.Mongo.Database))

	default:
		return fmt.Errorf("%s: unknown storage driver %q", op, cfg.Storage.Driver)
	}

	return nil
}
