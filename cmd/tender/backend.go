package main

import (
	"context"
	"fmt"
	"log/slog"

	"tender-backend/internal/config"
	"tender-backend/internal/idcode"
	"tender-backend/internal/service/export"
	"tender-backend/internal/service/tender"
	"tender-backend/internal/service/workdone"
	"tender-backend/internal/service/workforce"
	"tender-backend/internal/service/workorder"
	"tender-backend/internal/storage"
	"tender-backend/internal/storage/mongo"
	"tender-backend/internal/storage/mysql"
)

const (
	driverMySQL = "mysql"
	driverMongo = "mongo"

	idCodesStore = "store"
	idCodesRedis = "redis"
)

// store is the method set both storage drivers provide.
type store interface {
	workdone.Store
	workorder.Store
	tender.Store
	workforce.Store
	export.Store
	idCodes
}

type idCodes interface {
	storage.IDGenerator
	ListIDCodes(ctx context.Context) ([]storage.IDCode, error)
}

// openStore connects the configured driver. The returned func closes it.
func openStore(ctx context.Context, cfg *config.Config) (store, func(), error) {
	const op = "main.openStore"

	switch cfg.Storage.Driver {
	case driverMySQL:
		s, err := mysql.New(cfg.MySQL)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		return s, func() { _ = s.Close() }, nil

	case driverMongo:
		s, err := mongo.New(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		return s, func() { _ = s.Close(context.Background()) }, nil

	default:
		return nil, nil, fmt.Errorf("%s: unknown storage driver %q", op, cfg.Storage.Driver)
	}
}

// openIDCodes picks where sequence counters live: next to the data, or in Redis.
func openIDCodes(ctx context.Context, log *slog.Logger, cfg *config.Config, st store) (idCodes, func(), error) {
	const op = "main.openIDCodes"

	switch cfg.IDCodes.Backend {
	case "", idCodesStore:
		return st, func() {}, nil

	case idCodesRedis:
		r, err := idcode.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("id codes served from redis", slog.String("addr", cfg.Redis.Addr))
		return r, func() { _ = r.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("%s: unknown id code backend %q", op, cfg.IDCodes.Backend)
	}
}
