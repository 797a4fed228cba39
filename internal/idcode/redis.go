package idcode

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"tender-backend/internal/config"
	"tender-backend/internal/storage"
)

const (
	prefixesKey = "idcode:prefixes"
	seqKeyBase  = "idcode:seq:"
)

// Redis keeps the type->prefix registry in a hash and one INCR counter per type.
type Redis struct {
	rdb *goredis.Client
}

func NewRedis(ctx context.Context, cfg config.Redis) (*Redis, error) {
	const op = "idcode.NewRedis"

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("%s: ping %s: %w", op, cfg.Addr, err)
	}

	return &Redis{rdb: rdb}, nil
}

// RegisterType is a no-op when name is already registered, even with another prefix.
func (r *Redis) RegisterType(ctx context.Context, name, prefix string) error {
	const op = "idcode.Redis.RegisterType"

	if err := r.rdb.HSetNX(ctx, prefixesKey, name, prefix).Err(); err != nil {
		return fmt.Errorf("%s: %s: %w", op, name, err)
	}

	return nil
}

func (r *Redis) NextCode(ctx context.Context, name string) (string, error) {
	const op = "idcode.Redis.NextCode"

	prefix, err := r.rdb.HGet(ctx, prefixesKey, name).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", fmt.Errorf("%s: type %q is not registered: %w", op, name, storage.ErrNotFound)
		}
		return "", fmt.Errorf("%s: %s: %w", op, name, err)
	}

	seq, err := r.rdb.Incr(ctx, seqKeyBase+name).Result()
	if err != nil {
		return "", fmt.Errorf("%s: incr %s: %w", op, name, err)
	}

	return Format(prefix, seq), nil
}

func (r *Redis) ListIDCodes(ctx context.Context) ([]storage.IDCode, error) {
	const op = "idcode.Redis.ListIDCodes"

	prefixes, err := r.rdb.HGetAll(ctx, prefixesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	codes := make([]storage.IDCode, 0, len(prefixes))
	for name, prefix := range prefixes {
		seq, err := r.rdb.Get(ctx, seqKeyBase+name).Int64()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("%s: seq %s: %w", op, name, err)
		}
		codes = append(codes, storage.IDCode{Name: name, Prefix: prefix, Seq: seq})
	}

	sort.Slice(codes, func(i, j int) bool { return codes[i].Name < codes[j].Name })

	return codes, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
