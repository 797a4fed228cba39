// Package mongo is the document-store backend. It keeps the same method set as the
// MySQL storage; work orders and reports are stored as whole documents.
// Multi-document transactions need a replica set.
package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tender-backend/internal/config"
)

const (
	colIDCodes    = "idcodes"
	colWorkOrders = "workorders"
	colWorkDone   = "workdones"
	colTenders    = "tenders"
	colWorkers    = "contractworkers"
	colAttendance = "attendance"
)

type Storage struct {
	client *mongo.Client
	db     *mongo.Database
}

func New(ctx context.Context, cfg config.Mongo) (*Storage, error) {
	const op = "storage.mongo.New"

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("%s: connect: %w", op, err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return &Storage{client: client, db: client.Database(cfg.Database)}, nil
}

func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the collections' unique keys and lookup indexes. It is safe to
// run repeatedly.
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	const op = "storage.mongo.EnsureIndexes"

	indexes := map[string][]mongo.IndexModel{
		colWorkOrders: {
			{Keys: bson.D{{Key: "requestId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "projectId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		colWorkDone: {
			{Keys: bson.D{{Key: "workDoneId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "tender_id", Value: 1}, {Key: "workDoneId", Value: -1}}},
		},
		colTenders: {
			{Keys: bson.D{{Key: "tender_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colWorkers: {
			{Keys: bson.D{{Key: "worker_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colAttendance: {
			{
				Keys:    bson.D{{Key: "tender_id", Value: 1}, {Key: "worker_id", Value: 1}, {Key: "date", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}

	for col, models := range indexes {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%s: %s: %w", op, col, err)
		}
	}

	return nil
}

func storeNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// searchRegex matches search literally and case-insensitively.
func searchRegex(search string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}
