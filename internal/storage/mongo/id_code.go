package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tender-backend/internal/idcode"
	"tender-backend/internal/storage"
)

func (s *Storage) RegisterType(ctx context.Context, name, prefix string) error {
	const op = "storage.mongo.RegisterType"

	_, err := s.db.Collection(colIDCodes).UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{"$setOnInsert": bson.M{"prefix": prefix, "seq": int64(0)}},
		options.Update().SetUpsert(true),
	)
	// two concurrent upserts of a new name race on _id; the loser's type is registered anyway
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %s: %w", op, name, err)
	}

	return nil
}

func (s *Storage) NextCode(ctx context.Context, name string) (string, error) {
	const op = "storage.mongo.NextCode"

	var code storage.IDCode
	err := s.db.Collection(colIDCodes).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&code)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", fmt.Errorf("%s: type %q is not registered: %w", op, name, storage.ErrNotFound)
		}
		return "", fmt.Errorf("%s: %s: %w", op, name, err)
	}

	return idcode.Format(code.Prefix, code.Seq), nil
}

func (s *Storage) ListIDCodes(ctx context.Context) ([]storage.IDCode, error) {
	const op = "storage.mongo.ListIDCodes"

	cur, err := s.db.Collection(colIDCodes).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	codes := []storage.IDCode{}
	if err := cur.All(ctx, &codes); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	return codes, nil
}
