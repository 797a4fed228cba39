package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tender-backend/internal/storage"
)

func (s *Storage) CreateTender(ctx context.Context, t *storage.Tender) error {
	const op = "storage.mongo.CreateTender"

	now := storeNow()
	t.CreatedAt, t.UpdatedAt = now, now
	t.Documents = []storage.TenderDocument{}

	if _, err := s.db.Collection(colTenders).InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: tender %s: %w", op, t.TenderID, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetTender(ctx context.Context, tenderID string) (*storage.Tender, error) {
	const op = "storage.mongo.GetTender"

	var t storage.Tender
	if err := s.db.Collection(colTenders).FindOne(ctx, bson.M{"tender_id": tenderID}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: tender %s: %w", op, tenderID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if t.Documents == nil {
		t.Documents = []storage.TenderDocument{}
	}

	return &t, nil
}

func (s *Storage) ListTenders(ctx context.Context, page storage.Page) ([]storage.Tender, int, error) {
	const op = "storage.mongo.ListTenders"

	filter := bson.M{}
	if page.Search != "" {
		re := searchRegex(page.Search)
		filter["$or"] = bson.A{
			bson.M{"tender_id": re},
			bson.M{"name": re},
			bson.M{"client": re},
			bson.M{"location": re},
		}
	}

	col := s.db.Collection(colTenders)

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	cur, err := col.Find(ctx, filter, options.Find().
		SetProjection(bson.M{"documents": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(page.Skip).
		SetLimit(page.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: find: %w", op, err)
	}

	tenders := []storage.Tender{}
	if err := cur.All(ctx, &tenders); err != nil {
		return nil, 0, fmt.Errorf("%s: decode: %w", op, err)
	}

	return tenders, int(total), nil
}

func (s *Storage) AddTenderDocument(ctx context.Context, tenderID string, doc storage.TenderDocument) error {
	const op = "storage.mongo.AddTenderDocument"

	doc.UploadedAt = doc.UploadedAt.UTC()

	res, err := s.db.Collection(colTenders).UpdateOne(ctx,
		bson.M{"tender_id": tenderID},
		bson.M{
			"$push": bson.M{"documents": doc},
			"$set":  bson.M{"updatedAt": storeNow()},
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: tender %s: %w", op, tenderID, storage.ErrNotFound)
	}

	return nil
}

// RemoveTenderDocument pulls the document from the tender and returns the removed entry.
func (s *Storage) RemoveTenderDocument(ctx context.Context, tenderID, documentID string) (*storage.TenderDocument, error) {
	const op = "storage.mongo.RemoveTenderDocument"

	var before storage.Tender
	err := s.db.Collection(colTenders).FindOneAndUpdate(ctx,
		bson.M{"tender_id": tenderID, "documents.document_id": documentID},
		bson.M{
			"$pull": bson.M{"documents": bson.M{"document_id": documentID}},
			"$set":  bson.M{"updatedAt": storeNow()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: document %s of tender %s: %w", op, documentID, tenderID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, d := range before.Documents {
		if d.DocumentID == documentID {
			return &d, nil
		}
	}

	return nil, fmt.Errorf("%s: document %s of tender %s: %w", op, documentID, tenderID, storage.ErrNotFound)
}
