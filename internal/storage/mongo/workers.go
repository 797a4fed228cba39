package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tender-backend/internal/storage"
)

func (s *Storage) CreateWorker(ctx context.Context, w *storage.ContractWorker) error {
	const op = "storage.mongo.CreateWorker"

	now := storeNow()
	w.CreatedAt, w.UpdatedAt = now, now

	if _, err := s.db.Collection(colWorkers).InsertOne(ctx, w); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: worker %s: %w", op, w.WorkerID, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetWorker(ctx context.Context, workerID string) (*storage.ContractWorker, error) {
	const op = "storage.mongo.GetWorker"

	var w storage.ContractWorker
	if err := s.db.Collection(colWorkers).FindOne(ctx, bson.M{"worker_id": workerID}).Decode(&w); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: worker %s: %w", op, workerID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &w, nil
}

func (s *Storage) ListWorkers(ctx context.Context, page storage.Page) ([]storage.ContractWorker, int, error) {
	const op = "storage.mongo.ListWorkers"

	filter := bson.M{}
	if page.Search != "" {
		re := searchRegex(page.Search)
		filter["$or"] = bson.A{
			bson.M{"worker_id": re},
			bson.M{"name": re},
			bson.M{"trade": re},
			bson.M{"contractor": re},
		}
	}

	col := s.db.Collection(colWorkers)

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	cur, err := col.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "worker_id", Value: 1}}).
		SetSkip(page.Skip).
		SetLimit(page.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: find: %w", op, err)
	}

	workers := []storage.ContractWorker{}
	if err := cur.All(ctx, &workers); err != nil {
		return nil, 0, fmt.Errorf("%s: decode: %w", op, err)
	}

	return workers, int(total), nil
}

func (s *Storage) UpdateWorker(ctx context.Context, w *storage.ContractWorker) error {
	const op = "storage.mongo.UpdateWorker"

	now := storeNow()

	res, err := s.db.Collection(colWorkers).UpdateOne(ctx,
		bson.M{"worker_id": w.WorkerID},
		bson.M{"$set": bson.M{
			"name":       w.Name,
			"phone":      w.Phone,
			"trade":      w.Trade,
			"daily_wage": w.DailyWage,
			"contractor": w.Contractor,
			"tender_id":  w.TenderID,
			"active":     w.Active,
			"updatedAt":  now,
		}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: worker %s: %w", op, w.WorkerID, storage.ErrNotFound)
	}

	w.UpdatedAt = now

	return nil
}

func (s *Storage) DeleteWorker(ctx context.Context, workerID string) error {
	const op = "storage.mongo.DeleteWorker"

	res, err := s.db.Collection(colWorkers).DeleteOne(ctx, bson.M{"worker_id": workerID})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: worker %s: %w", op, workerID, storage.ErrNotFound)
	}

	return nil
}

// UpsertAttendance replaces the rows for each (tender, worker, day) in one unordered bulk write.
func (s *Storage) UpsertAttendance(ctx context.Context, records []storage.Attendance) error {
	const op = "storage.mongo.UpsertAttendance"

	if len(records) == 0 {
		return nil
	}

	now := storeNow()

	models := make([]mongo.WriteModel, 0, len(records))
	for _, a := range records {
		day := dayUTC(a.Date)
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"tender_id": a.TenderID, "worker_id": a.WorkerID, "date": day}).
			SetUpdate(bson.M{"$set": bson.M{
				"status":       a.Status,
				"hours_worked": a.HoursWorked,
				"remarks":      a.Remarks,
				"updatedAt":    now,
			}}).
			SetUpsert(true))
	}

	if _, err := s.db.Collection(colAttendance).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for i := range records {
		records[i].UpdatedAt = now
	}

	return nil
}

func (s *Storage) ListAttendance(ctx context.Context, tenderID string, from, to time.Time) ([]storage.Attendance, error) {
	const op = "storage.mongo.ListAttendance"

	cur, err := s.db.Collection(colAttendance).Find(ctx,
		bson.M{"tender_id": tenderID, "date": bson.M{"$gte": dayUTC(from), "$lte": dayUTC(to)}},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "worker_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	records := []storage.Attendance{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	return records, nil
}

func dayUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
