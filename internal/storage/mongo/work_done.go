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

// CommitWorkDone applies each deduction as a guarded $inc and inserts the report inside
// one transaction. A guard that matches nothing aborts the transaction.
func (s *Storage) CommitWorkDone(ctx context.Context, report *storage.WorkDoneReport, deductions []storage.MaterialDeduction) error {
	const op = "storage.mongo.CommitWorkDone"

	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("%s: start session: %w", op, err)
	}
	defer sess.EndSession(ctx)

	now := storeNow()

	doc := *report
	doc.CreatedAt, doc.UpdatedAt = now, now
	doc.ReportDate = doc.ReportDate.UTC().Truncate(time.Millisecond)
	if doc.DailyWorkDone == nil {
		doc.DailyWorkDone = []storage.LineItem{}
	}

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		orders := s.db.Collection(colWorkOrders)

		n, err := orders.CountDocuments(sc, bson.M{"requestId": report.WorkOrderID})
		if err != nil {
			return nil, fmt.Errorf("find work order: %w", err)
		}
		if n == 0 {
			return nil, fmt.Errorf("work order %s: %w", report.WorkOrderID, storage.ErrNotFound)
		}

		for _, d := range deductions {
			if err := s.deduct(sc, report.WorkOrderID, d, now); err != nil {
				return nil, err
			}
		}

		if _, err := s.db.Collection(colWorkDone).InsertOne(sc, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, fmt.Errorf("report %s: %w", report.WorkDoneID, storage.ErrAlreadyExists)
			}
			return nil, fmt.Errorf("insert report: %w", err)
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	report.CreatedAt, report.UpdatedAt = now, now
	report.ReportDate = doc.ReportDate

	return nil
}

func (s *Storage) deduct(sc mongo.SessionContext, requestID string, d storage.MaterialDeduction, now time.Time) error {
	qty, err := toDecimal128(d.Quantity)
	if err != nil {
		return fmt.Errorf("deduct %q: %w", d.MaterialName, err)
	}
	neg, err := toDecimal128(d.Quantity.Neg())
	if err != nil {
		return fmt.Errorf("deduct %q: %w", d.MaterialName, err)
	}

	name := fmt.Sprintf("materialsRequired.%d.materialName", d.Position)
	stock := fmt.Sprintf("materialsRequired.%d.ex_quantity", d.Position)

	filter := bson.M{"requestId": requestID}
	filter[name] = d.MaterialName
	filter[stock] = bson.M{"$gte": qty}

	res, err := s.db.Collection(colWorkOrders).UpdateOne(sc, filter, bson.M{
		"$inc": bson.M{stock: neg},
		"$set": bson.M{"updatedAt": now},
	})
	if err != nil {
		return fmt.Errorf("deduct %q: %w", d.MaterialName, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	var current workOrderDoc
	if err := s.db.Collection(colWorkOrders).FindOne(sc, bson.M{"requestId": requestID}).Decode(&current); err != nil {
		return fmt.Errorf("read stock of %q: %w", d.MaterialName, err)
	}
	if d.Position >= len(current.MaterialsRequired) || current.MaterialsRequired[d.Position].MaterialName != d.MaterialName {
		return fmt.Errorf("material %q: %w", d.MaterialName, storage.ErrNotFound)
	}

	available, err := fromDecimal128(current.MaterialsRequired[d.Position].ExQuantity)
	if err != nil {
		return fmt.Errorf("read stock of %q: %w", d.MaterialName, err)
	}

	return &storage.InsufficientStockError{
		Material:  d.MaterialName,
		Requested: d.Quantity,
		Available: available,
	}
}

// listWorkDoneOptions drops the line items and puts the newest code first.
func listWorkDoneOptions() *options.FindOptions {
	return options.Find().
		SetProjection(bson.M{"dailyWorkDone": 0}).
		SetSort(bson.D{{Key: "workDoneId", Value: -1}})
}

func (s *Storage) ListWorkDone(ctx context.Context, tenderID string) ([]storage.WorkDoneSummary, error) {
	const op = "storage.mongo.ListWorkDone"

	cur, err := s.db.Collection(colWorkDone).Find(ctx, bson.M{"tender_id": tenderID}, listWorkDoneOptions())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reports := []storage.WorkDoneSummary{}
	if err := cur.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	return reports, nil
}

func (s *Storage) GetWorkDone(ctx context.Context, tenderID, workDoneID string) (*storage.WorkDoneReport, error) {
	const op = "storage.mongo.GetWorkDone"

	var r storage.WorkDoneReport
	err := s.db.Collection(colWorkDone).FindOne(ctx, bson.M{"tender_id": tenderID, "workDoneId": workDoneID}).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: report %s of tender %s: %w", op, workDoneID, tenderID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if r.DailyWorkDone == nil {
		r.DailyWorkDone = []storage.LineItem{}
	}

	return &r, nil
}
