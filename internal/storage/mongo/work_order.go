package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tender-backend/internal/storage"
)

// workOrderDoc keeps quantities as Decimal128 so that $inc deductions stay exact.
type workOrderDoc struct {
	ID                primitive.ObjectID        `bson:"_id,omitempty"`
	RequestID         string                    `bson:"requestId"`
	ProjectID         string                    `bson:"projectId"`
	MaterialsRequired []materialDoc             `bson:"materialsRequired"`
	VendorQuotations  []storage.VendorQuotation `bson:"vendorQuotations"`
	SelectedVendor    string                    `bson:"selectedVendor"`
	Status            string                    `bson:"status"`
	CreatedBy         string                    `bson:"createdBy"`
	CreatedAt         time.Time                 `bson:"createdAt"`
	UpdatedAt         time.Time                 `bson:"updatedAt"`
}

type materialDoc struct {
	MaterialName string               `bson:"materialName"`
	Quantity     primitive.Decimal128 `bson:"quantity"`
	Unit         string               `bson:"unit"`
	ExQuantity   primitive.Decimal128 `bson:"ex_quantity"`
}

func toWorkOrderDoc(wo *storage.WorkOrder) (*workOrderDoc, error) {
	doc := &workOrderDoc{
		RequestID:         wo.RequestID,
		ProjectID:         wo.ProjectID,
		MaterialsRequired: make([]materialDoc, 0, len(wo.MaterialsRequired)),
		VendorQuotations:  wo.VendorQuotations,
		SelectedVendor:    wo.SelectedVendor,
		Status:            wo.Status,
		CreatedBy:         wo.CreatedBy,
		CreatedAt:         wo.CreatedAt,
		UpdatedAt:         wo.UpdatedAt,
	}
	if doc.VendorQuotations == nil {
		doc.VendorQuotations = []storage.VendorQuotation{}
	}

	for _, m := range wo.MaterialsRequired {
		qty, err := toDecimal128(decimal.NewFromFloat(m.Quantity))
		if err != nil {
			return nil, fmt.Errorf("quantity of %q: %w", m.MaterialName, err)
		}
		ex, err := toDecimal128(decimal.NewFromFloat(m.ExQuantity))
		if err != nil {
			return nil, fmt.Errorf("ex_quantity of %q: %w", m.MaterialName, err)
		}
		doc.MaterialsRequired = append(doc.MaterialsRequired, materialDoc{
			MaterialName: m.MaterialName,
			Quantity:     qty,
			Unit:         m.Unit,
			ExQuantity:   ex,
		})
	}

	return doc, nil
}

func (d *workOrderDoc) toStorage() (*storage.WorkOrder, error) {
	wo := &storage.WorkOrder{
		RequestID:         d.RequestID,
		ProjectID:         d.ProjectID,
		MaterialsRequired: make([]storage.Material, 0, len(d.MaterialsRequired)),
		VendorQuotations:  d.VendorQuotations,
		SelectedVendor:    d.SelectedVendor,
		Status:            d.Status,
		CreatedBy:         d.CreatedBy,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if wo.VendorQuotations == nil {
		wo.VendorQuotations = []storage.VendorQuotation{}
	}

	for _, m := range d.MaterialsRequired {
		qty, err := fromDecimal128(m.Quantity)
		if err != nil {
			return nil, fmt.Errorf("quantity of %q: %w", m.MaterialName, err)
		}
		ex, err := fromDecimal128(m.ExQuantity)
		if err != nil {
			return nil, fmt.Errorf("ex_quantity of %q: %w", m.MaterialName, err)
		}
		wo.MaterialsRequired = append(wo.MaterialsRequired, storage.Material{
			MaterialName: m.MaterialName,
			Quantity:     qty.InexactFloat64(),
			Unit:         m.Unit,
			ExQuantity:   ex.InexactFloat64(),
		})
	}

	return wo, nil
}

func (s *Storage) CreateWorkOrder(ctx context.Context, wo *storage.WorkOrder) error {
	const op = "storage.mongo.CreateWorkOrder"

	now := storeNow()
	wo.CreatedAt, wo.UpdatedAt = now, now

	doc, err := toWorkOrderDoc(wo)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.db.Collection(colWorkOrders).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: work order %s: %w", op, wo.RequestID, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetWorkOrder(ctx context.Context, requestID string) (*storage.WorkOrder, error) {
	const op = "storage.mongo.GetWorkOrder"

	var doc workOrderDoc
	if err := s.db.Collection(colWorkOrders).FindOne(ctx, bson.M{"requestId": requestID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: work order %s: %w", op, requestID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	wo, err := doc.toStorage()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return wo, nil
}

func (s *Storage) ListWorkOrders(ctx context.Context, projectID string, page storage.Page) ([]storage.WorkOrder, int, error) {
	const op = "storage.mongo.ListWorkOrders"

	filter := bson.M{"projectId": projectID}
	if page.Search != "" {
		re := searchRegex(page.Search)
		filter["$or"] = bson.A{
			bson.M{"requestId": re},
			bson.M{"materialsRequired.materialName": re},
		}
	}

	col := s.db.Collection(colWorkOrders)

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	cur, err := col.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(page.Skip).
		SetLimit(page.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: find: %w", op, err)
	}

	var docs []workOrderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("%s: decode: %w", op, err)
	}

	orders := make([]storage.WorkOrder, 0, len(docs))
	for i := range docs {
		wo, err := docs[i].toStorage()
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		orders = append(orders, *wo)
	}

	return orders, int(total), nil
}

func (s *Storage) AddVendorQuotation(ctx context.Context, requestID string, q storage.VendorQuotation, status string) error {
	return s.updateWorkOrder(ctx, "storage.mongo.AddVendorQuotation", requestID, bson.M{
		"$push": bson.M{"vendorQuotations": q},
		"$set":  bson.M{"status": status, "updatedAt": storeNow()},
	})
}

func (s *Storage) SetSelectedVendor(ctx context.Context, requestID, vendor, status string) error {
	return s.updateWorkOrder(ctx, "storage.mongo.SetSelectedVendor", requestID, bson.M{
		"$set": bson.M{"selectedVendor": vendor, "status": status, "updatedAt": storeNow()},
	})
}

func (s *Storage) UpdateWorkOrderStatus(ctx context.Context, requestID, status string) error {
	return s.updateWorkOrder(ctx, "storage.mongo.UpdateWorkOrderStatus", requestID, bson.M{
		"$set": bson.M{"status": status, "updatedAt": storeNow()},
	})
}

func (s *Storage) updateWorkOrder(ctx context.Context, op, requestID string, update bson.M) error {
	res, err := s.db.Collection(colWorkOrders).UpdateOne(ctx, bson.M{"requestId": requestID}, update)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: work order %s: %w", op, requestID, storage.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeleteWorkOrder(ctx context.Context, requestID string) error {
	const op = "storage.mongo.DeleteWorkOrder"

	res, err := s.db.Collection(colWorkOrders).DeleteOne(ctx, bson.M{"requestId": requestID})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: work order %s: %w", op, requestID, storage.ErrNotFound)
	}

	return nil
}
