// Package workorder manages material requests and their vendor quotation workflow.
package workorder

import (
	"context"
	"fmt"
	"time"

	"tender-backend/internal/constants"
	"tender-backend/internal/lib/validate"
	"tender-backend/internal/storage"
)

type Store interface {
	CreateWorkOrder(ctx context.Context, wo *storage.WorkOrder) error
	GetWorkOrder(ctx context.Context, requestID string) (*storage.WorkOrder, error)
	ListWorkOrders(ctx context.Context, projectID string, page storage.Page) ([]storage.WorkOrder, int, error)
	AddVendorQuotation(ctx context.Context, requestID string, q storage.VendorQuotation, status string) error
	SetSelectedVendor(ctx context.Context, requestID, vendor, status string) error
	UpdateWorkOrderStatus(ctx context.Context, requestID, status string) error
	DeleteWorkOrder(ctx context.Context, requestID string) error
}

type MaterialInput struct {
	MaterialName string  `json:"materialName" validate:"required"`
	Quantity     float64 `json:"quantity" validate:"gte=0"`
	Unit         string  `json:"unit"`
}

type Draft struct {
	ProjectID         string          `json:"projectId" validate:"required"`
	MaterialsRequired []MaterialInput `json:"materialsRequired" validate:"dive"`
	CreatedBy         string          `json:"createdBy"`
}

type Quotation struct {
	VendorName string  `json:"vendorName" validate:"required"`
	Amount     float64 `json:"amount" validate:"gt=0"`
	Remarks    string  `json:"remarks"`
}

type Service struct {
	store Store
	ids   storage.IDGenerator
	now   func() time.Time
}

func NewService(store Store, ids storage.IDGenerator) *Service {
	return &Service{store: store, ids: ids, now: time.Now}
}

// Create opens a work order in status "Request Raised" with every material fully available.
func (s *Service) Create(ctx context.Context, d Draft) (*storage.WorkOrder, error) {
	const op = "service.workorder.Create"

	if err := validate.Struct(d); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.ids.RegisterType(ctx, constants.IDTypeWorkOrder, constants.PrefixWorkOrder); err != nil {
		return nil, fmt.Errorf("%s: register id type: %w", op, err)
	}
	requestID, err := s.ids.NextCode(ctx, constants.IDTypeWorkOrder)
	if err != nil {
		return nil, fmt.Errorf("%s: next code: %w", op, err)
	}

	createdBy := d.CreatedBy
	if createdBy == "" {
		createdBy = constants.DefaultCreatedBy
	}

	wo := &storage.WorkOrder{
		RequestID:         requestID,
		ProjectID:         d.ProjectID,
		MaterialsRequired: make([]storage.Material, 0, len(d.MaterialsRequired)),
		VendorQuotations:  []storage.VendorQuotation{},
		Status:            constants.WorkOrderRequestRaised,
		CreatedBy:         createdBy,
	}
	for _, m := range d.MaterialsRequired {
		unit := m.Unit
		if unit == "" {
			unit = constants.DefaultUnit
		}
		qty := storage.RoundQuantity(m.Quantity)
		wo.MaterialsRequired = append(wo.MaterialsRequired, storage.Material{
			MaterialName: m.MaterialName,
			Quantity:     qty,
			Unit:         unit,
			ExQuantity:   qty,
		})
	}

	if err := s.store.CreateWorkOrder(ctx, wo); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return wo, nil
}

func (s *Service) Get(ctx context.Context, requestID string) (*storage.WorkOrder, error) {
	const op = "service.workorder.Get"

	wo, err := s.store.GetWorkOrder(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return wo, nil
}

func (s *Service) List(ctx context.Context, projectID string, page storage.Page) ([]storage.WorkOrder, int, error) {
	const op = "service.workorder.List"

	if projectID == "" {
		return nil, 0, fmt.Errorf("%s: %w", op, validate.Failed("project_id is required"))
	}

	orders, total, err := s.store.ListWorkOrders(ctx, projectID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return orders, total, nil
}

// AddQuotation records a vendor's offer. The first quotation moves the work order from
// "Request Raised" to "Quotation Received"; later statuses are left alone.
func (s *Service) AddQuotation(ctx context.Context, requestID string, q Quotation) (*storage.WorkOrder, error) {
	const op = "service.workorder.AddQuotation"

	if err := validate.Struct(q); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	wo, err := s.store.GetWorkOrder(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status := wo.Status
	if status == constants.WorkOrderRequestRaised {
		status = constants.WorkOrderQuotationReceived
	}

	quotation := storage.VendorQuotation{
		VendorName:  q.VendorName,
		Amount:      q.Amount,
		Remarks:     q.Remarks,
		SubmittedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.store.AddVendorQuotation(ctx, requestID, quotation, status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	wo.VendorQuotations = append(wo.VendorQuotations, quotation)
	wo.Status = status

	return wo, nil
}

// SelectVendor picks one of the vendors that quoted on the work order.
func (s *Service) SelectVendor(ctx context.Context, requestID, vendorName string) (*storage.WorkOrder, error) {
	const op = "service.workorder.SelectVendor"

	if vendorName == "" {
		return nil, fmt.Errorf("%s: %w", op, validate.Failed("vendorName is required"))
	}

	wo, err := s.store.GetWorkOrder(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	quoted := false
	for _, q := range wo.VendorQuotations {
		if q.VendorName == vendorName {
			quoted = true
			break
		}
	}
	if !quoted {
		return nil, fmt.Errorf("%s: %w", op, validate.Failed("vendor %q has not quoted on %s", vendorName, requestID))
	}

	if err := s.store.SetSelectedVendor(ctx, requestID, vendorName, constants.WorkOrderVendorSelected); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	wo.SelectedVendor = vendorName
	wo.Status = constants.WorkOrderVendorSelected

	return wo, nil
}

func (s *Service) UpdateStatus(ctx context.Context, requestID, status string) error {
	const op = "service.workorder.UpdateStatus"

	if !constants.WorkOrderStatuses[status] {
		return fmt.Errorf("%s: %w", op, validate.Failed("unknown work order status %q", status))
	}

	if err := s.store.UpdateWorkOrderStatus(ctx, requestID, status); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) Delete(ctx context.Context, requestID string) error {
	const op = "service.workorder.Delete"

	if err := s.store.DeleteWorkOrder(ctx, requestID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
