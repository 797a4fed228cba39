// Package workdone records work-done reports and reconciles the materials they consume
// against the referenced work order.
package workdone

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tender-backend/internal/constants"
	"tender-backend/internal/lib/validate"
	"tender-backend/internal/storage"
)

type Store interface {
	GetWorkOrder(ctx context.Context, requestID string) (*storage.WorkOrder, error)
	CommitWorkDone(ctx context.Context, report *storage.WorkDoneReport, deductions []storage.MaterialDeduction) error
	ListWorkDone(ctx context.Context, tenderID string) ([]storage.WorkDoneSummary, error)
	GetWorkDone(ctx context.Context, tenderID, workDoneID string) (*storage.WorkDoneReport, error)
}

var (
	reportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tender",
		Subsystem: "workdone",
		Name:      "reports_total",
		Help:      "Work-done submissions by outcome.",
	}, []string{"result"})

	deductionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tender",
		Subsystem: "workdone",
		Name:      "material_deductions_total",
		Help:      "Material positions decremented by committed reports.",
	})
)

// Draft is a work-done submission before normalization.
type Draft struct {
	TenderID      string    `json:"tender_id" validate:"required"`
	WorkOrderID   string    `json:"work_order_id" validate:"required"`
	ReportDate    string    `json:"report_date,omitempty"`
	CreatedBy     string    `json:"created_by,omitempty"`
	DailyWorkDone []RawItem `json:"dailyWorkDone"`
}

type Service struct {
	store Store
	ids   storage.IDGenerator
	now   func() time.Time
}

func NewService(store Store, ids storage.IDGenerator) *Service {
	return &Service{store: store, ids: ids, now: time.Now}
}

// RecordWorkDone creates a report and deducts the materials it consumes from the work
// order. Either both happen or neither does.
func (s *Service) RecordWorkDone(ctx context.Context, d Draft) (*storage.WorkDoneReport, error) {
	const op = "service.workdone.RecordWorkDone"

	report, err := s.record(ctx, d)
	reportsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return report, nil
}

func (s *Service) record(ctx context.Context, d Draft) (*storage.WorkDoneReport, error) {
	if err := validate.Struct(d); err != nil {
		return nil, err
	}

	reportDate, err := parseReportDate(d.ReportDate, s.now)
	if err != nil {
		return nil, err
	}

	items := make([]storage.LineItem, 0, len(d.DailyWorkDone))
	for i, raw := range d.DailyWorkDone {
		item := Normalize(raw)
		if item.Quantity < 0 {
			return nil, validate.Failed("dailyWorkDone[%d].quantity must not be negative", i)
		}
		items = append(items, item)
	}

	if err := s.ids.RegisterType(ctx, constants.IDTypeWorkDone, constants.PrefixWorkDone); err != nil {
		return nil, fmt.Errorf("register id type: %w", err)
	}

	workDoneID, err := s.ids.NextCode(ctx, constants.IDTypeWorkDone)
	if err != nil {
		return nil, fmt.Errorf("next work-done code: %w", err)
	}

	wo, err := s.store.GetWorkOrder(ctx, d.WorkOrderID)
	if err != nil {
		return nil, err
	}

	deductions, err := Reconcile(wo.MaterialsRequired, items)
	if err != nil {
		return nil, fmt.Errorf("work order %s: %w", wo.RequestID, err)
	}

	createdBy := d.CreatedBy
	if createdBy == "" {
		createdBy = constants.DefaultCreatedBy
	}

	report := &storage.WorkDoneReport{
		WorkDoneID:    workDoneID,
		TenderID:      d.TenderID,
		WorkOrderID:   wo.RequestID,
		ReportDate:    reportDate,
		Status:        constants.ReportStatusSubmitted,
		CreatedBy:     createdBy,
		DailyWorkDone: items,
		TotalWorkDone: len(items),
	}

	if err := s.store.CommitWorkDone(ctx, report, deductions); err != nil {
		return nil, err
	}

	deductionsTotal.Add(float64(len(deductions)))

	return report, nil
}

func (s *Service) ListReports(ctx context.Context, tenderID string) ([]storage.WorkDoneSummary, error) {
	const op = "service.workdone.ListReports"

	if tenderID == "" {
		return nil, fmt.Errorf("%s: %w", op, validate.Failed("tender_id is required"))
	}

	reports, err := s.store.ListWorkDone(ctx, tenderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reports, nil
}

func (s *Service) GetReport(ctx context.Context, tenderID, workDoneID string) (*storage.WorkDoneReport, error) {
	const op = "service.workdone.GetReport"

	report, err := s.store.GetWorkDone(ctx, tenderID, workDoneID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return report, nil
}

// parseReportDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates; empty means now.
// Results are cut to milliseconds, the precision both stores keep.
func parseReportDate(s string, now func() time.Time) (time.Time, error) {
	if s == "" {
		return now().UTC().Truncate(time.Millisecond), nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Truncate(time.Millisecond), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}

	return time.Time{}, validate.Failed("report_date %q is neither RFC 3339 nor YYYY-MM-DD", s)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "recorded"
	case errors.Is(err, storage.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	case errors.Is(err, validate.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
