package workdone

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"tender-backend/internal/idcode"
	"tender-backend/internal/storage"
)

// memStore keeps work orders and reports in memory. CommitWorkDone holds the lock for the
// whole check-and-apply, which gives it the same all-or-nothing behaviour as the real stores.
type memStore struct {
	mu         sync.Mutex
	workOrders map[string]*storage.WorkOrder
	reports    []storage.WorkDoneReport
	commits    int
}

func newMemStore(orders ...storage.WorkOrder) *memStore {
	s := &memStore{workOrders: map[string]*storage.WorkOrder{}}
	for i := range orders {
		wo := orders[i]
		wo.MaterialsRequired = append([]storage.Material(nil), orders[i].MaterialsRequired...)
		s.workOrders[wo.RequestID] = &wo
	}
	return s
}

func (s *memStore) GetWorkOrder(_ context.Context, requestID string) (*storage.WorkOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wo, ok := s.workOrders[requestID]
	if !ok {
		return nil, fmt.Errorf("work order %s: %w", requestID, storage.ErrNotFound)
	}

	cp := *wo
	cp.MaterialsRequired = append([]storage.Material(nil), wo.MaterialsRequired...)
	return &cp, nil
}

func (s *memStore) CommitWorkDone(_ context.Context, report *storage.WorkDoneReport, deductions []storage.MaterialDeduction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wo, ok := s.workOrders[report.WorkOrderID]
	if !ok {
		return fmt.Errorf("work order %s: %w", report.WorkOrderID, storage.ErrNotFound)
	}

	next := make([]decimal.Decimal, len(wo.MaterialsRequired))
	for i, m := range wo.MaterialsRequired {
		next[i] = decimal.NewFromFloat(m.ExQuantity)
	}
	for _, d := range deductions {
		if d.Quantity.GreaterThan(next[d.Position]) {
			return &storage.InsufficientStockError{Material: d.MaterialName, Requested: d.Quantity, Available: next[d.Position]}
		}
		next[d.Position] = next[d.Position].Sub(d.Quantity)
	}

	for _, r := range s.reports {
		if r.WorkDoneID == report.WorkDoneID {
			return fmt.Errorf("report %s: %w", report.WorkDoneID, storage.ErrAlreadyExists)
		}
	}

	for i := range wo.MaterialsRequired {
		wo.MaterialsRequired[i].ExQuantity = next[i].InexactFloat64()
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	report.CreatedAt, report.UpdatedAt = now, now

	stored := *report
	stored.ReportDate = report.ReportDate.Truncate(time.Millisecond)
	stored.DailyWorkDone = append([]storage.LineItem(nil), report.DailyWorkDone...)
	s.reports = append(s.reports, stored)
	s.commits++

	return nil
}

func (s *memStore) ListWorkDone(_ context.Context, tenderID string) ([]storage.WorkDoneSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []storage.WorkDoneSummary{}
	for i := len(s.reports) - 1; i >= 0; i-- {
		r := s.reports[i]
		if r.TenderID != tenderID {
			continue
		}
		out = append(out, storage.WorkDoneSummary{
			WorkDoneID:    r.WorkDoneID,
			TenderID:      r.TenderID,
			WorkOrderID:   r.WorkOrderID,
			ReportDate:    r.ReportDate,
			Status:        r.Status,
			CreatedBy:     r.CreatedBy,
			TotalWorkDone: r.TotalWorkDone,
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
		})
	}
	return out, nil
}

func (s *memStore) GetWorkDone(_ context.Context, tenderID, workDoneID string) (*storage.WorkDoneReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.reports {
		if r.TenderID == tenderID && r.WorkDoneID == workDoneID {
			cp := r
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("report %s: %w", workDoneID, storage.ErrNotFound)
}

func (s *memStore) exQuantity(requestID string, pos int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workOrders[requestID].MaterialsRequired[pos].ExQuantity
}

type memIDs struct {
	mu       sync.Mutex
	prefixes map[string]string
	seq      map[string]int64
}

func newMemIDs() *memIDs {
	return &memIDs{prefixes: map[string]string{}, seq: map[string]int64{}}
}

func (g *memIDs) RegisterType(_ context.Context, name, prefix string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.prefixes[name]; !ok {
		g.prefixes[name] = prefix
	}
	return nil
}

func (g *memIDs) NextCode(_ context.Context, name string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	prefix, ok := g.prefixes[name]
	if !ok {
		return "", fmt.Errorf("type %q: %w", name, storage.ErrNotFound)
	}
	g.seq[name]++
	return idcode.Format(prefix, g.seq[name]), nil
}
