// Package workforce keeps the register of contract workers and their daily attendance
// on tenders.
package workforce

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"tender-backend/internal/constants"
	"tender-backend/internal/lib/validate"
	"tender-backend/internal/storage"
)

// DefaultRange is the attendance window used when a query gives no start date.
const DefaultRange = 30 * 24 * time.Hour

type Store interface {
	CreateWorker(ctx context.Context, w *storage.ContractWorker) error
	GetWorker(ctx context.Context, workerID string) (*storage.ContractWorker, error)
	ListWorkers(ctx context.Context, page storage.Page) ([]storage.ContractWorker, int, error)
	UpdateWorker(ctx context.Context, w *storage.ContractWorker) error
	DeleteWorker(ctx context.Context, workerID string) error

	UpsertAttendance(ctx context.Context, records []storage.Attendance) error
	ListAttendance(ctx context.Context, tenderID string, from, to time.Time) ([]storage.Attendance, error)
}

type WorkerInput struct {
	Name       string  `json:"name" validate:"required"`
	Phone      string  `json:"phone" validate:"omitempty,max=20"`
	Trade      string  `json:"trade"`
	DailyWage  float64 `json:"daily_wage" validate:"gte=0"`
	Contractor string  `json:"contractor"`
	TenderID   string  `json:"tender_id"`
	Active     *bool   `json:"active,omitempty"`
}

type Entry struct {
	WorkerID    string  `json:"worker_id" validate:"required"`
	Status      string  `json:"status" validate:"required,oneof=Present Absent HalfDay"`
	HoursWorked float64 `json:"hours_worked" validate:"gte=0,lte=24"`
	Remarks     string  `json:"remarks"`
}

// Batch is one day of attendance on one tender.
type Batch struct {
	TenderID string  `json:"tender_id" validate:"required"`
	Date     string  `json:"date" validate:"required"`
	Entries  []Entry `json:"entries" validate:"required,min=1,dive"`
}

type Service struct {
	log   *slog.Logger
	store Store
	ids   storage.IDGenerator
	now   func() time.Time
}

func NewService(log *slog.Logger, store Store, ids storage.IDGenerator) *Service {
	return &Service{log: log, store: store, ids: ids, now: time.Now}
}

func (s *Service) CreateWorker(ctx context.Context, in WorkerInput) (*storage.ContractWorker, error) {
	const op = "service.workforce.CreateWorker"

	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.ids.RegisterType(ctx, constants.IDTypeContractWorker, constants.PrefixContractWorker); err != nil {
		return nil, fmt.Errorf("%s: register id type: %w", op, err)
	}
	workerID, err := s.ids.NextCode(ctx, constants.IDTypeContractWorker)
	if err != nil {
		return nil, fmt.Errorf("%s: next code: %w", op, err)
	}

	w := &storage.ContractWorker{WorkerID: workerID, Active: true}
	apply(w, in)

	if err := s.store.CreateWorker(ctx, w); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return w, nil
}

func (s *Service) GetWorker(ctx context.Context, workerID string) (*storage.ContractWorker, error) {
	const op = "service.workforce.GetWorker"

	w, err := s.store.GetWorker(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return w, nil
}

func (s *Service) ListWorkers(ctx context.Context, page storage.Page) ([]storage.ContractWorker, int, error) {
	const op = "service.workforce.ListWorkers"

	workers, total, err := s.store.ListWorkers(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return workers, total, nil
}

// UpdateWorker replaces the editable fields. Active is left as is when not given.
func (s *Service) UpdateWorker(ctx context.Context, workerID string, in WorkerInput) (*storage.ContractWorker, error) {
	const op = "service.workforce.UpdateWorker"

	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	w, err := s.store.GetWorker(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	apply(w, in)

	if err := s.store.UpdateWorker(ctx, w); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return w, nil
}

func (s *Service) DeleteWorker(ctx context.Context, workerID string) error {
	const op = "service.workforce.DeleteWorker"

	if err := s.store.DeleteWorker(ctx, workerID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func apply(w *storage.ContractWorker, in WorkerInput) {
	w.Name = in.Name
	w.Phone = in.Phone
	w.Trade = in.Trade
	w.DailyWage = in.DailyWage
	w.Contractor = in.Contractor
	w.TenderID = in.TenderID
	if in.Active != nil {
		w.Active = *in.Active
	}
}

// Mark upserts a day of attendance. Every worker in the batch must exist and appear once.
func (s *Service) Mark(ctx context.Context, b Batch) ([]storage.Attendance, error) {
	const op = "service.workforce.Mark"

	if err := validate.Struct(b); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	day, err := parseDay("date", b.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	seen := make(map[string]bool, len(b.Entries))
	records := make([]storage.Attendance, 0, len(b.Entries))
	for _, e := range b.Entries {
		if seen[e.WorkerID] {
			return nil, fmt.Errorf("%s: %w", op, validate.Failed("worker %s is listed twice", e.WorkerID))
		}
		seen[e.WorkerID] = true

		if _, err := s.store.GetWorker(ctx, e.WorkerID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		records = append(records, storage.Attendance{
			TenderID:    b.TenderID,
			WorkerID:    e.WorkerID,
			Date:        day,
			Status:      e.Status,
			HoursWorked: e.HoursWorked,
			Remarks:     e.Remarks,
		})
	}

	if err := s.store.UpsertAttendance(ctx, records); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("attendance marked",
		slog.String("op", op),
		slog.String("batch_id", uuid.NewString()),
		slog.String("tender_id", b.TenderID),
		slog.String("date", b.Date),
		slog.Int("entries", len(records)),
	)

	return records, nil
}

// List returns attendance between from and to (YYYY-MM-DD, inclusive). An empty to means
// today; an empty from means DefaultRange before to.
func (s *Service) List(ctx context.Context, tenderID, from, to string) ([]storage.Attendance, error) {
	const op = "service.workforce.List"

	start, end, err := s.window(tenderID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	records, err := s.store.ListAttendance(ctx, tenderID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

// Summary counts attendance per worker over the same window as List, ordered by worker id.
func (s *Service) Summary(ctx context.Context, tenderID, from, to string) ([]storage.AttendanceSummary, error) {
	const op = "service.workforce.Summary"

	records, err := s.List(ctx, tenderID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return Summarize(records), nil
}

func Summarize(records []storage.Attendance) []storage.AttendanceSummary {
	byWorker := map[string]*storage.AttendanceSummary{}
	for _, a := range records {
		sum, ok := byWorker[a.WorkerID]
		if !ok {
			sum = &storage.AttendanceSummary{WorkerID: a.WorkerID}
			byWorker[a.WorkerID] = sum
		}

		switch a.Status {
		case constants.AttendancePresent:
			sum.Present++
		case constants.AttendanceAbsent:
			sum.Absent++
		case constants.AttendanceHalfDay:
			sum.HalfDay++
		}
		sum.Hours += a.HoursWorked
	}

	out := make([]storage.AttendanceSummary, 0, len(byWorker))
	for _, sum := range byWorker {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkerID < out[j].WorkerID })

	return out
}

func (s *Service) window(tenderID, from, to string) (time.Time, time.Time, error) {
	if tenderID == "" {
		return time.Time{}, time.Time{}, validate.Failed("tender_id is required")
	}

	end := s.now().UTC()
	if to != "" {
		t, err := parseDay("to", to)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t
	}
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	start := end.Add(-DefaultRange)
	if from != "" {
		t, err := parseDay("from", from)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, validate.Failed("from %s is after to %s", start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	return start, end, nil
}

func parseDay(field, s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, validate.Failed("%s must be YYYY-MM-DD, got %q", field, s)
	}
	return t, nil
}
