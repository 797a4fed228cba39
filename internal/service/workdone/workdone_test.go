package workdone

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"tender-backend/internal/lib/validate"
	"tender-backend/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func cementOrder(q float64) storage.WorkOrder {
	return storage.WorkOrder{
		RequestID: "WO-00001",
		ProjectID: "P-1",
		MaterialsRequired: []storage.Material{
			{MaterialName: "Cement", Quantity: q, Unit: "Bags", ExQuantity: q},
			{MaterialName: "Sand", Quantity: 5, Unit: "m3", ExQuantity: 5},
		},
		Status: "Request Raised",
	}
}

func newTestService(orders ...storage.WorkOrder) (*Service, *memStore) {
	store := newMemStore(orders...)
	svc := NewService(store, newMemIDs())
	svc.now = func() time.Time { return time.Date(2024, 7, 1, 9, 30, 0, 123456789, time.UTC) }
	return svc, store
}

func draft(items ...RawItem) Draft {
	return Draft{TenderID: "T-1", WorkOrderID: "WO-00001", DailyWorkDone: items}
}

func TestRecordWorkDone_DeductsWithinStock(t *testing.T) {
	svc, store := newTestService(cementOrder(100))

	report, err := svc.RecordWorkDone(context.Background(), draft(
		RawItem{"item_description": "Cement", "quantity": 40},
	))
	require.NoError(t, err)

	assert.Equal(t, 60.0, store.exQuantity("WO-00001", 0))
	assert.Equal(t, 5.0, store.exQuantity("WO-00001", 1))
	assert.Equal(t, "WD-00001", report.WorkDoneID)
	assert.Equal(t, "Submitted", report.Status)
	assert.Equal(t, "system", report.CreatedBy)
	assert.Equal(t, "WO-00001", report.WorkOrderID)
	assert.Equal(t, time.Date(2024, 7, 1, 9, 30, 0, 123000000, time.UTC), report.ReportDate)
}

func TestRecordWorkDone_ExactStockDrainsToZero(t *testing.T) {
	svc, store := newTestService(cementOrder(0.3))

	_, err := svc.RecordWorkDone(context.Background(), draft(
		RawItem{"item_description": "Cement", "quantity": 0.1},
		RawItem{"item_description": "Cement", "quantity": "0.2"},
	))
	require.NoError(t, err)

	assert.Equal(t, 0.0, store.exQuantity("WO-00001", 0))
}

func TestRecordWorkDone_InsufficientStock(t *testing.T) {
	svc, store := newTestService(cementOrder(10))

	_, err := svc.RecordWorkDone(context.Background(), draft(
		RawItem{"item_description": "Cement", "quantity": 11},
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrInsufficientStock))

	var stockErr *storage.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Cement", stockErr.Material)
	assert.True(t, stockErr.Requested.Equal(decimal.NewFromInt(11)))
	assert.True(t, stockErr.Available.Equal(decimal.NewFromInt(10)))

	assert.Equal(t, 10.0, store.exQuantity("WO-00001", 0))
	assert.Zero(t, store.commits)
}

func TestRecordWorkDone_AllOrNothing(t *testing.T) {
	svc, store := newTestService(cementOrder(10))

	_, err := svc.RecordWorkDone(context.Background(), draft(
		RawItem{"item_description": "Sand", "quantity": 2},
		RawItem{"item_description": "Cement", "quantity": 50},
	))
	require.True(t, errors.Is(err, storage.ErrInsufficientStock))

	assert.Equal(t, 5.0, store.exQuantity("WO-00001", 1))
	assert.Equal(t, 10.0, store.exQuantity("WO-00001", 0))

	reports, err := svc.ListReports(context.Background(), "T-1")
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestRecordWorkDone_CumulativeItemsOnSameMaterial(t *testing.T) {
	svc, store := newTestService(cementOrder(10))

	_, err := svc.RecordWorkDone(context.Background(), draft(
		RawItem{"item_description": "Cement", "quantity": 6},
		RawItem{"item_description": "Cement", "quantity": 6},
	))
	require.True(t, errors.Is(err, storage.ErrInsufficientStock))

	var stockErr *storage.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.True(t, stockErr.Available.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, 10.0, store.exQuantity("WO-00001", 0))
}

func TestRecordWorkDone_WorkOrderNotFound(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.RecordWorkDone(context.Background(), draft(RawItem{"item_description": "Cement", "quantity": 1}))
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.Zero(t, store.commits)
}

func TestRecordWorkDone_TotalIsItemCount(t *testing.T) {
	svc, _ := newTestService(cementOrder(100))

	report, err := svc.RecordWorkDone(context.Background(), draft(
		RawItem{"item_description": "Cement", "quantity": 5},
		RawItem{"item_description": "Brickwork", "quantity": 10},
		RawItem{"item_description": "Plaster", "quantity": 2},
	))
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalWorkDone)
	assert.Len(t, report.DailyWorkDone, 3)
}

func TestRecordWorkDone_UnmatchedItemsPassThrough(t *testing.T) {
	svc, store := newTestService(cementOrder(1))

	report, err := svc.RecordWorkDone(context.Background(), draft(
		RawItem{"item_description": "cement", "quantity": 500},
	))
	require.NoError(t, err)

	assert.Equal(t, 1.0, store.exQuantity("WO-00001", 0))
	assert.Equal(t, "cement", report.DailyWorkDone[0].ItemDescription)
}

func TestRecordWorkDone_NoMaterialsOnOrder(t *testing.T) {
	order := storage.WorkOrder{RequestID: "WO-00001", ProjectID: "P-1"}
	svc, _ := newTestService(order)

	report, err := svc.RecordWorkDone(context.Background(), draft(RawItem{"item_description": "Cement", "quantity": 5}))
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalWorkDone)
}

func TestRecordWorkDone_Validation(t *testing.T) {
	svc, store := newTestService(cementOrder(10))

	tests := []struct {
		name  string
		draft Draft
	}{
		{"missing tender", Draft{WorkOrderID: "WO-00001"}},
		{"missing work order", Draft{TenderID: "T-1"}},
		{"bad report date", Draft{TenderID: "T-1", WorkOrderID: "WO-00001", ReportDate: "01/07/2024"}},
		{"negative quantity", draft(RawItem{"item_description": "Cement", "quantity": -3})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordWorkDone(context.Background(), tt.draft)
			assert.True(t, errors.Is(err, validate.ErrValidation), err)
		})
	}

	assert.Zero(t, store.commits)
	assert.Equal(t, 10.0, store.exQuantity("WO-00001", 0))
}

func TestRecordWorkDone_QuantityMatchesDeduction(t *testing.T) {
	svc, store := newTestService(cementOrder(1))

	report, err := svc.RecordWorkDone(context.Background(), draft(
		RawItem{"item_description": "Cement", "quantity": 0.99996},
	))
	require.NoError(t, err)

	assert.Equal(t, 1.0, report.DailyWorkDone[0].Quantity)
	assert.Equal(t, 0.0, store.exQuantity("WO-00001", 0))

	_, err = svc.RecordWorkDone(context.Background(), draft(
		RawItem{"item_description": "Cement", "quantity": "0.00004"},
	))
	require.NoError(t, err)
	assert.Equal(t, 0.0, store.exQuantity("WO-00001", 0))
}

func TestRecordWorkDone_ReportDateFormats(t *testing.T) {
	svc, _ := newTestService(cementOrder(10))

	d := draft()
	d.ReportDate = "2024-05-02"
	report, err := svc.RecordWorkDone(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), report.ReportDate)

	d.ReportDate = "2024-05-02T10:00:00+05:30"
	d.CreatedBy = "site-engineer"
	report, err = svc.RecordWorkDone(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 2, 4, 30, 0, 0, time.UTC), report.ReportDate)
	assert.Equal(t, "site-engineer", report.CreatedBy)
	assert.Equal(t, "WD-00002", report.WorkDoneID)

	d.ReportDate = "2024-05-02T10:00:00.987654321Z"
	report, err = svc.RecordWorkDone(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 2, 10, 0, 0, 987000000, time.UTC), report.ReportDate)
}

func TestGetReport_RoundTrip(t *testing.T) {
	svc, _ := newTestService(cementOrder(10))
	ctx := context.Background()

	created, err := svc.RecordWorkDone(ctx, draft(
		RawItem{"item_description": "Cement", "quantity": "2.5", "length": "2", "breadth": 3},
		RawItem{"item_description": "Shuttering", "dimensions": map[string]any{"length": 4.0, "height": "1.5"}, "remarks": "north wall"},
	))
	require.NoError(t, err)

	got, err := svc.GetReport(ctx, "T-1", created.WorkDoneID)
	require.NoError(t, err)

	ignoreStamps := cmpopts.IgnoreFields(storage.WorkDoneReport{}, "CreatedAt", "UpdatedAt")
	if diff := cmp.Diff(created, got, ignoreStamps); diff != "" {
		t.Errorf("report mismatch (-created +got):\n%s", diff)
	}

	_, err = svc.GetReport(ctx, "T-2", created.WorkDoneID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestListReports_OrderedDescending(t *testing.T) {
	svc, _ := newTestService(cementOrder(10))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.RecordWorkDone(ctx, draft(RawItem{"item_description": "Cement", "quantity": 1}))
		require.NoError(t, err)
	}

	reports, err := svc.ListReports(ctx, "T-1")
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, []string{"WD-00003", "WD-00002", "WD-00001"},
		[]string{reports[0].WorkDoneID, reports[1].WorkDoneID, reports[2].WorkDoneID})
	assert.Equal(t, 1, reports[0].TotalWorkDone)

	_, err = svc.ListReports(ctx, "")
	assert.True(t, errors.Is(err, validate.ErrValidation))
}

func TestRecordWorkDone_ConcurrentReportsNeverOverdraw(t *testing.T) {
	svc, store := newTestService(cementOrder(10))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordWorkDone(context.Background(), draft(RawItem{"item_description": "Cement", "quantity": 3}))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, storage.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 9, rejected)
	assert.Equal(t, 1.0, store.exQuantity("WO-00001", 0))
}

func TestReconcile(t *testing.T) {
	materials := []storage.Material{
		{MaterialName: "Cement", ExQuantity: 10},
		{MaterialName: "Sand", ExQuantity: 4},
		{MaterialName: "Cement", ExQuantity: 99},
	}

	deductions, err := Reconcile(materials, []storage.LineItem{
		{ItemDescription: "Sand", Quantity: 1.5},
		{ItemDescription: "Cement", Quantity: 4},
		{ItemDescription: "Sand", Quantity: 2.5},
		{ItemDescription: "Gravel", Quantity: 100},
		{ItemDescription: "Cement", Quantity: 0},
	})
	require.NoError(t, err)
	require.Len(t, deductions, 2)

	assert.Equal(t, 1, deductions[0].Position)
	assert.True(t, deductions[0].Quantity.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, 0, deductions[1].Position)
	assert.Equal(t, "Cement", deductions[1].MaterialName)

	deductions, err = Reconcile(nil, []storage.LineItem{{ItemDescription: "Cement", Quantity: 1}})
	require.NoError(t, err)
	assert.Empty(t, deductions)

	deductions, err = Reconcile(materials, []storage.LineItem{{ItemDescription: "Sand", Quantity: 0}})
	require.NoError(t, err)
	assert.Empty(t, deductions)
}
