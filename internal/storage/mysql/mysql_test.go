package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-backend/internal/storage"
)

// Integration tests run only when TENDER_TEST_MYSQL_DSN points at a disposable database,
// e.g. root:@tcp(localhost:3306)/tender_test?parseTime=true&multiStatements=true&clientFoundRows=true&loc=UTC
var testStorage *Storage

func TestMain(m *testing.M) {
	dsn := os.Getenv("TENDER_TEST_MYSQL_DSN")
	if dsn == "" {
		os.Exit(m.Run())
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		panic(fmt.Errorf("open test database: %w", err))
	}

	if err := db.Ping(); err != nil {
		panic(fmt.Errorf("ping test database: %w", err))
	}

	testStorage = NewWithDB(db)
	if _, err := testStorage.Migrate(); err != nil {
		panic(err)
	}

	code := m.Run()

	_ = db.Close()
	os.Exit(code)
}

func requireDB(t *testing.T) *Storage {
	t.Helper()
	if testStorage == nil {
		t.Skip("TENDER_TEST_MYSQL_DSN is not set")
	}
	return testStorage
}

func uniq(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func createTestWorkOrder(t *testing.T, s *Storage, materials ...storage.Material) *storage.WorkOrder {
	t.Helper()

	wo := &storage.WorkOrder{
		RequestID:         uniq("WO"),
		ProjectID:         "P-1",
		MaterialsRequired: materials,
		Status:            "Request Raised",
		CreatedBy:         "tests",
	}
	require.NoError(t, s.CreateWorkOrder(context.Background(), wo))

	return wo
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%cement%`, likePattern("cement"))
	assert.Equal(t, `%50\%\_off\\%`, likePattern(`50%_off\`))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?,?,?", placeholders(3))
}

func TestNextCode(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()
	name := uniq("Type")

	_, err := s.NextCode(ctx, name)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, s.RegisterType(ctx, name, "TS"))
	require.NoError(t, s.RegisterType(ctx, name, "XX"))

	first, err := s.NextCode(ctx, name)
	require.NoError(t, err)
	second, err := s.NextCode(ctx, name)
	require.NoError(t, err)

	assert.Equal(t, "TS-00001", first)
	assert.Equal(t, "TS-00002", second)
}

func TestWorkOrderRoundTrip(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	wo := createTestWorkOrder(t, s,
		storage.Material{MaterialName: "Cement", Quantity: 100, Unit: "Bags", ExQuantity: 100},
		storage.Material{MaterialName: "Sand", Quantity: 12.5, Unit: "m3", ExQuantity: 12.5},
	)

	got, err := s.GetWorkOrder(ctx, wo.RequestID)
	require.NoError(t, err)
	require.Len(t, got.MaterialsRequired, 2)
	assert.Equal(t, "Cement", got.MaterialsRequired[0].MaterialName)
	assert.Equal(t, 12.5, got.MaterialsRequired[1].ExQuantity)
	assert.Empty(t, got.VendorQuotations)

	q := storage.VendorQuotation{VendorName: "Acme", Amount: 1500, SubmittedAt: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, s.AddVendorQuotation(ctx, wo.RequestID, q, "Quotation Received"))
	require.NoError(t, s.SetSelectedVendor(ctx, wo.RequestID, "Acme", "Vendor Selected"))

	got, err = s.GetWorkOrder(ctx, wo.RequestID)
	require.NoError(t, err)
	require.Len(t, got.VendorQuotations, 1)
	assert.Equal(t, "Acme", got.VendorQuotations[0].VendorName)
	assert.Equal(t, "Vendor Selected", got.Status)

	require.NoError(t, s.DeleteWorkOrder(ctx, wo.RequestID))
	_, err = s.GetWorkOrder(ctx, wo.RequestID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestCommitWorkDone(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	wo := createTestWorkOrder(t, s, storage.Material{MaterialName: "Cement", Quantity: 0.3, Unit: "t", ExQuantity: 0.3})

	report := &storage.WorkDoneReport{
		WorkDoneID:    uniq("WD"),
		TenderID:      uniq("T"),
		WorkOrderID:   wo.RequestID,
		ReportDate:    time.Date(2024, 5, 1, 9, 30, 0, 123456789, time.UTC),
		Status:        "Submitted",
		CreatedBy:     "tests",
		DailyWorkDone: []storage.LineItem{{ItemDescription: "Cement", Quantity: 0.1, Unit: "t", ContractorDetails: "NMR"}},
		TotalWorkDone: 1,
	}
	deductions := []storage.MaterialDeduction{{Position: 0, MaterialName: "Cement", Quantity: decimal.RequireFromString("0.1")}}
	require.NoError(t, s.CommitWorkDone(ctx, report, deductions))
	assert.False(t, report.CreatedAt.IsZero())

	second := *report
	second.WorkDoneID = uniq("WD")
	require.NoError(t, s.CommitWorkDone(ctx, &second,
		[]storage.MaterialDeduction{{Position: 0, MaterialName: "Cement", Quantity: decimal.RequireFromString("0.2")}}))

	got, err := s.GetWorkOrder(ctx, wo.RequestID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.MaterialsRequired[0].ExQuantity)

	stored, err := s.GetWorkDone(ctx, report.TenderID, report.WorkDoneID)
	require.NoError(t, err)
	assert.Equal(t, report.DailyWorkDone, stored.DailyWorkDone)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 30, 0, 123000000, time.UTC), report.ReportDate)
	assert.True(t, report.ReportDate.Equal(stored.ReportDate))

	list, err := s.ListWorkDone(ctx, report.TenderID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Greater(t, list[0].WorkDoneID, list[1].WorkDoneID)
}

func TestCommitWorkDone_InsufficientStockRollsBack(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	wo := createTestWorkOrder(t, s,
		storage.Material{MaterialName: "Cement", Quantity: 10, Unit: "Bags", ExQuantity: 10},
		storage.Material{MaterialName: "Sand", Quantity: 1, Unit: "m3", ExQuantity: 1},
	)

	report := &storage.WorkDoneReport{
		WorkDoneID:  uniq("WD"),
		TenderID:    uniq("T"),
		WorkOrderID: wo.RequestID,
		ReportDate:  time.Now().UTC(),
		Status:      "Submitted",
		CreatedBy:   "tests",
	}
	err := s.CommitWorkDone(ctx, report, []storage.MaterialDeduction{
		{Position: 0, MaterialName: "Cement", Quantity: decimal.NewFromInt(4)},
		{Position: 1, MaterialName: "Sand", Quantity: decimal.NewFromInt(2)},
	})
	require.Error(t, err)

	var stockErr *storage.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Sand", stockErr.Material)
	assert.True(t, stockErr.Available.Equal(decimal.NewFromInt(1)))

	got, err := s.GetWorkOrder(ctx, wo.RequestID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.MaterialsRequired[0].ExQuantity)

	_, err = s.GetWorkDone(ctx, report.TenderID, report.WorkDoneID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestCommitWorkDone_Concurrent(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	wo := createTestWorkOrder(t, s, storage.Material{MaterialName: "Steel", Quantity: 10, Unit: "t", ExQuantity: 10})
	tenderID := uniq("T")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			report := &storage.WorkDoneReport{
				WorkDoneID:  fmt.Sprintf("%s-%d", uniq("WD"), i),
				TenderID:    tenderID,
				WorkOrderID: wo.RequestID,
				ReportDate:  time.Now().UTC(),
				Status:      "Submitted",
				CreatedBy:   "tests",
			}
			err := s.CommitWorkDone(ctx, report,
				[]storage.MaterialDeduction{{Position: 0, MaterialName: "Steel", Quantity: decimal.NewFromInt(3)}})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, storage.ErrInsufficientStock), err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)

	got, err := s.GetWorkOrder(ctx, wo.RequestID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.MaterialsRequired[0].ExQuantity)
}

func TestTenderDocuments(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	tender := &storage.Tender{TenderID: uniq("TND"), Name: "Bridge", Status: "Open"}
	require.NoError(t, s.CreateTender(ctx, tender))
	assert.True(t, errors.Is(s.CreateTender(ctx, tender), storage.ErrAlreadyExists))

	doc := storage.TenderDocument{
		DocumentID:  uniq("doc"),
		Name:        "boq.pdf",
		Bucket:      "tender-documents",
		Key:         "tenders/x/1-boq.pdf",
		ContentType: "application/pdf",
		Size:        42,
		UploadedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, s.AddTenderDocument(ctx, tender.TenderID, doc))

	err := s.AddTenderDocument(ctx, uniq("missing"), storage.TenderDocument{DocumentID: uniq("doc"), UploadedAt: time.Now()})
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	got, err := s.GetTender(ctx, tender.TenderID)
	require.NoError(t, err)
	require.Len(t, got.Documents, 1)
	assert.Equal(t, doc.Key, got.Documents[0].Key)

	removed, err := s.RemoveTenderDocument(ctx, tender.TenderID, doc.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, doc.Key, removed.Key)

	_, err = s.RemoveTenderDocument(ctx, tender.TenderID, doc.DocumentID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestAttendanceUpsert(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	tenderID := uniq("T")
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.UpsertAttendance(ctx, []storage.Attendance{
		{TenderID: tenderID, WorkerID: "CW-1", Date: day, Status: "Present", HoursWorked: 8},
		{TenderID: tenderID, WorkerID: "CW-2", Date: day, Status: "Absent"},
	}))
	require.NoError(t, s.UpsertAttendance(ctx, []storage.Attendance{
		{TenderID: tenderID, WorkerID: "CW-2", Date: day, Status: "HalfDay", HoursWorked: 4},
	}))

	records, err := s.ListAttendance(ctx, tenderID, day, day)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "HalfDay", records[1].Status)
	assert.Equal(t, 4.0, records[1].HoursWorked)
}
