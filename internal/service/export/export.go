// Package export renders work-done reports as xlsx workbooks.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"tender-backend/internal/storage"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	SheetWorkDone  = "Work Done"
	SheetMaterials = "Materials"
	SheetRegister  = "Register"
)

type Store interface {
	GetWorkDone(ctx context.Context, tenderID, workDoneID string) (*storage.WorkDoneReport, error)
	GetWorkOrder(ctx context.Context, requestID string) (*storage.WorkOrder, error)
	GetTender(ctx context.Context, tenderID string) (*storage.Tender, error)
	ListWorkDone(ctx context.Context, tenderID string) ([]storage.WorkDoneSummary, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// ReportWorkbook lays out one report: its line items, and the referenced work order's
// materials with what is left of them.
func (s *Service) ReportWorkbook(ctx context.Context, tenderID, workDoneID string) ([]byte, error) {
	const op = "service.export.ReportWorkbook"

	report, err := s.store.GetWorkDone(ctx, tenderID, workDoneID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	wo, err := s.store.GetWorkOrder(ctx, report.WorkOrderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetWorkDone); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	header, err := headerStyle(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	info := [][]any{
		{"Work done", report.WorkDoneID},
		{"Tender", report.TenderID},
		{"Work order", report.WorkOrderID},
		{"Report date", report.ReportDate.Format(time.DateOnly)},
		{"Status", report.Status},
		{"Created by", report.CreatedBy},
		{"Total items", report.TotalWorkDone},
	}
	for i, row := range info {
		if err := f.SetSheetRow(SheetWorkDone, cellName(1, i+1), &row); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	top := len(info) + 2
	columns := []any{"#", "Description", "Length", "Breadth", "Height", "Quantity", "Unit", "Contractor", "Remarks"}
	if err := writeTable(f, SheetWorkDone, top, columns, header, len(report.DailyWorkDone), func(i int) []any {
		it := report.DailyWorkDone[i]
		return []any{i + 1, it.ItemDescription, it.Dimensions.Length, it.Dimensions.Breadth, it.Dimensions.Height,
			it.Quantity, it.Unit, it.ContractorDetails, it.Remarks}
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_ = f.SetColWidth(SheetWorkDone, "B", "B", 32)

	if _, err := f.NewSheet(SheetMaterials); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	columns = []any{"Material", "Ordered", "Unit", "Remaining"}
	if err := writeTable(f, SheetMaterials, 1, columns, header, len(wo.MaterialsRequired), func(i int) []any {
		m := wo.MaterialsRequired[i]
		return []any{m.MaterialName, m.Quantity, m.Unit, m.ExQuantity}
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_ = f.SetColWidth(SheetMaterials, "A", "A", 28)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write: %w", op, err)
	}

	return buf.Bytes(), nil
}

// TenderRegister lists every report of a tender, one row each.
func (s *Service) TenderRegister(ctx context.Context, tenderID string) ([]byte, error) {
	const op = "service.export.TenderRegister"

	var (
		tender  *storage.Tender
		reports []storage.WorkDoneSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.store.GetTender(gctx, tenderID)
		if err != nil {
			return err
		}
		tender = t
		return nil
	})
	g.Go(func() error {
		r, err := s.store.ListWorkDone(gctx, tenderID)
		if err != nil {
			return err
		}
		reports = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetRegister); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	header, err := headerStyle(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	title := []any{tender.TenderID, tender.Name, tender.Client, tender.Location}
	if err := f.SetSheetRow(SheetRegister, "A1", &title); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	columns := []any{"Work done", "Work order", "Report date", "Status", "Created by", "Items"}
	if err := writeTable(f, SheetRegister, 3, columns, header, len(reports), func(i int) []any {
		r := reports[i]
		return []any{r.WorkDoneID, r.WorkOrderID, r.ReportDate.Format(time.DateOnly), r.Status, r.CreatedBy, r.TotalWorkDone}
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_ = f.SetColWidth(SheetRegister, "A", "F", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write: %w", op, err)
	}

	return buf.Bytes(), nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
}

// writeTable writes a styled header at row top and n data rows below it, then freezes
// the header.
func writeTable(f *excelize.File, sheet string, top int, columns []any, style, n int, row func(i int) []any) error {
	if err := f.SetSheetRow(sheet, cellName(1, top), &columns); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cellName(1, top), cellName(len(columns), top), style); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		values := row(i)
		if err := f.SetSheetRow(sheet, cellName(1, top+1+i), &values); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      top,
		TopLeftCell: cellName(1, top+1),
		ActivePane:  "bottomLeft",
	})
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
