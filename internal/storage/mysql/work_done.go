package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tender-backend/internal/storage"
)

// CommitWorkDone applies the material deductions and inserts the report in one transaction.
// Each deduction is a conditional decrement, so a concurrent report that drained the
// material first makes this one fail with InsufficientStockError and nothing is written.
func (s *Storage) CommitWorkDone(ctx context.Context, report *storage.WorkDoneReport, deductions []storage.MaterialDeduction) error {
	const op = "storage.mysql.CommitWorkDone"

	items, err := json.Marshal(nonNilItems(report.DailyWorkDone))
	if err != nil {
		return fmt.Errorf("%s: marshal line items: %w", op, err)
	}

	now := storeNow()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	var workOrderID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM work_orders WHERE request_id = ? FOR UPDATE`, report.WorkOrderID).
		Scan(&workOrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: work order %s: %w", op, report.WorkOrderID, storage.ErrNotFound)
		}
		return fmt.Errorf("%s: lock work order: %w", op, err)
	}

	if len(deductions) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			UPDATE work_order_materials
			SET ex_quantity = ex_quantity - CAST(? AS DECIMAL(18,4))
			WHERE work_order_id = ? AND position = ? AND ex_quantity >= CAST(? AS DECIMAL(18,4))`)
		if err != nil {
			return fmt.Errorf("%s: prepare deduction: %w", op, err)
		}
		defer stmt.Close()

		for _, d := range deductions {
			qty := d.Quantity.String()

			res, err := stmt.ExecContext(ctx, qty, workOrderID, d.Position, qty)
			if err != nil {
				return fmt.Errorf("%s: deduct %q: %w", op, d.MaterialName, err)
			}

			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("%s: deduct %q: %w", op, d.MaterialName, err)
			}
			if n == 0 {
				return s.stockConflict(ctx, tx, op, workOrderID, d)
			}
		}

		if _, err := tx.ExecContext(ctx, `UPDATE work_orders SET updated_at = ? WHERE id = ?`, now, workOrderID); err != nil {
			return fmt.Errorf("%s: touch work order: %w", op, err)
		}
	}

	reportDate := report.ReportDate.UTC().Truncate(time.Millisecond)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO work_done_reports
			(work_done_id, tender_id, work_order_id, report_date, status, created_by, total_work_done, daily_work_done, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.WorkDoneID, report.TenderID, report.WorkOrderID, reportDate, report.Status,
		report.CreatedBy, report.TotalWorkDone, string(items), now, now,
	)
	if err != nil {
		if isMySQLError(err, errDuplicateEntry) {
			return fmt.Errorf("%s: report %s: %w", op, report.WorkDoneID, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("%s: insert report: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	report.CreatedAt, report.UpdatedAt = now, now
	report.ReportDate = reportDate

	return nil
}

func (s *Storage) stockConflict(ctx context.Context, tx *sql.Tx, op string, workOrderID int64, d storage.MaterialDeduction) error {
	var available decimal.Decimal

	err := tx.QueryRowContext(ctx,
		`SELECT ex_quantity FROM work_order_materials WHERE work_order_id = ? AND position = ?`,
		workOrderID, d.Position,
	).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: material %q: %w", op, d.MaterialName, storage.ErrNotFound)
		}
		return fmt.Errorf("%s: read stock of %q: %w", op, d.MaterialName, err)
	}

	return fmt.Errorf("%s: %w", op, &storage.InsufficientStockError{
		Material:  d.MaterialName,
		Requested: d.Quantity,
		Available: available,
	})
}

// ListWorkDone returns the tender's reports without line items, highest workDoneId first.
func (s *Storage) ListWorkDone(ctx context.Context, tenderID string) ([]storage.WorkDoneSummary, error) {
	const op = "storage.mysql.ListWorkDone"

	rows, err := s.db.QueryContext(ctx, `
		SELECT work_done_id, tender_id, work_order_id, report_date, status, created_by, total_work_done, created_at, updated_at
		FROM work_done_reports
		WHERE tender_id = ?
		ORDER BY work_done_id DESC`, tenderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	reports := []storage.WorkDoneSummary{}
	for rows.Next() {
		var r storage.WorkDoneSummary
		err := rows.Scan(&r.WorkDoneID, &r.TenderID, &r.WorkOrderID, &r.ReportDate, &r.Status, &r.CreatedBy,
			&r.TotalWorkDone, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return reports, nil
}

func (s *Storage) GetWorkDone(ctx context.Context, tenderID, workDoneID string) (*storage.WorkDoneReport, error) {
	const op = "storage.mysql.GetWorkDone"

	var (
		r     storage.WorkDoneReport
		items string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT work_done_id, tender_id, work_order_id, report_date, status, created_by, total_work_done,
			daily_work_done, created_at, updated_at
		FROM work_done_reports
		WHERE tender_id = ? AND work_done_id = ?`, tenderID, workDoneID,
	).Scan(&r.WorkDoneID, &r.TenderID, &r.WorkOrderID, &r.ReportDate, &r.Status, &r.CreatedBy, &r.TotalWorkDone,
		&items, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: report %s of tender %s: %w", op, workDoneID, tenderID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := json.Unmarshal([]byte(items), &r.DailyWorkDone); err != nil {
		return nil, fmt.Errorf("%s: unmarshal line items: %w", op, err)
	}
	r.DailyWorkDone = nonNilItems(r.DailyWorkDone)

	return &r, nil
}

func nonNilItems(items []storage.LineItem) []storage.LineItem {
	if items == nil {
		return []storage.LineItem{}
	}
	return items
}
