package mysql

import (
	"context"
	"fmt"
	"time"

	"tender-backend/internal/storage"
)

// UpsertAttendance writes a batch of attendance rows keyed by (tender, worker, date);
// existing rows are overwritten.
func (s *Storage) UpsertAttendance(ctx context.Context, records []storage.Attendance) error {
	const op = "storage.mysql.UpsertAttendance"

	if len(records) == 0 {
		return nil
	}

	now := storeNow()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attendance (tender_id, worker_id, work_date, status, hours_worked, remarks, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			hours_worked = VALUES(hours_worked),
			remarks = VALUES(remarks),
			updated_at = VALUES(updated_at)`)
	if err != nil {
		return fmt.Errorf("%s: prepare: %w", op, err)
	}
	defer stmt.Close()

	for _, a := range records {
		_, err := stmt.ExecContext(ctx, a.TenderID, a.WorkerID, a.Date.Format(time.DateOnly), a.Status, a.HoursWorked, a.Remarks, now)
		if err != nil {
			return fmt.Errorf("%s: worker %s on %s: %w", op, a.WorkerID, a.Date.Format(time.DateOnly), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	for i := range records {
		records[i].UpdatedAt = now
	}

	return nil
}

// ListAttendance returns the tender's attendance between from and to inclusive, ordered
// by date then worker.
func (s *Storage) ListAttendance(ctx context.Context, tenderID string, from, to time.Time) ([]storage.Attendance, error) {
	const op = "storage.mysql.ListAttendance"

	rows, err := s.db.QueryContext(ctx, `
		SELECT tender_id, worker_id, work_date, status, hours_worked, remarks, updated_at
		FROM attendance
		WHERE tender_id = ? AND work_date BETWEEN ? AND ?
		ORDER BY work_date, worker_id`,
		tenderID, from.Format(time.DateOnly), to.Format(time.DateOnly),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	records := []storage.Attendance{}
	for rows.Next() {
		var a storage.Attendance
		if err := rows.Scan(&a.TenderID, &a.WorkerID, &a.Date, &a.Status, &a.HoursWorked, &a.Remarks, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		records = append(records, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return records, nil
}
