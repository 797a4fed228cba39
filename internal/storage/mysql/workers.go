package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tender-backend/internal/storage"
)

func (s *Storage) CreateWorker(ctx context.Context, w *storage.ContractWorker) error {
	const op = "storage.mysql.CreateWorker"

	now := storeNow()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contract_workers (worker_id, name, phone, trade, daily_wage, contractor, tender_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.WorkerID, w.Name, w.Phone, w.Trade, w.DailyWage, w.Contractor, w.TenderID, w.Active, now, now,
	)
	if err != nil {
		if isMySQLError(err, errDuplicateEntry) {
			return fmt.Errorf("%s: worker %s: %w", op, w.WorkerID, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	w.CreatedAt, w.UpdatedAt = now, now

	return nil
}

const workerColumns = `worker_id, name, phone, trade, daily_wage, contractor, tender_id, is_active, created_at, updated_at`

func scanWorker(row rowScanner) (*storage.ContractWorker, error) {
	var w storage.ContractWorker

	err := row.Scan(&w.WorkerID, &w.Name, &w.Phone, &w.Trade, &w.DailyWage, &w.Contractor, &w.TenderID, &w.Active,
		&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &w, nil
}

func (s *Storage) GetWorker(ctx context.Context, workerID string) (*storage.ContractWorker, error) {
	const op = "storage.mysql.GetWorker"

	w, err := scanWorker(s.db.QueryRowContext(ctx, `SELECT `+workerColumns+` FROM contract_workers WHERE worker_id = ?`, workerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: worker %s: %w", op, workerID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return w, nil
}

func (s *Storage) ListWorkers(ctx context.Context, page storage.Page) ([]storage.ContractWorker, int, error) {
	const op = "storage.mysql.ListWorkers"

	where := ``
	var args []any
	if page.Search != "" {
		pattern := likePattern(page.Search)
		where = `WHERE worker_id LIKE ? OR name LIKE ? OR trade LIKE ? OR contractor LIKE ?`
		args = append(args, pattern, pattern, pattern, pattern)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contract_workers `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+workerColumns+` FROM contract_workers `+where+` ORDER BY worker_id LIMIT ? OFFSET ?`,
		append(args, page.Limit, page.Skip)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: select: %w", op, err)
	}
	defer rows.Close()

	workers := []storage.ContractWorker{}
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: scan: %w", op, err)
		}
		workers = append(workers, *w)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: rows: %w", op, err)
	}

	return workers, total, nil
}

// UpdateWorker overwrites the mutable fields of the worker identified by w.WorkerID.
func (s *Storage) UpdateWorker(ctx context.Context, w *storage.ContractWorker) error {
	const op = "storage.mysql.UpdateWorker"

	now := storeNow()

	res, err := s.db.ExecContext(ctx, `
		UPDATE contract_workers
		SET name = ?, phone = ?, trade = ?, daily_wage = ?, contractor = ?, tender_id = ?, is_active = ?, updated_at = ?
		WHERE worker_id = ?`,
		w.Name, w.Phone, w.Trade, w.DailyWage, w.Contractor, w.TenderID, w.Active, now, w.WorkerID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := expectRow(res, op, "worker "+w.WorkerID); err != nil {
		return err
	}

	w.UpdatedAt = now

	return nil
}

func (s *Storage) DeleteWorker(ctx context.Context, workerID string) error {
	const op = "storage.mysql.DeleteWorker"

	res, err := s.db.ExecContext(ctx, `DELETE FROM contract_workers WHERE worker_id = ?`, workerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectRow(res, op, "worker "+workerID)
}
