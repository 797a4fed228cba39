package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"tender-backend/internal/storage"
)

func (s *Storage) CreateWorkOrder(ctx context.Context, wo *storage.WorkOrder) error {
	const op = "storage.mysql.CreateWorkOrder"

	quotations, err := json.Marshal(nonNilQuotations(wo.VendorQuotations))
	if err != nil {
		return fmt.Errorf("%s: marshal quotations: %w", op, err)
	}

	now := storeNow()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO work_orders
			(request_id, project_id, status, selected_vendor, vendor_quotations, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		wo.RequestID, wo.ProjectID, wo.Status, wo.SelectedVendor, string(quotations), wo.CreatedBy, now, now,
	)
	if err != nil {
		if isMySQLError(err, errDuplicateEntry) {
			return fmt.Errorf("%s: work order %s: %w", op, wo.RequestID, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("%s: insert work order: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%s: last insert id: %w", op, err)
	}

	if len(wo.MaterialsRequired) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO work_order_materials (work_order_id, position, material_name, quantity, unit, ex_quantity)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("%s: prepare materials: %w", op, err)
		}
		defer stmt.Close()

		for i, m := range wo.MaterialsRequired {
			if _, err := stmt.ExecContext(ctx, id, i, m.MaterialName, m.Quantity, m.Unit, m.ExQuantity); err != nil {
				return fmt.Errorf("%s: insert material %q: %w", op, m.MaterialName, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	wo.CreatedAt, wo.UpdatedAt = now, now

	return nil
}

const workOrderColumns = `id, request_id, project_id, status, selected_vendor, vendor_quotations, created_by, created_at, updated_at`

func (s *Storage) GetWorkOrder(ctx context.Context, requestID string) (*storage.WorkOrder, error) {
	const op = "storage.mysql.GetWorkOrder"

	row := s.db.QueryRowContext(ctx, `SELECT `+workOrderColumns+` FROM work_orders WHERE request_id = ?`, requestID)

	id, wo, err := scanWorkOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: work order %s: %w", op, requestID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	materials, err := s.materials(ctx, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	wo.MaterialsRequired = nonNilMaterials(materials[id])

	return wo, nil
}

// ListWorkOrders returns one page of a project's work orders, newest first, and the
// number of work orders matching the filter.
func (s *Storage) ListWorkOrders(ctx context.Context, projectID string, page storage.Page) ([]storage.WorkOrder, int, error) {
	const op = "storage.mysql.ListWorkOrders"

	where := `WHERE wo.project_id = ?`
	args := []any{projectID}
	if page.Search != "" {
		pattern := likePattern(page.Search)
		where += ` AND (wo.request_id LIKE ? OR EXISTS (
			SELECT 1 FROM work_order_materials m WHERE m.work_order_id = wo.id AND m.material_name LIKE ?))`
		args = append(args, pattern, pattern)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM work_orders wo `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT wo.id, wo.request_id, wo.project_id, wo.status, wo.selected_vendor, wo.vendor_quotations,
			wo.created_by, wo.created_at, wo.updated_at
		FROM work_orders wo `+where+`
		ORDER BY wo.created_at DESC, wo.id DESC
		LIMIT ? OFFSET ?`,
		append(args, page.Limit, page.Skip)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: select: %w", op, err)
	}
	defer rows.Close()

	var (
		ids    []int64
		orders []storage.WorkOrder
	)
	for rows.Next() {
		id, wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
		orders = append(orders, *wo)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: rows: %w", op, err)
	}

	materials, err := s.materials(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	for i := range orders {
		orders[i].MaterialsRequired = nonNilMaterials(materials[ids[i]])
	}

	if orders == nil {
		orders = []storage.WorkOrder{}
	}

	return orders, total, nil
}

// AddVendorQuotation appends q to the quotations array and sets the work order status.
func (s *Storage) AddVendorQuotation(ctx context.Context, requestID string, q storage.VendorQuotation, status string) error {
	const op = "storage.mysql.AddVendorQuotation"

	raw, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("%s: marshal quotation: %w", op, err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE work_orders
		SET vendor_quotations = JSON_ARRAY_APPEND(COALESCE(vendor_quotations, JSON_ARRAY()), '$', CAST(? AS JSON)),
			status = ?, updated_at = ?
		WHERE request_id = ?`,
		string(raw), status, storeNow(), requestID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectRow(res, op, "work order "+requestID)
}

func (s *Storage) SetSelectedVendor(ctx context.Context, requestID, vendor, status string) error {
	const op = "storage.mysql.SetSelectedVendor"

	res, err := s.db.ExecContext(ctx,
		`UPDATE work_orders SET selected_vendor = ?, status = ?, updated_at = ? WHERE request_id = ?`,
		vendor, status, storeNow(), requestID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectRow(res, op, "work order "+requestID)
}

func (s *Storage) UpdateWorkOrderStatus(ctx context.Context, requestID, status string) error {
	const op = "storage.mysql.UpdateWorkOrderStatus"

	res, err := s.db.ExecContext(ctx,
		`UPDATE work_orders SET status = ?, updated_at = ? WHERE request_id = ?`,
		status, storeNow(), requestID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectRow(res, op, "work order "+requestID)
}

// DeleteWorkOrder removes the work order; its materials go with it through the cascade.
func (s *Storage) DeleteWorkOrder(ctx context.Context, requestID string) error {
	const op = "storage.mysql.DeleteWorkOrder"

	res, err := s.db.ExecContext(ctx, `DELETE FROM work_orders WHERE request_id = ?`, requestID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectRow(res, op, "work order "+requestID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkOrder(row rowScanner) (int64, *storage.WorkOrder, error) {
	var (
		id         int64
		wo         storage.WorkOrder
		quotations sql.NullString
	)

	err := row.Scan(&id, &wo.RequestID, &wo.ProjectID, &wo.Status, &wo.SelectedVendor, &quotations,
		&wo.CreatedBy, &wo.CreatedAt, &wo.UpdatedAt)
	if err != nil {
		return 0, nil, err
	}

	if quotations.Valid && quotations.String != "" {
		if err := json.Unmarshal([]byte(quotations.String), &wo.VendorQuotations); err != nil {
			return 0, nil, fmt.Errorf("unmarshal quotations of %s: %w", wo.RequestID, err)
		}
	}
	wo.VendorQuotations = nonNilQuotations(wo.VendorQuotations)

	return id, &wo, nil
}

// materials loads the materials of the given work orders keyed by work order id, each
// list in position order.
func (s *Storage) materials(ctx context.Context, ids []int64) (map[int64][]storage.Material, error) {
	out := make(map[int64][]storage.Material, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT work_order_id, material_name, quantity, unit, ex_quantity
		FROM work_order_materials
		WHERE work_order_id IN (`+placeholders(len(ids))+`)
		ORDER BY work_order_id, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("select materials: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id int64
			m  storage.Material
		)
		if err := rows.Scan(&id, &m.MaterialName, &m.Quantity, &m.Unit, &m.ExQuantity); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		out[id] = append(out[id], m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("materials rows: %w", err)
	}

	return out, nil
}

func expectRow(res sql.Result, op, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %s: %w", op, what, storage.ErrNotFound)
	}

	return nil
}

func nonNilMaterials(m []storage.Material) []storage.Material {
	if m == nil {
		return []storage.Material{}
	}
	return m
}

func nonNilQuotations(q []storage.VendorQuotation) []storage.VendorQuotation {
	if q == nil {
		return []storage.VendorQuotation{}
	}
	return q
}
