package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tender-backend/internal/storage"
)

func (s *Storage) CreateTender(ctx context.Context, t *storage.Tender) error {
	const op = "storage.mysql.CreateTender"

	now := storeNow()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tenders (tender_id, name, project_id, client, location, estimated_value, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TenderID, t.Name, t.ProjectID, t.Client, t.Location, t.EstimatedValue, t.Status, now, now,
	)
	if err != nil {
		if isMySQLError(err, errDuplicateEntry) {
			return fmt.Errorf("%s: tender %s: %w", op, t.TenderID, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	t.CreatedAt, t.UpdatedAt = now, now
	t.Documents = []storage.TenderDocument{}

	return nil
}

const tenderColumns = `tender_id, name, project_id, client, location, estimated_value, status, created_at, updated_at`

func scanTender(row rowScanner) (*storage.Tender, error) {
	var t storage.Tender

	err := row.Scan(&t.TenderID, &t.Name, &t.ProjectID, &t.Client, &t.Location, &t.EstimatedValue, &t.Status,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// GetTender loads the tender together with its documents, oldest upload first.
func (s *Storage) GetTender(ctx context.Context, tenderID string) (*storage.Tender, error) {
	const op = "storage.mysql.GetTender"

	t, err := scanTender(s.db.QueryRowContext(ctx, `SELECT `+tenderColumns+` FROM tenders WHERE tender_id = ?`, tenderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: tender %s: %w", op, tenderID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, name, bucket, object_key, content_type, size, uploaded_at
		FROM tender_documents
		WHERE tender_id = ?
		ORDER BY uploaded_at, document_id`, tenderID)
	if err != nil {
		return nil, fmt.Errorf("%s: documents: %w", op, err)
	}
	defer rows.Close()

	t.Documents = []storage.TenderDocument{}
	for rows.Next() {
		var d storage.TenderDocument
		if err := rows.Scan(&d.DocumentID, &d.Name, &d.Bucket, &d.Key, &d.ContentType, &d.Size, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("%s: scan document: %w", op, err)
		}
		t.Documents = append(t.Documents, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: documents rows: %w", op, err)
	}

	return t, nil
}

// ListTenders returns a page of tenders without their documents, newest first.
func (s *Storage) ListTenders(ctx context.Context, page storage.Page) ([]storage.Tender, int, error) {
	const op = "storage.mysql.ListTenders"

	where := ``
	var args []any
	if page.Search != "" {
		pattern := likePattern(page.Search)
		where = `WHERE tender_id LIKE ? OR name LIKE ? OR client LIKE ? OR location LIKE ?`
		args = append(args, pattern, pattern, pattern, pattern)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenders `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tenderColumns+` FROM tenders `+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, page.Limit, page.Skip)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: select: %w", op, err)
	}
	defer rows.Close()

	tenders := []storage.Tender{}
	for rows.Next() {
		t, err := scanTender(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: scan: %w", op, err)
		}
		tenders = append(tenders, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: rows: %w", op, err)
	}

	return tenders, total, nil
}

func (s *Storage) AddTenderDocument(ctx context.Context, tenderID string, doc storage.TenderDocument) error {
	const op = "storage.mysql.AddTenderDocument"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tender_documents (document_id, tender_id, name, bucket, object_key, content_type, size, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.DocumentID, tenderID, doc.Name, doc.Bucket, doc.Key, doc.ContentType, doc.Size, doc.UploadedAt.UTC(),
	)
	if err != nil {
		switch {
		case isMySQLError(err, errNoReferencedRow):
			return fmt.Errorf("%s: tender %s: %w", op, tenderID, storage.ErrNotFound)
		case isMySQLError(err, errDuplicateEntry):
			return fmt.Errorf("%s: document %s: %w", op, doc.DocumentID, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE tenders SET updated_at = ? WHERE tender_id = ?`, storeNow(), tenderID); err != nil {
		return fmt.Errorf("%s: touch tender: %w", op, err)
	}

	return nil
}

// RemoveTenderDocument deletes the document record and returns it so the caller can drop
// the stored object.
func (s *Storage) RemoveTenderDocument(ctx context.Context, tenderID, documentID string) (*storage.TenderDocument, error) {
	const op = "storage.mysql.RemoveTenderDocument"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	var d storage.TenderDocument
	err = tx.QueryRowContext(ctx, `
		SELECT document_id, name, bucket, object_key, content_type, size, uploaded_at
		FROM tender_documents
		WHERE tender_id = ? AND document_id = ?
		FOR UPDATE`, tenderID, documentID,
	).Scan(&d.DocumentID, &d.Name, &d.Bucket, &d.Key, &d.ContentType, &d.Size, &d.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: document %s of tender %s: %w", op, documentID, tenderID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: select: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tender_documents WHERE document_id = ?`, documentID); err != nil {
		return nil, fmt.Errorf("%s: delete: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE tenders SET updated_at = ? WHERE tender_id = ?`, storeNow(), tenderID); err != nil {
		return nil, fmt.Errorf("%s: touch tender: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return &d, nil
}
