package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tender-backend/internal/idcode"
	"tender-backend/internal/storage"
)

// RegisterType keeps the first prefix registered for name; repeated calls are no-ops.
func (s *Storage) RegisterType(ctx context.Context, name, prefix string) error {
	const op = "storage.mysql.RegisterType"

	stmt := `INSERT INTO id_codes (name, prefix, seq) VALUES (?, ?, 0) ON DUPLICATE KEY UPDATE name = name`

	if _, err := s.db.ExecContext(ctx, stmt, name, prefix); err != nil {
		return fmt.Errorf("%s: register %s: %w", op, name, err)
	}

	return nil
}

// NextCode bumps the counter with LAST_INSERT_ID(expr), so the increment and the read
// happen in one statement on one connection.
func (s *Storage) NextCode(ctx context.Context, name string) (string, error) {
	const op = "storage.mysql.NextCode"

	res, err := s.db.ExecContext(ctx, `UPDATE id_codes SET seq = LAST_INSERT_ID(seq + 1) WHERE name = ?`, name)
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", op, name, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", op, name, err)
	}
	if n == 0 {
		return "", fmt.Errorf("%s: type %q is not registered: %w", op, name, storage.ErrNotFound)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", op, name, err)
	}

	var prefix string
	err = s.db.QueryRowContext(ctx, `SELECT prefix FROM id_codes WHERE name = ?`, name).Scan(&prefix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: type %q is not registered: %w", op, name, storage.ErrNotFound)
		}
		return "", fmt.Errorf("%s: prefix %s: %w", op, name, err)
	}

	return idcode.Format(prefix, seq), nil
}

func (s *Storage) ListIDCodes(ctx context.Context) ([]storage.IDCode, error) {
	const op = "storage.mysql.ListIDCodes"

	rows, err := s.db.QueryContext(ctx, `SELECT name, prefix, seq FROM id_codes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	codes := []storage.IDCode{}
	for rows.Next() {
		var c storage.IDCode
		if err := rows.Scan(&c.Name, &c.Prefix, &c.Seq); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		codes = append(codes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return codes, nil
}
