package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/lib/pq"

	domain "github.com/bryanwahyu/string-analyzer/internal/domain/analysis"
)

// unique_violation
const pqUniqueViolation = "23505"

type StringRepository struct{ db *sql.DB }

func NewStringRepository(db *sql.DB) *StringRepository { return &StringRepository{db: db} }

// EnsureSchema creates the analyzed_strings table when missing
func (r *StringRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS analyzed_strings (
    id         VARCHAR(64) PRIMARY KEY,
    value      TEXT        NOT NULL UNIQUE,
    properties JSONB       NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Insert new record; uniqueness of id/value is enforced by the table constraints
func (r *StringRepository) Insert(ctx context.Context, s *domain.AnalyzedString) error {
	const q = `
INSERT INTO analyzed_strings (id, value, properties, created_at)
VALUES ($1,$2,$3,$4);`
	props, err := json.Marshal(s.Properties)
	if err != nil {
		return errors.Wrap(err, "encode properties")
	}
	_, err = r.db.ExecContext(ctx, q, string(s.ID), s.Value, props, s.CreatedAt)
	if isUniqueViolation(err) {
		return errors.Wrapf(domain.ErrConflict, "id %s", s.ID)
	}
	return err
}

// FindByID returns nil when no row matches
func (r *StringRepository) FindByID(ctx context.Context, id domain.ID) (*domain.AnalyzedString, error) {
	const q = `
SELECT id, value, properties, created_at
FROM analyzed_strings
WHERE id=$1
LIMIT 1;`
	return scanOne(r.db.QueryRowContext(ctx, q, string(id)))
}

// FindByValue returns nil when no row matches
func (r *StringRepository) FindByValue(ctx context.Context, value string) (*domain.AnalyzedString, error) {
	const q = `
SELECT id, value, properties, created_at
FROM analyzed_strings
WHERE value=$1
LIMIT 1;`
	return scanOne(r.db.QueryRowContext(ctx, q, value))
}

func (r *StringRepository) DeleteByID(ctx context.Context, id domain.ID) error {
	const q = `DELETE FROM analyzed_strings WHERE id=$1;`
	res, err := r.db.ExecContext(ctx, q, string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListAll full scan, oldest first
func (r *StringRepository) ListAll(ctx context.Context) ([]*domain.AnalyzedString, error) {
	const q = `
SELECT id, value, properties, created_at
FROM analyzed_strings
ORDER BY created_at ASC, id ASC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "querying strings")
	}
	defer rows.Close()

	out := []*domain.AnalyzedString{}
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning row")
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row *sql.Row) (*domain.AnalyzedString, error) {
	s, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func scanRow(sc scanner) (*domain.AnalyzedString, error) {
	var s domain.AnalyzedString
	var props []byte
	if err := sc.Scan(&s.ID, &s.Value, &props, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(props, &s.Properties); err != nil {
		return nil, errors.Wrapf(err, "decode properties of %s", s.ID)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
