package mysql

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/cockroachdb/errors"

	domain "github.com/bryanwahyu/string-analyzer/internal/domain/analysis"
)

type StringRepository struct {
	db *sql.DB
}

func NewStringRepository(db *sql.DB) *StringRepository {
	return &StringRepository{db: db}
}

// EnsureSchema creates the analyzed_strings table when missing.
//
// MySQL cannot put a UNIQUE key on a TEXT column without a prefix, so value
// only gets a lookup index. Equal values always hash to the same id, so the
// primary key already rejects a duplicate value.
func (r *StringRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS analyzed_strings (
  id         CHAR(64)     NOT NULL,
  value      TEXT         NOT NULL,
  properties JSON         NOT NULL,
  created_at DATETIME(6)  NOT NULL,
  PRIMARY KEY (id),
  INDEX idx_analyzed_strings_value (value(255)),
  INDEX idx_analyzed_strings_created (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin;`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Insert new record, no upsert: a duplicate key is reported as ErrConflict
func (r *StringRepository) Insert(ctx context.Context, s *domain.AnalyzedString) error {
	const q = `
INSERT INTO analyzed_strings
  (id, value, properties, created_at)
VALUES (?,?,?,?);
`
	props, err := json.Marshal(s.Properties)
	if err != nil {
		return errors.Wrap(err, "encode properties")
	}
	_, err = r.db.ExecContext(ctx, q, string(s.ID), s.Value, props, s.CreatedAt)
	if isDuplicateEntry(err) {
		return errors.Wrapf(domain.ErrConflict, "id %s", s.ID)
	}
	return err
}

// FindByID returns nil when no row matches
func (r *StringRepository) FindByID(ctx context.Context, id domain.ID) (*domain.AnalyzedString, error) {
	const q = `
SELECT id, value, properties, created_at
FROM analyzed_strings
WHERE id=? LIMIT 1;
`
	return r.queryOne(ctx, q, string(id))
}

// FindByValue returns nil when no row matches
func (r *StringRepository) FindByValue(ctx context.Context, value string) (*domain.AnalyzedString, error) {
	const q = `
SELECT id, value, properties, created_at
FROM analyzed_strings
WHERE value=? LIMIT 1;
`
	return r.queryOne(ctx, q, value)
}

func (r *StringRepository) DeleteByID(ctx context.Context, id domain.ID) error {
	const q = `DELETE FROM analyzed_strings WHERE id=?;`
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
ORDER BY created_at ASC, id ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "querying strings")
	}
	defer rows.Close()

	out := []*domain.AnalyzedString{}
	for rows.Next() {
		var s domain.AnalyzedString
		var props []byte
		if err := rows.Scan(&s.ID, &s.Value, &props, &s.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning row")
		}
		if err := json.Unmarshal(props, &s.Properties); err != nil {
			return nil, errors.Wrapf(err, "decode properties of %s", s.ID)
		}
		s.CreatedAt = s.CreatedAt.UTC()
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *StringRepository) queryOne(ctx context.Context, q string, arg any) (*domain.AnalyzedString, error) {
	var s domain.AnalyzedString
	var props []byte
	err := r.db.QueryRowContext(ctx, q, arg).Scan(&s.ID, &s.Value, &props, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(props, &s.Properties); err != nil {
		return nil, errors.Wrapf(err, "decode properties of %s", s.ID)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}
