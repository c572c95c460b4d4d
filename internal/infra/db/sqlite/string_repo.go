// Package sqlite stores analyzed strings in a local SQLite file, for single-node
// deployments and development.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-sqlite3"

	domain "github.com/bryanwahyu/string-analyzer/internal/domain/analysis"
)

type StringRepository struct {
	db *sql.DB
}

func NewStringRepository(db *sql.DB) *StringRepository {
	return &StringRepository{db: db}
}

// Connect opens path (":memory:" allowed) and verifies the connection.
func Connect(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers anyway; one connection also keeps ":memory:"
	// pointing at a single database.
	db.SetMaxOpenConns(1)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// dsn appends the connection options to path, which may already carry its own
// query string (e.g. "file:strings.db?mode=rwc").
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_busy_timeout=5000&_foreign_keys=on"
}

// EnsureSchema creates the analyzed_strings table when missing
func (r *StringRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS analyzed_strings (
	id         TEXT      PRIMARY KEY,
	value      TEXT      NOT NULL UNIQUE,
	properties TEXT      NOT NULL,
	created_at TIMESTAMP NOT NULL
);`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

func (r *StringRepository) Insert(ctx context.Context, s *domain.AnalyzedString) error {
	const q = `
INSERT INTO analyzed_strings (id, value, properties, created_at)
VALUES (?, ?, ?, ?)`
	props, err := json.Marshal(s.Properties)
	if err != nil {
		return errors.Wrap(err, "encode properties")
	}
	_, err = r.db.ExecContext(ctx, q, string(s.ID), s.Value, string(props), s.CreatedAt.UTC())
	if isConstraintViolation(err) {
		return errors.Wrapf(domain.ErrConflict, "id %s", s.ID)
	}
	return err
}

func (r *StringRepository) FindByID(ctx context.Context, id domain.ID) (*domain.AnalyzedString, error) {
	const q = `SELECT id, value, properties, created_at FROM analyzed_strings WHERE id = ?`
	return r.queryOne(ctx, q, string(id))
}

func (r *StringRepository) FindByValue(ctx context.Context, value string) (*domain.AnalyzedString, error) {
	const q = `SELECT id, value, properties, created_at FROM analyzed_strings WHERE value = ?`
	return r.queryOne(ctx, q, value)
}

func (r *StringRepository) DeleteByID(ctx context.Context, id domain.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM analyzed_strings WHERE id = ?`, string(id))
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

// ListAll returns rows oldest first; rowid breaks ties between equal timestamps.
func (r *StringRepository) ListAll(ctx context.Context) ([]*domain.AnalyzedString, error) {
	const q = `
SELECT id, value, properties, created_at
FROM analyzed_strings
ORDER BY created_at ASC, rowid ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "querying strings")
	}
	defer rows.Close()

	out := []*domain.AnalyzedString{}
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *StringRepository) queryOne(ctx context.Context, q string, arg any) (*domain.AnalyzedString, error) {
	s, err := scan(r.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func scan(sc interface{ Scan(...any) error }) (*domain.AnalyzedString, error) {
	var s domain.AnalyzedString
	var props string
	if err := sc.Scan(&s.ID, &s.Value, &props, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(props), &s.Properties); err != nil {
		return nil, errors.Wrapf(err, "decode properties of %s", s.ID)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
