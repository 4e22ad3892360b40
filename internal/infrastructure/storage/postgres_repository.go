package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NoticeScanner/internal/domain"
	"NoticeScanner/internal/ports"
)

const uniqueViolationCode = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists captured notices into Postgres. Every method
// runs as its own scoped interaction; no session outlives a single call.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.NoticeRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Ping verifies store connectivity. Callers treat a failure at startup as
// process-fatal: there is no degraded mode without storage.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return &domain.StorageError{Op: "ping", Err: err}
	}
	return nil
}

// EnsureSchema provisions the post table. One-time setup, not part of the
// recurring pipeline. The unique constraint on (post_id, category) is what
// turns the dedup race between overlapping cycles into a rejected insert.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS post (
		id SERIAL PRIMARY KEY,
		post_id TEXT NOT NULL,
		title TEXT,
		department TEXT,
		author TEXT,
		text TEXT,
		date TIMESTAMPTZ,
		find_at TIMESTAMPTZ,
		url TEXT,
		category TEXT NOT NULL,
		important BOOLEAN DEFAULT FALSE,
		UNIQUE (post_id, category)
	)`

	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return &domain.StorageError{Op: "ensure schema", Err: err}
	}
	return nil
}

// Exists reports whether a notice with this (post_id, category) pair is
// already stored. An independent read with no locking.
func (r *PostgresRepository) Exists(ctx context.Context, postID, category string) (bool, error) {
	query, args, err := psql.
		Select("1").
		From("post").
		Where(sq.Eq{"post_id": postID, "category": category}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, &domain.StorageError{Op: "build exists query", Err: err}
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &domain.StorageError{Op: "exists", Err: err}
	}
	return true, nil
}

// Insert stores exactly one new row mapped from the record. No upsert and no
// existence check; a unique-constraint rejection comes back as a StorageError
// wrapping domain.ErrDuplicate.
func (r *PostgresRepository) Insert(ctx context.Context, record domain.NoticeRecord) error {
	query, args, err := psql.
		Insert("post").
		Columns("post_id", "title", "department", "author", "text",
			"date", "find_at", "url", "category", "important").
		Values(record.PostID, record.Title, record.Department, record.Author, record.Text,
			record.Date, record.FindAt, record.URL, record.Category, record.Important).
		ToSql()
	if err != nil {
		return &domain.StorageError{Op: "build insert query", Err: err}
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return &domain.StorageError{Op: "insert", Err: classify(err)}
	}
	return nil
}

// classify maps driver-level unique violations onto domain.ErrDuplicate so
// callers can tell a lost race from a real storage fault.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
	}
	return err
}
