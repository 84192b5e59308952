package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/criyle/go-static-judge/submission"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS submissions (
	id           TEXT PRIMARY KEY,
	task_group   TEXT NOT NULL,
	task_id      INTEGER NOT NULL,
	source       TEXT NOT NULL,
	status       TEXT NOT NULL,
	output       TEXT NOT NULL DEFAULT '',
	tests_passed INTEGER NOT NULL DEFAULT 0,
	tests_total  INTEGER NOT NULL DEFAULT 0,
	submitted_at INTEGER NOT NULL,
	evaluated_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_submissions_task ON submissions(task_group, task_id);
`

const sqliteUpsert = `
INSERT INTO submissions (id, task_group, task_id, source, status, output, tests_passed, tests_total, submitted_at, evaluated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	status = excluded.status,
	output = excluded.output,
	tests_passed = excluded.tests_passed,
	tests_total = excluded.tests_total,
	evaluated_at = excluded.evaluated_at`

const sqliteSelect = `
SELECT id, task_group, task_id, source, status, output, tests_passed, tests_total, submitted_at, evaluated_at
FROM submissions WHERE id = ?`

var _ Store = &sqliteStore{}

type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) a SQLite backed submission store
func NewSQLiteStore(ctx context.Context, dsn string) (Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Save(ctx context.Context, sub *submission.Submission) error {
	assignID(sub)
	// times are stored as unix nanoseconds so that they sort numerically
	var evaluatedAt sql.NullInt64
	if sub.EvaluatedAt != nil {
		evaluatedAt = sql.NullInt64{Int64: sub.EvaluatedAt.UnixNano(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, sqliteUpsert,
		sub.ID, sub.TaskGroup, sub.TaskID, sub.Source, sub.Status.String(), sub.Output,
		sub.TestsPassed, sub.TestsTotal, sub.SubmittedAt.UnixNano(), evaluatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: save %s: %w", sub.ID, err)
	}
	return nil
}

func (s *sqliteStore) FindByID(ctx context.Context, id string) (*submission.Submission, error) {
	var (
		sub         submission.Submission
		status      string
		submittedAt int64
		evaluatedAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, sqliteSelect, id).Scan(
		&sub.ID, &sub.TaskGroup, &sub.TaskID, &sub.Source, &status, &sub.Output,
		&sub.TestsPassed, &sub.TestsTotal, &submittedAt, &evaluatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, submission.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find %s: %w", id, err)
	}

	if sub.Status, err = submission.ParseStatus(status); err != nil {
		return nil, err
	}
	sub.SubmittedAt = time.Unix(0, submittedAt).UTC()
	if evaluatedAt.Valid {
		t := time.Unix(0, evaluatedAt.Int64).UTC()
		sub.EvaluatedAt = &t
	}
	return &sub, nil
}

func (s *sqliteStore) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *sqliteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM submissions ORDER BY submitted_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
