// Package activity keeps an append-only log of project mutations in Postgres.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionImported = "imported"
)

// Entry is one logged mutation.
type Entry struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"proyecto_id"`
	Action    string    `json:"accion"`
	Actor     string    `json:"usuario"`
	Detail    string    `json:"detalle,omitempty"`
	At        time.Time `json:"fecha"`
}

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Store struct {
	db  DB
	now func() time.Time
}

func NewStore(db DB) *Store {
	return &Store{db: db, now: time.Now}
}

const schema = `
CREATE TABLE IF NOT EXISTS project_activity (
	id          UUID PRIMARY KEY,
	project_id  TEXT NOT NULL,
	action      TEXT NOT NULL,
	actor       TEXT NOT NULL DEFAULT '',
	detail      TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS project_activity_project_idx ON project_activity (project_id, created_at DESC);
`

// EnsureSchema creates the log table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure activity schema: %w", err)
	}
	return nil
}

// Record appends an entry, filling ID and timestamp when empty.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.At.IsZero() {
		e.At = s.now().UTC()
	}

	const q = `
INSERT INTO project_activity (id, project_id, action, actor, detail, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	if _, err := s.db.Exec(ctx, q, e.ID, e.ProjectID, e.Action, e.Actor, e.Detail, e.At); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// ListByProject returns the newest entries first.
func (s *Store) ListByProject(ctx context.Context, projectID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	const q = `
SELECT id, project_id, action, actor, detail, created_at
FROM project_activity
WHERE project_id = $1
ORDER BY created_at DESC
LIMIT $2;
`
	rows, err := s.db.Query(ctx, q, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0, 16)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Action, &e.Actor, &e.Detail, &e.At); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
