package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/app"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"
	_ "modernc.org/sqlite"
)

// modernc.org/sqlite registers itself under this driver name.
const driverName = "sqlite"

// Repository stores tasks in a local SQLite database. Assignee and tag
// values ride along as JSON columns so a task row round-trips whole.
type Repository struct {
	db *sql.DB
}

// Open creates or opens the database file at path, creating parent
// directories as needed, and applies the schema.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	return open(path)
}

// OpenInMemory backs the repository with a shared in-memory database.
func OpenInMemory() (*Repository, error) {
	return open("file::memory:?cache=shared")
}

func open(dsn string) (*Repository, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close releases the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// schema runs on every open; each statement is idempotent.
var schema = []string{
	`PRAGMA foreign_keys = ON;`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'todo',
		priority TEXT NOT NULL DEFAULT 'medium',
		due_date TEXT,
		assignee_id TEXT NOT NULL DEFAULT '',
		assignee_json TEXT NOT NULL DEFAULT '{}',
		tags_json TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		completed_at TEXT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks(priority);`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id);`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at ASC, id ASC);`,
}

func (r *Repository) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// taskColumns is the canonical column list shared by every SELECT.
const taskColumns = `id, title, description, status, priority, due_date, assignee_id, assignee_json, tags_json, created_at, updated_at, completed_at`

// List returns tasks in creation order. The filter hints narrow the scan
// server-side; callers re-apply every filter on the result anyway.
func (r *Repository) List(ctx context.Context, f app.ListFilter) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	where := []string{}
	args := []any{}
	if f.Status != "" {
		where = append(where, `status = ?`)
		args = append(args, string(f.Status))
	}
	if f.Priority != "" {
		where = append(where, `priority = ?`)
		args = append(args, string(f.Priority))
	}
	if f.AssigneeID != "" {
		where = append(where, `assignee_id = ?`)
		args = append(args, f.AssigneeID)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

// Get returns one task.
func (r *Repository) Get(ctx context.Context, id string) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// Create inserts the task and returns the stored row.
func (r *Repository) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	assigneeJSON, tagsJSON, err := encodeTask(t)
	if err != nil {
		return domain.Task{}, err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tasks(`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		t.Title,
		t.Description,
		string(t.Status),
		string(t.Priority),
		nullableDate(t.DueDate),
		t.Assignee.ID,
		assigneeJSON,
		tagsJSON,
		ts(t.CreatedAt),
		ts(t.UpdatedAt),
		nullableTS(t.CompletedAt),
	)
	if err != nil {
		return domain.Task{}, err
	}
	return r.Get(ctx, t.ID)
}

// Update applies the patch inside one transaction so a failed write
// leaves the stored row untouched.
func (r *Repository) Update(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	current, err := scanTask(row)
	if err != nil {
		return domain.Task{}, err
	}

	updated, err := current.ApplyPatch(patch)
	if err != nil {
		return domain.Task{}, err
	}

	assigneeJSON, tagsJSON, err := encodeTask(updated)
	if err != nil {
		return domain.Task{}, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, priority = ?, due_date = ?,
			assignee_id = ?, assignee_json = ?, tags_json = ?, updated_at = ?, completed_at = ?
		WHERE id = ?
	`,
		updated.Title,
		updated.Description,
		string(updated.Status),
		string(updated.Priority),
		nullableDate(updated.DueDate),
		updated.Assignee.ID,
		assigneeJSON,
		tagsJSON,
		ts(updated.UpdatedAt),
		nullableTS(updated.CompletedAt),
		id,
	)
	if err != nil {
		return domain.Task{}, err
	}
	err = translateNoRows(res)
	if err != nil {
		return domain.Task{}, err
	}
	err = tx.Commit()
	if err != nil {
		return domain.Task{}, err
	}
	return updated, nil
}

// Delete removes the task. Deleting an unknown id is an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// userRecord is the stored shape of the embedded assignee snapshot.
type userRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Email  string `json:"email,omitempty"`
}

// encodeTask renders the JSON columns for a task row.
func encodeTask(t domain.Task) (string, string, error) {
	assignee := userRecord{ID: t.Assignee.ID, Name: t.Assignee.Name, Avatar: t.Assignee.Avatar, Email: t.Assignee.Email}
	assigneeJSON, err := json.Marshal(assignee)
	if err != nil {
		return "", "", fmt.Errorf("encode assignee: %w", err)
	}
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return "", "", fmt.Errorf("encode tags: %w", err)
	}
	return string(assigneeJSON), string(tagsJSON), nil
}

// scanner represents scanner data used by this package.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask decodes one row into a Task, expanding the JSON columns.
func scanTask(s scanner) (domain.Task, error) {
	var (
		t            domain.Task
		status       string
		priority     string
		dueRaw       sql.NullString
		assigneeID   string
		assigneeRaw  string
		tagsRaw      string
		createdRaw   string
		updatedRaw   string
		completedRaw sql.NullString
	)
	if err := s.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&status,
		&priority,
		&dueRaw,
		&assigneeID,
		&assigneeRaw,
		&tagsRaw,
		&createdRaw,
		&updatedRaw,
		&completedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, app.ErrNotFound
		}
		return domain.Task{}, err
	}
	t.Status = domain.Status(status)
	t.Priority = domain.Priority(priority)
	t.DueDate = parseNullDate(dueRaw)
	if assigneeID != "" {
		if strings.TrimSpace(assigneeRaw) == "" {
			assigneeRaw = "{}"
		}
		var rec userRecord
		if err := json.Unmarshal([]byte(assigneeRaw), &rec); err != nil {
			return domain.Task{}, fmt.Errorf("decode assignee_json: %w", err)
		}
		t.Assignee = domain.User{ID: rec.ID, Name: rec.Name, Avatar: rec.Avatar, Email: rec.Email}
	}
	if strings.TrimSpace(tagsRaw) == "" {
		tagsRaw = "[]"
	}
	if err := json.Unmarshal([]byte(tagsRaw), &t.Tags); err != nil {
		return domain.Task{}, fmt.Errorf("decode tags_json: %w", err)
	}
	t.CreatedAt = parseTS(createdRaw)
	t.UpdatedAt = parseTS(updatedRaw)
	t.CompletedAt = parseNullTS(completedRaw)
	return t, nil
}

// translateNoRows maps a zero-row UPDATE or DELETE to ErrNotFound.
func translateNoRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return app.ErrNotFound
	}
	return nil
}

// Timestamps are stored as RFC 3339 UTC text.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return ts(*t)
}

// nullableDate stores calendar dates as YYYY-MM-DD text.
func nullableDate(d domain.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

// parseTS reads a stored timestamp, treating malformed text as zero.
func parseTS(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func parseNullTS(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	t := parseTS(v.String)
	return &t
}

// parseNullDate reads a stored YYYY-MM-DD date. NULL and malformed
// values come back as the zero Date.
func parseNullDate(v sql.NullString) domain.Date {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return domain.Date{}
	}
	d, err := domain.ParseDate(v.String)
	if err != nil {
		return domain.Date{}
	}
	return d
}
