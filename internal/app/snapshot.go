package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"
)

// SnapshotVersion identifies the export document schema.
const SnapshotVersion = "luftborn.snapshot.v1"

// Snapshot is the portable JSON document produced by export and
// consumed by import. Task order is significant: it is the canonical
// insertion order of the collection.
type Snapshot struct {
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	Users      []SnapshotUser `json:"users,omitempty"`
	Tasks      []SnapshotTask `json:"tasks"`
}

// SnapshotUser represents one roster entry in a snapshot.
type SnapshotUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Email  string `json:"email,omitempty"`
}

// SnapshotTask represents one persisted task in a snapshot.
type SnapshotTask struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      domain.Status   `json:"status"`
	Priority    domain.Priority `json:"priority"`
	DueDate     domain.Date     `json:"due_date"`
	Assignee    *SnapshotUser   `json:"assignee,omitempty"`
	Tags        []string        `json:"tags"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// ExportSnapshot captures the full task set and roster.
func ExportSnapshot(ctx context.Context, repo Repository, directory Directory, now time.Time) (Snapshot, error) {
	tasks, err := repo.List(ctx, ListFilter{})
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: now.UTC(),
		Tasks:      make([]SnapshotTask, 0, len(tasks)),
	}
	for _, task := range tasks {
		snap.Tasks = append(snap.Tasks, snapshotTaskFromDomain(task))
	}
	if directory != nil {
		users := directory.Users()
		snap.Users = make([]SnapshotUser, 0, len(users))
		for _, user := range users {
			snap.Users = append(snap.Users, SnapshotUser(user))
		}
		slices.SortFunc(snap.Users, func(a, b SnapshotUser) int {
			return strings.Compare(a.ID, b.ID)
		})
	}
	return snap, nil
}

// ImportSnapshot writes the snapshot's tasks through the repository in
// document order. Existing ids are updated in place, unknown ids are
// created. With replace set, tasks absent from the snapshot are
// deleted afterwards. Returns the number of tasks written.
func ImportSnapshot(ctx context.Context, repo Repository, snap Snapshot, replace bool) (int, error) {
	if err := snap.Validate(); err != nil {
		return 0, err
	}

	keep := map[string]struct{}{}
	written := 0
	for _, st := range snap.Tasks {
		task := st.toDomain()
		keep[task.ID] = struct{}{}
		if _, err := repo.Get(ctx, task.ID); err == nil {
			if _, err := repo.Update(ctx, task.ID, replacePatch(task)); err != nil {
				return written, err
			}
			written++
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return written, err
		}
		if _, err := repo.Create(ctx, task); err != nil {
			return written, err
		}
		written++
	}

	if replace {
		existing, err := repo.List(ctx, ListFilter{})
		if err != nil {
			return written, err
		}
		for _, task := range existing {
			if _, ok := keep[task.ID]; ok {
				continue
			}
			if err := repo.Delete(ctx, task.ID); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// Validate checks the document before any write happens.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}
	seen := map[string]struct{}{}
	for i, task := range s.Tasks {
		if strings.TrimSpace(task.ID) == "" {
			return fmt.Errorf("tasks[%d]: %w", i, domain.ErrInvalidID)
		}
		if _, ok := seen[task.ID]; ok {
			return fmt.Errorf("tasks[%d]: duplicate id %q", i, task.ID)
		}
		seen[task.ID] = struct{}{}
		if strings.TrimSpace(task.Title) == "" {
			return fmt.Errorf("tasks[%d]: %w", i, domain.ErrInvalidTitle)
		}
		if !task.Status.Valid() {
			return fmt.Errorf("tasks[%d]: %w: %q", i, domain.ErrInvalidStatus, task.Status)
		}
		if !task.Priority.Valid() {
			return fmt.Errorf("tasks[%d]: %w: %q", i, domain.ErrInvalidPriority, task.Priority)
		}
	}
	return nil
}

func snapshotTaskFromDomain(t domain.Task) SnapshotTask {
	st := SnapshotTask{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		Tags:        append([]string(nil), t.Tags...),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: copyTimePtr(t.CompletedAt),
	}
	if !t.Assignee.IsZero() {
		assignee := SnapshotUser(t.Assignee)
		st.Assignee = &assignee
	}
	return st
}

func (t SnapshotTask) toDomain() domain.Task {
	task := domain.Task{
		ID:          strings.TrimSpace(t.ID),
		Title:       strings.TrimSpace(t.Title),
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		Tags:        append([]string(nil), t.Tags...),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
		CompletedAt: copyTimePtr(t.CompletedAt),
	}
	if t.Assignee != nil {
		task.Assignee = domain.User(*t.Assignee)
	}
	return task
}

// replacePatch expresses a whole snapshot record as a patch so import
// can reuse the repository's update path.
func replacePatch(t domain.Task) domain.TaskPatch {
	return domain.TaskPatch{
		Title:            &t.Title,
		Description:      &t.Description,
		Status:           &t.Status,
		Priority:         &t.Priority,
		DueDate:          &t.DueDate,
		Assignee:         &t.Assignee,
		Tags:             &t.Tags,
		UpdatedAt:        &t.UpdatedAt,
		CompletedAt:      t.CompletedAt,
		ClearCompletedAt: t.CompletedAt == nil,
	}
}

func copyTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	out := in.UTC()
	return &out
}
