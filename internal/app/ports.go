package app

import (
	"context"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"
)

// ListFilter carries the server-side filter hints for Repository.List.
// Implementations may ignore any field; callers re-apply every filter
// client-side, so the hints are purely an optimization.
type ListFilter struct {
	Status     domain.Status
	Priority   domain.Priority
	AssigneeID string
}

// Repository is the boundary to the backing task store. Get, Update,
// and Delete fail with ErrNotFound when no task has the given id;
// Delete is not idempotent. Create receives a fully populated task
// (caller-assigned provisional id and timestamps) and returns the
// authoritative echo.
type Repository interface {
	List(ctx context.Context, f ListFilter) ([]domain.Task, error)
	Get(ctx context.Context, id string) (domain.Task, error)
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	Update(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error)
	Delete(ctx context.Context, id string) error
}

// Directory is the synchronous, always-available user roster used to
// resolve assignee ids into embedded snapshots.
type Directory interface {
	UserByID(id string) (domain.User, bool)
	Users() []domain.User
}
