package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"
)

// Service is the server-side counterpart of Store: the same create,
// update, and delete policies applied statelessly against the
// repository, one call per transport request. It keeps no task cache,
// so concurrent callers always see the repository's current truth.
type Service struct {
	repo      Repository
	directory Directory
	idGen     IDGenerator
	clock     Clock
}

// NewService constructs a new value for this package.
func NewService(repo Repository, directory Directory, idGen IDGenerator, clock Clock) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if directory == nil {
		directory = emptyDirectory{}
	}
	return &Service{
		repo:      repo,
		directory: directory,
		idGen:     idGen,
		clock:     clock,
	}
}

// List lists tasks in creation order, optionally narrowed by hints.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Task, error) {
	return s.repo.List(ctx, f)
}

// Get returns one task.
func (s *Service) Get(ctx context.Context, id string) (domain.Task, error) {
	return s.repo.Get(ctx, id)
}

// Create builds a task from in and persists it.
func (s *Service) Create(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	assignee, err := resolveAssignee(s.directory, in.AssigneeID)
	if err != nil {
		return domain.Task{}, err
	}
	task, err := domain.NewTask(domain.TaskDraft{
		ID:          s.idGen(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Assignee:    assignee,
		Tags:        in.Tags,
	}, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	return s.repo.Create(ctx, task)
}

// Update applies a sparse change set to the stored task.
func (s *Service) Update(ctx context.Context, id string, changes TaskChanges) (domain.Task, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	patch, err := changesToPatch(s.directory, current, changes, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	return s.repo.Update(ctx, id, patch)
}

// Move changes only the task's status. The completed-at policy rides
// along exactly as it does for any other status update.
func (s *Service) Move(ctx context.Context, id string, status domain.Status) (domain.Task, error) {
	if !status.Valid() {
		return domain.Task{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, string(status))
	}
	return s.Update(ctx, id, TaskChanges{Status: &status})
}

// Delete removes the task.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Users exposes the roster.
func (s *Service) Users() []domain.User {
	return s.directory.Users()
}

// Board lists tasks and partitions them into the three status columns
// under the given filter.
func (s *Service) Board(ctx context.Context, f domain.Filter) (BoardView, error) {
	tasks, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return BoardView{}, err
	}
	return ComputeBoard(tasks, f), nil
}

// Summary tallies the full task list.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	tasks, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return Summary{}, err
	}
	return Summarize(tasks, s.clock()), nil
}

// resolveAssignee maps a roster id onto its embedded snapshot; the
// empty id means unassigned.
func resolveAssignee(d Directory, id string) (domain.User, error) {
	if id == "" {
		return domain.User{}, nil
	}
	user, ok := d.UserByID(id)
	if !ok {
		return domain.User{}, fmt.Errorf("%w: %q", ErrUnknownAssignee, id)
	}
	return user, nil
}

// changesToPatch translates a sparse change set into a domain patch:
// assignee ids become snapshots, the update instant is stamped, and
// crossing the done boundary sets or clears the completion instant.
func changesToPatch(d Directory, current domain.Task, changes TaskChanges, now time.Time) (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Title:       changes.Title,
		Description: changes.Description,
		Status:      changes.Status,
		Priority:    changes.Priority,
		DueDate:     changes.DueDate,
		Tags:        changes.Tags,
	}
	if changes.AssigneeID != nil {
		if *changes.AssigneeID == "" {
			patch.Assignee = &domain.User{}
		} else {
			assignee, err := resolveAssignee(d, *changes.AssigneeID)
			if err != nil {
				return domain.TaskPatch{}, err
			}
			patch.Assignee = &assignee
		}
	}
	patch.UpdatedAt = &now
	if changes.Status != nil {
		switch {
		case *changes.Status == domain.StatusDone && current.Status != domain.StatusDone:
			patch.CompletedAt = &now
		case *changes.Status != domain.StatusDone && current.Status == domain.StatusDone:
			patch.ClearCompletedAt = true
		}
	}
	return patch, nil
}
