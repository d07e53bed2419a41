package app

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"
)

// IDGenerator returns unique identifiers for new tasks.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// CreateTaskInput carries the caller-supplied fields for a new task.
// AssigneeID is resolved against the roster into an embedded snapshot.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.Status
	Priority    domain.Priority
	DueDate     domain.Date
	AssigneeID  string
	Tags        []string
}

// TaskChanges describes requested edits to one task. Nil fields are
// left untouched. AssigneeID resolution and the completed-at policy
// are applied by the store before anything reaches the repository.
type TaskChanges struct {
	Title       *string
	Description *string
	Status      *domain.Status
	Priority    *domain.Priority
	DueDate     *domain.Date
	AssigneeID  *string
	Tags        *[]string
}

// Store owns the canonical in-memory task sequence. Every mutation
// goes through the Repository and is applied locally only on success;
// a failed call records its error and leaves the sequence exactly as
// it was. Only the store writes the sequence, so every accessor hands
// out copies.
//
// Two concurrent updates against the same id are resolved by response
// arrival order. That is an accepted limitation of the data model (no
// version field), not something the store papers over.
type Store struct {
	repo      Repository
	directory Directory
	idGen     IDGenerator
	clock     Clock

	mu        sync.Mutex
	tasks     []domain.Task
	inflight  int
	lastError error
}

// NewStore constructs a store over the given repository and roster.
func NewStore(repo Repository, directory Directory, idGen IDGenerator, clock Clock) *Store {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if directory == nil {
		directory = emptyDirectory{}
	}
	return &Store{
		repo:      repo,
		directory: directory,
		idGen:     idGen,
		clock:     clock,
	}
}

// Tasks returns a copy of the canonical sequence in insertion order.
func (s *Store) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// Task returns the canonical record for id, if present.
func (s *Store) Task(id string) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.tasks {
		if task.ID == id {
			return task, true
		}
	}
	return domain.Task{}, false
}

// Loading reports whether any mutating operation is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// LastError returns the error recorded by the most recent failed
// mutation, or nil. Starting any mutation clears it.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Refresh replaces the canonical sequence with the repository's
// current task list.
func (s *Store) Refresh(ctx context.Context) error {
	s.begin()
	tasks, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return s.fail(err)
	}
	s.mu.Lock()
	s.tasks = slices.Clone(tasks)
	s.inflight--
	s.mu.Unlock()
	return nil
}

// CreateTask builds a task from in, persists it, and appends the
// repository echo to the end of the sequence. The provisional id and
// timestamps assigned here are an optimistic aid only; the echo is
// authoritative.
func (s *Store) CreateTask(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	s.begin()
	assignee, err := resolveAssignee(s.directory, in.AssigneeID)
	if err != nil {
		return domain.Task{}, s.fail(err)
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
		return domain.Task{}, s.fail(err)
	}
	created, err := s.repo.Create(ctx, task)
	if err != nil {
		return domain.Task{}, s.fail(err)
	}
	s.mu.Lock()
	s.tasks = append(s.tasks, created)
	s.inflight--
	s.mu.Unlock()
	return created, nil
}

// UpdateTask sends a sparse patch for id and replaces the matching
// task in place with the repository echo, never a local merge. Moving
// a task into done stamps its completion instant; moving it out of
// done clears the instant so the overdue rule sees the task as active
// again. If the task left the sequence while the call was in flight,
// the echo is dropped silently.
func (s *Store) UpdateTask(ctx context.Context, id string, changes TaskChanges) (domain.Task, error) {
	s.begin()
	current, ok := s.lookup(id)
	if !ok {
		return domain.Task{}, s.fail(fmt.Errorf("task %q: %w", id, ErrNotFound))
	}
	patch, err := changesToPatch(s.directory, current, changes, s.clock())
	if err != nil {
		return domain.Task{}, s.fail(err)
	}
	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return domain.Task{}, s.fail(err)
	}
	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == updated.ID {
			s.tasks[i] = updated
			break
		}
	}
	s.inflight--
	s.mu.Unlock()
	return updated, nil
}

// DeleteTask removes id on confirmed success only, preserving the
// relative order of the remaining tasks. There is no optimistic
// removal; a NotFound from the repository surfaces like any other
// failed mutation.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.begin()
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(err)
	}
	s.mu.Lock()
	s.tasks = slices.DeleteFunc(s.tasks, func(t domain.Task) bool { return t.ID == id })
	s.inflight--
	s.mu.Unlock()
	return nil
}

// GetTask fetches one task straight from the repository, bypassing
// the canonical sequence.
func (s *Store) GetTask(ctx context.Context, id string) (domain.Task, error) {
	return s.repo.Get(ctx, id)
}

// Users exposes the injected roster.
func (s *Store) Users() []domain.User {
	return s.directory.Users()
}

func (s *Store) begin() {
	s.mu.Lock()
	s.inflight++
	s.lastError = nil
	s.mu.Unlock()
}

func (s *Store) fail(err error) error {
	s.mu.Lock()
	s.inflight--
	s.lastError = err
	s.mu.Unlock()
	return err
}

func (s *Store) lookup(id string) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.tasks {
		if task.ID == id {
			return task, true
		}
	}
	return domain.Task{}, false
}

type emptyDirectory struct{}

func (emptyDirectory) UserByID(string) (domain.User, bool) { return domain.User{}, false }
func (emptyDirectory) Users() []domain.User                { return nil }
