package domain

import (
	"slices"
	"strings"
	"time"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

var validStatuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// Statuses returns the three board statuses in column order.
func Statuses() []Status {
	return append([]Status(nil), validStatuses...)
}

// Valid reports whether s is one of the three board statuses.
func (s Status) Valid() bool {
	return slices.Contains(validStatuses, s)
}

// ParseStatus maps transport-level spellings onto a canonical status.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "todo", "to-do", "to_do":
		return StatusTodo, nil
	case "in_progress", "in-progress", "inprogress", "doing":
		return StatusInProgress, nil
	case "done", "complete", "completed":
		return StatusDone, nil
	default:
		return "", ErrInvalidStatus
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Priorities returns the priority bands from least to most urgent.
func Priorities() []Priority {
	return append([]Priority(nil), validPriorities...)
}

// Valid reports whether p is one of the three priority bands.
func (p Priority) Valid() bool {
	return slices.Contains(validPriorities, p)
}

// ParsePriority maps transport-level spellings onto a canonical priority.
func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return PriorityLow, nil
	case "medium", "med":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	default:
		return "", ErrInvalidPriority
	}
}

// Task represents one unit of work on the board. The assignee is an
// embedded snapshot of a roster user, not a live reference; the zero
// User means unassigned. Tags keep their given order and may repeat.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     Date
	Assignee    User
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// TaskDraft carries the caller-supplied fields for a new task.
type TaskDraft struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     Date
	Assignee    User
	Tags        []string
}

// NewTask validates a draft and returns the fully populated task.
// Status defaults to todo and priority to medium; a task created
// directly in done records now as its completion instant.
func NewTask(in TaskDraft, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}

	if in.Status == "" {
		in.Status = StatusTodo
	}
	if !slices.Contains(validStatuses, in.Status) {
		return Task{}, ErrInvalidStatus
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !slices.Contains(validPriorities, in.Priority) {
		return Task{}, ErrInvalidPriority
	}

	ts := now.UTC()
	task := Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Assignee:    in.Assignee,
		Tags:        slices.Clone(in.Tags),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if task.Status == StatusDone {
		task.CompletedAt = &ts
	}
	return task, nil
}

// TaskPatch is a sparse change set; nil fields leave the record
// untouched. A pointer to the zero Date clears the due date and a
// pointer to the zero User clears the assignment.
type TaskPatch struct {
	Title            *string
	Description      *string
	Status           *Status
	Priority         *Priority
	DueDate          *Date
	Assignee         *User
	Tags             *[]string
	UpdatedAt        *time.Time
	CompletedAt      *time.Time
	ClearCompletedAt bool
}

// IsZero reports whether the patch changes nothing.
func (p TaskPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.DueDate == nil && p.Assignee == nil &&
		p.Tags == nil && p.UpdatedAt == nil && p.CompletedAt == nil &&
		!p.ClearCompletedAt
}

// ApplyPatch returns a copy of t with p applied. A validation failure
// returns the zero task and leaves t unaffected.
func (t Task) ApplyPatch(p TaskPatch) (Task, error) {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return Task{}, ErrInvalidTitle
		}
		t.Title = title
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Status != nil {
		if !slices.Contains(validStatuses, *p.Status) {
			return Task{}, ErrInvalidStatus
		}
		t.Status = *p.Status
	}
	if p.Priority != nil {
		if !slices.Contains(validPriorities, *p.Priority) {
			return Task{}, ErrInvalidPriority
		}
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.Tags != nil {
		t.Tags = slices.Clone(*p.Tags)
	}
	if p.UpdatedAt != nil {
		t.UpdatedAt = p.UpdatedAt.UTC()
	}
	if p.CompletedAt != nil {
		ts := p.CompletedAt.UTC()
		t.CompletedAt = &ts
	}
	if p.ClearCompletedAt {
		t.CompletedAt = nil
	}
	return t, nil
}

// Overdue reports whether the task's due date has passed. Done tasks
// are never overdue, and neither are tasks carrying a completion
// instant; the comparison uses calendar dates in now's location, not
// UTC-shifted instants.
func (t Task) Overdue(now time.Time) bool {
	if t.Status == StatusDone {
		return false
	}
	if t.CompletedAt != nil {
		return false
	}
	if t.DueDate.IsZero() {
		return false
	}
	return t.DueDate.Before(DateOf(now))
}
