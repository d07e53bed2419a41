// Package common provides the transport-agnostic wire contracts shared
// by the HTTP adapter, the MCP adapter, and the REST client.
package common

import (
	"errors"
	"time"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/app"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// IsValidation reports whether err belongs to the validation family:
// domain field rejections plus assignee resolution failures. Adapters
// use it to pick the validation_failed wire code.
func IsValidation(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidID,
		domain.ErrInvalidName,
		domain.ErrInvalidTitle,
		domain.ErrInvalidStatus,
		domain.ErrInvalidPriority,
		domain.ErrInvalidDate,
		domain.ErrInvalidPosition,
		app.ErrValidation,
		app.ErrUnknownAssignee,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// UserPayload is the wire shape of one roster user.
type UserPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Email  string `json:"email,omitempty"`
}

// UserPayloadFrom renders one roster user.
func UserPayloadFrom(u domain.User) UserPayload {
	return UserPayload{ID: u.ID, Name: u.Name, Avatar: u.Avatar, Email: u.Email}
}

// User converts the payload back into its domain value.
func (p UserPayload) User() domain.User {
	return domain.User{ID: p.ID, Name: p.Name, Avatar: p.Avatar, Email: p.Email}
}

// TaskPayload is the wire shape of one task. Overdue is derived from
// the due date at render time and is ignored on the way back in.
type TaskPayload struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority"`
	DueDate     string       `json:"due_date,omitempty"`
	Assignee    *UserPayload `json:"assignee,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Overdue     bool         `json:"overdue"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// TaskPayloadFrom renders one task; now drives the overdue flag.
func TaskPayloadFrom(t domain.Task, now time.Time) TaskPayload {
	p := TaskPayload{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate.String(),
		Tags:        t.Tags,
		Overdue:     t.Overdue(now),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
	}
	if !t.Assignee.IsZero() {
		assignee := UserPayloadFrom(t.Assignee)
		p.Assignee = &assignee
	}
	return p
}

// TaskPayloadsFrom renders a task sequence in order.
func TaskPayloadsFrom(tasks []domain.Task, now time.Time) []TaskPayload {
	out := make([]TaskPayload, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskPayloadFrom(t, now))
	}
	return out
}

// Task converts the payload back into its domain value. Enum and date
// fields are re-validated so a client never trusts a malformed echo.
func (p TaskPayload) Task() (domain.Task, error) {
	status, err := domain.ParseStatus(p.Status)
	if err != nil {
		return domain.Task{}, err
	}
	priority, err := domain.ParsePriority(p.Priority)
	if err != nil {
		return domain.Task{}, err
	}
	due, err := domain.ParseDate(p.DueDate)
	if err != nil {
		return domain.Task{}, err
	}
	t := domain.Task{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     due,
		Tags:        p.Tags,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		CompletedAt: p.CompletedAt,
	}
	if p.Assignee != nil {
		t.Assignee = p.Assignee.User()
	}
	return t, nil
}

// TasksFrom converts a payload sequence, failing on the first bad entry.
func TasksFrom(payloads []TaskPayload) ([]domain.Task, error) {
	out := make([]domain.Task, 0, len(payloads))
	for _, p := range payloads {
		t, err := p.Task()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// CreateTaskRequest carries caller input for task creation. Status and
// priority default server-side when omitted.
type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	AssigneeID  string   `json:"assignee_id,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Input parses the request into the application input shape.
func (r CreateTaskRequest) Input() (app.CreateTaskInput, error) {
	in := app.CreateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		AssigneeID:  r.AssigneeID,
		Tags:        r.Tags,
	}
	if r.Status != "" {
		status, err := domain.ParseStatus(r.Status)
		if err != nil {
			return app.CreateTaskInput{}, err
		}
		in.Status = status
	}
	if r.Priority != "" {
		priority, err := domain.ParsePriority(r.Priority)
		if err != nil {
			return app.CreateTaskInput{}, err
		}
		in.Priority = priority
	}
	due, err := domain.ParseDate(r.DueDate)
	if err != nil {
		return app.CreateTaskInput{}, err
	}
	in.DueDate = due
	return in, nil
}

// UpdateTaskRequest is a sparse patch; absent fields leave the task
// untouched. Clearing uses explicit zero values: an empty due_date
// string clears the date and an empty assignee_id clears the
// assignment.
type UpdateTaskRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Priority    *string   `json:"priority,omitempty"`
	DueDate     *string   `json:"due_date,omitempty"`
	AssigneeID  *string   `json:"assignee_id,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// IsZero reports whether the request changes nothing.
func (r UpdateTaskRequest) IsZero() bool {
	return r.Title == nil && r.Description == nil && r.Status == nil &&
		r.Priority == nil && r.DueDate == nil && r.AssigneeID == nil && r.Tags == nil
}

// Changes parses the request into the application change set.
func (r UpdateTaskRequest) Changes() (app.TaskChanges, error) {
	changes := app.TaskChanges{
		Title:       r.Title,
		Description: r.Description,
		AssigneeID:  r.AssigneeID,
		Tags:        r.Tags,
	}
	if r.Status != nil {
		status, err := domain.ParseStatus(*r.Status)
		if err != nil {
			return app.TaskChanges{}, err
		}
		changes.Status = &status
	}
	if r.Priority != nil {
		priority, err := domain.ParsePriority(*r.Priority)
		if err != nil {
			return app.TaskChanges{}, err
		}
		changes.Priority = &priority
	}
	if r.DueDate != nil {
		due, err := domain.ParseDate(*r.DueDate)
		if err != nil {
			return app.TaskChanges{}, err
		}
		changes.DueDate = &due
	}
	return changes, nil
}

// ListFilterFrom parses optional status/priority/assignee hint values.
// Empty strings and "all" leave an axis unset.
func ListFilterFrom(status, priority, assignee string) (app.ListFilter, error) {
	parsedStatus, err := domain.ParseStatusFilter(status)
	if err != nil {
		return app.ListFilter{}, err
	}
	parsedPriority, err := domain.ParsePriorityFilter(priority)
	if err != nil {
		return app.ListFilter{}, err
	}
	return app.ListFilter{
		Status:     parsedStatus,
		Priority:   parsedPriority,
		AssigneeID: assignee,
	}, nil
}

// FilterFrom parses board filter axes, search included.
func FilterFrom(status, priority, search string) (domain.Filter, error) {
	parsedStatus, err := domain.ParseStatusFilter(status)
	if err != nil {
		return domain.Filter{}, err
	}
	parsedPriority, err := domain.ParsePriorityFilter(priority)
	if err != nil {
		return domain.Filter{}, err
	}
	return domain.Filter{
		Status:   parsedStatus,
		Priority: parsedPriority,
		Search:   search,
	}, nil
}

// StatusTitle is the display title for one board column.
func StatusTitle(s domain.Status) string {
	switch s {
	case domain.StatusTodo:
		return "To Do"
	case domain.StatusInProgress:
		return "In Progress"
	case domain.StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// ColumnPayload is one status column of the board view.
type ColumnPayload struct {
	Status string        `json:"status"`
	Title  string        `json:"title"`
	Tasks  []TaskPayload `json:"tasks"`
}

// BoardPayload is the filtered board partition in column order.
type BoardPayload struct {
	Columns []ColumnPayload `json:"columns"`
	Total   int             `json:"total"`
}

// BoardPayloadFrom renders the three columns in board order.
func BoardPayloadFrom(view app.BoardView, now time.Time) BoardPayload {
	board := BoardPayload{Total: view.Total()}
	for _, status := range domain.Statuses() {
		board.Columns = append(board.Columns, ColumnPayload{
			Status: string(status),
			Title:  StatusTitle(status),
			Tasks:  TaskPayloadsFrom(view.Bucket(status), now),
		})
	}
	return board
}

// AssigneeCountPayload tallies one roster member; the user is omitted
// for the unassigned bucket.
type AssigneeCountPayload struct {
	User  *UserPayload `json:"user,omitempty"`
	Total int          `json:"total"`
	Done  int          `json:"done"`
}

// StatsPayload is the wire shape of the board summary.
type StatsPayload struct {
	Total          int                    `json:"total"`
	ByStatus       map[string]int         `json:"by_status"`
	ByPriority     map[string]int         `json:"by_priority"`
	Overdue        int                    `json:"overdue"`
	CompletionRate float64                `json:"completion_rate"`
	Assignees      []AssigneeCountPayload `json:"assignees"`
}

// StatsPayloadFrom renders one summary.
func StatsPayloadFrom(s app.Summary) StatsPayload {
	out := StatsPayload{
		Total:          s.Total,
		ByStatus:       map[string]int{},
		ByPriority:     map[string]int{},
		Overdue:        s.Overdue,
		CompletionRate: s.CompletionRate,
	}
	for status, n := range s.ByStatus {
		out.ByStatus[string(status)] = n
	}
	for priority, n := range s.ByPriority {
		out.ByPriority[string(priority)] = n
	}
	for _, tally := range s.Assignees {
		entry := AssigneeCountPayload{Total: tally.Total, Done: tally.Done}
		if !tally.User.IsZero() {
			user := UserPayloadFrom(tally.User)
			entry.User = &user
		}
		out.Assignees = append(out.Assignees, entry)
	}
	return out
}

// TasksResponse is the list envelope for task collections.
type TasksResponse struct {
	Tasks []TaskPayload `json:"tasks"`
}

// UsersResponse is the list envelope for the roster.
type UsersResponse struct {
	Users []UserPayload `json:"users"`
}
