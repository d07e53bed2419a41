// Package rest provides an app.Repository backed by a remote task API.
//
// The adapter speaks the same wire contracts the HTTP server exposes, so
// a store wired to it behaves like one wired to local storage, except
// that ids and timestamps come back from the remote side. Responses are
// echoed through the domain constructors, so a misbehaving server
// surfaces as a validation error rather than corrupt local state.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/adapters/server/common"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/app"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"
)

// defaultTimeout bounds one request round trip when the caller supplies
// no custom client.
const defaultTimeout = 10 * time.Second

// maxResponseBodyBytes limits decoded response size for fail-closed handling.
const maxResponseBodyBytes int64 = 1 << 20

// Repository implements app.Repository over the versioned REST API.
type Repository struct {
	baseURL    string
	httpClient *http.Client
}

// NewRepository builds a remote repository rooted at baseURL, which
// must include the API prefix, for example "http://127.0.0.1:8787/api/v1".
func NewRepository(baseURL string, httpClient *http.Client) (*Repository, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("base url %q must start with http:// or https://", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Repository{baseURL: baseURL, httpClient: httpClient}, nil
}

// List fetches tasks in creation order, narrowed by the filter hints.
func (r *Repository) List(ctx context.Context, f app.ListFilter) ([]domain.Task, error) {
	query := url.Values{}
	if f.Status != "" {
		query.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		query.Set("priority", string(f.Priority))
	}
	if f.AssigneeID != "" {
		query.Set("assignee", f.AssigneeID)
	}

	var resp common.TasksResponse
	if err := r.do(ctx, http.MethodGet, "/tasks", query, nil, &resp); err != nil {
		return nil, err
	}
	tasks, err := common.TasksFrom(resp.Tasks)
	if err != nil {
		return nil, fmt.Errorf("decode task list: %w", err)
	}
	return tasks, nil
}

// Get fetches one task by id.
func (r *Repository) Get(ctx context.Context, id string) (domain.Task, error) {
	var payload common.TaskPayload
	if err := r.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, nil, &payload); err != nil {
		return domain.Task{}, err
	}
	task, err := payload.Task()
	if err != nil {
		return domain.Task{}, fmt.Errorf("decode task %q: %w", id, err)
	}
	return task, nil
}

// Create submits the task fields for creation. The remote side mints
// its own id and timestamps; the echoed task is the canonical result.
func (r *Repository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	req := common.CreateTaskRequest{
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate.String(),
		AssigneeID:  task.Assignee.ID,
		Tags:        task.Tags,
	}
	var payload common.TaskPayload
	if err := r.do(ctx, http.MethodPost, "/tasks", nil, req, &payload); err != nil {
		return domain.Task{}, err
	}
	created, err := payload.Task()
	if err != nil {
		return domain.Task{}, fmt.Errorf("decode created task: %w", err)
	}
	return created, nil
}

// Update submits a sparse patch. Update and completion instants are
// stamped remotely, so only the caller-visible fields travel.
func (r *Repository) Update(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	req := updateRequestFrom(patch)
	var payload common.TaskPayload
	if err := r.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), nil, req, &payload); err != nil {
		return domain.Task{}, err
	}
	updated, err := payload.Task()
	if err != nil {
		return domain.Task{}, fmt.Errorf("decode updated task %q: %w", id, err)
	}
	return updated, nil
}

// Delete removes one task by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, nil)
}

// Users fetches the assignable roster from the remote directory.
func (r *Repository) Users(ctx context.Context) ([]domain.User, error) {
	var resp common.UsersResponse
	if err := r.do(ctx, http.MethodGet, "/users", nil, nil, &resp); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(resp.Users))
	for _, p := range resp.Users {
		users = append(users, p.User())
	}
	return users, nil
}

// updateRequestFrom flattens a domain patch into the sparse wire shape.
// Clearing a due date or assignee travels as an explicit empty string.
func updateRequestFrom(patch domain.TaskPatch) common.UpdateTaskRequest {
	req := common.UpdateTaskRequest{
		Title:       patch.Title,
		Description: patch.Description,
		Tags:        patch.Tags,
	}
	if patch.Status != nil {
		status := string(*patch.Status)
		req.Status = &status
	}
	if patch.Priority != nil {
		priority := string(*patch.Priority)
		req.Priority = &priority
	}
	if patch.DueDate != nil {
		due := patch.DueDate.String()
		req.DueDate = &due
	}
	if patch.Assignee != nil {
		assigneeID := patch.Assignee.ID
		req.AssigneeID = &assigneeID
	}
	return req
}

// do performs one request round trip and decodes the response into out.
func (r *Repository) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	target := r.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", app.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errorFromResponse(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodyBytes))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", app.ErrTransport, err)
	}
	return nil
}

// errorEnvelope mirrors the server's structured error wire shape.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// errorFromResponse maps one non-2xx response onto the error taxonomy.
func errorFromResponse(resp *http.Response) error {
	var envelope errorEnvelope
	message := ""
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodyBytes)).Decode(&envelope); err == nil {
		message = envelope.Error.Message
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", app.ErrNotFound, message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", app.ErrValidation, message)
	default:
		return fmt.Errorf("%w: status %d: %s", app.ErrTransport, resp.StatusCode, message)
	}
}
