// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/adapters/server/common"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/app"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the task, board,
// roster, and stats tools over svc.
func NewHandler(cfg Config, svc *app.Service, clock app.Clock) (*Handler, error) {
	if svc == nil {
		return nil, fmt.Errorf("task service is required")
	}
	if clock == nil {
		clock = time.Now
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerTaskTools(mcpSrv, svc, clock)
	registerBoardTool(mcpSrv, svc, clock)
	registerUserTool(mcpSrv, svc)
	registerStatsTool(mcpSrv, svc)

	return &Handler{httpHandler: mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)}, nil
}

// ServeHTTP forwards to the streamable transport. A half-built handler
// refuses traffic instead of panicking.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig fills defaults and canonicalizes the endpoint path to
// a single leading slash with no trailing one.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerName == "" {
		cfg.ServerName = "luftborn"
	}
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	path := strings.Trim(strings.TrimSpace(cfg.EndpointPath), "/")
	if path == "" {
		path = "mcp"
	}
	cfg.EndpointPath = "/" + path
	return cfg
}

// registerTaskTools registers the task CRUD tools.
func registerTaskTools(srv *mcpserver.MCPServer, svc *app.Service, clock app.Clock) {
	srv.AddTool(
		mcp.NewTool(
			"luftborn.task_list",
			mcp.WithDescription("List tasks in creation order, optionally narrowed by status, priority, or assignee."),
			mcp.WithString("status", mcp.Description("Status filter"), mcp.Enum("todo", "in_progress", "done")),
			mcp.WithString("priority", mcp.Description("Priority filter"), mcp.Enum("low", "medium", "high")),
			mcp.WithString("assignee_id", mcp.Description("Assignee id filter")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			filter, err := common.ListFilterFrom(
				req.GetString("status", ""),
				req.GetString("priority", ""),
				req.GetString("assignee_id", ""),
			)
			if err != nil {
				return toolResultFromError(err), nil
			}
			tasks, err := svc.List(ctx, filter)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(common.TasksResponse{
				Tasks: common.TaskPayloadsFrom(tasks, clock()),
			})
			if err != nil {
				return nil, fmt.Errorf("encode task_list result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"luftborn.task_get",
			mcp.WithDescription("Return one task by id."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := svc.Get(ctx, id)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(common.TaskPayloadFrom(task, clock()))
			if err != nil {
				return nil, fmt.Errorf("encode task_get result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"luftborn.task_create",
			mcp.WithDescription("Create a new task."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
			mcp.WithString("description", mcp.Description("Task description")),
			mcp.WithString("status", mcp.Description("Initial status, defaults to todo"), mcp.Enum("todo", "in_progress", "done")),
			mcp.WithString("priority", mcp.Description("Priority, defaults to medium"), mcp.Enum("low", "medium", "high")),
			mcp.WithString("due_date", mcp.Description("Due date in YYYY-MM-DD form")),
			mcp.WithString("assignee_id", mcp.Description("Roster user id")),
			mcp.WithArray("tags", mcp.Description("Free-form tags"), mcp.WithStringItems()),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			in, err := common.CreateTaskRequest{
				Title:       title,
				Description: req.GetString("description", ""),
				Status:      req.GetString("status", ""),
				Priority:    req.GetString("priority", ""),
				DueDate:     req.GetString("due_date", ""),
				AssigneeID:  req.GetString("assignee_id", ""),
				Tags:        req.GetStringSlice("tags", nil),
			}.Input()
			if err != nil {
				return toolResultFromError(err), nil
			}
			task, err := svc.Create(ctx, in)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(common.TaskPayloadFrom(task, clock()))
			if err != nil {
				return nil, fmt.Errorf("encode task_create result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"luftborn.task_update",
			mcp.WithDescription("Apply a sparse update to one task. Omitted fields are untouched; an empty due_date or assignee_id clears the field."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("description", mcp.Description("New description")),
			mcp.WithString("status", mcp.Description("New status"), mcp.Enum("todo", "in_progress", "done")),
			mcp.WithString("priority", mcp.Description("New priority"), mcp.Enum("low", "medium", "high")),
			mcp.WithString("due_date", mcp.Description("New due date, empty to clear")),
			mcp.WithString("assignee_id", mcp.Description("New assignee id, empty to unassign")),
			mcp.WithArray("tags", mcp.Description("Replacement tag list"), mcp.WithStringItems()),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			var args struct {
				ID string `json:"id"`
				common.UpdateTaskRequest
			}
			if err := req.BindArguments(&args); err != nil {
				return mcp.NewToolResultError("invalid_request: " + err.Error()), nil
			}
			if args.IsZero() {
				return mcp.NewToolResultError("invalid_request: update must change at least one field"), nil
			}
			changes, err := args.Changes()
			if err != nil {
				return toolResultFromError(err), nil
			}
			task, err := svc.Update(ctx, id, changes)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(common.TaskPayloadFrom(task, clock()))
			if err != nil {
				return nil, fmt.Errorf("encode task_update result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"luftborn.task_move",
			mcp.WithDescription("Move one task to another status column."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("status", mcp.Required(), mcp.Description("Target status"), mcp.Enum("todo", "in_progress", "done")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			raw, err := req.RequireString("status")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			status, err := domain.ParseStatus(raw)
			if err != nil {
				return toolResultFromError(err), nil
			}
			task, err := svc.Move(ctx, id, status)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(common.TaskPayloadFrom(task, clock()))
			if err != nil {
				return nil, fmt.Errorf("encode task_move result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"luftborn.task_delete",
			mcp.WithDescription("Delete one task by id."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := svc.Delete(ctx, id); err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"deleted": id})
			if err != nil {
				return nil, fmt.Errorf("encode task_delete result: %w", err)
			}
			return result, nil
		},
	)
}

// registerBoardTool registers the `luftborn.board_view` tool.
func registerBoardTool(srv *mcpserver.MCPServer, svc *app.Service, clock app.Clock) {
	srv.AddTool(
		mcp.NewTool(
			"luftborn.board_view",
			mcp.WithDescription("Return the three status columns under an optional filter."),
			mcp.WithString("status", mcp.Description("Status axis"), mcp.Enum("todo", "in_progress", "done")),
			mcp.WithString("priority", mcp.Description("Priority axis"), mcp.Enum("low", "medium", "high")),
			mcp.WithString("search", mcp.Description("Case-insensitive title and description search")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			filter, err := common.FilterFrom(
				req.GetString("status", ""),
				req.GetString("priority", ""),
				req.GetString("search", ""),
			)
			if err != nil {
				return toolResultFromError(err), nil
			}
			view, err := svc.Board(ctx, filter)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(common.BoardPayloadFrom(view, clock()))
			if err != nil {
				return nil, fmt.Errorf("encode board_view result: %w", err)
			}
			return result, nil
		},
	)
}

// registerUserTool registers the `luftborn.user_list` tool.
func registerUserTool(srv *mcpserver.MCPServer, svc *app.Service) {
	srv.AddTool(
		mcp.NewTool(
			"luftborn.user_list",
			mcp.WithDescription("List the assignable roster users."),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			users := svc.Users()
			payloads := make([]common.UserPayload, 0, len(users))
			for _, u := range users {
				payloads = append(payloads, common.UserPayloadFrom(u))
			}
			result, err := mcp.NewToolResultJSON(common.UsersResponse{Users: payloads})
			if err != nil {
				return nil, fmt.Errorf("encode user_list result: %w", err)
			}
			return result, nil
		},
	)
}

// registerStatsTool registers the `luftborn.stats_summary` tool.
func registerStatsTool(srv *mcpserver.MCPServer, svc *app.Service) {
	srv.AddTool(
		mcp.NewTool(
			"luftborn.stats_summary",
			mcp.WithDescription("Summarize task counts by status, priority, assignee, and overdue state."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			summary, err := svc.Summary(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(common.StatsPayloadFrom(summary))
			if err != nil {
				return nil, fmt.Errorf("encode stats_summary result: %w", err)
			}
			return result, nil
		},
	)
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, app.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case common.IsValidation(err):
		return mcp.NewToolResultError("validation_failed: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
