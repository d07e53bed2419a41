// Package server composes the REST API and MCP transports into one
// HTTP process.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/adapters/server/httpapi"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/adapters/server/mcpapi"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/app"
)

const (
	defaultBind   = "127.0.0.1:8787"
	shutdownGrace = 5 * time.Second
)

// Config holds the serve-mode listen address and endpoint layout.
type Config struct {
	HTTPBind      string
	APIEndpoint   string
	MCPEndpoint   string
	ServerName    string
	ServerVersion string
}

// Dependencies carries the app services the transports consume.
type Dependencies struct {
	Service *app.Service
	Clock   app.Clock
}

// NewHandler builds the root handler: health probes, the REST API
// under APIEndpoint, and the MCP endpoint. The returned Config is the
// normalized form actually mounted.
func NewHandler(cfg Config, deps Dependencies) (http.Handler, Config, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, Config{}, err
	}
	if deps.Service == nil {
		return nil, Config{}, fmt.Errorf("task service dependency is required")
	}

	mcpHandler, err := mcpapi.NewHandler(
		mcpapi.Config{
			ServerName:    cfg.ServerName,
			ServerVersion: cfg.ServerVersion,
			EndpointPath:  cfg.MCPEndpoint,
		},
		deps.Service,
		deps.Clock,
	)
	if err != nil {
		return nil, Config{}, fmt.Errorf("configure mcp handler: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", serveHealth)
	mux.HandleFunc("/readyz", serveHealth)
	mux.Handle(cfg.MCPEndpoint, mcpHandler)
	mountAPI(mux, cfg.APIEndpoint, httpapi.NewHandler(deps.Service, deps.Clock))
	return mux, cfg, nil
}

// Run serves the composed handler until ctx is cancelled or the
// listener fails. Cancellation triggers a graceful shutdown bounded
// by shutdownGrace.
func Run(ctx context.Context, cfg Config, deps Dependencies) error {
	if ctx == nil {
		ctx = context.Background()
	}
	handler, cfg, err := NewHandler(cfg, deps)
	if err != nil {
		return fmt.Errorf("build server handler: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPBind,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	failed := make(chan error, 1)
	go func() {
		failed <- srv.ListenAndServe()
	}()

	select {
	case err := <-failed:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve: %w", err)
	case <-ctx.Done():
		return stop(srv, failed)
	}
}

// stop drains the listener after a context-driven shutdown.
func stop(srv *http.Server, failed <-chan error) error {
	graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(graceCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown server: %w", err)
	}
	if err := <-failed; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve after shutdown: %w", err)
	}
	return nil
}

// mountAPI mounts the REST handler with and without a trailing slash
// so both /api/v1 and /api/v1/tasks resolve.
func mountAPI(mux *http.ServeMux, endpoint string, h http.Handler) {
	mux.Handle(endpoint, http.StripPrefix(endpoint, h))
	mux.Handle(endpoint+"/", http.StripPrefix(endpoint, h))
}

// normalize fills defaults and rejects colliding endpoints.
func (c Config) normalize() (Config, error) {
	c.HTTPBind = fallback(strings.TrimSpace(c.HTTPBind), defaultBind)
	c.APIEndpoint = cleanEndpoint(c.APIEndpoint, "/api/v1")
	c.MCPEndpoint = cleanEndpoint(c.MCPEndpoint, "/mcp")
	if c.APIEndpoint == c.MCPEndpoint {
		return Config{}, fmt.Errorf("api and mcp endpoints must differ")
	}
	c.ServerName = fallback(strings.TrimSpace(c.ServerName), "luftborn")
	c.ServerVersion = fallback(strings.TrimSpace(c.ServerVersion), "dev")
	return c, nil
}

// cleanEndpoint reduces p to a rooted path without a trailing slash,
// falling back to def for empty or root-only input.
func cleanEndpoint(p, def string) string {
	p = "/" + strings.Trim(strings.TrimSpace(p), "/")
	if p == "/" {
		return def
	}
	return p
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func serveHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}
