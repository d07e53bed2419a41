package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"
)

type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Server    ServerConfig    `toml:"server"`
	Client    ClientConfig    `toml:"client"`
	Directory DirectoryConfig `toml:"directory"`
	Board     BoardConfig     `toml:"board"`
	Logging   LoggingConfig   `toml:"logging"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type ServerConfig struct {
	HTTPAddr    string `toml:"http_addr"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type ClientConfig struct {
	BaseURL string `toml:"base_url"`
}

type DirectoryConfig struct {
	UsersPath string `toml:"users_path"`
}

type BoardConfig struct {
	Swimlanes []SwimlaneConfig `toml:"swimlanes"`
}

type SwimlaneConfig struct {
	ID    string `toml:"id"`
	Title string `toml:"title"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

func defaultSwimlanes() []SwimlaneConfig {
	return []SwimlaneConfig{
		{ID: "todo", Title: "To Do"},
		{ID: "in_progress", Title: "In Progress"},
		{ID: "done", Title: "Done"},
	}
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Server: ServerConfig{
			HTTPAddr:    "127.0.0.1:8787",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		Client: ClientConfig{
			BaseURL: "",
		},
		Directory: DirectoryConfig{
			UsersPath: "",
		},
		Board: BoardConfig{
			Swimlanes: defaultSwimlanes(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load layers the TOML file at path over defaults. A blank path, a
// missing file, and an empty file all yield the defaults unchanged.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	case len(content) == 0:
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if strings.TrimSpace(c.Server.HTTPAddr) == "" {
		return errors.New("server.http_addr is required")
	}
	if !strings.HasPrefix(c.Server.APIEndpoint, "/") {
		return fmt.Errorf("server.api_endpoint must start with /: %q", c.Server.APIEndpoint)
	}
	if !strings.HasPrefix(c.Server.MCPEndpoint, "/") {
		return fmt.Errorf("server.mcp_endpoint must start with /: %q", c.Server.MCPEndpoint)
	}

	if base := strings.TrimSpace(c.Client.BaseURL); base != "" {
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			return fmt.Errorf("client.base_url must be an http(s) URL: %q", base)
		}
	}

	if len(c.Board.Swimlanes) == 0 {
		return errors.New("board.swimlanes must include at least one lane")
	}
	seenLaneID := map[string]struct{}{}
	for idx := range c.Board.Swimlanes {
		lane := c.Board.Swimlanes[idx]
		lane.ID = strings.TrimSpace(strings.ToLower(lane.ID))
		lane.Title = strings.TrimSpace(lane.Title)
		if lane.ID == "" {
			return fmt.Errorf("board.swimlanes[%d].id is required", idx)
		}
		if _, err := domain.ParseStatus(lane.ID); err != nil {
			return fmt.Errorf("board.swimlanes[%d].id references unknown status %q", idx, lane.ID)
		}
		if lane.Title == "" {
			return fmt.Errorf("board.swimlanes[%d].title is required", idx)
		}
		if _, ok := seenLaneID[lane.ID]; ok {
			return fmt.Errorf("board.swimlanes[%d].id is duplicated: %s", idx, lane.ID)
		}
		seenLaneID[lane.ID] = struct{}{}
		c.Board.Swimlanes[idx] = lane
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
