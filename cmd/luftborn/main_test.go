package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/adapters/server"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/adapters/storage/sqlite"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/app"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/config"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/directory"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("LUFTBORN_DEV_MODE", "false")
	os.Exit(m.Run())
}

// stubProgram satisfies the program seam without running a TUI loop.
type stubProgram struct {
	runErr error
}

func (p stubProgram) Run() (tea.Model, error) { return nil, p.runErr }

// scriptedProgram substitutes runFn for the real program loop so run()
// tests can drive model interactions.
type scriptedProgram struct {
	model tea.Model
	runFn func(tea.Model) (tea.Model, error)
}

func (p scriptedProgram) Run() (tea.Model, error) {
	if p.runFn == nil {
		return p.model, nil
	}
	return p.runFn(p.model)
}

// applyModelMsg applies one message and any command chain it spawns.
func applyModelMsg(t *testing.T, model tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	updated, cmd := model.Update(msg)
	return applyModelCmd(t, updated, cmd)
}

// applyModelCmd executes one command chain to completion (bounded for safety).
func applyModelCmd(t *testing.T, model tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	for i := 0; i < 8 && cmd != nil; i++ {
		model, cmd = model.Update(cmd())
	}
	return model
}

// cliPaths returns a fresh db path and a config path that does not exist.
func cliPaths(t *testing.T) (string, string) {
	t.Helper()
	tmp := t.TempDir()
	return filepath.Join(tmp, "luftborn.db"), filepath.Join(tmp, "missing.toml")
}

// runCLI runs one command against the given db and returns its stdout.
func runCLI(t *testing.T, dbPath, cfgPath string, args ...string) string {
	t.Helper()
	var out strings.Builder
	full := append([]string{"--db", dbPath, "--config", cfgPath}, args...)
	if err := run(context.Background(), full, &out, io.Discard); err != nil {
		t.Fatalf("run(%v) error = %v", args, err)
	}
	return out.String()
}

// addTask creates one task through the CLI and returns its id.
func addTask(t *testing.T, dbPath, cfgPath string, args ...string) string {
	t.Helper()
	out := runCLI(t, dbPath, cfgPath, append([]string{"add"}, args...)...)
	fields := strings.Fields(out)
	if len(fields) < 2 || fields[0] != "created" {
		t.Fatalf("unexpected add output %q", out)
	}
	return fields[1]
}

// TestRunVersion verifies behavior for the covered scenario.
func TestRunVersion(t *testing.T) {
	var out strings.Builder
	if err := run(context.Background(), []string{"--version"}, &out, io.Discard); err != nil {
		t.Fatalf("run(--version) error = %v", err)
	}
	if !strings.Contains(out.String(), "luftborn") {
		t.Fatalf("expected version output, got %q", out.String())
	}

	out.Reset()
	if err := run(context.Background(), []string{"version"}, &out, io.Discard); err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if !strings.Contains(out.String(), "luftborn") {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

// TestRunHelpCommand verifies behavior for the covered scenario.
func TestRunHelpCommand(t *testing.T) {
	var out strings.Builder
	if err := run(context.Background(), []string{"help"}, &out, io.Discard); err != nil {
		t.Fatalf("run(help) error = %v", err)
	}
	for _, want := range []string{"commands:", "list", "serve", "-remote"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected help output to mention %q, got %q", want, out.String())
		}
	}
}

// TestRunStartsProgram verifies behavior for the covered scenario.
func TestRunStartsProgram(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })

	programFactory = func(_ tea.Model) program {
		return stubProgram{}
	}

	dbPath, cfgPath := cliPaths(t)
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

// TestRunTUIFlowCreatesTask drives the board through the program seam
// and verifies the created task lands in the sqlite store.
func TestRunTUIFlowCreatesTask(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(model tea.Model) program {
		return scriptedProgram{
			model: model,
			runFn: func(current tea.Model) (tea.Model, error) {
				current = applyModelCmd(t, current, current.Init())
				current = applyModelMsg(t, current, tea.WindowSizeMsg{Width: 120, Height: 40})
				current = applyModelMsg(t, current, tea.KeyPressMsg{Code: 'n', Text: "n"})
				for _, r := range "Ship it" {
					current = applyModelMsg(t, current, tea.KeyPressMsg{Code: r, Text: string(r)})
				}
				current = applyModelMsg(t, current, tea.KeyPressMsg{Code: tea.KeyEnter})
				if rendered := fmt.Sprint(current.View().Content); !strings.Contains(rendered, "Ship it") {
					t.Fatalf("expected new task on the board, got\n%s", rendered)
				}
				return current, nil
			},
		}
	}

	dbPath, cfgPath := cliPaths(t)
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	out := runCLI(t, dbPath, cfgPath, "list")
	if !strings.Contains(out, "Ship it") {
		t.Fatalf("expected TUI-created task in list output, got %q", out)
	}
}

// TestRunInvalidFlag verifies behavior for the covered scenario.
func TestRunInvalidFlag(t *testing.T) {
	if err := run(context.Background(), []string{"--unknown-flag"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected flag parse error")
	}
}

// TestRunUnknownCommand verifies behavior for the covered scenario.
func TestRunUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"unknown-command"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

// TestRunAddListShowFlow verifies behavior for the covered scenario.
func TestRunAddListShowFlow(t *testing.T) {
	dbPath, cfgPath := cliPaths(t)
	id := addTask(t, dbPath, cfgPath, "-priority", "high", "-due", "2030-06-01", "-tags", "infra,auth", "Fix", "login", "flow")

	out := runCLI(t, dbPath, cfgPath, "list")
	for _, want := range []string{id, "Fix login flow", "todo", "high", "2030-06-01", "1 of 1 tasks"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected list output to contain %q, got\n%s", want, out)
		}
	}

	out = runCLI(t, dbPath, cfgPath, "show", id)
	for _, want := range []string{"Fix login flow", id, "todo", "high", "infra, auth"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected show output to contain %q, got\n%s", want, out)
		}
	}
}

// TestRunShowRendersDescription verifies behavior for the covered scenario.
func TestRunShowRendersDescription(t *testing.T) {
	dbPath, cfgPath := cliPaths(t)
	id := addTask(t, dbPath, cfgPath, "-desc", "Check the **rollback** plan first.", "Release")

	out := runCLI(t, dbPath, cfgPath, "show", id)
	if !strings.Contains(out, "rollback") {
		t.Fatalf("expected rendered description, got\n%s", out)
	}
}

// TestRunListFilters verifies behavior for the covered scenario.
func TestRunListFilters(t *testing.T) {
	dbPath, cfgPath := cliPaths(t)
	overdueID := addTask(t, dbPath, cfgPath, "-due", "2020-01-01", "-assignee", "u-amira", "Patch", "auth")
	doneID := addTask(t, dbPath, cfgPath, "-due", "2020-01-01", "Old", "chore")
	runCLI(t, dbPath, cfgPath, "done", doneID)

	out := runCLI(t, dbPath, cfgPath, "list", "-status", "done")
	if !strings.Contains(out, doneID) || strings.Contains(out, overdueID) {
		t.Fatalf("expected only the done task, got\n%s", out)
	}

	// A completed task never counts as overdue, even with a past due date.
	out = runCLI(t, dbPath, cfgPath, "list", "-overdue")
	if !strings.Contains(out, overdueID) || strings.Contains(out, doneID) {
		t.Fatalf("expected only the open overdue task, got\n%s", out)
	}

	out = runCLI(t, dbPath, cfgPath, "list", "-search", "PATCH")
	if !strings.Contains(out, overdueID) || strings.Contains(out, doneID) {
		t.Fatalf("expected case-insensitive search match, got\n%s", out)
	}

	out = runCLI(t, dbPath, cfgPath, "list", "-assignee", "amira fahmy")
	if !strings.Contains(out, overdueID) || strings.Contains(out, doneID) {
		t.Fatalf("expected assignee name match, got\n%s", out)
	}

	out = runCLI(t, dbPath, cfgPath, "list", "-search", "no-such-task")
	if !strings.Contains(out, "no tasks match") {
		t.Fatalf("expected empty match message, got\n%s", out)
	}
}

// TestRunEditCommand verifies behavior for the covered scenario.
func TestRunEditCommand(t *testing.T) {
	dbPath, cfgPath := cliPaths(t)
	id := addTask(t, dbPath, cfgPath, "-due", "2030-01-01", "Fix", "login")

	out := runCLI(t, dbPath, cfgPath, "edit", "-priority", "high", "-tags", "infra,auth", id)
	if !strings.Contains(out, "updated "+id) {
		t.Fatalf("expected update confirmation, got %q", out)
	}
	out = runCLI(t, dbPath, cfgPath, "show", id)
	for _, want := range []string{"high", "infra, auth", "2030-01-01"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected show output to contain %q after edit, got\n%s", want, out)
		}
	}

	// An explicitly empty -due clears the date.
	runCLI(t, dbPath, cfgPath, "edit", "-due", "", id)
	out = runCLI(t, dbPath, cfgPath, "show", id)
	if strings.Contains(out, "due:") {
		t.Fatalf("expected due date cleared, got\n%s", out)
	}

	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "edit", id}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "nothing to change") {
		t.Fatalf("expected no-op edit rejection, got %v", err)
	}

	err = run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "edit", "-assignee", "nobody", id}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "unknown assignee") {
		t.Fatalf("expected unknown assignee error, got %v", err)
	}
}

// TestRunMoveAndDoneCommands verifies behavior for the covered scenario.
func TestRunMoveAndDoneCommands(t *testing.T) {
	dbPath, cfgPath := cliPaths(t)
	id := addTask(t, dbPath, cfgPath, "Ship", "it")

	out := runCLI(t, dbPath, cfgPath, "move", id, "in_progress")
	if !strings.Contains(out, "moved "+id+" to in_progress") {
		t.Fatalf("unexpected move output %q", out)
	}

	out = runCLI(t, dbPath, cfgPath, "done", id)
	if !strings.Contains(out, "completed "+id) {
		t.Fatalf("unexpected done output %q", out)
	}
	out = runCLI(t, dbPath, cfgPath, "show", id)
	if !strings.Contains(out, "completed:") {
		t.Fatalf("expected completion timestamp after done, got\n%s", out)
	}

	// Leaving done clears the completion timestamp.
	runCLI(t, dbPath, cfgPath, "move", id, "todo")
	out = runCLI(t, dbPath, cfgPath, "show", id)
	if strings.Contains(out, "completed:") {
		t.Fatalf("expected completion timestamp cleared, got\n%s", out)
	}

	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "move", id, "parked"}, io.Discard, io.Discard)
	if err == nil {
		t.Fatal("expected invalid status error")
	}
}

// TestRunRmCommand verifies behavior for the covered scenario.
func TestRunRmCommand(t *testing.T) {
	dbPath, cfgPath := cliPaths(t)
	id := addTask(t, dbPath, cfgPath, "Throwaway")

	out := runCLI(t, dbPath, cfgPath, "rm", id)
	if !strings.Contains(out, "deleted "+id) {
		t.Fatalf("unexpected rm output %q", out)
	}

	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "show", id}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

// TestRunUsersCommand verifies behavior for the covered scenario.
func TestRunUsersCommand(t *testing.T) {
	dbPath, cfgPath := cliPaths(t)
	out := runCLI(t, dbPath, cfgPath, "users")
	for _, want := range []string{"u-amira", "Amira Fahmy", "hazem.saleh@example.com"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected roster output to contain %q, got\n%s", want, out)
		}
	}
}

// TestRunUsersFromYAMLRoster verifies behavior for the covered scenario.
func TestRunUsersFromYAMLRoster(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "luftborn.db")
	cfgPath := filepath.Join(tmp, "config.toml")
	usersPath := filepath.Join(tmp, "users.yaml")

	rosterYAML := "- id: u-maha\n  name: Maha Adel\n  avatar: MA\n  email: maha@example.com\n"
	if err := os.WriteFile(usersPath, []byte(rosterYAML), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	cfgContent := fmt.Sprintf("[directory]\nusers_path = %q\n", usersPath)
	if err := os.WriteFile(cfgPath, []byte(cfgContent), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	out := runCLI(t, dbPath, cfgPath, "users")
	if !strings.Contains(out, "Maha Adel") {
		t.Fatalf("expected YAML roster user, got\n%s", out)
	}
	if strings.Contains(out, "Amira Fahmy") {
		t.Fatalf("expected YAML roster to replace defaults, got\n%s", out)
	}
}

// TestRunStatsCommand verifies behavior for the covered scenario.
func TestRunStatsCommand(t *testing.T) {
	dbPath, cfgPath := cliPaths(t)

	out := runCLI(t, dbPath, cfgPath, "stats")
	if !strings.Contains(out, "0 tasks, 0 overdue, 0% complete") {
		t.Fatalf("unexpected empty stats output %q", out)
	}

	addTask(t, dbPath, cfgPath, "-due", "2020-01-01", "Patch", "auth")
	doneID := addTask(t, dbPath, cfgPath, "Old", "chore")
	runCLI(t, dbPath, cfgPath, "done", doneID)

	out = runCLI(t, dbPath, cfgPath, "stats")
	for _, want := range []string{"2 tasks, 1 overdue, 50% complete", "todo", "done", "(unassigned)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected stats output to contain %q, got\n%s", want, out)
		}
	}
}

// TestRunExportCommandWritesSnapshot verifies behavior for the covered scenario.
func TestRunExportCommandWritesSnapshot(t *testing.T) {
	dbPath, cfgPath := cliPaths(t)
	addTask(t, dbPath, cfgPath, "Exported", "task")

	outPath := filepath.Join(t.TempDir(), "snapshot.json")
	runCLI(t, dbPath, cfgPath, "export", "--out", outPath)

	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if snap.Version != app.SnapshotVersion {
		t.Fatalf("unexpected snapshot version %q", snap.Version)
	}
	if len(snap.Tasks) != 1 || snap.Tasks[0].Title != "Exported task" {
		t.Fatalf("unexpected snapshot tasks %#v", snap.Tasks)
	}
	if len(snap.Users) == 0 {
		t.Fatalf("expected roster users in snapshot, got %#v", snap.Users)
	}
}

// TestRunExportToStdoutAndImportErrors verifies behavior for the covered scenario.
func TestRunExportToStdoutAndImportErrors(t *testing.T) {
	dbPath, cfgPath := cliPaths(t)

	out := runCLI(t, dbPath, cfgPath, "export", "--out", "-")
	if !strings.Contains(out, "\"version\"") {
		t.Fatalf("expected snapshot json on stdout, got %q", out)
	}

	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected import error for missing --in")
	}

	badIn := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(badIn, []byte("{"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import", "--in", badIn}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected import decode error")
	}
}

// TestRunImportCommandReadsSnapshot verifies behavior for the covered scenario.
func TestRunImportCommandReadsSnapshot(t *testing.T) {
	dbPath, cfgPath := cliPaths(t)

	now := time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC)
	snap := app.Snapshot{
		Version:    app.SnapshotVersion,
		ExportedAt: now,
		Tasks: []app.SnapshotTask{
			{
				ID:        "t-import",
				Title:     "Imported Task",
				Status:    domain.StatusTodo,
				Priority:  domain.PriorityMedium,
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
	}
	content, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent() error = %v", err)
	}
	inPath := filepath.Join(t.TempDir(), "in.json")
	if err := os.WriteFile(inPath, content, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	out := runCLI(t, dbPath, cfgPath, "import", "--in", inPath)
	if !strings.Contains(out, "imported 1 tasks") {
		t.Fatalf("unexpected import output %q", out)
	}

	out = runCLI(t, dbPath, cfgPath, "list")
	if !strings.Contains(out, "t-import") || !strings.Contains(out, "Imported Task") {
		t.Fatalf("expected imported task in list output, got\n%s", out)
	}
}

// TestRunImportReplace verifies behavior for the covered scenario.
func TestRunImportReplace(t *testing.T) {
	dbPath, cfgPath := cliPaths(t)
	existingID := addTask(t, dbPath, cfgPath, "Existing")

	now := time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC)
	snap := app.Snapshot{
		Version: app.SnapshotVersion,
		Tasks: []app.SnapshotTask{
			{
				ID:        "t-replacement",
				Title:     "Replacement",
				Status:    domain.StatusTodo,
				Priority:  domain.PriorityLow,
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
	}
	content, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent() error = %v", err)
	}
	inPath := filepath.Join(t.TempDir(), "in.json")
	if err := os.WriteFile(inPath, content, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	runCLI(t, dbPath, cfgPath, "import", "--in", inPath, "--replace")

	out := runCLI(t, dbPath, cfgPath, "list")
	if strings.Contains(out, existingID) {
		t.Fatalf("expected pre-existing task removed by replace import, got\n%s", out)
	}
	if !strings.Contains(out, "Replacement") {
		t.Fatalf("expected replacement task in list output, got\n%s", out)
	}
}

// TestRunServeCommandWiresConfig verifies behavior for the covered scenario.
func TestRunServeCommandWiresConfig(t *testing.T) {
	origRunner := serveCommandRunner
	t.Cleanup(func() { serveCommandRunner = origRunner })

	var gotCfg server.Config
	var gotDeps server.Dependencies
	serveCommandRunner = func(_ context.Context, cfg server.Config, deps server.Dependencies) error {
		gotCfg = cfg
		gotDeps = deps
		return nil
	}

	dbPath, cfgPath := cliPaths(t)
	err := run(context.Background(), []string{
		"--db", dbPath, "--config", cfgPath,
		"serve", "-http", "127.0.0.1:9911", "-api-endpoint", "/api/v2", "-mcp-endpoint", "/tools",
	}, io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("run(serve) error = %v", err)
	}

	if gotCfg.HTTPBind != "127.0.0.1:9911" || gotCfg.APIEndpoint != "/api/v2" || gotCfg.MCPEndpoint != "/tools" {
		t.Fatalf("unexpected serve config %#v", gotCfg)
	}
	if gotCfg.ServerName != "luftborn" || gotCfg.ServerVersion != version {
		t.Fatalf("unexpected server identity %q %q", gotCfg.ServerName, gotCfg.ServerVersion)
	}
	if gotDeps.Service == nil || gotDeps.Clock == nil {
		t.Fatalf("expected service and clock dependencies, got %#v", gotDeps)
	}
}

// TestRunServeDefaultsFromConfig verifies behavior for the covered scenario.
func TestRunServeDefaultsFromConfig(t *testing.T) {
	origRunner := serveCommandRunner
	t.Cleanup(func() { serveCommandRunner = origRunner })

	var gotCfg server.Config
	serveCommandRunner = func(_ context.Context, cfg server.Config, _ server.Dependencies) error {
		gotCfg = cfg
		return nil
	}

	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "luftborn.db")
	cfgPath := filepath.Join(tmp, "config.toml")
	cfgContent := "[server]\nhttp_addr = \"127.0.0.1:9001\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfgContent), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "serve"}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(serve) error = %v", err)
	}
	if gotCfg.HTTPBind != "127.0.0.1:9001" {
		t.Fatalf("expected config bind address, got %q", gotCfg.HTTPBind)
	}
	if gotCfg.APIEndpoint != "/api/v1" || gotCfg.MCPEndpoint != "/mcp" {
		t.Fatalf("expected default endpoints, got %#v", gotCfg)
	}
}

// TestRunServeRejectsRemote verifies behavior for the covered scenario.
func TestRunServeRejectsRemote(t *testing.T) {
	dbPath, cfgPath := cliPaths(t)
	err := run(context.Background(), []string{
		"--db", dbPath, "--config", cfgPath, "--remote", "http://127.0.0.1:8787/api/v1", "serve",
	}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "local store") {
		t.Fatalf("expected serve to reject -remote, got %v", err)
	}
}

// TestRunRemoteCommandsUseServer runs CLI commands against a live
// HTTP handler instead of the local sqlite store.
func TestRunRemoteCommandsUseServer(t *testing.T) {
	repo, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	svc := app.NewService(repo, directory.Default(), func() string { return "t-remote-1" }, time.Now)
	handler, _, err := server.NewHandler(server.Config{}, server.Dependencies{Service: svc, Clock: time.Now})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	remote := ts.URL + "/api/v1"

	dbPath, cfgPath := cliPaths(t)

	var out strings.Builder
	args := []string{"--db", dbPath, "--config", cfgPath, "--remote", remote, "add", "-assignee", "u-lina", "Remote", "task"}
	if err := run(context.Background(), args, &out, io.Discard); err != nil {
		t.Fatalf("run(remote add) error = %v", err)
	}
	if !strings.Contains(out.String(), "created t-remote-1") {
		t.Fatalf("unexpected remote add output %q", out.String())
	}

	out.Reset()
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "--remote", remote, "list"}, &out, io.Discard); err != nil {
		t.Fatalf("run(remote list) error = %v", err)
	}
	if !strings.Contains(out.String(), "Remote task") || !strings.Contains(out.String(), "Lina Osman") {
		t.Fatalf("expected remote task in list output, got\n%s", out.String())
	}

	// The local database must stay untouched when a remote is in play.
	localOut := runCLI(t, dbPath, cfgPath, "list")
	if strings.Contains(localOut, "Remote task") {
		t.Fatalf("expected remote task absent from local store, got\n%s", localOut)
	}
}

// TestRunConfigAndDBEnvOverrides verifies behavior for the covered scenario.
func TestRunConfigAndDBEnvOverrides(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "env.db")
	cfgPath := filepath.Join(tmp, "env.toml")
	if err := os.WriteFile(cfgPath, []byte("[database]\npath = \"/tmp/ignore-me.db\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("LUFTBORN_CONFIG", cfgPath)
	t.Setenv("LUFTBORN_DB_PATH", dbPath)

	outFile := filepath.Join(tmp, "out.json")
	if err := run(context.Background(), []string{"export", "--out", outFile}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(export with env paths) error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected db created at env path, stat error %v", err)
	}
}

// TestRunPathsCommand verifies behavior for the covered scenario.
func TestRunPathsCommand(t *testing.T) {
	var out strings.Builder
	if err := run(context.Background(), []string{"--app", "luftx", "--dev", "paths"}, &out, io.Discard); err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	for _, want := range []string{"app: luftx", "dev_mode: true", "users:", "db:"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in paths output, got %q", want, out.String())
		}
	}
}

// TestParseBoolEnv verifies behavior for the covered scenario.
func TestParseBoolEnv(t *testing.T) {
	t.Setenv("LUFTBORN_BOOL_TEST", "true")
	got, ok := parseBoolEnv("LUFTBORN_BOOL_TEST")
	if !ok || !got {
		t.Fatalf("expected true bool env parse, got value=%t ok=%t", got, ok)
	}

	t.Setenv("LUFTBORN_BOOL_TEST", "not-bool")
	_, ok = parseBoolEnv("LUFTBORN_BOOL_TEST")
	if ok {
		t.Fatal("expected invalid bool env to return ok=false")
	}
}

// TestResolveAssignee verifies behavior for the covered scenario.
func TestResolveAssignee(t *testing.T) {
	roster := directory.New([]domain.User{
		{ID: "u-1", Name: "Maha Adel", Avatar: "MA", Email: "maha@example.com"},
		{ID: "u-2", Name: "Omar Said", Avatar: "OS", Email: "omar@example.com"},
		{ID: "u-3", Name: "Omar Said", Avatar: "O2", Email: "omar2@example.com"},
	})

	if got, err := resolveAssignee(roster, ""); err != nil || got != "" {
		t.Fatalf("resolveAssignee(empty) = %q, %v", got, err)
	}
	if got, err := resolveAssignee(roster, "u-1"); err != nil || got != "u-1" {
		t.Fatalf("resolveAssignee(id) = %q, %v", got, err)
	}
	if got, err := resolveAssignee(roster, "maha adel"); err != nil || got != "u-1" {
		t.Fatalf("resolveAssignee(name) = %q, %v", got, err)
	}
	if _, err := resolveAssignee(roster, "omar said"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Fatalf("expected ambiguous name error, got %v", err)
	}
	if _, err := resolveAssignee(roster, "nobody"); err == nil || !strings.Contains(err.Error(), "unknown assignee") {
		t.Fatalf("expected unknown assignee error, got %v", err)
	}
}

// TestParseTags verifies behavior for the covered scenario.
func TestParseTags(t *testing.T) {
	if got := parseTags(""); got != nil {
		t.Fatalf("parseTags(empty) = %#v, want nil", got)
	}
	got := parseTags(" infra, auth ,,urgent ")
	want := []string{"infra", "auth", "urgent"}
	if len(got) != len(want) {
		t.Fatalf("parseTags() = %#v, want %#v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("parseTags()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestSwimlaneTitles verifies behavior for the covered scenario.
func TestSwimlaneTitles(t *testing.T) {
	cfg := config.Default("/tmp/luftborn.db")
	cfg.Board.Swimlanes = []config.SwimlaneConfig{
		{ID: "todo", Title: "Backlog"},
		{ID: "in_progress", Title: ""},
		{ID: "bogus", Title: "Ignored"},
	}
	titles := swimlaneTitles(cfg)
	if titles[domain.StatusTodo] != "Backlog" {
		t.Fatalf("expected todo title override, got %#v", titles)
	}
	if _, ok := titles[domain.StatusInProgress]; ok {
		t.Fatalf("expected empty title skipped, got %#v", titles)
	}
	if len(titles) != 1 {
		t.Fatalf("expected one title override, got %#v", titles)
	}
}

// TestRunRejectsInvalidLoggingLevelFromConfig verifies behavior for the covered scenario.
func TestRunRejectsInvalidLoggingLevelFromConfig(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "luftborn.db")
	cfgPath := filepath.Join(tmp, "luftborn.toml")
	cfgContent := "[logging]\nlevel = \"verbose\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfgContent), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "stats"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "invalid logging.level") {
		t.Fatalf("expected logging level validation error, got %v", err)
	}
}

// TestRuntimeLoggerCanMuteConsoleSink verifies console output can be
// suppressed while other sinks remain active.
func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default("/tmp/luftborn.db").Logging

	logger, err := newRuntimeLogger(&console, "luftborn", false, cfg, func() time.Time {
		return time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}

	logger.Info("before")
	logger.SetConsoleEnabled(false)
	logger.Info("during")
	logger.SetConsoleEnabled(true)
	logger.Info("after")

	out := console.String()
	if !strings.Contains(out, "before") {
		t.Fatalf("expected console log to include 'before', got %q", out)
	}
	if strings.Contains(out, "during") {
		t.Fatalf("expected muted console log to omit 'during', got %q", out)
	}
	if !strings.Contains(out, "after") {
		t.Fatalf("expected console log to include 'after', got %q", out)
	}
}

// TestRunDevModeCreatesWorkspaceLogFile verifies behavior for the covered scenario.
func TestRunDevModeCreatesWorkspaceLogFile(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program { return stubProgram{} }

	workspace := t.TempDir()
	t.Chdir(workspace)

	dbPath := filepath.Join(workspace, "luftborn.db")
	cfgPath := filepath.Join(workspace, "config.toml")
	if err := run(context.Background(), []string{"--dev", "--db", dbPath, "--config", cfgPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	logDir := filepath.Join(workspace, ".luftborn", "log")
	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	foundLog := false
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".log") {
			foundLog = true
			break
		}
	}
	if !foundLog {
		t.Fatalf("expected at least one .log file in %s, got %v", logDir, entries)
	}
}

// TestRunTUIModeWritesRuntimeLogsToFileOnly verifies TUI runtime logs
// stay out of stderr and persist to the dev log file.
func TestRunTUIModeWritesRuntimeLogsToFileOnly(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program { return stubProgram{} }

	workspace := t.TempDir()
	t.Chdir(workspace)

	dbPath := filepath.Join(workspace, "luftborn.db")
	cfgPath := filepath.Join(workspace, "config.toml")
	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"--dev", "--db", dbPath, "--config", cfgPath}, io.Discard, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if got := strings.TrimSpace(stderr.String()); got != "" {
		t.Fatalf("expected no runtime stderr output in TUI mode, got %q", got)
	}

	logDir := filepath.Join(workspace, ".luftborn", "log")
	matches, err := filepath.Glob(filepath.Join(logDir, "*.log"))
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("expected a .log file in %s", logDir)
	}

	content, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "starting tui program loop") {
		t.Fatalf("expected runtime log file to include TUI lifecycle entries, got %q", string(content))
	}
}

// TestWorkspaceRootFromUsesNearestMarker verifies workspace-root resolution behavior.
func TestWorkspaceRootFromUsesNearestMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "cmd", "luftborn")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	got := workspaceRootFrom(nested)
	if filepath.Clean(got) != filepath.Clean(root) {
		t.Fatalf("expected workspace root %q, got %q", root, got)
	}
}

// TestDevLogFilePathResolvesAgainstWorkspaceRoot verifies dev log
// files anchor at the workspace root.
func TestDevLogFilePathResolvesAgainstWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "cmd", "luftborn")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	t.Chdir(nested)

	got, err := devLogFilePath("luftborn", time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("devLogFilePath() error = %v", err)
	}
	wantPrefix := filepath.Join(root, ".luftborn", "log")
	normalize := func(p string) string {
		return strings.TrimPrefix(filepath.Clean(p), "/private")
	}
	if !strings.HasPrefix(normalize(got), normalize(wantPrefix)) {
		t.Fatalf("expected log path under %q, got %q", wantPrefix, got)
	}
	if !strings.HasSuffix(got, "luftborn-20260222.log") {
		t.Fatalf("expected day-stamped log file name, got %q", got)
	}
}
