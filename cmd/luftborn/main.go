package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/glamour"
	charmLog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/adapters/client/rest"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/adapters/server"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/adapters/storage/sqlite"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/app"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/config"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/directory"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/platform"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/tui"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// program abstracts the TUI program loop for tests.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the TUI program; tests swap it out.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveCommandRunner starts the HTTP+MCP serve flow; tests swap it out.
var serveCommandRunner = func(ctx context.Context, cfg server.Config, deps server.Dependencies) error {
	return server.Run(ctx, cfg, deps)
}

const usageText = `luftborn is a task board for a three-column workflow.

usage:
  luftborn [flags] [command]

commands:
  (none)   open the board TUI
  list     print tasks as a table (-status, -priority, -assignee, -search, -overdue)
  add      create a task: add [flags] <title>
  show     print one task with its rendered description: show <task-id>
  edit     change task fields: edit [flags] <task-id>
  move     move a task to another column: move <task-id> <todo|in_progress|done>
  done     shorthand for move to done: done <task-id>
  rm       delete a task: rm <task-id>
  users    print the assignee roster
  stats    print board statistics
  export   write a JSON snapshot (-out, '-' for stdout)
  import   load a JSON snapshot (-in, -replace)
  serve    run the HTTP API + MCP server (-http, -api-endpoint, -mcp-endpoint)
  paths    print resolved config/data paths
  version  print the version

flags:
  -config  path to config TOML
  -db      path to sqlite database
  -app     application name for config/data path resolution
  -dev     use dev mode paths (<app>-dev)
  -remote  base URL of a running luftborn server (replaces the local store)
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run dispatches one CLI invocation. It resolves paths and config,
// assembles the store stack, and hands off to the selected command.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("luftborn", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath string
		dbPath     string
		appName    string
		remoteURL  string
		devMode    bool
		showVer    bool
	)
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("LUFTBORN_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	appName = envOr("LUFTBORN_APP_NAME", "luftborn")
	fs.StringVar(&configPath, "config", "", "path to config TOML")
	fs.StringVar(&dbPath, "db", "", "path to sqlite database")
	fs.StringVar(&appName, "app", appName, "application name for config/data path resolution")
	fs.StringVar(&remoteURL, "remote", "", "base URL of a running luftborn server")
	fs.BoolVar(&devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	fs.BoolVar(&showVer, "version", false, "show version")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVer {
		_, _ = fmt.Fprintf(stdout, "luftborn %s\n", version)
		return nil
	}

	paths, err := platform.DefaultPathsWithOptions(platform.Options{AppName: appName, DevMode: devMode})
	if err != nil {
		return err
	}

	command := firstArg(fs.Args())
	switch command {
	case "version":
		_, _ = fmt.Fprintf(stdout, "luftborn %s\n", version)
		return nil
	case "help":
		_, _ = fmt.Fprint(stdout, usageText)
		return nil
	case "paths":
		_, _ = fmt.Fprintf(stdout, "app: %s\n", appName)
		_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", devMode)
		_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
		_, _ = fmt.Fprintf(stdout, "users: %s\n", paths.UsersPath)
		_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
		_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
		return nil
	case "", "list", "add", "show", "edit", "move", "done", "rm", "users", "stats", "export", "import", "serve":
		// Continue.
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	dbOverridden := strings.TrimSpace(dbPath) != ""
	if configPath == "" {
		configPath = envOr("LUFTBORN_CONFIG", paths.ConfigPath)
	}
	if !dbOverridden {
		if env := strings.TrimSpace(os.Getenv("LUFTBORN_DB_PATH")); env != "" {
			dbPath, dbOverridden = env, true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(stderr, appName, devMode, cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "" {
		// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the board is active.
		logger.SetConsoleEnabled(false)
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil && logger.consoleEnabled {
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	logger.Info("startup configuration resolved", "app", appName, "dev_mode", devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", dbPath)
	logger.Info("configuration loaded", "config_path", configPath, "db_path", cfg.Database.Path, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	remote := strings.TrimSpace(remoteURL)
	if remote == "" {
		remote = strings.TrimSpace(cfg.Client.BaseURL)
	}
	if remote != "" && command == "serve" {
		return fmt.Errorf("serve runs against the local store; drop -remote and client.base_url")
	}

	var (
		repo   app.Repository
		roster *directory.Roster
	)
	if remote != "" {
		restRepo, err := rest.NewRepository(remote, nil)
		if err != nil {
			return fmt.Errorf("configure remote repository: %w", err)
		}
		logger.Info("using remote repository", "base_url", remote)
		users, err := restRepo.Users(ctx)
		if err != nil {
			logger.Error("remote roster fetch failed", "base_url", remote, "err", err)
			return fmt.Errorf("fetch roster from %s: %w", remote, err)
		}
		repo = restRepo
		roster = directory.New(users)
	} else {
		logger.Info("opening sqlite repository", "db_path", cfg.Database.Path)
		sqliteRepo, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
			return fmt.Errorf("open sqlite repository: %w", err)
		}
		defer func() {
			if closeErr := sqliteRepo.Close(); closeErr != nil {
				logger.Warn("sqlite close failed", "db_path", cfg.Database.Path, "err", closeErr)
			}
		}()
		logger.Info("sqlite repository ready", "db_path", cfg.Database.Path, "migrations", "ensured")

		usersPath := strings.TrimSpace(cfg.Directory.UsersPath)
		if usersPath == "" {
			usersPath = paths.UsersPath
		}
		loaded, err := directory.Load(usersPath)
		if err != nil {
			logger.Error("roster load failed", "users_path", usersPath, "err", err)
			return fmt.Errorf("load user roster: %w", err)
		}
		repo = sqliteRepo
		roster = loaded
	}
	logger.Debug("user roster ready", "users", len(roster.Users()))

	svc := app.NewService(repo, roster, uuid.NewString, time.Now)

	runCommand := func(name string, fn func() error) error {
		logger.Info("command flow start", "command", name)
		if err := fn(); err != nil {
			logger.Error("command flow failed", "command", name, "err", err)
			return fmt.Errorf("run %s command: %w", name, err)
		}
		logger.Info("command flow complete", "command", name)
		return nil
	}

	switch command {
	case "":
		logger.Info("command flow start", "command", "tui")
	case "list":
		return runCommand("list", func() error { return runList(ctx, svc, roster, fs.Args()[1:], stdout, time.Now()) })
	case "add":
		return runCommand("add", func() error { return runAdd(ctx, svc, roster, fs.Args()[1:], stdout) })
	case "show":
		return runCommand("show", func() error { return runShow(ctx, svc, fs.Args()[1:], stdout, time.Now()) })
	case "edit":
		return runCommand("edit", func() error { return runEdit(ctx, svc, roster, fs.Args()[1:], stdout) })
	case "move":
		return runCommand("move", func() error { return runMove(ctx, svc, fs.Args()[1:], stdout) })
	case "done":
		return runCommand("done", func() error { return runDone(ctx, svc, fs.Args()[1:], stdout) })
	case "rm":
		return runCommand("rm", func() error { return runRm(ctx, svc, fs.Args()[1:], stdout) })
	case "users":
		return runCommand("users", func() error { return runUsers(svc, fs.Args()[1:], stdout) })
	case "stats":
		return runCommand("stats", func() error { return runStats(ctx, svc, fs.Args()[1:], stdout) })
	case "export":
		return runCommand("export", func() error { return runExport(ctx, repo, roster, fs.Args()[1:], stdout) })
	case "import":
		return runCommand("import", func() error { return runImport(ctx, repo, fs.Args()[1:], stdout) })
	case "serve":
		return runCommand("serve", func() error { return runServe(ctx, svc, cfg, fs.Args()[1:], appName) })
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	store := app.NewStore(repo, roster, uuid.NewString, time.Now)
	m := tui.NewModel(store, tui.WithColumnTitles(swimlaneTitles(cfg)))
	logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// runList prints tasks as a table, honoring the filter flags.
func runList(ctx context.Context, svc *app.Service, roster *directory.Roster, args []string, stdout io.Writer, now time.Time) error {
	fs := flag.NewFlagSet("luftborn list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		statusRaw   string
		priorityRaw string
		assigneeRaw string
		search      string
		overdueOnly bool
	)
	fs.StringVar(&statusRaw, "status", "", "status filter (todo|in_progress|done|all)")
	fs.StringVar(&priorityRaw, "priority", "", "priority filter (low|medium|high|all)")
	fs.StringVar(&assigneeRaw, "assignee", "", "assignee id or name")
	fs.StringVar(&search, "search", "", "case-insensitive title/description substring")
	fs.BoolVar(&overdueOnly, "overdue", false, "only overdue tasks")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse list flags: %w", err)
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected list arguments: %v", fs.Args())
	}

	status, err := domain.ParseStatusFilter(statusRaw)
	if err != nil {
		return err
	}
	priority, err := domain.ParsePriorityFilter(priorityRaw)
	if err != nil {
		return err
	}
	assigneeID, err := resolveAssignee(roster, assigneeRaw)
	if err != nil {
		return err
	}

	tasks, err := svc.List(ctx, app.ListFilter{Status: status, Priority: priority, AssigneeID: assigneeID})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	// The repository treats the filter as a hint, so every axis is
	// re-applied here before anything reaches the table.
	filter := domain.Filter{Status: status, Priority: priority, Search: search}
	rows := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if !filter.Matches(task) {
			continue
		}
		if assigneeID != "" && task.Assignee.ID != assigneeID {
			continue
		}
		if overdueOnly && !task.Overdue(now) {
			continue
		}
		rows = append(rows, task)
	}
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(stdout, "no tasks match")
		return nil
	}

	renderTaskTable(stdout, rows, now)
	_, _ = fmt.Fprintf(stdout, "%d of %d tasks\n", len(rows), len(tasks))
	return nil
}

func runAdd(ctx context.Context, svc *app.Service, roster *directory.Roster, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("luftborn add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		desc        string
		statusRaw   string
		priorityRaw string
		dueRaw      string
		assigneeRaw string
		tagsRaw     string
	)
	fs.StringVar(&desc, "desc", "", "markdown description")
	fs.StringVar(&statusRaw, "status", "todo", "starting column (todo|in_progress|done)")
	fs.StringVar(&priorityRaw, "priority", "medium", "priority (low|medium|high)")
	fs.StringVar(&dueRaw, "due", "", "due date (YYYY-MM-DD)")
	fs.StringVar(&assigneeRaw, "assignee", "", "assignee id or name")
	fs.StringVar(&tagsRaw, "tags", "", "comma-separated tags")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse add flags: %w", err)
	}
	title := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if title == "" {
		return fmt.Errorf("usage: luftborn add [flags] <title>")
	}

	status, err := domain.ParseStatus(statusRaw)
	if err != nil {
		return err
	}
	priority, err := domain.ParsePriority(priorityRaw)
	if err != nil {
		return err
	}
	due, err := domain.ParseDate(dueRaw)
	if err != nil {
		return err
	}
	assigneeID, err := resolveAssignee(roster, assigneeRaw)
	if err != nil {
		return err
	}

	task, err := svc.Create(ctx, app.CreateTaskInput{
		Title:       title,
		Description: desc,
		Status:      status,
		Priority:    priority,
		DueDate:     due,
		AssigneeID:  assigneeID,
		Tags:        parseTags(tagsRaw),
	})
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "created %s %q\n", task.ID, task.Title)
	return nil
}

// runShow prints one task in full with the description rendered as
// markdown.
func runShow(ctx context.Context, svc *app.Service, args []string, stdout io.Writer, now time.Time) error {
	fs := flag.NewFlagSet("luftborn show", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse show flags: %w", err)
	}
	id := firstArg(fs.Args())
	if id == "" {
		return fmt.Errorf("usage: luftborn show <task-id>")
	}
	if len(fs.Args()) > 1 {
		return fmt.Errorf("unexpected show arguments: %v", fs.Args()[1:])
	}

	task, err := svc.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get task %s: %w", id, err)
	}

	_, _ = fmt.Fprintln(stdout, text.Bold.Sprint(task.Title))
	_, _ = fmt.Fprintf(stdout, "%-10s %s\n", "id:", task.ID)
	_, _ = fmt.Fprintf(stdout, "%-10s %s\n", "status:", statusCell(task.Status))
	_, _ = fmt.Fprintf(stdout, "%-10s %s\n", "priority:", priorityCell(task.Priority))
	if !task.DueDate.IsZero() {
		_, _ = fmt.Fprintf(stdout, "%-10s %s\n", "due:", dueCell(task, now))
	}
	if !task.Assignee.IsZero() {
		_, _ = fmt.Fprintf(stdout, "%-10s %s <%s>\n", "assignee:", task.Assignee.Name, task.Assignee.Email)
	}
	if len(task.Tags) > 0 {
		_, _ = fmt.Fprintf(stdout, "%-10s %s\n", "tags:", strings.Join(task.Tags, ", "))
	}
	_, _ = fmt.Fprintf(stdout, "%-10s %s\n", "created:", task.CreatedAt.Local().Format("2006-01-02 15:04"))
	_, _ = fmt.Fprintf(stdout, "%-10s %s\n", "updated:", task.UpdatedAt.Local().Format("2006-01-02 15:04"))
	if task.CompletedAt != nil {
		_, _ = fmt.Fprintf(stdout, "%-10s %s\n", "completed:", task.CompletedAt.Local().Format("2006-01-02 15:04"))
	}
	if desc := strings.TrimSpace(task.Description); desc != "" {
		_, _ = fmt.Fprintln(stdout)
		_, _ = fmt.Fprintln(stdout, renderMarkdown(desc))
	}
	return nil
}

// runEdit patches one task. Only the flags the caller passed become
// part of the change set; an explicitly empty value clears the field
// where the domain allows it.
func runEdit(ctx context.Context, svc *app.Service, roster *directory.Roster, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("luftborn edit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		title       string
		desc        string
		statusRaw   string
		priorityRaw string
		dueRaw      string
		assigneeRaw string
		tagsRaw     string
	)
	fs.StringVar(&title, "title", "", "new title")
	fs.StringVar(&desc, "desc", "", "new description ('' clears)")
	fs.StringVar(&statusRaw, "status", "", "new status (todo|in_progress|done)")
	fs.StringVar(&priorityRaw, "priority", "", "new priority (low|medium|high)")
	fs.StringVar(&dueRaw, "due", "", "new due date (YYYY-MM-DD, '' clears)")
	fs.StringVar(&assigneeRaw, "assignee", "", "new assignee id or name ('' clears)")
	fs.StringVar(&tagsRaw, "tags", "", "new comma-separated tags ('' clears)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse edit flags: %w", err)
	}
	id := firstArg(fs.Args())
	if id == "" {
		return fmt.Errorf("usage: luftborn edit [flags] <task-id>")
	}
	if len(fs.Args()) > 1 {
		return fmt.Errorf("unexpected edit arguments: %v", fs.Args()[1:])
	}

	var changes app.TaskChanges
	var visitErr error
	fs.Visit(func(f *flag.Flag) {
		if visitErr != nil {
			return
		}
		switch f.Name {
		case "title":
			changes.Title = &title
		case "desc":
			changes.Description = &desc
		case "status":
			status, err := domain.ParseStatus(statusRaw)
			if err != nil {
				visitErr = err
				return
			}
			changes.Status = &status
		case "priority":
			priority, err := domain.ParsePriority(priorityRaw)
			if err != nil {
				visitErr = err
				return
			}
			changes.Priority = &priority
		case "due":
			due, err := domain.ParseDate(dueRaw)
			if err != nil {
				visitErr = err
				return
			}
			changes.DueDate = &due
		case "assignee":
			assigneeID, err := resolveAssignee(roster, assigneeRaw)
			if err != nil {
				visitErr = err
				return
			}
			changes.AssigneeID = &assigneeID
		case "tags":
			tags := parseTags(tagsRaw)
			changes.Tags = &tags
		}
	})
	if visitErr != nil {
		return visitErr
	}
	if changes == (app.TaskChanges{}) {
		return fmt.Errorf("nothing to change; pass at least one field flag")
	}

	task, err := svc.Update(ctx, id, changes)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	_, _ = fmt.Fprintf(stdout, "updated %s %q\n", task.ID, task.Title)
	return nil
}

func runMove(ctx context.Context, svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("luftborn move", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse move flags: %w", err)
	}
	argv := fs.Args()
	if len(argv) != 2 {
		return fmt.Errorf("usage: luftborn move <task-id> <todo|in_progress|done>")
	}
	status, err := domain.ParseStatus(argv[1])
	if err != nil {
		return err
	}
	task, err := svc.Move(ctx, argv[0], status)
	if err != nil {
		return fmt.Errorf("move task %s: %w", argv[0], err)
	}
	_, _ = fmt.Fprintf(stdout, "moved %s to %s\n", task.ID, task.Status)
	return nil
}

// runDone is shorthand for moving a task to done.
func runDone(ctx context.Context, svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("luftborn done", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse done flags: %w", err)
	}
	id := firstArg(fs.Args())
	if id == "" {
		return fmt.Errorf("usage: luftborn done <task-id>")
	}
	if len(fs.Args()) > 1 {
		return fmt.Errorf("unexpected done arguments: %v", fs.Args()[1:])
	}
	task, err := svc.Move(ctx, id, domain.StatusDone)
	if err != nil {
		return fmt.Errorf("complete task %s: %w", id, err)
	}
	_, _ = fmt.Fprintf(stdout, "completed %s %q\n", task.ID, task.Title)
	return nil
}

func runRm(ctx context.Context, svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("luftborn rm", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse rm flags: %w", err)
	}
	id := firstArg(fs.Args())
	if id == "" {
		return fmt.Errorf("usage: luftborn rm <task-id>")
	}
	if len(fs.Args()) > 1 {
		return fmt.Errorf("unexpected rm arguments: %v", fs.Args()[1:])
	}
	if err := svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	_, _ = fmt.Fprintf(stdout, "deleted %s\n", id)
	return nil
}

func runUsers(svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("luftborn users", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse users flags: %w", err)
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected users arguments: %v", fs.Args())
	}

	users := svc.Users()
	if len(users) == 0 {
		_, _ = fmt.Fprintln(stdout, "no users in the roster")
		return nil
	}
	t := newTableWriter(stdout)
	t.AppendHeader(table.Row{"ID", "Name", "Avatar", "Email"})
	for _, user := range users {
		t.AppendRow(table.Row{user.ID, user.Name, user.Avatar, user.Email})
	}
	t.Render()
	return nil
}

// runStats prints board totals and the per-assignee tally.
func runStats(ctx context.Context, svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("luftborn stats", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse stats flags: %w", err)
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected stats arguments: %v", fs.Args())
	}

	summary, err := svc.Summary(ctx)
	if err != nil {
		return fmt.Errorf("summarize tasks: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "%d tasks, %d overdue, %.0f%% complete\n\n", summary.Total, summary.Overdue, summary.CompletionRate*100)

	breakdown := newTableWriter(stdout)
	breakdown.AppendHeader(table.Row{"Bucket", "Tasks"})
	for _, status := range domain.Statuses() {
		breakdown.AppendRow(table.Row{statusCell(status), summary.ByStatus[status]})
	}
	breakdown.AppendSeparator()
	for _, priority := range domain.Priorities() {
		breakdown.AppendRow(table.Row{priorityCell(priority), summary.ByPriority[priority]})
	}
	breakdown.Render()

	if len(summary.Assignees) == 0 {
		return nil
	}
	_, _ = fmt.Fprintln(stdout)
	assignees := newTableWriter(stdout)
	assignees.AppendHeader(table.Row{"Assignee", "Done", "Total"})
	for _, tally := range summary.Assignees {
		name := tally.User.Name
		if tally.User.IsZero() {
			name = "(unassigned)"
		}
		assignees.AppendRow(table.Row{name, tally.Done, tally.Total})
	}
	assignees.Render()
	return nil
}

// runExport serializes the full dataset as indented JSON, to stdout or
// to the -out file.
func runExport(ctx context.Context, repo app.Repository, roster *directory.Roster, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("luftborn export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	outPath := fs.String("out", "-", "output file path ('-' for stdout)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse export flags: %w", err)
	}
	if rest := fs.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected export arguments: %v", rest)
	}

	snap, err := app.ExportSnapshot(ctx, repo, roster, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot json: %w", err)
	}
	encoded = append(encoded, '\n')

	if *outPath == "-" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(*outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// runImport loads a snapshot file into the repository. -replace clears
// rows absent from the snapshot first.
func runImport(ctx context.Context, repo app.Repository, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("luftborn import", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	inPath := fs.String("in", "", "input snapshot JSON file")
	replace := fs.Bool("replace", false, "delete existing tasks before importing")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse import flags: %w", err)
	}
	if rest := fs.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected import arguments: %v", rest)
	}
	if *inPath == "" {
		return fmt.Errorf("--in is required")
	}

	content, err := os.ReadFile(*inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return fmt.Errorf("decode snapshot json: %w", err)
	}
	count, err := app.ImportSnapshot(ctx, repo, snap, *replace)
	if err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "imported %d tasks\n", count)
	return nil
}

// runServe hosts the HTTP API and MCP endpoints until ctx ends.
func runServe(ctx context.Context, svc *app.Service, cfg config.Config, args []string, appName string) error {
	fs := flag.NewFlagSet("luftborn serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		httpBind    string
		apiEndpoint string
		mcpEndpoint string
	)
	fs.StringVar(&httpBind, "http", cfg.Server.HTTPAddr, "HTTP listen address")
	fs.StringVar(&apiEndpoint, "api-endpoint", cfg.Server.APIEndpoint, "HTTP API base endpoint")
	fs.StringVar(&mcpEndpoint, "mcp-endpoint", cfg.Server.MCPEndpoint, "MCP streamable HTTP endpoint")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse serve flags: %w", err)
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected serve arguments: %v", fs.Args())
	}

	return serveCommandRunner(ctx, server.Config{
		HTTPBind:      httpBind,
		APIEndpoint:   apiEndpoint,
		MCPEndpoint:   mcpEndpoint,
		ServerName:    appName,
		ServerVersion: version,
	}, server.Dependencies{
		Service: svc,
		Clock:   time.Now,
	})
}

// newTableWriter builds the shared table style for CLI output.
func newTableWriter(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = false
	return t
}

// renderTaskTable prints tasks as one table in list order.
func renderTaskTable(w io.Writer, tasks []domain.Task, now time.Time) {
	t := newTableWriter(w)
	t.AppendHeader(table.Row{"ID", "Title", "Status", "Priority", "Due", "Assignee", "Tags"})
	for _, task := range tasks {
		assignee := ""
		if !task.Assignee.IsZero() {
			assignee = task.Assignee.Name
		}
		t.AppendRow(table.Row{
			task.ID,
			task.Title,
			statusCell(task.Status),
			priorityCell(task.Priority),
			dueCell(task, now),
			assignee,
			strings.Join(task.Tags, ", "),
		})
	}
	t.Render()
}

// statusCell colors a status value for table output.
func statusCell(status domain.Status) string {
	switch status {
	case domain.StatusTodo:
		return text.FgHiBlue.Sprint(string(status))
	case domain.StatusInProgress:
		return text.FgHiYellow.Sprint(string(status))
	case domain.StatusDone:
		return text.FgHiGreen.Sprint(string(status))
	default:
		return string(status)
	}
}

// priorityCell colors a priority value for table output.
func priorityCell(priority domain.Priority) string {
	switch priority {
	case domain.PriorityHigh:
		return text.FgHiRed.Sprint(string(priority))
	case domain.PriorityMedium:
		return text.FgYellow.Sprint(string(priority))
	case domain.PriorityLow:
		return text.FgCyan.Sprint(string(priority))
	default:
		return string(priority)
	}
}

// dueCell formats a due date, flagging overdue tasks.
func dueCell(task domain.Task, now time.Time) string {
	if task.DueDate.IsZero() {
		return ""
	}
	if task.Overdue(now) {
		return text.FgHiRed.Sprint(task.DueDate.String() + " (overdue)")
	}
	return task.DueDate.String()
}

// renderMarkdown renders a task description for terminal output,
// falling back to the raw text when rendering fails.
func renderMarkdown(source string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return source
	}
	rendered, err := renderer.Render(source)
	if err != nil {
		return source
	}
	return strings.TrimRight(rendered, "\n")
}

// resolveAssignee maps a CLI assignee argument onto a roster id. Exact
// id matches win; otherwise a unique case-insensitive name match is
// accepted. The empty argument means unassigned.
func resolveAssignee(roster *directory.Roster, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if _, ok := roster.UserByID(raw); ok {
		return raw, nil
	}
	var matchID string
	matches := 0
	for _, user := range roster.Users() {
		if strings.EqualFold(user.Name, raw) {
			matchID = user.ID
			matches++
		}
	}
	switch matches {
	case 1:
		return matchID, nil
	case 0:
		return "", fmt.Errorf("unknown assignee %q; see 'luftborn users'", raw)
	default:
		return "", fmt.Errorf("assignee %q is ambiguous; use the id from 'luftborn users'", raw)
	}
}

// parseTags splits a comma-separated tag list, dropping empties.
func parseTags(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tags = append(tags, part)
	}
	return tags
}

// swimlaneTitles maps configured swimlane titles onto board statuses.
func swimlaneTitles(cfg config.Config) map[domain.Status]string {
	titles := make(map[domain.Status]string, len(cfg.Board.Swimlanes))
	for _, lane := range cfg.Board.Swimlanes {
		status, err := domain.ParseStatus(lane.ID)
		if err != nil {
			continue
		}
		if title := strings.TrimSpace(lane.Title); title != "" {
			titles[status] = title
		}
	}
	return titles
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// envOr returns the trimmed environment value, or fallback when unset.
func envOr(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

// parseBoolEnv reads a boolean environment variable, reporting whether
// a usable value was present.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// runtimeLogger fans log events to a styled console sink and an
// optional dev-file sink.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	devLog         string
}

// newRuntimeLogger builds the runtime logging fan-out. Every run gets a
// styled console sink on stderr; dev mode adds a logfmt file sink under
// the workspace so TUI sessions keep a trail off the terminal.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, now func() time.Time) (*runtimeLogger, error) {
	levelRaw := strings.TrimSpace(cfg.Level)
	if levelRaw == "" {
		levelRaw = "info"
	}
	level, err := charmLog.ParseLevel(levelRaw)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if now == nil {
		now = time.Now
	}
	if stderr == nil {
		stderr = io.Discard
	}

	console := newSink(stderr, level, appName, charmLog.TextFormatter)
	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{console},
		consoleSink:    console,
		consoleEnabled: true,
	}
	if !devMode {
		return logger, nil
	}

	devLogPath, err := devLogFilePath(appName, now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve dev log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(devLogPath), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	logFile, err := os.OpenFile(devLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}

	// Logfmt keeps the file sink parseable; styling stays on the console.
	logger.sinks = append(logger.sinks, newSink(logFile, level, appName, charmLog.LogfmtFormatter))
	logger.closeFile = logFile.Close
	logger.devLog = devLogPath
	return logger, nil
}

func newSink(w io.Writer, level charmLog.Level, prefix string, formatter charmLog.Formatter) *charmLog.Logger {
	return charmLog.NewWithOptions(w, charmLog.Options{
		Level:           level,
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       formatter,
	})
}

// DevLogPath returns the active dev log file path, empty outside dev mode.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devLog
}

// Close releases the dev-file sink if one was opened.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// SetConsoleEnabled mutes or restores the console sink. The TUI mutes
// it while the program loop owns the terminal.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

func (l *runtimeLogger) Debug(msg string, keyvals ...any) {
	l.emit(func(sink *charmLog.Logger) { sink.Debug(msg, keyvals...) })
}

func (l *runtimeLogger) Info(msg string, keyvals ...any) {
	l.emit(func(sink *charmLog.Logger) { sink.Info(msg, keyvals...) })
}

func (l *runtimeLogger) Warn(msg string, keyvals ...any) {
	l.emit(func(sink *charmLog.Logger) { sink.Warn(msg, keyvals...) })
}

func (l *runtimeLogger) Error(msg string, keyvals ...any) {
	l.emit(func(sink *charmLog.Logger) { sink.Error(msg, keyvals...) })
}

// emit fans one event to every active sink, skipping the console while
// it is muted.
func (l *runtimeLogger) emit(write func(*charmLog.Logger)) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if sink == nil {
			continue
		}
		if sink == l.consoleSink && !l.consoleEnabled {
			continue
		}
		write(sink)
	}
}

// devLogFilePath anchors the day-stamped dev log under the nearest
// workspace root so runs from subdirectories share one file.
func devLogFilePath(appName string, now time.Time) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.log", sanitizeLogFileStem(appName), now.Format("20060102"))
	return filepath.Join(workspaceRootFrom(cwd), ".luftborn", "log", name), nil
}

// workspaceRootFrom walks up from start to the nearest directory that
// holds a go.mod or .git entry, falling back to start itself.
func workspaceRootFrom(start string) string {
	start = filepath.Clean(strings.TrimSpace(start))
	if start == "" {
		return "."
	}
	for dir := start; ; dir = filepath.Dir(dir) {
		if isWorkspaceRoot(dir) {
			return dir
		}
		if filepath.Dir(dir) == dir {
			return start
		}
	}
}

func isWorkspaceRoot(dir string) bool {
	for _, marker := range []string{"go.mod", ".git"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// sanitizeLogFileStem turns the app name into a safe file-name segment.
func sanitizeLogFileStem(appName string) string {
	replacer := strings.NewReplacer("/", "-", `\`, "-", ":", "-", " ", "-")
	stem := strings.Trim(replacer.Replace(strings.TrimSpace(appName)), "-")
	if stem == "" {
		return "luftborn"
	}
	return stem
}
