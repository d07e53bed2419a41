package tui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"slices"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/app"
	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"
)

type inputMode int

const (
	modeNone inputMode = iota
	modeAddTask
	modeEditTask
	modeSearch
	modeTaskInfo
	modeConfirmDelete
	modeStats
)

const (
	taskFieldTitle = iota
	taskFieldDescription
	taskFieldPriority
	taskFieldDue
	taskFieldTags
	taskFieldAssignee
)

var taskFormFields = []string{"title", "description", "priority", "due", "tags", "assignee"}

var priorityOptions = domain.Priorities()

// boardStatuses fixes the column order: to do, in progress, done.
var boardStatuses = domain.Statuses()

// loadedMsg carries a refreshed task list and roster back into Update.
type loadedMsg struct {
	tasks []domain.Task
	users []domain.User
	err   error
}

// actionMsg reports the outcome of a mutation dispatched from a key handler.
type actionMsg struct {
	err         error
	status      string
	reload      bool
	focusTaskID string
}

// Model is the kanban board program. It renders three status columns from
// the store's cached tasks and funnels every mutation through the store so
// the board always reflects what the repository accepted.
type Model struct {
	store   *app.Store
	filters *app.FilterState
	dnd     *app.DragDropHandler

	ready  bool
	width  int
	height int
	err    error

	status string

	help help.Model
	keys keyMap

	cardFields    CardFieldConfig
	confirmDelete bool
	columnTitles  map[domain.Status]string

	tasks  []domain.Task
	users  []domain.User
	board  app.BoardView
	filter domain.Filter

	selectedColumn int
	selectedTask   int

	mode        inputMode
	searchInput textinput.Model

	formInputs    []textinput.Model
	formFocus     int
	priorityIdx   int
	assigneeIdx   int
	editingTaskID string

	taskInfoTaskID string
	pendingDelete  domain.Task
	confirmChoice  int

	pendingFocusTaskID string

	markdown *markdownRenderer
}

// NewModel constructs the board over a task store. The filter state and
// drag-drop handler are owned by the model; callers share only the store.
func NewModel(store *app.Store, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false

	searchInput := textinput.New()
	searchInput.Prompt = ""
	searchInput.Placeholder = "title or description"
	searchInput.CharLimit = 120

	m := Model{
		store:         store,
		filters:       app.NewFilterState(),
		dnd:           app.NewDragDropHandler(store),
		status:        "loading...",
		help:          h,
		keys:          newKeyMap(),
		cardFields:    DefaultCardFieldConfig(),
		confirmDelete: true,
		searchInput:   searchInput,
		board:         app.ComputeBoard(nil, domain.Filter{}),
		markdown:      &markdownRenderer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// loadData refreshes the store and snapshots its cache for rendering.
func (m Model) loadData() tea.Msg {
	if err := m.store.Refresh(context.Background()); err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{tasks: m.store.Tasks(), users: m.store.Users()}
}

// Update handles update.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.tasks = msg.tasks
		m.users = msg.users
		m.recomputeBoard()
		if m.pendingFocusTaskID != "" {
			m.focusTaskByID(m.pendingFocusTaskID)
			m.pendingFocusTaskID = ""
		}
		m.clampSelections()
		if m.status == "loading..." || m.status == "reloading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			if statusLineError(msg.err) {
				m.status = msg.err.Error()
				return m, nil
			}
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.focusTaskID != "" {
			m.pendingFocusTaskID = msg.focusTaskID
		}
		if msg.reload {
			return m, m.loadData
		}
		return m, nil

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	default:
		return m, nil
	}
}

// recomputeBoard re-derives the visible board from the cached tasks and the
// current filter snapshot. Filtering is local; it never hits the store.
func (m *Model) recomputeBoard() {
	m.filter = m.filters.Snapshot()
	m.board = app.ComputeBoard(m.tasks, m.filter)
}

// handleNormalModeKey routes board-level keys while no input mode is
// active.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case msg.String() == "esc":
		if m.help.ShowAll {
			m.help.ShowAll = false
			return m, nil
		}
		if !m.filter.IsZero() {
			m.filters.Reset()
			m.recomputeBoard()
			m.clampSelections()
			m.status = "filters cleared"
			return m, nil
		}
		return m, nil

	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData

	case key.Matches(msg, m.keys.moveLeft):
		m.selectedColumn = clamp(m.selectedColumn-1, 0, len(boardStatuses)-1)
		m.selectedTask = 0
		m.clampSelections()
		return m, nil

	case key.Matches(msg, m.keys.moveRight):
		m.selectedColumn = clamp(m.selectedColumn+1, 0, len(boardStatuses)-1)
		m.selectedTask = 0
		m.clampSelections()
		return m, nil

	case key.Matches(msg, m.keys.moveUp):
		if m.selectedTask > 0 {
			m.selectedTask--
		}
		return m, nil

	case key.Matches(msg, m.keys.moveDown):
		if m.selectedTask < len(m.currentColumnTasks())-1 {
			m.selectedTask++
		}
		return m, nil

	case key.Matches(msg, m.keys.addTask):
		cmd := m.startTaskForm(nil)
		return m, cmd

	case key.Matches(msg, m.keys.taskInfo):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.mode = modeTaskInfo
		m.taskInfoTaskID = task.ID
		m.status = "task info"
		return m, nil

	case key.Matches(msg, m.keys.editTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		cmd := m.startTaskForm(&task)
		return m, cmd

	case key.Matches(msg, m.keys.deleteTask):
		return m.confirmDeleteAction()

	case key.Matches(msg, m.keys.moveTaskLeft):
		return m.moveSelectedTask(-1)

	case key.Matches(msg, m.keys.moveTaskRight):
		return m.moveSelectedTask(1)

	case key.Matches(msg, m.keys.reorderUp):
		return m.reorderSelectedTask(-1)

	case key.Matches(msg, m.keys.reorderDown):
		return m.reorderSelectedTask(1)

	case key.Matches(msg, m.keys.search):
		cmd := m.startSearch()
		return m, cmd

	case key.Matches(msg, m.keys.statusFilter):
		m.cycleStatusFilter()
		return m, nil

	case key.Matches(msg, m.keys.priorityFilter):
		m.cyclePriorityFilter()
		return m, nil

	case key.Matches(msg, m.keys.clearFilters):
		m.filters.Reset()
		m.recomputeBoard()
		m.clampSelections()
		m.status = "filters cleared"
		return m, nil

	case key.Matches(msg, m.keys.stats):
		m.mode = modeStats
		m.status = "stats"
		return m, nil

	default:
		return m, nil
	}
}

// cycleStatusFilter advances the status axis: all → to do → in progress → done.
func (m *Model) cycleStatusFilter() {
	order := append([]domain.Status{""}, boardStatuses...)
	idx := 0
	for i, status := range order {
		if status == m.filter.Status {
			idx = i
			break
		}
	}
	next := order[wrapIndex(idx, 1, len(order))]
	m.filters.SetStatus(next)
	m.recomputeBoard()
	m.clampSelections()
	if next == "" {
		m.status = "status filter cleared"
	} else {
		m.status = "status filter: " + string(next)
	}
}

// cyclePriorityFilter advances the priority axis: all → low → medium → high.
func (m *Model) cyclePriorityFilter() {
	order := append([]domain.Priority{""}, priorityOptions...)
	idx := 0
	for i, priority := range order {
		if priority == m.filter.Priority {
			idx = i
			break
		}
	}
	next := order[wrapIndex(idx, 1, len(order))]
	m.filters.SetPriority(next)
	m.recomputeBoard()
	m.clampSelections()
	if next == "" {
		m.status = "priority filter cleared"
	} else {
		m.status = "priority filter: " + string(next)
	}
}

// startSearch opens the search modal seeded with the active query.
func (m *Model) startSearch() tea.Cmd {
	m.mode = modeSearch
	m.searchInput.SetValue(m.filter.Search)
	m.status = "search"
	return m.searchInput.Focus()
}

// applySearch commits the query to the filter state and recomputes the board.
func (m Model) applySearch() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.searchInput.Value())
	m.mode = modeNone
	m.searchInput.Blur()
	m.filters.SetSearch(query)
	m.recomputeBoard()
	m.clampSelections()
	if query == "" {
		m.status = "search cleared"
	} else {
		m.status = fmt.Sprintf("%d matches", m.board.Total())
	}
	return m, nil
}

// startTaskForm opens the task modal. A nil task means create; otherwise the
// form is prefilled from the task and submits a sparse update.
func (m *Model) startTaskForm(task *domain.Task) tea.Cmd {
	m.priorityIdx = priorityIndex(domain.PriorityMedium)
	m.assigneeIdx = 0
	m.formInputs = []textinput.Model{
		newModalInput("", "task title (required)", "", 140),
		newModalInput("", "details, markdown ok", "", 2000),
		newModalInput("", "low | medium | high", "", 16),
		newModalInput("", "YYYY-MM-DD or - for none", "", 16),
		newModalInput("", "comma,separated,tags", "", 200),
		newModalInput("", "assignee", "", 80),
	}
	if task != nil {
		m.formInputs[taskFieldTitle].SetValue(task.Title)
		m.formInputs[taskFieldDescription].SetValue(task.Description)
		m.priorityIdx = priorityIndex(task.Priority)
		if !task.DueDate.IsZero() {
			m.formInputs[taskFieldDue].SetValue(task.DueDate.String())
		}
		if len(task.Tags) > 0 {
			m.formInputs[taskFieldTags].SetValue(strings.Join(task.Tags, ","))
		}
		m.assigneeIdx = m.assigneeIndex(task.Assignee.ID)
		m.mode = modeEditTask
		m.editingTaskID = task.ID
		m.status = "edit task"
	} else {
		m.mode = modeAddTask
		m.editingTaskID = ""
		m.status = "new task"
	}
	m.formInputs[taskFieldPriority].SetValue(string(priorityOptions[m.priorityIdx]))
	m.formInputs[taskFieldAssignee].SetValue(m.assigneeLabel(m.assigneeIdx))
	return m.focusTaskFormField(taskFieldTitle)
}

// focusTaskFormField moves focus to the given field, blurring the rest.
// Picker fields (priority, assignee) take no text input and return nil.
func (m *Model) focusTaskFormField(idx int) tea.Cmd {
	if len(m.formInputs) == 0 {
		return nil
	}
	idx = clamp(idx, 0, len(m.formInputs)-1)
	m.formFocus = idx
	for i := range m.formInputs {
		m.formInputs[i].Blur()
	}
	if idx == taskFieldPriority || idx == taskFieldAssignee {
		return nil
	}
	return m.formInputs[idx].Focus()
}

func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// taskFormValues snapshots the trimmed form inputs keyed by field name.
func (m Model) taskFormValues() map[string]string {
	vals := make(map[string]string, len(m.formInputs))
	for i, in := range m.formInputs {
		if i < len(taskFormFields) {
			vals[taskFormFields[i]] = strings.TrimSpace(in.Value())
		}
	}
	return vals
}

// cyclePriority steps the priority picker and mirrors it into the form input.
func (m *Model) cyclePriority(delta int) {
	m.priorityIdx = wrapIndex(m.priorityIdx, delta, len(priorityOptions))
	if len(m.formInputs) > taskFieldPriority {
		m.formInputs[taskFieldPriority].SetValue(string(priorityOptions[m.priorityIdx]))
	}
}

// cycleAssignee steps the assignee picker over unassigned plus the roster.
func (m *Model) cycleAssignee(delta int) {
	m.assigneeIdx = wrapIndex(m.assigneeIdx, delta, len(m.users)+1)
	if len(m.formInputs) > taskFieldAssignee {
		m.formInputs[taskFieldAssignee].SetValue(m.assigneeLabel(m.assigneeIdx))
	}
}

func (m Model) assigneeLabel(idx int) string {
	if idx <= 0 || idx > len(m.users) {
		return "unassigned"
	}
	return m.users[idx-1].Name
}

func (m Model) assigneeID(idx int) string {
	if idx <= 0 || idx > len(m.users) {
		return ""
	}
	return m.users[idx-1].ID
}

func (m Model) assigneeIndex(userID string) int {
	if userID == "" {
		return 0
	}
	for i, user := range m.users {
		if user.ID == userID {
			return i + 1
		}
	}
	return 0
}

// submitTaskForm validates the form and dispatches the create or update.
func (m Model) submitTaskForm() (tea.Model, tea.Cmd) {
	vals := m.taskFormValues()

	switch m.mode {
	case modeAddTask:
		if vals["title"] == "" {
			m.status = "title required"
			return m, nil
		}
		priority, err := parsePriorityInput(vals["priority"])
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		due, err := parseDueInput(vals["due"])
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		input := app.CreateTaskInput{
			Title:       vals["title"],
			Description: vals["description"],
			Status:      m.currentStatus(),
			Priority:    priority,
			DueDate:     due,
			AssigneeID:  m.assigneeID(m.assigneeIdx),
			Tags:        parseTagsInput(vals["tags"]),
		}
		m.mode = modeNone
		m.formInputs = nil
		m.formFocus = 0
		return m.createTask(input)

	case modeEditTask:
		current, ok := m.store.Task(m.editingTaskID)
		if !ok {
			m.mode = modeNone
			m.formInputs = nil
			m.formFocus = 0
			m.editingTaskID = ""
			m.status = "task no longer exists"
			return m, nil
		}
		changes, err := m.formChanges(vals, current)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.mode = modeNone
		m.formInputs = nil
		m.formFocus = 0
		m.editingTaskID = ""
		if changes == (app.TaskChanges{}) {
			m.status = "no changes"
			return m, nil
		}
		return m.updateTask(current, changes)

	default:
		return m, nil
	}
}

// formChanges diffs the edit form against the current task and returns only
// the touched fields. Blank keeps the current value; "-" clears it.
func (m Model) formChanges(vals map[string]string, current domain.Task) (app.TaskChanges, error) {
	var changes app.TaskChanges

	if title := vals["title"]; title != "" && title != current.Title {
		changes.Title = &title
	}
	if raw := vals["description"]; raw != "" {
		description := raw
		if raw == "-" {
			description = ""
		}
		if description != current.Description {
			changes.Description = &description
		}
	}
	if raw := vals["priority"]; raw != "" {
		priority, err := parsePriorityInput(raw)
		if err != nil {
			return app.TaskChanges{}, err
		}
		if priority != current.Priority {
			changes.Priority = &priority
		}
	}
	if raw := vals["due"]; raw != "" {
		due, err := parseDueInput(raw)
		if err != nil {
			return app.TaskChanges{}, err
		}
		if due != current.DueDate {
			changes.DueDate = &due
		}
	}
	if raw := vals["tags"]; raw != "" {
		tags := parseTagsInput(raw)
		if !slices.Equal(tags, current.Tags) {
			changes.Tags = &tags
		}
	}
	if assigneeID := m.assigneeID(m.assigneeIdx); assigneeID != current.Assignee.ID {
		changes.AssigneeID = &assigneeID
	}
	return changes, nil
}

func parsePriorityInput(raw string) (domain.Priority, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.PriorityMedium, nil
	}
	priority, err := domain.ParsePriority(raw)
	if err != nil {
		return "", errors.New("priority must be low|medium|high")
	}
	return priority, nil
}

func parseDueInput(raw string) (domain.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" {
		return domain.Date{}, nil
	}
	due, err := domain.ParseDate(raw)
	if err != nil {
		return domain.Date{}, errors.New("due date must be YYYY-MM-DD or -")
	}
	return due, nil
}

func parseTagsInput(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// createTask dispatches the create and focuses the new task after reload.
func (m Model) createTask(input app.CreateTaskInput) (tea.Model, tea.Cmd) {
	store := m.store
	return m, func() tea.Msg {
		created, err := store.CreateTask(context.Background(), input)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{
			status:      fmt.Sprintf("created %q", truncate(created.Title, 28)),
			reload:      true,
			focusTaskID: created.ID,
		}
	}
}

// updateTask dispatches a sparse update for the task.
func (m Model) updateTask(task domain.Task, changes app.TaskChanges) (tea.Model, tea.Cmd) {
	store := m.store
	return m, func() tea.Msg {
		updated, err := store.UpdateTask(context.Background(), task.ID, changes)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{
			status:      fmt.Sprintf("updated %q", truncate(updated.Title, 28)),
			reload:      true,
			focusTaskID: updated.ID,
		}
	}
}

// confirmDeleteAction asks before deleting, unless confirmation is disabled.
func (m Model) confirmDeleteAction() (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskInCurrentColumn()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	if !m.confirmDelete {
		return m.deleteTask(task)
	}
	m.mode = modeConfirmDelete
	m.pendingDelete = task
	m.confirmChoice = 1
	m.status = "confirm delete"
	return m, nil
}

// deleteTask dispatches the delete.
func (m Model) deleteTask(task domain.Task) (tea.Model, tea.Cmd) {
	store := m.store
	return m, func() tea.Msg {
		if err := store.DeleteTask(context.Background(), task.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{
			status: fmt.Sprintf("deleted %q", truncate(task.Title, 28)),
			reload: true,
		}
	}
}

// moveSelectedTask moves the selected task one column left or right.
func (m Model) moveSelectedTask(delta int) (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskInCurrentColumn()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	return m.moveTaskByID(task.ID, task.Title, delta)
}

// moveTaskByID moves a task across columns. The move lands at the end of the
// destination column and is persisted as a status change through the store.
func (m Model) moveTaskByID(taskID, title string, delta int) (tea.Model, tea.Cmd) {
	source, sourceIdx, ok := m.findInBoard(taskID)
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	colIdx := statusIndex(source) + delta
	if colIdx < 0 || colIdx >= len(boardStatuses) {
		m.status = "no column in that direction"
		return m, nil
	}
	dest := boardStatuses[colIdx]
	gesture := app.MoveGesture{
		Source:      source,
		Dest:        dest,
		SourceIndex: sourceIdx,
		DestIndex:   len(m.board.Bucket(dest)),
	}
	board := m.board
	dnd := m.dnd
	status := fmt.Sprintf("moved %q to %s", truncate(title, 28), m.columnTitle(dest))
	return m, func() tea.Msg {
		if _, err := dnd.Move(context.Background(), board, gesture); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: status, reload: true, focusTaskID: taskID}
	}
}

// reorderSelectedTask swaps the selected task within its column. The reorder
// lives in the view only; the next refresh restores canonical order.
func (m Model) reorderSelectedTask(delta int) (tea.Model, tea.Cmd) {
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		m.status = "no task selected"
		return m, nil
	}
	destIdx := m.selectedTask + delta
	if destIdx < 0 || destIdx >= len(tasks) {
		return m, nil
	}
	status := boardStatuses[m.selectedColumn]
	gesture := app.MoveGesture{
		Source:      status,
		Dest:        status,
		SourceIndex: m.selectedTask,
		DestIndex:   destIdx,
	}
	view, err := m.dnd.Move(context.Background(), m.board, gesture)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.board = view
	m.selectedTask = destIdx
	m.status = "task reordered"
	return m, nil
}

// handleInputModeKey handles input mode key.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeStats {
		switch msg.String() {
		case "esc", "q", "S":
			m.mode = modeNone
			m.status = "ready"
		}
		return m, nil
	}

	if m.mode == modeTaskInfo {
		task, ok := m.taskInfoTask()
		if !ok {
			m.mode = modeNone
			m.taskInfoTaskID = ""
			m.status = "task no longer exists"
			return m, nil
		}
		switch msg.String() {
		case "esc", "i", "q":
			m.mode = modeNone
			m.taskInfoTaskID = ""
			m.status = "ready"
			return m, nil
		case "e":
			m.taskInfoTaskID = ""
			cmd := m.startTaskForm(&task)
			return m, cmd
		case "[":
			m.mode = modeNone
			m.taskInfoTaskID = ""
			return m.moveTaskByID(task.ID, task.Title, -1)
		case "]":
			m.mode = modeNone
			m.taskInfoTaskID = ""
			return m.moveTaskByID(task.ID, task.Title, 1)
		case "x":
			m.mode = modeNone
			m.taskInfoTaskID = ""
			if !m.confirmDelete {
				return m.deleteTask(task)
			}
			m.mode = modeConfirmDelete
			m.pendingDelete = task
			m.confirmChoice = 1
			m.status = "confirm delete"
			return m, nil
		default:
			return m, nil
		}
	}

	if m.mode == modeConfirmDelete {
		switch msg.String() {
		case "esc", "n":
			m.mode = modeNone
			m.pendingDelete = domain.Task{}
			m.status = "cancelled"
			return m, nil
		case "h", "left", "l", "right", "tab":
			if m.confirmChoice == 0 {
				m.confirmChoice = 1
			} else {
				m.confirmChoice = 0
			}
			return m, nil
		case "y":
			task := m.pendingDelete
			m.mode = modeNone
			m.pendingDelete = domain.Task{}
			return m.deleteTask(task)
		case "enter":
			if m.confirmChoice != 0 {
				m.mode = modeNone
				m.pendingDelete = domain.Task{}
				m.status = "cancelled"
				return m, nil
			}
			task := m.pendingDelete
			m.mode = modeNone
			m.pendingDelete = domain.Task{}
			return m.deleteTask(task)
		default:
			return m, nil
		}
	}

	if m.mode == modeSearch {
		switch {
		case msg.Code == tea.KeyEscape || msg.String() == "esc":
			m.mode = modeNone
			m.searchInput.Blur()
			m.status = "cancelled"
			return m, nil
		case msg.String() == "ctrl+u":
			m.searchInput.SetValue("")
			return m, nil
		case msg.Code == tea.KeyEnter || msg.String() == "enter":
			return m.applySearch()
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}
	}

	if m.mode == modeAddTask || m.mode == modeEditTask {
		switch {
		case msg.Code == tea.KeyEscape || msg.String() == "esc":
			m.mode = modeNone
			m.formInputs = nil
			m.formFocus = 0
			m.editingTaskID = ""
			m.status = "cancelled"
			return m, nil
		case msg.Code == tea.KeyTab || msg.String() == "tab" || msg.String() == "ctrl+i" || msg.String() == "down":
			cmd := m.focusTaskFormField(wrapIndex(m.formFocus, 1, len(m.formInputs)))
			return m, cmd
		case msg.String() == "shift+tab" || msg.String() == "backtab" || msg.String() == "up":
			cmd := m.focusTaskFormField(wrapIndex(m.formFocus, -1, len(m.formInputs)))
			return m, cmd
		case msg.Code == tea.KeyEnter || msg.String() == "enter":
			return m.submitTaskForm()
		default:
			if m.formFocus == taskFieldPriority {
				switch msg.String() {
				case "h", "left":
					m.cyclePriority(-1)
				case "l", "right":
					m.cyclePriority(1)
				}
				return m, nil
			}
			if m.formFocus == taskFieldAssignee {
				switch msg.String() {
				case "h", "left":
					m.cycleAssignee(-1)
				case "l", "right":
					m.cycleAssignee(1)
				}
				return m, nil
			}
			if len(m.formInputs) == 0 {
				return m, nil
			}
			var cmd tea.Cmd
			m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// handleMouseWheel handles mouse wheel.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone {
		return m, nil
	}
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		if m.selectedTask > 0 {
			m.selectedTask--
		}
	case tea.MouseWheelDown:
		if m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
	}
	return m, nil
}

// handleMouseClick selects the column and card under the pointer.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone {
		return m, nil
	}

	// Column width plus border and padding approximates the hit area.
	colWidth := m.columnWidth() + 5
	if msg.X >= 0 {
		if col := msg.X / colWidth; col < len(boardStatuses) {
			m.selectedColumn = col
		}
	}

	// The two header rows of a column cannot address a card.
	if row := msg.Y - m.boardTop() - 2; row >= 0 {
		if tasks := m.currentColumnTasks(); len(tasks) > 0 {
			m.selectedTask = clamp(m.taskIndexAtRow(tasks, row), 0, len(tasks)-1)
		}
	}
	m.clampSelections()
	return m, nil
}

// taskIndexAtRow maps a row inside the column body to a task index, matching
// the card layout: title line, optional meta line, separator between cards.
func (m Model) taskIndexAtRow(tasks []domain.Task, row int) int {
	now := time.Now()
	line := 0
	for idx, task := range tasks {
		span := 1
		if m.cardMeta(task, now) != "" {
			span++
		}
		if idx < len(tasks)-1 {
			span++
		}
		if row < line+span {
			return idx
		}
		line += span
	}
	return max(0, len(tasks)-1)
}

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		view := tea.NewView(fmt.Sprintf("error: %v\n\nr reload • q quit\n", m.err))
		view.MouseMode = tea.MouseModeCellMotion
		view.AltScreen = true
		return view
	}
	if !m.ready {
		view := tea.NewView("loading board...")
		view.MouseMode = tea.MouseModeCellMotion
		view.AltScreen = true
		return view
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)
	helpStyle := lipgloss.NewStyle().Foreground(muted)

	header := titleStyle.Render("luftborn") + "  board"
	header += statusStyle.Render("  [" + m.modeLabel() + "]")
	if m.filter.Search != "" {
		header += statusStyle.Render("  search: " + m.filter.Search)
	}
	if m.filter.Status != "" {
		header += statusStyle.Render("  status: " + string(m.filter.Status))
	}
	if m.filter.Priority != "" {
		header += statusStyle.Render("  priority: " + string(m.filter.Priority))
	}
	if m.store.Loading() {
		header += statusStyle.Render("  syncing...")
	}

	now := time.Now()
	colWidth := m.columnWidth()
	colHeight := m.columnHeight()

	baseColStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(1, 2).
		MarginRight(1).
		Width(colWidth)
	selColStyle := baseColStyle.BorderForeground(accent)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	selectedTaskStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	itemSubStyle := lipgloss.NewStyle().Foreground(muted)
	warningStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))

	columnViews := make([]string, 0, len(boardStatuses))
	for colIdx, status := range boardStatuses {
		colTasks := m.board.Bucket(status)
		colTitleStyle := lipgloss.NewStyle().Bold(true).Foreground(statusAccent(status))
		headerLines := []string{colTitleStyle.Render(fmt.Sprintf("%s (%d)", m.columnTitle(status), len(colTasks))), ""}

		taskLines := make([]string, 0, max(1, len(colTasks)*3))
		selectedStart := -1
		selectedEnd := -1
		if len(colTasks) == 0 {
			taskLines = append(taskLines, emptyStyle.Render("(empty)"))
		}
		for taskIdx, task := range colTasks {
			selected := colIdx == m.selectedColumn && taskIdx == m.selectedTask
			prefix := "   "
			if selected {
				prefix = "│  "
			}
			rowStart := len(taskLines)
			titleLine := prefix + truncate(task.Title, max(1, colWidth-8))
			if selected {
				titleLine = selectedTaskStyle.Render(titleLine)
			}
			taskLines = append(taskLines, titleLine)
			if meta := m.cardMeta(task, now); meta != "" {
				metaStyle := itemSubStyle
				if task.Overdue(now) {
					metaStyle = warningStyle
				}
				taskLines = append(taskLines, prefix+metaStyle.Render(truncate(meta, max(1, colWidth-8))))
			}
			if taskIdx < len(colTasks)-1 {
				taskLines = append(taskLines, "")
			}
			if selected {
				selectedStart = rowStart
				selectedEnd = len(taskLines) - 1
			}
		}

		innerHeight := max(1, colHeight-4)
		taskWindow := max(1, innerHeight-len(headerLines))
		scrollTop := 0
		if colIdx == m.selectedColumn && selectedStart >= 0 {
			if selectedEnd >= taskWindow {
				scrollTop = selectedEnd - taskWindow + 1
			}
			if selectedStart < scrollTop {
				scrollTop = selectedStart
			}
		}
		scrollTop = clamp(scrollTop, 0, max(0, len(taskLines)-taskWindow))
		if len(taskLines) > taskWindow {
			taskLines = taskLines[scrollTop : scrollTop+taskWindow]
		}

		lines := append(append([]string{}, headerLines...), taskLines...)
		content := fitLines(strings.Join(lines, "\n"), innerHeight)
		if colIdx == m.selectedColumn {
			columnViews = append(columnViews, selColStyle.Render(content))
		} else {
			columnViews = append(columnViews, baseColStyle.Render(content))
		}
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, columnViews...)

	summary := app.Summarize(m.tasks, now)
	info := fmt.Sprintf("%d/%d tasks shown", m.board.Total(), summary.Total)
	if summary.Overdue > 0 {
		info += fmt.Sprintf(" • %d overdue", summary.Overdue)
	}

	sections := []string{header, "", body, statusStyle.Render(info)}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		helpHeight := lipgloss.Height(helpLine)
		content = fitLines(content, max(0, m.height-helpHeight))
	}
	fullContent := content + "\n" + helpLine

	overlay := m.renderModeOverlay(accent, muted, dim, helpStyle, m.width-8)
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(accent, muted, m.width-8)
	}
	if overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}

	view := tea.NewView(fullContent)
	view.MouseMode = tea.MouseModeCellMotion
	view.AltScreen = true
	return view
}

// renderModeOverlay renders the modal for the active input mode, or "" when
// no overlay applies.
func (m Model) renderModeOverlay(accent, muted, dim color.Color, hintStyle lipgloss.Style, maxWidth int) string {
	if m.mode == modeNone {
		return ""
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle := lipgloss.NewStyle().Foreground(muted)
	focusedLabelStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)

	switch m.mode {
	case modeConfirmDelete:
		if maxWidth > 0 {
			boxStyle = boxStyle.Width(clamp(maxWidth, 30, 60))
		}
		lines := []string{
			titleStyle.Render("Delete Task"),
			truncate(m.pendingDelete.Title, 48),
			"",
			m.renderConfirmChoices(accent, muted),
			hintStyle.Render("y delete • n/esc keep • h/l choose • enter apply"),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeTaskInfo:
		task, ok := m.taskInfoTask()
		if !ok {
			return ""
		}
		if maxWidth > 0 {
			boxStyle = boxStyle.Width(clamp(maxWidth, 30, 76))
		}
		due := "-"
		if !task.DueDate.IsZero() {
			due = task.DueDate.String()
		}
		assignee := "unassigned"
		if !task.Assignee.IsZero() {
			assignee = task.Assignee.Name
		}
		tags := "-"
		if len(task.Tags) > 0 {
			tags = strings.Join(task.Tags, ", ")
		}
		now := time.Now()
		lines := []string{
			titleStyle.Render("Task Info"),
			task.Title,
			labelStyle.Render("status: " + string(task.Status) + " • priority: " + string(task.Priority)),
			labelStyle.Render("due: " + due + " • assignee: " + assignee),
			labelStyle.Render("tags: " + tags),
		}
		if task.Overdue(now) {
			lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")).Render("overdue"))
		}
		lines = append(lines, labelStyle.Render("created: "+task.CreatedAt.Local().Format("2006-01-02 15:04")+" • updated: "+task.UpdatedAt.Local().Format("2006-01-02 15:04")))
		if task.CompletedAt != nil {
			lines = append(lines, labelStyle.Render("completed: "+task.CompletedAt.Local().Format("2006-01-02 15:04")))
		}
		if desc := strings.TrimSpace(task.Description); desc != "" {
			lines = append(lines, "", m.markdown.render(desc, clamp(maxWidth, 30, 72)-4))
		}
		lines = append(lines, "", hintStyle.Render("e edit • [/] move • x delete • esc close"))
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeStats:
		if maxWidth > 0 {
			boxStyle = boxStyle.Width(clamp(maxWidth, 36, 72))
		}
		summary := app.Summarize(m.tasks, time.Now())
		lines := []string{
			titleStyle.Render("Board Stats"),
			fmt.Sprintf("total: %d", summary.Total),
			labelStyle.Render(fmt.Sprintf("to do %d • in progress %d • done %d",
				summary.ByStatus[domain.StatusTodo], summary.ByStatus[domain.StatusInProgress], summary.ByStatus[domain.StatusDone])),
			labelStyle.Render(fmt.Sprintf("low %d • medium %d • high %d",
				summary.ByPriority[domain.PriorityLow], summary.ByPriority[domain.PriorityMedium], summary.ByPriority[domain.PriorityHigh])),
			fmt.Sprintf("overdue: %d", summary.Overdue),
			fmt.Sprintf("completion: %.0f%%", summary.CompletionRate*100),
		}
		if len(summary.Assignees) > 0 {
			lines = append(lines, "", labelStyle.Render("per assignee"))
			for _, tally := range summary.Assignees {
				name := tally.User.Name
				if tally.User.IsZero() {
					name = "unassigned"
				}
				lines = append(lines, labelStyle.Render(fmt.Sprintf("%s: %d/%d done", name, tally.Done, tally.Total)))
			}
		}
		lines = append(lines, "", hintStyle.Render("esc close"))
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeSearch:
		if maxWidth > 0 {
			boxStyle = boxStyle.Width(clamp(maxWidth, 30, 72))
		}
		queryInput := m.searchInput
		queryInput.SetWidth(max(18, clamp(maxWidth, 30, 72)-12))
		lines := []string{
			titleStyle.Render("Search"),
			focusedLabelStyle.Render("query:") + " " + queryInput.View(),
			hintStyle.Render("enter apply • esc cancel • ctrl+u clear"),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeAddTask, modeEditTask:
		if maxWidth > 0 {
			boxStyle = boxStyle.Width(clamp(maxWidth, 40, 96))
		}
		title := "New Task"
		if m.mode == modeEditTask {
			title = "Edit Task"
		}
		lines := []string{titleStyle.Render(title)}
		fieldWidth := max(18, clamp(maxWidth, 40, 96)-24)
		for i, in := range m.formInputs {
			label := fmt.Sprintf("%d.", i+1)
			if i < len(taskFormFields) {
				label = taskFormFields[i]
			}
			style := labelStyle
			if i == m.formFocus {
				style = focusedLabelStyle
			}
			if i == taskFieldPriority {
				lines = append(lines, style.Render(fmt.Sprintf("%-12s", label+":"))+" "+m.renderPriorityPicker(accent, muted))
				continue
			}
			if i == taskFieldAssignee {
				lines = append(lines, style.Render(fmt.Sprintf("%-12s", label+":"))+" "+m.renderAssigneePicker(accent, muted))
				continue
			}
			in.SetWidth(fieldWidth)
			lines = append(lines, style.Render(fmt.Sprintf("%-12s", label+":"))+" "+in.View())
		}
		if m.mode == modeEditTask {
			lines = append(lines, hintStyle.Render("blank keeps the current value • - clears it"))
		}
		lines = append(lines, hintStyle.Render("enter save • esc cancel • tab next field • h/l cycle pickers"))
		return boxStyle.Render(strings.Join(lines, "\n"))

	default:
		return ""
	}
}

// renderPriorityPicker renders priority picker.
func (m Model) renderPriorityPicker(accent, muted color.Color) string {
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle := lipgloss.NewStyle().Foreground(muted)
	parts := make([]string, 0, len(priorityOptions))
	for idx, priority := range priorityOptions {
		if idx == m.priorityIdx {
			parts = append(parts, activeStyle.Render("["+string(priority)+"]"))
		} else {
			parts = append(parts, dimStyle.Render(string(priority)))
		}
	}
	return strings.Join(parts, "  ")
}

// renderAssigneePicker renders the assignee picker over unassigned plus the roster.
func (m Model) renderAssigneePicker(accent, muted color.Color) string {
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle := lipgloss.NewStyle().Foreground(muted)
	parts := make([]string, 0, len(m.users)+1)
	for idx := 0; idx <= len(m.users); idx++ {
		label := m.assigneeLabel(idx)
		if idx == m.assigneeIdx {
			parts = append(parts, activeStyle.Render("["+label+"]"))
		} else {
			parts = append(parts, dimStyle.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

// renderConfirmChoices renders confirm choices.
func (m Model) renderConfirmChoices(accent, muted color.Color) string {
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle := lipgloss.NewStyle().Foreground(muted)
	yes := dimStyle.Render("delete")
	no := dimStyle.Render("keep")
	if m.confirmChoice == 0 {
		yes = activeStyle.Render("[delete]")
	} else {
		no = activeStyle.Render("[keep]")
	}
	return yes + "   " + no
}

// renderHelpOverlay renders the full keymap help.
func (m Model) renderHelpOverlay(accent, muted color.Color, maxWidth int) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	if maxWidth > 0 {
		boxStyle = boxStyle.Width(clamp(maxWidth, 40, 96))
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)

	helpBubble := m.help
	helpBubble.ShowAll = true
	helpBubble.SetWidth(clamp(maxWidth, 40, 96) - 4)
	lines := []string{
		titleStyle.Render("Help"),
		helpBubble.View(m.keys),
		hintStyle.Render("? or esc close"),
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// cardMeta builds the one-line metadata under a card title, honoring the
// card field config.
func (m Model) cardMeta(task domain.Task, now time.Time) string {
	parts := make([]string, 0, 4)
	if m.cardFields.ShowPriority {
		parts = append(parts, string(task.Priority))
	}
	if m.cardFields.ShowDueDate && !task.DueDate.IsZero() {
		due := task.DueDate.String()
		if task.Overdue(now) {
			due += " overdue"
		}
		parts = append(parts, due)
	}
	if m.cardFields.ShowAssignee && !task.Assignee.IsZero() {
		who := task.Assignee.Avatar
		if who == "" {
			who = task.Assignee.Name
		}
		parts = append(parts, who)
	}
	if m.cardFields.ShowTags && len(task.Tags) > 0 {
		parts = append(parts, summarizeTags(task.Tags, 2))
	}
	return strings.Join(parts, " • ")
}

func (m Model) columnTitle(status domain.Status) string {
	if title, ok := m.columnTitles[status]; ok && title != "" {
		return title
	}
	switch status {
	case domain.StatusTodo:
		return "To Do"
	case domain.StatusInProgress:
		return "In Progress"
	case domain.StatusDone:
		return "Done"
	default:
		return string(status)
	}
}

func statusAccent(status domain.Status) color.Color {
	switch status {
	case domain.StatusTodo:
		return lipgloss.Color("75")
	case domain.StatusInProgress:
		return lipgloss.Color("214")
	case domain.StatusDone:
		return lipgloss.Color("78")
	default:
		return lipgloss.Color("241")
	}
}

func statusIndex(status domain.Status) int {
	for idx, s := range boardStatuses {
		if s == status {
			return idx
		}
	}
	return 0
}

func priorityIndex(priority domain.Priority) int {
	for idx, p := range priorityOptions {
		if p == priority {
			return idx
		}
	}
	return 1
}

// currentStatus returns the status of the selected column.
func (m Model) currentStatus() domain.Status {
	return boardStatuses[clamp(m.selectedColumn, 0, len(boardStatuses)-1)]
}

// currentColumnTasks returns the visible tasks of the selected column.
func (m Model) currentColumnTasks() []domain.Task {
	return m.board.Bucket(m.currentStatus())
}

// selectedTaskInCurrentColumn returns the selected task, if any.
func (m Model) selectedTaskInCurrentColumn() (domain.Task, bool) {
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		return domain.Task{}, false
	}
	idx := clamp(m.selectedTask, 0, len(tasks)-1)
	return tasks[idx], true
}

// taskInfoTask resolves the task shown in the info overlay from the cache.
func (m Model) taskInfoTask() (domain.Task, bool) {
	for _, task := range m.tasks {
		if task.ID == m.taskInfoTaskID {
			return task, true
		}
	}
	return domain.Task{}, false
}

// findInBoard returns the bucket and index holding the given task id.
func (m Model) findInBoard(taskID string) (domain.Status, int, bool) {
	for _, status := range boardStatuses {
		for idx, task := range m.board.Bucket(status) {
			if task.ID == taskID {
				return status, idx, true
			}
		}
	}
	return "", 0, false
}

// focusTaskByID moves the selection to the given task if it is visible.
func (m *Model) focusTaskByID(taskID string) {
	if status, idx, ok := m.findInBoard(taskID); ok {
		m.selectedColumn = statusIndex(status)
		m.selectedTask = idx
	}
}

// clampSelections clamps selections.
func (m *Model) clampSelections() {
	m.selectedColumn = clamp(m.selectedColumn, 0, len(boardStatuses)-1)
	colTasks := m.currentColumnTasks()
	if len(colTasks) == 0 {
		m.selectedTask = 0
		return
	}
	m.selectedTask = clamp(m.selectedTask, 0, len(colTasks)-1)
}

// modeLabel names the active input mode for the status line.
func (m Model) modeLabel() string {
	switch m.mode {
	case modeAddTask:
		return "add task"
	case modeEditTask:
		return "edit task"
	case modeSearch:
		return "search"
	case modeTaskInfo:
		return "task info"
	case modeConfirmDelete:
		return "confirm delete"
	case modeStats:
		return "stats"
	default:
		return "normal"
	}
}

// columnWidth derives a column width from the window, keeping all three
// columns on screen down to narrow terminals.
func (m Model) columnWidth() int {
	if m.width <= 0 {
		return 28
	}
	per := m.width/len(boardStatuses) - 7
	return clamp(per, 24, 42)
}

// columnHeight leaves room for the header above and footer below the board.
func (m Model) columnHeight() int {
	if m.height <= 0 {
		return 14
	}
	return max(14, m.height-7)
}

// boardTop returns the first terminal row of column content, below the header.
func (m Model) boardTop() int {
	return 3
}

// statusLineError reports whether err belongs on the status line instead of
// replacing the board with the error screen. Validation and not-found errors
// come from user input; everything else means the backend is unhealthy.
func statusLineError(err error) bool {
	for _, target := range []error{
		app.ErrNotFound,
		app.ErrValidation,
		app.ErrUnknownAssignee,
		domain.ErrInvalidTitle,
		domain.ErrInvalidStatus,
		domain.ErrInvalidPriority,
		domain.ErrInvalidDate,
		domain.ErrInvalidPosition,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// wrapIndex steps an index by delta, wrapping around total.
func wrapIndex(current int, delta int, total int) int {
	if total <= 0 {
		return 0
	}
	next := (current + delta) % total
	if next < 0 {
		next += total
	}
	return next
}

// clamp bounds v to [lo, hi]. A reversed range collapses to lo.
func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

// fitLines pads or cuts content to exactly maxLines lines, marking a
// cut with an ellipsis in the last slot.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] = "…"
	}
	for len(lines) < maxLines {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay above base on a fixed-size canvas.
// Without a usable size it degrades to stacking the overlay on top.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(fitLines(base, height)).X(0).Y(0).Z(0))
	canvas.Compose(lipgloss.NewLayer(centered).X(0).Y(0).Z(10))
	return canvas.Render()
}

// truncate shortens s to limit runes, ellipsis included.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	if limit == 1 {
		return string(rs[:1])
	}
	return string(rs[:limit-1]) + "…"
}

// summarizeTags summarizes tags.
func summarizeTags(tags []string, maxTags int) string {
	if len(tags) == 0 {
		return ""
	}
	if maxTags <= 0 {
		maxTags = 1
	}
	visible := tags
	extra := 0
	if len(tags) > maxTags {
		visible = tags[:maxTags]
		extra = len(tags) - maxTags
	}
	joined := "#" + strings.Join(visible, ",#")
	if extra > 0 {
		joined += fmt.Sprintf("+%d", extra)
	}
	return joined
}
