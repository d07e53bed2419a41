package app

import "github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"

// BoardView holds the three status-partitioned task lists consumed by
// the board columns. Buckets are always non-nil; an empty column is an
// empty list, not a missing one.
type BoardView struct {
	Todo       []domain.Task
	InProgress []domain.Task
	Done       []domain.Task
}

// Bucket returns the list for one status column.
func (v BoardView) Bucket(status domain.Status) []domain.Task {
	switch status {
	case domain.StatusTodo:
		return v.Todo
	case domain.StatusInProgress:
		return v.InProgress
	case domain.StatusDone:
		return v.Done
	default:
		return nil
	}
}

// Total returns the number of tasks across all three buckets.
func (v BoardView) Total() int {
	return len(v.Todo) + len(v.InProgress) + len(v.Done)
}

// ComputeBoard derives the filtered, partitioned board from the
// canonical sequence. It applies the status, priority, and search axes
// in that order, then partitions the survivors by actual task status,
// preserving the relative order of the input within each bucket.
//
// The function is pure: it never mutates its inputs, keeps no scratch
// state between calls, and returns identical output for identical
// input, so callers are free to recompute on every change.
func ComputeBoard(tasks []domain.Task, filter domain.Filter) BoardView {
	view := BoardView{
		Todo:       []domain.Task{},
		InProgress: []domain.Task{},
		Done:       []domain.Task{},
	}
	for _, task := range tasks {
		if !filter.Matches(task) {
			continue
		}
		switch task.Status {
		case domain.StatusTodo:
			view.Todo = append(view.Todo, task)
		case domain.StatusInProgress:
			view.InProgress = append(view.InProgress, task)
		case domain.StatusDone:
			view.Done = append(view.Done, task)
		}
	}
	return view
}
