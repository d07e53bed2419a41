package app

import (
	"context"
	"slices"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"
)

// MoveGesture describes one drag-and-drop move against the current
// board view. Indexes address the post-filter bucket lists, not the
// canonical sequence.
type MoveGesture struct {
	Source      domain.Status
	Dest        domain.Status
	SourceIndex int
	DestIndex   int
}

// DragDropHandler turns board gestures into view mutations and, for
// cross-column moves, status changes through the store. Any status is
// reachable from any other in a single move.
type DragDropHandler struct {
	store *Store
}

// NewDragDropHandler constructs a handler over the given store.
func NewDragDropHandler(store *Store) *DragDropHandler {
	return &DragDropHandler{store: store}
}

// Move applies g to view and returns the updated view.
//
// A same-column gesture reorders within one bucket and never touches
// the store or the repository. The new order lives only in the
// returned view; the next recomputation from canonical order discards
// it.
//
// A cross-column gesture moves the task between bucket lists first
// (optimistic, the record itself is untouched), then submits the
// status change through the store. On failure the optimistic view is
// still returned alongside the error: the canonical sequence is
// unchanged, so recomputing the board snaps the task back to its prior
// column. That recomputation is the reconciliation mechanism, not an
// explicit undo.
func (h *DragDropHandler) Move(ctx context.Context, view BoardView, g MoveGesture) (BoardView, error) {
	if !g.Source.Valid() || !g.Dest.Valid() {
		return view, domain.ErrInvalidStatus
	}
	source := view.Bucket(g.Source)
	if g.SourceIndex < 0 || g.SourceIndex >= len(source) {
		return view, domain.ErrInvalidPosition
	}

	if g.Source == g.Dest {
		if g.DestIndex < 0 || g.DestIndex >= len(source) {
			return view, domain.ErrInvalidPosition
		}
		return view.withBucket(g.Source, reorder(source, g.SourceIndex, g.DestIndex)), nil
	}

	dest := view.Bucket(g.Dest)
	if g.DestIndex < 0 || g.DestIndex > len(dest) {
		return view, domain.ErrInvalidPosition
	}

	task := source[g.SourceIndex]
	moved := view.withBucket(g.Source, removeAt(source, g.SourceIndex))
	moved = moved.withBucket(g.Dest, insertAt(dest, g.DestIndex, task))

	status := g.Dest
	if _, err := h.store.UpdateTask(ctx, task.ID, TaskChanges{Status: &status}); err != nil {
		return moved, err
	}
	return moved, nil
}

func (v BoardView) withBucket(status domain.Status, bucket []domain.Task) BoardView {
	switch status {
	case domain.StatusTodo:
		v.Todo = bucket
	case domain.StatusInProgress:
		v.InProgress = bucket
	case domain.StatusDone:
		v.Done = bucket
	}
	return v
}

func removeAt(list []domain.Task, i int) []domain.Task {
	return slices.Delete(slices.Clone(list), i, i+1)
}

func insertAt(list []domain.Task, i int, task domain.Task) []domain.Task {
	return slices.Insert(slices.Clone(list), i, task)
}

func reorder(list []domain.Task, from, to int) []domain.Task {
	out := slices.Clone(list)
	task := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, task)
}
