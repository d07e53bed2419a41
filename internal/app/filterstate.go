package app

import (
	"sync"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"
)

// FilterState is the mutable filter holder shared by the views of one
// session. It is constructed explicitly and passed to whatever reads
// or writes it; nothing reaches it through package-level state. The
// three axes are independent, and changing any of them never touches
// the task sequence, only what the next board recomputation includes.
type FilterState struct {
	mu     sync.Mutex
	filter domain.Filter
}

// NewFilterState returns a holder matching everything.
func NewFilterState() *FilterState {
	return &FilterState{}
}

// SetStatus sets the status axis; the zero Status means no constraint.
func (f *FilterState) SetStatus(status domain.Status) {
	f.mu.Lock()
	f.filter.Status = status
	f.mu.Unlock()
}

// SetPriority sets the priority axis; the zero Priority means no
// constraint.
func (f *FilterState) SetPriority(priority domain.Priority) {
	f.mu.Lock()
	f.filter.Priority = priority
	f.mu.Unlock()
}

// SetSearch sets the free-text axis; the empty string means no
// constraint.
func (f *FilterState) SetSearch(query string) {
	f.mu.Lock()
	f.filter.Search = query
	f.mu.Unlock()
}

// Reset returns every axis to its match-all default.
func (f *FilterState) Reset() {
	f.mu.Lock()
	f.filter = domain.Filter{}
	f.mu.Unlock()
}

// Snapshot returns the current filter value.
func (f *FilterState) Snapshot() domain.Filter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter
}
