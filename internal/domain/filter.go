package domain

import "strings"

// Filter narrows the task collection along three independent axes. The
// zero value on any axis matches everything, so Filter{} is the
// "show all" default. Axes compose with AND semantics.
type Filter struct {
	Status   Status
	Priority Priority
	Search   string
}

// IsZero reports whether f matches every task.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Matches reports whether t survives all three filter axes. The search
// axis is a case-insensitive substring match against title or
// description, with no tokenization.
func (f Filter) Matches(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Search != "" {
		query := strings.ToLower(f.Search)
		title := strings.ToLower(t.Title)
		description := strings.ToLower(t.Description)
		if !strings.Contains(title, query) && !strings.Contains(description, query) {
			return false
		}
	}
	return true
}

// ParseStatusFilter maps a transport value onto a status axis; "all"
// and "" mean no constraint.
func ParseStatusFilter(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all", "any":
		return "", nil
	}
	return ParseStatus(raw)
}

// ParsePriorityFilter maps a transport value onto a priority axis;
// "all" and "" mean no constraint.
func ParsePriorityFilter(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all", "any":
		return "", nil
	}
	return ParsePriority(raw)
}
