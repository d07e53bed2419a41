package app

import (
	"slices"
	"strings"
	"time"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"
)

// Summary aggregates board-level statistics over one task collection.
type Summary struct {
	Total          int
	ByStatus       map[domain.Status]int
	ByPriority     map[domain.Priority]int
	Overdue        int
	CompletionRate float64
	Assignees      []AssigneeCount
}

// AssigneeCount tallies one roster member's tasks. The zero User
// collects the unassigned tasks.
type AssigneeCount struct {
	User  domain.User
	Total int
	Done  int
}

// Summarize computes the summary for the given sequence. Overdue uses
// now's local calendar date; the completion rate is done over total
// and zero for an empty collection. Assignee tallies sort by name with
// the unassigned bucket last.
func Summarize(tasks []domain.Task, now time.Time) Summary {
	s := Summary{
		ByStatus:   map[domain.Status]int{},
		ByPriority: map[domain.Priority]int{},
	}
	tallies := map[string]*AssigneeCount{}
	for _, task := range tasks {
		s.Total++
		s.ByStatus[task.Status]++
		s.ByPriority[task.Priority]++
		if task.Overdue(now) {
			s.Overdue++
		}
		tally, ok := tallies[task.Assignee.ID]
		if !ok {
			tally = &AssigneeCount{User: task.Assignee}
			tallies[task.Assignee.ID] = tally
		}
		tally.Total++
		if task.Status == domain.StatusDone {
			tally.Done++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = float64(s.ByStatus[domain.StatusDone]) / float64(s.Total)
	}
	for _, tally := range tallies {
		s.Assignees = append(s.Assignees, *tally)
	}
	slices.SortFunc(s.Assignees, func(a, b AssigneeCount) int {
		if a.User.IsZero() != b.User.IsZero() {
			if a.User.IsZero() {
				return 1
			}
			return -1
		}
		if c := strings.Compare(a.User.Name, b.User.Name); c != 0 {
			return c
		}
		return strings.Compare(a.User.ID, b.User.ID)
	})
	return s
}
