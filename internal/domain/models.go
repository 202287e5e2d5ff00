package domain

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DueDateLayout is the only due date format accepted at the view boundary.
const DueDateLayout = "2006-01-02"

type Task struct {
	ID        int64   `json:"id"`
	Text      string  `json:"text"`
	DueDate   *string `json:"dueDate"`
	Completed bool    `json:"completed"`
}

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

// ParseFilter maps a raw filter name to a Filter. Anything unrecognized is "all".
func ParseFilter(s string) Filter {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterActive:
		return FilterActive
	case FilterCompleted:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// Match reports whether t is visible under the filter.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Helper methods

func (t Task) HasDueDate() bool {
	return t.DueDate != nil && *t.DueDate != ""
}

// Due parses the due date. ok is false when absent or not in DueDateLayout.
func (t Task) Due() (due time.Time, ok bool) {
	if !t.HasDueDate() {
		return time.Time{}, false
	}
	due, err := time.ParseInLocation(DueDateLayout, *t.DueDate, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}

// Overdue reports whether an incomplete task's due day ended before now.
func (t Task) Overdue(now time.Time) bool {
	if t.Completed {
		return false
	}
	due, ok := t.Due()
	if !ok {
		return false
	}
	return now.After(due.AddDate(0, 0, 1))
}

// DueLabel describes the due date relative to the day containing now,
// e.g. "today", "3 days from now" or "1 week ago".
func (t Task) DueLabel(now time.Time) string {
	due, ok := t.Due()
	if !ok {
		if t.HasDueDate() {
			return *t.DueDate
		}
		return ""
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, due.Location())
	if due.Equal(today) {
		return "today"
	}
	return humanize.RelTime(due, today, "ago", "from now")
}

// NormalizeDueDate trims raw and validates it against DueDateLayout.
// An empty input yields a nil date.
func NormalizeDueDate(raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if _, err := time.Parse(DueDateLayout, raw); err != nil {
		return nil, err
	}
	return &raw, nil
}
