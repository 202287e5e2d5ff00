package web

import (
	"io"
	"iter"
	"strconv"
	"time"

	"git.sr.ht/~jakintosh/todo/internal/domain"
)

// TaskView is the view model for one list row
type TaskView struct {
	ID           string
	Text         string
	Completed    bool
	DueDate      string
	DueLabel     string
	Overdue      bool
	DeleteButton DeleteButtonView
}

// NewTaskView creates a TaskView from a domain Task
func NewTaskView(t domain.Task, now time.Time) TaskView {
	id := strconv.FormatInt(t.ID, 10)
	view := TaskView{
		ID:        id,
		Text:      t.Text,
		Completed: t.Completed,
		Overdue:   t.Overdue(now),
		DeleteButton: DeleteButtonView{
			URL:            "/tasks/" + id,
			ConfirmMessage: "Delete this task?",
			ButtonText:     "Delete",
		},
	}
	if t.HasDueDate() {
		view.DueDate = *t.DueDate
		view.DueLabel = t.DueLabel(now)
	}
	return view
}

// TaskListView is the view model for the list container and its footer
type TaskListView struct {
	Filter    domain.Filter
	Tasks     []TaskView
	Active    int
	Completed int
}

// NewTaskListView builds one row per task yielded by tasks
func NewTaskListView(filter domain.Filter, tasks iter.Seq[domain.Task], active, completed int, now time.Time) TaskListView {
	view := TaskListView{
		Filter:    filter,
		Active:    active,
		Completed: completed,
	}
	for t := range tasks {
		view.Tasks = append(view.Tasks, NewTaskView(t, now))
	}
	return view
}

// EmptyMessage is shown when the filter hides every task
func (v TaskListView) EmptyMessage() string {
	switch v.Filter {
	case domain.FilterActive:
		return "Nothing left to do."
	case domain.FilterCompleted:
		return "No completed tasks yet."
	default:
		return "No tasks yet. Add one above."
	}
}

// RenderTaskList renders the full list container
func (p *Presentation) RenderTaskList(w io.Writer, view TaskListView) error {
	return p.tmpl.ExecuteTemplate(w, "task_list", view)
}
