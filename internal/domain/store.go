package domain

import "iter"

// Store is the task list contract the views are written against.
type Store interface {
	Tasks() []Task
	Get(id int64) (Task, bool)
	Filtered(f Filter) iter.Seq[Task]
	Counts() (active, completed int)

	Add(text string, dueDate *string) (Task, bool)
	Edit(id int64, text string)
	ToggleCompleted(id int64, completed bool)
	Delete(id int64)
	Reorder(draggedID, targetID int64)
}

// Persistence loads and saves the whole ordered task list.
type Persistence interface {
	Load() []Task
	Save(tasks []Task) error
}
