package store

import (
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"git.sr.ht/~jakintosh/todo/internal/domain"
)

// TaskStore owns the ordered task list. Every mutation is followed by a
// synchronous save through the configured persistence; lookups that miss
// are silent no-ops.
type TaskStore struct {
	mu      sync.Mutex
	tasks   []domain.Task
	persist domain.Persistence
	ids     idGenerator
}

type Option func(*TaskStore)

// WithClock overrides the clock used to derive task IDs.
func WithClock(now func() time.Time) Option {
	return func(s *TaskStore) {
		s.ids.now = now
	}
}

// NewTaskStore loads the list from p once. A nil p keeps the list in memory only.
func NewTaskStore(p domain.Persistence, opts ...Option) *TaskStore {
	s := &TaskStore{
		tasks:   []domain.Task{},
		persist: p,
		ids:     idGenerator{now: time.Now},
	}
	for _, opt := range opts {
		opt(s)
	}
	if p != nil {
		if loaded := p.Load(); loaded != nil {
			s.tasks = loaded
		}
	}
	for _, t := range s.tasks {
		s.ids.observe(t.ID)
	}
	return s
}

func (s *TaskStore) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = cloneTask(t)
	}
	return out
}

func (s *TaskStore) Get(id int64) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return cloneTask(s.tasks[i]), true
	}
	return domain.Task{}, false
}

func (s *TaskStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *TaskStore) Counts() (active, completed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.Completed {
			completed++
		} else {
			active++
		}
	}
	return active, completed
}

// Filtered yields the tasks matching f in list order. The list is
// snapshotted when Filtered is called; later mutations are not observed.
func (s *TaskStore) Filtered(f domain.Filter) iter.Seq[domain.Task] {
	snapshot := s.Tasks()
	return func(yield func(domain.Task) bool) {
		for _, t := range snapshot {
			if !f.Match(t) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Add appends a new incomplete task. It reports false, and does nothing,
// when text is blank.
func (s *TaskStore) Add(text string, dueDate *string) (domain.Task, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Task{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := domain.Task{
		ID:   s.ids.next(),
		Text: text,
	}
	if dueDate != nil {
		due := *dueDate
		task.DueDate = &due
	}
	s.tasks = append(s.tasks, task)
	s.save()
	return task, true
}

func (s *TaskStore) Edit(id int64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" || text == s.tasks[i].Text {
		return
	}
	s.tasks[i].Text = text
	s.save()
}

func (s *TaskStore) ToggleCompleted(id int64, completed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.tasks[i].Completed = completed
	s.save()
}

func (s *TaskStore) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.save()
}

// Reorder moves the dragged task to the target's slot. When the dragged
// task started above the target, the removal shifts the target up by one
// and the task lands just above the target's new position.
func (s *TaskStore) Reorder(draggedID, targetID int64) {
	if draggedID == targetID {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.indexOf(draggedID)
	to := s.indexOf(targetID)
	if from < 0 || to < 0 {
		return
	}

	moved := s.tasks[from]
	s.tasks = slices.Delete(s.tasks, from, from+1)
	if from < to {
		to--
	}
	s.tasks = slices.Insert(s.tasks, to, moved)
	s.save()
}

// cloneTask detaches the due date so callers cannot edit a stored task.
func cloneTask(t domain.Task) domain.Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

func (s *TaskStore) indexOf(id int64) int {
	return slices.IndexFunc(s.tasks, func(t domain.Task) bool {
		return t.ID == id
	})
}

// save errors are reported by the persistence layer and never roll back
// the in-memory list.
func (s *TaskStore) save() {
	if s.persist == nil {
		return
	}
	_ = s.persist.Save(slices.Clone(s.tasks))
}
