package store

import (
	"errors"
	"slices"
	"testing"
	"time"

	"git.sr.ht/~jakintosh/todo/internal/domain"
)

// recordingPersistence captures every save instead of encoding it.
type recordingPersistence struct {
	loaded []domain.Task
	saves  [][]domain.Task
	err    error
}

func (r *recordingPersistence) Load() []domain.Task {
	return r.loaded
}

func (r *recordingPersistence) Save(tasks []domain.Task) error {
	r.saves = append(r.saves, tasks)
	return r.err
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

// newNumberedStore returns a store holding tasks with IDs 1..n, texts
// "task 1".."task n", and no recorded saves.
func newNumberedStore(t *testing.T, n int) (*TaskStore, *recordingPersistence) {
	t.Helper()
	p := &recordingPersistence{}
	s := NewTaskStore(p, WithClock(fixedClock(1)))
	for i := 1; i <= n; i++ {
		task, ok := s.Add("task "+string(rune('0'+i)), nil)
		if !ok || task.ID != int64(i) {
			t.Fatalf("setup: Add #%d = %+v, %v", i, task, ok)
		}
	}
	p.saves = nil
	return s, p
}

func ids(tasks []domain.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func strPtr(s string) *string {
	return &s
}

func TestAddAppendsIncompleteTask(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		due      *string
		wantText string
	}{
		{"no due date", "Buy milk", nil, "Buy milk"},
		{"with due date", "Pay rent", strPtr("2024-02-01"), "Pay rent"},
		{"surrounding space", "  Call mom  ", nil, "Call mom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &recordingPersistence{}
			s := NewTaskStore(p)
			before := s.Len()

			task, ok := s.Add(tt.text, tt.due)
			if !ok {
				t.Fatalf("Add(%q) reported false", tt.text)
			}
			if got := s.Len(); got != before+1 {
				t.Errorf("Len = %d, want %d", got, before+1)
			}
			if task.Completed {
				t.Error("new task is completed")
			}
			if task.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", task.Text, tt.wantText)
			}
			switch {
			case tt.due == nil && task.DueDate != nil:
				t.Errorf("DueDate = %q, want nil", *task.DueDate)
			case tt.due != nil && (task.DueDate == nil || *task.DueDate != *tt.due):
				t.Errorf("DueDate = %v, want %q", task.DueDate, *tt.due)
			}

			all := s.Tasks()
			if last := all[len(all)-1]; last.ID != task.ID {
				t.Errorf("last task ID = %d, want %d", last.ID, task.ID)
			}
			if len(p.saves) != 1 {
				t.Errorf("saves = %d, want 1", len(p.saves))
			}
		})
	}
}

func TestAddBlankTextIsNoop(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		p := &recordingPersistence{}
		s := NewTaskStore(p)

		if _, ok := s.Add(text, strPtr("2024-01-01")); ok {
			t.Errorf("Add(%q) reported true", text)
		}
		if s.Len() != 0 {
			t.Errorf("Add(%q): Len = %d, want 0", text, s.Len())
		}
		if len(p.saves) != 0 {
			t.Errorf("Add(%q): saves = %d, want 0", text, len(p.saves))
		}
	}
}

func TestAddIDsAreUniqueWithinOneMillisecond(t *testing.T) {
	s := NewTaskStore(nil, WithClock(fixedClock(1_704_067_200_000)))

	seen := map[int64]bool{}
	for i := 0; i < 50; i++ {
		task, _ := s.Add("same tick", nil)
		if seen[task.ID] {
			t.Fatalf("duplicate ID %d", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestAddCopiesDueDate(t *testing.T) {
	s := NewTaskStore(nil)
	due := "2024-01-01"
	task, _ := s.Add("Buy milk", &due)
	due = "1999-12-31"

	got, _ := s.Get(task.ID)
	if *got.DueDate != "2024-01-01" {
		t.Errorf("DueDate = %q, want 2024-01-01", *got.DueDate)
	}
}

func TestReadsDoNotShareDueDate(t *testing.T) {
	s := NewTaskStore(nil)
	task, _ := s.Add("Buy milk", strPtr("2024-01-01"))

	got, _ := s.Get(task.ID)
	*got.DueDate = "1999-01-01"
	*s.Tasks()[0].DueDate = "1999-01-02"
	for row := range s.Filtered(domain.FilterAll) {
		*row.DueDate = "1999-01-03"
	}

	if got, _ := s.Get(task.ID); *got.DueDate != "2024-01-01" {
		t.Errorf("stored DueDate = %q, want 2024-01-01", *got.DueDate)
	}
}

func TestNewTaskStoreLoadsAndContinuesIDs(t *testing.T) {
	p := &recordingPersistence{loaded: []domain.Task{
		{ID: 5000, Text: "loaded"},
	}}
	s := NewTaskStore(p, WithClock(fixedClock(1000)))

	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	task, _ := s.Add("new", nil)
	if task.ID != 5001 {
		t.Errorf("ID = %d, want 5001", task.ID)
	}
	if len(p.saves) != 1 {
		t.Errorf("saves = %d, want 1", len(p.saves))
	}
}

func TestEdit(t *testing.T) {
	s, p := newNumberedStore(t, 2)

	s.Edit(1, "  renamed  ")
	got, _ := s.Get(1)
	if got.Text != "renamed" {
		t.Errorf("Text = %q, want renamed", got.Text)
	}
	if len(p.saves) != 1 {
		t.Errorf("saves = %d, want 1", len(p.saves))
	}
}

func TestEditWithoutChangeDoesNotPersist(t *testing.T) {
	tests := []struct {
		name string
		id   int64
		text string
	}{
		{"missing id", 99, "anything"},
		{"blank text", 1, "   "},
		{"unchanged text", 1, "task 1"},
		{"unchanged after trim", 1, " task 1 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := newNumberedStore(t, 2)
			before := s.Tasks()

			s.Edit(tt.id, tt.text)

			if !slices.Equal(s.Tasks(), before) {
				t.Errorf("tasks changed: got %+v, want %+v", s.Tasks(), before)
			}
			if len(p.saves) != 0 {
				t.Errorf("saves = %d, want 0", len(p.saves))
			}
		})
	}
}

func TestToggleCompletedIsIdempotent(t *testing.T) {
	s, p := newNumberedStore(t, 2)

	s.ToggleCompleted(2, true)
	once := s.Tasks()
	s.ToggleCompleted(2, true)
	twice := s.Tasks()

	if !slices.Equal(once, twice) {
		t.Errorf("second toggle changed tasks: %+v -> %+v", once, twice)
	}
	if got, _ := s.Get(2); !got.Completed {
		t.Error("task 2 not completed")
	}
	// persists even when nothing changed
	if len(p.saves) != 2 {
		t.Errorf("saves = %d, want 2", len(p.saves))
	}

	s.ToggleCompleted(2, false)
	if got, _ := s.Get(2); got.Completed {
		t.Error("task 2 still completed")
	}
}

func TestToggleCompletedMissingIDIsNoop(t *testing.T) {
	s, p := newNumberedStore(t, 1)
	s.ToggleCompleted(42, true)
	if len(p.saves) != 0 {
		t.Errorf("saves = %d, want 0", len(p.saves))
	}
}

func TestDeleteTwice(t *testing.T) {
	s, p := newNumberedStore(t, 3)

	s.Delete(2)
	if got, want := ids(s.Tasks()), []int64{1, 3}; !slices.Equal(got, want) {
		t.Fatalf("after delete: %v, want %v", got, want)
	}
	afterFirst := s.Tasks()

	s.Delete(2)
	if !slices.Equal(s.Tasks(), afterFirst) {
		t.Errorf("second delete changed tasks: %+v", s.Tasks())
	}
	if len(p.saves) != 1 {
		t.Errorf("saves = %d, want 1", len(p.saves))
	}
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name    string
		dragged int64
		target  int64
		want    []int64
		saved   bool
	}{
		{"first onto last", 1, 3, []int64{2, 1, 3}, true},
		{"last onto first", 3, 1, []int64{3, 1, 2}, true},
		{"up one", 3, 2, []int64{1, 3, 2}, true},
		{"down one lands in place", 2, 3, []int64{1, 2, 3}, true},
		{"same id", 2, 2, []int64{1, 2, 3}, false},
		{"missing dragged", 9, 1, []int64{1, 2, 3}, false},
		{"missing target", 1, 9, []int64{1, 2, 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := newNumberedStore(t, 3)

			s.Reorder(tt.dragged, tt.target)

			if got := ids(s.Tasks()); !slices.Equal(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
			if saved := len(p.saves) > 0; saved != tt.saved {
				t.Errorf("saved = %v, want %v", saved, tt.saved)
			}
		})
	}
}

func TestReorderIsNotInvertible(t *testing.T) {
	s, _ := newNumberedStore(t, 3)

	s.Reorder(1, 3)
	if got, want := ids(s.Tasks()), []int64{2, 1, 3}; !slices.Equal(got, want) {
		t.Fatalf("Reorder(1, 3) = %v, want %v", got, want)
	}

	s.Reorder(3, 1)
	got := ids(s.Tasks())
	if want := []int64{2, 3, 1}; !slices.Equal(got, want) {
		t.Fatalf("Reorder(3, 1) = %v, want %v", got, want)
	}
	if slices.Equal(got, []int64{1, 2, 3}) {
		t.Error("reorder round trip restored the original order")
	}
}

func TestFilteredPartitionsTasks(t *testing.T) {
	s, _ := newNumberedStore(t, 5)
	s.ToggleCompleted(2, true)
	s.ToggleCompleted(5, true)

	active := ids(slices.Collect(s.Filtered(domain.FilterActive)))
	completed := ids(slices.Collect(s.Filtered(domain.FilterCompleted)))
	all := ids(slices.Collect(s.Filtered(domain.FilterAll)))

	if want := []int64{1, 3, 4}; !slices.Equal(active, want) {
		t.Errorf("active = %v, want %v", active, want)
	}
	if want := []int64{2, 5}; !slices.Equal(completed, want) {
		t.Errorf("completed = %v, want %v", completed, want)
	}
	if want := []int64{1, 2, 3, 4, 5}; !slices.Equal(all, want) {
		t.Errorf("all = %v, want %v", all, want)
	}

	union := map[int64]int{}
	for _, id := range append(active, completed...) {
		union[id]++
	}
	for _, id := range all {
		if union[id] != 1 {
			t.Errorf("id %d appears %d times across active and completed", id, union[id])
		}
	}
	if len(union) != len(all) {
		t.Errorf("union has %d ids, want %d", len(union), len(all))
	}
}

func TestFilteredDoesNotMutate(t *testing.T) {
	s, p := newNumberedStore(t, 3)
	s.ToggleCompleted(1, true)
	p.saves = nil
	before := s.Tasks()

	for range s.Filtered(domain.FilterActive) {
		break
	}
	_ = slices.Collect(s.Filtered(domain.FilterCompleted))

	if !slices.Equal(s.Tasks(), before) {
		t.Errorf("Filtered mutated the list: %+v", s.Tasks())
	}
	if len(p.saves) != 0 {
		t.Errorf("saves = %d, want 0", len(p.saves))
	}
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	p := &recordingPersistence{err: errors.New("disk full")}
	s := NewTaskStore(p)

	task, ok := s.Add("still here", nil)
	if !ok {
		t.Fatal("Add reported false")
	}
	if _, found := s.Get(task.ID); !found {
		t.Error("task dropped after failed save")
	}
}

func TestCounts(t *testing.T) {
	s, _ := newNumberedStore(t, 3)
	s.ToggleCompleted(3, true)

	active, completed := s.Counts()
	if active != 2 || completed != 1 {
		t.Errorf("Counts = %d, %d; want 2, 1", active, completed)
	}
}

func TestScenarioBuyMilk(t *testing.T) {
	slot := NewMemorySlot()
	s := NewTaskStore(newTestAdapter(t, slot))

	task, _ := s.Add("Buy milk", strPtr("2024-01-01"))
	all := s.Tasks()
	if len(all) != 1 {
		t.Fatalf("len = %d, want 1", len(all))
	}
	got := all[0]
	if got.Text != "Buy milk" || got.DueDate == nil || *got.DueDate != "2024-01-01" || got.Completed {
		t.Errorf("task = %+v", got)
	}

	s.ToggleCompleted(task.ID, true)

	completed := slices.Collect(s.Filtered(domain.FilterCompleted))
	if len(completed) != 1 || completed[0].ID != task.ID {
		t.Errorf("completed = %+v, want the one task", completed)
	}
	if active := slices.Collect(s.Filtered(domain.FilterActive)); len(active) != 0 {
		t.Errorf("active = %+v, want empty", active)
	}

	reloaded := NewTaskStore(newTestAdapter(t, slot))
	if got := reloaded.Tasks(); len(got) != 1 || !got[0].Completed {
		t.Errorf("reloaded = %+v", got)
	}
}
