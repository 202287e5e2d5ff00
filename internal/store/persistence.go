package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"git.sr.ht/~jakintosh/todo/internal/domain"
)

// DefaultKey is the slot key the task list is stored under.
const DefaultKey = "colorfulTodoTasks"

// CorruptSuffix is appended to the key to keep an undecodable value
// around instead of letting the next save overwrite it.
const CorruptSuffix = ".corrupt"

// ErrUnreadSlot is returned by Save while the stored list could not be
// read, so an unknown value is never overwritten.
var ErrUnreadSlot = errors.New("stored tasks were never read")

//go:embed schema/tasks.schema.json
var taskSchema string

// SerializationError reports a failure encoding, decoding or writing the
// persisted task list.
type SerializationError struct {
	Op  string // "read", "encode", "decode" or "write"
	Key string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// Adapter serializes the whole task list as JSON under a single slot key.
type Adapter struct {
	slot   Slot
	key    string
	logger *log.Logger
	schema *jsonschema.Schema

	loadErr error
}

func NewAdapter(slot Slot, key string, logger *log.Logger) (*Adapter, error) {
	if key == "" {
		key = DefaultKey
	}
	schema, err := jsonschema.CompileString("tasks.schema.json", taskSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile task schema: %w", err)
	}
	return &Adapter{
		slot:   slot,
		key:    key,
		logger: logger,
		schema: schema,
	}, nil
}

func (a *Adapter) Key() string {
	return a.key
}

// LoadErr reports why the last Load could not read the slot. While it is
// non-nil Save refuses to write.
func (a *Adapter) LoadErr() error {
	return a.loadErr
}

// Load returns the stored list, or an empty list when nothing is stored or
// the stored value cannot be decoded. Undecodable values are copied to the
// corrupt key before being dropped. A failed read leaves the adapter
// read-only until a later Load succeeds.
func (a *Adapter) Load() []domain.Task {
	raw, ok, err := a.slot.Get(a.key)
	if err != nil {
		a.loadErr = &SerializationError{Op: "read", Key: a.key, Err: err}
		a.logger.Error("failed to read tasks", "err", a.loadErr)
		return []domain.Task{}
	}
	a.loadErr = nil
	if !ok || raw == "" {
		return []domain.Task{}
	}

	tasks, err := a.decode(raw)
	if err != nil {
		a.logger.Error("failed to load tasks", "err", err)
		a.preserve(raw)
		return []domain.Task{}
	}
	a.logger.Debug("loaded tasks", "key", a.key, "count", len(tasks))
	return tasks
}

func (a *Adapter) Save(tasks []domain.Task) error {
	if a.loadErr != nil {
		return a.fail(&SerializationError{Op: "write", Key: a.key, Err: ErrUnreadSlot})
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return a.fail(&SerializationError{Op: "encode", Key: a.key, Err: err})
	}
	if err := a.slot.Set(a.key, string(data)); err != nil {
		return a.fail(&SerializationError{Op: "write", Key: a.key, Err: err})
	}
	return nil
}

func (a *Adapter) decode(raw string) ([]domain.Task, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &SerializationError{Op: "decode", Key: a.key, Err: err}
	}
	if err := a.schema.Validate(doc); err != nil {
		return nil, &SerializationError{Op: "decode", Key: a.key, Err: err}
	}

	var tasks []domain.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, &SerializationError{Op: "decode", Key: a.key, Err: err}
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (a *Adapter) preserve(raw string) {
	backup := a.key + CorruptSuffix
	if err := a.slot.Set(backup, raw); err != nil {
		a.logger.Error("failed to preserve corrupt tasks", "key", backup, "err", err)
		return
	}
	a.logger.Warn("preserved corrupt tasks", "key", backup)
}

func (a *Adapter) fail(err *SerializationError) error {
	a.logger.Error("failed to save tasks", "err", err)
	return err
}
