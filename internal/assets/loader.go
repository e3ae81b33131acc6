// Package assets runs long-loading work out of band. A routine must never
// block inside a phase, so Load starts a background task and returns a ticket
// immediately; completion is observed by polling the Table resource on later
// frames.
package assets

import (
	"sync"

	"github.com/google/uuid"
)

type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type task struct {
	name   string
	status Status
	data   []byte
	err    error
}

// Table is the shared-state entry tracking every in-flight and finished
// load. It is safe to poll from any phase.
type Table struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*task
}

func NewTable() *Table {
	return &Table{tasks: make(map[uuid.UUID]*task, 16)}
}

// Load starts fetch in a background goroutine and returns its ticket. The
// task flips to ready or failed when fetch returns; callers pick failures
// up on a later poll and decide whether to fall back.
func (t *Table) Load(name string, fetch func() ([]byte, error)) uuid.UUID {
	id := uuid.New()
	t.mu.Lock()
	t.tasks[id] = &task{name: name, status: StatusPending}
	t.mu.Unlock()

	go func() {
		data, err := fetch()
		t.mu.Lock()
		defer t.mu.Unlock()
		tk := t.tasks[id]
		if err != nil {
			tk.status = StatusFailed
			tk.err = err
			return
		}
		tk.status = StatusReady
		tk.data = data
	}()
	return id
}

// Status reports a ticket's state. Unknown tickets are failed, not panics.
func (t *Table) Status(id uuid.UUID) (Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tk, ok := t.tasks[id]
	if !ok {
		return StatusFailed, nil
	}
	return tk.status, tk.err
}

// Bytes returns the loaded payload once the ticket is ready.
func (t *Table) Bytes(id uuid.UUID) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tk, ok := t.tasks[id]
	if !ok || tk.status != StatusReady {
		return nil, false
	}
	return tk.data, true
}

// Pending reports how many loads are still in flight.
func (t *Table) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, tk := range t.tasks {
		if tk.status == StatusPending {
			n++
		}
	}
	return n
}
