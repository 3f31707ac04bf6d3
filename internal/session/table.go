package session

import (
	"sync"

	"github.com/google/uuid"
)

// Table is the process-wide set of live sessions, keyed by id. Insertion
// and removal are guarded by an internal mutex, not by the store lock.
type Table struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewTable returns an empty session table.
func NewTable() *Table {
	return &Table{sessions: make(map[uuid.UUID]*Session)}
}

// Add registers s in the table.
func (t *Table) Add(s *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[s.ID] = s
}

// Remove drops id from the table.
func (t *Table) Remove(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, id)
}

// Len reports the number of live sessions.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
