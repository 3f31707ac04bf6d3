// Package session implements per-client connection state: the socket,
// identity, selected database, and last-activity timestamp.
package session

import (
	"bufio"
	"net"

	"github.com/google/uuid"

	"github.com/codepr/tritedb/internal/trie"
)

// Session is one connected client's state. It has at most one request in
// flight at a time (see internal/server), so its fields need no internal
// locking; USE swaps DB after the store has selected or created the
// database, outside the store lock.
type Session struct {
	ID         uuid.UUID
	Conn       net.Conn
	Reader     *bufio.Reader
	DB         *trie.Database
	LastAction int64
}

// New wraps conn into a fresh session pinned to db, with a buffered
// reader sized for typical small command frames.
func New(conn net.Conn, db *trie.Database, now int64) *Session {
	return &Session{
		ID:         uuid.New(),
		Conn:       conn,
		Reader:     bufio.NewReader(conn),
		DB:         db,
		LastAction: now,
	}
}

// Touch records protocol activity at now.
func (s *Session) Touch(now int64) {
	s.LastAction = now
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	return s.Conn.Close()
}
