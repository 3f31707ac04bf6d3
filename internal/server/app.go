// Package server implements the staged concurrency pipeline: one accept
// loop that spawns a goroutine per connection, and a pool of command
// workers that dispatch under the store lock, coordinated by channels
// instead of hand-rolled epoll readiness sets (see SPEC_FULL.md §4.4 for
// why this maps the readiness-multiplexing half onto the netpoller
// rather than a fixed thread pool).
package server

import (
	"time"

	"go.uber.org/zap"

	"github.com/codepr/tritedb/internal/cluster"
	"github.com/codepr/tritedb/internal/config"
	"github.com/codepr/tritedb/internal/session"
	"github.com/codepr/tritedb/internal/store"
)

// App is the top-level application context: every value a worker needs,
// passed explicitly at startup rather than reached for as a global (see
// avoiding hidden mutable module-level state).
type App struct {
	Store    *store.Store
	Sessions *session.Table
	Members  *cluster.List
	Bus      *cluster.Bus
	Config   *config.Config
	Logger   *zap.Logger

	StartedAt time.Time
}

// NewApp wires the application context from its already-constructed
// parts.
func NewApp(st *store.Store, sessions *session.Table, members *cluster.List, cfg *config.Config, logger *zap.Logger) *App {
	return &App{
		Store:     st,
		Sessions:  sessions,
		Members:   members,
		Config:    cfg,
		Logger:    logger,
		StartedAt: time.Now(),
	}
}
