package server

import (
	"context"
	"errors"
	"net"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codepr/tritedb/internal/protocol"
	"github.com/codepr/tritedb/internal/session"
)

// idleReadTimeout bounds how long a connection's goroutine blocks in Read
// before it re-checks for shutdown, the Go-native equivalent of a
// bounded readiness-wait timeout (§5).
const idleReadTimeout = 2 * time.Second

// Server runs the pipeline described in SPEC_FULL.md §4.4: one accept
// loop that hands each connection its own goroutine (Go's netpoller
// supplies the N:M readiness multiplexing an epoll-based design would
// otherwise hand-roll), feeding a bounded pool of command workers that
// do the actual CPU-bound dispatch under the store lock.
type Server struct {
	app      *App
	listener net.Listener
	events   *eventPool

	cmdCh chan *ioEvent
}

// New builds a Server bound to listener, ready to Run.
func New(app *App, listener net.Listener) *Server {
	return &Server{
		app:      app,
		listener: listener,
		events:   newEventPool(),
		cmdCh:    make(chan *ioEvent, 256),
	}
}

// Run drives the pipeline until ctx is cancelled, then unwinds every
// loop cleanly and waits for them to exit.
func (s *Server) Run(ctx context.Context) error {
	cmdWorkers := s.app.Config.CommandWorkers
	if cmdWorkers <= 0 {
		cmdWorkers = max(1, runtime.GOMAXPROCS(0))
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return s.listener.Close()
	})

	g.Go(func() error { return s.acceptLoop(ctx, g) })

	for i := 0; i < cmdWorkers; i++ {
		g.Go(func() error { return s.cmdWorkerLoop(ctx) })
	}
	g.Go(func() error { return s.sweepLoop(ctx) })

	err := g.Wait()
	if errors.Is(err, net.ErrClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// acceptLoop accepts connections in a tight sub-loop and spawns a
// dedicated goroutine per connection via g, rather than routing it
// through a fixed-size worker pool — a pool would cap the number of
// simultaneously served clients at the pool size, defeating the point
// of relying on the netpoller for readiness multiplexing.
func (s *Server) acceptLoop(ctx context.Context, g *errgroup.Group) error {
	now := time.Now().Unix()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		sess := session.New(conn, s.app.Store.Use(defaultDBName), now)
		s.app.Sessions.Add(sess)
		if s.app.Logger != nil {
			s.app.Logger.Debug("accepted connection", zap.String("session", sess.ID.String()))
		}
		g.Go(func() error {
			s.serveConn(ctx, sess)
			return nil
		})
	}
}

const defaultDBName = "db0"

// serveConn is the ordering-critical loop: it never reads the next frame
// off the wire until the previous one's reply has been written, which is
// what realizes "responses are delivered in request order" (spec §5).
func (s *Server) serveConn(ctx context.Context, sess *session.Session) {
	defer func() {
		s.app.Sessions.Remove(sess.ID)
		sess.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		sess.Conn.SetReadDeadline(time.Now().Add(idleReadTimeout))
		header, body, err := protocol.Decode(sess.Reader, s.app.Config.MaxRequestSize)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return
		}
		s.app.Store.Stats.BytesRead.Add(uint64(len(body) + 1))
		sess.Touch(time.Now().Unix())

		ev := s.events.get()
		ev.sess = sess
		ev.header = header
		ev.body = body

		select {
		case s.cmdCh <- ev:
		case <-ctx.Done():
			return
		}

		var r reply
		select {
		case r = <-ev.reply:
		case <-ctx.Done():
			return
		}
		s.events.put(ev)

		frame := protocol.EncodeFrame(r.header, r.body)
		sess.Conn.SetWriteDeadline(time.Now().Add(idleReadTimeout))
		if _, err := sess.Conn.Write(frame); err != nil {
			return
		}
		s.app.Store.Stats.BytesWritten.Add(uint64(len(frame)))
		s.app.Store.Stats.Requests.Add(1)

		if r.drop {
			return
		}
	}
}

// cmdWorkerLoop drains cmdCh, executing the dispatch table under the
// store lock and handing the result back on the event's reply channel.
func (s *Server) cmdWorkerLoop(ctx context.Context) error {
	for {
		select {
		case ev := <-s.cmdCh:
			r := dispatch(s.app, ev.sess, ev.header, ev.body)
			ev.reply <- r
		case <-ctx.Done():
			return nil
		}
	}
}

// sweepLoop runs the periodic expiration sweep on its own timer.
func (s *Server) sweepLoop(ctx context.Context) error {
	interval := s.app.Config.SweepInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.app.Store.Sweep()
		case <-ctx.Done():
			return nil
		}
	}
}
