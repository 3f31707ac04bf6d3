package server

import (
	"sync"
	"sync/atomic"

	"github.com/codepr/tritedb/internal/protocol"
	"github.com/codepr/tritedb/internal/session"
)

// ioEvent is the baton handed from an I/O worker to a command worker and
// back: a decoded request plus a one-slot reply channel. It is the
// spec's "IO event".
type ioEvent struct {
	sess   *session.Session
	header protocol.Header
	body   []byte
	reply  chan reply
}

type reply struct {
	header protocol.Header
	body   []byte
	drop   bool
}

// eventPool wraps sync.Pool around *ioEvent recycling, with a running
// count of events allocated so far, for the staged server's hot
// per-request allocation path.
type eventPool struct {
	sync.Pool
	totalAllocated atomic.Int64
}

func newEventPool() *eventPool {
	p := &eventPool{}
	p.New = func() any {
		p.totalAllocated.Add(1)
		return &ioEvent{reply: make(chan reply, 1)}
	}
	return p
}

func (p *eventPool) get() *ioEvent {
	ev := p.Pool.Get().(*ioEvent)
	return ev
}

func (p *eventPool) put(ev *ioEvent) {
	ev.sess = nil
	ev.header = protocol.Header{}
	ev.body = nil
	// drain any stale reply so a reused event never returns a stale one
	select {
	case <-ev.reply:
	default:
	}
	p.Pool.Put(ev)
}
