package server

import (
	"fmt"
	"runtime"
	"time"

	"github.com/codepr/tritedb/internal/cluster"
	"github.com/codepr/tritedb/internal/protocol"
	"github.com/codepr/tritedb/internal/session"
)

// handlerFunc is a pure function of (app, session, request) -> response,
// mutating the store under its own lock when needed. It never mutates
// sess.DB directly except USE, which pins the session to a (possibly
// new) database.
type handlerFunc func(app *App, sess *session.Session, h protocol.Header, body []byte) reply

func ack(code byte) reply {
	return reply{header: protocol.Header{Opcode: protocol.ACK}, body: protocol.EncodeAck(code)}
}

func handlePut(app *App, sess *session.Session, h protocol.Header, body []byte) reply {
	req, err := protocol.ParsePut(body)
	if err != nil {
		return ack(protocol.NOK)
	}
	code := app.Store.Put(sess.DB, h.Prefix, req.Key, req.Value, req.TTL)
	return ack(code)
}

func handleGet(app *App, sess *session.Session, h protocol.Header, body []byte) reply {
	key, err := protocol.ParseKey(body)
	if err != nil {
		return ack(protocol.NOK)
	}
	tuples, ok := app.Store.Get(sess.DB, h.Prefix, key)
	if !ok {
		return ack(protocol.NOK)
	}
	if !h.Prefix {
		t := tuples[0]
		return reply{
			header: protocol.Header{Opcode: protocol.GET},
			body:   protocol.EncodeGetSingle(t.TTL, t.Key, t.Value),
		}
	}
	return reply{
		header: protocol.Header{Opcode: protocol.GET, Prefix: true},
		body:   protocol.EncodeGetPrefix(tuples),
	}
}

func handleDel(app *App, sess *session.Session, h protocol.Header, body []byte) reply {
	key, err := protocol.ParseKey(body)
	if err != nil {
		return ack(protocol.NOK)
	}
	if app.Store.Del(sess.DB, h.Prefix, key) {
		return ack(protocol.OK)
	}
	return ack(protocol.NOK)
}

func handleTTL(app *App, sess *session.Session, h protocol.Header, body []byte) reply {
	req, err := protocol.ParseTTL(body)
	if err != nil {
		return ack(protocol.NOK)
	}
	if app.Store.SetTTL(sess.DB, req.Key, req.TTL) {
		return ack(protocol.OK)
	}
	return ack(protocol.NOK)
}

func incdec(delta int64) handlerFunc {
	return func(app *App, sess *session.Session, h protocol.Header, body []byte) reply {
		key, err := protocol.ParseKey(body)
		if err != nil {
			return ack(protocol.NOK)
		}
		if app.Store.IncDec(sess.DB, h.Prefix, key, delta) {
			return ack(protocol.OK)
		}
		return ack(protocol.NOK)
	}
}

func handleCnt(app *App, sess *session.Session, h protocol.Header, body []byte) reply {
	prefix := ""
	if h.Prefix {
		key, err := protocol.ParseKey(body)
		if err != nil {
			return ack(protocol.NOK)
		}
		prefix = key
	}
	n := app.Store.Count(sess.DB, prefix)
	return reply{header: protocol.Header{Opcode: protocol.CNT}, body: protocol.EncodeCount(n)}
}

func handleUse(app *App, sess *session.Session, h protocol.Header, body []byte) reply {
	name, err := protocol.ParseKey(body)
	if err != nil {
		return ack(protocol.NOK)
	}
	sess.DB = app.Store.Use(name)
	return ack(protocol.OK)
}

func handleKeys(app *App, sess *session.Session, h protocol.Header, body []byte) reply {
	prefix, err := protocol.ParseKey(body)
	if err != nil {
		prefix = ""
	}
	keys := app.Store.Keys(sess.DB, prefix)
	tuples := make([]protocol.Tuple, len(keys))
	for i, k := range keys {
		tuples[i] = protocol.Tuple{TTL: 0, Key: k}
	}
	return reply{header: protocol.Header{Opcode: protocol.KEYS, Prefix: true}, body: protocol.EncodeGetPrefix(tuples)}
}

func handlePing(app *App, sess *session.Session, h protocol.Header, body []byte) reply {
	return ack(protocol.OK)
}

func handleQuit(app *App, sess *session.Session, h protocol.Header, body []byte) reply {
	return reply{drop: true}
}

func handleDB(app *App, sess *session.Session, h protocol.Header, body []byte) reply {
	return reply{
		header: protocol.Header{Opcode: protocol.DB},
		body:   protocol.EncodeGetSingle(int32(protocol.OK), sess.DB.Name, nil),
	}
}

func handleFlush(app *App, sess *session.Session, h protocol.Header, body []byte) reply {
	app.Store.Flush(sess.DB)
	return ack(protocol.OK)
}

func handleInfo(app *App, sess *session.Session, h protocol.Header, body []byte) reply {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	uptime := time.Since(app.StartedAt).Truncate(time.Second)
	text := fmt.Sprintf(
		"uptime:%s\nclients:%d\nrequests:%d\nbytes_read:%d\nbytes_written:%d\nkeys:%d\nheap_alloc:%d\nheap_sys:%d\n",
		uptime, app.Sessions.Len(), app.Store.Stats.Requests.Load(),
		app.Store.Stats.BytesRead.Load(), app.Store.Stats.BytesWritten.Load(),
		app.Store.TotalKeys(), mem.HeapAlloc, mem.Sys,
	)
	return reply{header: protocol.Header{Opcode: protocol.INFO}, body: []byte(text)}
}

func handleJoin(app *App, sess *session.Session, h protocol.Header, body []byte) reply {
	req, err := protocol.ParseJoin(body)
	if err != nil {
		return ack(protocol.NOK)
	}
	app.Members.Add(cluster.Member{Host: req.Host, Port: req.Port})

	peers := make([]protocol.Peer, 0, app.Members.Len())
	for _, m := range app.Members.Snapshot() {
		peers = append(peers, protocol.Peer{Host: m.Host, Port: m.Port})
	}
	return reply{header: protocol.Header{Opcode: protocol.JOIN}, body: protocol.EncodeJoinPeers(peers)}
}

func handleNoop(app *App, sess *session.Session, h protocol.Header, body []byte) reply {
	return ack(protocol.OK)
}

// dispatchTable is indexed by opcode; an opcode with no business handler
// (ACK as a request) dispatches to handleNoop.
var dispatchTable = map[protocol.Opcode]handlerFunc{
	protocol.ACK:   handleNoop,
	protocol.PUT:   handlePut,
	protocol.GET:   handleGet,
	protocol.DEL:   handleDel,
	protocol.TTL:   handleTTL,
	protocol.INC:   incdec(1),
	protocol.DEC:   incdec(-1),
	protocol.CNT:   handleCnt,
	protocol.USE:   handleUse,
	protocol.KEYS:  handleKeys,
	protocol.PING:  handlePing,
	protocol.QUIT:  handleQuit,
	protocol.DB:    handleDB,
	protocol.INFO:  handleInfo,
	protocol.FLUSH: handleFlush,
	protocol.JOIN:  handleJoin,
}

func dispatch(app *App, sess *session.Session, h protocol.Header, body []byte) reply {
	fn, ok := dispatchTable[h.Opcode]
	if !ok {
		return handleNoop(app, sess, h, body)
	}
	return fn(app, sess, h, body)
}
