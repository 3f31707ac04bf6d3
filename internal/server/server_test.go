package server

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codepr/tritedb/internal/cluster"
	"github.com/codepr/tritedb/internal/config"
	"github.com/codepr/tritedb/internal/protocol"
	"github.com/codepr/tritedb/internal/session"
	"github.com/codepr/tritedb/internal/store"
)

func startTestServer(t *testing.T) net.Addr {
	t.Helper()

	cfg := &config.Config{
		MaxRequestSize: 1 << 20,
		SweepInterval:  50 * time.Millisecond,
	}
	st := store.New()
	sessions := session.NewTable()
	members := cluster.NewList(cluster.Member{Host: "127.0.0.1", Port: "0", Self: true})
	app := NewApp(st, sessions, members, cfg, nil)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(app, listener)
	ctx, cancel := context.WithCancel(context.Background())
	go srv.Run(ctx)
	t.Cleanup(cancel)

	return listener.Addr()
}

// client wraps a raw frame-level dialogue against the test server.
type client struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dial(t *testing.T, addr net.Addr) *client {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &client{t: t, conn: conn, r: bufio.NewReader(conn)}
}

func (c *client) roundtrip(h protocol.Header, body []byte) (protocol.Header, []byte) {
	c.t.Helper()
	frame := protocol.EncodeFrame(h, body)
	_, err := c.conn.Write(frame)
	require.NoError(c.t, err)

	respHeader, respBody, err := protocol.Decode(c.r, protocol.MaxBodyLen)
	require.NoError(c.t, err)
	return respHeader, respBody
}

func TestSeedScenarioPutGet(t *testing.T) {
	addr := startTestServer(t)
	c := dial(t, addr)

	h, body := c.roundtrip(protocol.Header{Opcode: protocol.PUT, Request: true},
		protocol.EncodePutBody(-1, "foo", []byte("bar")))
	code, err := protocol.DecodeAck(body)
	require.NoError(t, err)
	require.Equal(t, protocol.ACK, h.Opcode)
	require.Equal(t, protocol.OK, code)

	h, body = c.roundtrip(protocol.Header{Opcode: protocol.GET, Request: true},
		[]byte("foo"))
	require.Equal(t, protocol.GET, h.Opcode)
	tuple, err := protocol.DecodeGetSingle(body)
	require.NoError(t, err)
	require.Equal(t, int32(-1), tuple.TTL)
	require.Equal(t, "bar", string(tuple.Value))
}

func TestSeedScenarioPrefixCountAndDelete(t *testing.T) {
	addr := startTestServer(t)
	c := dial(t, addr)

	c.roundtrip(protocol.Header{Opcode: protocol.PUT, Request: true}, protocol.EncodePutBody(-1, "alpha", []byte("1")))
	c.roundtrip(protocol.Header{Opcode: protocol.PUT, Request: true}, protocol.EncodePutBody(-1, "alphax", []byte("2")))

	_, body := c.roundtrip(protocol.Header{Opcode: protocol.CNT, Request: true, Prefix: true}, []byte("alpha"))
	n, err := protocol.DecodeCount(body)
	require.NoError(t, err)
	require.Equal(t, uint64(2), n)

	h, body := c.roundtrip(protocol.Header{Opcode: protocol.DEL, Request: true, Prefix: true}, []byte("alpha"))
	code, _ := protocol.DecodeAck(body)
	require.Equal(t, protocol.ACK, h.Opcode)
	require.Equal(t, protocol.OK, code)

	_, body = c.roundtrip(protocol.Header{Opcode: protocol.CNT, Request: true, Prefix: true}, []byte("alpha"))
	n, _ = protocol.DecodeCount(body)
	require.Equal(t, uint64(0), n)
}

func TestSeedScenarioIncDec(t *testing.T) {
	addr := startTestServer(t)
	c := dial(t, addr)

	c.roundtrip(protocol.Header{Opcode: protocol.PUT, Request: true}, protocol.EncodePutBody(-1, "n", []byte("9")))
	c.roundtrip(protocol.Header{Opcode: protocol.INC, Request: true}, []byte("n"))

	_, body := c.roundtrip(protocol.Header{Opcode: protocol.GET, Request: true}, []byte("n"))
	tuple, _ := protocol.DecodeGetSingle(body)
	require.Equal(t, "10", string(tuple.Value))

	c.roundtrip(protocol.Header{Opcode: protocol.PUT, Request: true}, protocol.EncodePutBody(-1, "n", []byte("abc")))
	h, body := c.roundtrip(protocol.Header{Opcode: protocol.INC, Request: true}, []byte("n"))
	code, _ := protocol.DecodeAck(body)
	require.Equal(t, protocol.ACK, h.Opcode)
	require.Equal(t, protocol.NOK, code)
}

func TestSeedScenarioUseSwitchesDatabase(t *testing.T) {
	addr := startTestServer(t)
	c := dial(t, addr)

	c.roundtrip(protocol.Header{Opcode: protocol.USE, Request: true}, []byte("scratch"))
	c.roundtrip(protocol.Header{Opcode: protocol.PUT, Request: true}, protocol.EncodePutBody(-1, "x", []byte("1")))
	c.roundtrip(protocol.Header{Opcode: protocol.USE, Request: true}, []byte("db0"))

	h, body := c.roundtrip(protocol.Header{Opcode: protocol.GET, Request: true}, []byte("x"))
	require.Equal(t, protocol.ACK, h.Opcode)
	code, _ := protocol.DecodeAck(body)
	require.Equal(t, protocol.NOK, code)

	c.roundtrip(protocol.Header{Opcode: protocol.USE, Request: true}, []byte("scratch"))
	h, body = c.roundtrip(protocol.Header{Opcode: protocol.GET, Request: true}, []byte("x"))
	require.Equal(t, protocol.GET, h.Opcode)
	tuple, _ := protocol.DecodeGetSingle(body)
	require.Equal(t, "1", string(tuple.Value))
}

func TestOrderingPerConnection(t *testing.T) {
	addr := startTestServer(t)
	c := dial(t, addr)

	for i := 0; i < 50; i++ {
		key := []byte{byte('a' + i%26)}
		h, body := c.roundtrip(protocol.Header{Opcode: protocol.PUT, Request: true},
			protocol.EncodePutBody(-1, string(key), []byte{byte(i)}))
		require.Equal(t, protocol.ACK, h.Opcode)
		code, _ := protocol.DecodeAck(body)
		require.Equal(t, protocol.OK, code)
	}
}

func TestQuitDropsConnection(t *testing.T) {
	addr := startTestServer(t)
	c := dial(t, addr)

	// QUIT still gets one ACK frame back before the server drops the
	// connection, so read it before asserting the connection is closed.
	c.roundtrip(protocol.Header{Opcode: protocol.QUIT, Request: true}, nil)

	c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 16)
	_, err := c.conn.Read(buf)
	require.Error(t, err)
}
