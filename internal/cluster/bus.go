package cluster

import (
	"bufio"
	"bytes"
	"context"
	"net"

	"go.uber.org/zap"

	"github.com/codepr/tritedb/internal/protocol"
)

// BusPortOffset is added to the configured listening port to derive the
// UDP "bus port" used exclusively for cluster membership frames.
const BusPortOffset = 10000

// Bus is the UDP socket used to send and receive JOIN frames.
type Bus struct {
	conn   *net.UDPConn
	self   Member
	list   *List
	logger *zap.Logger
}

// Listen opens the bus port (listenPort + BusPortOffset) on host and
// returns a Bus ready to announce and receive JOIN frames.
func Listen(host string, listenPort int, list *List, self Member, logger *zap.Logger) (*Bus, error) {
	addr := &net.UDPAddr{IP: net.ParseIP(host), Port: listenPort + BusPortOffset}
	if addr.IP == nil {
		addr.IP = net.IPv4zero
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, err
	}
	return &Bus{conn: conn, self: self, list: list, logger: logger}, nil
}

// Close releases the bus socket.
func (b *Bus) Close() error { return b.conn.Close() }

// Announce sends a JOIN frame advertising self to seedHost's bus port
// (seedPort + BusPortOffset).
func (b *Bus) Announce(seedHost string, seedPort int) error {
	h := protocol.Header{Opcode: protocol.JOIN, Request: true}
	body := protocol.EncodePutBody(0, b.self.Host, []byte(b.self.Port))
	frame := protocol.EncodeFrame(h, body)

	dst := &net.UDPAddr{IP: net.ParseIP(seedHost), Port: seedPort + BusPortOffset}
	_, err := b.conn.WriteToUDP(frame, dst)
	return err
}

// SendJoin sends a one-off JOIN announcement from an ephemeral UDP
// socket, for the CLI's `join HOST PORT` subcommand — it doesn't need a
// running Bus, just enough of a socket to fire one datagram.
func SendJoin(selfHost, selfPort, destHost string, destPort int) error {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return err
	}
	defer conn.Close()

	h := protocol.Header{Opcode: protocol.JOIN, Request: true}
	body := protocol.EncodePutBody(0, selfHost, []byte(selfPort))
	frame := protocol.EncodeFrame(h, body)

	dst := &net.UDPAddr{IP: net.ParseIP(destHost), Port: destPort + BusPortOffset}
	_, err = conn.WriteToUDP(frame, dst)
	return err
}

// Serve reads JOIN datagrams until ctx is cancelled, adding announced
// peers to the member list and optionally acknowledging with an ACK
// frame — acknowledgement is best-effort and its absence is not an
// error, since JOIN is fundamentally a fire-and-forget announcement.
func (b *Bus) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		b.conn.Close()
	}()

	buf := make([]byte, 2048)
	for {
		n, from, err := b.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		b.handleDatagram(buf[:n], from)
	}
}

func (b *Bus) handleDatagram(data []byte, from *net.UDPAddr) {
	r := bufio.NewReader(bytes.NewReader(data))
	header, body, err := protocol.Decode(r, protocol.MaxBodyLen)
	if err != nil || header.Opcode != protocol.JOIN {
		return
	}
	join, err := protocol.ParseJoin(body)
	if err != nil {
		return
	}
	added := b.list.Add(Member{Host: join.Host, Port: join.Port})
	if b.logger != nil && added {
		b.logger.Info("cluster: peer joined",
			zap.String("host", join.Host), zap.String("port", join.Port), zap.String("from", from.String()))
	}

	ack := protocol.EncodeFrame(protocol.Header{Opcode: protocol.ACK}, protocol.EncodeAck(protocol.OK))
	_, _ = b.conn.WriteToUDP(ack, from)
}
