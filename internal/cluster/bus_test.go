package cluster

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// freeBusBasePort returns a listenPort such that listenPort+BusPortOffset
// is free for a UDP bind right now, without hardcoding a port number.
func freeBusBasePort(t *testing.T) int {
	t.Helper()
	probe, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	require.NoError(t, err)
	port := probe.LocalAddr().(*net.UDPAddr).Port
	require.NoError(t, probe.Close())
	return port - BusPortOffset
}

func TestBusReceivesJoinAnnouncement(t *testing.T) {
	basePort := freeBusBasePort(t)
	self := Member{Host: "127.0.0.1", Port: "9090"}
	list := NewList(self)

	bus, err := Listen("127.0.0.1", basePort, list, self, nil)
	require.NoError(t, err)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Serve(ctx)

	err = SendJoin("127.0.0.1", "9191", "127.0.0.1", basePort)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return list.Len() == 2
	}, 2*time.Second, 10*time.Millisecond)

	snap := list.Snapshot()
	found := false
	for _, m := range snap {
		if m.Host == "127.0.0.1" && m.Port == "9191" {
			found = true
		}
	}
	require.True(t, found)
}
