// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package natpunch

import (
	"context"
	"net"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/pion/natpunch/stun"
	"github.com/pion/natpunch/stuntest"
	"github.com/pion/transport/v3/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverPort(t *testing.T, addr net.Addr) uint16 {
	t.Helper()

	udpAddr, ok := addr.(*net.UDPAddr)
	require.True(t, ok)

	return uint16(udpAddr.Port) //nolint:gosec // G115
}

func TestRunner_UDP(t *testing.T) {
	lim := test.TimeOut(10 * time.Second)
	defer lim.Stop()
	report := test.CheckRoutines(t)
	defer report()

	var (
		mu   sync.Mutex
		seen []stun.MessageType
	)
	addr, closeServer, err := stuntest.NewUDPServer(t, "udp4", 1500, stuntest.BindingHandler(true, func(req []byte) {
		if m, err := stun.Parse(req); err == nil {
			mu.Lock()
			seen = append(seen, m.Type)
			mu.Unlock()
		}
	}))
	require.NoError(t, err)

	notified := make(chan notification, 8)
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(Params{RemoteAddr: "127.0.0.1", RemotePort: serverPort(t, addr), KeepaliveInterval: 1},
		WithLoggerFactory(testLoggerFactory()),
		WithNotifier(NotifierFunc(func(verb Verb, addr netip.Addr, port uint16) error {
			select {
			case notified <- notification{verb: verb, addr: addr, port: port}:
			default:
			}

			return nil
		})),
	)
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx)
	}()

	first := <-notified
	assert.Equal(t, VerbBind, first.verb)
	assert.Equal(t, netip.MustParseAddr("127.0.0.1"), first.addr)
	assert.NotZero(t, first.port)

	// The keepalive request is answered under the same transaction.
	second := <-notified
	assert.Equal(t, first, second)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, typ := range seen {
			if typ == stun.TypeBindingIndication {
				return true
			}
		}

		return false
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 1, r.Attempts())
	closeServer(t)
}

func TestUDPBinder_ErrorResponse(t *testing.T) {
	report := test.CheckRoutines(t)
	defer report()

	addr, closeServer, err := stuntest.NewUDPServer(t, "udp4", 1500, stuntest.ErrorHandler(stun.CodeUnauthorized))
	require.NoError(t, err)
	defer closeServer(t)

	n := &recordingNotifier{}
	f := testLoggerFactory()
	s := NewSession(Params{RemoteAddr: "127.0.0.1", RemotePort: serverPort(t, addr)},
		WithLoggerFactory(f), WithNotifier(n))
	defer func() {
		assert.NoError(t, s.Close())
	}()

	ctx := context.Background()
	require.NoError(t, NewUDPBinder(f).Bind(ctx, s))
	assert.Equal(t, MapUninitialized, s.Status.MapStatus)

	readable, err := s.Conn().Wait(ctx, 5*time.Second)
	require.NoError(t, err)
	require.True(t, readable)
	require.NoError(t, s.Receive())
	assert.ErrorIs(t, s.Receive(), ErrWouldBlock)

	assert.Equal(t, MapError, s.Status.MapStatus)
	assert.Equal(t, stun.CodeUnauthorized, s.Status.MapError)
	assert.Empty(t, n.all())
}

func TestUDPBinder_ConnRequest(t *testing.T) {
	report := test.CheckRoutines(t)
	defer report()

	addr, closeServer, err := stuntest.NewUDPServer(t, "udp4", 1500, stuntest.BindingHandler(false, nil))
	require.NoError(t, err)
	defer closeServer(t)

	n := &recordingNotifier{}
	f := testLoggerFactory()
	s := NewSession(Params{RemoteAddr: "127.0.0.1", RemotePort: serverPort(t, addr)},
		WithLoggerFactory(f), WithNotifier(n))
	defer func() {
		assert.NoError(t, s.Close())
	}()

	ctx := context.Background()
	require.NoError(t, NewUDPBinder(f).Bind(ctx, s))
	readable, err := s.Conn().Wait(ctx, 5*time.Second)
	require.NoError(t, err)
	require.True(t, readable)
	require.NoError(t, s.Receive())
	require.Equal(t, MapMapped, s.Status.MapStatus)

	local, ok := s.Conn().LocalAddr().(*net.UDPAddr)
	require.True(t, ok)
	require.NoError(t, stuntest.Send(netip.AddrPortFrom(netip.MustParseAddr("127.0.0.1"), uint16(local.Port)), //nolint:gosec
		[]byte("knock")))

	readable, err = s.Conn().Wait(ctx, 5*time.Second)
	require.NoError(t, err)
	require.True(t, readable)
	require.NoError(t, s.Receive())

	calls := n.all()
	require.Len(t, calls, 2)
	assert.Equal(t, VerbConnRequest, calls[1].verb)
	assert.Equal(t, s.Status.MappedAddr, calls[1].addr)
	assert.Equal(t, s.Status.MappedPort, calls[1].port)
}

func TestUDPConn_Wait(t *testing.T) {
	report := test.CheckRoutines(t)
	defer report()

	f := testLoggerFactory()
	remote := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}
	conn, err := listenUDP(context.Background(), 0, remote, DefaultRecvBufferSize, f.NewLogger("test"))
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, conn.Close())
	}()

	t.Run("Timeout", func(t *testing.T) {
		readable, err := conn.Wait(context.Background(), 20*time.Millisecond)
		assert.NoError(t, err)
		assert.False(t, readable)

		n, err := conn.Recv(make([]byte, 16))
		assert.ErrorIs(t, err, ErrWouldBlock)
		assert.Zero(t, n)
	})
	t.Run("Cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		readable, err := conn.Wait(ctx, -1)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, readable)
	})
	t.Run("CancelLeavesNoStaleDeadline", func(t *testing.T) {
		local, ok := conn.LocalAddr().(*net.UDPAddr)
		require.True(t, ok)
		dst := netip.AddrPortFrom(netip.MustParseAddr("127.0.0.1"), uint16(local.Port)) //nolint:gosec
		buf := make([]byte, 16)

		for i := 0; i < 20; i++ {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := conn.Wait(ctx, -1)
			require.ErrorIs(t, err, context.Canceled)

			require.NoError(t, stuntest.Send(dst, []byte("after")))
			readable, err := conn.Wait(context.Background(), time.Second)
			require.NoError(t, err)
			require.True(t, readable)
			n, err := conn.Recv(buf)
			require.NoError(t, err)
			assert.Equal(t, "after", string(buf[:n]))
		}
	})
	t.Run("PeekKeepsDatagram", func(t *testing.T) {
		local, ok := conn.LocalAddr().(*net.UDPAddr)
		require.True(t, ok)
		require.NoError(t, stuntest.Send(netip.AddrPortFrom(netip.MustParseAddr("127.0.0.1"), uint16(local.Port)), //nolint:gosec
			[]byte("payload")))

		readable, err := conn.Wait(context.Background(), time.Second)
		require.NoError(t, err)
		require.True(t, readable)

		buf := make([]byte, 16)
		n, err := conn.Recv(buf)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(buf[:n]))

		_, err = conn.Recv(buf)
		assert.ErrorIs(t, err, ErrWouldBlock)
	})
}

func TestUDPBinder_PingWithoutConn(t *testing.T) {
	f := testLoggerFactory()
	s := NewSession(Params{}, WithLoggerFactory(f))

	assert.ErrorIs(t, NewUDPBinder(f).Ping(s, false), ErrNoConnection)
}
