// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package natpunch

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pion/logging"
	"github.com/pion/natpunch/stun"
	"github.com/stretchr/testify/require"
)

var errFake = errors.New("fake failure")

type datagram struct {
	b   []byte
	err error
}

// fakeConn is a PacketConn fed from a queue. Wait advances the mock clock
// by the full timeout when nothing is queued and cancels the test context
// once maxWaits is reached.
type fakeConn struct {
	mu      sync.Mutex
	queue   []datagram
	fixed   []byte
	sent    [][]byte
	waits   []time.Duration
	waitErr error
	closed  bool

	clock    *clock.Mock
	late     time.Duration // added to every timed wait that expires
	maxWaits int
	cancel   context.CancelFunc
}

func (c *fakeConn) push(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, datagram{b: b})
}

func (c *fakeConn) pushErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, datagram{err: err})
}

func (c *fakeConn) Wait(ctx context.Context, timeout time.Duration) (bool, error) {
	c.mu.Lock()
	c.waits = append(c.waits, timeout)
	waits, queued := len(c.waits), len(c.queue) > 0
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}
	if c.waitErr != nil {
		return false, c.waitErr
	}
	if c.maxWaits > 0 && waits >= c.maxWaits {
		c.cancel()

		return false, ctx.Err()
	}
	if queued {
		return true, nil
	}
	if timeout > 0 && c.clock != nil {
		c.clock.Add(timeout + c.late)
	}

	return false, nil
}

func (c *fakeConn) Recv(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fixed != nil {
		return copy(b, c.fixed), nil
	}
	if len(c.queue) == 0 {
		return 0, ErrWouldBlock
	}
	d := c.queue[0]
	c.queue = c.queue[1:]
	if d.err != nil {
		return 0, d.err
	}

	return copy(b, d.b), nil
}

func (c *fakeConn) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, append([]byte(nil), b...))

	return nil
}

func (c *fakeConn) LocalAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000}
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true

	return nil
}

type notification struct {
	verb Verb
	addr netip.Addr
	port uint16
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notification
	err   error
}

func (n *recordingNotifier) Notify(verb Verb, addr netip.Addr, port uint16) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notification{verb: verb, addr: addr, port: port})

	return n.err
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]notification(nil), n.calls...)
}

// fakeBinder attaches the next conn from conns on every Bind.
type fakeBinder struct {
	mu     sync.Mutex
	conns  []*fakeConn
	binds  int
	err    error
	onBind func()
}

func (b *fakeBinder) Bind(_ context.Context, s *Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.binds++
	if b.onBind != nil {
		b.onBind()
	}
	if b.err != nil {
		return b.err
	}
	if len(b.conns) == 0 {
		return errFake
	}
	c := b.conns[0]
	b.conns = b.conns[1:]
	s.Status.reset(MapUninitialized)

	return s.Attach(c)
}

func (b *fakeBinder) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.binds
}

type fakePinger struct {
	alts []bool
	err  error
}

func (p *fakePinger) Ping(_ *Session, alt bool) error {
	p.alts = append(p.alts, alt)

	return p.err
}

func testLoggerFactory() logging.LoggerFactory {
	f := logging.NewDefaultLoggerFactory()
	f.DefaultLogLevel = logging.LogLevelDisabled

	return f
}

var testID = stun.TransactionID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12} //nolint:gochecknoglobals

// newTestSession returns a session bound to a fakeConn and expecting
// testID.
func newTestSession(t *testing.T, opts ...Option) (*Session, *fakeConn) {
	t.Helper()

	opts = append([]Option{WithLoggerFactory(testLoggerFactory())}, opts...)
	s := NewSession(Params{RemoteAddr: "198.51.100.1", RemotePort: stun.DefaultPort}, opts...)
	c := &fakeConn{}
	require.NoError(t, s.Attach(c))
	s.Status.ExpectedTransactionID = testID

	return s, c
}

func bindingSuccess(t *testing.T, id stun.TransactionID, addr string, port uint16, xored bool) []byte {
	t.Helper()

	b := stun.NewBuilder(stun.TypeBindingSuccess, id)
	if xored {
		require.NoError(t, b.AddXORMappedAddress(netip.MustParseAddr(addr), port))
	} else {
		require.NoError(t, b.AddMappedAddress(netip.MustParseAddr(addr), port))
	}

	return append([]byte(nil), b.Bytes()...)
}

func bindingError(t *testing.T, id stun.TransactionID, code stun.ErrorCode) []byte {
	t.Helper()

	b := stun.NewBuilder(stun.TypeBindingError, id)
	require.NoError(t, b.AddErrorCode(code, code.Reason()))

	return append([]byte(nil), b.Bytes()...)
}
