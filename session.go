// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package natpunch

import (
	"net"
	"net/netip"
	"strconv"
	"time"

	"github.com/pion/logging"
	"github.com/pion/natpunch/stun"
)

// receiveBufferSize is the size of the scratch buffer every datagram is
// read into.
const receiveBufferSize = 8192

// DefaultRecvBufferSize is the socket receive buffer requested for bursts.
const DefaultRecvBufferSize = 2 * 1024 * 1024

// Params are the immutable session parameters.
type Params struct {
	RemoteAddr        string // host of the rendezvous peer
	RemotePort        uint16
	LocalPort         uint16 // 0 binds an ephemeral port
	KeepaliveInterval uint32 // seconds, 0 disables keepalives
	Script            string // notifier command
	RestartInterval   uint32 // seconds, 0 exits on the first failure
	RecvBufferSize    int    // SO_RCVBUF, 0 keeps the system default
}

// Remote returns the rendezvous peer as host:port.
func (p Params) Remote() string {
	return net.JoinHostPort(p.RemoteAddr, strconv.Itoa(int(p.RemotePort)))
}

// Keepalive returns the keepalive interval, 0 if disabled.
func (p Params) Keepalive() time.Duration {
	return time.Duration(p.KeepaliveInterval) * time.Second
}

// Restart returns the delay before a failed session is restarted.
func (p Params) Restart() time.Duration {
	return time.Duration(p.RestartInterval) * time.Second
}

// MapStatus is the state of the NAT mapping.
type MapStatus int

// Mapping states.
const (
	MapUninitialized MapStatus = iota
	MapMapped
	MapError
)

func (s MapStatus) String() string {
	switch s {
	case MapUninitialized:
		return "uninitialized"
	case MapMapped:
		return "mapped"
	case MapError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is the mutable state of a session. MappedAddr and MappedPort are
// valid only in MapMapped, MapError only in MapError.
type Status struct {
	MapStatus  MapStatus
	MappedAddr netip.Addr
	MappedPort uint16
	MapError   stun.ErrorCode

	// ExpectedTransactionID is set once per bind attempt and is the only
	// key responses are correlated by.
	ExpectedTransactionID stun.TransactionID
}

func (s *Status) reset(ms MapStatus) {
	*s = Status{
		MapStatus:             ms,
		ExpectedTransactionID: s.ExpectedTransactionID,
	}
}

// Session owns one socket, its parameters and its status.
type Session struct {
	Params Params
	Status Status

	conn     PacketConn
	buf      [receiveBufferSize]byte
	notifier Notifier
	metrics  *Metrics
	log      logging.LeveledLogger
}

// NewSession returns an unbound session. A Binder attaches the socket.
func NewSession(params Params, opts ...Option) *Session {
	o := newOptions(opts)
	s := &Session{
		Params:   params,
		notifier: o.notifier,
		metrics:  o.metrics,
		log:      o.loggerFactory.NewLogger("natpunch"),
	}
	if s.notifier == nil {
		s.notifier = &logNotifier{log: o.loggerFactory.NewLogger("notifier")}
	}

	return s
}

// Conn returns the bound socket or nil.
func (s *Session) Conn() PacketConn {
	return s.conn
}

// Attach makes c the session socket, releasing the previous one first.
func (s *Session) Attach(c PacketConn) error {
	err := s.Release()
	s.conn = c

	return err
}

// Release closes the session socket, if any.
func (s *Session) Release() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil

	return err
}

// Close releases the session socket.
func (s *Session) Close() error {
	return s.Release()
}
