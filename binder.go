// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package natpunch

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/pion/logging"
	"github.com/pion/natpunch/stun"
	"go.uber.org/multierr"
)

const software = "pion/natpunch"

// UDPBinder binds a UDPv4 socket and talks STUN to the rendezvous peer. It
// implements both Binder and KeepaliveSender.
//
// Ping with alt false sends a Binding Request carrying the current
// transaction id, so the answer refreshes the mapping and notifies again.
// Ping with alt true sends a Binding Indication, which keeps the mapping
// warm without expecting an answer.
type UDPBinder struct {
	resolver *net.Resolver
	builder  *stun.Builder
	log      logging.LeveledLogger
}

// NewUDPBinder returns a binder using the default resolver.
func NewUDPBinder(f logging.LoggerFactory) *UDPBinder {
	return &UDPBinder{
		resolver: net.DefaultResolver,
		builder:  stun.NewBuilder(stun.TypeBindingRequest, stun.TransactionID{}),
		log:      f.NewLogger("binder"),
	}
}

func (b *UDPBinder) resolve(ctx context.Context, p Params) (*net.UDPAddr, error) {
	if addr, err := netip.ParseAddr(p.RemoteAddr); err == nil {
		return net.UDPAddrFromAddrPort(netip.AddrPortFrom(addr.Unmap(), p.RemotePort)), nil
	}
	addrs, err := b.resolver.LookupNetIP(ctx, "ip4", p.RemoteAddr)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, &net.DNSError{Err: "no IPv4 address", Name: p.RemoteAddr, IsNotFound: true}
	}

	return net.UDPAddrFromAddrPort(netip.AddrPortFrom(addrs[0].Unmap(), p.RemotePort)), nil
}

// Bind releases the previous socket, opens a new one, draws a fresh
// transaction id, resets Status and sends a Binding Request. Failures wrap
// ErrTransport.
func (b *UDPBinder) Bind(ctx context.Context, s *Session) (err error) {
	if releaseErr := s.Release(); releaseErr != nil {
		b.log.Warnf("Failed to close previous socket: %v", releaseErr)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(fmt.Errorf("%w: %w", ErrTransport, err), s.Release())
		}
	}()

	remote, err := b.resolve(ctx, s.Params)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", s.Params.RemoteAddr, err)
	}
	conn, err := listenUDP(ctx, s.Params.LocalPort, remote, s.Params.RecvBufferSize, b.log)
	if err != nil {
		return fmt.Errorf("bind port %d: %w", s.Params.LocalPort, err)
	}
	id, err := stun.NewTransactionID()
	if err != nil {
		_ = conn.Close()

		return fmt.Errorf("transaction id: %w", err)
	}

	s.Status.ExpectedTransactionID = id
	s.Status.reset(MapUninitialized)
	s.metrics.setMapped(false)
	_ = s.Attach(conn)

	if err = b.send(s, stun.TypeBindingRequest); err != nil {
		return fmt.Errorf("send binding request: %w", err)
	}
	b.log.Infof("[%s] Binding request sent from %s", remote, conn.LocalAddr())

	return nil
}

// Ping sends a keepalive for the current transaction.
func (b *UDPBinder) Ping(s *Session, alt bool) error {
	t := stun.TypeBindingRequest
	if alt {
		t = stun.TypeBindingIndication
	}

	return b.send(s, t)
}

func (b *UDPBinder) send(s *Session, t stun.MessageType) error {
	conn := s.Conn()
	if conn == nil {
		return ErrNoConnection
	}
	b.builder.Reset(t, s.Status.ExpectedTransactionID)
	b.builder.AddSoftware(software)

	return conn.Send(b.builder.Bytes())
}
