// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package natpunch

import (
	"context"
	"net"
	"time"
)

// PacketConn is the session socket as seen by the Scheduler and the
// receive path.
type PacketConn interface {
	// Wait blocks until the socket is readable or timeout elapses. A
	// negative timeout waits indefinitely. Interrupted waits are retried;
	// cancellation of ctx ends the wait with ctx.Err().
	Wait(ctx context.Context, timeout time.Duration) (readable bool, err error)

	// Recv reads one datagram into b without blocking. It returns
	// ErrWouldBlock when no datagram is queued.
	Recv(b []byte) (int, error)

	// Send writes b to the rendezvous peer.
	Send(b []byte) error

	LocalAddr() net.Addr
	Close() error
}
