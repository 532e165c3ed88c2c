// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package natpunch

import (
	"context"
	"errors"
	"net"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/pion/logging"
	"golang.org/x/sys/unix"
)

var aLongTimeAgo = time.Unix(1, 0) //nolint:gochecknoglobals

// udpConn is a UDPv4 socket driven through the runtime netpoller: Wait
// parks on readability with a read deadline, Recv never blocks.
type udpConn struct {
	conn   *net.UDPConn
	raw    syscall.RawConn
	remote *net.UDPAddr
	peek   [1]byte
}

// listenUDP opens a UDPv4 socket on localPort (0 for ephemeral) with
// address and port reuse enabled.
func listenUDP(
	ctx context.Context,
	localPort uint16,
	remote *net.UDPAddr,
	recvBufferSize int,
	log logging.LeveledLogger,
) (*udpConn, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
					log.Warnf("Failed to set SO_REUSEADDR: %v", err)
				}
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
					log.Warnf("Failed to set SO_REUSEPORT: %v", err)
				}
			})
		},
	}
	pc, err := lc.ListenPacket(ctx, "udp4", net.JoinHostPort("0.0.0.0", strconv.Itoa(int(localPort))))
	if err != nil {
		return nil, err
	}
	conn, ok := pc.(*net.UDPConn)
	if !ok {
		_ = pc.Close()

		return nil, &net.OpError{Op: "listen", Net: "udp4", Err: syscall.EPROTOTYPE}
	}
	if recvBufferSize > 0 {
		if err := conn.SetReadBuffer(recvBufferSize); err != nil {
			log.Warnf("Failed to set SO_RCVBUF: %v", err)
		}
	}
	raw, err := conn.SyscallConn()
	if err != nil {
		_ = conn.Close()

		return nil, err
	}

	return &udpConn{conn: conn, raw: raw, remote: remote}, nil
}

func (c *udpConn) Wait(ctx context.Context, timeout time.Duration) (bool, error) {
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return false, err
	}
	poked := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(aLongTimeAgo)
		close(poked)
	})
	defer func() {
		// The poke must land before the reset, or Recv would see a
		// deadline in the past.
		if !stop() {
			<-poked
		}
		_ = c.conn.SetReadDeadline(time.Time{})
	}()

	// MSG_PEEK leaves the datagram queued for Recv.
	err := c.raw.Read(func(fd uintptr) bool {
		for {
			_, _, probeErr := unix.Recvfrom(int(fd), c.peek[:], unix.MSG_PEEK|unix.MSG_DONTWAIT)
			if errors.Is(probeErr, unix.EINTR) {
				continue
			}

			return !errors.Is(probeErr, unix.EAGAIN)
		}
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (c *udpConn) Recv(b []byte) (int, error) {
	var (
		n       int
		readErr error
	)
	err := c.raw.Read(func(fd uintptr) bool {
		for {
			n, readErr = unix.Read(int(fd), b)
			if !errors.Is(readErr, unix.EINTR) {
				return true
			}
		}
	})
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded):
		return 0, ErrWouldBlock
	case err != nil:
		return 0, err
	case errors.Is(readErr, unix.EAGAIN):
		return 0, ErrWouldBlock
	case readErr != nil:
		return 0, os.NewSyscallError("read", readErr)
	}

	return n, nil
}

func (c *udpConn) Send(b []byte) error {
	_, err := c.conn.WriteToUDP(b, c.remote)

	return err
}

func (c *udpConn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *udpConn) Close() error {
	return c.conn.Close()
}
