// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package natpunch

import "errors"

var (
	// ErrTransport indicates that the socket could not be created, bound or
	// written to. It is fatal to the current session.
	ErrTransport = errors.New("natpunch: transport failure")

	// ErrReceiveFailure indicates a receive error other than would-block,
	// or a zero-length read. The connection is considered broken.
	ErrReceiveFailure = errors.New("natpunch: receive failure")

	// ErrWouldBlock is returned by Session.Receive when the socket queue is
	// drained.
	ErrWouldBlock = errors.New("natpunch: would block")

	// ErrNoData indicates that a required attribute is missing or could not
	// be decoded; the datagram is skipped.
	ErrNoData = errors.New("natpunch: no data")

	// ErrWrongTransaction indicates a response to a transaction other than
	// the current bind attempt.
	ErrWrongTransaction = errors.New("natpunch: wrong transaction id")

	// ErrUnsupported indicates an IPv6 mapped address.
	ErrUnsupported = errors.New("natpunch: unsupported mapped address family")

	// ErrScriptSpawn indicates that the notifier command could not be
	// started.
	ErrScriptSpawn = errors.New("natpunch: failed to spawn script")

	// ErrWaitFailure indicates that waiting on the socket failed for a
	// reason other than an interrupt.
	ErrWaitFailure = errors.New("natpunch: wait failure")

	// ErrNoConnection indicates that the session has no bound socket.
	ErrNoConnection = errors.New("natpunch: session is not bound")

	errInvalidConfig = errors.New("invalid config")
)

// IsConnBroken reports whether err means that the session must rebind.
func IsConnBroken(err error) bool {
	return errors.Is(err, ErrReceiveFailure)
}
