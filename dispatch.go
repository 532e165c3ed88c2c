// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package natpunch

import (
	"errors"

	"github.com/pion/natpunch/stun"
)

// Receive reads one datagram from the session socket and routes it.
//
// It returns ErrWouldBlock when the queue is drained and ErrReceiveFailure
// when the socket is broken. Datagrams that are not STUN (too short or
// without the magic cookie) are connection requests. Responses to another
// transaction are dropped with ErrWrongTransaction. Binding success and
// error responses update Status; every other message type is dropped.
func (s *Session) Receive() error {
	if s.conn == nil {
		return ErrNoConnection
	}
	n, err := s.conn.Recv(s.buf[:])
	switch {
	case errors.Is(err, ErrWouldBlock):
		return ErrWouldBlock
	case err != nil:
		s.log.Errorf("Receive failure: %v", err)
		s.metrics.datagram(datagramReceiveFailure)

		return ErrReceiveFailure
	case n == 0:
		s.log.Debug("Zero-length read")
		s.metrics.datagram(datagramReceiveFailure)

		return ErrReceiveFailure
	}

	b := s.buf[:n]
	if n < stun.HeaderSize {
		return s.handleConnRequest(b)
	}
	h := stun.ParseHeader(b)
	if h.Cookie != stun.MagicCookie {
		return s.handleConnRequest(b)
	}
	if h.TransactionID != s.Status.ExpectedTransactionID {
		s.log.Debug("Dropping response to unknown transaction")
		s.metrics.datagram(datagramWrongTransaction)

		return ErrWrongTransaction
	}

	switch h.Type {
	case stun.TypeBindingSuccess:
		s.metrics.datagram(datagramBindingSuccess)

		return s.handleBindingSuccess(stun.Message{Header: h, Raw: b})
	case stun.TypeBindingError:
		s.metrics.datagram(datagramBindingError)

		return s.handleBindingError(stun.Message{Header: h, Raw: b})
	default:
		s.metrics.datagram(datagramIgnored)

		return nil
	}
}
