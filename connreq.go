// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package natpunch

// handleConnRequest treats a non-STUN datagram as an inbound connection
// request and notifies with VerbConnRequest and the last mapped address.
//
// TODO: parse the request payload and report the requesting peer instead
// of our own last mapping.
func (s *Session) handleConnRequest(_ []byte) error {
	s.metrics.datagram(datagramConnRequest)
	// Failure is logged by notify and not reported further.
	_ = s.notify(VerbConnRequest, s.Status.MappedAddr, s.Status.MappedPort)

	return nil
}
