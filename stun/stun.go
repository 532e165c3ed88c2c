// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package stun implements the part of Session Traversal Utilities for NAT
// (STUN, RFC 5389) that a hole-punching endpoint needs: reading the fixed
// header of a datagram, looking up attributes in the TLV chain, decoding
// MAPPED-ADDRESS, XOR-MAPPED-ADDRESS and ERROR-CODE, and building the few
// messages exchanged with a rendezvous peer.
//
// Decoding works on a view over the caller's buffer. Nothing is copied and
// nothing is retained, so a single receive buffer can be reused for every
// datagram.
//
// Integrity, fingerprint and credential attributes are not supported.
package stun

import (
	"crypto/rand"
	"encoding/binary"
)

// bin is shorthand to binary.BigEndian.
var bin = binary.BigEndian //nolint:gochecknoglobals

const (
	// MagicCookie is fixed value that aids in distinguishing STUN packets
	// from packets of other protocols when STUN is multiplexed with those
	// other protocols on the same port.
	//
	// Defined in "STUN Message Structure", section 6.
	MagicCookie uint32 = 0x2112A442

	// HeaderSize is the size of the fixed message header.
	HeaderSize = 20

	// TransactionIDSize is length of transaction id array (in bytes).
	TransactionIDSize = 12 // 96 bit

	attributeHeaderSize = 4
)

// DefaultPort is IANA assigned port for "stun" protocol.
const DefaultPort = 3478

// TransactionID correlates a response with the request it answers.
type TransactionID [TransactionIDSize]byte

// NewTransactionID returns new random transaction ID using crypto/rand
// as source.
func NewTransactionID() (id TransactionID, err error) {
	_, err = rand.Read(id[:])

	return id, err
}

// IsMessage returns true if b looks like STUN message.
// Useful for multiplexing. IsMessage does not guarantee
// that decoding will be successful.
func IsMessage(b []byte) bool {
	return len(b) >= HeaderSize && bin.Uint32(b[4:8]) == MagicCookie
}
