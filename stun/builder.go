// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import (
	"net/netip"
)

const defaultRawCapacity = 120

// Builder encodes a single message. It is not goroutine-safe; Reset
// makes it reusable without allocating.
type Builder struct {
	id  TransactionID
	raw []byte
	tmp [ipv6ValueLen]byte
}

// NewBuilder returns a Builder with the header of a message of type t
// already written.
func NewBuilder(t MessageType, id TransactionID) *Builder {
	b := &Builder{raw: make([]byte, 0, defaultRawCapacity)}
	b.Reset(t, id)

	return b
}

// Reset drops all attributes and writes a fresh header.
func (b *Builder) Reset(t MessageType, id TransactionID) {
	b.id = id
	b.raw = b.raw[:HeaderSize]
	bin.PutUint16(b.raw[0:2], uint16(t))
	bin.PutUint32(b.raw[4:8], MagicCookie)
	copy(b.raw[8:HeaderSize], id[:])
	b.writeLength()
}

func (b *Builder) writeLength() {
	_ = b.raw[4]                                             // early bounds check to guarantee safety of writes below
	bin.PutUint16(b.raw[2:4], uint16(len(b.raw)-HeaderSize)) //nolint:gosec // G115
}

// Add appends new attribute to message.
//
// Value of attribute is copied to internal buffer so
// it is safe to reuse v.
func (b *Builder) Add(t AttrType, v []byte) {
	// [0:20]                               <- message header
	// [20:20+Length]                       <- existing message attributes
	// [first:first+4]                      <- TL of the new attribute
	// [first+4:first+4+len(v)]             <- V
	// [...:last]                           <- zero padding
	first := len(b.raw)
	b.raw = append(b.raw, 0, 0, 0, 0)
	bin.PutUint16(b.raw[first:first+2], uint16(t))
	bin.PutUint16(b.raw[first+2:first+4], uint16(len(v))) //nolint:gosec // G115
	b.raw = append(b.raw, v...)

	// setting all padding bytes to zero
	// to prevent data leak from previous
	// data in next bytesToAdd bytes
	for i := len(v); i < nearestPaddedValueLength(len(v)); i++ {
		b.raw = append(b.raw, 0)
	}
	b.writeLength()
}

// AddMappedAddress adds MAPPED-ADDRESS.
func (b *Builder) AddMappedAddress(addr netip.Addr, port uint16) error {
	v, err := appendAddressValue(b.tmp[:], addr, port, false, b.id)
	if err != nil {
		return err
	}
	b.Add(AttrMappedAddress, v)

	return nil
}

// AddXORMappedAddress adds XOR-MAPPED-ADDRESS.
func (b *Builder) AddXORMappedAddress(addr netip.Addr, port uint16) error {
	v, err := appendAddressValue(b.tmp[:], addr, port, true, b.id)
	if err != nil {
		return err
	}
	b.Add(AttrXORMappedAddress, v)

	return nil
}

// AddErrorCode adds ERROR-CODE.
func (b *Builder) AddErrorCode(code ErrorCode, reason string) error {
	v, err := appendErrorCodeValue(make([]byte, 0, errorCodeReasonStart+len(reason)), code, reason)
	if err != nil {
		return err
	}
	b.Add(AttrErrorCode, v)

	return nil
}

// AddSoftware adds SOFTWARE.
func (b *Builder) AddSoftware(software string) {
	b.Add(AttrSoftware, []byte(software))
}

// Bytes returns the encoded message. The slice is valid until the next
// call to Reset or Add.
func (b *Builder) Bytes() []byte {
	return b.raw
}
