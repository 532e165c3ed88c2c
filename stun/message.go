// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import (
	"encoding/base64"
	"fmt"
	"strconv"
)

// MessageType is STUN Message Type Field as it appears on the wire.
type MessageType uint16

// Binding message types.
const (
	TypeBindingRequest    MessageType = 0x0001
	TypeBindingIndication MessageType = 0x0011
	TypeBindingSuccess    MessageType = 0x0101
	TypeBindingError      MessageType = 0x0111
)

// MessageClass is 8-bit representation of 2-bit class of STUN Message Class.
type MessageClass byte

// Possible values for message class in STUN Message Type.
const (
	ClassRequest         MessageClass = 0x00 // 0b00
	ClassIndication      MessageClass = 0x01 // 0b01
	ClassSuccessResponse MessageClass = 0x02 // 0b10
	ClassErrorResponse   MessageClass = 0x03 // 0b11
)

func (c MessageClass) String() string {
	switch c {
	case ClassRequest:
		return "request"
	case ClassIndication:
		return "indication"
	case ClassSuccessResponse:
		return "success response"
	case ClassErrorResponse:
		return "error response"
	default:
		return "class " + strconv.Itoa(int(c))
	}
}

// Method is uint16 representation of 12-bit STUN method.
type Method uint16

// MethodBinding is the only method used by this package.
const MethodBinding Method = 0x001

func (m Method) String() string {
	if m == MethodBinding {
		return "binding"
	}

	return fmt.Sprintf("0x%s", strconv.FormatUint(uint64(m), 16))
}

const (
	methodABits = 0xf   // 0b0000000000001111
	methodBBits = 0x70  // 0b0000000001110000
	methodDBits = 0xf80 // 0b0000111110000000

	methodBShift = 1
	methodDShift = 2

	c0Bit = 0x1
	c1Bit = 0x2

	classC0Shift = 4
	classC1Shift = 7
)

// Class returns the class bits C0 and C1 of t.
//
//	 0                 1
//	 2  3  4 5 6 7 8 9 0 1 2 3 4 5
//	+--+--+-+-+-+-+-+-+-+-+-+-+-+-+
//	|M |M |M|M|M|C|M|M|M|C|M|M|M|M|
//	|11|10|9|8|7|1|6|5|4|0|3|2|1|0|
//	+--+--+-+-+-+-+-+-+-+-+-+-+-+-+
func (t MessageType) Class() MessageClass {
	v := uint16(t)
	c0 := (v >> classC0Shift) & c0Bit
	c1 := (v >> classC1Shift) & c1Bit

	return MessageClass(c0 + c1)
}

// Method returns the 12 method bits of t with the class holes removed.
func (t MessageType) Method() Method {
	v := uint16(t)
	a := v & methodABits                   // A(M0-M3)
	b := (v >> methodBShift) & methodBBits // B(M4-M6)
	d := (v >> methodDShift) & methodDBits // D(M7-M11)

	return Method(a + b + d)
}

// NewType composes a message type from method and class.
func NewType(method Method, class MessageClass) MessageType {
	m := uint16(method)
	a := m & methodABits
	b := m & methodBBits
	d := m & methodDBits
	m = a + (b << methodBShift) + (d << methodDShift)

	c := uint16(class)
	c0 := (c & c0Bit) << classC0Shift
	c1 := (c & c1Bit) << classC1Shift

	return MessageType(m + c0 + c1)
}

func (t MessageType) String() string {
	return fmt.Sprintf("%s %s", t.Method(), t.Class())
}

// Header is the fixed 20-byte part of every message.
type Header struct {
	Type          MessageType
	Length        uint16 // bytes following the header
	Cookie        uint32
	TransactionID TransactionID
}

// ParseHeader reads the fixed header from b. The caller must have checked
// that len(b) >= HeaderSize.
func ParseHeader(b []byte) Header {
	_ = b[HeaderSize-1] // early bounds check to guarantee safety of reads below

	h := Header{
		Type:   MessageType(bin.Uint16(b[0:2])),
		Length: bin.Uint16(b[2:4]),
		Cookie: bin.Uint32(b[4:8]),
	}
	copy(h.TransactionID[:], b[8:HeaderSize])

	return h
}

// Message is a read-only view over a raw datagram. It is valid only as long
// as the underlying buffer is not reused.
type Message struct {
	Header
	Raw []byte
}

// Parse returns a view over b. Only the header is checked; attributes are
// looked up lazily and a garbled chain simply yields no attributes.
func Parse(b []byte) (Message, error) {
	if len(b) < HeaderSize {
		return Message{}, ErrUnexpectedHeaderEOF
	}

	return Message{Header: ParseHeader(b), Raw: b}, nil
}

func (m Message) String() string {
	return fmt.Sprintf("%s l=%d id=%s",
		m.Type,
		m.Length,
		base64.StdEncoding.EncodeToString(m.TransactionID[:]),
	)
}

// attributes returns the TLV region bounded both by the length field and
// by the bytes actually received.
func (m *Message) attributes() []byte {
	if len(m.Raw) < HeaderSize {
		return nil
	}
	end := HeaderSize + int(m.Length)
	if end > len(m.Raw) {
		end = len(m.Raw)
	}

	return m.Raw[HeaderSize:end]
}

// nextAttribute reads one TLV from b and returns the remainder. ok is false
// when the chain ends or the declared length runs past the buffer.
func nextAttribute(b []byte) (a RawAttribute, rest []byte, ok bool) {
	if len(b) < attributeHeaderSize {
		return RawAttribute{}, nil, false
	}
	a.Type = AttrType(bin.Uint16(b[0:2]))
	a.Length = bin.Uint16(b[2:4])
	b = b[attributeHeaderSize:]
	if int(a.Length) > len(b) {
		return RawAttribute{}, nil, false
	}
	a.Value = b[:a.Length]

	// The last attribute may come without its padding.
	padded := nearestPaddedValueLength(int(a.Length))
	if padded > len(b) {
		return a, nil, true
	}

	return a, b[padded:], true
}

// Find returns the first attribute of type t. A truncated chain is treated
// as if the attribute were absent.
func (m *Message) Find(t AttrType) (RawAttribute, bool) {
	b := m.attributes()
	for {
		a, rest, ok := nextAttribute(b)
		if !ok {
			return RawAttribute{}, false
		}
		if a.Type == t {
			return a, true
		}
		b = rest
	}
}

// Walk calls f for every well-formed attribute until f returns false.
func (m *Message) Walk(f func(a RawAttribute) bool) {
	b := m.attributes()
	for {
		a, rest, ok := nextAttribute(b)
		if !ok || !f(a) {
			return
		}
		b = rest
	}
}
