// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import (
	"fmt"
	"io"
	"net"
	"net/netip"
	"strconv"

	"github.com/pion/transport/v3/utils/xor"
)

// Address family values.
const (
	FamilyIPv4 byte = 0x01
	FamilyIPv6 byte = 0x02
)

const (
	addressValueOffset = 4
	ipv4ValueLen       = addressValueOffset + net.IPv4len
	ipv6ValueLen       = addressValueOffset + net.IPv6len
)

// MappedAddress is a decoded MAPPED-ADDRESS or XOR-MAPPED-ADDRESS value.
//
// RFC 5389 Section 15.1 and 15.2.
type MappedAddress struct {
	Family byte
	Addr   netip.Addr
	Port   uint16
}

func (a MappedAddress) String() string {
	return net.JoinHostPort(a.Addr.String(), strconv.Itoa(int(a.Port)))
}

// DecodeMappedAddress decodes attribute a as a mapped address. With xored
// set the address is XOR'ed with the full magic cookie and the port with
// its most significant 16 bits, both in host byte order.
//
// IPv6 values are rejected with ErrUnsupportedFamily.
func DecodeMappedAddress(a RawAttribute, cookie uint32, xored bool) (MappedAddress, error) {
	v := a.Value
	if len(v) < addressValueOffset {
		return MappedAddress{}, newEOFDecodeErr("mapped address", "family", io.ErrUnexpectedEOF)
	}
	family := v[1]
	switch family {
	case FamilyIPv4:
	case FamilyIPv6:
		return MappedAddress{Family: family}, ErrUnsupportedFamily
	default:
		return MappedAddress{}, newDecodeErr("mapped address", "family",
			fmt.Sprintf("bad value %d", family),
		)
	}
	if len(v) < ipv4ValueLen {
		return MappedAddress{}, newEOFDecodeErr("mapped address", "address", io.ErrUnexpectedEOF)
	}

	var ip [net.IPv4len]byte
	port := bin.Uint16(v[2:4])
	if xored {
		var mask [net.IPv4len]byte
		bin.PutUint32(mask[:], cookie)
		xor.XorBytes(ip[:], v[addressValueOffset:ipv4ValueLen], mask[:])
		port ^= uint16(cookie >> 16) //nolint:gosec // G115, upper half of cookie
	} else {
		copy(ip[:], v[addressValueOffset:ipv4ValueLen])
	}

	return MappedAddress{
		Family: family,
		Addr:   netip.AddrFrom4(ip),
		Port:   port,
	}, nil
}

// appendAddressValue writes the address attribute value into dst, which
// must be at least ipv6ValueLen long, and returns the used part. For the
// XOR variant the mask is the magic cookie followed by the transaction id.
func appendAddressValue(dst []byte, addr netip.Addr, port uint16, xored bool, id TransactionID) ([]byte, error) {
	if !addr.IsValid() {
		return nil, ErrBadIPLength
	}
	addr = addr.Unmap()
	family, ipLen := FamilyIPv4, net.IPv4len
	if addr.Is6() {
		family, ipLen = FamilyIPv6, net.IPv6len
	}
	dst[0] = 0 // first 8 bits are zeroes
	dst[1] = family
	ip := addr.AsSlice()
	if !xored {
		bin.PutUint16(dst[2:4], port)
		copy(dst[addressValueOffset:], ip)

		return dst[:addressValueOffset+ipLen], nil
	}

	// X-Port is computed by taking the mapped port in host byte order,
	// XOR'ing it with the most significant 16 bits of the magic cookie, and
	// then the converting the result to network byte order.
	bin.PutUint16(dst[2:4], port^uint16(MagicCookie>>16)) //nolint:gosec // G115
	var mask [net.IPv6len]byte
	bin.PutUint32(mask[0:4], MagicCookie)
	copy(mask[4:], id[:])
	xor.XorBytes(dst[addressValueOffset:addressValueOffset+ipLen], ip, mask[:])

	return dst[:addressValueOffset+ipLen], nil
}

// ErrBadIPLength means that the address to encode is not a valid IPv4 or
// IPv6 address.
const ErrBadIPLength Error = "invalid length of IP value"
