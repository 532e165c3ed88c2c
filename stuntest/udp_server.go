// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package stuntest contains helpers for testing STUN clients
package stuntest

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"testing"

	"github.com/pion/natpunch/stun"
	"github.com/stretchr/testify/assert"
)

var errUDPServerUnsupportedNetwork = errors.New("unsupported network")

// Handler emulates the server. It is called with every datagram and the
// sender; a nil response sends nothing back.
type Handler func(req []byte, from *net.UDPAddr) ([]byte, error)

// NewUDPServer creates an udp server for testing.
// The supplied handler function will be called with the request
// and should be used to emulate the server behavior.
//
//nolint:cyclop
func NewUDPServer(
	t *testing.T,
	network string,
	maxMessageSize int,
	handler Handler,
) (net.Addr, func(t *testing.T), error) {
	t.Helper()

	var ip string
	switch network {
	case "udp4":
		ip = "127.0.0.1"
	case "udp6":
		ip = "[::1]"
	default:
		return nil, nil, fmt.Errorf("%w: %s", errUDPServerUnsupportedNetwork, network)
	}

	udpConn, err := net.ListenUDP(network, &net.UDPAddr{IP: net.ParseIP(ip), Port: 0})
	assert.NoError(t, err)

	// Necessary for IPv6
	address := fmt.Sprintf("%s:%d", ip, udpConn.LocalAddr().(*net.UDPAddr).Port) //nolint:forcetypeassert
	serverAddr, err := net.ResolveUDPAddr(network, address)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve stun host: %s: %w", address, err)
	}

	errCh := make(chan error, 1)
	go func() {
		for {
			bs := make([]byte, maxMessageSize)
			n, addr, err := udpConn.ReadFromUDP(bs)
			if err != nil {
				errCh <- err

				return
			}

			resp, err := handler(bs[:n], addr)
			if err != nil {
				errCh <- err

				return
			}
			if resp == nil {
				continue
			}

			_, err = udpConn.WriteToUDP(resp, addr)
			if err != nil {
				errCh <- err

				return
			}
		}
	}()

	return serverAddr, func(t *testing.T) {
		t.Helper()

		select {
		case err := <-errCh:
			if err != nil {
				assert.NoError(t, err)

				return
			}
		default:
		}

		assert.NoError(t, udpConn.Close())
		<-errCh
	}, nil
}

// BindingHandler answers Binding Requests with the address they came from,
// encoded as XOR-MAPPED-ADDRESS when xored is set and MAPPED-ADDRESS
// otherwise. Every other datagram is passed to seen, if not nil, and left
// unanswered.
func BindingHandler(xored bool, seen func(req []byte)) Handler {
	return func(req []byte, from *net.UDPAddr) ([]byte, error) {
		if seen != nil {
			seen(req)
		}
		m, err := stun.Parse(req)
		if err != nil || m.Cookie != stun.MagicCookie || m.Type != stun.TypeBindingRequest {
			return nil, nil //nolint:nilerr // not a request, nothing to answer
		}

		ap := from.AddrPort()
		b := stun.NewBuilder(stun.TypeBindingSuccess, m.TransactionID)
		addr := ap.Addr().Unmap()
		if xored {
			err = b.AddXORMappedAddress(addr, ap.Port())
		} else {
			err = b.AddMappedAddress(addr, ap.Port())
		}
		if err != nil {
			return nil, err
		}

		return b.Bytes(), nil
	}
}

// ErrorHandler answers Binding Requests with an error response carrying
// code.
func ErrorHandler(code stun.ErrorCode) Handler {
	return func(req []byte, _ *net.UDPAddr) ([]byte, error) {
		m, err := stun.Parse(req)
		if err != nil || m.Type != stun.TypeBindingRequest {
			return nil, nil //nolint:nilerr // not a request, nothing to answer
		}
		b := stun.NewBuilder(stun.TypeBindingError, m.TransactionID)
		if err := b.AddErrorCode(code, code.Reason()); err != nil {
			return nil, err
		}

		return b.Bytes(), nil
	}
}

// Send writes raw to addr from a throwaway socket, emulating a peer that
// is not the rendezvous server.
func Send(addr netip.AddrPort, raw []byte) error {
	conn, err := net.DialUDP("udp4", nil, net.UDPAddrFromAddrPort(addr))
	if err != nil {
		return err
	}
	_, err = conn.Write(raw)

	return errors.Join(err, conn.Close())
}
