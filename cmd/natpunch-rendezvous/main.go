// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Command natpunch-rendezvous is a minimal rendezvous peer: it answers
// Binding Requests with the address they came from and ignores everything
// else.
package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/pion/logging"
	"github.com/pion/natpunch/stun"
)

var (
	address = flag.String("addr", fmt.Sprintf("0.0.0.0:%d", stun.DefaultPort), "address to listen") //nolint:gochecknoglobals
	plain   = flag.Bool("plain", false, "answer with MAPPED-ADDRESS instead of XOR-MAPPED-ADDRESS") //nolint:gochecknoglobals
	errCode = flag.Int("error", 0, "answer every request with this error code")                     //nolint:gochecknoglobals
)

const software = "pion/natpunch-rendezvous"

var errNotRequest = errors.New("not a binding request")

// Server answers Binding Requests on a single UDP socket.
type Server struct {
	conn    *net.UDPConn
	builder *stun.Builder
	log     logging.LeveledLogger
	xored   bool
	code    stun.ErrorCode
}

func (s *Server) respond(req []byte, from *net.UDPAddr) ([]byte, error) {
	m, err := stun.Parse(req)
	if err != nil {
		return nil, err
	}
	if m.Cookie != stun.MagicCookie || m.Type != stun.TypeBindingRequest {
		return nil, errNotRequest
	}

	if s.code != 0 {
		s.builder.Reset(stun.TypeBindingError, m.TransactionID)
		if err = s.builder.AddErrorCode(s.code, s.code.Reason()); err != nil {
			return nil, err
		}
	} else {
		s.builder.Reset(stun.TypeBindingSuccess, m.TransactionID)
		ap := from.AddrPort()
		if s.xored {
			err = s.builder.AddXORMappedAddress(ap.Addr().Unmap(), ap.Port())
		} else {
			err = s.builder.AddMappedAddress(ap.Addr().Unmap(), ap.Port())
		}
		if err != nil {
			return nil, err
		}
	}
	s.builder.AddSoftware(software)

	return s.builder.Bytes(), nil
}

// Serve reads datagrams until the socket is closed.
func (s *Server) Serve() error {
	buf := make([]byte, 1500)
	for {
		n, from, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			return err
		}
		resp, err := s.respond(buf[:n], from)
		if err != nil {
			s.log.Debugf("%s: %v", from, err)

			continue
		}
		if _, err = s.conn.WriteToUDP(resp, from); err != nil {
			s.log.Warnf("%s: write: %v", from, err)

			continue
		}
		s.log.Infof("%s: answered binding request", from)
	}
}

func main() {
	flag.Parse()

	loggerFactory := logging.NewDefaultLoggerFactory()
	log := loggerFactory.NewLogger("rendezvous")

	addr, err := net.ResolveUDPAddr("udp4", *address)
	if err != nil {
		fmt.Fprintln(os.Stderr, "resolve:", err)
		os.Exit(2)
	}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "listen:", err)
		os.Exit(1)
	}
	log.Infof("Listening on %s", conn.LocalAddr())

	s := &Server{
		conn:    conn,
		builder: stun.NewBuilder(stun.TypeBindingSuccess, stun.TransactionID{}),
		log:     log,
		xored:   !*plain,
		code:    stun.ErrorCode(*errCode),
	}
	if err := s.Serve(); err != nil {
		fmt.Fprintln(os.Stderr, "serve:", err)
		os.Exit(1)
	}
}
